package trace

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/fmriviz/internal/config"
	"github.com/san-kum/fmriviz/internal/scene"
	"github.com/san-kum/fmriviz/internal/tensor"
)

func TestSyntheticDeterministic(t *testing.T) {
	a, _ := NewSynthetic(1).Simulate(context.Background(), "sample-0")
	b, _ := NewSynthetic(1).Simulate(context.Background(), "sample-0")
	c, _ := NewSynthetic(1).Simulate(context.Background(), "sample-1")

	if len(a) != 10 {
		t.Fatalf("expected 10 layers, got %d", len(a))
	}
	for i := range a {
		for j := range a[i].Data {
			if a[i].Data[j] != b[i].Data[j] {
				t.Fatalf("layer %s differs between runs", a[i].Name)
			}
		}
	}

	same := true
	for j := range a[0].Data {
		if a[0].Data[j] != c[0].Data[j] {
			same = false
		}
	}
	if same {
		t.Error("different inputs should produce different images")
	}
}

func TestSyntheticSoftmaxSumsToOne(t *testing.T) {
	snaps, err := NewSynthetic(3).Simulate(context.Background(), "x")
	if err != nil {
		t.Fatal(err)
	}
	var sum float32
	for _, v := range snaps[len(snaps)-1].Data {
		sum += v
	}
	if sum < 0.999 || sum > 1.001 {
		t.Errorf("expected probabilities to sum to 1, got %v", sum)
	}
}

func TestSyntheticPipeline(t *testing.T) {
	sim := NewSynthetic(42)
	p := scene.NewPipeline(sim, config.DefaultOptions(), nil)

	r, err := p.BuildSample(context.Background(), "sample-0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// every transition but data -> conv1 is animated
	if r.Animations() != 8 {
		t.Errorf("expected 8 animations, got %d", r.Animations())
	}
	if len(r.Top) != scene.TopGuesses {
		t.Errorf("expected %d guesses, got %d", scene.TopGuesses, len(r.Top))
	}
}

func TestRecordAndReplay(t *testing.T) {
	dir := t.TempDir()
	sim := NewSynthetic(5)
	inputs := sim.Inputs(2)

	path, err := Record(context.Background(), sim, dir, inputs)
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	r, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if got := r.LayerMeta()["fc1"]; got.Kind != tensor.InnerProduct || len(got.Params) != 1 {
		t.Errorf("unexpected fc1 meta %+v", got.Kind)
	}
	if len(r.Manifest().Inputs) != 2 {
		t.Errorf("expected 2 recorded inputs, got %v", r.Manifest().Inputs)
	}

	want, _ := sim.Simulate(context.Background(), inputs[1])
	got, err := r.Simulate(context.Background(), inputs[1])
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d layers, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].Name != want[i].Name {
			t.Errorf("layer %d: got %s, want %s", i, got[i].Name, want[i].Name)
		}
		for j := range want[i].Data {
			if got[i].Data[j] != want[i].Data[j] {
				t.Fatalf("layer %s entry %d: got %v, want %v", want[i].Name, j, got[i].Data[j], want[i].Data[j])
			}
		}
	}
}

func TestReplayMissingInput(t *testing.T) {
	dir := t.TempDir()
	path, err := Record(context.Background(), NewSynthetic(5), dir, []string{"a"})
	if err != nil {
		t.Fatal(err)
	}
	r, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Simulate(context.Background(), "missing"); err == nil {
		t.Error("expected error for unrecorded input")
	}
}

func TestReplayMissingWeightTensor(t *testing.T) {
	dir := t.TempDir()
	if err := WriteSafetensors(filepath.Join(dir, "w.safetensors"), map[string]Tensor{
		"other": {Shape: []int{1}, Data: []float32{1}},
	}); err != nil {
		t.Fatal(err)
	}
	manifest := strings.Join([]string{
		"weights: w.safetensors",
		"activations: \"{input}.safetensors\"",
		"layers:",
		"  - name: fc",
		"    type: InnerProduct",
		"    shape: [1, 2]",
		"    params:",
		"      - tensor: fc.weight",
		"        shape: [2, 2]",
	}, "\n")
	path := filepath.Join(dir, ManifestFile)
	os.WriteFile(path, []byte(manifest), 0644)

	_, err := Open(path)
	if !errors.Is(err, tensor.ErrMissingParameters) {
		t.Errorf("expected ErrMissingParameters, got %v", err)
	}
}

func TestManifestValidate(t *testing.T) {
	tests := []struct {
		name string
		m    Manifest
	}{
		{"no layers", Manifest{Activations: "{input}"}},
		{"no placeholder", Manifest{Activations: "a.safetensors", Layers: []LayerSpec{{Name: "a", Shape: []int{1, 1}}}}},
		{"duplicate", Manifest{Activations: "{input}", Layers: []LayerSpec{{Name: "a", Shape: []int{1}}, {Name: "a", Shape: []int{1}}}}},
		{"no shape", Manifest{Activations: "{input}", Layers: []LayerSpec{{Name: "a"}}}},
		{"no weights", Manifest{Activations: "{input}", Layers: []LayerSpec{{Name: "a", Shape: []int{1}, Params: []ParamSpec{{Tensor: "w"}}}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.m.Validate(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestWriteSafetensorsRejectsBadShape(t *testing.T) {
	err := WriteSafetensors(filepath.Join(t.TempDir(), "x"), map[string]Tensor{
		"t": {Shape: []int{2, 2}, Data: []float32{1}},
	})
	if err == nil {
		t.Error("expected error")
	}
}
