package interaction

import (
	"errors"
	"math"
	"math/rand"
	"sort"
	"sync/atomic"
	"testing"

	"github.com/san-kum/fmriviz/internal/tensor"
)

func snap(t *testing.T, name string, shape []int, data []float32) *tensor.Snapshot {
	t.Helper()
	s, err := tensor.NewSnapshot(name, shape, data)
	if err != nil {
		t.Fatalf("snapshot %s: %v", name, err)
	}
	return s
}

func innerProductMeta() tensor.Meta {
	return tensor.Meta{
		Name: "fc",
		Kind: tensor.InnerProduct,
		Params: []tensor.Param{{
			Shape: []int{2, 3},
			Data:  []float32{1, -2, 3, -3, 0.5, 1},
		}},
	}
}

func TestInnerProductTopK(t *testing.T) {
	prev := snap(t, "in", []int{1, 3}, []float32{1, 2, 1})
	cur := snap(t, "fc", []int{1, 2}, []float32{0, 0})

	tests := []struct {
		name     string
		limit    int
		expected []Interaction
	}{
		{
			name:  "limited",
			limit: 4,
			expected: []Interaction{
				{Strength: -4, Source: 1, Sink: 0},
				{Strength: 3, Source: 2, Sink: 0},
				{Strength: -3, Source: 0, Sink: 1},
				{Strength: 1, Source: 0, Sink: 0},
			},
		},
		{
			name:  "all",
			limit: 100,
			expected: []Interaction{
				{Strength: -4, Source: 1, Sink: 0},
				{Strength: 3, Source: 2, Sink: 0},
				{Strength: -3, Source: 0, Sink: 1},
				{Strength: 1, Source: 0, Sink: 0},
				{Strength: 1, Source: 1, Sink: 1},
				{Strength: 1, Source: 2, Sink: 1},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			opts.Limit = tt.limit
			res, err := Extract(prev, cur, innerProductMeta(), opts)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(res.Interactions) != len(tt.expected) {
				t.Fatalf("expected %d interactions, got %d: %v", len(tt.expected), len(res.Interactions), res.Interactions)
			}
			for i, want := range tt.expected {
				if res.Interactions[i] != want {
					t.Errorf("interaction %d: got %+v, want %+v", i, res.Interactions[i], want)
				}
			}
		})
	}
}

func TestInnerProductDropsBelowEpsilon(t *testing.T) {
	prev := snap(t, "in", []int{1, 3}, []float32{0, 2, 0})
	cur := snap(t, "fc", []int{1, 2}, []float32{0, 0})

	res, err := Extract(prev, cur, innerProductMeta(), DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Interactions) != 2 {
		t.Fatalf("expected 2 interactions, got %v", res.Interactions)
	}
	for _, it := range res.Interactions {
		if it.Source != 1 || math.Abs(float64(it.Strength)) < DefaultEpsilon {
			t.Errorf("unexpected interaction %+v", it)
		}
	}
}

func TestInnerProductImageInput(t *testing.T) {
	prev := snap(t, "pool", []int{1, 2, 1, 2}, []float32{1, 1, 1, 1})
	cur := snap(t, "fc", []int{1, 1}, []float32{0})
	meta := tensor.Meta{
		Name:   "fc",
		Kind:   tensor.InnerProduct,
		Params: []tensor.Param{{Shape: []int{1, 4}, Data: []float32{1, 2, 3, 4}}},
	}

	res, err := Extract(prev, cur, meta, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantSources := []int{1, 1, 0, 0}
	for i, it := range res.Interactions {
		if it.Source != wantSources[i] || it.Sink != 0 {
			t.Errorf("interaction %d: got %+v, want source %d", i, it, wantSources[i])
		}
	}
}

func TestInnerProductErrors(t *testing.T) {
	prev := snap(t, "in", []int{1, 3}, []float32{1, 2, 3})
	cur := snap(t, "fc", []int{1, 2}, []float32{0, 0})

	tests := []struct {
		name   string
		params []tensor.Param
		want   error
	}{
		{"missing", nil, tensor.ErrMissingParameters},
		{"empty", []tensor.Param{{}}, tensor.ErrMissingParameters},
		{"rank", []tensor.Param{{Shape: []int{6}, Data: make([]float32, 6)}}, tensor.ErrUnsupportedShape},
		{"inputs", []tensor.Param{{Shape: []int{3, 2}, Data: make([]float32, 6)}}, tensor.ErrShapeMismatch},
		{"outputs", []tensor.Param{{Shape: []int{1, 3}, Data: make([]float32, 3)}}, tensor.ErrShapeMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := tensor.Meta{Name: "fc", Kind: tensor.InnerProduct, Params: tt.params}
			_, err := Extract(prev, cur, meta, DefaultOptions())
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
			var le *tensor.LayerError
			if !errors.As(err, &le) || le.Layer != "fc" {
				t.Errorf("expected layer context, got %v", err)
			}
		})
	}
}

func TestTopKMatchesFullSort(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	values := make([]float32, 5000)
	for i := range values {
		// coarse values force plenty of ties
		values[i] = float32(rng.Intn(200)-100) / 10
	}

	full := make([]int, 0, len(values))
	for i, v := range values {
		if abs32(v) >= DefaultEpsilon {
			full = append(full, i)
		}
	}
	sort.SliceStable(full, func(a, b int) bool {
		return abs32(values[full[a]]) > abs32(values[full[b]])
	})

	for _, k := range []int{1, 10, 333, 4000, 10000} {
		got := topK(values, k, DefaultEpsilon)
		want := full
		if k < len(full) {
			want = full[:k]
		}
		if len(got) != len(want) {
			t.Fatalf("k=%d: expected %d winners, got %d", k, len(want), len(got))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("k=%d position %d: got index %d, want %d", k, i, got[i], want[i])
			}
		}
	}
}

func TestDropOutDeduplicates(t *testing.T) {
	prev := snap(t, "conv", []int{1, 2, 1, 2}, []float32{1, 1, 1, 1})
	cur := snap(t, "drop", []int{1, 2, 1, 2}, []float32{0.5, 0.25, 0, 2})

	res, err := Extract(prev, cur, tensor.Meta{Name: "drop", Kind: tensor.DropOut}, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []Interaction{
		{Strength: 0.75, Source: 0, Sink: 0},
		{Strength: 2, Source: 1, Sink: 1},
	}
	if len(res.Interactions) != len(want) {
		t.Fatalf("expected %v, got %v", want, res.Interactions)
	}
	for i := range want {
		if res.Interactions[i] != want[i] {
			t.Errorf("interaction %d: got %+v, want %+v", i, res.Interactions[i], want[i])
		}
	}
}

func TestReLUFlat(t *testing.T) {
	prev := snap(t, "fc", []int{1, 4}, []float32{-1, 2, 0.5, -3})
	cur := snap(t, "relu", []int{1, 4}, []float32{0, 2, 0.5, 0})

	res, err := Extract(prev, cur, tensor.Meta{Name: "relu", Kind: tensor.ReLU}, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Interactions) != 2 {
		t.Fatalf("expected 2 interactions, got %v", res.Interactions)
	}
	if res.Interactions[0].Source != 1 || res.Interactions[1].Source != 2 {
		t.Errorf("unexpected interactions %v", res.Interactions)
	}
	if res.Field != nil {
		t.Error("flat relu should not produce a field")
	}
}

func TestReLUImage(t *testing.T) {
	prev := snap(t, "conv", []int{1, 1, 1, 2}, []float32{-1, 2})
	cur := snap(t, "relu", []int{1, 1, 1, 2}, []float32{0, 2})

	res, err := Extract(prev, cur, tensor.Meta{Name: "relu", Kind: tensor.ReLU}, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Field == nil || len(res.Interactions) != 0 {
		t.Fatalf("expected a dense field, got %+v", res)
	}
	if res.Field.Values[0] != 1 || res.Field.Values[1] != 0 || res.Field.Scaling != 1 {
		t.Errorf("unexpected field %+v", res.Field)
	}
}

func TestReLUShapeMismatch(t *testing.T) {
	prev := snap(t, "a", []int{1, 3}, []float32{1, 2, 3})
	cur := snap(t, "b", []int{1, 2}, []float32{1, 2})
	for _, kind := range []tensor.Kind{tensor.ReLU, tensor.LRN, tensor.DropOut} {
		_, err := Extract(prev, cur, tensor.Meta{Name: "b", Kind: kind}, DefaultOptions())
		if !errors.Is(err, tensor.ErrShapeMismatch) {
			t.Errorf("%v: expected ErrShapeMismatch, got %v", kind, err)
		}
	}
}

func TestNormalizationRatios(t *testing.T) {
	got := NormalizationRatios([]float32{0, 2, 4}, []float32{0, 1, 2})
	want := []float32{0, float32(math.Log(2)), float32(math.Log(2))}
	for i := range want {
		if math.Abs(float64(got[i]-want[i])) > 1e-6 {
			t.Errorf("index %d: got %v, want %v", i, got[i], want[i])
		}
	}

	flipped := NormalizationRatios([]float32{-1, 3}, []float32{1, 0})
	if flipped[0] != 0 || flipped[1] != 0 {
		t.Errorf("expected neutral values, got %v", flipped)
	}
}

func TestLRN(t *testing.T) {
	prev := snap(t, "relu", []int{1, 3}, []float32{0, 2, 4})
	cur := snap(t, "norm", []int{1, 3}, []float32{0, 1, 2})

	res, err := Extract(prev, cur, tensor.Meta{Name: "norm", Kind: tensor.LRN}, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Interactions) != 3 {
		t.Fatalf("expected 3 interactions, got %v", res.Interactions)
	}
	if res.Interactions[0].Strength != 0 {
		t.Errorf("0/0 should become a neutral ratio, got %v", res.Interactions[0].Strength)
	}

	img := snap(t, "norm", []int{1, 1, 1, 3}, []float32{0, 1, 2})
	prevImg := snap(t, "relu", []int{1, 1, 1, 3}, []float32{0, 2, 4})
	res, err = Extract(prevImg, img, tensor.Meta{Name: "norm", Kind: tensor.LRN}, DefaultOptions())
	if err != nil || res.Field == nil {
		t.Fatalf("expected field, got %+v %v", res, err)
	}
}

func TestSoftmax(t *testing.T) {
	prev := snap(t, "fc", []int{1, 3}, []float32{0, 0, 0})
	cur := snap(t, "prob", []int{1, 3}, []float32{1, 3, 1})

	res, err := Extract(prev, cur, tensor.Meta{Name: "prob", Kind: tensor.Softmax}, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []float32{0, 1, 0}
	for i, it := range res.Interactions {
		if it.Strength != want[i] || it.Source != i || it.Sink != i {
			t.Errorf("interaction %d: got %+v", i, it)
		}
	}

	img := snap(t, "prob", []int{1, 1, 1, 3}, []float32{1, 2, 3})
	_, err = Extract(img, img, tensor.Meta{Name: "prob", Kind: tensor.Softmax}, DefaultOptions())
	if !errors.Is(err, tensor.ErrUnsupportedShape) {
		t.Errorf("expected ErrUnsupportedShape, got %v", err)
	}
}

func TestPooling(t *testing.T) {
	prev := snap(t, "conv", []int{1, 2, 4, 4}, make([]float32, 32))
	cur := snap(t, "pool", []int{1, 2, 2, 2}, make([]float32, 8))

	res, err := Extract(prev, cur, tensor.Meta{Name: "pool", Kind: tensor.Pooling}, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Field == nil || res.Field.Scaling != 0.5 {
		t.Fatalf("expected scaling 0.5, got %+v", res.Field)
	}

	bad := snap(t, "pool", []int{1, 3, 2, 2}, make([]float32, 12))
	_, err = Extract(prev, bad, tensor.Meta{Name: "pool", Kind: tensor.Pooling}, DefaultOptions())
	if !errors.Is(err, tensor.ErrShapeMismatch) {
		t.Errorf("expected ErrShapeMismatch, got %v", err)
	}
}

func TestOtherKindsAreEmpty(t *testing.T) {
	s := snap(t, "x", []int{1, 2}, []float32{1, 2})
	for _, kind := range []tensor.Kind{tensor.Input, tensor.Convolutional, tensor.Split, tensor.Other} {
		res, err := Extract(s, s, tensor.Meta{Kind: kind}, DefaultOptions())
		if err != nil || !res.Empty() {
			t.Errorf("%v: expected empty result, got %+v %v", kind, res, err)
		}
	}
}

func TestRescale(t *testing.T) {
	v := []float32{2, 4, 6}
	Rescale(v, 0, 1)
	if v[0] != 0 || v[1] != 0.5 || v[2] != 1 {
		t.Errorf("unexpected rescale %v", v)
	}

	c := []float32{3, 3}
	Rescale(c, -1, 1)
	if c[0] != -1 || c[1] != -1 {
		t.Errorf("constant input should map to lo, got %v", c)
	}
}

func TestChannelMeans(t *testing.T) {
	f := &DenseField{Values: []float32{1, 3, -2, -4}, Shape: []int{1, 2, 1, 2}}
	m := f.ChannelMeans()
	if m[0] != 2 || m[1] != -3 {
		t.Errorf("unexpected means %v", m)
	}
}

func TestParallelFor(t *testing.T) {
	var total int64
	seen := make([]int32, 1000)
	ParallelFor(len(seen), 10, 4, func(start, end int) {
		for i := start; i < end; i++ {
			atomic.AddInt32(&seen[i], 1)
			atomic.AddInt64(&total, 1)
		}
	})
	if total != 1000 {
		t.Errorf("expected 1000 iterations, got %d", total)
	}
	for i, n := range seen {
		if n != 1 {
			t.Fatalf("index %d visited %d times", i, n)
		}
	}
}
