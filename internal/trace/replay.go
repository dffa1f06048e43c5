package trace

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/openfluke/loom/nn"

	"github.com/san-kum/fmriviz/internal/tensor"
)

// Replay serves activations recorded to safetensors files.
type Replay struct {
	manifest *Manifest
	dir      string
	meta     map[string]tensor.Meta
}

// Open reads the manifest at path and loads its weights.
func Open(path string) (*Replay, error) {
	m, err := LoadManifest(path)
	if err != nil {
		return nil, err
	}
	r := &Replay{manifest: m, dir: filepath.Dir(path)}
	if err := r.loadMeta(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Replay) loadMeta() error {
	var weights map[string][]float32
	if r.manifest.Weights != "" {
		var err error
		weights, err = nn.LoadSafetensors(filepath.Join(r.dir, r.manifest.Weights))
		if err != nil {
			return fmt.Errorf("load weights: %w", err)
		}
	}

	r.meta = make(map[string]tensor.Meta, len(r.manifest.Layers))
	for _, l := range r.manifest.Layers {
		meta := tensor.Meta{Name: l.Name, Kind: tensor.ParseKind(l.Type)}
		for _, p := range l.Params {
			data, ok := weights[p.Tensor]
			if !ok {
				return tensor.Wrap(l.Name, meta.Kind, fmt.Errorf("%w: tensor %s not in weights",
					tensor.ErrMissingParameters, p.Tensor))
			}
			if want := product(p.Shape); want != len(data) {
				return tensor.Wrap(l.Name, meta.Kind, fmt.Errorf("%w: tensor %s has %d values, shape %v needs %d",
					tensor.ErrShapeMismatch, p.Tensor, len(data), p.Shape, want))
			}
			meta.Params = append(meta.Params, tensor.Param{Shape: append([]int(nil), p.Shape...), Data: data})
		}
		r.meta[l.Name] = meta
	}
	return nil
}

func (r *Replay) Manifest() *Manifest { return r.manifest }

func (r *Replay) LayerMeta() map[string]tensor.Meta { return r.meta }

// Simulate loads the activations recorded for input, one tensor per layer
// in manifest order.
func (r *Replay) Simulate(ctx context.Context, input string) ([]*tensor.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := r.manifest.ActivationPath(r.dir, input)
	recorded, err := nn.LoadSafetensors(path)
	if err != nil {
		return nil, fmt.Errorf("load activations for %s: %w", input, err)
	}

	snaps := make([]*tensor.Snapshot, 0, len(r.manifest.Layers))
	for _, l := range r.manifest.Layers {
		data, ok := recorded[l.Name]
		if !ok {
			return nil, fmt.Errorf("%s: no activations for layer %s", path, l.Name)
		}
		s, err := tensor.NewSnapshot(l.Name, l.Shape, data)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, s)
	}
	return snaps, nil
}

func product(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}
