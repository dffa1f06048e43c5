package trace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

const (
	ManifestFile = "manifest.yaml"
	weightsFile  = "weights.safetensors"
)

// Record writes the synthetic network and its activations for inputs to
// dir as a trace that Open can replay. It returns the manifest path.
func Record(ctx context.Context, s *Synthetic, dir string, inputs []string) (string, error) {
	if err := os.MkdirAll(filepath.Join(dir, "activations"), 0755); err != nil {
		return "", err
	}

	if err := WriteSafetensors(filepath.Join(dir, weightsFile), s.Weights()); err != nil {
		return "", fmt.Errorf("write weights: %w", err)
	}

	m := &Manifest{
		Name:        "synthetic",
		Weights:     weightsFile,
		Activations: filepath.Join("activations", inputPlaceholder+".safetensors"),
		Inputs:      inputs,
		Layers:      s.Layers(),
	}

	for _, input := range inputs {
		snaps, err := s.Simulate(ctx, input)
		if err != nil {
			return "", err
		}
		tensors := make(map[string]Tensor, len(snaps))
		for _, snap := range snaps {
			tensors[snap.Name] = Tensor{Shape: snap.Shape, Data: snap.Data}
		}
		if err := WriteSafetensors(m.ActivationPath(dir, input), tensors); err != nil {
			return "", fmt.Errorf("write activations for %s: %w", input, err)
		}
	}

	path := filepath.Join(dir, ManifestFile)
	if err := SaveManifest(path, m); err != nil {
		return "", err
	}
	return path, nil
}
