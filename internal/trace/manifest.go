// Package trace provides simulators that replay recorded activations
// instead of running a network.
package trace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/fmriviz/internal/tensor"
)

const inputPlaceholder = "{input}"

// Manifest describes a recorded network. Paths are relative to the
// manifest file.
type Manifest struct {
	Name    string `yaml:"name"`
	Weights string `yaml:"weights"`
	// Activations is a path template; {input} is replaced by the input name.
	Activations string      `yaml:"activations"`
	Inputs      []string    `yaml:"inputs,omitempty"`
	Layers      []LayerSpec `yaml:"layers"`
}

type LayerSpec struct {
	Name   string      `yaml:"name"`
	Type   string      `yaml:"type"`
	Shape  []int       `yaml:"shape"`
	Params []ParamSpec `yaml:"params,omitempty"`
}

// ParamSpec names a tensor in the weights file.
type ParamSpec struct {
	Tensor string `yaml:"tensor"`
	Shape  []int  `yaml:"shape"`
}

func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m := &Manifest{}
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

func SaveManifest(path string, m *Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (m *Manifest) Validate() error {
	if len(m.Layers) == 0 {
		return fmt.Errorf("manifest has no layers")
	}
	if !strings.Contains(m.Activations, inputPlaceholder) {
		return fmt.Errorf("activations path %q lacks %s", m.Activations, inputPlaceholder)
	}
	seen := make(map[string]bool, len(m.Layers))
	for _, l := range m.Layers {
		if l.Name == "" {
			return fmt.Errorf("layer without a name")
		}
		if seen[l.Name] {
			return fmt.Errorf("duplicate layer %s", l.Name)
		}
		seen[l.Name] = true
		if len(l.Shape) == 0 {
			return fmt.Errorf("%w: layer %s has no shape", tensor.ErrUnsupportedShape, l.Name)
		}
		if len(l.Params) > 0 && m.Weights == "" {
			return fmt.Errorf("layer %s has params but no weights file is set", l.Name)
		}
	}
	return nil
}

// ActivationPath resolves the activation file for input against dir.
func (m *Manifest) ActivationPath(dir, input string) string {
	p := strings.ReplaceAll(m.Activations, inputPlaceholder, input)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}
