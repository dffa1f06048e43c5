// Package metrics summarizes the interactions animated between layers.
package metrics

import "github.com/san-kum/fmriviz/internal/scene"

// Metric accumulates one statistic over observed interaction strengths.
type Metric interface {
	Name() string
	Observe(strength float32)
	Value() float64
	Reset()
}

// Defaults returns a fresh instance of every metric.
func Defaults() []Metric {
	return []Metric{
		NewCount(),
		NewMeanStrength(),
		NewPeakStrength(),
		NewExcitation(),
	}
}

// LayerSummary holds the metric values for one animated layer.
type LayerSummary struct {
	Layer  string             `json:"layer"`
	Kind   string             `json:"kind"`
	Values map[string]float64 `json:"values"`
}

// Summarize runs the default metrics over every animated layer of r.
func Summarize(r *scene.SampleResult) []LayerSummary {
	var out []LayerSummary
	for _, e := range r.Layers {
		if e.Animation == nil {
			continue
		}
		out = append(out, LayerSummary{
			Layer:  e.Visualization.Name,
			Kind:   e.Visualization.Kind.String(),
			Values: Observe(e.Strengths, Defaults()...),
		})
	}
	return out
}

// Observe feeds strengths to each metric and collects the values by name.
func Observe(strengths []float32, ms ...Metric) map[string]float64 {
	values := make(map[string]float64, len(ms))
	for _, m := range ms {
		m.Reset()
		for _, s := range strengths {
			m.Observe(s)
		}
		values[m.Name()] = m.Value()
	}
	return values
}
