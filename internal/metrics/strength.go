package metrics

import "math"

type Count struct {
	n int
}

func NewCount() *Count { return &Count{} }

func (c *Count) Name() string { return "count" }

func (c *Count) Observe(float32) { c.n++ }

func (c *Count) Value() float64 { return float64(c.n) }

func (c *Count) Reset() { c.n = 0 }

// MeanStrength is the mean magnitude of the observed strengths.
type MeanStrength struct {
	total   float64
	samples int
}

func NewMeanStrength() *MeanStrength { return &MeanStrength{} }

func (m *MeanStrength) Name() string { return "mean" }

func (m *MeanStrength) Observe(s float32) {
	m.total += math.Abs(float64(s))
	m.samples++
}

func (m *MeanStrength) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.total / float64(m.samples)
}

func (m *MeanStrength) Reset() {
	m.total = 0
	m.samples = 0
}

// PeakStrength is the largest observed magnitude.
type PeakStrength struct {
	peak float64
}

func NewPeakStrength() *PeakStrength { return &PeakStrength{} }

func (p *PeakStrength) Name() string { return "peak" }

func (p *PeakStrength) Observe(s float32) {
	p.peak = math.Max(p.peak, math.Abs(float64(s)))
}

func (p *PeakStrength) Value() float64 { return p.peak }

func (p *PeakStrength) Reset() { p.peak = 0 }

// Excitation is the fraction of strengths that are positive.
type Excitation struct {
	positive int
	samples  int
}

func NewExcitation() *Excitation { return &Excitation{} }

func (e *Excitation) Name() string { return "excitation" }

func (e *Excitation) Observe(s float32) {
	e.samples++
	if s > 0 {
		e.positive++
	}
}

func (e *Excitation) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return float64(e.positive) / float64(e.samples)
}

func (e *Excitation) Reset() {
	e.positive = 0
	e.samples = 0
}
