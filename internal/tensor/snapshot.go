package tensor

import (
	"fmt"
	"math"
)

// Snapshot is the activation tensor of one layer for one input sample.
type Snapshot struct {
	Name  string
	Shape []int
	Data  []float32
}

// NewSnapshot copies shape and data into a new snapshot. The element
// count must equal the product of the shape.
func NewSnapshot(name string, shape []int, data []float32) (*Snapshot, error) {
	if n := product(shape); n != len(data) {
		return nil, fmt.Errorf("%w: %s has shape %v (%d entries) but %d values",
			ErrShapeMismatch, name, shape, n, len(data))
	}
	s := &Snapshot{
		Name:  name,
		Shape: append([]int(nil), shape...),
		Data:  make([]float32, len(data)),
	}
	copy(s.Data, data)
	return s, nil
}

func (s *Snapshot) NumEntries() int { return len(s.Data) }

func (s *Snapshot) Rank() int { return len(s.Shape) }

// Channels returns C for a rank 4 tensor and 1 otherwise.
func (s *Snapshot) Channels() int {
	if s.Rank() == 4 {
		return s.Shape[1]
	}
	return 1
}

func (s *Snapshot) Height() int {
	if s.Rank() == 4 {
		return s.Shape[2]
	}
	return 1
}

func (s *Snapshot) Width() int {
	if s.Rank() == 4 {
		return s.Shape[3]
	}
	return s.NumEntries()
}

func (s *Snapshot) At(i int) float32 { return s.Data[i] }

// Bounds returns the smallest and largest finite values.
func (s *Snapshot) Bounds() (lo, hi float32) {
	lo, hi = float32(math.Inf(1)), float32(math.Inf(-1))
	for _, v := range s.Data {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			continue
		}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if lo > hi {
		return 0, 0
	}
	return lo, hi
}

// Param is one parameter tensor of a layer, such as a weight matrix.
type Param struct {
	Shape []int
	Data  []float32
}

func (p Param) NumEntries() int { return len(p.Data) }

// Meta describes a layer independent of any input sample.
type Meta struct {
	Name   string
	Kind   Kind
	Params []Param
}

func product(shape []int) int {
	if len(shape) == 0 {
		return 0
	}
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}
