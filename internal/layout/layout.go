// Package layout computes where the nodes of a layer sit in 3D space.
package layout

import (
	"fmt"
	"math"

	"github.com/san-kum/fmriviz/internal/tensor"
)

// Placement selects how nodes are arranged in the layer plane.
type Placement int

const (
	// Line puts every node on the z axis.
	Line Placement = iota
	// Square arranges nodes in a grid of Columns(n) columns.
	Square
)

const (
	FlatSpacing  = 2.0
	ImageSpacing = 3.0
)

// Layout holds one xyz triple per node.
type Layout struct {
	Count     int
	Positions []float64
}

// Build places count nodes. All nodes share x = 0; the layer offset is
// applied by the animation, not the layout.
func Build(count int, placement Placement, spacing float64) (*Layout, error) {
	if count <= 0 {
		return nil, tensor.ErrEmptyLayout
	}

	l := &Layout{Count: count, Positions: make([]float64, 3*count)}
	switch placement {
	case Line:
		for i := 0; i < count; i++ {
			l.Positions[3*i+2] = -spacing * float64(i)
		}
	case Square:
		cols := Columns(count)
		for i := 0; i < count; i++ {
			l.Positions[3*i+1] = spacing * float64(i/cols)
			l.Positions[3*i+2] = -spacing * float64(i%cols)
		}
	default:
		return nil, fmt.Errorf("layout: unknown placement %d", placement)
	}
	return l, nil
}

// Columns returns the smallest divisor of n that is at least ceil(sqrt(n)).
func Columns(n int) int {
	if n <= 0 {
		return 0
	}
	c := int(math.Ceil(math.Sqrt(float64(n))))
	for n%c != 0 {
		c++
	}
	return c
}

func (l *Layout) Len() int { return l.Count }

func (l *Layout) Position(i int) [3]float64 {
	return [3]float64{l.Positions[3*i], l.Positions[3*i+1], l.Positions[3*i+2]}
}

// Bounds returns the axis aligned box enclosing all nodes.
func (l *Layout) Bounds() (lo, hi [3]float64) {
	for k := 0; k < 3; k++ {
		lo[k], hi[k] = math.Inf(1), math.Inf(-1)
	}
	for i := 0; i < l.Count; i++ {
		p := l.Position(i)
		for k := 0; k < 3; k++ {
			lo[k] = math.Min(lo[k], p[k])
			hi[k] = math.Max(hi[k], p[k])
		}
	}
	return lo, hi
}

// Normalizer is the number of tensor entries that map to one node:
// 1 for a flat layer and H*W for an image layer, where each channel is
// one node.
func Normalizer(shape []int) (int, error) {
	switch len(shape) {
	case 2:
		return 1, nil
	case 4:
		return shape[2] * shape[3], nil
	default:
		return 0, fmt.Errorf("%w: rank %d", tensor.ErrUnsupportedShape, len(shape))
	}
}

// NodeCount is the number of nodes a layer with the given shape draws.
func NodeCount(shape []int) (int, error) {
	norm, err := Normalizer(shape)
	if err != nil {
		return 0, err
	}
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n / norm, nil
}
