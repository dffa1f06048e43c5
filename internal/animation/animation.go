// Package animation turns interactions between two layers into vertex
// buffers that move from the previous layer to the next.
package animation

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/fmriviz/internal/interaction"
	"github.com/san-kum/fmriviz/internal/layout"
	"github.com/san-kum/fmriviz/internal/tensor"
)

const (
	// DefaultLayerSpacing is the x distance between consecutive layers.
	DefaultLayerSpacing = -10.0

	epsilon = 1e-6
)

// Animation moves each vertex from Start to Start+Delta as t goes 0 to 1.
// Colors holds one color per vertex. When Tiles is set, vertices come in
// groups of four forming a quad.
type Animation struct {
	Start  []float64
	Delta  []float64
	Colors []Color
	Paths  []uint32
	Tiles  bool
}

// Len is the number of animated vertices.
func (a *Animation) Len() int { return len(a.Start) / 3 }

// At returns a new buffer holding the vertex positions at time t.
func (a *Animation) At(t float64) []float64 {
	return a.AtInto(nil, t)
}

// AtInto writes the positions at time t into dst, growing it if needed,
// and returns it. a is never written, so concurrent calls are safe as long
// as each caller owns its dst.
func (a *Animation) AtInto(dst []float64, t float64) []float64 {
	n := len(a.Start)
	if cap(dst) < n {
		dst = make([]float64, n)
	}
	dst = dst[:n]
	if n == 0 {
		return dst
	}
	return floats.AddScaledTo(dst, a.Start, t, a.Delta)
}

// PathVertices returns the start positions followed by the end positions,
// the buffer Paths indexes into.
func (a *Animation) PathVertices() []float64 {
	out := make([]float64, 2*len(a.Start))
	copy(out, a.Start)
	floats.AddTo(out[len(a.Start):], a.Start, a.Delta)
	return out
}

type BuildOptions struct {
	// InteractionAlpha replaces the alpha of every computed color.
	InteractionAlpha float32
	// Paths adds a (start, end) index pair per interaction.
	Paths bool
}

func DefaultBuildOptions() BuildOptions {
	return BuildOptions{InteractionAlpha: 1}
}

// FromInteractions builds a point animation with one vertex per
// interaction, from its source node in prev to its sink node in cur
// shifted spacing along x.
func FromInteractions(list []interaction.Interaction, prev, cur *layout.Layout, spacing float64, policy ColorPolicy, opts BuildOptions) (*Animation, error) {
	if policy == nil {
		policy = SignPolicy(Green, Red)
	}

	n := len(list)
	a := &Animation{
		Start:  make([]float64, 0, 3*n),
		Delta:  make([]float64, 0, 3*n),
		Colors: make([]Color, 0, n),
	}

	for _, it := range list {
		if it.Source < 0 || it.Source >= prev.Len() || it.Sink < 0 || it.Sink >= cur.Len() {
			return nil, fmt.Errorf("%w: interaction %d -> %d with layouts of %d and %d nodes",
				tensor.ErrIndexOutOfRange, it.Source, it.Sink, prev.Len(), cur.Len())
		}
		from := prev.Position(it.Source)
		to := cur.Position(it.Sink)
		to[0] += spacing

		a.Start = append(a.Start, from[0], from[1], from[2])
		a.Delta = append(a.Delta, to[0]-from[0], to[1]-from[1], to[2]-from[2])
		a.Colors = append(a.Colors, policy(it.Strength))
	}

	patchAlpha(a.Colors, opts.InteractionAlpha)

	if opts.Paths {
		a.Paths = make([]uint32, 0, 2*n)
		for i := 0; i < n; i++ {
			a.Paths = append(a.Paths, uint32(i), uint32(i+n))
		}
	}
	return a, nil
}

// FromDenseField builds a tile animation. Every channel tile of the
// previous layer moves rigidly onto the matching tile of the current
// layer, scaled by the field's scaling. The x delta is always spacing.
// Tiles are colored by the mean of the field over their channel.
func FromDenseField(field *interaction.DenseField, prevPositions, curPositions []float64, spacing float64, policy ColorPolicy, alpha float32) (*Animation, error) {
	tiles := len(prevPositions) / 3
	if len(curPositions) != len(prevPositions) {
		return nil, fmt.Errorf("%w: %d tiles animate onto %d",
			tensor.ErrShapeMismatch, tiles, len(curPositions)/3)
	}
	if field.Channels() != tiles {
		return nil, fmt.Errorf("%w: field has %d channels for %d tiles",
			tensor.ErrShapeMismatch, field.Channels(), tiles)
	}
	if policy == nil {
		policy = SignPolicy(Green, Red)
	}

	start := layout.TileVertices(prevPositions, 1)
	target := layout.TileVertices(curPositions, field.Scaling)
	delta := make([]float64, len(start))
	floats.SubTo(delta, target, start)
	for i := 0; i < len(delta); i += 3 {
		delta[i] = spacing
	}

	colors := make([]Color, 0, 4*tiles)
	for _, mean := range field.ChannelMeans() {
		c := policy(mean)
		colors = append(colors, c, c, c, c)
	}
	patchAlpha(colors, alpha)

	return &Animation{Start: start, Delta: delta, Colors: colors, Tiles: true}, nil
}

func patchAlpha(colors []Color, alpha float32) {
	for i := range colors {
		colors[i][3] = alpha
	}
}
