// Package scene builds the render ready description of one input sample:
// a visualization per layer and an animation per layer transition.
package scene

import (
	"github.com/san-kum/fmriviz/internal/animation"
	"github.com/san-kum/fmriviz/internal/config"
	"github.com/san-kum/fmriviz/internal/layout"
	"github.com/san-kum/fmriviz/internal/tensor"
)

// Style selects how a layer is drawn.
type Style int

const (
	// Dummy layers occupy a slot but draw nothing.
	Dummy Style = iota
	// Flat layers draw one node per unit.
	Flat
	// Image layers draw one tile per channel.
	Image
	// InputImage draws the network input as a single composite tile.
	InputImage
)

func (s Style) String() string {
	switch s {
	case Flat:
		return "flat"
	case Image:
		return "image"
	case InputImage:
		return "input"
	default:
		return "dummy"
	}
}

// LayerVisualization holds everything a renderer needs to draw a layer at
// rest.
type LayerVisualization struct {
	Name  string
	Kind  tensor.Kind
	Style Style
	Shape []int

	// Layout is nil for Dummy layers.
	Layout *layout.Layout
	// NodeColors has one color per node for Flat layers and one per tile
	// otherwise.
	NodeColors []animation.Color
	// Active lists the nodes whose activation is not negligible.
	Active []int
	// Tiles holds four corner vertices per drawn tile.
	Tiles []float64
	// TexCoords maps each channel tile to its strip of a stacked channel
	// texture, four uv pairs per tile.
	TexCoords []float32
}

func (v *LayerVisualization) NodeCount() int {
	if v.Layout == nil {
		return 0
	}
	return v.Layout.Len()
}

// Positions returns the node positions, or nil for a Dummy layer.
func (v *LayerVisualization) Positions() []float64 {
	if v.Layout == nil {
		return nil
	}
	return v.Layout.Positions
}

// Visualize picks a style from the layer kind and snapshot rank and lays
// the layer out.
func Visualize(snap *tensor.Snapshot, meta tensor.Meta, opts *config.Options) (*LayerVisualization, error) {
	v := &LayerVisualization{
		Name:  snap.Name,
		Kind:  meta.Kind,
		Shape: append([]int(nil), snap.Shape...),
	}
	if snap.NumEntries() == 0 {
		return v, nil
	}

	var err error
	switch {
	case snap.Rank() == 4 && meta.Kind == tensor.Input:
		err = visualizeInput(v, snap, opts)
	case snap.Rank() == 4:
		err = visualizeImage(v, snap, opts)
	case snap.Rank() == 2:
		err = visualizeFlat(v, snap, opts)
	}
	if err != nil {
		return nil, tensor.Wrap(snap.Name, meta.Kind, err)
	}
	return v, nil
}

func visualizeFlat(v *LayerVisualization, snap *tensor.Snapshot, opts *config.Options) error {
	l, err := layout.Build(snap.NumEntries(), layout.Square, layout.FlatSpacing)
	if err != nil {
		return err
	}
	v.Style = Flat
	v.Layout = l

	lo, hi := snap.Bounds()
	policy := magnitude(opts, maxAbs(lo, hi))
	v.NodeColors = make([]animation.Color, snap.NumEntries())
	for i, x := range snap.Data {
		v.NodeColors[i] = policy(x).WithAlpha(opts.LayerOpacity)
		if abs32(x) > opts.Epsilon {
			v.Active = append(v.Active, i)
		}
	}
	return nil
}

func visualizeImage(v *LayerVisualization, snap *tensor.Snapshot, opts *config.Options) error {
	l, err := layout.Build(snap.Channels(), layout.Square, layout.ImageSpacing)
	if err != nil {
		return err
	}
	v.Style = Image
	v.Layout = l
	v.Tiles = layout.TileVertices(l.Positions, 1)
	v.TexCoords = layout.TileTexCoords(l.Len())
	v.NodeColors = channelColors(snap, opts)
	for ch, c := range channelMeans(snap) {
		if abs32(c) > opts.Epsilon {
			v.Active = append(v.Active, ch)
		}
	}
	return nil
}

// visualizeInput keeps a per channel layout so the next transition can
// animate channels, but draws one tile spanning the whole grid.
func visualizeInput(v *LayerVisualization, snap *tensor.Snapshot, opts *config.Options) error {
	l, err := layout.Build(snap.Channels(), layout.Square, layout.ImageSpacing)
	if err != nil {
		return err
	}
	v.Style = InputImage
	v.Layout = l

	lo, hi := l.Bounds()
	center := []float64{0, (lo[1] + hi[1]) / 2, (lo[2] + hi[2]) / 2}
	extent := maxf(hi[1]-lo[1], hi[2]-lo[2])/2 + 1
	v.Tiles = layout.TileVertices(center, extent)

	mean := float32(0)
	for _, c := range channelMeans(snap) {
		mean += c
	}
	mean /= float32(snap.Channels())
	v.NodeColors = []animation.Color{opts.NeutralColor.RGBA().WithAlpha(opts.LayerOpacity)}
	if abs32(mean) > opts.Epsilon {
		v.Active = []int{0}
	}
	return nil
}

func channelMeans(snap *tensor.Snapshot) []float32 {
	c := snap.Channels()
	per := snap.NumEntries() / c
	out := make([]float32, c)
	for ch := 0; ch < c; ch++ {
		var sum float64
		for _, x := range snap.Data[ch*per : (ch+1)*per] {
			sum += float64(x)
		}
		out[ch] = float32(sum / float64(per))
	}
	return out
}

func channelColors(snap *tensor.Snapshot, opts *config.Options) []animation.Color {
	means := channelMeans(snap)
	var limit float32
	for _, m := range means {
		limit = maxAbs(limit, m)
	}
	policy := magnitude(opts, limit)
	colors := make([]animation.Color, len(means))
	for i, m := range means {
		colors[i] = policy(m).WithAlpha(opts.LayerOpacity)
	}
	return colors
}

func magnitude(opts *config.Options, limit float32) animation.ColorPolicy {
	return animation.MagnitudePolicy(
		opts.PositiveColor.RGBA(),
		opts.NegativeColor.RGBA(),
		opts.NeutralColor.RGBA(),
		limit,
	)
}

func maxAbs(a, b float32) float32 {
	a, b = abs32(a), abs32(b)
	if a > b {
		return a
	}
	return b
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
