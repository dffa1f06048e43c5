package scene

import (
	"math"

	"github.com/san-kum/fmriviz/internal/animation"
	"github.com/san-kum/fmriviz/internal/config"
)

// Vertex is a world space position with its color.
type Vertex struct {
	Pos   [3]float64
	Color animation.Color
}

// Quad is a tile given by its four corners in drawing order.
type Quad [4]Vertex

// Frame is everything visible at one animation phase, in world space.
// Layer i sits at x = i * LayerSpacing.
type Frame struct {
	Nodes []Vertex
	Tiles []Quad
	// Particles and MovingTiles are the animated interactions.
	Particles   []Vertex
	MovingTiles []Quad
	Paths       [][2]Vertex
}

// Compose lays out every layer of r and evaluates its animations at phase.
// pool may be nil.
func Compose(r *SampleResult, opts *config.Options, phase float64, pool *animation.FramePool) *Frame {
	f := &Frame{}
	for i, e := range r.Layers {
		v := e.Visualization
		offset := float64(i) * opts.LayerSpacing
		if v != nil && v.Layout != nil {
			f.addLayer(v, offset, opts.ActiveOnly)
		}
		if e.Animation != nil && i > 0 {
			f.addAnimation(e.Animation, offset-opts.LayerSpacing, phase, opts.PathColor.RGBA(), pool)
		}
	}
	return f
}

func (f *Frame) addLayer(v *LayerVisualization, offset float64, activeOnly bool) {
	visible := func(int) bool { return true }
	if activeOnly {
		active := make(map[int]bool, len(v.Active))
		for _, i := range v.Active {
			active[i] = true
		}
		visible = func(i int) bool { return active[i] }
	}

	if len(v.Tiles) > 0 {
		for k := 0; k < len(v.Tiles)/12; k++ {
			if !visible(k) || k >= len(v.NodeColors) {
				continue
			}
			f.Tiles = append(f.Tiles, quad(v.Tiles[12*k:12*k+12], offset, func(int) animation.Color {
				return v.NodeColors[k]
			}))
		}
		return
	}

	for i := 0; i < v.Layout.Len(); i++ {
		if !visible(i) || i >= len(v.NodeColors) {
			continue
		}
		p := v.Layout.Position(i)
		p[0] += offset
		f.Nodes = append(f.Nodes, Vertex{Pos: p, Color: v.NodeColors[i]})
	}
}

func (f *Frame) addAnimation(a *animation.Animation, offset, phase float64, pathColor animation.Color, pool *animation.FramePool) {
	var pos []float64
	if pool != nil {
		buf := pool.Frame(a, phase)
		defer pool.Put(buf)
		pos = *buf
	} else {
		pos = a.At(phase)
	}

	if a.Tiles {
		for k := 0; k < len(pos)/12; k++ {
			f.MovingTiles = append(f.MovingTiles, quad(pos[12*k:12*k+12], offset, func(j int) animation.Color {
				return a.Colors[4*k+j]
			}))
		}
	} else {
		for i := 0; i < len(pos)/3; i++ {
			f.Particles = append(f.Particles, Vertex{
				Pos:   [3]float64{pos[3*i] + offset, pos[3*i+1], pos[3*i+2]},
				Color: a.Colors[i],
			})
		}
	}

	if len(a.Paths) == 0 {
		return
	}
	ends := a.PathVertices()
	at := func(i uint32) Vertex {
		return Vertex{
			Pos:   [3]float64{ends[3*i] + offset, ends[3*i+1], ends[3*i+2]},
			Color: pathColor,
		}
	}
	for j := 0; j+1 < len(a.Paths); j += 2 {
		f.Paths = append(f.Paths, [2]Vertex{at(a.Paths[j]), at(a.Paths[j+1])})
	}
}

func quad(corners []float64, offset float64, color func(int) animation.Color) Quad {
	var q Quad
	for j := 0; j < 4; j++ {
		q[j] = Vertex{
			Pos:   [3]float64{corners[3*j] + offset, corners[3*j+1], corners[3*j+2]},
			Color: color(j),
		}
	}
	return q
}

// Bounds returns the box spanned by the static geometry of the frame.
// An empty frame has zero bounds.
func (f *Frame) Bounds() (lo, hi [3]float64) {
	for i := range lo {
		lo[i], hi[i] = math.Inf(1), math.Inf(-1)
	}
	grow := func(p [3]float64) {
		for i := range p {
			lo[i] = math.Min(lo[i], p[i])
			hi[i] = math.Max(hi[i], p[i])
		}
	}
	for _, v := range f.Nodes {
		grow(v.Pos)
	}
	for _, q := range f.Tiles {
		for _, v := range q {
			grow(v.Pos)
		}
	}
	if math.IsInf(lo[0], 1) {
		return [3]float64{}, [3]float64{}
	}
	return lo, hi
}
