package viz

import (
	"math"

	"github.com/san-kum/fmriviz/internal/scene"
)

type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) Add(o Vec3) Vec3      { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3      { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

func vec(p [3]float64) Vec3 { return Vec3{p[0], p[1], p[2]} }

// Camera projects world space onto the canvas. Fit frames a bounding box
// into the unit cube the projection expects.
type Camera struct {
	Target     Vec3
	Scale      float64
	Distance   float64
	Near       float64
	RotX, RotY float64
	Zoom       float64
}

func NewCamera() *Camera {
	return &Camera{Scale: 1, Distance: 50, Near: 0.1, RotX: 0.25, RotY: 0.6, Zoom: 1.0}
}

func (c *Camera) RotateX(a float64) { c.RotX += a }
func (c *Camera) RotateY(a float64) { c.RotY += a }
func (c *Camera) ZoomIn()           { c.Zoom = math.Min(10, c.Zoom*1.2) }
func (c *Camera) ZoomOut()          { c.Zoom = math.Max(0.1, c.Zoom/1.2) }

// Fit centers the camera on the box [lo, hi] and scales its largest side
// to 2 units.
func (c *Camera) Fit(lo, hi [3]float64) {
	c.Target = vec(lo).Add(vec(hi)).Scale(0.5)
	extent := math.Max(hi[0]-lo[0], math.Max(hi[1]-lo[1], hi[2]-lo[2]))
	c.Scale = 1
	if extent > 0 {
		c.Scale = 2 / extent
	}
}

// ViewFrom places a perspective eye in front of and slightly above the box
// [lo, hi], far enough back to see all of it.
func ViewFrom(lo, hi [3]float64) (position, target Vec3) {
	target = vec(lo).Add(vec(hi)).Scale(0.5)
	extent := math.Max(hi[0]-lo[0], math.Max(hi[1]-lo[1], hi[2]-lo[2]))
	if extent <= 0 {
		extent = 10
	}
	return target.Add(Vec3{0.3 * extent, 0.4 * extent, 1.2 * extent}), target
}

// RotatePoint rotates a point around the camera's axes.
func (c *Camera) RotatePoint(p Vec3) Vec3 {
	cx, sx := math.Cos(c.RotX), math.Sin(c.RotX)
	p.Y, p.Z = p.Y*cx-p.Z*sx, p.Y*sx+p.Z*cx
	cy, sy := math.Cos(c.RotY), math.Sin(c.RotY)
	p.X, p.Z = p.X*cy+p.Z*sy, -p.X*sy+p.Z*cy
	return p
}

// Project converts world coordinates to screen coordinates of a sw x sh
// surface. Returns x, y, depth, and visibility.
func (c *Camera) Project(p Vec3, sw, sh int) (int, int, float64, bool) {
	rot := c.RotatePoint(p.Sub(c.Target).Scale(c.Scale)).Scale(c.Zoom)
	if rot.Z >= c.Distance-c.Near {
		return 0, 0, 0, false
	}
	scale := c.Distance / (c.Distance - rot.Z)
	pScale := math.Min(float64(sw), float64(sh)) / 3.0
	sx := int(rot.X*scale*pScale) + sw/2
	sy := int(-rot.Y*scale*pScale) + sh/2
	return sx, sy, rot.Z, sx >= 0 && sx < sw && sy >= 0 && sy < sh
}

// DrawFrame draws static layers first, then paths, then the animated
// interactions on top.
func DrawFrame(c *Canvas, f *scene.Frame, cam *Camera) {
	if c == nil || f == nil || cam == nil {
		return
	}
	sw, sh := c.PixelSize()

	point := func(v scene.Vertex, size int) {
		x, y, _, ok := cam.Project(vec(v.Pos), sw, sh)
		if !ok {
			return
		}
		for dy := 0; dy < size; dy++ {
			for dx := 0; dx < size; dx++ {
				c.Plot(x+dx, y+dy, hexRGB(v))
			}
		}
	}
	line := func(a, b scene.Vertex) {
		x1, y1, _, v1 := cam.Project(vec(a.Pos), sw, sh)
		x2, y2, _, v2 := cam.Project(vec(b.Pos), sw, sh)
		if v1 || v2 {
			c.DrawLine(x1, y1, x2, y2, hexRGB(a))
		}
	}
	quad := func(q scene.Quad) {
		for i := range q {
			line(q[i], q[(i+1)%4])
		}
	}

	for _, q := range f.Tiles {
		quad(q)
	}
	for _, v := range f.Nodes {
		point(v, 1)
	}
	for _, p := range f.Paths {
		line(p[0], p[1])
	}
	for _, q := range f.MovingTiles {
		quad(q)
	}
	for _, v := range f.Particles {
		point(v, 2)
	}
}

func hexRGB(v scene.Vertex) string {
	return v.Color.Hex()[:7]
}
