// Package export renders scenes to SVG.
package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/san-kum/fmriviz/internal/animation"
	"github.com/san-kum/fmriviz/internal/scene"
	"github.com/san-kum/fmriviz/internal/viz"
)

const background = "#0a0a0a"

func header(sb *strings.Builder, width, height float64) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background)
}

// fill splits a color into an SVG color and opacity.
func fill(c animation.Color) (string, float32) {
	return c.Hex()[:7], c[3]
}

// CanvasToSVG converts a Braille canvas to SVG format, one dot per set
// sub-pixel in its cell color.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	pw, ph := canvas.PixelSize()
	var sb strings.Builder
	header(&sb, float64(pw)*scale, float64(ph)*scale)

	pixelMap := [4][2]int{
		{0x01, 0x08},
		{0x02, 0x10},
		{0x04, 0x20},
		{0x40, 0x80},
	}
	dotRadius := scale * 0.4

	for row := 0; row < canvas.Height; row++ {
		for col := 0; col < canvas.Width; col++ {
			r := canvas.Grid[row][col]
			if r <= 0x2800 {
				continue
			}
			pattern := int(r - 0x2800)
			color := canvas.Colors[row][col]
			if color == "" {
				color = "#ffffff"
			}

			baseX := float64(col) * scale * 2
			baseY := float64(row) * scale * 4
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&pixelMap[dy][dx] != 0 {
						fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>
`, baseX+float64(dx)*scale+scale/2, baseY+float64(dy)*scale+scale/2, dotRadius, color)
					}
				}
			}
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}

type shape struct {
	depth float64
	svg   string
}

// FrameToSVG projects a frame through cam onto a width x height image.
// Shapes are painted back to front.
func FrameToSVG(f *scene.Frame, cam *viz.Camera, width, height int) string {
	var sb strings.Builder
	header(&sb, float64(width), float64(height))
	if f == nil || cam == nil {
		sb.WriteString("</svg>")
		return sb.String()
	}

	var shapes []shape
	project := func(v scene.Vertex) (int, int, float64, bool) {
		return cam.Project(viz.Vec3{X: v.Pos[0], Y: v.Pos[1], Z: v.Pos[2]}, width, height)
	}
	polygon := func(q scene.Quad, filled bool) {
		var pts []string
		depth, visible := 0.0, false
		for _, v := range q {
			x, y, d, ok := project(v)
			visible = visible || ok
			depth += d / 4
			pts = append(pts, fmt.Sprintf("%d,%d", x, y))
		}
		if !visible {
			return
		}
		color, alpha := fill(q[0].Color)
		attrs := fmt.Sprintf(`fill="%s" fill-opacity="%.2f"`, color, alpha)
		if !filled {
			attrs = fmt.Sprintf(`fill="none" stroke="%s" stroke-opacity="%.2f"`, color, alpha)
		}
		shapes = append(shapes, shape{depth, fmt.Sprintf(`<polygon points="%s" %s/>`, strings.Join(pts, " "), attrs)})
	}
	circle := func(v scene.Vertex, r float64) {
		x, y, d, ok := project(v)
		if !ok {
			return
		}
		color, alpha := fill(v.Color)
		shapes = append(shapes, shape{d, fmt.Sprintf(`<circle cx="%d" cy="%d" r="%.1f" fill="%s" fill-opacity="%.2f"/>`, x, y, r, color, alpha)})
	}

	for _, q := range f.Tiles {
		polygon(q, true)
	}
	for _, v := range f.Nodes {
		circle(v, 2)
	}
	for _, p := range f.Paths {
		x1, y1, d1, ok1 := project(p[0])
		x2, y2, d2, ok2 := project(p[1])
		if ok1 || ok2 {
			color, alpha := fill(p[0].Color)
			shapes = append(shapes, shape{(d1 + d2) / 2, fmt.Sprintf(`<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="%s" stroke-opacity="%.2f"/>`,
				x1, y1, x2, y2, color, alpha)})
		}
	}
	for _, q := range f.MovingTiles {
		polygon(q, false)
	}
	for _, v := range f.Particles {
		circle(v, 1.5)
	}

	sort.SliceStable(shapes, func(i, j int) bool { return shapes[i].depth < shapes[j].depth })
	for _, s := range shapes {
		sb.WriteString(s.svg + "\n")
	}
	sb.WriteString("</svg>")
	return sb.String()
}

// StrengthsToSVG plots ranked interaction strengths as a polyline.
func StrengthsToSVG(strengths []float32, width, height int, strokeColor string) string {
	if len(strengths) < 2 {
		return ""
	}

	minY, maxY := float64(strengths[0]), float64(strengths[0])
	for _, s := range strengths {
		minY = min(minY, float64(s))
		maxY = max(maxY, float64(s))
	}

	rangeY := maxY - minY
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeY = maxY - minY

	var sb strings.Builder
	header(&sb, float64(width), float64(height))
	fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, strokeColor)

	last := float64(len(strengths) - 1)
	for i, s := range strengths {
		x := float64(i) / last * float64(width)
		y := float64(height) - (float64(s)-minY)/rangeY*float64(height)
		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
