package gui

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/fmriviz/internal/animation"
	"github.com/san-kum/fmriviz/internal/viz"
)

func vector(p [3]float64) rl.Vector3 {
	return rl.NewVector3(float32(p[0]), float32(p[1]), float32(p[2]))
}

func toVector(v viz.Vec3) rl.Vector3 {
	return rl.NewVector3(float32(v.X), float32(v.Y), float32(v.Z))
}

// ToColor converts a [0, 1] RGBA color to raylib bytes.
func ToColor(c animation.Color) rl.Color {
	b := func(v float32) uint8 {
		return uint8(math.Round(float64(min(max(v, 0), 1)) * 255))
	}
	return rl.NewColor(b(c[0]), b(c[1]), b(c[2]), b(c[3]))
}
