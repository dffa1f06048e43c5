package animation

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is RGBA with components in [0, 1].
type Color [4]float32

var (
	Green   = Color{0, 1, 0, 1}
	Red     = Color{1, 0, 0, 1}
	White   = Color{1, 1, 1, 1}
	Neutral = Color{1, 1, 1, 1}
	Blue    = Color{0, 0, 1, 1}
)

func (c Color) WithAlpha(a float32) Color {
	c[3] = a
	return c
}

func (c Color) colorful() colorful.Color {
	return colorful.Color{R: float64(c[0]), G: float64(c[1]), B: float64(c[2])}
}

// Hex formats the color as #RRGGBBAA.
func (c Color) Hex() string {
	a := uint8(math.Round(float64(clamp01(c[3])) * 255))
	return c.colorful().Clamped().Hex() + hexByte(a)
}

func hexByte(b uint8) string {
	const digits = "0123456789abcdef"
	return string([]byte{digits[b>>4], digits[b&0x0f]})
}

// Interpolate returns f*a + (1-f)*b, so f = 1 yields a.
func Interpolate(f float32, a, b Color) Color {
	f = clamp01(f)
	mixed := b.colorful().BlendRgb(a.colorful(), float64(f))
	return Color{
		float32(mixed.R),
		float32(mixed.G),
		float32(mixed.B),
		b[3] + (a[3]-b[3])*f,
	}
}

// ColorPolicy maps an interaction strength to a color.
type ColorPolicy func(strength float32) Color

// SignPolicy colors positive strengths pos and everything else neg.
func SignPolicy(pos, neg Color) ColorPolicy {
	return func(s float32) Color {
		if s > 0 {
			return pos
		}
		return neg
	}
}

// MagnitudePolicy saturates toward pos or neg as the magnitude of the
// strength approaches limit, on a log scale. Small values stay neutral.
func MagnitudePolicy(pos, neg, neutral Color, limit float32) ColorPolicy {
	return func(s float32) Color {
		sat := Intensity(s, limit)
		if sat > 0 {
			return Interpolate(sat, pos, neutral)
		}
		return Interpolate(-sat, neg, neutral)
	}
}

// RampPolicy blends from lo to hi as the strength goes from 0 to max.
func RampPolicy(max float32, lo, hi Color) ColorPolicy {
	return func(s float32) Color {
		if max <= 0 {
			return lo
		}
		return Interpolate(s/max, hi, lo)
	}
}

// Intensity is a signed saturation in [-1, 1]. Each factor of e below
// limit costs a tenth of the saturation.
func Intensity(f, limit float32) float32 {
	if abs32(f) < epsilon || limit <= 0 {
		return 0
	}
	magnitude := math.Log(float64(abs32(f) / limit))
	result := clamp01(float32(1 + magnitude/10))
	return float32(math.Copysign(float64(result), float64(f)))
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
