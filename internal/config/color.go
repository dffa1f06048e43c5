package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/fmriviz/internal/animation"
)

var ErrInvalidColor = errors.New("config: invalid color")

// Color is an RGBA color written as #RRGGBB or #RRGGBBAA.
type Color animation.Color

// ParseColor reads a hex color. A missing alpha channel means opaque.
func ParseColor(s string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 && len(hex) != 8 {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}

	c := Color{0, 0, 0, 1}
	for i := 0; i < len(hex)/2; i++ {
		v, err := strconv.ParseUint(hex[2*i:2*i+2], 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
		}
		c[i] = float32(v) / 255
	}
	return c, nil
}

func (c Color) RGBA() animation.Color { return animation.Color(c) }

func (c Color) String() string { return animation.Color(c).Hex() }

func (c Color) MarshalYAML() (interface{}, error) {
	return c.String(), nil
}

func (c *Color) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseColor(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
