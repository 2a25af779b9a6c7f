package common

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Color is an NRGBA color authored as a hex string. Accepted forms are
// "#RRGGBB", "#RRGGBBAA", "0xRRGGBB" and bare "RRGGBB".
type Color struct {
	color.NRGBA
}

func RGB(r, g, b uint8) Color {
	return Color{color.NRGBA{R: r, G: g, B: b, A: 0xff}}
}

func ParseColor(s string) (Color, error) {
	h := strings.TrimSpace(s)
	h = strings.TrimPrefix(h, "#")
	h = strings.TrimPrefix(strings.TrimPrefix(h, "0x"), "0X")

	if len(h) != 6 && len(h) != 8 {
		return Color{}, fmt.Errorf("invalid color format: %q", s)
	}

	parse := func(start int) (uint8, error) {
		v, err := strconv.ParseUint(h[start:start+2], 16, 8)
		return uint8(v), err
	}

	var c Color
	var err error
	if c.R, err = parse(0); err != nil {
		return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	if c.G, err = parse(2); err != nil {
		return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	if c.B, err = parse(4); err != nil {
		return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	c.A = 0xff
	if len(h) == 8 {
		if c.A, err = parse(6); err != nil {
			return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
		}
	}
	return c, nil
}

func (c *Color) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: color must be a string", value.Line)
	}
	parsed, err := ParseColor(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*c = parsed
	return nil
}

func (c Color) String() string {
	if c.A == 0xff {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// Floats returns the channels scaled to [0, 1] for ebiten color scales.
func (c Color) Floats() (r, g, b, a float32) {
	return float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255, float32(c.A) / 255
}
