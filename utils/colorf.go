package utils

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
)

// ColorFloat is straight (not premultiplied) RGBA in [0, 1]
type ColorFloat [4]float64

var (
	ColorWhite = ColorFloat{1, 1, 1, 1}
	ColorBlack = ColorFloat{0, 0, 0, 1}
)

// RGBA implements image/color.Color
func (c ColorFloat) RGBA() (r, g, b, a uint32) {
	const mf = float64(256*256 - 1)
	a = uint32(c[3] * mf)
	r = uint32(c[0] * c[3] * mf)
	g = uint32(c[1] * c[3] * mf)
	b = uint32(c[2] * c[3] * mf)
	return
}

func NewColorFloatA(c []float64) ColorFloat {
	return ColorFloat{c[0], c[1], c[2], c[3]}
}

func NewColorFloat(c []float64) ColorFloat {
	return ColorFloat{c[0], c[1], c[2], 1.0}
}

// ParseHexColor accepts #rgb, #rrggbb and #rrggbbaa
func ParseHexColor(s string) (ColorFloat, error) {
	alpha := 1.0
	if len(s) == 9 && strings.HasPrefix(s, "#") {
		a, err := strconv.ParseUint(s[7:], 16, 8)
		if err != nil {
			return ColorFloat{}, errors.Wrapf(err, "bad alpha in color %q", s)
		}
		alpha = float64(a) / 255
		s = s[:7]
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return ColorFloat{}, errors.Wrapf(err, "bad hex color %q", s)
	}
	return ColorFloat{c.R, c.G, c.B, alpha}, nil
}

// Hex formats the color as #rrggbb or #rrggbbaa when not opaque
func (c ColorFloat) Hex() string {
	hex := colorful.Color{R: c[0], G: c[1], B: c[2]}.Clamped().Hex()
	if c[3] < 1 {
		hex += fmt.Sprintf("%02x", uint8(c[3]*255+0.5))
	}
	return hex
}
