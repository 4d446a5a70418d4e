/*
Package palette provides the color tables used to display rendered frames.

A palette is an ordered color.Palette; entry i is the color shown for palette
index i.
*/
package palette

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"io"
	"strconv"
	"strings"

	"github.com/ericpauley/go-quantize/quantize"
)

// Size is the number of colors in the default palette.
const Size = 16

var defaultColors = [Size]uint32{
	0x000000,
	0x000080,
	0x008000,
	0x008080,
	0x800000,
	0x800080,
	0x808000,
	0xc0c0c0,
	0x808080,
	0x0000ff,
	0x00ff00,
	0x00ffff,
	0xff0000,
	0xff00ff,
	0xffff00,
	0xffffff,
}

// RGB returns the opaque color for a packed 0xRRGGBB value.
func RGB(v uint32) color.RGBA {
	return color.RGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: 0xff,
	}
}

// Default returns a new copy of the 16 color palette from black to white.
func Default() color.Palette {
	p := make(color.Palette, 0, Size)
	for _, v := range defaultColors {
		p = append(p, RGB(v))
	}
	return p
}

func parseColor(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(strings.TrimPrefix(strings.TrimPrefix(s, "#"), "0x"), "0X")
	if len(h) != 6 {
		return color.RGBA{}, fmt.Errorf("palette: invalid color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("palette: invalid color %q", s)
	}
	return RGB(uint32(v)), nil
}

// Parse reads one color per line in #RRGGBB, 0xRRGGBB or RRGGBB form. Empty
// lines and lines starting with // are ignored.
func Parse(r io.Reader) (color.Palette, error) {
	var p color.Palette

	s := bufio.NewScanner(r)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		c, err := parseColor(line)
		if err != nil {
			return nil, err
		}
		p = append(p, c)
	}
	if err := s.Err(); err != nil {
		return nil, err
	}

	if len(p) == 0 {
		return nil, fmt.Errorf("palette: no colors")
	}

	return p, nil
}

// FromImage picks up to n representative colors from m using median cut
// quantization.
func FromImage(m image.Image, n int) color.Palette {
	q := quantize.MedianCutQuantizer{}
	return q.Quantize(make(color.Palette, 0, n), m)
}

// Pad appends black to p until it has n colors.
func Pad(p color.Palette, n int) color.Palette {
	for len(p) < n {
		p = append(p, color.RGBA{0, 0, 0, 0xff})
	}
	return p
}
