package tile

import (
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"io"

	"github.com/ericpauley/go-quantize/quantize"
)

type encoder struct {
	w io.Writer
}

func (e *encoder) encode(m *image.Paletted) error {
	b := m.Bounds()

	var header [headerSize]byte
	binary.LittleEndian.PutUint16(header[0:], uint16(b.Dx()))
	binary.LittleEndian.PutUint16(header[2:], uint16(b.Dy()))
	header[4] = byte(len(m.Palette))
	if _, err := e.w.Write(header[:]); err != nil {
		return err
	}

	index := func(x, y int) byte {
		if x >= b.Max.X || y >= b.Max.Y {
			return 0
		}
		return m.ColorIndexAt(x, y) & 0x0f
	}

	tilesX, tilesY := tileCount(b.Dx(), b.Dy())
	for ty := 0; ty < tilesY; ty++ {
		for tx := 0; tx < tilesX; tx++ {
			var tmp [tileBytes]byte
			for y := 0; y < tileHeight; y++ {
				for x := 0; x < tileWidth>>1; x++ {
					dx := tx*tileWidth + x<<1
					dy := ty*tileHeight + y

					tmp[y*tileWidth>>1+x] = index(dx, dy)<<4 | index(dx+1, dy)
				}
			}
			if _, err := e.w.Write(tmp[:]); err != nil {
				return err
			}
		}
	}

	var tmp [2]byte
	for _, c := range m.Palette {
		cr, cg, cb, _ := c.RGBA()
		binary.BigEndian.PutUint16(tmp[:], rgb565(uint8(cr>>8), uint8(cg>>8), uint8(cb>>8)))
		if _, err := e.w.Write(tmp[:]); err != nil {
			return err
		}
	}

	return nil
}

// Encode writes the Image m to w in tile format. Images that are not
// paletted or use more than 16 colors are reduced to 16 colors first.
func Encode(w io.Writer, m image.Image) error {
	b := m.Bounds()
	if b.Dx() > maxDimension || b.Dy() > maxDimension {
		return errors.New("tile: image is too large")
	}

	pm, _ := m.(*image.Paletted)
	if pm == nil {
		if cp, ok := m.ColorModel().(color.Palette); ok {
			pm = image.NewPaletted(b, cp)
			for y := b.Min.Y; y < b.Max.Y; y++ {
				for x := b.Min.X; x < b.Max.X; x++ {
					pm.Set(x, y, cp.Convert(m.At(x, y)))
				}
			}
		}
	}
	if pm == nil || len(pm.Palette) > colorsPerPalette {
		q := quantize.MedianCutQuantizer{}
		pm = image.NewPaletted(b, q.Quantize(make(color.Palette, 0, colorsPerPalette), m))
		draw.Draw(pm, b, m, b.Min, draw.Src)
	}
	if len(pm.Palette) == 0 {
		return errors.New("tile: image has no palette")
	}

	// Adjust image so that top-left corner is at (0, 0)
	if pm.Rect.Min != (image.Point{}) {
		dup := *pm
		dup.Rect = dup.Rect.Sub(dup.Rect.Min)
		pm = &dup
	}

	e := encoder{w: w}

	return e.encode(pm)
}
