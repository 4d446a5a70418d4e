package tile

import (
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"io"
)

var (
	errNotEnough  = errors.New("tile: not enough image data")
	errTooMuch    = errors.New("tile: too much image data")
	errBadPalette = errors.New("tile: invalid palette size")
	errBadIndex   = errors.New("tile: invalid palette index")
)

func readFull(r io.Reader, b []byte) error {
	_, err := io.ReadFull(r, b)
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return err
}

func upperNibble(b byte) byte {
	return b & 0xf0
}

func lowerNibble(b byte) byte {
	return b & 0x0f
}

type decoder struct {
	r io.Reader

	width, height int

	image   *image.Paletted
	palette color.Palette

	pixels []byte
}

func (d *decoder) readHeader() error {
	var tmp [headerSize]byte
	if err := readFull(d.r, tmp[:]); err != nil {
		return err
	}

	d.width = int(binary.LittleEndian.Uint16(tmp[0:]))
	d.height = int(binary.LittleEndian.Uint16(tmp[2:]))

	if tmp[4] == 0 || tmp[4] > colorsPerPalette {
		return errBadPalette
	}
	d.palette = make(color.Palette, tmp[4])

	return nil
}

func (d *decoder) readPixels() error {
	tilesX, tilesY := tileCount(d.width, d.height)
	d.pixels = make([]byte, tilesX*tilesY*tileBytes)
	return readFull(d.r, d.pixels)
}

func (d *decoder) readPalette() error {
	for i := range d.palette {
		var tmp [2]byte
		if err := readFull(d.r, tmp[:]); err != nil {
			return err
		}
		r, g, b := rgb888(binary.BigEndian.Uint16(tmp[:]))
		d.palette[i] = color.RGBA{r, g, b, 0xff}
	}
	return nil
}

func (d *decoder) decode(r io.Reader, configOnly bool) error {
	d.r = r

	for _, f := range []func() error{d.readHeader, d.readPixels, d.readPalette} {
		if err := f(); err != nil {
			if err != io.ErrUnexpectedEOF {
				return err
			}
			return errNotEnough
		}
	}

	var tmp [1]byte
	if n, err := r.Read(tmp[:]); n != 0 || (err != io.EOF && err != io.ErrUnexpectedEOF) {
		if err != nil {
			return err
		}
		return errTooMuch
	}

	if configOnly {
		return nil
	}

	d.image = image.NewPaletted(image.Rect(0, 0, d.width, d.height), d.palette)

	tilesX, _ := tileCount(d.width, d.height)
	for i, b := range d.pixels {
		tile := i / tileBytes
		tx, ty := tile%tilesX, tile/tilesX

		dx := tx*tileWidth + (i%tileBytes)%(tileWidth>>1)<<1
		dy := ty*tileHeight + (i%tileBytes)/(tileWidth>>1)

		for j, p := range [2]byte{upperNibble(b) >> 4, lowerNibble(b)} {
			if dx+j >= d.width || dy >= d.height {
				continue
			}
			if int(p) >= len(d.palette) {
				return errBadIndex
			}
			d.image.SetColorIndex(dx+j, dy, p)
		}
	}

	return nil
}

// Decode reads a tile bitmap from r and returns it as an image.Image.
func Decode(r io.Reader) (image.Image, error) {
	var d decoder
	if err := d.decode(r, false); err != nil {
		return nil, err
	}
	return d.image, nil
}

// DecodeConfig returns the color model and dimensions of a tile bitmap
// without decoding the pixels.
func DecodeConfig(r io.Reader) (image.Config, error) {
	var d decoder
	if err := d.decode(r, true); err != nil {
		return image.Config{}, err
	}
	return image.Config{
		ColorModel: d.palette,
		Width:      d.width,
		Height:     d.height,
	}, nil
}
