/*
Package tile implements an encoder and decoder for 4-bit indexed bitmaps as
uploaded to a small display.

The image is split into 8 by 8 tiles, partial tiles at the right and bottom
edges are padded with index 0. A file starts with a five byte header holding
the width and height in pixels as little-endian 16-bit values and the number
of palette colors as a single byte. This is followed by the pixel data, 32
bytes per tile with tiles in row-major order and two pixels per byte, left
pixel in the upper nibble. Finally the palette is written as one big-endian
RGB565 value per color. There is no compression.
*/
package tile

// MaxColors is the largest palette a tile bitmap can hold without
// quantization.
const MaxColors = colorsPerPalette

const (
	tileWidth        = 8
	tileHeight       = tileWidth
	tileBytes        = tileWidth * tileHeight >> 1
	colorsPerPalette = 16
	headerSize       = 5
	maxDimension     = 1<<16 - 1
)

func tileCount(width, height int) (int, int) {
	return (width + tileWidth - 1) / tileWidth, (height + tileHeight - 1) / tileHeight
}

func rgb565(r, g, b uint8) uint16 {
	return uint16(r>>3)<<11 | uint16(g>>2)<<5 | uint16(b>>3)
}

func rgb888(p uint16) (r, g, b uint8) {
	r = uint8((p >> 11 & 0x1f) * 0xff / 0x1f)
	g = uint8((p >> 5 & 0x3f) * 0xff / 0x3f)
	b = uint8((p & 0x1f) * 0xff / 0x1f)
	return
}
