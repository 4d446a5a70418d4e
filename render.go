package mandelbrot

// PixelWriter receives one palette index per pixel. *image.Paletted
// implements it.
type PixelWriter interface {
	SetColorIndex(x, y int, index uint8)
}

// PixelWriterFunc adapts an ordinary function to a PixelWriter.
type PixelWriterFunc func(x, y, index int)

// SetColorIndex calls f(x, y, index).
func (f PixelWriterFunc) SetColorIndex(x, y int, index uint8) {
	f(x, y, int(index))
}

// Index maps an iteration count in [0, maxIter] onto [0, paletteSize-1].
// The ramp is inverted; points that never escape get index 0 and points that
// escape immediately get paletteSize-1.
func Index(m, maxIter, paletteSize int) int {
	return (paletteSize - 1) - m*(paletteSize-1)/maxIter
}

// Point returns the complex coordinate of pixel (x, y).
func (c Config) Point(x, y int) complex128 {
	v := c.Viewport
	re := v.ReStart + (float64(x)/float64(c.Width))*(v.ReEnd-v.ReStart)
	im := v.ImStart + (float64(y)/float64(c.Height))*(v.ImEnd-v.ImStart)
	return complex(re, im)
}

// Render evaluates every pixel of cfg and writes its palette index to w.
// Pixels are visited column by column, each exactly once. Nothing is written
// if cfg is invalid.
func Render(cfg Config, w PixelWriter) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	for x := 0; x < cfg.Width; x++ {
		for y := 0; y < cfg.Height; y++ {
			m := Escape(cfg.Point(x, y), cfg.MaxIter)
			w.SetColorIndex(x, y, uint8(Index(m, cfg.MaxIter, cfg.PaletteSize)))
		}
	}

	return nil
}
