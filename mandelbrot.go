/*
Package mandelbrot renders the Mandelbrot set as an indexed bitmap for small
fixed-resolution displays such as the 240x240 screen of the Adafruit Clue.

Each pixel is mapped linearly onto a viewport of the complex plane, its escape
iteration count is computed and the count is converted into an index of a
16 color palette.
*/
package mandelbrot

import (
	"fmt"
	"image"
	"image/color"
	"io/ioutil"
	"log"
	"time"
)

const defaultPollInterval = 10 * time.Millisecond

// Renderer renders frames for a fixed configuration and palette.
type Renderer struct {
	// PollInterval is how long Run sleeps after a poll where neither
	// trigger was set. Zero polls continuously.
	PollInterval time.Duration

	cfg     Config
	palette color.Palette
	logger  *log.Logger
}

// New returns a Renderer for cfg drawing with palette p, which must have
// exactly cfg.PaletteSize entries. A nil logger discards all output.
func New(cfg Config, p color.Palette, logger *log.Logger) (*Renderer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(p) != cfg.PaletteSize {
		return nil, &ConfigError{"palette", fmt.Sprintf("has %d colors, expected %d", len(p), cfg.PaletteSize)}
	}

	if logger == nil {
		logger = log.New(ioutil.Discard, "", 0)
	}

	return &Renderer{
		PollInterval: defaultPollInterval,

		cfg:     cfg,
		palette: p,
		logger:  logger,
	}, nil
}

// Config returns the configuration of the Renderer.
func (r *Renderer) Config() Config {
	return r.cfg
}

// RenderFrame renders a complete frame into a newly allocated image which is
// owned by the caller.
func (r *Renderer) RenderFrame() (*image.Paletted, error) {
	start := time.Now()

	m := image.NewPaletted(image.Rect(0, 0, r.cfg.Width, r.cfg.Height), r.palette)
	if err := Render(r.cfg, m); err != nil {
		return nil, err
	}

	r.logger.Printf("Rendered %dx%d frame in %s\n", r.cfg.Width, r.cfg.Height, time.Since(start))

	return m, nil
}

// Dump calls printer with the palette index of every pixel in the same order
// RenderFrame computes them.
func (r *Renderer) Dump(printer func(x, y, index int)) error {
	return Render(r.cfg, PixelWriterFunc(printer))
}

// Sample is a single point evaluated by Values.
type Sample struct {
	C complex128
	N int
}

// Values evaluates a coarse 4x4 grid of points around the origin, from
// -1-1i to 0.5+0.5i in steps of 0.5.
func (r *Renderer) Values() []Sample {
	samples := make([]Sample, 0, 16)
	for a := -10; a < 10; a += 5 {
		for b := -10; b < 10; b += 5 {
			c := complex(float64(a)/10, float64(b)/10)
			samples = append(samples, Sample{
				C: c,
				N: Escape(c, r.cfg.MaxIter),
			})
		}
	}
	return samples
}
