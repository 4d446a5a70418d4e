package mandelbrot

import (
	"errors"
	"fmt"
	"math"
)

// ErrConfig is matched by every configuration error, use errors.Is.
var ErrConfig = errors.New("invalid configuration")

// ConfigError describes a single invalid field of a Config.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("mandelbrot: invalid %s: %s", e.Field, e.Reason)
}

// Is reports whether target is ErrConfig.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}

// Viewport is the rectangle of the complex plane mapped onto the pixel grid.
type Viewport struct {
	ReStart, ReEnd float64
	ImStart, ImEnd float64
}

// Config holds the fixed parameters of a render pass.
type Config struct {
	Width, Height int
	Viewport      Viewport
	MaxIter       int
	PaletteSize   int
}

const (
	defaultWidth       = 240
	defaultHeight      = 240
	defaultMaxIter     = 16
	defaultPaletteSize = 16
)

// DefaultConfig returns the configuration of the Adafruit Clue display.
func DefaultConfig() Config {
	return Config{
		Width:  defaultWidth,
		Height: defaultHeight,
		Viewport: Viewport{
			ReStart: -2,
			ReEnd:   1,
			ImStart: -1,
			ImEnd:   1,
		},
		MaxIter:     defaultMaxIter,
		PaletteSize: defaultPaletteSize,
	}
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Validate returns a *ConfigError for the first invalid field found.
func (c Config) Validate() error {
	switch {
	case c.Width <= 0:
		return &ConfigError{"width", fmt.Sprintf("%d is not positive", c.Width)}
	case c.Height <= 0:
		return &ConfigError{"height", fmt.Sprintf("%d is not positive", c.Height)}
	case c.MaxIter <= 0:
		return &ConfigError{"max iterations", fmt.Sprintf("%d is not positive", c.MaxIter)}
	case c.PaletteSize <= 0:
		return &ConfigError{"palette size", fmt.Sprintf("%d is not positive", c.PaletteSize)}
	case c.PaletteSize > math.MaxUint8+1:
		return &ConfigError{"palette size", fmt.Sprintf("%d exceeds %d", c.PaletteSize, math.MaxUint8+1)}
	}

	v := c.Viewport
	for _, f := range []float64{v.ReStart, v.ReEnd, v.ImStart, v.ImEnd} {
		if !finite(f) {
			return &ConfigError{"viewport", "bounds must be finite"}
		}
	}
	if v.ReStart >= v.ReEnd {
		return &ConfigError{"viewport", fmt.Sprintf("real start %g is not below end %g", v.ReStart, v.ReEnd)}
	}
	if v.ImStart >= v.ImEnd {
		return &ConfigError{"viewport", fmt.Sprintf("imaginary start %g is not below end %g", v.ImStart, v.ImEnd)}
	}

	return nil
}

// Key uniquely identifies the output of a render pass for c.
func (c Config) Key() string {
	v := c.Viewport
	return fmt.Sprintf("%dx%d/%g,%g,%g,%g/%d/%d", c.Width, c.Height, v.ReStart, v.ReEnd, v.ImStart, v.ImEnd, c.MaxIter, c.PaletteSize)
}
