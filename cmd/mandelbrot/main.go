package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"io/ioutil"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bodgit/mandelbrot"
	"github.com/bodgit/mandelbrot/palette"
	"github.com/bodgit/mandelbrot/tile"
	"github.com/urfave/cli/v2"
)

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func newLogger(c *cli.Context) *log.Logger {
	logger := log.New(ioutil.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}
	return logger
}

func newConfig(c *cli.Context) mandelbrot.Config {
	return mandelbrot.Config{
		Width:  c.Int("width"),
		Height: c.Int("height"),
		Viewport: mandelbrot.Viewport{
			ReStart: c.Float64("re-start"),
			ReEnd:   c.Float64("re-end"),
			ImStart: c.Float64("im-start"),
			ImEnd:   c.Float64("im-end"),
		},
		MaxIter:     c.Int("max-iter"),
		PaletteSize: palette.Size,
	}
}

func loadPalette(c *cli.Context) (color.Palette, error) {
	switch {
	case c.String("palette") != "":
		f, err := os.Open(c.String("palette"))
		if err != nil {
			return nil, err
		}
		defer f.Close()

		return palette.Parse(f)
	case c.String("palette-image") != "":
		f, err := os.Open(c.String("palette-image"))
		if err != nil {
			return nil, err
		}
		defer f.Close()

		m, _, err := image.Decode(f)
		if err != nil {
			return nil, err
		}

		return palette.Pad(palette.FromImage(m, palette.Size), palette.Size), nil
	default:
		return palette.Default(), nil
	}
}

func newRenderer(c *cli.Context) (*mandelbrot.Renderer, error) {
	p, err := loadPalette(c)
	if err != nil {
		return nil, err
	}

	cfg := newConfig(c)
	cfg.PaletteSize = len(p)

	return mandelbrot.New(cfg, p, newLogger(c))
}

func writeImage(file string, m image.Image) error {
	f, err := os.Create(file)
	if err != nil {
		return err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(file)) {
	case ".tile":
		err = tile.Encode(f, m)
	default:
		err = png.Encode(f, m)
	}
	if err != nil {
		return err
	}

	return f.Close()
}

func printer(w io.Writer) func(x, y, index int) {
	return func(x, y, index int) {
		fmt.Fprintln(w, x, y, index)
	}
}

type fileDisplay string

func (d fileDisplay) Show(m *image.Paletted) error {
	return writeImage(string(d), m)
}

// lineTrigger holds the button levels set by the last line read: "a" holds
// the render button, "b" the dump button, an empty line releases both.
type lineTrigger struct {
	mu           sync.Mutex
	render, dump bool
}

func (t *lineTrigger) RenderRequested() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.render
}

func (t *lineTrigger) DumpRequested() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dump
}

func (t *lineTrigger) read(r io.Reader) error {
	s := bufio.NewScanner(r)
	for s.Scan() {
		line := strings.ToLower(strings.TrimSpace(s.Text()))
		t.mu.Lock()
		t.render = strings.Contains(line, "a")
		t.dump = strings.Contains(line, "b")
		t.mu.Unlock()
	}
	return s.Err()
}

// runTrigger drives r with button levels read from in. The levels set by
// the last line are held after EOF, so only cancelling ctx stops the loop.
func runTrigger(ctx context.Context, r *mandelbrot.Renderer, in io.Reader, d mandelbrot.Display, w io.Writer, logger *log.Logger) error {
	t := new(lineTrigger)
	go func() {
		if err := t.read(in); err != nil {
			logger.Println(err)
		}
	}()

	return r.Run(ctx, t, d, printer(w))
}

func main() {
	app := cli.NewApp()

	app.Name = "mandelbrot"
	app.Usage = "Mandelbrot set renderer for small displays"
	app.Version = "1.0.0"

	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}

	def := mandelbrot.DefaultConfig()

	app.Flags = []cli.Flag{
		&cli.IntFlag{
			Name:    "width",
			EnvVars: []string{"MANDELBROT_WIDTH"},
			Value:   def.Width,
			Usage:   "width in pixels",
		},
		&cli.IntFlag{
			Name:    "height",
			EnvVars: []string{"MANDELBROT_HEIGHT"},
			Value:   def.Height,
			Usage:   "height in pixels",
		},
		&cli.Float64Flag{
			Name:    "re-start",
			EnvVars: []string{"MANDELBROT_RE_START"},
			Value:   def.Viewport.ReStart,
			Usage:   "real part of the left edge",
		},
		&cli.Float64Flag{
			Name:    "re-end",
			EnvVars: []string{"MANDELBROT_RE_END"},
			Value:   def.Viewport.ReEnd,
			Usage:   "real part of the right edge",
		},
		&cli.Float64Flag{
			Name:    "im-start",
			EnvVars: []string{"MANDELBROT_IM_START"},
			Value:   def.Viewport.ImStart,
			Usage:   "imaginary part of the top edge",
		},
		&cli.Float64Flag{
			Name:    "im-end",
			EnvVars: []string{"MANDELBROT_IM_END"},
			Value:   def.Viewport.ImEnd,
			Usage:   "imaginary part of the bottom edge",
		},
		&cli.IntFlag{
			Name:    "max-iter",
			EnvVars: []string{"MANDELBROT_MAX_ITER"},
			Value:   def.MaxIter,
			Usage:   "maximum number of iterations per pixel",
		},
		&cli.StringFlag{
			Name:    "palette",
			EnvVars: []string{"MANDELBROT_PALETTE"},
			Usage:   "read palette colors from `FILE`",
		},
		&cli.StringFlag{
			Name:    "palette-image",
			EnvVars: []string{"MANDELBROT_PALETTE_IMAGE"},
			Usage:   "derive palette colors from image `FILE`",
		},
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"MANDELBROT_DB"},
			Value:   filepath.Join(cwd, "mandelbrot.db"),
			Usage:   "path to frame database",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:        "render",
			Usage:       "Render a single frame",
			Description: "Writes a PNG image, or a tile bitmap if FILE ends in .tile",
			ArgsUsage:   "FILE",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "save",
					Usage: "also store the frame in the database",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				r, err := newRenderer(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				m, err := r.RenderFrame()
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				if c.Bool("save") {
					db, err := mandelbrot.NewFrameDB(c.String("db"))
					if err != nil {
						return cli.NewExitError(err, 1)
					}
					defer db.Close()

					if _, err := db.AddFrame(r.Config(), m); err != nil {
						return cli.NewExitError(err, 1)
					}
				}

				if err := writeImage(c.Args().First(), m); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:        "dump",
			Usage:       "Print the palette index of every pixel",
			Description: "Prints one \"x y index\" line per pixel, column by column",
			Action: func(c *cli.Context) error {
				r, err := newRenderer(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				w := bufio.NewWriter(os.Stdout)
				defer w.Flush()

				if err := r.Dump(printer(w)); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:  "values",
			Usage: "Print iteration counts for a coarse grid of points",
			Action: func(c *cli.Context) error {
				r, err := newRenderer(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				for _, s := range r.Values() {
					fmt.Println(s.C, s.N)
				}

				return nil
			},
		},
		{
			Name:      "show",
			Usage:     "Write a previously stored frame",
			ArgsUsage: "FILE",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				db, err := mandelbrot.NewFrameDB(c.String("db"))
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer db.Close()

				p, err := loadPalette(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				cfg := newConfig(c)
				cfg.PaletteSize = len(p)

				m, err := db.FindFrame(cfg, p)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				if m == nil {
					return cli.NewExitError(errors.New("no frame stored for this configuration"), 1)
				}

				if err := writeImage(c.Args().First(), m); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:        "run",
			Usage:       "Render on demand, driven by lines read from stdin",
			Description: "A line containing \"a\" holds the render button, \"b\" the dump button, an empty line releases both. The last levels stay held after EOF until interrupted",
			ArgsUsage:   "FILE",
			Flags: []cli.Flag{
				&cli.DurationFlag{
					Name:  "interval",
					Value: 10 * time.Millisecond,
					Usage: "idle poll interval",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				r, err := newRenderer(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				r.PollInterval = c.Duration("interval")

				ctx, cancelFunc := context.WithCancel(context.Background())
				defer cancelFunc()

				sig := make(chan os.Signal, 1)
				signal.Notify(sig, os.Interrupt)
				defer signal.Stop(sig)

				go func() {
					select {
					case <-sig:
						cancelFunc()
					case <-ctx.Done():
					}
				}()

				w := bufio.NewWriter(os.Stdout)
				defer w.Flush()

				if err := runTrigger(ctx, r, os.Stdin, fileDisplay(c.Args().First()), w, newLogger(c)); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
