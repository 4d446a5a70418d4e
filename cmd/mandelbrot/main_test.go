package main

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bodgit/mandelbrot"
	"github.com/bodgit/mandelbrot/palette"
	"github.com/bodgit/mandelbrot/tile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineTrigger(t *testing.T) {
	tables := []struct {
		in           string
		render, dump bool
	}{
		{"a\n", true, false},
		{"b\n", false, true},
		{"ab\n", true, true},
		{"a\n\n", false, false},
		{"B\nA\n", true, false},
	}

	for _, table := range tables {
		tr := new(lineTrigger)
		require.NoError(t, tr.read(strings.NewReader(table.in)))
		assert.Equal(t, table.render, tr.RenderRequested(), "input %q", table.in)
		assert.Equal(t, table.dump, tr.DumpRequested(), "input %q", table.in)
	}
}

func TestWriteImage(t *testing.T) {
	dir, err := ioutil.TempDir("", "mandelbrot")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	m := image.NewPaletted(image.Rect(0, 0, 16, 8), palette.Default())
	m.SetColorIndex(3, 4, 9)

	for _, name := range []string{"frame.png", "frame.tile"} {
		file := filepath.Join(dir, name)
		require.NoError(t, fileDisplay(file).Show(m))

		f, err := os.Open(file)
		require.NoError(t, err)

		var d image.Image
		if filepath.Ext(name) == ".tile" {
			d, err = tile.Decode(f)
		} else {
			d, err = png.Decode(f)
		}
		f.Close()
		require.NoError(t, err)

		pm, ok := d.(*image.Paletted)
		require.True(t, ok)
		assert.Equal(t, m.Pix, pm.Pix)
	}
}

type displayFunc func(*image.Paletted) error

func (f displayFunc) Show(m *image.Paletted) error { return f(m) }

func TestRunTriggerHeldAfterEOF(t *testing.T) {
	cfg := mandelbrot.DefaultConfig()
	cfg.Width, cfg.Height = 8, 8

	r, err := mandelbrot.New(cfg, palette.Default(), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shows := 0
	d := displayFunc(func(m *image.Paletted) error {
		shows++
		if shows == 3 {
			cancel()
		}
		return nil
	})

	out := new(bytes.Buffer)
	err = runTrigger(ctx, r, strings.NewReader("a\n"), d, out, log.New(ioutil.Discard, "", 0))
	require.NoError(t, err)
	assert.Equal(t, 3, shows)
	assert.Equal(t, 0, out.Len())
}
