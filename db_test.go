package mandelbrot

import (
	"errors"
	"image/color"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/bodgit/mandelbrot/palette"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFrameDB(t *testing.T) (*FrameDB, func()) {
	dir, err := ioutil.TempDir("", "mandelbrot")
	require.NoError(t, err)

	db, err := NewFrameDB(filepath.Join(dir, "test.db"))
	require.NoError(t, err)

	return db, func() {
		db.Close()
		os.RemoveAll(dir)
	}
}

func TestFrameDB(t *testing.T) {
	db, cleanup := newTestFrameDB(t)
	defer cleanup()

	cfg := DefaultConfig()
	r := newTestRenderer(t, cfg)

	m, err := db.FindFrame(cfg, palette.Default())
	require.NoError(t, err)
	assert.Nil(t, m)

	frame, err := r.RenderFrame()
	require.NoError(t, err)

	id, err := db.AddFrame(cfg, frame)
	require.NoError(t, err)

	m, err = db.FindFrame(cfg, frame.Palette)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, frame.Bounds(), m.Bounds())
	assert.Equal(t, frame.Pix, m.Pix)
	assert.Len(t, m.Palette, cfg.PaletteSize)

	again, err := db.AddFrame(cfg, frame)
	require.NoError(t, err)
	assert.Equal(t, id, again)

	// Same pixels under a different key share the stored frame
	other := cfg
	other.Viewport.ImEnd = 2
	shared, err := db.AddFrame(other, frame)
	require.NoError(t, err)
	assert.Equal(t, id, shared)

	m, err = db.FindFrame(other, frame.Palette)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, frame.Pix, m.Pix)
}

func TestFrameDBReplace(t *testing.T) {
	db, cleanup := newTestFrameDB(t)
	defer cleanup()

	cfg := smallConfig()
	r := newTestRenderer(t, cfg)

	frame, err := r.RenderFrame()
	require.NoError(t, err)

	first, err := db.AddFrame(cfg, frame)
	require.NoError(t, err)

	frame.Pix[0] = 3
	second, err := db.AddFrame(cfg, frame)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	m, err := db.FindFrame(cfg, frame.Palette)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, uint8(3), m.Pix[0])
}

func TestFrameDBInvalidConfig(t *testing.T) {
	db, cleanup := newTestFrameDB(t)
	defer cleanup()

	cfg := smallConfig()
	r := newTestRenderer(t, cfg)

	frame, err := r.RenderFrame()
	require.NoError(t, err)

	cfg.MaxIter = 0
	_, err = db.AddFrame(cfg, frame)
	assert.True(t, errors.Is(err, ErrConfig))
}

func TestFrameDBLargePalette(t *testing.T) {
	db, cleanup := newTestFrameDB(t)
	defer cleanup()

	cfg := smallConfig()
	cfg.PaletteSize = 32
	r := newTestRenderer(t, cfg)

	frame, err := r.RenderFrame()
	require.NoError(t, err)

	_, err = db.AddFrame(cfg, frame)
	assert.True(t, errors.Is(err, ErrConfig))

	m, err := db.FindFrame(cfg, frame.Palette)
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestFrameDBPaletteKey(t *testing.T) {
	db, cleanup := newTestFrameDB(t)
	defer cleanup()

	cfg := smallConfig()
	r := newTestRenderer(t, cfg)

	frame, err := r.RenderFrame()
	require.NoError(t, err)

	_, err = db.AddFrame(cfg, frame)
	require.NoError(t, err)

	gray := make(color.Palette, cfg.PaletteSize)
	for i := range gray {
		gray[i] = color.Gray{Y: uint8(i * 0x11)}
	}
	r, err = New(cfg, gray, nil)
	require.NoError(t, err)
	grayFrame, err := r.RenderFrame()
	require.NoError(t, err)
	grayFrame.Pix[0] = 5

	_, err = db.AddFrame(cfg, grayFrame)
	require.NoError(t, err)

	m, err := db.FindFrame(cfg, frame.Palette)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, frame.Pix, m.Pix)

	m, err = db.FindFrame(cfg, gray)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, grayFrame.Pix, m.Pix)

	m, err = db.FindFrame(cfg, palette.Pad(nil, cfg.PaletteSize))
	require.NoError(t, err)
	assert.Nil(t, m)
}
