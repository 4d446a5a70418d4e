package mandelbrot

import (
	"context"
	"errors"
	"image"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedTrigger struct {
	render, dump bool
}

func (t fixedTrigger) RenderRequested() bool { return t.render }
func (t fixedTrigger) DumpRequested() bool   { return t.dump }

type displayFunc func(*image.Paletted) error

func (f displayFunc) Show(m *image.Paletted) error { return f(m) }

func smallConfig() Config {
	cfg := DefaultConfig()
	cfg.Width, cfg.Height = 8, 8
	return cfg
}

func TestRunHeldRender(t *testing.T) {
	r := newTestRenderer(t, smallConfig())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var shown []*image.Paletted
	d := displayFunc(func(m *image.Paletted) error {
		shown = append(shown, m)
		if len(shown) == 3 {
			cancel()
		}
		return nil
	})

	err := r.Run(ctx, fixedTrigger{render: true}, d, nil)
	require.NoError(t, err)

	require.Len(t, shown, 3)
	assert.Equal(t, shown[0].Pix, shown[2].Pix)
	assert.True(t, shown[0] != shown[1])
}

func TestRunHeldDump(t *testing.T) {
	cfg := smallConfig()
	r := newTestRenderer(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pixels := 0
	printer := func(x, y, index int) {
		pixels++
		if pixels == 2*cfg.Width*cfg.Height {
			cancel()
		}
	}

	d := displayFunc(func(m *image.Paletted) error {
		t.Error("unexpected render")
		return nil
	})

	err := r.Run(ctx, fixedTrigger{dump: true}, d, printer)
	require.NoError(t, err)
	assert.Equal(t, 2*cfg.Width*cfg.Height, pixels)
}

func TestRunRenderBeforeDump(t *testing.T) {
	r := newTestRenderer(t, smallConfig())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var events []string
	record := func(s string) int {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, s)
		return len(events)
	}

	d := displayFunc(func(m *image.Paletted) error {
		if record("render") >= 3 {
			cancel()
		}
		return nil
	})
	printer := func(x, y, index int) {
		if x == 0 && y == 0 {
			if record("dump") >= 3 {
				cancel()
			}
		}
	}

	err := r.Run(ctx, fixedTrigger{render: true, dump: true}, d, printer)
	require.NoError(t, err)

	require.True(t, len(events) >= 3)
	assert.Equal(t, []string{"render", "dump", "render"}, events[:3])
}

func TestRunDisplayError(t *testing.T) {
	r := newTestRenderer(t, smallConfig())

	want := errors.New("display unplugged")
	d := displayFunc(func(m *image.Paletted) error {
		return want
	})

	err := r.Run(context.Background(), fixedTrigger{render: true}, d, nil)
	assert.Equal(t, want, err)
}

func TestRunIdle(t *testing.T) {
	r := newTestRenderer(t, smallConfig())
	r.PollInterval = time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	d := displayFunc(func(m *image.Paletted) error {
		t.Error("unexpected render")
		return nil
	})

	err := r.Run(ctx, fixedTrigger{}, d, nil)
	assert.NoError(t, err)
}

func TestRunIdleDefaultInterval(t *testing.T) {
	r := newTestRenderer(t, smallConfig())

	polls := 0
	trigger := countingTrigger{polls: &polls}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	require.NoError(t, r.Run(ctx, trigger, displayFunc(func(*image.Paletted) error { return nil }), nil))

	// An idle loop sleeps between polls rather than spinning
	assert.True(t, polls < 100, "%d polls", polls)
}

type countingTrigger struct {
	polls *int
}

func (t countingTrigger) RenderRequested() bool {
	*t.polls++
	return false
}

func (t countingTrigger) DumpRequested() bool { return false }
