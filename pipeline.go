package mandelbrot

import (
	"context"
	"image"
	"sync"
	"time"
)

// Trigger reports the current level of the two request signals, typically
// the A and B buttons. It is polled, there is no edge detection.
type Trigger interface {
	RenderRequested() bool
	DumpRequested() bool
}

// Display presents a completed frame.
type Display interface {
	Show(m *image.Paletted) error
}

type command int

const (
	commandRender command = iota
	commandDump
)

func (r *Renderer) pollTrigger(ctx context.Context, t Trigger, done <-chan struct{}) (<-chan command, <-chan error, error) {
	out := make(chan command)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)

		// Hand over a command and block until it has completed, so a held
		// button is only polled again once the previous pass is finished
		send := func(c command) bool {
			select {
			case out <- c:
			case <-ctx.Done():
				return false
			}
			select {
			case <-done:
				return true
			case <-ctx.Done():
				return false
			}
		}

		for {
			idle := true

			if t.RenderRequested() {
				idle = false
				if !send(commandRender) {
					return
				}
			}

			if t.DumpRequested() {
				idle = false
				if !send(commandDump) {
					return
				}
			}

			if idle && r.PollInterval > 0 {
				select {
				case <-time.After(r.PollInterval):
				case <-ctx.Done():
					return
				}
			}

			select {
			case <-ctx.Done():
				return
			default:
			}
		}
	}()
	return out, errc, nil
}

func (r *Renderer) commandWorker(in <-chan command, done chan<- struct{}, d Display, printer func(x, y, index int)) (<-chan error, error) {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for c := range in {
			switch c {
			case commandRender:
				m, err := r.RenderFrame()
				if err != nil {
					errc <- err
					return
				}
				if err := d.Show(m); err != nil {
					errc <- err
					return
				}
			case commandDump:
				if printer == nil {
					r.logger.Println("Dump requested without a printer")
					break
				}
				if err := r.Dump(printer); err != nil {
					errc <- err
					return
				}
				r.logger.Printf("Dumped %d pixels\n", r.cfg.Width*r.cfg.Height)
			}
			done <- struct{}{}
		}
	}()
	return errc, nil
}

func waitForPipeline(errs ...<-chan error) error {
	errc := mergeErrors(errs...)
	for err := range errc {
		if err != nil {
			return err
		}
	}
	return nil
}

func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// Run polls t until ctx is cancelled. When the render signal is set a frame
// is rendered and passed to d. When the dump signal is set every pixel is
// passed to printer, which may be nil. A signal that stays set triggers
// again as soon as the previous pass completes. Run returns nil once ctx is
// cancelled, otherwise the first error from rendering or d.
func (r *Renderer) Run(ctx context.Context, t Trigger, d Display, printer func(x, y, index int)) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	var errcList []<-chan error

	// Buffered so the worker never blocks once the poller has gone
	done := make(chan struct{}, 1)

	commands, errc, err := r.pollTrigger(ctx, t, done)
	if err != nil {
		return err
	}
	errcList = append(errcList, errc)

	errc, err = r.commandWorker(commands, done, d, printer)
	if err != nil {
		return err
	}
	errcList = append(errcList, errc)

	return waitForPipeline(errcList...)
}
