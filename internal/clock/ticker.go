// Package clock runs game timers.
package clock

import (
	"context"
	"sync"
	"time"
)

// Ticker calls a function on a fixed interval until it is stopped, its
// context is cancelled or the function asks to stop.
type Ticker struct {
	cancel context.CancelFunc
	once   sync.Once
	done   chan struct{}
}

// Start calls fn every interval in a new goroutine. fn returns false to end
// the ticking. fn must not call [Ticker.Stop] on its own ticker.
func Start(ctx context.Context, interval time.Duration, fn func() bool) *Ticker {
	ctx, cancel := context.WithCancel(ctx)
	t := &Ticker{
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go t.run(ctx, interval, fn)
	return t
}

func (t *Ticker) run(ctx context.Context, interval time.Duration, fn func() bool) {
	defer close(t.done)

	tk := time.NewTicker(interval)
	defer tk.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tk.C:
		}
		// Stop may have raced with the tick
		if ctx.Err() != nil {
			return
		}
		if !fn() {
			return
		}
	}
}

// Stop ends the ticking and waits for a call to fn that is in progress. Once
// Stop returns fn is not running and will not be called again. Stop is safe
// to call more than once and from several goroutines.
func (t *Ticker) Stop() {
	t.once.Do(t.cancel)
	<-t.done
}

// Done is closed when the ticker has stopped for any reason.
func (t *Ticker) Done() <-chan struct{} {
	return t.done
}
