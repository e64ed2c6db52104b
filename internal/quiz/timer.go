package quiz

import (
	"context"
	"sync"
	"time"
)

// Timer drives a periodic callback on a single goroutine until the callback
// returns false, the context ends or Stop is called.
type Timer struct {
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// StartTimer launches the countdown goroutine. tick is never invoked concurrently with itself.
func StartTimer(ctx context.Context, interval time.Duration, tick func() bool) *Timer {
	if interval <= 0 {
		interval = time.Second
	}

	t := &Timer{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}

	go func() {
		defer close(t.done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-t.stop:
				return
			case <-ticker.C:
				// Stop may have raced with the ticker; honour it first.
				select {
				case <-t.stop:
					return
				default:
				}
				if !tick() {
					return
				}
			}
		}
	}()

	return t
}

// Stop cancels further ticks. It does not wait for an in-flight tick, so it is
// safe to call while holding a lock the tick callback needs.
func (t *Timer) Stop() {
	t.stopOnce.Do(func() { close(t.stop) })
}

// Done is closed once the timer goroutine has exited.
func (t *Timer) Done() <-chan struct{} {
	return t.done
}
