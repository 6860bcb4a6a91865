package app

import (
	"sync"
	"time"
)

// Countdown is a cancellable one-tick-per-second timer for a single
// question. OnTick receives the remaining seconds after each tick and
// OnExpire fires exactly once when the count reaches zero. Stop is
// idempotent and must be called on every question transition so a stale
// tick can never fire against a newer question.
type Countdown struct {
	mu      sync.Mutex
	stop    chan struct{}
	stopped bool
}

// StartCountdown launches a countdown from seconds. Callbacks run on the
// countdown's own goroutine.
func StartCountdown(seconds int, onTick func(remaining int), onExpire func()) *Countdown {
	c := &Countdown{stop: make(chan struct{})}

	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()

		remaining := seconds
		for {
			select {
			case <-ticker.C:
				remaining--
				if remaining > 0 {
					if onTick != nil {
						onTick(remaining)
					}
					continue
				}
				// Stop the countdown before signalling expiry so a
				// re-entrant Stop from the callback is a no-op.
				c.Stop()
				if onExpire != nil {
					onExpire()
				}
				return
			case <-c.stop:
				return
			}
		}
	}()
	return c
}

// Stop cancels the countdown. Safe to call multiple times and after expiry.
func (c *Countdown) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.stopped {
		c.stopped = true
		close(c.stop)
	}
}
