package challenge

import (
	"context"
	"sync"
	"time"
)

// Countdown ticks a session on a fixed interval until stopped.
type Countdown struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// StartCountdown ticks s every interval and passes each Tick to notify,
// which may be nil. It runs until ctx is cancelled or Stop is called.
func StartCountdown(ctx context.Context, s *Session, interval time.Duration, notify func(Tick)) *Countdown {
	ctx, cancel := context.WithCancel(ctx)
	c := &Countdown{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(c.done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				t := s.Tick()
				if notify != nil {
					notify(t)
				}
			}
		}
	}()

	return c
}

// Stop ends the countdown and waits for its goroutine to exit. It is safe to
// call more than once.
func (c *Countdown) Stop() {
	c.once.Do(c.cancel)
	<-c.done
}

// Done is closed when the countdown goroutine has exited.
func (c *Countdown) Done() <-chan struct{} {
	return c.done
}
