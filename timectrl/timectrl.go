// Package timectrl drives periodic work such as the catalog refresh.
package timectrl

import (
	"context"
	"sync"
	"time"
)

// Listener is invoked on every tick with the tick time. ctx is cancelled
// when the controller stops.
type Listener func(ctx context.Context, t time.Time)

// Controller calls its listeners once when started and then every Interval
// until the context passed to Start is cancelled. Listeners run
// sequentially on the controller goroutine; a slow listener delays the next
// tick rather than overlapping it.
type Controller struct {
	mu       sync.Mutex
	Interval time.Duration

	listeners []Listener
	now       func() time.Time
}

// NewController constructs a controller ticking every interval.
func NewController(interval time.Duration) *Controller {
	return &Controller{Interval: interval, now: time.Now}
}

// AddListener registers a callback invoked on every tick.
func (c *Controller) AddListener(fn Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Tick delivers one tick synchronously.
func (c *Controller) Tick(ctx context.Context) {
	t := c.now()

	c.mu.Lock()
	listeners := append([]Listener(nil), c.listeners...)
	c.mu.Unlock()

	for _, fn := range listeners {
		if ctx.Err() != nil {
			return
		}
		fn(ctx, t)
	}
}

// Start runs the controller in a separate goroutine. It returns a channel
// that is closed when the controller finishes after ctx is cancelled.
// A non-positive Interval delivers the initial tick only.
func (c *Controller) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)

		c.Tick(ctx)
		if c.Interval <= 0 {
			<-ctx.Done()
			return
		}

		ticker := time.NewTicker(c.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.Tick(ctx)
			}
		}
	}()
	return done
}
