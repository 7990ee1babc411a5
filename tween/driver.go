package tween

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Driver is a frame loop: on every tick it advances each added animation
// by the time elapsed since the previous tick, and forgets animations once
// they finish.
type Driver struct {
	interval time.Duration
	logger   *slog.Logger

	mu    sync.Mutex
	anims []*Animation
}

// DriverOption configures a [Driver].
type DriverOption func(*Driver)

// WithDriverLogger sets the logger used to report finished animations.
func WithDriverLogger(l *slog.Logger) DriverOption {
	return func(d *Driver) {
		d.logger = l
	}
}

// NewDriver creates a driver that ticks every interval.
// Panics if interval <= 0.
func NewDriver(interval time.Duration, opts ...DriverOption) *Driver {
	if interval <= 0 {
		panic("tween: NewDriver requires interval > 0")
	}
	d := &Driver{interval: interval}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = slog.New(slog.DiscardHandler)
	}
	return d
}

// Add registers animations to be advanced. Nil animations are ignored.
func (d *Driver) Add(anims ...*Animation) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, a := range anims {
		if a != nil {
			d.anims = append(d.anims, a)
		}
	}
}

// Len returns the number of animations still being driven.
func (d *Driver) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return len(d.anims)
}

// Step advances every animation by dt and drops the ones that finished.
// It returns the number of animations still being driven.
func (d *Driver) Step(dt time.Duration) int {
	d.mu.Lock()
	anims := make([]*Animation, len(d.anims))
	copy(anims, d.anims)
	d.mu.Unlock()

	finished := make(map[*Animation]bool)
	for _, a := range anims {
		if a.Advance(dt) {
			finished[a] = true
			d.logger.Debug("animation finished", slog.String("animation", a.ID()))
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	kept := d.anims[:0]
	for _, a := range d.anims {
		if !finished[a] {
			kept = append(kept, a)
		}
	}
	clear(d.anims[len(kept):])
	d.anims = kept
	return len(d.anims)
}

// Run ticks until ctx is done and then returns ctx.Err().
func (d *Driver) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case now := <-ticker.C:
			d.Step(now.Sub(last))
			last = now
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
