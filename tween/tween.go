// Package tween provides a time-driven animation that implements
// [playback.Handle], and a [Driver] that advances animations frame by frame.
package tween

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/baxromumarov/playback"
	"github.com/google/uuid"
)

var (
	// ErrInvalidTime is returned by SetCurrentTime for negative or NaN positions.
	ErrInvalidTime = errors.New("tween: invalid time")

	// ErrFinished is returned by Play on an animation that has already
	// finished.
	ErrFinished = errors.New("tween: animation finished")
)

// State is the playback state of an [Animation].
type State int

const (
	Idle State = iota
	Running
	Paused
	Finished
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Finished:
		return "finished"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Easing maps linear progress in [0, 1] to eased progress.
type Easing func(p float64) float64

// Linear is the identity easing.
func Linear(p float64) float64 { return p }

// EaseIn accelerates from zero velocity.
func EaseIn(p float64) float64 { return p * p }

// EaseOut decelerates to zero velocity.
func EaseOut(p float64) float64 { return p * (2 - p) }

// EaseInOut accelerates until halfway, then decelerates.
func EaseInOut(p float64) float64 {
	if p < 0.5 {
		return 2 * p * p
	}
	return -1 + (4-2*p)*p
}

// Animation interpolates a value from one number to another over a fixed
// duration. It starts Idle; time only moves while it is Running and
// [Animation.Advance] is called, usually by a [Driver].
//
// Completion is reported through [Animation.OnFinish]: fulfilled when the
// animation reaches its end or is stopped, rejected when [Animation.Fail]
// is called.
type Animation struct {
	id       string
	from, to float64
	duration time.Duration
	ease     Easing
	onUpdate func(v float64)
	queue    *playback.Queue
	logger   *slog.Logger

	mu      sync.Mutex
	elapsed time.Duration
	state   State

	finished *playback.Future
	settle   playback.SettleFunc
}

var _ playback.Handle = (*Animation)(nil)

// Option configures an [Animation].
type Option func(*Animation)

// WithEasing sets the easing function. The default is [Linear].
func WithEasing(e Easing) Option {
	return func(a *Animation) {
		a.ease = e
	}
}

// WithOnUpdate registers fn to receive the interpolated value whenever the
// position changes. fn is called without the animation's lock held.
func WithOnUpdate(fn func(v float64)) Option {
	return func(a *Animation) {
		a.onUpdate = fn
	}
}

// WithQueue sets the queue on which completion callbacks run.
func WithQueue(q *playback.Queue) Option {
	return func(a *Animation) {
		a.queue = q
	}
}

// WithLogger sets the logger for state transitions.
func WithLogger(l *slog.Logger) Option {
	return func(a *Animation) {
		a.logger = l
	}
}

// New creates an Idle animation from from to to over d.
// Panics if d <= 0.
func New(from, to float64, d time.Duration, opts ...Option) *Animation {
	if d <= 0 {
		panic("tween: duration must be positive")
	}
	a := &Animation{
		id:       uuid.NewString(),
		from:     from,
		to:       to,
		duration: d,
		ease:     Linear,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = slog.New(slog.DiscardHandler)
	}
	a.logger = a.logger.With(slog.String("animation", a.id))
	a.finished, a.settle = playback.NewFuture(a.queue)
	return a
}

// ID returns the animation's unique identifier.
func (a *Animation) ID() string {
	return a.id
}

// Duration returns the animation's total duration.
func (a *Animation) Duration() time.Duration {
	return a.duration
}

// State returns the current playback state.
func (a *Animation) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.state
}

// Value returns the interpolated value at the current position.
func (a *Animation) Value() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.valueLocked()
}

func (a *Animation) valueLocked() float64 {
	p := float64(a.elapsed) / float64(a.duration)
	return a.from + (a.to-a.from)*a.ease(p)
}

// CurrentTime returns the position in seconds.
func (a *Animation) CurrentTime() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.elapsed.Seconds()
}

// SetCurrentTime scrubs to t seconds, clamped to the duration. Scrubbing
// never finishes the animation on its own; a Running animation finishes on
// the next Advance once it is at its end.
func (a *Animation) SetCurrentTime(t float64) error {
	if math.IsNaN(t) || math.IsInf(t, 0) || t < 0 {
		return fmt.Errorf("%w: %v", ErrInvalidTime, t)
	}

	a.mu.Lock()
	if a.state == Finished {
		a.mu.Unlock()
		return ErrFinished
	}
	a.elapsed = time.Duration(min(t, a.duration.Seconds()) * float64(time.Second))
	v := a.valueLocked()
	a.mu.Unlock()

	a.emit(v)
	return nil
}

// Play starts or resumes the animation.
func (a *Animation) Play() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state == Finished {
		return ErrFinished
	}
	a.transitionLocked(Running)
	return nil
}

// Pause holds the animation at its current position. Pausing a finished
// animation has no effect.
func (a *Animation) Pause() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state == Finished {
		return nil
	}
	a.transitionLocked(Paused)
	return nil
}

// Stop ends the animation where it is and fulfills its completion.
func (a *Animation) Stop() error {
	a.finish(nil)
	return nil
}

// Fail ends the animation and rejects its completion with err.
// Panics if err is nil.
func (a *Animation) Fail(err error) {
	if err == nil {
		panic("tween: Fail requires non-nil error")
	}
	a.finish(err)
}

// OnFinish implements [playback.Handle].
func (a *Animation) OnFinish(fn func(err error)) {
	a.finished.OnFinish(fn)
}

// Finished returns the animation's completion future.
func (a *Animation) Finished() *playback.Future {
	return a.finished
}

// Advance moves a Running animation forward by dt. It reports whether the
// animation is finished afterwards. Idle and Paused animations do not
// move.
func (a *Animation) Advance(dt time.Duration) bool {
	a.mu.Lock()
	switch a.state {
	case Finished:
		a.mu.Unlock()
		return true
	case Running:
	default:
		a.mu.Unlock()
		return false
	}

	a.elapsed = min(a.elapsed+dt, a.duration)
	done := a.elapsed >= a.duration
	v := a.valueLocked()
	a.mu.Unlock()

	a.emit(v)
	if done {
		a.finish(nil)
	}
	return done
}

func (a *Animation) finish(err error) {
	a.mu.Lock()
	if a.state == Finished {
		a.mu.Unlock()
		return
	}
	a.transitionLocked(Finished)
	a.mu.Unlock()

	if err != nil {
		a.logger.Debug("animation failed", slog.Any("error", err))
	}
	a.settle(err)
}

func (a *Animation) transitionLocked(to State) {
	if a.state == to {
		return
	}
	a.logger.Debug("state change",
		slog.String("from", a.state.String()),
		slog.String("to", to.String()),
	)
	a.state = to
}

func (a *Animation) emit(v float64) {
	if a.onUpdate != nil {
		a.onUpdate(v)
	}
}
