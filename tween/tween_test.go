package tween

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/baxromumarov/playback"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newQueue(t *testing.T) *playback.Queue {
	t.Helper()
	q := playback.NewQueue()
	t.Cleanup(q.Close)
	return q
}

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestAnimationInterpolates(t *testing.T) {
	a := New(0, 100, time.Second)
	require.NoError(t, a.Play())

	a.Advance(250 * time.Millisecond)
	assert.InDelta(t, 25.0, a.Value(), 1e-9)
	assert.InDelta(t, 0.25, a.CurrentTime(), 1e-9)
	assert.Equal(t, Running, a.State())
}

func TestAnimationIdleDoesNotAdvance(t *testing.T) {
	a := New(0, 1, time.Second)
	assert.False(t, a.Advance(time.Second))
	assert.Equal(t, 0.0, a.CurrentTime())
	assert.Equal(t, Idle, a.State())
}

func TestAnimationPauseHoldsPosition(t *testing.T) {
	a := New(0, 1, time.Second)
	require.NoError(t, a.Play())
	a.Advance(100 * time.Millisecond)
	require.NoError(t, a.Pause())
	a.Advance(500 * time.Millisecond)

	assert.InDelta(t, 0.1, a.CurrentTime(), 1e-9)
	assert.Equal(t, Paused, a.State())
}

func TestAnimationFinishesAtEnd(t *testing.T) {
	q := newQueue(t)
	var updates []float64
	var mu sync.Mutex
	a := New(10, 20, time.Second, WithQueue(q), WithOnUpdate(func(v float64) {
		mu.Lock()
		updates = append(updates, v)
		mu.Unlock()
	}))
	require.NoError(t, a.Play())

	assert.False(t, a.Advance(600*time.Millisecond))
	assert.True(t, a.Advance(600*time.Millisecond))

	require.NoError(t, a.Finished().Wait(waitCtx(t)))
	assert.Equal(t, Finished, a.State())
	assert.Equal(t, 1.0, a.CurrentTime(), "position is clamped to the duration")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 20.0, updates[len(updates)-1])
}

func TestAnimationStopFulfills(t *testing.T) {
	q := newQueue(t)
	a := New(0, 1, time.Second, WithQueue(q))
	require.NoError(t, a.Play())
	require.NoError(t, a.Stop())

	require.NoError(t, a.Finished().Wait(waitCtx(t)))
	assert.ErrorIs(t, a.Play(), ErrFinished)
	assert.NoError(t, a.Pause(), "pausing a finished animation is a no-op")
	assert.NoError(t, a.Stop())
}

func TestAnimationFailRejects(t *testing.T) {
	q := newQueue(t)
	errEngine := errors.New("engine lost")
	a := New(0, 1, time.Second, WithQueue(q))

	a.Fail(errEngine)
	assert.ErrorIs(t, a.Finished().Wait(waitCtx(t)), errEngine)
}

func TestAnimationSetCurrentTime(t *testing.T) {
	a := New(0, 10, 2*time.Second)

	require.NoError(t, a.SetCurrentTime(1))
	assert.InDelta(t, 5.0, a.Value(), 1e-9)

	require.NoError(t, a.SetCurrentTime(30))
	assert.Equal(t, 2.0, a.CurrentTime(), "clamped to duration")
	assert.NotEqual(t, Finished, a.State(), "scrubbing alone does not finish")

	assert.ErrorIs(t, a.SetCurrentTime(-1), ErrInvalidTime)
	assert.ErrorIs(t, a.SetCurrentTime(math.NaN()), ErrInvalidTime)
	assert.ErrorIs(t, a.SetCurrentTime(math.Inf(1)), ErrInvalidTime)
	assert.Equal(t, 2.0, a.CurrentTime(), "rejected values leave the position alone")

	require.NoError(t, a.SetCurrentTime(1e12))
	assert.Equal(t, 2.0, a.CurrentTime(), "huge values clamp to duration")
	assert.InDelta(t, 10.0, a.Value(), 1e-9)
}

func TestAnimationEasing(t *testing.T) {
	a := New(0, 1, time.Second, WithEasing(EaseIn))
	require.NoError(t, a.SetCurrentTime(0.5))
	assert.InDelta(t, 0.25, a.Value(), 1e-9)
}

func TestEasingEndpoints(t *testing.T) {
	for name, e := range map[string]Easing{
		"linear":    Linear,
		"easeIn":    EaseIn,
		"easeOut":   EaseOut,
		"easeInOut": EaseInOut,
	} {
		t.Run(name, func(t *testing.T) {
			assert.InDelta(t, 0.0, e(0), 1e-9)
			assert.InDelta(t, 1.0, e(1), 1e-9)
		})
	}
}

func TestNewPanicsOnZeroDuration(t *testing.T) {
	assert.PanicsWithValue(t, "tween: duration must be positive", func() {
		New(0, 1, 0)
	})
}

func TestAnimationsAsGroupMembers(t *testing.T) {
	q := newQueue(t)
	a := New(0, 1, time.Second, WithQueue(q))
	b := New(0, 1, 2*time.Second, WithQueue(q))
	var missing *Animation

	g := playback.NewGroup([]playback.Handle{a, missing, b}, playback.WithQueue(q))
	require.Equal(t, 2, g.Len())

	require.NoError(t, g.Play())
	require.NoError(t, g.SetCurrentTime(0.5))
	assert.Equal(t, 0.5, g.CurrentTime())

	d := NewDriver(time.Millisecond)
	d.Add(a, b)
	d.Step(600 * time.Millisecond)
	assert.Equal(t, Finished, a.State())
	assert.False(t, g.Finished().Settled())

	d.Step(time.Second)
	require.NoError(t, g.Wait(waitCtx(t)))
	assert.Equal(t, 0, d.Len())
}

func TestGroupStopFinishesTweens(t *testing.T) {
	q := newQueue(t)
	a := New(0, 1, time.Second, WithQueue(q))
	b := New(0, 1, time.Second, WithQueue(q))
	g := playback.NewGroup([]playback.Handle{a, b}, playback.WithQueue(q))

	require.NoError(t, g.Play())
	require.NoError(t, g.Stop())
	require.NoError(t, g.Wait(waitCtx(t)))
}

func TestGroupPlayAfterFinishReportsEveryMember(t *testing.T) {
	q := newQueue(t)
	a := New(0, 1, time.Second, WithQueue(q))
	b := New(0, 1, time.Second, WithQueue(q))
	c := New(0, 1, time.Second, WithQueue(q))
	require.NoError(t, a.Stop())
	require.NoError(t, c.Stop())

	g := playback.NewGroup([]playback.Handle{a, b, c}, playback.WithQueue(q))
	err := g.Play()

	assert.ErrorIs(t, err, ErrFinished)
	assert.Len(t, playback.AllMemberErrors(err), 2)
	assert.Equal(t, Running, b.State(), "b still starts")
}
