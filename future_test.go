package playback

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFutureSettlesOnce(t *testing.T) {
	q := newTestQueue(t)
	f, settle := NewFuture(q)

	assert.False(t, f.Settled())
	assert.True(t, settle(nil))
	assert.False(t, settle(errors.New("late")), "second settle has no effect")

	require.NoError(t, f.Wait(waitCtx(t)))
	assert.NoError(t, f.Err())
}

func TestFutureRejected(t *testing.T) {
	q := newTestQueue(t)
	errBoom := errors.New("boom")
	f := Rejected(q, errBoom)

	assert.True(t, f.Settled())
	assert.ErrorIs(t, f.Wait(waitCtx(t)), errBoom)
}

func TestRejectedNilPanics(t *testing.T) {
	mustPanicContains(t, "non-nil error", func() {
		Rejected(nil, nil)
	})
}

func TestFutureThenPassesThrough(t *testing.T) {
	q := newTestQueue(t)
	errBoom := errors.New("boom")

	fulfilled := Resolved(q).Then(nil, nil)
	require.NoError(t, fulfilled.Wait(waitCtx(t)))

	rejected := Rejected(q, errBoom).Then(func() error {
		t.Error("onFulfilled must not run on rejection")
		return nil
	}, nil)
	assert.ErrorIs(t, rejected.Wait(waitCtx(t)), errBoom)
}

func TestFutureThenReturnErrorRejects(t *testing.T) {
	q := newTestQueue(t)
	errStep := errors.New("step failed")

	f := Resolved(q).Then(func() error { return errStep }, nil)
	assert.ErrorIs(t, f.Wait(waitCtx(t)), errStep)
}

func TestFutureCatchRecovers(t *testing.T) {
	q := newTestQueue(t)
	f := Rejected(q, errors.New("boom")).Catch(func(error) error { return nil })
	require.NoError(t, f.Wait(waitCtx(t)))
}

func TestFutureCallbackPanicRejects(t *testing.T) {
	q := newTestQueue(t)
	f := Resolved(q).Then(func() error { panic("bad reaction") }, nil)

	var pe *PanicError
	require.ErrorAs(t, f.Wait(waitCtx(t)), &pe)
	assert.Equal(t, "bad reaction", pe.Value)
}

func TestFutureReactionsRunInRegistrationOrder(t *testing.T) {
	q := newTestQueue(t)
	f, settle := NewFuture(q)

	var (
		mu    sync.Mutex
		order []int
	)
	for i := range 5 {
		f.OnFinish(func(error) {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		})
	}
	settle(nil)
	flush(t, q)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestFutureOnFinishOnSettledIsAsync(t *testing.T) {
	q := newTestQueue(t)
	gate := make(chan struct{})
	require.NoError(t, q.Submit(func() { <-gate }))

	f := Resolved(q)
	var called atomic.Bool
	f.OnFinish(func(error) { called.Store(true) })

	assert.False(t, called.Load())
	close(gate)
	flush(t, q)
	assert.True(t, called.Load())
}

func TestFutureOnFinishReceivesError(t *testing.T) {
	q := newTestQueue(t)
	errBoom := errors.New("boom")
	f, settle := NewFuture(q)

	got := make(chan error, 1)
	f.OnFinish(func(err error) { got <- err })
	settle(errBoom)

	assert.ErrorIs(t, <-got, errBoom)
}

func TestFutureDoneChannel(t *testing.T) {
	q := newTestQueue(t)
	f, settle := NewFuture(q)

	select {
	case <-f.Done():
		t.Fatal("pending future reported done")
	default:
	}
	settle(nil)
	<-f.Done()
}

func TestFutureWaitPrefersSettledResult(t *testing.T) {
	q := newTestQueue(t)
	errDone := errors.New("done with error")
	f := Rejected(q, errDone)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for range 100 {
		require.ErrorIs(t, f.Wait(ctx), errDone)
	}
}

func TestFutureNilQueueUsesDefault(t *testing.T) {
	f, settle := NewFuture(nil)
	settle(nil)
	require.NoError(t, f.Then(nil, nil).Wait(waitCtx(t)))
}

func TestFutureDeepChain(t *testing.T) {
	q := newTestQueue(t)
	var steps atomic.Int32

	f := Resolved(q)
	for range 100 {
		f = f.Then(func() error {
			steps.Add(1)
			return nil
		}, nil)
	}

	require.NoError(t, f.Wait(waitCtx(t)))
	assert.Equal(t, int32(100), steps.Load())
}
