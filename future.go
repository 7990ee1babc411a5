package playback

import (
	"context"
	"sync"
)

// Future is a one-shot completion signal with promise-style chaining.
//
// A Future starts Pending and becomes Settled exactly once, either
// fulfilled (nil error) or rejected (non-nil error). Callbacks registered
// through [Future.Then], [Future.Catch] and [Future.OnFinish] run on the
// future's [Queue], never inside the call that registered them, including
// when the future is already settled.
type Future struct {
	q *Queue

	mu        sync.Mutex
	settled   bool
	err       error
	reactions []func()
	done      chan struct{}
}

// SettleFunc settles the future it was returned with. A nil err fulfills
// the future; a non-nil err rejects it. Only the first call has any effect;
// it reports whether this call settled the future.
type SettleFunc func(err error) bool

// NewFuture returns a pending future and the function that settles it.
// Reactions run on q, or on [DefaultQueue] when q is nil.
/* Example:
	f, settle := playback.NewFuture(nil)
	go func() { settle(work()) }()
	err := f.Wait(ctx)
*/
func NewFuture(q *Queue) (*Future, SettleFunc) {
	if q == nil {
		q = DefaultQueue()
	}
	f := &Future{
		q:    q,
		done: make(chan struct{}),
	}
	return f, f.settle
}

// Resolved returns a future that is already fulfilled.
func Resolved(q *Queue) *Future {
	f, settle := NewFuture(q)
	settle(nil)
	return f
}

// Rejected returns a future that is already rejected with err.
// Panics if err is nil.
func Rejected(q *Queue, err error) *Future {
	if err == nil {
		panic("playback: Rejected requires non-nil error")
	}
	f, settle := NewFuture(q)
	settle(err)
	return f
}

func (f *Future) settle(err error) bool {
	f.mu.Lock()
	if f.settled {
		f.mu.Unlock()
		return false
	}
	f.settled = true
	f.err = err
	reactions := f.reactions
	f.reactions = nil
	close(f.done)
	f.mu.Unlock()

	for _, r := range reactions {
		f.q.schedule(r)
	}
	return true
}

// react registers fn to be called with the settled error on a later turn.
func (f *Future) react(fn func(err error)) {
	f.mu.Lock()
	if !f.settled {
		f.reactions = append(f.reactions, func() { fn(f.err) })
		f.mu.Unlock()
		return
	}
	err := f.err
	f.mu.Unlock()

	f.q.schedule(func() { fn(err) })
}

// Then returns a new future settled by the outcome of f and the callbacks.
//
// When f is fulfilled, onFulfilled runs and its return value settles the
// returned future; a nil onFulfilled passes the fulfillment through. When f
// is rejected, onRejected runs with the error and its return value settles
// the returned future (returning nil recovers); a nil onRejected passes the
// rejection through. A panic in either callback rejects the returned future
// with a [*PanicError].
//
// Then never blocks and never invokes a callback synchronously.
func (f *Future) Then(onFulfilled func() error, onRejected func(error) error) *Future {
	next, settle := NewFuture(f.q)

	f.react(func(err error) {
		var out error
		pe := try(func() {
			switch {
			case err == nil && onFulfilled != nil:
				out = onFulfilled()
			case err == nil:
				out = nil
			case onRejected != nil:
				out = onRejected(err)
			default:
				out = err
			}
		})
		if pe != nil {
			out = pe
		}
		settle(out)
	})

	return next
}

// Catch is shorthand for Then(nil, onRejected).
func (f *Future) Catch(onRejected func(error) error) *Future {
	return f.Then(nil, onRejected)
}

// OnFinish registers fn to be called exactly once with the settled error
// (nil when fulfilled). It is the minimal completion primitive of [Handle],
// so anything that owns a Future can forward to it.
func (f *Future) OnFinish(fn func(err error)) {
	f.react(fn)
}

// Wait blocks until f settles or ctx is done. It returns the rejection
// error, nil when fulfilled, or ctx.Err() if ctx ends first. A future
// that has already settled reports its result even if ctx is done.
//
// Wait must not be called from a reaction running on the same queue that
// would settle f.
func (f *Future) Wait(ctx context.Context) error {
	select {
	case <-f.done:
		return f.Err()
	default:
	}

	select {
	case <-f.done:
		return f.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done returns a channel that is closed when f settles.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Settled reports whether f has settled.
func (f *Future) Settled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.settled
}

// Err returns the rejection error. It returns nil while f is pending and
// after it is fulfilled.
func (f *Future) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.err
}
