package playback

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Group fans transport calls out to its members and fans their completion
// back in. Members are fixed at construction. The group holds no transport
// state of its own: whether it is "paused" is whatever its members report.
//
// A Group is safe for concurrent use as long as its members are.
//
//	g := playback.NewGroup([]playback.Handle{opacity, nil, x})
//	g.Play()
//	g.Then(func() error {
//	    fmt.Println("all done")
//	    return nil
//	}, nil)
//	err := g.Wait(ctx)
type Group struct {
	members []Handle
	cfg     config
	logger  *slog.Logger

	once     sync.Once
	finished *Future
}

var _ Handle = (*Group)(nil)

// NewGroup creates a group over handles, dropping absent entries (nil, or
// a typed nil such as a nil *tween.Animation) while keeping the order of
// the rest. An empty or all-absent input yields a valid group with no
// members.
func NewGroup(handles []Handle, opts ...Option) *Group {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.queue == nil {
		cfg.queue = DefaultQueue()
	}
	logger := cfg.logger
	if logger == nil {
		logger = discardLogger()
	}

	members := make([]Handle, 0, len(handles))
	for _, h := range handles {
		if !absent(h) {
			members = append(members, h)
		}
	}

	return &Group{
		members: members,
		cfg:     cfg,
		logger:  logger,
	}
}

// Members returns a copy of the group's members in construction order.
func (g *Group) Members() []Handle {
	out := make([]Handle, len(g.members))
	copy(out, g.members)
	return out
}

// Len returns the number of members.
func (g *Group) Len() int {
	return len(g.members)
}

// CurrentTime returns the first member's position, or 0 for an empty
// group. Members are assumed to be co-scheduled; diverging positions are
// not reconciled.
func (g *Group) CurrentTime() float64 {
	if len(g.members) == 0 {
		return 0
	}
	return g.members[0].CurrentTime()
}

// SetCurrentTime writes t to every member. See [Group.Play] for how member
// failures are reported.
func (g *Group) SetCurrentTime(t float64) error {
	return g.fanOut(OpSetCurrentTime, func(h Handle) error {
		return h.SetCurrentTime(t)
	})
}

// Play calls Play on every member, in order.
//
// Every member is called even when earlier ones fail. The returned error
// joins one [*MemberError] per failing member and is nil when all
// succeed. If a member panics, the remaining members are still called and
// the first panic is then re-raised as a [*PanicError], unless
// [WithPanicAsError] was given.
func (g *Group) Play() error {
	return g.fanOut(OpPlay, Handle.Play)
}

// Pause calls Pause on every member, in order. Failures are reported as
// for [Group.Play].
func (g *Group) Pause() error {
	return g.fanOut(OpPause, Handle.Pause)
}

// Stop calls Stop on every member, in order. Failures are reported as for
// [Group.Play]. Stopping does not settle the group's completion unless the
// members themselves complete when stopped.
func (g *Group) Stop() error {
	return g.fanOut(OpStop, Handle.Stop)
}

func (g *Group) fanOut(op Op, call func(Handle) error) error {
	var (
		errs       []error
		firstPanic *PanicError
	)

	for i, m := range g.members {
		var err error
		if pe := try(func() { err = call(m) }); pe != nil {
			if g.cfg.panicAsErr {
				err = pe
			} else if firstPanic == nil {
				firstPanic = pe
			}
		}
		if err == nil {
			continue
		}

		g.logger.Debug("member call failed",
			slog.Int("member", i),
			slog.String("op", string(op)),
			slog.Any("error", err),
		)
		errs = append(errs, &MemberError{
			Member: MemberInfo{Index: i},
			Op:     op,
			Err:    err,
		})
	}

	if firstPanic != nil {
		panic(firstPanic)
	}
	return errors.Join(errs...)
}

// Finished returns the group's aggregate completion. The first call
// registers exactly one completion callback on every member; later calls
// return the same future.
func (g *Group) Finished() *Future {
	g.once.Do(func() {
		g.finished = g.aggregate()
	})
	return g.finished
}

// Then chains onFulfilled and onRejected onto the group's completion and
// returns the derived future. See [Future.Then].
func (g *Group) Then(onFulfilled func() error, onRejected func(error) error) *Future {
	return g.Finished().Then(onFulfilled, onRejected)
}

// Catch is shorthand for Then(nil, onRejected).
func (g *Group) Catch(onRejected func(error) error) *Future {
	return g.Finished().Catch(onRejected)
}

// OnFinish registers fn on the group's completion, making the group usable
// as a member of another group.
func (g *Group) OnFinish(fn func(err error)) {
	g.Finished().OnFinish(fn)
}

// Wait blocks until every member has completed or ctx is done.
// See [Future.Wait].
func (g *Group) Wait(ctx context.Context) error {
	return g.Finished().Wait(ctx)
}

func (g *Group) aggregate() *Future {
	f, settle := NewFuture(g.cfg.queue)

	var settling atomic.Bool
	settleOnce := func(err error) {
		if !settling.CompareAndSwap(false, true) {
			return
		}
		g.logger.Debug("group settled",
			slog.Int("members", len(g.members)),
			slog.Any("error", err),
		)
		if g.cfg.onSettled != nil {
			g.runHook("on_settled", func() { g.cfg.onSettled(err) })
		}
		settle(err)
	}

	if len(g.members) == 0 {
		settleOnce(nil)
		return f
	}

	var (
		remaining atomic.Int64
		errMu     sync.Mutex
		errs      []error
	)
	remaining.Store(int64(len(g.members)))

	memberDone := func(info MemberInfo, err error) {
		if g.cfg.onMemberDone != nil {
			g.runHook("on_member_done", func() { g.cfg.onMemberDone(info, err) })
		}

		if err != nil {
			me := &MemberError{Member: info, Op: OpFinish, Err: err}
			g.logger.Debug("member rejected",
				slog.Int("member", info.Index),
				slog.Any("error", err),
			)
			switch g.cfg.policy {
			case FailFast:
				settleOnce(me)
			case Collect:
				errMu.Lock()
				errs = append(errs, me)
				errMu.Unlock()
			}
		}

		if remaining.Add(-1) > 0 {
			return
		}

		errMu.Lock()
		joined := errors.Join(errs...)
		errMu.Unlock()
		settleOnce(joined)
	}

	for i, m := range g.members {
		info := MemberInfo{Index: i}

		// A member that reports twice must not be counted twice.
		var fired atomic.Bool
		pe := try(func() {
			m.OnFinish(func(err error) {
				if fired.CompareAndSwap(false, true) {
					memberDone(info, err)
				}
			})
		})
		if pe != nil && fired.CompareAndSwap(false, true) {
			memberDone(info, pe)
		}
	}

	return f
}

// runHook calls a user hook. A panicking hook is logged and otherwise
// ignored; the aggregate still counts the member and still settles.
func (g *Group) runHook(name string, fn func()) {
	if pe := try(fn); pe != nil {
		g.logger.Error("group hook panicked",
			slog.String("hook", name),
			slog.Any("panic", pe.Value),
			slog.String("stack", pe.Stack),
		)
	}
}
