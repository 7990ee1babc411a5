// Package playback drives a batch of independently running animations as
// one animation.
//
// Each animation is a [Handle]: something with a playback position,
// transport controls, and a one-shot completion callback. A [Group] wraps
// an ordered set of handles and exposes the same surface, so groups can be
// nested inside other groups.
//
// # Building a Group
//
// [NewGroup] takes the handles of animations that were started together.
// Slots may be absent (a nil handle, for a property that had nothing to
// animate); those are dropped and the order of the rest is kept:
//
//	g := playback.NewGroup([]playback.Handle{opacity, nil, x})
//	g.Len() // 2
//
// # Transport
//
// [Group.Play], [Group.Pause], [Group.Stop] and [Group.SetCurrentTime]
// call the same method on every member, in construction order.
// [Group.CurrentTime] reads the first member's position (0 when the group
// is empty).
//
// A failing member never stops the fan-out: every member is called, and
// the returned error joins a [*MemberError] for each member that failed.
// A member that panics is likewise skipped past; the first panic is
// re-raised once the fan-out is complete, or returned as a [*PanicError]
// with [WithPanicAsError].
//
// # Completion
//
// Completion fans in through a [Future]. The first call to [Group.Then],
// [Group.Catch], [Group.OnFinish], [Group.Wait] or [Group.Finished]
// registers exactly one callback on every member; every later call chains
// onto the same aggregate:
//
//	g.Then(func() error {
//	    log.Println("all animations finished")
//	    return nil
//	}, nil).Then(next, nil)
//
//	if err := g.Wait(ctx); err != nil {
//	    // a member was rejected, or ctx ended
//	}
//
// An empty group is fulfilled immediately. How rejections settle the
// aggregate is set with [WithPolicy]:
//
//   - [FailFast] (default): the first rejected member rejects the group.
//   - [Collect]: wait for every member, then reject with all errors joined
//     via [errors.Join].
//
// Use [IsMemberError], [MemberOf], [CauseOf] and [AllMemberErrors] to
// attribute errors to members, including members of nested groups.
//
// # Futures and Queues
//
// [Future] is a promise-style completion signal: Pending until settled
// once, fulfilled or rejected. [Future.Then] returns a new Future, so
// reactions chain. Reactions run on a [Queue], a single worker goroutine
// that runs them one at a time in order; a reaction never runs inside the
// call that registered it, even on an already-settled future.
//
// Groups and futures use [DefaultQueue] unless given one with [WithQueue]
// or [NewFuture]. [NewFuture] also gives handle implementations the
// completion primitive they need: forward [Handle.OnFinish] to
// [Future.OnFinish].
//
// # Observability
//
//   - [WithLogger]: debug records for member failures and settlement.
//   - [WithOnMemberDone]: called as each member's completion fires.
//   - [WithOnSettled]: called once when the aggregate settles.
//   - [Queue.Stats]: reaction counters.
//
// # Subpackages
//
// [github.com/baxromumarov/playback/tween] provides a time-driven
// animation implementing [Handle], plus a frame [tween.Driver].
// [github.com/baxromumarov/playback/render] applies resolved style values
// onto an element.
package playback
