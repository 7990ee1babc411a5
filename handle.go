package playback

import "reflect"

// Handle is the control surface of one independently running animation.
//
// Implementations are driven by a [Group] without it knowing anything else
// about them; a *Group is itself a Handle, so groups nest.
type Handle interface {
	// CurrentTime returns the playback position in seconds.
	CurrentTime() float64

	// SetCurrentTime moves the playback position to t seconds.
	SetCurrentTime(t float64) error

	Play() error
	Pause() error
	Stop() error

	// OnFinish registers fn to be called exactly once when the animation
	// completes: with nil when it finished, with an error when it failed.
	// fn must never be called synchronously from within OnFinish, even
	// if the animation has already completed.
	OnFinish(fn func(err error))
}

// absent reports whether h is a missing slot: a nil interface, or an
// interface holding a nil pointer, map, slice, channel or func.
func absent(h Handle) bool {
	if h == nil {
		return true
	}
	v := reflect.ValueOf(h)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		return v.IsNil()
	}
	return false
}
