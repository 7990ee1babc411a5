package playback

import (
	"fmt"

	"github.com/sourcegraph/conc/panics"
)

// PanicError wraps a recovered panic value together with the goroutine
// stack trace captured at the point of the panic.
//
// A panic raised by a member during a fan-out call is re-raised as a
// *PanicError once every member has been called. With [WithPanicAsError]
// it is returned inside a [*MemberError] instead. A panic inside a
// [Future.Then] callback always rejects the derived future with a
// *PanicError.
type PanicError struct {
	// Value is the original value passed to panic().
	Value any

	// Stack is the goroutine stack trace at the point of panic.
	Stack string
}

// Error returns a human-readable representation of the panic,
// including the value and the full stack trace.
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v\n\n%s", e.Value, e.Stack)
}

// Unwrap returns the panic value if it is an error, nil otherwise.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// try runs fn and converts a panic into a *PanicError.
func try(fn func()) *PanicError {
	rec := panics.Try(fn)
	if rec == nil {
		return nil
	}
	return &PanicError{
		Value: rec.Value,
		Stack: string(rec.Stack),
	}
}
