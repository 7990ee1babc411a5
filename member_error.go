package playback

import (
	"errors"
	"fmt"
)

// Op names the group operation during which a member failed.
type Op string

const (
	OpSetCurrentTime Op = "set_current_time"
	OpPlay           Op = "play"
	OpPause          Op = "pause"
	OpStop           Op = "stop"

	// OpFinish marks a member whose completion was rejected, or whose
	// completion callback could not be registered.
	OpFinish Op = "finish"
)

// MemberInfo identifies a member within its group.
type MemberInfo struct {
	// Index is the member's position in [Group.Members], after absent
	// handles were dropped.
	Index int
}

// MemberError wraps an error together with the member and operation that
// produced it. Every member failure surfaced by a [Group] is a MemberError,
// so callers can attribute errors to specific members.
type MemberError struct {
	Member MemberInfo
	Op     Op
	Err    error
}

func (e *MemberError) Error() string {
	return fmt.Sprintf("member %d %s failed: %v", e.Member.Index, e.Op, e.Err)
}

func (e *MemberError) Unwrap() error {
	return e.Err
}

// Path returns the member indices from this group down to the innermost
// nested group whose member failed. For a flat group it is just
// []int{e.Member.Index}. When a nested group reports several failures,
// the first one is followed.
func (e *MemberError) Path() []int {
	path := []int{e.Member.Index}
	for cur := e; ; {
		var next *MemberError
		if !errors.As(cur.Err, &next) {
			return path
		}
		path = append(path, next.Member.Index)
		cur = next
	}
}

// IsMemberError reports whether err (or any error in its chain) is a [*MemberError].
func IsMemberError(err error) bool {
	if err == nil {
		return false
	}
	var me *MemberError
	return errors.As(err, &me)
}

// MemberOf extracts the [MemberInfo] from the first [*MemberError] in err's
// chain. Returns false if no MemberError is found.
func MemberOf(err error) (MemberInfo, bool) {
	if err == nil {
		return MemberInfo{}, false
	}

	var me *MemberError
	if errors.As(err, &me) {
		return me.Member, true
	}
	return MemberInfo{}, false
}

// CauseOf unwraps the first [*MemberError] in err's chain and returns its
// underlying cause. If err is not a MemberError, it is returned as-is.
// Returns nil if err is nil.
func CauseOf(err error) error {
	if err == nil {
		return nil
	}

	var me *MemberError
	if errors.As(err, &me) {
		return me.Err
	}

	return err
}

// AllMemberErrors recursively collects every [*MemberError] from err's chain,
// including errors wrapped via [errors.Join] and errors of nested groups.
// Outer errors come before the inner errors they wrap. Returns nil if none
// are found.
func AllMemberErrors(err error) []*MemberError {
	if err == nil {
		return nil
	}

	var out []*MemberError
	collectMemberErrors(err, &out)
	return out
}

func collectMemberErrors(err error, out *[]*MemberError) {
	switch e := err.(type) {
	case *MemberError:
		*out = append(*out, e)
		if e.Err != nil {
			collectMemberErrors(e.Err, out)
		}

	case interface{ Unwrap() []error }:
		for _, sub := range e.Unwrap() {
			collectMemberErrors(sub, out)
		}

	case interface{ Unwrap() error }:
		if inner := e.Unwrap(); inner != nil {
			collectMemberErrors(inner, out)
		}
	}
}
