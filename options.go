package playback

import "log/slog"

// Policy determines how a [Group] settles its aggregate completion when
// members are rejected.
type Policy int

const (
	// FailFast rejects the aggregate as soon as the first member is
	// rejected, with that member's [*MemberError].
	FailFast Policy = iota

	// Collect waits for every member to settle and then rejects with all
	// member errors joined via [errors.Join].
	Collect
)

type config struct {
	policy       Policy
	panicAsErr   bool
	queue        *Queue
	logger       *slog.Logger
	onMemberDone func(MemberInfo, error)
	onSettled    func(error)
}

// Option configures a [Group].
type Option func(*config)

func defaultConfig() config {
	return config{
		policy: FailFast,
	}
}

// WithPolicy sets how member rejections settle the aggregate completion.
// It panics if p is not a known Policy value.
func WithPolicy(p Policy) Option {
	return func(c *config) {
		switch p {
		case FailFast, Collect:
			c.policy = p
		default:
			panic("playback: invalid policy")
		}
	}
}

// WithPanicAsError converts panics raised by members during fan-out calls
// into [*PanicError] values returned inside a [*MemberError], instead of
// re-raising the first one once the fan-out has finished.
func WithPanicAsError() Option {
	return func(c *config) {
		c.panicAsErr = true
	}
}

// WithQueue sets the queue on which the group's future reactions run.
// The default is [DefaultQueue].
func WithQueue(q *Queue) Option {
	return func(c *config) {
		c.queue = q
	}
}

// WithLogger sets the structured logger for member failures and
// aggregate settlement. Records are emitted at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithOnMemberDone registers a hook invoked once per member when its
// completion fires, with the member's error (nil on success). The hook
// runs before the aggregate is settled by that member. A panic in the hook
// is logged and does not keep the aggregate from settling.
func WithOnMemberDone(fn func(MemberInfo, error)) Option {
	return func(c *config) {
		c.onMemberDone = fn
	}
}

// WithOnSettled registers a hook invoked once when the aggregate completion
// settles, with its error (nil when every member was fulfilled). A panic in
// the hook is logged and the aggregate settles anyway.
func WithOnSettled(fn func(error)) Option {
	return func(c *config) {
		c.onSettled = fn
	}
}
