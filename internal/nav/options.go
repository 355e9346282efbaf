package nav

import (
	"time"

	"github.com/go-logr/logr"
)

// Option configures a Stack at construction time.
type Option func(*Stack)

// WithLogger sets the logger. Round boundaries are logged at V(1).
func WithLogger(l logr.Logger) Option {
	return func(s *Stack) {
		s.log = l
	}
}

// WithSerialRounds queues rounds in mutation order: a round's controllers are
// not invoked until the previous round has fully settled.
func WithSerialRounds() Option {
	return func(s *Stack) {
		s.serial = true
	}
}

// WithTransitionTimeout bounds every round with a context deadline handed to the
// controllers. Zero disables the deadline. Controllers that ignore their context
// are not interrupted.
func WithTransitionTimeout(d time.Duration) Option {
	return func(s *Stack) {
		s.timeout = d
	}
}

// WithRoundHook registers h for round start and finish notifications.
// A nil hook is ignored.
func WithRoundHook(h RoundHook) Option {
	return func(s *Stack) {
		if h != nil {
			s.hooks = append(s.hooks, h)
		}
	}
}
