package nav

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfRange reports an index or count outside the current stack bounds.
	ErrOutOfRange = errors.New("index out of range")
	// ErrEmpty reports a pop from an empty stack. It also matches ErrOutOfRange.
	ErrEmpty = fmt.Errorf("%w: stack is empty", ErrOutOfRange)
	// ErrClosed is returned by mutations on a closed stack.
	ErrClosed = errors.New("navigation stack closed")
	// ErrTransition wraps every controller failure reported by a round.
	ErrTransition = errors.New("transition failed")
	// ErrControllerPanic marks a controller that panicked during its transition.
	ErrControllerPanic = errors.New("controller panicked")
)
