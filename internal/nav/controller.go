package nav

import (
	"context"
	"fmt"
)

// Controller reacts to stack changes. Transition is invoked once per round after
// the mutation has been applied; the round completes when every registered
// controller has returned.
//
// Controllers are kept in a set, so implementations must be comparable values
// (pointer receivers, or controllers built with Func).
type Controller interface {
	Transition(ctx context.Context, view Reader) error
}

// Named is implemented by controllers that want a readable name in logs and errors.
type Named interface {
	Name() string
}

// TransitionFunc is the signature wrapped by Func.
type TransitionFunc func(ctx context.Context, view Reader) error

type funcController struct {
	name string
	fn   TransitionFunc
}

// Func adapts fn into a Controller. Each call returns a distinct controller, so
// registering the same function twice through two Func calls invokes it twice.
func Func(name string, fn TransitionFunc) Controller {
	return &funcController{name: name, fn: fn}
}

func (f *funcController) Transition(ctx context.Context, view Reader) error {
	return f.fn(ctx, view)
}

func (f *funcController) Name() string { return f.name }

// nameOf returns a label for c used in logs and error messages.
func nameOf(c Controller) string {
	if n, ok := c.(Named); ok && n.Name() != "" {
		return n.Name()
	}
	return fmt.Sprintf("%T", c)
}
