package nav

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// run executes one transition round and returns its aggregate outcome.
func (s *Stack) run(ctx context.Context, r round) error {
	if r.done != nil {
		// Serial mode: wait for the previous round, then release the next one.
		// The wait ignores ctx so the queue order is never broken.
		defer close(r.done)
		if r.prev != nil {
			<-r.prev
		}
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	ctx = withRound(ctx, r.info)

	log := s.log.WithValues("round", r.info.ID, "op", r.info.Op.String())
	log.V(1).Info("transition round started", "depth", r.info.Depth, "top", r.info.Top, "controllers", len(r.controllers))
	s.notifyStarted(r.info)

	err := s.fanOut(ctx, r.controllers)

	s.notifyFinished(r.info, err)
	if err != nil {
		log.V(1).Info("transition round failed", "error", err.Error())
	} else {
		log.V(1).Info("transition round finished")
	}
	return err
}

// fanOut invokes every controller and waits for all of them. A single controller
// is called inline. With several, each runs on its own goroutine and the round
// reports every failure, joined in completion order, once all have returned.
func (s *Stack) fanOut(ctx context.Context, controllers []Controller) error {
	switch len(controllers) {
	case 0:
		return nil
	case 1:
		return s.transition(ctx, controllers[0])
	}

	var g multierror.Group
	for _, c := range controllers {
		g.Go(func() error {
			return s.transition(ctx, c)
		})
	}
	return g.Wait().ErrorOrNil()
}

// transition runs one controller, converting a panic into an error so a failing
// controller never takes its siblings or the host down.
func (s *Stack) transition(ctx context.Context, c Controller) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %s: %w: %v", ErrTransition, nameOf(c), ErrControllerPanic, p)
		}
	}()
	if terr := c.Transition(ctx, s); terr != nil {
		return fmt.Errorf("%w: %s: %w", ErrTransition, nameOf(c), terr)
	}
	return nil
}

func (s *Stack) notifyStarted(info RoundInfo) {
	for _, h := range s.hooks {
		safeCall(func() { h.RoundStarted(info) })
	}
}

func (s *Stack) notifyFinished(info RoundInfo, err error) {
	for _, h := range s.hooks {
		safeCall(func() { h.RoundFinished(info, err) })
	}
}

// safeCall calls fn with panic recovery. One hook failing shouldn't block others.
func safeCall(fn func()) {
	defer func() {
		_ = recover()
	}()
	fn()
}
