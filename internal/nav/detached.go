package nav

import "context"

// Detached is the fire-and-forget tier of a Stack, for call sites that cannot
// wait on a round (UI event handlers, timers).
//
// Each method applies its mutation before returning, in call order, and reports
// synchronous failures (ErrOutOfRange, ErrEmpty, ErrClosed) directly. The round
// itself runs on its own goroutine: its outcome is only logged and passed to the
// stack's round hooks, and a panicking controller is recovered there.
type Detached struct {
	s *Stack
}

// Detached returns the fire-and-forget tier of s.
func (s *Stack) Detached() Detached {
	return Detached{s: s}
}

// Push appends d and starts the round without waiting.
func (d Detached) Push(desc Descriptor) error {
	return d.start(OpPush, pushing(desc))
}

// PushMany appends ds as one mutation and starts a single round without waiting.
func (d Detached) PushMany(ds ...Descriptor) error {
	return d.start(OpPushMany, pushing(ds...))
}

// Pop removes the top entry and starts the round without waiting.
func (d Detached) Pop() (Descriptor, error) {
	var popped Descriptor
	if err := d.start(OpPop, popping(&popped)); err != nil {
		return Descriptor{}, err
	}
	return popped, nil
}

// PopCount removes the top n entries and starts the round without waiting.
func (d Detached) PopCount(n int) error {
	return d.start(OpPopCount, poppingCount(n))
}

// PopToIndex truncates the stack to index i and starts the round without waiting.
func (d Detached) PopToIndex(i int) error {
	return d.start(OpPopToIndex, poppingTo(i))
}

// Clear empties the stack and starts the round without waiting.
func (d Detached) Clear() error {
	return d.start(OpClear, poppingTo(-1))
}

func (d Detached) start(op Op, m mutation) error {
	s := d.s
	r, err := s.apply(op, m, true)
	if err != nil {
		return err
	}
	go func() {
		defer s.detached.Done()
		defer s.inFlight.Dec()
		if err := s.run(context.Background(), r); err != nil {
			s.log.Error(err, "detached transition round failed", "round", r.info.ID, "op", r.info.Op.String())
		}
	}()
	return nil
}
