package nav

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/go-logr/logr"
	"go.uber.org/atomic"
)

// Stack is an ordered history of panel descriptors observed by a set of
// controllers. It is safe for use from multiple goroutines; the internal lock is
// never held while controllers run, so controllers may read the stack freely.
//
// A Stack must be created with New and released with Close.
type Stack struct {
	mu          sync.RWMutex
	entries     []Descriptor
	controllers mapset.Set[Controller]
	closed      bool
	// tail is closed when the most recently queued round settles (serial mode only).
	tail chan struct{}

	serial  bool
	timeout time.Duration
	hooks   []RoundHook
	log     logr.Logger

	seq      atomic.Uint64
	inFlight atomic.Int64
	detached sync.WaitGroup
}

// Ensure Stack can be handed to controllers.
var _ Reader = (*Stack)(nil)

// round is a mutation's pending transition: the controllers snapshotted when the
// mutation was applied plus, in serial mode, the queue links.
type round struct {
	info        RoundInfo
	controllers []Controller
	prev        <-chan struct{}
	done        chan struct{}
}

// mutation computes the next entries from the current ones. It must not modify
// entries when it returns an error.
type mutation func(entries []Descriptor) ([]Descriptor, error)

// New creates an empty stack with no controllers.
func New(opts ...Option) *Stack {
	s := &Stack{
		controllers: mapset.NewThreadUnsafeSet[Controller](),
		log:         logr.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddController registers c for every subsequent round. It returns false if c
// is nil or already registered.
func (s *Stack) AddController(c Controller) bool {
	if c == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	added := s.controllers.Add(c)
	if added {
		s.log.V(1).Info("controller registered", "controller", nameOf(c), "controllers", s.controllers.Cardinality())
	}
	return added
}

// RemoveController unregisters c. Rounds already started still wait for it.
// It returns false if c was not registered.
func (s *Stack) RemoveController(c Controller) bool {
	if c == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.controllers.Contains(c) {
		return false
	}
	s.controllers.Remove(c)
	s.log.V(1).Info("controller removed", "controller", nameOf(c), "controllers", s.controllers.Cardinality())
	return true
}

// Controllers returns the number of registered controllers.
func (s *Stack) Controllers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.controllers.Cardinality()
}

// Push appends d and waits for the resulting round.
func (s *Stack) Push(ctx context.Context, d Descriptor) error {
	r, err := s.apply(OpPush, pushing(d), false)
	if err != nil {
		return err
	}
	return s.run(ctx, r)
}

// PushMany appends ds in order as one mutation and waits for the single
// resulting round.
func (s *Stack) PushMany(ctx context.Context, ds ...Descriptor) error {
	r, err := s.apply(OpPushMany, pushing(ds...), false)
	if err != nil {
		return err
	}
	return s.run(ctx, r)
}

// Pop removes the top entry and waits for the resulting round. It returns the
// removed entry even when the round fails. Popping an empty stack returns
// ErrEmpty without starting a round.
func (s *Stack) Pop(ctx context.Context) (Descriptor, error) {
	var popped Descriptor
	r, err := s.apply(OpPop, popping(&popped), false)
	if err != nil {
		return Descriptor{}, err
	}
	return popped, s.run(ctx, r)
}

// PopCount removes the top n entries as one mutation and waits for the round.
// n must be within [0, Len()].
func (s *Stack) PopCount(ctx context.Context, n int) error {
	r, err := s.apply(OpPopCount, poppingCount(n), false)
	if err != nil {
		return err
	}
	return s.run(ctx, r)
}

// PopToIndex truncates the stack so that entry i becomes the top, then waits for
// the round. When i is already at or above the top the entries are unchanged but
// a round still runs. i == -1 empties the stack; i < -1 returns ErrOutOfRange.
func (s *Stack) PopToIndex(ctx context.Context, i int) error {
	r, err := s.apply(OpPopToIndex, poppingTo(i), false)
	if err != nil {
		return err
	}
	return s.run(ctx, r)
}

// Clear empties the stack and waits for the round. A round runs even when the
// stack was already empty.
func (s *Stack) Clear(ctx context.Context) error {
	r, err := s.apply(OpClear, poppingTo(-1), false)
	if err != nil {
		return err
	}
	return s.run(ctx, r)
}

// Len returns the number of entries.
func (s *Stack) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Top returns the current top entry, or false when the stack is empty.
func (s *Stack) Top() (Descriptor, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.entries) == 0 {
		return Descriptor{}, false
	}
	return s.entries[len(s.entries)-1], true
}

// At returns the entry at index i, where 0 is the bottom of the stack.
func (s *Stack) At(i int) (Descriptor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i < 0 || i >= len(s.entries) {
		return Descriptor{}, fmt.Errorf("%w: index %d, length %d", ErrOutOfRange, i, len(s.entries))
	}
	return s.entries[i], nil
}

// Entries returns a copy of the entries, bottom first.
func (s *Stack) Entries() []Descriptor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.entries)
}

// InFlight returns the number of detached rounds that have not settled yet.
func (s *Stack) InFlight() int {
	return int(s.inFlight.Load())
}

// Reset reinitializes the stack: entries and controllers are dropped
// unconditionally and no round is run. Hosts call it when their own lifecycle
// restarts so that nothing from a previous session survives. Rounds already in
// flight keep their controller snapshot.
func (s *Stack) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.entries)
	s.entries = nil
	s.controllers.Clear()
	s.log.V(1).Info("navigation stack reset")
}

// Close rejects further mutations with ErrClosed and waits for detached rounds
// to settle. Reads keep working. Calling Close more than once is harmless.
func (s *Stack) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.detached.Wait()
	return nil
}

// apply runs m under the lock and, on success, snapshots the controllers for the
// round that must follow. Nothing is mutated and no round is prepared when m fails.
func (s *Stack) apply(op Op, m mutation, detached bool) (round, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return round{}, ErrClosed
	}
	next, err := m(s.entries)
	if err != nil {
		return round{}, err
	}
	s.entries = next

	r := round{
		info: RoundInfo{
			ID:          s.seq.Inc(),
			Op:          op,
			Depth:       len(next),
			Controllers: s.controllers.Cardinality(),
		},
		controllers: s.controllers.ToSlice(),
	}
	if len(next) > 0 {
		r.info.Top = next[len(next)-1].Panel
	}
	if s.serial {
		r.prev = s.tail
		r.done = make(chan struct{})
		s.tail = r.done
	}
	if detached {
		// Registered under the lock so Close cannot start waiting before Add.
		s.detached.Add(1)
		s.inFlight.Inc()
	}
	return r, nil
}

func pushing(ds ...Descriptor) mutation {
	return func(entries []Descriptor) ([]Descriptor, error) {
		return append(entries, ds...), nil
	}
}

func popping(popped *Descriptor) mutation {
	return func(entries []Descriptor) ([]Descriptor, error) {
		if len(entries) == 0 {
			return nil, ErrEmpty
		}
		*popped = entries[len(entries)-1]
		return truncate(entries, len(entries)-1), nil
	}
}

func poppingCount(n int) mutation {
	return func(entries []Descriptor) ([]Descriptor, error) {
		if n < 0 || n > len(entries) {
			return nil, fmt.Errorf("%w: cannot pop %d of %d entries", ErrOutOfRange, n, len(entries))
		}
		return truncate(entries, len(entries)-n), nil
	}
}

func poppingTo(i int) mutation {
	return func(entries []Descriptor) ([]Descriptor, error) {
		if i < -1 {
			return nil, fmt.Errorf("%w: cannot pop to index %d", ErrOutOfRange, i)
		}
		if i+1 >= len(entries) {
			return entries, nil
		}
		return truncate(entries, i+1), nil
	}
}

// truncate keeps entries[:n] and zeroes the rest so popped payloads are released.
func truncate(entries []Descriptor, n int) []Descriptor {
	clear(entries[n:])
	return entries[:n]
}
