// Package navtest provides controllable nav.Controller implementations for tests.
package navtest

import (
	"context"
	"sync"
	"time"

	"go.uber.org/atomic"

	"panelnav/internal/nav"
)

// Recorder is a controller that records every transition it is asked to run.
// It can be configured to take time, fail or panic.
type Recorder struct {
	name  string
	delay time.Duration
	err   error
	panic any

	calls atomic.Int64

	mu        sync.Mutex
	snapshots [][]nav.Descriptor
	rounds    []nav.RoundInfo
	settledAt time.Time
}

// Ensure Recorder implements nav.Controller.
var _ nav.Controller = (*Recorder)(nil)

// NewRecorder creates a recorder that succeeds immediately.
func NewRecorder(name string) *Recorder {
	return &Recorder{name: name}
}

// WithDelay makes each transition take d, or until its context is done.
func (r *Recorder) WithDelay(d time.Duration) *Recorder {
	r.delay = d
	return r
}

// WithError makes each transition return err.
func (r *Recorder) WithError(err error) *Recorder {
	r.err = err
	return r
}

// WithPanic makes each transition panic with v.
func (r *Recorder) WithPanic(v any) *Recorder {
	r.panic = v
	return r
}

// Name implements nav.Named.
func (r *Recorder) Name() string { return r.name }

// Transition implements nav.Controller.
func (r *Recorder) Transition(ctx context.Context, view nav.Reader) error {
	r.calls.Inc()
	entries := view.Entries()
	info, _ := nav.RoundFromContext(ctx)

	r.mu.Lock()
	r.snapshots = append(r.snapshots, entries)
	r.rounds = append(r.rounds, info)
	r.mu.Unlock()

	var err error
	if r.delay > 0 {
		select {
		case <-time.After(r.delay):
		case <-ctx.Done():
			err = ctx.Err()
		}
	}

	r.mu.Lock()
	r.settledAt = time.Now()
	r.mu.Unlock()

	if r.panic != nil {
		panic(r.panic)
	}
	if err != nil {
		return err
	}
	return r.err
}

// Calls returns how many transitions have been started.
func (r *Recorder) Calls() int {
	return int(r.calls.Load())
}

// Snapshots returns the entries observed at the start of each transition.
func (r *Recorder) Snapshots() [][]nav.Descriptor {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([][]nav.Descriptor, len(r.snapshots))
	copy(out, r.snapshots)
	return out
}

// Rounds returns the round metadata of each transition.
func (r *Recorder) Rounds() []nav.RoundInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]nav.RoundInfo, len(r.rounds))
	copy(out, r.rounds)
	return out
}

// SettledAt returns when the most recent transition returned.
func (r *Recorder) SettledAt() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.settledAt
}

// Gate is a controller whose transitions block until released, letting tests
// observe a round while it is still in flight.
type Gate struct {
	name    string
	entered chan nav.RoundInfo
	release chan error
}

// Ensure Gate implements nav.Controller.
var _ nav.Controller = (*Gate)(nil)

// NewGate creates a gate able to hold up to 16 pending transitions.
func NewGate(name string) *Gate {
	return &Gate{
		name:    name,
		entered: make(chan nav.RoundInfo, 16),
		release: make(chan error, 16),
	}
}

// Name implements nav.Named.
func (g *Gate) Name() string { return g.name }

// Entered delivers the round of each transition as it starts.
func (g *Gate) Entered() <-chan nav.RoundInfo {
	return g.entered
}

// Release lets one blocked transition return err.
func (g *Gate) Release(err error) {
	g.release <- err
}

// Transition implements nav.Controller.
func (g *Gate) Transition(ctx context.Context, _ nav.Reader) error {
	info, _ := nav.RoundFromContext(ctx)
	g.entered <- info
	select {
	case err := <-g.release:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// HookRecorder is a nav.RoundHook that records round boundaries.
type HookRecorder struct {
	mu       sync.Mutex
	started  []nav.RoundInfo
	finished []nav.RoundInfo
	errs     []error
}

// Ensure HookRecorder implements nav.RoundHook.
var _ nav.RoundHook = (*HookRecorder)(nil)

// RoundStarted implements nav.RoundHook.
func (h *HookRecorder) RoundStarted(info nav.RoundInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.started = append(h.started, info)
}

// RoundFinished implements nav.RoundHook.
func (h *HookRecorder) RoundFinished(info nav.RoundInfo, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.finished = append(h.finished, info)
	h.errs = append(h.errs, err)
}

// Finished returns the finished rounds and their outcomes.
func (h *HookRecorder) Finished() ([]nav.RoundInfo, []error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	infos := make([]nav.RoundInfo, len(h.finished))
	copy(infos, h.finished)
	errs := make([]error, len(h.errs))
	copy(errs, h.errs)
	return infos, errs
}

// Started returns the started rounds.
func (h *HookRecorder) Started() []nav.RoundInfo {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]nav.RoundInfo, len(h.started))
	copy(out, h.started)
	return out
}
