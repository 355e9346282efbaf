// Package progress turns navigation rounds into status events for display.
package progress

import (
	"fmt"
	"time"

	"panelnav/internal/nav"
)

// Status indicates the state of a transition round.
type Status string

const (
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

// Event is one round boundary, as shown in the UI status line.
type Event struct {
	Round     uint64    `json:"round"`
	Op        nav.Op    `json:"op"`
	Status    Status    `json:"status"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// ChanEmitter emits round events to a channel. It implements nav.RoundHook.
type ChanEmitter struct {
	Ch chan<- Event
}

// Ensure ChanEmitter implements nav.RoundHook.
var _ nav.RoundHook = (*ChanEmitter)(nil)

// Emit sends the event to the channel (non-blocking; drops if full).
func (e *ChanEmitter) Emit(ev Event) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	select {
	case e.Ch <- ev:
	default:
		// Channel full; drop rather than stall the round
	}
}

// RoundStarted implements nav.RoundHook.
func (e *ChanEmitter) RoundStarted(info nav.RoundInfo) {
	e.Emit(Event{
		Round:   info.ID,
		Op:      info.Op,
		Status:  StatusRunning,
		Message: fmt.Sprintf("%s → %s", info.Op, describeTop(info)),
	})
}

// RoundFinished implements nav.RoundHook.
func (e *ChanEmitter) RoundFinished(info nav.RoundInfo, err error) {
	ev := Event{
		Round:   info.ID,
		Op:      info.Op,
		Status:  StatusDone,
		Message: fmt.Sprintf("%s → %s (depth %d)", info.Op, describeTop(info), info.Depth),
	}
	if err != nil {
		ev.Status = StatusError
		ev.Message = fmt.Sprintf("%s failed: %v", info.Op, err)
	}
	e.Emit(ev)
}

func describeTop(info nav.RoundInfo) string {
	if info.Top == "" {
		return "(empty)"
	}
	return info.Top
}
