package ui

import (
	"panelnav/internal/nav"
	"panelnav/internal/progress"
)

// TransitionMsg asks the program to bring its views in line with a transition
// round. The renderer controller blocks until the model has applied it.
type TransitionMsg struct {
	Entries []nav.Descriptor
	Round   nav.RoundInfo
	done    chan Diff
}

// BackMsg pops Count panels (SPC n b, SPC n 2, esc).
type BackMsg struct {
	Count int
}

// JumpMsg pops back until the panel at Index (0-based) is on top (1-9).
type JumpMsg struct {
	Index int
}

// HomeMsg returns to the root panel without waiting for the round (SPC h).
type HomeMsg struct{}

// OpenAllMsg pushes every link of the current panel as one round (SPC n a).
type OpenAllMsg struct{}

// ClearRequestMsg opens the clear confirmation modal (SPC c).
type ClearRequestMsg struct{}

// ClearConfirmedMsg is sent when the user confirms clearing the history.
type ClearConfirmedMsg struct{}

// ResetMsg reinitializes the navigation stack and reopens the root panel (SPC r).
type ResetMsg struct{}

// DismissModalMsg is sent when the user dismisses a modal overlay.
type DismissModalMsg struct{}

// navDoneMsg reports the outcome of an awaited navigation operation.
type navDoneMsg struct {
	op  nav.Op
	err error
}

// eventMsg wraps a round progress event read from the emitter channel.
type eventMsg struct {
	event progress.Event
}
