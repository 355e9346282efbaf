package ui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"panelnav/internal/nav"
)

// Sender delivers messages to a running Bubble Tea program. *tea.Program
// satisfies it.
type Sender interface {
	Send(msg tea.Msg)
}

// Renderer is the navigation controller that keeps the on-screen views in sync
// with the stack. While a program is attached each round is handed to the
// program's Update loop and the round settles once the model has applied it;
// otherwise views are reconciled directly.
type Renderer struct {
	mu     sync.Mutex
	sender Sender
	gone   chan struct{}
	views  ViewStack
	build  ViewFactory
	width  int
	height int
}

// Ensure Renderer implements nav.Controller.
var _ nav.Controller = (*Renderer)(nil)

// NewRenderer creates a renderer that builds views with build.
func NewRenderer(build ViewFactory) *Renderer {
	return &Renderer{build: build}
}

// Name implements nav.Named.
func (r *Renderer) Name() string { return "renderer" }

// Attach routes subsequent rounds through s.
func (r *Renderer) Attach(s Sender) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sender = s
	r.gone = make(chan struct{})
}

// Detach stops routing rounds through the program. Rounds waiting on the
// program settle immediately.
func (r *Renderer) Detach() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.gone != nil {
		close(r.gone)
	}
	r.sender = nil
	r.gone = nil
}

// Transition implements nav.Controller.
func (r *Renderer) Transition(ctx context.Context, view nav.Reader) error {
	entries := view.Entries()
	info, _ := nav.RoundFromContext(ctx)

	r.mu.Lock()
	sender, gone := r.sender, r.gone
	if sender == nil {
		r.reconcile(entries)
		r.mu.Unlock()
		return nil
	}
	r.mu.Unlock()

	msg := TransitionMsg{Entries: entries, Round: info, done: make(chan Diff, 1)}
	sender.Send(msg)
	select {
	case <-msg.done:
		return nil
	case <-gone:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Apply reconciles the views for msg and releases the waiting round. It must be
// called from the program's Update loop. The returned command initializes the
// views that entered.
func (r *Renderer) Apply(msg TransitionMsg) (Diff, tea.Cmd) {
	r.mu.Lock()
	diff, cmd := r.reconcile(msg.Entries)
	r.mu.Unlock()
	if msg.done != nil {
		msg.done <- diff
	}
	return diff, cmd
}

// reconcile must be called with mu held.
func (r *Renderer) reconcile(entries []nav.Descriptor) (Diff, tea.Cmd) {
	diff, entered := r.views.Reconcile(entries, r.build)
	cmds := make([]tea.Cmd, 0, len(entered))
	first := r.views.Len() - len(entered)
	for i, v := range entered {
		cmds = append(cmds, v.Init())
		if r.width > 0 {
			r.views.stack[first+i].view, _ = v.Update(tea.WindowSizeMsg{Width: r.width, Height: r.height})
		}
	}
	return diff, tea.Batch(cmds...)
}

// Resize forwards a window size to every view and remembers it for views that
// enter later.
func (r *Renderer) Resize(msg tea.WindowSizeMsg) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.width, r.height = msg.Width, msg.Height
	for i := range r.views.stack {
		r.views.stack[i].view, _ = r.views.stack[i].view.Update(msg)
	}
}

// Top returns the visible view, or nil when nothing is open.
func (r *Renderer) Top() View {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.views.Peek()
}

// UpdateTop passes msg to the visible view.
func (r *Renderer) UpdateTop(msg tea.Msg) tea.Cmd {
	r.mu.Lock()
	defer r.mu.Unlock()
	top := r.views.Peek()
	if top == nil {
		return nil
	}
	v, cmd := top.Update(msg)
	r.views.SetTop(v)
	return cmd
}

// Panels returns the panels that currently have a view, bottom first.
func (r *Renderer) Panels() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.views.Panels()
}

// Clear drops every view without running a round.
func (r *Renderer) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views.Clear()
}
