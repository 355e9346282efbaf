package ui

import "panelnav/internal/nav"

// ViewFactory builds the view shown for a descriptor.
type ViewFactory func(d nav.Descriptor) View

// Diff is what one reconcile changed: panels that exited (top first) and panels
// that entered (bottom first).
type Diff struct {
	Exited  []string
	Entered []string
	Depth   int
}

// Changed reports whether any view entered or exited.
func (d Diff) Changed() bool {
	return len(d.Exited) > 0 || len(d.Entered) > 0
}

type stackedView struct {
	desc nav.Descriptor
	view View
}

// ViewStack mirrors the navigation stack with live views, so a panel returned
// to by back navigation keeps its state (selection, scroll).
type ViewStack struct {
	stack []stackedView
}

// Push adds a view to the top of the stack.
func (s *ViewStack) Push(d nav.Descriptor, v View) {
	s.stack = append(s.stack, stackedView{desc: d, view: v})
}

// Pop removes and returns the top view.
// Returns nil if the stack is empty.
func (s *ViewStack) Pop() View {
	if len(s.stack) == 0 {
		return nil
	}
	top := s.stack[len(s.stack)-1]
	s.stack[len(s.stack)-1] = stackedView{}
	s.stack = s.stack[:len(s.stack)-1]
	return top.view
}

// Peek returns the top view without removing it.
func (s *ViewStack) Peek() View {
	if len(s.stack) == 0 {
		return nil
	}
	return s.stack[len(s.stack)-1].view
}

// SetTop replaces the top view, keeping its descriptor.
func (s *ViewStack) SetTop(v View) {
	if len(s.stack) == 0 {
		return
	}
	s.stack[len(s.stack)-1].view = v
}

// Len returns the number of views in the stack.
func (s *ViewStack) Len() int {
	return len(s.stack)
}

// Panels returns the panel names of the stacked views, bottom first.
func (s *ViewStack) Panels() []string {
	out := make([]string, len(s.stack))
	for i, sv := range s.stack {
		out[i] = sv.desc.Panel
	}
	return out
}

// Clear drops every view.
func (s *ViewStack) Clear() {
	clear(s.stack)
	s.stack = s.stack[:0]
}

// Reconcile makes the view stack match entries. Views on the common prefix are
// kept; everything above it exits (top first) and the remaining entries enter
// with views built by build. Entered views are returned so the caller can Init them.
func (s *ViewStack) Reconcile(entries []nav.Descriptor, build ViewFactory) (Diff, []View) {
	keep := 0
	for keep < len(s.stack) && keep < len(entries) && s.stack[keep].desc.Panel == entries[keep].Panel {
		keep++
	}

	var diff Diff
	for s.Len() > keep {
		diff.Exited = append(diff.Exited, s.stack[s.Len()-1].desc.Panel)
		s.Pop()
	}
	entered := make([]View, 0, len(entries)-keep)
	for _, d := range entries[keep:] {
		v := build(d)
		s.Push(d, v)
		entered = append(entered, v)
		diff.Entered = append(diff.Entered, d.Panel)
	}
	diff.Depth = s.Len()
	return diff, entered
}
