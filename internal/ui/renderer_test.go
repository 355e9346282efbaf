package ui

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"panelnav/internal/nav"
)

// chanSender forwards every message to a channel, standing in for tea.Program.
type chanSender struct {
	msgs chan tea.Msg
}

func newChanSender() *chanSender {
	return &chanSender{msgs: make(chan tea.Msg, 8)}
}

func (s *chanSender) Send(msg tea.Msg) { s.msgs <- msg }

func stubFactory(d nav.Descriptor) View { return &stubView{name: d.Panel} }

func TestRenderer_ReconcilesDirectlyWithoutProgram(t *testing.T) {
	ctx := context.Background()
	r := NewRenderer(stubFactory)
	s := nav.New()
	defer s.Close()
	s.AddController(r)

	if err := s.PushMany(ctx, descs("home", "settings")...); err != nil {
		t.Fatalf("PushMany: %v", err)
	}
	if got := r.Panels(); !slices.Equal(got, []string{"home", "settings"}) {
		t.Errorf("Panels: expected [home settings], got %v", got)
	}
	if _, err := s.Pop(ctx); err != nil {
		t.Fatalf("Pop: %v", err)
	}
	if top := r.Top(); top == nil || top.View() != "home" {
		t.Errorf("Top: expected home, got %v", top)
	}
}

func TestRenderer_RoundWaitsForProgram(t *testing.T) {
	r := NewRenderer(stubFactory)
	sender := newChanSender()
	r.Attach(sender)
	s := nav.New()
	defer s.Close()
	s.AddController(r)

	result := make(chan error, 1)
	go func() {
		result <- s.Push(context.Background(), nav.Descriptor{Panel: "home"})
	}()

	msg, ok := (<-sender.msgs).(TransitionMsg)
	if !ok {
		t.Fatal("expected TransitionMsg")
	}
	if msg.Round.Op != nav.OpPush || msg.Round.Top != "home" {
		t.Errorf("Round: expected push to home, got %+v", msg.Round)
	}
	select {
	case err := <-result:
		t.Fatalf("Push returned before the program applied the round: %v", err)
	case <-time.After(20 * time.Millisecond):
	}

	diff, _ := r.Apply(msg)
	if !slices.Equal(diff.Entered, []string{"home"}) {
		t.Errorf("Apply: expected home to enter, got %v", diff.Entered)
	}
	if err := <-result; err != nil {
		t.Errorf("Push: %v", err)
	}
}

func TestRenderer_DetachReleasesWaitingRound(t *testing.T) {
	r := NewRenderer(stubFactory)
	sender := newChanSender()
	r.Attach(sender)
	s := nav.New()
	defer s.Close()
	s.AddController(r)

	result := make(chan error, 1)
	go func() {
		result <- s.Push(context.Background(), nav.Descriptor{Panel: "home"})
	}()
	<-sender.msgs
	r.Detach()

	if err := <-result; err != nil {
		t.Errorf("Push after Detach: %v", err)
	}

	// Detached renderers reconcile directly again.
	if err := s.Push(context.Background(), nav.Descriptor{Panel: "about"}); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if got := r.Panels(); !slices.Equal(got, []string{"home", "about"}) {
		t.Errorf("Panels: expected [home about], got %v", got)
	}
}

func TestRenderer_TimeoutWhenProgramNeverApplies(t *testing.T) {
	r := NewRenderer(stubFactory)
	r.Attach(newChanSender())
	s := nav.New(nav.WithTransitionTimeout(20 * time.Millisecond))
	defer s.Close()
	s.AddController(r)

	err := s.Push(context.Background(), nav.Descriptor{Panel: "home"})
	if !errors.Is(err, nav.ErrTransition) || !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Push: expected transition deadline error, got %v", err)
	}
	if s.Len() != 1 {
		t.Errorf("Len: the mutation must survive a failed round, got %d", s.Len())
	}
}

func TestRenderer_ResizeReachesEnteredViews(t *testing.T) {
	cat := testCatalog(t)
	r := NewRenderer(func(d nav.Descriptor) View {
		p, _ := cat.Panel(d.Panel)
		return NewPanelView(p, nil)
	})
	r.Resize(tea.WindowSizeMsg{Width: 40, Height: 20})
	r.Apply(TransitionMsg{Entries: descs("home")})

	pv, ok := r.Top().(*PanelView)
	if !ok {
		t.Fatalf("Top: expected *PanelView, got %T", r.Top())
	}
	if w := pv.list.Width(); w != 40 {
		t.Errorf("list width: expected 40, got %d", w)
	}
}
