package ui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"panelnav/internal/config"
	"panelnav/internal/nav"
	"panelnav/internal/progress"
	"panelnav/internal/ui/textutil"
)

// AppModel is the root model. It owns no navigation state of its own: the
// stack is the source of truth and the renderer controller mirrors it into views.
type AppModel struct {
	Stack      *nav.Stack
	Catalog    *config.Config
	Renderer   *Renderer
	KeyHandler *KeyHandler
	Overlays   OverlayStack

	// Events delivers round progress; nil disables the status line.
	Events <-chan progress.Event
	// Controllers are registered alongside the renderer and again after a reset.
	Controllers []nav.Controller

	ctx     context.Context
	status  progress.Event
	lastErr error
	width   int
	height  int
}

// Ensure AppModel can be used as tea.Model via adapter.
var _ tea.Model = (*appModelAdapter)(nil)

// appModelAdapter wraps AppModel to implement tea.Model.
type appModelAdapter struct {
	*AppModel
}

// NewAppModel creates the root model and registers its renderer, plus any extra
// controllers, on stack.
func NewAppModel(ctx context.Context, stack *nav.Stack, catalog *config.Config, events <-chan progress.Event, controllers ...nav.Controller) *AppModel {
	m := &AppModel{
		Stack:       stack,
		Catalog:     catalog,
		Events:      events,
		Controllers: controllers,
		ctx:         ctx,
	}
	m.Renderer = NewRenderer(m.buildView)
	m.KeyHandler = NewKeyHandler(m.keybindings())
	m.registerControllers()
	return m
}

func (m *AppModel) keybindings() *KeybindRegistry {
	reg := NewKeybindRegistry()
	reg.BindWithDesc("q", tea.Quit, "Quit")
	reg.BindWithDesc("ctrl+c", tea.Quit, "Quit")
	reg.BindWithDesc("SPC q", tea.Quit, "Quit")
	reg.BindWithDesc("SPC h", func() tea.Msg { return HomeMsg{} }, "Home")
	reg.BindWithDesc("SPC c", func() tea.Msg { return ClearRequestMsg{} }, "Clear history")
	reg.BindWithDesc("SPC r", func() tea.Msg { return ResetMsg{} }, "Reset")
	reg.BindWithDesc("SPC n b", func() tea.Msg { return BackMsg{Count: 1} }, "Back")
	reg.BindWithDesc("SPC n 2", func() tea.Msg { return BackMsg{Count: 2} }, "Back twice")
	reg.BindWithDesc("SPC n a", func() tea.Msg { return OpenAllMsg{} }, "Open all links")
	for i := 1; i <= 9; i++ {
		reg.Bind(strconv.Itoa(i), func() tea.Msg { return JumpMsg{Index: i - 1} })
	}
	return reg
}

func (m *AppModel) registerControllers() {
	m.Stack.AddController(m.Renderer)
	for _, c := range m.Controllers {
		m.Stack.AddController(c)
	}
}

// AsTeaModel returns a tea.Model adapter for use with tea.NewProgram.
func (m *AppModel) AsTeaModel() tea.Model {
	return &appModelAdapter{AppModel: m}
}

// RootDescriptor returns the descriptor of the configured root panel.
func (m *AppModel) RootDescriptor() nav.Descriptor {
	return m.descriptor(m.Catalog.Settings.Root)
}

// Restore pushes the saved panels as a single round. Panels no longer in the
// catalog are skipped, and nothing is restored unless the bottom panel is the
// root. It returns how many panels were pushed.
func (m *AppModel) Restore(ctx context.Context, panels []string) (int, error) {
	ds := make([]nav.Descriptor, 0, len(panels))
	for _, id := range panels {
		if _, ok := m.Catalog.Panel(id); ok {
			ds = append(ds, m.descriptor(id))
		}
	}
	if len(ds) == 0 || ds[0].Panel != m.Catalog.Settings.Root {
		return 0, nil
	}
	return len(ds), m.Stack.PushMany(ctx, ds...)
}

func (m *AppModel) descriptor(id string) nav.Descriptor {
	d := nav.Descriptor{Panel: id}
	if p, ok := m.Catalog.Panel(id); ok {
		d.Options = p
	}
	return d
}

// buildView creates the view for a descriptor. Unknown panels get a
// placeholder rather than failing the round.
func (m *AppModel) buildView(d nav.Descriptor) View {
	p, ok := d.Options.(config.Panel)
	if !ok {
		p, ok = m.Catalog.Panel(d.Panel)
	}
	if !ok {
		p = config.Panel{
			ID:    d.Panel,
			Title: "Unknown panel",
			Body:  fmt.Sprintf("No panel named %q is configured.", d.Panel),
		}
	}
	return NewPanelView(p, m.panelTitle)
}

func (m *AppModel) panelTitle(id string) string {
	if p, ok := m.Catalog.Panel(id); ok {
		return p.Title
	}
	return id
}

// Init implements tea.Model.
func (a *appModelAdapter) Init() tea.Cmd {
	cmds := []tea.Cmd{a.listen()}
	if a.Stack.Len() == 0 {
		root := a.RootDescriptor()
		cmds = append(cmds, a.await(nav.OpPush, func(ctx context.Context) error {
			return a.Stack.Push(ctx, root)
		}))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (a *appModelAdapter) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		a.Renderer.Resize(msg)
		return a, nil
	case TransitionMsg:
		_, cmd := a.Renderer.Apply(msg)
		return a, cmd
	case eventMsg:
		a.status = msg.event
		return a, a.listen()
	case navDoneMsg:
		a.lastErr = msg.err
		return a, nil
	case DismissModalMsg:
		a.Overlays.Pop()
		return a, nil
	case HomeMsg:
		a.lastErr = a.Stack.Detached().PopToIndex(0)
		return a, nil
	case BackMsg:
		return a, a.back(msg.Count)
	case JumpMsg:
		if msg.Index >= a.Stack.Len()-1 {
			return a, nil
		}
		return a, a.await(nav.OpPopToIndex, func(ctx context.Context) error {
			return a.Stack.PopToIndex(ctx, msg.Index)
		})
	case OpenAllMsg:
		return a, a.openAll()
	case ClearRequestMsg:
		modal := NewClearConfirmModal(a.Stack.Len())
		a.Overlays.Push(Overlay{View: modal})
		return a, modal.Init()
	case ClearConfirmedMsg:
		root := a.RootDescriptor()
		return a, a.await(nav.OpClear, func(ctx context.Context) error {
			if err := a.Stack.Clear(ctx); err != nil {
				return err
			}
			return a.Stack.Push(ctx, root)
		})
	case ResetMsg:
		a.Stack.Reset()
		a.Renderer.Clear()
		a.registerControllers()
		a.lastErr = nil
		root := a.RootDescriptor()
		return a, a.await(nav.OpPush, func(ctx context.Context) error {
			return a.Stack.Push(ctx, root)
		})
	case tea.KeyMsg:
		return a, a.handleKey(msg)
	}
	return a, a.Renderer.UpdateTop(msg)
}

func (a *appModelAdapter) handleKey(msg tea.KeyMsg) tea.Cmd {
	if a.Overlays.Len() > 0 {
		cmd, _ := a.Overlays.UpdateTop(msg)
		return cmd
	}
	if a.KeyHandler != nil {
		if consumed, cmd := a.KeyHandler.Handle(msg); consumed {
			return cmd
		}
	}
	switch msg.String() {
	case "enter":
		return a.open()
	case "esc", "backspace":
		return a.back(1)
	}
	return a.Renderer.UpdateTop(msg)
}

// open pushes the highlighted link of the visible panel.
func (a *appModelAdapter) open() tea.Cmd {
	pv, ok := a.Renderer.Top().(*PanelView)
	if !ok {
		return nil
	}
	id, ok := pv.Selected()
	if !ok {
		return nil
	}
	d := a.descriptor(id)
	return a.await(nav.OpPush, func(ctx context.Context) error {
		return a.Stack.Push(ctx, d)
	})
}

// openAll pushes every link of the visible panel as a single round.
func (a *appModelAdapter) openAll() tea.Cmd {
	pv, ok := a.Renderer.Top().(*PanelView)
	if !ok || len(pv.Panel.Links) == 0 {
		return nil
	}
	ds := make([]nav.Descriptor, len(pv.Panel.Links))
	for i, id := range pv.Panel.Links {
		ds[i] = a.descriptor(id)
	}
	return a.await(nav.OpPushMany, func(ctx context.Context) error {
		return a.Stack.PushMany(ctx, ds...)
	})
}

// back pops up to n panels, never past the root.
func (a *appModelAdapter) back(n int) tea.Cmd {
	n = min(n, a.Stack.Len()-1)
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return a.await(nav.OpPop, func(ctx context.Context) error {
			_, err := a.Stack.Pop(ctx)
			return err
		})
	}
	return a.await(nav.OpPopCount, func(ctx context.Context) error {
		return a.Stack.PopCount(ctx, n)
	})
}

// await runs an awaitable stack operation off the Update loop so the renderer
// can apply the round while the operation waits for it.
func (m *AppModel) await(op nav.Op, fn func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return navDoneMsg{op: op, err: fn(ctx)}
	}
}

// listen waits for the next round event.
func (m *AppModel) listen() tea.Cmd {
	if m.Events == nil {
		return nil
	}
	ch := m.Events
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return eventMsg{event: ev}
	}
}

// View implements tea.Model.
func (a *appModelAdapter) View() string {
	if o, ok := a.Overlays.Peek(); ok {
		if a.width > 0 {
			return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, o.View.View())
		}
		return o.View.View()
	}

	var b strings.Builder
	b.WriteString(a.breadcrumb() + "\n\n")
	if top := a.Renderer.Top(); top != nil {
		b.WriteString(top.View())
	} else {
		b.WriteString(Styles.Empty.Render("Nothing open."))
	}
	b.WriteString("\n\n" + a.statusLine())
	if a.KeyHandler != nil && a.KeyHandler.LeaderWaiting {
		b.WriteString("\n" + RenderKeybindHelp(a.KeyHandler))
	} else {
		b.WriteString("\n" + Styles.Hint.Render("enter: open  esc: back  1-9: jump  SPC: menu  q: quit"))
	}
	return b.String()
}

// breadcrumb renders the stack bottom first with 1-based jump numbers.
func (m *AppModel) breadcrumb() string {
	entries := m.Stack.Entries()
	if len(entries) == 0 {
		return Styles.Crumb.Render("(empty)")
	}
	parts := make([]string, len(entries))
	for i, d := range entries {
		parts[i] = fmt.Sprintf("%d %s", i+1, m.panelTitle(d.Panel))
	}
	plain := strings.Join(parts, " › ")
	if m.width > 0 && textutil.Width(plain) > m.width {
		return Styles.CrumbActive.Render(textutil.TruncateLeft(plain, m.width))
	}
	last := len(parts) - 1
	crumbs := make([]string, len(parts))
	for i, p := range parts {
		if i == last {
			crumbs[i] = Styles.CrumbActive.Render(p)
		} else {
			crumbs[i] = Styles.Crumb.Render(p)
		}
	}
	return strings.Join(crumbs, Styles.Crumb.Render(" › "))
}

func (m *AppModel) statusLine() string {
	var parts []string
	if m.status.Round > 0 {
		line := fmt.Sprintf("#%d %s", m.status.Round, m.status.Message)
		parts = append(parts, statusStyle(m.status.Status).Render(line))
	}
	if n := m.Stack.InFlight(); n > 0 {
		parts = append(parts, Styles.StatusRunning.Render(fmt.Sprintf("%d in flight", n)))
	}
	if m.lastErr != nil && !errors.Is(m.lastErr, context.Canceled) {
		parts = append(parts, Styles.StatusError.Render("error: "+m.lastErr.Error()))
	}
	return strings.Join(parts, Styles.Muted.Render(" · "))
}

func pluralPanels(n int) string {
	if n == 1 {
		return "1 panel"
	}
	return fmt.Sprintf("%d panels", n)
}
