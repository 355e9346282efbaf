package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"panelnav/internal/config"
)

// linkItem implements list.Item for a panel link.
type linkItem struct {
	id    string
	title string
}

func (l linkItem) FilterValue() string { return l.title }
func (l linkItem) Title() string       { return l.title }
func (l linkItem) Description() string { return l.id }

// PanelView shows one catalog panel: its title, body and the links that can be
// pushed from it.
type PanelView struct {
	Panel config.Panel
	list  list.Model
}

// Ensure PanelView implements View.
var _ View = (*PanelView)(nil)

// NewPanelView creates the view for p. title resolves link ids to display
// titles; nil shows raw ids.
func NewPanelView(p config.Panel, title func(id string) string) *PanelView {
	items := make([]list.Item, len(p.Links))
	for i, id := range p.Links {
		t := id
		if title != nil {
			t = title(id)
		}
		items[i] = linkItem{id: id, title: t}
	}

	l := list.New(items, NewCompactListDelegate(), 80, 10)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()

	return &PanelView{Panel: p, list: l}
}

// Selected returns the id of the highlighted link.
func (v *PanelView) Selected() (string, bool) {
	item, ok := v.list.SelectedItem().(linkItem)
	if !ok {
		return "", false
	}
	return item.id, true
}

// Init implements View.
func (v *PanelView) Init() tea.Cmd {
	return nil
}

// Update implements View. The link list handles j/k/up/down itself.
func (v *PanelView) Update(msg tea.Msg) (View, tea.Cmd) {
	if msg, ok := msg.(tea.WindowSizeMsg); ok {
		// Reserve room for breadcrumb, title, body and status.
		v.list.SetSize(msg.Width, max(msg.Height-8, 3))
		return v, nil
	}
	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

// View implements View.
func (v *PanelView) View() string {
	var b strings.Builder
	b.WriteString(Styles.Title.Render(v.Panel.Title) + "\n")
	if v.Panel.Body != "" {
		b.WriteString(Styles.Normal.Render(v.Panel.Body) + "\n")
	}
	b.WriteString("\n")
	if len(v.Panel.Links) == 0 {
		b.WriteString(Styles.Empty.Render("No links from here. Press esc to go back."))
		return b.String()
	}
	b.WriteString(v.list.View())
	return b.String()
}
