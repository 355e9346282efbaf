package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// ConfirmModal asks before a destructive navigation action.
// Enter or y confirms; Esc or n cancels.
type ConfirmModal struct {
	Title     string
	Label     string
	Details   string
	OnConfirm func() tea.Msg
}

// Ensure ConfirmModal implements View.
var _ View = (*ConfirmModal)(nil)

// NewConfirmModal creates a confirmation modal.
func NewConfirmModal(title, label string, onConfirm func() tea.Msg) *ConfirmModal {
	return &ConfirmModal{
		Title:     title,
		Label:     label,
		OnConfirm: onConfirm,
	}
}

// NewClearConfirmModal asks before clearing the history down to the root panel.
func NewClearConfirmModal(depth int) *ConfirmModal {
	m := NewConfirmModal(
		"Clear history?",
		"Every panel will be closed and the root panel reopened.",
		func() tea.Msg { return ClearConfirmedMsg{} },
	)
	if depth > 1 {
		m.Details = pluralPanels(depth) + " will exit"
	}
	return m
}

// Init implements View.
func (m *ConfirmModal) Init() tea.Cmd {
	return nil
}

// Update implements View. Confirming also dismisses the modal.
func (m *ConfirmModal) Update(msg tea.Msg) (View, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc", "n":
			return m, dismissModal
		case "enter", "y":
			if m.OnConfirm != nil {
				return m, tea.Batch(dismissModal, m.OnConfirm)
			}
			return m, dismissModal
		}
	}
	return m, nil
}

// View implements View.
func (m *ConfirmModal) View() string {
	content := Styles.TitleWarning.Render(m.Title) + "\n\n"
	content += Styles.Normal.Render(m.Label)
	if m.Details != "" {
		content += "\n" + Styles.Details.Render(m.Details)
	}
	content += "\n\n" + Styles.Hint.Render("y/Enter: confirm  Esc: cancel")
	return Styles.BoxDanger.Render(content)
}

func dismissModal() tea.Msg { return DismissModalMsg{} }
