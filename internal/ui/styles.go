package ui

import (
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"

	"panelnav/internal/progress"
)

// Theme colors used throughout the UI
const (
	ColorAccent    = "86"  // Cyan/green - titles, active crumb
	ColorHighlight = "205" // Magenta - selected links, borders
	ColorDanger    = "196" // Red - failed rounds, destructive modals
	ColorMuted     = "241" // Gray - hints, inactive crumbs
	ColorText      = "252" // Light gray - panel body
	ColorWarning   = "208" // Orange - rounds in flight
)

// Styles contains shared style definitions used across views and modals.
var Styles = struct {
	Title        lipgloss.Style
	TitleWarning lipgloss.Style
	Box          lipgloss.Style
	BoxDanger    lipgloss.Style

	Selected lipgloss.Style
	Muted    lipgloss.Style
	Normal   lipgloss.Style
	Hint     lipgloss.Style
	Empty    lipgloss.Style
	Details  lipgloss.Style

	Crumb       lipgloss.Style // breadcrumb entry below the top
	CrumbActive lipgloss.Style // breadcrumb entry for the visible panel

	StatusRunning lipgloss.Style
	StatusDone    lipgloss.Style
	StatusError   lipgloss.Style
}{
	Title: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(ColorAccent)),
	TitleWarning: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(ColorDanger)),
	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorHighlight)).
		Padding(1, 2).
		Margin(1),
	BoxDanger: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorDanger)).
		Padding(1, 2).
		Margin(1),
	Selected: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorHighlight)).
		Bold(true),
	Muted: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorMuted)),
	Normal: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorText)),
	Hint: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorMuted)),
	Empty: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorMuted)).
		Italic(true),
	Details: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorWarning)),
	Crumb: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorMuted)),
	CrumbActive: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(ColorAccent)),
	StatusRunning: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorWarning)),
	StatusDone: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorMuted)),
	StatusError: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(ColorDanger)),
}

// statusStyle picks the status line style for a round event.
func statusStyle(s progress.Status) lipgloss.Style {
	switch s {
	case progress.StatusRunning:
		return Styles.StatusRunning
	case progress.StatusError:
		return Styles.StatusError
	default:
		return Styles.StatusDone
	}
}

// NewCompactListDelegate returns a delegate with zero spacing and shared styles.
func NewCompactListDelegate() list.DefaultDelegate {
	d := list.NewDefaultDelegate()
	d.SetSpacing(0)
	d.ShowDescription = false
	d.Styles.SelectedTitle = Styles.Selected
	d.Styles.SelectedDesc = Styles.Selected
	d.Styles.NormalTitle = Styles.Muted
	d.Styles.NormalDesc = Styles.Muted
	return d
}
