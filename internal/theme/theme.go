package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskboard/internal/model"
)

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue    = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen   = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow  = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed     = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorOrange  = lipgloss.AdaptiveColor{Dark: "#FFA94D", Light: "#C05621"}
	ColorMagenta = lipgloss.AdaptiveColor{Dark: "#CC5DE8", Light: "#805AD5"}
	ColorGray    = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite   = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// Styles shared by every view. Rebuilt by Use.
var (
	// HeaderStyle is used for the top bar and the application title.
	HeaderStyle lipgloss.Style
	// StatusBarStyle is used for the bottom status bar.
	StatusBarStyle lipgloss.Style
	// DetailPanelStyle wraps detail content.
	DetailPanelStyle lipgloss.Style
	ListItemStyle    lipgloss.Style
	// SelectedItemStyle highlights the focused list item.
	SelectedItemStyle lipgloss.Style
	// HelpStyle is used for keyboard hints.
	HelpStyle   lipgloss.Style
	BorderStyle lipgloss.Style
	DimmedStyle lipgloss.Style
	ErrorStyle  lipgloss.Style
	TitleStyle  lipgloss.Style

	// ColumnStyle frames a kanban column; FocusedColumnStyle marks the
	// column under the cursor.
	ColumnStyle        lipgloss.Style
	FocusedColumnStyle lipgloss.Style
	// HeldCardStyle marks a card picked up for a move.
	HeldCardStyle lipgloss.Style
)

func init() {
	build()
}

// Use switches the palette. "mono" renders without accent colors; any
// other name selects the default palette.
func Use(name string) {
	if name == "mono" {
		for _, c := range []*lipgloss.AdaptiveColor{
			&ColorBlue, &ColorGreen, &ColorYellow, &ColorRed, &ColorOrange, &ColorMagenta,
		} {
			*c = ColorWhite
		}
	} else {
		ColorBlue = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
		ColorGreen = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
		ColorYellow = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
		ColorRed = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
		ColorOrange = lipgloss.AdaptiveColor{Dark: "#FFA94D", Light: "#C05621"}
		ColorMagenta = lipgloss.AdaptiveColor{Dark: "#CC5DE8", Light: "#805AD5"}
	}
	build()
}

func build() {
	HeaderStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorWhite).
		Background(ColorBlue).
		Padding(0, 1)

	StatusBarStyle = lipgloss.NewStyle().
		Foreground(ColorWhite).
		Background(ColorSubtle).
		Padding(0, 1)

	DetailPanelStyle = lipgloss.NewStyle().
		Padding(1, 2).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder)

	ListItemStyle = lipgloss.NewStyle().
		PaddingLeft(2)

	SelectedItemStyle = lipgloss.NewStyle().
		PaddingLeft(1).
		Bold(true).
		Foreground(ColorBlue).
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(ColorBlue)

	HelpStyle = lipgloss.NewStyle().
		Foreground(ColorGray).
		Italic(true)

	BorderStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder)

	DimmedStyle = lipgloss.NewStyle().Foreground(ColorGray)
	ErrorStyle = lipgloss.NewStyle().Foreground(ColorRed).Bold(true)
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorWhite).MarginBottom(1)

	ColumnStyle = lipgloss.NewStyle().
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder)

	FocusedColumnStyle = ColumnStyle.
		BorderForeground(ColorBlue)

	HeldCardStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorOrange).
		Reverse(true)
}

// StatusStyle returns a color-coded style for a canonical task status.
func StatusStyle(status model.TaskStatus) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1)

	switch status {
	case model.StatusBacklog:
		return base.Foreground(ColorGray)
	case model.StatusReadyToDevelop:
		return base.Foreground(ColorBlue)
	case model.StatusInProgress:
		return base.Foreground(ColorYellow)
	case model.StatusInReview:
		return base.Foreground(ColorMagenta)
	case model.StatusDone:
		return base.Foreground(ColorGreen)
	default:
		return base.Foreground(ColorGray)
	}
}

// PriorityStyle returns a color-coded style for a task priority.
func PriorityStyle(priority model.TaskPriority) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	switch priority {
	case model.PriorityUrgent:
		return base.Foreground(ColorRed)
	case model.PriorityHigh:
		return base.Foreground(ColorOrange)
	case model.PriorityMedium:
		return base.Foreground(ColorYellow)
	case model.PriorityLow:
		return base.Foreground(ColorBlue)
	default:
		return base.Foreground(ColorGray)
	}
}

// ProjectStatusStyle returns a color-coded style for a project status.
func ProjectStatusStyle(status model.ProjectStatus) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1)

	switch status {
	case model.ProjectActive:
		return base.Foreground(ColorGreen)
	case model.ProjectOnHold:
		return base.Foreground(ColorOrange)
	case model.ProjectCompleted:
		return base.Foreground(ColorBlue)
	case model.ProjectCancelled:
		return base.Foreground(ColorRed)
	default:
		return base.Foreground(ColorGray)
	}
}
