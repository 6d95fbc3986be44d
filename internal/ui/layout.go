package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskboard/internal/theme"
)

// Layout manages the terminal frame: a header with the view tabs, the
// content area and a status bar.
type Layout struct {
	Width           int
	Height          int
	HeaderHeight    int
	StatusBarHeight int
}

// NewLayout creates a Layout with the given terminal dimensions.
func NewLayout(width, height int) Layout {
	return Layout{
		Width:           width,
		Height:          height,
		HeaderHeight:    1,
		StatusBarHeight: 1,
	}
}

// ContentWidth returns the full available width.
func (l Layout) ContentWidth() int {
	return l.Width
}

// ContentHeight returns the height left for the active view.
func (l Layout) ContentHeight() int {
	h := l.Height - l.HeaderHeight - l.StatusBarHeight
	if h < 0 {
		return 0
	}
	return h
}

// RenderHeader renders the title, the tab strip with active highlighted
// and a right-aligned status such as the signed-in user.
func (l Layout) RenderHeader(title string, tabs []string, active int, status string) string {
	parts := []string{theme.HeaderStyle.Render(title)}
	for i, tab := range tabs {
		style := theme.HeaderStyle.Bold(false).Foreground(theme.ColorSubtle)
		if i == active {
			style = theme.HeaderStyle.Underline(true)
		}
		parts = append(parts, style.Render(tab))
	}
	left := lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	right := theme.HeaderStyle.Render(status)

	return lipgloss.JoinHorizontal(lipgloss.Top, left, l.fill(theme.HeaderStyle, left, right), right)
}

// RenderStatusBar renders the bottom bar. An error replaces the hints.
func (l Layout) RenderStatusBar(hints, errText string) string {
	style := theme.StatusBarStyle
	text := hints
	if errText != "" {
		style = style.Foreground(theme.ColorRed).Bold(true)
		text = errText
	}
	rendered := style.Render(text)
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered, l.fill(style, rendered))
}

// RenderWithFrame stacks header, content and status bar, padding the
// content to the available height.
func (l Layout) RenderWithFrame(header, content, statusBar string) string {
	if missing := l.ContentHeight() - lipgloss.Height(content); missing > 0 {
		content += strings.Repeat("\n", missing)
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
}

func (l Layout) fill(style lipgloss.Style, rendered ...string) string {
	gap := l.Width
	for _, r := range rendered {
		gap -= lipgloss.Width(r)
	}
	if gap < 0 {
		gap = 0
	}
	return lipgloss.NewStyle().
		Width(gap).
		Background(style.GetBackground()).
		Render("")
}

// FormWidth clamps a huh form's width to the view.
func FormWidth(viewWidth int) int {
	return min(max(viewWidth-4, 40), 100)
}

// FormHeight clamps a huh form's height to the view.
func FormHeight(viewHeight int) int {
	return max(viewHeight-4, 10)
}
