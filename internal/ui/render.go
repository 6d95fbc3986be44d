package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskboard/internal/board"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/theme"
)

// DateLayout is the dd/mm/yyyy form used in every view.
const DateLayout = "02/01/2006"

// TaskLine renders a one-line task summary: priority, title, status and
// due date, truncated to width.
func TaskLine(t model.Task, width int, selected bool, now time.Time) string {
	status := board.CanonicalStatus(t.Status)
	line := fmt.Sprintf("%s %s  %s",
		theme.PriorityStyle(t.Priority).Render("●"),
		t.Title,
		theme.StatusStyle(status).Render(status.Label()),
	)
	if t.HasDueDate() {
		due := "até " + t.DueDate.Format(DateLayout)
		t.Status = status
		if t.IsOverdue(now) {
			line += " " + theme.ErrorStyle.Render(due)
		} else {
			line += " " + theme.DimmedStyle.Render(due)
		}
	}
	style := theme.ListItemStyle
	if selected {
		style = theme.SelectedItemStyle
	}
	return style.MaxWidth(max(width, 10)).Render(line)
}

// Percent renders a completion bar like "███░░░ 50%".
func Percent(p, width int) string {
	width = max(width, 4)
	filled := p * width / 100
	bar := lipgloss.NewStyle().Foreground(theme.ColorGreen).Render(strings.Repeat("█", filled)) +
		theme.DimmedStyle.Render(strings.Repeat("░", width-filled))
	return fmt.Sprintf("%s %d%%", bar, p)
}
