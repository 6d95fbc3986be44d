package help

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskboard/internal/keys"
	"github.com/nhle/taskboard/internal/theme"
	"github.com/nhle/taskboard/internal/ui"
)

// boardHelp explains the keyboard move gesture.
const boardHelp = `No quadro Kanban:
  espaço   pega o cartão sob o cursor
  ←/→      escolhe a coluna de destino
  ↑/↓      escolhe a posição na coluna
  espaço   solta o cartão (enter também)
  esc      cancela a movimentação`

// Model is the help overlay view.
type Model struct {
	keys   *keys.KeyMap
	help   help.Model
	width  int
	height int
}

// New creates a new help view model.
func New(keys *keys.KeyMap, width, height int) Model {
	h := help.New()
	h.Width = width
	h.ShowAll = true
	return Model{
		keys:   keys,
		help:   h,
		width:  width,
		height: height,
	}
}

// Update handles messages for the help view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && key.Matches(msg, m.keys.Back) {
		return m, func() tea.Msg { return ui.BackMsg{} }
	}
	return m, nil
}

// View renders the help overlay.
func (m Model) View() string {
	content := lipgloss.JoinVertical(
		lipgloss.Left,
		theme.TitleStyle.Render("Atalhos de teclado"),
		m.help.View(m.keys),
		"",
		theme.DimmedStyle.Render(boardHelp),
	)

	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Height(max(m.height-4, 1)).
		Render(content)
}

// SetSize updates the help view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width - 4
}
