package command

import (
	"errors"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskboard/internal/theme"
	"github.com/nhle/taskboard/internal/ui"
)

const usage = "#12 ou t 12 abre a tarefa · p 3 abre o projeto · k 3 abre o Kanban do projeto (k 0 mostra todos)"

var errUsage = errors.New("comando inválido")

// Parse turns a go-to command into the navigation message it stands for.
func Parse(input string) (tea.Msg, error) {
	fields := strings.Fields(strings.TrimSpace(input))
	if len(fields) == 0 {
		return nil, errUsage
	}

	verb, arg := "t", fields[0]
	if strings.HasPrefix(arg, "#") {
		arg = strings.TrimPrefix(arg, "#")
	} else if len(fields) == 2 {
		verb, arg = strings.ToLower(fields[0]), fields[1]
	}
	if len(fields) > 2 {
		return nil, errUsage
	}

	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id < 0 {
		return nil, errUsage
	}

	switch verb {
	case "t", "tarefa":
		if id == 0 {
			return nil, errUsage
		}
		return ui.OpenTaskMsg{ID: id}, nil
	case "p", "projeto":
		if id == 0 {
			return nil, errUsage
		}
		return ui.OpenProjectMsg{ID: id}, nil
	case "k", "kanban":
		return ui.OpenBoardMsg{ProjectID: id}, nil
	}
	return nil, errUsage
}

// Model is the go-to palette.
type Model struct {
	input  textinput.Model
	err    string
	width  int
	height int
}

// New creates a new command palette model.
func New(width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "#12, p 3, k 3"
	ti.Prompt = ": "
	ti.Width = width - 6

	return Model{
		input:  ti,
		width:  width,
		height: height,
	}
}

// Update handles messages for the command palette. esc closes it;
// enter runs the command and closes it when the command is valid.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc":
			m.input.Reset()
			m.err = ""
			return m, func() tea.Msg { return ui.BackMsg{} }
		case "enter":
			nav, err := Parse(m.input.Value())
			if err != nil {
				m.err = err.Error()
				return m, nil
			}
			m.input.Reset()
			m.err = ""
			return m, func() tea.Msg { return nav }
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the command palette.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	parts := []string{titleStyle.Render("Ir para"), m.input.View(), "", theme.DimmedStyle.Render(usage)}
	if m.err != "" {
		parts = append(parts, theme.ErrorStyle.Render(m.err))
	}

	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// SetSize updates the command palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}

// Focus gives keyboard focus to the text input.
func (m *Model) Focus() tea.Cmd {
	return m.input.Focus()
}
