package ai

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	aiservice "github.com/nhle/taskboard/internal/ai"
	"github.com/nhle/taskboard/internal/keys"
	"github.com/nhle/taskboard/internal/theme"
	"github.com/nhle/taskboard/internal/ui"
)

// ReplyMsg carries the assistant's answer to a message or confirmation.
type ReplyMsg struct {
	Reply aiservice.Reply
	Err   error
}

// Model is the chat panel.
type Model struct {
	assistant *aiservice.Assistant
	input     textarea.Model
	viewport  viewport.Model
	waiting   bool
	keys      *keys.KeyMap
	width     int
	height    int
}

// New creates a chat panel around assistant.
func New(assistant *aiservice.Assistant, k *keys.KeyMap, width, height int) Model {
	ta := textarea.New()
	ta.Placeholder = "Pergunte ou peça uma ação..."
	ta.Prompt = "> "
	ta.ShowLineNumbers = false
	ta.SetWidth(width - 4)
	ta.SetHeight(3)
	ta.CharLimit = 2000
	ta.Focus()

	vp := viewport.New(width-4, max(height-8, 4))
	vp.Style = lipgloss.NewStyle()

	m := Model{
		assistant: assistant,
		input:     ta,
		viewport:  vp,
		keys:      k,
		width:     width,
		height:    height,
	}
	m.refreshViewport()
	return m
}

// Init returns the initial command for the chat panel.
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Capturing is always true: the panel owns the keyboard for typing.
func (m Model) Capturing() bool {
	return true
}

// Update handles messages for the chat panel.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ReplyMsg:
		m.waiting = false
		m.refreshViewport()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Back) {
		if m.waiting {
			return m, nil
		}
		return m, func() tea.Msg { return ui.BackMsg{} }
	}

	if m.assistant.Pending() && !m.waiting && strings.TrimSpace(m.input.Value()) == "" {
		switch {
		case key.Matches(msg, m.keys.Approve):
			return m.confirm(true)
		case key.Matches(msg, m.keys.Reject):
			return m.confirm(false)
		}
	}

	switch msg.String() {
	case "enter":
		if m.waiting {
			return m, nil
		}
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			return m, nil
		}
		m.input.Reset()
		m.waiting = true
		assistant := m.assistant
		cmd := func() tea.Msg {
			reply, err := assistant.Send(context.Background(), text)
			return ReplyMsg{Reply: reply, Err: err}
		}
		// Shown until the reply arrives and the history includes it.
		m.viewport.SetContent(m.renderConversation(text))
		m.viewport.GotoBottom()
		return m, cmd

	case "ctrl+r":
		if !m.waiting {
			m.assistant.Reset()
			m.refreshViewport()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) confirm(approved bool) (Model, tea.Cmd) {
	m.waiting = true
	assistant := m.assistant
	m.refreshViewport()
	return m, func() tea.Msg {
		reply, err := assistant.Confirm(context.Background(), approved)
		return ReplyMsg{Reply: reply, Err: err}
	}
}

func (m *Model) refreshViewport() {
	m.viewport.SetContent(m.renderConversation(""))
	m.viewport.GotoBottom()
}

// renderConversation builds the transcript. sending is a message that
// has been submitted but is not yet in the history.
func (m Model) renderConversation(sending string) string {
	var sections []string

	roleStyle := lipgloss.NewStyle().Bold(true)
	userStyle := roleStyle.Foreground(theme.ColorBlue)
	assistantStyle := roleStyle.Foreground(theme.ColorGreen)
	contentStyle := lipgloss.NewStyle().Foreground(theme.ColorWhite).Width(max(m.width-8, 20))

	for _, msg := range m.assistant.Messages() {
		label := assistantStyle.Render("Assistente:")
		if msg.Role == aiservice.RoleUser {
			label = userStyle.Render("Você:")
		}
		sections = append(sections, label, contentStyle.Render(msg.Content))
		if msg.PendingAction != nil && !m.waiting {
			sections = append(sections, lipgloss.NewStyle().Foreground(theme.ColorYellow).
				Render("Confirmar ação? [y] sim  [n] não"))
		}
		sections = append(sections, "")
	}
	if sending != "" {
		sections = append(sections, userStyle.Render("Você:"), contentStyle.Render(sending), "")
	}
	if m.waiting {
		sections = append(sections, theme.DimmedStyle.Italic(true).Render("..."))
	}
	return strings.Join(sections, "\n")
}

// View renders the chat panel.
func (m Model) View() string {
	title := theme.TitleStyle.Render("Assistente de projetos")
	separator := lipgloss.NewStyle().Foreground(theme.ColorSubtle).
		Render(strings.Repeat("─", max(min(m.width-6, 80), 1)))

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		m.viewport.View(),
		separator,
		m.input.View(),
	)
	return theme.DetailPanelStyle.Width(m.width - 4).Render(content)
}

// SetSize updates the chat panel dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.SetWidth(width - 4)
	m.viewport.Width = width - 4
	m.viewport.Height = max(height-8, 4)
	m.refreshViewport()
}

// Focus gives keyboard focus to the text input.
func (m *Model) Focus() tea.Cmd {
	m.refreshViewport()
	return m.input.Focus()
}
