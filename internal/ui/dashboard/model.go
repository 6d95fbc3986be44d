package dashboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskboard/internal/board"
	"github.com/nhle/taskboard/internal/gateway"
	"github.com/nhle/taskboard/internal/keys"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/stats"
	"github.com/nhle/taskboard/internal/theme"
	"github.com/nhle/taskboard/internal/ui"
)

const listSize = 5

// Loader performs a full load.
type Loader interface {
	LoadAll(ctx context.Context) (board.Snapshot, error)
}

type loadedMsg struct {
	gen  uint64
	snap board.Snapshot
	err  error
}

// Model is the overview screen: totals, the user's most urgent tasks and
// the newest tasks.
type Model struct {
	loader   Loader
	userID   func() int64
	now      func() time.Time
	keys     *keys.KeyMap
	scope    ui.Scope
	loading  bool
	err      string
	summary  stats.Summary
	projects stats.ProjectCounts
	mine     []model.Task
	recent   []model.Task
	cursor   int
	width    int
	height   int
}

// New creates the dashboard. userID reports the signed-in user.
func New(loader Loader, userID func() int64, k *keys.KeyMap, width, height int) Model {
	return Model{
		loader: loader,
		userID: userID,
		now:    time.Now,
		keys:   k,
		width:  width,
		height: height,
	}
}

// Init starts a full load, abandoning any previous one.
func (m *Model) Init() tea.Cmd {
	ctx := m.scope.Renew()
	gen := m.scope.Gen()
	m.loading = true
	loader := m.loader
	return func() tea.Msg {
		snap, err := loader.LoadAll(ctx)
		return loadedMsg{gen: gen, snap: snap, err: err}
	}
}

// Close cancels an outstanding load.
func (m *Model) Close() {
	m.scope.Cancel()
}

// SetSnapshot recomputes every aggregate from a complete snapshot.
func (m *Model) SetSnapshot(snap board.Snapshot) {
	uid := m.userID()
	m.loading = false
	m.err = ""
	m.summary = stats.Compute(snap.Tasks, stats.Options{CurrentUserID: uid, Now: m.now()})
	m.projects = stats.ProjectSummary(snap.Projects)
	m.mine = stats.TopMine(snap.Tasks, uid, listSize)
	m.recent = stats.Recent(snap.Tasks, listSize)
	if m.cursor >= len(m.mine)+len(m.recent) {
		m.cursor = 0
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if !m.scope.Current(msg.gen) {
			return m, nil
		}
		if msg.err != nil {
			m.loading = false
			m.err = gateway.UserMessage(msg.err)
			return m, nil
		}
		m.SetSnapshot(msg.snap)
		return m, nil

	case tea.KeyMsg:
		total := len(m.mine) + len(m.recent)
		switch {
		case key.Matches(msg, m.keys.Down):
			if total > 0 {
				m.cursor = (m.cursor + 1) % total
			}
		case key.Matches(msg, m.keys.Up):
			if total > 0 {
				m.cursor = (m.cursor - 1 + total) % total
			}
		case key.Matches(msg, m.keys.Select):
			if t, ok := m.selected(); ok {
				return m, func() tea.Msg { return ui.OpenTaskMsg{ID: t.ID} }
			}
		case key.Matches(msg, m.keys.Refresh):
			return m, m.Init()
		}
	}
	return m, nil
}

func (m Model) selected() (model.Task, bool) {
	switch {
	case m.cursor < len(m.mine):
		return m.mine[m.cursor], true
	case m.cursor-len(m.mine) < len(m.recent):
		return m.recent[m.cursor-len(m.mine)], true
	}
	return model.Task{}, false
}

// View renders the dashboard.
func (m Model) View() string {
	if m.err != "" {
		return lipgloss.NewStyle().Padding(1, 2).Render(theme.ErrorStyle.Render(m.err))
	}
	if m.loading && m.summary.Total == 0 {
		return lipgloss.NewStyle().Padding(1, 2).Render(theme.DimmedStyle.Render("Carregando..."))
	}

	var b strings.Builder
	b.WriteString(theme.TitleStyle.Render("Dashboard"))
	b.WriteString("\n")

	cards := []string{
		card("Projetos", fmt.Sprintf("%d (%d ativos)", m.projects.Total, m.projects.Active)),
		card("Tarefas", fmt.Sprint(m.summary.Total)),
		card("Concluídas", fmt.Sprint(m.summary.Completed)),
		card("Em andamento", fmt.Sprint(m.summary.InProgress)),
		card("Pendentes", fmt.Sprint(m.summary.Pending)),
		card("Atrasadas", fmt.Sprint(m.summary.Overdue)),
		card("Minhas", fmt.Sprint(m.summary.Mine)),
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	b.WriteString("\n\n")
	b.WriteString("Conclusão ")
	b.WriteString(ui.Percent(m.summary.CompletionPercentage(), 30))
	b.WriteString("\n\n")

	now := m.now()
	b.WriteString(theme.TitleStyle.Render("Minhas tarefas prioritárias"))
	b.WriteString("\n")
	if len(m.mine) == 0 {
		b.WriteString(theme.DimmedStyle.Render("  Nenhuma tarefa atribuída a você."))
		b.WriteString("\n")
	}
	for i, t := range m.mine {
		b.WriteString(ui.TaskLine(t, m.width-4, i == m.cursor, now))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(theme.TitleStyle.Render("Tarefas recentes"))
	b.WriteString("\n")
	if len(m.recent) == 0 {
		b.WriteString(theme.DimmedStyle.Render("  Nenhuma tarefa."))
		b.WriteString("\n")
	}
	for i, t := range m.recent {
		b.WriteString(ui.TaskLine(t, m.width-4, len(m.mine)+i == m.cursor, now))
		b.WriteString("\n")
	}

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Render(b.String())
}

func card(title, value string) string {
	return theme.BorderStyle.
		Padding(0, 1).
		MarginRight(1).
		Render(theme.DimmedStyle.Render(title) + "\n" + lipgloss.NewStyle().Bold(true).Render(value))
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
