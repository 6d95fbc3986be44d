package projectdetail

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"

	"github.com/nhle/taskboard/internal/gateway"
	"github.com/nhle/taskboard/internal/keys"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/stats"
	"github.com/nhle/taskboard/internal/theme"
	"github.com/nhle/taskboard/internal/ui"
)

// API is the part of the backend the project detail needs.
type API interface {
	GetProject(ctx context.Context, id int64) (model.Project, error)
	ListProjectTasks(ctx context.Context, projectID int64) ([]model.Task, error)
	ListUsers(ctx context.Context) ([]model.User, error)
}

type detailLoadedMsg struct {
	gen     uint64
	project model.Project
	tasks   []model.Task
	users   []model.User
	err     error
}

// Model shows one project with its aggregates, members and tasks.
type Model struct {
	api      API
	keys     *keys.KeyMap
	now      func() time.Time
	scope    ui.Scope
	id       int64
	loading  bool
	err      string
	project  model.Project
	tasks    []model.Task
	members  []model.User
	summary  stats.Summary
	duration string
	cursor   int
	width    int
	height   int
}

// New creates the project detail view.
func New(api API, k *keys.KeyMap, width, height int) Model {
	return Model{
		api:    api,
		keys:   k,
		now:    time.Now,
		width:  width,
		height: height,
	}
}

// Open loads project id, abandoning any previous load.
func (m *Model) Open(id int64) tea.Cmd {
	m.id = id
	m.cursor = 0
	m.project = model.Project{}
	m.tasks = nil
	m.members = nil
	return m.reload()
}

// Close cancels an outstanding load.
func (m *Model) Close() {
	m.scope.Cancel()
}

func (m *Model) reload() tea.Cmd {
	ctx := m.scope.Renew()
	gen := m.scope.Gen()
	m.loading = true
	api := m.api
	id := m.id
	return func() tea.Msg {
		msg := detailLoadedMsg{gen: gen}
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			p, err := api.GetProject(gctx, id)
			msg.project = p
			return err
		})
		g.Go(func() error {
			tasks, err := api.ListProjectTasks(gctx, id)
			msg.tasks = tasks
			return err
		})
		g.Go(func() error {
			users, err := api.ListUsers(gctx)
			msg.users = users
			return err
		})
		msg.err = g.Wait()
		return msg
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case detailLoadedMsg:
		if !m.scope.Current(msg.gen) {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.err = gateway.UserMessage(msg.err)
			return m, nil
		}
		m.err = ""
		m.project = msg.project
		m.tasks = msg.tasks
		m.members = stats.ProjectMembers(msg.project, msg.tasks, msg.users)
		m.summary = stats.Compute(msg.tasks, stats.Options{Now: m.now()})
		m.duration = stats.ProjectDuration(msg.project.StartDate, msg.project.EndDate)
		if m.cursor >= len(m.tasks) {
			m.cursor = 0
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Back):
			return m, func() tea.Msg { return ui.BackMsg{} }
		case key.Matches(msg, m.keys.Down):
			if len(m.tasks) > 0 {
				m.cursor = (m.cursor + 1) % len(m.tasks)
			}
		case key.Matches(msg, m.keys.Up):
			if len(m.tasks) > 0 {
				m.cursor = (m.cursor - 1 + len(m.tasks)) % len(m.tasks)
			}
		case key.Matches(msg, m.keys.Select):
			if m.cursor < len(m.tasks) {
				id := m.tasks[m.cursor].ID
				return m, func() tea.Msg { return ui.OpenTaskMsg{ID: id} }
			}
		case key.Matches(msg, m.keys.Board):
			id := m.id
			return m, func() tea.Msg { return ui.OpenBoardMsg{ProjectID: id} }
		case key.Matches(msg, m.keys.Refresh):
			return m, m.reload()
		}
	}
	return m, nil
}

// View renders the project.
func (m Model) View() string {
	pad := lipgloss.NewStyle().Padding(1, 2).Width(m.width)
	if m.err != "" {
		return pad.Render(theme.ErrorStyle.Render(m.err))
	}
	if m.loading && m.project.ID == 0 {
		return pad.Render(theme.DimmedStyle.Render("Carregando..."))
	}

	p := m.project
	var b strings.Builder
	b.WriteString(theme.TitleStyle.Render(p.Name))
	b.WriteString(theme.ProjectStatusStyle(p.Status).Render(p.Status.Label()))
	b.WriteString("\n")
	if p.Description != "" {
		b.WriteString(p.Description)
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(fmt.Sprintf("Período: %s a %s (%s)\n",
		formatDate(p.StartDate), formatDate(p.EndDate), m.duration))
	b.WriteString(fmt.Sprintf("Tarefas: %d  Concluídas: %d  Em andamento: %d  Pendentes: %d  Atrasadas: %d\n",
		m.summary.Total, m.summary.Completed, m.summary.InProgress, m.summary.Pending, m.summary.Overdue))
	b.WriteString("Progresso ")
	b.WriteString(ui.Percent(m.summary.CompletionPercentage(), 30))
	b.WriteString("\n\n")

	names := make([]string, 0, len(m.members))
	for _, u := range m.members {
		names = append(names, u.DisplayName())
	}
	b.WriteString(theme.TitleStyle.Render(fmt.Sprintf("Membros (%d)", len(m.members))))
	b.WriteString("\n")
	if len(names) == 0 {
		b.WriteString(theme.DimmedStyle.Render("  Nenhum membro."))
	} else {
		b.WriteString("  " + strings.Join(names, ", "))
	}
	b.WriteString("\n\n")

	b.WriteString(theme.TitleStyle.Render("Tarefas"))
	b.WriteString("\n")
	if len(m.tasks) == 0 {
		b.WriteString(theme.DimmedStyle.Render("  Nenhuma tarefa neste projeto."))
		b.WriteString("\n")
	}
	now := m.now()
	for i, t := range m.tasks {
		b.WriteString(ui.TaskLine(t, m.width-4, i == m.cursor, now))
		b.WriteString("\n")
	}

	return pad.Render(b.String())
}

func formatDate(ts *model.Timestamp) string {
	if !ts.Valid() {
		return "-"
	}
	return ts.Format(ui.DateLayout)
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// ProjectID is the project last opened.
func (m Model) ProjectID() int64 {
	return m.id
}
