package projects

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskboard/internal/gateway"
	"github.com/nhle/taskboard/internal/keys"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/stats"
	"github.com/nhle/taskboard/internal/theme"
	"github.com/nhle/taskboard/internal/ui"
)

// API is the part of the backend the project list needs.
type API interface {
	ListProjects(ctx context.Context) ([]model.Project, error)
	CreateProject(ctx context.Context, in gateway.ProjectInput) (model.Project, error)
	DeleteProject(ctx context.Context, id int64) error
}

type mode int

const (
	modeList mode = iota
	modeSearch
	modeForm
	modeConfirmDelete
)

type formBindings struct {
	name        string
	description string
	status      model.ProjectStatus
	startDate   string
	endDate     string
	confirm     bool
}

type projectsLoadedMsg struct {
	gen      uint64
	projects []model.Project
	err      error
}

type projectSavedMsg struct {
	gen uint64
	err error
}

type projectDeletedMsg struct {
	gen uint64
	err error
}

// Model lists projects with a live text search and a status filter.
type Model struct {
	mode        mode
	api         API
	keys        *keys.KeyMap
	scope       ui.Scope
	projects    []model.Project
	visible     []model.Project
	status      model.ProjectStatus
	search      textinput.Model
	selectedIdx int
	loading     bool
	form        *huh.Form
	confirmForm *huh.Form
	fb          *formBindings
	statusMsg   string
	errMsg      string
	width       int
	height      int
}

// New creates the project list.
func New(api API, k *keys.KeyMap, width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "Buscar por nome ou descrição"
	ti.Prompt = "/ "
	ti.CharLimit = 100

	return Model{
		mode:   modeList,
		api:    api,
		keys:   k,
		search: ti,
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// Init loads projects, abandoning any previous load.
func (m *Model) Init() tea.Cmd {
	m.scope.Renew()
	m.mode = modeList
	m.loading = true
	return m.loadProjects()
}

// Close cancels outstanding requests.
func (m *Model) Close() {
	m.scope.Cancel()
}

// Capturing reports whether the view is consuming text input, so global
// shortcuts must not fire.
func (m Model) Capturing() bool {
	return m.mode != modeList
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case projectsLoadedMsg:
		if !m.scope.Current(msg.gen) {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.errMsg = gateway.UserMessage(msg.err)
			return m, nil
		}
		m.errMsg = ""
		m.projects = msg.projects
		m.applyFilters()
		return m, nil

	case projectSavedMsg:
		if !m.scope.Current(msg.gen) {
			return m, nil
		}
		m.mode = modeList
		if msg.err != nil {
			m.errMsg = "Erro ao criar projeto: " + gateway.UserMessage(msg.err)
			return m, nil
		}
		m.statusMsg = "Projeto criado"
		return m, tea.Batch(m.loadProjects(), changed)

	case projectDeletedMsg:
		if !m.scope.Current(msg.gen) {
			return m, nil
		}
		m.mode = modeList
		if msg.err != nil {
			m.errMsg = "Erro ao excluir projeto: " + gateway.UserMessage(msg.err)
			return m, nil
		}
		m.statusMsg = "Projeto excluído"
		return m, tea.Batch(m.loadProjects(), changed)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateActiveForm(msg)
}

func changed() tea.Msg { return ui.ChangedMsg{} }

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch m.mode {
	case modeSearch:
		return m.handleSearchKey(msg)
	case modeForm:
		return m.updateForm(msg)
	case modeConfirmDelete:
		return m.updateConfirm(msg)
	}
	return m.handleListKey(msg)
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.search.SetValue("")
		m.search.Blur()
		m.mode = modeList
		m.applyFilters()
		return m, nil
	case "enter":
		m.search.Blur()
		m.mode = modeList
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.applyFilters()
	return m, cmd
}

func (m Model) handleListKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return ui.BackMsg{} }

	case key.Matches(msg, m.keys.Down):
		if len(m.visible) > 0 {
			m.selectedIdx = (m.selectedIdx + 1) % len(m.visible)
		}

	case key.Matches(msg, m.keys.Up):
		if len(m.visible) > 0 {
			m.selectedIdx = (m.selectedIdx - 1 + len(m.visible)) % len(m.visible)
		}

	case key.Matches(msg, m.keys.Select):
		if p, ok := m.selected(); ok {
			return m, func() tea.Msg { return ui.OpenProjectMsg{ID: p.ID} }
		}

	case key.Matches(msg, m.keys.Search):
		m.mode = modeSearch
		return m, m.search.Focus()

	case key.Matches(msg, m.keys.Filter):
		m.status = nextStatus(m.status)
		m.applyFilters()

	case key.Matches(msg, m.keys.Refresh):
		m.loading = true
		return m, m.loadProjects()

	case key.Matches(msg, m.keys.New):
		*m.fb = formBindings{status: model.ProjectActive}
		m.form = m.buildForm()
		m.mode = modeForm
		return m, m.form.Init()

	case key.Matches(msg, m.keys.Delete):
		if _, ok := m.selected(); !ok {
			return m, nil
		}
		m.fb.confirm = false
		m.confirmForm = m.buildConfirmForm()
		m.mode = modeConfirmDelete
		return m, m.confirmForm.Init()
	}
	return m, nil
}

func (m *Model) applyFilters() {
	m.visible = Filter(m.projects, m.search.Value(), m.status)
	if m.selectedIdx >= len(m.visible) {
		m.selectedIdx = max(len(m.visible)-1, 0)
	}
}

func (m Model) selected() (model.Project, bool) {
	if m.selectedIdx < 0 || m.selectedIdx >= len(m.visible) {
		return model.Project{}, false
	}
	return m.visible[m.selectedIdx], true
}

func validDate(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if _, err := time.ParseInLocation(ui.DateLayout, strings.TrimSpace(s), time.Local); err != nil {
		return errors.New("use o formato dd/mm/aaaa")
	}
	return nil
}

func parseDate(s string) *model.Timestamp {
	t, err := time.ParseInLocation(ui.DateLayout, strings.TrimSpace(s), time.Local)
	if err != nil {
		return nil
	}
	return model.NewTimestamp(t)
}

func (m Model) buildForm() *huh.Form {
	fb := m.fb
	statusOpts := make([]huh.Option[model.ProjectStatus], 0, len(model.ProjectStatuses))
	for _, s := range model.ProjectStatuses {
		statusOpts = append(statusOpts, huh.NewOption(s.Label(), s))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Nome").
				Placeholder("Nome do projeto").
				Value(&fb.name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("o nome é obrigatório")
					}
					return nil
				}),
			huh.NewText().
				Title("Descrição").
				Value(&fb.description),
			huh.NewSelect[model.ProjectStatus]().
				Title("Status").
				Options(statusOpts...).
				Value(&fb.status),
			huh.NewInput().
				Title("Início").
				Placeholder("dd/mm/aaaa").
				Value(&fb.startDate).
				Validate(validDate),
			huh.NewInput().
				Title("Término").
				Placeholder("dd/mm/aaaa").
				Value(&fb.endDate).
				Validate(func(s string) error {
					if err := validDate(s); err != nil {
						return err
					}
					start, end := parseDate(fb.startDate), parseDate(s)
					if start != nil && end != nil && end.Before(start.Time) {
						return errors.New("o término deve ser após o início")
					}
					return nil
				}),
		),
	).WithWidth(ui.FormWidth(m.width)).WithHeight(ui.FormHeight(m.height))
}

func (m Model) buildConfirmForm() *huh.Form {
	p, _ := m.selected()
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Excluir o projeto %q?", p.Name)).
				Description("As tarefas do projeto também serão excluídas.").
				Affirmative("Sim, excluir").
				Negative("Cancelar").
				Value(&m.fb.confirm),
		),
	).WithWidth(ui.FormWidth(m.width)).WithHeight(ui.FormHeight(m.height))
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}
	switch m.form.State {
	case huh.StateCompleted:
		return m, m.saveProject()
	case huh.StateAborted:
		m.mode = modeList
		return m, nil
	}
	return m, cmd
}

func (m Model) updateConfirm(msg tea.Msg) (Model, tea.Cmd) {
	if m.confirmForm == nil {
		return m, nil
	}
	mdl, cmd := m.confirmForm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.confirmForm = f
	}
	switch m.confirmForm.State {
	case huh.StateCompleted:
		if p, ok := m.selected(); ok && m.fb.confirm {
			return m, m.deleteProject(p.ID)
		}
		m.mode = modeList
		return m, nil
	case huh.StateAborted:
		m.mode = modeList
		return m, nil
	}
	return m, cmd
}

func (m Model) updateActiveForm(msg tea.Msg) (Model, tea.Cmd) {
	switch m.mode {
	case modeForm:
		return m.updateForm(msg)
	case modeConfirmDelete:
		return m.updateConfirm(msg)
	case modeSearch:
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the project list or the active form.
func (m Model) View() string {
	switch m.mode {
	case modeForm:
		return m.viewForm(m.form)
	case modeConfirmDelete:
		return m.viewForm(m.confirmForm)
	default:
		return m.viewList()
	}
}

func (m Model) viewList() string {
	var b strings.Builder

	counts := stats.ProjectSummary(m.projects)
	b.WriteString(theme.TitleStyle.Render(fmt.Sprintf("Projetos (%d, %d ativos)", counts.Total, counts.Active)))
	b.WriteString("\n")

	filter := "Todos os Status"
	if m.status != "" {
		filter = m.status.Label()
	}
	b.WriteString(m.search.View())
	b.WriteString("  ")
	b.WriteString(theme.DimmedStyle.Render("[f] " + filter))
	b.WriteString("\n\n")

	switch {
	case m.loading && len(m.projects) == 0:
		b.WriteString(theme.DimmedStyle.Render("Carregando..."))
	case len(m.visible) == 0:
		b.WriteString(theme.DimmedStyle.Italic(true).Render("Nenhum projeto encontrado. Pressione 'n' para criar um."))
	default:
		for i, p := range m.visible {
			label := fmt.Sprintf("%s %s", p.Name, theme.ProjectStatusStyle(p.Status).Render(p.Status.Label()))
			if p.Description != "" {
				label += " " + theme.DimmedStyle.Render(p.Description)
			}
			style := theme.ListItemStyle
			if i == m.selectedIdx {
				style = theme.SelectedItemStyle
			}
			b.WriteString(style.MaxWidth(max(m.width-4, 10)).Render(label))
			b.WriteString("\n")
		}
	}

	if m.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(theme.ErrorStyle.Render(m.errMsg))
	} else if m.statusMsg != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorYellow).Italic(true).Render(m.statusMsg))
	}

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Render(b.String())
}

func (m Model) viewForm(f *huh.Form) string {
	if f == nil {
		return ""
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(f.View())
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.search.Width = max(width-30, 20)
}

func (m Model) loadProjects() tea.Cmd {
	api := m.api
	ctx := m.scope.Context()
	gen := m.scope.Gen()
	return func() tea.Msg {
		projects, err := api.ListProjects(ctx)
		return projectsLoadedMsg{gen: gen, projects: projects, err: err}
	}
}

func (m Model) saveProject() tea.Cmd {
	api := m.api
	ctx := m.scope.Context()
	gen := m.scope.Gen()
	in := gateway.ProjectInput{
		Name:        strings.TrimSpace(m.fb.name),
		Description: strings.TrimSpace(m.fb.description),
		Status:      m.fb.status,
		StartDate:   parseDate(m.fb.startDate),
		EndDate:     parseDate(m.fb.endDate),
	}
	return func() tea.Msg {
		_, err := api.CreateProject(ctx, in)
		return projectSavedMsg{gen: gen, err: err}
	}
}

func (m Model) deleteProject(id int64) tea.Cmd {
	api := m.api
	ctx := m.scope.Context()
	gen := m.scope.Gen()
	return func() tea.Msg {
		err := api.DeleteProject(ctx, id)
		return projectDeletedMsg{gen: gen, err: err}
	}
}
