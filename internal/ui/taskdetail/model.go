package taskdetail

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"

	"github.com/nhle/taskboard/internal/board"
	"github.com/nhle/taskboard/internal/crossref"
	"github.com/nhle/taskboard/internal/gateway"
	"github.com/nhle/taskboard/internal/keys"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/stats"
	"github.com/nhle/taskboard/internal/theme"
	"github.com/nhle/taskboard/internal/ui"
)

// API is the part of the backend the task detail needs.
type API interface {
	GetTask(ctx context.Context, id int64) (model.Task, error)
	ListComments(ctx context.Context, taskID int64) ([]model.Comment, error)
	CreateComment(ctx context.Context, taskID int64, content string) (model.Comment, error)
	DeleteComment(ctx context.Context, taskID, commentID int64) error
	ListChecklist(ctx context.Context, taskID int64) ([]model.ChecklistItem, error)
	CreateChecklistItem(ctx context.Context, taskID int64, description string) (model.ChecklistItem, error)
	ToggleChecklistItem(ctx context.Context, taskID, itemID int64) (model.ChecklistItem, error)
	DeleteChecklistItem(ctx context.Context, taskID, itemID int64) error
}

// Tab selects the list shown below the task.
type Tab int

const (
	TabComments Tab = iota
	TabChecklist
)

type mode int

const (
	modeView mode = iota
	modeInput
	modeConfirmDelete
)

type loadedMsg struct {
	gen       uint64
	task      model.Task
	comments  []model.Comment
	checklist []model.ChecklistItem
	err       error
}

// mutatedMsg reports the outcome of an add, toggle or delete.
type mutatedMsg struct {
	gen    uint64
	action string
	err    error
}

// Model shows one task with its comments and checklist.
type Model struct {
	api   API
	keys  *keys.KeyMap
	now   func() time.Time
	scope ui.Scope

	id        int64
	task      model.Task
	comments  []model.Comment
	checklist []model.ChecklistItem
	refs      []int64
	tab       Tab
	cursor    int
	mode      mode
	input     textinput.Model
	confirm   *huh.Form
	confirmed *bool
	loading   bool

	err    string
	width  int
	height int
}

// New creates the task detail view.
func New(api API, k *keys.KeyMap, width, height int) Model {
	ti := textinput.New()
	ti.CharLimit = 1000
	return Model{
		api:       api,
		keys:      k,
		now:       time.Now,
		input:     ti,
		confirmed: new(bool),
		width:     width,
		height:    height,
	}
}

// Open loads task id, abandoning any previous load.
func (m *Model) Open(id int64) tea.Cmd {
	m.id = id
	m.task = model.Task{}
	m.comments = nil
	m.refs = nil
	m.checklist = nil
	m.tab = TabComments
	m.cursor = 0
	m.mode = modeView
	m.err = ""
	m.scope.Renew()
	return m.reload()
}

// Close cancels outstanding requests.
func (m *Model) Close() {
	m.scope.Cancel()
}

// Capturing reports whether text input has the keyboard.
func (m Model) Capturing() bool {
	return m.mode != modeView
}

func (m *Model) reload() tea.Cmd {
	m.loading = true
	api := m.api
	ctx := m.scope.Context()
	gen := m.scope.Gen()
	id := m.id
	return func() tea.Msg {
		msg := loadedMsg{gen: gen}
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			t, err := api.GetTask(gctx, id)
			msg.task = t
			return err
		})
		g.Go(func() error {
			c, err := api.ListComments(gctx, id)
			msg.comments = c
			return err
		})
		g.Go(func() error {
			items, err := api.ListChecklist(gctx, id)
			msg.checklist = items
			return err
		})
		msg.err = g.Wait()
		return msg
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if !m.scope.Current(msg.gen) {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.err = gateway.UserMessage(msg.err)
			return m, nil
		}
		m.task = msg.task
		m.comments = msg.comments
		m.checklist = msg.checklist
		m.refs = references(msg.task, msg.comments)
		m.clampCursor()
		return m, nil

	case mutatedMsg:
		if !m.scope.Current(msg.gen) {
			return m, nil
		}
		if msg.err != nil {
			m.err = fmt.Sprintf("Erro ao %s: %s", msg.action, gateway.UserMessage(msg.err))
			return m, nil
		}
		m.err = ""
		return m, tea.Batch(m.reload(), func() tea.Msg { return ui.ChangedMsg{} })

	case tea.KeyMsg:
		switch m.mode {
		case modeInput:
			return m.handleInputKey(msg)
		case modeConfirmDelete:
			return m.updateConfirm(msg)
		}
		return m.handleKey(msg)
	}

	switch m.mode {
	case modeInput:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	case modeConfirmDelete:
		return m.updateConfirm(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return ui.BackMsg{} }
	case key.Matches(msg, m.keys.NextTab):
		m.tab = (m.tab + 1) % 2
		m.cursor = 0
	case key.Matches(msg, m.keys.Down):
		if n := m.listLen(); n > 0 {
			m.cursor = (m.cursor + 1) % n
		}
	case key.Matches(msg, m.keys.Up):
		if n := m.listLen(); n > 0 {
			m.cursor = (m.cursor - 1 + n) % n
		}
	case key.Matches(msg, m.keys.New):
		m.mode = modeInput
		m.input.SetValue("")
		m.input.Placeholder = "Novo comentário"
		if m.tab == TabChecklist {
			m.input.Placeholder = "Novo item"
		}
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.Toggle):
		if m.tab == TabChecklist && m.cursor < len(m.checklist) {
			return m, m.mutate("atualizar item", toggleItem(m.id, m.checklist[m.cursor].ID))
		}
	case key.Matches(msg, m.keys.Delete):
		if m.listLen() == 0 {
			return m, nil
		}
		*m.confirmed = false
		m.confirm = m.buildConfirm()
		m.mode = modeConfirmDelete
		return m, m.confirm.Init()
	case key.Matches(msg, m.keys.Refresh):
		return m, m.reload()
	}
	return m, nil
}

func (m Model) handleInputKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeView
		m.input.Blur()
		return m, nil
	case "enter":
		text := strings.TrimSpace(m.input.Value())
		m.mode = modeView
		m.input.Blur()
		if text == "" {
			return m, nil
		}
		if m.tab == TabChecklist {
			return m, m.mutate("adicionar item", addItem(m.id, text))
		}
		return m, m.mutate("adicionar comentário", addComment(m.id, text))
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) buildConfirm() *huh.Form {
	title := "Tem certeza que deseja excluir este comentário?"
	if m.tab == TabChecklist {
		title = "Tem certeza que deseja excluir este item?"
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Excluir").
				Negative("Cancelar").
				Value(m.confirmed),
		),
	).WithWidth(ui.FormWidth(m.width))
}

func (m Model) updateConfirm(msg tea.Msg) (Model, tea.Cmd) {
	if m.confirm == nil {
		m.mode = modeView
		return m, nil
	}
	mdl, cmd := m.confirm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.confirm = f
	}
	switch m.confirm.State {
	case huh.StateCompleted:
		m.mode = modeView
		if !*m.confirmed || m.cursor >= m.listLen() {
			return m, nil
		}
		if m.tab == TabChecklist {
			return m, m.mutate("excluir item", deleteItem(m.id, m.checklist[m.cursor].ID))
		}
		return m, m.mutate("excluir comentário", deleteComment(m.id, m.comments[m.cursor].ID))
	case huh.StateAborted:
		m.mode = modeView
		return m, nil
	}
	return m, cmd
}

type mutation func(ctx context.Context, api API) error

func addComment(taskID int64, text string) mutation {
	return func(ctx context.Context, api API) error {
		_, err := api.CreateComment(ctx, taskID, text)
		return err
	}
}

func deleteComment(taskID, commentID int64) mutation {
	return func(ctx context.Context, api API) error {
		return api.DeleteComment(ctx, taskID, commentID)
	}
}

func addItem(taskID int64, text string) mutation {
	return func(ctx context.Context, api API) error {
		_, err := api.CreateChecklistItem(ctx, taskID, text)
		return err
	}
}

func toggleItem(taskID, itemID int64) mutation {
	return func(ctx context.Context, api API) error {
		_, err := api.ToggleChecklistItem(ctx, taskID, itemID)
		return err
	}
}

func deleteItem(taskID, itemID int64) mutation {
	return func(ctx context.Context, api API) error {
		return api.DeleteChecklistItem(ctx, taskID, itemID)
	}
}

func (m Model) mutate(action string, fn mutation) tea.Cmd {
	api := m.api
	ctx := m.scope.Context()
	gen := m.scope.Gen()
	return func() tea.Msg {
		return mutatedMsg{gen: gen, action: action, err: fn(ctx, api)}
	}
}

func (m Model) listLen() int {
	if m.tab == TabChecklist {
		return len(m.checklist)
	}
	return len(m.comments)
}

func (m *Model) clampCursor() {
	m.cursor = min(m.cursor, max(m.listLen()-1, 0))
}

// View renders the task, the tab strip and the active list.
func (m Model) View() string {
	pad := lipgloss.NewStyle().Padding(1, 2).Width(m.width)
	if m.loading && m.task.ID == 0 {
		return pad.Render(theme.DimmedStyle.Render("Carregando..."))
	}
	if m.task.ID == 0 && m.err != "" {
		return pad.Render(theme.ErrorStyle.Render(m.err))
	}

	t := m.task
	status := board.CanonicalStatus(t.Status)
	var b strings.Builder
	b.WriteString(theme.TitleStyle.Render(t.Title))
	b.WriteString("\n")
	b.WriteString(theme.StatusStyle(status).Render(status.Label()))
	b.WriteString(" ")
	b.WriteString(theme.PriorityStyle(t.Priority).Render(t.Priority.Label()))
	b.WriteString("\n")
	if t.Project != nil {
		b.WriteString("Projeto: " + t.Project.Name + "\n")
	}
	assignee := "Ninguém"
	if t.AssignedUser != nil {
		assignee = t.AssignedUser.DisplayName()
	}
	b.WriteString("Responsável: " + assignee + "\n")
	if t.HasDueDate() {
		due := t.DueDate.Format(ui.DateLayout)
		t.Status = status
		if t.IsOverdue(m.now()) {
			due = theme.ErrorStyle.Render(due + " (atrasada)")
		}
		b.WriteString("Prazo: " + due + "\n")
	}
	if t.Description != "" {
		b.WriteString("\n" + t.Description + "\n")
	}
	if len(m.refs) > 0 {
		ids := make([]string, len(m.refs))
		for i, id := range m.refs {
			ids[i] = fmt.Sprintf("#%d", id)
		}
		b.WriteString(theme.DimmedStyle.Render("Menciona: "+strings.Join(ids, " ")+"  (: para abrir)") + "\n")
	}
	b.WriteString("\n")

	tabs := []string{
		fmt.Sprintf("Comentários (%d)", len(m.comments)),
		fmt.Sprintf("Checklist %d%%", stats.ChecklistProgress(m.checklist)),
	}
	for i, label := range tabs {
		if Tab(i) == m.tab {
			b.WriteString(theme.HeaderStyle.Render(label))
		} else {
			b.WriteString(theme.DimmedStyle.Padding(0, 1).Render(label))
		}
	}
	b.WriteString("\n\n")

	if m.tab == TabComments {
		b.WriteString(m.viewComments())
	} else {
		b.WriteString(m.viewChecklist())
	}

	switch m.mode {
	case modeInput:
		b.WriteString("\n" + m.input.View())
	case modeConfirmDelete:
		if m.confirm != nil {
			b.WriteString("\n" + m.confirm.View())
		}
	}
	if m.err != "" {
		b.WriteString("\n" + theme.ErrorStyle.Render(m.err))
	}
	return pad.Render(b.String())
}

func (m Model) viewComments() string {
	if len(m.comments) == 0 {
		return theme.DimmedStyle.Render("Nenhum comentário.") + "\n"
	}
	var b strings.Builder
	for i, c := range m.comments {
		author := "?"
		if c.CreatedBy != nil {
			author = c.CreatedBy.DisplayName()
		}
		line := lipgloss.NewStyle().Bold(true).Render(author) + " " +
			theme.DimmedStyle.Render(c.CreatedAt.Format("02/01/2006 15:04")) + "\n" + c.Content
		style := theme.ListItemStyle
		if i == m.cursor {
			style = theme.SelectedItemStyle
		}
		b.WriteString(style.Width(max(m.width-8, 10)).Render(line))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) viewChecklist() string {
	if len(m.checklist) == 0 {
		return theme.DimmedStyle.Render("Nenhum item.") + "\n"
	}
	var b strings.Builder
	for i, it := range m.checklist {
		box := "[ ]"
		text := it.Description
		if it.IsCompleted {
			box = "[x]"
			text = theme.DimmedStyle.Strikethrough(true).Render(text)
		}
		style := theme.ListItemStyle
		if i == m.cursor {
			style = theme.SelectedItemStyle
		}
		b.WriteString(style.Render(box + " " + text))
		b.WriteString("\n")
	}
	return b.String()
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = max(width-10, 20)
}

// references lists the other tasks mentioned as #id in the description
// or the comments.
func references(t model.Task, comments []model.Comment) []int64 {
	texts := make([]string, len(comments))
	for i, c := range comments {
		texts[i] = c.Content
	}
	return crossref.MatchCrossRefs(t.ID, t.Description, texts, nil)
}

// TaskID is the task last opened.
func (m Model) TaskID() int64 {
	return m.id
}
