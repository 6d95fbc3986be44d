package kanban

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskboard/internal/board"
	"github.com/nhle/taskboard/internal/gateway"
	"github.com/nhle/taskboard/internal/keys"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/theme"
	"github.com/nhle/taskboard/internal/ui"
)

// moveTimeout bounds the backend half of a move. Moves are not tied to
// the view's lifetime so that leaving the board never strands one.
const moveTimeout = 30 * time.Second

// Loader performs a full load.
type Loader interface {
	LoadAll(ctx context.Context) (board.Snapshot, error)
}

// TaskCreator creates tasks on the backend.
type TaskCreator interface {
	CreateTask(ctx context.Context, in gateway.TaskInput) (model.Task, error)
}

type loadedMsg struct {
	gen  uint64
	snap board.Snapshot
	err  error
}

// MoveSettledMsg must be delivered whatever view is active; the mover is
// always the source of truth for the board.
type MoveSettledMsg struct {
	result board.Settlement
	err    error
}

type taskCreatedMsg struct {
	gen uint64
	err error
}

type mode int

const (
	modeBoard mode = iota
	modeForm
)

// held is a card picked up for a move. src is where it came from; dst is
// where it would land in the preview.
type held struct {
	taskID         int64
	srcCol, srcIdx int
	dstCol, dstIdx int
}

type formBindings struct {
	title       string
	description string
	priority    model.TaskPriority
	projectID   int64
	assigneeID  int64
	dueDate     string
}

// Model is the kanban board. Cards are moved with the keyboard: pick a
// card up, steer it with the arrows and drop it.
type Model struct {
	mode    mode
	loader  Loader
	creator TaskCreator
	mover   *board.Mover
	keys    *keys.KeyMap
	now     func() time.Time
	scope   ui.Scope

	snap      board.Snapshot
	board     board.Board
	projectID int64
	col, row  int
	held      *held
	moving    bool
	loading   bool

	form *huh.Form
	fb   *formBindings

	err    string
	info   string
	width  int
	height int
}

// New creates the board view around mover.
func New(loader Loader, creator TaskCreator, mover *board.Mover, k *keys.KeyMap, width, height int) Model {
	return Model{
		loader:  loader,
		creator: creator,
		mover:   mover,
		keys:    k,
		now:     time.Now,
		board:   mover.Board(),
		fb:      &formBindings{},
		width:   width,
		height:  height,
	}
}

// Init starts a full load, abandoning any previous one.
func (m *Model) Init() tea.Cmd {
	ctx := m.scope.Renew()
	gen := m.scope.Gen()
	m.mode = modeBoard
	m.loading = true
	loader := m.loader
	return func() tea.Msg {
		snap, err := loader.LoadAll(ctx)
		return loadedMsg{gen: gen, snap: snap, err: err}
	}
}

// Close cancels an outstanding load and drops any held card.
func (m *Model) Close() {
	m.scope.Cancel()
	m.held = nil
}

// Capturing reports whether a form has the keyboard.
func (m Model) Capturing() bool {
	return m.mode == modeForm
}

// SetProject filters the board to projectID (0 shows every project).
func (m *Model) SetProject(projectID int64) {
	m.projectID = projectID
	m.held = nil
	layout := m.mover.Layout()
	layout.ProjectID = projectID
	m.board = m.mover.SetLayout(layout, m.snap.Tasks)
	m.clampCursor()
}

// SetUnmatched switches the unknown-status policy and rebuilds the board.
// The change is refused while a move awaits the backend.
func (m *Model) SetUnmatched(policy string) bool {
	if m.mover.InFlight() {
		return false
	}
	m.held = nil
	layout := m.mover.Layout()
	layout.Unmatched = policy
	m.board = m.mover.SetLayout(layout, m.snap.Tasks)
	m.clampCursor()
	return true
}

// SetSnapshot rebuilds the board from a complete snapshot. It is ignored
// while a card is held or a move awaits the backend.
func (m *Model) SetSnapshot(snap board.Snapshot) bool {
	if m.held != nil || m.mover.InFlight() {
		return false
	}
	m.snap = snap
	m.loading = false
	m.board = m.mover.Replace(snap.Tasks)
	m.clampCursor()
	return true
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
			m.err = "Erro ao carregar dados: " + gateway.UserMessage(msg.err)
			return m, nil
		}
		m.err = ""
		m.snap = msg.snap
		if m.held == nil && !m.mover.InFlight() {
			m.SetProject(m.projectID)
		}
		return m, nil

	case MoveSettledMsg:
		m.moving = false
		m.board = msg.result.Board
		m.adopt(msg.result)
		m.clampCursor()
		if msg.err != nil {
			m.err = "Erro ao mover tarefa: " + gateway.UserMessage(msg.err)
		}
		return m, nil

	case taskCreatedMsg:
		if !m.scope.Current(msg.gen) {
			return m, nil
		}
		m.mode = modeBoard
		if msg.err != nil {
			m.err = "Erro ao criar tarefa: " + gateway.UserMessage(msg.err)
			return m, nil
		}
		m.info = "Tarefa criada"
		return m, tea.Batch(m.Init(), func() tea.Msg { return ui.ChangedMsg{} })

	case tea.KeyMsg:
		if m.mode == modeForm {
			return m.updateForm(msg)
		}
		return m.handleKey(msg)
	}

	if m.mode == modeForm {
		return m.updateForm(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.held != nil {
		return m.handleHeldKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return ui.BackMsg{} }
	case key.Matches(msg, m.keys.Left):
		m.col = max(m.col-1, 0)
		m.clampCursor()
	case key.Matches(msg, m.keys.Right):
		m.col = min(m.col+1, len(m.board.Columns)-1)
		m.clampCursor()
	case key.Matches(msg, m.keys.Up):
		m.row = max(m.row-1, 0)
	case key.Matches(msg, m.keys.Down):
		m.row++
		m.clampCursor()
	case key.Matches(msg, m.keys.Select):
		if t, ok := m.current(); ok {
			return m, func() tea.Msg { return ui.OpenTaskMsg{ID: t.ID} }
		}
	case key.Matches(msg, m.keys.Grab):
		m.pickUp()
	case key.Matches(msg, m.keys.Filter):
		m.SetProject(nextProject(m.snap.Projects, m.projectID))
	case key.Matches(msg, m.keys.Refresh):
		return m, m.Init()
	case key.Matches(msg, m.keys.New):
		return m.openForm()
	}
	return m, nil
}

func (m Model) handleHeldKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	h := m.held
	switch {
	case key.Matches(msg, m.keys.Back):
		m.held = nil
		m.col, m.row = h.srcCol, h.srcIdx
	case key.Matches(msg, m.keys.Left):
		if c := m.dropTarget(h.dstCol, -1); c >= 0 {
			h.dstCol = c
			h.dstIdx = min(h.dstIdx, m.maxDropIndex(c))
		}
	case key.Matches(msg, m.keys.Right):
		if c := m.dropTarget(h.dstCol, 1); c >= 0 {
			h.dstCol = c
			h.dstIdx = min(h.dstIdx, m.maxDropIndex(c))
		}
	case key.Matches(msg, m.keys.Up):
		h.dstIdx = max(h.dstIdx-1, 0)
	case key.Matches(msg, m.keys.Down):
		h.dstIdx = min(h.dstIdx+1, m.maxDropIndex(h.dstCol))
	case key.Matches(msg, m.keys.Grab), key.Matches(msg, m.keys.Select):
		return m.drop()
	}
	return m, nil
}

func (m *Model) pickUp() {
	t, ok := m.current()
	if !ok {
		return
	}
	if m.mover.InFlight() {
		m.err = "Aguarde a movimentação anterior"
		return
	}
	m.err = ""
	m.info = ""
	m.held = &held{
		taskID: t.ID,
		srcCol: m.col, srcIdx: m.row,
		dstCol: m.col, dstIdx: m.row,
	}
	if m.board.Columns[m.col].IsOverflow() {
		if c := m.dropTarget(m.col, -1); c >= 0 {
			m.held.dstCol = c
			m.held.dstIdx = m.maxDropIndex(c)
		}
	}
}

func (m Model) drop() (Model, tea.Cmd) {
	h := m.held
	m.held = nil
	d := board.Drop{
		Source:      h.srcCol,
		Target:      h.dstCol,
		SourceIndex: h.srcIdx,
		TargetIndex: h.dstIdx,
		TaskID:      h.taskID,
	}

	p, err := m.mover.Apply(d)
	m.board = m.mover.Board()
	if err != nil {
		if errors.Is(err, board.ErrDropInFlight) {
			m.err = "Aguarde a movimentação anterior"
		} else {
			m.err = "Movimento inválido"
		}
		m.col, m.row = h.srcCol, h.srcIdx
		m.clampCursor()
		return m, nil
	}

	m.col, m.row = h.dstCol, h.dstIdx
	m.clampCursor()
	if p == nil {
		return m, nil
	}

	m.moving = true
	mover := m.mover
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), moveTimeout)
		defer cancel()
		res, err := mover.Settle(ctx, p)
		return MoveSettledMsg{result: res, err: err}
	}
}

// adopt brings the snapshot in line with a settled move so later rebuilds
// keep the card where the backend put it.
func (m *Model) adopt(res board.Settlement) {
	if res.Reload != nil {
		m.snap = *res.Reload
		return
	}
	if res.Task == nil || res.Task.Status == "" {
		return
	}
	tasks := slices.Clone(m.snap.Tasks)
	for i := range tasks {
		if tasks[i].ID == res.Task.ID {
			tasks[i].Status = res.Task.Status
		}
	}
	m.snap.Tasks = tasks
}

// dropTarget returns the next column from c in direction dir that can
// receive a card, or -1.
func (m Model) dropTarget(c, dir int) int {
	for i := c + dir; i >= 0 && i < len(m.board.Columns); i += dir {
		if !m.board.Columns[i].IsOverflow() {
			return i
		}
	}
	return -1
}

// maxDropIndex is the last insert position in column c once the held
// card has left its source.
func (m Model) maxDropIndex(c int) int {
	n := len(m.board.Columns[c].Tasks)
	if m.held != nil && c == m.held.srcCol {
		n--
	}
	return max(n, 0)
}

func (m Model) current() (model.Task, bool) {
	if m.col < 0 || m.col >= len(m.board.Columns) {
		return model.Task{}, false
	}
	tasks := m.board.Columns[m.col].Tasks
	if m.row < 0 || m.row >= len(tasks) {
		return model.Task{}, false
	}
	return tasks[m.row], true
}

func (m *Model) clampCursor() {
	if len(m.board.Columns) == 0 {
		m.col, m.row = 0, 0
		return
	}
	m.col = min(max(m.col, 0), len(m.board.Columns)-1)
	m.row = min(max(m.row, 0), max(len(m.board.Columns[m.col].Tasks)-1, 0))
}

// nextProject cycles all -> each project -> all.
func nextProject(projects []model.Project, current int64) int64 {
	if current == 0 {
		if len(projects) > 0 {
			return projects[0].ID
		}
		return 0
	}
	for i, p := range projects {
		if p.ID == current && i+1 < len(projects) {
			return projects[i+1].ID
		}
	}
	return 0
}

// preview returns the columns as they would look with the held card
// dropped at its current target.
func (m Model) preview() []board.Column {
	cols := make([]board.Column, len(m.board.Columns))
	for i, c := range m.board.Columns {
		c.Tasks = append([]model.Task(nil), c.Tasks...)
		cols[i] = c
	}
	h := m.held
	if h == nil || h.srcCol >= len(cols) || h.srcIdx >= len(cols[h.srcCol].Tasks) {
		return cols
	}
	src := cols[h.srcCol].Tasks
	task := src[h.srcIdx]
	cols[h.srcCol].Tasks = append(src[:h.srcIdx:h.srcIdx], src[h.srcIdx+1:]...)
	dst := cols[h.dstCol].Tasks
	i := min(h.dstIdx, len(dst))
	cols[h.dstCol].Tasks = append(dst[:i:i], append([]model.Task{task}, dst[i:]...)...)
	return cols
}

// View renders the columns side by side.
func (m Model) View() string {
	if m.mode == modeForm && m.form != nil {
		return lipgloss.NewStyle().Padding(1, 2).Render(m.form.View())
	}

	var b strings.Builder
	b.WriteString(theme.TitleStyle.Render("Kanban  " + theme.DimmedStyle.Render("[f] "+m.projectName())))
	b.WriteString("\n")

	cols := m.preview()
	if len(cols) == 0 {
		return b.String()
	}
	colWidth := max((m.width-2)/len(cols)-4, 12)
	rendered := make([]string, 0, len(cols))
	now := m.now()
	for ci, c := range cols {
		var cb strings.Builder
		cb.WriteString(lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("%s (%d)", c.Title, len(c.Tasks))))
		cb.WriteString("\n")
		for ri, t := range c.Tasks {
			cb.WriteString(m.renderCard(t, ci, ri, colWidth, now))
			cb.WriteString("\n")
		}
		style := theme.ColumnStyle
		if (m.held == nil && ci == m.col) || (m.held != nil && ci == m.held.dstCol) {
			style = theme.FocusedColumnStyle
		}
		rendered = append(rendered, style.Width(colWidth).Render(cb.String()))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, rendered...))
	b.WriteString("\n")

	switch {
	case m.err != "":
		b.WriteString(theme.ErrorStyle.Render(m.err))
	case m.moving:
		b.WriteString(theme.DimmedStyle.Render("Salvando..."))
	case m.loading:
		b.WriteString(theme.DimmedStyle.Render("Carregando..."))
	case m.info != "":
		b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorGreen).Render(m.info))
	}
	if n := len(m.board.Dropped); n > 0 {
		b.WriteString(theme.DimmedStyle.Render(fmt.Sprintf("  %d tarefa(s) com status desconhecido ocultas", n)))
	}

	return lipgloss.NewStyle().Padding(0, 1).Render(b.String())
}

func (m Model) renderCard(t model.Task, col, row, width int, now time.Time) string {
	title := t.Title
	if t.AssignedUser != nil {
		title += "\n" + theme.DimmedStyle.Render(t.AssignedUser.DisplayName())
	}
	line := theme.PriorityStyle(t.Priority).Render("●") + " " + title
	if t.HasDueDate() {
		due := t.DueDate.Format(ui.DateLayout)
		if t.IsOverdue(now) {
			line += "\n" + theme.ErrorStyle.Render(due)
		} else {
			line += "\n" + theme.DimmedStyle.Render(due)
		}
	}

	style := lipgloss.NewStyle().Width(width)
	switch {
	case m.held != nil && t.ID == m.held.taskID:
		style = theme.HeldCardStyle.Width(width)
	case m.held == nil && col == m.col && row == m.row:
		style = theme.SelectedItemStyle.Width(width - 2)
	}
	return style.Render(line)
}

func (m Model) projectName() string {
	if m.projectID == 0 {
		return "Todos os projetos"
	}
	for _, p := range m.snap.Projects {
		if p.ID == m.projectID {
			return p.Name
		}
	}
	return fmt.Sprintf("Projeto %d", m.projectID)
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
