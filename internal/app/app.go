package app

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"

	aiservice "github.com/nhle/taskboard/internal/ai"
	"github.com/nhle/taskboard/internal/board"
	"github.com/nhle/taskboard/internal/gateway"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/session"
	appsync "github.com/nhle/taskboard/internal/sync"
	"github.com/nhle/taskboard/internal/theme"
	"github.com/nhle/taskboard/internal/ui"
	aiview "github.com/nhle/taskboard/internal/ui/ai"
	"github.com/nhle/taskboard/internal/ui/command"
	"github.com/nhle/taskboard/internal/ui/dashboard"
	helpview "github.com/nhle/taskboard/internal/ui/help"
	"github.com/nhle/taskboard/internal/ui/kanban"
	"github.com/nhle/taskboard/internal/ui/login"
	"github.com/nhle/taskboard/internal/ui/projectdetail"
	"github.com/nhle/taskboard/internal/ui/projects"
	"github.com/nhle/taskboard/internal/ui/settings"
	"github.com/nhle/taskboard/internal/ui/taskdetail"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewLogin ViewState = iota
	ViewDashboard
	ViewProjects
	ViewProjectDetail
	ViewBoard
	ViewTask
	ViewAI
	ViewSettings
	ViewHelp
	ViewCommand
)

// tabs are the top-level views reachable from the header.
var tabs = []struct {
	view  ViewState
	title string
}{
	{ViewDashboard, "Dashboard"},
	{ViewProjects, "Projetos"},
	{ViewBoard, "Kanban"},
	{ViewAI, "Assistente"},
	{ViewSettings, "Configurações"},
}

// ConfigChangedMsg carries a configuration reloaded from disk.
type ConfigChangedMsg struct {
	Config *model.AppConfig
}

type sessionEventMsg struct {
	event session.Event
}

type currentUserMsg struct {
	user model.User
	err  error
}

// Deps are the services the views run on.
type Deps struct {
	Client    *gateway.Client
	Session   *session.Session
	Loader    *board.Loader
	Mover     *board.Mover
	Refresher *appsync.Refresher
	Assistant *aiservice.Assistant

	// ConfigPath and Config back the settings view.
	ConfigPath string
	Config     *model.AppConfig
}

// Model is the root Bubble Tea model. It routes between views, follows
// the session and cancels a view's requests when the user leaves it.
type Model struct {
	deps        Deps
	currentView ViewState
	history     []ViewState
	layout      ui.Layout
	keys        *KeyMap
	sessionCh   chan session.Event
	unsubscribe func()

	login         login.Model
	dashboard     dashboard.Model
	projects      projects.Model
	projectDetail projectdetail.Model
	board         kanban.Model
	task          taskdetail.Model
	aiView        aiview.Model
	settings      settings.Model
	helpView      helpview.Model
	palette       command.Model

	ready  bool
	errMsg string
}

// New creates the root model. The caller must call Close when the
// program exits.
func New(deps Deps) *Model {
	k := DefaultKeyMap()
	m := &Model{
		deps:      deps,
		keys:      k,
		sessionCh: make(chan session.Event, 8),

		login:         login.New(deps.Client, 80, 24),
		dashboard:     dashboard.New(deps.Loader, deps.Session.UserID, k, 80, 24),
		projects:      projects.New(deps.Client, k, 80, 24),
		projectDetail: projectdetail.New(deps.Client, k, 80, 24),
		board:         kanban.New(deps.Loader, deps.Client, deps.Mover, k, 80, 24),
		task:          taskdetail.New(deps.Client, k, 80, 24),
		aiView:        aiview.New(deps.Assistant, k, 80, 24),
		settings:      settings.New(deps.ConfigPath, deps.Config, probeAPI, k, 80, 24),
		helpView:      helpview.New(k, 80, 24),
		palette:       command.New(80, 24),
	}

	ch := m.sessionCh
	m.unsubscribe = deps.Session.Subscribe(func(e session.Event) {
		select {
		case ch <- e:
		default:
			log.WithField("event", e.Kind).Warn("dropping session event")
		}
	})
	return m
}

// Close detaches from the session and stops background refresh.
func (m *Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
	m.deps.Refresher.Stop()
}

// Init starts on the dashboard when a session was restored, or on the
// login form otherwise.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.waitForSession(), m.deps.Refresher.Start()}
	if m.deps.Session.IsAuthenticated() {
		m.currentView = ViewDashboard
		cmds = append(cmds, m.dashboard.Init(), m.fetchCurrentUser())
	} else {
		m.currentView = ViewLogin
		cmds = append(cmds, m.login.Init())
	}
	return tea.Batch(cmds...)
}

func (m *Model) waitForSession() tea.Cmd {
	ch := m.sessionCh
	return func() tea.Msg {
		return sessionEventMsg{event: <-ch}
	}
}

func (m *Model) fetchCurrentUser() tea.Cmd {
	client := m.deps.Client
	return func() tea.Msg {
		u, err := client.CurrentUser(context.Background())
		return currentUserMsg{user: u, err: err}
	}
}

// Update handles messages and dispatches to the active view.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
		m.login.SetSize(w, h)
		m.dashboard.SetSize(w, h)
		m.projects.SetSize(w, h)
		m.projectDetail.SetSize(w, h)
		m.board.SetSize(w, h)
		m.task.SetSize(w, h)
		m.aiView.SetSize(w, h)
		m.settings.SetSize(w, h)
		m.helpView.SetSize(w, h)
		m.palette.SetSize(w, h)
		return m.updateActiveView(msg)

	case sessionEventMsg:
		return m, tea.Batch(m.handleSessionEvent(msg.event), m.waitForSession())

	case login.SignedInMsg:
		return m, m.signIn(msg.Response)

	case currentUserMsg:
		if msg.err != nil {
			log.WithError(msg.err).Warn("fetching current user")
			return m, nil
		}
		m.deps.Session.SetUser(msg.user)
		return m, nil

	case appsync.RefreshResultMsg:
		if msg.Err != nil {
			log.WithError(msg.Err).Debug("background refresh failed")
		} else if m.deps.Session.IsAuthenticated() {
			m.dashboard.SetSnapshot(msg.Snapshot)
			m.board.SetSnapshot(msg.Snapshot)
		}
		return m, m.deps.Refresher.WaitForNextResult()

	case ConfigChangedMsg:
		m.settings.SetConfig(msg.Config)
		m.applyConfig(msg.Config)
		return m, nil

	case settings.SavedMsg:
		m.applyConfig(msg.Config)
		return m, nil

	case kanban.MoveSettledMsg:
		var cmd tea.Cmd
		m.board, cmd = m.board.Update(msg)
		return m, tea.Batch(cmd, m.refreshCache())

	case aiview.ReplyMsg:
		var cmd tea.Cmd
		m.aiView, cmd = m.aiView.Update(msg)
		return m, cmd

	case ui.BackMsg:
		return m, m.back()

	case ui.OpenProjectMsg:
		m.dismissPalette()
		m.push(ViewProjectDetail)
		return m, m.projectDetail.Open(msg.ID)

	case ui.OpenTaskMsg:
		m.dismissPalette()
		m.push(ViewTask)
		return m, m.task.Open(msg.ID)

	case ui.OpenBoardMsg:
		m.dismissPalette()
		m.push(ViewBoard)
		m.board.SetProject(msg.ProjectID)
		return m, m.board.Init()

	case ui.ChangedMsg:
		return m, m.refreshCache()

	case tea.KeyMsg:
		if cmd, handled := m.handleGlobalKey(msg); handled {
			return m, cmd
		}
	}

	return m.updateActiveView(msg)
}

// handleGlobalKey processes keys that work in every view unless the view
// is capturing text input.
func (m *Model) handleGlobalKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if msg.String() == "ctrl+c" {
		return tea.Quit, true
	}
	if m.currentView == ViewLogin {
		return nil, false
	}
	if key.Matches(msg, m.keys.Logout) {
		m.deps.Session.Clear()
		return nil, true
	}
	if m.capturing() {
		return nil, false
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit, true
	case key.Matches(msg, m.keys.Help):
		if m.currentView == ViewHelp {
			return m.back(), true
		}
		m.history = append(m.history, m.currentView)
		m.currentView = ViewHelp
		return nil, true
	case key.Matches(msg, m.keys.Command):
		m.history = append(m.history, m.currentView)
		m.currentView = ViewCommand
		return m.palette.Focus(), true
	case key.Matches(msg, m.keys.Dashboard):
		return m.switchTab(ViewDashboard), true
	case key.Matches(msg, m.keys.Projects):
		return m.switchTab(ViewProjects), true
	case key.Matches(msg, m.keys.Board):
		if m.currentView == ViewProjectDetail {
			return nil, false
		}
		return m.switchTab(ViewBoard), true
	case key.Matches(msg, m.keys.AI):
		return m.switchTab(ViewAI), true
	case key.Matches(msg, m.keys.Settings):
		return m.switchTab(ViewSettings), true
	}
	return nil, false
}

func (m *Model) capturing() bool {
	switch m.currentView {
	case ViewProjects:
		return m.projects.Capturing()
	case ViewBoard:
		return m.board.Capturing()
	case ViewTask:
		return m.task.Capturing()
	case ViewSettings:
		return m.settings.Capturing()
	case ViewAI, ViewCommand:
		return true
	}
	return false
}

func (m *Model) handleSessionEvent(e session.Event) tea.Cmd {
	log.WithField("event", e.Kind).Debug("session event")
	if e.Kind != session.SignedOut {
		return nil
	}
	m.closeView(m.currentView)
	m.history = nil
	m.currentView = ViewLogin
	m.deps.Assistant.Reset()
	m.errMsg = "Sessão encerrada. Faça login novamente"
	return m.login.Init()
}

func (m *Model) signIn(resp gateway.SignInResponse) tea.Cmd {
	if err := m.deps.Session.SetToken(resp.AccessToken); err != nil {
		log.WithError(err).Error("storing session token")
		m.errMsg = "Não foi possível salvar a sessão"
	} else {
		m.errMsg = ""
	}
	m.deps.Session.SetUser(model.User{ID: resp.ID, Username: resp.Username, Email: resp.Email})
	m.login.Close()
	m.history = nil
	m.currentView = ViewDashboard
	return tea.Batch(m.dashboard.Init(), m.fetchCurrentUser(), m.refreshCache())
}

func (m *Model) refreshCache() tea.Cmd {
	m.deps.Refresher.RefreshNow()
	return nil
}

// switchTab jumps to a top-level view, forgetting the navigation stack.
func (m *Model) switchTab(v ViewState) tea.Cmd {
	if m.currentView == v {
		return nil
	}
	m.closeView(m.currentView)
	m.history = nil
	m.currentView = v
	return m.enterView(v)
}

// push opens v on top of the current view.
func (m *Model) push(v ViewState) {
	m.closeView(m.currentView)
	m.history = append(m.history, m.currentView)
	m.currentView = v
}

// back returns to the previous view, reloading it.
func (m *Model) back() tea.Cmd {
	if len(m.history) == 0 {
		if m.currentView == ViewDashboard {
			return nil
		}
		return m.switchTab(ViewDashboard)
	}
	from := m.currentView
	prev := m.history[len(m.history)-1]
	m.history = m.history[:len(m.history)-1]
	m.currentView = prev
	if from == ViewHelp || from == ViewCommand {
		return nil
	}
	m.closeView(from)
	return m.enterView(prev)
}

func (m *Model) closeView(v ViewState) {
	switch v {
	case ViewLogin:
		m.login.Close()
	case ViewDashboard:
		m.dashboard.Close()
	case ViewProjects:
		m.projects.Close()
	case ViewProjectDetail:
		m.projectDetail.Close()
	case ViewBoard:
		m.board.Close()
	case ViewTask:
		m.task.Close()
	case ViewSettings:
		m.settings.Close()
	}
}

func (m *Model) enterView(v ViewState) tea.Cmd {
	switch v {
	case ViewDashboard:
		return m.dashboard.Init()
	case ViewProjects:
		return m.projects.Init()
	case ViewProjectDetail:
		return m.projectDetail.Open(m.projectDetailID())
	case ViewBoard:
		return m.board.Init()
	case ViewTask:
		return m.task.Open(m.taskID())
	case ViewAI:
		return m.aiView.Focus()
	}
	return nil
}

func (m *Model) applyConfig(cfg *model.AppConfig) {
	theme.Use(cfg.Display.Theme)
	if m.deps.Mover.Layout().Unmatched != cfg.Board.Unmatched && !m.board.SetUnmatched(cfg.Board.Unmatched) {
		log.Warn("board policy change ignored: a move is in flight")
	}
	log.WithField("unmatched", cfg.Board.Unmatched).Info("configuration reloaded")
}

// updateActiveView dispatches the message to the currently active view.
func (m *Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewLogin:
		m.login, cmd = m.login.Update(msg)
	case ViewDashboard:
		m.dashboard, cmd = m.dashboard.Update(msg)
	case ViewProjects:
		m.projects, cmd = m.projects.Update(msg)
	case ViewProjectDetail:
		m.projectDetail, cmd = m.projectDetail.Update(msg)
	case ViewBoard:
		m.board, cmd = m.board.Update(msg)
	case ViewTask:
		m.task, cmd = m.task.Update(msg)
	case ViewAI:
		m.aiView, cmd = m.aiView.Update(msg)
	case ViewSettings:
		m.settings, cmd = m.settings.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.palette, cmd = m.palette.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m *Model) View() string {
	if !m.ready {
		return "Carregando..."
	}
	if m.currentView == ViewLogin {
		return m.layout.RenderWithFrame(
			m.layout.RenderHeader("Taskboard", nil, -1, ""),
			m.login.View(),
			m.layout.RenderStatusBar("ctrl+c sair", m.errMsg),
		)
	}

	names := make([]string, len(tabs))
	active := -1
	for i, t := range tabs {
		names[i] = fmt.Sprintf("%d %s", i+1, t.title)
		if t.view == m.topLevel() {
			active = i
		}
	}
	header := m.layout.RenderHeader("Taskboard", names, active, m.statusText())
	return m.layout.RenderWithFrame(header, m.renderContent(), m.layout.RenderStatusBar(m.keyHints(), m.errMsg))
}

// topLevel is the tab the current view belongs to: the nearest tab view
// on the navigation stack.
func (m *Model) topLevel() ViewState {
	stack := append(append([]ViewState(nil), m.history...), m.currentView)
	for i := len(stack) - 1; i >= 0; i-- {
		switch stack[i] {
		case ViewDashboard, ViewProjects, ViewBoard, ViewAI, ViewSettings:
			return stack[i]
		}
	}
	return m.currentView
}

func (m *Model) renderContent() string {
	switch m.currentView {
	case ViewDashboard:
		return m.dashboard.View()
	case ViewProjects:
		return m.projects.View()
	case ViewProjectDetail:
		return m.projectDetail.View()
	case ViewBoard:
		return m.board.View()
	case ViewTask:
		return m.task.View()
	case ViewAI:
		return m.aiView.View()
	case ViewSettings:
		return m.settings.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.palette.View()
	default:
		return ""
	}
}

// statusText shows the signed-in user and the background refresh state.
func (m *Model) statusText() string {
	user := ""
	if u, ok := m.deps.Session.User(); ok {
		user = u.DisplayName()
	}
	switch m.deps.Refresher.Status().State {
	case appsync.SyncRunning:
		return user + " · sincronizando"
	case appsync.SyncError:
		return user + " · offline"
	}
	return user
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m *Model) keyHints() string {
	switch m.currentView {
	case ViewHelp:
		return "? fechar ajuda | esc voltar"
	case ViewCommand:
		return "enter ir | esc fechar"
	case ViewSettings:
		return "enter editar | esc voltar"
	case ViewDashboard:
		return "↑/↓ navegar | enter abrir | r atualizar | ? ajuda | q sair"
	case ViewProjects:
		return "/ buscar | f status | n novo | d excluir | enter abrir | esc voltar"
	case ViewProjectDetail:
		return "enter abrir tarefa | 3 kanban do projeto | r atualizar | esc voltar"
	case ViewBoard:
		return "←/→/↑/↓ mover | espaço pegar/soltar | f projeto | n nova tarefa | enter abrir"
	case ViewTask:
		return "tab alternar | n novo | x marcar | d excluir | esc voltar"
	case ViewAI:
		return "enter enviar | y/n confirmar ação | ctrl+r limpar | esc voltar"
	}
	return "? ajuda | q sair"
}

// dismissPalette drops the go-to palette from the stack before navigating
// from it.
func (m *Model) dismissPalette() {
	if m.currentView != ViewCommand {
		return
	}
	m.currentView = m.history[len(m.history)-1]
	m.history = m.history[:len(m.history)-1]
}

// probeAPI checks a candidate API URL from the settings view.
func probeAPI(ctx context.Context, baseURL string) error {
	return gateway.NewClient(baseURL, nil).Ping(ctx)
}

func (m *Model) projectDetailID() int64 {
	return m.projectDetail.ProjectID()
}

func (m *Model) taskID() int64 {
	return m.task.TaskID()
}
