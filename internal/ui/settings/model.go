package settings

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskboard/internal/gateway"
	"github.com/nhle/taskboard/internal/keys"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/theme"
	"github.com/nhle/taskboard/internal/ui"
)

const probeTimeout = 5 * time.Second

// Mode represents the current state of the settings view.
type Mode int

const (
	ModeView       Mode = iota // Show the active configuration
	ModeForm                   // Editing
	ModeValidating             // Probing the API and writing the file
)

// SavedMsg carries a configuration that was written to disk.
type SavedMsg struct {
	Config *model.AppConfig
}

type savedInternalMsg struct {
	gen uint64
	cfg *model.AppConfig
	err error
}

// Probe checks that an API answers at baseURL.
type Probe func(ctx context.Context, baseURL string) error

// formBindings holds the huh-bound field values.
type formBindings struct {
	baseURL   string
	timeout   string
	interval  string
	unmatched string
	theme     string
}

// Model is the settings view. It edits the configuration file; the file
// watcher and SavedMsg carry the change to the rest of the program.
type Model struct {
	mode    Mode
	path    string
	cfg     *model.AppConfig
	probe   Probe
	save    func(string, *model.AppConfig) error
	form    *huh.Form
	fb      *formBindings
	spinner spinner.Model
	scope   ui.Scope

	statusMsg string
	errMsg    string

	keys          *keys.KeyMap
	width, height int
}

// New creates the settings view for the file at path.
func New(path string, cfg *model.AppConfig, probe Probe, k *keys.KeyMap, width, height int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		path:    path,
		cfg:     cfg,
		probe:   probe,
		save:    model.SaveConfig,
		fb:      &formBindings{},
		spinner: sp,
		keys:    k,
		width:   width,
		height:  height,
	}
}

// SetConfig replaces the configuration shown, e.g. after an external edit.
func (m *Model) SetConfig(cfg *model.AppConfig) {
	m.cfg = cfg
}

// Capturing reports whether the form has the keyboard.
func (m Model) Capturing() bool {
	return m.mode != ModeView
}

// Close abandons an edit or a save in progress.
func (m *Model) Close() {
	m.scope.Cancel()
	m.mode = ModeView
}

// Update handles messages and dispatches based on current mode.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case savedInternalMsg:
		if !m.scope.Current(msg.gen) || m.mode != ModeValidating {
			return m, nil
		}
		m.mode = ModeView
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.errMsg = ""
		m.statusMsg = "Configurações salvas"
		if msg.cfg.API.BaseURL != m.cfg.API.BaseURL {
			m.statusMsg += ". A nova URL da API vale a partir da próxima execução"
		}
		m.cfg = msg.cfg
		return m, func() tea.Msg { return SavedMsg{Config: msg.cfg} }

	case spinner.TickMsg:
		if m.mode == ModeValidating {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case ModeView:
			return m.handleViewKeys(msg)
		case ModeValidating:
			if key.Matches(msg, m.keys.Back) {
				m.scope.Cancel()
				m.mode = ModeView
				m.statusMsg = "Alteração cancelada"
			}
			return m, nil
		}
	}

	if m.mode == ModeForm {
		return m.updateForm(msg)
	}
	return m, nil
}

func (m Model) handleViewKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return ui.BackMsg{} }
	case key.Matches(msg, m.keys.Select):
		m.statusMsg = ""
		m.errMsg = ""
		m.form = m.buildForm()
		m.mode = ModeForm
		return m, m.form.Init()
	}
	return m, nil
}

func (m *Model) buildForm() *huh.Form {
	*m.fb = formBindings{
		baseURL:   m.cfg.API.BaseURL,
		timeout:   strconv.Itoa(m.cfg.API.TimeoutSec),
		interval:  strconv.Itoa(m.cfg.Refresh.IntervalSec),
		unmatched: m.cfg.Board.Unmatched,
		theme:     m.cfg.Display.Theme,
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("URL da API").
				Description("Inclui o prefixo /api").
				Value(&m.fb.baseURL).
				Validate(validateURL),
			huh.NewInput().
				Title("Tempo limite (s)").
				Value(&m.fb.timeout).
				Validate(validateSeconds),
			huh.NewInput().
				Title("Atualização automática (s)").
				Description("0 desativa").
				Value(&m.fb.interval).
				Validate(validateSeconds),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Tarefas com status desconhecido").
				Options(
					huh.NewOption("Ocultar", model.UnmatchedDrop),
					huh.NewOption("Coluna \"Outros\"", model.UnmatchedOverflow),
				).
				Value(&m.fb.unmatched),
			huh.NewSelect[string]().
				Title("Tema").
				Options(
					huh.NewOption("Padrão", "default"),
					huh.NewOption("Monocromático", "mono"),
				).
				Value(&m.fb.theme),
		),
	).WithWidth(ui.FormWidth(m.width))
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
		cfg, err := m.fb.apply(m.cfg)
		if err != nil {
			m.mode = ModeView
			m.errMsg = err.Error()
			return m, nil
		}
		m.mode = ModeValidating
		return m, tea.Batch(m.spinner.Tick, m.validateAndSave(cfg))
	case huh.StateAborted:
		m.mode = ModeView
		return m, nil
	}
	return m, cmd
}

// apply copies the form values over a copy of base.
func (fb *formBindings) apply(base *model.AppConfig) (*model.AppConfig, error) {
	cfg := *base
	cfg.API.BaseURL = strings.TrimRight(strings.TrimSpace(fb.baseURL), "/")
	cfg.API.TimeoutSec, _ = strconv.Atoi(strings.TrimSpace(fb.timeout))
	cfg.Refresh.IntervalSec, _ = strconv.Atoi(strings.TrimSpace(fb.interval))
	cfg.Board.Unmatched = fb.unmatched
	cfg.Display.Theme = fb.theme
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validateAndSave probes a changed API URL before writing the file.
func (m *Model) validateAndSave(cfg *model.AppConfig) tea.Cmd {
	ctx := m.scope.Renew()
	gen := m.scope.Gen()
	probe, save, path := m.probe, m.save, m.path
	changedURL := cfg.API.BaseURL != m.cfg.API.BaseURL

	return func() tea.Msg {
		if changedURL && probe != nil {
			pctx, cancel := context.WithTimeout(ctx, probeTimeout)
			err := probe(pctx, cfg.API.BaseURL)
			cancel()
			if err != nil {
				return savedInternalMsg{gen: gen, err: fmt.Errorf("API indisponível em %s: %s", cfg.API.BaseURL, gateway.UserMessage(err))}
			}
		}
		if ctx.Err() != nil {
			return savedInternalMsg{gen: gen, err: ctx.Err()}
		}
		if err := save(path, cfg); err != nil {
			return savedInternalMsg{gen: gen, err: err}
		}
		return savedInternalMsg{gen: gen, cfg: cfg}
	}
}

func validateURL(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("informe a URL")
	}
	parsed, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("URL inválida: %w", err)
	}
	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return errors.New("use http:// ou https:// com um host (ex.: http://localhost:8080/api)")
	}
	return nil
}

func validateSeconds(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return errors.New("informe um número de segundos (0 ou mais)")
	}
	return nil
}

// View renders the current mode.
func (m Model) View() string {
	style := lipgloss.NewStyle().Padding(1, 2).Width(m.width)

	switch m.mode {
	case ModeForm:
		return style.Render(m.form.View())
	case ModeValidating:
		return style.Render(fmt.Sprintf("%s Verificando e salvando...\n\nesc cancela.", m.spinner.View()))
	}

	var b strings.Builder
	b.WriteString(theme.TitleStyle.Render("Configurações"))
	b.WriteString("\n\n")

	unmatched := "ocultar"
	if m.cfg.Board.Unmatched == model.UnmatchedOverflow {
		unmatched = "coluna \"Outros\""
	}
	interval := "desativada"
	if m.cfg.Refresh.IntervalSec > 0 {
		interval = fmt.Sprintf("a cada %ds", m.cfg.Refresh.IntervalSec)
	}
	rows := [][2]string{
		{"Arquivo", m.path},
		{"API", m.cfg.API.BaseURL},
		{"Tempo limite", fmt.Sprintf("%ds", m.cfg.API.TimeoutSec)},
		{"Atualização", interval},
		{"Status desconhecido", unmatched},
		{"Tema", m.cfg.Display.Theme},
	}
	for _, r := range rows {
		b.WriteString(theme.DimmedStyle.Render(fmt.Sprintf("%-20s", r[0])))
		b.WriteString(r[1])
		b.WriteString("\n")
	}

	if m.statusMsg != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorYellow).Italic(true).Render(m.statusMsg))
	}
	if m.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(theme.ErrorStyle.Render(m.errMsg))
	}

	b.WriteString("\n\n")
	b.WriteString(theme.DimmedStyle.Render("enter editar | esc voltar"))
	return style.Render(b.String())
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
