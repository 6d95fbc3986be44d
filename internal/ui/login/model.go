package login

import (
	"context"
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskboard/internal/gateway"
	"github.com/nhle/taskboard/internal/theme"
	"github.com/nhle/taskboard/internal/ui"
)

// Authenticator is the part of the API the login view needs.
type Authenticator interface {
	SignIn(ctx context.Context, username, password string) (gateway.SignInResponse, error)
	SignUp(ctx context.Context, in gateway.SignUpRequest) (gateway.MessageResponse, error)
}

// SignedInMsg is sent to the parent after a successful sign-in.
type SignedInMsg struct {
	Response gateway.SignInResponse
}

const (
	modeSignIn = "signin"
	modeSignUp = "signup"
)

const minPasswordLen = 6

type formBindings struct {
	mode     string
	username string
	password string
	confirm  string
	email    string
	fullName string
}

type signInResultMsg struct {
	gen  uint64
	resp gateway.SignInResponse
	err  error
}

type signUpResultMsg struct {
	gen uint64
	err error
}

// Model is the sign-in and registration screen.
type Model struct {
	auth   Authenticator
	form   *huh.Form
	fb     *formBindings
	scope  ui.Scope
	busy   bool
	err    string
	info   string
	width  int
	height int
}

// New creates the login view.
func New(auth Authenticator, width, height int) Model {
	return Model{
		auth:   auth,
		fb:     &formBindings{mode: modeSignIn},
		width:  width,
		height: height,
	}
}

// Init builds a fresh form.
func (m *Model) Init() tea.Cmd {
	m.scope.Renew()
	m.busy = false
	m.fb.password = ""
	m.fb.confirm = ""
	m.form = m.buildForm()
	return m.form.Init()
}

// Close cancels an outstanding request.
func (m *Model) Close() {
	m.scope.Cancel()
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case signInResultMsg:
		if !m.scope.Current(msg.gen) {
			return m, nil
		}
		if msg.err != nil {
			m.err = signInError(msg.err)
			m.info = ""
			return m, m.Init()
		}
		m.busy = false
		resp := msg.resp
		return m, func() tea.Msg { return SignedInMsg{Response: resp} }

	case signUpResultMsg:
		if !m.scope.Current(msg.gen) {
			return m, nil
		}
		if msg.err != nil {
			m.err = signUpError(msg.err)
			m.info = ""
			return m, m.Init()
		}
		m.err = ""
		m.info = "Usuário registrado com sucesso! Você pode fazer login agora."
		m.fb.mode = modeSignIn
		return m, m.Init()
	}

	if m.busy || m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}
	switch m.form.State {
	case huh.StateCompleted:
		m.busy = true
		m.err = ""
		if m.fb.mode == modeSignUp {
			return m, m.signUp()
		}
		return m, m.signIn()
	case huh.StateAborted:
		return m, tea.Quit
	}
	return m, cmd
}

func (m Model) buildForm() *huh.Form {
	fb := m.fb
	required := func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New("Por favor, preencha todos os campos")
		}
		return nil
	}
	signingIn := func() bool { return fb.mode != modeSignUp }

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Bem-vindo").
				Options(
					huh.NewOption("Entrar", modeSignIn),
					huh.NewOption("Criar conta", modeSignUp),
				).
				Value(&fb.mode),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Usuário").
				Value(&fb.username).
				Validate(required),
			huh.NewInput().
				Title("Senha").
				EchoMode(huh.EchoModePassword).
				Value(&fb.password).
				Validate(func(s string) error {
					if err := required(s); err != nil {
						return err
					}
					if fb.mode == modeSignUp && len(s) < minPasswordLen {
						return errors.New("A senha deve ter pelo menos 6 caracteres")
					}
					return nil
				}),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Confirmar senha").
				EchoMode(huh.EchoModePassword).
				Value(&fb.confirm).
				Validate(func(s string) error {
					if s != fb.password {
						return errors.New("As senhas não coincidem")
					}
					return nil
				}),
			huh.NewInput().
				Title("Email").
				Value(&fb.email).
				Validate(func(s string) error {
					if !strings.Contains(s, "@") {
						return errors.New("Email inválido")
					}
					return nil
				}),
			huh.NewInput().
				Title("Nome completo").
				Value(&fb.fullName).
				Validate(required),
		).WithHideFunc(signingIn),
	).WithWidth(ui.FormWidth(m.width)).WithHeight(ui.FormHeight(m.height)).WithShowErrors(true)
}

func (m Model) signIn() tea.Cmd {
	auth := m.auth
	ctx := m.scope.Context()
	gen := m.scope.Gen()
	username := strings.TrimSpace(m.fb.username)
	password := m.fb.password
	return func() tea.Msg {
		resp, err := auth.SignIn(ctx, username, password)
		return signInResultMsg{gen: gen, resp: resp, err: err}
	}
}

func (m Model) signUp() tea.Cmd {
	auth := m.auth
	ctx := m.scope.Context()
	gen := m.scope.Gen()
	in := gateway.SignUpRequest{
		Username: strings.TrimSpace(m.fb.username),
		Email:    strings.TrimSpace(m.fb.email),
		Password: m.fb.password,
		FullName: strings.TrimSpace(m.fb.fullName),
	}
	return func() tea.Msg {
		_, err := auth.SignUp(ctx, in)
		return signUpResultMsg{gen: gen, err: err}
	}
}

func signInError(err error) string {
	var apiErr *gateway.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode < 500 {
		return "Usuário ou senha inválidos"
	}
	return gateway.UserMessage(err)
}

func signUpError(err error) string {
	var apiErr *gateway.APIError
	if !errors.As(err, &apiErr) {
		return gateway.UserMessage(err)
	}
	switch {
	case strings.Contains(apiErr.Message, "Username is already taken"):
		return "Este nome de usuário já está em uso"
	case strings.Contains(apiErr.Message, "Email is already in use"):
		return "Este email já está em uso"
	case gateway.IsValidation(err) && apiErr.Message != "":
		return apiErr.Message
	default:
		return "Erro ao registrar usuário. Tente novamente."
	}
}

// View renders the form with the last error or notice.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(theme.TitleStyle.Render("Gerenciador de Projetos"))
	b.WriteString("\n")
	if m.info != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorGreen).Render(m.info))
		b.WriteString("\n\n")
	}
	if m.err != "" {
		b.WriteString(theme.ErrorStyle.Render(m.err))
		b.WriteString("\n\n")
	}
	if m.busy {
		b.WriteString(theme.DimmedStyle.Render("Entrando..."))
	} else if m.form != nil {
		b.WriteString(m.form.View())
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	if m.form != nil {
		m.form = m.form.WithWidth(ui.FormWidth(width)).WithHeight(ui.FormHeight(height))
	}
}
