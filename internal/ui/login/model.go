// Package login implements the sign-in and registration forms shown
// whenever the session is anonymous.
package login

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/taskhub/taskhub-cli/internal/api"
	"github.com/taskhub/taskhub-cli/internal/session"
	"github.com/taskhub/taskhub-cli/internal/theme"
)

// Mode selects which form is shown.
type Mode int

const (
	ModeLogin Mode = iota
	ModeRegister
)

// LoggedInMsg signals a successful login; the root model routes to the
// main views.
type LoggedInMsg struct{}

// loginResultMsg carries the outcome of a login attempt.
type loginResultMsg struct {
	err error
}

// registerResultMsg carries the outcome of a registration attempt.
type registerResultMsg struct {
	err error
}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	username string
	password string
	email    string
	fullName string
}

// Model is the Bubble Tea model for the login/register view.
type Model struct {
	session *session.Manager
	client  *api.Client

	mode       Mode
	form       *huh.Form
	fb         *formBindings
	submitting bool
	errMsg     string

	width  int
	height int
}

// New creates the login view.
func New(sess *session.Manager, client *api.Client, width, height int) Model {
	m := Model{
		session: sess,
		client:  client,
		mode:    ModeLogin,
		fb:      &formBindings{},
		width:   width,
		height:  height,
	}
	m.form = m.buildLoginForm()
	return m
}

// Init starts the active form.
func (m Model) Init() tea.Cmd {
	return m.form.Init()
}

func (m Model) buildLoginForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Username or email").
				Value(&m.fb.username).
				Validate(validateRequired("Username")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.password).
				Validate(validateRequired("Password")),
		),
	).WithWidth(m.formWidth())
}

func (m Model) buildRegisterForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Username").
				Value(&m.fb.username).
				Validate(validateRequired("Username")),
			huh.NewInput().
				Title("Email").
				Value(&m.fb.email).
				Validate(validateRequired("Email")),
			huh.NewInput().
				Title("Full name").
				Value(&m.fb.fullName),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.password).
				Validate(validateRequired("Password")),
		),
	).WithWidth(m.formWidth())
}

// Update handles messages for the login view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loginResultMsg:
		m.submitting = false
		if msg.err != nil {
			// The form renders the server's message; the session stayed
			// anonymous.
			m.errMsg = msg.err.Error()
			m.form = m.buildLoginForm()
			return m, m.form.Init()
		}
		m.errMsg = ""
		// A completed form would resubmit on the next message; reset it
		// so the view is inert until the session ends again.
		m.fb.password = ""
		m.form = m.buildLoginForm()
		return m, func() tea.Msg { return LoggedInMsg{} }

	case registerResultMsg:
		m.submitting = false
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			m.form = m.buildRegisterForm()
			return m, m.form.Init()
		}
		// Account created; drop back to the login form.
		m.errMsg = ""
		m.mode = ModeLogin
		m.fb.password = ""
		m.form = m.buildLoginForm()
		return m, m.form.Init()

	case tea.KeyMsg:
		if msg.String() == "ctrl+r" && !m.submitting {
			return m.toggleMode()
		}
	}

	if m.submitting {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m.submit()
	}
	if m.form.State == huh.StateAborted {
		if m.mode == ModeRegister {
			return m.toggleMode()
		}
		return m, tea.Quit
	}

	return m, cmd
}

func (m Model) toggleMode() (Model, tea.Cmd) {
	m.errMsg = ""
	m.fb.password = ""
	if m.mode == ModeLogin {
		m.mode = ModeRegister
		m.form = m.buildRegisterForm()
	} else {
		m.mode = ModeLogin
		m.form = m.buildLoginForm()
	}
	return m, m.form.Init()
}

func (m Model) submit() (Model, tea.Cmd) {
	m.submitting = true

	if m.mode == ModeRegister {
		req := api.RegisterRequest{
			Username: m.fb.username,
			Email:    m.fb.email,
			Password: m.fb.password,
			FullName: m.fb.fullName,
		}
		client := m.client
		return m, func() tea.Msg {
			return registerResultMsg{err: client.Register(context.Background(), req)}
		}
	}

	sess := m.session
	username, password := m.fb.username, m.fb.password
	return m, func() tea.Msg {
		_, err := sess.Login(context.Background(), username, password)
		return loginResultMsg{err: err}
	}
}

// View renders the active form with any error from the last attempt.
func (m Model) View() string {
	title := "Sign in to TaskHub"
	hint := "ctrl+r: create account · esc: quit"
	if m.mode == ModeRegister {
		title = "Create a TaskHub account"
		hint = "ctrl+r: back to sign in"
	}

	var b strings.Builder
	b.WriteString(theme.HeaderStyle.Render(title))
	b.WriteString("\n\n")
	if m.submitting {
		b.WriteString("Contacting server...")
	} else {
		b.WriteString(m.form.View())
	}
	if m.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(theme.ErrorStyle.Render(m.errMsg))
	}
	b.WriteString("\n\n")
	b.WriteString(theme.HelpStyle.Render(hint))

	return theme.PanelStyle.
		Width(m.formWidth() + 4).
		Render(b.String())
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) formWidth() int {
	w := m.width - 8
	if w > 64 {
		w = 64
	}
	if w < 24 {
		w = 24
	}
	return w
}

func validateRequired(field string) func(string) error {
	return func(value string) error {
		if strings.TrimSpace(value) == "" {
			return &requiredError{field: field}
		}
		return nil
	}
}

type requiredError struct{ field string }

func (e *requiredError) Error() string { return e.field + " is required" }
