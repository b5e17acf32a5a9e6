// Package app is the root Bubble Tea model: view routing, the route
// guard that keeps anonymous sessions on the login view, and the wiring
// between the session manager, the notification poller, and the views.
package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/taskhub/taskhub-cli/internal/api"
	"github.com/taskhub/taskhub-cli/internal/keys"
	"github.com/taskhub/taskhub-cli/internal/notify"
	"github.com/taskhub/taskhub-cli/internal/session"
	"github.com/taskhub/taskhub-cli/internal/ui"
	helpview "github.com/taskhub/taskhub-cli/internal/ui/help"
	loginview "github.com/taskhub/taskhub-cli/internal/ui/login"
	"github.com/taskhub/taskhub-cli/internal/ui/notifdetail"
	"github.com/taskhub/taskhub-cli/internal/ui/notiflist"
	"github.com/taskhub/taskhub-cli/internal/ui/tasklist"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewLogin ViewState = iota
	ViewTasks
	ViewNotifications
	ViewDetail
	ViewHelp
)

// deauthMsg is sent when the gateway forced the session to anonymous.
type deauthMsg struct{}

// logoutDoneMsg is sent when a user-initiated logout has finished.
type logoutDoneMsg struct{}

// refreshTickMsg drives the periodic access-token expiry check.
type refreshTickMsg struct{}

// refreshCheckInterval is how often the token expiry check runs.
const refreshCheckInterval = time.Minute

// Model is the root Bubble Tea model.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	keys         *keys.KeyMap

	session *session.Manager
	poller  *notify.Poller
	ctrl    *notify.Controller
	client  *api.Client

	loginView  loginview.Model
	taskList   tasklist.Model
	notifList  notiflist.Model
	detailView notifdetail.Model
	helpView   helpview.Model

	ready bool
	badge string
}

// New creates the root model. The session must already be initialized so
// the route guard can pick the starting view without a network call.
func New(
	client *api.Client,
	sess *session.Manager,
	poller *notify.Poller,
	ctrl *notify.Controller,
) Model {
	k := keys.DefaultKeyMap()

	view := ViewLogin
	if sess.Snapshot().IsAuthenticated() {
		view = ViewTasks
	}

	return Model{
		currentView: view,
		keys:        k,
		session:     sess,
		poller:      poller,
		ctrl:        ctrl,
		client:      client,
		loginView:   loginview.New(sess, client, 80, 24),
		taskList:    tasklist.New(client, k, 80, 24),
		notifList:   notiflist.New(ctrl, k, 80, 24),
		detailView:  notifdetail.New(80, 24),
		helpView:    helpview.New(k, 80, 24),
	}
}

// Init starts either the login form or, for a restored session, the
// polling loop and initial loads.
func (m Model) Init() tea.Cmd {
	if m.currentView == ViewLogin {
		return m.loginView.Init()
	}
	return m.startSessionCmds()
}

// startSessionCmds begins everything that only runs while authenticated.
func (m Model) startSessionCmds() tea.Cmd {
	return tea.Batch(
		m.poller.Start(),
		m.taskList.LoadTasks(),
		m.notifList.Load(),
		m.waitForDeauth(),
		m.refreshTick(),
	)
}

// waitForDeauth subscribes to the session's forced-deauth signal.
func (m Model) waitForDeauth() tea.Cmd {
	sess := m.session
	return func() tea.Msg {
		<-sess.Deauths()
		return deauthMsg{}
	}
}

// refreshTick schedules the next access-token expiry check.
func (m Model) refreshTick() tea.Cmd {
	return tea.Tick(refreshCheckInterval, func(time.Time) tea.Msg {
		return refreshTickMsg{}
	})
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
		m.loginView.SetSize(w, h)
		m.taskList.SetSize(w, h)
		m.notifList.SetSize(w, h)
		m.detailView.SetSize(w, h)
		m.helpView.SetSize(w, h)
		return m.updateActiveView(msg)

	case notify.CountMsg:
		m.badge = m.poller.Badge()
		return m, m.poller.WaitForNextCount()

	case deauthMsg:
		// The gateway already cleared the credentials; stop the
		// session-scoped machinery and route to the login view.
		return m.endSession()

	case logoutDoneMsg:
		return m.endSession()

	case refreshTickMsg:
		if !m.session.IsAuthenticated() {
			return m, nil
		}
		cmds := []tea.Cmd{m.refreshTick()}
		if m.session.TokenExpiresWithin(2 * refreshCheckInterval) {
			sess := m.session
			cmds = append(cmds, func() tea.Msg {
				// A failed refresh demotes the session itself; the
				// deauth signal routes the UI back to login.
				_ = sess.Refresh(context.Background())
				return nil
			})
		}
		return m, tea.Batch(cmds...)

	case loginview.LoggedInMsg:
		m.currentView = ViewTasks
		return m, m.startSessionCmds()

	case notiflist.SelectedMsg:
		m.previousView = m.currentView
		m.currentView = ViewDetail
		m.detailView.SetNotification(msg.Notification)
		return m, nil

	case notifdetail.BackMsg:
		m.currentView = ViewNotifications
		return m, m.notifList.Load()

	case notifdetail.MarkReadMsg:
		ctrl := m.ctrl
		id := msg.ID
		m.currentView = ViewNotifications
		return m, func() tea.Msg {
			_ = ctrl.MarkAsRead(context.Background(), id)
			return notiflist.LoadedMsg{}
		}

	case notifdetail.DeleteMsg:
		// Route back to the list, which owns the confirmation flow.
		m.currentView = ViewNotifications
		return m, nil

	case tea.KeyMsg:
		if newModel, cmd, handled := m.handleGlobalKeys(msg); handled {
			return newModel, cmd
		}
	}

	return m.updateActiveView(msg)
}

// handleGlobalKeys processes keys that apply regardless of the active
// view. Returns handled=false when the key should go to the view.
func (m Model) handleGlobalKeys(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	// The login form owns all input while the session is anonymous.
	if m.currentView == ViewLogin {
		if msg.String() == "ctrl+c" {
			return m, tea.Quit, true
		}
		return m, nil, false
	}

	switch msg.String() {
	case "ctrl+c":
		m.poller.Stop()
		return m, tea.Quit, true

	case "q":
		if m.currentView == ViewTasks || m.currentView == ViewNotifications {
			m.poller.Stop()
			return m, tea.Quit, true
		}

	case "?":
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return m, nil, true
		}
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return m, nil, true

	case "1":
		if m.currentView == ViewTasks || m.currentView == ViewNotifications {
			m.currentView = ViewTasks
			return m, m.taskList.LoadTasks(), true
		}

	case "2":
		if m.currentView == ViewTasks || m.currentView == ViewNotifications {
			m.currentView = ViewNotifications
			return m, m.notifList.Load(), true
		}

	case "ctrl+l":
		sess := m.session
		return m, func() tea.Msg {
			sess.Logout(context.Background())
			return logoutDoneMsg{}
		}, true
	}

	return m, nil, false
}

// endSession stops the poller, clears the session-scoped caches, and
// routes to the login view.
func (m Model) endSession() (Model, tea.Cmd) {
	m.poller.Stop()
	m.poller.Reset()
	m.ctrl.Clear()
	m.badge = ""
	m.currentView = ViewLogin
	m.loginView = loginview.New(m.session, m.client, m.layout.ContentWidth(), m.layout.ContentHeight())
	return m, m.loginView.Init()
}

// updateActiveView forwards a message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.currentView {
	case ViewLogin:
		m.loginView, cmd = m.loginView.Update(msg)
	case ViewTasks:
		m.taskList, cmd = m.taskList.Update(msg)
	case ViewNotifications:
		m.notifList, cmd = m.notifList.Update(msg)
	case ViewDetail:
		m.detailView, cmd = m.detailView.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	}
	return m, cmd
}

// View renders the active view inside the header/status-bar frame.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	var content string
	switch m.currentView {
	case ViewLogin:
		content = m.loginView.View()
	case ViewTasks:
		content = m.taskList.View()
	case ViewNotifications:
		content = m.notifList.View()
	case ViewDetail:
		content = m.detailView.View()
	case ViewHelp:
		content = m.helpView.View()
	}

	sessionLabel := "anonymous"
	if snap := m.session.Snapshot(); snap.IsAuthenticated() {
		sessionLabel = "signed in"
		if snap.User != nil {
			sessionLabel = snap.User.Username
		}
	}

	header := m.layout.RenderHeader("TaskHub", m.badge, sessionLabel)
	statusBar := m.layout.RenderStatusBar(m.hints())
	return m.layout.RenderWithFrame(header, content, statusBar)
}

// hints returns the status-bar key hints for the active view.
func (m Model) hints() string {
	switch m.currentView {
	case ViewLogin:
		return "enter: submit · ctrl+r: register · ctrl+c: quit"
	case ViewNotifications:
		return "m: mark read · M: all read · d: delete · D: delete all · tab: filter · ?: help"
	case ViewDetail:
		return "m: mark read · d: delete · esc: back"
	case ViewHelp:
		return "?: close help"
	default:
		return "1: tasks · 2: notifications · r: refresh · ?: help · q: quit"
	}
}
