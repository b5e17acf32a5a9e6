// Package notiflist is the notification list view: filterable, with
// mark-read and delete actions confirmed against the server before any
// local change is shown.
package notiflist

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/taskhub/taskhub-cli/internal/keys"
	"github.com/taskhub/taskhub-cli/internal/model"
	"github.com/taskhub/taskhub-cli/internal/notify"
	"github.com/taskhub/taskhub-cli/internal/theme"
)

// SelectedMsg is sent when the user opens a notification's detail view.
type SelectedMsg struct {
	Notification model.Notification
}

// LoadedMsg is sent when a fetch for the active filter has finished.
type LoadedMsg struct {
	Err error
}

// actionDoneMsg is sent when a mutation (mark-read, delete, bulk) has
// resolved against the server.
type actionDoneMsg struct {
	err error
}

// filters is the cycle order for the active filter.
var filters = []model.NotificationFilter{
	model.FilterAll,
	model.FilterUnread,
	model.FilterRead,
	model.FilterByType(model.NotificationTaskDueSoon),
	model.FilterByType(model.NotificationTaskOverdue),
	model.FilterByType(model.NotificationTaskAssigned),
	model.FilterByType(model.NotificationWorkspaceInvitation),
	model.FilterByType(model.NotificationGeneral),
}

// confirmKind identifies which destructive action awaits confirmation.
type confirmKind int

const (
	confirmNone confirmKind = iota
	confirmDelete
	confirmDeleteAll
)

// confirmBindings holds the confirmation answer on the heap so that
// huh's Value() pointer remains valid across Bubble Tea model copies.
type confirmBindings struct {
	confirmed bool
}

// Model is the notification list view component.
type Model struct {
	list list.Model
	ctrl *notify.Controller
	keys *keys.KeyMap

	filterIdx int
	errMsg    string

	confirm       *huh.Form
	cb            *confirmBindings
	confirmKind   confirmKind
	confirmTarget string

	width  int
	height int
}

// New creates the notification list view.
func New(ctrl *notify.Controller, k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, Delegate{}, width, height-2)
	l.Title = "Notifications · all"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	return Model{
		list:   l,
		ctrl:   ctrl,
		keys:   k,
		cb:     &confirmBindings{},
		width:  width,
		height: height,
	}
}

// Init loads the list for the current filter.
func (m Model) Init() tea.Cmd {
	return m.Load()
}

// Load fetches the active filter from the server, replacing the cached
// list wholesale.
func (m Model) Load() tea.Cmd {
	ctrl := m.ctrl
	filter := filters[m.filterIdx]
	return func() tea.Msg {
		return LoadedMsg{Err: ctrl.Fetch(context.Background(), filter)}
	}
}

// Update handles messages for the notification list view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		if msg.Err != nil {
			// Leave whatever was cached on screen; the user can retry.
			m.errMsg = msg.Err.Error()
			return m, nil
		}
		m.errMsg = ""
		return m, m.syncItems()

	case actionDoneMsg:
		if msg.err != nil {
			m.errMsg = msg.err.Error()
		} else {
			m.errMsg = ""
		}
		return m, m.syncItems()

	case tea.KeyMsg:
		if m.confirmKind != confirmNone {
			return m.updateConfirm(msg)
		}
		return m.handleKeys(msg)
	}

	if m.confirmKind != confirmNone {
		return m.updateConfirm(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleKeys processes key input in the normal (non-confirm) state.
func (m Model) handleKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Select):
		if item, ok := m.selected(); ok {
			n := item.Notification
			return m, func() tea.Msg { return SelectedMsg{Notification: n} }
		}

	case key.Matches(msg, m.keys.CycleFilter):
		m.filterIdx = (m.filterIdx + 1) % len(filters)
		m.list.Title = "Notifications · " + filters[m.filterIdx].String()
		return m, m.Load()

	case key.Matches(msg, m.keys.Refresh):
		return m, m.Load()

	case key.Matches(msg, m.keys.MarkRead):
		if item, ok := m.selected(); ok && !item.Pending && !item.Notification.IsRead {
			return m, m.markRead(item.Notification.ID)
		}

	case key.Matches(msg, m.keys.MarkAllRead):
		ctrl := m.ctrl
		return m, func() tea.Msg {
			return actionDoneMsg{err: ctrl.MarkAllAsRead(context.Background())}
		}

	case key.Matches(msg, m.keys.Delete):
		if item, ok := m.selected(); ok && !item.Pending {
			return m.startConfirm(confirmDelete, item.Notification)
		}

	case key.Matches(msg, m.keys.DeleteAll):
		if len(m.list.Items()) > 0 {
			return m.startConfirm(confirmDeleteAll, model.Notification{})
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// markRead issues the server call; the local entry only changes after
// the server confirms (the controller enforces this).
func (m Model) markRead(id string) tea.Cmd {
	ctrl := m.ctrl
	return tea.Batch(
		m.syncItems(), // repaint with the row's pending flag set
		func() tea.Msg {
			return actionDoneMsg{err: ctrl.MarkAsRead(context.Background(), id)}
		},
	)
}

// startConfirm opens the confirmation prompt for a destructive action.
func (m Model) startConfirm(kind confirmKind, n model.Notification) (Model, tea.Cmd) {
	m.confirmKind = kind
	m.confirmTarget = n.ID
	m.cb.confirmed = false

	title := "Delete all notifications?"
	if kind == confirmDelete {
		title = "Delete notification \"" + n.Title + "\"?"
	}

	m.confirm = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Yes, delete").
				Negative("Cancel").
				Value(&m.cb.confirmed),
		),
	).WithWidth(m.width - 8)

	return m, m.confirm.Init()
}

func (m Model) updateConfirm(msg tea.Msg) (Model, tea.Cmd) {
	if m.confirm == nil {
		m.confirmKind = confirmNone
		return m, nil
	}

	mdl, cmd := m.confirm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.confirm = f
	}

	if m.confirm.State == huh.StateAborted {
		m.confirmKind = confirmNone
		return m, nil
	}
	if m.confirm.State != huh.StateCompleted {
		return m, cmd
	}

	kind, target, confirmed := m.confirmKind, m.confirmTarget, m.cb.confirmed
	m.confirmKind = confirmNone

	if !confirmed {
		return m, nil
	}

	ctrl := m.ctrl
	if kind == confirmDeleteAll {
		return m, func() tea.Msg {
			return actionDoneMsg{err: ctrl.DeleteAll(context.Background())}
		}
	}
	return m, tea.Batch(
		m.syncItems(),
		func() tea.Msg {
			return actionDoneMsg{err: ctrl.Delete(context.Background(), target)}
		},
	)
}

// syncItems mirrors the controller's cache into the bubbles list.
func (m *Model) syncItems() tea.Cmd {
	notifications := m.ctrl.Items()
	items := make([]list.Item, len(notifications))
	for i, n := range notifications {
		items[i] = Item{
			Notification: n,
			Pending:      m.ctrl.IsPending(n.ID),
		}
	}
	return m.list.SetItems(items)
}

func (m Model) selected() (Item, bool) {
	item, ok := m.list.SelectedItem().(Item)
	return item, ok
}

// View renders the list, any pending confirmation, and the last error.
func (m Model) View() string {
	if m.confirmKind != confirmNone && m.confirm != nil {
		return theme.PanelStyle.
			Width(m.width - 4).
			Render(m.confirm.View())
	}

	view := m.list.View()
	if m.errMsg != "" {
		view = lipgloss.JoinVertical(
			lipgloss.Left,
			view,
			theme.ErrorStyle.Render(m.errMsg),
		)
	}
	return view
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
}
