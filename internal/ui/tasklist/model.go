// Package tasklist is the read-only view of the user's tasks on the
// TaskHub service. Fetch failures degrade this view locally and never
// touch the session.
package tasklist

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/taskhub/taskhub-cli/internal/api"
	"github.com/taskhub/taskhub-cli/internal/keys"
	"github.com/taskhub/taskhub-cli/internal/model"
	"github.com/taskhub/taskhub-cli/internal/theme"
)

// TasksLoadedMsg is sent when tasks have been fetched from the service.
type TasksLoadedMsg struct {
	Tasks []model.Task
	Err   error
}

// Model is the task list view component.
type Model struct {
	list   list.Model
	client *api.Client
	keys   *keys.KeyMap
	errMsg string
	width  int
	height int
}

// New creates a new task list model.
func New(client *api.Client, k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, Delegate{}, width, height-2)
	l.Title = "Tasks"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	return Model{
		list:   l,
		client: client,
		keys:   k,
		width:  width,
		height: height,
	}
}

// Init returns a command that loads the initial set of tasks.
func (m Model) Init() tea.Cmd {
	return m.LoadTasks()
}

// LoadTasks fetches the task list from the service.
func (m Model) LoadTasks() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		tasks, err := client.Tasks(context.Background())
		return TasksLoadedMsg{Tasks: tasks, Err: err}
	}
}

// Update handles messages for the task list view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TasksLoadedMsg:
		if msg.Err != nil {
			// Keep whatever is on screen; the next refresh may recover.
			m.errMsg = "tasks unavailable: " + msg.Err.Error()
			return m, nil
		}
		m.errMsg = ""
		items := make([]list.Item, len(msg.Tasks))
		for i, task := range msg.Tasks {
			items[i] = TaskItem{Task: task}
		}
		cmd := m.list.SetItems(items)
		return m, cmd

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Refresh) {
			return m, m.LoadTasks()
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the task list with any fetch error below it.
func (m Model) View() string {
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
