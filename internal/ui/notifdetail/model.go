// Package notifdetail shows a single notification in full, with
// mark-read and delete actions.
package notifdetail

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/taskhub/taskhub-cli/internal/model"
	"github.com/taskhub/taskhub-cli/internal/theme"
)

// BackMsg signals a return to the notification list.
type BackMsg struct{}

// MarkReadMsg asks the root model to mark the shown notification read.
type MarkReadMsg struct {
	ID string
}

// DeleteMsg asks the root model to delete the shown notification (after
// the list view's confirmation flow).
type DeleteMsg struct {
	ID string
}

// Model is the notification detail view.
type Model struct {
	notification model.Notification
	width        int
	height       int
}

// New creates the detail view.
func New(width, height int) Model {
	return Model{width: width, height: height}
}

// SetNotification sets the notification to display.
func (m *Model) SetNotification(n model.Notification) {
	m.notification = n
}

// Notification returns the currently displayed notification.
func (m Model) Notification() model.Notification {
	return m.notification
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "esc", "q":
		return m, func() tea.Msg { return BackMsg{} }
	case "m":
		if !m.notification.IsRead {
			id := m.notification.ID
			return m, func() tea.Msg { return MarkReadMsg{ID: id} }
		}
	case "d":
		id := m.notification.ID
		return m, func() tea.Msg { return DeleteMsg{ID: id} }
	}
	return m, nil
}

// View renders the notification detail panel.
func (m Model) View() string {
	n := m.notification

	var b strings.Builder
	b.WriteString(theme.HeaderStyle.Render(n.Title))
	b.WriteString("\n\n")
	b.WriteString(theme.NotificationTypeStyle(string(n.Type)).Render(string(n.Type)))
	b.WriteString("\n\n")
	b.WriteString(n.Message)
	b.WriteString("\n\n")

	meta := []string{
		fmt.Sprintf("created %s", n.CreatedAt.Format("2006-01-02 15:04")),
	}
	if n.IsRead && n.ReadAt != nil {
		meta = append(meta, fmt.Sprintf("read %s", n.ReadAt.Format("2006-01-02 15:04")))
	} else {
		meta = append(meta, "unread")
	}
	if n.RelatedTaskID != "" {
		meta = append(meta, "task "+n.RelatedTaskID)
	}
	b.WriteString(theme.HelpStyle.Render(strings.Join(meta, " · ")))

	b.WriteString("\n\n")
	b.WriteString(theme.HelpStyle.Render("m: mark read · d: delete · esc: back"))

	return theme.PanelStyle.
		Width(m.width - 4).
		Height(m.height - 4).
		Render(lipgloss.NewStyle().Width(m.width - 10).Render(b.String()))
}

// SetSize updates the detail view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
