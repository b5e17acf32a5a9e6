package notiflist

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/taskhub/taskhub-cli/internal/model"
	"github.com/taskhub/taskhub-cli/internal/theme"
)

// Item wraps a model.Notification so it can be used in a bubbles/list.
type Item struct {
	Notification model.Notification

	// Pending marks the row as having a mutation in flight; the
	// delegate dims it and the view refuses further actions on it.
	Pending bool
}

// FilterValue returns the string used for fuzzy filtering.
func (i Item) FilterValue() string { return i.Notification.Title }

// Delegate renders notification rows.
type Delegate struct{}

// Height returns the number of lines each item takes.
func (d Delegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d Delegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d Delegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

// Render draws a single notification line: read marker, type label,
// title, and relative age.
func (d Delegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(Item)
	if !ok {
		return
	}
	n := it.Notification

	marker := "●"
	if n.IsRead {
		marker = " "
	}

	typeLabel := theme.NotificationTypeStyle(string(n.Type)).
		Render(shortType(n.Type))

	line := fmt.Sprintf("%s %s %s %s",
		marker,
		typeLabel,
		n.Title,
		theme.HelpStyle.Render(relativeTime(n.CreatedAt)),
	)

	style := theme.ListItemStyle
	if index == m.Index() {
		style = theme.SelectedItemStyle
	}
	if it.Pending {
		style = style.Foreground(theme.ColorGray)
	}
	if !n.IsRead && index != m.Index() {
		style = style.Bold(true)
	}

	fmt.Fprint(w, style.Render(line))
}

// shortType compresses the type constant into a compact label.
func shortType(t model.NotificationType) string {
	switch t {
	case model.NotificationTaskDueSoon:
		return "[due]"
	case model.NotificationTaskOverdue:
		return "[overdue]"
	case model.NotificationTaskAssigned:
		return "[assigned]"
	case model.NotificationWorkspaceInvitation:
		return "[invite]"
	default:
		return "[info]"
	}
}

// relativeTime renders an age like "5m", "3h", or "2d".
func relativeTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}
