package tasklist

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/taskhub/taskhub-cli/internal/model"
	"github.com/taskhub/taskhub-cli/internal/theme"
)

// TaskItem wraps a model.Task so it can be used in a bubbles/list.
type TaskItem struct {
	Task model.Task
}

// FilterValue returns the string used for fuzzy filtering.
func (i TaskItem) FilterValue() string { return i.Task.Title }

// Delegate renders task rows.
type Delegate struct{}

// Height returns the number of lines each item takes.
func (d Delegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d Delegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d Delegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

// Render draws a single task line: priority, status, title, and due info.
func (d Delegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(TaskItem)
	if !ok {
		return
	}
	t := it.Task

	parts := []string{
		theme.PriorityStyle(t.Priority).Render(priorityLabel(t.Priority)),
		theme.StatusStyle(t.Status).Render(t.Status),
		t.Title,
	}
	if t.DueDate != nil {
		due := "due " + t.DueDate.Format("Jan 2")
		if t.IsOverdue() {
			due = theme.ErrorStyle.Render("overdue")
		}
		parts = append(parts, theme.HelpStyle.Render(due))
	} else {
		parts = append(parts, theme.HelpStyle.Render(relativeTime(t.UpdatedAt)))
	}

	style := theme.ListItemStyle
	if index == m.Index() {
		style = theme.SelectedItemStyle
	}

	fmt.Fprint(w, style.Render(strings.Join(parts, " ")))
}

// priorityLabel compresses the numeric priority into a short marker.
func priorityLabel(priority int) string {
	switch priority {
	case model.PriorityCritical:
		return "!!"
	case model.PriorityHigh:
		return "!"
	default:
		return "·"
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
