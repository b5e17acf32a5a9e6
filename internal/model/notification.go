package model

import (
	"fmt"
	"time"
)

// NotificationType identifies the kind of event a notification describes.
type NotificationType string

const (
	NotificationTaskDueSoon         NotificationType = "TASK_DUE_SOON"
	NotificationTaskOverdue         NotificationType = "TASK_OVERDUE"
	NotificationTaskAssigned        NotificationType = "TASK_ASSIGNED"
	NotificationWorkspaceInvitation NotificationType = "WORKSPACE_INVITATION"
	NotificationGeneral             NotificationType = "GENERAL"
)

// Notification represents an alert surfaced to the user about activity
// on the TaskHub service.
type Notification struct {
	// ID is the server-side identifier for this notification.
	ID string `json:"id"`

	// Type classifies the event (use the Notification* constants).
	Type NotificationType `json:"type"`

	// Title is the short heading shown in list views.
	Title string `json:"title"`

	// Message is the full human-readable notification text.
	Message string `json:"message"`

	// IsRead indicates whether the user has acknowledged this notification.
	IsRead bool `json:"isRead"`

	// CreatedAt is when this notification was generated.
	CreatedAt time.Time `json:"createdAt"`

	// ReadAt is when the notification was acknowledged. It is nil exactly
	// when IsRead is false.
	ReadAt *time.Time `json:"readAt,omitempty"`

	// RelatedTaskID links the notification to a task, when applicable.
	RelatedTaskID string `json:"relatedTaskId,omitempty"`
}

// MarkRead returns a copy of the notification with IsRead set and ReadAt
// stamped with the given time.
func (n Notification) MarkRead(at time.Time) Notification {
	n.IsRead = true
	n.ReadAt = &at
	return n
}

// NotificationFilter selects which slice of the notification collection
// a list query returns.
type NotificationFilter struct {
	// Kind is one of "all", "unread", "read", "type", or "task".
	Kind string

	// Type is consulted when Kind is "type".
	Type NotificationType

	// TaskID is consulted when Kind is "task".
	TaskID string
}

// Common filters.
var (
	FilterAll    = NotificationFilter{Kind: "all"}
	FilterUnread = NotificationFilter{Kind: "unread"}
	FilterRead   = NotificationFilter{Kind: "read"}
)

// FilterByType returns a filter selecting notifications of a single type.
func FilterByType(t NotificationType) NotificationFilter {
	return NotificationFilter{Kind: "type", Type: t}
}

// FilterByTask returns a filter selecting notifications for one task.
func FilterByTask(taskID string) NotificationFilter {
	return NotificationFilter{Kind: "task", TaskID: taskID}
}

// String returns a short label for the filter, suitable for list titles.
func (f NotificationFilter) String() string {
	switch f.Kind {
	case "unread", "read":
		return f.Kind
	case "type":
		return string(f.Type)
	case "task":
		return "task " + f.TaskID
	default:
		return "all"
	}
}

// badgeCap is the largest count rendered literally in the unread badge.
const badgeCap = 99

// UnreadBadge formats an unread count for the header badge. Counts above
// 99 render as "99+"; zero renders as the empty string.
func UnreadBadge(count int) string {
	switch {
	case count <= 0:
		return ""
	case count > badgeCap:
		return fmt.Sprintf("%d+", badgeCap)
	default:
		return fmt.Sprintf("%d", count)
	}
}
