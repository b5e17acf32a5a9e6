package model

import "time"

// Normalized status constants reported by the TaskHub service.
const (
	StatusOpen       = "open"
	StatusInProgress = "in_progress"
	StatusReview     = "review"
	StatusDone       = "done"
)

// Normalized priority constants (lower number = higher priority).
const (
	PriorityCritical = 1
	PriorityHigh     = 2
	PriorityMedium   = 3
	PriorityLow      = 4
	PriorityLowest   = 5
)

// Task is the summary representation of a work item returned by the
// TaskHub service. The client renders it as-is; the server owns all
// task state.
type Task struct {
	// ID is the server-side identifier for this task.
	ID string `json:"id"`

	// Title is the human-readable summary of the task.
	Title string `json:"title"`

	// Description is the full body/description text.
	Description string `json:"description"`

	// Status is the normalized status (use Status* constants).
	Status string `json:"status"`

	// Priority is the normalized priority level (use Priority* constants).
	Priority int `json:"priority"`

	// Assignee is the username of the assigned person.
	Assignee string `json:"assignee"`

	// WorkspaceID identifies the workspace containing this task.
	WorkspaceID string `json:"workspaceId"`

	// DueDate is the task deadline, if one is set.
	DueDate *time.Time `json:"dueDate,omitempty"`

	// CreatedAt is when the task was created on the server.
	CreatedAt time.Time `json:"createdAt"`

	// UpdatedAt is when the task was last modified on the server.
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsOverdue reports whether the task has a due date in the past and is
// not yet done.
func (t Task) IsOverdue() bool {
	return t.DueDate != nil && t.DueDate.Before(time.Now()) && t.Status != StatusDone
}
