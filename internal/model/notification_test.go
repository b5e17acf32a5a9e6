package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestUnreadBadge(t *testing.T) {
	cases := []struct {
		count int
		want  string
	}{
		{count: -3, want: ""},
		{count: 0, want: ""},
		{count: 1, want: "1"},
		{count: 42, want: "42"},
		{count: 99, want: "99"},
		{count: 100, want: "99+"},
		{count: 2500, want: "99+"},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, UnreadBadge(tc.count), "count %d", tc.count)
	}
}

func TestMarkReadReturnsCopy(t *testing.T) {
	original := Notification{
		ID:     "n-1",
		Type:   NotificationTaskAssigned,
		Title:  "Assigned",
		IsRead: false,
	}

	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	read := original.MarkRead(at)

	require.True(t, read.IsRead)
	require.NotNil(t, read.ReadAt)
	require.Equal(t, at, *read.ReadAt)

	// The receiver is untouched; callers swap the copy in explicitly.
	require.False(t, original.IsRead)
	require.Nil(t, original.ReadAt)
}

func TestNotificationFilterString(t *testing.T) {
	require.Equal(t, "all", FilterAll.String())
	require.Equal(t, "all", NotificationFilter{}.String())
	require.Equal(t, "unread", FilterUnread.String())
	require.Equal(t, "read", FilterRead.String())
	require.Equal(t, "TASK_OVERDUE", FilterByType(NotificationTaskOverdue).String())
	require.Equal(t, "task t-9", FilterByTask("t-9").String())
}
