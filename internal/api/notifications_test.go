package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taskhub/taskhub-cli/internal/model"
	"github.com/taskhub/taskhub-cli/tests/testutil"
)

func TestNotificationsPath(t *testing.T) {
	cases := []struct {
		filter model.NotificationFilter
		want   string
	}{
		{filter: model.FilterAll, want: "/notifications"},
		{filter: model.NotificationFilter{}, want: "/notifications"},
		{filter: model.FilterUnread, want: "/notifications/unread"},
		{filter: model.FilterRead, want: "/notifications/read"},
		{
			filter: model.FilterByType(model.NotificationTaskDueSoon),
			want:   "/notifications/type/TASK_DUE_SOON",
		},
		{filter: model.FilterByTask("t-12"), want: "/notifications/task/t-12"},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, notificationsPath(tc.filter), "filter %s", tc.filter)
	}
}

func TestUnreadCount(t *testing.T) {
	server := testutil.NewServer(t)
	creds := testutil.NewCredentialStore(t)
	creds.SetTokens("token", "")

	server.Handle(http.MethodGet, "/api/notifications/unread/count",
		func(w http.ResponseWriter, r *http.Request) {
			testutil.RespondJSON(w, http.StatusOK, `{"success":true,"count":12}`)
		})

	client := NewClient(server.URL, creds)
	count, err := client.UnreadCount(context.Background())
	require.NoError(t, err)
	require.Equal(t, 12, count)
}

func TestListNotificationsDecodesItems(t *testing.T) {
	server := testutil.NewServer(t)
	creds := testutil.NewCredentialStore(t)
	creds.SetTokens("token", "")

	server.Handle(http.MethodGet, "/api/notifications/unread",
		func(w http.ResponseWriter, r *http.Request) {
			testutil.RespondJSON(w, http.StatusOK, `{
				"success": true,
				"count": 2,
				"data": [
					{
						"id": "n-1",
						"type": "TASK_ASSIGNED",
						"title": "New assignment",
						"message": "You were assigned to Fix the build",
						"isRead": false,
						"createdAt": "2026-08-20T10:00:00Z",
						"relatedTaskId": "t-5"
					},
					{
						"id": "n-2",
						"type": "GENERAL",
						"title": "Welcome",
						"message": "Welcome to TaskHub",
						"isRead": false,
						"createdAt": "2026-08-19T08:30:00Z"
					}
				]
			}`)
		})

	client := NewClient(server.URL, creds)
	items, total, err := client.ListNotifications(context.Background(), model.FilterUnread)
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Len(t, items, 2)
	require.Equal(t, "n-1", items[0].ID)
	require.Equal(t, model.NotificationTaskAssigned, items[0].Type)
	require.Equal(t, "t-5", items[0].RelatedTaskID)
	require.False(t, items[0].IsRead)
	require.Nil(t, items[0].ReadAt)
}

func TestMarkNotificationReadHitsEndpoint(t *testing.T) {
	server := testutil.NewServer(t)
	creds := testutil.NewCredentialStore(t)
	creds.SetTokens("token", "")

	server.Handle(http.MethodPut, "/api/notifications/n-3/mark-read",
		func(w http.ResponseWriter, r *http.Request) {
			testutil.RespondJSON(w, http.StatusOK, `{"success":true}`)
		})

	client := NewClient(server.URL, creds)
	require.NoError(t, client.MarkNotificationRead(context.Background(), "n-3"))
	require.Equal(t, 1, server.Hits(http.MethodPut, "/api/notifications/n-3/mark-read"))
}
