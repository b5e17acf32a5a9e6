package notify

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/taskhub/taskhub-cli/internal/api"
	"github.com/taskhub/taskhub-cli/internal/model"
	"github.com/taskhub/taskhub-cli/tests/testutil"
)

type stubRefresher struct{ calls atomic.Int32 }

func (s *stubRefresher) RefreshCount() { s.calls.Add(1) }

const listTwoUnread = `{
	"success": true,
	"count": 2,
	"data": [
		{"id": "n-1", "type": "TASK_ASSIGNED", "title": "A", "isRead": false,
		 "createdAt": "2026-08-20T10:00:00Z"},
		{"id": "n-2", "type": "GENERAL", "title": "B", "isRead": false,
		 "createdAt": "2026-08-19T08:30:00Z"}
	]
}`

func newTestController(t *testing.T, server *testutil.Server) (*Controller, *stubRefresher) {
	t.Helper()
	creds := testutil.NewCredentialStore(t)
	creds.SetTokens("token", "")
	client := api.NewClient(server.URL, creds)
	refresher := &stubRefresher{}
	ctrl := NewController(client, refresher)
	ctrl.now = func() time.Time {
		return time.Date(2026, 8, 21, 9, 0, 0, 0, time.UTC)
	}
	return ctrl, refresher
}

func TestFetchReplacesListWholesale(t *testing.T) {
	server := testutil.NewServer(t)
	server.Handle(http.MethodGet, "/api/notifications",
		func(w http.ResponseWriter, r *http.Request) {
			testutil.RespondJSON(w, http.StatusOK, listTwoUnread)
		})
	server.Handle(http.MethodGet, "/api/notifications/unread",
		func(w http.ResponseWriter, r *http.Request) {
			testutil.RespondJSON(w, http.StatusOK, `{"success":true,"count":0,"data":[]}`)
		})

	ctrl, _ := newTestController(t, server)

	require.NoError(t, ctrl.Fetch(context.Background(), model.FilterAll))
	require.Len(t, ctrl.Items(), 2)
	require.Equal(t, model.FilterAll, ctrl.ActiveFilter())

	// A fetch with a different filter replaces, never merges.
	require.NoError(t, ctrl.Fetch(context.Background(), model.FilterUnread))
	require.Empty(t, ctrl.Items())
	require.Equal(t, model.FilterUnread, ctrl.ActiveFilter())
}

func TestFetchFailureLeavesCacheUntouched(t *testing.T) {
	server := testutil.NewServer(t)
	server.Handle(http.MethodGet, "/api/notifications",
		func(w http.ResponseWriter, r *http.Request) {
			testutil.RespondJSON(w, http.StatusOK, listTwoUnread)
		})

	ctrl, _ := newTestController(t, server)
	require.NoError(t, ctrl.Fetch(context.Background(), model.FilterAll))

	// /api/notifications/read is unregistered and answers 404.
	require.Error(t, ctrl.Fetch(context.Background(), model.FilterRead))
	require.Len(t, ctrl.Items(), 2)
	require.Equal(t, model.FilterAll, ctrl.ActiveFilter())
}

func TestMarkAsReadAppliesOnlyAfterServerConfirms(t *testing.T) {
	server := testutil.NewServer(t)
	server.Handle(http.MethodGet, "/api/notifications",
		func(w http.ResponseWriter, r *http.Request) {
			testutil.RespondJSON(w, http.StatusOK, listTwoUnread)
		})
	server.Handle(http.MethodPut, "/api/notifications/n-1/mark-read",
		func(w http.ResponseWriter, r *http.Request) {
			testutil.RespondJSON(w, http.StatusOK, `{"success":true}`)
		})

	ctrl, refresher := newTestController(t, server)
	require.NoError(t, ctrl.Fetch(context.Background(), model.FilterAll))

	require.NoError(t, ctrl.MarkAsRead(context.Background(), "n-1"))

	items := ctrl.Items()
	require.True(t, items[0].IsRead)
	require.NotNil(t, items[0].ReadAt)
	require.False(t, items[1].IsRead)
	require.Equal(t, int32(1), refresher.calls.Load())
	require.False(t, ctrl.IsPending("n-1"))
}

func TestMarkAsReadFailureLeavesEntryUnchanged(t *testing.T) {
	server := testutil.NewServer(t)
	server.Handle(http.MethodGet, "/api/notifications",
		func(w http.ResponseWriter, r *http.Request) {
			testutil.RespondJSON(w, http.StatusOK, listTwoUnread)
		})
	server.Handle(http.MethodPut, "/api/notifications/n-1/mark-read",
		func(w http.ResponseWriter, r *http.Request) {
			testutil.RespondJSON(w, http.StatusInternalServerError,
				`{"success":false,"message":"boom"}`)
		})

	ctrl, refresher := newTestController(t, server)
	require.NoError(t, ctrl.Fetch(context.Background(), model.FilterAll))

	require.Error(t, ctrl.MarkAsRead(context.Background(), "n-1"))

	require.False(t, ctrl.Items()[0].IsRead)
	require.Zero(t, refresher.calls.Load())
	require.False(t, ctrl.IsPending("n-1"))
}

func TestMarkAsReadRejectsDoubleSubmission(t *testing.T) {
	server := testutil.NewServer(t)
	ctrl, _ := newTestController(t, server)

	require.NoError(t, ctrl.begin("n-1"))
	require.True(t, ctrl.IsPending("n-1"))

	err := ctrl.MarkAsRead(context.Background(), "n-1")
	require.ErrorContains(t, err, "already in flight")

	// A different id is unaffected by n-1 being in flight.
	require.NoError(t, ctrl.begin("n-2"))
	ctrl.finish("n-1")
	ctrl.finish("n-2")
	require.False(t, ctrl.IsPending("n-1"))
}

func TestDeleteRemovesEntryOnSuccess(t *testing.T) {
	server := testutil.NewServer(t)
	server.Handle(http.MethodGet, "/api/notifications",
		func(w http.ResponseWriter, r *http.Request) {
			testutil.RespondJSON(w, http.StatusOK, listTwoUnread)
		})
	server.Handle(http.MethodDelete, "/api/notifications/n-1",
		func(w http.ResponseWriter, r *http.Request) {
			testutil.RespondJSON(w, http.StatusOK, `{"success":true}`)
		})

	ctrl, refresher := newTestController(t, server)
	require.NoError(t, ctrl.Fetch(context.Background(), model.FilterAll))

	require.NoError(t, ctrl.Delete(context.Background(), "n-1"))

	items := ctrl.Items()
	require.Len(t, items, 1)
	require.Equal(t, "n-2", items[0].ID)
	require.Equal(t, int32(1), refresher.calls.Load())
}

func TestDeleteFailureKeepsEntry(t *testing.T) {
	server := testutil.NewServer(t)
	server.Handle(http.MethodGet, "/api/notifications",
		func(w http.ResponseWriter, r *http.Request) {
			testutil.RespondJSON(w, http.StatusOK, listTwoUnread)
		})
	// DELETE /api/notifications/n-1 is unregistered: the server no longer
	// knows the id and answers 404.
	ctrl, refresher := newTestController(t, server)
	require.NoError(t, ctrl.Fetch(context.Background(), model.FilterAll))

	require.Error(t, ctrl.Delete(context.Background(), "n-1"))
	require.Len(t, ctrl.Items(), 2)
	require.Zero(t, refresher.calls.Load())
}

func TestMarkAllAsReadRefetchesActiveFilter(t *testing.T) {
	server := testutil.NewServer(t)
	allRead := `{
		"success": true,
		"count": 2,
		"data": [
			{"id": "n-1", "type": "TASK_ASSIGNED", "title": "A", "isRead": true,
			 "createdAt": "2026-08-20T10:00:00Z", "readAt": "2026-08-21T09:00:00Z"},
			{"id": "n-2", "type": "GENERAL", "title": "B", "isRead": true,
			 "createdAt": "2026-08-19T08:30:00Z", "readAt": "2026-08-21T09:00:00Z"}
		]
	}`
	marked := false
	server.Handle(http.MethodGet, "/api/notifications",
		func(w http.ResponseWriter, r *http.Request) {
			if marked {
				testutil.RespondJSON(w, http.StatusOK, allRead)
				return
			}
			testutil.RespondJSON(w, http.StatusOK, listTwoUnread)
		})
	server.Handle(http.MethodPut, "/api/notifications/mark-all-read",
		func(w http.ResponseWriter, r *http.Request) {
			marked = true
			testutil.RespondJSON(w, http.StatusOK, `{"success":true}`)
		})

	ctrl, refresher := newTestController(t, server)
	require.NoError(t, ctrl.Fetch(context.Background(), model.FilterAll))

	require.NoError(t, ctrl.MarkAllAsRead(context.Background()))

	for _, n := range ctrl.Items() {
		require.True(t, n.IsRead)
	}
	require.Equal(t, int32(1), refresher.calls.Load())
}

func TestDeleteAllClearsCache(t *testing.T) {
	server := testutil.NewServer(t)
	server.Handle(http.MethodGet, "/api/notifications",
		func(w http.ResponseWriter, r *http.Request) {
			testutil.RespondJSON(w, http.StatusOK, listTwoUnread)
		})
	server.Handle(http.MethodDelete, "/api/notifications",
		func(w http.ResponseWriter, r *http.Request) {
			testutil.RespondJSON(w, http.StatusOK, `{"success":true}`)
		})

	ctrl, refresher := newTestController(t, server)
	require.NoError(t, ctrl.Fetch(context.Background(), model.FilterAll))

	require.NoError(t, ctrl.DeleteAll(context.Background()))
	require.Empty(t, ctrl.Items())
	require.Equal(t, int32(1), refresher.calls.Load())
}

func TestClearResetsEverything(t *testing.T) {
	server := testutil.NewServer(t)
	server.Handle(http.MethodGet, "/api/notifications/unread",
		func(w http.ResponseWriter, r *http.Request) {
			testutil.RespondJSON(w, http.StatusOK, listTwoUnread)
		})

	ctrl, _ := newTestController(t, server)
	require.NoError(t, ctrl.Fetch(context.Background(), model.FilterUnread))
	require.NoError(t, ctrl.begin("n-1"))

	ctrl.Clear()

	require.Empty(t, ctrl.Items())
	require.False(t, ctrl.IsPending("n-1"))
	require.Equal(t, model.FilterAll, ctrl.ActiveFilter())
}
