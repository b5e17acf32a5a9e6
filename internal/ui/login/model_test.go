package login

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/charmbracelet/bubbles/cursor"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/taskhub/taskhub-cli/internal/api"
	"github.com/taskhub/taskhub-cli/internal/session"
	"github.com/taskhub/taskhub-cli/tests/testutil"
)

// drive executes a command tree, feeding every produced message back
// into the model until the queue drains.
func drive(m Model, cmd tea.Cmd) Model {
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case nil:
		case cursor.BlinkMsg:
			// Cursor blink replies schedule another blink command
			// forever; dropping them lets the queue drain.
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			var next tea.Cmd
			m, next = m.Update(msg)
			queue = append(queue, next)
		}
	}
	return m
}

func press(m Model, msg tea.Msg) Model {
	next, cmd := m.Update(msg)
	return drive(next, cmd)
}

func typeText(m Model, s string) Model {
	return press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func enter(m Model) Model {
	return press(m, tea.KeyMsg{Type: tea.KeyEnter})
}

func TestTypedCredentialsReachServer(t *testing.T) {
	server := testutil.NewServer(t)
	creds := testutil.NewCredentialStore(t)
	client := api.NewClient(server.URL, creds)
	sess := session.NewManager(creds, client)

	var got struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	server.Handle(http.MethodPost, "/api/auth/login",
		func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewDecoder(r.Body).Decode(&got)
			testutil.RespondJSON(w, http.StatusOK, `{
				"success": true,
				"data": {
					"accessToken": "access-1",
					"refreshToken": "refresh-1",
					"user": {"id": 1, "username": "alice", "role": "member"}
				}
			}`)
		})

	m := New(sess, client, 80, 24)
	m = drive(m, m.Init())

	// Typed input must land in the fields the submit path reads, even
	// though Bubble Tea copies the model on every Update.
	m = typeText(m, "alice")
	m = enter(m)
	m = typeText(m, "pw")
	m = enter(m)

	require.Equal(t, 1, server.Hits(http.MethodPost, "/api/auth/login"))
	require.Equal(t, "alice", got.Username)
	require.Equal(t, "pw", got.Password)
	require.True(t, sess.IsAuthenticated())
	require.Equal(t, "access-1", creds.AccessToken())
}

func TestTypedRegistrationReachesServer(t *testing.T) {
	server := testutil.NewServer(t)
	creds := testutil.NewCredentialStore(t)
	client := api.NewClient(server.URL, creds)
	sess := session.NewManager(creds, client)

	var got api.RegisterRequest
	server.Handle(http.MethodPost, "/api/auth/register",
		func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewDecoder(r.Body).Decode(&got)
			testutil.RespondJSON(w, http.StatusOK, `{"success":true}`)
		})

	m := New(sess, client, 80, 24)
	m = drive(m, m.Init())
	m = press(m, tea.KeyMsg{Type: tea.KeyCtrlR})
	require.Equal(t, ModeRegister, m.mode)

	m = typeText(m, "bob")
	m = enter(m)
	m = typeText(m, "bob@example.com")
	m = enter(m)
	m = enter(m) // full name left empty
	m = typeText(m, "hunter2")
	m = enter(m)

	require.Equal(t, 1, server.Hits(http.MethodPost, "/api/auth/register"))
	require.Equal(t, "bob", got.Username)
	require.Equal(t, "bob@example.com", got.Email)
	require.Equal(t, "hunter2", got.Password)
	// Registration drops back to the sign-in form.
	require.Equal(t, ModeLogin, m.mode)
}

func TestLoginFailureShowsServerMessage(t *testing.T) {
	server := testutil.NewServer(t)
	creds := testutil.NewCredentialStore(t)
	client := api.NewClient(server.URL, creds)
	sess := session.NewManager(creds, client)

	server.Handle(http.MethodPost, "/api/auth/login",
		func(w http.ResponseWriter, r *http.Request) {
			testutil.RespondJSON(w, http.StatusUnauthorized,
				`{"success":false,"message":"Incorrect username or password"}`)
		})

	m := New(sess, client, 80, 24)
	m = drive(m, m.Init())
	m = typeText(m, "alice")
	m = enter(m)
	m = typeText(m, "wrong")
	m = enter(m)

	require.Equal(t, "Incorrect username or password", m.errMsg)
	require.False(t, sess.IsAuthenticated())
}
