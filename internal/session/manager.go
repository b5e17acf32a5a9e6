// Package session owns the authentication state machine: login, logout,
// token refresh, and the derived authenticated/loading view that route
// guarding consumes.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/taskhub/taskhub-cli/internal/api"
	"github.com/taskhub/taskhub-cli/internal/credential"
	"github.com/taskhub/taskhub-cli/internal/logging"
	"github.com/taskhub/taskhub-cli/internal/model"
)

// State is the session's position in the authentication state machine.
type State int

const (
	Anonymous State = iota
	Loading
	Authenticated
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Authenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

// ErrNoRefreshToken is returned by Refresh when no refresh token is stored.
var ErrNoRefreshToken = errors.New("no refresh token")

// Snapshot is the derived view of the session handed to consumers.
type Snapshot struct {
	State   State
	User    *model.UserProfile
	Loading bool
}

// IsAuthenticated reports whether the snapshot represents a live session.
func (s Snapshot) IsAuthenticated() bool {
	return s.State == Authenticated
}

// Manager is the sole writer of the credential store and the single
// owner of the in-memory authentication state. All other components read
// session state through it.
type Manager struct {
	creds  *credential.Store
	client *api.Client

	mu      sync.Mutex
	state   State
	user    *model.UserProfile
	loading bool

	deauthCh chan struct{}
}

// NewManager wires a manager to the credential store and gateway, and
// registers itself as the gateway's deauthentication hook.
func NewManager(creds *credential.Store, client *api.Client) *Manager {
	m := &Manager{
		creds:    creds,
		client:   client,
		state:    Anonymous,
		deauthCh: make(chan struct{}, 1),
	}
	client.OnDeauth(m.ForceDeauth)
	return m
}

// Initialize restores the session from the credential store without a
// server round-trip. A present access token optimistically yields an
// authenticated session using the cached profile; the next protected
// call re-validates it and demotes on a real authentication failure.
func (m *Manager) Initialize() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.loading = true
	m.state = Loading

	if token := m.creds.AccessToken(); token != "" {
		m.state = Authenticated
		m.user = m.creds.User()
	} else {
		m.state = Anonymous
		m.user = nil
	}
	m.loading = false
}

// Login authenticates against the service. On success the tokens and
// profile are stored and the session becomes authenticated; on failure
// the session stays anonymous and the error propagates to the caller,
// which renders it.
func (m *Manager) Login(ctx context.Context, identifier, password string) (*api.LoginData, error) {
	m.mu.Lock()
	m.loading = true
	m.state = Loading
	m.mu.Unlock()

	data, err := m.client.Login(ctx, identifier, password)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.loading = false

	if err != nil {
		m.state = Anonymous
		return nil, err
	}

	m.creds.SetTokens(data.AccessToken, data.RefreshToken)
	m.creds.SetUser(data.User)
	user := data.User
	m.user = &user
	m.state = Authenticated
	logging.Info("logged in", "user", data.User.Username)
	return data, nil
}

// Logout invalidates the session on the server on a best-effort basis
// and unconditionally clears local credentials. A network failure never
// prevents local deauthentication.
func (m *Manager) Logout(ctx context.Context) {
	if err := m.client.Logout(ctx); err != nil {
		logging.Warn("server logout failed, clearing local session anyway",
			"error", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.creds.Clear()
	m.state = Anonymous
	m.user = nil
}

// Refresh exchanges the stored refresh token for a new access token.
// With no refresh token stored it fails immediately and clears the
// session; a failed exchange also demotes to anonymous. Success leaves
// the session state untouched and overwrites the stored tokens.
func (m *Manager) Refresh(ctx context.Context) error {
	refreshToken := m.creds.RefreshToken()
	if refreshToken == "" {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.creds.Clear()
		m.state = Anonymous
		m.user = nil
		return ErrNoRefreshToken
	}

	data, err := m.client.Refresh(ctx, refreshToken)

	m.mu.Lock()
	defer m.mu.Unlock()

	if err != nil {
		m.creds.Clear()
		m.state = Anonymous
		m.user = nil
		return err
	}

	m.creds.SetTokens(data.AccessToken, data.RefreshToken)
	logging.Debug("access token refreshed")
	return nil
}

// ForceDeauth is the gateway's deauthentication hook. It is idempotent:
// repeated invocations from a burst of failing requests settle on the
// same anonymous state, and the deauth signal is delivered at most once
// per transition.
func (m *Manager) ForceDeauth() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.creds.Clear()
	if m.state == Anonymous {
		return
	}
	m.state = Anonymous
	m.user = nil

	select {
	case m.deauthCh <- struct{}{}:
	default:
	}
}

// Deauths exposes the forced-deauthentication signal for the UI to route
// back to the login view.
func (m *Manager) Deauths() <-chan struct{} {
	return m.deauthCh
}

// Snapshot returns the current derived session view.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{State: m.state, User: m.user, Loading: m.loading}
}

// IsAuthenticated reports whether the session is currently authenticated.
func (m *Manager) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == Authenticated
}

// TokenExpiresWithin reports whether the stored access token is a JWT
// whose exp claim falls within d from now. Opaque or absent tokens
// report false; expiry for those is only discovered by the server
// rejecting a call.
func (m *Manager) TokenExpiresWithin(d time.Duration) bool {
	token := m.creds.AccessToken()
	if token == "" {
		return false
	}

	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return time.Until(exp.Time) < d
}
