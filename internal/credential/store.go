// Package credential persists the session tokens and cached user profile
// across program runs using the system keyring.
package credential

import (
	"encoding/json"
	"fmt"

	"github.com/99designs/keyring"

	"github.com/taskhub/taskhub-cli/internal/model"
)

const serviceName = "taskhub"

// Fixed keys for the three persisted values.
const (
	keyAccessToken  = "access-token"
	keyRefreshToken = "refresh-token"
	keyUserProfile  = "user-profile"
)

// Store is the durable credential store. It is the single owner of the
// persisted access token, refresh token, and user profile. All operations
// are total: failures from the underlying keyring are swallowed and read
// back as "none" so callers never have to branch on storage errors.
type Store struct {
	ring keyring.Keyring
}

// Open returns a Store backed by the system keyring, falling back to an
// encrypted file under the config directory when no OS keyring is
// available.
func Open() (*Store, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/taskhub/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("taskhub-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return NewStore(ring), nil
}

// NewStore wraps an already-open keyring. Tests pass
// keyring.NewArrayKeyring to keep everything in memory.
func NewStore(ring keyring.Keyring) *Store {
	return &Store{ring: ring}
}

// SetTokens stores the access token and, when non-empty, the refresh
// token. An empty refresh token leaves any previously stored one in
// place (the server only rotates it on some responses).
func (s *Store) SetTokens(access, refresh string) {
	_ = s.ring.Set(keyring.Item{Key: keyAccessToken, Data: []byte(access)})
	if refresh != "" {
		_ = s.ring.Set(keyring.Item{Key: keyRefreshToken, Data: []byte(refresh)})
	}
}

// AccessToken returns the stored access token, or "" when absent.
func (s *Store) AccessToken() string {
	return s.get(keyAccessToken)
}

// RefreshToken returns the stored refresh token, or "" when absent.
func (s *Store) RefreshToken() string {
	return s.get(keyRefreshToken)
}

// SetUser stores the serialized user profile.
func (s *Store) SetUser(user model.UserProfile) {
	data, err := json.Marshal(user)
	if err != nil {
		return
	}
	_ = s.ring.Set(keyring.Item{Key: keyUserProfile, Data: data})
}

// User returns the cached user profile, or nil when absent or unreadable.
func (s *Store) User() *model.UserProfile {
	item, err := s.ring.Get(keyUserProfile)
	if err != nil {
		return nil
	}
	var user model.UserProfile
	if err := json.Unmarshal(item.Data, &user); err != nil {
		return nil
	}
	return &user
}

// Clear removes the access token, refresh token, and profile. Removing a
// key that is already absent is a no-op, so clearing an empty store is
// harmless and the operation can be repeated safely.
func (s *Store) Clear() {
	_ = s.ring.Remove(keyAccessToken)
	_ = s.ring.Remove(keyRefreshToken)
	_ = s.ring.Remove(keyUserProfile)
}

// get reads a single key, mapping every failure to "none".
func (s *Store) get(key string) string {
	item, err := s.ring.Get(key)
	if err != nil {
		return ""
	}
	return string(item.Data)
}
