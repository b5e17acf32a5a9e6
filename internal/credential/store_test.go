package credential

import (
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/require"

	"github.com/taskhub/taskhub-cli/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(keyring.NewArrayKeyring(nil))
}

func TestEmptyStoreReadsAsNone(t *testing.T) {
	s := newTestStore(t)

	require.Empty(t, s.AccessToken())
	require.Empty(t, s.RefreshToken())
	require.Nil(t, s.User())
}

func TestSetTokensAndReadBack(t *testing.T) {
	s := newTestStore(t)

	s.SetTokens("access-1", "refresh-1")
	require.Equal(t, "access-1", s.AccessToken())
	require.Equal(t, "refresh-1", s.RefreshToken())
}

func TestSetTokensEmptyRefreshKeepsPrevious(t *testing.T) {
	s := newTestStore(t)

	s.SetTokens("access-1", "refresh-1")
	s.SetTokens("access-2", "")

	require.Equal(t, "access-2", s.AccessToken())
	require.Equal(t, "refresh-1", s.RefreshToken())
}

func TestUserRoundTrip(t *testing.T) {
	s := newTestStore(t)

	profile := model.UserProfile{
		ID:       7,
		Username: "dana",
		Email:    "dana@example.com",
		FullName: "Dana S",
		Role:     "member",
	}
	s.SetUser(profile)

	got := s.User()
	require.NotNil(t, got)
	require.Equal(t, profile, *got)
}

func TestClearRemovesEverything(t *testing.T) {
	s := newTestStore(t)

	s.SetTokens("access-1", "refresh-1")
	s.SetUser(model.UserProfile{Username: "dana"})

	s.Clear()
	require.Empty(t, s.AccessToken())
	require.Empty(t, s.RefreshToken())
	require.Nil(t, s.User())

	// Clearing again is harmless.
	s.Clear()
	require.Empty(t, s.AccessToken())
}
