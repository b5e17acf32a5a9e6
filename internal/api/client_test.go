package api

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taskhub/taskhub-cli/tests/testutil"
)

func TestDoAttachesBearerTokenAndRequestID(t *testing.T) {
	server := testutil.NewServer(t)
	creds := testutil.NewCredentialStore(t)
	creds.SetTokens("token-abc", "")

	var gotAuth, gotRequestID string
	server.Handle(http.MethodGet, "/api/ping", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-Id")
		testutil.RespondJSON(w, http.StatusOK, `{"success":true}`)
	})

	client := NewClient(server.URL, creds)
	_, err := client.Get(context.Background(), "/ping", true)
	require.NoError(t, err)
	require.Equal(t, "Bearer token-abc", gotAuth)
	require.NotEmpty(t, gotRequestID)
}

func TestDoOmitsAuthorizationWithoutToken(t *testing.T) {
	server := testutil.NewServer(t)
	creds := testutil.NewCredentialStore(t)

	var gotAuth string
	server.Handle(http.MethodGet, "/api/ping", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		testutil.RespondJSON(w, http.StatusOK, `{"success":true}`)
	})

	client := NewClient(server.URL, creds)
	_, err := client.Get(context.Background(), "/ping", true)
	require.NoError(t, err)
	require.Empty(t, gotAuth)
}

func TestDoRereadsTokenEveryCall(t *testing.T) {
	server := testutil.NewServer(t)
	creds := testutil.NewCredentialStore(t)
	creds.SetTokens("first", "")

	var gotAuth string
	server.Handle(http.MethodGet, "/api/ping", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		testutil.RespondJSON(w, http.StatusOK, `{"success":true}`)
	})

	client := NewClient(server.URL, creds)
	_, err := client.Get(context.Background(), "/ping", true)
	require.NoError(t, err)
	require.Equal(t, "Bearer first", gotAuth)

	creds.SetTokens("rotated", "")
	_, err = client.Get(context.Background(), "/ping", true)
	require.NoError(t, err)
	require.Equal(t, "Bearer rotated", gotAuth)
}

func TestTokenRejectionClearsStoreAndFiresHook(t *testing.T) {
	server := testutil.NewServer(t)
	creds := testutil.NewCredentialStore(t)
	creds.SetTokens("stale", "refresh-1")

	server.Handle(http.MethodGet, "/api/ping", func(w http.ResponseWriter, r *http.Request) {
		testutil.RespondJSON(w, http.StatusUnauthorized,
			`{"success":false,"message":"Invalid or expired token"}`)
	})

	client := NewClient(server.URL, creds)
	var deauths atomic.Int32
	client.OnDeauth(func() { deauths.Add(1) })

	_, err := client.Get(context.Background(), "/ping", true)
	require.Error(t, err)
	require.True(t, IsAuthError(err))
	require.Empty(t, creds.AccessToken())
	require.Empty(t, creds.RefreshToken())
	require.Equal(t, int32(1), deauths.Load())
}

func TestNonTokenUnauthorizedIsNotAuthError(t *testing.T) {
	server := testutil.NewServer(t)
	creds := testutil.NewCredentialStore(t)
	creds.SetTokens("valid", "")

	// A 401 about the payload, not the session. The credentials survive.
	server.Handle(http.MethodPost, "/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		testutil.RespondJSON(w, http.StatusUnauthorized,
			`{"success":false,"message":"Incorrect username or password"}`)
	})

	client := NewClient(server.URL, creds)
	var deauths atomic.Int32
	client.OnDeauth(func() { deauths.Add(1) })

	_, err := client.Post(context.Background(), "/auth/login", nil, false)
	require.Error(t, err)
	require.False(t, IsAuthError(err))
	require.Equal(t, "valid", creds.AccessToken())
	require.Equal(t, int32(0), deauths.Load())
}

func TestUnavailableClassification(t *testing.T) {
	server := testutil.NewServer(t)
	creds := testutil.NewCredentialStore(t)
	creds.SetTokens("valid", "")

	server.Handle(http.MethodGet, "/api/broken", func(w http.ResponseWriter, r *http.Request) {
		testutil.RespondJSON(w, http.StatusInternalServerError,
			`{"success":false,"message":"database exploded"}`)
	})

	client := NewClient(server.URL, creds)

	_, err := client.Get(context.Background(), "/broken", true)
	require.Error(t, err)
	require.True(t, IsUnavailable(err))
	require.False(t, IsAuthError(err))
	// 404 from an unregistered path classifies the same way.
	_, err = client.Get(context.Background(), "/missing", true)
	require.True(t, IsUnavailable(err))
	// The session is untouched either way.
	require.Equal(t, "valid", creds.AccessToken())
}

func TestErrorMessageFallsBackToStatus(t *testing.T) {
	server := testutil.NewServer(t)
	creds := testutil.NewCredentialStore(t)

	server.Handle(http.MethodGet, "/api/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	client := NewClient(server.URL, creds)
	_, err := client.Get(context.Background(), "/ping", false)
	require.EqualError(t, err, "HTTP error, status=403")
}

func TestRateLimitedRequestIsRetried(t *testing.T) {
	server := testutil.NewServer(t)
	creds := testutil.NewCredentialStore(t)

	var calls atomic.Int32
	server.Handle(http.MethodGet, "/api/ping", func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "0")
			testutil.RespondJSON(w, http.StatusTooManyRequests,
				`{"success":false,"message":"slow down"}`)
			return
		}
		testutil.RespondJSON(w, http.StatusOK, `{"success":true,"count":3}`)
	})

	client := NewClient(server.URL, creds)
	env, err := client.Get(context.Background(), "/ping", false)
	require.NoError(t, err)
	require.Equal(t, 3, env.Count)
	require.Equal(t, int32(2), calls.Load())
}

func TestRateLimitRetriesGiveUpEventually(t *testing.T) {
	server := testutil.NewServer(t)
	creds := testutil.NewCredentialStore(t)

	server.Handle(http.MethodGet, "/api/ping", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "0")
		testutil.RespondJSON(w, http.StatusTooManyRequests,
			`{"success":false,"message":"slow down"}`)
	})

	client := NewClient(server.URL, creds)
	_, err := client.Get(context.Background(), "/ping", false)
	require.Error(t, err)
	require.Contains(t, err.Error(), "max retries")
	require.Equal(t, 4, server.Hits(http.MethodGet, "/api/ping"))
}

func TestIsTokenAuthFailure(t *testing.T) {
	require.True(t, isTokenAuthFailure(401, "Invalid token"))
	require.True(t, isTokenAuthFailure(401, "TOKEN expired"))
	require.False(t, isTokenAuthFailure(401, "Incorrect password"))
	require.False(t, isTokenAuthFailure(403, "Invalid token"))
}
