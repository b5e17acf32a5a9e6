// Package testutil provides shared helpers for exercising the gateway
// and its consumers against a scripted TaskHub endpoint.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/99designs/keyring"

	"github.com/taskhub/taskhub-cli/internal/credential"
)

// NewCredentialStore returns a credential store backed by an in-memory
// keyring, so tests never touch the OS keychain.
func NewCredentialStore(t *testing.T) *credential.Store {
	t.Helper()
	return credential.NewStore(keyring.NewArrayKeyring(nil))
}

// Server is a scripted TaskHub endpoint. Tests register handlers per
// method and path and can ask how often each was hit. Unregistered
// paths answer 404 with a service-shaped error body.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	hits     map[string]int
	handlers map[string]http.HandlerFunc
}

// NewServer starts a scripted endpoint and closes it when the test ends.
func NewServer(t *testing.T) *Server {
	t.Helper()
	s := &Server{
		hits:     make(map[string]int),
		handlers: make(map[string]http.HandlerFunc),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.dispatch))
	t.Cleanup(s.Close)
	return s
}

// Handle registers a handler for one method and path (the full request
// path, including the /api prefix).
func (s *Server) Handle(method, path string, fn http.HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[method+" "+path] = fn
}

// Hits returns how many requests arrived for the method and path.
func (s *Server) Hits(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[method+" "+path]
}

func (s *Server) dispatch(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path

	s.mu.Lock()
	s.hits[key]++
	fn := s.handlers[key]
	s.mu.Unlock()

	if fn == nil {
		RespondJSON(w, http.StatusNotFound, `{"success":false,"message":"not found"}`)
		return
	}
	fn(w, r)
}

// RespondJSON writes a raw JSON body with the given status code.
func RespondJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprint(w, body)
}
