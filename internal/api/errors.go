package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error is a failed call to the TaskHub service. StatusCode is zero for
// transport-level failures that never produced a response.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return e.Message
}

// AuthError indicates that the session's credentials were rejected by the
// server: an HTTP 401 whose message concerns the token itself. It is the
// only failure class that forces logout.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed: %s", e.Message)
}

// IsAuthError reports whether err (or any error in its chain) is an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// IsUnavailable reports whether err is a 404 or 500 from the service:
// the feature endpoint is missing or broken, but the session itself is
// fine. Callers degrade their own view instead of logging out.
func IsUnavailable(err error) bool {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusNotFound ||
		apiErr.StatusCode == http.StatusInternalServerError
}

// isTokenAuthFailure applies the integration contract for forced logout:
// a 401 whose server message mentions the token. This substring match is
// the contract the server exposes, fragile as it is.
func isTokenAuthFailure(statusCode int, message string) bool {
	return statusCode == http.StatusUnauthorized &&
		strings.Contains(strings.ToLower(message), "token")
}
