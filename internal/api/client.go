// Package api is the authenticated gateway to the TaskHub HTTP service.
// It attaches the current access token to outgoing calls, classifies
// failures, and performs the one global deauthentication side effect.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/taskhub/taskhub-cli/internal/credential"
	"github.com/taskhub/taskhub-cli/internal/logging"
)

// basePath prefixes every service endpoint.
const basePath = "/api"

// Envelope is the common response wrapper used by every TaskHub endpoint.
type Envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Count   int             `json:"count"`
	Data    json.RawMessage `json:"data"`
}

// Client is the HTTP gateway to the TaskHub service. It re-reads the
// access token from the credential store on every call, so token rotation
// by the session manager is picked up without any coordination.
type Client struct {
	baseURL    string
	creds      *credential.Store
	httpClient *http.Client
	maxRetries int
	onDeauth   func()
}

// NewClient creates a gateway for the server at baseURL (the root URL,
// without the /api suffix) reading credentials from creds.
func NewClient(baseURL string, creds *credential.Store) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		creds:   creds,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		maxRetries: 3,
	}
}

// OnDeauth registers the hook invoked after a confirmed authentication
// failure has cleared the credential store. The gateway may invoke it
// once per failing request in a concurrent burst; implementations must
// be idempotent.
func (c *Client) OnDeauth(fn func()) {
	c.onDeauth = fn
}

// Get performs an authenticated or unauthenticated GET against an /api path.
func (c *Client) Get(ctx context.Context, path string, requiresAuth bool) (*Envelope, error) {
	return c.do(ctx, http.MethodGet, path, nil, requiresAuth)
}

// Post performs a POST with an optional JSON body.
func (c *Client) Post(ctx context.Context, path string, body any, requiresAuth bool) (*Envelope, error) {
	return c.do(ctx, http.MethodPost, path, body, requiresAuth)
}

// Put performs a PUT with an optional JSON body.
func (c *Client) Put(ctx context.Context, path string, body any, requiresAuth bool) (*Envelope, error) {
	return c.do(ctx, http.MethodPut, path, body, requiresAuth)
}

// Delete performs a DELETE.
func (c *Client) Delete(ctx context.Context, path string, requiresAuth bool) (*Envelope, error) {
	return c.do(ctx, http.MethodDelete, path, nil, requiresAuth)
}

// do is the core request method: it builds the request, attaches the
// bearer token, retries 429s with backoff, and classifies any non-2xx
// response. A missing token on an authenticated call is not an error
// here; the call proceeds unauthenticated and the server rejects it.
func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	body any,
	requiresAuth bool,
) (*Envelope, error) {
	url := c.baseURL + basePath + path

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		// Rebuild the body reader on retries since it was consumed.
		if attempt > 0 && body != nil {
			data, _ := json.Marshal(body)
			bodyReader = bytes.NewReader(data)
		}

		req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}

		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-Request-Id", uuid.NewString())
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if requiresAuth {
			// Re-read on every call; never cache a token value.
			if token := c.creds.AccessToken(); token != "" {
				req.Header.Set("Authorization", "Bearer "+token)
			}
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, &Error{Message: fmt.Sprintf(
				"executing request %s %s: %v", method, path, err,
			)}
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return nil, &Error{Message: fmt.Sprintf(
				"reading response body: %v", readErr,
			)}
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			waitDuration := retryAfterDuration(resp, attempt)
			lastErr = &Error{
				StatusCode: resp.StatusCode,
				Message:    fmt.Sprintf("rate limited (429) on %s %s", method, path),
			}

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(waitDuration):
				continue
			}
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, c.classify(resp.StatusCode, respBody)
		}

		var env Envelope
		if len(respBody) > 0 {
			if err := json.Unmarshal(respBody, &env); err != nil {
				return nil, &Error{Message: fmt.Sprintf(
					"unmarshaling response from %s %s: %v", method, path, err,
				)}
			}
		}

		return &env, nil
	}

	return nil, fmt.Errorf("max retries (%d) exceeded: %w", c.maxRetries, lastErr)
}

// classify turns a non-2xx response into the right error class and, for
// a confirmed token failure, performs the global deauthentication side
// effect: clear the credential store and invoke the deauth hook.
func (c *Client) classify(statusCode int, respBody []byte) error {
	message := serverMessage(respBody)
	if message == "" {
		message = fmt.Sprintf("HTTP error, status=%d", statusCode)
	}

	if isTokenAuthFailure(statusCode, message) {
		logging.Warn("session rejected by server, clearing credentials",
			"status", statusCode)
		// Clearing an already-empty store is a no-op, so a burst of
		// concurrently failing requests settles harmlessly.
		c.creds.Clear()
		if c.onDeauth != nil {
			c.onDeauth()
		}
		return &AuthError{Message: message}
	}

	return &Error{StatusCode: statusCode, Message: message}
}

// serverMessage extracts the message field from an error response body,
// returning "" when the body is not a recognizable Envelope.
func serverMessage(respBody []byte) string {
	var env Envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return ""
	}
	return env.Message
}

// retryAfterDuration reads the Retry-After header and computes a wait
// duration. Falls back to exponential backoff if the header is missing.
func retryAfterDuration(resp *http.Response, attempt int) time.Duration {
	if header := resp.Header.Get("Retry-After"); header != "" {
		if seconds, err := strconv.Atoi(header); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}

	// Exponential backoff: 1s, 2s, 4s, ...
	backoff := time.Duration(1<<uint(attempt)) * time.Second
	if backoff > 30*time.Second {
		backoff = 30 * time.Second
	}
	return backoff
}
