package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/taskhub/taskhub-cli/internal/model"
)

// LoginData is the payload returned by a successful login.
type LoginData struct {
	AccessToken  string            `json:"accessToken"`
	RefreshToken string            `json:"refreshToken"`
	User         model.UserProfile `json:"user"`
}

// RefreshData is the payload returned by a successful token refresh.
// RefreshToken is empty when the server did not rotate it.
type RefreshData struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// RegisterRequest is the body for account creation.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Login authenticates with the service. It is an unauthenticated call;
// the caller stores the returned tokens.
func (c *Client) Login(ctx context.Context, identifier, password string) (*LoginData, error) {
	env, err := c.Post(ctx, "/auth/login", loginRequest{
		Username: identifier,
		Password: password,
	}, false)
	if err != nil {
		return nil, err
	}

	var data LoginData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, fmt.Errorf("decoding login response: %w", err)
	}
	return &data, nil
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	_, err := c.Post(ctx, "/auth/register", req, false)
	return err
}

// Refresh exchanges the refresh token for a new access token.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*RefreshData, error) {
	env, err := c.Post(ctx, "/auth/refresh", refreshRequest{
		RefreshToken: refreshToken,
	}, false)
	if err != nil {
		return nil, err
	}

	var data RefreshData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, fmt.Errorf("decoding refresh response: %w", err)
	}
	return &data, nil
}

// Logout invalidates the current session on the server.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.Post(ctx, "/auth/logout", nil, true)
	return err
}
