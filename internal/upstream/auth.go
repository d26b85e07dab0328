package upstream

import (
	"context"
	"net/http"

	"hotel-console-backend/internal/model"
)

// LoginResult is the upstream reply to a successful login.
type LoginResult struct {
	User  model.User `json:"user"`
	Token string     `json:"token"`
}

// Login exchanges operator credentials for an upstream token.
func (c *Client) Login(ctx context.Context, creds model.Credentials) (*LoginResult, error) {
	var res LoginResult
	if err := c.do(ctx, "", http.MethodPost, "/auth/login", "/auth/login", nil, creds, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Me returns the user owning token, or ErrUnauthorized when it is no longer valid.
func (c *Client) Me(ctx context.Context, token string) (*model.User, error) {
	var u model.User
	if err := c.get(ctx, token, "/auth/me", "/auth/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}
