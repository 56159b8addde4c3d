package gateway

import (
	"context"
	"net/http"
)

// TokenPair is the JWT pair issued at login.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Login exchanges credentials for a token pair. The caller stores the access
// token in the session; this client never keeps credentials.
func (c *Client) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	body := map[string]string{
		"username": username,
		"password": password,
	}
	var pair TokenPair
	if err := c.do(ctx, http.MethodPost, "/auth/login/", nil, body, &pair); err != nil {
		return nil, err
	}
	return &pair, nil
}

// Refresh trades a refresh token for a fresh access token.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	body := map[string]string{"refresh": refreshToken}
	var pair TokenPair
	if err := c.do(ctx, http.MethodPost, "/auth/refresh/", nil, body, &pair); err != nil {
		return nil, err
	}
	return &pair, nil
}

// Verify asks the Gateway whether a token is still accepted.
func (c *Client) Verify(ctx context.Context, token string) error {
	body := map[string]string{"token": token}
	return c.do(ctx, http.MethodPost, "/auth/verify/", nil, body, nil)
}

// Me returns the authenticated user's profile, including the role the client
// caches for screen gating.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodGet, "/auth/me/", nil, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}
