package gateway

import (
	"context"
	"fmt"
	"net/http"
)

// ListUsers returns every operator account.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	return getList[User](ctx, c, "/auth/users/", nil)
}

// CreateUser adds an operator account.
func (c *Client) CreateUser(ctx context.Context, in UserInput) (*User, error) {
	var out User
	if err := c.do(ctx, http.MethodPost, "/auth/users/", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateUser patches an operator account.
func (c *Client) UpdateUser(ctx context.Context, id int64, in UserUpdate) (*User, error) {
	var out User
	path := fmt.Sprintf("/auth/users/%d/", id)
	if err := c.do(ctx, http.MethodPatch, path, nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ToggleUserActive flips an account between active and disabled.
func (c *Client) ToggleUserActive(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/auth/users/%d/toggle_active/", id), nil, nil, nil)
}

// ResetUserPassword sets a new password for an account.
func (c *Client) ResetUserPassword(ctx context.Context, id int64, newPassword string) error {
	body := map[string]string{"new_password": newPassword}
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/auth/users/%d/reset_password/", id), nil, body, nil)
}
