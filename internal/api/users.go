package api

import (
	"context"
	"net/http"

	"github.com/innercanvas/innercanvas/internal/session"
)

// UpdateMeRequest carries the editable profile fields. Empty strings are
// omitted so the backend leaves them untouched.
type UpdateMeRequest struct {
	Email     string `json:"email,omitempty"`
	BirthDate string `json:"birthDate,omitempty"` // YYYY-MM-DD
}

// UpdateMe edits the authenticated user's profile.
func (c *Client) UpdateMe(ctx context.Context, req UpdateMeRequest) (*session.User, error) {
	cl, err := jsonCall(http.MethodPut, "/users/me", req)
	if err != nil {
		return nil, err
	}
	var u session.User
	if err := c.do(ctx, cl, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// VerifyPassword checks the current password before a change is allowed.
func (c *Client) VerifyPassword(ctx context.Context, username, password string) (bool, error) {
	cl, err := jsonCall(http.MethodPost, "/users/pass", map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return false, err
	}
	var ok bool
	if err := c.do(ctx, cl, &ok); err != nil {
		return false, err
	}
	return ok, nil
}

// ChangePassword rotates the authenticated user's password.
func (c *Client) ChangePassword(ctx context.Context, current, next, confirm string) error {
	cl, err := jsonCall(http.MethodPut, "/users/me/password", map[string]string{
		"currentPassword": current,
		"newPassword":     next,
		"confirmPassword": confirm,
	})
	if err != nil {
		return err
	}
	return c.do(ctx, cl, nil)
}
