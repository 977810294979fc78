package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/innercanvas/innercanvas/internal/session"
)

// LoginResult is the payload of a successful login.
type LoginResult struct {
	AccessToken string       `json:"accessToken"`
	User        session.User `json:"user"`
}

// Login authenticates with username/password and persists the access token.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	cl, err := jsonCall(http.MethodPost, "/auth/login", map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return nil, err
	}

	var res LoginResult
	if err := c.do(ctx, cl, &res); err != nil {
		return nil, err
	}
	if res.AccessToken != "" {
		if err := c.tokens.Save(res.AccessToken); err != nil {
			return nil, err
		}
	}
	return &res, nil
}

// Logout tells the backend to drop the refresh token. Callers clear local
// state regardless of the outcome.
func (c *Client) Logout(ctx context.Context) error {
	cl, _ := jsonCall(http.MethodPost, "/auth/logout", nil)
	return c.do(ctx, cl, nil)
}

// Reissue exchanges the cookie-borne refresh token for a new access token
// and persists it. Used by the OAuth callback flow and startup rehydration.
func (c *Client) Reissue(ctx context.Context) (string, error) {
	return c.reissue(ctx)
}

// Me returns the profile of the authenticated user.
func (c *Client) Me(ctx context.Context) (*session.User, error) {
	cl, _ := jsonCall(http.MethodGet, "/auth/me", nil)
	var u session.User
	if err := c.do(ctx, cl, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// SignupRequest is the self-service registration payload.
type SignupRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	Email     string `json:"email"`
	BirthDate string `json:"birthDate"`
}

// Signup registers a new account.
func (c *Client) Signup(ctx context.Context, req SignupRequest) error {
	cl, err := jsonCall(http.MethodPost, "/auth/signup", req)
	if err != nil {
		return err
	}
	return c.do(ctx, cl, nil)
}

// OAuthSignup completes registration for a social login; the email lives in
// the server-side session, so only username and birth date travel.
func (c *Client) OAuthSignup(ctx context.Context, username, birthDate string) error {
	cl, err := jsonCall(http.MethodPost, "/auth/oauth-signup", map[string]string{
		"username":  username,
		"birthDate": birthDate,
	})
	if err != nil {
		return err
	}
	return c.do(ctx, cl, nil)
}

// CheckUsername reports whether the username is still available.
func (c *Client) CheckUsername(ctx context.Context, username string) (bool, error) {
	cl := &call{
		method: http.MethodGet,
		path:   "/auth/check-username",
		query:  url.Values{"username": {username}},
	}
	var available bool
	if err := c.do(ctx, cl, &available); err != nil {
		return false, err
	}
	return available, nil
}
