// Package api wraps the Inner Canvas backend REST API. Every request goes
// through a single door that attaches the persisted access token and runs
// the reissue-and-retry flow on 401, so feature code only ever sees the
// final success or the final, post-retry failure.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TokenStore is the persistent mirror of the access token.
type TokenStore interface {
	Load() string
	Save(tok string) error
	Clear() error
}

// SessionTeardown clears the in-memory session when the refresh flow gives up.
type SessionTeardown interface {
	ClearAuth()
}

// Options configures a Client.
type Options struct {
	BaseURL string
	Tokens  TokenStore
	// Session, when set, is cleared as part of session teardown.
	Session SessionTeardown
	// OnSessionExpired is invoked exactly once per failing request after
	// teardown, so the UI can tell the user and return to the login entry.
	OnSessionExpired func()
	// HTTPClient overrides the default client. Used by tests.
	HTTPClient *http.Client
}

// Client is the HTTP client wrapper for the backend API.
type Client struct {
	base             string
	http             *http.Client
	bare             *http.Client // no 401 interception; reissue and teardown only
	tokens           TokenStore
	session          SessionTeardown
	onSessionExpired func()
}

// New creates a Client. Options.Tokens is required.
func New(opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{
		base:             strings.TrimRight(opts.BaseURL, "/"),
		http:             hc,
		bare:             hc,
		tokens:           opts.Tokens,
		session:          opts.Session,
		onSessionExpired: opts.OnSessionExpired,
	}
}

// call is one logical request. Retry eligibility lives here, never on shared
// client state, so a replayed request can be rebuilt from scratch.
type call struct {
	method      string
	path        string
	query       url.Values
	body        []byte
	contentType string
	retried     bool
}

func jsonCall(method, path string, payload any) (*call, error) {
	cl := &call{method: method, path: path}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		cl.body = data
		cl.contentType = "application/json"
	}
	return cl, nil
}

func (c *Client) url(cl *call) string {
	u := c.base + cl.path
	if len(cl.query) > 0 {
		u += "?" + cl.query.Encode()
	}
	return u
}

// do sends the call, decoding a 2xx JSON body into out (out may be nil).
// On 401 it runs the reissue-and-retry flow at most once per call.
func (c *Client) do(ctx context.Context, cl *call, out any) error {
	for {
		req, err := http.NewRequestWithContext(ctx, cl.method, c.url(cl), bytes.NewReader(cl.body))
		if err != nil {
			return fmt.Errorf("failed to build request: %w", err)
		}
		if cl.contentType != "" {
			req.Header.Set("Content-Type", cl.contentType)
		}
		req.Header.Set("X-Request-Id", uuid.NewString())

		tok := c.tokens.Load()
		if tok != "" {
			req.Header.Set("Authorization", tok)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("%s %s: %w", cl.method, cl.path, err)
		}

		if resp.StatusCode == http.StatusUnauthorized && !cl.retried {
			cl.retried = true
			drain(resp)

			if tok == "" {
				// No credential was ever attached; reissuing cannot help.
				c.expireSession(ctx)
				return &Error{Status: http.StatusUnauthorized, Message: "unauthorized"}
			}

			if _, err := c.reissue(ctx); err != nil {
				c.expireSession(ctx)
				return fmt.Errorf("token reissue failed: %w", err)
			}
			continue
		}

		if resp.StatusCode >= 400 {
			defer resp.Body.Close()
			return readError(resp)
		}

		defer resp.Body.Close()
		if out == nil || resp.StatusCode == http.StatusNoContent {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode %s %s response: %w", cl.method, cl.path, err)
		}
		return nil
	}
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	_ = resp.Body.Close()
}
