package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
)

// reissue asks the backend for a fresh access token. The refresh token rides
// in an HTTP-only cookie managed by the transport, so the request body is
// empty. The call goes through the bare client: a 401 here must not recurse
// into the retry flow.
func (c *Client) reissue(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/auth/reissue", bytes.NewReader(nil))
	if err != nil {
		return "", fmt.Errorf("failed to build reissue request: %w", err)
	}

	resp, err := c.bare.Do(req)
	if err != nil {
		return "", fmt.Errorf("reissue request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", readError(resp)
	}

	var payload struct {
		AccessToken string `json:"accessToken"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to decode reissue response: %w", err)
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("reissue response carried no access token")
	}

	if err := c.tokens.Save(payload.AccessToken); err != nil {
		return "", fmt.Errorf("failed to persist reissued token: %w", err)
	}
	return payload.AccessToken, nil
}

// expireSession runs the full teardown: best-effort server-side logout,
// unconditional local cleanup, then the expired notifier. The logout call
// failing must never block the local cleanup.
func (c *Client) expireSession(ctx context.Context) {
	if req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/auth/logout", bytes.NewReader(nil)); err == nil {
		if resp, err := c.bare.Do(req); err != nil {
			log.Printf("server-side logout failed: %v", err)
		} else {
			drain(resp)
		}
	}

	_ = c.tokens.Clear()
	if c.session != nil {
		c.session.ClearAuth()
	}
	if c.onSessionExpired != nil {
		c.onSessionExpired()
	}
}
