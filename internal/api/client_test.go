package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// memTokens is an in-memory TokenStore for tests.
type memTokens struct {
	mu  sync.Mutex
	tok string
}

func (m *memTokens) Load() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tok
}

func (m *memTokens) Save(tok string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tok = tok
	return nil
}

func (m *memTokens) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tok = ""
	return nil
}

type fakeSession struct {
	cleared int
}

func (f *fakeSession) ClearAuth() { f.cleared++ }

func TestRetryAfterReissue(t *testing.T) {
	tokens := &memTokens{tok: "stale-token"}
	var reissues, meCalls int

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/reissue":
			reissues++
			json.NewEncoder(w).Encode(map[string]string{"accessToken": "fresh-token"})
		case "/auth/me":
			meCalls++
			if r.Header.Get("Authorization") != "fresh-token" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			json.NewEncoder(w).Encode(map[string]string{"username": "mina"})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := New(Options{BaseURL: srv.URL, Tokens: tokens})

	user, err := client.Me(context.Background())
	if err != nil {
		t.Fatalf("Me failed: %v", err)
	}
	if user.Username != "mina" {
		t.Errorf("expected username mina, got %s", user.Username)
	}
	if reissues != 1 {
		t.Errorf("expected exactly 1 reissue, got %d", reissues)
	}
	if meCalls != 2 {
		t.Errorf("expected the request to be replayed once, got %d calls", meCalls)
	}
	if tokens.Load() != "fresh-token" {
		t.Errorf("expected reissued token to be persisted, got %q", tokens.Load())
	}
}

func TestRawAuthorizationHeader(t *testing.T) {
	tokens := &memTokens{tok: "tok-123"}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The backend expects the bare token, not an OAuth-style prefix.
		if got := r.Header.Get("Authorization"); got != "tok-123" {
			t.Errorf("expected raw token in Authorization header, got %q", got)
		}
		if r.Header.Get("X-Request-Id") == "" {
			t.Error("expected an X-Request-Id header")
		}
		json.NewEncoder(w).Encode(map[string]string{"username": "mina"})
	}))
	defer srv.Close()

	client := New(Options{BaseURL: srv.URL, Tokens: tokens})
	if _, err := client.Me(context.Background()); err != nil {
		t.Fatalf("Me failed: %v", err)
	}
}

func TestNoTokenSkipsReissue(t *testing.T) {
	tokens := &memTokens{}
	sess := &fakeSession{}
	var expired, reissues int

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/reissue":
			reissues++
			w.WriteHeader(http.StatusUnauthorized)
		case "/auth/logout":
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	defer srv.Close()

	client := New(Options{
		BaseURL:          srv.URL,
		Tokens:           tokens,
		Session:          sess,
		OnSessionExpired: func() { expired++ },
	})

	_, err := client.Me(context.Background())
	if !IsUnauthorized(err) {
		t.Fatalf("expected an unauthorized error, got %v", err)
	}
	if reissues != 0 {
		t.Errorf("expected no reissue attempt without a token, got %d", reissues)
	}
	if sess.cleared != 1 {
		t.Errorf("expected session teardown, cleared=%d", sess.cleared)
	}
	if expired != 1 {
		t.Errorf("expected exactly one expiry notification, got %d", expired)
	}
}

func TestReissueFailureTearsDown(t *testing.T) {
	tokens := &memTokens{tok: "stale-token"}
	sess := &fakeSession{}
	var expired, logouts int

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/reissue":
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"message": "refresh token expired"})
		case "/auth/logout":
			logouts++
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	defer srv.Close()

	client := New(Options{
		BaseURL:          srv.URL,
		Tokens:           tokens,
		Session:          sess,
		OnSessionExpired: func() { expired++ },
	})

	_, err := client.Me(context.Background())
	if err == nil {
		t.Fatal("expected an error when reissue fails")
	}
	if !strings.Contains(err.Error(), "token reissue failed") {
		t.Errorf("expected a reissue failure error, got %v", err)
	}
	if tokens.Load() != "" {
		t.Errorf("expected the stale token to be cleared, got %q", tokens.Load())
	}
	if sess.cleared != 1 {
		t.Errorf("expected session teardown, cleared=%d", sess.cleared)
	}
	if expired != 1 {
		t.Errorf("expected exactly one expiry notification, got %d", expired)
	}
	if logouts != 1 {
		t.Errorf("expected a best-effort server logout, got %d", logouts)
	}
}

func TestRetriesAtMostOnce(t *testing.T) {
	tokens := &memTokens{tok: "stale-token"}
	var reissues, meCalls int

	// The backend rejects even the fresh token; the second 401 must surface
	// as an error instead of looping.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/reissue":
			reissues++
			json.NewEncoder(w).Encode(map[string]string{"accessToken": "fresh-token"})
		case "/auth/me":
			meCalls++
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"message": "nope"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := New(Options{BaseURL: srv.URL, Tokens: tokens})

	_, err := client.Me(context.Background())
	if !IsUnauthorized(err) {
		t.Fatalf("expected an unauthorized error, got %v", err)
	}
	if reissues != 1 {
		t.Errorf("expected exactly 1 reissue, got %d", reissues)
	}
	if meCalls != 2 {
		t.Errorf("expected exactly 2 attempts, got %d", meCalls)
	}
}

func TestServerErrorMessageSurfaces(t *testing.T) {
	tokens := &memTokens{tok: "tok"}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"message": "이미 작성된 일기가 있습니다"})
	}))
	defer srv.Close()

	client := New(Options{BaseURL: srv.URL, Tokens: tokens})

	_, err := client.CreateDiary(context.Background(), "mina", "text", "#FFFFFF")
	if err == nil {
		t.Fatal("expected an error")
	}
	apiErr, ok := AsError(err)
	if !ok {
		t.Fatalf("expected an api.Error, got %T", err)
	}
	if apiErr.Status != http.StatusConflict {
		t.Errorf("expected status 409, got %d", apiErr.Status)
	}
	if UserMessage(err) != "이미 작성된 일기가 있습니다" {
		t.Errorf("expected the server message, got %q", UserMessage(err))
	}
}

func TestGetDiaryMissingReturnsNil(t *testing.T) {
	tokens := &memTokens{tok: "tok"}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("username") != "mina" || r.URL.Query().Get("date") == "" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := New(Options{BaseURL: srv.URL, Tokens: tokens})

	entry, err := client.GetDiary(context.Background(), "mina", "2026-08-29")
	if err != nil {
		t.Fatalf("expected a missing entry to be nil, not an error: %v", err)
	}
	if entry != nil {
		t.Errorf("expected nil entry, got %+v", entry)
	}
}
