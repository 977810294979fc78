package api

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "mina",
		"exp": exp.Unix(),
	})
	s, err := tok.SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}
	return s
}

func TestTokenExpiresWithin(t *testing.T) {
	fresh := signedToken(t, time.Now().Add(time.Hour))
	if TokenExpiresWithin(fresh, time.Minute) {
		t.Error("expected a fresh token not to be expiring")
	}
	if !TokenExpiresWithin(fresh, 2*time.Hour) {
		t.Error("expected a fresh token to be expiring inside a wide window")
	}

	stale := signedToken(t, time.Now().Add(-time.Hour))
	if !TokenExpiresWithin(stale, time.Minute) {
		t.Error("expected an expired token to be expiring")
	}
}

func TestTokenExpiresWithinGarbage(t *testing.T) {
	if !TokenExpiresWithin("not-a-jwt", time.Minute) {
		t.Error("expected an unparseable token to count as expiring")
	}

	// A token without an exp claim cannot be trusted either.
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "mina"})
	s, err := tok.SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}
	if !TokenExpiresWithin(s, time.Minute) {
		t.Error("expected a token without exp to count as expiring")
	}
}
