package api

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpiresWithin inspects the access token's exp claim without verifying
// the signature (the client has no key; the backend is the authority). It
// lets startup rehydration reissue proactively instead of burning a request
// on a guaranteed 401. Unparseable tokens count as expiring.
func TokenExpiresWithin(tok string, window time.Duration) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	return time.Until(exp.Time) < window
}
