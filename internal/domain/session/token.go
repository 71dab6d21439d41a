package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenExpiry extracts the exp claim from a JWT without verifying the
// signature. The client holds no signing key; the check only short-circuits
// the network round-trip for tokens that are plainly expired. Malformed
// tokens or tokens without exp report ok=false and are left for the backend
// to judge.
func tokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

func expired(exp time.Time) bool {
	return exp.Before(time.Now())
}
