package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Info represents what can be learned about a bearer token without verifying it
type Info struct {
	JWT       bool
	Subject   string
	Issuer    string
	ExpiresAt *time.Time
}

// Expired returns true when the token carries an expiry in the past
func (i *Info) Expired(now time.Time) bool {
	return i.ExpiresAt != nil && !now.Before(*i.ExpiresAt)
}

// Inspect parses JWT claims without signature verification; opaque tokens yield an Info with JWT false
func Inspect(token string) *Info {
	var claims jwt.MapClaims
	if _, _, err := new(jwt.Parser).ParseUnverified(token, &claims); err != nil {
		return &Info{}
	}
	info := &Info{JWT: true}
	info.Subject, _ = claims.GetSubject()
	info.Issuer, _ = claims.GetIssuer()
	if expiry, err := claims.GetExpirationTime(); err == nil && expiry != nil {
		expiresAt := expiry.Time
		info.ExpiresAt = &expiresAt
	}
	return info
}
