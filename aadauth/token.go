package aadauth

import "time"

// Token is a bearer token with its absolute expiry. Tokens are replaced
// wholesale on refresh, never mutated in place.
type Token struct {
	AccessToken string
	ExpiresAt   time.Time
}

// Valid reports whether the token can still be used: it must be non-empty
// and expire no sooner than margin from now. A zero margin means the token
// is usable right up to its expiry.
func (t Token) Valid(margin time.Duration) bool {
	if t.AccessToken == "" {
		return false
	}

	return time.Now().Add(margin).Before(t.ExpiresAt)
}
