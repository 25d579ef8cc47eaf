// Package aadauth implements the Azure AD client-credentials OAuth2 flow
// for ADLS Gen2: exchanging application credentials for bearer tokens and
// caching them with lazy, serialized refresh.
package aadauth

import (
	"errors"
	"fmt"
)

// Sentinel errors for authentication failure classification.
// Use errors.Is(err, aadauth.ErrInvalidCredentials) to check.
var (
	ErrInvalidCredentials = errors.New("aadauth: invalid credentials")
	ErrNetworkFailure     = errors.New("aadauth: network failure")
	ErrMalformedResponse  = errors.New("aadauth: malformed token response")
)

// AuthError wraps a sentinel error with the token endpoint's HTTP status
// code (zero when no response was received) and a diagnostic message.
type AuthError struct {
	StatusCode int
	Message    string
	Err        error // sentinel, for errors.Is()
}

func (e *AuthError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("aadauth: token request failed with HTTP %d: %s", e.StatusCode, e.Message)
	}

	return fmt.Sprintf("aadauth: token request failed: %s", e.Message)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}
