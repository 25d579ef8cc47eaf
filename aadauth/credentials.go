package aadauth

import "errors"

// Credentials holds the Azure AD application credentials for the
// client-credentials grant. Immutable after construction; the secret is
// never included in log output or error messages.
type Credentials struct {
	ClientID     string
	ClientSecret string
	TenantID     string
}

// ErrIncompleteCredentials is returned when any credential field is empty.
var ErrIncompleteCredentials = errors.New("aadauth: client id, client secret, and tenant id are all required")

// Validate checks that all credential fields are set.
func (c Credentials) Validate() error {
	if c.ClientID == "" || c.ClientSecret == "" || c.TenantID == "" {
		return ErrIncompleteCredentials
	}

	return nil
}
