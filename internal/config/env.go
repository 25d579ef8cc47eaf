package config

import (
	"errors"
	"os"

	"github.com/downstage/downstage-go/aadauth"
)

// Environment variable names. The azure_* names are lowercase for
// compatibility with existing deployments.
const (
	EnvClientID     = "azure_client_id"
	EnvClientSecret = "azure_client_secret"
	EnvTenantID     = "azure_tenant_id"
	EnvConfig       = "DOWNSTAGE_CONFIG"
)

// ErrMissingCredentials is returned when any credential variable is unset.
var ErrMissingCredentials = errors.New(
	"config: azure_client_id, azure_client_secret, and azure_tenant_id environment variables must all be set")

// ReadCredentials reads the Azure AD application credentials from the
// environment. All three variables must be set.
func ReadCredentials() (aadauth.Credentials, error) {
	creds := aadauth.Credentials{
		ClientID:     os.Getenv(EnvClientID),
		ClientSecret: os.Getenv(EnvClientSecret),
		TenantID:     os.Getenv(EnvTenantID),
	}

	if err := creds.Validate(); err != nil {
		return aadauth.Credentials{}, ErrMissingCredentials
	}

	return creds, nil
}

// EnvConfigPath returns the config file path override from the
// environment, or empty when unset.
func EnvConfigPath() string {
	return os.Getenv(EnvConfig)
}
