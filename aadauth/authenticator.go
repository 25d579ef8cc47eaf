package aadauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// tokenURLTemplate is Azure AD's v1 token endpoint for the
// client-credentials grant. The tenant ID is interpolated per request.
const tokenURLTemplate = "https://login.microsoftonline.com/%s/oauth2/token"

// StorageResource is the resource URI that scopes issued tokens to Azure
// Storage data-plane access.
const StorageResource = "https://storage.azure.com/"

// maxErrorBodyBytes caps how much of an error response body is kept for
// diagnostics.
const maxErrorBodyBytes = 4 << 10

// Authenticator exchanges Credentials for a fresh Token at Azure AD's token
// endpoint. It performs no caching — that is the Store's job.
type Authenticator struct {
	httpClient *http.Client
	tokenURL   string // overrides the default endpoint when non-empty
	resource   string
	logger     *slog.Logger
}

// NewAuthenticator creates an Authenticator. A nil httpClient falls back to
// http.DefaultClient; a nil logger falls back to slog.Default().
func NewAuthenticator(httpClient *http.Client, logger *slog.Logger) *Authenticator {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Authenticator{
		httpClient: httpClient,
		resource:   StorageResource,
		logger:     logger,
	}
}

// NewAuthenticatorForEndpoint creates an Authenticator that posts to the
// given token URL instead of the default Azure AD endpoint. Used by tests
// and sovereign-cloud deployments.
func NewAuthenticatorForEndpoint(tokenURL string, httpClient *http.Client, logger *slog.Logger) *Authenticator {
	a := NewAuthenticator(httpClient, logger)
	a.tokenURL = tokenURL

	return a
}

// tokenResponse mirrors the token endpoint JSON. expires_on arrives as
// epoch seconds encoded as either a string or a number depending on the
// endpoint version; expires_in is the relative-seconds fallback.
type tokenResponse struct {
	AccessToken string     `json:"access_token"`
	ExpiresOn   laxSeconds `json:"expires_on"`
	ExpiresIn   laxSeconds `json:"expires_in"`
}

// laxSeconds is a seconds count that tolerates both string and numeric JSON
// encodings, which Azure AD mixes across endpoint versions.
type laxSeconds string

func (s *laxSeconds) UnmarshalJSON(b []byte) error {
	raw := strings.Trim(string(b), `"`)
	if raw == "null" {
		raw = ""
	}

	*s = laxSeconds(raw)

	return nil
}

// Authenticate performs the client-credentials exchange and returns a fresh
// Token. Failures are classified as ErrInvalidCredentials (4xx from the
// endpoint), ErrNetworkFailure (transport), or ErrMalformedResponse
// (unparseable or incomplete body), all wrapped in *AuthError.
func (a *Authenticator) Authenticate(ctx context.Context, creds Credentials) (Token, error) {
	if err := creds.Validate(); err != nil {
		return Token{}, err
	}

	endpoint := a.tokenURL
	if endpoint == "" {
		endpoint = fmt.Sprintf(tokenURLTemplate, url.PathEscape(creds.TenantID))
	}

	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {creds.ClientID},
		"client_secret": {creds.ClientSecret},
		"resource":      {a.resource},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return Token{}, &AuthError{Message: err.Error(), Err: ErrNetworkFailure}
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	a.logger.Debug("requesting token",
		slog.String("tenant_id", creds.TenantID),
		slog.String("client_id", creds.ClientID),
	)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		a.logger.Warn("token request transport failure", slog.String("error", err.Error()))

		return Token{}, &AuthError{Message: err.Error(), Err: ErrNetworkFailure}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))

		// 4xx means the endpoint rejected the credentials; anything else
		// (5xx, redirects) means the provider itself misbehaved.
		sentinel := ErrNetworkFailure
		if resp.StatusCode >= http.StatusBadRequest && resp.StatusCode < http.StatusInternalServerError {
			sentinel = ErrInvalidCredentials
		}

		a.logger.Warn("token request rejected",
			slog.Int("status", resp.StatusCode),
		)

		return Token{}, &AuthError{StatusCode: resp.StatusCode, Message: string(body), Err: sentinel}
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return Token{}, &AuthError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("decoding body: %v", err),
			Err:        ErrMalformedResponse,
		}
	}

	if tr.AccessToken == "" {
		return Token{}, &AuthError{
			StatusCode: resp.StatusCode,
			Message:    "access_token missing from response",
			Err:        ErrMalformedResponse,
		}
	}

	expiresAt, err := tr.expiry(time.Now())
	if err != nil {
		return Token{}, &AuthError{
			StatusCode: resp.StatusCode,
			Message:    err.Error(),
			Err:        ErrMalformedResponse,
		}
	}

	a.logger.Debug("token acquired", slog.Time("expires_at", expiresAt))

	return Token{AccessToken: tr.AccessToken, ExpiresAt: expiresAt}, nil
}

// expiry computes the token's absolute expiry. expires_on (epoch seconds)
// wins; expires_in (seconds from now) is the fallback.
func (tr tokenResponse) expiry(now time.Time) (time.Time, error) {
	if tr.ExpiresOn != "" {
		epoch, err := strconv.ParseInt(string(tr.ExpiresOn), 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("parsing expires_on %q: %w", tr.ExpiresOn, err)
		}

		return time.Unix(epoch, 0), nil
	}

	if tr.ExpiresIn != "" {
		seconds, err := strconv.ParseInt(string(tr.ExpiresIn), 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("parsing expires_in %q: %w", tr.ExpiresIn, err)
		}

		return now.Add(time.Duration(seconds) * time.Second), nil
	}

	return time.Time{}, fmt.Errorf("expires_on and expires_in both missing from response")
}
