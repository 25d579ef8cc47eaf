package aadauth

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCreds = Credentials{
	ClientID:     "client-1",
	ClientSecret: "secret-1",
	TenantID:     "tenant-1",
}

// newTestAuthenticator creates an Authenticator pointed at the given
// httptest server.
func newTestAuthenticator(t *testing.T, url string) *Authenticator {
	t.Helper()

	return NewAuthenticatorForEndpoint(url, http.DefaultClient, testLogger())
}

func TestAuthenticate_Success(t *testing.T) {
	expiresOn := time.Now().Add(1 * time.Hour).Unix()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		assert.Equal(t, "client-1", r.PostForm.Get("client_id"))
		assert.Equal(t, "secret-1", r.PostForm.Get("client_secret"))
		assert.Equal(t, StorageResource, r.PostForm.Get("resource"))

		fmt.Fprintf(w, `{"access_token":"tok-abc","expires_on":"%d"}`, expiresOn)
	}))
	defer srv.Close()

	auth := newTestAuthenticator(t, srv.URL)
	tok, err := auth.Authenticate(context.Background(), testCreds)
	require.NoError(t, err)

	assert.Equal(t, "tok-abc", tok.AccessToken)
	assert.Equal(t, time.Unix(expiresOn, 0), tok.ExpiresAt)
}

func TestAuthenticate_ExpiryEncodings(t *testing.T) {
	epoch := time.Now().Add(1 * time.Hour).Unix()

	tests := []struct {
		name string
		body string
	}{
		{"expires_on string", fmt.Sprintf(`{"access_token":"t","expires_on":"%d"}`, epoch)},
		{"expires_on number", fmt.Sprintf(`{"access_token":"t","expires_on":%d}`, epoch)},
		{"expires_in number", `{"access_token":"t","expires_in":3600}`},
		{"expires_in string", `{"access_token":"t","expires_in":"3600"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			auth := newTestAuthenticator(t, srv.URL)
			tok, err := auth.Authenticate(context.Background(), testCreds)
			require.NoError(t, err)

			assert.Equal(t, "t", tok.AccessToken)
			// Either encoding lands within a minute of an hour from now.
			assert.WithinDuration(t, time.Now().Add(1*time.Hour), tok.ExpiresAt, time.Minute)
		})
	}
}

func TestAuthenticate_InvalidCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":"invalid_client"}`)
	}))
	defer srv.Close()

	auth := newTestAuthenticator(t, srv.URL)
	_, err := auth.Authenticate(context.Background(), testCreds)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, http.StatusUnauthorized, authErr.StatusCode)
}

func TestAuthenticate_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	auth := newTestAuthenticator(t, srv.URL)
	_, err := auth.Authenticate(context.Background(), testCreds)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNetworkFailure)
}

func TestAuthenticate_MalformedResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `not json at all`},
		{"missing access_token", `{"expires_on":"1700000000"}`},
		{"missing expiry", `{"access_token":"t"}`},
		{"unparseable expires_on", `{"access_token":"t","expires_on":"soon"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			auth := newTestAuthenticator(t, srv.URL)
			_, err := auth.Authenticate(context.Background(), testCreds)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedResponse)
		})
	}
}

func TestAuthenticate_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
	srv.Close() // connection refused from here on

	auth := newTestAuthenticator(t, srv.URL)
	_, err := auth.Authenticate(context.Background(), testCreds)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNetworkFailure)
}

func TestAuthenticate_IncompleteCredentials(t *testing.T) {
	auth := NewAuthenticator(http.DefaultClient, testLogger())

	_, err := auth.Authenticate(context.Background(), Credentials{ClientID: "only-id"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIncompleteCredentials)
}
