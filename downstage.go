// Package downstage is a Go client for Azure Data Lake Storage Gen2. It
// exposes the storage account as a filesystem-like API (Mkdir, Ls, Touch,
// Write, Cat) on top of a lower-level REST client mirroring the ADLS Gen2
// data-plane operations.
//
// Authentication uses the Azure AD client-credentials flow. Bearer tokens
// are cached per client instance and refreshed transparently; callers never
// manage tokens themselves.
package downstage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/downstage/downstage-go/aadauth"
	"github.com/downstage/downstage-go/dfs"
)

// defaultRequestTimeout bounds each HTTP round trip when the caller does
// not inject an http.Client of their own.
const defaultRequestTimeout = 30 * time.Second

// Config configures a FileSystem client. AccountName, FilesystemID, and
// Credentials are required; everything else has working defaults.
type Config struct {
	AccountName  string
	FilesystemID string
	DNSSuffix    string // defaults to dfs.DefaultDNSSuffix
	Credentials  aadauth.Credentials

	// Create creates the filesystem during New. Construction fails if the
	// filesystem already exists, matching the service's 409 answer.
	Create bool

	// HTTPClient is used for both token and storage requests. Defaults to
	// a client with a 30 second timeout.
	HTTPClient *http.Client

	// TokenURL overrides the Azure AD token endpoint. Used by sovereign
	// clouds and tests; empty selects the public endpoint.
	TokenURL string

	// StorageURL overrides the account FQDN. Used by emulators and tests.
	StorageURL string

	// TokenMargin overrides how long before expiry tokens are refreshed.
	TokenMargin time.Duration

	Logger *slog.Logger
}

// FileSystem composes the REST client into filesystem semantics against a
// single ADLS Gen2 filesystem. Every method returns the underlying
// dfs.Command so callers can branch on the HTTP status themselves; only
// transport and authentication failures appear in Command.Err.
type FileSystem struct {
	api    *dfs.Client
	fsID   string
	logger *slog.Logger
}

// ErrMissingConfig is returned by New when a required Config field is empty.
var ErrMissingConfig = errors.New("downstage: account name and filesystem id are required")

// New builds a FileSystem client: credentials feed a token store, the token
// store feeds the request dispatcher, and the dispatcher feeds the REST
// client. ctx is only used for the optional Create call.
func New(ctx context.Context, cfg Config) (*FileSystem, error) {
	if cfg.AccountName == "" || cfg.FilesystemID == "" {
		return nil, ErrMissingConfig
	}

	if err := cfg.Credentials.Validate(); err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultRequestTimeout}
	}

	authenticator := aadauth.NewAuthenticator(httpClient, logger)
	if cfg.TokenURL != "" {
		authenticator = aadauth.NewAuthenticatorForEndpoint(cfg.TokenURL, httpClient, logger)
	}

	store := aadauth.NewStore(cfg.Credentials, authenticator, logger)
	if cfg.TokenMargin > 0 {
		store.SetMargin(cfg.TokenMargin)
	}

	endpoint := dfs.Endpoint{
		AccountName: cfg.AccountName,
		DNSSuffix:   cfg.DNSSuffix,
		BaseURL:     cfg.StorageURL,
	}

	dispatcher := dfs.NewDispatcher(endpoint, httpClient, tokenBridge{store: store}, logger)
	api := dfs.NewClient(dispatcher, logger)

	f := &FileSystem{
		api:    api,
		fsID:   cfg.FilesystemID,
		logger: logger,
	}

	if cfg.Create {
		cmd := api.CreateFilesystem(ctx, cfg.FilesystemID)
		if cmd.Err != nil {
			return nil, fmt.Errorf("downstage: creating filesystem %s: %w", cfg.FilesystemID, cmd.Err)
		}

		if !cmd.OK() {
			return nil, fmt.Errorf("downstage: creating filesystem %s: HTTP %d",
				cfg.FilesystemID, cmd.Response.StatusCode)
		}

		logger.Info("created filesystem", slog.String("filesystem", cfg.FilesystemID))
	}

	return f, nil
}

// API returns the underlying REST client for operations the filesystem
// layer does not wrap (filesystem management, leases, properties).
func (f *FileSystem) API() *dfs.Client {
	return f.api
}

// FilesystemID returns the filesystem this client operates on.
func (f *FileSystem) FilesystemID() string {
	return f.fsID
}

// tokenBridge adapts *aadauth.Store to dfs.TokenSource.
type tokenBridge struct {
	store *aadauth.Store
}

func (b tokenBridge) Token(ctx context.Context) (string, error) {
	tok, err := b.store.Token(ctx)
	if err != nil {
		return "", err
	}

	return tok.AccessToken, nil
}
