package aadauth

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

// DefaultMargin is how long before actual expiry a held token is treated
// as expired, absorbing clock skew and request latency.
const DefaultMargin = 5 * time.Minute

// refreshKey is the singleflight key for token refresh. A Store holds at
// most one token, so a single key serializes all refreshes.
const refreshKey = "refresh"

// Store serves a currently-valid Token, refreshing lazily through its
// Authenticator. It is safe for concurrent use by multiple goroutines
// sharing one client instance: concurrent callers racing an expired token
// coalesce onto a single in-flight refresh.
//
// Each Store instance owns its own token. Two Stores for different storage
// accounts never share or race on state.
type Store struct {
	creds  Credentials
	auth   *Authenticator
	margin time.Duration
	logger *slog.Logger

	mu    sync.Mutex
	tok   Token
	group singleflight.Group
}

// NewStore creates a Store with the default expiry margin. The Store starts
// empty; the first Token call triggers authentication.
func NewStore(creds Credentials, auth *Authenticator, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}

	return &Store{
		creds:  creds,
		auth:   auth,
		margin: DefaultMargin,
		logger: logger,
	}
}

// SetMargin overrides the expiry safety margin. Call before first use.
func (s *Store) SetMargin(margin time.Duration) {
	s.margin = margin
}

// Token returns a currently-valid token. Within the safety margin of the
// held token's expiry this is a cache hit with no network I/O. Otherwise
// one refresh runs, and every waiting caller receives its result.
//
// A failed refresh propagates the authentication error and leaves any
// previously held (expired) token untouched, so a later call retries
// instead of pinning a bad token.
func (s *Store) Token(ctx context.Context) (Token, error) {
	s.mu.Lock()
	tok := s.tok
	s.mu.Unlock()

	if tok.Valid(s.margin) {
		return tok, nil
	}

	v, err, _ := s.group.Do(refreshKey, func() (any, error) {
		// Re-check under the flight: a racing caller may have refreshed
		// between our validity check and joining the group.
		s.mu.Lock()
		held := s.tok
		s.mu.Unlock()

		if held.Valid(s.margin) {
			return held, nil
		}

		fresh, authErr := s.auth.Authenticate(ctx, s.creds)
		if authErr != nil {
			return Token{}, authErr
		}

		s.mu.Lock()
		s.tok = fresh
		s.mu.Unlock()

		s.logger.Debug("token store refreshed",
			slog.Time("expires_at", fresh.ExpiresAt),
		)

		return fresh, nil
	})
	if err != nil {
		return Token{}, err
	}

	return v.(Token), nil
}

// OAuth2TokenSource exposes the store as a golang.org/x/oauth2 TokenSource
// so it can be plugged into oauth2-aware HTTP stacks. The given ctx bounds
// every refresh performed through the returned source and must outlive it;
// pass context.Background() for long-lived clients.
func (s *Store) OAuth2TokenSource(ctx context.Context) oauth2.TokenSource {
	return &oauthAdapter{ctx: ctx, store: s}
}

// oauthAdapter bridges Store to oauth2.TokenSource, which has no context
// parameter on Token().
type oauthAdapter struct {
	ctx   context.Context
	store *Store
}

func (a *oauthAdapter) Token() (*oauth2.Token, error) {
	tok, err := a.store.Token(a.ctx)
	if err != nil {
		return nil, err
	}

	return &oauth2.Token{
		AccessToken: tok.AccessToken,
		TokenType:   "Bearer",
		Expiry:      tok.ExpiresAt,
	}, nil
}
