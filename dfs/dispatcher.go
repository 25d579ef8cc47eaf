package dfs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// APIVersion is the x-ms-version pinned on every request. 2018-11-09 is the
// earliest version with the full hierarchical-namespace path surface.
const APIVersion = "2018-11-09"

// userAgent identifies this client to the storage service.
const userAgent = "downstage-go/0.1"

// DefaultDNSSuffix forms the account FQDN together with the account name,
// e.g. sandboxgen2.dfs.core.windows.net.
const DefaultDNSSuffix = "dfs.core.windows.net"

// Endpoint is the immutable per-client storage endpoint configuration.
type Endpoint struct {
	AccountName string
	DNSSuffix   string // defaults to DefaultDNSSuffix when empty
	BaseURL     string // overrides the account FQDN when non-empty (tests)
}

// URL returns the endpoint's base URL, e.g. "https://sandboxgen2.dfs.core.windows.net".
func (e Endpoint) URL() string {
	if e.BaseURL != "" {
		return strings.TrimSuffix(e.BaseURL, "/")
	}

	suffix := e.DNSSuffix
	if suffix == "" {
		suffix = DefaultDNSSuffix
	}

	return "https://" + e.AccountName + "." + suffix
}

// TokenSource provides OAuth2 bearer tokens. Defined at the consumer (dfs
// package) per Go convention "accept interfaces, return structs"; the
// aadauth package provides the real implementation.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Dispatcher issues authenticated single-shot HTTP requests against the
// storage endpoint and wraps each outcome in a Command. It never retries
// and never translates HTTP status codes into errors — both are caller
// policy.
type Dispatcher struct {
	endpoint   Endpoint
	httpClient *http.Client
	tokens     TokenSource
	logger     *slog.Logger
}

// NewDispatcher creates a Dispatcher. A nil httpClient falls back to
// http.DefaultClient; set a Timeout on the injected client to bound each
// round trip. A nil logger falls back to slog.Default().
func NewDispatcher(endpoint Endpoint, httpClient *http.Client, tokens TokenSource, logger *slog.Logger) *Dispatcher {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Dispatcher{
		endpoint:   endpoint,
		httpClient: httpClient,
		tokens:     tokens,
		logger:     logger,
	}
}

// Execute sends one HTTP request and returns its Command.
//
// The bearer token is obtained first; if that fails the request is never
// sent and the Command carries the authentication error. A caller-supplied
// Authorization header is always overwritten. The request is sent exactly
// once — callers own retry policy and invoke Execute again to retry.
func (d *Dispatcher) Execute(
	ctx context.Context,
	method, path string,
	query url.Values,
	headers http.Header,
	body io.Reader,
) Command {
	requestID := uuid.NewString()

	fullURL := d.endpoint.URL() + "/" + encodePathSegments(strings.TrimPrefix(path, "/"))
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	cmd := Command{Method: method, URL: fullURL, RequestID: requestID}

	token, err := d.tokens.Token(ctx)
	if err != nil {
		d.logger.Warn("request aborted, no valid token",
			slog.String("method", method),
			slog.String("url", fullURL),
			slog.String("error", err.Error()),
		)

		cmd.Err = fmt.Errorf("dfs: obtaining token: %w", err)

		return cmd
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		cmd.Err = &NetworkError{Method: method, URL: fullURL, Err: err}

		return cmd
	}

	for key, values := range headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	// Mandatory service headers win over anything the caller supplied.
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("x-ms-version", APIVersion)
	req.Header.Set("x-ms-client-request-id", requestID)
	req.Header.Set("User-Agent", userAgent)

	d.logger.Debug("sending request",
		slog.String("method", method),
		slog.String("url", fullURL),
		slog.String("request_id", requestID),
	)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		d.logger.Warn("transport failure",
			slog.String("method", method),
			slog.String("url", fullURL),
			slog.String("error", err.Error()),
		)

		cmd.Err = &NetworkError{Method: method, URL: fullURL, Err: err}

		return cmd
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		cmd.Err = &NetworkError{Method: method, URL: fullURL, Err: fmt.Errorf("reading body: %w", err)}

		return cmd
	}

	d.logger.Debug("request completed",
		slog.String("method", method),
		slog.String("url", fullURL),
		slog.Int("status", resp.StatusCode),
		slog.String("request_id", requestID),
	)

	cmd.Response = &Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       respBody,
	}

	return cmd
}

// encodePathSegments URL-encodes each segment of a slash-separated path so
// characters like #, ?, %, and spaces survive interpolation into the URL.
func encodePathSegments(path string) string {
	if path == "" {
		return ""
	}

	segments := strings.Split(path, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}

	return strings.Join(segments, "/")
}
