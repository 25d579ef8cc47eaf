package dfs

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
)

// ResourceKind selects what CreatePath creates.
type ResourceKind string

const (
	ResourceFile      ResourceKind = "file"
	ResourceDirectory ResourceKind = "directory"
)

// LeaseAction is the x-ms-lease-action value for LeasePath.
type LeaseAction string

const (
	LeaseAcquire LeaseAction = "acquire"
	LeaseRenew   LeaseAction = "renew"
	LeaseRelease LeaseAction = "release"
	LeaseBreak   LeaseAction = "break"
)

// ByteRange is an inclusive byte range for ReadPath.
type ByteRange struct {
	Start int64
	End   int64
}

func (r ByteRange) String() string {
	return fmt.Sprintf("bytes=%d-%d", r.Start, r.End)
}

// Client exposes one method per ADLS Gen2 data-plane REST operation. Each
// method only translates domain arguments into a Dispatcher call and passes
// the resulting Command through unmodified — the Client never interprets
// status codes.
type Client struct {
	dispatcher *Dispatcher
	logger     *slog.Logger
}

// NewClient creates a Client on top of the given Dispatcher.
func NewClient(dispatcher *Dispatcher, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{dispatcher: dispatcher, logger: logger}
}

// CreateFilesystem creates a filesystem rooted at the specified location.
// The service answers 409 if it already exists.
//
// https://docs.microsoft.com/en-us/rest/api/storageservices/datalakestoragegen2/filesystem/create
func (c *Client) CreateFilesystem(ctx context.Context, filesystem string) Command {
	c.logger.Debug("creating filesystem", slog.String("filesystem", filesystem))

	query := url.Values{"resource": {"filesystem"}}

	return c.dispatcher.Execute(ctx, http.MethodPut, filesystem, query, nil, nil)
}

// DeleteFilesystem marks the filesystem for deletion.
//
// https://docs.microsoft.com/en-us/rest/api/storageservices/datalakestoragegen2/filesystem/delete
func (c *Client) DeleteFilesystem(ctx context.Context, filesystem string) Command {
	c.logger.Debug("deleting filesystem", slog.String("filesystem", filesystem))

	query := url.Values{"resource": {"filesystem"}}

	return c.dispatcher.Execute(ctx, http.MethodDelete, filesystem, query, nil, nil)
}

// ListFilesystems lists the filesystems in the storage account.
//
// https://docs.microsoft.com/en-us/rest/api/storageservices/datalakestoragegen2/filesystem/list
func (c *Client) ListFilesystems(ctx context.Context) Command {
	c.logger.Debug("listing filesystems")

	query := url.Values{"resource": {"account"}}

	return c.dispatcher.Execute(ctx, http.MethodGet, "", query, nil, nil)
}

// GetFilesystemProperties returns all filesystem properties as headers.
func (c *Client) GetFilesystemProperties(ctx context.Context, filesystem string) Command {
	c.logger.Debug("getting filesystem properties", slog.String("filesystem", filesystem))

	query := url.Values{"resource": {"filesystem"}}

	return c.dispatcher.Execute(ctx, http.MethodHead, filesystem, query, nil, nil)
}

// SetFilesystemProperties sets user-defined filesystem properties supplied
// as headers (x-ms-properties).
func (c *Client) SetFilesystemProperties(ctx context.Context, filesystem string, props http.Header) Command {
	c.logger.Debug("setting filesystem properties", slog.String("filesystem", filesystem))

	query := url.Values{"resource": {"filesystem"}}

	return c.dispatcher.Execute(ctx, http.MethodPatch, filesystem, query, props, nil)
}

// CreatePath creates a file or directory at path. Extra headers (e.g.
// x-ms-properties, If-None-Match) pass through to the service. The service
// answers 409 if the path already exists and creation conflicts.
//
// https://docs.microsoft.com/en-us/rest/api/storageservices/datalakestoragegen2/path/create
func (c *Client) CreatePath(ctx context.Context, filesystem, path string, resource ResourceKind, headers http.Header) Command {
	c.logger.Debug("creating path",
		slog.String("filesystem", filesystem),
		slog.String("path", path),
		slog.String("resource", string(resource)),
	)

	query := url.Values{"resource": {string(resource)}}

	return c.dispatcher.Execute(ctx, http.MethodPut, filesystem+"/"+path, query, headers, nil)
}

// ListPath lists paths under directory and their properties. An empty
// directory lists the filesystem root.
//
// https://docs.microsoft.com/en-us/rest/api/storageservices/datalakestoragegen2/path/list
func (c *Client) ListPath(ctx context.Context, filesystem, directory string, recursive bool) Command {
	c.logger.Debug("listing path",
		slog.String("filesystem", filesystem),
		slog.String("directory", directory),
		slog.Bool("recursive", recursive),
	)

	query := url.Values{
		"resource":  {"filesystem"},
		"recursive": {strconv.FormatBool(recursive)},
	}
	if directory != "" {
		query.Set("directory", directory)
	}

	return c.dispatcher.Execute(ctx, http.MethodGet, filesystem, query, nil, nil)
}

// AppendData uploads data to the file's uncommitted buffer starting at
// position. Data is not readable until a FlushData commits it.
//
// https://docs.microsoft.com/en-us/rest/api/storageservices/datalakestoragegen2/path/update
func (c *Client) AppendData(ctx context.Context, filesystem, path string, position int64, data []byte) Command {
	c.logger.Debug("appending data",
		slog.String("filesystem", filesystem),
		slog.String("path", path),
		slog.Int64("position", position),
		slog.Int("length", len(data)),
	)

	query := url.Values{
		"action":   {"append"},
		"position": {strconv.FormatInt(position, 10)},
	}

	return c.dispatcher.Execute(ctx, http.MethodPatch, filesystem+"/"+path, query, nil, bytes.NewReader(data))
}

// FlushData commits previously appended data up to position (the total
// committed length after the flush). contentType sets x-ms-content-type on
// the committed file; empty leaves it unset.
func (c *Client) FlushData(ctx context.Context, filesystem, path string, position int64, contentType string) Command {
	c.logger.Debug("flushing data",
		slog.String("filesystem", filesystem),
		slog.String("path", path),
		slog.Int64("position", position),
	)

	query := url.Values{
		"action":   {"flush"},
		"position": {strconv.FormatInt(position, 10)},
	}

	var headers http.Header
	if contentType != "" {
		headers = http.Header{"x-ms-content-type": {contentType}}
	}

	return c.dispatcher.Execute(ctx, http.MethodPatch, filesystem+"/"+path, query, headers, nil)
}

// ReadPath reads the contents of a file. A non-nil byteRange requests a
// partial read via the Range header (the service answers 206).
//
// https://docs.microsoft.com/en-us/rest/api/storageservices/datalakestoragegen2/path/read
func (c *Client) ReadPath(ctx context.Context, filesystem, path string, byteRange *ByteRange) Command {
	c.logger.Debug("reading path",
		slog.String("filesystem", filesystem),
		slog.String("path", path),
	)

	var headers http.Header
	if byteRange != nil {
		headers = http.Header{"Range": {byteRange.String()}}
	}

	return c.dispatcher.Execute(ctx, http.MethodGet, filesystem+"/"+path, nil, headers, nil)
}

// DeletePath deletes a file or directory. recursive applies to directories
// only; deleting a non-empty directory non-recursively is answered with a
// 409.
//
// https://docs.microsoft.com/en-us/rest/api/storageservices/datalakestoragegen2/path/delete
func (c *Client) DeletePath(ctx context.Context, filesystem, path string, recursive bool) Command {
	c.logger.Debug("deleting path",
		slog.String("filesystem", filesystem),
		slog.String("path", path),
		slog.Bool("recursive", recursive),
	)

	query := url.Values{"recursive": {strconv.FormatBool(recursive)}}

	return c.dispatcher.Execute(ctx, http.MethodDelete, filesystem+"/"+path, query, nil, nil)
}

// GetPathProperties returns system and user-defined properties for a path
// as response headers.
func (c *Client) GetPathProperties(ctx context.Context, filesystem, path string) Command {
	c.logger.Debug("getting path properties",
		slog.String("filesystem", filesystem),
		slog.String("path", path),
	)

	return c.dispatcher.Execute(ctx, http.MethodHead, filesystem+"/"+path, nil, nil, nil)
}

// LeasePath creates or manages a lease restricting write and delete access
// to the path. Lease-specific headers (x-ms-lease-id, x-ms-lease-duration)
// pass through.
//
// https://docs.microsoft.com/en-us/rest/api/storageservices/datalakestoragegen2/path/lease
func (c *Client) LeasePath(ctx context.Context, filesystem, path string, action LeaseAction, headers http.Header) Command {
	c.logger.Debug("leasing path",
		slog.String("filesystem", filesystem),
		slog.String("path", path),
		slog.String("action", string(action)),
	)

	merged := http.Header{}
	for key, values := range headers {
		merged[key] = values
	}

	merged.Set("x-ms-lease-action", string(action))

	return c.dispatcher.Execute(ctx, http.MethodPost, filesystem+"/"+path, nil, merged, nil)
}
