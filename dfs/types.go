package dfs

import (
	"log/slog"
	"strconv"
	"time"
)

// pathEntryResponse mirrors the list-paths JSON exactly. ADLS encodes
// booleans and lengths as strings here. Unexported — callers use PathEntry
// via normalization.
type pathEntryResponse struct {
	Name          string `json:"name"`
	IsDirectory   string `json:"isDirectory"`
	ContentLength string `json:"contentLength"`
	LastModified  string `json:"lastModified"`
	ETag          string `json:"etag"`
	Owner         string `json:"owner"`
	Group         string `json:"group"`
	Permissions   string `json:"permissions"`
}

type listPathsResponse struct {
	Paths []pathEntryResponse `json:"paths"`
}

// filesystemEntryResponse mirrors the list-filesystems JSON.
type filesystemEntryResponse struct {
	Name         string `json:"name"`
	LastModified string `json:"lastModified"`
	ETag         string `json:"etag"`
}

type listFilesystemsResponse struct {
	Filesystems []filesystemEntryResponse `json:"filesystems"`
}

// PathEntry is one path from a ListPath response, normalized into Go types.
type PathEntry struct {
	Name         string
	IsDirectory  bool
	Size         int64
	LastModified time.Time
	ETag         string
	Owner        string
	Group        string
	Permissions  string
}

// FilesystemEntry is one filesystem from a ListFilesystems response.
type FilesystemEntry struct {
	Name         string
	LastModified time.Time
	ETag         string
}

// toEntry normalizes a raw list entry. Unparseable fields degrade to zero
// values with a warning rather than failing the whole listing.
func (p *pathEntryResponse) toEntry(logger *slog.Logger) PathEntry {
	entry := PathEntry{
		Name:        p.Name,
		IsDirectory: p.IsDirectory == "true",
		ETag:        p.ETag,
		Owner:       p.Owner,
		Group:       p.Group,
		Permissions: p.Permissions,
	}

	if p.ContentLength != "" {
		size, err := strconv.ParseInt(p.ContentLength, 10, 64)
		if err != nil {
			logger.Warn("invalid contentLength in listing",
				slog.String("name", p.Name),
				slog.String("raw", p.ContentLength),
			)
		} else {
			entry.Size = size
		}
	}

	entry.LastModified = parseHTTPTime(p.LastModified, p.Name, logger)

	return entry
}

// parseHTTPTime parses the RFC1123 timestamps the service uses in listings.
// Invalid timestamps degrade to the zero time with a warning.
func parseHTTPTime(raw, name string, logger *slog.Logger) time.Time {
	if raw == "" {
		return time.Time{}
	}

	t, err := time.Parse(time.RFC1123, raw)
	if err != nil {
		logger.Warn("invalid lastModified in listing",
			slog.String("name", name),
			slog.String("raw", raw),
		)

		return time.Time{}
	}

	return t
}

// ParsePathList decodes a ListPath Command into normalized entries.
func ParsePathList(cmd Command, logger *slog.Logger) ([]PathEntry, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var lpr listPathsResponse
	if err := cmd.JSON(&lpr); err != nil {
		return nil, err
	}

	entries := make([]PathEntry, 0, len(lpr.Paths))
	for i := range lpr.Paths {
		entries = append(entries, lpr.Paths[i].toEntry(logger))
	}

	return entries, nil
}

// ParseFilesystemList decodes a ListFilesystems Command into entries.
func ParseFilesystemList(cmd Command, logger *slog.Logger) ([]FilesystemEntry, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var lfr listFilesystemsResponse
	if err := cmd.JSON(&lfr); err != nil {
		return nil, err
	}

	entries := make([]FilesystemEntry, 0, len(lfr.Filesystems))
	for _, fs := range lfr.Filesystems {
		entries = append(entries, FilesystemEntry{
			Name:         fs.Name,
			LastModified: parseHTTPTime(fs.LastModified, fs.Name, logger),
			ETag:         fs.ETag,
		})
	}

	return entries, nil
}
