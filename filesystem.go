package downstage

import (
	"context"
	"log/slog"

	"github.com/downstage/downstage-go/dfs"
)

// DefaultContentType is applied by Write when no content type is given.
const DefaultContentType = "text/plain"

// Mkdir creates a directory at path.
func (f *FileSystem) Mkdir(ctx context.Context, path string) dfs.Command {
	return f.api.CreatePath(ctx, f.fsID, path, dfs.ResourceDirectory, nil)
}

// Touch creates an empty file at path.
func (f *FileSystem) Touch(ctx context.Context, path string) dfs.Command {
	return f.api.CreatePath(ctx, f.fsID, path, dfs.ResourceFile, nil)
}

// Ls lists the contents of a directory. An empty path lists the filesystem
// root. Decode the listing with dfs.ParsePathList.
func (f *FileSystem) Ls(ctx context.Context, path string, recursive bool) dfs.Command {
	return f.api.ListPath(ctx, f.fsID, path, recursive)
}

// Cat reads the contents of a file. On success the file body is in
// Command.Response.Body.
func (f *FileSystem) Cat(ctx context.Context, path string) dfs.Command {
	return f.api.ReadPath(ctx, f.fsID, path, nil)
}

// Write uploads contents to a file starting at position, then flushes the
// uncommitted buffer so the data becomes readable. contentType defaults to
// text/plain. If the append fails, its Command is returned and no flush is
// attempted; otherwise the flush Command is returned.
func (f *FileSystem) Write(ctx context.Context, path string, contents []byte, contentType string, position int64) dfs.Command {
	if contentType == "" {
		contentType = DefaultContentType
	}

	appendCmd := f.api.AppendData(ctx, f.fsID, path, position, contents)
	if appendCmd.Err != nil || !appendCmd.OK() {
		f.logger.Warn("append failed, skipping flush",
			slog.String("path", path),
			slog.Int64("position", position),
		)

		return appendCmd
	}

	// Appended data sits in an uncommitted buffer on the server until the
	// flush commits it. The flush position is the total committed length.
	return f.api.FlushData(ctx, f.fsID, path, position+int64(len(contents)), contentType)
}

// Rm deletes a file.
func (f *FileSystem) Rm(ctx context.Context, path string) dfs.Command {
	return f.api.DeletePath(ctx, f.fsID, path, false)
}

// Rmdir deletes a directory. With recursive false the service answers 409
// for a non-empty directory.
func (f *FileSystem) Rmdir(ctx context.Context, path string, recursive bool) dfs.Command {
	return f.api.DeletePath(ctx, f.fsID, path, recursive)
}

// Stat returns a path's properties as response headers.
func (f *FileSystem) Stat(ctx context.Context, path string) dfs.Command {
	return f.api.GetPathProperties(ctx, f.fsID, path)
}
