package dfs

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// listBody is a realistic list-paths response: ADLS encodes booleans and
// content lengths as strings.
const listBody = `{
  "paths": [
    {
      "name": "sample_directory",
      "isDirectory": "true",
      "lastModified": "Mon, 02 Jan 2023 15:04:05 GMT",
      "etag": "0x8DAEE0001",
      "owner": "$superuser",
      "group": "$superuser",
      "permissions": "rwxr-x---"
    },
    {
      "name": "sample_directory/notes.txt",
      "contentLength": "13",
      "lastModified": "Tue, 03 Jan 2023 10:00:00 GMT",
      "etag": "0x8DAEE0002"
    }
  ]
}`

func listCommand(body string) Command {
	return Command{
		Method:   http.MethodGet,
		URL:      "https://acc.dfs.core.windows.net/myfs",
		Response: &Response{StatusCode: http.StatusOK, Body: []byte(body)},
	}
}

func TestParsePathList(t *testing.T) {
	entries, err := ParsePathList(listCommand(listBody), testLogger())
	require.NoError(t, err)
	require.Len(t, entries, 2)

	dir := entries[0]
	assert.Equal(t, "sample_directory", dir.Name)
	assert.True(t, dir.IsDirectory)
	assert.Zero(t, dir.Size)
	assert.Equal(t, "$superuser", dir.Owner)
	assert.Equal(t, "rwxr-x---", dir.Permissions)
	assert.Equal(t, time.Date(2023, time.January, 2, 15, 4, 5, 0, time.UTC), dir.LastModified.UTC())

	file := entries[1]
	assert.Equal(t, "sample_directory/notes.txt", file.Name)
	assert.False(t, file.IsDirectory)
	assert.Equal(t, int64(13), file.Size)
	assert.Equal(t, "0x8DAEE0002", file.ETag)
}

func TestParsePathList_DegradedFields(t *testing.T) {
	body := `{"paths":[{"name":"odd","contentLength":"many","lastModified":"yesterday"}]}`

	entries, err := ParsePathList(listCommand(body), testLogger())
	require.NoError(t, err)
	require.Len(t, entries, 1)

	// Bad fields degrade to zero values instead of failing the listing.
	assert.Zero(t, entries[0].Size)
	assert.True(t, entries[0].LastModified.IsZero())
}

func TestParsePathList_Empty(t *testing.T) {
	entries, err := ParsePathList(listCommand(`{"paths":[]}`), testLogger())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestParseFilesystemList(t *testing.T) {
	body := `{"filesystems":[{"name":"myfs","lastModified":"Mon, 02 Jan 2023 15:04:05 GMT","etag":"0x1"}]}`

	entries, err := ParseFilesystemList(listCommand(body), testLogger())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "myfs", entries[0].Name)
	assert.Equal(t, "0x1", entries[0].ETag)
	assert.False(t, entries[0].LastModified.IsZero())
}
