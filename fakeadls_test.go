package downstage

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fakeADLS is an in-memory stand-in for the ADLS Gen2 data plane plus an
// Azure AD token endpoint. It implements just enough of the REST surface
// for the filesystem-level scenarios: filesystem create, path create/list/
// read/delete, and the append/flush two-phase write.
type fakeADLS struct {
	mu          sync.Mutex
	filesystems map[string]bool
	dirs        map[string]bool   // "fs/path"
	files       map[string][]byte // committed contents
	pending     map[string][]byte // uncommitted append buffers

	authCalls  atomic.Int32
	failAppend atomic.Bool

	tokenSrv   *httptest.Server
	storageSrv *httptest.Server
}

func newFakeADLS(t *testing.T) *fakeADLS {
	t.Helper()

	f := &fakeADLS{
		filesystems: map[string]bool{},
		dirs:        map[string]bool{},
		files:       map[string][]byte{},
		pending:     map[string][]byte{},
	}

	f.tokenSrv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		f.authCalls.Add(1)
		expiresOn := time.Now().Add(time.Hour).Unix()
		fmt.Fprintf(w, `{"access_token":"fake-token","expires_on":"%d"}`, expiresOn)
	}))
	t.Cleanup(f.tokenSrv.Close)

	f.storageSrv = httptest.NewServer(http.HandlerFunc(f.handleStorage))
	t.Cleanup(f.storageSrv.Close)

	return f
}

func (f *fakeADLS) handleStorage(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != "Bearer fake-token" {
		w.WriteHeader(http.StatusUnauthorized)

		return
	}

	fs, path, _ := strings.Cut(strings.TrimPrefix(r.URL.Path, "/"), "/")
	query := r.URL.Query()

	f.mu.Lock()
	defer f.mu.Unlock()

	if path == "" {
		f.handleFilesystem(w, r, fs, query)

		return
	}

	if !f.filesystems[fs] {
		w.WriteHeader(http.StatusNotFound)

		return
	}

	key := fs + "/" + path

	switch {
	case r.Method == http.MethodPut:
		f.createPath(w, key, query.Get("resource"))
	case r.Method == http.MethodPatch && query.Get("action") == "append":
		f.appendData(w, r, key, query.Get("position"))
	case r.Method == http.MethodPatch && query.Get("action") == "flush":
		f.flushData(w, key, query.Get("position"))
	case r.Method == http.MethodGet:
		f.readPath(w, key)
	case r.Method == http.MethodHead:
		f.headPath(w, key)
	case r.Method == http.MethodDelete:
		f.deletePath(w, key, query.Get("recursive") == "true")
	default:
		w.WriteHeader(http.StatusBadRequest)
	}
}

func (f *fakeADLS) handleFilesystem(w http.ResponseWriter, r *http.Request, fs string, query map[string][]string) {
	resource := ""
	if v, ok := query["resource"]; ok {
		resource = v[0]
	}

	switch {
	case r.Method == http.MethodPut && resource == "filesystem":
		if f.filesystems[fs] {
			w.WriteHeader(http.StatusConflict)

			return
		}

		f.filesystems[fs] = true
		w.WriteHeader(http.StatusCreated)
	case r.Method == http.MethodGet && resource == "filesystem":
		f.listPaths(w, fs, query)
	default:
		w.WriteHeader(http.StatusBadRequest)
	}
}

// listPaths answers the list operation. The directory filter includes the
// directory itself and everything beneath it, matching the service.
func (f *fakeADLS) listPaths(w http.ResponseWriter, fs string, query map[string][]string) {
	if !f.filesystems[fs] {
		w.WriteHeader(http.StatusNotFound)

		return
	}

	directory := ""
	if v, ok := query["directory"]; ok {
		directory = v[0]
	}

	prefix := fs + "/"
	match := func(key string) (string, bool) {
		if !strings.HasPrefix(key, prefix) {
			return "", false
		}

		name := strings.TrimPrefix(key, prefix)
		if directory != "" && name != directory && !strings.HasPrefix(name, directory+"/") {
			return "", false
		}

		return name, true
	}

	var entries []string

	for key := range f.dirs {
		if name, ok := match(key); ok {
			entries = append(entries, fmt.Sprintf(`{"name":%q,"isDirectory":"true"}`, name))
		}
	}

	for key, contents := range f.files {
		if name, ok := match(key); ok {
			entries = append(entries,
				fmt.Sprintf(`{"name":%q,"contentLength":"%d"}`, name, len(contents)))
		}
	}

	sort.Strings(entries)
	fmt.Fprintf(w, `{"paths":[%s]}`, strings.Join(entries, ","))
}

func (f *fakeADLS) createPath(w http.ResponseWriter, key, resource string) {
	if f.dirs[key] || f.files[key] != nil {
		w.WriteHeader(http.StatusConflict)

		return
	}

	if resource == "directory" {
		f.dirs[key] = true
	} else {
		f.files[key] = []byte{}
	}

	w.WriteHeader(http.StatusCreated)
}

func (f *fakeADLS) appendData(w http.ResponseWriter, r *http.Request, key, position string) {
	if f.failAppend.Load() {
		w.WriteHeader(http.StatusConflict)

		return
	}

	pos, _ := strconv.Atoi(position)

	body, err := io.ReadAll(r.Body)
	if err != nil || pos != len(f.pending[key]) {
		w.WriteHeader(http.StatusBadRequest)

		return
	}

	f.pending[key] = append(f.pending[key], body...)
	w.WriteHeader(http.StatusAccepted)
}

func (f *fakeADLS) flushData(w http.ResponseWriter, key, position string) {
	pos, _ := strconv.Atoi(position)
	if pos > len(f.pending[key]) {
		w.WriteHeader(http.StatusBadRequest)

		return
	}

	committed := make([]byte, pos)
	copy(committed, f.pending[key])
	f.files[key] = committed
	delete(f.pending, key)
	w.WriteHeader(http.StatusOK)
}

func (f *fakeADLS) readPath(w http.ResponseWriter, key string) {
	contents, ok := f.files[key]
	if !ok {
		w.WriteHeader(http.StatusNotFound)

		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write(contents)
}

func (f *fakeADLS) headPath(w http.ResponseWriter, key string) {
	switch {
	case f.dirs[key]:
		w.Header().Set("x-ms-resource-type", "directory")
	case f.files[key] != nil:
		w.Header().Set("x-ms-resource-type", "file")
		w.Header().Set("Content-Length", strconv.Itoa(len(f.files[key])))
	default:
		w.WriteHeader(http.StatusNotFound)

		return
	}

	w.WriteHeader(http.StatusOK)
}

func (f *fakeADLS) deletePath(w http.ResponseWriter, key string, recursive bool) {
	if f.files[key] != nil {
		delete(f.files, key)
		w.WriteHeader(http.StatusOK)

		return
	}

	if !f.dirs[key] {
		w.WriteHeader(http.StatusNotFound)

		return
	}

	children := []string{}

	for child := range f.dirs {
		if strings.HasPrefix(child, key+"/") {
			children = append(children, child)
		}
	}

	for child := range f.files {
		if strings.HasPrefix(child, key+"/") {
			children = append(children, child)
		}
	}

	if len(children) > 0 && !recursive {
		w.WriteHeader(http.StatusConflict)

		return
	}

	for _, child := range children {
		delete(f.dirs, child)
		delete(f.files, child)
	}

	delete(f.dirs, key)
	w.WriteHeader(http.StatusOK)
}
