// internal/table/load.go
//
// Fetches the raw dataset resource for a dataset name and parses it.
//
// Sources (Loader.Base):
//   - "http://…" / "https://…" → GET <base>/<file>
//   - a local directory         → <base>/<file>
//   - empty                     → the embedded fallback FS
//
// A name without an extension gets ".csv" appended, so "dataset01" resolves
// to "dataset01.csv".

package table

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"regexp"
	"strings"
	"time"
)

// maxBodySize caps remote dataset downloads.
const maxBodySize = 10 << 20

// ErrBadName is returned for dataset names that could escape the base.
var ErrBadName = errors.New("invalid dataset name")

var nameRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

// LoadError reports a failure fetching the tabular resource.
// Status is the HTTP status (or 404 for a missing local file), 0 otherwise.
type LoadError struct {
	URL    string
	Status int
	Err    error
}

func (e *LoadError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("load %s: status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("load %s: %v", e.URL, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Table is a parsed dataset together with where it came from.
type Table struct {
	Name     string     // dataset name as requested
	Location string     // URL or path that was read
	Rows     [][]string // cleaned rows; empty means unusable
}

// Loader resolves dataset names to parsed tables.
type Loader struct {
	Base     string       // URL prefix or directory; empty → Fallback
	Fallback fs.FS        // embedded datasets
	Client   *http.Client // used for http(s) bases
}

// NewLoader builds a Loader with a bounded HTTP client.
func NewLoader(base string, fallback fs.FS) *Loader {
	return &Loader{
		Base:     strings.TrimSpace(base),
		Fallback: fallback,
		Client:   &http.Client{Timeout: 15 * time.Second},
	}
}

// FileName validates name and appends ".csv" when it has no extension.
func FileName(name string) (string, error) {
	if !nameRe.MatchString(name) || strings.Contains(name, "..") {
		return "", fmt.Errorf("%w: %q", ErrBadName, name)
	}
	if path.Ext(name) == "" {
		name += ".csv"
	}
	return name, nil
}

// Load fetches and parses dataset name.
// Fetch failures are *LoadError; an empty Rows slice is not an error here.
func (l *Loader) Load(ctx context.Context, name string) (*Table, error) {
	file, err := FileName(name)
	if err != nil {
		return nil, err
	}

	var (
		body []byte
		loc  string
	)
	switch {
	case isRemote(l.Base):
		loc = strings.TrimRight(l.Base, "/") + "/" + file
		body, err = l.fetchHTTP(ctx, loc)
	case l.Base != "":
		loc = path.Join(l.Base, file)
		body, err = readFS(os.DirFS(l.Base), file, loc)
	case l.Fallback != nil:
		loc = "embedded:" + file
		body, err = readFS(l.Fallback, file, loc)
	default:
		return nil, &LoadError{URL: file, Err: errors.New("no dataset source configured")}
	}
	if err != nil {
		return nil, err
	}

	rows, err := Parse(file, body)
	if err != nil {
		return nil, &LoadError{URL: loc, Err: err}
	}
	return &Table{Name: name, Location: loc, Rows: rows}, nil
}

func isRemote(base string) bool {
	return strings.HasPrefix(base, "http://") || strings.HasPrefix(base, "https://")
}

func (l *Loader) fetchHTTP(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &LoadError{URL: url, Err: err}
	}
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, &LoadError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &LoadError{URL: url, Status: resp.StatusCode}
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return nil, &LoadError{URL: url, Err: err}
	}
	if len(b) > maxBodySize {
		return nil, &LoadError{URL: url, Err: fmt.Errorf("body exceeds %d bytes", maxBodySize)}
	}
	return b, nil
}

func readFS(fsys fs.FS, file, loc string) ([]byte, error) {
	b, err := fs.ReadFile(fsys, file)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &LoadError{URL: loc, Status: http.StatusNotFound, Err: err}
	}
	if err != nil {
		return nil, &LoadError{URL: loc, Err: err}
	}
	return b, nil
}
