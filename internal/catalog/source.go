package catalog

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// ErrNotFound is returned when a dataset or lookup table does not exist.
var ErrNotFound = errors.New("dataset not found")

// ErrTooLarge is returned when a document exceeds the download limit.
var ErrTooLarge = errors.New("document too large")

// maxDocumentSize bounds a single dataset download.
const maxDocumentSize = 32 << 20

// Source fetches dataset documents by name (a cluster id or the lookup
// table name).
type Source interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// LoadDataset fetches and decodes the dataset for a cluster.
func LoadDataset(ctx context.Context, src Source, clusterID string) (*Dataset, error) {
	data, err := src.Fetch(ctx, clusterID)
	if err != nil {
		return nil, errors.Wrapf(err, "fetch cluster %s", clusterID)
	}
	ds, err := Decode(data)
	if err != nil {
		return nil, errors.Wrapf(err, "cluster %s", clusterID)
	}
	return ds, nil
}

// HTTPSource reads <BaseURL>/<name>.json.
type HTTPSource struct {
	BaseURL string
	Client  *http.Client
	// MaxSize bounds a document in bytes. Zero means 32 MiB.
	MaxSize int64
}

// NewHTTPSource creates an HTTP source with a bounded request timeout.
func NewHTTPSource(baseURL string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: timeout},
	}
}

// Fetch implements Source.
func (s *HTTPSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	u := s.BaseURL + "/" + url.PathEscape(name) + ".json"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "GET %s", u)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, errors.Wrapf(ErrNotFound, "GET %s", u)
	case resp.StatusCode != http.StatusOK:
		return nil, errors.Newf("GET %s: unexpected status %s", u, resp.Status)
	}
	limit := s.MaxSize
	if limit <= 0 {
		limit = maxDocumentSize
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", u)
	}
	if int64(len(data)) > limit {
		return nil, errors.Wrapf(ErrTooLarge, "GET %s: over %d bytes", u, limit)
	}
	return data, nil
}

// DirSource reads <Dir>/<name>.json from the local filesystem.
type DirSource struct {
	Dir string
}

// Path returns the file that backs the named document.
func (s *DirSource) Path(name string) string {
	return filepath.Join(s.Dir, filepath.Base(name)+".json")
}

// Fetch implements Source.
func (s *DirSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, errors.Wrapf(ErrNotFound, "%s", s.Path(name))
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", s.Path(name))
	}
	return data, nil
}
