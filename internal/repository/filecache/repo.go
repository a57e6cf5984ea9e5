// Package filecache persists parsed filters as one JSON document on disk.
package filecache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/kailas-cloud/usersearch/internal/domain/query"
)

// DefaultPath is the cache document name used when none is configured.
const DefaultPath = "query_cache.json"

// Repo reads and writes the cache document. Saves are serialized and
// atomic: a reader never observes a partially written file.
type Repo struct {
	path   string
	mu     sync.Mutex
	logger *zap.Logger
}

// New creates a file tier at path.
func New(path string, logger *zap.Logger) *Repo {
	if path == "" {
		path = DefaultPath
	}
	return &Repo{path: path, logger: logger}
}

// Path returns the document location.
func (r *Repo) Path() string { return r.path }

// Exists reports whether the document is present.
func (r *Repo) Exists() bool {
	_, err := os.Stat(r.path)
	return err == nil
}

// Load reads every entry. A missing file is an empty cache. Entries that no
// longer decode are skipped so one bad record cannot poison the rest.
func (r *Repo) Load() (map[string]query.Filters, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]query.Filters{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", r.path, err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode %s: %w", r.path, err)
	}

	out := make(map[string]query.Filters, len(raw))
	for key, msg := range raw {
		var f query.Filters
		if err := json.Unmarshal(msg, &f); err != nil {
			r.logger.Warn("Skipping invalid cache entry", zap.String("key", key), zap.Error(err))
			continue
		}
		out[key] = f
	}
	return out, nil
}

// Save replaces the document with entries.
func (r *Repo) Save(entries map[string]query.Filters) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cache: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return writeAtomic(r.path, data)
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck,gosec // write error takes precedence
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close() //nolint:errcheck,gosec // sync error takes precedence
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
