package catalog

import (
	"log/slog"
	"sync"
)

// Loader reads a dataset once and serves the cached catalog afterwards.
// Failed loads are not cached, so the next call tries again.
type Loader struct {
	path  string
	parse func(string) (*Catalog, error)

	mu  sync.Mutex
	cat *Catalog
}

// NewLoader returns a loader for the CSV file at path.
func NewLoader(path string) *Loader {
	return &Loader{path: path, parse: ParseFile}
}

// Path returns the dataset path.
func (l *Loader) Path() string {
	return l.path
}

// Load returns the memoized catalog, reading the file on first use.
func (l *Loader) Load() (*Catalog, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cat != nil {
		return l.cat, nil
	}
	cat, err := l.parse(l.path)
	if err != nil {
		slog.Error("failed to load catalog", "path", l.path, "error", err)
		return nil, err
	}
	slog.Info("loaded catalog", "path", l.path, "songs", cat.Len(), "ragas", len(cat.Ragas()))
	l.cat = cat
	return cat, nil
}
