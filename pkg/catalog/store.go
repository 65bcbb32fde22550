package catalog

import (
	"sync/atomic"

	"go.uber.org/zap"
)

// Store holds the current catalog. Readers get an immutable snapshot;
// Reload replaces the whole reference at once.
type Store struct {
	path    string
	current atomic.Pointer[Catalog]
	logger  *zap.Logger
}

// NewStore creates a store for the database file at path. The store starts
// with an empty catalog until Reload succeeds.
func NewStore(path string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{path: path, logger: logger}
	s.current.Store(Empty())
	return s
}

// NewStaticStore wraps an already built catalog. Reload on a static store is a no-op.
func NewStaticStore(c *Catalog) *Store {
	s := &Store{logger: zap.NewNop()}
	if c == nil {
		c = Empty()
	}
	s.current.Store(c)
	return s
}

// Path returns the database file the store loads from.
func (s *Store) Path() string { return s.path }

// Current returns the catalog in use.
func (s *Store) Current() *Catalog { return s.current.Load() }

// Swap installs c and returns the previous catalog.
func (s *Store) Swap(c *Catalog) *Catalog {
	if c == nil {
		c = Empty()
	}
	return s.current.Swap(c)
}

// Reload loads the database file and swaps it in. On failure the current
// catalog stays in place and the error is returned for reporting only.
func (s *Store) Reload() (*Catalog, error) {
	if s.path == "" {
		return s.Current(), nil
	}

	c, err := LoadFile(s.path)
	if err != nil {
		s.logger.Warn("Device database not loaded, keeping current catalog",
			zap.String("path", s.path),
			zap.Error(err),
		)
		return s.Current(), err
	}

	s.Swap(c)
	s.logger.Info("Device database loaded",
		zap.String("path", s.path),
		zap.String("version", c.Version()),
		zap.Int("brands", c.BrandCount()),
		zap.Int("models", c.ModelCount()),
	)
	return c, nil
}
