// Package docstore defines the document store the scouting services persist
// into: collections of keyed, versioned JSON-shaped documents supporting
// existence checks, full reads and replaces, path-scoped merges and
// compare-and-swap.
package docstore

import (
	"context"
	"errors"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrExists    = errors.New("document already exists")
	ErrConflict  = errors.New("document version conflict")
	ErrEmptyPath = errors.New("empty merge path")
)

// Document is one keyed record. Data only holds JSON-compatible values:
// map[string]any, []any, string, float64, bool and nil.
type Document struct {
	Key     string         `json:"key"`
	Version int64          `json:"version"`
	Data    map[string]any `json:"data"`
}

type Store interface {
	// Get returns ErrNotFound when the document does not exist.
	Get(ctx context.Context, collection, key string) (*Document, error)
	Exists(ctx context.Context, collection, key string) (bool, error)
	// Create stores data only if key is absent, otherwise ErrExists.
	Create(ctx context.Context, collection, key string, data map[string]any) error
	// Set replaces the whole document, creating it if needed.
	Set(ctx context.Context, collection, key string, data map[string]any) error
	// Merge replaces only the value found at path inside an existing
	// document. Sibling values are left untouched. ErrNotFound if absent.
	Merge(ctx context.Context, collection, key string, path []string, value any) error
	// CompareAndSwap replaces the document only if its current version is
	// expectedVersion; expectedVersion 0 means "must not exist".
	// Any mismatch yields ErrConflict.
	CompareAndSwap(ctx context.Context, collection, key string, expectedVersion int64, data map[string]any) error
	// List returns every document in collection ordered by key.
	List(ctx context.Context, collection string) ([]*Document, error)
	Close() error
}

// Snapshotter is implemented by stores whose state lives in process memory
// and must be written out to survive restarts.
type Snapshotter interface {
	Snapshot() *Snapshot
	Restore(s *Snapshot)
}

type Snapshot struct {
	Version     int                             `json:"version"`
	Collections map[string]map[string]*Document `json:"collections"`
}

const SnapshotVersion = 1
