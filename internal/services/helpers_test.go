package services

import (
	"context"
	"scoutd/internal/docstore"
	"scoutd/internal/structures"
	"sync"
	"time"
)

// fixedNow is 03/14/2025 02:07:09 PM in Los Angeles.
var fixedNow = time.Date(2025, time.March, 14, 21, 7, 9, 0, time.UTC)

func testConfig() *structures.Config {
	return &structures.Config{
		Scouting: structures.ScoutingConfig{
			Timezone:         "America/Los_Angeles",
			ClaimMaxAttempts: 5,
		},
	}
}

func clockAt(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// faultyStore wraps a real store and lets a test override single methods.
type faultyStore struct {
	docstore.Store

	mu       sync.Mutex
	calls    map[string]int
	exists   func(collection, key string) (bool, error)
	create   func(collection, key string, data map[string]any) error
	cas      func(collection, key string, expected int64) error
	listErr  error
	mergeErr error
}

func newFaultyStore() *faultyStore {
	return &faultyStore{Store: docstore.NewMemoryStore(), calls: make(map[string]int)}
}

func (f *faultyStore) count(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
}

func (f *faultyStore) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *faultyStore) Exists(ctx context.Context, collection, key string) (bool, error) {
	f.count("exists")
	if f.exists != nil {
		return f.exists(collection, key)
	}
	return f.Store.Exists(ctx, collection, key)
}

func (f *faultyStore) Get(ctx context.Context, collection, key string) (*docstore.Document, error) {
	f.count("get")
	return f.Store.Get(ctx, collection, key)
}

func (f *faultyStore) Create(ctx context.Context, collection, key string, data map[string]any) error {
	f.count("create")
	if f.create != nil {
		if err := f.create(collection, key, data); err != nil {
			return err
		}
	}
	return f.Store.Create(ctx, collection, key, data)
}

func (f *faultyStore) Merge(ctx context.Context, collection, key string, path []string, value any) error {
	f.count("merge")
	if f.mergeErr != nil {
		return f.mergeErr
	}
	return f.Store.Merge(ctx, collection, key, path, value)
}

func (f *faultyStore) CompareAndSwap(ctx context.Context, collection, key string, expected int64, data map[string]any) error {
	f.count("cas")
	if f.cas != nil {
		if err := f.cas(collection, key, expected); err != nil {
			return err
		}
	}
	return f.Store.CompareAndSwap(ctx, collection, key, expected, data)
}

func (f *faultyStore) List(ctx context.Context, collection string) ([]*docstore.Document, error) {
	f.count("list")
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.Store.List(ctx, collection)
}
