package docstore

import (
	"context"
	"sort"
	"sync"
)

var (
	_ Store       = (*MemoryStore)(nil)
	_ Snapshotter = (*MemoryStore)(nil)
)

// MemoryStore keeps every collection in process memory. Each operation runs
// under a single lock, so Merge and CompareAndSwap are atomic.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]*Document
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]map[string]*Document)}
}

func (m *MemoryStore) lookup(collection, key string) (*Document, bool) {
	docs, ok := m.collections[collection]
	if !ok {
		return nil, false
	}
	doc, ok := docs[key]
	return doc, ok
}

func (m *MemoryStore) put(collection string, doc *Document) {
	docs, ok := m.collections[collection]
	if !ok {
		docs = make(map[string]*Document)
		m.collections[collection] = docs
	}
	docs[doc.Key] = doc
}

func (m *MemoryStore) Get(ctx context.Context, collection, key string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.lookup(collection, key)
	if !ok {
		return nil, ErrNotFound
	}
	return copyDocument(doc), nil
}

func (m *MemoryStore) Exists(ctx context.Context, collection, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.lookup(collection, key)
	return ok, nil
}

func (m *MemoryStore) Create(ctx context.Context, collection, key string, data map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.lookup(collection, key); ok {
		return ErrExists
	}
	m.put(collection, &Document{Key: key, Version: 1, Data: deepCopyMap(data)})
	return nil
}

func (m *MemoryStore) Set(ctx context.Context, collection, key string, data map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	version := int64(1)
	if doc, ok := m.lookup(collection, key); ok {
		version = doc.Version + 1
	}
	m.put(collection, &Document{Key: key, Version: version, Data: deepCopyMap(data)})
	return nil
}

func (m *MemoryStore) Merge(ctx context.Context, collection, key string, path []string, value any) error {
	if len(path) == 0 {
		return ErrEmptyPath
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.lookup(collection, key)
	if !ok {
		return ErrNotFound
	}
	if doc.Data == nil {
		doc.Data = make(map[string]any)
	}
	setPath(doc.Data, path, deepCopyValue(value))
	doc.Version++
	return nil
}

func (m *MemoryStore) CompareAndSwap(ctx context.Context, collection, key string, expectedVersion int64, data map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.lookup(collection, key)
	switch {
	case !ok && expectedVersion != 0:
		return ErrConflict
	case ok && doc.Version != expectedVersion:
		return ErrConflict
	}
	m.put(collection, &Document{Key: key, Version: expectedVersion + 1, Data: deepCopyMap(data)})
	return nil
}

func (m *MemoryStore) List(ctx context.Context, collection string) ([]*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	docs := m.collections[collection]
	out := make([]*Document, 0, len(docs))
	for _, doc := range docs {
		out = append(out, copyDocument(doc))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (m *MemoryStore) Close() error {
	return nil
}

func (m *MemoryStore) Snapshot() *Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := &Snapshot{
		Version:     SnapshotVersion,
		Collections: make(map[string]map[string]*Document, len(m.collections)),
	}
	for name, docs := range m.collections {
		cp := make(map[string]*Document, len(docs))
		for key, doc := range docs {
			cp[key] = copyDocument(doc)
		}
		s.Collections[name] = cp
	}
	return s
}

// Restore replaces the whole store content with s. A nil snapshot empties it.
func (m *MemoryStore) Restore(s *Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collections = make(map[string]map[string]*Document)
	if s == nil {
		return
	}
	for name, docs := range s.Collections {
		cp := make(map[string]*Document, len(docs))
		for key, doc := range docs {
			if doc == nil {
				continue
			}
			d := copyDocument(doc)
			d.Key = key
			cp[key] = d
		}
		m.collections[name] = cp
	}
}
