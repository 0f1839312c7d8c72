package docstore

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type storeFactory func(t *testing.T) Store

func newMemory(t *testing.T) Store {
	return NewMemoryStore()
}

func newSQLite(t *testing.T) Store {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "docs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

var factories = map[string]storeFactory{
	"memory": newMemory,
	"sqlite": newSQLite,
}

func forEachStore(t *testing.T, fn func(t *testing.T, s Store)) {
	for name, factory := range factories {
		t.Run(name, func(t *testing.T) {
			fn(t, factory(t))
		})
	}
}

func TestStore_GetMissing(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		_, err := s.Get(context.Background(), "c", "missing")
		assert.ErrorIs(t, err, ErrNotFound)

		ok, err := s.Exists(context.Background(), "c", "missing")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestStore_CreateThenGet(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		require.NoError(t, s.Create(ctx, "c", "k", map[string]any{"a": "x", "n": 3.0}))

		doc, err := s.Get(ctx, "c", "k")
		require.NoError(t, err)
		assert.Equal(t, "k", doc.Key)
		assert.Equal(t, int64(1), doc.Version)
		assert.Equal(t, map[string]any{"a": "x", "n": 3.0}, doc.Data)

		ok, err := s.Exists(ctx, "c", "k")
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestStore_CreateExisting(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		require.NoError(t, s.Create(ctx, "c", "k", map[string]any{"a": "first"}))
		err := s.Create(ctx, "c", "k", map[string]any{"a": "second"})
		assert.ErrorIs(t, err, ErrExists)

		doc, err := s.Get(ctx, "c", "k")
		require.NoError(t, err)
		assert.Equal(t, "first", doc.Data["a"])
	})
}

func TestStore_SetReplacesAndBumpsVersion(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		require.NoError(t, s.Set(ctx, "c", "k", map[string]any{"a": "1", "b": "2"}))
		require.NoError(t, s.Set(ctx, "c", "k", map[string]any{"a": "3"}))

		doc, err := s.Get(ctx, "c", "k")
		require.NoError(t, err)
		assert.Equal(t, int64(2), doc.Version)
		assert.Equal(t, map[string]any{"a": "3"}, doc.Data)
	})
}

func TestStore_MergeKeepsSiblings(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		require.NoError(t, s.Create(ctx, "c", "k", map[string]any{
			"match1": map[string]any{"alice": map[string]any{"x": 1.0}},
		}))
		require.NoError(t, s.Merge(ctx, "c", "k", []string{"match1", "bob"}, map[string]any{"x": 2.0}))
		require.NoError(t, s.Merge(ctx, "c", "k", []string{"match2", "alice"}, map[string]any{"x": 3.0}))

		doc, err := s.Get(ctx, "c", "k")
		require.NoError(t, err)
		assert.Equal(t, map[string]any{
			"match1": map[string]any{
				"alice": map[string]any{"x": 1.0},
				"bob":   map[string]any{"x": 2.0},
			},
			"match2": map[string]any{"alice": map[string]any{"x": 3.0}},
		}, doc.Data)
		assert.Equal(t, int64(3), doc.Version)
	})
}

func TestStore_MergeMissingDocument(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		err := s.Merge(context.Background(), "c", "nope", []string{"a"}, "v")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestStore_MergeEmptyPath(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		err := s.Merge(context.Background(), "c", "k", nil, "v")
		assert.ErrorIs(t, err, ErrEmptyPath)
	})
}

func TestStore_CompareAndSwap(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		require.NoError(t, s.CompareAndSwap(ctx, "c", "k", 0, map[string]any{"s": "a"}))
		assert.ErrorIs(t, s.CompareAndSwap(ctx, "c", "k", 0, map[string]any{"s": "b"}), ErrConflict)
		assert.ErrorIs(t, s.CompareAndSwap(ctx, "c", "k", 7, map[string]any{"s": "b"}), ErrConflict)
		require.NoError(t, s.CompareAndSwap(ctx, "c", "k", 1, map[string]any{"s": "c"}))

		doc, err := s.Get(ctx, "c", "k")
		require.NoError(t, err)
		assert.Equal(t, int64(2), doc.Version)
		assert.Equal(t, "c", doc.Data["s"])

		assert.ErrorIs(t, s.CompareAndSwap(ctx, "c", "absent", 3, map[string]any{}), ErrConflict)
	})
}

func TestStore_ListSortedByKey(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		for _, k := range []string{"254", "1678", "100"} {
			require.NoError(t, s.Create(ctx, "teams", k, map[string]any{"k": k}))
		}
		require.NoError(t, s.Create(ctx, "other", "1", map[string]any{}))

		docs, err := s.List(ctx, "teams")
		require.NoError(t, err)
		require.Len(t, docs, 3)
		assert.Equal(t, "100", docs[0].Key)
		assert.Equal(t, "1678", docs[1].Key)
		assert.Equal(t, "254", docs[2].Key)

		empty, err := s.List(ctx, "nothing")
		require.NoError(t, err)
		assert.Empty(t, empty)
	})
}

func TestStore_ConcurrentCreateRaceHasSingleWinner(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		const writers = 16
		var wg sync.WaitGroup
		results := make(chan error, writers)
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results <- s.CompareAndSwap(ctx, "c", "k", 0, map[string]any{"holder": fmt.Sprint(i)})
			}(i)
		}
		wg.Wait()
		close(results)

		wins := 0
		for err := range results {
			if err == nil {
				wins++
				continue
			}
			assert.True(t, errors.Is(err, ErrConflict), "unexpected error: %v", err)
		}
		assert.Equal(t, 1, wins)
	})
}

func TestStore_ConcurrentMergesAllSurvive(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		require.NoError(t, s.Create(ctx, "c", "k", map[string]any{}))

		const writers = 10
		var wg sync.WaitGroup
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				assert.NoError(t, s.Merge(ctx, "c", "k", []string{"match1", fmt.Sprintf("scout%d", i)}, "ok"))
			}(i)
		}
		wg.Wait()

		doc, err := s.Get(ctx, "c", "k")
		require.NoError(t, err)
		assert.Len(t, doc.Data["match1"], writers)
	})
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	data := map[string]any{"nested": map[string]any{"a": "1"}}
	require.NoError(t, s.Create(ctx, "c", "k", data))
	data["nested"].(map[string]any)["a"] = "mutated"

	doc, err := s.Get(ctx, "c", "k")
	require.NoError(t, err)
	doc.Data["nested"].(map[string]any)["a"] = "mutated again"

	again, err := s.Get(ctx, "c", "k")
	require.NoError(t, err)
	assert.Equal(t, "1", again.Data["nested"].(map[string]any)["a"])
}

func TestMemoryStore_SnapshotRestore(t *testing.T) {
	ctx := context.Background()
	src := NewMemoryStore()
	require.NoError(t, src.Create(ctx, "matchscout", "254", map[string]any{"match1": map[string]any{}}))
	require.NoError(t, src.Merge(ctx, "matchscout", "254", []string{"match2"}, map[string]any{}))

	snap := src.Snapshot()
	assert.Equal(t, SnapshotVersion, snap.Version)

	dst := NewMemoryStore()
	require.NoError(t, dst.Create(ctx, "stale", "x", map[string]any{}))
	dst.Restore(snap)

	doc, err := dst.Get(ctx, "matchscout", "254")
	require.NoError(t, err)
	assert.Equal(t, int64(2), doc.Version)
	assert.Len(t, doc.Data, 2)

	ok, err := dst.Exists(ctx, "stale", "x")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStore_CanceledContext(t *testing.T) {
	s := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Get(ctx, "c", "k")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSetPath_ReplacesScalarIntermediate(t *testing.T) {
	data := map[string]any{"a": "scalar"}
	setPath(data, []string{"a", "b"}, 1.0)
	assert.Equal(t, map[string]any{"a": map[string]any{"b": 1.0}}, data)
}
