package services

import (
	"context"
	"errors"
	"fmt"
	"scoutd/internal/docstore"
	"scoutd/internal/models"
	"scoutd/internal/testutil"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSubmissionServiceFor(t *testing.T, store docstore.Store) (*SubmissionService, *testutil.MockMetrics) {
	t.Helper()
	metrics := testutil.NewMockMetrics()
	s, err := newSubmissionService(testConfig(), store, &testutil.MockLogger{}, metrics, clockAt(fixedNow))
	require.NoError(t, err)
	return s, metrics
}

func form(kv ...any) models.FormPayload {
	p := make(models.FormPayload, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		fv, err := models.FieldValueOf(kv[i+1])
		if err != nil {
			panic(err)
		}
		p[kv[i].(string)] = fv
	}
	return p
}

func getDoc(t *testing.T, store docstore.Store, collection, key string) map[string]any {
	t.Helper()
	doc, err := store.Get(context.Background(), collection, key)
	require.NoError(t, err)
	return doc.Data
}

func TestNewSubmissionService_BadTimezone(t *testing.T) {
	conf := testConfig()
	conf.Scouting.Timezone = "Mars/Olympus_Mons"
	_, err := NewSubmissionService(conf, docstore.NewMemoryStore(), &testutil.MockLogger{}, testutil.NewMockMetrics())
	assert.Error(t, err)
}

func TestSubmitMatch_CreatesDocument(t *testing.T) {
	store := docstore.NewMemoryStore()
	s, metrics := newSubmissionServiceFor(t, store)

	require.NoError(t, s.SubmitMatch(context.Background(), "254", "12", "alice", form("autoPoints", 6)))

	data := getDoc(t, store, CollectionMatchScout, "254")
	assert.Equal(t, map[string]any{
		"match12": map[string]any{
			"alice": map[string]any{
				"autoPoints":          float64(6),
				"submissionTimestamp": "03/14/2025, 02:07:09 PM",
			},
		},
	}, data)
	assert.Equal(t, 1, metrics.Get(metrics.Submissions, models.ScoutTypeMatch))
}

func TestSubmitMatch_OverridesCallerTimestamp(t *testing.T) {
	store := docstore.NewMemoryStore()
	s, _ := newSubmissionServiceFor(t, store)

	require.NoError(t, s.SubmitMatch(context.Background(), "254", "1", "alice",
		form(models.SubmissionTimestampField, "yesterday")))

	data := getDoc(t, store, CollectionMatchScout, "254")
	entry := data["match1"].(map[string]any)["alice"].(map[string]any)
	assert.Equal(t, "03/14/2025, 02:07:09 PM", entry[models.SubmissionTimestampField])
}

func TestSubmitMatch_SameMatchDifferentSubmittersCoexist(t *testing.T) {
	store := docstore.NewMemoryStore()
	s, _ := newSubmissionServiceFor(t, store)
	ctx := context.Background()

	require.NoError(t, s.SubmitMatch(ctx, "254", "3", "alice", form("climb", true)))
	require.NoError(t, s.SubmitMatch(ctx, "254", "3", "bob", form("climb", false)))

	match := getDoc(t, store, CollectionMatchScout, "254")["match3"].(map[string]any)
	assert.Len(t, match, 2)
	assert.Equal(t, true, match["alice"].(map[string]any)["climb"])
	assert.Equal(t, false, match["bob"].(map[string]any)["climb"])
}

func TestSubmitMatch_OtherMatchesUntouched(t *testing.T) {
	store := docstore.NewMemoryStore()
	s, _ := newSubmissionServiceFor(t, store)
	ctx := context.Background()

	require.NoError(t, s.SubmitMatch(ctx, "254", "1", "alice", form("notes", "fast")))
	before := getDoc(t, store, CollectionMatchScout, "254")["match1"]

	require.NoError(t, s.SubmitMatch(ctx, "254", "2", "alice", form("notes", "slow")))

	data := getDoc(t, store, CollectionMatchScout, "254")
	assert.Equal(t, before, data["match1"])
	assert.Contains(t, data, "match2")
}

func TestSubmitMatch_ResubmissionReplacesOwnEntryOnly(t *testing.T) {
	store := docstore.NewMemoryStore()
	s, _ := newSubmissionServiceFor(t, store)
	ctx := context.Background()

	require.NoError(t, s.SubmitMatch(ctx, "254", "1", "alice", form("a", 1, "b", 2)))
	require.NoError(t, s.SubmitMatch(ctx, "254", "1", "bob", form("a", 9)))
	require.NoError(t, s.SubmitMatch(ctx, "254", "1", "alice", form("a", 3)))

	match := getDoc(t, store, CollectionMatchScout, "254")["match1"].(map[string]any)
	assert.Equal(t, float64(3), match["alice"].(map[string]any)["a"])
	assert.NotContains(t, match["alice"], "b")
	assert.Equal(t, float64(9), match["bob"].(map[string]any)["a"])
}

func TestSubmitMatch_RejectsMissingIdentity(t *testing.T) {
	cases := []struct {
		name                   string
		team, match, submitter string
	}{
		{"no username", "254", "1", ""},
		{"blank username", "254", "1", "   "},
		{"no match", "254", "", "alice"},
		{"no team", "", "1", "alice"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newFaultyStore()
			s, _ := newSubmissionServiceFor(t, store)

			err := s.SubmitMatch(context.Background(), tc.team, tc.match, tc.submitter, form("x", 1))
			assert.ErrorIs(t, err, ErrBadRequest)
			assert.Zero(t, store.Calls("exists"))
			assert.Zero(t, store.Calls("create"))
			assert.Zero(t, store.Calls("merge"))
		})
	}
}

func TestSubmitMatch_OneReadOneWrite(t *testing.T) {
	store := newFaultyStore()
	s, _ := newSubmissionServiceFor(t, store)
	ctx := context.Background()

	require.NoError(t, s.SubmitMatch(ctx, "254", "1", "alice", form("x", 1)))
	assert.Equal(t, 1, store.Calls("exists"))
	assert.Equal(t, 1, store.Calls("create"))
	assert.Zero(t, store.Calls("merge"))

	require.NoError(t, s.SubmitMatch(ctx, "254", "2", "alice", form("x", 1)))
	assert.Equal(t, 2, store.Calls("exists"))
	assert.Equal(t, 1, store.Calls("create"))
	assert.Equal(t, 1, store.Calls("merge"))
}

func TestSubmitMatch_LostCreateRaceFallsBackToMerge(t *testing.T) {
	store := newFaultyStore()
	// Another writer creates the document between our existence check and
	// our create.
	store.exists = func(_, _ string) (bool, error) { return false, nil }
	store.create = func(collection, key string, _ map[string]any) error {
		return store.Store.Create(context.Background(), collection, key, map[string]any{
			"match1": map[string]any{"bob": map[string]any{"x": float64(2)}},
		})
	}
	s, metrics := newSubmissionServiceFor(t, store)

	require.NoError(t, s.SubmitMatch(context.Background(), "254", "1", "alice", form("x", 1)))

	match := getDoc(t, store, CollectionMatchScout, "254")["match1"].(map[string]any)
	assert.Contains(t, match, "alice")
	assert.Contains(t, match, "bob")
	assert.Equal(t, 1, store.Calls("merge"))
	assert.Equal(t, 1, metrics.Get(metrics.StoreConflicts, "submit"))
}

func TestSubmitMatch_StoreFault(t *testing.T) {
	boom := errors.New("disk on fire")

	t.Run("read", func(t *testing.T) {
		store := newFaultyStore()
		store.exists = func(_, _ string) (bool, error) { return false, boom }
		s, _ := newSubmissionServiceFor(t, store)
		err := s.SubmitMatch(context.Background(), "254", "1", "alice", form("x", 1))
		assert.ErrorIs(t, err, ErrStoreFault)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("merge", func(t *testing.T) {
		store := newFaultyStore()
		s, metrics := newSubmissionServiceFor(t, store)
		require.NoError(t, s.SubmitMatch(context.Background(), "254", "1", "alice", form("x", 1)))
		store.mergeErr = boom

		err := s.SubmitMatch(context.Background(), "254", "2", "alice", form("x", 1))
		assert.ErrorIs(t, err, ErrStoreFault)
		assert.Equal(t, 1, store.Calls("merge"))
		assert.Equal(t, 1, metrics.Get(metrics.Submissions, models.ScoutTypeMatch))
	})
}

func TestSubmitMatch_ConcurrentFirstSubmissionsSurvive(t *testing.T) {
	store := docstore.NewMemoryStore()
	s, _ := newSubmissionServiceFor(t, store)

	const scouts = 12
	var wg sync.WaitGroup
	errs := make(chan error, scouts)
	for i := 0; i < scouts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- s.SubmitMatch(context.Background(), "1678", "7", fmt.Sprintf("scout%02d", i), form("n", i))
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	match := getDoc(t, store, CollectionMatchScout, "1678")["match7"].(map[string]any)
	assert.Len(t, match, scouts)
}

func TestSubmitPit_AppendsSlots(t *testing.T) {
	store := docstore.NewMemoryStore()
	s, metrics := newSubmissionServiceFor(t, store)
	ctx := context.Background()

	first, err := s.SubmitPit(ctx, "254", "alice", form("drivetrain", "swerve"))
	require.NoError(t, err)
	second, err := s.SubmitPit(ctx, "254", "alice", form("drivetrain", "tank"))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Equal(t, models.SlotKey(fixedNow.UnixMilli()), first)
	assert.Equal(t, models.SlotKey(fixedNow.UnixMilli()+1), second)

	slots := getDoc(t, store, CollectionPitScout, "254")[models.PitSubmissionsField].(map[string]any)
	require.Len(t, slots, 2)
	assert.Equal(t, "swerve", slots[first].(map[string]any)["alice"].(map[string]any)["drivetrain"])
	assert.Equal(t, "tank", slots[second].(map[string]any)["alice"].(map[string]any)["drivetrain"])
	assert.Equal(t, 2, metrics.Get(metrics.Submissions, models.ScoutTypePit))
}

func TestSubmitPit_RejectsMissingUsername(t *testing.T) {
	store := newFaultyStore()
	s, _ := newSubmissionServiceFor(t, store)

	_, err := s.SubmitPit(context.Background(), "254", "", form("x", 1))
	assert.ErrorIs(t, err, ErrBadRequest)
	assert.Zero(t, store.Calls("exists"))
}

func TestSubmitPit_ConcurrentSubmissionsGetDistinctSlots(t *testing.T) {
	store := docstore.NewMemoryStore()
	s, _ := newSubmissionServiceFor(t, store)

	const scouts = 10
	var wg sync.WaitGroup
	for i := 0; i < scouts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.SubmitPit(context.Background(), "971", fmt.Sprintf("scout%d", i), form("i", i))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	slots := getDoc(t, store, CollectionPitScout, "971")[models.PitSubmissionsField].(map[string]any)
	assert.Len(t, slots, scouts)
}

func TestSubmitPit_SkipsSlotsAlreadyStored(t *testing.T) {
	store := docstore.NewMemoryStore()
	ctx := context.Background()
	// Written by another process whose clock ran ahead of ours.
	ahead := models.SlotKey(fixedNow.UnixMilli() + 5000)
	require.NoError(t, store.Create(ctx, CollectionPitScout, "254", map[string]any{
		models.PitSubmissionsField: map[string]any{
			ahead: map[string]any{"bob": map[string]any{"drivetrain": "mecanum"}},
		},
		"teamName": "Cheesy Poofs",
	}))
	s, _ := newSubmissionServiceFor(t, store)

	slot, err := s.SubmitPit(ctx, "254", "alice", form("drivetrain", "swerve"))
	require.NoError(t, err)
	assert.Equal(t, models.SlotKey(fixedNow.UnixMilli()+5001), slot)

	data := getDoc(t, store, CollectionPitScout, "254")
	assert.Equal(t, "Cheesy Poofs", data["teamName"])
	slots := data[models.PitSubmissionsField].(map[string]any)
	require.Len(t, slots, 2)
	assert.Equal(t, "mecanum", slots[ahead].(map[string]any)["bob"].(map[string]any)["drivetrain"])
	assert.Equal(t, "swerve", slots[slot].(map[string]any)["alice"].(map[string]any)["drivetrain"])
}

func TestSubmitPit_SlotTakenConcurrentlyIsNotShared(t *testing.T) {
	store := newFaultyStore()
	taken := models.SlotKey(fixedNow.UnixMilli())
	// Another process writes the slot we are about to use between our read
	// and our write.
	store.cas = func(collection, key string, expected int64) error {
		if store.Calls("cas") > 1 {
			return nil
		}
		return store.Store.Create(context.Background(), collection, key, map[string]any{
			models.PitSubmissionsField: map[string]any{
				taken: map[string]any{"bob": map[string]any{"drivetrain": "tank"}},
			},
		})
	}
	s, metrics := newSubmissionServiceFor(t, store)

	slot, err := s.SubmitPit(context.Background(), "254", "alice", form("drivetrain", "swerve"))
	require.NoError(t, err)
	assert.NotEqual(t, taken, slot)

	slots := getDoc(t, store, CollectionPitScout, "254")[models.PitSubmissionsField].(map[string]any)
	require.Len(t, slots, 2)
	assert.Equal(t, map[string]any{"bob": map[string]any{"drivetrain": "tank"}}, slots[taken])
	assert.Contains(t, slots[slot], "alice")
	assert.NotContains(t, slots[slot], "bob")
	assert.Equal(t, 2, store.Calls("cas"))
	assert.Equal(t, 1, metrics.Get(metrics.StoreConflicts, "submit"))
}

func TestSubmitPit_StoreFault(t *testing.T) {
	boom := errors.New("disk on fire")
	store := newFaultyStore()
	store.cas = func(_, _ string, _ int64) error { return boom }
	s, metrics := newSubmissionServiceFor(t, store)

	_, err := s.SubmitPit(context.Background(), "254", "alice", form("x", 1))
	assert.ErrorIs(t, err, ErrStoreFault)
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, metrics.Get(metrics.Submissions, models.ScoutTypePit))
}

func TestSlotClock_ObserveRaisesFloor(t *testing.T) {
	now := time.UnixMilli(1000)
	c := NewSlotClock(func() time.Time { return now })

	c.Observe(4000)
	assert.Equal(t, int64(4001), c.Next())
	c.Observe(10)
	assert.Equal(t, int64(4002), c.Next())
}

func TestSlotClock_StrictlyIncreasing(t *testing.T) {
	now := time.UnixMilli(1000)
	c := NewSlotClock(func() time.Time { return now })

	assert.Equal(t, int64(1000), c.Next())
	assert.Equal(t, int64(1001), c.Next())
	now = time.UnixMilli(5000)
	assert.Equal(t, int64(5000), c.Next())
	now = time.UnixMilli(10)
	assert.Equal(t, int64(5001), c.Next())
}
