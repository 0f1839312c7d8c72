package services

import (
	"context"
	"errors"
	"fmt"
	"scoutd/internal/docstore"
	"scoutd/internal/models"
	"scoutd/internal/providers"
	"scoutd/internal/structures"
	"strings"
	"time"
)

// TimestampLayout renders submission times like "03/14/2025, 02:07:09 PM".
const TimestampLayout = "01/02/2006, 03:04:05 PM"

const pitAppendMaxAttempts = 64

type SubmissionServiceInterface interface {
	SubmitMatch(ctx context.Context, team, match, submitter string, fields models.FormPayload) error
	SubmitPit(ctx context.Context, team, submitter string, fields models.FormPayload) (string, error)
}

type SubmissionService struct {
	store    docstore.Store
	logger   providers.Logger
	metrics  providers.MetricsProviderInterface
	location *time.Location
	now      func() time.Time
	slots    *SlotClock
}

func NewSubmissionService(conf *structures.Config, store docstore.Store, logger providers.Logger, metrics providers.MetricsProviderInterface) (SubmissionServiceInterface, error) {
	return newSubmissionService(conf, store, logger, metrics, time.Now)
}

func newSubmissionService(conf *structures.Config, store docstore.Store, logger providers.Logger, metrics providers.MetricsProviderInterface, now func() time.Time) (*SubmissionService, error) {
	loc, err := time.LoadLocation(conf.Scouting.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", conf.Scouting.Timezone, err)
	}
	return &SubmissionService{
		store:    store,
		logger:   logger,
		metrics:  metrics,
		location: loc,
		now:      now,
		slots:    NewSlotClock(now),
	}, nil
}

func (s *SubmissionService) timestamp() string {
	return s.now().In(s.location).Format(TimestampLayout)
}

// SubmitMatch stores fields at matchscout/{team}.match{match}.{submitter}.
func (s *SubmissionService) SubmitMatch(ctx context.Context, team, match, submitter string, fields models.FormPayload) error {
	team, match, submitter = strings.TrimSpace(team), strings.TrimSpace(match), strings.TrimSpace(submitter)
	switch {
	case team == "":
		return badRequest("team number is required")
	case submitter == "":
		return badRequest("username is required")
	case match == "":
		return badRequest("matchNumber is required")
	}

	path := []string{models.MatchLabel(match), submitter}
	payload := fields.WithTimestamp(s.timestamp())
	if err := s.merge(ctx, CollectionMatchScout, team, path, payload.ToMap()); err != nil {
		return err
	}
	s.metrics.IncSubmissions(models.ScoutTypeMatch)
	s.logger.Infof(providers.TypePost, "Match form merged: team=%s match=%s username=%s", team, match, submitter)
	return nil
}

// SubmitPit appends fields under a fresh slot key and returns that key.
func (s *SubmissionService) SubmitPit(ctx context.Context, team, submitter string, fields models.FormPayload) (string, error) {
	team, submitter = strings.TrimSpace(team), strings.TrimSpace(submitter)
	switch {
	case team == "":
		return "", badRequest("team number is required")
	case submitter == "":
		return "", badRequest("username is required")
	}

	payload := fields.WithTimestamp(s.timestamp())
	slot, err := s.appendPit(ctx, team, map[string]any{submitter: payload.ToMap()})
	if err != nil {
		return "", err
	}
	s.metrics.IncSubmissions(models.ScoutTypePit)
	s.logger.Infof(providers.TypePost, "Pit form appended: team=%s slot=%s username=%s", team, slot, submitter)
	return slot, nil
}

// appendPit stores entry under a slot newer than every slot already in the
// team's pit document. The write is conditional on the version that was
// read, so a slot taken by another process in between is seen on the next
// attempt. Each lost attempt means another writer succeeded.
func (s *SubmissionService) appendPit(ctx context.Context, team string, entry map[string]any) (string, error) {
	for attempt := 1; attempt <= pitAppendMaxAttempts; attempt++ {
		var version int64
		data := map[string]any{}
		doc, err := s.store.Get(ctx, CollectionPitScout, team)
		switch {
		case errors.Is(err, docstore.ErrNotFound):
		case err != nil:
			return "", storeFault("read "+CollectionPitScout+"/"+team, err)
		default:
			version, data = doc.Version, doc.Data
		}

		slots := make(map[string]any)
		if stored, ok := data[models.PitSubmissionsField].(map[string]any); ok {
			for key, value := range stored {
				if ms, ok := models.SlotTime(key); ok {
					s.slots.Observe(ms)
				}
				slots[key] = value
			}
		}
		slot := models.SlotKey(s.slots.Next())
		slots[slot] = entry

		next := make(map[string]any, len(data)+1)
		for key, value := range data {
			next[key] = value
		}
		next[models.PitSubmissionsField] = slots

		err = s.store.CompareAndSwap(ctx, CollectionPitScout, team, version, next)
		if err == nil {
			return slot, nil
		}
		if !errors.Is(err, docstore.ErrConflict) {
			return "", storeFault("append "+CollectionPitScout+"/"+team, err)
		}
		s.metrics.IncStoreConflicts("submit")
		s.logger.Debugf(providers.TypePost, "Pit document %s changed concurrently (attempt %d/%d)", team, attempt, pitAppendMaxAttempts)
	}
	return "", storeFault("append "+CollectionPitScout+"/"+team, fmt.Errorf("gave up after %d attempts: %w", pitAppendMaxAttempts, docstore.ErrConflict))
}

// merge creates the team document holding only value at path, or updates
// just that path when the document already exists. A create that loses a
// race against a concurrent creator is retried as a path-scoped merge.
func (s *SubmissionService) merge(ctx context.Context, collection, key string, path []string, value map[string]any) error {
	exists, err := s.store.Exists(ctx, collection, key)
	if err != nil {
		return storeFault("read "+collection+"/"+key, err)
	}

	if !exists {
		err = s.store.Create(ctx, collection, key, nest(path, value))
		if err == nil {
			return nil
		}
		if !errors.Is(err, docstore.ErrExists) {
			return storeFault("create "+collection+"/"+key, err)
		}
		s.metrics.IncStoreConflicts("submit")
		s.logger.Debugf(providers.TypePost, "Document %s/%s created concurrently, merging instead", collection, key)
	}

	if err := s.store.Merge(ctx, collection, key, path, value); err != nil {
		return storeFault("merge "+collection+"/"+key, err)
	}
	return nil
}

// nest builds {path[0]: {path[1]: ... value}}.
func nest(path []string, value map[string]any) map[string]any {
	var node any = value
	for i := len(path) - 1; i >= 0; i-- {
		node = map[string]any{path[i]: node}
	}
	return node.(map[string]any)
}
