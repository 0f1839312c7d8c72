package services

import (
	"cmp"
	"context"
	"scoutd/internal/docstore"
	"scoutd/internal/models"
	"scoutd/internal/providers"
	"slices"
	"strings"
)

type AggregationServiceInterface interface {
	MatchRecords(ctx context.Context) ([]models.ScoutRecord, error)
	PitRecords(ctx context.Context) ([]models.ScoutRecord, error)
	AllInstances(ctx context.Context) (*models.Instances, error)
}

// AggregationService flattens the nested team documents into one record
// per submission. It only reads.
type AggregationService struct {
	store  docstore.Store
	logger providers.Logger
}

func NewAggregationService(store docstore.Store, logger providers.Logger) AggregationServiceInterface {
	return &AggregationService{store: store, logger: logger}
}

func (s *AggregationService) MatchRecords(ctx context.Context) ([]models.ScoutRecord, error) {
	docs, err := s.store.List(ctx, CollectionMatchScout)
	if err != nil {
		return nil, storeFault("list "+CollectionMatchScout, err)
	}

	records := make([]models.ScoutRecord, 0, len(docs))
	for _, doc := range docs {
		for label, entry := range doc.Data {
			match, ok := models.ParseMatchLabel(label)
			if !ok {
				continue
			}
			submitters, ok := entry.(map[string]any)
			if !ok {
				s.logger.Warnf(providers.TypeGet, "Skipping malformed %s/%s.%s", CollectionMatchScout, doc.Key, label)
				continue
			}
			for username, raw := range submitters {
				fields, ok := raw.(map[string]any)
				if !ok {
					continue
				}
				records = append(records, models.ScoutRecord{
					TeamNumber:  doc.Key,
					MatchNumber: match,
					Username:    username,
					Fields:      models.PayloadFromMap(fields),
				})
			}
		}
	}

	slices.SortStableFunc(records, func(a, b models.ScoutRecord) int {
		return cmp.Or(
			strings.Compare(a.TeamNumber, b.TeamNumber),
			models.CompareNumeric(a.MatchNumber, b.MatchNumber),
			strings.Compare(a.Username, b.Username),
		)
	})
	return records, nil
}

func (s *AggregationService) PitRecords(ctx context.Context) ([]models.ScoutRecord, error) {
	docs, err := s.store.List(ctx, CollectionPitScout)
	if err != nil {
		return nil, storeFault("list "+CollectionPitScout, err)
	}

	records := make([]models.ScoutRecord, 0, len(docs))
	for _, doc := range docs {
		slots, ok := doc.Data[models.PitSubmissionsField].(map[string]any)
		if !ok {
			continue
		}
		for slot, entry := range slots {
			submitters, ok := entry.(map[string]any)
			if !ok {
				s.logger.Warnf(providers.TypeGet, "Skipping malformed %s/%s.%s", CollectionPitScout, doc.Key, slot)
				continue
			}
			for username, raw := range submitters {
				fields, ok := raw.(map[string]any)
				if !ok {
					continue
				}
				records = append(records, models.ScoutRecord{
					TeamNumber:    doc.Key,
					SubmissionKey: slot,
					Username:      username,
					Fields:        models.PayloadFromMap(fields),
				})
			}
		}
	}

	slices.SortStableFunc(records, func(a, b models.ScoutRecord) int {
		return cmp.Or(
			strings.Compare(a.TeamNumber, b.TeamNumber),
			compareSlots(a.SubmissionKey, b.SubmissionKey),
			strings.Compare(a.Username, b.Username),
		)
	})
	return records, nil
}

func compareSlots(a, b string) int {
	at, aok := models.SlotTime(a)
	bt, bok := models.SlotTime(b)
	if aok && bok {
		return cmp.Or(cmp.Compare(at, bt), strings.Compare(a, b))
	}
	return strings.Compare(a, b)
}

// AllInstances returns both listings with every record tagged by scoutType.
func (s *AggregationService) AllInstances(ctx context.Context) (*models.Instances, error) {
	pit, err := s.PitRecords(ctx)
	if err != nil {
		return nil, err
	}
	match, err := s.MatchRecords(ctx)
	if err != nil {
		return nil, err
	}

	out := &models.Instances{
		PitScoutInstances:   make([]models.ScoutRecord, len(pit)),
		MatchScoutInstances: make([]models.ScoutRecord, len(match)),
	}
	for i, r := range pit {
		out.PitScoutInstances[i] = r.Tagged(models.ScoutTypePit)
	}
	for i, r := range match {
		out.MatchScoutInstances[i] = r.Tagged(models.ScoutTypeMatch)
	}
	return out, nil
}
