package services

import (
	"context"
	"errors"
	"fmt"
	"scoutd/internal/docstore"
	"scoutd/internal/models"
	"scoutd/internal/providers"
	"scoutd/internal/structures"
	"sort"
	"strings"
	"time"
)

const defaultClaimMaxAttempts = 5

// Claim toggle outcomes reported to metrics.
const (
	claimOutcomeClaimed  = "claimed"
	claimOutcomeReleased = "released"
	claimOutcomeDenied   = "denied"
)

type ClaimServiceInterface interface {
	GetStatus(ctx context.Context, team, match string) (models.ClaimLease, error)
	Toggle(ctx context.Context, team, match, submitter string) (models.ClaimLease, error)
	ListByMatch(ctx context.Context, match string) ([]models.ClaimLease, error)
}

// ForbiddenError carries the lease that blocked a toggle.
type ForbiddenError struct {
	Lease models.ClaimLease
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("match %s for team %s is claimed by %s", e.Lease.MatchNumber, e.Lease.TeamNumber, e.Lease.Holder)
}

func (e *ForbiddenError) Unwrap() error {
	return ErrForbidden
}

type ClaimService struct {
	store       docstore.Store
	logger      providers.Logger
	metrics     providers.MetricsProviderInterface
	now         func() time.Time
	maxAttempts int
}

func NewClaimService(conf *structures.Config, store docstore.Store, logger providers.Logger, metrics providers.MetricsProviderInterface) ClaimServiceInterface {
	return newClaimService(conf, store, logger, metrics, time.Now)
}

func newClaimService(conf *structures.Config, store docstore.Store, logger providers.Logger, metrics providers.MetricsProviderInterface, now func() time.Time) *ClaimService {
	attempts := conf.Scouting.ClaimMaxAttempts
	if attempts <= 0 {
		attempts = defaultClaimMaxAttempts
	}
	return &ClaimService{
		store:       store,
		logger:      logger,
		metrics:     metrics,
		now:         now,
		maxAttempts: attempts,
	}
}

func normalizeLeaseID(team, match string) (string, string, error) {
	team, match = strings.TrimSpace(team), strings.TrimSpace(match)
	if team == "" {
		return "", "", badRequest("team number is required")
	}
	if match == "" {
		return "", "", badRequest("match number is required")
	}
	return team, match, nil
}

// read returns the current lease and the version it was read at; version 0
// means no lease document exists yet.
func (s *ClaimService) read(ctx context.Context, team, match string) (models.ClaimLease, int64, error) {
	doc, err := s.store.Get(ctx, CollectionClaims, models.LeaseKey(team, match))
	if errors.Is(err, docstore.ErrNotFound) {
		return models.UnclaimedLease(team, match), 0, nil
	}
	if err != nil {
		return models.ClaimLease{}, 0, storeFault("read claim "+models.LeaseKey(team, match), err)
	}
	return models.LeaseFromMap(team, match, doc.Data), doc.Version, nil
}

func (s *ClaimService) GetStatus(ctx context.Context, team, match string) (models.ClaimLease, error) {
	team, match, err := normalizeLeaseID(team, match)
	if err != nil {
		return models.ClaimLease{}, err
	}
	lease, _, err := s.read(ctx, team, match)
	return lease, err
}

// Toggle claims an unclaimed lease for submitter, or releases it when
// submitter already holds it. A lease held by someone else is left alone
// and a *ForbiddenError is returned. Every write is conditional on the
// version that was read; on a conflict the lease is read again and the
// decision is made anew.
func (s *ClaimService) Toggle(ctx context.Context, team, match, submitter string) (models.ClaimLease, error) {
	team, match, err := normalizeLeaseID(team, match)
	if err != nil {
		return models.ClaimLease{}, err
	}
	submitter = strings.TrimSpace(submitter)
	if submitter == "" {
		return models.ClaimLease{}, badRequest("username is required")
	}

	key := models.LeaseKey(team, match)
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		current, version, err := s.read(ctx, team, match)
		if err != nil {
			return models.ClaimLease{}, err
		}

		var next models.ClaimLease
		var outcome string
		switch {
		case !current.IsClaimed():
			next, outcome = current.Claim(submitter, s.now()), claimOutcomeClaimed
		case current.Holder == submitter:
			next, outcome = current.Release(), claimOutcomeReleased
		default:
			s.metrics.IncClaimTransitions(claimOutcomeDenied)
			s.logger.Infof(providers.TypePost, "Claim denied: %s requested by %s, held by %s", key, submitter, current.Holder)
			return current, &ForbiddenError{Lease: current}
		}

		err = s.store.CompareAndSwap(ctx, CollectionClaims, key, version, next.ToMap())
		if err == nil {
			s.metrics.IncClaimTransitions(outcome)
			s.logger.Infof(providers.TypePost, "Claim %s: %s by %s", outcome, key, submitter)
			return next, nil
		}
		if !errors.Is(err, docstore.ErrConflict) {
			return models.ClaimLease{}, storeFault("swap claim "+key, err)
		}
		s.metrics.IncStoreConflicts("claim")
		s.logger.Debugf(providers.TypePost, "Claim %s changed concurrently (attempt %d/%d)", key, attempt, s.maxAttempts)
	}

	return models.ClaimLease{}, storeFault("swap claim "+key, fmt.Errorf("gave up after %d attempts: %w", s.maxAttempts, docstore.ErrConflict))
}

// ListByMatch returns every stored lease for match ordered by team.
func (s *ClaimService) ListByMatch(ctx context.Context, match string) ([]models.ClaimLease, error) {
	match = strings.TrimSpace(match)
	if match == "" {
		return nil, badRequest("match number is required")
	}

	docs, err := s.store.List(ctx, CollectionClaims)
	if err != nil {
		return nil, storeFault("list claims", err)
	}

	leases := make([]models.ClaimLease, 0)
	for _, doc := range docs {
		team, keyMatch, ok := models.ParseLeaseKey(doc.Key)
		if !ok || keyMatch != match {
			continue
		}
		leases = append(leases, models.LeaseFromMap(team, match, doc.Data))
	}

	sort.SliceStable(leases, func(i, j int) bool {
		return leases[i].TeamNumber < leases[j].TeamNumber
	})
	return leases, nil
}
