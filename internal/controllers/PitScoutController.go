package controllers

import (
	"net/http"
	"scoutd/internal/export"
	"scoutd/internal/models"
	"scoutd/internal/providers"
	"scoutd/internal/services"
)

type PitScoutController struct {
	baseController
	submissions services.SubmissionServiceInterface
	aggregation services.AggregationServiceInterface
}

func NewPitScoutController(logger providers.Logger, cache providers.CacheProviderInterface, submissions services.SubmissionServiceInterface, aggregation services.AggregationServiceInterface) *PitScoutController {
	return &PitScoutController{
		baseController: baseController{logger: logger, cache: cache},
		submissions:    submissions,
		aggregation:    aggregation,
	}
}

// Submit handles POST /submit-pitscout/{team}.
func (pc *PitScoutController) Submit(w http.ResponseWriter, r *http.Request) {
	body, err := readFormBody(w, r)
	if err != nil {
		pc.writeError(w, r, err)
		return
	}
	if body.MatchNumber != "" {
		// Pit forms have no match; keep the value as an ordinary answer.
		body.Fields = body.Fields.With("matchNumber", models.StringValue(body.MatchNumber))
	}
	slot, err := pc.submissions.SubmitPit(r.Context(), r.PathValue("team"), body.Username, body.Fields)
	if err != nil {
		pc.writeError(w, r, err)
		return
	}
	pc.cache.Purge()
	pc.writeJSON(w, http.StatusOK, successResponse{Success: true, SubmissionKey: slot})
}

func (pc *PitScoutController) List(w http.ResponseWriter, r *http.Request) {
	pc.serveFromCacheOrCompute(w, r, cacheKeyPitList, contentTypeJSON, func() ([]byte, error) {
		records, err := pc.aggregation.PitRecords(r.Context())
		if err != nil {
			return nil, err
		}
		return encodeJSON(records)
	})
}

func (pc *PitScoutController) ExportCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Disposition", "attachment; filename="+export.PitSheet.Filename)
	pc.serveFromCacheOrCompute(w, r, cacheKeyPitCSV, contentTypeCSV, func() ([]byte, error) {
		records, err := pc.aggregation.PitRecords(r.Context())
		if err != nil {
			return nil, err
		}
		return export.PitSheet.Encode(records)
	})
}

// AllInstances handles GET /all-scout-instances.
func (pc *PitScoutController) AllInstances(w http.ResponseWriter, r *http.Request) {
	pc.serveFromCacheOrCompute(w, r, cacheKeyInstances, contentTypeJSON, func() ([]byte, error) {
		all, err := pc.aggregation.AllInstances(r.Context())
		if err != nil {
			return nil, err
		}
		return encodeJSON(all)
	})
}
