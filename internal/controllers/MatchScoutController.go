package controllers

import (
	"net/http"
	"scoutd/internal/export"
	"scoutd/internal/models"
	"scoutd/internal/providers"
	"scoutd/internal/services"
)

type MatchScoutController struct {
	baseController
	submissions services.SubmissionServiceInterface
	claims      services.ClaimServiceInterface
	aggregation services.AggregationServiceInterface
}

type buttonResponse struct {
	Status models.ClaimStatus `json:"status"`
	Holder *string            `json:"holder"`
}

type claimDeniedResponse struct {
	errorResponse
	Status models.ClaimStatus `json:"status"`
	Holder string             `json:"holder"`
}

func newButtonResponse(l models.ClaimLease) buttonResponse {
	resp := buttonResponse{Status: l.Status}
	if l.IsClaimed() {
		holder := l.Holder
		resp.Holder = &holder
	}
	return resp
}

func NewMatchScoutController(logger providers.Logger, cache providers.CacheProviderInterface, submissions services.SubmissionServiceInterface, claims services.ClaimServiceInterface, aggregation services.AggregationServiceInterface) *MatchScoutController {
	return &MatchScoutController{
		baseController: baseController{logger: logger, cache: cache},
		submissions:    submissions,
		claims:         claims,
		aggregation:    aggregation,
	}
}

// Submit handles POST /matchscout/{team}.
func (mc *MatchScoutController) Submit(w http.ResponseWriter, r *http.Request) {
	body, err := readFormBody(w, r)
	if err != nil {
		mc.writeError(w, r, err)
		return
	}
	err = mc.submissions.SubmitMatch(r.Context(), r.PathValue("team"), body.MatchNumber, body.Username, body.Fields)
	if err != nil {
		mc.writeError(w, r, err)
		return
	}
	mc.cache.Purge()
	mc.writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (mc *MatchScoutController) List(w http.ResponseWriter, r *http.Request) {
	mc.serveFromCacheOrCompute(w, r, cacheKeyMatchList, contentTypeJSON, func() ([]byte, error) {
		records, err := mc.aggregation.MatchRecords(r.Context())
		if err != nil {
			return nil, err
		}
		return encodeJSON(records)
	})
}

func (mc *MatchScoutController) ExportCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Disposition", "attachment; filename="+export.MatchSheet.Filename)
	mc.serveFromCacheOrCompute(w, r, cacheKeyMatchCSV, contentTypeCSV, func() ([]byte, error) {
		records, err := mc.aggregation.MatchRecords(r.Context())
		if err != nil {
			return nil, err
		}
		return export.MatchSheet.Encode(records)
	})
}

// MatchStatus handles GET /matchscout/match/{matchId}/status.
func (mc *MatchScoutController) MatchStatus(w http.ResponseWriter, r *http.Request) {
	leases, err := mc.claims.ListByMatch(r.Context(), r.PathValue("matchId"))
	if err != nil {
		mc.writeError(w, r, err)
		return
	}
	mc.writeJSON(w, http.StatusOK, leases)
}

func (mc *MatchScoutController) ButtonStatus(w http.ResponseWriter, r *http.Request) {
	lease, err := mc.claims.GetStatus(r.Context(), r.PathValue("team"), r.PathValue("match"))
	if err != nil {
		mc.writeError(w, r, err)
		return
	}
	mc.writeJSON(w, http.StatusOK, newButtonResponse(lease))
}

// ToggleButton claims or releases the lease for the username in the body.
func (mc *MatchScoutController) ToggleButton(w http.ResponseWriter, r *http.Request) {
	body, err := readFormBody(w, r)
	if err != nil {
		mc.writeError(w, r, err)
		return
	}
	lease, err := mc.claims.Toggle(r.Context(), r.PathValue("team"), r.PathValue("match"), body.Username)
	if err != nil {
		mc.writeError(w, r, err)
		return
	}
	mc.writeJSON(w, http.StatusOK, newButtonResponse(lease))
}
