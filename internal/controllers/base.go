package controllers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"scoutd/internal/export"
	"scoutd/internal/models"
	"scoutd/internal/providers"
	"scoutd/internal/services"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

const maxRequestBodySize = 1 << 20 // 1 MB

const (
	contentTypeJSON = "application/json"
	contentTypeCSV  = "text/csv"
)

// Response cache keys. Every successful write purges the whole cache.
const (
	cacheKeyMatchList = "matchscout:list"
	cacheKeyMatchCSV  = "matchscout:csv"
	cacheKeyPitList   = "pitscout:list"
	cacheKeyPitCSV    = "pitscout:csv"
	cacheKeyInstances = "instances"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type successResponse struct {
	Success       bool   `json:"success"`
	SubmissionKey string `json:"submissionKey,omitempty"`
}

// baseController holds what every scouting controller shares: the logger
// and the encoded response cache.
type baseController struct {
	logger providers.Logger
	cache  providers.CacheProviderInterface
}

func (bc *baseController) serveFromCacheOrCompute(w http.ResponseWriter, r *http.Request, cacheKey, contentType string, compute func() ([]byte, error)) {
	if data, ok := bc.cache.Get(cacheKey); ok {
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	generation := bc.cache.Generation()
	data, err := compute()
	if err != nil {
		bc.writeError(w, r, err)
		return
	}

	bc.cache.Set(cacheKey, data, generation)

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (bc *baseController) writeJSON(w http.ResponseWriter, status int, v any) {
	gson, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

// writeError maps service errors onto status codes. Store faults are
// logged and reported without details.
func (bc *baseController) writeError(w http.ResponseWriter, r *http.Request, err error) {
	w.Header().Del("Content-Disposition")
	var forbidden *services.ForbiddenError
	switch {
	case errors.As(err, &forbidden):
		bc.writeJSON(w, http.StatusForbidden, claimDeniedResponse{
			errorResponse: errorResponse{Error: forbidden.Error()},
			Status:        forbidden.Lease.Status,
			Holder:        forbidden.Lease.Holder,
		})
	case errors.Is(err, services.ErrBadRequest):
		bc.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, services.ErrForbidden):
		bc.writeJSON(w, http.StatusForbidden, errorResponse{Error: err.Error()})
	case errors.Is(err, export.ErrNoRecords), errors.Is(err, services.ErrNotFound):
		bc.writeJSON(w, http.StatusNotFound, errorResponse{Error: "No scouting data found"})
	default:
		bc.logger.Errorf(providers.GetLogTypeByRequestType(r.Method), "%s %s [%s]: %s", r.Method, r.URL.Path, providers.RequestID(r.Context()), err)
		bc.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal Server Error"})
	}
}

// formBody is a decoded submission: the identity fields pulled out of the
// JSON object and the remaining answers.
type formBody struct {
	Username    string
	MatchNumber string
	Fields      models.FormPayload
}

func badBody(format string, args ...any) error {
	return fmt.Errorf("%w: %s", services.ErrBadRequest, fmt.Sprintf(format, args...))
}

// readFormBody decodes a JSON object body. username and matchNumber are
// removed from the answers; matchNumber may be a string or a number but
// must hold a non-negative integer.
func readFormBody(w http.ResponseWriter, r *http.Request) (*formBody, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, badBody("request body exceeds %d bytes", tooLarge.Limit)
		}
		if errors.Is(err, io.EOF) {
			return nil, badBody("request body is empty")
		}
		return nil, badBody("request body must be a JSON object")
	}

	body := &formBody{}
	if v, ok := raw["username"]; ok {
		s, isString := v.(string)
		if !isString {
			return nil, badBody("username must be a string")
		}
		body.Username = strings.TrimSpace(s)
	}
	if v, ok := raw["matchNumber"]; ok && v != nil {
		fv, err := models.FieldValueOf(v)
		if err != nil || fv.Kind() == models.KindBool {
			return nil, badBody("matchNumber must be a string or a number")
		}
		body.MatchNumber = strings.TrimSpace(fv.String())
		if body.MatchNumber != "" {
			if _, err := strconv.ParseUint(body.MatchNumber, 10, 64); err != nil {
				return nil, badBody("matchNumber must be a non-negative integer, got %q", body.MatchNumber)
			}
		}
	}
	delete(raw, "username")
	delete(raw, "matchNumber")

	fields, err := models.DecodeForm(raw)
	if err != nil {
		return nil, badBody("%s", err)
	}
	body.Fields = fields
	return body, nil
}

func encodeJSON(v any) ([]byte, error) {
	return json.Marshal(v)
}
