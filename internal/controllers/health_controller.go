package controllers

import (
	"context"
	"net/http"
	"scoutd/internal/docstore"
	"scoutd/internal/structures"
	"time"

	json "github.com/goccy/go-json"
)

const healthCheckTimeout = 2 * time.Second

// HealthController reports liveness plus whether the document store still
// answers reads.
type HealthController struct {
	store   docstore.Store
	driver  string
	started time.Time
	now     func() time.Time
}

type healthReport struct {
	Status        string  `json:"status"`
	Uptime        string  `json:"uptime"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Store         string  `json:"store"`
	StoreError    string  `json:"store_error,omitempty"`
}

func NewHealthController(conf *structures.Config, store docstore.Store) *HealthController {
	return &HealthController{
		store:   store,
		driver:  conf.Store.Driver,
		started: time.Now(),
		now:     time.Now,
	}
}

func (hc *HealthController) report(ctx context.Context) (healthReport, int) {
	uptime := hc.now().Sub(hc.started)
	rep := healthReport{
		Status:        "ok",
		Uptime:        uptime.Truncate(time.Second).String(),
		UptimeSeconds: uptime.Seconds(),
		Store:         hc.driver,
	}

	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()
	if _, err := hc.store.Exists(ctx, "health", "ping"); err != nil {
		rep.Status = "degraded"
		rep.StoreError = err.Error()
		return rep, http.StatusServiceUnavailable
	}
	return rep, http.StatusOK
}

// Health handles GET /health.
func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	rep, code := hc.report(r.Context())

	body, err := json.Marshal(rep)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(code)
	_, _ = w.Write(body)
}
