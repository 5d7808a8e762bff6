package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/sakif/prompt2json/internal/billing"
	"github.com/sakif/prompt2json/internal/model"
	"github.com/sakif/prompt2json/internal/version"
)

type VersionResponse struct {
	Version string `json:"version"`
}

// HandleVersion reports the build version.
//
// HTTP: GET /version
func HandleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, VersionResponse{Version: version.Version})
}

// PlanView is a catalog plan with its derived annual price.
type PlanView struct {
	model.Plan
	AnnualMonthlyPrice *int `json:"annual_monthly_price"`
}

type PlansResponse struct {
	Plans []PlanView `json:"plans"`
}

// PlansHandler serves the pricing catalog. The catalog is loaded once at
// startup and never changes, so the response is built once too.
type PlansHandler struct {
	resp PlansResponse
}

func NewPlansHandler(catalog *billing.Catalog) *PlansHandler {
	views := make([]PlanView, 0, len(catalog.Plans))
	for _, p := range catalog.Plans {
		views = append(views, PlanView{Plan: p, AnnualMonthlyPrice: p.AnnualMonthlyPrice()})
	}
	return &PlansHandler{resp: PlansResponse{Plans: views}}
}

// HandleList returns every plan.
//
// HTTP: GET /plans
func (h *PlansHandler) HandleList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.resp)
}

// HealthChecker is anything the readiness probe can ping.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthCheck names one dependency of the readiness probe.
type HealthCheck struct {
	Name    string
	Checker HealthChecker
}

type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	checks  []HealthCheck
	timeout time.Duration
}

func NewHealthHandler(checks ...HealthCheck) *HealthHandler {
	return &HealthHandler{checks: checks, timeout: 5 * time.Second}
}

// Healthz answers 200 whenever the process is serving.
//
// HTTP: GET /healthz
func (h *HealthHandler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// Readyz pings every dependency and answers 503 if any fails. The body
// names the failed check but not its error.
//
// HTTP: GET /readyz
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	resp := HealthResponse{Status: "ok", Checks: make(map[string]string, len(h.checks))}
	status := http.StatusOK

	for _, c := range h.checks {
		if err := c.Checker.Ping(ctx); err != nil {
			resp.Checks[c.Name] = "error"
			resp.Status = "unhealthy"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[c.Name] = "ok"
	}

	writeJSON(w, status, resp)
}

// NotFound and MethodNotAllowed replace chi's plain-text defaults so that
// every response stays JSON.
func NotFound(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "Not found"})
}

func MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "Method not allowed"})
}
