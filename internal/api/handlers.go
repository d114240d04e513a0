package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/dealthread-monitor/internal/domain"
	"github.com/ignite/dealthread-monitor/internal/pkg/httputil"
	"github.com/ignite/dealthread-monitor/internal/service/monitor"
)

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	svc       *monitor.Service
	startTime time.Time
}

// NewHandlers creates the handler set.
func NewHandlers(svc *monitor.Service) *Handlers {
	return &Handlers{svc: svc, startTime: time.Now()}
}

// HealthCheck reports liveness.
//
//	GET /health
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, map[string]string{
		"status": "healthy",
		"uptime": time.Since(h.startTime).Round(time.Second).String(),
	})
}

// ListDeals returns the watched deals, optionally filtered by stage.
//
//	GET /api/deals?stage=contractsent&stage=qualifiedtobuy
func (h *Handlers) ListDeals(w http.ResponseWriter, r *http.Request) {
	stages := r.URL.Query()["stage"]
	deals, err := h.svc.ListDeals(r.Context(), stages)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, map[string]interface{}{"deals": deals, "count": len(deals)})
}

// GetDealReport returns the full analysis report for one deal.
//
//	GET /api/deals/{dealID}/report
func (h *Handlers) GetDealReport(w http.ResponseWriter, r *http.Request) {
	report, ok := h.assess(w, r)
	if !ok {
		return
	}
	httputil.OK(w, report)
}

// GetDealScore returns the scoring snapshot and recommendations.
//
//	GET /api/deals/{dealID}/score
func (h *Handlers) GetDealScore(w http.ResponseWriter, r *http.Request) {
	report, ok := h.assess(w, r)
	if !ok {
		return
	}
	httputil.OK(w, map[string]interface{}{
		"snapshot":        report.Snapshot,
		"recommendations": report.Recommendations,
	})
}

// GetDealCoverage returns the coverage analysis.
//
//	GET /api/deals/{dealID}/coverage
func (h *Handlers) GetDealCoverage(w http.ResponseWriter, r *http.Request) {
	report, ok := h.assess(w, r)
	if !ok {
		return
	}
	httputil.OK(w, report.Coverage)
}

// GetDealRisk returns the risk prediction.
//
//	GET /api/deals/{dealID}/risk
func (h *Handlers) GetDealRisk(w http.ResponseWriter, r *http.Request) {
	report, ok := h.assess(w, r)
	if !ok {
		return
	}
	httputil.OK(w, report.Risk)
}

// GetDealSnapshots returns persisted snapshot history.
//
//	GET /api/deals/{dealID}/snapshots?days=30&limit=20
func (h *Handlers) GetDealSnapshots(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r, "days", 30)
	limit := queryInt(r, "limit", 50)
	since := time.Now().AddDate(0, 0, -days)

	snaps, err := h.svc.SnapshotHistory(r.Context(), chi.URLParam(r, "dealID"), since, limit)
	if errors.Is(err, monitor.ErrSnapshotNotFound) {
		httputil.Unavailable(w, "snapshot storage not configured")
		return
	}
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, map[string]interface{}{"snapshots": snaps, "count": len(snaps)})
}

// GetThrottleStatus reports per-alert-type throttle state for a deal.
//
//	GET /api/deals/{dealID}/throttle
func (h *Handlers) GetThrottleStatus(w http.ResponseWriter, r *http.Request) {
	states, err := h.svc.ThrottleStatus(r.Context(), chi.URLParam(r, "dealID"))
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, map[string]interface{}{"alerts": states})
}

// EvaluateDeal runs the full evaluation cycle: snapshot diffing, alert
// throttling and delivery, persistence.
//
//	POST /api/deals/{dealID}/evaluate
func (h *Handlers) EvaluateDeal(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.EvaluateDeal(r.Context(), chi.URLParam(r, "dealID"))
	if errors.Is(err, monitor.ErrDealNotFound) {
		httputil.NotFound(w, "deal not found")
		return
	}
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, report)
}

// analyzeRequest is the ad-hoc analysis input: a deal plus its contacts.
type analyzeRequest struct {
	Deal     domain.Deal      `json:"deal"`
	Contacts []domain.Contact `json:"contacts"`
}

// AnalyzeScore scores caller-supplied contacts without touching the CRM.
//
//	POST /api/analyze/score
func (h *Handlers) AnalyzeScore(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	report := h.svc.Assess(req.Deal, req.Contacts, time.Now().UTC())
	httputil.OK(w, map[string]interface{}{
		"snapshot":        report.Snapshot,
		"recommendations": report.Recommendations,
		"coverage":        report.Coverage,
		"inferences":      report.Inferences,
	})
}

// AnalyzeRisk predicts risk for caller-supplied contacts.
//
//	POST /api/analyze/risk
func (h *Handlers) AnalyzeRisk(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	report := h.svc.Assess(req.Deal, req.Contacts, time.Now().UTC())
	httputil.OK(w, report.Risk)
}

func (h *Handlers) assess(w http.ResponseWriter, r *http.Request) (*monitor.Report, bool) {
	report, err := h.svc.AssessDeal(r.Context(), chi.URLParam(r, "dealID"))
	if errors.Is(err, monitor.ErrDealNotFound) {
		httputil.NotFound(w, "deal not found")
		return nil, false
	}
	if err != nil {
		httputil.InternalError(w, err)
		return nil, false
	}
	return report, true
}

func queryInt(r *http.Request, name string, fallback int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
