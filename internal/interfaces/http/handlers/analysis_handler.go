package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/turtacn/Resonance-Intelligence/internal/application/campaign"
	"github.com/turtacn/Resonance-Intelligence/internal/application/reporting"
	"github.com/turtacn/Resonance-Intelligence/internal/application/targeting"
	"github.com/turtacn/Resonance-Intelligence/internal/infrastructure/monitoring/logging"
)

// ReportGenerator renders and stores the campaign report of an analysis.
type ReportGenerator interface {
	Generate(ctx context.Context, key string) (*reporting.ReportResult, error)
}

// AnalysisHandler serves composite analyses and everything derived from one.
type AnalysisHandler struct {
	analyses campaign.Service
	targets  targeting.Service
	reports  ReportGenerator
	logger   logging.Logger
}

func NewAnalysisHandler(analyses campaign.Service, targets targeting.Service, reports ReportGenerator, logger logging.Logger) *AnalysisHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &AnalysisHandler{
		analyses: analyses,
		targets:  targets,
		reports:  reports,
		logger:   logger.Named("analysis-handler"),
	}
}

// analysisKey reads the {key} path parameter. "latest" addresses the most
// recent analysis.
func analysisKey(r *http.Request) string {
	key := chi.URLParam(r, "key")
	if key == "latest" {
		return ""
	}
	return key
}

// Create handles POST /api/v1/analyses.
func (h *AnalysisHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req campaign.AnalysisRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	res, err := h.analyses.Analyze(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// List handles GET /api/v1/analyses.
func (h *AnalysisHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.analyses.List(r.Context(), queryInt(r, "limit", 20))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"analyses": items, "count": len(items)})
}

// Summary handles GET /api/v1/analyses/{key}.
func (h *AnalysisHandler) Summary(w http.ResponseWriter, r *http.Request) {
	res, err := h.analyses.Summary(r.Context(), analysisKey(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Structure handles GET /api/v1/analyses/{key}/structure.
func (h *AnalysisHandler) Structure(w http.ResponseWriter, r *http.Request) {
	res, err := h.analyses.Structure(r.Context(), analysisKey(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Rally handles GET /api/v1/analyses/{key}/rally.
func (h *AnalysisHandler) Rally(w http.ResponseWriter, r *http.Request) {
	res, err := h.analyses.Rally(r.Context(), analysisKey(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Goldmine handles GET /api/v1/analyses/{key}/goldmine.
func (h *AnalysisHandler) Goldmine(w http.ResponseWriter, r *http.Request) {
	res, err := h.analyses.Goldmine(r.Context(), analysisKey(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Report handles GET /api/v1/analyses/{key}/report.
func (h *AnalysisHandler) Report(w http.ResponseWriter, r *http.Request) {
	res, err := h.reports.Generate(r.Context(), analysisKey(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Filter handles POST /api/v1/analyses/{key}/filter. The body carries the
// criteria object and the tag; the analysis comes from the path.
func (h *AnalysisHandler) Filter(w http.ResponseWriter, r *http.Request) {
	var req targeting.FilterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	req.AnalysisKey = analysisKey(r)
	res, err := h.targets.Filter(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

//Personal.AI order the ending
