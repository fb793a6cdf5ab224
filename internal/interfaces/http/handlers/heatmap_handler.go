package handlers

import (
	"net/http"

	"github.com/turtacn/Resonance-Intelligence/internal/application/heatmap"
	"github.com/turtacn/Resonance-Intelligence/internal/infrastructure/monitoring/logging"
)

// HeatmapHandler serves single-grid lookups and the views built on them.
type HeatmapHandler struct {
	svc    heatmap.Service
	logger logging.Logger
}

func NewHeatmapHandler(svc heatmap.Service, logger logging.Logger) *HeatmapHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &HeatmapHandler{svc: svc, logger: logger.Named("heatmap-handler")}
}

// RankingRequest is a heatmap request plus ranking bounds. Score is the
// minimum for top lists and the maximum for bottom lists.
type RankingRequest struct {
	heatmap.Request
	N     int      `json:"n,omitempty"`
	Score *float64 `json:"score,omitempty"`
}

// Locate handles POST /api/v1/heatmap.
func (h *HeatmapHandler) Locate(w http.ResponseWriter, r *http.Request) {
	var req heatmap.Request
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	res, err := h.svc.Locate(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Summary handles POST /api/v1/heatmap/summary.
func (h *HeatmapHandler) Summary(w http.ResponseWriter, r *http.Request) {
	var req heatmap.Request
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	res, err := h.svc.Summary(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Top handles POST /api/v1/heatmap/top.
func (h *HeatmapHandler) Top(w http.ResponseWriter, r *http.Request) {
	var req RankingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	score := heatmap.DefaultMinScore
	if req.Score != nil {
		score = *req.Score
	}
	res, err := h.svc.Top(r.Context(), req.Request, req.N, score)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Bottom handles POST /api/v1/heatmap/bottom.
func (h *HeatmapHandler) Bottom(w http.ResponseWriter, r *http.Request) {
	var req RankingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	score := heatmap.DefaultMaxScore
	if req.Score != nil {
		score = *req.Score
	}
	res, err := h.svc.Bottom(r.Context(), req.Request, req.N, score)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

//Personal.AI order the ending
