package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/turtacn/Resonance-Intelligence/internal/application/targeting"
	"github.com/turtacn/Resonance-Intelligence/internal/infrastructure/monitoring/logging"
)

// LocationHandler serves saved identified-location sets.
type LocationHandler struct {
	svc    targeting.Service
	logger logging.Logger
}

func NewLocationHandler(svc targeting.Service, logger logging.Logger) *LocationHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &LocationHandler{svc: svc, logger: logger.Named("location-handler")}
}

// Current handles GET /api/v1/locations (most recent set).
func (h *LocationHandler) Current(w http.ResponseWriter, r *http.Request) {
	h.identified(w, r, "")
}

// Get handles GET /api/v1/locations/{tag}.
func (h *LocationHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.identified(w, r, chi.URLParam(r, "tag"))
}

func (h *LocationHandler) identified(w http.ResponseWriter, r *http.Request, tag string) {
	set, err := h.svc.Identified(r.Context(), tag)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, set)
}

// Polygon handles GET /api/v1/locations/{tag}/polygon.
func (h *LocationHandler) Polygon(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Polygon(r.Context(), chi.URLParam(r, "tag"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// History handles GET /api/v1/locations/history.
func (h *LocationHandler) History(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.History(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

//Personal.AI order the ending
