package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"folio_tracker/internal/services"
)

// RSIHandler serves the RSI table of one security.
type RSIHandler struct {
	rsi    *services.RSIService
	logger *zap.Logger
}

// NewRSIHandler creates a new RSIHandler.
func NewRSIHandler(d *Dependencies) *RSIHandler {
	return &RSIHandler{rsi: d.RSI, logger: d.Logger}
}

// Get fetches a year of daily history for the symbol in the path and
// returns its RSI table, newest first.
func (h *RSIHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.rsi.View(r.Context(), chi.URLParam(r, "symbol"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, view)
}

// Stop cancels a running history fetch.
func (h *RSIHandler) Stop(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.logger, http.StatusOK, map[string]bool{"stopped": h.rsi.Stop()})
}
