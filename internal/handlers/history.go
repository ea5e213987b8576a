package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"folio_tracker/internal/models"
	"folio_tracker/internal/services"
)

const (
	defaultHistory = 50
	maxHistory     = 500
)

// HistoryHandler lists recent fetch batches.
type HistoryHandler struct {
	history *services.History
	logger  *zap.Logger
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(d *Dependencies) *HistoryHandler {
	return &HistoryHandler{history: d.History, logger: d.Logger}
}

// List returns the most recent fetch batches, newest first.
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", defaultHistory, maxHistory)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	runs, err := h.history.Recent(limit)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if runs == nil {
		runs = []*models.FetchHistory{}
	}
	writeJSON(w, h.logger, http.StatusOK, runs)
}
