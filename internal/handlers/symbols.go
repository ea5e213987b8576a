package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apperrors "folio_tracker/internal/errors"
	"folio_tracker/internal/format"
	"folio_tracker/internal/middleware"
	"folio_tracker/internal/services"
)

const (
	defaultCompletions = 20
	maxCompletions     = 200
)

// SymbolsHandler serves symbol completion and directory refreshes.
type SymbolsHandler struct {
	symbols *services.SymbolService
	logger  *zap.Logger
}

// NewSymbolsHandler creates a new SymbolsHandler.
func NewSymbolsHandler(d *Dependencies) *SymbolsHandler {
	return &SymbolsHandler{symbols: d.Symbols, logger: d.Logger}
}

type completionResponse struct {
	Query     string                `json:"query"`
	Matches   []services.Completion `json:"matches"`
	Symbols   int                   `json:"symbols"`
	FetchedAt time.Time             `json:"fetched_at"`
}

// Search completes ?q= against the symbol directory, loading it first if
// needed. Keys shorter than two characters match nothing.
func (h *SymbolsHandler) Search(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", defaultCompletions, maxCompletions)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := h.symbols.Ensure(r.Context()); err != nil {
		writeError(w, h.logger, err)
		return
	}

	q := middleware.SanitizeString(r.URL.Query().Get("q"))
	matches := h.symbols.Complete(q, limit)
	if matches == nil {
		matches = []services.Completion{}
	}
	writeJSON(w, h.logger, http.StatusOK, completionResponse{
		Query:     q,
		Matches:   matches,
		Symbols:   h.symbols.Len(),
		FetchedAt: h.symbols.FetchedAt(),
	})
}

// Name returns the security name of one symbol.
func (h *SymbolsHandler) Name(w http.ResponseWriter, r *http.Request) {
	symbol := format.UpperCase(chi.URLParam(r, "symbol"))
	if err := h.symbols.Ensure(r.Context()); err != nil {
		writeError(w, h.logger, err)
		return
	}
	name := h.symbols.Name(symbol)
	if name == "" {
		writeError(w, h.logger, apperrors.NotFound("symbol "+symbol))
		return
	}
	writeJSON(w, h.logger, http.StatusOK, map[string]string{"symbol": symbol, "name": name})
}

// Refresh downloads the symbol directory again.
func (h *SymbolsHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.symbols.Refresh(r.Context()); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, map[string]any{
		"symbols":    h.symbols.Len(),
		"fetched_at": h.symbols.FetchedAt(),
	})
}
