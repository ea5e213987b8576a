package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"folio_tracker/internal/format"
	"folio_tracker/internal/middleware"
	"folio_tracker/internal/models"
	"folio_tracker/internal/services"
)

// HoldingsHandler manages equities, bullion and cash.
type HoldingsHandler struct {
	tracker *services.Tracker
	logger  *zap.Logger
}

// NewHoldingsHandler creates a new HoldingsHandler.
func NewHoldingsHandler(d *Dependencies) *HoldingsHandler {
	return &HoldingsHandler{tracker: d.Tracker, logger: d.Logger}
}

// ListEquities returns every equity holding.
func (h *HoldingsHandler) ListEquities(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.logger, http.StatusOK, h.tracker.Equities())
}

type equityRequest struct {
	Symbol string `json:"symbol"`
	Shares *int64 `json:"shares"`
}

// AddEquity adds an equity or changes its share count.
func (h *HoldingsHandler) AddEquity(w http.ResponseWriter, r *http.Request) {
	var req equityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	var v middleware.Validation
	req.Symbol = middleware.SanitizeString(req.Symbol)
	v.Check(req.Symbol != "", "symbol", "symbol is required")
	v.Check(req.Shares != nil, "shares", "shares is required")
	if err := v.Err(); err != nil {
		writeError(w, h.logger, err)
		return
	}

	e, err := h.tracker.AddEquity(req.Symbol, *req.Shares)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, e)
}

// RemoveEquity removes one equity.
func (h *HoldingsHandler) RemoveEquity(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	if err := h.tracker.RemoveEquity(symbol); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemoveAllEquity removes every equity.
func (h *HoldingsHandler) RemoveAllEquity(w http.ResponseWriter, r *http.Request) {
	n, err := h.tracker.RemoveAllEquity()
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, map[string]int64{"removed": n})
}

// ListBullion returns every metal holding.
func (h *HoldingsHandler) ListBullion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.logger, http.StatusOK, h.tracker.Bullion())
}

type bullionRequest struct {
	Ounces  *float64 `json:"ounces"`
	Premium *float64 `json:"premium"`
}

// SetBullion stores the ounces and premium of the metal in the path.
// Omitted fields keep their value.
func (h *HoldingsHandler) SetBullion(w http.ResponseWriter, r *http.Request) {
	var req bullionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	metal := strings.ToLower(strings.TrimSpace(chi.URLParam(r, "metal")))
	b := models.Bullion{Metal: metal}
	for _, cur := range h.tracker.Bullion() {
		if cur.Metal == metal {
			b = cur
		}
	}
	if req.Ounces != nil {
		b.Ounces = *req.Ounces
	}
	if req.Premium != nil {
		b.Premium = *req.Premium
	}

	if err := h.tracker.SetBullion(b); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, b)
}

type cashRequest struct {
	Value any `json:"value"`
}

// GetCash returns the cash balance.
func (h *HoldingsHandler) GetCash(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.logger, http.StatusOK, map[string]float64{"value": h.tracker.Cash()})
}

// SetCash stores the cash balance. The value may be a number or a
// formatted string such as "$1,234.50".
func (h *HoldingsHandler) SetCash(w http.ResponseWriter, r *http.Request) {
	var req cashRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	var v middleware.Validation
	var value float64
	switch x := req.Value.(type) {
	case float64:
		value = x
	case string:
		var ok bool
		value, ok = format.ParseAmount(x)
		v.Check(ok, "value", "value must be a number >= 0")
	default:
		v.Check(false, "value", "value is required")
	}
	if err := v.Err(); err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.tracker.SetCash(value); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, map[string]float64{"value": value})
}
