package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"folio_tracker/internal/services"
)

// PortfolioHandler serves the portfolio report and drives refreshes.
type PortfolioHandler struct {
	tracker *services.Tracker
	logger  *zap.Logger
}

// NewPortfolioHandler creates a new PortfolioHandler.
func NewPortfolioHandler(d *Dependencies) *PortfolioHandler {
	return &PortfolioHandler{tracker: d.Tracker, logger: d.Logger}
}

// portfolioResponse is the formatted report plus the tracker flags.
type portfolioResponse struct {
	Report services.Report `json:"report"`
	Flags  services.Flags  `json:"flags"`
}

func (h *PortfolioHandler) response() portfolioResponse {
	h.tracker.IsClosed()
	return portfolioResponse{Report: h.tracker.ToStrings(), Flags: h.tracker.Flags()}
}

// Get returns the last computed portfolio, formatted.
func (h *PortfolioHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.logger, http.StatusOK, h.response())
}

// Packet returns the last computed portfolio as raw numbers.
func (h *PortfolioHandler) Packet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.logger, http.StatusOK, h.tracker.Packet())
}

// Refresh fetches every quote now and returns the new report. A refresh
// already in flight answers 409.
func (h *PortfolioHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if _, err := h.tracker.Refresh(r.Context()); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, h.response())
}

// Stop cancels the running portfolio fetch.
func (h *PortfolioHandler) Stop(w http.ResponseWriter, r *http.Request) {
	stopped := h.tracker.StopMain()
	writeJSON(w, h.logger, http.StatusOK, map[string]bool{"stopped": stopped})
}

// StopAll cancels the portfolio fetch and any symbol directory or
// history fetch.
func (h *PortfolioHandler) StopAll(w http.ResponseWriter, r *http.Request) {
	h.tracker.StopAll()
	writeJSON(w, h.logger, http.StatusOK, h.tracker.Flags())
}

// Flags returns the tracker flags.
func (h *PortfolioHandler) Flags(w http.ResponseWriter, r *http.Request) {
	h.tracker.IsClosed()
	writeJSON(w, h.logger, http.StatusOK, h.tracker.Flags())
}

// flagsRequest carries the flags a client may set.
type flagsRequest struct {
	DefaultView  *bool `json:"default_view"`
	MarketClosed *bool `json:"market_closed"`
}

// SetFlags sets the default-view flag and, while clocks are displayed,
// the market-closed flag.
func (h *PortfolioHandler) SetFlags(w http.ResponseWriter, r *http.Request) {
	var req flagsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	if req.DefaultView != nil {
		h.tracker.SetDefaultView(*req.DefaultView)
	}
	if req.MarketClosed != nil {
		h.tracker.SetClosed(*req.MarketClosed)
	}
	writeJSON(w, h.logger, http.StatusOK, h.tracker.Flags())
}
