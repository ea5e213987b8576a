package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apperrors "folio_tracker/internal/errors"
	"folio_tracker/internal/models"
	"folio_tracker/internal/secrets"
	"folio_tracker/internal/services"
)

// SettingsHandler handles finance API settings, preferences and views.
type SettingsHandler struct {
	tracker   *services.Tracker
	scheduler Rescheduler
	demoMode  bool
	logger    *zap.Logger
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(d *Dependencies) *SettingsHandler {
	return &SettingsHandler{
		tracker:   d.Tracker,
		scheduler: d.Scheduler,
		demoMode:  d.DemoMode,
		logger:    d.Logger,
	}
}

func redactAPI(s models.APISettings) models.APISettings {
	s.Key = secrets.Redact(s.Key)
	return s
}

// GetAPI returns the finance API settings with the key masked.
func (h *SettingsHandler) GetAPI(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.logger, http.StatusOK, redactAPI(h.tracker.API()))
}

// SetAPI stores the finance API settings. Empty fields keep their value.
func (h *SettingsHandler) SetAPI(w http.ResponseWriter, r *http.Request) {
	if h.demoMode {
		writeError(w, h.logger, apperrors.Forbidden("API settings are read-only in demo mode"))
		return
	}

	var req models.APISettings
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	saved, err := h.tracker.SetAPI(req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, redactAPI(saved))
}

// GetPreferences returns the display and refresh settings.
func (h *SettingsHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.logger, http.StatusOK, h.tracker.Preferences())
}

// SetPreferences updates the display and refresh settings. Fields missing
// from the body keep their value. A changed refresh rate takes effect at
// once.
func (h *SettingsHandler) SetPreferences(w http.ResponseWriter, r *http.Request) {
	prefs := h.tracker.Preferences()
	if err := decodeJSON(r, &prefs); err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := h.tracker.SetPreferences(prefs); err != nil {
		writeError(w, h.logger, err)
		return
	}
	if h.scheduler != nil {
		h.scheduler.Reschedule()
	}
	writeJSON(w, h.logger, http.StatusOK, h.tracker.Preferences())
}

// ListViews returns the stored view geometry.
func (h *SettingsHandler) ListViews(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.logger, http.StatusOK, h.tracker.Views())
}

// SaveView stores the geometry of the view named in the path.
func (h *SettingsHandler) SaveView(w http.ResponseWriter, r *http.Request) {
	var v models.View
	if err := decodeJSON(r, &v); err != nil {
		writeError(w, h.logger, err)
		return
	}
	v.Name = chi.URLParam(r, "name")
	if err := h.tracker.SaveView(v); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, v)
}
