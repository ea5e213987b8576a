package handlers

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"folio_tracker/internal/database"
	apperrors "folio_tracker/internal/errors"
)

const (
	defaultQRSize = 256
	minQRSize     = 64
	maxQRSize     = 1024
)

// ToolsHandler serves the health check and the dashboard QR code.
type ToolsHandler struct {
	db     *database.DB
	logger *zap.Logger
}

// NewToolsHandler creates a new ToolsHandler.
func NewToolsHandler(d *Dependencies) *ToolsHandler {
	return &ToolsHandler{db: d.DB, logger: d.Logger}
}

// Health returns the server health status.
func (h *ToolsHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok"}
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			h.logger.Error("health check: database unreachable", zap.Error(err))
			writeJSON(w, h.logger, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "database": "unreachable"})
			return
		}
		status["database"] = "ok"
	}
	writeJSON(w, h.logger, http.StatusOK, status)
}

// QRCode renders a PNG QR code of ?url=, or of this server's root so a
// phone on the same network can open it.
func (h *ToolsHandler) QRCode(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("url")
	if target == "" {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		target = scheme + "://" + r.Host + "/"
	}
	if u, err := url.Parse(target); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		writeError(w, h.logger, apperrors.ValidationField("url", "url must be an absolute http(s) URL"))
		return
	}

	size := defaultQRSize
	if raw := r.URL.Query().Get("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < minQRSize || n > maxQRSize {
			writeError(w, h.logger, apperrors.ValidationField("size", "size must be 64 to 1024"))
			return
		}
		size = n
	}

	png, err := qrcode.Encode(target, qrcode.Medium, size)
	if err != nil {
		writeError(w, h.logger, apperrors.Internal("creating QR code", err))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}
