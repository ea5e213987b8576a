// Package handlers provides the JSON HTTP API of the folio tracker.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	apperrors "folio_tracker/internal/errors"
)

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, logger *zap.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("encoding response", zap.Error(err))
	}
}

// writeError writes err as {"error": message} with its mapped status.
// Server errors are logged with their cause; the client sees only the
// message.
func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", zap.Int("status", status), zap.Error(err))
	} else {
		logger.Debug("request rejected", zap.Int("status", status), zap.Error(err))
	}

	body := map[string]any{"error": apperrors.Message(err)}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && len(appErr.Details) > 0 {
		body["details"] = appErr.Details
	}
	writeJSON(w, logger, status, body)
}

// decodeJSON decodes the request body into dst. Unknown fields are
// rejected so typos do not silently keep old values.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return apperrors.Validation("request body too large")
		}
		return apperrors.Wrap(apperrors.ErrValidation, "invalid request body", err)
	}
	return nil
}

// queryInt reads a positive integer query parameter, falling back to def
// and capping at max.
func queryInt(r *http.Request, name string, def, max int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, apperrors.ValidationField(name, name+" must be a positive integer")
	}
	if n > max {
		n = max
	}
	return n, nil
}
