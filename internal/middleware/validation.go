package middleware

import (
	"mime"
	"net/http"
	"sort"
	"strings"

	apperrors "folio_tracker/internal/errors"
)

// MaxBodyBytes caps request bodies; the largest is a full preferences or
// API settings document.
const MaxBodyBytes = 64 << 10

// RequireJSON rejects POST, PUT and PATCH requests that carry a body in
// anything but JSON, and caps the body size.
func RequireJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			if r.ContentLength != 0 && !isJSON(r.Header.Get("Content-Type")) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnsupportedMediaType)
				w.Write([]byte(`{"error":"content type must be application/json"}` + "\n"))
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
		}
		next.ServeHTTP(w, r)
	})
}

func isJSON(contentType string) bool {
	if contentType == "" {
		return false
	}
	mt, _, err := mime.ParseMediaType(contentType)
	return err == nil && mt == "application/json"
}

// SanitizeString trims whitespace and removes control characters.
func SanitizeString(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, s)
}

// Validation collects field errors for one request.
type Validation struct {
	fields map[string]string
}

// Check records message for field when ok is false.
func (v *Validation) Check(ok bool, field, message string) {
	if ok {
		return
	}
	if v.fields == nil {
		v.fields = make(map[string]string)
	}
	if _, seen := v.fields[field]; !seen {
		v.fields[field] = message
	}
}

// Err returns a validation AppError listing every failed field, or nil.
func (v *Validation) Err() error {
	if len(v.fields) == 0 {
		return nil
	}
	details := make(map[string]any, len(v.fields))
	var msgs []string
	for f, m := range v.fields {
		details[f] = m
		msgs = append(msgs, f+": "+m)
	}
	sort.Strings(msgs)
	return apperrors.Validation(strings.Join(msgs, "; ")).WithDetails(details)
}
