package middleware

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "folio_tracker/internal/errors"
)

func TestRequireJSON(t *testing.T) {
	tests := []struct {
		name        string
		method      string
		body        string
		contentType string
		wantStatus  int
	}{
		{"get passes", "GET", "", "", http.StatusOK},
		{"json post", "POST", `{"symbol":"AAPL"}`, "application/json", http.StatusOK},
		{"json with charset", "PUT", `{"value":1}`, "application/json; charset=utf-8", http.StatusOK},
		{"empty post", "POST", "", "", http.StatusOK},
		{"form post", "POST", "symbol=AAPL", "application/x-www-form-urlencoded", http.StatusUnsupportedMediaType},
		{"missing type", "PUT", `{"value":1}`, "", http.StatusUnsupportedMediaType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := RequireJSON(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			var body io.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			}
			req := httptest.NewRequest(tt.method, "/api/equities", body)
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestRequireJSON_CapsBody(t *testing.T) {
	var readErr error
	handler := RequireJSON(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, readErr = io.ReadAll(r.Body)
	}))

	big := `{"x":"` + strings.Repeat("a", MaxBodyBytes) + `"}`
	req := httptest.NewRequest("POST", "/api/cash", strings.NewReader(big))
	req.Header.Set("Content-Type", "application/json")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var maxErr *http.MaxBytesError
	if !errors.As(readErr, &maxErr) {
		t.Errorf("read error = %v, want *http.MaxBytesError", readErr)
	}
}

func TestSanitizeString(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  AAPL  ", "AAPL"},
		{"AA\x00PL", "AAPL"},
		{"BRK.B\n", "BRK.B"},
		{"a\tb", "ab"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := SanitizeString(tt.in); got != tt.want {
			t.Errorf("SanitizeString(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidation(t *testing.T) {
	var v Validation
	if err := v.Err(); err != nil {
		t.Fatalf("Err() with no failures = %v, want nil", err)
	}

	v.Check(true, "symbol", "ignored")
	v.Check(false, "shares", "must be a whole number >= 0")
	v.Check(false, "shares", "second message is dropped")
	v.Check(false, "metal", "unknown metal")

	err := v.Err()
	if !apperrors.IsValidation(err) {
		t.Fatalf("Err() = %v, want validation error", err)
	}
	want := "metal: unknown metal; shares: must be a whole number >= 0"
	if got := apperrors.Message(err); got != want {
		t.Errorf("message = %q, want %q", got, want)
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || len(appErr.Details) != 2 {
		t.Errorf("details = %v, want 2 fields", appErr)
	}
}
