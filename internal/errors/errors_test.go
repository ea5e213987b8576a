package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", NotFound("equity"), http.StatusNotFound},
		{"validation", Validation("bad symbol"), http.StatusBadRequest},
		{"conflict", Conflict("busy"), http.StatusConflict},
		{"canceled", New(ErrCanceled, "stopped"), http.StatusConflict},
		{"forbidden", Forbidden("demo"), http.StatusForbidden},
		{"upstream", Upstream("yahoo", errors.New("eof")), http.StatusBadGateway},
		{"wrapped upstream", fmt.Errorf("fetch: %w", Upstream("yahoo", nil)), http.StatusBadGateway},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range tests {
		if got := HTTPStatus(tc.err); got != tc.want {
			t.Errorf("%s: HTTPStatus() = %d; want %d", tc.name, got, tc.want)
		}
	}
}

func TestAppError_ErrorIncludesCause(t *testing.T) {
	err := Internal("saving cash", errors.New("disk full"))
	if got := err.Error(); got != "saving cash: disk full" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(err, ErrInternal) {
		t.Error("errors.Is(err, ErrInternal) = false")
	}
}

func TestMessage_HidesPlainErrors(t *testing.T) {
	if got := Message(errors.New("sql: connection reset")); got != "internal error" {
		t.Errorf("Message() = %q; want generic message", got)
	}
	if got := Message(ValidationField("shares", "shares must be positive")); got != "shares must be positive" {
		t.Errorf("Message() = %q", got)
	}
}
