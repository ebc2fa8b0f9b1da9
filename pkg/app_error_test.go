package pkg

import (
	"errors"
	"net/http"
	"testing"
)

func TestAppError(t *testing.T) {
	cause := errors.New("boom")
	e := NewDomainError("INTERNAL_ERROR", "An internal error occurred", cause, http.StatusInternalServerError)

	if !errors.Is(e, cause) {
		t.Fatalf("expected app error to unwrap to cause")
	}
	if e.Error() != "INTERNAL_ERROR: An internal error occurred: boom" {
		t.Fatalf("unexpected error string %q", e.Error())
	}

	body := NewDomainErrorSimple("INSUFFICIENT_STOCK", "Not enough stock", http.StatusConflict).
		WithDetails(map[string]any{"available": 2}).
		ToHTTPError()
	if body.Code != "INSUFFICIENT_STOCK" || body.Details["available"] != 2 {
		t.Fatalf("unexpected body: %+v", body)
	}
}
