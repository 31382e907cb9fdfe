package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/joshacw/chf-enquiries-map/internal/domain"
)

// =============================================================================
// Error Response Tests - Security Focus
// =============================================================================

func TestErrorResponse_InternalErrorHidesDetails(t *testing.T) {
	// Create an internal error wrapping a backend transport error
	transportErr := &mockBackendError{message: "Post \"https://internal.functions.host/functions/v1/booking-heatmap\": connection refused"}
	internalErr := domain.Internal(transportErr, "backend.invoke", "Backend call failed")

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(w, r, discardLogger(), internalErr)
	})

	// Test HTML response
	req := httptest.NewRequest("GET", "/availability", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	body := rec.Body.String()

	// Should NOT contain backend details
	if strings.Contains(body, "functions.host") {
		t.Errorf("response exposes backend host: %s", body)
	}
	if strings.Contains(body, "backend.invoke") {
		t.Errorf("response exposes internal operation: %s", body)
	}

	// Should return generic message
	if !strings.Contains(body, "Something went wrong") {
		t.Errorf("response should contain generic internal error message, got: %s", body)
	}
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestErrorResponse_InternalErrorHidesDetails_JSON(t *testing.T) {
	sensitiveErr := &mockBackendError{message: "bearer key sb-secret-abc123 rejected"}
	internalErr := domain.Internal(sensitiveErr, "backend.invoke", "Auth failed")

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(w, r, discardLogger(), internalErr)
	})

	// Test JSON response
	req := httptest.NewRequest("POST", "/map/locate", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	body := rec.Body.String()

	// Should NOT contain sensitive details
	if strings.Contains(body, "sb-secret") {
		t.Errorf("JSON response exposes credential: %s", body)
	}
	if strings.Contains(body, "backend.invoke") {
		t.Errorf("JSON response exposes internal operation: %s", body)
	}

	// Should contain generic message and the error code
	if !strings.Contains(body, "Something went wrong") {
		t.Errorf("JSON response should contain generic error, got: %s", body)
	}
	if !strings.Contains(body, domain.EINTERNAL) {
		t.Errorf("JSON response should carry the error code, got: %s", body)
	}
}

func TestErrorResponse_UnwrappedErrorReturnsGeneric(t *testing.T) {
	// Create a raw error (not a domain.Error)
	rawErr := &mockBackendError{message: "dial tcp 10.0.0.7:443: i/o timeout"}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(w, r, discardLogger(), rawErr)
	})

	req := httptest.NewRequest("GET", "/availability", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	body := rec.Body.String()

	// Should NOT contain the raw error
	if strings.Contains(body, "10.0.0.7") {
		t.Errorf("response exposes internal address: %s", body)
	}

	// Should return generic message
	if !strings.Contains(body, "Something went wrong") {
		t.Errorf("response should contain generic message, got: %s", body)
	}
}

func TestErrorResponse_StatusMapping(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{domain.EINVALID, http.StatusBadRequest},
		{domain.ENOTFOUND, http.StatusNotFound},
		{domain.EUNAVAILABLE, http.StatusServiceUnavailable},
		{domain.EINTERNAL, http.StatusInternalServerError},
		{"ESOMETHINGELSE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := ErrorCodeToHTTPStatus(tt.code); got != tt.want {
			t.Errorf("ErrorCodeToHTTPStatus(%q) = %d, want %d", tt.code, got, tt.want)
		}
	}
}

func TestRenderFetchError_OffersRetry(t *testing.T) {
	renderer := newTestRenderer(t)
	err := domain.Unavailable("availability.heatmap", "The booking service is temporarily unavailable.")

	req := httptest.NewRequest("GET", "/availability?postcode=4556", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()

	RenderFetchError(rec, req, renderer, discardLogger(), err, "/availability?postcode=4556", "#heatmap")

	// Swaps in with 200 so the fragment replaces the failed content
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "temporarily unavailable") {
		t.Errorf("missing error message: %s", body)
	}
	if !strings.Contains(body, `hx-get="/availability?postcode=4556"`) {
		t.Errorf("missing retry URL: %s", body)
	}
	if !strings.Contains(body, `hx-target="#heatmap"`) {
		t.Errorf("missing retry target: %s", body)
	}
}

// mockBackendError simulates a transport-level error for testing
type mockBackendError struct {
	message string
}

func (e *mockBackendError) Error() string {
	return e.message
}
