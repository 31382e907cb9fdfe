package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/joshacw/chf-enquiries-map/internal/domain"
)

// FetchErrorData is the payload for the fetch-error partial: a display
// message plus the htmx attributes needed for the manual retry control.
// There is no automatic retry or backoff; the user clicks.
type FetchErrorData struct {
	Message     string
	RetryURL    string // htmx GET target re-issuing the failed fetch
	RetryTarget string // CSS selector the retry swaps into
}

// ErrorResponse writes an error response to the client. Domain error codes
// map to HTTP status codes; the body format follows the Accept header (JSON
// for API requests, plain text otherwise).
func ErrorResponse(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	code := domain.ErrorCode(err)
	message := domain.ErrorMessage(err)
	op := domain.ErrorOp(err)

	status := ErrorCodeToHTTPStatus(code)

	logError(logger, r, err, code, op, status)

	if acceptsJSON(r) {
		writeJSONError(w, status, code, message)
		return
	}

	http.Error(w, message, status)
}

// RenderFetchError renders the retry partial in place of the content a
// fetch would have produced. Any previous successful result is replaced, not
// kept stale. Always answers 200 so htmx swaps the fragment in.
func RenderFetchError(w http.ResponseWriter, r *http.Request, renderer *Renderer, logger *slog.Logger, err error, retryURL, retryTarget string) {
	code := domain.ErrorCode(err)
	logError(logger, r, err, code, domain.ErrorOp(err), ErrorCodeToHTTPStatus(code))

	renderer.RenderPartial(w, "fetch-error", FetchErrorData{
		Message:     domain.ErrorMessage(err),
		RetryURL:    retryURL,
		RetryTarget: retryTarget,
	})
}

// ErrorCodeToHTTPStatus maps domain error codes to HTTP status codes.
func ErrorCodeToHTTPStatus(code string) int {
	switch code {
	case domain.EINVALID:
		return http.StatusBadRequest // 400
	case domain.ENOTFOUND:
		return http.StatusNotFound // 404
	case domain.EUNAVAILABLE:
		return http.StatusServiceUnavailable // 503
	case domain.EINTERNAL:
		return http.StatusInternalServerError // 500
	default:
		return http.StatusInternalServerError // 500
	}
}

// NotFoundResponse is a convenience wrapper for 404 errors.
func NotFoundResponse(w http.ResponseWriter, r *http.Request, logger *slog.Logger) {
	err := domain.Errorf(domain.ENOTFOUND, "", "The requested resource was not found")
	ErrorResponse(w, r, logger, err)
}

// logError logs the error with a level based on status code.
func logError(logger *slog.Logger, r *http.Request, err error, code, op string, status int) {
	attrs := []any{
		"error", err.Error(),
		"code", code,
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
	}

	if op != "" {
		attrs = append(attrs, "op", op)
	}

	// 5xx are server-side issues; 4xx are expected client errors
	if status >= 500 {
		logger.Error("server error", attrs...)
	} else if status >= 400 {
		logger.Info("client error", attrs...)
	}
}

// acceptsJSON checks if the client prefers JSON responses.
func acceptsJSON(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	contentType := r.Header.Get("Content-Type")

	if strings.Contains(accept, "application/json") {
		return true
	}
	if strings.Contains(contentType, "application/json") {
		return true
	}

	// htmx requests want HTML fragments
	if r.Header.Get("HX-Request") == "true" {
		return false
	}

	return false
}

// writeJSONError writes a JSON error response.
func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
