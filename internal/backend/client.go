// Package backend is the client for the booking backend: a set of named
// serverless functions that own availability computation, priority
// classification, and lead storage. The widget calls them and renders what
// comes back; it never re-derives their results.
//
// The client is constructed once in main and injected into every service that
// needs it. There is deliberately no package-level default client.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/joshacw/chf-enquiries-map/internal/domain"
)

// Function names exposed by the booking backend.
const (
	FnHeatmap  = "booking-heatmap"
	FnDaySlots = "day-slots"
	FnGetLead  = "get-lead"
)

// Client invokes named backend functions with a JSON request body and decodes
// the JSON response into out.
type Client interface {
	Invoke(ctx context.Context, fn string, in, out any) error
}

// =============================================================================
// Request / Response payloads
// =============================================================================

// HeatmapRequest asks for the classified heat-map for a postcode over a day
// horizon.
type HeatmapRequest struct {
	Postcode  int `json:"postcode"`
	DaysAhead int `json:"days_ahead"`
}

// DaySlotsRequest asks for the bookable slots on one date.
type DaySlotsRequest struct {
	Postcode int    `json:"postcode"`
	Date     string `json:"date"` // ISO date
}

// LeadRequest asks for a single lead record.
type LeadRequest struct {
	LeadID string `json:"lead_id"`
}

// errorPayload is the error body returned by a failed function call.
type errorPayload struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (e errorPayload) text() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

// =============================================================================
// HTTP implementation
// =============================================================================

// Config configures the HTTP client.
type Config struct {
	BaseURL string        // Functions host, e.g. https://example.functions.host
	APIKey  string        // Bearer key sent on every call
	Timeout time.Duration // Per-call timeout; defaults to 15s
}

// HTTPClient calls functions at {BaseURL}/functions/v1/{name}.
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *slog.Logger
}

// NewHTTPClient builds a function client. Returns an error when no base URL is
// configured; callers treat a nil client as the backend-unavailable condition.
func NewHTTPClient(cfg Config, logger *slog.Logger) (*HTTPClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("backend base URL is required")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}

	return &HTTPClient{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}, nil
}

// Invoke posts in as JSON to the named function and decodes the response into
// out. A non-2xx status is converted into a domain error carrying the
// backend's human-readable message.
func (c *HTTPClient) Invoke(ctx context.Context, fn string, in, out any) error {
	op := "backend." + fn

	body, err := json.Marshal(in)
	if err != nil {
		return domain.Internal(err, op, "Failed to encode request")
	}

	url := fmt.Sprintf("%s/functions/v1/%s", c.baseURL, fn)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return domain.Internal(err, op, "Failed to build request")
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error("backend call failed", "function", fn, "error", err)
		return domain.Unavailable(op, "The booking service could not be reached.")
	}
	defer resp.Body.Close()

	c.logger.Debug("backend call",
		"function", fn,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.errorFromResponse(op, fn, resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.Internal(err, op, "Failed to decode response")
	}
	return nil
}

// errorFromResponse maps a failed call onto a domain error. The backend sends
// {"error": ..., "message": ...}; when the body is not parseable the status
// line stands in.
func (c *HTTPClient) errorFromResponse(op, fn string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var payload errorPayload
	msg := ""
	if err := json.Unmarshal(raw, &payload); err == nil {
		msg = payload.text()
	}
	if msg == "" {
		msg = fmt.Sprintf("booking service returned %s", resp.Status)
	}

	c.logger.Error("backend returned error",
		"function", fn,
		"status", resp.StatusCode,
		"message", msg,
	)

	switch resp.StatusCode {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return domain.Invalid(op, msg)
	case http.StatusNotFound:
		return domain.Errorf(domain.ENOTFOUND, op, "%s", msg)
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		return domain.Unavailable(op, msg)
	default:
		return domain.Internal(fmt.Errorf("status %d: %s", resp.StatusCode, msg), op, msg)
	}
}
