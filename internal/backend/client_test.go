package backend

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshacw/chf-enquiries-map/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(nilWriter{}, nil))
}

type nilWriter struct{}

func (nilWriter) Write(p []byte) (int, error) { return len(p), nil }

func TestNewHTTPClient_RequiresBaseURL(t *testing.T) {
	_, err := NewHTTPClient(Config{}, testLogger())
	require.Error(t, err)
}

func TestInvoke_PostsJSONAndDecodes(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody HeatmapRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]any{"region": "Melbourne", "total_slots": 12})
	}))
	defer srv.Close()

	c, err := NewHTTPClient(Config{BaseURL: srv.URL, APIKey: "secret"}, testLogger())
	require.NoError(t, err)

	var out domain.Heatmap
	err = c.Invoke(context.Background(), FnHeatmap, HeatmapRequest{Postcode: 3000, DaysAhead: 21}, &out)
	require.NoError(t, err)

	assert.Equal(t, "/functions/v1/booking-heatmap", gotPath)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, 3000, gotBody.Postcode)
	assert.Equal(t, 21, gotBody.DaysAhead)
	assert.Equal(t, "Melbourne", out.Region)
	assert.Equal(t, 12, out.TotalSlots)
}

func TestInvoke_ErrorPayloadBecomesDomainError(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode string
		wantMsg  string
	}{
		{
			name:     "bad request with message",
			status:   http.StatusBadRequest,
			body:     `{"message": "postcode is outside all service areas"}`,
			wantCode: domain.EINVALID,
			wantMsg:  "postcode is outside all service areas",
		},
		{
			name:     "not found",
			status:   http.StatusNotFound,
			body:     `{"error": "no such lead"}`,
			wantCode: domain.ENOTFOUND,
			wantMsg:  "no such lead",
		},
		{
			name:     "bad gateway without body",
			status:   http.StatusBadGateway,
			body:     "",
			wantCode: domain.EUNAVAILABLE,
		},
		{
			name:     "server error hides detail",
			status:   http.StatusInternalServerError,
			body:     `{"message": "stack trace here"}`,
			wantCode: domain.EINTERNAL,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c, err := NewHTTPClient(Config{BaseURL: srv.URL}, testLogger())
			require.NoError(t, err)

			err = c.Invoke(context.Background(), FnDaySlots, DaySlotsRequest{Postcode: 3000, Date: "2026-09-01"}, nil)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, domain.ErrorCode(err))
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, domain.ErrorMessage(err))
			}
		})
	}
}

func TestInvoke_UnreachableBackendIsUnavailable(t *testing.T) {
	c, err := NewHTTPClient(Config{BaseURL: "http://127.0.0.1:1"}, testLogger())
	require.NoError(t, err)

	err = c.Invoke(context.Background(), FnHeatmap, HeatmapRequest{Postcode: 3000, DaysAhead: 7}, nil)
	require.Error(t, err)
	assert.Equal(t, domain.EUNAVAILABLE, domain.ErrorCode(err))
}
