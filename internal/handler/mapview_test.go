package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshacw/chf-enquiries-map/internal/geo"
	"github.com/joshacw/chf-enquiries-map/internal/storage"
)

const mapTestDataset = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {"name": "North Zone", "type": "service area", "style": "fill:#2E86AB;stroke:#2E86AB"},
      "geometry": {"type": "Polygon", "coordinates": [[[0,0],[10,0],[10,10],[0,10],[0,0]]]}
    },
    {
      "type": "Feature",
      "properties": {"name": "South Zone", "type": "service area", "style": "fill:#A23B72"},
      "geometry": {"type": "Polygon", "coordinates": [[[0,-10],[10,-10],[10,0],[0,0],[0,-10]]]}
    }
  ]
}`

func newTestMapHandler(t *testing.T, loaded bool) *MapHandler {
	t.Helper()

	store, err := storage.NewLocalStorage(storage.LocalConfig{
		BasePath: t.TempDir(),
		BaseURL:  "http://localhost/files",
	}, discardLogger())
	require.NoError(t, err)

	dataset := geo.NewDataset(store, storage.DatasetKey, discardLogger())
	if loaded {
		ctx := context.Background()
		require.NoError(t, store.Put(ctx, storage.DatasetKey, strings.NewReader(mapTestDataset), storage.PutOptions{Overwrite: true}))
		require.NoError(t, dataset.Load(ctx))
	}

	return NewMapHandler(dataset, newTestRenderer(t), discardLogger())
}

func TestMapShow_RendersLegend(t *testing.T) {
	h := newTestMapHandler(t, true)

	rec := httptest.NewRecorder()
	h.Show(rec, httptest.NewRequest("GET", "/map", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Service Areas")
	assert.Contains(t, body, "#2E86AB")
	assert.Contains(t, body, "North Zone")
	assert.Contains(t, body, "/map/service-areas.geojson")
}

func TestMapShow_UnloadedDatasetShowsNotice(t *testing.T) {
	h := newTestMapHandler(t, false)

	rec := httptest.NewRecorder()
	h.Show(rec, httptest.NewRequest("GET", "/map", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "loading")
}

func TestMapDataset_StreamsRawGeoJSON(t *testing.T) {
	h := newTestMapHandler(t, true)

	rec := httptest.NewRecorder()
	h.Dataset(rec, httptest.NewRequest("GET", "/map/service-areas.geojson", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/geo+json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, mapTestDataset, rec.Body.String())
}

func TestMapDataset_UnloadedReturns503(t *testing.T) {
	h := newTestMapHandler(t, false)

	rec := httptest.NewRecorder()
	h.Dataset(rec, httptest.NewRequest("GET", "/map/service-areas.geojson", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMapLocate(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		want   string
	}{
		{"inside north zone", `{"lon": 5, "lat": 5}`, http.StatusOK, `{"inside":true,"name":"North Zone"}`},
		{"inside south zone", `{"lon": 5, "lat": -5}`, http.StatusOK, `{"inside":true,"name":"South Zone"}`},
		{"outside all areas", `{"lon": 50, "lat": 50}`, http.StatusOK, `{"inside":false}`},
		{"longitude out of range", `{"lon": 500, "lat": 5}`, http.StatusBadRequest, ""},
		{"malformed body", `not json`, http.StatusBadRequest, ""},
	}

	h := newTestMapHandler(t, true)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/map/locate", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			h.Locate(rec, req)

			require.Equal(t, tt.status, rec.Code)
			if tt.want != "" {
				assert.JSONEq(t, tt.want, rec.Body.String())
			}
		})
	}
}

func TestMapLocate_UnloadedReturns503(t *testing.T) {
	h := newTestMapHandler(t, false)

	req := httptest.NewRequest("POST", "/map/locate", strings.NewReader(`{"lon": 5, "lat": 5}`))
	rec := httptest.NewRecorder()
	h.Locate(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
