package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/joshacw/chf-enquiries-map/internal/domain"
	"github.com/joshacw/chf-enquiries-map/internal/geo"
)

// =============================================================================
// Template Data Types
// =============================================================================

// MapPageData contains data for the service-area map page.
type MapPageData struct {
	CurrentPath string
	DatasetURL  string
	ColorGroups []geo.ColorGroup
	Loaded      bool
}

// locateRequest is the JSON body of a membership check.
type locateRequest struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// =============================================================================
// Handler Configuration
// =============================================================================

// MapHandler serves the service-area map and its GeoJSON dataset.
type MapHandler struct {
	dataset  *geo.Dataset
	renderer *Renderer
	logger   *slog.Logger
}

// NewMapHandler creates a new MapHandler.
func NewMapHandler(dataset *geo.Dataset, renderer *Renderer, logger *slog.Logger) *MapHandler {
	return &MapHandler{
		dataset:  dataset,
		renderer: renderer,
		logger:   logger,
	}
}

// RegisterRoutes registers the map routes.
//
// Routes:
//   - GET  /map                        -> map page with legend
//   - GET  /map/service-areas.geojson  -> raw dataset for the client layer
//   - POST /map/locate                 -> point membership check (JSON)
func (h *MapHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /map", h.Show)
	mux.HandleFunc("GET /map/service-areas.geojson", h.Dataset)
	mux.HandleFunc("POST /map/locate", h.Locate)
}

// Show displays the map page. The legend groups service areas by style color
// in first-appearance order.
func (h *MapHandler) Show(w http.ResponseWriter, r *http.Request) {
	h.renderer.RenderHTTP(w, "map", MapPageData{
		CurrentPath: r.URL.Path,
		DatasetURL:  "/map/service-areas.geojson",
		ColorGroups: h.dataset.ColorGroups(),
		Loaded:      h.dataset.Loaded(),
	})
}

// Dataset streams the raw GeoJSON snapshot. The bytes are served exactly as
// loaded; the client parses them into its own layer.
func (h *MapHandler) Dataset(w http.ResponseWriter, r *http.Request) {
	raw := h.dataset.Raw()
	if raw == nil {
		ErrorResponse(w, r, h.logger, domain.Unavailable("map.dataset", "The service-area dataset has not loaded yet."))
		return
	}

	w.Header().Set("Content-Type", "application/geo+json")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(raw)
}

// Locate answers a point membership check against the loaded service areas.
func (h *MapHandler) Locate(w http.ResponseWriter, r *http.Request) {
	var req locateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("map.locate", "Request body must be JSON with lon and lat."))
		return
	}
	if req.Lon < -180 || req.Lon > 180 || req.Lat < -90 || req.Lat > 90 {
		ErrorResponse(w, r, h.logger, domain.Invalid("map.locate", "Coordinates are out of range."))
		return
	}
	if !h.dataset.Loaded() {
		ErrorResponse(w, r, h.logger, domain.Unavailable("map.locate", "The service-area dataset has not loaded yet."))
		return
	}

	match := h.dataset.Locate(req.Lon, req.Lat)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(match)
}
