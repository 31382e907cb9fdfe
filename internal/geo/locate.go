package geo

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/joshacw/chf-enquiries-map/internal/metrics"
)

// Match is the result of a membership test.
type Match struct {
	Inside bool   `json:"inside"`
	Name   string `json:"name,omitempty"` // Name of the first containing service area
}

// Locate tests a coordinate against every service-area polygon in dataset
// insertion order and returns the first one whose boundary contains the
// point. Features of other types are skipped. Coordinates are lon/lat to
// match the GeoJSON axis order.
func (d *Dataset) Locate(lon, lat float64) Match {
	point := orb.Point{lon, lat}

	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, f := range d.features {
		if f.Type != TypeServiceArea {
			continue
		}
		if geometryContains(f.Geometry, point) {
			metrics.LocateChecks.WithLabelValues("inside").Inc()
			return Match{Inside: true, Name: f.Name}
		}
	}

	metrics.LocateChecks.WithLabelValues("outside").Inc()
	return Match{}
}

// geometryContains runs the planar point-in-polygon test for the geometry
// types a service area can carry.
func geometryContains(g orb.Geometry, p orb.Point) bool {
	switch geom := g.(type) {
	case orb.Polygon:
		return planar.PolygonContains(geom, p)
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(geom, p)
	default:
		return false
	}
}
