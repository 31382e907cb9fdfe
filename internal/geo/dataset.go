// Package geo owns the service-area dataset: a GeoJSON feature collection
// loaded from the storage layer, grouped into color layers for the map, and
// queried point-in-polygon when a marker is placed. The geometry test itself
// is delegated to the orb library.
package geo

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/joshacw/chf-enquiries-map/internal/metrics"
	"github.com/joshacw/chf-enquiries-map/internal/storage"
)

// TypeServiceArea is the feature type tested during Locate. Other feature
// types (points of interest, depot markers) render but are never matched.
const TypeServiceArea = "service area"

// Feature is one decoded dataset feature, kept in dataset insertion order.
type Feature struct {
	Name     string
	Type     string
	Color    string // Extracted from the feature's style token
	Geometry orb.Geometry
}

// ColorGroup is the set of features sharing one extracted color. The map
// renders each group as a single fill+outline layer.
type ColorGroup struct {
	Color    string   `json:"color"`
	Features []string `json:"features"` // Feature names, insertion order
}

// Dataset holds the decoded service-area collection. Safe for concurrent
// readers; Load swaps the whole snapshot under a write lock.
type Dataset struct {
	store  storage.Storage
	key    string
	logger *slog.Logger

	mu       sync.RWMutex
	raw      []byte // Verbatim GeoJSON, served to the map page
	features []Feature
	loadedAt time.Time
}

// NewDataset creates a dataset backed by the given storage key. Call Load
// before serving.
func NewDataset(store storage.Storage, key string, logger *slog.Logger) *Dataset {
	return &Dataset{
		store:  store,
		key:    key,
		logger: logger,
	}
}

// Load fetches and decodes the dataset, replacing the previous snapshot only
// on success. A failed refresh keeps the old snapshot serving.
func (d *Dataset) Load(ctx context.Context) error {
	rc, _, err := d.store.Get(ctx, d.key)
	if err != nil {
		metrics.DatasetRefreshes.WithLabelValues("error").Inc()
		return fmt.Errorf("fetch dataset %q: %w", d.key, err)
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		metrics.DatasetRefreshes.WithLabelValues("error").Inc()
		return fmt.Errorf("read dataset %q: %w", d.key, err)
	}

	features, err := decodeFeatures(raw)
	if err != nil {
		metrics.DatasetRefreshes.WithLabelValues("error").Inc()
		return fmt.Errorf("decode dataset %q: %w", d.key, err)
	}

	d.mu.Lock()
	d.raw = raw
	d.features = features
	d.loadedAt = time.Now()
	d.mu.Unlock()

	metrics.DatasetRefreshes.WithLabelValues("ok").Inc()
	d.logger.Info("service-area dataset loaded", "key", d.key, "features", len(features))
	return nil
}

// StartRefresh reloads the dataset on the given interval until ctx is
// cancelled. Refresh failures are logged and the previous snapshot stays live.
func (d *Dataset) StartRefresh(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := d.Load(ctx); err != nil {
					d.logger.Error("dataset refresh failed", "error", err)
				}
			}
		}
	}()
}

// Raw returns the dataset bytes as last loaded, for serving to the map page.
func (d *Dataset) Raw() []byte {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.raw
}

// Loaded reports whether a snapshot is available.
func (d *Dataset) Loaded() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.features) > 0
}

// Features returns the decoded features in insertion order.
func (d *Dataset) Features() []Feature {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.features
}

// ColorGroups groups features by extracted color, preserving the order in
// which each color first appears. One fill+outline map layer per group.
func (d *Dataset) ColorGroups() []ColorGroup {
	d.mu.RLock()
	defer d.mu.RUnlock()

	index := make(map[string]int)
	var groups []ColorGroup
	for _, f := range d.features {
		i, ok := index[f.Color]
		if !ok {
			i = len(groups)
			index[f.Color] = i
			groups = append(groups, ColorGroup{Color: f.Color})
		}
		groups[i].Features = append(groups[i].Features, f.Name)
	}
	return groups
}

// decodeFeatures parses a GeoJSON feature collection into the internal
// feature list, extracting name, type, and style color from properties.
func decodeFeatures(raw []byte) ([]Feature, error) {
	fc, err := geojson.UnmarshalFeatureCollection(raw)
	if err != nil {
		return nil, err
	}

	features := make([]Feature, 0, len(fc.Features))
	for _, f := range fc.Features {
		if f.Geometry == nil {
			continue
		}
		features = append(features, Feature{
			Name:     f.Properties.MustString("name", ""),
			Type:     f.Properties.MustString("type", ""),
			Color:    ExtractColor(f.Properties.MustString("style", "")),
			Geometry: f.Geometry,
		})
	}
	return features, nil
}
