// Package metrics evaluates catalog metrics over cleaned POI records.
// The engine is stateless and safe for concurrent use; every call works on
// its own inputs and returns a fresh Statistics map.
package metrics

import (
	"context"
	"math"

	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/sells-group/locality-lens/internal/catalog"
	"github.com/sells-group/locality-lens/internal/geodesy"
	"github.com/sells-group/locality-lens/internal/model"
	"github.com/sells-group/locality-lens/internal/roads"
)

// Engine computes metric values against the catalog.
type Engine struct {
	cat *catalog.Catalog
}

// New returns an engine bound to a loaded catalog.
func New(cat *catalog.Catalog) *Engine {
	return &Engine{cat: cat}
}

// located is a record with its precomputed centroid and center distance.
type located struct {
	rec    model.POIRecord
	lon    float64
	lat    float64
	distKM float64
}

// Compute evaluates ids (expanded with transitive dependencies, in dependency
// order) over the cleaned records. An isolated metric failure records a nil
// value and a warning; Compute returns a stage error only when every
// requested metric failed or the context was canceled. Nil values from
// legitimately absent features (a distance metric with nothing in range) are
// successes, not failures.
func (e *Engine) Compute(
	ctx context.Context,
	center model.Coordinates,
	records []model.POIRecord,
	network *roads.Network,
	ids []string,
) (model.Statistics, []string, error) {
	expanded := e.cat.WithDependencies(ids)
	stats := make(model.Statistics, len(expanded))
	var warnings []string

	pts := make([]located, 0, len(records))
	for _, rec := range records {
		lon, lat, ok := rec.Centroid()
		if !ok {
			continue
		}
		pts = append(pts, located{
			rec:    rec,
			lon:    lon,
			lat:    lat,
			distKM: geodesy.DistanceKM(center.Lat, center.Lon, lat, lon),
		})
	}

	failed := make(map[string]bool, len(expanded))
	for _, id := range expanded {
		if err := ctx.Err(); err != nil {
			return nil, warnings, model.NewStageError(model.ErrKindComputation, err, "metrics: compute canceled")
		}

		def, ok := e.cat.Get(id)
		if !ok {
			continue
		}

		val, warn, ok := e.computeOne(def, center, pts, network, stats)
		stats[id] = val
		if warn != "" {
			warnings = append(warnings, warn)
		}
		if !ok {
			failed[id] = true
		}
	}

	requested, _ := e.cat.Validate(ids)
	if len(requested) > 0 {
		allFailed := true
		for _, id := range requested {
			if !failed[id] {
				allFailed = false
				break
			}
		}
		if allFailed {
			return stats, warnings, model.NewStageError(model.ErrKindComputation, nil,
				"metrics: all %d requested metrics failed", len(requested))
		}
	}

	zap.L().Debug("metrics: computed",
		zap.Int("metrics", len(expanded)),
		zap.Int("records", len(pts)),
		zap.Int("failed", len(failed)),
	)
	return stats, warnings, nil
}

// computeOne evaluates a single metric. ok is false only for genuine
// failures; a nil value with ok=true means "feature absent".
func (e *Engine) computeOne(
	def catalog.Definition,
	center model.Coordinates,
	pts []located,
	network *roads.Network,
	stats model.Statistics,
) (*float64, string, bool) {
	// Road-backed metrics are keyed by id, not by kind, because they share
	// kinds with POI-backed metrics.
	switch def.ID {
	case "road_density_km_per_km2":
		if network == nil {
			return nil, "road network unavailable, skipping " + def.ID, false
		}
		lengthKM := network.TotalLengthWithinKM(center, def.RadiusKM)
		areaKM2 := math.Pi * def.RadiusKM * def.RadiusKM
		return ptr(round(lengthKM/areaKM2, 2)), "", true
	case "main_road_count":
		if network == nil {
			return nil, "road network unavailable, skipping " + def.ID, false
		}
		return ptr(float64(network.MainRoadCount(center, def.RadiusKM))), "", true
	}

	switch def.Kind {
	case catalog.KindCount:
		n := 0
		for _, p := range pts {
			if p.distKM <= def.RadiusKM && inCategories(p.rec.Category, def.SourceCategories) {
				n++
			}
		}
		return ptr(float64(n)), "", true

	case catalog.KindDistance:
		best := math.Inf(1)
		for _, p := range pts {
			if inCategories(p.rec.Category, def.SourceCategories) && p.distKM < best {
				best = p.distKM
			}
		}
		if best > def.RadiusKM {
			return nil, "", true
		}
		return ptr(round(best, 3)), "", true

	case catalog.KindArea:
		var polys []*geom.Polygon
		for _, p := range pts {
			if p.distKM > def.RadiusKM || !inCategories(p.rec.Category, def.SourceCategories) {
				continue
			}
			if poly, isPoly := p.rec.Geometry.(*geom.Polygon); isPoly {
				polys = append(polys, poly)
			}
		}
		areaM2 := unionAreaM2(polys, center, def.RadiusKM*1000)
		return ptr(round(areaM2/1e6, 4)), "", true

	case catalog.KindDensity:
		n := 0
		for _, p := range pts {
			if p.distKM > def.RadiusKM {
				continue
			}
			// No source categories means every record counts, unclassified
			// included.
			if len(def.SourceCategories) == 0 || inCategories(p.rec.Category, def.SourceCategories) {
				n++
			}
		}
		areaKM2 := math.Pi * def.RadiusKM * def.RadiusKM
		return ptr(round(float64(n)/areaKM2, 2)), "", true

	case catalog.KindComposite:
		return e.computeComposite(def, center, pts, stats)
	}

	return nil, "unknown metric kind for " + def.ID, false
}

func inCategories(c model.Category, cats []model.Category) bool {
	for _, want := range cats {
		if c == want {
			return true
		}
	}
	return false
}

func ptr(v float64) *float64 { return &v }

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

// clamp01 maps v linearly onto [0, 1] against an upper bound.
func clamp01(v, upper float64) float64 {
	if upper <= 0 || v <= 0 {
		return 0
	}
	if v >= upper {
		return 1
	}
	return v / upper
}
