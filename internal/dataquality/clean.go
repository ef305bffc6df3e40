// Package dataquality cleans, classifies, and deduplicates raw POI records
// before the metrics engine sees them.
package dataquality

import (
	"regexp"
	"strings"

	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/sells-group/locality-lens/internal/geodesy"
	"github.com/sells-group/locality-lens/internal/model"
)

// Duplicate thresholds. Two records of the same category within
// dupProximityM meters are the same feature regardless of naming; records
// sharing a normalized name within dupNamedProximityM are the same feature
// mapped twice (e.g. a node and the building way around it).
const (
	dupProximityM      = 5.0
	dupNamedProximityM = 200.0
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// NormalizeName canonicalizes a POI display name for duplicate comparison:
// NFKC fold, lower case, collapsed whitespace.
func NormalizeName(name string) string {
	s := norm.NFKC.String(name)
	s = strings.ToLower(strings.TrimSpace(s))
	return whitespaceRun.ReplaceAllString(s, " ")
}

// Clean runs the full data quality pipeline: geometry validation, geodesic
// radius clip, classification, and duplicate collapse. The input slice is
// never mutated; the returned slice is always fresh. Clean is idempotent:
// Clean(Clean(x)) == Clean(x).
func Clean(records []model.POIRecord, center model.Coordinates, radiusKM float64) []model.POIRecord {
	out := make([]model.POIRecord, 0, len(records))

	dropped := 0
	for _, rec := range records {
		if !validGeometry(rec.Geometry) {
			dropped++
			continue
		}
		lon, lat, ok := rec.Centroid()
		if !ok {
			dropped++
			continue
		}
		if geodesy.DistanceKM(center.Lat, center.Lon, lat, lon) > radiusKM {
			dropped++
			continue
		}
		rec.Category = Classify(rec.Tags)
		out = append(out, rec)
	}

	out = dedupe(out)

	if dropped > 0 {
		zap.L().Debug("dataquality: cleaned records",
			zap.Int("input", len(records)),
			zap.Int("dropped", dropped),
			zap.Int("kept", len(out)),
		)
	}
	return out
}

// validGeometry accepts points with finite coordinates and polygons with at
// least one ring of three distinct vertices.
func validGeometry(g geom.T) bool {
	switch t := g.(type) {
	case *geom.Point:
		c := t.Coords()
		return len(c) >= 2 && c[1] >= -90 && c[1] <= 90 && c[0] >= -180 && c[0] <= 180
	case *geom.Polygon:
		if t.NumLinearRings() == 0 {
			return false
		}
		ring := t.LinearRing(0).Coords()
		// A closed triangle needs four coords (first repeated at the end).
		return len(ring) >= 4
	default:
		return false
	}
}

// dedupe collapses duplicates, keeping the record with more complete tag
// data; ties keep the first-seen record. Comparison is restricted to
// same-category records so the scan stays near-linear in practice.
func dedupe(records []model.POIRecord) []model.POIRecord {
	type entry struct {
		rec      model.POIRecord
		lat, lon float64
		nameKey  string
	}

	byID := make(map[string]int, len(records))
	byCategory := make(map[model.Category][]int, 16)
	var kept []entry

	for _, rec := range records {
		lon, lat, _ := rec.Centroid()
		e := entry{rec: rec, lat: lat, lon: lon, nameKey: NormalizeName(rec.Name)}

		// Same external id is always the same feature.
		if rec.ID != "" {
			if idx, ok := byID[rec.ID]; ok {
				if e.rec.TagCompleteness() > kept[idx].rec.TagCompleteness() {
					kept[idx] = e
				}
				continue
			}
		}

		dupIdx := -1
		for _, idx := range byCategory[rec.Category] {
			k := kept[idx]
			d := geodesy.DistanceM(k.lat, k.lon, lat, lon)
			if d <= dupProximityM {
				dupIdx = idx
				break
			}
			if e.nameKey != "" && e.nameKey == k.nameKey && d <= dupNamedProximityM {
				dupIdx = idx
				break
			}
		}
		if dupIdx >= 0 {
			if e.rec.TagCompleteness() > kept[dupIdx].rec.TagCompleteness() {
				prevID := kept[dupIdx].rec.ID
				kept[dupIdx] = e
				if prevID != "" {
					delete(byID, prevID)
				}
				if e.rec.ID != "" {
					byID[e.rec.ID] = dupIdx
				}
			}
			continue
		}

		idx := len(kept)
		kept = append(kept, e)
		byCategory[rec.Category] = append(byCategory[rec.Category], idx)
		if rec.ID != "" {
			byID[rec.ID] = idx
		}
	}

	out := make([]model.POIRecord, len(kept))
	for i, e := range kept {
		out[i] = e.rec
	}
	return out
}
