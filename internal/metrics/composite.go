package metrics

import (
	"math"

	"github.com/sells-group/locality-lens/internal/catalog"
	"github.com/sells-group/locality-lens/internal/model"
)

// Normalization bounds for composite score inputs. Values at or above the
// bound map to 1.0.
const (
	poiDensityBound  = 200.0 // per km², dense urban core
	roadDensityBound = 20.0  // km/km²
	metroCountBound  = 10.0
	busCountBound    = 50.0
)

// computeComposite evaluates one composite metric from already-computed
// dependencies in stats. A nil dependency yields a nil composite with a
// warning; that is a degraded success, not a failure.
func (e *Engine) computeComposite(
	def catalog.Definition,
	center model.Coordinates,
	pts []located,
	stats model.Statistics,
) (*float64, string, bool) {
	switch def.ID {
	case "walkability_score":
		poi, ok1 := stats.Value("poi_density")
		road, ok2 := stats.Value("road_density_km_per_km2")
		if !ok1 || !ok2 {
			return nil, def.ID + ": dependency unavailable", true
		}
		score := 100 * (0.6*clamp01(poi, poiDensityBound) + 0.4*clamp01(road, roadDensityBound))
		return ptr(round(score, 1)), "", true

	case "accessibility_score":
		metro, ok1 := stats.Value("metro_station_count")
		bus, ok2 := stats.Value("bus_stop_count")
		poi, ok3 := stats.Value("poi_density")
		if !ok1 || !ok2 || !ok3 {
			return nil, def.ID + ": dependency unavailable", true
		}
		score := 100 * (0.4*clamp01(metro, metroCountBound) +
			0.3*clamp01(bus, busCountBound) +
			0.3*clamp01(poi, poiDensityBound))
		return ptr(round(score, 1)), "", true

	case "green_space_ratio":
		park, ok := stats.Value("park_area_km2")
		if !ok {
			return nil, def.ID + ": dependency unavailable", true
		}
		total := math.Pi * def.RadiusKM * def.RadiusKM
		ratio := park / total
		if ratio > 1 {
			ratio = 1
		}
		return ptr(round(ratio, 4)), "", true

	case "amenity_diversity_score":
		return ptr(round(diversityScore(def, pts), 1)), "", true
	}

	return nil, "no composite rule for " + def.ID, false
}

// diversityScore is the normalized Shannon index over canonical categories
// within the metric radius, scaled to 0-100. Unclassified records carry no
// category signal and are excluded.
func diversityScore(def catalog.Definition, pts []located) float64 {
	counts := make(map[model.Category]int)
	total := 0
	for _, p := range pts {
		if p.distKM > def.RadiusKM || p.rec.Category == model.CategoryUnclassified {
			continue
		}
		counts[p.rec.Category]++
		total++
	}
	if len(counts) <= 1 || total == 0 {
		return 0
	}

	var h float64
	for _, n := range counts {
		p := float64(n) / float64(total)
		h -= p * math.Log(p)
	}
	return 100 * h / math.Log(float64(len(counts)))
}
