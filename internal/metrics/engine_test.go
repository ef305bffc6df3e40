package metrics

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/sells-group/locality-lens/internal/catalog"
	"github.com/sells-group/locality-lens/internal/model"
	"github.com/sells-group/locality-lens/internal/roads"
)

var center = model.Coordinates{Lat: 12.9784, Lon: 77.6408}

func newEngine(t *testing.T) *Engine {
	t.Helper()
	cat, err := catalog.Load()
	require.NoError(t, err)
	return New(cat)
}

// poi places a record of the given category offsetKM kilometers north of the
// center.
func poi(id string, cat model.Category, offsetKM float64) model.POIRecord {
	return model.POIRecord{
		ID:       id,
		Category: cat,
		Geometry: geom.NewPointFlat(geom.XY, []float64{center.Lon, center.Lat + offsetKM/111.195}),
	}
}

// squarePolyRecord builds a square polygon of the given side length in
// meters, centered offsetKM north of the center.
func squarePolyRecord(id string, cat model.Category, offsetKM, sideM float64) model.POIRecord {
	lat := center.Lat + offsetKM/111.195
	dLat := sideM / 2 / 111195
	dLon := sideM / 2 / (111195 * math.Cos(lat*math.Pi/180))
	ring := []geom.Coord{
		{center.Lon - dLon, lat - dLat},
		{center.Lon + dLon, lat - dLat},
		{center.Lon + dLon, lat + dLat},
		{center.Lon - dLon, lat + dLat},
		{center.Lon - dLon, lat - dLat},
	}
	poly := geom.NewPolygon(geom.XY).MustSetCoords([][]geom.Coord{ring})
	return model.POIRecord{ID: id, Category: cat, Geometry: poly}
}

func TestComputeCount(t *testing.T) {
	e := newEngine(t)
	records := []model.POIRecord{
		poi("n/1", model.CategorySchool, 0.5),
		poi("n/2", model.CategorySchool, 1.5),
		poi("n/3", model.CategorySchool, 3.0), // outside 2km
		poi("n/4", model.CategoryCafe, 0.5),   // wrong category
	}

	stats, warnings, err := e.Compute(context.Background(), center, records, nil, []string{"school_count"})
	require.NoError(t, err)
	assert.Empty(t, warnings)

	v, ok := stats.Value("school_count")
	require.True(t, ok)
	assert.Equal(t, 2.0, v)
}

func TestComputeCountMonotone(t *testing.T) {
	e := newEngine(t)
	records := []model.POIRecord{poi("n/1", model.CategorySchool, 0.5)}

	stats1, _, err := e.Compute(context.Background(), center, records, nil, []string{"school_count"})
	require.NoError(t, err)

	records = append(records, poi("n/2", model.CategorySchool, 1.0))
	stats2, _, err := e.Compute(context.Background(), center, records, nil, []string{"school_count"})
	require.NoError(t, err)

	v1, _ := stats1.Value("school_count")
	v2, _ := stats2.Value("school_count")
	assert.Equal(t, v1+1, v2)
}

func TestComputeDistance(t *testing.T) {
	e := newEngine(t)
	records := []model.POIRecord{
		poi("n/1", model.CategoryMetroStation, 1.2),
		poi("n/2", model.CategoryMetroStation, 3.0),
	}

	stats, _, err := e.Compute(context.Background(), center, records, nil, []string{"nearest_metro_distance_km"})
	require.NoError(t, err)

	v, ok := stats.Value("nearest_metro_distance_km")
	require.True(t, ok)
	assert.InDelta(t, 1.2, v, 0.01)
}

func TestComputeDistanceNullWhenOutOfBound(t *testing.T) {
	e := newEngine(t)
	// Search bound for nearest metro is 5km.
	records := []model.POIRecord{poi("n/1", model.CategoryMetroStation, 7.0)}

	stats, _, err := e.Compute(context.Background(), center, records, nil, []string{"nearest_metro_distance_km"})
	require.NoError(t, err)

	v, present := stats["nearest_metro_distance_km"]
	require.True(t, present)
	assert.Nil(t, v)
}

func TestComputeArea(t *testing.T) {
	e := newEngine(t)
	// One 200m x 200m park: 0.04 km².
	records := []model.POIRecord{squarePolyRecord("w/1", model.CategoryPark, 0.5, 200)}

	stats, _, err := e.Compute(context.Background(), center, records, nil, []string{"park_area_km2"})
	require.NoError(t, err)

	v, ok := stats.Value("park_area_km2")
	require.True(t, ok)
	assert.InDelta(t, 0.04, v, 0.004)
}

func TestComputeAreaPointsContributeNothing(t *testing.T) {
	e := newEngine(t)
	records := []model.POIRecord{poi("n/1", model.CategoryPark, 0.5)}

	stats, _, err := e.Compute(context.Background(), center, records, nil, []string{"park_area_km2"})
	require.NoError(t, err)

	v, ok := stats.Value("park_area_km2")
	require.True(t, ok)
	assert.Zero(t, v)
}

func TestComputeDensity(t *testing.T) {
	e := newEngine(t)
	records := []model.POIRecord{
		poi("n/1", model.CategorySchool, 0.5),
		poi("n/2", model.CategoryUnclassified, 0.5),
		poi("n/3", model.CategoryCafe, 1.0),
	}

	stats, _, err := e.Compute(context.Background(), center, records, nil, []string{"poi_density"})
	require.NoError(t, err)

	// poi_density counts everything within 2km, unclassified included.
	v, ok := stats.Value("poi_density")
	require.True(t, ok)
	assert.InDelta(t, 3/(math.Pi*4), v, 0.01)
}

func TestComputeRoadMetrics(t *testing.T) {
	e := newEngine(t)
	network := roads.NewNetwork([]roads.Segment{
		{Class: roads.ClassMain, Coords: [][2]float64{
			{center.Lon, center.Lat},
			{center.Lon, center.Lat + 1.0/111.195},
		}},
	})

	stats, warnings, err := e.Compute(context.Background(), center, nil, network,
		[]string{"road_density_km_per_km2", "main_road_count"})
	require.NoError(t, err)
	assert.Empty(t, warnings)

	density, ok := stats.Value("road_density_km_per_km2")
	require.True(t, ok)
	assert.InDelta(t, 1.0/(math.Pi*4), density, 0.01)

	mains, ok := stats.Value("main_road_count")
	require.True(t, ok)
	assert.Equal(t, 1.0, mains)
}

func TestComputeRoadMetricsWithoutNetwork(t *testing.T) {
	e := newEngine(t)
	records := []model.POIRecord{poi("n/1", model.CategorySchool, 0.5)}

	stats, warnings, err := e.Compute(context.Background(), center, records, nil,
		[]string{"school_count", "main_road_count"})
	require.NoError(t, err)
	assert.NotEmpty(t, warnings)

	_, ok := stats.Value("school_count")
	assert.True(t, ok)
	assert.Nil(t, stats["main_road_count"])
}

func TestComputeAllFailedIsComputationError(t *testing.T) {
	e := newEngine(t)

	_, _, err := e.Compute(context.Background(), center, nil, nil,
		[]string{"main_road_count", "road_density_km_per_km2"})
	require.Error(t, err)

	kind, ok := model.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, model.ErrKindComputation, kind)
}

func TestComputeWalkability(t *testing.T) {
	e := newEngine(t)
	network := roads.NewNetwork([]roads.Segment{
		{Class: roads.ClassMinor, Coords: [][2]float64{
			{center.Lon, center.Lat},
			{center.Lon, center.Lat + 1.0/111.195},
		}},
	})
	var records []model.POIRecord
	for i := 0; i < 50; i++ {
		records = append(records, poi("n/school", model.CategorySchool, 0.5))
	}

	stats, _, err := e.Compute(context.Background(), center, records, network, []string{"walkability_score"})
	require.NoError(t, err)

	// Dependencies are computed implicitly.
	_, ok := stats.Value("poi_density")
	assert.True(t, ok)
	_, ok = stats.Value("road_density_km_per_km2")
	assert.True(t, ok)

	v, ok := stats.Value("walkability_score")
	require.True(t, ok)
	assert.Greater(t, v, 0.0)
	assert.LessOrEqual(t, v, 100.0)
}

func TestComputeWalkabilityNullWithoutRoads(t *testing.T) {
	e := newEngine(t)
	records := []model.POIRecord{poi("n/1", model.CategorySchool, 0.5)}

	stats, warnings, err := e.Compute(context.Background(), center, records, nil, []string{"walkability_score"})
	require.NoError(t, err)
	assert.NotEmpty(t, warnings)

	// road_density is unavailable, so the composite degrades to null rather
	// than failing the run.
	assert.Nil(t, stats["walkability_score"])
}

func TestComputeAccessibility(t *testing.T) {
	e := newEngine(t)
	records := []model.POIRecord{
		poi("n/1", model.CategoryMetroStation, 0.5),
		poi("n/2", model.CategoryBusStop, 0.2),
		poi("n/3", model.CategoryBusStop, 0.3),
	}

	stats, _, err := e.Compute(context.Background(), center, records, nil, []string{"accessibility_score"})
	require.NoError(t, err)

	v, ok := stats.Value("accessibility_score")
	require.True(t, ok)
	assert.Greater(t, v, 0.0)
	assert.LessOrEqual(t, v, 100.0)
}

func TestComputeGreenSpaceRatio(t *testing.T) {
	e := newEngine(t)
	records := []model.POIRecord{squarePolyRecord("w/1", model.CategoryPark, 0.5, 500)}

	stats, _, err := e.Compute(context.Background(), center, records, nil, []string{"green_space_ratio"})
	require.NoError(t, err)

	park, ok := stats.Value("park_area_km2")
	require.True(t, ok)

	v, ok := stats.Value("green_space_ratio")
	require.True(t, ok)
	assert.InDelta(t, park/(math.Pi*4), v, 0.001)
}

func TestComputeDiversity(t *testing.T) {
	e := newEngine(t)

	single := []model.POIRecord{
		poi("n/1", model.CategoryCafe, 0.5),
		poi("n/2", model.CategoryCafe, 0.6),
	}
	stats, _, err := e.Compute(context.Background(), center, single, nil, []string{"amenity_diversity_score"})
	require.NoError(t, err)
	v, ok := stats.Value("amenity_diversity_score")
	require.True(t, ok)
	assert.Zero(t, v)

	// Two categories in equal proportion: maximum diversity.
	balanced := []model.POIRecord{
		poi("n/1", model.CategoryCafe, 0.5),
		poi("n/2", model.CategorySchool, 0.5),
	}
	stats, _, err = e.Compute(context.Background(), center, balanced, nil, []string{"amenity_diversity_score"})
	require.NoError(t, err)
	v, ok = stats.Value("amenity_diversity_score")
	require.True(t, ok)
	assert.InDelta(t, 100.0, v, 0.1)
}

func TestComputeCanceledContext(t *testing.T) {
	e := newEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := e.Compute(ctx, center, nil, nil, []string{"school_count"})
	require.Error(t, err)

	kind, ok := model.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, model.ErrKindComputation, kind)
}

func TestComputeUnknownIDsIgnored(t *testing.T) {
	e := newEngine(t)

	stats, _, err := e.Compute(context.Background(), center, nil, nil,
		[]string{"school_count", "not_a_metric"})
	require.NoError(t, err)

	_, present := stats["not_a_metric"]
	assert.False(t, present)
	_, present = stats["school_count"]
	assert.True(t, present)
}
