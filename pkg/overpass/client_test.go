package overpass

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/sells-group/locality-lens/internal/model"
	"github.com/sells-group/locality-lens/internal/resilience"
)

var center = model.Coordinates{Lat: 12.9784, Lon: 77.6408}

const sampleResponse = `{
	"elements": [
		{"type": "node", "id": 240949599, "lat": 12.9790, "lon": 77.6410,
		 "tags": {"amenity": "school", "name": "National Public School"}},
		{"type": "way", "id": 38407529,
		 "geometry": [
			{"lat": 12.9780, "lon": 77.6400},
			{"lat": 12.9780, "lon": 77.6420},
			{"lat": 12.9795, "lon": 77.6420},
			{"lat": 12.9795, "lon": 77.6400},
			{"lat": 12.9780, "lon": 77.6400}
		 ],
		 "tags": {"leisure": "park", "name": "Defence Colony Park"}},
		{"type": "node", "id": 7, "lat": 12.9, "lon": 77.6}
	]
}`

func TestBuildQuery(t *testing.T) {
	radii := map[model.Category]float64{
		model.CategorySchool:   2000,
		model.CategoryHospital: 2000,
		model.CategoryShop:     1000,
	}

	q := BuildQuery(center, radii, 25)

	assert.Contains(t, q, "[out:json][timeout:25];")
	assert.Contains(t, q, `nwr["amenity"="school"](around:2000,12.978400,77.640800);`)
	assert.Contains(t, q, `nwr["amenity"~"^(hospital|clinic|doctors|dentist)$"](around:2000,`)
	assert.Contains(t, q, `nwr["shop"](around:1000,`)
	assert.Contains(t, q, "out geom;")

	// Deterministic: same radii render the same query.
	assert.Equal(t, q, BuildQuery(center, radii, 25))
}

func TestBuildQueryUnclassifiedScan(t *testing.T) {
	q := BuildQuery(center, map[model.Category]float64{model.CategoryUnclassified: 2000}, 25)
	assert.Contains(t, q, `nwr["amenity"](around:2000,`)
	assert.Contains(t, q, `nwr["shop"](around:2000,`)
	assert.Contains(t, q, `nwr["leisure"](around:2000,`)
}

func TestFetchPOIsDecodesElements(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Contains(t, r.Form.Get("data"), "[out:json]")
		_, _ = w.Write([]byte(sampleResponse))
	}))
	defer srv.Close()

	c := NewClient(WithEndpoints(srv.URL))
	records, err := c.FetchPOIs(context.Background(), center, map[model.Category]float64{
		model.CategorySchool: 2000,
	})
	require.NoError(t, err)
	// The tagless node is dropped.
	require.Len(t, records, 2)

	assert.Equal(t, "node/240949599", records[0].ID)
	assert.Equal(t, "overpass", records[0].Source)
	assert.Equal(t, "National Public School", records[0].Name)
	_, isPoint := records[0].Geometry.(*geom.Point)
	assert.True(t, isPoint)

	assert.Equal(t, "way/38407529", records[1].ID)
	_, isPoly := records[1].Geometry.(*geom.Polygon)
	assert.True(t, isPoly, "closed way should decode as polygon")
}

func TestFetchPOIsFallsBackToNextEndpoint(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGatewayTimeout)
	}))
	defer bad.Close()
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"elements": []}`))
	}))
	defer good.Close()

	c := NewClient(WithEndpoints(bad.URL, good.URL))
	records, err := c.FetchPOIs(context.Background(), center, map[model.Category]float64{
		model.CategorySchool: 2000,
	})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestFetchPOIsAllEndpointsDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(WithEndpoints(srv.URL))
	_, err := c.FetchPOIs(context.Background(), center, map[model.Category]float64{
		model.CategorySchool: 2000,
	})
	require.Error(t, err)
	assert.True(t, resilience.IsTransient(err))
}

func TestFetchPOIsBreakerSkipsOpenEndpoint(t *testing.T) {
	calls := 0
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer bad.Close()
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"elements": []}`))
	}))
	defer good.Close()

	c := NewClient(
		WithEndpoints(bad.URL, good.URL),
		WithBreakerConfig(resilience.CircuitBreakerConfig{FailureThreshold: 1, ResetTimeout: time.Minute}),
	)

	radii := map[model.Category]float64{model.CategorySchool: 2000}
	for i := 0; i < 3; i++ {
		_, err := c.FetchPOIs(context.Background(), center, radii)
		require.NoError(t, err)
	}
	// The breaker opened after the first failure; later fetches skip it.
	assert.Equal(t, 1, calls)
}

func TestDecodeOpenWayBecomesPoint(t *testing.T) {
	records := decodeElements([]element{{
		Type: "way", ID: 9,
		Geometry: []latLon{{Lat: 12.0, Lon: 77.0}, {Lat: 12.1, Lon: 77.1}},
		Tags:     map[string]string{"highway": "bus_stop"},
	}})
	require.Len(t, records, 1)

	p, ok := records[0].Geometry.(*geom.Point)
	require.True(t, ok)
	assert.InDelta(t, 77.05, p.Coords()[0], 1e-9)
	assert.InDelta(t, 12.05, p.Coords()[1], 1e-9)
}

func TestDecodeRelationUsesCenter(t *testing.T) {
	records := decodeElements([]element{{
		Type: "relation", ID: 5,
		Center: &latLon{Lat: 12.5, Lon: 77.5},
		Tags:   map[string]string{"leisure": "park"},
	}})
	require.Len(t, records, 1)
	assert.Equal(t, "relation/5", records[0].ID)
}

func TestBuildQuerySkipsZeroRadius(t *testing.T) {
	q := BuildQuery(center, map[model.Category]float64{
		model.CategoryPark:   1500,
		model.CategorySchool: 0,
	}, 10)
	assert.Contains(t, q, `nwr["leisure"~"^(park|garden|recreation_ground)$"]`)
	assert.False(t, strings.Contains(q, "school"))
}
