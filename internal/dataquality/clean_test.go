package dataquality

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/sells-group/locality-lens/internal/model"
)

var center = model.Coordinates{Lat: 12.9784, Lon: 77.6408}

func point(lat, lon float64) *geom.Point {
	return geom.NewPointFlat(geom.XY, []float64{lon, lat})
}

func record(id string, lat, lon float64, tags map[string]string) model.POIRecord {
	return model.POIRecord{
		ID:       id,
		Source:   "fixture",
		Name:     tags["name"],
		Tags:     tags,
		Geometry: point(lat, lon),
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		tags map[string]string
		want model.Category
	}{
		{"school", map[string]string{"amenity": "school"}, model.CategorySchool},
		{"clinic maps to hospital", map[string]string{"amenity": "clinic"}, model.CategoryHospital},
		{"pub maps to nightlife", map[string]string{"amenity": "pub"}, model.CategoryNightlife},
		{"supermarket before generic shop", map[string]string{"shop": "supermarket"}, model.CategorySupermarket},
		{"any other shop value", map[string]string{"shop": "electronics"}, model.CategoryShop},
		{"amenity wins over shop", map[string]string{"amenity": "cafe", "shop": "bakery"}, model.CategoryCafe},
		{"leisure wins over shop", map[string]string{"leisure": "park", "shop": "kiosk"}, model.CategoryPark},
		{"bus stop", map[string]string{"highway": "bus_stop"}, model.CategoryBusStop},
		{"railway station", map[string]string{"railway": "station"}, model.CategoryMetroStation},
		{"hotel", map[string]string{"tourism": "hotel"}, model.CategoryHotel},
		{"residential building", map[string]string{"building": "apartments"}, model.CategoryResidential},
		{"unknown tags", map[string]string{"natural": "tree"}, model.CategoryUnclassified},
		{"empty value ignored", map[string]string{"amenity": ""}, model.CategoryUnclassified},
		{"no tags", nil, model.CategoryUnclassified},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.tags))
		})
	}
}

func TestCleanDropsInvalidGeometry(t *testing.T) {
	records := []model.POIRecord{
		{ID: "n/1", Tags: map[string]string{"amenity": "school"}}, // nil geometry
		record("n/2", center.Lat, center.Lon, map[string]string{"amenity": "school"}),
		{ID: "w/3", Tags: map[string]string{"leisure": "park"},
			Geometry: geom.NewPolygon(geom.XY)}, // no rings
	}

	out := Clean(records, center, 2.0)
	require.Len(t, out, 1)
	assert.Equal(t, "n/2", out[0].ID)
	assert.Equal(t, model.CategorySchool, out[0].Category)
}

func TestCleanClipsToRadius(t *testing.T) {
	records := []model.POIRecord{
		record("n/near", center.Lat+0.001, center.Lon, map[string]string{"amenity": "school"}), // ~111m
		record("n/far", center.Lat+0.05, center.Lon, map[string]string{"amenity": "school"}),   // ~5.5km
	}

	out := Clean(records, center, 2.0)
	require.Len(t, out, 1)
	assert.Equal(t, "n/near", out[0].ID)
}

func TestCleanDeduplicatesByExternalID(t *testing.T) {
	records := []model.POIRecord{
		record("n/1", center.Lat, center.Lon, map[string]string{"amenity": "cafe"}),
		record("n/1", center.Lat+0.002, center.Lon, map[string]string{"amenity": "cafe", "name": "Blue Tokai", "cuisine": "coffee"}),
	}

	out := Clean(records, center, 2.0)
	require.Len(t, out, 1)
	// The more complete duplicate wins.
	assert.Equal(t, "Blue Tokai", out[0].Name)
}

func TestCleanDeduplicatesByProximity(t *testing.T) {
	// Two unnamed cafes 2m apart: one feature.
	records := []model.POIRecord{
		record("n/1", center.Lat, center.Lon, map[string]string{"amenity": "cafe"}),
		record("n/2", center.Lat+0.000018, center.Lon, map[string]string{"amenity": "cafe"}),
		// A school at the same spot is not a duplicate of a cafe.
		record("n/3", center.Lat, center.Lon, map[string]string{"amenity": "school"}),
	}

	out := Clean(records, center, 2.0)
	assert.Len(t, out, 2)
}

func TestCleanDeduplicatesByNormalizedName(t *testing.T) {
	// Same feature mapped as node and building way 100m apart.
	records := []model.POIRecord{
		record("n/1", center.Lat, center.Lon, map[string]string{"amenity": "school", "name": "St. Mary's  School"}),
		record("w/2", center.Lat+0.0009, center.Lon, map[string]string{"amenity": "school", "name": "st. mary's school"}),
	}

	out := Clean(records, center, 2.0)
	assert.Len(t, out, 1)
}

func TestCleanKeepsFirstSeenOnTie(t *testing.T) {
	records := []model.POIRecord{
		record("n/1", center.Lat, center.Lon, map[string]string{"amenity": "cafe"}),
		record("n/2", center.Lat, center.Lon, map[string]string{"amenity": "cafe"}),
	}

	out := Clean(records, center, 2.0)
	require.Len(t, out, 1)
	assert.Equal(t, "n/1", out[0].ID)
}

func TestCleanIdempotent(t *testing.T) {
	records := []model.POIRecord{
		record("n/1", center.Lat, center.Lon, map[string]string{"amenity": "cafe", "name": "Third Wave"}),
		record("n/2", center.Lat+0.00001, center.Lon, map[string]string{"amenity": "cafe", "name": "Third Wave", "cuisine": "coffee"}),
		record("n/3", center.Lat+0.005, center.Lon, map[string]string{"amenity": "school", "name": "DPS"}),
		record("w/4", center.Lat+0.0058, center.Lon, map[string]string{"amenity": "school", "name": "DPS", "operator": "DPS Trust"}),
		record("n/5", center.Lat-0.004, center.Lon, map[string]string{"highway": "bus_stop"}),
	}

	once := Clean(records, center, 2.0)
	twice := Clean(once, center, 2.0)

	require.Equal(t, len(once), len(twice))
	for i := range once {
		assert.Equal(t, once[i].ID, twice[i].ID)
		assert.Equal(t, once[i].Category, twice[i].Category)
	}
}

func TestCleanReturnsFreshSlice(t *testing.T) {
	records := []model.POIRecord{
		record("n/1", center.Lat, center.Lon, map[string]string{"amenity": "cafe"}),
	}
	out := Clean(records, center, 2.0)
	require.Len(t, out, 1)

	out[0].ID = "mutated"
	assert.Equal(t, "n/1", records[0].ID)
}

func TestCleanKeepsUnclassified(t *testing.T) {
	records := []model.POIRecord{
		record("n/1", center.Lat, center.Lon, map[string]string{"natural": "tree"}),
	}
	out := Clean(records, center, 2.0)
	require.Len(t, out, 1)
	assert.Equal(t, model.CategoryUnclassified, out[0].Category)
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "st. mary's school", NormalizeName("  St. Mary's   School "))
	assert.Equal(t, "", NormalizeName(""))
	// NFKC folds full-width forms.
	assert.Equal(t, "cafe 21", NormalizeName("Ｃａｆｅ ２１"))
}
