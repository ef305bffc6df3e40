package model

import (
	"github.com/twpayne/go-geom"
)

// Category is a canonical POI category assigned by the data quality pipeline.
// Raw OSM tags are many-to-one mapped onto these values.
type Category string

// Canonical categories. CategoryUnclassified is retained for total-density
// computations only and is excluded from category-specific metrics.
const (
	CategorySchool          Category = "school"
	CategoryKindergarten    Category = "kindergarten"
	CategoryChildcare       Category = "childcare"
	CategoryTuition         Category = "tuition"
	CategoryUniversity      Category = "university"
	CategoryLibrary         Category = "library"
	CategoryHospital        Category = "hospital"
	CategoryPharmacy        Category = "pharmacy"
	CategoryVeterinary      Category = "veterinary"
	CategoryRestaurant      Category = "restaurant"
	CategoryCafe            Category = "cafe"
	CategoryFastFood        Category = "fast_food"
	CategoryNightlife       Category = "nightlife"
	CategoryCinema          Category = "cinema"
	CategoryCommunityCentre Category = "community_centre"
	CategoryPlaceOfWorship  Category = "place_of_worship"
	CategoryPark            Category = "park"
	CategoryPlayground      Category = "playground"
	CategorySportsCentre    Category = "sports_centre"
	CategoryFitness         Category = "fitness"
	CategoryShop            Category = "shop"
	CategorySupermarket     Category = "supermarket"
	CategoryConvenience     Category = "convenience"
	CategoryBank            Category = "bank"
	CategoryFuel            Category = "fuel"
	CategoryPolice          Category = "police"
	CategoryFireStation     Category = "fire_station"
	CategoryPostOffice      Category = "post_office"
	CategoryParking         Category = "parking"
	CategoryMetroStation    Category = "metro_station"
	CategoryBusStop         Category = "bus_stop"
	CategoryHotel           Category = "hotel"
	CategoryResidential     Category = "residential_building"
	CategoryUnclassified    Category = "unclassified"
)

// POIRecord is a single OpenStreetMap-style feature. The provider creates
// records with raw tags and geometry; the data quality pipeline assigns or
// corrects Category. Records are treated as immutable afterwards.
type POIRecord struct {
	// ID is the external feature id, e.g. "node/240949599" or "way/38407529".
	ID string `json:"id"`

	// Source names the backend the record came from ("overpass", "fixture").
	Source string `json:"source"`

	// Name is the feature's display name, empty when untagged.
	Name string `json:"name,omitempty"`

	// Category is the canonical category. Zero value means not yet classified.
	Category Category `json:"category,omitempty"`

	// Tags holds the raw key=value tag mapping.
	Tags map[string]string `json:"tags,omitempty"`

	// Geometry is a *geom.Point or *geom.Polygon in lon/lat (EPSG:4326).
	Geometry geom.T `json:"-"`
}

// Centroid returns the record's representative lon/lat coordinate.
// Polygons use the ring vertex average, which is stable and cheap; the
// metrics engine never needs a mass centroid.
func (p POIRecord) Centroid() (lon, lat float64, ok bool) {
	switch g := p.Geometry.(type) {
	case *geom.Point:
		c := g.Coords()
		return c[0], c[1], true
	case *geom.Polygon:
		if g.NumLinearRings() == 0 {
			return 0, 0, false
		}
		ring := g.LinearRing(0).Coords()
		if len(ring) == 0 {
			return 0, 0, false
		}
		// Closing vertex repeats the first; skip it so it isn't double weighted.
		n := len(ring)
		if n > 1 && ring[0].Equal(geom.XY, ring[n-1]) {
			n--
		}
		if n == 0 {
			return 0, 0, false
		}
		var sx, sy float64
		for i := 0; i < n; i++ {
			sx += ring[i][0]
			sy += ring[i][1]
		}
		return sx / float64(n), sy / float64(n), true
	default:
		return 0, 0, false
	}
}

// TagCompleteness scores how complete a record's tag data is, used as the
// dedupe keep criterion.
func (p POIRecord) TagCompleteness() int {
	n := len(p.Tags)
	if p.Name != "" {
		n++
	}
	return n
}
