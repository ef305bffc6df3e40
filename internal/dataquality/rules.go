package dataquality

import "github.com/sells-group/locality-lens/internal/model"

// rule maps an OSM tag pattern onto a canonical category. Values nil means
// any non-empty value for the key matches.
type rule struct {
	key      string
	values   []string
	category model.Category
}

// classificationRules is the ordered rule table. Evaluation is strictly
// top-down, first match wins, so a feature tagged both amenity=cafe and
// shop=bakery classifies as cafe. Key priority follows the OSM convention:
// amenity > leisure > shop > highway > railway > tourism > building.
var classificationRules = []rule{
	// amenity
	{"amenity", []string{"school"}, model.CategorySchool},
	{"amenity", []string{"kindergarten"}, model.CategoryKindergarten},
	{"amenity", []string{"childcare"}, model.CategoryChildcare},
	{"amenity", []string{"tuition"}, model.CategoryTuition},
	{"amenity", []string{"university", "college"}, model.CategoryUniversity},
	{"amenity", []string{"library"}, model.CategoryLibrary},
	{"amenity", []string{"hospital", "clinic", "doctors", "dentist"}, model.CategoryHospital},
	{"amenity", []string{"pharmacy"}, model.CategoryPharmacy},
	{"amenity", []string{"veterinary"}, model.CategoryVeterinary},
	{"amenity", []string{"restaurant", "food_court"}, model.CategoryRestaurant},
	{"amenity", []string{"cafe"}, model.CategoryCafe},
	{"amenity", []string{"fast_food"}, model.CategoryFastFood},
	{"amenity", []string{"bar", "pub", "nightclub"}, model.CategoryNightlife},
	{"amenity", []string{"cinema"}, model.CategoryCinema},
	{"amenity", []string{"community_centre"}, model.CategoryCommunityCentre},
	{"amenity", []string{"place_of_worship"}, model.CategoryPlaceOfWorship},
	{"amenity", []string{"bank", "atm"}, model.CategoryBank},
	{"amenity", []string{"fuel"}, model.CategoryFuel},
	{"amenity", []string{"police"}, model.CategoryPolice},
	{"amenity", []string{"fire_station"}, model.CategoryFireStation},
	{"amenity", []string{"post_office"}, model.CategoryPostOffice},
	{"amenity", []string{"parking"}, model.CategoryParking},
	{"amenity", []string{"gym"}, model.CategoryFitness},

	// leisure
	{"leisure", []string{"park", "garden", "recreation_ground"}, model.CategoryPark},
	{"leisure", []string{"playground"}, model.CategoryPlayground},
	{"leisure", []string{"sports_centre"}, model.CategorySportsCentre},
	{"leisure", []string{"fitness_centre", "gym"}, model.CategoryFitness},

	// shop
	{"shop", []string{"supermarket"}, model.CategorySupermarket},
	{"shop", []string{"convenience"}, model.CategoryConvenience},
	{"shop", nil, model.CategoryShop},

	// highway
	{"highway", []string{"bus_stop"}, model.CategoryBusStop},

	// railway
	{"railway", []string{"station", "subway", "light_rail", "tram", "subway_entrance"}, model.CategoryMetroStation},

	// tourism
	{"tourism", []string{"hotel", "hostel", "guest_house"}, model.CategoryHotel},

	// building
	{"building", []string{"residential", "apartments"}, model.CategoryResidential},
}

// Classify assigns the canonical category for a raw tag mapping. Records
// matching no rule land in the unclassified bucket, which is retained for
// total-density metrics only.
func Classify(tags map[string]string) model.Category {
	for _, r := range classificationRules {
		v, ok := tags[r.key]
		if !ok || v == "" {
			continue
		}
		if r.values == nil {
			return r.category
		}
		for _, want := range r.values {
			if v == want {
				return r.category
			}
		}
	}
	return model.CategoryUnclassified
}
