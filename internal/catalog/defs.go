package catalog

import "github.com/sells-group/locality-lens/internal/model"

// Known profile names.
const (
	ProfileBachelor = "Bachelor/Young Professional"
	ProfileFamily   = "Family with Kids"
	ProfileStudent  = "Student"
	ProfileSenior   = "Senior Citizen"
	ProfileWorking  = "Working Professional"
	ProfileCustom   = "Custom"
)

// profileDefaults ranks default metrics per profile; the ranking doubles as
// the padding source when the intent selector returns fewer than five ids.
var profileDefaults = map[string][]string{
	ProfileBachelor: {
		"restaurant_count",
		"nightlife_count",
		"metro_station_count",
		"gym_fitness_count",
		"cafe_count",
		"poi_density",
		"walkability_score",
	},
	ProfileFamily: {
		"school_count",
		"park_area_km2",
		"hospital_count",
		"playground_count",
		"kindergarten_count",
		"childcare_count",
		"green_space_ratio",
	},
	ProfileStudent: {
		"university_count",
		"library_count",
		"cafe_count",
		"fast_food_count",
		"bus_stop_count",
		"metro_station_count",
		"poi_density",
	},
	ProfileSenior: {
		"hospital_count",
		"pharmacy_count",
		"park_area_km2",
		"place_of_worship_count",
		"accessibility_score",
		"bus_stop_count",
		"community_centre_count",
	},
	ProfileWorking: {
		"metro_station_count",
		"bus_stop_count",
		"restaurant_count",
		"bank_atm_count",
		"gym_fitness_count",
		"poi_density",
		"road_density_km_per_km2",
	},
	ProfileCustom: {
		"school_count",
		"hospital_count",
		"restaurant_count",
		"park_area_km2",
		"metro_station_count",
		"bus_stop_count",
		"poi_density",
	},
}

// builtinDefinitions returns a fresh copy of the full metric catalog.
func builtinDefinitions() []Definition {
	return []Definition{
		// ---- essential amenities ----
		{
			ID: "school_count", Name: "School Count",
			Description: "Number of schools within 2km radius",
			Category:    "education", Kind: KindCount, Unit: "count", RadiusKM: 2.0,
			Keywords:    []string{"school", "education", "learning", "academic"},
			RelevantFor: []string{"family", "student", "parent"}, Priority: "high",
			SourceCategories: []model.Category{model.CategorySchool},
		},
		{
			ID: "hospital_count", Name: "Hospital & Clinic Count",
			Description: "Number of hospitals, clinics, and medical facilities within 2km",
			Category:    "healthcare", Kind: KindCount, Unit: "count", RadiusKM: 2.0,
			Keywords:    []string{"hospital", "clinic", "medical", "health", "doctor"},
			RelevantFor: []string{"family", "senior_citizen", "all"}, Priority: "high",
			SourceCategories: []model.Category{model.CategoryHospital},
		},
		{
			ID: "restaurant_count", Name: "Restaurant Count",
			Description: "Number of restaurants, cafes, and food courts within 1km",
			Category:    "food_dining", Kind: KindCount, Unit: "count", RadiusKM: 1.0,
			Keywords:    []string{"restaurant", "food", "dining", "cuisine"},
			RelevantFor: []string{"bachelor", "young_professional", "all"}, Priority: "high",
			SourceCategories: []model.Category{model.CategoryRestaurant, model.CategoryCafe, model.CategoryFastFood},
		},
		{
			ID: "park_area_km2", Name: "Park Area",
			Description: "Total area of parks and gardens in square kilometers within 2km",
			Category:    "green_space", Kind: KindArea, Unit: "km²", RadiusKM: 2.0,
			Keywords:    []string{"park", "garden", "green", "nature", "outdoor"},
			RelevantFor: []string{"family", "senior_citizen", "all"}, Priority: "high",
			SourceCategories: []model.Category{model.CategoryPark},
		},
		{
			ID: "shopping_count", Name: "Shopping Count",
			Description: "Number of shops, markets, and retail stores within 1km",
			Category:    "shopping", Kind: KindCount, Unit: "count", RadiusKM: 1.0,
			Keywords:    []string{"shop", "shopping", "market", "retail", "mall"},
			RelevantFor: []string{"family", "all"}, Priority: "medium",
			SourceCategories: []model.Category{model.CategoryShop, model.CategorySupermarket, model.CategoryConvenience},
		},
		{
			ID: "bank_atm_count", Name: "Bank & ATM Count",
			Description: "Number of banks and ATMs within 1km",
			Category:    "financial", Kind: KindCount, Unit: "count", RadiusKM: 1.0,
			Keywords:    []string{"bank", "atm", "financial", "cash"},
			RelevantFor: []string{"working_professional", "all"}, Priority: "medium",
			SourceCategories: []model.Category{model.CategoryBank},
		},
		{
			ID: "pharmacy_count", Name: "Pharmacy Count",
			Description: "Number of pharmacies and drug stores within 1km",
			Category:    "healthcare", Kind: KindCount, Unit: "count", RadiusKM: 1.0,
			Keywords:    []string{"pharmacy", "drug", "medicine"},
			RelevantFor: []string{"family", "senior_citizen", "all"}, Priority: "medium",
			SourceCategories: []model.Category{model.CategoryPharmacy},
		},
		{
			ID: "gym_fitness_count", Name: "Gym & Fitness Count",
			Description: "Number of gyms and fitness centers within 1km",
			Category:    "lifestyle", Kind: KindCount, Unit: "count", RadiusKM: 1.0,
			Keywords:    []string{"gym", "fitness", "exercise", "workout"},
			RelevantFor: []string{"bachelor", "young_professional", "working_professional"}, Priority: "medium",
			SourceCategories: []model.Category{model.CategoryFitness},
		},
		{
			ID: "library_count", Name: "Library Count",
			Description: "Number of libraries within 2km",
			Category:    "education", Kind: KindCount, Unit: "count", RadiusKM: 2.0,
			Keywords:    []string{"library", "books", "reading", "study"},
			RelevantFor: []string{"student", "family"}, Priority: "low",
			SourceCategories: []model.Category{model.CategoryLibrary},
		},
		{
			ID: "place_of_worship_count", Name: "Places of Worship",
			Description: "Number of temples, mosques, churches within 2km",
			Category:    "cultural", Kind: KindCount, Unit: "count", RadiusKM: 2.0,
			Keywords:    []string{"temple", "mosque", "church", "worship"},
			RelevantFor: []string{"family", "senior_citizen"}, Priority: "low",
			SourceCategories: []model.Category{model.CategoryPlaceOfWorship},
		},

		// ---- transportation & connectivity ----
		{
			ID: "metro_station_count", Name: "Metro Station Count",
			Description: "Number of metro/subway stations within 2km",
			Category:    "transportation", Kind: KindCount, Unit: "count", RadiusKM: 2.0,
			Keywords:    []string{"metro", "subway", "train", "transit"},
			RelevantFor: []string{"working_professional", "bachelor", "all"}, Priority: "high",
			SourceCategories: []model.Category{model.CategoryMetroStation},
		},
		{
			ID: "bus_stop_count", Name: "Bus Stop Count",
			Description: "Number of bus stops within 500m",
			Category:    "transportation", Kind: KindCount, Unit: "count", RadiusKM: 0.5,
			Keywords:    []string{"bus", "public_transport", "commute"},
			RelevantFor: []string{"student", "working_professional", "all"}, Priority: "high",
			SourceCategories: []model.Category{model.CategoryBusStop},
		},
		{
			ID: "nearest_metro_distance_km", Name: "Nearest Metro Distance",
			Description: "Distance to nearest metro station in kilometers",
			Category:    "transportation", Kind: KindDistance, Unit: "km", RadiusKM: 5.0,
			Keywords:    []string{"metro", "distance", "accessibility", "commute"},
			RelevantFor: []string{"working_professional", "bachelor"}, Priority: "high",
			SourceCategories: []model.Category{model.CategoryMetroStation},
		},
		{
			ID: "road_density_km_per_km2", Name: "Road Density",
			Description: "Total road length per square kilometer",
			Category:    "connectivity", Kind: KindDensity, Unit: "km/km²", RadiusKM: 2.0,
			Keywords:    []string{"road", "connectivity", "infrastructure"},
			RelevantFor: []string{"working_professional", "all"}, Priority: "medium",
		},
		{
			ID: "main_road_count", Name: "Main Road Count",
			Description: "Number of primary and secondary roads within 2km",
			Category:    "connectivity", Kind: KindCount, Unit: "count", RadiusKM: 2.0,
			Keywords:    []string{"road", "highway", "main_road"},
			RelevantFor: []string{"working_professional", "all"}, Priority: "low",
		},
		{
			ID: "walkability_score", Name: "Walkability Score",
			Description: "Composite score (0-100) based on POI density and road connectivity",
			Category:    "composite", Kind: KindComposite, Unit: "score", RadiusKM: 1.0,
			Keywords:    []string{"walkability", "pedestrian", "walking"},
			RelevantFor: []string{"bachelor", "young_professional", "senior_citizen"}, Priority: "medium",
			Dependencies: []string{"poi_density", "road_density_km_per_km2"},
		},

		// ---- lifestyle & entertainment ----
		{
			ID: "nightlife_count", Name: "Nightlife Count",
			Description: "Number of bars, pubs, and nightclubs within 1km",
			Category:    "entertainment", Kind: KindCount, Unit: "count", RadiusKM: 1.0,
			Keywords:    []string{"bar", "pub", "nightclub", "nightlife"},
			RelevantFor: []string{"bachelor", "young_professional"}, Priority: "medium",
			SourceCategories: []model.Category{model.CategoryNightlife},
		},
		{
			ID: "cafe_count", Name: "Cafe Count",
			Description: "Number of cafes (separate from restaurants) within 1km",
			Category:    "food_dining", Kind: KindCount, Unit: "count", RadiusKM: 1.0,
			Keywords:    []string{"cafe", "coffee", "coffee_shop"},
			RelevantFor: []string{"bachelor", "young_professional", "student"}, Priority: "low",
			SourceCategories: []model.Category{model.CategoryCafe},
		},
		{
			ID: "fast_food_count", Name: "Fast Food Count",
			Description: "Number of fast food joints within 1km",
			Category:    "food_dining", Kind: KindCount, Unit: "count", RadiusKM: 1.0,
			Keywords:    []string{"fast_food", "quick_food", "convenience"},
			RelevantFor: []string{"bachelor", "student"}, Priority: "low",
			SourceCategories: []model.Category{model.CategoryFastFood},
		},
		{
			ID: "cinema_count", Name: "Cinema Count",
			Description: "Number of movie theaters and cinemas within 2km",
			Category:    "entertainment", Kind: KindCount, Unit: "count", RadiusKM: 2.0,
			Keywords:    []string{"cinema", "movie", "theater"},
			RelevantFor: []string{"bachelor", "young_professional", "family"}, Priority: "low",
			SourceCategories: []model.Category{model.CategoryCinema},
		},
		{
			ID: "playground_count", Name: "Playground Count",
			Description: "Number of playgrounds within 1km",
			Category:    "recreation", Kind: KindCount, Unit: "count", RadiusKM: 1.0,
			Keywords:    []string{"playground", "kids", "children", "play"},
			RelevantFor: []string{"family"}, Priority: "medium",
			SourceCategories: []model.Category{model.CategoryPlayground},
		},
		{
			ID: "sports_facility_count", Name: "Sports Facility Count",
			Description: "Number of sports centers and facilities within 2km",
			Category:    "recreation", Kind: KindCount, Unit: "count", RadiusKM: 2.0,
			Keywords:    []string{"sports", "sports_centre", "recreation"},
			RelevantFor: []string{"bachelor", "young_professional", "family"}, Priority: "low",
			SourceCategories: []model.Category{model.CategorySportsCentre},
		},
		{
			ID: "hotel_count", Name: "Hotel Count",
			Description: "Number of hotels within 2km",
			Category:    "tourism", Kind: KindCount, Unit: "count", RadiusKM: 2.0,
			Keywords:    []string{"hotel", "accommodation", "tourism"},
			RelevantFor: []string{"all"}, Priority: "low",
			SourceCategories: []model.Category{model.CategoryHotel},
		},
		{
			ID: "community_centre_count", Name: "Community Centre Count",
			Description: "Number of community centers within 2km",
			Category:    "social", Kind: KindCount, Unit: "count", RadiusKM: 2.0,
			Keywords:    []string{"community", "social", "gathering"},
			RelevantFor: []string{"family", "senior_citizen"}, Priority: "low",
			SourceCategories: []model.Category{model.CategoryCommunityCentre},
		},

		// ---- education & childcare ----
		{
			ID: "university_count", Name: "University Count",
			Description: "Number of universities and colleges within 2km",
			Category:    "education", Kind: KindCount, Unit: "count", RadiusKM: 2.0,
			Keywords:    []string{"university", "college", "higher_education"},
			RelevantFor: []string{"student"}, Priority: "high",
			SourceCategories: []model.Category{model.CategoryUniversity},
		},
		{
			ID: "kindergarten_count", Name: "Kindergarten Count",
			Description: "Number of kindergartens within 2km",
			Category:    "education", Kind: KindCount, Unit: "count", RadiusKM: 2.0,
			Keywords:    []string{"kindergarten", "preschool"},
			RelevantFor: []string{"family"}, Priority: "medium",
			SourceCategories: []model.Category{model.CategoryKindergarten},
		},
		{
			ID: "childcare_count", Name: "Childcare Count",
			Description: "Number of daycare centers within 2km",
			Category:    "childcare", Kind: KindCount, Unit: "count", RadiusKM: 2.0,
			Keywords:    []string{"childcare", "daycare"},
			RelevantFor: []string{"family"}, Priority: "medium",
			SourceCategories: []model.Category{model.CategoryChildcare},
		},
		{
			ID: "tuition_centre_count", Name: "Tuition Centre Count",
			Description: "Number of coaching and tuition centers within 2km",
			Category:    "education", Kind: KindCount, Unit: "count", RadiusKM: 2.0,
			Keywords:    []string{"tuition", "coaching", "tutoring"},
			RelevantFor: []string{"family", "student"}, Priority: "low",
			SourceCategories: []model.Category{model.CategoryTuition},
		},

		// ---- daily needs & services ----
		{
			ID: "supermarket_count", Name: "Supermarket Count",
			Description: "Number of supermarkets within 1km",
			Category:    "shopping", Kind: KindCount, Unit: "count", RadiusKM: 1.0,
			Keywords:    []string{"supermarket", "grocery", "groceries"},
			RelevantFor: []string{"family", "all"}, Priority: "high",
			SourceCategories: []model.Category{model.CategorySupermarket},
		},
		{
			ID: "convenience_store_count", Name: "Convenience Store Count",
			Description: "Number of convenience stores within 500m",
			Category:    "shopping", Kind: KindCount, Unit: "count", RadiusKM: 0.5,
			Keywords:    []string{"convenience", "store", "corner_shop"},
			RelevantFor: []string{"bachelor", "student", "all"}, Priority: "medium",
			SourceCategories: []model.Category{model.CategoryConvenience},
		},
		{
			ID: "fuel_station_count", Name: "Fuel Station Count",
			Description: "Number of fuel stations within 2km",
			Category:    "services", Kind: KindCount, Unit: "count", RadiusKM: 2.0,
			Keywords:    []string{"fuel", "petrol", "gas_station"},
			RelevantFor: []string{"working_professional", "all"}, Priority: "low",
			SourceCategories: []model.Category{model.CategoryFuel},
		},
		{
			ID: "police_station_count", Name: "Police Station Count",
			Description: "Number of police stations within 2km",
			Category:    "safety", Kind: KindCount, Unit: "count", RadiusKM: 2.0,
			Keywords:    []string{"police", "safety", "security"},
			RelevantFor: []string{"family", "all"}, Priority: "medium",
			SourceCategories: []model.Category{model.CategoryPolice},
		},
		{
			ID: "fire_station_count", Name: "Fire Station Count",
			Description: "Number of fire stations within 2km",
			Category:    "safety", Kind: KindCount, Unit: "count", RadiusKM: 2.0,
			Keywords:    []string{"fire", "emergency"},
			RelevantFor: []string{"family", "all"}, Priority: "low",
			SourceCategories: []model.Category{model.CategoryFireStation},
		},
		{
			ID: "post_office_count", Name: "Post Office Count",
			Description: "Number of post offices within 2km",
			Category:    "services", Kind: KindCount, Unit: "count", RadiusKM: 2.0,
			Keywords:    []string{"post", "mail", "courier"},
			RelevantFor: []string{"senior_citizen", "all"}, Priority: "low",
			SourceCategories: []model.Category{model.CategoryPostOffice},
		},
		{
			ID: "parking_count", Name: "Parking Count",
			Description: "Number of public parking facilities within 1km",
			Category:    "services", Kind: KindCount, Unit: "count", RadiusKM: 1.0,
			Keywords:    []string{"parking", "car_park"},
			RelevantFor: []string{"working_professional"}, Priority: "low",
			SourceCategories: []model.Category{model.CategoryParking},
		},
		{
			ID: "veterinary_count", Name: "Veterinary Count",
			Description: "Number of veterinary clinics within 2km",
			Category:    "services", Kind: KindCount, Unit: "count", RadiusKM: 2.0,
			Keywords:    []string{"vet", "veterinary", "pets"},
			RelevantFor: []string{"family", "all"}, Priority: "low",
			SourceCategories: []model.Category{model.CategoryVeterinary},
		},

		// ---- nearest-distance metrics ----
		{
			ID: "nearest_hospital_distance_km", Name: "Nearest Hospital Distance",
			Description: "Distance to nearest hospital or clinic in kilometers",
			Category:    "healthcare", Kind: KindDistance, Unit: "km", RadiusKM: 5.0,
			Keywords:    []string{"hospital", "distance", "emergency"},
			RelevantFor: []string{"senior_citizen", "family"}, Priority: "high",
			SourceCategories: []model.Category{model.CategoryHospital},
		},
		{
			ID: "nearest_school_distance_km", Name: "Nearest School Distance",
			Description: "Distance to nearest school in kilometers",
			Category:    "education", Kind: KindDistance, Unit: "km", RadiusKM: 5.0,
			Keywords:    []string{"school", "distance"},
			RelevantFor: []string{"family"}, Priority: "medium",
			SourceCategories: []model.Category{model.CategorySchool},
		},
		{
			ID: "nearest_park_distance_km", Name: "Nearest Park Distance",
			Description: "Distance to nearest park or garden in kilometers",
			Category:    "green_space", Kind: KindDistance, Unit: "km", RadiusKM: 5.0,
			Keywords:    []string{"park", "distance", "green"},
			RelevantFor: []string{"family", "senior_citizen"}, Priority: "medium",
			SourceCategories: []model.Category{model.CategoryPark},
		},
		{
			ID: "nearest_bus_stop_distance_km", Name: "Nearest Bus Stop Distance",
			Description: "Distance to nearest bus stop in kilometers",
			Category:    "transportation", Kind: KindDistance, Unit: "km", RadiusKM: 2.0,
			Keywords:    []string{"bus", "distance", "transit"},
			RelevantFor: []string{"student", "senior_citizen"}, Priority: "medium",
			SourceCategories: []model.Category{model.CategoryBusStop},
		},

		// ---- densities ----
		{
			ID: "poi_density", Name: "POI Density",
			Description: "Total Points of Interest per square kilometer",
			Category:    "composite", Kind: KindDensity, Unit: "per km²", RadiusKM: 2.0,
			Keywords:    []string{"density", "poi", "amenities", "vibrancy"},
			RelevantFor: []string{"all"}, Priority: "high",
		},
		{
			ID: "healthcare_density", Name: "Healthcare Density",
			Description: "Hospitals, clinics, and pharmacies per square kilometer",
			Category:    "healthcare", Kind: KindDensity, Unit: "per km²", RadiusKM: 2.0,
			Keywords:    []string{"healthcare", "density", "medical"},
			RelevantFor: []string{"senior_citizen", "family"}, Priority: "medium",
			SourceCategories: []model.Category{model.CategoryHospital, model.CategoryPharmacy},
		},
		{
			ID: "shop_density", Name: "Shop Density",
			Description: "Retail shops per square kilometer",
			Category:    "shopping", Kind: KindDensity, Unit: "per km²", RadiusKM: 1.0,
			Keywords:    []string{"shop", "density", "retail"},
			RelevantFor: []string{"all"}, Priority: "low",
			SourceCategories: []model.Category{model.CategoryShop, model.CategorySupermarket, model.CategoryConvenience},
		},
		{
			ID: "residential_density", Name: "Residential Density",
			Description: "Estimated residential building density",
			Category:    "demographics", Kind: KindDensity, Unit: "per km²", RadiusKM: 2.0,
			Keywords:    []string{"residential", "housing", "population"},
			RelevantFor: []string{"all"}, Priority: "low",
			SourceCategories: []model.Category{model.CategoryResidential},
		},

		// ---- composites ----
		{
			ID: "green_space_ratio", Name: "Green Space Ratio",
			Description: "Ratio of park area to total area (0-1)",
			Category:    "composite", Kind: KindComposite, Unit: "ratio", RadiusKM: 2.0,
			Keywords:    []string{"green", "park", "ratio", "environment"},
			RelevantFor: []string{"family", "senior_citizen", "all"}, Priority: "medium",
			Dependencies: []string{"park_area_km2"},
		},
		{
			ID: "amenity_diversity_score", Name: "Amenity Diversity Score",
			Description: "Shannon diversity index of different amenity types (0-100)",
			Category:    "composite", Kind: KindComposite, Unit: "score", RadiusKM: 2.0,
			Keywords:    []string{"diversity", "variety", "amenities"},
			RelevantFor: []string{"all"}, Priority: "low",
		},
		{
			ID: "accessibility_score", Name: "Accessibility Score",
			Description: "Composite score based on transportation and POI density (0-100)",
			Category:    "composite", Kind: KindComposite, Unit: "score", RadiusKM: 2.0,
			Keywords:    []string{"accessibility", "mobility", "connectivity"},
			RelevantFor: []string{"senior_citizen", "all"}, Priority: "medium",
			Dependencies: []string{"metro_station_count", "bus_stop_count", "poi_density"},
		},
	}
}
