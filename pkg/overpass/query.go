package overpass

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sells-group/locality-lens/internal/model"
)

// selector is one Overpass tag filter. Empty values matches any value for
// the key.
type selector struct {
	key    string
	values []string
}

// categorySelectors inverts the classification rules: for each canonical
// category, the tag filters that fetch its features. The unclassified entry
// is the broad scan used by total-density metrics.
var categorySelectors = map[model.Category][]selector{
	model.CategorySchool:          {{"amenity", []string{"school"}}},
	model.CategoryKindergarten:    {{"amenity", []string{"kindergarten"}}},
	model.CategoryChildcare:       {{"amenity", []string{"childcare"}}},
	model.CategoryTuition:         {{"amenity", []string{"tuition"}}},
	model.CategoryUniversity:      {{"amenity", []string{"university", "college"}}},
	model.CategoryLibrary:         {{"amenity", []string{"library"}}},
	model.CategoryHospital:        {{"amenity", []string{"hospital", "clinic", "doctors", "dentist"}}},
	model.CategoryPharmacy:        {{"amenity", []string{"pharmacy"}}},
	model.CategoryVeterinary:      {{"amenity", []string{"veterinary"}}},
	model.CategoryRestaurant:      {{"amenity", []string{"restaurant", "food_court"}}},
	model.CategoryCafe:            {{"amenity", []string{"cafe"}}},
	model.CategoryFastFood:        {{"amenity", []string{"fast_food"}}},
	model.CategoryNightlife:       {{"amenity", []string{"bar", "pub", "nightclub"}}},
	model.CategoryCinema:          {{"amenity", []string{"cinema"}}},
	model.CategoryCommunityCentre: {{"amenity", []string{"community_centre"}}},
	model.CategoryPlaceOfWorship:  {{"amenity", []string{"place_of_worship"}}},
	model.CategoryBank:            {{"amenity", []string{"bank", "atm"}}},
	model.CategoryFuel:            {{"amenity", []string{"fuel"}}},
	model.CategoryPolice:          {{"amenity", []string{"police"}}},
	model.CategoryFireStation:     {{"amenity", []string{"fire_station"}}},
	model.CategoryPostOffice:      {{"amenity", []string{"post_office"}}},
	model.CategoryParking:         {{"amenity", []string{"parking"}}},
	model.CategoryFitness: {
		{"leisure", []string{"fitness_centre", "gym"}},
		{"amenity", []string{"gym"}},
	},
	model.CategoryPark:         {{"leisure", []string{"park", "garden", "recreation_ground"}}},
	model.CategoryPlayground:   {{"leisure", []string{"playground"}}},
	model.CategorySportsCentre: {{"leisure", []string{"sports_centre"}}},
	model.CategorySupermarket:  {{"shop", []string{"supermarket"}}},
	model.CategoryConvenience:  {{"shop", []string{"convenience"}}},
	model.CategoryShop:         {{"shop", nil}},
	model.CategoryBusStop:      {{"highway", []string{"bus_stop"}}},
	model.CategoryMetroStation: {{"railway", []string{"station", "subway", "light_rail", "tram", "subway_entrance"}}},
	model.CategoryHotel:        {{"tourism", []string{"hotel", "hostel", "guest_house"}}},
	model.CategoryResidential:  {{"building", []string{"residential", "apartments"}}},
	model.CategoryUnclassified: {
		{"amenity", nil},
		{"shop", nil},
		{"leisure", nil},
		{"tourism", nil},
	},
}

// BuildQuery renders the Overpass QL query fetching every category in radii
// at its own search radius around center. Output is deterministic: clauses
// are emitted in category order so identical requests produce identical
// query strings (and cache keys).
func BuildQuery(center model.Coordinates, radii map[model.Category]float64, timeoutSec int) string {
	cats := make([]string, 0, len(radii))
	for cat := range radii {
		cats = append(cats, string(cat))
	}
	sort.Strings(cats)

	var b strings.Builder
	fmt.Fprintf(&b, "[out:json][timeout:%d];\n(\n", timeoutSec)
	for _, name := range cats {
		cat := model.Category(name)
		radiusM := radii[cat]
		if radiusM <= 0 {
			continue
		}
		for _, sel := range categorySelectors[cat] {
			b.WriteString("  nwr")
			if sel.values == nil {
				fmt.Fprintf(&b, "[%q]", sel.key)
			} else if len(sel.values) == 1 {
				fmt.Fprintf(&b, "[%q=%q]", sel.key, sel.values[0])
			} else {
				fmt.Fprintf(&b, "[%q~\"^(%s)$\"]", sel.key, strings.Join(sel.values, "|"))
			}
			fmt.Fprintf(&b, "(around:%.0f,%.6f,%.6f);\n", radiusM, center.Lat, center.Lon)
		}
	}
	b.WriteString(");\nout geom;")
	return b.String()
}
