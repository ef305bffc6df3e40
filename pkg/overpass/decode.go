package overpass

import (
	"fmt"

	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/sells-group/locality-lens/internal/model"
)

type response struct {
	Elements []element `json:"elements"`
}

type element struct {
	Type     string            `json:"type"` // node, way, relation
	ID       int64             `json:"id"`
	Lat      float64           `json:"lat"`
	Lon      float64           `json:"lon"`
	Tags     map[string]string `json:"tags"`
	Geometry []latLon          `json:"geometry"` // way vertices under "out geom"
	Center   *latLon           `json:"center"`
	Bounds   *bounds           `json:"bounds"`
}

type latLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type bounds struct {
	MinLat float64 `json:"minlat"`
	MinLon float64 `json:"minlon"`
	MaxLat float64 `json:"maxlat"`
	MaxLon float64 `json:"maxlon"`
}

// decodeElements converts raw interpreter elements to POI records. Nodes
// become points. Closed ways become polygons, open ways degrade to their
// vertex-average point. Relations keep their center point when the server
// provides one; full multipolygon assembly is not worth the complexity for
// neighborhood-scale metrics.
func decodeElements(elements []element) []model.POIRecord {
	records := make([]model.POIRecord, 0, len(elements))
	skipped := 0

	for _, el := range elements {
		if len(el.Tags) == 0 {
			skipped++
			continue
		}

		var g geom.T
		switch el.Type {
		case "node":
			g = geom.NewPointFlat(geom.XY, []float64{el.Lon, el.Lat})
		case "way":
			g = wayGeometry(el)
		case "relation":
			if el.Center != nil {
				g = geom.NewPointFlat(geom.XY, []float64{el.Center.Lon, el.Center.Lat})
			} else if el.Bounds != nil {
				g = geom.NewPointFlat(geom.XY, []float64{
					(el.Bounds.MinLon + el.Bounds.MaxLon) / 2,
					(el.Bounds.MinLat + el.Bounds.MaxLat) / 2,
				})
			}
		}
		if g == nil {
			skipped++
			continue
		}

		records = append(records, model.POIRecord{
			ID:       fmt.Sprintf("%s/%d", el.Type, el.ID),
			Source:   "overpass",
			Name:     el.Tags["name"],
			Tags:     el.Tags,
			Geometry: g,
		})
	}

	if skipped > 0 {
		zap.L().Debug("overpass: skipped elements without usable geometry or tags",
			zap.Int("skipped", skipped),
		)
	}
	return records
}

func wayGeometry(el element) geom.T {
	n := len(el.Geometry)
	if n == 0 {
		if el.Center != nil {
			return geom.NewPointFlat(geom.XY, []float64{el.Center.Lon, el.Center.Lat})
		}
		return nil
	}

	closed := n >= 4 &&
		el.Geometry[0].Lat == el.Geometry[n-1].Lat &&
		el.Geometry[0].Lon == el.Geometry[n-1].Lon
	if closed {
		ring := make([]geom.Coord, 0, n)
		for _, v := range el.Geometry {
			ring = append(ring, geom.Coord{v.Lon, v.Lat})
		}
		return geom.NewPolygon(geom.XY).MustSetCoords([][]geom.Coord{ring})
	}

	// Open way: use the vertex average as a representative point.
	var sLat, sLon float64
	for _, v := range el.Geometry {
		sLat += v.Lat
		sLon += v.Lon
	}
	return geom.NewPointFlat(geom.XY, []float64{sLon / float64(n), sLat / float64(n)})
}
