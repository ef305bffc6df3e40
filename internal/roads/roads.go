// Package roads loads a road network from an ESRI shapefile and answers the
// two questions the metrics engine asks of it: total road length near a
// point and the number of main roads near a point.
package roads

import (
	"github.com/sells-group/locality-lens/internal/geodesy"
	"github.com/sells-group/locality-lens/internal/model"
)

// Class buckets for road segments. Anything not recognized as a main road
// still counts toward total length.
type Class string

const (
	ClassMain  Class = "main"
	ClassMinor Class = "minor"
)

// Segment is one road polyline in lon/lat coordinates.
type Segment struct {
	Class  Class
	Coords [][2]float64 // lon, lat
}

// Network is an in-memory road network. It is immutable after loading and
// safe for concurrent reads.
type Network struct {
	segments []Segment
}

// NewNetwork wraps pre-built segments, used by tests and fixtures.
func NewNetwork(segments []Segment) *Network {
	return &Network{segments: segments}
}

// Len returns the number of segments.
func (n *Network) Len() int { return len(n.segments) }

// TotalLengthWithinKM sums road length in kilometers inside the given radius
// of center. Each polyline edge counts if its midpoint falls inside the
// radius, so edges straddling the boundary are attributed whole to one side
// and the result is deterministic.
func (n *Network) TotalLengthWithinKM(center model.Coordinates, radiusKM float64) float64 {
	var totalM float64
	for _, seg := range n.segments {
		for i := 1; i < len(seg.Coords); i++ {
			a, b := seg.Coords[i-1], seg.Coords[i]
			midLon := (a[0] + b[0]) / 2
			midLat := (a[1] + b[1]) / 2
			if geodesy.DistanceKM(center.Lat, center.Lon, midLat, midLon) > radiusKM {
				continue
			}
			totalM += geodesy.DistanceM(a[1], a[0], b[1], b[0])
		}
	}
	return totalM / 1000
}

// MainRoadCount counts main-class segments with at least one vertex inside
// the radius.
func (n *Network) MainRoadCount(center model.Coordinates, radiusKM float64) int {
	count := 0
	for _, seg := range n.segments {
		if seg.Class != ClassMain {
			continue
		}
		for _, c := range seg.Coords {
			if geodesy.DistanceKM(center.Lat, center.Lon, c[1], c[0]) <= radiusKM {
				count++
				break
			}
		}
	}
	return count
}
