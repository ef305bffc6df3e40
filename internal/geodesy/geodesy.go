// Package geodesy provides the small amount of closed-form spherical math
// the pipeline needs: great-circle distance, a local equal-area projection,
// and planar ring helpers for projected polygons.
package geodesy

import "math"

// EarthRadiusM is the mean Earth radius in meters (IUGG).
const EarthRadiusM = 6371008.8

// DistanceM returns the haversine great-circle distance in meters between
// two WGS84 points.
func DistanceM(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return 2 * EarthRadiusM * math.Asin(math.Min(1, math.Sqrt(a)))
}

// DistanceKM returns the haversine distance in kilometers.
func DistanceKM(lat1, lon1, lat2, lon2 float64) float64 {
	return DistanceM(lat1, lon1, lat2, lon2) / 1000
}

// Projection is a local sinusoidal projection centered on a reference
// longitude. Sinusoidal projections are equal-area, which is what the area
// metrics need; positional distortion over a few kilometers is negligible.
type Projection struct {
	lon0 float64
}

// NewProjection creates a projection centered on the given longitude.
func NewProjection(centerLon float64) Projection {
	return Projection{lon0: centerLon}
}

// Project converts lon/lat degrees to planar x/y meters.
func (p Projection) Project(lon, lat float64) (x, y float64) {
	phi := lat * math.Pi / 180
	dLambda := (lon - p.lon0) * math.Pi / 180
	return EarthRadiusM * dLambda * math.Cos(phi), EarthRadiusM * phi
}

// PointInRing reports whether (x, y) lies inside the ring using ray casting.
// The ring may or may not repeat its first vertex at the end.
func PointInRing(x, y float64, ring [][2]float64) bool {
	n := len(ring)
	if n < 3 {
		return false
	}
	inside := false
	j := n - 1
	for i := 0; i < n; i++ {
		xi, yi := ring[i][0], ring[i][1]
		xj, yj := ring[j][0], ring[j][1]
		if (yi > y) != (yj > y) &&
			x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			inside = !inside
		}
		j = i
	}
	return inside
}

// RingAreaM2 returns the absolute shoelace area of a projected ring in m².
func RingAreaM2(ring [][2]float64) float64 {
	n := len(ring)
	if n < 3 {
		return 0
	}
	var sum float64
	j := n - 1
	for i := 0; i < n; i++ {
		sum += (ring[j][0] + ring[i][0]) * (ring[j][1] - ring[i][1])
		j = i
	}
	return math.Abs(sum) / 2
}
