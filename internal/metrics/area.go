package metrics

import (
	"math"

	"github.com/twpayne/go-geom"

	"github.com/sells-group/locality-lens/internal/geodesy"
	"github.com/sells-group/locality-lens/internal/model"
)

// gridCells is the number of cells across the search radius. Cell edge is
// radius/gridCells, so a 2km radius is covered at 10m resolution.
const gridCells = 200

// unionAreaM2 returns the union area in m² of the polygons, restricted to
// the circle of radiusM around center. Overlapping polygons are counted
// once: polygons are rasterized onto a fixed grid in a local equal-area
// projection and the covered cells form a set. The grid is anchored at the
// projected center, so the result is deterministic and adding a polygon can
// only grow it.
func unionAreaM2(polys []*geom.Polygon, center model.Coordinates, radiusM float64) float64 {
	if len(polys) == 0 {
		return 0
	}

	proj := geodesy.NewProjection(center.Lon)
	cx, cy := proj.Project(center.Lon, center.Lat)
	cell := radiusM / gridCells

	type cellKey struct{ i, j int }
	covered := make(map[cellKey]struct{})

	for _, poly := range polys {
		rings := projectRings(poly, proj)
		if len(rings) == 0 {
			continue
		}

		minX, minY, maxX, maxY := ringBounds(rings[0])
		i0 := int(math.Floor((minX - cx) / cell))
		i1 := int(math.Ceil((maxX - cx) / cell))
		j0 := int(math.Floor((minY - cy) / cell))
		j1 := int(math.Ceil((maxY - cy) / cell))

		for i := i0; i < i1; i++ {
			for j := j0; j < j1; j++ {
				x := cx + (float64(i)+0.5)*cell
				y := cy + (float64(j)+0.5)*cell
				if math.Hypot(x-cx, y-cy) > radiusM {
					continue
				}
				if !geodesy.PointInRing(x, y, rings[0]) {
					continue
				}
				inHole := false
				for _, hole := range rings[1:] {
					if geodesy.PointInRing(x, y, hole) {
						inHole = true
						break
					}
				}
				if inHole {
					continue
				}
				covered[cellKey{i, j}] = struct{}{}
			}
		}
	}

	return float64(len(covered)) * cell * cell
}

// projectRings projects every linear ring of the polygon into the plane.
// Ring 0 is the shell, the rest are holes.
func projectRings(poly *geom.Polygon, proj geodesy.Projection) [][][2]float64 {
	n := poly.NumLinearRings()
	rings := make([][][2]float64, 0, n)
	for r := 0; r < n; r++ {
		coords := poly.LinearRing(r).Coords()
		if len(coords) < 4 {
			if r == 0 {
				return nil
			}
			continue
		}
		ring := make([][2]float64, 0, len(coords))
		for _, c := range coords {
			x, y := proj.Project(c[0], c[1])
			ring = append(ring, [2]float64{x, y})
		}
		rings = append(rings, ring)
	}
	return rings
}

func ringBounds(ring [][2]float64) (minX, minY, maxX, maxY float64) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, p := range ring {
		minX = math.Min(minX, p[0])
		maxX = math.Max(maxX, p[0])
		minY = math.Min(minY, p[1])
		maxY = math.Max(maxY, p[1])
	}
	return minX, minY, maxX, maxY
}
