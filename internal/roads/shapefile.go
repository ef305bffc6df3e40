package roads

import (
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Field names that may carry the road class, in probe order. Geofabrik
// extracts use fclass, TIGER roads use MTFCC.
var classFields = []string{"fclass", "highway", "mtfcc"}

// mainClasses are the class values counted as main roads.
var mainClasses = map[string]bool{
	"motorway":  true,
	"trunk":     true,
	"primary":   true,
	"secondary": true,
	"S1100":     true, // TIGER primary road
	"S1200":     true, // TIGER secondary road
}

// LoadShapefile reads a polyline road shapefile into a Network. Non-polyline
// shapes are skipped; a missing class field degrades every segment to minor.
func LoadShapefile(shpPath string) (*Network, error) {
	reader, err := shp.Open(shpPath)
	if err != nil {
		return nil, eris.Wrapf(err, "roads: open shapefile %s", shpPath)
	}
	defer func() { _ = reader.Close() }()

	classIdx := -1
	for i, f := range reader.Fields() {
		name := strings.ToLower(strings.TrimRight(f.String(), "\x00"))
		for _, want := range classFields {
			if name == want {
				classIdx = i
				break
			}
		}
		if classIdx >= 0 {
			break
		}
	}

	var segments []Segment
	var skipped int

	for reader.Next() {
		_, shape := reader.Shape()
		pl, ok := shape.(*shp.PolyLine)
		if !ok || len(pl.Points) < 2 {
			skipped++
			continue
		}

		class := ClassMinor
		if classIdx >= 0 {
			val := strings.TrimSpace(strings.TrimRight(reader.Attribute(classIdx), "\x00"))
			if mainClasses[val] {
				class = ClassMain
			}
		}

		for i := int32(0); i < pl.NumParts; i++ {
			start := pl.Parts[i]
			end := int32(len(pl.Points))
			if i+1 < pl.NumParts {
				end = pl.Parts[i+1]
			}
			if end-start < 2 {
				continue
			}
			coords := make([][2]float64, 0, end-start)
			for j := start; j < end; j++ {
				coords = append(coords, [2]float64{pl.Points[j].X, pl.Points[j].Y})
			}
			segments = append(segments, Segment{Class: class, Coords: coords})
		}
	}

	if skipped > 0 {
		zap.L().Debug("roads: skipped non-polyline shapes",
			zap.String("path", shpPath),
			zap.Int("skipped", skipped),
		)
	}

	zap.L().Info("roads: network loaded",
		zap.String("path", shpPath),
		zap.Int("segments", len(segments)),
	)
	return &Network{segments: segments}, nil
}
