package store

import (
	"encoding/binary"
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/wkb"

	"github.com/sells-group/locality-lens/internal/model"
)

// storedPOI is the cache row representation of a record: plain fields as
// JSON, geometry as WKB so it round-trips exactly.
type storedPOI struct {
	ID       string            `json:"id"`
	Source   string            `json:"source"`
	Name     string            `json:"name,omitempty"`
	Category model.Category    `json:"category,omitempty"`
	Tags     map[string]string `json:"tags,omitempty"`
	WKB      []byte            `json:"wkb"`
}

// encodePOIs serializes records for a cache row.
func encodePOIs(records []model.POIRecord) ([]byte, error) {
	rows := make([]storedPOI, 0, len(records))
	for _, rec := range records {
		data, err := wkb.Marshal(rec.Geometry, binary.LittleEndian)
		if err != nil {
			return nil, eris.Wrapf(err, "store: encode geometry for %s", rec.ID)
		}
		rows = append(rows, storedPOI{
			ID:       rec.ID,
			Source:   rec.Source,
			Name:     rec.Name,
			Category: rec.Category,
			Tags:     rec.Tags,
			WKB:      data,
		})
	}
	out, err := json.Marshal(rows)
	return out, eris.Wrap(err, "store: marshal poi rows")
}

// decodePOIs restores records from a cache row.
func decodePOIs(data []byte) ([]model.POIRecord, error) {
	var rows []storedPOI
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, eris.Wrap(err, "store: unmarshal poi rows")
	}

	records := make([]model.POIRecord, 0, len(rows))
	for _, row := range rows {
		g, err := wkb.Unmarshal(row.WKB)
		if err != nil {
			return nil, eris.Wrapf(err, "store: decode geometry for %s", row.ID)
		}
		records = append(records, model.POIRecord{
			ID:       row.ID,
			Source:   row.Source,
			Name:     row.Name,
			Category: row.Category,
			Tags:     row.Tags,
			Geometry: g,
		})
	}
	return records, nil
}
