// Package store persists analysis runs and the POI fetch cache. Two
// implementations exist: SQLite for single-node deployments and Postgres
// for shared ones.
package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/locality-lens/internal/model"
)

// RunFilter narrows ListRuns.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store is the persistence interface for the analysis service.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, input model.RawInput) (*model.Run, error)
	UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error
	UpdateRunResult(ctx context.Context, runID string, result *model.AnalysisResult) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// POI fetch cache, keyed by the provider's request fingerprint.
	GetCachedPOIs(ctx context.Context, key string) ([]model.POIRecord, error)
	SetCachedPOIs(ctx context.Context, key string, records []model.POIRecord, ttl time.Duration) error
	DeleteExpiredPOIs(ctx context.Context) (int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// statusForResult maps a finished result onto the terminal run status.
func statusForResult(result *model.AnalysisResult) model.RunStatus {
	if result != nil && result.OK() {
		return model.RunStatusComplete
	}
	return model.RunStatusFailed
}

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrapf(err, "store: rows affected for %s %s", entity, id)
	}
	if n == 0 {
		return eris.Errorf("store: %s %s not found", entity, id)
	}
	return nil
}
