package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/sells-group/locality-lens/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestSQLiteRunLifecycle(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	input := model.RawInput{Location: "Indiranagar, Bangalore", Profile: "Student"}
	run, err := s.CreateRun(ctx, input)
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusQueued, run.Status)

	require.NoError(t, s.UpdateRunStatus(ctx, run.ID, model.RunStatusRunning))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusRunning, got.Status)
	assert.Equal(t, input, got.Input)

	v := 3.0
	result := &model.AnalysisResult{
		RunID:   run.ID,
		Summary: "a fine neighborhood",
		Statistics: []model.MetricValue{
			{ID: "school_count", Name: "School Count", Unit: "count", Value: &v},
		},
	}
	require.NoError(t, s.UpdateRunResult(ctx, run.ID, result))

	got, err = s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, got.Status)
	require.NotNil(t, got.Result)
	assert.Equal(t, "a fine neighborhood", got.Result.Summary)
	require.Len(t, got.Result.Statistics, 1)
	assert.Equal(t, 3.0, *got.Result.Statistics[0].Value)
}

func TestSQLiteFailedResultMarksRunFailed(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, model.RawInput{Location: "x", Profile: "y"})
	require.NoError(t, err)

	result := &model.AnalysisResult{
		RunID: run.ID,
		Error: &model.ErrorDescriptor{Kind: model.ErrKindGeocode, Message: "no match"},
	}
	require.NoError(t, s.UpdateRunResult(ctx, run.ID, result))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFailed, got.Status)
}

func TestSQLiteUpdateMissingRun(t *testing.T) {
	s := newTestSQLite(t)

	err := s.UpdateRunStatus(context.Background(), "nope", model.RunStatusRunning)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLiteListRuns(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := s.CreateRun(ctx, model.RawInput{Location: "x", Profile: "y"})
		require.NoError(t, err)
	}
	r, err := s.CreateRun(ctx, model.RawInput{Location: "z", Profile: "y"})
	require.NoError(t, err)
	require.NoError(t, s.UpdateRunStatus(ctx, r.ID, model.RunStatusRunning))

	all, err := s.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 4)

	running, err := s.ListRuns(ctx, RunFilter{Status: model.RunStatusRunning})
	require.NoError(t, err)
	require.Len(t, running, 1)
	assert.Equal(t, r.ID, running[0].ID)

	limited, err := s.ListRuns(ctx, RunFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func samplePOIs() []model.POIRecord {
	return []model.POIRecord{
		{
			ID:       "node/1",
			Source:   "overpass",
			Name:     "Cubbon Park",
			Category: model.CategoryPark,
			Tags:     map[string]string{"leisure": "park", "name": "Cubbon Park"},
			Geometry: geom.NewPointFlat(geom.XY, []float64{77.5929, 12.9763}),
		},
		{
			ID:       "way/2",
			Source:   "overpass",
			Category: model.CategoryResidential,
			Tags:     map[string]string{"building": "apartments"},
			Geometry: geom.NewPolygon(geom.XY).MustSetCoords([][]geom.Coord{{
				{77.59, 12.97}, {77.60, 12.97}, {77.60, 12.98}, {77.59, 12.98}, {77.59, 12.97},
			}}),
		},
	}
}

func TestSQLitePOICacheRoundTrip(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	miss, err := s.GetCachedPOIs(ctx, "key-a")
	require.NoError(t, err)
	assert.Nil(t, miss)

	records := samplePOIs()
	require.NoError(t, s.SetCachedPOIs(ctx, "key-a", records, time.Hour))

	got, err := s.GetCachedPOIs(ctx, "key-a")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "node/1", got[0].ID)
	assert.Equal(t, model.CategoryPark, got[0].Category)

	p, ok := got[0].Geometry.(*geom.Point)
	require.True(t, ok)
	assert.InDelta(t, 77.5929, p.Coords()[0], 1e-9)

	_, ok = got[1].Geometry.(*geom.Polygon)
	assert.True(t, ok)
}

func TestSQLitePOICacheExpiry(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.SetCachedPOIs(ctx, "stale", samplePOIs(), -time.Minute))

	got, err := s.GetCachedPOIs(ctx, "stale")
	require.NoError(t, err)
	assert.Nil(t, got)

	n, err := s.DeleteExpiredPOIs(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSQLitePOICacheOverwrite(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.SetCachedPOIs(ctx, "key", samplePOIs(), time.Hour))
	require.NoError(t, s.SetCachedPOIs(ctx, "key", samplePOIs()[:1], time.Hour))

	got, err := s.GetCachedPOIs(ctx, "key")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
