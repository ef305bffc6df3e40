package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/locality-lens/internal/model"
	"github.com/sells-group/locality-lens/internal/store"
)

type stubRunner struct {
	calls  atomic.Int64
	result *model.AnalysisResult
	done   chan struct{}
}

func (r *stubRunner) Run(_ context.Context, _ model.RawInput) *model.AnalysisResult {
	r.calls.Add(1)
	if r.done != nil {
		defer close(r.done)
	}
	if r.result != nil {
		return r.result
	}
	return &model.AnalysisResult{Summary: "fine"}
}

func newTestServer(t *testing.T, runner *stubRunner) (*httptest.Server, store.Store) {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.Migrate(context.Background()))

	srv := NewServer(st, runner)
	ts := httptest.NewServer(srv.Router([]string{"*"}))
	t.Cleanup(ts.Close)
	return ts, st
}

func TestHealth(t *testing.T) {
	ts, _ := newTestServer(t, &stubRunner{})

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestAnalyzeSync(t *testing.T) {
	runner := &stubRunner{result: &model.AnalysisResult{Summary: "a fine neighborhood"}}
	ts, st := newTestServer(t, runner)

	resp, err := http.Post(ts.URL+"/api/analyze", "application/json",
		strings.NewReader(`{"location":"Indiranagar","profile":"Student"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var result model.AnalysisResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "a fine neighborhood", result.Summary)
	assert.NotEmpty(t, result.RunID)
	assert.EqualValues(t, 1, runner.calls.Load())

	run, err := st.GetRun(context.Background(), result.RunID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, run.Status)
}

func TestAnalyzeSyncFailure(t *testing.T) {
	runner := &stubRunner{result: &model.AnalysisResult{
		Error: &model.ErrorDescriptor{Kind: model.ErrKindValidation, Message: "bad input"},
	}}
	ts, _ := newTestServer(t, runner)

	resp, err := http.Post(ts.URL+"/api/analyze", "application/json",
		strings.NewReader(`{"location":"x","profile":"y"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	var result model.AnalysisResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	require.NotNil(t, result.Error)
	assert.Equal(t, model.ErrKindValidation, result.Error.Kind)
}

func TestCreateRunAccepted(t *testing.T) {
	runner := &stubRunner{done: make(chan struct{})}
	ts, st := newTestServer(t, runner)

	resp, err := http.Post(ts.URL+"/api/runs", "application/json",
		strings.NewReader(`{"location":"Indiranagar","profile":"Student"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotEmpty(t, body["id"])
	assert.Equal(t, "queued", body["status"])

	select {
	case <-runner.done:
	case <-time.After(5 * time.Second):
		t.Fatal("background run never executed")
	}

	require.Eventually(t, func() bool {
		run, err := st.GetRun(context.Background(), body["id"])
		return err == nil && run.Status == model.RunStatusComplete
	}, 5*time.Second, 10*time.Millisecond)
}

func TestCreateRunValidation(t *testing.T) {
	ts, _ := newTestServer(t, &stubRunner{})

	cases := []struct {
		name string
		body string
	}{
		{"malformed json", `{`},
		{"missing location", `{"profile":"Student"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := http.Post(ts.URL+"/api/runs", "application/json", strings.NewReader(tc.body))
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestCreateRunEmptyProfileAccepted(t *testing.T) {
	runner := &stubRunner{done: make(chan struct{})}
	ts, _ := newTestServer(t, runner)

	resp, err := http.Post(ts.URL+"/api/runs", "application/json",
		strings.NewReader(`{"location":"Connaught Place, Delhi"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	select {
	case <-runner.done:
	case <-time.After(5 * time.Second):
		t.Fatal("background run never executed")
	}
}

func TestCreateRunFailedResult(t *testing.T) {
	runner := &stubRunner{
		done: make(chan struct{}),
		result: &model.AnalysisResult{
			Error: &model.ErrorDescriptor{Kind: model.ErrKindGeocode, Message: "no match"},
		},
	}
	ts, st := newTestServer(t, runner)

	resp, err := http.Post(ts.URL+"/api/runs", "application/json",
		strings.NewReader(`{"location":"Nowhereville","profile":"Student"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	<-runner.done

	require.Eventually(t, func() bool {
		run, err := st.GetRun(context.Background(), body["id"])
		return err == nil && run.Status == model.RunStatusFailed
	}, 5*time.Second, 10*time.Millisecond)
}

func TestGetRun(t *testing.T) {
	ts, st := newTestServer(t, &stubRunner{})

	run, err := st.CreateRun(context.Background(), model.RawInput{Location: "x", Profile: "y"})
	require.NoError(t, err)

	resp, err := http.Get(ts.URL + "/api/runs/" + run.ID)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got model.Run
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, "x", got.Input.Location)
}

func TestGetRunNotFound(t *testing.T) {
	ts, _ := newTestServer(t, &stubRunner{})

	resp, err := http.Get(ts.URL + "/api/runs/does-not-exist")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListRuns(t *testing.T) {
	ts, st := newTestServer(t, &stubRunner{})

	for i := 0; i < 3; i++ {
		_, err := st.CreateRun(context.Background(), model.RawInput{Location: "x", Profile: "y"})
		require.NoError(t, err)
	}

	resp, err := http.Get(ts.URL + "/api/runs?limit=2")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Runs []model.Run `json:"runs"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body.Runs, 2)
}

func TestListRunsEmpty(t *testing.T) {
	ts, _ := newTestServer(t, &stubRunner{})

	resp, err := http.Get(ts.URL + "/api/runs")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Runs []model.Run `json:"runs"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotNil(t, body.Runs)
	assert.Empty(t, body.Runs)
}

func TestListRunsBadLimit(t *testing.T) {
	ts, _ := newTestServer(t, &stubRunner{})

	resp, err := http.Get(ts.URL + "/api/runs?limit=zero")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCORSPreflights(t *testing.T) {
	ts, _ := newTestServer(t, &stubRunner{})

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/runs", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
