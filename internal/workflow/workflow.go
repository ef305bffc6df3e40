// Package workflow orchestrates one analysis run: validate the input, run
// intent extraction and geocoding in parallel, fetch and clean POI data,
// compute the selected metrics, and produce a narrative summary. Every stage
// leaves an audit-trail entry; collaborator failures degrade where the result
// can survive without them and fail the run where it cannot.
package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/locality-lens/internal/catalog"
	"github.com/sells-group/locality-lens/internal/dataquality"
	"github.com/sells-group/locality-lens/internal/intent"
	"github.com/sells-group/locality-lens/internal/metrics"
	"github.com/sells-group/locality-lens/internal/model"
	"github.com/sells-group/locality-lens/internal/resilience"
	"github.com/sells-group/locality-lens/internal/roads"
	"github.com/sells-group/locality-lens/internal/summary"
	"github.com/sells-group/locality-lens/pkg/nominatim"
)

// Selection bounds: the run always computes between minMetrics and
// maxMetrics, padding from profile defaults or truncating as needed.
const (
	minMetrics = 5
	maxMetrics = 8
)

// IntentExtractor turns a free-text profile into structured intent plus a
// ranked metric selection.
type IntentExtractor interface {
	Extract(ctx context.Context, profile string) (*model.UserIntent, []string, error)
}

// Geocoder resolves a free-text location to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (*nominatim.Result, error)
}

// POIProvider fetches POI records around a center point.
type POIProvider interface {
	GetPOIs(ctx context.Context, center model.Coordinates, radii map[model.Category]float64) ([]model.POIRecord, error)
}

// Summarizer writes the narrative summary.
type Summarizer interface {
	Generate(ctx context.Context, address string, intent *model.UserIntent, stats model.Statistics, ids []string) (string, error)
}

// Timeouts bounds each collaborator call. Zero fields fall back to defaults.
type Timeouts struct {
	Intent  time.Duration `yaml:"intent" mapstructure:"intent"`
	Geocode time.Duration `yaml:"geocode" mapstructure:"geocode"`
	Fetch   time.Duration `yaml:"fetch" mapstructure:"fetch"`
	Summary time.Duration `yaml:"summary" mapstructure:"summary"`
}

func (t Timeouts) withDefaults() Timeouts {
	if t.Intent <= 0 {
		t.Intent = 30 * time.Second
	}
	if t.Geocode <= 0 {
		t.Geocode = 30 * time.Second
	}
	if t.Fetch <= 0 {
		t.Fetch = 90 * time.Second
	}
	if t.Summary <= 0 {
		t.Summary = 60 * time.Second
	}
	return t
}

// Engine runs analyses. It is stateless across runs and safe for concurrent
// use.
type Engine struct {
	cat        *catalog.Catalog
	extractor  IntentExtractor
	geocoder   Geocoder
	provider   POIProvider
	metrics    *metrics.Engine
	summarizer Summarizer
	network    *roads.Network

	timeouts Timeouts
	retry    resilience.RetryConfig
}

// Option configures an Engine.
type Option func(*Engine)

// WithRoadNetwork attaches a preloaded road network. Without one, road
// metrics resolve to null with a warning.
func WithRoadNetwork(n *roads.Network) Option {
	return func(e *Engine) { e.network = n }
}

// WithTimeouts overrides the per-stage timeouts.
func WithTimeouts(t Timeouts) Option {
	return func(e *Engine) { e.timeouts = t.withDefaults() }
}

// WithRetryConfig overrides the retry policy used for geocoding and POI
// fetches.
func WithRetryConfig(cfg resilience.RetryConfig) Option {
	return func(e *Engine) { e.retry = cfg }
}

// New builds an Engine over its collaborators.
func New(cat *catalog.Catalog, extractor IntentExtractor, geocoder Geocoder, provider POIProvider, summarizer Summarizer, opts ...Option) *Engine {
	e := &Engine{
		cat:        cat,
		extractor:  extractor,
		geocoder:   geocoder,
		provider:   provider,
		metrics:    metrics.New(cat),
		summarizer: summarizer,
		timeouts:   Timeouts{}.withDefaults(),
		retry:      resilience.DefaultRetryConfig(),
	}
	e.retry.ShouldRetry = resilience.IsTransient
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes the full workflow for one input. It always returns a result;
// terminal failures are carried in the result's Error descriptor along with
// whatever partial data was computed.
func (e *Engine) Run(ctx context.Context, input model.RawInput) *model.AnalysisResult {
	state := &model.AnalysisState{Input: input}

	e.validate(state)
	if !state.Failed() {
		e.forkIntentAndGeocode(ctx, state)
	}
	if !state.Failed() {
		e.selectMetrics(state)
		e.fetchAndClean(ctx, state)
	}
	if !state.Failed() {
		e.compute(ctx, state)
	}
	if !state.Failed() {
		e.summarize(ctx, state)
	}

	return e.buildResult(state)
}

func (e *Engine) validate(state *model.AnalysisState) {
	start := time.Now()

	loc := strings.TrimSpace(state.Input.Location)
	if loc == "" {
		state.Fail(model.NewStageError(model.ErrKindValidation, nil, "location is required"))
		state.Record("validate", model.StepFailed, time.Since(start), "empty location")
		return
	}
	coords, looksLike, err := model.ParseCoordinates(loc)
	if err != nil {
		state.Fail(model.NewStageError(model.ErrKindValidation, err, "coordinates out of range"))
		state.Record("validate", model.StepFailed, time.Since(start), err.Error())
		return
	}
	if looksLike {
		state.Coordinates = &coords
		state.Address = coords.String()
	}
	state.Record("validate", model.StepSuccess, time.Since(start), "")
}

// forkIntentAndGeocode runs the two input-derived stages concurrently and
// joins at a barrier. Each branch writes only to its own locals; the state is
// merged after the join so no locking is needed.
func (e *Engine) forkIntentAndGeocode(ctx context.Context, state *model.AnalysisState) {
	var (
		userIntent  *model.UserIntent
		selectedIDs []string
		intentWarns []string
		intentStep  model.StepRecord

		coords      *model.Coordinates
		address     string
		geocodeStep model.StepRecord
		geocodeErr  *model.StageError
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		start := time.Now()
		ictx, cancel := context.WithTimeout(gctx, e.timeouts.Intent)
		defer cancel()

		ui, ids, err := e.extractor.Extract(ictx, state.Input.Profile)
		if err != nil {
			zap.L().Warn("intent extraction failed, using profile defaults",
				zap.String("profile", state.Input.Profile), zap.Error(err))
			ui, ids = intent.Fallback(e.cat, state.Input.Profile)
			intentWarns = append(intentWarns, "intent extraction unavailable, metric selection fell back to profile defaults")
			intentStep = model.StepRecord{Stage: "intent", Outcome: model.StepDegrade, Duration: time.Since(start), Detail: err.Error()}
		} else {
			intentStep = model.StepRecord{Stage: "intent", Outcome: model.StepSuccess, Duration: time.Since(start)}
		}
		userIntent = ui
		selectedIDs = ids
		return nil
	})

	g.Go(func() error {
		start := time.Now()
		if state.Coordinates != nil {
			geocodeStep = model.StepRecord{Stage: "geocode", Outcome: model.StepSkipped, Duration: time.Since(start), Detail: "coordinates supplied directly"}
			return nil
		}

		gcctx, cancel := context.WithTimeout(gctx, e.timeouts.Geocode)
		defer cancel()

		cfg := e.retry
		cfg.OnRetry = resilience.RetryLogger("nominatim", "geocode")
		result, err := resilience.DoVal(gcctx, cfg, func(ctx context.Context) (*nominatim.Result, error) {
			return e.geocoder.Geocode(ctx, state.Input.Location)
		})
		if err != nil {
			geocodeErr = model.NewStageError(model.ErrKindGeocode, err,
				"could not resolve location %q", state.Input.Location)
			geocodeStep = model.StepRecord{Stage: "geocode", Outcome: model.StepFailed, Duration: time.Since(start), Detail: err.Error()}
			return geocodeErr
		}
		coords = &model.Coordinates{Lat: result.Lat, Lon: result.Lon}
		address = result.DisplayName
		geocodeStep = model.StepRecord{Stage: "geocode", Outcome: model.StepSuccess, Duration: time.Since(start)}
		return nil
	})

	_ = g.Wait()

	state.UserIntent = userIntent
	state.SelectedMetricIDs = selectedIDs
	state.Warnings = append(state.Warnings, intentWarns...)
	state.Steps = append(state.Steps, intentStep)

	if coords != nil {
		state.Coordinates = coords
		state.Address = address
	}
	state.Steps = append(state.Steps, geocodeStep)
	if geocodeErr != nil {
		state.Fail(geocodeErr)
	}
}

// selectMetrics clamps the selection into [minMetrics, maxMetrics], padding
// from profile defaults and then the full catalog, preserving rank order.
func (e *Engine) selectMetrics(state *model.AnalysisState) {
	start := time.Now()

	if state.Input.AllMetrics {
		state.SelectedMetricIDs = e.cat.All()
		state.Record("select", model.StepSuccess, time.Since(start), "full catalog requested")
		return
	}

	ids := append([]string(nil), state.SelectedMetricIDs...)
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		seen[id] = true
	}

	pad := func(candidates []string) {
		for _, id := range candidates {
			if len(ids) >= minMetrics {
				return
			}
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	pad(e.cat.DefaultsForProfile(state.Input.Profile))
	pad(e.cat.All())

	if len(ids) > maxMetrics {
		state.AddWarning("metric selection truncated from %d to %d", len(ids), maxMetrics)
		ids = ids[:maxMetrics]
	}

	state.SelectedMetricIDs = ids
	state.Record("select", model.StepSuccess, time.Since(start), fmt.Sprintf("%d metrics", len(ids)))
}

func (e *Engine) fetchAndClean(ctx context.Context, state *model.AnalysisState) {
	start := time.Now()

	radii := e.cat.RadiiByCategory(state.SelectedMetricIDs)

	fctx, cancel := context.WithTimeout(ctx, e.timeouts.Fetch)
	defer cancel()

	cfg := e.retry
	cfg.OnRetry = resilience.RetryLogger("overpass", "fetch_pois")
	records, err := resilience.DoVal(fctx, cfg, func(ctx context.Context) ([]model.POIRecord, error) {
		return e.provider.GetPOIs(ctx, *state.Coordinates, radii)
	})
	if err != nil {
		state.Fail(model.NewStageError(model.ErrKindDataFetch, err, "POI data sources unavailable"))
		state.Record("fetch", model.StepFailed, time.Since(start), err.Error())
		return
	}
	state.RawPOIRecords = records
	state.Record("fetch", model.StepSuccess, time.Since(start), fmt.Sprintf("%d records", len(records)))

	cleanStart := time.Now()
	state.CleanPOIRecords = dataquality.Clean(records, *state.Coordinates, maxRadiusKM(radii))
	dropped := len(state.RawPOIRecords) - len(state.CleanPOIRecords)
	state.Record("clean", model.StepSuccess, time.Since(cleanStart),
		fmt.Sprintf("%d kept, %d dropped", len(state.CleanPOIRecords), dropped))
}

func maxRadiusKM(radii map[model.Category]float64) float64 {
	var maxM float64
	for _, r := range radii {
		if r > maxM {
			maxM = r
		}
	}
	if maxM <= 0 {
		maxM = 2000
	}
	return maxM / 1000
}

func (e *Engine) compute(ctx context.Context, state *model.AnalysisState) {
	start := time.Now()

	stats, warnings, err := e.metrics.Compute(ctx, *state.Coordinates, state.CleanPOIRecords, e.network, state.SelectedMetricIDs)
	state.Warnings = append(state.Warnings, warnings...)
	if err != nil {
		se, ok := err.(*model.StageError)
		if !ok {
			se = model.NewStageError(model.ErrKindComputation, err, "metric computation failed")
		}
		state.Fail(se)
		state.Record("compute", model.StepFailed, time.Since(start), err.Error())
		return
	}
	// The statistics key set is exactly the selection; dependency metrics
	// computed along the way are not exposed unless selected.
	selected := make(model.Statistics, len(state.SelectedMetricIDs))
	for _, id := range state.SelectedMetricIDs {
		selected[id] = stats[id]
	}
	state.Statistics = selected

	outcome := model.StepSuccess
	if len(warnings) > 0 {
		outcome = model.StepDegrade
	}
	state.Record("compute", outcome, time.Since(start), fmt.Sprintf("%d metrics", len(selected)))
}

// summarize never fails the run: a collaborator failure degrades to the
// deterministic template.
func (e *Engine) summarize(ctx context.Context, state *model.AnalysisState) {
	start := time.Now()

	sctx, cancel := context.WithTimeout(ctx, e.timeouts.Summary)
	defer cancel()

	text, err := e.summarizer.Generate(sctx, state.Address, state.UserIntent, state.Statistics, state.SelectedMetricIDs)
	if err != nil {
		zap.L().Warn("summary generation failed, using template", zap.Error(err))
		state.Summary = summary.Template(e.cat, state.Address, state.Statistics, state.SelectedMetricIDs)
		state.AddWarning("narrative summary unavailable, a generated template was used instead")
		state.Record("summarize", model.StepDegrade, time.Since(start), err.Error())
		return
	}
	state.Summary = text
	state.Record("summarize", model.StepSuccess, time.Since(start), "")
}

func (e *Engine) buildResult(state *model.AnalysisState) *model.AnalysisResult {
	result := &model.AnalysisResult{
		Summary:           state.Summary,
		Coordinates:       state.Coordinates,
		Address:           state.Address,
		SelectedMetricIDs: state.SelectedMetricIDs,
		UserIntent:        state.UserIntent,
		Warnings:          state.Warnings,
		Steps:             state.Steps,
	}

	if state.Statistics != nil {
		for _, id := range state.SelectedMetricIDs {
			d, ok := e.cat.Get(id)
			if !ok {
				continue
			}
			result.Statistics = append(result.Statistics, model.MetricValue{
				ID:       d.ID,
				Name:     d.Name,
				Category: d.Category,
				Unit:     d.Unit,
				Value:    state.Statistics[id],
			})
		}
	}

	if state.Err != nil {
		result.Error = &model.ErrorDescriptor{
			Kind:    state.Err.Kind,
			Message: state.Err.Message,
		}
	}
	return result
}
