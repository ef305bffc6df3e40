package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/locality-lens/internal/catalog"
	"github.com/sells-group/locality-lens/internal/intent"
	"github.com/sells-group/locality-lens/internal/provider"
	"github.com/sells-group/locality-lens/internal/resilience"
	"github.com/sells-group/locality-lens/internal/roads"
	"github.com/sells-group/locality-lens/internal/store"
	"github.com/sells-group/locality-lens/internal/summary"
	"github.com/sells-group/locality-lens/internal/workflow"
	"github.com/sells-group/locality-lens/pkg/anthropic"
	"github.com/sells-group/locality-lens/pkg/nominatim"
	"github.com/sells-group/locality-lens/pkg/overpass"
)

// env wires the configured collaborators for one process.
type env struct {
	Catalog  *catalog.Catalog
	Store    store.Store
	Workflow *workflow.Engine
}

func initEnv(ctx context.Context, mode string) (*env, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	cat, err := loadCatalog()
	if err != nil {
		return nil, err
	}

	st, err := openStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}

	llm := anthropic.NewClient(cfg.Anthropic.Key)
	extractor := intent.NewSelector(llm, cat, cfg.Anthropic.IntentModel)
	summarizer := summary.NewGenerator(llm, cat, cfg.Anthropic.SummaryModel)

	geocoder := nominatim.NewClient(
		nominatim.WithBaseURL(cfg.Nominatim.BaseURL),
		nominatim.WithRateLimit(cfg.Nominatim.RequestsPerSec),
	)

	fetcher := overpass.NewClient(
		overpass.WithEndpoints(cfg.Overpass.Endpoints...),
		overpass.WithQueryTimeout(cfg.Overpass.QueryTimeoutSec),
	)
	pois := provider.New(fetcher, st, provider.WithTTL(cfg.Store.CacheTTL))

	retry := resilience.DefaultRetryConfig()
	retry.MaxAttempts = cfg.Workflow.MaxAttempts
	retry.ShouldRetry = resilience.IsTransient

	opts := []workflow.Option{
		workflow.WithTimeouts(cfg.Workflow.Timeouts),
		workflow.WithRetryConfig(retry),
	}
	if cfg.Roads.ShapefilePath != "" {
		network, err := roads.LoadShapefile(cfg.Roads.ShapefilePath)
		if err != nil {
			zap.L().Warn("road network unavailable, road metrics will be null",
				zap.String("path", cfg.Roads.ShapefilePath), zap.Error(err))
		} else {
			opts = append(opts, workflow.WithRoadNetwork(network))
		}
	}

	engine := workflow.New(cat, extractor, geocoder, pois, summarizer, opts...)

	return &env{Catalog: cat, Store: st, Workflow: engine}, nil
}

func loadCatalog() (*catalog.Catalog, error) {
	if cfg.Catalog.OverridesPath != "" {
		return catalog.LoadWithOverrides(cfg.Catalog.OverridesPath)
	}
	return catalog.Load()
}

func openStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		return store.NewSQLite(cfg.Store.DatabaseURL)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, cfg.Store.Pool)
	}
	return nil, eris.Errorf("unsupported store driver %q", cfg.Store.Driver)
}

func (e *env) Close() {
	if err := e.Store.Close(); err != nil {
		zap.L().Warn("store close failed", zap.Error(err))
	}
}
