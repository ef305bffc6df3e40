// Package provider fronts the POI fetcher with a persistent cache so
// repeated analyses of the same neighborhood do not re-query the upstream
// data sources.
package provider

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/sells-group/locality-lens/internal/model"
	"github.com/sells-group/locality-lens/internal/store"
)

// DefaultCacheTTL is how long fetched POI sets stay valid.
const DefaultCacheTTL = 24 * time.Hour

// Fetcher retrieves raw POI records around a center point.
type Fetcher interface {
	FetchPOIs(ctx context.Context, center model.Coordinates, radii map[model.Category]float64) ([]model.POIRecord, error)
}

// CachedProvider wraps a Fetcher with a store-backed cache. Concurrent
// requests for the same key share a single upstream fetch.
type CachedProvider struct {
	fetcher Fetcher
	store   store.Store
	ttl     time.Duration
	group   singleflight.Group
}

// Option configures a CachedProvider.
type Option func(*CachedProvider)

// WithTTL overrides the cache lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(p *CachedProvider) {
		if ttl > 0 {
			p.ttl = ttl
		}
	}
}

// New creates a CachedProvider over the given fetcher and store.
func New(fetcher Fetcher, st store.Store, opts ...Option) *CachedProvider {
	p := &CachedProvider{
		fetcher: fetcher,
		store:   st,
		ttl:     DefaultCacheTTL,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// GetPOIs returns POI records for the request, serving from the cache when a
// fresh entry exists. A cache read failure degrades to a direct fetch.
func (p *CachedProvider) GetPOIs(ctx context.Context, center model.Coordinates, radii map[model.Category]float64) ([]model.POIRecord, error) {
	key := CacheKey(center, radii)

	cached, err := p.store.GetCachedPOIs(ctx, key)
	if err != nil {
		zap.L().Warn("poi cache read failed, fetching upstream",
			zap.String("key", key), zap.Error(err))
	} else if cached != nil {
		zap.L().Debug("poi cache hit", zap.String("key", key), zap.Int("records", len(cached)))
		return cached, nil
	}

	v, err, shared := p.group.Do(key, func() (any, error) {
		records, err := p.fetcher.FetchPOIs(ctx, center, radii)
		if err != nil {
			return nil, err
		}
		if err := p.store.SetCachedPOIs(ctx, key, records, p.ttl); err != nil {
			zap.L().Warn("poi cache write failed", zap.String("key", key), zap.Error(err))
		}
		return records, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		zap.L().Debug("poi fetch shared with concurrent request", zap.String("key", key))
	}
	return v.([]model.POIRecord), nil
}

// CacheKey fingerprints a fetch request. Coordinates are rounded to four
// decimal places (roughly 11 meters) so nearby requests share entries.
func CacheKey(center model.Coordinates, radii map[model.Category]float64) string {
	parts := make([]string, 0, len(radii))
	for cat, r := range radii {
		if r <= 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s:%.0f", cat, r))
	}
	sort.Strings(parts)
	return fmt.Sprintf("%.4f,%.4f|%s", center.Lat, center.Lon, strings.Join(parts, ","))
}
