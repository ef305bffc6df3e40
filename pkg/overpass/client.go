// Package overpass fetches OpenStreetMap features from the Overpass API.
//
// The client walks a cascade of interpreter endpoints, each guarded by its
// own circuit breaker, so an overloaded public mirror does not take the
// whole fetch stage down with it.
package overpass

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/locality-lens/internal/model"
	"github.com/sells-group/locality-lens/internal/resilience"
)

// DefaultEndpoints is the public interpreter cascade, tried in order.
var DefaultEndpoints = []string{
	"https://overpass-api.de/api/interpreter",
	"https://overpass.kumi.systems/api/interpreter",
}

const defaultTimeoutSec = 25

// Client fetches POI records.
type Client struct {
	httpClient *http.Client
	endpoints  []string
	breakers   *resilience.ServiceBreakers
	timeoutSec int
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithEndpoints replaces the interpreter cascade.
func WithEndpoints(endpoints ...string) Option {
	return func(c *Client) { c.endpoints = endpoints }
}

// WithQueryTimeout sets the server-side query timeout in seconds.
func WithQueryTimeout(sec int) Option {
	return func(c *Client) {
		if sec > 0 {
			c.timeoutSec = sec
		}
	}
}

// WithBreakerConfig replaces the per-endpoint circuit breaker config.
func WithBreakerConfig(cfg resilience.CircuitBreakerConfig) Option {
	return func(c *Client) { c.breakers = resilience.NewServiceBreakers(cfg) }
}

// NewClient creates a client over the default endpoint cascade.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		endpoints:  DefaultEndpoints,
		breakers:   resilience.NewServiceBreakers(resilience.DefaultCircuitBreakerConfig()),
		timeoutSec: defaultTimeoutSec,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchPOIs queries every category in radii around center and returns raw,
// unclassified records. Each endpoint is tried in order; an endpoint whose
// breaker is open is skipped. The returned error is transient when every
// endpoint failed transiently.
func (c *Client) FetchPOIs(ctx context.Context, center model.Coordinates, radii map[model.Category]float64) ([]model.POIRecord, error) {
	query := BuildQuery(center, radii, c.timeoutSec)

	var lastErr error
	for _, endpoint := range c.endpoints {
		cb := c.breakers.Get(endpoint)
		records, err := resilience.ExecuteVal(ctx, cb, func(ctx context.Context) ([]model.POIRecord, error) {
			return c.fetchFrom(ctx, endpoint, query)
		})
		if err == nil {
			zap.L().Debug("overpass: fetched",
				zap.String("endpoint", endpoint),
				zap.Int("records", len(records)),
			)
			return records, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, lastErr
		}
		zap.L().Warn("overpass: endpoint failed, trying next",
			zap.String("endpoint", endpoint),
			zap.Error(err),
		)
	}
	return nil, eris.Wrap(lastErr, "overpass: all endpoints failed")
}

func (c *Client) fetchFrom(ctx context.Context, endpoint, query string) ([]model.POIRecord, error) {
	form := url.Values{"data": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, eris.Wrap(err, "overpass: build request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, resilience.NewTransientError(eris.Wrap(err, "overpass: request"), 0)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<20))
	if err != nil {
		return nil, resilience.NewTransientError(eris.Wrap(err, "overpass: read response"), 0)
	}

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("overpass: interpreter returned status %d", resp.StatusCode)
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(err, resp.StatusCode)
		}
		return nil, err
	}

	var payload response
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, eris.Wrap(err, "overpass: decode response")
	}
	return decodeElements(payload.Elements), nil
}
