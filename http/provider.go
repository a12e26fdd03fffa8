// Package http provides the HTTP edges of docfed: a Provider adapter
// for JSON search APIs and the gateway server exposing the search and
// ingestion surfaces.
package http

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/docfed/docfed"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// DefaultQueryTimeout is the default timeout for provider requests.
const DefaultQueryTimeout = 10 * time.Second

// Ensure Provider implements docfed.Provider at compile time.
var _ docfed.Provider = (*Provider)(nil)

// Provider queries an external documentation search API over HTTP. The
// raw response body is handed to the normalizer untouched; this layer
// only enforces transport concerns: retries, rate limits, and the
// per-provider concurrency ceiling.
type Provider struct {
	id       string
	endpoint string
	apiKey   string
	timeout  time.Duration
	retryMax int

	client  *http.Client
	limiter *rate.Limiter
	sem     *semaphore.Weighted
}

// Option configures a Provider.
type Option func(*Provider)

// WithAPIKey sets a bearer token sent with every request.
func WithAPIKey(key string) Option {
	return func(p *Provider) { p.apiKey = key }
}

// WithTimeout sets the request timeout.
// Defaults to DefaultQueryTimeout (10s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(p *Provider) { p.timeout = d }
}

// WithRateLimit caps outgoing requests per second. Zero means unlimited.
func WithRateLimit(rps float64) Option {
	return func(p *Provider) {
		if rps > 0 {
			p.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithMaxConcurrency caps in-flight requests to the provider. Zero
// means unlimited.
func WithMaxConcurrency(n int) Option {
	return func(p *Provider) {
		if n > 0 {
			p.sem = semaphore.NewWeighted(int64(n))
		}
	}
}

// WithRetryMax sets the number of transport-level retries per request.
func WithRetryMax(n int) Option {
	return func(p *Provider) { p.retryMax = n }
}

// NewProvider creates a Provider for the search API at endpoint.
func NewProvider(id, endpoint string, opts ...Option) *Provider {
	p := &Provider{
		id:       id,
		endpoint: endpoint,
		timeout:  DefaultQueryTimeout,
		retryMax: 2,
	}
	for _, opt := range opts {
		opt(p)
	}

	rclient := retryablehttp.NewClient()
	rclient.RetryMax = p.retryMax
	rclient.RetryWaitMin = 100 * time.Millisecond
	rclient.RetryWaitMax = 2 * time.Second
	rclient.Logger = nil
	rclient.HTTPClient.Timeout = p.timeout
	p.client = rclient.StandardClient()

	return p
}

// Query searches the provider for the given text. The response payload
// is returned as-is; interpreting it is the normalizer's job.
func (p *Provider) Query(ctx context.Context, text, technologyHint string) (*docfed.RawResponse, error) {
	if p.sem != nil {
		if err := p.sem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		defer p.sem.Release(1)
	}
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	u, err := url.Parse(p.endpoint)
	if err != nil {
		return nil, docfed.Errorf(docfed.ECONFIG, "provider %q has invalid endpoint: %v", p.id, err)
	}
	q := u.Query()
	q.Set("q", text)
	if technologyHint != "" {
		q.Set("tech", technologyHint)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, docfed.Errorf(docfed.EPROVIDER, "provider %q returned HTTP %d", p.id, resp.StatusCode)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return &docfed.RawResponse{
		ProviderID: p.id,
		Payload:    payload,
		Latency:    time.Since(start),
	}, nil
}
