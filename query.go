package docfed

import (
	"context"
	"time"
)

// DefaultSearchLimit is the result-count limit applied when a query
// does not specify one.
const DefaultSearchLimit = 10

// SearchQuery describes one federated search request. It is immutable
// once accepted by the aggregator.
type SearchQuery struct {
	// Text is the free-text query string.
	Text string `json:"text"`

	// TechnologyHint narrows the eligible provider set and biases
	// classification. Optional.
	TechnologyHint string `json:"technologyHint"`

	// ProviderIDs restricts the search to the named providers.
	// Optional; intersected with the enabled provider set.
	ProviderIDs []string `json:"providerIds"`

	// Limit is the maximum number of results to return.
	// Defaults to DefaultSearchLimit when zero.
	Limit int `json:"limit"`
}

// Validate returns an error if the query contains invalid fields.
func (q *SearchQuery) Validate() error {
	if q.Text == "" {
		return Errorf(EINVALID, "query text required")
	}
	if q.Limit < 0 {
		return Errorf(EINVALID, "query limit must not be negative, got %d", q.Limit)
	}
	return nil
}

// ProviderState classifies one provider's outcome within a search.
type ProviderState string

// Provider outcome states.
const (
	ProviderOK      ProviderState = "ok"
	ProviderTimeout ProviderState = "timeout"
	ProviderError   ProviderState = "error"
	ProviderSkipped ProviderState = "skipped"
)

// ProviderStatus reports one provider's contribution to a search.
// Provider failures never fail the aggregate search; they surface here.
type ProviderStatus struct {
	ProviderID string        `json:"providerId"`
	State      ProviderState `json:"state"`
	Items      int           `json:"items"`
	Dropped    int           `json:"dropped"` // malformed items dropped during normalization
	Latency    time.Duration `json:"latency"`
	Err        string        `json:"error,omitempty"`
}

// ResultSet is the aggregator's response: the ordered, truncated
// results plus a per-provider status report.
type ResultSet struct {
	Results   []*Result        `json:"results"`
	Providers []ProviderStatus `json:"providers"`
}

// Aggregator is the synchronous read path. It fans out to eligible
// providers, merges and orders their normalized results, and submits
// qualifying results for asynchronous ingestion as a side effect.
type Aggregator interface {
	Search(ctx context.Context, query SearchQuery) (*ResultSet, error)
}
