package search

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/docfed/docfed"
	"golang.org/x/sync/errgroup"
)

// Compile-time interface verification.
var _ docfed.Aggregator = (*Aggregator)(nil)

// DefaultProviderTimeout bounds a provider call when its descriptor
// does not configure one.
const DefaultProviderTimeout = 10 * time.Second

// Aggregator fans a query out to eligible providers concurrently,
// pipes raw responses through the normalizer and policy engine, merges
// and orders the pooled results, and submits qualifying results to the
// ingestion scheduler.
type Aggregator struct {
	Registry   docfed.Registry
	Normalizer docfed.Normalizer
	Policy     docfed.PolicyEngine

	// Scheduler receives qualifying results as a side effect of every
	// search. Optional; nil disables ingestion.
	Scheduler docfed.Scheduler
}

// outcome holds one provider call's processed results. order is the
// provider's position in registration order, the final ordering
// tiebreak.
type outcome struct {
	order   int
	status  docfed.ProviderStatus
	results []*docfed.Result
}

// merged pairs a deduplicated result with the registration order of
// the first provider that produced it.
type merged struct {
	result *docfed.Result
	order  int
}

// Search executes one federated query. Provider failures and timeouts
// surface only in the per-provider status report; they never fail the
// aggregate search. The overall latency is bounded by the slowest
// in-scope provider timeout, not the sum of provider latencies.
func (a *Aggregator) Search(ctx context.Context, query docfed.SearchQuery) (*docfed.ResultSet, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	limit := query.Limit
	if limit <= 0 {
		limit = docfed.DefaultSearchLimit
	}

	descriptors, err := a.Registry.ListEnabled(query.TechnologyHint)
	if err != nil {
		return nil, err
	}

	// Apply the query's explicit allowlist as an intersection.
	// Excluded providers stay in the status report as skipped.
	var eligible []docfed.ProviderDescriptor
	var skipped []docfed.ProviderStatus
	if len(query.ProviderIDs) > 0 {
		allowed := make(map[string]bool, len(query.ProviderIDs))
		for _, id := range query.ProviderIDs {
			allowed[id] = true
		}
		for _, d := range descriptors {
			if allowed[d.ID] {
				eligible = append(eligible, d)
			} else {
				skipped = append(skipped, docfed.ProviderStatus{
					ProviderID: d.ID,
					State:      docfed.ProviderSkipped,
				})
			}
		}
	} else {
		eligible = descriptors
	}

	if len(eligible) == 0 {
		return nil, docfed.Errorf(docfed.ECONFIG, "no eligible providers for query")
	}

	// One goroutine per eligible provider; the fan-out bound is the
	// size of the eligible set.
	outcomes := make([]outcome, len(eligible))
	var g errgroup.Group
	for i, desc := range eligible {
		i, desc := i, desc
		g.Go(func() error {
			outcomes[i] = a.queryProvider(ctx, i, desc, query)
			return nil
		})
	}
	_ = g.Wait()

	pool := a.merge(outcomes)

	// Discoverability does not gate persistence: submit before
	// truncation.
	if a.Scheduler != nil {
		for _, m := range pool {
			if m.result.Qualifies() {
				a.Scheduler.Submit(m.result)
			}
		}
	}

	results := make([]*docfed.Result, 0, len(pool))
	for _, m := range pool {
		results = append(results, m.result)
	}
	if len(results) > limit {
		results = results[:limit]
	}

	statuses := make([]docfed.ProviderStatus, 0, len(outcomes)+len(skipped))
	for _, o := range outcomes {
		statuses = append(statuses, o.status)
	}
	statuses = append(statuses, skipped...)

	return &docfed.ResultSet{
		Results:   results,
		Providers: statuses,
	}, nil
}

// queryProvider runs one bounded provider call and normalizes its
// response.
func (a *Aggregator) queryProvider(ctx context.Context, order int, desc docfed.ProviderDescriptor, query docfed.SearchQuery) outcome {
	status := docfed.ProviderStatus{ProviderID: desc.ID}

	provider, ok := a.Registry.ProviderFor(desc.ID)
	if !ok {
		status.State = docfed.ProviderError
		status.Err = "provider not configured"
		return outcome{order: order, status: status}
	}

	timeout := desc.Timeout
	if timeout <= 0 {
		timeout = DefaultProviderTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	begin := time.Now()
	raw, err := provider.Query(callCtx, query.Text, query.TechnologyHint)
	status.Latency = time.Since(begin)

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || docfed.ErrorCode(err) == docfed.ETIMEOUT {
			status.State = docfed.ProviderTimeout
		} else {
			status.State = docfed.ProviderError
		}
		status.Err = docfed.ErrorMessage(err)
		return outcome{order: order, status: status}
	}

	results, dropped, err := a.Normalizer.Normalize(desc.ID, raw.Payload)
	if err != nil {
		status.State = docfed.ProviderError
		status.Err = docfed.ErrorMessage(err)
		return outcome{order: order, status: status}
	}

	valid := results[:0]
	for _, r := range results {
		if r.Validate() != nil {
			dropped++
			continue
		}
		a.Policy.Classify(r, query.TechnologyHint)
		valid = append(valid, r)
	}

	status.State = docfed.ProviderOK
	status.Items = len(valid)
	status.Dropped = dropped
	return outcome{order: order, status: status, results: valid}
}

// merge pools results across providers, deduplicates by fingerprint,
// and orders by descending confidence, then descending priority, then
// provider registration order. For duplicate fingerprints the higher
// confidence wins and retention metadata is refreshed to the maximum
// of the two.
func (a *Aggregator) merge(outcomes []outcome) []merged {
	byFingerprint := make(map[string]int)
	var pool []merged

	for _, o := range outcomes {
		for _, r := range o.results {
			idx, seen := byFingerprint[r.Fingerprint]
			if !seen {
				byFingerprint[r.Fingerprint] = len(pool)
				pool = append(pool, merged{result: r, order: o.order})
				continue
			}

			kept := pool[idx].result
			if r.Confidence > kept.Confidence {
				if kept.Priority > r.Priority {
					r.Priority = kept.Priority
				}
				if kept.TTLSeconds > r.TTLSeconds {
					r.TTLSeconds = kept.TTLSeconds
				}
				pool[idx] = merged{result: r, order: o.order}
			} else {
				if r.Priority > kept.Priority {
					kept.Priority = r.Priority
				}
				if r.TTLSeconds > kept.TTLSeconds {
					kept.TTLSeconds = r.TTLSeconds
				}
			}
		}
	}

	sort.SliceStable(pool, func(i, j int) bool {
		ri, rj := pool[i].result, pool[j].result
		if ri.Confidence != rj.Confidence {
			return ri.Confidence > rj.Confidence
		}
		if ri.Priority != rj.Priority {
			return ri.Priority > rj.Priority
		}
		return pool[i].order < pool[j].order
	})

	return pool
}
