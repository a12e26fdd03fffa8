package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/docfed/docfed"
)

// Ensure LoggingAggregator implements docfed.Aggregator.
var _ docfed.Aggregator = (*LoggingAggregator)(nil)

// LoggingAggregator wraps an Aggregator with per-search logging,
// including the per-provider outcome breakdown.
type LoggingAggregator struct {
	next   docfed.Aggregator
	logger *slog.Logger
}

// NewLoggingAggregator creates a new LoggingAggregator.
func NewLoggingAggregator(next docfed.Aggregator, logger *slog.Logger) *LoggingAggregator {
	return &LoggingAggregator{next: next, logger: logger}
}

// Search delegates to the wrapped aggregator, logging the outcome.
func (a *LoggingAggregator) Search(ctx context.Context, query docfed.SearchQuery) (*docfed.ResultSet, error) {
	begin := time.Now()
	set, err := a.next.Search(ctx, query)
	if err != nil {
		a.logger.Warn("search",
			"text", query.Text,
			"tech", query.TechnologyHint,
			"duration", time.Since(begin),
			"err", err,
		)
		return nil, err
	}

	var failed int
	for _, ps := range set.Providers {
		if ps.State == docfed.ProviderTimeout || ps.State == docfed.ProviderError {
			failed++
		}
	}

	a.logger.Info("search",
		"text", query.Text,
		"tech", query.TechnologyHint,
		"results", len(set.Results),
		"providers", len(set.Providers),
		"failed", failed,
		"duration", time.Since(begin),
	)
	return set, nil
}
