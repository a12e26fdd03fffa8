// Package slog provides logging decorators for docfed services using
// the standard library structured logger.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/docfed/docfed"
)

// Ensure LoggingProvider implements docfed.Provider.
var _ docfed.Provider = (*LoggingProvider)(nil)

// LoggingProvider wraps a Provider with per-query logging.
type LoggingProvider struct {
	id     string
	next   docfed.Provider
	logger *slog.Logger
}

// NewLoggingProvider creates a new LoggingProvider.
func NewLoggingProvider(id string, next docfed.Provider, logger *slog.Logger) *LoggingProvider {
	return &LoggingProvider{id: id, next: next, logger: logger}
}

// Query delegates to the wrapped provider, logging the outcome.
func (p *LoggingProvider) Query(ctx context.Context, text, technologyHint string) (*docfed.RawResponse, error) {
	begin := time.Now()
	resp, err := p.next.Query(ctx, text, technologyHint)
	if err != nil {
		p.logger.Warn("provider query",
			"provider", p.id,
			"duration", time.Since(begin),
			"err", err,
		)
		return nil, err
	}

	p.logger.Info("provider query",
		"provider", p.id,
		"bytes", len(resp.Payload),
		"duration", time.Since(begin),
	)
	return resp, nil
}
