package mock

import (
	"context"

	"github.com/docfed/docfed"
)

var _ docfed.ConfigProvider = (*ConfigProvider)(nil)

// ConfigProvider is a mock implementation of docfed.ConfigProvider.
type ConfigProvider struct {
	GetFn func(path string) (any, bool)
}

func (c *ConfigProvider) Get(path string) (any, bool) {
	return c.GetFn(path)
}

var _ docfed.Aggregator = (*Aggregator)(nil)

// Aggregator is a mock implementation of docfed.Aggregator.
type Aggregator struct {
	SearchFn func(ctx context.Context, query docfed.SearchQuery) (*docfed.ResultSet, error)
}

func (a *Aggregator) Search(ctx context.Context, query docfed.SearchQuery) (*docfed.ResultSet, error) {
	return a.SearchFn(ctx, query)
}
