// Package mock provides mock implementations of docfed interfaces
// for testing.
package mock

import (
	"context"

	"github.com/docfed/docfed"
)

var _ docfed.Provider = (*Provider)(nil)

// Provider is a mock implementation of docfed.Provider.
type Provider struct {
	QueryFn func(ctx context.Context, text, technologyHint string) (*docfed.RawResponse, error)
}

func (p *Provider) Query(ctx context.Context, text, technologyHint string) (*docfed.RawResponse, error) {
	return p.QueryFn(ctx, text, technologyHint)
}

var _ docfed.Registry = (*Registry)(nil)

// Registry is a mock implementation of docfed.Registry.
type Registry struct {
	ListEnabledFn func(technologyHint string) ([]docfed.ProviderDescriptor, error)
	ProviderForFn func(id string) (docfed.Provider, bool)
}

func (r *Registry) ListEnabled(technologyHint string) ([]docfed.ProviderDescriptor, error) {
	return r.ListEnabledFn(technologyHint)
}

func (r *Registry) ProviderFor(id string) (docfed.Provider, bool) {
	return r.ProviderForFn(id)
}
