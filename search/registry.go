// Package search orchestrates federated provider queries: registry
// resolution, concurrent fan-out, normalization, merge, and handoff to
// the ingestion scheduler.
package search

import (
	"sync/atomic"

	"github.com/docfed/docfed"
)

// Compile-time interface verification.
var _ docfed.Registry = (*Registry)(nil)

// snapshot is one immutable view of the configured provider set.
type snapshot struct {
	descriptors []docfed.ProviderDescriptor
	providers   map[string]docfed.Provider
}

// Registry holds provider descriptors and their implementations as an
// immutable snapshot. Reload swaps the snapshot atomically, so
// searches already in flight keep the view they started with.
type Registry struct {
	current atomic.Pointer[snapshot]
}

// NewRegistry creates a Registry from descriptors and their provider
// implementations, keyed by descriptor ID. Descriptor order is the
// registration order used for result tiebreaks.
func NewRegistry(descriptors []docfed.ProviderDescriptor, providers map[string]docfed.Provider) (*Registry, error) {
	r := &Registry{}
	if err := r.Reload(descriptors, providers); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload atomically replaces the provider set.
func (r *Registry) Reload(descriptors []docfed.ProviderDescriptor, providers map[string]docfed.Provider) error {
	seen := make(map[string]bool, len(descriptors))
	for i := range descriptors {
		if err := descriptors[i].Validate(); err != nil {
			return err
		}
		if seen[descriptors[i].ID] {
			return docfed.Errorf(docfed.ECONFIG, "duplicate provider ID %q", descriptors[i].ID)
		}
		seen[descriptors[i].ID] = true
	}

	snap := &snapshot{
		descriptors: append([]docfed.ProviderDescriptor(nil), descriptors...),
		providers:   make(map[string]docfed.Provider, len(providers)),
	}
	for id, p := range providers {
		snap.providers[id] = p
	}
	r.current.Store(snap)
	return nil
}

// ListEnabled returns enabled providers eligible for the technology
// hint, in registration order. Providers with a non-empty technology
// list that excludes the hint are skipped; providers with an empty
// list are technology-agnostic. Returns ECONFIG when no provider is
// eligible.
func (r *Registry) ListEnabled(technologyHint string) ([]docfed.ProviderDescriptor, error) {
	snap := r.current.Load()

	eligible := make([]docfed.ProviderDescriptor, 0, len(snap.descriptors))
	for _, d := range snap.descriptors {
		if !d.Enabled {
			continue
		}
		if !d.Supports(technologyHint) {
			continue
		}
		eligible = append(eligible, d)
	}

	if len(eligible) == 0 {
		return nil, docfed.Errorf(docfed.ECONFIG, "no enabled providers for technology %q", technologyHint)
	}
	return eligible, nil
}

// ProviderFor returns the Provider implementation for a descriptor ID.
func (r *Registry) ProviderFor(id string) (docfed.Provider, bool) {
	snap := r.current.Load()
	p, ok := snap.providers[id]
	return p, ok
}
