package docfed

import (
	"context"
	"time"
)

// ProviderDescriptor describes a configured external documentation
// provider. Descriptors are created by the configuration layer and are
// read-only to the core.
type ProviderDescriptor struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	Enabled        bool          `json:"enabled"`
	Technologies   []string      `json:"technologies"` // empty means technology-agnostic
	Timeout        time.Duration `json:"timeout"`
	MaxConcurrency int           `json:"maxConcurrency"`
}

// Validate returns an error if the descriptor contains invalid fields.
func (d *ProviderDescriptor) Validate() error {
	if d.ID == "" {
		return Errorf(EINVALID, "provider ID required")
	}
	if d.Timeout < 0 {
		return Errorf(EINVALID, "provider %q timeout must not be negative", d.ID)
	}
	if d.MaxConcurrency < 0 {
		return Errorf(EINVALID, "provider %q max concurrency must not be negative", d.ID)
	}
	return nil
}

// Supports reports whether the provider can serve the given technology.
// Providers with an empty technology list are technology-agnostic and
// support everything.
func (d *ProviderDescriptor) Supports(technology string) bool {
	if technology == "" || len(d.Technologies) == 0 {
		return true
	}
	for _, t := range d.Technologies {
		if t == technology {
			return true
		}
	}
	return false
}

// RawResponse holds one provider call's outcome before normalization.
// It is owned by the in-flight call that produced it and discarded
// after normalization.
type RawResponse struct {
	ProviderID string
	Payload    []byte
	Latency    time.Duration
}

// Provider is the uniform capability interface every external
// documentation source implements. New providers are added by
// implementing this interface, never by modifying the aggregator.
type Provider interface {
	// Query searches the provider for the given text. The context
	// carries the per-call timeout; implementations must respect its
	// cancellation.
	Query(ctx context.Context, text, technologyHint string) (*RawResponse, error)
}

// Registry resolves the set of configured providers. Implementations
// hold an immutable snapshot that is swapped atomically on reload, so
// in-flight searches never observe a half-updated provider set.
type Registry interface {
	// ListEnabled returns enabled providers eligible for the given
	// technology hint, in registration order. Returns ECONFIG if no
	// provider is eligible.
	ListEnabled(technologyHint string) ([]ProviderDescriptor, error)

	// ProviderFor returns the Provider implementation for a descriptor ID.
	ProviderFor(id string) (Provider, bool)
}
