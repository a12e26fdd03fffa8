package mock

import "github.com/docfed/docfed"

var _ docfed.Normalizer = (*Normalizer)(nil)

// Normalizer is a mock implementation of docfed.Normalizer.
type Normalizer struct {
	NormalizeFn func(providerID string, payload []byte) ([]*docfed.Result, int, error)
}

func (n *Normalizer) Normalize(providerID string, payload []byte) ([]*docfed.Result, int, error) {
	return n.NormalizeFn(providerID, payload)
}

var _ docfed.PolicyEngine = (*PolicyEngine)(nil)

// PolicyEngine is a mock implementation of docfed.PolicyEngine.
type PolicyEngine struct {
	ClassifyFn func(result *docfed.Result, technologyHint string)
}

func (e *PolicyEngine) Classify(result *docfed.Result, technologyHint string) {
	e.ClassifyFn(result, technologyHint)
}
