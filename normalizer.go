package docfed

// Normalizer converts a provider-specific payload into canonical
// results. Implementations fill Title, Source, Content, ProviderID,
// Technology, and Confidence; retention metadata (TTL, priority,
// fingerprint) is added later by a PolicyEngine.
type Normalizer interface {
	// Normalize decodes the payload into zero or more results. A
	// malformed item is dropped and counted in the second return value
	// without aborting the batch. Returns EMALFORMED only when the
	// payload as a whole cannot be decoded.
	Normalize(providerID string, payload []byte) ([]*Result, int, error)
}
