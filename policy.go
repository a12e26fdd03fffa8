package docfed

// PolicyEngine computes retention metadata for normalized results:
// time-to-live, ingestion priority, and the content fingerprint shared
// by the aggregator's merge step and the ingestion scheduler.
//
// A TTL of zero means the result is never persisted. Thresholds and
// TTL magnitudes are configuration-driven so retention economics can
// be retuned without a rebuild.
type PolicyEngine interface {
	// Classify fills TTLSeconds, Priority, and Fingerprint on the
	// result. The technology hint, when present, can promote exact
	// matches above the standard policy table.
	Classify(result *Result, technologyHint string)
}
