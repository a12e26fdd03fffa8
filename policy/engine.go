// Package policy computes retention metadata for normalized results:
// time-to-live, ingestion priority, and the content fingerprint shared
// by search deduplication and the ingestion scheduler.
package policy

import (
	"encoding/binary"
	"encoding/hex"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/docfed/docfed"
)

// Compile-time interface verification.
var _ docfed.PolicyEngine = (*Engine)(nil)

// Built-in defaults, overridable under policy.* configuration keys.
// Magnitudes are deliberately coarse: recognized and confident content
// is retained for days, recognized content for hours, generic content
// briefly.
const (
	DefaultCriticalConfidence = 0.95
	DefaultHighConfidence     = 0.8
	DefaultNormalConfidence   = 0.5
	DefaultConfidenceFloor    = 0.2

	DefaultLongTTL   = 7 * 24 * time.Hour
	DefaultMediumTTL = 24 * time.Hour
	DefaultShortTTL  = time.Hour
)

// Engine classifies results against a configuration-driven policy
// table keyed by technology specificity and confidence.
type Engine struct {
	critical float64
	high     float64
	normal   float64
	floor    float64

	longTTL   int
	mediumTTL int
	shortTTL  int
}

// NewEngine creates an Engine with thresholds read from cfg. Absent
// keys fall back to the built-in defaults; a nil cfg uses defaults
// throughout.
func NewEngine(cfg docfed.ConfigProvider) *Engine {
	return &Engine{
		critical:  docfed.ConfigFloat(cfg, "policy.confidence.critical", DefaultCriticalConfidence),
		high:      docfed.ConfigFloat(cfg, "policy.confidence.high", DefaultHighConfidence),
		normal:    docfed.ConfigFloat(cfg, "policy.confidence.normal", DefaultNormalConfidence),
		floor:     docfed.ConfigFloat(cfg, "policy.confidence.floor", DefaultConfidenceFloor),
		longTTL:   int(docfed.ConfigDuration(cfg, "policy.ttl.long", DefaultLongTTL).Seconds()),
		mediumTTL: int(docfed.ConfigDuration(cfg, "policy.ttl.medium", DefaultMediumTTL).Seconds()),
		shortTTL:  int(docfed.ConfigDuration(cfg, "policy.ttl.short", DefaultShortTTL).Seconds()),
	}
}

// Classify fills TTLSeconds, Priority, and Fingerprint on the result.
//
// The policy table, most specific first:
//   - confidence below the floor: never persisted (TTL 0), LOW
//   - unrecognized technology: short TTL, LOW
//   - confidence at or above the critical threshold and technology
//     equal to the caller's explicit hint: long TTL, CRITICAL
//   - confidence at or above the high threshold: long TTL, HIGH
//   - confidence at or above the normal threshold: medium TTL, NORMAL
//   - otherwise: short TTL, LOW
func (e *Engine) Classify(r *docfed.Result, technologyHint string) {
	r.Fingerprint = Fingerprint(r.Title, r.Source, r.Technology)

	switch {
	case r.Confidence < e.floor:
		r.TTLSeconds = 0
		r.Priority = docfed.PriorityLow
	case r.Technology == docfed.TechnologyGeneric || r.Technology == "":
		r.TTLSeconds = e.shortTTL
		r.Priority = docfed.PriorityLow
	case r.Confidence >= e.critical && technologyHint != "" && r.Technology == technologyHint:
		r.TTLSeconds = e.longTTL
		r.Priority = docfed.PriorityCritical
	case r.Confidence >= e.high:
		r.TTLSeconds = e.longTTL
		r.Priority = docfed.PriorityHigh
	case r.Confidence >= e.normal:
		r.TTLSeconds = e.mediumTTL
		r.Priority = docfed.PriorityNormal
	default:
		r.TTLSeconds = e.shortTTL
		r.Priority = docfed.PriorityLow
	}
}

// Fingerprint computes the stable content identity: xxHash64 over the
// normalized title, source identifier, and technology, hex-encoded.
// Case and surrounding whitespace in the title do not change the
// identity.
func Fingerprint(title, source, technology string) string {
	h := xxhash.New()
	_, _ = h.WriteString(strings.ToLower(strings.TrimSpace(title)))
	_, _ = h.Write([]byte{0})
	_, _ = h.WriteString(strings.TrimSpace(source))
	_, _ = h.Write([]byte{0})
	_, _ = h.WriteString(technology)

	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, h.Sum64())
	return hex.EncodeToString(b)
}
