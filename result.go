package docfed

import "encoding/json"

// Priority orders ingestion work. Higher-priority results are written
// through first and evict lower-priority tasks under backpressure.
type Priority int

// Priority levels, lowest to highest.
const (
	PriorityLow Priority = iota
	PriorityNormal
	PriorityHigh
	PriorityCritical
)

var priorityNames = map[Priority]string{
	PriorityLow:      "low",
	PriorityNormal:   "normal",
	PriorityHigh:     "high",
	PriorityCritical: "critical",
}

// String returns the lowercase name of the priority.
func (p Priority) String() string {
	if name, ok := priorityNames[p]; ok {
		return name
	}
	return "unknown"
}

// ParsePriority converts a priority name to its Priority value.
func ParsePriority(s string) (Priority, error) {
	for p, name := range priorityNames {
		if name == s {
			return p, nil
		}
	}
	return PriorityLow, Errorf(EINVALID, "unknown priority %q", s)
}

// MarshalJSON encodes the priority as its lowercase name.
func (p Priority) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON decodes a priority from its lowercase name.
func (p *Priority) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParsePriority(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// TechnologyGeneric tags content that matched no known technology.
const TechnologyGeneric = "generic"

// Result is the canonical result shape after provider-specific
// translation. A Result is created once by the normalizer and policy
// engine per raw response item and is immutable thereafter.
type Result struct {
	Title      string `json:"title"`
	Source     string `json:"source"` // URL or provider-native identifier
	Content    string `json:"content"`
	ProviderID string `json:"providerId"`
	Technology string `json:"technology"`

	// Confidence is the relevance signal in [0,1].
	Confidence float64 `json:"confidence"`

	// TTLSeconds is the retention time-to-live. Zero means the result
	// is never persisted.
	TTLSeconds int `json:"ttlSeconds"`

	// Priority is the ingestion priority class.
	Priority Priority `json:"ingestionPriority"`

	// Fingerprint is the stable content identity shared by the
	// aggregator's merge step and the ingestion scheduler.
	Fingerprint string `json:"fingerprint"`
}

// Validate returns an error if the result contains invalid fields.
func (r *Result) Validate() error {
	if r.Source == "" {
		return Errorf(EINVALID, "result source required")
	}
	if r.ProviderID == "" {
		return Errorf(EINVALID, "result provider ID required")
	}
	if r.Confidence < 0 || r.Confidence > 1 {
		return Errorf(EINVALID, "result confidence must be in [0,1], got %v", r.Confidence)
	}
	if r.TTLSeconds < 0 {
		return Errorf(EINVALID, "result TTL must not be negative, got %d", r.TTLSeconds)
	}
	return nil
}

// Qualifies reports whether the result should be handed to the
// ingestion scheduler: priority NORMAL or above with a non-zero TTL.
func (r *Result) Qualifies() bool {
	return r.TTLSeconds > 0 && r.Priority >= PriorityNormal
}
