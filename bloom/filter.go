// Package bloom provides probabilistic fingerprint membership
// filtering for the ingestion path.
package bloom

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
)

// Filter tracks content fingerprints that have been persisted. A
// negative answer is definitive, so the scheduler can skip a store
// round-trip; a positive answer must be confirmed against the store.
// Safe for concurrent use by multiple goroutines.
type Filter struct {
	mu sync.RWMutex
	f  *bloom.BloomFilter
}

// NewFilter creates a filter sized for n expected fingerprints with
// the given false positive rate.
func NewFilter(n uint, fpRate float64) *Filter {
	return &Filter{
		f: bloom.NewWithEstimates(n, fpRate),
	}
}

// Add records a fingerprint.
func (f *Filter) Add(fingerprint string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.f.AddString(fingerprint)
}

// Test returns true if the fingerprint might have been recorded.
// False positives are possible; false negatives are not.
func (f *Filter) Test(fingerprint string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.f.TestString(fingerprint)
}

// EstimatedCount returns the approximate number of recorded fingerprints.
func (f *Filter) EstimatedCount() uint {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return uint(f.f.ApproximatedSize())
}
