package docfed

import (
	"context"
	"time"
)

// TaskState is the lifecycle state of an ingestion task.
type TaskState string

// Ingestion task states. Persisted, dropped, and failed are terminal.
const (
	TaskPending   TaskState = "pending"
	TaskInFlight  TaskState = "in_flight"
	TaskPersisted TaskState = "persisted"
	TaskDropped   TaskState = "dropped"
	TaskFailed    TaskState = "failed"
)

// IngestionTask wraps one result queued for write-through. It is owned
// exclusively by the scheduler from enqueue to terminal state.
type IngestionTask struct {
	Result      *Result
	Fingerprint string
	EnqueuedAt  time.Time
	Attempts    int
	State       TaskState
}

// SchedulerStats reports ingestion counters for observability.
type SchedulerStats struct {
	Submitted     uint64 `json:"submitted"`
	Deduplicated  uint64 `json:"deduplicated"`
	Evicted       uint64 `json:"evicted"`
	Rejected      uint64 `json:"rejected"` // backpressure drops
	Persisted     uint64 `json:"persisted"`
	AlreadyCached uint64 `json:"alreadyCached"`
	Failed        uint64 `json:"failed"`
	Pending       int    `json:"pending"`
}

// Scheduler is the asynchronous ingestion path: a bounded queue
// consumed by a worker pool that writes qualifying results through to
// the cache store. Its failures are never surfaced to search callers.
type Scheduler interface {
	// Submit enqueues a result without blocking. A duplicate
	// submission while a task for the same fingerprint is pending
	// refreshes that task's TTL and priority to the maximum of the
	// two. When the queue is full, the oldest strictly-lower-priority
	// task is evicted to make room; if no victim exists the submission
	// is rejected. Returns whether the result was accepted.
	Submit(result *Result) bool

	// Status returns the state of the task for a fingerprint, if known.
	Status(fingerprint string) (TaskState, bool)

	// Stats returns a snapshot of ingestion counters.
	Stats() SchedulerStats
}

// CacheEntry is a durable cache record, keyed by content fingerprint
// and partitioned by technology. TTL expiry enforcement belongs to the
// store.
type CacheEntry struct {
	Fingerprint string    `json:"fingerprint"`
	Title       string    `json:"title"`
	Source      string    `json:"source"`
	Content     string    `json:"content"`
	ProviderID  string    `json:"providerId"`
	Technology  string    `json:"technology"`
	Priority    Priority  `json:"priority"`
	TTLSeconds  int       `json:"ttlSeconds"`
	CreatedAt   time.Time `json:"createdAt"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// Validate returns an error if the entry contains invalid fields.
func (e *CacheEntry) Validate() error {
	if e.Fingerprint == "" {
		return Errorf(EINVALID, "cache entry fingerprint required")
	}
	if e.Source == "" {
		return Errorf(EINVALID, "cache entry source required")
	}
	if e.TTLSeconds <= 0 {
		return Errorf(EINVALID, "cache entry TTL must be positive, got %d", e.TTLSeconds)
	}
	return nil
}

// CacheStore is the durable storage boundary for ingested content.
type CacheStore interface {
	// Put writes or refreshes an entry keyed by its fingerprint.
	Put(ctx context.Context, entry *CacheEntry) error

	// Exists reports whether a non-expired entry exists for the fingerprint.
	Exists(ctx context.Context, fingerprint string) (bool, error)

	// Get retrieves a non-expired entry.
	// Returns ENOTFOUND if no such entry exists.
	Get(ctx context.Context, fingerprint string) (*CacheEntry, error)
}
