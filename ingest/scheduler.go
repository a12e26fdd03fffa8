// Package ingest provides the asynchronous write-through path: a
// bounded priority queue consumed by a worker pool that persists
// qualifying results into the cache store. It is decoupled from the
// read path; its failures are logged, never surfaced to search
// callers.
package ingest

import (
	"container/heap"
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/docfed/docfed"
	"github.com/docfed/docfed/bloom"
	"golang.org/x/sync/errgroup"
)

// Compile-time interface verification.
var _ docfed.Scheduler = (*Scheduler)(nil)

// Defaults, overridable through options.
const (
	DefaultCapacity = 256
	DefaultWorkers  = 4

	// Bloom filter sizing for the persisted-fingerprint fast path.
	expectedFingerprints = 100000
	falsePositiveRate    = 0.01

	// terminalHistoryLimit bounds the terminal-state map consulted by
	// Status; when exceeded the history is reset.
	terminalHistoryLimit = 4096
)

// DefaultRetryDelays returns the backoff delays for cache writes: 1s, 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
}

// Scheduler owns ingestion tasks from enqueue to terminal state. At
// most one pending or in-flight task exists per content fingerprint.
type Scheduler struct {
	store       docfed.CacheStore
	logger      *slog.Logger
	capacity    int
	workers     int
	retryDelays []time.Duration

	mu       sync.Mutex
	queue    taskHeap
	pending  map[string]*queuedTask // pending or in-flight, by fingerprint
	terminal map[string]docfed.TaskState
	seq      uint64

	// seen tracks fingerprints this process has persisted. A negative
	// test skips the store existence check entirely; a positive test
	// is confirmed against the store.
	seen *bloom.Filter

	wake chan struct{}

	submitted     atomic.Uint64
	deduplicated  atomic.Uint64
	evicted       atomic.Uint64
	rejected      atomic.Uint64
	persisted     atomic.Uint64
	alreadyCached atomic.Uint64
	failed        atomic.Uint64
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithCapacity sets the queue capacity. Defaults to DefaultCapacity.
func WithCapacity(n int) Option {
	return func(s *Scheduler) { s.capacity = n }
}

// WithWorkers sets the worker pool size. Defaults to DefaultWorkers.
func WithWorkers(n int) Option {
	return func(s *Scheduler) { s.workers = n }
}

// WithRetryDelays sets the write retry backoff delays. The number of
// delays is the retry ceiling.
func WithRetryDelays(delays []time.Duration) Option {
	return func(s *Scheduler) { s.retryDelays = delays }
}

// WithLogger sets the logger for terminal failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) { s.logger = logger }
}

// NewScheduler creates a Scheduler writing through to store.
func NewScheduler(store docfed.CacheStore, opts ...Option) *Scheduler {
	s := &Scheduler{
		store:       store,
		logger:      slog.Default(),
		capacity:    DefaultCapacity,
		workers:     DefaultWorkers,
		retryDelays: DefaultRetryDelays(),
		pending:     make(map[string]*queuedTask),
		terminal:    make(map[string]docfed.TaskState),
		seen:        bloom.NewFilter(expectedFingerprints, falsePositiveRate),
		wake:        make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes the worker pool until ctx is canceled.
func (s *Scheduler) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < s.workers; i++ {
		g.Go(func() error {
			return s.worker(gctx)
		})
	}
	return g.Wait()
}

// Submit enqueues a result without blocking. The scheduler takes its
// own copy; the caller's result is never mutated. Returns whether the
// result was accepted.
func (s *Scheduler) Submit(result *docfed.Result) bool {
	if result == nil || result.Fingerprint == "" || result.TTLSeconds <= 0 {
		s.rejected.Add(1)
		return false
	}

	s.mu.Lock()

	// One task per fingerprint: a duplicate refreshes retention
	// metadata to the maximum of the two instead of creating a second
	// task. An in-flight task is not touched; its write is underway.
	if qt, ok := s.pending[result.Fingerprint]; ok {
		if qt.task.State == docfed.TaskPending {
			if result.TTLSeconds > qt.task.Result.TTLSeconds {
				qt.task.Result.TTLSeconds = result.TTLSeconds
			}
			if result.Priority > qt.task.Result.Priority {
				qt.task.Result.Priority = result.Priority
				heap.Fix(&s.queue, qt.index)
			}
		}
		s.mu.Unlock()
		s.deduplicated.Add(1)
		return true
	}

	if s.queue.Len() >= s.capacity {
		victim := s.oldestLowestPriority()
		if victim == nil || !evictable(victim.task.Result.Priority, result.Priority) {
			s.mu.Unlock()
			s.rejected.Add(1)
			return false
		}
		heap.Remove(&s.queue, victim.index)
		victim.task.State = docfed.TaskDropped
		delete(s.pending, victim.task.Fingerprint)
		s.recordTerminal(victim.task.Fingerprint, docfed.TaskDropped)
		s.evicted.Add(1)
	}

	owned := *result
	s.seq++
	qt := &queuedTask{
		task: &docfed.IngestionTask{
			Result:      &owned,
			Fingerprint: owned.Fingerprint,
			EnqueuedAt:  time.Now(),
			State:       docfed.TaskPending,
		},
		seq: s.seq,
	}
	heap.Push(&s.queue, qt)
	s.pending[owned.Fingerprint] = qt
	s.mu.Unlock()

	s.submitted.Add(1)
	select {
	case s.wake <- struct{}{}:
	default:
	}
	return true
}

// evictable reports whether a queued task at victim priority may be
// displaced by an arrival. LOW tasks are always displaceable, so a
// full all-LOW queue sheds its oldest entry rather than growing or
// starving fresh arrivals; above LOW only a strictly higher-priority
// arrival may evict.
func evictable(victim, arrival docfed.Priority) bool {
	return victim == docfed.PriorityLow || victim < arrival
}

// Status returns the state of the task for a fingerprint, if known.
func (s *Scheduler) Status(fingerprint string) (docfed.TaskState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if qt, ok := s.pending[fingerprint]; ok {
		return qt.task.State, true
	}
	if state, ok := s.terminal[fingerprint]; ok {
		return state, true
	}
	return "", false
}

// Stats returns a snapshot of ingestion counters.
func (s *Scheduler) Stats() docfed.SchedulerStats {
	s.mu.Lock()
	pending := len(s.pending)
	s.mu.Unlock()

	return docfed.SchedulerStats{
		Submitted:     s.submitted.Load(),
		Deduplicated:  s.deduplicated.Load(),
		Evicted:       s.evicted.Load(),
		Rejected:      s.rejected.Load(),
		Persisted:     s.persisted.Load(),
		AlreadyCached: s.alreadyCached.Load(),
		Failed:        s.failed.Load(),
		Pending:       pending,
	}
}

func (s *Scheduler) worker(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		qt := s.pop()
		if qt == nil {
			select {
			case <-ctx.Done():
				return nil
			case <-s.wake:
			}
			continue
		}

		s.process(ctx, qt)
	}
}

// pop removes the highest-priority ready task. The task stays in the
// pending map until it reaches a terminal state, preserving the
// one-task-per-fingerprint invariant while the write is in flight.
func (s *Scheduler) pop() *queuedTask {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.queue.Len() == 0 {
		return nil
	}
	qt := heap.Pop(&s.queue).(*queuedTask)
	qt.task.State = docfed.TaskInFlight
	return qt
}

// process writes one task through to the cache store, retrying with
// bounded backoff.
func (s *Scheduler) process(ctx context.Context, qt *queuedTask) {
	r := qt.task.Result
	fingerprint := qt.task.Fingerprint

	if s.seen.Test(fingerprint) {
		exists, err := s.store.Exists(ctx, fingerprint)
		if err == nil && exists {
			s.alreadyCached.Add(1)
			s.finish(qt, docfed.TaskPersisted)
			return
		}
	}

	now := time.Now().UTC()
	entry := &docfed.CacheEntry{
		Fingerprint: fingerprint,
		Title:       r.Title,
		Source:      r.Source,
		Content:     r.Content,
		ProviderID:  r.ProviderID,
		Technology:  r.Technology,
		Priority:    r.Priority,
		TTLSeconds:  r.TTLSeconds,
		CreatedAt:   now,
		ExpiresAt:   now.Add(time.Duration(r.TTLSeconds) * time.Second),
	}

	var lastErr error
	maxAttempts := len(s.retryDelays) + 1
	for attempt := 0; attempt < maxAttempts; attempt++ {
		qt.task.Attempts++

		err := s.store.Put(ctx, entry)
		if err == nil {
			s.seen.Add(fingerprint)
			s.persisted.Add(1)
			s.finish(qt, docfed.TaskPersisted)
			return
		}
		lastErr = err

		if attempt >= maxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			// Shutting down; the write was never confirmed.
			s.finish(qt, docfed.TaskDropped)
			return
		case <-time.After(s.retryDelays[attempt]):
		}
	}

	s.logger.Error("ingestion write failed",
		"fingerprint", fingerprint,
		"source", r.Source,
		"attempts", qt.task.Attempts,
		"err", lastErr,
	)
	s.failed.Add(1)
	s.finish(qt, docfed.TaskFailed)
}

// finish moves a task to a terminal state and releases its
// fingerprint.
func (s *Scheduler) finish(qt *queuedTask, state docfed.TaskState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	qt.task.State = state
	delete(s.pending, qt.task.Fingerprint)
	s.recordTerminal(qt.task.Fingerprint, state)
}

// recordTerminal remembers a terminal state for Status lookups.
// Callers must hold s.mu.
func (s *Scheduler) recordTerminal(fingerprint string, state docfed.TaskState) {
	if len(s.terminal) >= terminalHistoryLimit {
		s.terminal = make(map[string]docfed.TaskState)
	}
	s.terminal[fingerprint] = state
}

// oldestLowestPriority returns the queued task with the lowest
// priority, oldest first. Callers must hold s.mu.
func (s *Scheduler) oldestLowestPriority() *queuedTask {
	var victim *queuedTask
	for _, qt := range s.queue {
		if victim == nil ||
			qt.task.Result.Priority < victim.task.Result.Priority ||
			(qt.task.Result.Priority == victim.task.Result.Priority && qt.seq < victim.seq) {
			victim = qt
		}
	}
	return victim
}
