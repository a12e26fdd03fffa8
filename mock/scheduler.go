package mock

import "github.com/docfed/docfed"

var _ docfed.Scheduler = (*Scheduler)(nil)

// Scheduler is a mock implementation of docfed.Scheduler.
type Scheduler struct {
	SubmitFn func(result *docfed.Result) bool
	StatusFn func(fingerprint string) (docfed.TaskState, bool)
	StatsFn  func() docfed.SchedulerStats
}

func (s *Scheduler) Submit(result *docfed.Result) bool {
	return s.SubmitFn(result)
}

func (s *Scheduler) Status(fingerprint string) (docfed.TaskState, bool) {
	return s.StatusFn(fingerprint)
}

func (s *Scheduler) Stats() docfed.SchedulerStats {
	return s.StatsFn()
}
