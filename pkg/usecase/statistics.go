package usecase

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/examport/pkg/domain/model"
)

// Statistics accumulates per-exam outcomes into commutative counters.
// The orchestrator funnels all outcomes through a single goroutine, but
// the mutex keeps Record safe for direct concurrent use in tests.
type Statistics struct {
	mu      sync.Mutex
	started time.Time

	success    int
	failed     int
	skipped    int
	duplicate  int
	wouldFetch int
	wouldSkip  int

	errors map[model.ErrorCategory]int
}

// NewStatistics creates a Statistics tracker with the clock started
func NewStatistics() *Statistics {
	return &Statistics{
		started: time.Now(),
		errors:  make(map[model.ErrorCategory]int),
	}
}

// Record counts one outcome
func (s *Statistics) Record(outcome model.Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch outcome.Status {
	case model.StatusSuccess:
		s.success++
	case model.StatusFailed:
		s.failed++
		s.errors[outcome.Category]++
	case model.StatusSkipped:
		s.skipped++
	case model.StatusDuplicate:
		s.duplicate++
	case model.StatusWouldFetch:
		s.wouldFetch++
	case model.StatusWouldSkip:
		s.wouldSkip++
	}
}

// Report finalizes the counters into the run report
func (s *Statistics) Report(dryRun bool) *model.Report {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := s.success + s.failed + s.skipped + s.duplicate + s.wouldFetch + s.wouldSkip
	elapsed := time.Since(s.started).Seconds()

	report := &model.Report{
		RunID:          uuid.NewString(),
		GeneratedAt:    time.Now(),
		DryRun:         dryRun,
		TotalProcessed: total,
		Successful:     s.success,
		Failed:         s.failed,
		Skipped:        s.skipped,
		Duplicates:     s.duplicate,
		WouldFetch:     s.wouldFetch,
		WouldSkip:      s.wouldSkip,
		ElapsedSeconds: elapsed,
		Errors:         make(map[model.ErrorCategory]int, len(s.errors)),
	}

	if total > 0 {
		report.SuccessRate = float64(s.success) / float64(total) * 100
		report.AvgTimePerExam = elapsed / float64(total)
	}
	for category, count := range s.errors {
		report.Errors[category] = count
	}

	return report
}
