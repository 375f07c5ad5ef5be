package model

import "time"

// OutcomeStatus is the terminal status of one exam ID in a run
type OutcomeStatus string

const (
	StatusSuccess   OutcomeStatus = "success"
	StatusSkipped   OutcomeStatus = "skipped"
	StatusDuplicate OutcomeStatus = "duplicate"
	StatusFailed    OutcomeStatus = "failed"

	// Dry-run statuses: no fetch or export happened
	StatusWouldFetch OutcomeStatus = "would_fetch"
	StatusWouldSkip  OutcomeStatus = "would_skip"
)

// ErrorCategory classifies a failed outcome for the report breakdown
type ErrorCategory string

const (
	CategoryFetch      ErrorCategory = "fetch"
	CategoryNotFound   ErrorCategory = "not_found"
	CategoryValidation ErrorCategory = "validation"
	CategoryExport     ErrorCategory = "export"
)

// Stage identifies where in the per-ID pipeline an exam currently is.
// The orchestrator drives each ID through these stages in order.
type Stage string

const (
	StagePending    Stage = "pending"
	StageFetching   Stage = "fetching"
	StageValidating Stage = "validating"
	StageDeduping   Stage = "deduping"
	StageExporting  Stage = "exporting"
	StageDone       Stage = "done"
)

// Outcome is the result of processing one exam ID. Outcomes from all
// workers funnel into a single aggregation point, so the statistics never
// see concurrent mutation.
type Outcome struct {
	ExamID      int
	Status      OutcomeStatus
	Category    ErrorCategory // set only when Status is StatusFailed
	DuplicateOf string        // first-seen exam_id when Status is StatusDuplicate
	Err         error
	Elapsed     time.Duration
}

// Fetched reports whether processing this exam called the remote API.
// Skipped and dry-run outcomes never leave the process.
func (x Outcome) Fetched() bool {
	switch x.Status {
	case StatusSkipped, StatusWouldFetch, StatusWouldSkip:
		return false
	}
	return true
}
