package model

import "time"

// Report is the machine-readable summary written at the end of a run.
// All counters are commutative: the report is identical for any
// completion order of the same outcome set.
type Report struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	DryRun      bool      `json:"dry_run"`

	TotalProcessed int `json:"total_processed"`
	Successful     int `json:"successful"`
	Failed         int `json:"failed"`
	Skipped        int `json:"skipped"`
	Duplicates     int `json:"duplicates"`
	WouldFetch     int `json:"would_fetch,omitempty"`
	WouldSkip      int `json:"would_skip,omitempty"`

	SuccessRate    float64 `json:"success_rate"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
	AvgTimePerExam float64 `json:"avg_time_per_exam"`

	Errors map[ErrorCategory]int `json:"errors"`
}
