package types

import "github.com/m-mizutani/goerr/v2"

// Error tags classify per-exam failures. The orchestrator maps them to
// report error categories; none of them abort the run.
var (
	// ErrTagNotFound marks a non-retryable "exam does not exist" response
	ErrTagNotFound = goerr.NewTag("not_found")

	// ErrTagNetwork marks a retryable transport/server failure that
	// exhausted its retry budget
	ErrTagNetwork = goerr.NewTag("network")

	// ErrTagValidation marks a malformed or incomplete exam record
	ErrTagValidation = goerr.NewTag("validation")

	// ErrTagExport marks a disk or database write failure
	ErrTagExport = goerr.NewTag("export")
)
