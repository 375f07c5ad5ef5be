package interfaces

import (
	"context"

	"github.com/m-mizutani/examport/pkg/domain/model"
)

// Exporter persists one exam record to a single output format.
// Export must be idempotent per exam ID and must never leave a partially
// written artifact behind (write-then-rename, or one transaction per exam).
type Exporter interface {
	// Name returns the format name (json, csv, sqlite)
	Name() string

	// Export writes the record, replacing any previous artifact cleanly
	Export(ctx context.Context, record *model.ExamRecord) error

	// Exists reports whether an artifact for the exam ID is already
	// present. Used for the resume check before any fetch happens.
	Exists(examID int) (bool, error)
}
