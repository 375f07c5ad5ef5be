package interfaces

import (
	"context"

	"github.com/m-mizutani/examport/pkg/domain/model"
)

// ExamClient defines operations for fetching exam data from the remote API
type ExamClient interface {
	// FetchExam fetches one exam by ID, retrying transient failures.
	// Errors carry goerr tags (not_found, network, validation) for
	// classification by the caller.
	FetchExam(ctx context.Context, examID int) (*model.ExamRecord, error)
}
