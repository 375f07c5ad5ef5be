package interfaces

import (
	"context"

	"github.com/m-mizutani/examport/pkg/domain/model"
)

// ExtractUseCase drives a range of exam IDs through the extraction pipeline
type ExtractUseCase interface {
	// Run processes the half-open ID range [startID, endID) and returns
	// the final report. Per-exam failures never produce an error here;
	// only setup problems do.
	Run(ctx context.Context, startID, endID int) (*model.Report, error)
}
