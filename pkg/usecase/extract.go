package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/examport/pkg/domain/interfaces"
	"github.com/m-mizutani/examport/pkg/domain/model"
	"github.com/m-mizutani/examport/pkg/domain/types"
	"github.com/m-mizutani/examport/pkg/utils/async"
	"github.com/m-mizutani/goerr/v2"
)

// Extractor drives exam IDs through fetch -> validate -> dedup -> export
// with a bounded worker pool. Run-scoped state (duplicate hashes,
// statistics) is owned by the Extractor instance, so isolated runs can
// execute in parallel in tests.
type Extractor struct {
	client    interfaces.ExamClient
	exporters []interfaces.Exporter
	validator *Validator
	detector  *DuplicateDetector

	concurrency int
	rateLimit   time.Duration
	resume      bool
	dryRun      bool
}

// ExtractorOption configures an Extractor
type ExtractorOption func(*Extractor)

// WithConcurrency bounds the number of parallel per-exam pipelines
func WithConcurrency(n int) ExtractorOption {
	return func(uc *Extractor) {
		uc.concurrency = n
	}
}

// WithRateLimit sets the pause after each processed exam
func WithRateLimit(d time.Duration) ExtractorOption {
	return func(uc *Extractor) {
		uc.rateLimit = d
	}
}

// WithResume skips exams whose output artifacts already exist
func WithResume(enabled bool) ExtractorOption {
	return func(uc *Extractor) {
		uc.resume = enabled
	}
}

// WithDryRun reports what would happen without fetching or exporting
func WithDryRun(enabled bool) ExtractorOption {
	return func(uc *Extractor) {
		uc.dryRun = enabled
	}
}

// NewExtractor creates the extraction use case
func NewExtractor(client interfaces.ExamClient, exporters []interfaces.Exporter, opts ...ExtractorOption) interfaces.ExtractUseCase {
	uc := &Extractor{
		client:      client,
		exporters:   exporters,
		validator:   NewValidator(),
		detector:    NewDuplicateDetector(),
		concurrency: 5,
		resume:      true,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// Run processes the half-open ID range [startID, endID). Per-exam
// failures are counted and logged, never propagated; only an invalid
// range is an error.
func (uc *Extractor) Run(ctx context.Context, startID, endID int) (*model.Report, error) {
	if startID < 0 || endID < startID {
		return nil, goerr.New("invalid exam ID range",
			goerr.V("start_id", startID), goerr.V("end_id", endID))
	}

	logger := ctxlog.From(ctx)
	logger.Info("starting extraction",
		"start_id", startID,
		"end_id", endID,
		"concurrency", uc.concurrency,
		"resume", uc.resume,
		"dry_run", uc.dryRun,
	)

	stats := NewStatistics()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ids := make(chan int)
	go func() {
		defer close(ids)
		for id := startID; id < endID; id++ {
			select {
			case ids <- id:
			case <-ctx.Done():
				return
			}
		}
	}()

	// All outcomes funnel through this single goroutine; the counters
	// have exactly one writer during the run.
	results := make(chan model.Outcome)
	aggregated := make(chan struct{})
	go func() {
		defer close(aggregated)
		for outcome := range results {
			stats.Record(outcome)
			logOutcome(logger, outcome)
		}
	}()

	async.Parallel(ctx, uc.concurrency, func(ctx context.Context) {
		for id := range ids {
			outcome := uc.processExam(ctx, id)
			results <- outcome

			// The rate limit protects the remote API; outcomes that never
			// called it do not need pacing.
			if outcome.Fetched() {
				uc.pause(ctx)
			}
		}
	})

	close(results)
	<-aggregated

	report := stats.Report(uc.dryRun)
	logger.Info("extraction finished",
		"total", report.TotalProcessed,
		"successful", report.Successful,
		"failed", report.Failed,
		"skipped", report.Skipped,
		"duplicates", report.Duplicates,
	)
	return report, nil
}

// processExam walks one exam through the pipeline state machine until a
// terminal outcome is produced
func (uc *Extractor) processExam(ctx context.Context, examID int) model.Outcome {
	started := time.Now()

	stage := model.StagePending
	var record *model.ExamRecord
	for {
		var outcome *model.Outcome
		stage, record, outcome = uc.step(ctx, examID, stage, record)
		if outcome != nil {
			outcome.Elapsed = time.Since(started)
			return *outcome
		}
	}
}

// step is the pipeline transition function: one stage in, the next stage
// or a terminal outcome out
func (uc *Extractor) step(ctx context.Context, examID int, stage model.Stage, record *model.ExamRecord) (model.Stage, *model.ExamRecord, *model.Outcome) {
	switch stage {
	case model.StagePending:
		// Resume check happens before any network call
		if uc.resume && uc.artifactsExist(ctx, examID) {
			status := model.StatusSkipped
			if uc.dryRun {
				status = model.StatusWouldSkip
			}
			return stage, nil, &model.Outcome{ExamID: examID, Status: status}
		}
		if uc.dryRun {
			return stage, nil, &model.Outcome{ExamID: examID, Status: model.StatusWouldFetch}
		}
		return model.StageFetching, nil, nil

	case model.StageFetching:
		fetched, err := uc.client.FetchExam(ctx, examID)
		if err != nil {
			return stage, nil, failure(examID, classifyFetchError(err), err)
		}
		return model.StageValidating, fetched, nil

	case model.StageValidating:
		if err := uc.validator.Validate(record); err != nil {
			return stage, nil, failure(examID, model.CategoryValidation, err)
		}
		return model.StageDeduping, record, nil

	case model.StageDeduping:
		if firstID, dup := uc.detector.Check(record); dup {
			return stage, nil, &model.Outcome{
				ExamID:      examID,
				Status:      model.StatusDuplicate,
				DuplicateOf: firstID,
			}
		}
		return model.StageExporting, record, nil

	case model.StageExporting:
		for _, exporter := range uc.exporters {
			if err := exporter.Export(ctx, record); err != nil {
				return stage, nil, failure(examID, model.CategoryExport, err)
			}
		}
		return model.StageDone, record, nil

	default: // model.StageDone
		return stage, nil, &model.Outcome{ExamID: examID, Status: model.StatusSuccess}
	}
}

// artifactsExist reports whether every configured exporter already has an
// artifact for the exam. Existence-check errors count as "not present" so
// a broken glob never blocks a re-fetch.
func (uc *Extractor) artifactsExist(ctx context.Context, examID int) bool {
	if len(uc.exporters) == 0 {
		return false
	}
	for _, exporter := range uc.exporters {
		exists, err := exporter.Exists(examID)
		if err != nil {
			ctxlog.From(ctx).Warn("artifact existence check failed",
				"exam_id", examID,
				"exporter", exporter.Name(),
				"error", err,
			)
			return false
		}
		if !exists {
			return false
		}
	}
	return true
}

func (uc *Extractor) pause(ctx context.Context) {
	if uc.rateLimit <= 0 {
		return
	}
	select {
	case <-time.After(uc.rateLimit):
	case <-ctx.Done():
	}
}

func failure(examID int, category model.ErrorCategory, err error) *model.Outcome {
	return &model.Outcome{
		ExamID:   examID,
		Status:   model.StatusFailed,
		Category: category,
		Err:      err,
	}
}

func classifyFetchError(err error) model.ErrorCategory {
	switch {
	case goerr.HasTag(err, types.ErrTagNotFound):
		return model.CategoryNotFound
	case goerr.HasTag(err, types.ErrTagValidation):
		return model.CategoryValidation
	default:
		return model.CategoryFetch
	}
}

func logOutcome(logger *slog.Logger, outcome model.Outcome) {
	switch outcome.Status {
	case model.StatusSuccess:
		logger.Debug("exam extracted", "exam_id", outcome.ExamID, "elapsed", outcome.Elapsed)
	case model.StatusSkipped:
		logger.Debug("exam skipped, artifact exists", "exam_id", outcome.ExamID)
	case model.StatusDuplicate:
		logger.Info("duplicate exam detected",
			"exam_id", outcome.ExamID, "duplicate_of", outcome.DuplicateOf)
	case model.StatusFailed:
		logger.Error("exam extraction failed",
			"exam_id", outcome.ExamID,
			"category", outcome.Category,
			"error", outcome.Err,
		)
	case model.StatusWouldFetch:
		logger.Info("would fetch exam (dry-run)", "exam_id", outcome.ExamID)
	case model.StatusWouldSkip:
		logger.Info("would skip exam (dry-run)", "exam_id", outcome.ExamID)
	}
}
