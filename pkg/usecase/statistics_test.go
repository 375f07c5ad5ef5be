package usecase_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/m-mizutani/examport/pkg/domain/model"
	"github.com/m-mizutani/examport/pkg/usecase"
	"github.com/m-mizutani/gt"
)

func fixedOutcomes() []model.Outcome {
	outcomes := []model.Outcome{
		{ExamID: 1, Status: model.StatusSuccess},
		{ExamID: 2, Status: model.StatusSuccess},
		{ExamID: 3, Status: model.StatusFailed, Category: model.CategoryFetch},
		{ExamID: 4, Status: model.StatusFailed, Category: model.CategoryNotFound},
		{ExamID: 5, Status: model.StatusFailed, Category: model.CategoryFetch},
		{ExamID: 6, Status: model.StatusSkipped},
		{ExamID: 7, Status: model.StatusDuplicate, DuplicateOf: "1"},
		{ExamID: 8, Status: model.StatusFailed, Category: model.CategoryExport},
	}
	return outcomes
}

// normalize strips the run-specific fields so reports from separate runs
// can be compared
func normalize(r *model.Report) model.Report {
	c := *r
	c.RunID = ""
	c.GeneratedAt = time.Time{}
	c.ElapsedSeconds = 0
	c.AvgTimePerExam = 0
	return c
}

func TestStatistics_Counters(t *testing.T) {
	s := usecase.NewStatistics()
	for _, o := range fixedOutcomes() {
		s.Record(o)
	}

	report := s.Report(false)
	gt.Equal(t, report.TotalProcessed, 8)
	gt.Equal(t, report.Successful, 2)
	gt.Equal(t, report.Failed, 4)
	gt.Equal(t, report.Skipped, 1)
	gt.Equal(t, report.Duplicates, 1)
	gt.Equal(t, report.Errors[model.CategoryFetch], 2)
	gt.Equal(t, report.Errors[model.CategoryNotFound], 1)
	gt.Equal(t, report.Errors[model.CategoryExport], 1)
	gt.Equal(t, report.SuccessRate, 25.0)
}

func TestStatistics_CommutativeUnderReordering(t *testing.T) {
	base := fixedOutcomes()

	var reports []model.Report
	for seed := int64(0); seed < 5; seed++ {
		outcomes := make([]model.Outcome, len(base))
		copy(outcomes, base)

		rng := rand.New(rand.NewSource(seed))
		rng.Shuffle(len(outcomes), func(i, j int) {
			outcomes[i], outcomes[j] = outcomes[j], outcomes[i]
		})

		s := usecase.NewStatistics()
		for _, o := range outcomes {
			s.Record(o)
		}
		reports = append(reports, normalize(s.Report(false)))
	}

	for i := 1; i < len(reports); i++ {
		gt.Equal(t, reports[i], reports[0])
	}
}

func TestStatistics_EmptyRun(t *testing.T) {
	s := usecase.NewStatistics()
	report := s.Report(false)

	gt.Equal(t, report.TotalProcessed, 0)
	gt.Equal(t, report.SuccessRate, 0.0)
	gt.Equal(t, report.AvgTimePerExam, 0.0)
}

func TestStatistics_RunIDAssigned(t *testing.T) {
	s := usecase.NewStatistics()
	report := s.Report(true)

	gt.True(t, report.RunID != "")
	gt.True(t, report.DryRun)
}
