package storage

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/m-mizutani/examport/pkg/domain/interfaces"
	"github.com/m-mizutani/examport/pkg/domain/model"
	"github.com/m-mizutani/examport/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

var csvHeader = []string{
	"Question Number", "Question Text", "Choice Number", "Choice Text", "Is Correct",
}

type csvExporter struct {
	dir string
}

// NewCSVExporter creates the flat-table exporter: one row per choice
func NewCSVExporter(dir string) (interfaces.Exporter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, goerr.Wrap(err, "failed to create output directory",
			goerr.V("dir", dir))
	}
	return &csvExporter{dir: dir}, nil
}

func (x *csvExporter) Name() string {
	return "csv"
}

func (x *csvExporter) Export(ctx context.Context, record *model.ExamRecord) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	rows := [][]string{csvHeader}
	for _, q := range record.Questions {
		num := strconv.Itoa(q.QuestionNumber)
		for _, c := range q.Choices {
			rows = append(rows, []string{
				num,
				q.QuestionText,
				strconv.Itoa(c.ChoiceNumber),
				c.ChoiceText,
				strconv.FormatBool(c.IsCorrect),
			})
		}
	}

	if err := w.WriteAll(rows); err != nil {
		return goerr.Wrap(err, "failed to write CSV rows",
			goerr.T(types.ErrTagExport), goerr.V("exam_id", record.Metadata.ExamID))
	}

	path := filepath.Join(x.dir, artifactBase(record.Metadata)+".csv")
	if err := writeFileAtomic(path, buf.Bytes()); err != nil {
		return goerr.Wrap(err, "failed to export CSV table",
			goerr.T(types.ErrTagExport), goerr.V("exam_id", record.Metadata.ExamID))
	}
	return nil
}

func (x *csvExporter) Exists(examID int) (bool, error) {
	pattern := filepath.Join(x.dir, fmt.Sprintf("%d_*.csv", examID))
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return false, goerr.Wrap(err, "failed to glob output directory",
			goerr.V("pattern", pattern))
	}
	return len(matches) > 0, nil
}
