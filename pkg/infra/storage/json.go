package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/m-mizutani/examport/pkg/domain/interfaces"
	"github.com/m-mizutani/examport/pkg/domain/model"
	"github.com/m-mizutani/examport/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

type jsonExporter struct {
	dir string
}

// NewJSONExporter creates the document exporter. One JSON file per exam,
// named from the exam metadata.
func NewJSONExporter(dir string) (interfaces.Exporter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, goerr.Wrap(err, "failed to create output directory",
			goerr.V("dir", dir))
	}
	return &jsonExporter{dir: dir}, nil
}

func (x *jsonExporter) Name() string {
	return "json"
}

func (x *jsonExporter) Export(ctx context.Context, record *model.ExamRecord) error {
	data, err := encodeJSON(record)
	if err != nil {
		return err
	}

	path := filepath.Join(x.dir, artifactBase(record.Metadata)+".json")
	if err := writeFileAtomic(path, data); err != nil {
		return goerr.Wrap(err, "failed to export JSON document",
			goerr.T(types.ErrTagExport), goerr.V("exam_id", record.Metadata.ExamID))
	}
	return nil
}

func (x *jsonExporter) Exists(examID int) (bool, error) {
	pattern := filepath.Join(x.dir, fmt.Sprintf("%d_*.json", examID))
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return false, goerr.Wrap(err, "failed to glob output directory",
			goerr.V("pattern", pattern))
	}
	return len(matches) > 0, nil
}
