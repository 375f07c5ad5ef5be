package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/m-mizutani/examport/pkg/domain/model"
	"github.com/m-mizutani/examport/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// ReportFileName is the name of the statistics report artifact
const ReportFileName = "extraction_report.json"

var invalidFileChars = regexp.MustCompile(`[<>:"/\\|?*]`)

// sanitizeFilename replaces characters that are invalid in file names
func sanitizeFilename(name string) string {
	return invalidFileChars.ReplaceAllString(name, "_")
}

// artifactBase builds the deterministic file base name for an exam
func artifactBase(meta model.ExamMetadata) string {
	name := fmt.Sprintf("%s_%s_%s_%s",
		meta.ExamID, meta.ExamName, meta.LevelName, meta.SubjectName)
	return sanitizeFilename(name)
}

// writeFileAtomic writes data to a temporary file in the target directory
// and renames it into place. A cancelled or crashed run can never leave a
// truncated artifact at the final path.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return goerr.Wrap(err, "failed to create temp file",
			goerr.T(types.ErrTagExport), goerr.V("dir", dir))
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return goerr.Wrap(err, "failed to write temp file",
			goerr.T(types.ErrTagExport), goerr.V("path", tmpName))
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return goerr.Wrap(err, "failed to close temp file",
			goerr.T(types.ErrTagExport), goerr.V("path", tmpName))
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return goerr.Wrap(err, "failed to rename temp file",
			goerr.T(types.ErrTagExport), goerr.V("path", path))
	}
	return nil
}

// encodeJSON marshals v with 4-space indent and without HTML escaping so
// non-ASCII question text stays readable in the artifact.
func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return nil, goerr.Wrap(err, "failed to encode JSON",
			goerr.T(types.ErrTagExport))
	}
	return buf.Bytes(), nil
}

// WriteReport writes the statistics report atomically into dir
func WriteReport(dir string, report *model.Report) (string, error) {
	data, err := encodeJSON(report)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, ReportFileName)
	if err := writeFileAtomic(path, data); err != nil {
		return "", err
	}
	return path, nil
}
