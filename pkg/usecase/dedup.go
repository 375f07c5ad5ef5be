package usecase

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"

	"github.com/m-mizutani/examport/pkg/domain/model"
)

// DuplicateDetector flags exams whose content was already seen in this
// run. State is run-scoped: the hash map starts empty and is discarded
// when the run ends. Resume across runs relies on the exporters, not on
// this detector.
type DuplicateDetector struct {
	mu   sync.Mutex
	seen map[string]string // content hash -> first-seen exam_id
}

// NewDuplicateDetector creates an empty detector
func NewDuplicateDetector() *DuplicateDetector {
	return &DuplicateDetector{
		seen: make(map[string]string),
	}
}

// examContent is the canonical serialization used for hashing. It
// excludes exam_id, question_id and all numbering so a re-published exam
// under a new ID still hashes the same.
type examContent struct {
	ExamName    string     `json:"exam_name"`
	LevelName   string     `json:"level_name"`
	SubjectName string     `json:"subject_name"`
	Questions   []qContent `json:"questions"`
}

type qContent struct {
	Text    string   `json:"text"`
	Choices []string `json:"choices"`
}

// Check records the exam's content hash and reports whether an exam with
// identical content was seen before. Check-and-record is atomic, so for
// two identical exams exactly one call reports a duplicate regardless of
// completion order.
func (d *DuplicateDetector) Check(record *model.ExamRecord) (string, bool) {
	hash := contentHash(record)

	d.mu.Lock()
	defer d.mu.Unlock()

	if firstID, ok := d.seen[hash]; ok {
		return firstID, true
	}
	d.seen[hash] = record.Metadata.ExamID
	return "", false
}

func contentHash(record *model.ExamRecord) string {
	content := examContent{
		ExamName:    record.Metadata.ExamName,
		LevelName:   record.Metadata.LevelName,
		SubjectName: record.Metadata.SubjectName,
		Questions:   make([]qContent, 0, len(record.Questions)),
	}
	for _, q := range record.Questions {
		qc := qContent{Text: q.QuestionText, Choices: make([]string, 0, len(q.Choices))}
		for _, c := range q.Choices {
			qc.Choices = append(qc.Choices, c.ChoiceText)
		}
		content.Questions = append(content.Questions, qc)
	}

	// struct field order makes the JSON form canonical
	data, _ := json.Marshal(content)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
