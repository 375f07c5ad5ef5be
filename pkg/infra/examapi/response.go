package examapi

import (
	"encoding/json"

	"github.com/m-mizutani/examport/pkg/domain/model"
	"github.com/m-mizutani/examport/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// apiResponse mirrors the remote API payload. Numeric fields arrive as
// either numbers or strings depending on the endpoint version, so they
// are decoded as json.Number.
type apiResponse struct {
	Data struct {
		Exam struct {
			ExamID        json.Number `json:"exam_id"`
			ExamName      string      `json:"exam_name"`
			LevelName     string      `json:"level_name"`
			SubjectName   string      `json:"subject_name"`
			QuestionCount json.Number `json:"question_count"`
		} `json:"exam"`
		FormDo []apiQuestion `json:"formdo"`
	} `json:"data"`
}

type apiQuestion struct {
	QuestionID     json.Number `json:"question_id"`
	QuestionDetail string      `json:"question_detail"`
	Choice         []apiChoice `json:"choice"`
}

type apiChoice struct {
	Detail string `json:"detail"`
	Answer string `json:"answer"`
}

// toRecord converts the wire payload into the domain record. Question and
// choice numbers are assigned from their 1-based position in the payload.
func (r *apiResponse) toRecord() (*model.ExamRecord, error) {
	exam := r.Data.Exam
	if exam.ExamID.String() == "" {
		return nil, goerr.New("API response has no exam data",
			goerr.T(types.ErrTagValidation))
	}

	count, err := exam.QuestionCount.Int64()
	if err != nil {
		count = int64(len(r.Data.FormDo))
	}

	record := &model.ExamRecord{
		Metadata: model.ExamMetadata{
			ExamID:        exam.ExamID.String(),
			ExamName:      exam.ExamName,
			LevelName:     exam.LevelName,
			SubjectName:   exam.SubjectName,
			QuestionCount: int(count),
		},
		Questions: make([]model.Question, 0, len(r.Data.FormDo)),
	}

	for i, q := range r.Data.FormDo {
		question := model.Question{
			QuestionNumber: i + 1,
			QuestionID:     q.QuestionID.String(),
			QuestionText:   q.QuestionDetail,
			Choices:        make([]model.Choice, 0, len(q.Choice)),
		}
		for j, ch := range q.Choice {
			question.Choices = append(question.Choices, model.Choice{
				ChoiceNumber: j + 1,
				ChoiceText:   ch.Detail,
				IsCorrect:    ch.Answer == "true",
			})
		}
		record.Questions = append(record.Questions, question)
	}

	return record, nil
}
