package usecase

import (
	"github.com/go-playground/validator/v10"
	"github.com/m-mizutani/examport/pkg/domain/model"
	"github.com/m-mizutani/examport/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// Validator checks fetched exam records before export. Validation is pure:
// no I/O, no mutation, malformed input only ever produces an error value.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a Validator
func NewValidator() *Validator {
	return &Validator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Validate returns a validation-tagged error when the record is not
// exportable: empty exam_id, no questions, a question without choices,
// empty required text fields, duplicate choice numbers, or a question
// count that disagrees with the actual question list.
func (dv *Validator) Validate(record *model.ExamRecord) error {
	if record == nil {
		return goerr.New("exam record is nil", goerr.T(types.ErrTagValidation))
	}

	if err := dv.validate.Struct(record); err != nil {
		return goerr.Wrap(err, "exam record has missing or invalid fields",
			goerr.T(types.ErrTagValidation),
			goerr.V("exam_id", record.Metadata.ExamID),
		)
	}

	if record.Metadata.QuestionCount != len(record.Questions) {
		return goerr.New("question count does not match question list",
			goerr.T(types.ErrTagValidation),
			goerr.V("exam_id", record.Metadata.ExamID),
			goerr.V("question_count", record.Metadata.QuestionCount),
			goerr.V("questions", len(record.Questions)),
		)
	}

	for _, q := range record.Questions {
		seen := make(map[int]struct{}, len(q.Choices))
		for _, c := range q.Choices {
			if _, ok := seen[c.ChoiceNumber]; ok {
				return goerr.New("duplicate choice number in question",
					goerr.T(types.ErrTagValidation),
					goerr.V("exam_id", record.Metadata.ExamID),
					goerr.V("question_number", q.QuestionNumber),
					goerr.V("choice_number", c.ChoiceNumber),
				)
			}
			seen[c.ChoiceNumber] = struct{}{}
		}
	}

	return nil
}
