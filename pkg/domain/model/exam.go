package model

// ExamMetadata holds the identifying fields of an exam as reported by the API
type ExamMetadata struct {
	ExamID        string `json:"exam_id" validate:"required"`
	ExamName      string `json:"exam_name" validate:"required"`
	LevelName     string `json:"level_name" validate:"required"`
	SubjectName   string `json:"subject_name" validate:"required"`
	QuestionCount int    `json:"question_count" validate:"min=0"`
}

// ExamRecord is the persisted document shape: metadata plus the ordered
// question list. Instances live only for the duration of one pipeline pass.
type ExamRecord struct {
	Metadata  ExamMetadata `json:"metadata"`
	Questions []Question   `json:"questions" validate:"required,min=1,dive"`
}

// Question is a single exam question with its ordered choices
type Question struct {
	QuestionNumber int      `json:"question_number" validate:"required,min=1"`
	QuestionID     string   `json:"question_id" validate:"required"`
	QuestionText   string   `json:"question_text" validate:"required"`
	Choices        []Choice `json:"choices" validate:"required,min=1,dive"`
}

// Choice is a single answer choice. IsCorrect is passed through from the
// API as-is; the tool does not enforce exactly one correct choice.
type Choice struct {
	ChoiceNumber int    `json:"choice_number" validate:"required,min=1"`
	ChoiceText   string `json:"choice_text" validate:"required"`
	IsCorrect    bool   `json:"is_correct"`
}
