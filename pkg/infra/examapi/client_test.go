package examapi_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/m-mizutani/examport/pkg/domain/types"
	"github.com/m-mizutani/examport/pkg/infra/examapi"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
)

const examPayload = `{
  "data": {
    "exam": {
      "exam_id": "14000",
      "exam_name": "Midterm",
      "level_name": "M.3",
      "subject_name": "Mathematics",
      "question_count": "2"
    },
    "formdo": [
      {
        "question_id": "901",
        "question_detail": "What is 2+2?",
        "choice": [
          {"detail": "3", "answer": "false"},
          {"detail": "4", "answer": "true"}
        ]
      },
      {
        "question_id": "902",
        "question_detail": "What is 3*3?",
        "choice": [
          {"detail": "9", "answer": "true"},
          {"detail": "6", "answer": "false"}
        ]
      }
    ]
  }
}`

func TestClient_FetchExam(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.Equal(t, r.URL.Query().Get("exam_id"), "14000")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(examPayload))
	}))
	defer srv.Close()

	client := examapi.New(srv.URL)
	record, err := client.FetchExam(context.Background(), 14000)

	gt.NoError(t, err)
	gt.Equal(t, record.Metadata.ExamID, "14000")
	gt.Equal(t, record.Metadata.ExamName, "Midterm")
	gt.Equal(t, record.Metadata.QuestionCount, 2)
	gt.Equal(t, len(record.Questions), 2)

	q := record.Questions[0]
	gt.Equal(t, q.QuestionNumber, 1)
	gt.Equal(t, q.QuestionID, "901")
	gt.Equal(t, len(q.Choices), 2)
	gt.True(t, !q.Choices[0].IsCorrect)
	gt.True(t, q.Choices[1].IsCorrect)
	gt.Equal(t, q.Choices[1].ChoiceNumber, 2)
}

func TestClient_NotFoundIsImmediate(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := examapi.New(srv.URL,
		examapi.WithMaxRetries(3),
		examapi.WithRetryDelay(time.Millisecond),
	)
	_, err := client.FetchExam(context.Background(), 99999)

	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, types.ErrTagNotFound))
	gt.Equal(t, attempts.Load(), int32(1))
}

func TestClient_RetryCeiling(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	const maxRetries = 2
	client := examapi.New(srv.URL,
		examapi.WithMaxRetries(maxRetries),
		examapi.WithRetryDelay(time.Millisecond),
	)
	_, err := client.FetchExam(context.Background(), 14000)

	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, types.ErrTagNetwork))
	gt.Equal(t, attempts.Load(), int32(maxRetries+1))
}

func TestClient_RetryThenSuccess(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(examPayload))
	}))
	defer srv.Close()

	client := examapi.New(srv.URL,
		examapi.WithMaxRetries(3),
		examapi.WithRetryDelay(time.Millisecond),
	)
	record, err := client.FetchExam(context.Background(), 14000)

	gt.NoError(t, err)
	gt.Equal(t, record.Metadata.ExamID, "14000")
	gt.Equal(t, attempts.Load(), int32(2))
}

func TestClient_MalformedResponseIsImmediate(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	client := examapi.New(srv.URL,
		examapi.WithMaxRetries(3),
		examapi.WithRetryDelay(time.Millisecond),
	)
	_, err := client.FetchExam(context.Background(), 14000)

	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, types.ErrTagValidation))
	gt.Equal(t, attempts.Load(), int32(1))
}

func TestClient_EmptyResponseBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data": {"exam": {}, "formdo": []}}`))
	}))
	defer srv.Close()

	client := examapi.New(srv.URL, examapi.WithRetryDelay(time.Millisecond))
	_, err := client.FetchExam(context.Background(), 14000)

	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, types.ErrTagValidation))
}
