package usecase_test

import (
	"sync"
	"testing"

	"github.com/m-mizutani/examport/pkg/usecase"
	"github.com/m-mizutani/gt"
)

func TestDuplicateDetector_SameContentDifferentID(t *testing.T) {
	d := usecase.NewDuplicateDetector()

	// exam_id and question_id differ, content is identical
	first := testExam(14001, "same")
	second := testExam(14250, "same")
	second.Questions[0].QuestionID = "republished"

	_, dup := d.Check(first)
	gt.True(t, !dup)

	firstID, dup := d.Check(second)
	gt.True(t, dup)
	gt.Equal(t, firstID, "14001")
}

func TestDuplicateDetector_DifferentContent(t *testing.T) {
	d := usecase.NewDuplicateDetector()

	_, dup := d.Check(testExam(1, "alpha"))
	gt.True(t, !dup)

	_, dup = d.Check(testExam(2, "beta"))
	gt.True(t, !dup)
}

func TestDuplicateDetector_ChoiceOrderMatters(t *testing.T) {
	d := usecase.NewDuplicateDetector()

	first := testExam(1, "ordered")
	second := testExam(2, "ordered")
	second.Questions[0].Choices[0], second.Questions[0].Choices[1] =
		second.Questions[0].Choices[1], second.Questions[0].Choices[0]

	_, dup := d.Check(first)
	gt.True(t, !dup)

	_, dup = d.Check(second)
	gt.True(t, !dup)
}

func TestDuplicateDetector_ConcurrentCheck(t *testing.T) {
	d := usecase.NewDuplicateDetector()

	const n = 16
	results := make([]bool, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, dup := d.Check(testExam(1000+i, "racing"))
			results[i] = dup
		}(i)
	}
	wg.Wait()

	// exactly one caller wins the first-seen slot
	duplicates := 0
	for _, dup := range results {
		if dup {
			duplicates++
		}
	}
	gt.Equal(t, duplicates, n-1)
}
