package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/noah-isme/fresher-training-api/internal/models"
	"github.com/noah-isme/fresher-training-api/internal/quiz"
)

func TestNewPaginationMetaRoundsUp(t *testing.T) {
	require.Equal(t, 3, NewPaginationMeta(1, 10, 21).TotalPages)
	require.Equal(t, 0, NewPaginationMeta(1, 10, 0).TotalPages)
	require.Equal(t, 0, NewPaginationMeta(1, 0, 5).TotalPages)
}

func TestQuizSessionResponseHidesAnswerKey(t *testing.T) {
	question := quiz.Question{ID: 3, Text: "q", Options: []string{"a", "b"}, CorrectOption: 1}
	resp := NewQuizSessionResponse("s", time.Now(), quiz.Snapshot{State: quiz.StateInProgress, TotalQuestions: 5}, &question)

	require.Equal(t, "in_progress", resp.State)
	require.NotNil(t, resp.CurrentQuestion)
	require.Equal(t, 3, resp.CurrentQuestion.ID)
	require.NotNil(t, resp.Answers)

	payload, err := json.Marshal(resp)
	require.NoError(t, err)
	require.NotContains(t, string(payload), "correct_option")
}

func TestNewQuizAttemptResponseDecodesAnswers(t *testing.T) {
	resp := NewQuizAttemptResponse(models.QuizAttempt{
		Score:          3,
		TotalQuestions: 5,
		Answers:        datatypes.JSON(`{"0":1,"2":3}`),
	})
	require.Equal(t, 60.0, resp.Percentage)
	require.Equal(t, map[int]int{0: 1, 2: 3}, resp.Answers)

	empty := NewQuizAttemptResponse(models.QuizAttempt{})
	require.Equal(t, 0.0, empty.Percentage)
	require.Empty(t, empty.Answers)
}
