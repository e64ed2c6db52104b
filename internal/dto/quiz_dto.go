package dto

import (
	"encoding/json"
	"time"

	"github.com/noah-isme/fresher-training-api/internal/models"
	"github.com/noah-isme/fresher-training-api/internal/quiz"
)

// QuizStartRequest optionally overrides the number of questions drawn.
type QuizStartRequest struct {
	QuestionCount int `json:"question_count" validate:"omitempty,min=1,max=50"`
}

// QuizAnswerRequest selects an option for the current question.
type QuizAnswerRequest struct {
	OptionIndex *int `json:"option_index" validate:"required,min=0"`
}

// QuizQuestionView exposes a question without its answer key.
type QuizQuestionView struct {
	ID      int      `json:"id"`
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

// QuizSessionResponse is the presentation snapshot of a quiz session.
type QuizSessionResponse struct {
	SessionID            string            `json:"session_id"`
	State                string            `json:"state"`
	CompletionReason     string            `json:"completion_reason,omitempty"`
	CurrentIndex         int               `json:"current_index"`
	TotalQuestions       int               `json:"total_questions"`
	TimeRemainingSeconds int               `json:"time_remaining_seconds"`
	Answers              map[int]int       `json:"answers"`
	CurrentQuestion      *QuizQuestionView `json:"current_question,omitempty"`
	StartedAt            time.Time         `json:"started_at"`
}

// NewQuizSessionResponse converts a session snapshot into a response.
func NewQuizSessionResponse(sessionID string, startedAt time.Time, snap quiz.Snapshot, current *quiz.Question) QuizSessionResponse {
	resp := QuizSessionResponse{
		SessionID:            sessionID,
		State:                string(snap.State),
		CompletionReason:     string(snap.Reason),
		CurrentIndex:         snap.CurrentIndex,
		TotalQuestions:       snap.TotalQuestions,
		TimeRemainingSeconds: snap.TimeRemainingSeconds,
		Answers:              snap.Answers,
		StartedAt:            startedAt,
	}
	if resp.Answers == nil {
		resp.Answers = map[int]int{}
	}
	if current != nil {
		resp.CurrentQuestion = &QuizQuestionView{
			ID:      current.ID,
			Text:    current.Text,
			Options: append([]string(nil), current.Options...),
		}
	}
	return resp
}

// QuizQuestionResult reports the outcome of one question after the session ends.
type QuizQuestionResult struct {
	QuestionID     int      `json:"question_id"`
	Text           string   `json:"text"`
	Options        []string `json:"options"`
	SelectedOption *int     `json:"selected_option"`
	CorrectOption  int      `json:"correct_option"`
	IsCorrect      bool     `json:"is_correct"`
}

// QuizReportResponse summarises a finished session.
type QuizReportResponse struct {
	SessionID        string               `json:"session_id"`
	Score            int                  `json:"score"`
	TotalQuestions   int                  `json:"total_questions"`
	Percentage       float64              `json:"percentage"`
	Passed           bool                 `json:"passed"`
	CompletionReason string               `json:"completion_reason"`
	TimeTakenSeconds int                  `json:"time_taken_seconds"`
	Results          []QuizQuestionResult `json:"results"`
}

// NewQuizQuestionResults converts per-question results.
func NewQuizQuestionResults(results []quiz.QuestionResult) []QuizQuestionResult {
	out := make([]QuizQuestionResult, 0, len(results))
	for _, result := range results {
		out = append(out, QuizQuestionResult{
			QuestionID:     result.Question.ID,
			Text:           result.Question.Text,
			Options:        append([]string(nil), result.Question.Options...),
			SelectedOption: result.Selected,
			CorrectOption:  result.Question.CorrectOption,
			IsCorrect:      result.IsCorrect,
		})
	}
	return out
}

// QuizAttemptResponse serialises a persisted attempt.
type QuizAttemptResponse struct {
	ID               uint        `json:"id"`
	SessionID        string      `json:"session_id"`
	Score            int         `json:"score"`
	TotalQuestions   int         `json:"total_questions"`
	Percentage       float64     `json:"percentage"`
	Completed        bool        `json:"completed"`
	CompletionReason string      `json:"completion_reason"`
	TimeTakenSeconds int         `json:"time_taken_seconds"`
	Answers          map[int]int `json:"answers"`
	QuizDate         time.Time   `json:"quiz_date"`
}

// NewQuizAttemptResponse converts an attempt model into a DTO.
func NewQuizAttemptResponse(attempt models.QuizAttempt) QuizAttemptResponse {
	answers := map[int]int{}
	if len(attempt.Answers) > 0 {
		_ = json.Unmarshal(attempt.Answers, &answers)
	}

	percentage := 0.0
	if attempt.TotalQuestions > 0 {
		percentage = float64(attempt.Score) / float64(attempt.TotalQuestions) * 100
	}

	return QuizAttemptResponse{
		ID:               attempt.ID,
		SessionID:        attempt.SessionID,
		Score:            attempt.Score,
		TotalQuestions:   attempt.TotalQuestions,
		Percentage:       percentage,
		Completed:        attempt.Completed,
		CompletionReason: attempt.CompletionReason,
		TimeTakenSeconds: attempt.TimeTakenSeconds,
		Answers:          answers,
		QuizDate:         attempt.QuizDate,
	}
}

// NewQuizAttemptResponseSlice converts attempt models into DTOs.
func NewQuizAttemptResponseSlice(attempts []models.QuizAttempt) []QuizAttemptResponse {
	out := make([]QuizAttemptResponse, 0, len(attempts))
	for _, attempt := range attempts {
		out = append(out, NewQuizAttemptResponse(attempt))
	}
	return out
}

// QuizCompletedEvent is published when a session is persisted.
type QuizCompletedEvent struct {
	Source    string              `json:"source"`
	FresherID uint                `json:"fresher_id"`
	Attempt   QuizAttemptResponse `json:"attempt"`
	SentAt    time.Time           `json:"sent_at"`
}
