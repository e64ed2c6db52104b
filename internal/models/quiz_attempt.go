package models

import (
	"time"

	"gorm.io/datatypes"
)

// QuizAttempt is the append-only record of one finished quiz session.
type QuizAttempt struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	FresherID        uint           `gorm:"not null;index" json:"fresher_id"`
	SessionID        string         `gorm:"size:64;uniqueIndex" json:"session_id"`
	Score            int            `gorm:"not null" json:"score"`
	CorrectAnswers   int            `gorm:"not null" json:"correct_answers"`
	TotalQuestions   int            `gorm:"not null" json:"total_questions"`
	Completed        bool           `gorm:"not null;default:false" json:"completed"`
	CompletionReason string         `gorm:"size:32" json:"completion_reason"`
	TimeTakenSeconds int            `json:"time_taken_seconds"`
	Answers          datatypes.JSON `gorm:"type:json" json:"answers"`
	QuizDate         time.Time      `gorm:"index" json:"quiz_date"`
	CreatedAt        time.Time      `json:"created_at"`
}

// TableName keeps the table name used by the dashboard.
func (QuizAttempt) TableName() string {
	return "quiz_results"
}
