package dto

import (
	"time"

	"github.com/noah-isme/fresher-training-api/internal/analytics"
	"github.com/noah-isme/fresher-training-api/internal/models"
)

// FresherListRequest defines filters for listing freshers.
type FresherListRequest struct {
	Page       int
	PageSize   int
	Search     string
	Department string
	Batch      string
	Status     string
	Sort       string
}

// FresherCreateRequest captures the payload for enrolling a fresher.
type FresherCreateRequest struct {
	UserID         *uint  `json:"user_id"`
	Name           string `json:"name" validate:"required,min=2,max=255"`
	Email          string `json:"email" validate:"omitempty,email"`
	Phone          string `json:"phone" validate:"omitempty,max=32"`
	Department     string `json:"department" validate:"required,min=2,max=128"`
	Batch          string `json:"batch" validate:"omitempty,max=64"`
	Status         string `json:"status" validate:"omitempty,oneof=active inactive completed dropped"`
	EnrollmentDate string `json:"enrollment_date" validate:"omitempty,datetime=2006-01-02"`
}

// FresherUpdateRequest captures partial profile updates.
type FresherUpdateRequest struct {
	Name       *string `json:"name" validate:"omitnil,min=2,max=255"`
	Email      *string `json:"email" validate:"omitempty,email"`
	Phone      *string `json:"phone" validate:"omitempty,max=32"`
	Department *string `json:"department" validate:"omitnil,min=2,max=128"`
	Batch      *string `json:"batch" validate:"omitempty,max=64"`
	Status     *string `json:"status" validate:"omitempty,oneof=active inactive completed dropped"`
}

// FresherResponse serialises a fresher with their quiz summary.
type FresherResponse struct {
	ID             uint      `json:"id"`
	UserID         *uint     `json:"user_id,omitempty"`
	Code           string    `json:"code"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	Department     string    `json:"department"`
	Batch          string    `json:"batch"`
	Status         string    `json:"status"`
	AvatarURL      string    `json:"avatar_url"`
	EnrollmentDate time.Time `json:"enrollment_date"`
	QuizAverage    float64   `json:"quiz_average"`
	CompletionRate float64   `json:"completion_rate"`
	AttemptCount   int       `json:"attempt_count"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// FresherListResponse wraps a paginated fresher response.
type FresherListResponse struct {
	Items      []FresherResponse `json:"items"`
	Pagination PaginationMeta    `json:"pagination"`
}

// NewFresherResponse converts a fresher model into a DTO, folding in aggregated quiz stats.
func NewFresherResponse(fresher models.Fresher, stats analytics.Stats) FresherResponse {
	return FresherResponse{
		ID:             fresher.ID,
		UserID:         fresher.UserID,
		Code:           fresher.Code,
		Name:           fresher.Name,
		Email:          fresher.Email,
		Phone:          fresher.Phone,
		Department:     fresher.Department,
		Batch:          fresher.Batch,
		Status:         fresher.Status,
		AvatarURL:      fresher.AvatarURL,
		EnrollmentDate: fresher.EnrollmentDate,
		QuizAverage:    stats.AverageScore,
		CompletionRate: stats.CompletionRate,
		AttemptCount:   stats.TotalAttempts,
		CreatedAt:      fresher.CreatedAt,
		UpdatedAt:      fresher.UpdatedAt,
	}
}

// SeedFresher is one row of a bulk seed payload.
type SeedFresher struct {
	Code       string `json:"code" validate:"omitempty,max=32"`
	Name       string `json:"name" validate:"required,min=2,max=255"`
	Email      string `json:"email" validate:"omitempty,email"`
	Phone      string `json:"phone" validate:"omitempty,max=32"`
	Department string `json:"department" validate:"omitempty,max=128"`
	Batch      string `json:"batch" validate:"omitempty,max=64"`
	Status     string `json:"status"`
}
