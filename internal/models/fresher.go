package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	// FresherStatusActive marks a fresher currently in training.
	FresherStatusActive = "active"
	// FresherStatusInactive marks a paused fresher.
	FresherStatusInactive = "inactive"
	// FresherStatusCompleted marks a fresher who finished the programme.
	FresherStatusCompleted = "completed"
	// FresherStatusDropped marks a fresher who left the programme.
	FresherStatusDropped = "dropped"
)

// Fresher is a trainee enrolled in the training programme.
type Fresher struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	UserID         *uint          `gorm:"uniqueIndex" json:"user_id"`
	Code           string         `gorm:"size:32;uniqueIndex" json:"code"`
	Name           string         `gorm:"size:255;not null" json:"name"`
	Email          string         `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Phone          string         `gorm:"size:32" json:"phone"`
	Department     string         `gorm:"size:128;index" json:"department"`
	Batch          string         `gorm:"size:64;index" json:"batch"`
	Status         string         `gorm:"size:32;not null;default:active" json:"status"`
	AvatarURL      string         `gorm:"size:512" json:"avatar_url"`
	EnrollmentDate time.Time      `json:"enrollment_date"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"deleted_at"`
}

// IsActive reports whether the fresher is still in training.
func (f Fresher) IsActive() bool {
	return f.Status == FresherStatusActive
}
