package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	// ActivityFresherAdded is recorded when an administrator enrols a fresher.
	ActivityFresherAdded = "fresher_added"
	// ActivityFresherUpdated is recorded when a fresher profile changes.
	ActivityFresherUpdated = "fresher_updated"
	// ActivityFresherRemoved is recorded when a fresher is archived.
	ActivityFresherRemoved = "fresher_removed"
	// ActivityQuizCompleted is recorded whenever a quiz session is persisted.
	ActivityQuizCompleted = "quiz_completed"
)

// Activity captures auditable events raised by administrators and freshers.
type Activity struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	Type        string            `gorm:"size:64;not null;index" json:"type"`
	Description string            `gorm:"type:text;not null" json:"description"`
	AdminID     *uint             `json:"admin_id"`
	FresherID   *uint             `gorm:"index" json:"fresher_id"`
	Metadata    datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedAt   time.Time         `json:"created_at"`
}
