package models

import "time"

const (
	QueueStatusOperational = "operational"
	QueueStatusWarning     = "warning"
	QueueStatusCritical    = "critical"
	QueueStatusMaintenance = "maintenance"
)

// SystemQueue tracks the health of a background processing queue shown on the admin dashboard.
type SystemQueue struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	QueueName      string    `gorm:"size:128;uniqueIndex;not null" json:"queue_name"`
	PendingCount   int64     `gorm:"not null;default:0" json:"pending_count"`
	ProcessedCount int64     `gorm:"not null;default:0" json:"processed_count"`
	ErrorCount     int64     `gorm:"not null;default:0" json:"error_count"`
	Status         string    `gorm:"size:32;not null;default:operational" json:"status"`
	LastUpdated    time.Time `json:"last_updated"`
	CreatedAt      time.Time `json:"created_at"`
}

// ErrorRate returns the share of processed items that failed, as a percentage.
func (q SystemQueue) ErrorRate() float64 {
	if q.ProcessedCount <= 0 {
		return 0
	}
	return float64(q.ErrorCount) / float64(q.ProcessedCount) * 100
}
