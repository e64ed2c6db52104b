package dto

import (
	"time"

	"github.com/noah-isme/fresher-training-api/internal/models"
)

// SystemQueueUpdateRequest reports fresh counters for a queue.
type SystemQueueUpdateRequest struct {
	PendingCount   int64  `json:"pending_count" validate:"gte=0"`
	ProcessedCount int64  `json:"processed_count" validate:"gte=0"`
	ErrorCount     int64  `json:"error_count" validate:"gte=0"`
	Status         string `json:"status" validate:"omitempty,oneof=operational warning critical maintenance"`
}

// SystemQueueResponse serialises a queue health row.
type SystemQueueResponse struct {
	QueueName      string    `json:"queue_name"`
	PendingCount   int64     `json:"pending_count"`
	ProcessedCount int64     `json:"processed_count"`
	ErrorCount     int64     `json:"error_count"`
	ErrorRate      float64   `json:"error_rate"`
	Status         string    `json:"status"`
	LastUpdated    time.Time `json:"last_updated"`
}

// NewSystemQueueResponse converts a queue model into a DTO.
func NewSystemQueueResponse(queue models.SystemQueue) SystemQueueResponse {
	return SystemQueueResponse{
		QueueName:      queue.QueueName,
		PendingCount:   queue.PendingCount,
		ProcessedCount: queue.ProcessedCount,
		ErrorCount:     queue.ErrorCount,
		ErrorRate:      queue.ErrorRate(),
		Status:         queue.Status,
		LastUpdated:    queue.LastUpdated,
	}
}
