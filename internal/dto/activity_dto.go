package dto

import (
	"time"

	"github.com/noah-isme/fresher-training-api/internal/models"
)

// ActivityListRequest defines filters for the activity feed.
type ActivityListRequest struct {
	Page      int
	PageSize  int
	Type      string
	FresherID *uint
	Since     *time.Time
}

// ActivityCreateRequest records an event on the activity feed.
type ActivityCreateRequest struct {
	Type        string                 `json:"type" validate:"required,oneof=fresher_added fresher_updated fresher_removed quiz_completed"`
	Description string                 `json:"description" validate:"required,min=3,max=500"`
	AdminID     *uint                  `json:"admin_id"`
	FresherID   *uint                  `json:"fresher_id"`
	Metadata    map[string]interface{} `json:"metadata"`
}

// ActivityResponse serialises activity entries.
type ActivityResponse struct {
	ID          uint                   `json:"id"`
	Type        string                 `json:"type"`
	Description string                 `json:"description"`
	AdminID     *uint                  `json:"admin_id,omitempty"`
	FresherID   *uint                  `json:"fresher_id,omitempty"`
	Metadata    map[string]interface{} `json:"metadata"`
	CreatedAt   time.Time              `json:"created_at"`
}

// ActivityListResponse wraps a paginated activity feed.
type ActivityListResponse struct {
	Items      []ActivityResponse `json:"items"`
	Pagination PaginationMeta     `json:"pagination"`
}

// NewActivityResponse converts an activity model into a DTO.
func NewActivityResponse(model models.Activity) ActivityResponse {
	metadata := map[string]interface{}{}
	for key, value := range model.Metadata {
		metadata[key] = value
	}

	return ActivityResponse{
		ID:          model.ID,
		Type:        model.Type,
		Description: model.Description,
		AdminID:     model.AdminID,
		FresherID:   model.FresherID,
		Metadata:    metadata,
		CreatedAt:   model.CreatedAt,
	}
}
