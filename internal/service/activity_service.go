package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/noah-isme/fresher-training-api/internal/dto"
	"github.com/noah-isme/fresher-training-api/internal/models"
	"github.com/noah-isme/fresher-training-api/internal/repository"
)

// ActivityActor represents the authenticated administrator performing an action.
type ActivityActor struct {
	ID   uint
	Role string
}

// ActivityRecorder defines behaviour for recording feed entries.
type ActivityRecorder interface {
	Record(ctx context.Context, entry dto.ActivityCreateRequest) (dto.ActivityResponse, error)
}

// ActivityService exposes methods to query and persist the activity feed.
type ActivityService interface {
	ActivityRecorder
	List(ctx context.Context, req dto.ActivityListRequest) (dto.ActivityListResponse, error)
}

type activityService struct {
	repo      repository.ActivityRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewActivityService constructs the activity feed service.
func NewActivityService(repo repository.ActivityRepository, validator *validator.Validate, logger zerolog.Logger) ActivityService {
	return &activityService{
		repo:      repo,
		validator: validator,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "activity_service").Logger(),
	}
}

func (s *activityService) Record(ctx context.Context, entry dto.ActivityCreateRequest) (dto.ActivityResponse, error) {
	entry.Description = strings.TrimSpace(s.sanitizer.Sanitize(entry.Description))
	if err := s.validator.Struct(entry); err != nil {
		return dto.ActivityResponse{}, err
	}

	model := models.Activity{
		Type:        entry.Type,
		Description: entry.Description,
		AdminID:     entry.AdminID,
		FresherID:   entry.FresherID,
		Metadata:    sanitizeMetadata(entry.Metadata),
	}

	if err := s.repo.Create(ctx, &model); err != nil {
		s.logger.Error().Err(err).Str("type", entry.Type).Msg("failed to persist activity")
		return dto.ActivityResponse{}, err
	}

	return dto.NewActivityResponse(model), nil
}

func (s *activityService) List(ctx context.Context, req dto.ActivityListRequest) (dto.ActivityListResponse, error) {
	filter := repository.ActivityFilter{
		Page:      req.Page,
		PageSize:  req.PageSize,
		Type:      strings.TrimSpace(req.Type),
		FresherID: req.FresherID,
		Since:     req.Since,
	}

	entries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.ActivityListResponse{}, err
	}

	responses := make([]dto.ActivityResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, dto.NewActivityResponse(entry))
	}

	pagination := dto.NewPaginationMeta(maxInt(req.Page, 1), req.PageSize, total)
	if req.PageSize <= 0 {
		pagination.TotalPages = 1
	}

	return dto.ActivityListResponse{Items: responses, Pagination: pagination}, nil
}

// recordActivity writes a feed entry and only logs failures; the feed never blocks the primary operation.
func recordActivity(ctx context.Context, recorder ActivityRecorder, logger zerolog.Logger, entry dto.ActivityCreateRequest) {
	if recorder == nil {
		return
	}
	if _, err := recorder.Record(ctx, entry); err != nil {
		logger.Warn().Err(err).Str("type", entry.Type).Msg("failed to record activity")
	}
}

func sanitizeMetadata(metadata map[string]interface{}) datatypes.JSONMap {
	if metadata == nil {
		return datatypes.JSONMap{}
	}

	sanitized := datatypes.JSONMap{}
	for key, value := range metadata {
		lower := strings.ToLower(key)
		if strings.Contains(lower, "phone") || strings.Contains(lower, "token") {
			sanitized[key] = "***"
			continue
		}
		sanitized[key] = value
	}
	return sanitized
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
