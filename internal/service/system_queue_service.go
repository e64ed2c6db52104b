package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/fresher-training-api/internal/dto"
	"github.com/noah-isme/fresher-training-api/internal/models"
	"github.com/noah-isme/fresher-training-api/internal/repository"
)

// QuizResultsQueue is the queue fed by persisted quiz attempts.
const QuizResultsQueue = "quiz-results"

// Error-rate thresholds, in percent, used when a report carries no explicit status.
const (
	queueWarningErrorRate  = 2.0
	queueCriticalErrorRate = 10.0
)

// ErrInvalidQueueName indicates the queue name is blank or malformed.
var ErrInvalidQueueName = errors.New("invalid queue name")

// SystemQueueService tracks background queue health for the admin dashboard.
type SystemQueueService interface {
	List(ctx context.Context) ([]dto.SystemQueueResponse, error)
	Report(ctx context.Context, name string, req dto.SystemQueueUpdateRequest) (dto.SystemQueueResponse, error)
	RecordProcessed(ctx context.Context, name string, failed bool) error
}

type systemQueueService struct {
	repo      repository.SystemQueueRepository
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewSystemQueueService constructs the queue health service.
func NewSystemQueueService(repo repository.SystemQueueRepository, validate *validator.Validate, logger zerolog.Logger) SystemQueueService {
	return &systemQueueService{
		repo:      repo,
		validator: validate,
		logger:    logger.With().Str("component", "system_queue_service").Logger(),
		now:       time.Now,
	}
}

func (s *systemQueueService) List(ctx context.Context) ([]dto.SystemQueueResponse, error) {
	queues, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.SystemQueueResponse, 0, len(queues))
	for _, queue := range queues {
		responses = append(responses, dto.NewSystemQueueResponse(queue))
	}
	return responses, nil
}

func (s *systemQueueService) Report(ctx context.Context, name string, req dto.SystemQueueUpdateRequest) (dto.SystemQueueResponse, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || len(name) > 128 {
		return dto.SystemQueueResponse{}, ErrInvalidQueueName
	}
	if err := s.validator.Struct(req); err != nil {
		return dto.SystemQueueResponse{}, err
	}

	queue := models.SystemQueue{
		QueueName:      name,
		PendingCount:   req.PendingCount,
		ProcessedCount: req.ProcessedCount,
		ErrorCount:     req.ErrorCount,
		Status:         req.Status,
		LastUpdated:    s.now().UTC(),
	}
	if queue.Status == "" {
		queue.Status = DeriveQueueStatus(queue)
	}

	if err := s.repo.Upsert(ctx, &queue); err != nil {
		return dto.SystemQueueResponse{}, err
	}

	if queue.Status == models.QueueStatusCritical {
		s.logger.Warn().Str("queue", name).Float64("error_rate", queue.ErrorRate()).Msg("queue reported critical")
	}

	return dto.NewSystemQueueResponse(queue), nil
}

func (s *systemQueueService) RecordProcessed(ctx context.Context, name string, failed bool) error {
	errorsDelta := int64(0)
	if failed {
		errorsDelta = 1
	}
	return s.repo.Increment(ctx, name, 1, errorsDelta, s.now().UTC())
}

// DeriveQueueStatus grades a queue by its error rate.
func DeriveQueueStatus(queue models.SystemQueue) string {
	rate := queue.ErrorRate()
	switch {
	case rate >= queueCriticalErrorRate:
		return models.QueueStatusCritical
	case rate >= queueWarningErrorRate:
		return models.QueueStatusWarning
	default:
		return models.QueueStatusOperational
	}
}
