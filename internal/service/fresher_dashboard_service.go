package service

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/fresher-training-api/internal/analytics"
	"github.com/noah-isme/fresher-training-api/internal/dto"
	"github.com/noah-isme/fresher-training-api/internal/models"
	"github.com/noah-isme/fresher-training-api/internal/repository"
)

const recentAttemptLimit = 5

// ErrFresherNotFound indicates the fresher record does not exist or the caller has none.
var ErrFresherNotFound = errors.New("fresher not found")

// FresherDashboardService serves the fresher landing page and quiz history.
type FresherDashboardService interface {
	ResolveFresherID(ctx context.Context, userID uint) (uint, error)
	GetDashboard(ctx context.Context, fresherID uint) (dto.FresherDashboardResponse, error)
	ListAttempts(ctx context.Context, fresherID uint, limit int) ([]dto.QuizAttemptResponse, error)
}

type fresherDashboardService struct {
	freshers repository.FresherRepository
	attempts repository.QuizAttemptRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

// NewFresherDashboardService builds the dashboard aggregator.
func NewFresherDashboardService(freshers repository.FresherRepository, attempts repository.QuizAttemptRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) FresherDashboardService {
	return &fresherDashboardService{
		freshers: freshers,
		attempts: attempts,
		cache:    cache,
		cacheTTL: ttl,
		logger:   logger.With().Str("component", "fresher_dashboard_service").Logger(),
		now:      time.Now,
	}
}

func (s *fresherDashboardService) ResolveFresherID(ctx context.Context, userID uint) (uint, error) {
	fresher, err := s.freshers.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrFresherNotFound
		}
		return 0, err
	}
	return fresher.ID, nil
}

func (s *fresherDashboardService) GetDashboard(ctx context.Context, fresherID uint) (dto.FresherDashboardResponse, error) {
	cacheKey := fresherDashboardCacheKey(fresherID)

	var cached dto.FresherDashboardResponse
	if readCache(ctx, s.cache, s.logger, "fresher_dashboard", cacheKey, &cached) {
		s.logger.Debug().Uint("fresher_id", fresherID).Msg("dashboard cache hit")
		cached.CacheHit = true
		return cached, nil
	}

	fresher, err := s.freshers.GetByID(ctx, fresherID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.FresherDashboardResponse{}, ErrFresherNotFound
		}
		return dto.FresherDashboardResponse{}, err
	}

	attempts, err := s.attempts.ListByFresher(ctx, fresherID, 0)
	if err != nil {
		return dto.FresherDashboardResponse{}, err
	}

	stats := analytics.Aggregate(toAnalyticsAttempts(attempts))
	recent := attempts
	if len(recent) > recentAttemptLimit {
		recent = recent[:recentAttemptLimit]
	}

	response := dto.FresherDashboardResponse{
		Profile:        dto.NewFresherResponse(fresher, stats),
		Stats:          stats,
		RecentAttempts: dto.NewQuizAttemptResponseSlice(recent),
		GeneratedAt:    s.now().UTC(),
	}

	writeCache(ctx, s.cache, s.logger, "fresher_dashboard", cacheKey, response, s.cacheTTL)

	return response, nil
}

func (s *fresherDashboardService) ListAttempts(ctx context.Context, fresherID uint, limit int) ([]dto.QuizAttemptResponse, error) {
	attempts, err := s.attempts.ListByFresher(ctx, fresherID, limit)
	if err != nil {
		return nil, err
	}
	return dto.NewQuizAttemptResponseSlice(attempts), nil
}

func toAnalyticsAttempts(attempts []models.QuizAttempt) []analytics.Attempt {
	out := make([]analytics.Attempt, 0, len(attempts))
	for _, attempt := range attempts {
		out = append(out, analytics.Attempt{
			FresherID:      attempt.FresherID,
			Score:          attempt.Score,
			TotalQuestions: attempt.TotalQuestions,
			Completed:      attempt.Completed,
			Timestamp:      attempt.QuizDate,
		})
	}
	return out
}
