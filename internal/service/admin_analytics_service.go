package service

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/noah-isme/fresher-training-api/internal/analytics"
	"github.com/noah-isme/fresher-training-api/internal/dto"
	"github.com/noah-isme/fresher-training-api/internal/models"
	"github.com/noah-isme/fresher-training-api/internal/repository"
)

// analyticsRecentWindow bounds the recent_quiz block of the summary.
const analyticsRecentWindow = 7 * 24 * time.Hour

// AdminAnalyticsService aggregates programme analytics for the admin dashboard.
type AdminAnalyticsService interface {
	GetSummary(ctx context.Context) (dto.AdminAnalyticsResponse, error)
}

type adminAnalyticsService struct {
	freshers repository.FresherRepository
	attempts repository.QuizAttemptRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

// NewAdminAnalyticsService constructs the analytics service.
func NewAdminAnalyticsService(freshers repository.FresherRepository, attempts repository.QuizAttemptRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) AdminAnalyticsService {
	return &adminAnalyticsService{
		freshers: freshers,
		attempts: attempts,
		cache:    cache,
		cacheTTL: ttl,
		logger:   logger.With().Str("component", "admin_analytics_service").Logger(),
		now:      time.Now,
	}
}

func (s *adminAnalyticsService) GetSummary(ctx context.Context) (dto.AdminAnalyticsResponse, error) {
	tracer := otel.Tracer("github.com/noah-isme/fresher-training-api/internal/service/admin_analytics")
	ctx, span := tracer.Start(ctx, "analytics.aggregate")
	span.SetAttributes(attribute.String("analytics.cache_key", analyticsSummaryCacheKey))
	defer span.End()

	var cached dto.AdminAnalyticsResponse
	if readCache(ctx, s.cache, s.logger, "analytics", analyticsSummaryCacheKey, &cached) {
		cached.CacheHit = true
		span.SetAttributes(attribute.Bool("analytics.cache_hit", true))
		return cached, nil
	}

	freshers, err := s.freshers.ListAll(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list_freshers_failed")
		return dto.AdminAnalyticsResponse{}, err
	}

	active, err := s.freshers.CountByStatus(ctx, models.FresherStatusActive)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "count_active_failed")
		return dto.AdminAnalyticsResponse{}, err
	}

	attempts, err := s.attempts.ListAll(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list_attempts_failed")
		return dto.AdminAnalyticsResponse{}, err
	}

	now := s.now().UTC()
	recent, err := s.attempts.ListSince(ctx, now.Add(-analyticsRecentWindow))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list_recent_attempts_failed")
		return dto.AdminAnalyticsResponse{}, err
	}

	summary := buildAnalyticsSummary(freshers, active, attempts, recent, now)
	span.SetAttributes(
		attribute.Int("analytics.fresher_count", len(freshers)),
		attribute.Int("analytics.attempt_count", len(attempts)),
		attribute.Int("analytics.recent_attempt_count", len(recent)),
	)

	writeCache(ctx, s.cache, s.logger, "analytics", analyticsSummaryCacheKey, summary, s.cacheTTL)

	return summary, nil
}

func buildAnalyticsSummary(freshers []models.Fresher, active int64, attempts, recent []models.QuizAttempt, now time.Time) dto.AdminAnalyticsResponse {
	return dto.AdminAnalyticsResponse{
		TotalFreshers:    int64(len(freshers)),
		ActiveFreshers:   active,
		Quiz:             analytics.Aggregate(toAnalyticsAttempts(attempts)),
		RecentQuiz:       analytics.Aggregate(toAnalyticsAttempts(recent)),
		RecentWindowDays: int(analyticsRecentWindow / (24 * time.Hour)),
		DepartmentDistribution: analytics.GroupCount(freshers, func(f models.Fresher) string {
			return strings.TrimSpace(f.Department)
		}),
		StatusDistribution: analytics.GroupCount(freshers, func(f models.Fresher) string {
			return strings.TrimSpace(f.Status)
		}),
		GeneratedAt: now,
		CacheHit:    false,
	}
}
