package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/fresher-training-api/internal/dto"
	"github.com/noah-isme/fresher-training-api/internal/models"
	"github.com/noah-isme/fresher-training-api/internal/repository"
)

var (
	// ErrSeedDisabled indicates the seeding tools are disabled by configuration.
	ErrSeedDisabled = errors.New("seeding is disabled")
	// ErrSeedUnauthorized indicates the provided token is invalid.
	ErrSeedUnauthorized = errors.New("invalid seed token")
)

var validFresherStatuses = map[string]struct{}{
	models.FresherStatusActive:    {},
	models.FresherStatusInactive:  {},
	models.FresherStatusCompleted: {},
	models.FresherStatusDropped:   {},
}

// SeedService bulk loads freshers for demos and fresh environments.
type SeedService interface {
	SeedFreshers(ctx context.Context, token string, items []dto.SeedFresher) (int64, error)
}

type seedService struct {
	freshers    repository.FresherRepository
	enabled     bool
	token       string
	emailDomain string
	logger      zerolog.Logger
	now         func() time.Time
}

// NewSeedService constructs a seeding service.
func NewSeedService(freshers repository.FresherRepository, enabled bool, token, emailDomain string, logger zerolog.Logger) SeedService {
	return &seedService{
		freshers:    freshers,
		enabled:     enabled,
		token:       token,
		emailDomain: emailDomain,
		logger:      logger.With().Str("component", "seed_service").Logger(),
		now:         time.Now,
	}
}

func (s *seedService) SeedFreshers(ctx context.Context, token string, items []dto.SeedFresher) (int64, error) {
	if !s.enabled {
		return 0, ErrSeedDisabled
	}
	if !s.validateToken(token) {
		return 0, ErrSeedUnauthorized
	}

	normalized := s.normalizeFreshers(items)
	affected, err := s.freshers.UpsertBatch(ctx, normalized)
	if err != nil {
		return 0, err
	}
	s.logger.Info().Int64("affected", affected).Int("skipped", len(items)-len(normalized)).Msg("freshers seeded")
	return affected, nil
}

func (s *seedService) validateToken(token string) bool {
	expected := strings.TrimSpace(s.token)
	if expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(strings.TrimSpace(token))) == 1
}

// normalizeFreshers fills generated fields and drops rows that cannot form a record.
func (s *seedService) normalizeFreshers(items []dto.SeedFresher) []models.Fresher {
	now := s.now().UTC()
	out := make([]models.Fresher, 0, len(items))
	for _, item := range items {
		name := strings.TrimSpace(item.Name)
		email := strings.ToLower(strings.TrimSpace(item.Email))
		if email == "" {
			generated, err := GenerateFresherEmail(name, s.emailDomain)
			if err != nil {
				continue
			}
			email = generated
		}

		status := strings.ToLower(strings.TrimSpace(item.Status))
		if _, ok := validFresherStatuses[status]; !ok {
			status = models.FresherStatusActive
		}

		code := strings.TrimSpace(item.Code)
		if code == "" {
			code = GenerateFresherCode(now)
		}

		out = append(out, models.Fresher{
			Code:           code,
			Name:           name,
			Email:          email,
			Phone:          strings.TrimSpace(item.Phone),
			Department:     strings.TrimSpace(item.Department),
			Batch:          strings.TrimSpace(item.Batch),
			Status:         status,
			EnrollmentDate: now,
		})
	}
	return out
}
