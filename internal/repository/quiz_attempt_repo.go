package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/fresher-training-api/internal/models"
)

// QuizAttemptRepository persists finished quiz sessions. Attempts are append-only.
type QuizAttemptRepository interface {
	Create(ctx context.Context, attempt *models.QuizAttempt) error
	ListByFresher(ctx context.Context, fresherID uint, limit int) ([]models.QuizAttempt, error)
	ListByFreshers(ctx context.Context, fresherIDs []uint) ([]models.QuizAttempt, error)
	ListAll(ctx context.Context) ([]models.QuizAttempt, error)
	ListSince(ctx context.Context, since time.Time) ([]models.QuizAttempt, error)
}

type quizAttemptRepository struct {
	db *gorm.DB
}

// NewQuizAttemptRepository constructs the attempt repository.
func NewQuizAttemptRepository(db *gorm.DB) QuizAttemptRepository {
	return &quizAttemptRepository{db: db}
}

func (r *quizAttemptRepository) Create(ctx context.Context, attempt *models.QuizAttempt) error {
	return r.db.WithContext(ctx).Create(attempt).Error
}

func (r *quizAttemptRepository) ListByFresher(ctx context.Context, fresherID uint, limit int) ([]models.QuizAttempt, error) {
	query := r.db.WithContext(ctx).
		Where("fresher_id = ?", fresherID).
		Order("quiz_date DESC").
		Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var attempts []models.QuizAttempt
	err := query.Find(&attempts).Error
	return attempts, err
}

func (r *quizAttemptRepository) ListByFreshers(ctx context.Context, fresherIDs []uint) ([]models.QuizAttempt, error) {
	if len(fresherIDs) == 0 {
		return []models.QuizAttempt{}, nil
	}

	var attempts []models.QuizAttempt
	err := r.db.WithContext(ctx).
		Where("fresher_id IN ?", fresherIDs).
		Find(&attempts).Error
	return attempts, err
}

func (r *quizAttemptRepository) ListAll(ctx context.Context) ([]models.QuizAttempt, error) {
	var attempts []models.QuizAttempt
	err := r.db.WithContext(ctx).Find(&attempts).Error
	return attempts, err
}

func (r *quizAttemptRepository) ListSince(ctx context.Context, since time.Time) ([]models.QuizAttempt, error) {
	var attempts []models.QuizAttempt
	err := r.db.WithContext(ctx).
		Where("quiz_date >= ?", since).
		Find(&attempts).Error
	return attempts, err
}
