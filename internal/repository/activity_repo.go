package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/fresher-training-api/internal/models"
)

// ActivityFilter narrows activity queries.
type ActivityFilter struct {
	Page      int
	PageSize  int
	Type      string
	FresherID *uint
	Since     *time.Time
}

// ActivityRepository persists the dashboard activity trail.
type ActivityRepository interface {
	Create(ctx context.Context, entry *models.Activity) error
	List(ctx context.Context, filter ActivityFilter) ([]models.Activity, int64, error)
}

type activityRepository struct {
	db *gorm.DB
}

// NewActivityRepository constructs the activity repository.
func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Create(ctx context.Context, entry *models.Activity) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *activityRepository) List(ctx context.Context, filter ActivityFilter) ([]models.Activity, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Activity{})

	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}

	if filter.FresherID != nil {
		query = query.Where("fresher_id = ?", *filter.FresherID)
	}

	if filter.Since != nil {
		query = query.Where("created_at >= ?", *filter.Since)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		offset := (page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	var entries []models.Activity
	if err := query.Order("created_at DESC").Order("id DESC").Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}
