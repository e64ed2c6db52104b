package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/fresher-training-api/internal/models"
)

// FresherFilter defines filters for listing freshers from the admin panel.
type FresherFilter struct {
	Search     string
	Department string
	Batch      string
	Status     string
	Sort       string
	Page       int
	PageSize   int
}

// FresherRepository exposes persistence helpers for fresher records.
type FresherRepository interface {
	List(ctx context.Context, filter FresherFilter) ([]models.Fresher, int64, error)
	ListAll(ctx context.Context) ([]models.Fresher, error)
	GetByID(ctx context.Context, id uint) (models.Fresher, error)
	GetByUserID(ctx context.Context, userID uint) (models.Fresher, error)
	Create(ctx context.Context, fresher *models.Fresher) error
	Update(ctx context.Context, id uint, updates map[string]interface{}) (models.Fresher, error)
	SoftDelete(ctx context.Context, id uint) error
	CountByStatus(ctx context.Context, status string) (int64, error)
	EmailTaken(ctx context.Context, email string, excludeID uint) (bool, error)
	UpsertBatch(ctx context.Context, freshers []models.Fresher) (int64, error)
}

type fresherRepository struct {
	db *gorm.DB
}

// NewFresherRepository constructs the fresher repository.
func NewFresherRepository(db *gorm.DB) FresherRepository {
	return &fresherRepository{db: db}
}

// likeEscaper makes LIKE wildcards in user input match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

var fresherSortColumns = map[string]string{
	"name":        "name ASC",
	"-name":       "name DESC",
	"created_at":  "created_at ASC",
	"-created_at": "created_at DESC",
	"department":  "department ASC",
	"code":        "code ASC",
}

func (r *fresherRepository) List(ctx context.Context, filter FresherFilter) ([]models.Fresher, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Fresher{})

	if filter.Search != "" {
		like := "%" + likeEscaper.Replace(strings.ToLower(filter.Search)) + "%"
		query = query.Where(`LOWER(name) LIKE ? ESCAPE '\' OR LOWER(department) LIKE ? ESCAPE '\' OR LOWER(code) LIKE ? ESCAPE '\'`, like, like, like)
	}

	if filter.Department != "" {
		query = query.Where("department = ?", filter.Department)
	}

	if filter.Batch != "" {
		query = query.Where("batch = ?", filter.Batch)
	}

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order, ok := fresherSortColumns[filter.Sort]
	if !ok {
		order = "created_at DESC"
	}
	query = query.Order(order)

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		offset := (page - 1) * filter.PageSize
		query = query.Limit(filter.PageSize).Offset(offset)
	}

	var freshers []models.Fresher
	if err := query.Find(&freshers).Error; err != nil {
		return nil, 0, err
	}

	return freshers, total, nil
}

func (r *fresherRepository) ListAll(ctx context.Context) ([]models.Fresher, error) {
	var freshers []models.Fresher
	err := r.db.WithContext(ctx).Order("id ASC").Find(&freshers).Error
	return freshers, err
}

func (r *fresherRepository) GetByID(ctx context.Context, id uint) (models.Fresher, error) {
	var fresher models.Fresher
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&fresher).Error; err != nil {
		return models.Fresher{}, err
	}
	return fresher, nil
}

func (r *fresherRepository) GetByUserID(ctx context.Context, userID uint) (models.Fresher, error) {
	var fresher models.Fresher
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&fresher).Error; err != nil {
		return models.Fresher{}, err
	}
	return fresher, nil
}

func (r *fresherRepository) Create(ctx context.Context, fresher *models.Fresher) error {
	return r.db.WithContext(ctx).Create(fresher).Error
}

func (r *fresherRepository) Update(ctx context.Context, id uint, updates map[string]interface{}) (models.Fresher, error) {
	tx := r.db.WithContext(ctx).Model(&models.Fresher{}).Where("id = ?", id).Updates(updates)
	if tx.Error != nil {
		return models.Fresher{}, tx.Error
	}
	if tx.RowsAffected == 0 {
		return models.Fresher{}, gorm.ErrRecordNotFound
	}

	return r.GetByID(ctx, id)
}

func (r *fresherRepository) SoftDelete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		update := tx.Model(&models.Fresher{}).
			Where("id = ?", id).
			Update("status", models.FresherStatusDropped)
		if update.Error != nil {
			return update.Error
		}

		if update.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return tx.Delete(&models.Fresher{}, id).Error
	})
}

func (r *fresherRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Fresher{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}

func (r *fresherRepository) EmailTaken(ctx context.Context, email string, excludeID uint) (bool, error) {
	query := r.db.WithContext(ctx).Unscoped().
		Model(&models.Fresher{}).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email)))
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *fresherRepository) UpsertBatch(ctx context.Context, freshers []models.Fresher) (int64, error) {
	if len(freshers) == 0 {
		return 0, nil
	}

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "code", "phone", "department", "batch", "status", "updated_at"}),
	}).Create(&freshers)

	return result.RowsAffected, result.Error
}
