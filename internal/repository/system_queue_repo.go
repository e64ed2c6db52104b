package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/fresher-training-api/internal/models"
)

// SystemQueueRepository stores background queue health snapshots.
type SystemQueueRepository interface {
	List(ctx context.Context) ([]models.SystemQueue, error)
	Upsert(ctx context.Context, queue *models.SystemQueue) error
	Increment(ctx context.Context, name string, processed, failed int64, at time.Time) error
}

type systemQueueRepository struct {
	db *gorm.DB
}

// NewSystemQueueRepository constructs the queue repository.
func NewSystemQueueRepository(db *gorm.DB) SystemQueueRepository {
	return &systemQueueRepository{db: db}
}

func (r *systemQueueRepository) List(ctx context.Context) ([]models.SystemQueue, error) {
	var queues []models.SystemQueue
	err := r.db.WithContext(ctx).Order("queue_name ASC").Find(&queues).Error
	return queues, err
}

func (r *systemQueueRepository) Upsert(ctx context.Context, queue *models.SystemQueue) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "queue_name"}},
		DoUpdates: clause.AssignmentColumns([]string{"pending_count", "processed_count", "error_count", "status", "last_updated"}),
	}).Create(queue).Error
}

func (r *systemQueueRepository) Increment(ctx context.Context, name string, processed, failed int64, at time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		queue := models.SystemQueue{QueueName: name, Status: models.QueueStatusOperational, LastUpdated: at}
		if err := tx.Where("queue_name = ?", name).FirstOrCreate(&queue).Error; err != nil {
			return err
		}

		return tx.Model(&models.SystemQueue{}).
			Where("id = ?", queue.ID).
			Updates(map[string]interface{}{
				"processed_count": gorm.Expr("processed_count + ?", processed),
				"error_count":     gorm.Expr("error_count + ?", failed),
				"last_updated":    at,
			}).Error
	})
}
