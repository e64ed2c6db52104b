package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/fresher-training-api/internal/dto"
	"github.com/noah-isme/fresher-training-api/internal/models"
	"github.com/noah-isme/fresher-training-api/internal/repository"
)

func TestDeriveQueueStatus(t *testing.T) {
	require.Equal(t, models.QueueStatusOperational, DeriveQueueStatus(models.SystemQueue{}))
	require.Equal(t, models.QueueStatusOperational, DeriveQueueStatus(models.SystemQueue{ProcessedCount: 100, ErrorCount: 1}))
	require.Equal(t, models.QueueStatusWarning, DeriveQueueStatus(models.SystemQueue{ProcessedCount: 100, ErrorCount: 2}))
	require.Equal(t, models.QueueStatusCritical, DeriveQueueStatus(models.SystemQueue{ProcessedCount: 100, ErrorCount: 10}))
}

func TestSystemQueueServiceReportAndList(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewSystemQueueService(repository.NewSystemQueueRepository(db), testValidator(), testLogger())
	ctx := context.Background()

	resp, err := svc.Report(ctx, " Email-Notifications ", dto.SystemQueueUpdateRequest{PendingCount: 4, ProcessedCount: 50, ErrorCount: 3})
	require.NoError(t, err)
	require.Equal(t, "email-notifications", resp.QueueName)
	require.Equal(t, models.QueueStatusWarning, resp.Status)
	require.InDelta(t, 6.0, resp.ErrorRate, 1e-9)

	resp, err = svc.Report(ctx, "email-notifications", dto.SystemQueueUpdateRequest{ProcessedCount: 60, Status: models.QueueStatusMaintenance})
	require.NoError(t, err)
	require.Equal(t, models.QueueStatusMaintenance, resp.Status)

	_, err = svc.Report(ctx, "  ", dto.SystemQueueUpdateRequest{})
	require.ErrorIs(t, err, ErrInvalidQueueName)

	_, err = svc.Report(ctx, "reports", dto.SystemQueueUpdateRequest{PendingCount: -1})
	require.Error(t, err)

	require.NoError(t, svc.RecordProcessed(ctx, QuizResultsQueue, false))
	require.NoError(t, svc.RecordProcessed(ctx, QuizResultsQueue, true))

	queues, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, queues, 2)
	require.Equal(t, "email-notifications", queues[0].QueueName)
	require.Equal(t, int64(60), queues[0].ProcessedCount)
	require.Equal(t, QuizResultsQueue, queues[1].QueueName)
	require.Equal(t, int64(2), queues[1].ProcessedCount)
	require.Equal(t, int64(1), queues[1].ErrorCount)
}
