package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/fresher-training-api/internal/models"
	"github.com/noah-isme/fresher-training-api/internal/quiz"
	"github.com/noah-isme/fresher-training-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func testValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

func ptrUint(v uint) *uint {
	return &v
}

func ptrString(v string) *string {
	return &v
}

func setupServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Fresher{}, &models.QuizAttempt{}, &models.Activity{}, &models.SystemQueue{}))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mini := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mini, client
}

func fiveQuestionBank(t *testing.T) *quiz.Bank {
	t.Helper()
	questions := make([]quiz.Question, 0, 5)
	for i := 1; i <= 5; i++ {
		questions = append(questions, quiz.Question{
			ID:            i,
			Text:          fmt.Sprintf("question %d", i),
			Options:       []string{"a", "b", "c", "d"},
			CorrectOption: 1,
		})
	}
	bank, err := quiz.NewBank(questions)
	require.NoError(t, err)
	return bank
}

func buildFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	form, err := multipart.NewReader(body, writer.Boundary()).ReadForm(int64(len(content)) + 4096)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["file"][0]
}

// memoryAttemptRepo records attempts in memory and can be told to fail.
type memoryAttemptRepo struct {
	mu    sync.Mutex
	items []models.QuizAttempt
	err   error
	calls int
}

func (m *memoryAttemptRepo) Create(ctx context.Context, attempt *models.QuizAttempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return m.err
	}
	attempt.ID = uint(len(m.items) + 1)
	attempt.CreatedAt = time.Now()
	m.items = append(m.items, *attempt)
	return nil
}

func (m *memoryAttemptRepo) ListByFresher(ctx context.Context, fresherID uint, limit int) ([]models.QuizAttempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.QuizAttempt, 0)
	for i := len(m.items) - 1; i >= 0; i-- {
		if m.items[i].FresherID == fresherID {
			out = append(out, m.items[i])
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memoryAttemptRepo) ListByFreshers(ctx context.Context, fresherIDs []uint) ([]models.QuizAttempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	wanted := map[uint]struct{}{}
	for _, id := range fresherIDs {
		wanted[id] = struct{}{}
	}
	out := make([]models.QuizAttempt, 0)
	for _, item := range m.items {
		if _, ok := wanted[item.FresherID]; ok {
			out = append(out, item)
		}
	}
	return out, nil
}

func (m *memoryAttemptRepo) ListAll(ctx context.Context) ([]models.QuizAttempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.QuizAttempt(nil), m.items...), nil
}

func (m *memoryAttemptRepo) ListSince(ctx context.Context, since time.Time) ([]models.QuizAttempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.QuizAttempt, 0)
	for _, item := range m.items {
		if !item.QuizDate.Before(since) {
			out = append(out, item)
		}
	}
	return out, nil
}

func (m *memoryAttemptRepo) snapshot() ([]models.QuizAttempt, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.QuizAttempt(nil), m.items...), m.calls
}

var _ repository.QuizAttemptRepository = (*memoryAttemptRepo)(nil)

type memoryStorage struct {
	names   []string
	payload []byte
}

func (m *memoryStorage) Upload(ctx context.Context, name string, reader io.Reader) (string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	m.names = append(m.names, name)
	m.payload = data
	return "https://cdn.example.com/" + name, nil
}
