package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/fresher-training-api/internal/dto"
	"github.com/noah-isme/fresher-training-api/internal/models"
	"github.com/noah-isme/fresher-training-api/internal/observability"
	"github.com/noah-isme/fresher-training-api/internal/quiz"
	"github.com/noah-isme/fresher-training-api/internal/repository"
)

const (
	quizStreamBufferSize = 8
	timerPersistTimeout  = 10 * time.Second
)

var (
	// ErrQuizSessionActive indicates the fresher already has a session in progress.
	ErrQuizSessionActive = errors.New("quiz session already in progress")
	// ErrQuizSessionNotFound indicates the fresher has not started a session.
	ErrQuizSessionNotFound = errors.New("quiz session not found")
	// ErrQuizSessionNotFinished indicates a report was requested before completion.
	ErrQuizSessionNotFinished = errors.New("quiz session has not finished")
)

// QuizSettings tunes new sessions.
type QuizSettings struct {
	QuestionCount          int
	DurationSeconds        int
	TickInterval           time.Duration
	AllowUnansweredAdvance bool
	PassRatio              float64
	SessionRetention       time.Duration
}

// QuizSessionService owns the live quiz session of every fresher.
type QuizSessionService interface {
	Start(ctx context.Context, fresherID uint, questionCount int) (dto.QuizSessionResponse, error)
	Current(ctx context.Context, fresherID uint) (dto.QuizSessionResponse, error)
	SelectAnswer(ctx context.Context, fresherID uint, option int) (dto.QuizSessionResponse, error)
	Advance(ctx context.Context, fresherID uint) (dto.QuizSessionResponse, error)
	Abandon(ctx context.Context, fresherID uint) (dto.QuizSessionResponse, error)
	Report(ctx context.Context, fresherID uint) (dto.QuizReportResponse, error)
	Subscribe(fresherID uint) (<-chan dto.QuizSessionResponse, func(), error)
	Close()
}

type quizSessionService struct {
	bank       *quiz.Bank
	attempts   repository.QuizAttemptRepository
	activities ActivityRecorder
	cache      *redis.Client
	events     QuizEventBus
	settings   QuizSettings
	logger     zerolog.Logger
	tracer     trace.Tracer
	now        func() time.Time
	rng        *rand.Rand

	mu      sync.Mutex
	entries map[uint]*quizEntry
}

// quizEntry guards one session. Lock order is service mutex before entry mutex.
type quizEntry struct {
	mu          sync.Mutex
	id          string
	fresherID   uint
	session     *quiz.Session
	timer       *quiz.Timer
	startedAt   time.Time
	finalized   bool
	evict       *time.Timer
	subscribers map[chan dto.QuizSessionResponse]struct{}
}

// NewQuizSessionService constructs the quiz session owner.
func NewQuizSessionService(bank *quiz.Bank, attempts repository.QuizAttemptRepository, activities ActivityRecorder, cache *redis.Client, events QuizEventBus, settings QuizSettings, logger zerolog.Logger) QuizSessionService {
	if settings.QuestionCount <= 0 {
		settings.QuestionCount = 5
	}
	if settings.DurationSeconds <= 0 {
		settings.DurationSeconds = quiz.DefaultDurationSeconds
	}
	if settings.TickInterval <= 0 {
		settings.TickInterval = time.Second
	}
	if settings.PassRatio <= 0 {
		settings.PassRatio = 0.6
	}
	if settings.SessionRetention <= 0 {
		settings.SessionRetention = 30 * time.Minute
	}

	return &quizSessionService{
		bank:       bank,
		attempts:   attempts,
		activities: activities,
		cache:      cache,
		events:     events,
		settings:   settings,
		logger:     logger.With().Str("component", "quiz_session_service").Logger(),
		tracer:     otel.Tracer("github.com/noah-isme/fresher-training-api/internal/service/quiz_session"),
		now:        time.Now,
		entries:    make(map[uint]*quizEntry),
	}
}

func (s *quizSessionService) Start(ctx context.Context, fresherID uint, questionCount int) (dto.QuizSessionResponse, error) {
	if questionCount <= 0 {
		questionCount = s.settings.QuestionCount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.entries[fresherID]; ok {
		existing.mu.Lock()
		active := !existing.session.Completed()
		if !active && existing.evict != nil {
			existing.evict.Stop()
		}
		existing.mu.Unlock()
		if active {
			return dto.QuizSessionResponse{}, ErrQuizSessionActive
		}
	}

	questions, err := s.bank.Draw(questionCount, s.rng)
	if err != nil {
		return dto.QuizSessionResponse{}, err
	}

	opts := []quiz.Option{quiz.WithDuration(s.settings.DurationSeconds)}
	if s.settings.AllowUnansweredAdvance {
		opts = append(opts, quiz.WithUnansweredAdvance())
	}

	session, err := quiz.NewSession(questions, opts...)
	if err != nil {
		return dto.QuizSessionResponse{}, err
	}

	entry := &quizEntry{
		id:          uuid.NewString(),
		fresherID:   fresherID,
		session:     session,
		startedAt:   s.now().UTC(),
		subscribers: make(map[chan dto.QuizSessionResponse]struct{}),
	}

	entry.mu.Lock()
	entry.timer = quiz.StartTimer(context.Background(), s.settings.TickInterval, func() bool {
		return s.tick(entry)
	})
	response := entry.responseLocked()
	entry.mu.Unlock()

	s.entries[fresherID] = entry
	observability.QuizSessionsStarted().Inc()
	s.logger.Info().
		Uint("fresher_id", fresherID).
		Str("session_id", entry.id).
		Int("questions", session.TotalQuestions()).
		Msg("quiz session started")

	return response, nil
}

func (s *quizSessionService) Current(ctx context.Context, fresherID uint) (dto.QuizSessionResponse, error) {
	entry, err := s.lookup(fresherID)
	if err != nil {
		return dto.QuizSessionResponse{}, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.responseLocked(), nil
}

func (s *quizSessionService) SelectAnswer(ctx context.Context, fresherID uint, option int) (dto.QuizSessionResponse, error) {
	entry, err := s.lookup(fresherID)
	if err != nil {
		return dto.QuizSessionResponse{}, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if err := entry.session.SelectAnswer(option); err != nil {
		return dto.QuizSessionResponse{}, err
	}

	response := entry.responseLocked()
	entry.broadcastLocked(response)
	return response, nil
}

func (s *quizSessionService) Advance(ctx context.Context, fresherID uint) (dto.QuizSessionResponse, error) {
	entry, err := s.lookup(fresherID)
	if err != nil {
		return dto.QuizSessionResponse{}, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	completed, err := entry.session.Advance()
	if err != nil {
		return dto.QuizSessionResponse{}, err
	}

	response := entry.responseLocked()
	entry.broadcastLocked(response)

	if completed {
		if err := s.finalizeLocked(ctx, entry); err != nil {
			return response, err
		}
	}

	return response, nil
}

func (s *quizSessionService) Abandon(ctx context.Context, fresherID uint) (dto.QuizSessionResponse, error) {
	entry, err := s.lookup(fresherID)
	if err != nil {
		return dto.QuizSessionResponse{}, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if err := entry.session.Abandon(); err != nil {
		return dto.QuizSessionResponse{}, err
	}

	response := entry.responseLocked()
	entry.broadcastLocked(response)

	if err := s.finalizeLocked(ctx, entry); err != nil {
		return response, err
	}

	return response, nil
}

func (s *quizSessionService) Report(ctx context.Context, fresherID uint) (dto.QuizReportResponse, error) {
	entry, err := s.lookup(fresherID)
	if err != nil {
		return dto.QuizReportResponse{}, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if !entry.session.Completed() {
		return dto.QuizReportResponse{}, ErrQuizSessionNotFinished
	}

	score := entry.session.Score()
	total := entry.session.TotalQuestions()

	return dto.QuizReportResponse{
		SessionID:        entry.id,
		Score:            score,
		TotalQuestions:   total,
		Percentage:       percentage(score, total),
		Passed:           s.passed(score, total),
		CompletionReason: string(entry.session.Reason()),
		TimeTakenSeconds: entry.session.ElapsedSeconds(),
		Results:          dto.NewQuizQuestionResults(entry.session.Results()),
	}, nil
}

func (s *quizSessionService) Subscribe(fresherID uint) (<-chan dto.QuizSessionResponse, func(), error) {
	entry, err := s.lookup(fresherID)
	if err != nil {
		return nil, nil, err
	}

	channel := make(chan dto.QuizSessionResponse, quizStreamBufferSize)

	entry.mu.Lock()
	channel <- entry.responseLocked()
	if entry.finalized {
		close(channel)
	} else {
		entry.subscribers[channel] = struct{}{}
	}
	entry.mu.Unlock()

	observability.QuizStreamClients().Inc()

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			entry.mu.Lock()
			if _, ok := entry.subscribers[channel]; ok {
				delete(entry.subscribers, channel)
				close(channel)
			}
			entry.mu.Unlock()
			observability.QuizStreamClients().Dec()
		})
	}

	return channel, cleanup, nil
}

// Close stops every running countdown and pending eviction. In-progress sessions stay in memory unfinished.
func (s *quizSessionService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, entry := range s.entries {
		entry.mu.Lock()
		if entry.timer != nil {
			entry.timer.Stop()
		}
		if entry.evict != nil {
			entry.evict.Stop()
		}
		entry.mu.Unlock()
	}
}

// evict drops a finished entry unless a newer session already replaced it.
func (s *quizSessionService) evict(entry *quizEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if current, ok := s.entries[entry.fresherID]; ok && current == entry {
		delete(s.entries, entry.fresherID)
		s.logger.Debug().
			Uint("fresher_id", entry.fresherID).
			Str("session_id", entry.id).
			Msg("quiz session evicted")
	}
}

func (s *quizSessionService) lookup(fresherID uint) (*quizEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[fresherID]
	if !ok {
		return nil, ErrQuizSessionNotFound
	}
	return entry, nil
}

// tick runs on the timer goroutine and reports whether the countdown should continue.
func (s *quizSessionService) tick(entry *quizEntry) bool {
	entry.mu.Lock()
	defer entry.mu.Unlock()

	timedOut := entry.session.Tick()
	if entry.session.Completed() && !timedOut {
		return false
	}

	response := entry.responseLocked()
	entry.broadcastLocked(response)

	if timedOut {
		ctx, cancel := context.WithTimeout(context.Background(), timerPersistTimeout)
		defer cancel()
		if err := s.finalizeLocked(ctx, entry); err != nil {
			s.logger.Error().Err(err).
				Uint("fresher_id", entry.fresherID).
				Str("session_id", entry.id).
				Msg("failed to persist timed out quiz session")
		}
		return false
	}

	return true
}

// finalizeLocked persists a completed session exactly once. Failures are returned and not retried.
func (s *quizSessionService) finalizeLocked(ctx context.Context, entry *quizEntry) error {
	if entry.finalized {
		return nil
	}
	entry.finalized = true
	entry.timer.Stop()
	entry.closeSubscribersLocked()
	entry.evict = time.AfterFunc(s.settings.SessionRetention, func() {
		s.evict(entry)
	})

	session := entry.session
	reason := session.Reason()
	score := session.Score()
	total := session.TotalQuestions()

	ctx, span := s.tracer.Start(ctx, "quiz.complete", trace.WithAttributes(
		attribute.String("quiz.session_id", entry.id),
		attribute.String("quiz.reason", string(reason)),
		attribute.Int("quiz.score", score),
		attribute.Int("quiz.total", total),
	))
	defer span.End()

	answers, err := json.Marshal(session.Answers())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "encode_answers_failed")
		return err
	}

	attempt := models.QuizAttempt{
		FresherID:        entry.fresherID,
		SessionID:        entry.id,
		Score:            score,
		CorrectAnswers:   score,
		TotalQuestions:   total,
		Completed:        reason != quiz.ReasonAbandoned,
		CompletionReason: string(reason),
		TimeTakenSeconds: session.ElapsedSeconds(),
		Answers:          answers,
		QuizDate:         s.now().UTC(),
	}

	if err := s.attempts.Create(ctx, &attempt); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist_attempt_failed")
		return err
	}

	observability.QuizSessionsCompleted().WithLabelValues(string(reason)).Inc()
	if attempt.Completed {
		observability.QuizScorePercent().Observe(percentage(score, total))
	}

	s.logger.Info().
		Uint("fresher_id", entry.fresherID).
		Str("session_id", entry.id).
		Str("reason", string(reason)).
		Int("score", score).
		Int("total", total).
		Msg("quiz session completed")

	fresherID := entry.fresherID
	recordActivity(ctx, s.activities, s.logger, dto.ActivityCreateRequest{
		Type:        models.ActivityQuizCompleted,
		Description: fmt.Sprintf("Quiz %s with score %d/%d", reason, score, total),
		FresherID:   &fresherID,
		Metadata: map[string]interface{}{
			"session_id": entry.id,
			"score":      score,
			"total":      total,
			"reason":     string(reason),
			"passed":     attempt.Completed && s.passed(score, total),
		},
	})

	invalidateCache(ctx, s.cache, s.logger, fresherDashboardCacheKey(fresherID), analyticsSummaryCacheKey)

	if s.events != nil {
		event := dto.QuizCompletedEvent{
			FresherID: fresherID,
			Attempt:   dto.NewQuizAttemptResponse(attempt),
		}
		if err := s.events.PublishQuizCompleted(ctx, event); err != nil {
			s.logger.Warn().Err(err).Msg("failed to publish quiz completed event")
		}
	}

	return nil
}

func (s *quizSessionService) passed(score, total int) bool {
	if total <= 0 {
		return false
	}
	return float64(score)/float64(total) >= s.settings.PassRatio
}

func (e *quizEntry) responseLocked() dto.QuizSessionResponse {
	var current *quiz.Question
	if question, ok := e.session.CurrentQuestion(); ok {
		current = &question
	}
	return dto.NewQuizSessionResponse(e.id, e.startedAt, e.session.Snapshot(), current)
}

// broadcastLocked never blocks. A full buffer loses its oldest snapshot so the latest state always lands.
func (e *quizEntry) broadcastLocked(response dto.QuizSessionResponse) {
	for ch := range e.subscribers {
		select {
		case ch <- response:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- response:
		default:
		}
	}
}

// closeSubscribersLocked ends every stream once the terminal snapshot is queued.
func (e *quizEntry) closeSubscribersLocked() {
	for ch := range e.subscribers {
		delete(e.subscribers, ch)
		close(ch)
	}
}

func percentage(score, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(score) / float64(total) * 100
}
