package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/fresher-training-api/internal/dto"
	"github.com/noah-isme/fresher-training-api/internal/observability"
)

// QuizEventHandler reacts to a completed quiz, whether it finished on this node or another.
type QuizEventHandler func(ctx context.Context, event dto.QuizCompletedEvent)

// QuizEventBus fans quiz.completed events out to local handlers and to peer nodes.
type QuizEventBus interface {
	PublishQuizCompleted(ctx context.Context, event dto.QuizCompletedEvent) error
	Subscribe(handler QuizEventHandler)
	Start(ctx context.Context) error
	// IsLocal reports whether the event was published by this node.
	IsLocal(event dto.QuizCompletedEvent) bool
}

type quizEventBus struct {
	redis        *redis.Client
	redisChannel string
	nats         *nats.Conn
	natsSubject  string
	logger       zerolog.Logger
	nodeID       string

	mu       sync.RWMutex
	handlers []QuizEventHandler
}

// NewQuizEventBus constructs the event bus. NATS is preferred when connected; Redis pub/sub is the fallback.
func NewQuizEventBus(redisClient *redis.Client, channelBase string, natsConn *nats.Conn, logger zerolog.Logger) QuizEventBus {
	channel := ""
	subject := ""
	if channelBase != "" {
		channel = channelBase + ":quiz.completed"
		subject = strings.ReplaceAll(channelBase, ":", ".") + ".quiz.completed"
	}

	return &quizEventBus{
		redis:        redisClient,
		redisChannel: channel,
		nats:         natsConn,
		natsSubject:  subject,
		logger:       logger.With().Str("component", "quiz_event_bus").Logger(),
		nodeID:       uuid.NewString(),
	}
}

func (b *quizEventBus) Subscribe(handler QuizEventHandler) {
	if handler == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, handler)
}

func (b *quizEventBus) IsLocal(event dto.QuizCompletedEvent) bool {
	return event.Source == b.nodeID
}

func (b *quizEventBus) PublishQuizCompleted(ctx context.Context, event dto.QuizCompletedEvent) error {
	event.Source = b.nodeID
	if event.SentAt.IsZero() {
		event.SentAt = time.Now().UTC()
	}

	b.dispatch(ctx, event)

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	transport := "local"
	switch {
	case b.useNATS():
		transport = "nats"
		err = b.nats.Publish(b.natsSubject, payload)
	case b.useRedis():
		transport = "redis"
		err = b.redis.Publish(ctx, b.redisChannel, payload).Err()
	}

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	observability.QuizEventsPublished().WithLabelValues(transport, outcome).Inc()
	return err
}

// Start subscribes to peer events. The subscription is established before Start returns.
func (b *quizEventBus) Start(ctx context.Context) error {
	switch {
	case b.useNATS():
		return b.consumeNATS(ctx)
	case b.useRedis():
		return b.consumeRedis(ctx)
	default:
		return nil
	}
}

func (b *quizEventBus) useNATS() bool {
	return b.nats != nil && b.natsSubject != ""
}

func (b *quizEventBus) useRedis() bool {
	return b.redis != nil && b.redisChannel != ""
}

func (b *quizEventBus) consumeRedis(ctx context.Context) error {
	pubsub := b.redis.Subscribe(ctx, b.redisChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return err
	}

	go func() {
		defer func() { _ = pubsub.Close() }()
		for {
			msg, err := pubsub.ReceiveMessage(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) || ctx.Err() != nil {
					return
				}
				b.logger.Error().Err(err).Msg("quiz event redis subscription closed")
				return
			}
			b.handlePayload(ctx, []byte(msg.Payload))
		}
	}()

	return nil
}

func (b *quizEventBus) consumeNATS(ctx context.Context) error {
	sub, err := b.nats.Subscribe(b.natsSubject, func(msg *nats.Msg) {
		b.handlePayload(ctx, msg.Data)
	})
	if err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			b.logger.Warn().Err(err).Msg("failed to drain quiz event nats subscription")
		}
	}()

	return nil
}

func (b *quizEventBus) handlePayload(ctx context.Context, payload []byte) {
	var event dto.QuizCompletedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		b.logger.Warn().Err(err).Msg("invalid quiz event payload")
		return
	}

	if event.Source == b.nodeID {
		return
	}

	b.dispatch(ctx, event)
}

func (b *quizEventBus) dispatch(ctx context.Context, event dto.QuizCompletedEvent) {
	b.mu.RLock()
	handlers := append([]QuizEventHandler(nil), b.handlers...)
	b.mu.RUnlock()

	for _, handler := range handlers {
		handler(ctx, event)
	}
}
