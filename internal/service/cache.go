package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/fresher-training-api/internal/observability"
)

const analyticsSummaryCacheKey = "analytics:summary"

func fresherDashboardCacheKey(fresherID uint) string {
	return fmt.Sprintf("dashboard:fresher:%d", fresherID)
}

// readCache loads a cached JSON document into target and reports whether it was found.
func readCache(ctx context.Context, client *redis.Client, logger zerolog.Logger, name, key string, target interface{}) bool {
	if client == nil {
		return false
	}

	cached, err := client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn().Err(err).Str("cache", name).Msg("failed to read cache")
		}
		observability.CacheLookups().WithLabelValues(name, "miss").Inc()
		return false
	}

	if err := json.Unmarshal([]byte(cached), target); err != nil {
		logger.Warn().Err(err).Str("cache", name).Msg("discarding malformed cache entry")
		observability.CacheLookups().WithLabelValues(name, "miss").Inc()
		return false
	}

	observability.CacheLookups().WithLabelValues(name, "hit").Inc()
	return true
}

func writeCache(ctx context.Context, client *redis.Client, logger zerolog.Logger, name, key string, value interface{}, ttl time.Duration) {
	if client == nil {
		return
	}

	payload, err := json.Marshal(value)
	if err != nil {
		logger.Warn().Err(err).Str("cache", name).Msg("failed to encode cache entry")
		return
	}

	if err := client.Set(ctx, key, payload, ttl).Err(); err != nil {
		logger.Warn().Err(err).Str("cache", name).Msg("failed to store cache entry")
	}
}

func invalidateCache(ctx context.Context, client *redis.Client, logger zerolog.Logger, keys ...string) {
	if client == nil || len(keys) == 0 {
		return
	}

	if err := client.Del(ctx, keys...).Err(); err != nil {
		logger.Warn().Err(err).Strs("keys", keys).Msg("failed to invalidate cache")
	}
}
