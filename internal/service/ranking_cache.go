package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/cyber-Je-di/tuta-pamodzi/internal/dto"
	"github.com/cyber-Je-di/tuta-pamodzi/internal/observability"
)

const rankingCacheKey = "tuta:ranking:tutors"

// RankingCache stores the public tutor ranking in Redis. A nil client turns
// every call into a no-op miss.
type RankingCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRankingCache constructs the cache.
func NewRankingCache(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *RankingCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RankingCache{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "ranking_cache").Logger(),
	}
}

// Get returns the cached ranking and whether it was present.
func (c *RankingCache) Get(ctx context.Context) ([]dto.TutorRankingEntry, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}

	cached, err := c.client.Get(ctx, rankingCacheKey).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn().Err(err).Msg("failed to read ranking cache")
		}
		observability.RankingCacheLookups().WithLabelValues("miss").Inc()
		return nil, false
	}

	var entries []dto.TutorRankingEntry
	if err := json.Unmarshal([]byte(cached), &entries); err != nil {
		c.logger.Warn().Err(err).Msg("discarding malformed ranking cache entry")
		observability.RankingCacheLookups().WithLabelValues("miss").Inc()
		return nil, false
	}

	observability.RankingCacheLookups().WithLabelValues("hit").Inc()
	return entries, true
}

// Set stores the ranking for the configured TTL.
func (c *RankingCache) Set(ctx context.Context, entries []dto.TutorRankingEntry) {
	if c == nil || c.client == nil {
		return
	}

	payload, err := json.Marshal(entries)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, rankingCacheKey, payload, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("failed to store ranking cache")
	}
}

// Invalidate drops the cached ranking.
func (c *RankingCache) Invalidate(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, rankingCacheKey).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("failed to invalidate ranking cache")
	}
}
