package personastore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/playbuni/backend/internal/model/persona"
)

const (
	personasKey = "play-buni:personas"
	statsKey    = "play-buni:persona-stats"
	recentKey   = "play-buni:recent-personas"
)

// RedisCache implements Cache on a Redis hash plus a recency sorted set and
// per-trait counters.
type RedisCache struct {
	client    *redis.Client
	recentCap int
	logger    *zap.Logger
}

// NewRedisCache wraps an existing Redis client. recentCap bounds the
// recent-persona sorted set.
func NewRedisCache(client *redis.Client, recentCap int, logger *zap.Logger) *RedisCache {
	if recentCap <= 0 {
		recentCap = 20
	}
	return &RedisCache{
		client:    client,
		recentCap: recentCap,
		logger:    logger.Named("personacache"),
	}
}

// Save implements Cache. Trimming the recency set is best-effort.
func (c *RedisCache) Save(ctx context.Context, p persona.AIPersona) (persona.AIPersona, error) {
	p.ID = uuid.NewString()
	p.CreatedAt = time.Now().UTC()

	payload, err := json.Marshal(p)
	if err != nil {
		return persona.AIPersona{}, fmt.Errorf("persona marshal failed: %w", err)
	}

	if err := c.client.HSet(ctx, personasKey, p.ID, payload).Err(); err != nil {
		return persona.AIPersona{}, fmt.Errorf("persona cache write failed: %w", err)
	}

	if err := c.client.HIncrBy(ctx, statsKey, p.DominantTrait, 1).Err(); err != nil {
		c.logger.Warn("stats counter update failed", zap.Error(err))
	}

	score := float64(p.CreatedAt.UnixMilli())
	if err := c.client.ZAdd(ctx, recentKey, redis.Z{Score: score, Member: p.ID}).Err(); err != nil {
		c.logger.Warn("recent set update failed", zap.Error(err))
		return p, nil
	}

	count, err := c.client.ZCard(ctx, recentKey).Result()
	if err == nil && count > int64(c.recentCap) {
		if err := c.client.ZRemRangeByRank(ctx, recentKey, 0, count-int64(c.recentCap)-1).Err(); err != nil {
			c.logger.Warn("recent set trim failed", zap.Error(err))
		}
	}

	return p, nil
}

// Get implements Cache.
func (c *RedisCache) Get(ctx context.Context, id string) (persona.AIPersona, error) {
	payload, err := c.client.HGet(ctx, personasKey, id).Result()
	if err == redis.Nil {
		return persona.AIPersona{}, ErrNotFound
	}
	if err != nil {
		return persona.AIPersona{}, fmt.Errorf("persona cache read failed: %w", err)
	}

	var p persona.AIPersona
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return persona.AIPersona{}, fmt.Errorf("persona cache decode failed: %w", err)
	}
	return p, nil
}

// Recent implements Cache, newest first.
func (c *RedisCache) Recent(ctx context.Context, limit int) ([]persona.AIPersona, error) {
	if limit <= 0 {
		limit = 10
	}

	ids, err := c.client.ZRevRange(ctx, recentKey, 0, int64(limit)-1).Result()
	if err != nil {
		return nil, fmt.Errorf("recent persona lookup failed: %w", err)
	}

	personas := make([]persona.AIPersona, 0, len(ids))
	for _, id := range ids {
		p, err := c.Get(ctx, id)
		if err == ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		personas = append(personas, p)
	}
	return personas, nil
}

// Stats implements Cache.
func (c *RedisCache) Stats(ctx context.Context) (persona.TraitScores, error) {
	raw, err := c.client.HGetAll(ctx, statsKey).Result()
	if err != nil {
		return persona.TraitScores{}, fmt.Errorf("persona stats lookup failed: %w", err)
	}

	var stats persona.TraitScores
	for trait, value := range raw {
		var n int
		if _, err := fmt.Sscanf(value, "%d", &n); err != nil {
			continue
		}
		switch trait {
		case persona.TraitAnalytical:
			stats.Analytical = n
		case persona.TraitCreative:
			stats.Creative = n
		case persona.TraitSocial:
			stats.Social = n
		case persona.TraitPractical:
			stats.Practical = n
		}
	}
	return stats, nil
}
