package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/temcen/storerank/pkg/models"
)

// versionTTL bounds how long an idle user's version counter survives. It must outlive the
// result TTL so a bumped version is never forgotten while stale entries can still be read.
const versionTTL = 7 * 24 * time.Hour

// NoVersion marks a lookup whose version could not be read; Set ignores it.
const NoVersion int64 = -1

// Client is the subset of the go-redis API the cache uses.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// RecommendationCache stores ranked lists per user, strategy and limit. Entries are bucketed
// into TTL-sized freshness windows and tagged with a per-user version, so Invalidate only has
// to bump the version.
type RecommendationCache struct {
	client Client
	prefix string
	ttl    time.Duration
	now    func() time.Time
	logger *logrus.Logger
}

type Option func(*RecommendationCache)

func WithClock(now func() time.Time) Option {
	return func(c *RecommendationCache) {
		c.now = now
	}
}

func NewRecommendationCache(client Client, prefix string, ttl time.Duration, logger *logrus.Logger, opts ...Option) *RecommendationCache {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	c := &RecommendationCache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		now:    time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached list, if any, and the user's cache version at lookup time. Redis
// failures are logged and reported as a miss with NoVersion.
func (c *RecommendationCache) Get(ctx context.Context, userID uuid.UUID, strategy string, limit int) ([]models.RecommendationScore, int64, bool) {
	version, err := c.version(ctx, userID)
	if err != nil {
		c.logger.WithError(err).WithField("user_id", userID).Warn("Failed to read cache version")
		return nil, NoVersion, false
	}

	key := c.key(userID, strategy, limit, version)
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.WithError(err).WithField("key", key).Warn("Failed to read cached recommendations")
		}
		return nil, version, false
	}

	var recs []models.RecommendationScore
	if err := json.Unmarshal(data, &recs); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Discarding malformed cache entry")
		return nil, version, false
	}

	return recs, version, true
}

// Set stores the list under the version Get reported before it was computed. A list computed
// across an Invalidate therefore lands under the old version and is never served. Failures are
// logged only.
func (c *RecommendationCache) Set(ctx context.Context, userID uuid.UUID, strategy string, limit int, version int64, recs []models.RecommendationScore) {
	if version < 0 {
		return
	}

	data, err := json.Marshal(recs)
	if err != nil {
		c.logger.WithError(err).Error("Failed to encode recommendations for cache")
		return
	}

	key := c.key(userID, strategy, limit, version)
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Failed to cache recommendations")
	}
}

// Invalidate makes every cached list for the user unreachable.
func (c *RecommendationCache) Invalidate(ctx context.Context, userID uuid.UUID) error {
	key := c.versionKey(userID)
	if err := c.client.Incr(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to bump cache version: %w", err)
	}
	if err := c.client.Expire(ctx, key, versionTTL).Err(); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Failed to set cache version expiry")
	}
	return nil
}

func (c *RecommendationCache) version(ctx context.Context, userID uuid.UUID) (int64, error) {
	version, err := c.client.Get(ctx, c.versionKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return version, err
}

func (c *RecommendationCache) key(userID uuid.UUID, strategy string, limit int, version int64) string {
	window := c.now().Truncate(c.ttl).Unix()
	return fmt.Sprintf("%s:recs:%s:%s:v%d:%d:%d", c.prefix, strategy, userID, version, limit, window)
}

func (c *RecommendationCache) versionKey(userID uuid.UUID) string {
	return fmt.Sprintf("%s:recs-version:%s", c.prefix, userID)
}
