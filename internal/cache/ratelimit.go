package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

type RateLimitInfo struct {
	Limit     int   `json:"limit"`
	Remaining int   `json:"remaining"`
	ResetTime int64 `json:"reset_time"`
}

// RateLimiter counts requests per client in fixed windows of Redis counters.
type RateLimiter struct {
	client Client
	prefix string
	limit  int
	window time.Duration
	now    func() time.Time
	logger *logrus.Logger
}

func NewRateLimiter(client Client, prefix string, limit int, window time.Duration, logger *logrus.Logger) *RateLimiter {
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{
		client: client,
		prefix: prefix,
		limit:  limit,
		window: window,
		now:    time.Now,
		logger: logger,
	}
}

// Allow records one request for clientID. Redis failures are returned with a permissive info so
// callers can fail open.
func (l *RateLimiter) Allow(ctx context.Context, clientID string) (bool, RateLimitInfo, error) {
	windowStart := l.now().Truncate(l.window)
	info := RateLimitInfo{
		Limit:     l.limit,
		Remaining: l.limit,
		ResetTime: windowStart.Add(l.window).Unix(),
	}

	key := fmt.Sprintf("%s:ratelimit:%s:%d", l.prefix, clientID, windowStart.Unix())
	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return true, info, fmt.Errorf("failed to count request: %w", err)
	}

	if count == 1 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			l.logger.WithError(err).WithField("key", key).Warn("Failed to set rate limit expiry")
		}
	}

	remaining := l.limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	info.Remaining = remaining

	return int(count) <= l.limit, info, nil
}
