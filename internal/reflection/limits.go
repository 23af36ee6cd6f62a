package reflection

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mirrorday/mirrorday-platform/pkg/redis"
)

// ErrDailyLimitReached is returned when a user has exhausted today's
// generation budget.
var ErrDailyLimitReached = errors.New("daily generation limit reached")

// DailyLimiter enforces the per-user per-day generation cap using Redis
// counters that expire at local midnight.
type DailyLimiter struct {
	redis redis.Client
	limit int
}

// NewDailyLimiter creates a limiter allowing limit generations per day.
func NewDailyLimiter(redisClient redis.Client, limit int) *DailyLimiter {
	return &DailyLimiter{
		redis: redisClient,
		limit: limit,
	}
}

// Reserve consumes one generation slot for the user and returns how many
// remain today. Returns ErrDailyLimitReached when the cap is already spent;
// the reservation is counted first, so a rejected call does not grow the
// counter beyond limit+overcalls harmlessly (the key expires at midnight).
func (l *DailyLimiter) Reserve(ctx context.Context, userID uuid.UUID, now time.Time) (int, error) {
	key := redis.DailyCountKey(userID.String(), now.Format("2006-01-02"))

	count, err := l.redis.Incr(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("failed to reserve generation slot: %w", err)
	}

	if count == 1 {
		if err := l.redis.Expire(ctx, key, time.Until(NextAvailableAt(now))); err != nil {
			return 0, fmt.Errorf("failed to set limit expiry: %w", err)
		}
	}

	if count > int64(l.limit) {
		return 0, ErrDailyLimitReached
	}

	return l.limit - int(count), nil
}

// NextAvailableAt returns the start of the next calendar day, when the
// counter resets.
func NextAvailableAt(now time.Time) time.Time {
	year, month, day := now.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
}
