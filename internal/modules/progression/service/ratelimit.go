package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// GameThrottle decides whether a game completion may award XP right now.
type GameThrottle interface {
	Allow(ctx context.Context, userID uuid.UUID, game Game) (bool, error)
}

type redisGameThrottle struct {
	rdb    *redis.Client
	window time.Duration
}

// NewRedisGameThrottle allows one rewarded completion per user and game per window.
// A nil client or non-positive window disables throttling.
func NewRedisGameThrottle(rdb *redis.Client, window time.Duration) GameThrottle {
	return &redisGameThrottle{rdb: rdb, window: window}
}

func (t *redisGameThrottle) Allow(ctx context.Context, userID uuid.UUID, game Game) (bool, error) {
	if t.rdb == nil || t.window <= 0 {
		return true, nil
	}

	key := fmt.Sprintf("rate_limit:user:%s:game:%s", userID.String(), game)

	wasSet, err := t.rdb.SetNX(ctx, key, "locked", t.window).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check game rate limit in redis: %w", err)
	}

	return wasSet, nil
}
