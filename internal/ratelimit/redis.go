package ratelimit

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "quote:ratelimit:"

// counter is the subset of redis.Cmdable the window limiter uses.
type counter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	TTL(ctx context.Context, key string) *redis.DurationCmd
}

// Redis is a fixed-window limiter shared by every instance behind the same
// Redis server.
type Redis struct {
	rdb    counter
	limit  int64
	window time.Duration
}

func NewRedis(rdb counter, perMinute int) *Redis {
	if perMinute <= 0 {
		perMinute = defaultPerMinute
	}
	return &Redis{rdb: rdb, limit: int64(perMinute), window: time.Minute}
}

// Allow counts the hit in the current window. A rejected caller whose key
// lost its expiry (the first Expire failed) gets the window re-applied, so a
// transient Redis error never locks a client out for good.
func (l *Redis) Allow(ctx context.Context, key string) (bool, error) {
	k := keyPrefix + key
	n, err := l.rdb.Incr(ctx, k).Result()
	if err != nil {
		return false, errors.Wrap(err, "redis incr")
	}
	if n == 1 {
		if err := l.rdb.Expire(ctx, k, l.window).Err(); err != nil {
			return false, errors.Wrap(err, "redis expire")
		}
	}
	if n <= l.limit {
		return true, nil
	}
	ttl, err := l.rdb.TTL(ctx, k).Result()
	if err != nil {
		return false, errors.Wrap(err, "redis ttl")
	}
	// -1 means the key exists without an expiry.
	if ttl == -1 {
		if err := l.rdb.Expire(ctx, k, l.window).Err(); err != nil {
			return false, errors.Wrap(err, "redis expire")
		}
	}
	return false, nil
}
