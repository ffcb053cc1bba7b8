package redisstore

import (
	"context"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// Redis wraps the redis client.
type Redis struct {
	Client *redis.Client
}

// NewRedis connects to redis with short timeouts.
func NewRedis(addr string) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  1 * time.Second,
		WriteTimeout: 1 * time.Second,
	})
	return &Redis{Client: client}
}

// Healthy verifies redis connectivity.
func (r *Redis) Healthy(ctx context.Context) bool {
	if r == nil || r.Client == nil {
		return false
	}
	return r.Client.Ping(ctx).Err() == nil
}

func (r *Redis) Close() error {
	return r.Client.Close()
}

// CountHit increments the counter of the current `window` for `key` and returns its value.
// Counters expire with their window.
func (r *Redis) CountHit(ctx context.Context, key string, window time.Duration) (int64, error) {
	bucket := time.Now().UnixNano() / int64(window)
	k := key + ":" + strconv.FormatInt(bucket, 10)
	n, err := r.Client.Incr(ctx, k).Result()
	if err != nil {
		return 0, errors.Wrap(err, "incrementing "+k)
	}
	if n == 1 {
		if err = r.Client.Expire(ctx, k, window).Err(); err != nil {
			return n, errors.Wrap(err, "expiring "+k)
		}
	}
	return n, nil
}
