package echoapi

import (
	"context"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/trezcool/studymatch/core"
	redisstore "github.com/trezcool/studymatch/storage/redis"
)

const rateLimitWindow = time.Minute

// rateLimiter caps requests per client IP and minute.
// With Redis the window is shared by every API instance, otherwise each instance keeps token buckets in memory.
type rateLimiter struct {
	redis     *redisstore.Redis
	perMinute int
	logger    core.Logger
	metrics   *metrics

	now       func() time.Time // mockable
	mu        sync.Mutex
	local     map[string]*localLimiter
	lastSweep time.Time
}

type localLimiter struct {
	*rate.Limiter
	lastSeen time.Time
}

func newRateLimiter(redis *redisstore.Redis, perMinute int, logger core.Logger, m *metrics) *rateLimiter {
	return &rateLimiter{
		redis:     redis,
		perMinute: perMinute,
		logger:    logger,
		metrics:   m,
		now:       time.Now,
		local:     make(map[string]*localLimiter),
	}
}

func (rl *rateLimiter) allow(ctx context.Context, key string) bool {
	if rl.perMinute <= 0 {
		return true
	}
	if rl.redis != nil {
		hits, err := rl.redis.CountHit(ctx, "ratelimit:"+key, rateLimitWindow)
		if err == nil {
			return hits <= int64(rl.perMinute)
		}
		rl.logger.Warn("redis rate limiter unavailable, limiting in memory", err)
	}
	return rl.limiter(key).Allow()
}

func (rl *rateLimiter) limiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := rl.now()
	rl.sweep(now)

	lim, ok := rl.local[key]
	if !ok {
		lim = &localLimiter{Limiter: rate.NewLimiter(rate.Every(rateLimitWindow/time.Duration(rl.perMinute)), rl.perMinute)}
		rl.local[key] = lim
	}
	lim.lastSeen = now
	return lim.Limiter
}

// sweep drops the limiters idle for a whole window: their bucket has refilled, so a new one is equivalent.
// Must be called with rl.mu held.
func (rl *rateLimiter) sweep(now time.Time) {
	if now.Sub(rl.lastSweep) < rateLimitWindow {
		return
	}
	for key, lim := range rl.local {
		if now.Sub(lim.lastSeen) >= rateLimitWindow {
			delete(rl.local, key)
		}
	}
	rl.lastSweep = now
}

func (rl *rateLimiter) middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		ip := ctx.RealIP()
		if ip == "" {
			ip = "unknown"
		}
		if !rl.allow(ctx.Request().Context(), ctx.Path()+"|"+ip) {
			rl.metrics.rateLimitedTotal.Inc()
			return errRateLimited
		}
		return next(ctx)
	}
}
