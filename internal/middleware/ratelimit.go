package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/AnshRaj112/researchhive-backend/internal/metrics"
	"github.com/AnshRaj112/researchhive-backend/pkg/clientip"
	"github.com/redis/go-redis/v9"
)

const (
	RateLimitWindow      = 120 * time.Second
	RateLimitMaxRequests = 300
	RateLimitKeyPrefix   = "ratelimit:"
	BlockedIPKeyPrefix   = "blocked_ip:"
	BlockedIPDuration    = time.Hour
)

// RedisRateLimiter is a fixed-window limiter shared by every instance behind the load balancer.
// An IP that overruns its window is blocked for BlockedIPDuration. Redis errors fail open.
type RedisRateLimiter struct {
	rdb        *redis.Client
	trustProxy bool
	window     time.Duration
	max        int64
	block      time.Duration
}

func NewRedisRateLimiter(rdb *redis.Client, trustProxy bool) *RedisRateLimiter {
	return &RedisRateLimiter{
		rdb:        rdb,
		trustProxy: trustProxy,
		window:     RateLimitWindow,
		max:        RateLimitMaxRequests,
		block:      BlockedIPDuration,
	}
}

// WithLimits overrides the window, request budget and block duration.
func (l *RedisRateLimiter) WithLimits(window time.Duration, max int64, block time.Duration) *RedisRateLimiter {
	l.window, l.max, l.block = window, max, block
	return l
}

func (l *RedisRateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ip := clientip.Resolve(r, l.trustProxy)

		if blocked, err := l.blocked(ctx, ip); err == nil && blocked {
			metrics.RateLimited.WithLabelValues("blocked").Inc()
			writeError(w, http.StatusTooManyRequests, "Your IP has been temporarily blocked due to excessive requests. Please try again later.")
			return
		}

		count, err := l.hit(ctx, RateLimitKeyPrefix+ip)
		if err != nil {
			slog.Warn("rate limiter unavailable, allowing request", "error", err)
			next.ServeHTTP(w, r)
			return
		}

		if count > l.max {
			if err := l.rdb.Set(ctx, BlockedIPKeyPrefix+ip, "1", l.block).Err(); err != nil {
				slog.Warn("failed to block ip", "ip", ip, "error", err)
			}
			metrics.RateLimited.WithLabelValues("redis").Inc()
			w.Header().Set("Retry-After", strconv.Itoa(int(l.block.Seconds())))
			writeError(w, http.StatusTooManyRequests, fmt.Sprintf("Rate limit exceeded. Try again in %s.", l.block))
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(l.max, 10))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(l.max-count, 10))
		next.ServeHTTP(w, r)
	})
}

// hit counts one request. The window opens on the first hit of a key; EXPIRE NX
// also repairs a counter left without a TTL, so no key outlives its window.
func (l *RedisRateLimiter) hit(ctx context.Context, key string) (int64, error) {
	pipe := l.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

func (l *RedisRateLimiter) blocked(ctx context.Context, ip string) (bool, error) {
	n, err := l.rdb.Exists(ctx, BlockedIPKeyPrefix+ip).Result()
	return n > 0, err
}
