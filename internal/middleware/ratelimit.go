package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Nimsara-boop/destinasian-journey-sisterhood-sub000/internal/logging"
)

// KeyFunc identifies the caller a request is counted against. An empty key
// means the request has no identity of its own.
type KeyFunc func(r *http.Request) string

// RateLimiter is a fixed-window counter in Redis.
type RateLimiter struct {
	redis        *redis.Client
	limit        int64
	window       time.Duration
	prefix       string
	keyFunc      KeyFunc
	fallbackToIP bool
	now          func() time.Time
}

func NewRateLimiter(redisClient *redis.Client, limit int64, window time.Duration, prefix string, keyFunc KeyFunc, fallbackToIP bool) *RateLimiter {
	return &RateLimiter{
		redis:        redisClient,
		limit:        limit,
		window:       window,
		prefix:       prefix,
		keyFunc:      keyFunc,
		fallbackToIP: fallbackToIP,
		now:          time.Now,
	}
}

// Middleware fails open when Redis is missing or returns an error.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.redis == nil {
			next.ServeHTTP(w, r)
			return
		}

		key := ""
		if rl.keyFunc != nil {
			key = rl.keyFunc(r)
		}
		if key == "" && rl.fallbackToIP {
			key = "ip:" + GetClientIP(r)
		}
		if key == "" {
			next.ServeHTTP(w, r)
			return
		}

		allowed, remaining, resetAt, err := rl.allow(r.Context(), rl.prefix+key)
		if err != nil {
			logging.Warn("Rate limiter unavailable", map[string]interface{}{"error": err.Error(), "prefix": rl.prefix})
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", rl.limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", resetAt.Unix()))

		if !allowed {
			retryAfter := int64(resetAt.Sub(rl.now()).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfter))
			writeError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) allow(ctx context.Context, key string) (allowed bool, remaining int64, resetAt time.Time, err error) {
	windowStart := rl.now().Truncate(rl.window)
	resetAt = windowStart.Add(rl.window)
	key = fmt.Sprintf("%s:%d", key, windowStart.Unix())

	pipe := rl.redis.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireAt(ctx, key, resetAt)
	if _, err := pipe.Exec(ctx); err != nil {
		return true, rl.limit, resetAt, err
	}

	count := incr.Val()
	remaining = rl.limit - count
	if remaining < 0 {
		remaining = 0
	}
	return count <= rl.limit, remaining, resetAt, nil
}

// GetClientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then
// the connection address.
func GetClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.Split(xff, ",")[0])
		if host, _, err := net.SplitHostPort(first); err == nil {
			return host
		}
		return first
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
