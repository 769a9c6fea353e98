package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/baharkarakas/storefront-backend/internal/api/httpx"
	"github.com/baharkarakas/storefront-backend/internal/metrics"
)

// Limiter counts requests per client in fixed windows.
type Limiter interface {
	Allow(ctx context.Context, client string) (bool, error)
}

// RateLimit answers 429 once a client exceeds its window budget. Limiter
// failures let the request through.
func RateLimit(l Limiter, window time.Duration, log *slog.Logger) func(http.Handler) http.Handler {
	if l == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	retryAfter := strconv.Itoa(int(window.Seconds()))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, err := l.Allow(r.Context(), clientKey(r))
			if err != nil {
				log.Warn("rate limiter unavailable", "err", err)
				ok = true
			}
			if !ok {
				metrics.RateLimited.Inc()
				w.Header().Set("Retry-After", retryAfter)
				httpx.WriteError(w, http.StatusTooManyRequests, "Too many requests, please try again later.", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// ---------- in-process ----------

type window struct {
	start time.Time
	count int
}

type MemoryLimiter struct {
	mu      sync.Mutex
	max     int
	size    time.Duration
	clients map[string]*window
	swept   time.Time
	now     func() time.Time
}

func NewMemoryLimiter(max int, size time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		max:     max,
		size:    size,
		clients: map[string]*window{},
		now:     time.Now,
	}
}

func (m *MemoryLimiter) Allow(_ context.Context, client string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	if now.Sub(m.swept) >= m.size {
		for k, w := range m.clients {
			if now.Sub(w.start) >= m.size {
				delete(m.clients, k)
			}
		}
		m.swept = now
	}
	w, ok := m.clients[client]
	if !ok || now.Sub(w.start) >= m.size {
		w = &window{start: now}
		m.clients[client] = w
	}
	w.count++
	return w.count <= m.max, nil
}

// ---------- redis ----------

// redisCounter is the part of *redis.Client the limiter uses.
type redisCounter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// RedisLimiter shares windows between processes through INCR and EXPIRE.
type RedisLimiter struct {
	rdb    redisCounter
	max    int
	size   time.Duration
	prefix string
	now    func() time.Time
}

func NewRedisLimiter(rdb redisCounter, max int, size time.Duration) *RedisLimiter {
	return &RedisLimiter{rdb: rdb, max: max, size: size, prefix: "ratelimit:", now: time.Now}
}

func (l *RedisLimiter) Allow(ctx context.Context, client string) (bool, error) {
	slot := l.now().UnixNano() / int64(l.size)
	key := l.prefix + client + ":" + strconv.FormatInt(slot, 10)
	n, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("incr %s: %w", key, err)
	}
	if n == 1 {
		if err := l.rdb.Expire(ctx, key, l.size).Err(); err != nil {
			return false, fmt.Errorf("expire %s: %w", key, err)
		}
	}
	return n <= int64(l.max), nil
}
