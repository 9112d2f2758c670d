package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"medidocs/internal/config"
)

// LimiterStore decides whether a client may spend one request
type LimiterStore interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RateLimiter limits requests per client IP, or per authenticated user when the
// limiter runs behind Authenticate
type RateLimiter struct {
	enabled bool
	store   LimiterStore
}

// NewRateLimiter creates a rate limiter over the given store
func NewRateLimiter(cfg *config.RateLimitConfig, store LimiterStore) *RateLimiter {
	return &RateLimiter{enabled: cfg.Enabled, store: store}
}

// Limit rate limits requests
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.enabled {
			next.ServeHTTP(w, r)
			return
		}

		key := "ip:" + getIP(r)
		if actor, ok := GetActor(r); ok {
			key = "user:" + actor.ID
		}

		allowed, err := rl.store.Allow(r.Context(), key)
		if err != nil {
			// fail open when the backend errors
			slog.Warn("Rate limiter unavailable, allowing request", "key", key, "error", err)
			allowed = true
		}
		if !allowed {
			w.Header().Set("Retry-After", "1")
			respondWithError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// perSecond converts a requests-per-window budget into a refill rate
func perSecond(cfg *config.RateLimitConfig) float64 {
	if cfg.Requests <= 0 || cfg.Duration <= 0 {
		return 1
	}
	return float64(cfg.Requests) / cfg.Duration.Seconds()
}

// MemoryLimiterStore keeps one token bucket per key in process memory
type MemoryLimiterStore struct {
	limit rate.Limit
	burst int

	mu       sync.Mutex
	visitors map[string]*visitor
	stop     chan struct{}
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewMemoryLimiterStore creates an in-process store. Call Close to stop its janitor.
func NewMemoryLimiterStore(cfg *config.RateLimitConfig) *MemoryLimiterStore {
	burst := cfg.Requests
	if burst < 1 {
		burst = 1
	}
	s := &MemoryLimiterStore{
		limit:    rate.Limit(perSecond(cfg)),
		burst:    burst,
		visitors: make(map[string]*visitor),
		stop:     make(chan struct{}),
	}
	go s.cleanupVisitors(time.Minute, 3*time.Minute)
	return s
}

// Allow spends a token from the key's bucket
func (s *MemoryLimiterStore) Allow(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	v, ok := s.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.visitors[key] = v
	}
	v.lastSeen = time.Now()
	s.mu.Unlock()

	return v.limiter.Allow(), nil
}

// Close stops the background cleanup
func (s *MemoryLimiterStore) Close() {
	close(s.stop)
}

func (s *MemoryLimiterStore) cleanupVisitors(every, idle time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.mu.Lock()
			for key, v := range s.visitors {
				if time.Since(v.lastSeen) > idle {
					delete(s.visitors, key)
				}
			}
			s.mu.Unlock()
		case <-s.stop:
			return
		}
	}
}

// redisTokenBucketScript refills and spends a token bucket atomically.
// KEYS[1] = bucket key
// ARGV[1] = refill rate (tokens per second)
// ARGV[2] = capacity
// ARGV[3] = now (unix seconds with microsecond precision)
// ARGV[4] = ttl in seconds
var redisTokenBucketScript = redis.NewScript(`
local key = KEYS[1]
local rate = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local ttl = tonumber(ARGV[4])

local state = redis.call("HMGET", key, "tokens", "last_refill")
local tokens = tonumber(state[1])
local last_refill = tonumber(state[2])

if not tokens or not last_refill then
    tokens = capacity
    last_refill = now
end

local elapsed = now - last_refill
if elapsed > 0 then
    tokens = math.min(capacity, tokens + elapsed * rate)
    last_refill = now
end

local allowed = 0
if tokens >= 1 then
    tokens = tokens - 1
    allowed = 1
end

redis.call("HSET", key, "tokens", tokens, "last_refill", last_refill)
redis.call("EXPIRE", key, ttl)

return allowed
`)

// RedisLimiterStore shares token buckets between API instances through Redis
type RedisLimiterStore struct {
	client   *redis.Client
	prefix   string
	rate     float64
	capacity int
	ttl      int
}

// NewRedisLimiterStore creates a store backed by Redis
func NewRedisLimiterStore(client *redis.Client, prefix string, cfg *config.RateLimitConfig) *RedisLimiterStore {
	capacity := cfg.Requests
	if capacity < 1 {
		capacity = 1
	}
	ttl := int(cfg.Duration.Seconds()) * 2
	if ttl < 60 {
		ttl = 60
	}
	return &RedisLimiterStore{
		client:   client,
		prefix:   prefix,
		rate:     perSecond(cfg),
		capacity: capacity,
		ttl:      ttl,
	}
}

// Allow runs the token bucket script for the key
func (s *RedisLimiterStore) Allow(ctx context.Context, key string) (bool, error) {
	now := float64(time.Now().UnixMicro()) / 1e6
	bucket := fmt.Sprintf("%s:ratelimit:%s", s.prefix, key)

	allowed, err := redisTokenBucketScript.Run(ctx, s.client, []string{bucket}, s.rate, s.capacity, now, s.ttl).Int()
	if err != nil {
		return false, fmt.Errorf("redis limiter error: %w", err)
	}
	return allowed == 1, nil
}

// getIP returns the client address, preferring the first X-Forwarded-For hop
func getIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
