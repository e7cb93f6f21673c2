package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Policy is one fixed-window limit applied per client IP.
type Policy struct {
	Name    string
	Limit   int
	Window  time.Duration
	Message string
}

var (
	GeneralPolicy = Policy{Name: "api", Limit: 100, Window: 15 * time.Minute,
		Message: "Too many requests from this IP, please try again later."}
	AuthPolicy = Policy{Name: "auth", Limit: 5, Window: 15 * time.Minute,
		Message: "Too many authentication attempts, please try again later."}
	ContactPolicy = Policy{Name: "contact", Limit: 10, Window: time.Hour,
		Message: "Too many contact form submissions, please try again later."}
	DraftSavePolicy = Policy{Name: "draft_save", Limit: 100, Window: time.Hour,
		Message: "Too many draft saves, please slow down."}
)

// Store counts hits for a key inside a fixed window.
type Store interface {
	Hit(ctx context.Context, key string, window time.Duration) (int64, error)
}

type rateLimitResponse struct {
	Success    bool   `json:"success"`
	Error      string `json:"error"`
	RetryAfter int    `json:"retryAfter"`
}

// RateLimit rejects callers over the policy with 429. Store errors let the
// request through.
func RateLimit(store Store, p Policy) func(http.Handler) http.Handler {
	retryAfter := int(math.Ceil(p.Window.Seconds()))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := p.Name + ":" + ClientIP(r)
			count, err := store.Hit(r.Context(), key, p.Window)
			if err != nil {
				zerolog.Ctx(r.Context()).Warn().Err(err).Str("limiter", p.Name).Msg("rate limit store unavailable")
				next.ServeHTTP(w, r)
				return
			}

			remaining := p.Limit - int(count)
			if remaining < 0 {
				remaining = 0
			}
			w.Header().Set("RateLimit-Limit", strconv.Itoa(p.Limit))
			w.Header().Set("RateLimit-Remaining", strconv.Itoa(remaining))

			if count > int64(p.Limit) {
				RecordRateLimited(p.Name)
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(rateLimitResponse{
					Success:    false,
					Error:      p.Message,
					RetryAfter: retryAfter,
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type visitor struct {
	count     int64
	lastReset time.Time
	window    time.Duration
}

// MemoryStore keeps counters in process. Counts are lost on restart and are
// not shared between replicas.
type MemoryStore struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		visitors: make(map[string]*visitor),
		now:      time.Now,
	}
}

func (s *MemoryStore) Hit(_ context.Context, key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	v, exists := s.visitors[key]
	if !exists || now.Sub(v.lastReset) > window {
		s.visitors[key] = &visitor{count: 1, lastReset: now, window: window}
		return 1, nil
	}
	v.count++
	return v.count, nil
}

// Cleanup drops stale visitors every interval until ctx is done.
func (s *MemoryStore) Cleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *MemoryStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for key, v := range s.visitors {
		if now.Sub(v.lastReset) > v.window*2 {
			delete(s.visitors, key)
		}
	}
}

const redisKeyPrefix = "naass_rl:"

// RedisStore shares counters between replicas.
type RedisStore struct {
	client redis.Cmdable
}

func NewRedisStore(client redis.Cmdable) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Hit(ctx context.Context, key string, window time.Duration) (int64, error) {
	k := redisKeyPrefix + key
	count, err := s.client.Incr(ctx, k).Result()
	if err != nil {
		return 0, fmt.Errorf("incr %s: %w", k, err)
	}
	if count == 1 {
		if err := s.client.Expire(ctx, k, window).Err(); err != nil {
			return 0, fmt.Errorf("expire %s: %w", k, err)
		}
	}
	return count, nil
}
