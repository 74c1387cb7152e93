package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	limiterSweepInterval = 10 * time.Minute
	limiterIdleTTL       = 30 * time.Minute
)

type keyedEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// keyedLimiters hands out one token bucket per key and forgets keys idle
// for longer than limiterIdleTTL.
type keyedLimiters[K comparable] struct {
	mu       sync.Mutex
	limiters map[K]*keyedEntry
	rps      rate.Limit
	burst    int
}

func newKeyedLimiters[K comparable](ctx context.Context, requestsPerSecond float64, burst int) *keyedLimiters[K] {
	kl := &keyedLimiters[K]{
		limiters: make(map[K]*keyedEntry),
		rps:      rate.Limit(requestsPerSecond),
		burst:    burst,
	}

	go func() {
		ticker := time.NewTicker(limiterSweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				kl.sweep(time.Now().Add(-limiterIdleTTL))
			case <-ctx.Done():
				return
			}
		}
	}()

	return kl
}

func (kl *keyedLimiters[K]) allow(key K) bool {
	kl.mu.Lock()
	e, ok := kl.limiters[key]
	if !ok {
		e = &keyedEntry{limiter: rate.NewLimiter(kl.rps, kl.burst)}
		kl.limiters[key] = e
	}
	e.lastAccess = time.Now()
	kl.mu.Unlock()

	return e.limiter.Allow()
}

func (kl *keyedLimiters[K]) sweep(cutoff time.Time) {
	kl.mu.Lock()
	defer kl.mu.Unlock()
	for k, e := range kl.limiters {
		if e.lastAccess.Before(cutoff) {
			delete(kl.limiters, k)
		}
	}
}

func tooManyRequests(w http.ResponseWriter) {
	writeProblem(w, http.StatusTooManyRequests, "rate limit exceeded")
}

// RateLimitByIP applies per-IP rate limiting for unauthenticated endpoints
// (auth, public office pages, postal lookup). Uses chi's RealIP middleware
// value via r.RemoteAddr.
func RateLimitByIP(ctx context.Context, requestsPerSecond float64, burst int) func(http.Handler) http.Handler {
	limiters := newKeyedLimiters[string](ctx, requestsPerSecond, burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiters.allow(r.RemoteAddr) {
				tooManyRequests(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimit applies per-tenant rate limiting.
func RateLimit(ctx context.Context, requestsPerSecond float64, burst int) func(http.Handler) http.Handler {
	limiters := newKeyedLimiters[uuid.UUID](ctx, requestsPerSecond, burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tenantID, ok := TenantIDFromContext(r.Context())
			if !ok {
				// No tenant in context; skip rate limiting.
				next.ServeHTTP(w, r)
				return
			}

			if !limiters.allow(tenantID) {
				tooManyRequests(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
