package middleware

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/ev-1233/Blackjac-chip-counter/internal/api/apierr"
	"github.com/ev-1233/Blackjac-chip-counter/internal/middleware"
	"github.com/ev-1233/Blackjac-chip-counter/internal/model"
)

// RateLimitConfig controls the per-owner token bucket
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate. Zero disables limiting.
	RequestsPerSecond float64
	Burst             int
	// IdleTimeout drops buckets for owners not seen in this long
	IdleTimeout time.Duration
}

// DefaultRateLimitConfig returns the limits used by the server
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 10,
		Burst:             20,
		IdleTimeout:       10 * time.Minute,
	}
}

type ownerBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter hands out one token bucket per owner
type RateLimiter struct {
	cfg RateLimitConfig

	mu        sync.Mutex
	buckets   map[model.OwnerID]*ownerBucket
	lastPrune time.Time
}

// NewRateLimiter creates a RateLimiter
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		cfg:     cfg,
		buckets: make(map[model.OwnerID]*ownerBucket),
	}
}

// Allow reports whether the owner may make a request now
func (l *RateLimiter) Allow(owner model.OwnerID) bool {
	if l.cfg.RequestsPerSecond <= 0 {
		return true
	}

	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.prune(now)

	b, ok := l.buckets[owner]
	if !ok {
		b = &ownerBucket{limiter: rate.NewLimiter(rate.Limit(l.cfg.RequestsPerSecond), max(l.cfg.Burst, 1))}
		l.buckets[owner] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1)
}

// prune drops idle buckets at most once per idle period. Caller holds mu.
func (l *RateLimiter) prune(now time.Time) {
	if l.cfg.IdleTimeout <= 0 || now.Sub(l.lastPrune) < l.cfg.IdleTimeout {
		return
	}
	l.lastPrune = now
	for owner, b := range l.buckets {
		if now.Sub(b.lastSeen) >= l.cfg.IdleTimeout {
			delete(l.buckets, owner)
		}
	}
}

// Middleware rejects requests from owners that exceed their rate.
// It must run after Owner.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		owner := middleware.MustGetOwner(r.Context())
		if !l.Allow(owner) {
			w.Header().Set("Retry-After", "1")
			apierr.WriteError(w, apierr.NewRateLimitedError())
			return
		}
		next.ServeHTTP(w, r)
	})
}
