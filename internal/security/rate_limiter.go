package security

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/raaihank/data-laundry/internal/config"
)

const (
	bucketIdleTTL   = time.Hour
	cleanupInterval = 30 * time.Minute
)

// RateLimiter applies a token bucket per client
type RateLimiter struct {
	config  config.RateLimitConfig
	buckets map[string]*bucket
	mu      sync.Mutex
	now     func() time.Time
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		config:  cfg,
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

// Allow reports whether a request from client may proceed
func (r *RateLimiter) Allow(client string) bool {
	if !r.config.Enabled {
		return true
	}
	now := r.now()
	return r.getBucket(client, now).limiter.AllowN(now, 1)
}

// Tokens returns the tokens left for client; unknown clients have a full bucket
func (r *RateLimiter) Tokens(client string) float64 {
	r.mu.Lock()
	b, exists := r.buckets[client]
	r.mu.Unlock()

	if !exists {
		return float64(r.config.Burst)
	}
	return b.limiter.TokensAt(r.now())
}

// getBucket gets or creates the bucket for a client
func (r *RateLimiter) getBucket(client string, now time.Time) *bucket {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, exists := r.buckets[client]
	if !exists {
		b = &bucket{limiter: rate.NewLimiter(rate.Limit(r.config.RequestsPerSecond), r.config.Burst)}
		r.buckets[client] = b
	}
	b.lastSeen = now
	return b
}

// CleanupOldBuckets removes buckets idle for longer than an hour
func (r *RateLimiter) CleanupOldBuckets() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-bucketIdleTTL)
	removed := 0
	for client, b := range r.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(r.buckets, client)
			removed++
		}
	}
	return removed
}

// StartCleanupRoutine prunes idle buckets until ctx is done
func (r *RateLimiter) StartCleanupRoutine(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.CleanupOldBuckets()
			}
		}
	}()
}
