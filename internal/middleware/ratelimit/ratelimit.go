// Package ratelimit throttles mutating requests per caller with a token
// bucket: a full minute's allowance may burst, then it refills evenly.
package ratelimit

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// Limiter keeps one token bucket per caller key.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   rate.Limit
	burst   int
	perMin  int
	idleTTL time.Duration
	now     func() time.Time

	rejected atomic.Int64
	stop     chan struct{}
	stopOnce sync.Once
}

type bucket struct {
	tokens   *rate.Limiter
	lastSeen time.Time
}

type Config struct {
	RequestsPerMinute int
	// Buckets idle for IdleTTL are forgotten; a returning caller starts full.
	IdleTTL         time.Duration
	CleanupInterval time.Duration
}

func DefaultConfig() Config {
	return Config{
		RequestsPerMinute: 60,
		IdleTTL:           10 * time.Minute,
		CleanupInterval:   5 * time.Minute,
	}
}

// NewLimiter starts a background sweep of idle buckets; Stop ends it.
func NewLimiter(config Config) *Limiter {
	def := DefaultConfig()
	if config.RequestsPerMinute <= 0 {
		config.RequestsPerMinute = def.RequestsPerMinute
	}
	if config.IdleTTL <= 0 {
		config.IdleTTL = def.IdleTTL
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = def.CleanupInterval
	}

	rl := &Limiter{
		buckets: make(map[string]*bucket),
		limit:   rate.Limit(float64(config.RequestsPerMinute) / 60),
		burst:   config.RequestsPerMinute,
		perMin:  config.RequestsPerMinute,
		idleTTL: config.IdleTTL,
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	go rl.sweepLoop(config.CleanupInterval)
	return rl
}

func (rl *Limiter) bucketFor(key string, now time.Time) *bucket {
	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{tokens: rate.NewLimiter(rl.limit, rl.burst)}
		rl.buckets[key] = b
	}
	b.lastSeen = now
	return b
}

// Allow spends one token from key's bucket.
func (rl *Limiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if rl.bucketFor(key, now).tokens.AllowN(now, 1) {
		return true
	}
	rl.rejected.Add(1)
	return false
}

// RetryAfter is how long key must wait for its next token, rounded up to
// whole seconds and at least one.
func (rl *Limiter) RetryAfter(key string) time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	missing := 1 - rl.bucketFor(key, now).tokens.TokensAt(now)
	if missing <= 0 {
		return 0
	}
	// The epsilon absorbs float noise so an exact 30s does not become 31s.
	secs := math.Ceil(missing*60/float64(rl.perMin) - 1e-9)
	return time.Duration(max(secs, 1)) * time.Second
}

func (rl *Limiter) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.sweep()
		case <-rl.stop:
			return
		}
	}
}

// sweep forgets buckets idle longer than idleTTL and returns how many.
func (rl *Limiter) sweep() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-rl.idleTTL)
	removed := 0
	for key, b := range rl.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(rl.buckets, key)
			removed++
		}
	}
	return removed
}

// ActiveClients is the number of callers currently tracked.
func (rl *Limiter) ActiveClients() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.buckets)
}

// Hits is the number of rejected requests so far.
func (rl *Limiter) Hits() int64 {
	return rl.rejected.Load()
}

func (rl *Limiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// Middleware limits requests that applies accepts; the rest pass through
// without spending tokens. A nil onLimit answers with a plain 429.
func (rl *Limiter) Middleware(key func(*http.Request) string, applies func(*http.Request) bool, onLimit http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if applies != nil && !applies(r) {
				next.ServeHTTP(w, r)
				return
			}
			k := key(r)
			if rl.Allow(k) {
				next.ServeHTTP(w, r)
				return
			}
			if onLimit != nil {
				onLimit(w, r)
				return
			}
			w.Header().Set("Retry-After", strconv.Itoa(int(rl.RetryAfter(k)/time.Second)))
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
		})
	}
}
