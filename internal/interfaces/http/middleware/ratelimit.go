package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/turtacn/Resonance-Intelligence/pkg/errors"
)

// RateLimitConfig holds configuration for the per-client limiter.
type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
	// KeyFunc extracts the limiter key. Defaults to the client IP.
	KeyFunc   func(r *http.Request) string
	SkipPaths []string
	// IdleTTL drops limiters that have not been used for this long.
	IdleTTL time.Duration
}

// DefaultRateLimitConfig limits each client IP to rps with the given burst.
func DefaultRateLimitConfig(rps float64, burst int) RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: rps,
		BurstSize:         burst,
		KeyFunc:           clientIP,
		SkipPaths:         []string{"/healthz", "/readyz", "/metrics"},
		IdleTTL:           10 * time.Minute,
	}
}

// clientIP relies on chi's RealIP having rewritten RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// KeyedLimiter holds one token bucket per key.
type KeyedLimiter struct {
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	now     func() time.Time

	mu       sync.Mutex
	visitors map[string]*visitor
	lastGC   time.Time
}

// NewKeyedLimiter creates a limiter map. A burst below 1 is raised to 1.
func NewKeyedLimiter(rps float64, burst int, idleTTL time.Duration) *KeyedLimiter {
	if burst < 1 {
		burst = 1
	}
	return &KeyedLimiter{
		limit:    rate.Limit(rps),
		burst:    burst,
		idleTTL:  idleTTL,
		now:      time.Now,
		visitors: make(map[string]*visitor),
	}
}

// Allow consumes one token for key and reports the tokens left.
func (l *KeyedLimiter) Allow(key string) (bool, int) {
	now := l.now()
	l.mu.Lock()
	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	l.gc(now)
	l.mu.Unlock()

	allowed := v.limiter.AllowN(now, 1)
	remaining := int(v.limiter.TokensAt(now))
	if remaining < 0 {
		remaining = 0
	}
	return allowed, remaining
}

// gc runs at most once per idleTTL. Caller holds mu.
func (l *KeyedLimiter) gc(now time.Time) {
	if l.idleTTL <= 0 || now.Sub(l.lastGC) < l.idleTTL {
		return
	}
	for k, v := range l.visitors {
		if now.Sub(v.lastSeen) > l.idleTTL {
			delete(l.visitors, k)
		}
	}
	l.lastGC = now
}

// Len reports the number of tracked keys.
func (l *KeyedLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.visitors)
}

// RateLimit rejects requests over the per-key rate with 429 and the
// standard error body.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	limiter := NewKeyedLimiter(cfg.RequestsPerSecond, cfg.BurstSize, cfg.IdleTTL)
	keyFunc := cfg.KeyFunc
	if keyFunc == nil {
		keyFunc = clientIP
	}
	skip := make(map[string]bool, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skip[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}
			allowed, remaining := limiter.Allow(keyFunc(r))
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limiter.burst))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			if !allowed {
				w.Header().Set("Retry-After", "1")
				WriteResult(w, http.StatusTooManyRequests,
					errors.ToResult(errors.New(errors.ErrCodeTooManyRequests, "rate limit exceeded")))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

//Personal.AI order the ending
