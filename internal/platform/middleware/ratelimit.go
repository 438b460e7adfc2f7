package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/mediconsult/mediconsult/internal/platform/auth"
)

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
	// Skipper bypasses the limiter, e.g. for health checks.
	Skipper func(c echo.Context) bool
	// KeyFunc picks the bucket for a request. Defaults to ClientKey.
	KeyFunc func(c echo.Context) string
	// IdleTTL drops buckets that have not been touched for this long.
	IdleTTL time.Duration
}

// DefaultRateLimitConfig returns default rate limiting settings.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 50,
		BurstSize:         100,
		IdleTTL:           10 * time.Minute,
	}
}

// ClientKey buckets signed-in users by account so a shared clinic or office
// IP does not throttle every patient behind it. Anonymous requests are keyed
// by client IP. The session loader must run before the limiter.
func ClientKey(c echo.Context) string {
	if uid := auth.UserIDFromContext(c.Request().Context()); uid > 0 {
		return "user:" + strconv.FormatInt(uid, 10)
	}
	return "ip:" + c.RealIP()
}

type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// take consumes one token at now. When none is available the reservation
// is handed back and the seconds until the next token are returned.
func (b *bucket) take(now time.Time) (ok bool, retryAfter int) {
	b.lastSeen = now
	r := b.lim.ReserveN(now, 1)
	if !r.OK() {
		// Zero rate with the burst spent: nothing will ever refill.
		return false, 1
	}
	delay := r.DelayFrom(now)
	if delay == 0 {
		return true, 0
	}
	r.CancelAt(now)
	wait := int(math.Ceil(delay.Seconds()))
	if wait < 1 {
		wait = 1
	}
	return false, wait
}

type rateLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	cfg       RateLimitConfig
	lastPrune time.Time
	now       func() time.Time
}

func newRateLimiter(cfg RateLimitConfig) *rateLimiter {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = ClientKey
	}
	return &rateLimiter{
		buckets: make(map[string]*bucket),
		cfg:     cfg,
		now:     time.Now,
	}
}

func (l *rateLimiter) allow(key string) (bool, int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.prune(now)

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{
			lim:      rate.NewLimiter(rate.Limit(l.cfg.RequestsPerSecond), l.cfg.BurstSize),
			lastSeen: now,
		}
		l.buckets[key] = b
	}
	return b.take(now)
}

// prune runs at most once per IdleTTL. Caller holds mu.
func (l *rateLimiter) prune(now time.Time) {
	ttl := l.cfg.IdleTTL
	if ttl <= 0 || now.Sub(l.lastPrune) < ttl {
		return
	}
	l.lastPrune = now
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) >= ttl {
			delete(l.buckets, key)
		}
	}
}

func (l *rateLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// RateLimit returns a middleware that gives each client key its own
// rate.Limiter.
func RateLimit(cfg RateLimitConfig) echo.MiddlewareFunc {
	return newRateLimiter(cfg).middleware
}

func (l *rateLimiter) middleware(next echo.HandlerFunc) echo.HandlerFunc {
	limit := strconv.FormatFloat(l.cfg.RequestsPerSecond, 'f', -1, 64)
	return func(c echo.Context) error {
		if l.cfg.Skipper != nil && l.cfg.Skipper(c) {
			return next(c)
		}

		h := c.Response().Header()
		h.Set("X-RateLimit-Limit", limit)
		ok, retryAfter := l.allow(l.cfg.KeyFunc(c))
		if !ok {
			h.Set("Retry-After", strconv.Itoa(retryAfter))
			h.Set("X-RateLimit-Remaining", "0")
			return echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests")
		}
		return next(c)
	}
}
