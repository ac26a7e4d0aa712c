package middlewares

import (
	"net"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/Gustavo-Marin05/media-service/internal/utils/platformerrors"
)

const (
	rateEntryTTL        = 15 * time.Minute
	rateCleanupInterval = 5 * time.Minute
)

type rateLimitEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateLimiter keeps one token bucket per client key and forgets idle keys.
type rateLimiter struct {
	mu          sync.Mutex
	limit       rate.Limit
	burst       int
	entries     map[string]*rateLimitEntry
	lastCleanup time.Time
}

func newRateLimiter(perSecond float64, burst int) *rateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &rateLimiter{
		limit:       rate.Limit(perSecond),
		burst:       burst,
		entries:     make(map[string]*rateLimitEntry),
		lastCleanup: time.Now(),
	}
}

func (r *rateLimiter) allow(key string, now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if now.Sub(r.lastCleanup) >= rateCleanupInterval {
		for k, entry := range r.entries {
			if now.Sub(entry.lastSeen) > rateEntryTTL {
				delete(r.entries, k)
			}
		}
		r.lastCleanup = now
	}

	entry, ok := r.entries[key]
	if !ok {
		entry = &rateLimitEntry{limiter: rate.NewLimiter(r.limit, r.burst)}
		r.entries[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

// RateLimitMiddleware limits requests per client IP. A non-positive rate disables it.
func RateLimitMiddleware(perSecond float64, burst int) gin.HandlerFunc {
	if perSecond <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	limiter := newRateLimiter(perSecond, burst)

	return func(c *gin.Context) {
		if !limiter.allow(rateKey(c), time.Now()) {
			c.Header("Retry-After", "1")
			platformerrors.WriteRateLimited(c, "too many requests")
			return
		}
		c.Next()
	}
}

func rateKey(c *gin.Context) string {
	raw := c.ClientIP()
	if ip := net.ParseIP(raw); ip != nil {
		return "ip:" + ip.String()
	}
	if raw != "" {
		return "ip:" + raw
	}
	return "anonymous"
}
