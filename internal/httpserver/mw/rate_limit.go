package mw

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/hiic/library/internal/logger"
	"github.com/hiic/library/internal/utils"
)

// AssetLimit configures the per-client token bucket in front of /assets.
type AssetLimit struct {
	Burst      int           // downloads a fresh client may make at once
	PerMinute  int           // refill rate
	TrustProxy bool          // key clients by proxy headers
	IdleTTL    time.Duration // drop clients idle this long (default 15m)
	MaxClients int           // sweep early once this many are tracked (0 = no cap)
}

type tokenBucket struct {
	tokens   float64
	refilled time.Time
}

type assetLimiter struct {
	cfg      AssetLimit
	perSec   float64
	mu       sync.Mutex
	clients  map[string]*tokenBucket
	lastScan time.Time
	now      func() time.Time
}

func newAssetLimiter(cfg AssetLimit) *assetLimiter {
	if cfg.Burst < 1 {
		cfg.Burst = 1
	}
	if cfg.PerMinute < 1 {
		cfg.PerMinute = 1
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 15 * time.Minute
	}
	return &assetLimiter{
		cfg:      cfg,
		perSec:   float64(cfg.PerMinute) / 60,
		clients:  make(map[string]*tokenBucket),
		lastScan: time.Now(),
		now:      time.Now,
	}
}

// take spends one token for client. When the bucket is empty it reports how
// long until the next token.
func (l *assetLimiter) take(client string) (ok bool, left int, wait time.Duration) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	full := l.cfg.MaxClients > 0 && len(l.clients) >= l.cfg.MaxClients
	if full || now.Sub(l.lastScan) >= l.cfg.IdleTTL/2 {
		l.forgetIdle(now)
	}

	b, seen := l.clients[client]
	if !seen {
		b = &tokenBucket{tokens: float64(l.cfg.Burst), refilled: now}
		l.clients[client] = b
	}
	if dt := now.Sub(b.refilled).Seconds(); dt > 0 {
		b.tokens = math.Min(float64(l.cfg.Burst), b.tokens+dt*l.perSec)
		b.refilled = now
	}

	if b.tokens < 1 {
		secs := math.Ceil((1 - b.tokens) / l.perSec)
		return false, 0, time.Duration(max(secs, 1)) * time.Second
	}
	b.tokens--
	return true, int(b.tokens), 0
}

// forgetIdle must be called with l.mu held. A bucket that has refilled to
// Burst and sat idle for IdleTTL carries no state worth keeping.
func (l *assetLimiter) forgetIdle(now time.Time) {
	for client, b := range l.clients {
		if now.Sub(b.refilled) > l.cfg.IdleTTL {
			delete(l.clients, client)
		}
	}
	l.lastScan = now
}

// RateLimitAssets limits asset downloads per client IP. Rejected requests get
// 429 with Retry-After.
func RateLimitAssets(cfg AssetLimit, log logger.Logger) func(http.Handler) http.Handler {
	l := newAssetLimiter(cfg)
	limit := strconv.Itoa(l.cfg.Burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			client := utils.ClientIP(r, l.cfg.TrustProxy)
			ok, left, wait := l.take(client)

			h := w.Header()
			h.Set("X-RateLimit-Limit", limit)
			h.Set("X-RateLimit-Remaining", strconv.Itoa(left))
			if !ok {
				log.Debug("asset download throttled",
					logger.String("remote_ip", client),
					logger.String("path", r.URL.Path))
				h.Set("Retry-After", strconv.Itoa(int(wait/time.Second)))
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
