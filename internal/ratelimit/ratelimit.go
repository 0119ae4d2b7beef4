// Package ratelimit throttles requests per key with token buckets.
package ratelimit

import (
	"net"
	"net/http"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/rs/zerolog/hlog"
	"golang.org/x/time/rate"
)

// Limiter keeps one token bucket per key. Idle buckets are dropped after
// 30 minutes.
type Limiter struct {
	buckets *ttlcache.Cache[string, *rate.Limiter]
	refill  rate.Limit
	burst   int
}

// New returns a limiter refilling perMinute tokens per minute with the given
// burst, and a func stopping its expiry loop.
func New(perMinute, burst int) (*Limiter, func()) {
	c := ttlcache.New[string, *rate.Limiter](
		ttlcache.WithTTL[string, *rate.Limiter](30 * time.Minute),
	)
	go c.Start()
	return &Limiter{
		buckets: c,
		refill:  rate.Limit(float64(perMinute) / 60),
		burst:   burst,
	}, c.Stop
}

// Allow consumes a token for key.
func (l *Limiter) Allow(key string) bool {
	item, _ := l.buckets.GetOrSet(key, rate.NewLimiter(l.refill, l.burst))
	return item.Value().Allow()
}

// IPKey keys requests by client address without the port.
func IPKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip: " + host
}

// Middleware answers 429 once key's bucket is empty.
func (l *Limiter) Middleware(key func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if k := key(r); !l.Allow(k) {
				hlog.FromRequest(r).Warn().Str("key", k).Msg("rate limited")
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.Header().Set("Retry-After", "60")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":"rate_limited"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
