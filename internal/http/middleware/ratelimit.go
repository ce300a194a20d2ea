// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements the in-memory token-bucket rate limiter guarding the
// commitment API. Ingest traffic comes from chat gateways that can burst when
// a channel backlog flushes, so buckets are keyed per caller (agent identity
// when the gateway supplies one, client IP otherwise) and redeliveries that
// ReplayDetector recognized pass through without consuming tokens. A gateway
// retrying an already-ingested message must never be throttled into another
// retry loop.
//
// The limiter is process-local. Running several replicas behind one gateway
// multiplies the effective limit accordingly.
package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// keyFunc selects the identity used to key a rate-limit bucket. It must
// return a stable string for the duration of a request, such as
// "agent:<id>" or "ip:<addr>".
type keyFunc func(*gin.Context) string

// KeyByAgentOrIP returns a keyFunc that prefers the calling support agent
// (from the Gin context under "agentID", set by an upstream gateway) and
// falls back to the client IP. Keys are prefixed so the agent and IP
// namespaces cannot collide.
func KeyByAgentOrIP() keyFunc {
	return func(c *gin.Context) string {
		if v, ok := c.Get(agentIDKey); ok {
			if s, ok := v.(string); ok && s != "" {
				return "agent:" + s
			}
		}
		return "ip:" + c.ClientIP()
	}
}

// visitor holds one bucket and the last time its key was seen, so idle
// buckets can be evicted.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter implements a per-key token-bucket rate limiter.
//
// Buckets are created on demand in a mutex-guarded map. Idle buckets are
// evicted after a TTL via opportunistic cleanup during lookups, which bounds
// memory when many distinct IPs hit the API. Safe for concurrent use.
type RateLimiter struct {
	rps      rate.Limit
	burst    int
	keyFn    keyFunc
	mu       sync.Mutex
	visitors map[string]*visitor

	ttl      time.Duration
	cleanupN uint64
}

// NewRateLimiter constructs a RateLimiter replenishing rps tokens per second
// with the given burst size, keyed by keyFn. A burst <= 0 is coerced to 1.
// Install the result via Handler().
func NewRateLimiter(rps float64, burst int, keyFn keyFunc) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		rps:      rate.Limit(rps),
		burst:    burst,
		keyFn:    keyFn,
		visitors: make(map[string]*visitor),
		ttl:      10 * time.Minute,
	}
}

// getVisitor returns the limiter for key, creating it if absent, and runs
// opportunistic GC of idle entries after ~5000 lookups.
//
// GC must run before the requested visitor is touched, otherwise fetching an
// idle bucket would refresh lastSeen and keep it alive past the TTL.
func (rl *RateLimiter) getVisitor(key string) *rate.Limiter {
	now := time.Now()

	rl.mu.Lock()
	rl.cleanupN++
	if rl.cleanupN >= 5000 {
		for k, vv := range rl.visitors {
			if now.Sub(vv.lastSeen) >= rl.ttl {
				delete(rl.visitors, k)
			}
		}
		rl.cleanupN = 0
	}

	if v, ok := rl.visitors[key]; ok {
		v.lastSeen = now
		lim := v.limiter
		rl.mu.Unlock()
		return lim
	}

	lim := rate.NewLimiter(rl.rps, rl.burst)
	rl.visitors[key] = &visitor{limiter: lim, lastSeen: now}
	rl.mu.Unlock()
	return lim
}

// IsRateBypass reports whether ReplayDetector marked this request as a
// redelivery of an already-ingested message. Handler() skips limiting for
// such requests so replays converge without consuming tokens.
func IsRateBypass(c *gin.Context) bool {
	v, ok := c.Get(ctxKeyRateBypass) // set by ReplayDetector
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// Handler returns a Gin middleware enforcing the per-key bucket. Recognized
// replays pass through untouched. A rejected request gets a Retry-After
// header and the standard error envelope:
//
//	HTTP/1.1 429 Too Many Requests
//	{
//	  "request_id": "<uuid>",
//	  "code":       "rate_limited",
//	  "message":    "rate limit exceeded"
//	}
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsRateBypass(c) {
			c.Next()
			return
		}

		if rl.getVisitor(rl.keyFn(c)).Allow() {
			c.Next()
			return
		}

		c.Header("Retry-After", "1")
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"request_id": c.Writer.Header().Get("X-Request-ID"),
			"code":       "rate_limited",
			"message":    "rate limit exceeded",
		})
	}
}
