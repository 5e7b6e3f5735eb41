package middleware

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"docbase-backend/internal/shared/server/respond"
)

const defaultRateGroup = "default"

// RateRule caps a request group at a steady per-second rate with a burst
// allowance. A zero rate or burst disables the rule.
type RateRule struct {
	PerSecond float64
	Burst     int
}

// RateLimitOptions configures the limiter middleware. Requests are grouped by
// GroupFor; groups without a rule pass through unthrottled.
type RateLimitOptions struct {
	Rules    map[string]RateRule
	GroupFor func(*gin.Context) string
	Limiter  *TokenBucket
}

// TokenBucket tracks per-key buckets. Keys combine the principal, falling
// back to client IP for unauthenticated paths, with the request group so one
// noisy caller cannot starve another.
type TokenBucket struct {
	mu    sync.Mutex
	state map[string]*bucketState
	clock func() time.Time
}

type bucketState struct {
	tokens   float64
	refilled time.Time
}

// NewTokenBucket builds a limiter. clock is injectable for tests; nil means
// wall time.
func NewTokenBucket(clock func() time.Time) *TokenBucket {
	if clock == nil {
		clock = time.Now
	}
	return &TokenBucket{
		state: make(map[string]*bucketState),
		clock: clock,
	}
}

// RateLimit throttles request groups by principal. Rejections carry a
// Retry-After header and the standard error envelope.
func RateLimit(opts RateLimitOptions) gin.HandlerFunc {
	if opts.Limiter == nil {
		opts.Limiter = NewTokenBucket(nil)
	}
	return func(c *gin.Context) {
		group := defaultRateGroup
		if opts.GroupFor != nil {
			if g := strings.TrimSpace(opts.GroupFor(c)); g != "" {
				group = g
			}
		}
		rule, ok := opts.Rules[group]
		if !ok {
			c.Next()
			return
		}

		caller := UserIDFromContext(c)
		if caller == "" {
			caller = strings.TrimSpace(c.ClientIP())
		}

		allowed, retryAfter := opts.Limiter.Take(caller+"|"+group, rule)
		if allowed {
			c.Next()
			return
		}

		retryAfterMs := int(retryAfter / time.Millisecond)
		if retryAfterMs <= 0 {
			retryAfterMs = 1000
		}
		c.Header("Retry-After", strconv.Itoa(int(math.Ceil(float64(retryAfterMs)/1000.0))))
		respond.Error(c, http.StatusTooManyRequests, "rate_limited", "too many requests", map[string]any{
			"retryAfterMs": retryAfterMs,
		})
	}
}

// Take spends one token from the bucket for key, refilling by elapsed time
// first. When empty it reports how long until the next token accrues.
func (b *TokenBucket) Take(key string, rule RateRule) (bool, time.Duration) {
	if b == nil || rule.PerSecond <= 0 || rule.Burst <= 0 {
		return true, 0
	}

	now := b.clock()
	b.mu.Lock()
	defer b.mu.Unlock()

	bucket, ok := b.state[key]
	if !ok {
		bucket = &bucketState{tokens: float64(rule.Burst), refilled: now}
		b.state[key] = bucket
	}
	if elapsed := now.Sub(bucket.refilled).Seconds(); elapsed > 0 {
		bucket.tokens = math.Min(float64(rule.Burst), bucket.tokens+elapsed*rule.PerSecond)
		bucket.refilled = now
	}

	if bucket.tokens >= 1 {
		bucket.tokens--
		return true, 0
	}

	waitSec := (1 - bucket.tokens) / rule.PerSecond
	if waitSec < 0 {
		waitSec = 0
	}
	return false, time.Duration(math.Ceil(waitSec*1000.0)) * time.Millisecond
}
