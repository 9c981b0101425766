// Package throttle contains the per-IP request rate limiter, the
// progressive login lockout, and the static IP blacklist. All state is
// in-memory and guarded by a single mutex per limiter; entries expire
// lazily on the next check, there is no background sweep.
package throttle

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Dooficoin/dooficoin-shield/pkg/metrics"
	"github.com/Dooficoin/dooficoin-shield/pkg/security"
	"github.com/Dooficoin/dooficoin-shield/pkg/timewindow"
)

// ReasonRateLimited is reported when a request is rejected by the limiter.
const ReasonRateLimited = "RateLimited"

// Result is the outcome of a throttle check.
type Result struct {
	Allowed bool
	Reason  string
	// RetryAfter is how long the caller should wait before retrying.
	// Zero when Allowed is true.
	RetryAfter time.Duration
}

// RequestThrottleConfig configures the sliding-window request limiter.
type RequestThrottleConfig struct {
	MaxRequests   int
	Window        time.Duration
	BlockDuration time.Duration
}

// DefaultRequestThrottleConfig returns the limits used on game endpoints:
// 10 requests per minute, violations block the IP for 5 minutes.
func DefaultRequestThrottleConfig() RequestThrottleConfig {
	return RequestThrottleConfig{
		MaxRequests:   10,
		Window:        60 * time.Second,
		BlockDuration: 300 * time.Second,
	}
}

// RequestThrottle is a per-IP sliding-window rate limiter with temporary
// blocking.
type RequestThrottle struct {
	cfg      RequestThrottleConfig
	audit    security.Logger
	mu       sync.Mutex
	requests map[string][]time.Time
	blocked  map[string]time.Time
	now      func() time.Time
}

// NewRequestThrottle creates a request throttle. audit may be nil.
func NewRequestThrottle(cfg RequestThrottleConfig, audit security.Logger) *RequestThrottle {
	if cfg.MaxRequests <= 0 || cfg.Window <= 0 || cfg.BlockDuration <= 0 {
		cfg = DefaultRequestThrottleConfig()
	}
	if audit == nil {
		audit = security.NopLogger{}
	}
	return &RequestThrottle{
		cfg:      cfg,
		audit:    audit,
		requests: make(map[string][]time.Time),
		blocked:  make(map[string]time.Time),
		now:      time.Now,
	}
}

// Check records a request from ip and reports whether it is allowed.
// The prune-append-compare sequence runs under the throttle mutex so two
// concurrent requests cannot both slip under the limit.
func (t *RequestThrottle) Check(ip string) Result {
	now := t.now()

	t.mu.Lock()
	defer t.mu.Unlock()

	if until, ok := t.blocked[ip]; ok {
		if now.Before(until) {
			metrics.ThrottleRejectionsTotal.WithLabelValues("request").Inc()
			return Result{Allowed: false, Reason: ReasonRateLimited, RetryAfter: until.Sub(now)}
		}
		// Block expired, clear it lazily.
		delete(t.blocked, ip)
	}

	recent := timewindow.Prune(t.requests[ip], now, t.cfg.Window)

	if len(recent) >= t.cfg.MaxRequests {
		until := now.Add(t.cfg.BlockDuration)
		t.blocked[ip] = until
		t.requests[ip] = recent

		logrus.Warnf("rate limit exceeded for %s: %d requests in %v, blocking for %v",
			ip, len(recent), t.cfg.Window, t.cfg.BlockDuration)
		t.audit.LogEvent("rate_limit_exceeded",
			"request rate limit exceeded, IP temporarily blocked",
			security.SeverityWarning, ip)
		metrics.ThrottleRejectionsTotal.WithLabelValues("request").Inc()

		return Result{Allowed: false, Reason: ReasonRateLimited, RetryAfter: t.cfg.BlockDuration}
	}

	t.requests[ip] = append(recent, now)
	return Result{Allowed: true}
}
