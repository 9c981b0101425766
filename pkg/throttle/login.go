package throttle

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Dooficoin/dooficoin-shield/pkg/metrics"
	"github.com/Dooficoin/dooficoin-shield/pkg/security"
	"github.com/Dooficoin/dooficoin-shield/pkg/timewindow"
)

// LoginGuardConfig configures the progressive login lockout.
type LoginGuardConfig struct {
	MaxAttempts   int
	Window        time.Duration
	BlockDuration time.Duration
}

// DefaultLoginGuardConfig returns the authentication lockout policy:
// 5 failed attempts within 15 minutes block the IP for 30 minutes.
func DefaultLoginGuardConfig() LoginGuardConfig {
	return LoginGuardConfig{
		MaxAttempts:   5,
		Window:        15 * time.Minute,
		BlockDuration: 1800 * time.Second,
	}
}

// loginState tracks failed attempts for one IP.
type loginState struct {
	attempts     []time.Time
	blockedUntil time.Time
}

// LoginAttemptGuard tracks failed authentication attempts per IP and
// blocks after repeated failures. It is independent of RequestThrottle.
type LoginAttemptGuard struct {
	cfg   LoginGuardConfig
	audit security.Logger
	mu    sync.Mutex
	state map[string]*loginState
	now   func() time.Time
}

// NewLoginAttemptGuard creates a login guard. audit may be nil.
func NewLoginAttemptGuard(cfg LoginGuardConfig, audit security.Logger) *LoginAttemptGuard {
	if cfg.MaxAttempts <= 0 || cfg.Window <= 0 || cfg.BlockDuration <= 0 {
		cfg = DefaultLoginGuardConfig()
	}
	if audit == nil {
		audit = security.NopLogger{}
	}
	return &LoginAttemptGuard{
		cfg:   cfg,
		audit: audit,
		state: make(map[string]*loginState),
		now:   time.Now,
	}
}

// CheckAttempt records the outcome of an authentication attempt from ip.
// A successful attempt clears the failure history. The fifth failure
// inside the window blocks the IP and resets the attempt list so the
// lockout clock starts fresh after the block expires.
func (g *LoginAttemptGuard) CheckAttempt(ip string, success bool) Result {
	now := g.now()

	g.mu.Lock()
	defer g.mu.Unlock()

	st, ok := g.state[ip]
	if !ok {
		st = &loginState{}
		g.state[ip] = st
	}

	if !st.blockedUntil.IsZero() {
		if now.Before(st.blockedUntil) {
			metrics.ThrottleRejectionsTotal.WithLabelValues("login").Inc()
			return Result{Allowed: false, Reason: ReasonRateLimited, RetryAfter: st.blockedUntil.Sub(now)}
		}
		st.blockedUntil = time.Time{}
	}

	if success {
		st.attempts = nil
		return Result{Allowed: true}
	}

	st.attempts = timewindow.Prune(st.attempts, now, g.cfg.Window)
	st.attempts = append(st.attempts, now)

	if len(st.attempts) >= g.cfg.MaxAttempts {
		st.blockedUntil = now.Add(g.cfg.BlockDuration)
		st.attempts = nil

		logrus.Warnf("login lockout for %s: %d failed attempts in %v, blocking for %v",
			ip, g.cfg.MaxAttempts, g.cfg.Window, g.cfg.BlockDuration)
		g.audit.LogEvent("login_lockout",
			"too many failed login attempts, IP blocked",
			security.SeverityWarning, ip)
		metrics.LoginLockoutsTotal.Inc()
		metrics.ThrottleRejectionsTotal.WithLabelValues("login").Inc()

		return Result{Allowed: false, Reason: ReasonRateLimited, RetryAfter: g.cfg.BlockDuration}
	}

	return Result{Allowed: true}
}
