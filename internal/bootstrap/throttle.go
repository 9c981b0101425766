// Copyright (c) 2025 Dooficoin. All Rights Reserved.

package bootstrap

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Dooficoin/dooficoin-shield/internal/config"
	"github.com/Dooficoin/dooficoin-shield/pkg/security"
	"github.com/Dooficoin/dooficoin-shield/pkg/throttle"
)

// Throttles bundles the request limiter, login guard and IP blacklist.
type Throttles struct {
	Requests  *throttle.RequestThrottle
	Logins    *throttle.LoginAttemptGuard
	Blacklist *throttle.Blacklist
}

// InitThrottles builds the throttling layer from configuration.
func InitThrottles(cfg *config.Config, audit security.Logger) *Throttles {
	requests := throttle.NewRequestThrottle(throttle.RequestThrottleConfig{
		MaxRequests:   cfg.RequestLimit,
		Window:        time.Duration(cfg.RequestWindowSeconds) * time.Second,
		BlockDuration: time.Duration(cfg.RequestBlockSeconds) * time.Second,
	}, audit)

	logins := throttle.NewLoginAttemptGuard(throttle.LoginGuardConfig{
		MaxAttempts:   cfg.LoginAttemptLimit,
		Window:        time.Duration(cfg.LoginWindowMinutes) * time.Minute,
		BlockDuration: time.Duration(cfg.LoginBlockSeconds) * time.Second,
	}, audit)

	blacklist := throttle.NewBlacklist(cfg.IPBlacklist)

	logrus.Infof("initialized throttles: %d req/%ds, %d login attempts/%dm, %d blacklisted IPs",
		cfg.RequestLimit, cfg.RequestWindowSeconds,
		cfg.LoginAttemptLimit, cfg.LoginWindowMinutes, len(cfg.IPBlacklist))

	return &Throttles{
		Requests:  requests,
		Logins:    logins,
		Blacklist: blacklist,
	}
}
