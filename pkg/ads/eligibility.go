// Copyright (c) 2025 Dooficoin. All Rights Reserved.

package ads

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Dooficoin/dooficoin-shield/pkg/common"
	"github.com/Dooficoin/dooficoin-shield/pkg/metrics"
	"github.com/Dooficoin/dooficoin-shield/pkg/security"
)

// Hard volume ceilings, independent of the configured interval.
const (
	ipHourlyDisplayLimit     = 20
	sessionDailyDisplayLimit = 50
	playerDailyDisplayLimit  = 100
)

// RiskScorer supplies the fraud risk score of a player in [0, 100].
type RiskScorer interface {
	RiskScore(ctx context.Context, playerID string) (int, error)
}

// Viewer identifies who is asking to see an ad. PlayerID may be empty
// for anonymous sessions; SessionID and IPAddress are always expected.
type Viewer struct {
	PlayerID  string
	SessionID string
	IPAddress string
	UserAgent string
}

// EligibilityEngine decides whether an ad may be shown to a viewer at a
// placement. Checks run cheapest first and short-circuit on the first
// rejection.
type EligibilityEngine struct {
	configs  ConfigProvider
	units    UnitStore
	displays DisplayStore
	risk     RiskScorer
	audit    security.Logger

	now func() time.Time
}

// NewEligibilityEngine wires an eligibility engine. risk may be nil to
// skip the fraud gate; audit may be nil to disable event logging.
func NewEligibilityEngine(configs ConfigProvider, units UnitStore, displays DisplayStore, risk RiskScorer, audit security.Logger) *EligibilityEngine {
	if audit == nil {
		audit = security.NopLogger{}
	}
	return &EligibilityEngine{
		configs:  configs,
		units:    units,
		displays: displays,
		risk:     risk,
		audit:    audit,
		now:      time.Now,
	}
}

func deny(reason Reason) Decision {
	metrics.AdDenialsTotal.WithLabelValues(string(reason)).Inc()
	return Decision{CanShow: false, Reason: reason}
}

// CanShowAd runs the full eligibility chain for one placement.
func (e *EligibilityEngine) CanShowAd(ctx context.Context, viewer Viewer, placement string) (Decision, error) {
	scope := common.GetScopeFromContext(ctx, "EligibilityEngine.CanShowAd")
	defer scope.Finish()

	cfg, err := e.configs.ActiveConfig(scope.Ctx)
	if err != nil {
		scope.TraceError(err)
		e.audit.LogEvent("ad_config_error", err.Error(), security.SeverityError, viewer.PlayerID)
		return deny(ReasonInternalError), err
	}
	if cfg == nil {
		return deny(ReasonNotConfigured), nil
	}

	settings := cfg.Settings
	if !settings.PlacementEnabled(placement) {
		return deny(ReasonPlacementDisabled), nil
	}

	unit, err := e.units.FindActiveUnit(scope.Ctx, cfg.ID, placement)
	if err != nil {
		scope.TraceError(err)
		return deny(ReasonInternalError), err
	}
	if unit == nil {
		return deny(ReasonNoAdUnit), nil
	}

	now := e.now()

	if d, err := e.checkInterval(scope.Ctx, viewer, unit.ID, settings, now); err != nil {
		scope.TraceError(err)
		return deny(ReasonInternalError), err
	} else if !d.CanShow {
		return d, nil
	}

	if d, err := e.checkVolume(scope.Ctx, viewer, now); err != nil {
		scope.TraceError(err)
		return deny(ReasonInternalError), err
	} else if !d.CanShow {
		return d, nil
	}

	if d, err := e.checkFraud(scope.Ctx, viewer, settings); err != nil {
		scope.TraceError(err)
		return deny(ReasonInternalError), err
	} else if !d.CanShow {
		return d, nil
	}

	return Decision{
		CanShow:  true,
		Unit:     unit,
		Config:   cfg,
		Settings: settings,
	}, nil
}

// checkInterval enforces the minimum spacing between displays of the
// same unit per session, per IP and per player.
func (e *EligibilityEngine) checkInterval(ctx context.Context, viewer Viewer, unitID string, settings Settings, now time.Time) (Decision, error) {
	interval := settings.Interval()
	if interval <= 0 {
		return Decision{CanShow: true}, nil
	}
	since := now.Add(-interval)

	checks := []struct {
		scope  string
		filter DisplayFilter
	}{
		{"session", DisplayFilter{SessionID: viewer.SessionID, AdUnitID: unitID}},
		{"ip", DisplayFilter{IPAddress: viewer.IPAddress, AdUnitID: unitID}},
		{"player", DisplayFilter{PlayerID: viewer.PlayerID, AdUnitID: unitID}},
	}
	for _, c := range checks {
		if c.filter.SessionID == "" && c.filter.IPAddress == "" && c.filter.PlayerID == "" {
			continue
		}
		recent, err := e.displays.FindRecent(ctx, c.filter, since)
		if err != nil {
			return Decision{}, err
		}
		if recent != nil {
			retry := recent.DisplayedAt.Add(interval)
			d := deny(ReasonIntervalNotElapsed)
			d.Scope = c.scope
			d.RetryAfter = &retry
			d.SecondsRemaining = secondsUntil(now, retry)
			return d, nil
		}
	}
	return Decision{CanShow: true}, nil
}

// checkVolume enforces the hard display ceilings.
func (e *EligibilityEngine) checkVolume(ctx context.Context, viewer Viewer, now time.Time) (Decision, error) {
	hourAgo := now.Add(-time.Hour)
	dayAgo := now.Add(-24 * time.Hour)

	checks := []struct {
		scope  string
		filter DisplayFilter
		since  time.Time
		limit  int
		retry  time.Time
	}{
		{"ip", DisplayFilter{IPAddress: viewer.IPAddress}, hourAgo, ipHourlyDisplayLimit, now.Add(time.Hour)},
		{"session", DisplayFilter{SessionID: viewer.SessionID}, dayAgo, sessionDailyDisplayLimit, now.Add(24 * time.Hour)},
		{"player", DisplayFilter{PlayerID: viewer.PlayerID}, dayAgo, playerDailyDisplayLimit, now.Add(24 * time.Hour)},
	}
	for _, c := range checks {
		if c.filter.SessionID == "" && c.filter.IPAddress == "" && c.filter.PlayerID == "" {
			continue
		}
		count, err := e.displays.Count(ctx, c.filter, c.since)
		if err != nil {
			return Decision{}, err
		}
		if count >= c.limit {
			logrus.Debugf("ad volume limit hit for %s scope: %d displays", c.scope, count)
			e.audit.LogEvent("ad_volume_limit",
				"display volume limit reached for "+c.scope+" scope",
				security.SeverityWarning, viewer.PlayerID)
			retry := c.retry
			d := deny(ReasonVolumeLimitExceeded)
			d.Scope = c.scope
			d.RetryAfter = &retry
			d.SecondsRemaining = secondsUntil(now, retry)
			return d, nil
		}
	}
	return Decision{CanShow: true}, nil
}

// checkFraud refuses ads to players whose risk score crosses the
// configured threshold. Anonymous viewers pass.
func (e *EligibilityEngine) checkFraud(ctx context.Context, viewer Viewer, settings Settings) (Decision, error) {
	if e.risk == nil || viewer.PlayerID == "" {
		return Decision{CanShow: true}, nil
	}
	score, err := e.risk.RiskScore(ctx, viewer.PlayerID)
	if err != nil {
		return Decision{}, err
	}
	if score > settings.FraudScoreThreshold {
		logrus.Warnf("refusing ad to player %s: risk score %d exceeds threshold %d",
			viewer.PlayerID, score, settings.FraudScoreThreshold)
		e.audit.LogEvent("ad_fraud_hold",
			"ad withheld due to high fraud risk score",
			security.SeverityWarning, viewer.PlayerID)
		return deny(ReasonHighFraudScore), nil
	}
	return Decision{CanShow: true}, nil
}

// secondsUntil rounds up so a caller that waits the reported seconds is
// never rejected again.
func secondsUntil(now, t time.Time) int {
	d := t.Sub(now)
	if d <= 0 {
		return 0
	}
	secs := int((d + time.Second - 1) / time.Second)
	return secs
}
