// Copyright (c) 2025 Dooficoin. All Rights Reserved.

package ads

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Dooficoin/dooficoin-shield/pkg/common"
	"github.com/Dooficoin/dooficoin-shield/pkg/fraud"
	"github.com/Dooficoin/dooficoin-shield/pkg/metrics"
	"github.com/Dooficoin/dooficoin-shield/pkg/security"
)

// suspiciousClickWindow is how fast a click after display is considered
// bot-like rather than human.
const suspiciousClickWindow = 2 * time.Second

// ActionRecorder feeds ad interaction events into behavioral fraud
// scoring. fraud.Engine satisfies it.
type ActionRecorder interface {
	RecordAction(ctx context.Context, playerID, actionType string, details map[string]interface{}) (*fraud.Evaluation, error)
}

// LifecycleEngine owns the display state machine: create a protected
// display, report its countdown, and validate close and click requests
// against it.
type LifecycleEngine struct {
	displays DisplayStore
	configs  ConfigProvider
	actions  ActionRecorder
	audit    security.Logger

	now func() time.Time
}

// NewLifecycleEngine wires a lifecycle engine. actions may be nil to
// skip fraud feedback; audit may be nil to disable event logging.
func NewLifecycleEngine(displays DisplayStore, configs ConfigProvider, actions ActionRecorder, audit security.Logger) *LifecycleEngine {
	if audit == nil {
		audit = security.NopLogger{}
	}
	return &LifecycleEngine{
		displays: displays,
		configs:  configs,
		actions:  actions,
		audit:    audit,
		now:      time.Now,
	}
}

// Create records a new display for the viewer and starts its protection
// window. The protection length comes from the active configuration,
// falling back to defaults when none is set.
func (e *LifecycleEngine) Create(ctx context.Context, viewer Viewer, unit *AdUnit) (*Display, error) {
	scope := common.GetScopeFromContext(ctx, "LifecycleEngine.Create")
	defer scope.Finish()

	settings := DefaultSettings()
	cfg, err := e.configs.ActiveConfig(scope.Ctx)
	if err != nil {
		scope.TraceError(err)
		return nil, err
	}
	if cfg != nil {
		settings = cfg.Settings
	}

	now := e.now()
	d := &Display{
		ID:            uuid.NewString(),
		AdUnitID:      unit.ID,
		PlayerID:      viewer.PlayerID,
		SessionID:     viewer.SessionID,
		IPAddress:     viewer.IPAddress,
		UserAgent:     viewer.UserAgent,
		DisplayedAt:   now,
		ProtectionEnd: now.Add(settings.Protection()),
		Status:        StatusDisplayed,
	}
	if err := e.displays.Save(scope.Ctx, d); err != nil {
		scope.TraceError(err)
		return nil, err
	}

	metrics.AdDisplaysTotal.WithLabelValues(unit.Placement).Inc()
	logrus.Debugf("ad display %s created for unit %s, protected until %s",
		d.ID, unit.ID, d.ProtectionEnd.Format(time.RFC3339))
	e.audit.LogEvent("ad_display_created", "ad display created", security.SeverityInfo, viewer.PlayerID)

	e.recordAction(scope.Ctx, viewer.PlayerID, fraud.ActionViewAd, map[string]interface{}{
		"ad_unit_id":         unit.ID,
		"placement":          unit.Placement,
		"display_id":         d.ID,
		"protection_seconds": settings.AdProtectionSeconds,
	})

	return d, nil
}

// Status reports a display's state and protection countdown.
func (e *LifecycleEngine) Status(ctx context.Context, displayID string) (StatusResult, error) {
	d, err := e.displays.Get(ctx, displayID)
	if err != nil {
		return StatusResult{Reason: ReasonInternalError}, err
	}
	if d == nil {
		return StatusResult{Found: false, Reason: ReasonNotFound}, nil
	}

	now := e.now()
	res := StatusResult{
		Found:         true,
		Display:       d,
		Status:        d.Status,
		CanClose:      d.CanBeClosed(now),
		ProtectionEnd: d.ProtectionEnd,
	}

	total := int(d.ProtectionEnd.Sub(d.DisplayedAt) / time.Second)
	res.TotalProtectionSeconds = total
	res.SecondsRemaining = secondsUntil(now, d.ProtectionEnd)

	elapsed := int(now.Sub(d.DisplayedAt) / time.Second)
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > total {
		elapsed = total
	}
	res.ElapsedSeconds = elapsed
	if total > 0 {
		res.ProgressPercent = float64(elapsed) / float64(total) * 100
	} else {
		res.ProgressPercent = 100
	}
	return res, nil
}

// Close requests closing a display. The request is refused while the
// protection window is active, and rejected outright when the caller's
// identity matches none of the display's session, IP or player.
func (e *LifecycleEngine) Close(ctx context.Context, viewer Viewer, displayID string) (OpResult, error) {
	scope := common.GetScopeFromContext(ctx, "LifecycleEngine.Close")
	defer scope.Finish()

	d, err := e.displays.Get(scope.Ctx, displayID)
	if err != nil {
		scope.TraceError(err)
		return OpResult{Reason: ReasonInternalError}, err
	}
	if d == nil {
		return OpResult{Reason: ReasonNotFound}, nil
	}

	if !viewerOwnsDisplay(viewer, d) {
		logrus.Warnf("close request for display %s from non-matching viewer", displayID)
		e.audit.LogEvent("ad_close_identity_mismatch",
			"close request denied: viewer matches neither session, ip nor player of the display",
			security.SeverityWarning, viewer.PlayerID)
		return OpResult{Reason: ReasonSecurityViolation}, nil
	}

	now := e.now()
	if !d.CanBeClosed(now) {
		retry := d.ProtectionEnd
		return OpResult{
			Reason:           ReasonProtectionActive,
			RetryAfter:       &retry,
			SecondsRemaining: secondsUntil(now, d.ProtectionEnd),
			Display:          d,
		}, nil
	}

	if d.Status == StatusClosed {
		return OpResult{Reason: ReasonNotDisplayed, Display: d}, nil
	}

	d.Status = StatusClosed
	d.ClosedAt = &now
	if err := e.displays.Save(scope.Ctx, d); err != nil {
		scope.TraceError(err)
		return OpResult{Reason: ReasonInternalError}, err
	}

	e.recordAction(scope.Ctx, d.PlayerID, fraud.ActionCloseAd, map[string]interface{}{
		"ad_unit_id":              d.AdUnitID,
		"display_id":              d.ID,
		"duration_seconds":        now.Sub(d.DisplayedAt).Seconds(),
		"closed_after_protection": true,
	})

	return OpResult{Success: true, Display: d}, nil
}

// Click records a click on a display. Clicks inside the bot window feed
// a suspicious action into fraud scoring but still count as clicks.
func (e *LifecycleEngine) Click(ctx context.Context, viewer Viewer, displayID string) (OpResult, error) {
	scope := common.GetScopeFromContext(ctx, "LifecycleEngine.Click")
	defer scope.Finish()

	d, err := e.displays.Get(scope.Ctx, displayID)
	if err != nil {
		scope.TraceError(err)
		return OpResult{Reason: ReasonInternalError}, err
	}
	if d == nil {
		return OpResult{Reason: ReasonNotFound}, nil
	}

	if !viewerOwnsDisplay(viewer, d) {
		logrus.Warnf("click request for display %s from non-matching viewer", displayID)
		e.audit.LogEvent("ad_click_identity_mismatch",
			"click request denied: viewer matches neither session, ip nor player of the display",
			security.SeverityWarning, viewer.PlayerID)
		return OpResult{Reason: ReasonSecurityViolation}, nil
	}

	if d.Status != StatusDisplayed {
		return OpResult{Reason: ReasonNotDisplayed, Display: d}, nil
	}

	now := e.now()
	d.Status = StatusClicked
	d.ClickTimestamp = &now
	d.WasClicked = true
	if err := e.displays.Save(scope.Ctx, d); err != nil {
		scope.TraceError(err)
		return OpResult{Reason: ReasonInternalError}, err
	}

	timeToClick := now.Sub(d.DisplayedAt)
	if timeToClick < suspiciousClickWindow {
		logrus.Warnf("suspiciously fast click on display %s after %.2fs", d.ID, timeToClick.Seconds())
		e.recordAction(scope.Ctx, d.PlayerID, fraud.ActionSuspiciousAdClick, map[string]interface{}{
			"ad_unit_id":            d.AdUnitID,
			"display_id":            d.ID,
			"time_to_click_seconds": timeToClick.Seconds(),
			"reason":                "clicked faster than a human could react",
		})
	} else {
		e.recordAction(scope.Ctx, d.PlayerID, fraud.ActionClickAd, map[string]interface{}{
			"ad_unit_id":            d.AdUnitID,
			"display_id":            d.ID,
			"time_to_click_seconds": timeToClick.Seconds(),
		})
	}

	return OpResult{Success: true, Display: d}, nil
}

// viewerOwnsDisplay reports whether the viewer matches the display on
// at least one identity dimension. Sessions can rotate IPs mid-view
// and anonymous viewers can log in, so requiring all three to match
// would lock legitimate players out of their own ads.
func viewerOwnsDisplay(viewer Viewer, d *Display) bool {
	if viewer.SessionID != "" && viewer.SessionID == d.SessionID {
		return true
	}
	if viewer.IPAddress != "" && viewer.IPAddress == d.IPAddress {
		return true
	}
	if viewer.PlayerID != "" && d.PlayerID != "" && viewer.PlayerID == d.PlayerID {
		return true
	}
	return false
}

// recordAction feeds fraud scoring, swallowing errors: a scoring
// failure must never fail the ad operation itself.
func (e *LifecycleEngine) recordAction(ctx context.Context, playerID, actionType string, details map[string]interface{}) {
	if e.actions == nil || playerID == "" {
		return
	}
	if _, err := e.actions.RecordAction(ctx, playerID, actionType, details); err != nil {
		logrus.Errorf("failed to record %s action for player %s: %v", actionType, playerID, err)
	}
}
