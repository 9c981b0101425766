package ads

import (
	"context"
	"fmt"
	"testing"
	"time"
)

// fakeClock advances manually so interval math is deterministic.
type fakeClock struct {
	current time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{current: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	return c.current
}

func (c *fakeClock) Advance(d time.Duration) {
	c.current = c.current.Add(d)
}

// stubRiskScorer serves canned scores per player.
type stubRiskScorer struct {
	scores map[string]int
	err    error
}

func (s *stubRiskScorer) RiskScore(ctx context.Context, playerID string) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	return s.scores[playerID], nil
}

func testViewer() Viewer {
	return Viewer{
		PlayerID:  "player-1",
		SessionID: "session-1",
		IPAddress: "10.0.0.1",
		UserAgent: "test-agent",
	}
}

func testConfig() *Config {
	return &Config{ID: "cfg-1", Settings: DefaultSettings()}
}

func newTestEligibility(cfg *Config) (*EligibilityEngine, *MemoryDisplayStore, *fakeClock) {
	units := NewMemoryUnitStore(
		AdUnit{ID: "unit-login", ConfigID: "cfg-1", Placement: PlacementLogin, Active: true},
		AdUnit{ID: "unit-mining", ConfigID: "cfg-1", Placement: PlacementMining, Active: true},
	)
	displays := NewMemoryDisplayStore()
	clock := newFakeClock()
	engine := NewEligibilityEngine(NewStaticConfigProvider(cfg), units, displays, nil, nil)
	engine.now = clock.Now
	return engine, displays, clock
}

func TestCanShowAdNotConfigured(t *testing.T) {
	engine, _, _ := newTestEligibility(nil)

	decision, err := engine.CanShowAd(context.Background(), testViewer(), PlacementLogin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.CanShow {
		t.Fatalf("expected rejection without an active config")
	}
	if decision.Reason != ReasonNotConfigured {
		t.Errorf("Reason = %q, expected %q", decision.Reason, ReasonNotConfigured)
	}
}

func TestCanShowAdPlacementDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Settings.LoginAdsEnabled = false
	engine, _, _ := newTestEligibility(cfg)

	decision, err := engine.CanShowAd(context.Background(), testViewer(), PlacementLogin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.Reason != ReasonPlacementDisabled {
		t.Errorf("Reason = %q, expected %q", decision.Reason, ReasonPlacementDisabled)
	}

	decision, err = engine.CanShowAd(context.Background(), testViewer(), PlacementMining)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !decision.CanShow {
		t.Errorf("mining placement should be unaffected, got %q", decision.Reason)
	}
}

func TestCanShowAdNoActiveUnit(t *testing.T) {
	cfg := testConfig()
	units := NewMemoryUnitStore(
		AdUnit{ID: "unit-login", ConfigID: "cfg-1", Placement: PlacementLogin, Active: false},
	)
	engine := NewEligibilityEngine(NewStaticConfigProvider(cfg), units, NewMemoryDisplayStore(), nil, nil)
	engine.now = newFakeClock().Now

	decision, err := engine.CanShowAd(context.Background(), testViewer(), PlacementLogin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.Reason != ReasonNoAdUnit {
		t.Errorf("Reason = %q, expected %q", decision.Reason, ReasonNoAdUnit)
	}
}

func TestCanShowAdFirstDisplayAllowed(t *testing.T) {
	engine, _, _ := newTestEligibility(testConfig())

	decision, err := engine.CanShowAd(context.Background(), testViewer(), PlacementLogin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !decision.CanShow {
		t.Fatalf("first display should be allowed, got %q", decision.Reason)
	}
	if decision.Unit == nil || decision.Unit.ID != "unit-login" {
		t.Errorf("expected the login unit in the decision")
	}
	if decision.Settings.AdIntervalMinutes != 10 {
		t.Errorf("expected parsed settings in the decision")
	}
}

func TestCanShowAdIntervalBoundary(t *testing.T) {
	engine, displays, clock := newTestEligibility(testConfig())
	viewer := testViewer()

	shown := clock.Now()
	mustSave(t, displays, &Display{
		ID:          "d1",
		AdUnitID:    "unit-login",
		PlayerID:    viewer.PlayerID,
		SessionID:   viewer.SessionID,
		IPAddress:   viewer.IPAddress,
		DisplayedAt: shown,
		Status:      StatusDisplayed,
	})

	clock.Advance(9*time.Minute + 59*time.Second)
	decision, err := engine.CanShowAd(context.Background(), viewer, PlacementLogin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.CanShow {
		t.Fatalf("display one second before the interval elapses should be rejected")
	}
	if decision.Reason != ReasonIntervalNotElapsed {
		t.Errorf("Reason = %q, expected %q", decision.Reason, ReasonIntervalNotElapsed)
	}
	if decision.Scope != "session" {
		t.Errorf("Scope = %q, expected session", decision.Scope)
	}
	if decision.RetryAfter == nil || !decision.RetryAfter.Equal(shown.Add(10*time.Minute)) {
		t.Errorf("RetryAfter = %v, expected %v", decision.RetryAfter, shown.Add(10*time.Minute))
	}
	if decision.SecondsRemaining != 1 {
		t.Errorf("SecondsRemaining = %d, expected 1", decision.SecondsRemaining)
	}

	clock.Advance(time.Second)
	decision, err = engine.CanShowAd(context.Background(), viewer, PlacementLogin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !decision.CanShow {
		t.Fatalf("display exactly at the interval boundary should be allowed, got %q", decision.Reason)
	}
}

func TestCanShowAdIntervalPerUnit(t *testing.T) {
	engine, displays, clock := newTestEligibility(testConfig())
	viewer := testViewer()

	mustSave(t, displays, &Display{
		ID:          "d1",
		AdUnitID:    "unit-login",
		SessionID:   viewer.SessionID,
		IPAddress:   viewer.IPAddress,
		PlayerID:    viewer.PlayerID,
		DisplayedAt: clock.Now(),
		Status:      StatusDisplayed,
	})
	clock.Advance(time.Minute)

	// A fresh display of a different unit is not paced by the login one.
	decision, err := engine.CanShowAd(context.Background(), viewer, PlacementMining)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !decision.CanShow {
		t.Fatalf("mining unit should not be paced by the login display, got %q", decision.Reason)
	}
}

func TestCanShowAdIntervalAcrossSessions(t *testing.T) {
	engine, displays, clock := newTestEligibility(testConfig())

	mustSave(t, displays, &Display{
		ID:          "d1",
		AdUnitID:    "unit-login",
		SessionID:   "session-old",
		IPAddress:   "10.0.0.1",
		DisplayedAt: clock.Now(),
		Status:      StatusDisplayed,
	})
	clock.Advance(time.Minute)

	// Same IP with a rotated session is still paced.
	viewer := Viewer{SessionID: "session-new", IPAddress: "10.0.0.1"}
	decision, err := engine.CanShowAd(context.Background(), viewer, PlacementLogin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.CanShow {
		t.Fatalf("rotated session on the same IP should still be paced")
	}
	if decision.Scope != "ip" {
		t.Errorf("Scope = %q, expected ip", decision.Scope)
	}
}

func TestCanShowAdIPVolumeLimit(t *testing.T) {
	engine, displays, clock := newTestEligibility(testConfig())
	viewer := testViewer()

	// Displays of an unrelated unit so the interval check stays quiet.
	for i := 0; i < ipHourlyDisplayLimit; i++ {
		mustSave(t, displays, &Display{
			ID:          fmt.Sprintf("d%d", i),
			AdUnitID:    "unit-other",
			SessionID:   fmt.Sprintf("session-%d", i),
			IPAddress:   viewer.IPAddress,
			DisplayedAt: clock.Now().Add(-time.Duration(i+1) * time.Minute),
			Status:      StatusDisplayed,
		})
	}

	decision, err := engine.CanShowAd(context.Background(), viewer, PlacementLogin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.CanShow {
		t.Fatalf("21st display within the hour should be rejected")
	}
	if decision.Reason != ReasonVolumeLimitExceeded {
		t.Errorf("Reason = %q, expected %q", decision.Reason, ReasonVolumeLimitExceeded)
	}
	if decision.Scope != "ip" {
		t.Errorf("Scope = %q, expected ip", decision.Scope)
	}
	if decision.RetryAfter == nil || !decision.RetryAfter.Equal(clock.Now().Add(time.Hour)) {
		t.Errorf("RetryAfter = %v, expected one hour out", decision.RetryAfter)
	}
}

func TestCanShowAdIPVolumeLimitExpires(t *testing.T) {
	engine, displays, clock := newTestEligibility(testConfig())
	viewer := testViewer()

	// All displays just over an hour old no longer count.
	for i := 0; i < ipHourlyDisplayLimit; i++ {
		mustSave(t, displays, &Display{
			ID:          fmt.Sprintf("d%d", i),
			AdUnitID:    "unit-other",
			SessionID:   fmt.Sprintf("session-%d", i),
			IPAddress:   viewer.IPAddress,
			DisplayedAt: clock.Now().Add(-61 * time.Minute),
			Status:      StatusDisplayed,
		})
	}

	decision, err := engine.CanShowAd(context.Background(), viewer, PlacementLogin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !decision.CanShow {
		t.Fatalf("displays outside the hour window should not count, got %q", decision.Reason)
	}
}

func TestCanShowAdFraudThreshold(t *testing.T) {
	cfg := testConfig()
	units := NewMemoryUnitStore(
		AdUnit{ID: "unit-login", ConfigID: "cfg-1", Placement: PlacementLogin, Active: true},
	)
	risk := &stubRiskScorer{scores: map[string]int{
		"player-risky": 81,
		"player-edge":  80,
	}}
	engine := NewEligibilityEngine(NewStaticConfigProvider(cfg), units, NewMemoryDisplayStore(), risk, nil)
	engine.now = newFakeClock().Now

	decision, err := engine.CanShowAd(context.Background(), Viewer{PlayerID: "player-risky", SessionID: "s1", IPAddress: "10.0.0.1"}, PlacementLogin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.Reason != ReasonHighFraudScore {
		t.Errorf("Reason = %q, expected %q", decision.Reason, ReasonHighFraudScore)
	}
	if decision.RetryAfter != nil {
		t.Errorf("fraud hold should not carry a retry time")
	}

	decision, err = engine.CanShowAd(context.Background(), Viewer{PlayerID: "player-edge", SessionID: "s2", IPAddress: "10.0.0.2"}, PlacementLogin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !decision.CanShow {
		t.Errorf("score equal to the threshold should pass, got %q", decision.Reason)
	}
}

func TestCanShowAdAnonymousSkipsFraud(t *testing.T) {
	risk := &stubRiskScorer{err: fmt.Errorf("score lookup must not run")}
	units := NewMemoryUnitStore(
		AdUnit{ID: "unit-login", ConfigID: "cfg-1", Placement: PlacementLogin, Active: true},
	)
	engine := NewEligibilityEngine(NewStaticConfigProvider(testConfig()), units, NewMemoryDisplayStore(), risk, nil)
	engine.now = newFakeClock().Now

	decision, err := engine.CanShowAd(context.Background(), Viewer{SessionID: "s1", IPAddress: "10.0.0.1"}, PlacementLogin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !decision.CanShow {
		t.Errorf("anonymous viewer should skip the fraud gate, got %q", decision.Reason)
	}
}

func mustSave(t *testing.T, store DisplayStore, d *Display) {
	t.Helper()
	if err := store.Save(context.Background(), d); err != nil {
		t.Fatalf("failed to save display %s: %v", d.ID, err)
	}
}
