package fraud

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Dooficoin/dooficoin-shield/pkg/common"
	"github.com/Dooficoin/dooficoin-shield/pkg/metrics"
	"github.com/Dooficoin/dooficoin-shield/pkg/security"
)

// Evaluation is the outcome of recording one action.
type Evaluation struct {
	// Suspicious is true when at least one detector matched.
	Suspicious bool

	// Findings holds everything that matched.
	Findings []*Finding

	// Alerts holds the alerts raised for the findings.
	Alerts []Alert

	// WarningIssued is true when this call crossed the warning threshold
	// for the first time.
	WarningIssued bool

	// Critical is true while accumulated suspicion is at or above the
	// critical threshold. Enforcement stays an external decision.
	Critical bool
}

// Engine is the behavioral fraud scoring engine. Every recorded action
// is appended to the player's bounded history and immediately
// re-evaluated against all registered detectors.
type Engine struct {
	store    ProfileStore
	registry *Registry
	alerts   *AlertLog
	audit    security.Logger
	cfg      *Config

	// locks serializes the append-then-rescore sequence per player.
	locksMu sync.Mutex
	locks   map[string]*sync.Mutex

	now func() time.Time
}

// NewEngine creates a fraud scoring engine. audit may be nil; cfg nil
// falls back to DefaultConfig.
func NewEngine(store ProfileStore, registry *Registry, alerts *AlertLog, audit security.Logger, cfg *Config) *Engine {
	if audit == nil {
		audit = security.NopLogger{}
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if alerts == nil {
		alerts = NewAlertLog()
	}
	return &Engine{
		store:    store,
		registry: registry,
		alerts:   alerts,
		audit:    audit,
		cfg:      cfg,
		locks:    make(map[string]*sync.Mutex),
		now:      time.Now,
	}
}

// Alerts returns the engine's alert log.
func (e *Engine) Alerts() *AlertLog {
	return e.alerts
}

// playerLock returns the mutex serializing updates for one player.
// Entries are never removed; they are tiny and bounded by the active
// player population.
func (e *Engine) playerLock(playerID string) *sync.Mutex {
	e.locksMu.Lock()
	defer e.locksMu.Unlock()

	mu, ok := e.locks[playerID]
	if !ok {
		mu = &sync.Mutex{}
		e.locks[playerID] = mu
	}
	return mu
}

// RecordAction appends an action to the player's history and runs all
// matching detectors synchronously. The whole load-append-evaluate-store
// sequence is atomic per player.
func (e *Engine) RecordAction(ctx context.Context, playerID, actionType string, details map[string]interface{}) (*Evaluation, error) {
	scope := common.GetScopeFromContext(ctx, "fraud.RecordAction")
	defer scope.Finish()

	if playerID == "" {
		return nil, fmt.Errorf("player ID is required")
	}
	if actionType == "" {
		return nil, fmt.Errorf("action type is required")
	}

	mu := e.playerLock(playerID)
	mu.Lock()
	defer mu.Unlock()

	profile, err := e.store.GetProfile(scope.Ctx, playerID)
	if err != nil {
		scope.TraceError(err)
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	profile.Record(Action{
		Timestamp: e.now(),
		Type:      actionType,
		Details:   details,
	})

	eval := e.evaluate(scope, profile, actionType)

	if err := e.store.UpdateProfile(scope.Ctx, playerID, profile); err != nil {
		scope.TraceError(err)
		return nil, fmt.Errorf("failed to persist profile: %w", err)
	}

	return eval, nil
}

// evaluate runs the detectors and applies threshold handling. The caller
// holds the player lock and persists the profile afterwards.
func (e *Engine) evaluate(scope *common.Scope, profile *Profile, actionType string) *Evaluation {
	eval := &Evaluation{}

	detectors := e.registry.GetByActionType(actionType)
	for _, d := range detectors {
		matched, finding, err := d.Evaluate(scope.Ctx, profile)
		if err != nil {
			// One broken detector must not stop the others.
			scope.Log.Errorf("detector %s evaluation failed: %v", d.ID(), err)
			continue
		}
		if !matched || finding == nil {
			continue
		}

		eval.Suspicious = true
		eval.Findings = append(eval.Findings, finding)
		profile.Suspicion += finding.Suspicion

		alert := e.alerts.Create(profile.PlayerID, finding.AlertType, finding.Details)
		eval.Alerts = append(eval.Alerts, alert)

		scope.Log.Infof("detector %s matched for player %s: +%d suspicion (total %d)",
			d.ID(), profile.PlayerID, finding.Suspicion, profile.Suspicion)
	}

	if profile.Suspicion >= e.cfg.WarnThreshold && profile.WarningsIssued == 0 {
		profile.WarningsIssued++
		eval.WarningIssued = true
		metrics.FraudWarningsTotal.Inc()
		e.audit.LogEvent("fraud_warning",
			fmt.Sprintf("player flagged for suspicious activity (suspicion %d)", profile.Suspicion),
			security.SeverityWarning, profile.PlayerID)
	}

	if profile.Suspicion >= e.cfg.CriticalThreshold {
		eval.Critical = true
		e.audit.LogEvent("fraud_critical",
			fmt.Sprintf("player exceeded the fraud threshold (suspicion %d) and may be suspended", profile.Suspicion),
			security.SeverityCritical, profile.PlayerID)
	}

	return eval
}

// RiskScore computes the 0-100 risk estimate for a player.
func (e *Engine) RiskScore(ctx context.Context, playerID string) (int, error) {
	scope := common.GetScopeFromContext(ctx, "fraud.RiskScore")
	defer scope.Finish()

	mu := e.playerLock(playerID)
	mu.Lock()
	defer mu.Unlock()

	profile, err := e.store.GetProfile(scope.Ctx, playerID)
	if err != nil {
		scope.TraceError(err)
		return 0, fmt.Errorf("failed to load profile: %w", err)
	}

	return computeRiskScore(profile, e.now(), e.cfg.Decay), nil
}
