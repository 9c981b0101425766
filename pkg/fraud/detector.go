package fraud

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Detector inspects a player profile after an action is recorded and
// reports a finding when a suspicious pattern is present. Detectors are
// registered in a Registry and evaluated by the Engine.
type Detector interface {
	// ID returns unique detector identifier.
	ID() string

	// Name returns human-readable detector name.
	Name() string

	// ActionTypes returns which action types trigger this detector.
	// An empty slice means the detector runs on every action.
	ActionTypes() []string

	// Evaluate checks the profile for the detector's pattern.
	// Returns true and a finding when the pattern matches, false
	// otherwise. Returns error only for unexpected failures.
	Evaluate(ctx context.Context, profile *Profile) (bool, *Finding, error)

	// Config returns the detector's configuration.
	Config() DetectorConfig
}

// Finding represents a detector match.
type Finding struct {
	DetectorID string                 // ID of the detector that matched
	PlayerID   string                 // Player the finding is about
	Timestamp  time.Time              // When the finding was produced
	AlertType  string                 // Alert type tag (e.g. "bot_activity")
	Suspicion  int                    // Suspicion points to add
	Details    map[string]interface{} // Pattern-specific evidence
}

// NewFinding creates a finding with an empty details map.
func NewFinding(detectorID, playerID, alertType string, suspicion int) *Finding {
	return &Finding{
		DetectorID: detectorID,
		PlayerID:   playerID,
		Timestamp:  time.Now(),
		AlertType:  alertType,
		Suspicion:  suspicion,
		Details:    make(map[string]interface{}),
	}
}

// WithDetail adds evidence to the finding and returns it for chaining.
func (f *Finding) WithDetail(key string, value interface{}) *Finding {
	f.Details[key] = value
	return f
}

// Registry manages available detectors.
// It provides thread-safe registration and lookup.
type Registry struct {
	detectors map[string]Detector
	mu        sync.RWMutex
}

// NewRegistry creates a new empty detector registry.
func NewRegistry() *Registry {
	return &Registry{
		detectors: make(map[string]Detector),
	}
}

// Register adds a detector to the registry.
// Returns an error if a detector with the same ID already exists.
func (r *Registry) Register(d Detector) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.detectors[d.ID()]; exists {
		return fmt.Errorf("detector %s already registered", d.ID())
	}

	r.detectors[d.ID()] = d
	return nil
}

// Get returns a detector by ID, or nil if it doesn't exist.
func (r *Registry) Get(id string) Detector {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.detectors[id]
}

// GetByActionType returns all enabled detectors that run for the given
// action type, in no particular order.
func (r *Registry) GetByActionType(actionType string) []Detector {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matching []Detector
	for _, d := range r.detectors {
		if !d.Config().Enabled {
			continue
		}

		types := d.ActionTypes()
		if len(types) == 0 {
			matching = append(matching, d)
			continue
		}

		for _, t := range types {
			if t == actionType {
				matching = append(matching, d)
				break
			}
		}
	}

	return matching
}

// GetAll returns all registered detectors.
func (r *Registry) GetAll() []Detector {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Detector, 0, len(r.detectors))
	for _, d := range r.detectors {
		out = append(out, d)
	}

	return out
}

// Count returns the number of registered detectors.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.detectors)
}
