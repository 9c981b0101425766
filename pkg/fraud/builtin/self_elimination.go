package builtin

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/Dooficoin/dooficoin-shield/pkg/fraud"
)

const (
	// SelfEliminationDetectorType is the factory type tag for this detector.
	SelfEliminationDetectorType = "builtin.self_elimination"

	// DefaultSelfElimMinCount is the lifetime count that must be exceeded.
	DefaultSelfElimMinCount = 50

	// DefaultSelfElimMinRatio is the share of all actions that must be
	// exceeded.
	DefaultSelfElimMinRatio = 0.8

	// DefaultSelfElimSuspicion is added on a match.
	DefaultSelfElimSuspicion = 5
)

// SelfEliminationDetector flags players who self-eliminate both often in
// absolute terms and as the dominant share of everything they do.
type SelfEliminationDetector struct {
	config    fraud.DetectorConfig
	minCount  int
	minRatio  float64
	suspicion int
}

// NewSelfEliminationDetector creates a self-elimination detector.
func NewSelfEliminationDetector(config fraud.DetectorConfig) *SelfEliminationDetector {
	return &SelfEliminationDetector{
		config:    config,
		minCount:  config.GetInt("min_count", DefaultSelfElimMinCount),
		minRatio:  config.GetFloat("min_ratio", DefaultSelfElimMinRatio),
		suspicion: config.GetInt("suspicion", DefaultSelfElimSuspicion),
	}
}

// ID returns the detector identifier.
func (d *SelfEliminationDetector) ID() string {
	return d.config.ID
}

// Name returns the detector name.
func (d *SelfEliminationDetector) Name() string {
	return "Excessive Self-Elimination Detection"
}

// ActionTypes returns nil: the ratio is re-checked on every action.
func (d *SelfEliminationDetector) ActionTypes() []string {
	return nil
}

// Config returns the detector configuration.
func (d *SelfEliminationDetector) Config() fraud.DetectorConfig {
	return d.config
}

// Evaluate checks lifetime self-elimination count and ratio.
func (d *SelfEliminationDetector) Evaluate(ctx context.Context, profile *fraud.Profile) (bool, *fraud.Finding, error) {
	count := profile.ActionCounts[fraud.ActionSelfEliminate]
	if count <= d.minCount {
		return false, nil, nil
	}

	total := profile.TotalActions()
	if total == 0 {
		return false, nil, nil
	}

	ratio := float64(count) / float64(total)
	if ratio <= d.minRatio {
		return false, nil, nil
	}

	logrus.Debugf("excessive self-elimination for player %s: count=%d ratio=%.2f",
		profile.PlayerID, count, ratio)

	finding := fraud.NewFinding(d.ID(), profile.PlayerID, "excessive_self_elimination", d.suspicion).
		WithDetail("count", count).
		WithDetail("percentage", ratio)

	return true, finding, nil
}
