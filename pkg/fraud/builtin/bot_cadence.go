// Package builtin contains the standard fraud pattern detectors.
package builtin

import (
	"context"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/Dooficoin/dooficoin-shield/pkg/fraud"
)

const (
	// BotCadenceDetectorType is the factory type tag for this detector.
	BotCadenceDetectorType = "builtin.bot_cadence"

	// DefaultCadenceSampleSize is how many trailing actions are examined.
	DefaultCadenceSampleSize = 5

	// DefaultCadenceMaxMeanSeconds is the mean inter-arrival threshold.
	DefaultCadenceMaxMeanSeconds = 1.0

	// DefaultCadenceMaxStdDevSeconds is the consistency threshold.
	DefaultCadenceMaxStdDevSeconds = 0.2

	// DefaultCadenceSuspicion is added on a match.
	DefaultCadenceSuspicion = 10
)

// BotCadenceDetector flags machine-like action cadence: the last few
// actions arriving both very fast (low mean gap) and very regularly
// (low population standard deviation).
type BotCadenceDetector struct {
	config     fraud.DetectorConfig
	sampleSize int
	maxMean    float64
	maxStdDev  float64
	suspicion  int
}

// NewBotCadenceDetector creates a bot cadence detector.
func NewBotCadenceDetector(config fraud.DetectorConfig) *BotCadenceDetector {
	return &BotCadenceDetector{
		config:     config,
		sampleSize: config.GetInt("sample_size", DefaultCadenceSampleSize),
		maxMean:    config.GetFloat("max_mean_seconds", DefaultCadenceMaxMeanSeconds),
		maxStdDev:  config.GetFloat("max_stddev_seconds", DefaultCadenceMaxStdDevSeconds),
		suspicion:  config.GetInt("suspicion", DefaultCadenceSuspicion),
	}
}

// ID returns the detector identifier.
func (d *BotCadenceDetector) ID() string {
	return d.config.ID
}

// Name returns the detector name.
func (d *BotCadenceDetector) Name() string {
	return "Bot Cadence Detection"
}

// ActionTypes returns nil: cadence is evaluated on every action.
func (d *BotCadenceDetector) ActionTypes() []string {
	return nil
}

// Config returns the detector configuration.
func (d *BotCadenceDetector) Config() fraud.DetectorConfig {
	return d.config
}

// Evaluate checks the inter-arrival times of the trailing actions.
func (d *BotCadenceDetector) Evaluate(ctx context.Context, profile *fraud.Profile) (bool, *fraud.Finding, error) {
	recent := profile.Recent(d.sampleSize)
	if len(recent) < d.sampleSize {
		return false, nil, nil
	}

	diffs := make([]float64, 0, len(recent)-1)
	for i := 1; i < len(recent); i++ {
		diffs = append(diffs, recent[i].Epoch()-recent[i-1].Epoch())
	}

	mean := 0.0
	for _, diff := range diffs {
		mean += diff
	}
	mean /= float64(len(diffs))

	if mean >= d.maxMean {
		return false, nil, nil
	}

	variance := 0.0
	for _, diff := range diffs {
		variance += (diff - mean) * (diff - mean)
	}
	stdDev := math.Sqrt(variance / float64(len(diffs)))

	if stdDev >= d.maxStdDev {
		return false, nil, nil
	}

	types := make([]string, 0, len(recent))
	for _, a := range recent {
		types = append(types, a.Type)
	}

	logrus.Debugf("bot cadence matched for player %s: mean=%.3fs stddev=%.3fs",
		profile.PlayerID, mean, stdDev)

	finding := fraud.NewFinding(d.ID(), profile.PlayerID, "bot_activity", d.suspicion).
		WithDetail("avg_time_between_actions", mean).
		WithDetail("std_dev", stdDev).
		WithDetail("action_types", types)

	return true, finding, nil
}
