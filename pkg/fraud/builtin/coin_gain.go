package builtin

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/Dooficoin/dooficoin-shield/pkg/fraud"
)

const (
	// CoinGainDetectorType is the factory type tag for this detector.
	CoinGainDetectorType = "builtin.coin_gain"

	// DefaultCoinGainMinCount is the lifetime earn_coins count that must
	// be exceeded.
	DefaultCoinGainMinCount = 20

	// DefaultCoinGainMinHistory is how many earn_coins events must be in
	// the retained history before the rate is computed.
	DefaultCoinGainMinHistory = 10

	// DefaultCoinGainMaxRate is the coins-per-second threshold. The game
	// economy trickles coins, so any sustained automated gain clears it.
	DefaultCoinGainMaxRate = 0.0000000001

	// DefaultCoinGainSuspicion is added on a match.
	DefaultCoinGainSuspicion = 15
)

// CoinGainDetector flags abnormal coin earn rates over the retained
// earn_coins events.
type CoinGainDetector struct {
	config     fraud.DetectorConfig
	minCount   int
	minHistory int
	maxRate    float64
	suspicion  int
}

// NewCoinGainDetector creates a coin gain detector.
func NewCoinGainDetector(config fraud.DetectorConfig) *CoinGainDetector {
	return &CoinGainDetector{
		config:     config,
		minCount:   config.GetInt("min_count", DefaultCoinGainMinCount),
		minHistory: config.GetInt("min_history", DefaultCoinGainMinHistory),
		maxRate:    config.GetFloat("max_coins_per_second", DefaultCoinGainMaxRate),
		suspicion:  config.GetInt("suspicion", DefaultCoinGainSuspicion),
	}
}

// ID returns the detector identifier.
func (d *CoinGainDetector) ID() string {
	return d.config.ID
}

// Name returns the detector name.
func (d *CoinGainDetector) Name() string {
	return "Abnormal Coin Gain Detection"
}

// ActionTypes returns nil: the rate is re-checked on every action.
func (d *CoinGainDetector) ActionTypes() []string {
	return nil
}

// Config returns the detector configuration.
func (d *CoinGainDetector) Config() fraud.DetectorConfig {
	return d.config
}

// Evaluate computes total earned amount divided by the elapsed time
// between the first and last retained earn_coins events. A zero elapsed
// time skips the rate computation entirely.
func (d *CoinGainDetector) Evaluate(ctx context.Context, profile *fraud.Profile) (bool, *fraud.Finding, error) {
	if profile.ActionCounts[fraud.ActionEarnCoins] <= d.minCount {
		return false, nil, nil
	}

	coinActions := profile.ActionsOfType(fraud.ActionEarnCoins)
	if len(coinActions) < d.minHistory {
		return false, nil, nil
	}

	total := 0.0
	for _, a := range coinActions {
		total += a.DetailFloat("amount")
	}

	elapsed := coinActions[len(coinActions)-1].Epoch() - coinActions[0].Epoch()
	if elapsed <= 0 {
		return false, nil, nil
	}

	rate := total / elapsed
	if rate <= d.maxRate {
		return false, nil, nil
	}

	logrus.Debugf("abnormal coin gain for player %s: %.6f coins/s over %.1fs",
		profile.PlayerID, rate, elapsed)

	finding := fraud.NewFinding(d.ID(), profile.PlayerID, "abnormal_coin_gain", d.suspicion).
		WithDetail("coins_per_second", rate).
		WithDetail("total_coins", total).
		WithDetail("time_span_seconds", elapsed)

	return true, finding, nil
}
