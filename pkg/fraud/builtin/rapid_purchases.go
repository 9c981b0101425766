package builtin

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/Dooficoin/dooficoin-shield/pkg/fraud"
)

const (
	// RapidPurchasesDetectorType is the factory type tag for this detector.
	RapidPurchasesDetectorType = "builtin.rapid_purchases"

	// DefaultPurchaseMinCount is the lifetime buy_item count that must
	// be exceeded.
	DefaultPurchaseMinCount = 5

	// DefaultPurchaseMinHistory is how many buy_item events must be in
	// the retained history.
	DefaultPurchaseMinHistory = 5

	// DefaultPurchaseMaxGapSeconds flags any consecutive pair of
	// purchases closer together than this.
	DefaultPurchaseMaxGapSeconds = 0.5

	// DefaultPurchaseSuspicion is added on a match.
	DefaultPurchaseSuspicion = 8
)

// RapidPurchasesDetector flags back-to-back purchases arriving faster
// than a human can navigate the shop.
type RapidPurchasesDetector struct {
	config     fraud.DetectorConfig
	minCount   int
	minHistory int
	maxGap     float64
	suspicion  int
}

// NewRapidPurchasesDetector creates a rapid purchases detector.
func NewRapidPurchasesDetector(config fraud.DetectorConfig) *RapidPurchasesDetector {
	return &RapidPurchasesDetector{
		config:     config,
		minCount:   config.GetInt("min_count", DefaultPurchaseMinCount),
		minHistory: config.GetInt("min_history", DefaultPurchaseMinHistory),
		maxGap:     config.GetFloat("max_gap_seconds", DefaultPurchaseMaxGapSeconds),
		suspicion:  config.GetInt("suspicion", DefaultPurchaseSuspicion),
	}
}

// ID returns the detector identifier.
func (d *RapidPurchasesDetector) ID() string {
	return d.config.ID
}

// Name returns the detector name.
func (d *RapidPurchasesDetector) Name() string {
	return "Rapid Purchases Detection"
}

// ActionTypes returns nil: the pattern is re-checked on every action.
func (d *RapidPurchasesDetector) ActionTypes() []string {
	return nil
}

// Config returns the detector configuration.
func (d *RapidPurchasesDetector) Config() fraud.DetectorConfig {
	return d.config
}

// Evaluate scans consecutive purchase pairs and stops at the first pair
// closer together than the configured gap.
func (d *RapidPurchasesDetector) Evaluate(ctx context.Context, profile *fraud.Profile) (bool, *fraud.Finding, error) {
	if profile.ActionCounts[fraud.ActionBuyItem] <= d.minCount {
		return false, nil, nil
	}

	buys := profile.ActionsOfType(fraud.ActionBuyItem)
	if len(buys) < d.minHistory {
		return false, nil, nil
	}

	recent := buys
	if len(recent) > d.minHistory {
		recent = recent[len(recent)-d.minHistory:]
	}

	matched := false
	for i := 1; i < len(recent); i++ {
		if recent[i].Epoch()-recent[i-1].Epoch() < d.maxGap {
			matched = true
			break
		}
	}
	if !matched {
		return false, nil, nil
	}
	purchases := make([]map[string]interface{}, 0, len(recent))
	for _, a := range recent {
		purchases = append(purchases, map[string]interface{}{
			"item_id": a.Detail("item_id"),
			"price":   a.Detail("price"),
		})
	}

	logrus.Debugf("rapid purchases for player %s: %d purchases scanned", profile.PlayerID, len(buys))

	finding := fraud.NewFinding(d.ID(), profile.PlayerID, "rapid_purchases", d.suspicion).
		WithDetail("purchases", purchases)

	return true, finding, nil
}
