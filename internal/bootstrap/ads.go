// Copyright (c) 2025 Dooficoin. All Rights Reserved.

package bootstrap

import (
	"github.com/sirupsen/logrus"

	"github.com/Dooficoin/dooficoin-shield/internal/config"
	"github.com/Dooficoin/dooficoin-shield/pkg/ads"
	"github.com/Dooficoin/dooficoin-shield/pkg/security"
)

// InitAdConfigProvider builds the static ad configuration provider from
// the environment settings.
func InitAdConfigProvider(cfg *config.Config) *ads.StaticConfigProvider {
	return ads.NewStaticConfigProvider(&ads.Config{
		ID: cfg.AdConfigID,
		Settings: ads.Settings{
			LoginAdsEnabled:     cfg.LoginAdsEnabled,
			MiningAdsEnabled:    cfg.MiningAdsEnabled,
			AdIntervalMinutes:   cfg.AdIntervalMinutes,
			AdProtectionSeconds: cfg.AdProtectionSeconds,
			FraudScoreThreshold: cfg.FraudScoreThreshold,
		},
	})
}

// InitAdUnitStore seeds one active unit per known placement.
func InitAdUnitStore(cfg *config.Config) *ads.MemoryUnitStore {
	return ads.NewMemoryUnitStore(
		ads.AdUnit{ID: cfg.AdConfigID + "-login", ConfigID: cfg.AdConfigID, Placement: ads.PlacementLogin, Active: cfg.LoginAdsEnabled},
		ads.AdUnit{ID: cfg.AdConfigID + "-mining", ConfigID: cfg.AdConfigID, Placement: ads.PlacementMining, Active: cfg.MiningAdsEnabled},
	)
}

// InitAdEngines wires the eligibility and lifecycle engines.
func InitAdEngines(
	configs ads.ConfigProvider,
	units ads.UnitStore,
	displays ads.DisplayStore,
	risk ads.RiskScorer,
	actions ads.ActionRecorder,
	audit security.Logger,
) (*ads.EligibilityEngine, *ads.LifecycleEngine) {
	eligibility := ads.NewEligibilityEngine(configs, units, displays, risk, audit)
	lifecycle := ads.NewLifecycleEngine(displays, configs, actions, audit)
	logrus.Info("initialized ad eligibility and lifecycle engines")
	return eligibility, lifecycle
}
