// Copyright (c) 2025 Dooficoin. All Rights Reserved.

package bootstrap

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/Dooficoin/dooficoin-shield/internal/config"
	"github.com/Dooficoin/dooficoin-shield/pkg/fraud"
	"github.com/Dooficoin/dooficoin-shield/pkg/fraud/builtin"
	"github.com/Dooficoin/dooficoin-shield/pkg/security"
)

// LoadDetectionConfig loads the detector configuration from the path in
// cfg, falling back to the builtin defaults when the file is absent.
func LoadDetectionConfig(cfg *config.Config) (*fraud.Config, error) {
	if _, err := os.Stat(cfg.DetectionConfigPath); os.IsNotExist(err) {
		logrus.Warnf("no detection config at %s, using builtin defaults", cfg.DetectionConfigPath)
		return fraud.DefaultConfig(), nil
	}

	detection, err := fraud.LoadConfig(cfg.DetectionConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load detection config from %s: %w", cfg.DetectionConfigPath, err)
	}
	logrus.Infof("loaded detection configuration from %s", cfg.DetectionConfigPath)
	return detection, nil
}

// InitFraudEngine registers the builtin detectors and builds the scoring
// engine on top of the given profile store.
func InitFraudEngine(store fraud.ProfileStore, detection *fraud.Config, audit security.Logger) (*fraud.Engine, error) {
	builtin.RegisterDetectors()

	registry := fraud.NewRegistry()
	if err := fraud.RegisterDetectors(registry, detection.Detectors); err != nil {
		return nil, fmt.Errorf("failed to register detectors: %w", err)
	}
	logrus.Infof("registered %d fraud detectors", registry.Count())

	return fraud.NewEngine(store, registry, fraud.NewAlertLog(), audit, detection), nil
}
