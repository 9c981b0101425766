// Copyright (c) 2025 Dooficoin. All Rights Reserved.

package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Load reads configuration from environment variables. A .env file is
// loaded first when present (local development); in production the
// variables are injected directly.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Warnf("no .env file found or error loading it: %v (this is normal in production)", err)
	} else {
		logrus.Infof("loaded environment variables from .env file")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config from environment: %w", err)
	}

	return cfg, nil
}

// Validate performs custom validation on the configuration.
func (c *Config) Validate() error {
	if c.MetricsPort < 1 || c.MetricsPort > 65535 {
		return fmt.Errorf("invalid METRICS_PORT: %d (must be 1-65535)", c.MetricsPort)
	}

	if c.StorageBackend != "redis" && c.StorageBackend != "memory" {
		return fmt.Errorf("invalid STORAGE_BACKEND: %q (must be redis or memory)", c.StorageBackend)
	}

	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %q", c.LogLevel)
	}

	if c.AdIntervalMinutes < 0 || c.AdProtectionSeconds < 0 {
		return fmt.Errorf("ad interval and protection must not be negative")
	}
	if c.FraudScoreThreshold < 0 || c.FraudScoreThreshold > 100 {
		return fmt.Errorf("invalid FRAUD_SCORE_THRESHOLD: %d (must be 0-100)", c.FraudScoreThreshold)
	}

	if c.RequestLimit <= 0 || c.RequestWindowSeconds <= 0 || c.RequestBlockSeconds <= 0 {
		return fmt.Errorf("request throttle limits must be positive")
	}
	if c.LoginAttemptLimit <= 0 || c.LoginWindowMinutes <= 0 || c.LoginBlockSeconds <= 0 {
		return fmt.Errorf("login guard limits must be positive")
	}

	return nil
}
