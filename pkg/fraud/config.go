package fraud

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Dooficoin/dooficoin-shield/pkg/common"
)

// DetectorConfig is the base configuration for all detectors.
// This is typically loaded from a YAML configuration file.
type DetectorConfig struct {
	ID         string                 `yaml:"id" json:"id"`
	Name       string                 `yaml:"name" json:"name"`
	Type       string                 `yaml:"type" json:"type"` // e.g. "builtin.bot_cadence"
	Enabled    bool                   `yaml:"enabled" json:"enabled"`
	Parameters map[string]interface{} `yaml:"parameters" json:"parameters"`
}

// GetInt retrieves an integer value from parameters with a default.
func (c *DetectorConfig) GetInt(key string, defaultValue int) int {
	if val, ok := c.Parameters[key]; ok {
		if intVal, ok := val.(int); ok {
			return intVal
		}
	}
	return defaultValue
}

// GetFloat retrieves a float value from parameters with a default.
func (c *DetectorConfig) GetFloat(key string, defaultValue float64) float64 {
	if val, ok := c.Parameters[key]; ok {
		switch v := val.(type) {
		case float64:
			return v
		case int:
			return float64(v)
		}
	}
	return defaultValue
}

// GetString retrieves a string value from parameters with a default.
func (c *DetectorConfig) GetString(key string, defaultValue string) string {
	if val, ok := c.Parameters[key]; ok {
		if strVal, ok := val.(string); ok {
			return strVal
		}
	}
	return defaultValue
}

// GetBool retrieves a boolean value from parameters with a default.
func (c *DetectorConfig) GetBool(key string, defaultValue bool) bool {
	if val, ok := c.Parameters[key]; ok {
		if boolVal, ok := val.(bool); ok {
			return boolVal
		}
	}
	return defaultValue
}

// DecayConfig controls optional suspicion decay. Disabled by default:
// observed behavior never lowers accumulated suspicion on its own.
type DecayConfig struct {
	Enabled bool    `yaml:"enabled" json:"enabled"`
	PerHour float64 `yaml:"perHour" json:"perHour"`
}

// Config represents the complete fraud detection configuration.
type Config struct {
	Detectors []DetectorConfig `yaml:"detectors"`

	// WarnThreshold is the suspicion score at which the one-time player
	// warning is issued.
	WarnThreshold int `yaml:"warnThreshold"`

	// CriticalThreshold is the suspicion score at which a critical
	// signal is surfaced for external enforcement.
	CriticalThreshold int `yaml:"criticalThreshold"`

	Decay DecayConfig `yaml:"decay"`
}

// DefaultConfig returns the detection configuration used when no YAML
// file is provided: all builtin detectors enabled with their default
// thresholds.
func DefaultConfig() *Config {
	return &Config{
		Detectors: []DetectorConfig{
			{ID: "bot_cadence", Type: "builtin.bot_cadence", Enabled: true},
			{ID: "self_elimination", Type: "builtin.self_elimination", Enabled: true},
			{ID: "coin_gain", Type: "builtin.coin_gain", Enabled: true},
			{ID: "rapid_purchases", Type: "builtin.rapid_purchases", Enabled: true},
		},
		WarnThreshold:     20,
		CriticalThreshold: 50,
	}
}

// LoadConfig loads detection configuration from a YAML file.
// Supports environment variable expansion in the form ${VAR_NAME} or
// ${VAR_NAME:default}.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	expanded := expandEnvVars(string(data))

	config := DefaultConfig()
	config.Detectors = nil
	if err := yaml.Unmarshal([]byte(expanded), config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if len(config.Detectors) == 0 {
		config.Detectors = DefaultConfig().Detectors
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Validate validates the configuration for common errors.
func (c *Config) Validate() error {
	ids := make(map[string]bool)
	for _, d := range c.Detectors {
		if d.ID == "" {
			return fmt.Errorf("detector with empty ID found")
		}
		if ids[d.ID] {
			return fmt.Errorf("duplicate detector ID: %s", d.ID)
		}
		ids[d.ID] = true

		if d.Type == "" {
			return fmt.Errorf("detector %s has empty type", d.ID)
		}
	}

	if c.WarnThreshold <= 0 {
		return fmt.Errorf("warnThreshold must be positive, got %d", c.WarnThreshold)
	}
	if c.CriticalThreshold < c.WarnThreshold {
		return fmt.Errorf("criticalThreshold (%d) must not be below warnThreshold (%d)",
			c.CriticalThreshold, c.WarnThreshold)
	}
	if c.Decay.Enabled && c.Decay.PerHour <= 0 {
		return fmt.Errorf("decay.perHour must be positive when decay is enabled")
	}

	return nil
}

// expandEnvVars expands environment variables in the format ${VAR} or ${VAR:default}.
func expandEnvVars(s string) string {
	return os.Expand(s, func(key string) string {
		parts := strings.SplitN(key, ":", 2)
		varName := parts[0]
		defaultValue := ""
		if len(parts) == 2 {
			defaultValue = parts[1]
		}

		return common.GetEnv(varName, defaultValue)
	})
}
