package fraud

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if len(cfg.Detectors) != 4 {
		t.Errorf("default config has %d detectors, expected 4", len(cfg.Detectors))
	}
	if cfg.WarnThreshold != 20 || cfg.CriticalThreshold != 50 {
		t.Errorf("thresholds = %d/%d, expected 20/50", cfg.WarnThreshold, cfg.CriticalThreshold)
	}
	if cfg.Decay.Enabled {
		t.Errorf("decay should be disabled by default")
	}
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "detection.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfigFile(t, `
warnThreshold: 25
criticalThreshold: 60
detectors:
  - id: cadence
    name: Bot Cadence
    type: builtin.bot_cadence
    enabled: true
    parameters:
      sample_size: 8
      max_mean_seconds: 0.5
  - id: purchases
    type: builtin.rapid_purchases
    enabled: false
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.WarnThreshold != 25 || cfg.CriticalThreshold != 60 {
		t.Errorf("thresholds = %d/%d, expected 25/60", cfg.WarnThreshold, cfg.CriticalThreshold)
	}
	if len(cfg.Detectors) != 2 {
		t.Fatalf("got %d detectors, expected 2", len(cfg.Detectors))
	}

	cadence := cfg.Detectors[0]
	if cadence.GetInt("sample_size", 0) != 8 {
		t.Errorf("sample_size = %d, expected 8", cadence.GetInt("sample_size", 0))
	}
	if cadence.GetFloat("max_mean_seconds", 0) != 0.5 {
		t.Errorf("max_mean_seconds = %f, expected 0.5", cadence.GetFloat("max_mean_seconds", 0))
	}
	if cfg.Detectors[1].Enabled {
		t.Errorf("purchases detector should be disabled")
	}
}

func TestLoadConfigEnvExpansion(t *testing.T) {
	t.Setenv("SHIELD_WARN_THRESHOLD", "35")

	path := writeConfigFile(t, `
warnThreshold: ${SHIELD_WARN_THRESHOLD:20}
criticalThreshold: ${SHIELD_CRITICAL_THRESHOLD:70}
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.WarnThreshold != 35 {
		t.Errorf("WarnThreshold = %d, expected the env override 35", cfg.WarnThreshold)
	}
	if cfg.CriticalThreshold != 70 {
		t.Errorf("CriticalThreshold = %d, expected the default 70", cfg.CriticalThreshold)
	}
	// Detectors fall back to the builtin set when the file names none.
	if len(cfg.Detectors) != 4 {
		t.Errorf("got %d detectors, expected the default 4", len(cfg.Detectors))
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig("/nonexistent/detection.yaml"); err == nil {
		t.Errorf("missing config file should fail")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
	}{
		{"empty detector id", func(c *Config) { c.Detectors[0].ID = "" }},
		{"duplicate detector id", func(c *Config) { c.Detectors[1].ID = c.Detectors[0].ID }},
		{"empty detector type", func(c *Config) { c.Detectors[0].Type = "" }},
		{"zero warn threshold", func(c *Config) { c.WarnThreshold = 0 }},
		{"critical below warn", func(c *Config) { c.CriticalThreshold = c.WarnThreshold - 1 }},
		{"decay without rate", func(c *Config) { c.Decay = DecayConfig{Enabled: true} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("expected a validation error")
			}
		})
	}
}
