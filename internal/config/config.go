// Copyright (c) 2025 Dooficoin. All Rights Reserved.

package config

// Config holds all application configuration loaded from environment
// variables via github.com/caarlos0/env.
type Config struct {
	// Server configuration
	MetricsPort int    `env:"METRICS_PORT" envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"dev"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"DooficoinShield"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Storage configuration. "redis" shares state across instances,
	// "memory" keeps everything process-local for single-node setups.
	StorageBackend    string `env:"STORAGE_BACKEND" envDefault:"redis"`
	RedisHost         string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort         string `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword     string `env:"REDIS_PASSWORD"`
	RedisMaxRetries   int    `env:"REDIS_MAX_RETRIES" envDefault:"5"`
	RedisRetryDelayMs int    `env:"REDIS_RETRY_DELAY_MS" envDefault:"1000"`

	// Retention overrides, in hours. Zero keeps the package defaults.
	ProfileTTLHours int `env:"FRAUD_PROFILE_TTL_HOURS" envDefault:"0"`
	DisplayTTLHours int `env:"AD_DISPLAY_TTL_HOURS" envDefault:"0"`

	// Fraud detection configuration
	DetectionConfigPath string `env:"DETECTION_CONFIG_PATH" envDefault:"config/detection.yaml"`

	// Ad settings served by the static configuration provider when no
	// external ad console is wired in.
	AdConfigID          string `env:"AD_CONFIG_ID" envDefault:"default"`
	LoginAdsEnabled     bool   `env:"LOGIN_ADS_ENABLED" envDefault:"true"`
	MiningAdsEnabled    bool   `env:"MINING_ADS_ENABLED" envDefault:"true"`
	AdIntervalMinutes   int    `env:"AD_INTERVAL_MINUTES" envDefault:"10"`
	AdProtectionSeconds int    `env:"AD_PROTECTION_SECONDS" envDefault:"30"`
	FraudScoreThreshold int    `env:"FRAUD_SCORE_THRESHOLD" envDefault:"80"`

	// Throttle configuration
	RequestLimit         int `env:"REQUEST_LIMIT" envDefault:"10"`
	RequestWindowSeconds int `env:"REQUEST_WINDOW_SECONDS" envDefault:"60"`
	RequestBlockSeconds  int `env:"REQUEST_BLOCK_SECONDS" envDefault:"300"`
	LoginAttemptLimit    int `env:"LOGIN_ATTEMPT_LIMIT" envDefault:"5"`
	LoginWindowMinutes   int `env:"LOGIN_WINDOW_MINUTES" envDefault:"15"`
	LoginBlockSeconds    int `env:"LOGIN_BLOCK_SECONDS" envDefault:"1800"`

	// IPBlacklist holds statically banned addresses.
	IPBlacklist []string `env:"IP_BLACKLIST" envSeparator:","`

	// Telemetry configuration
	OtelEnabled    bool   `env:"OTEL_ENABLED" envDefault:"true"`
	ZipkinEndpoint string `env:"ZIPKIN_ENDPOINT" envDefault:"http://localhost:9411/api/v2/spans"`
}
