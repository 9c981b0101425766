// Copyright (c) 2025 Dooficoin. All Rights Reserved.

package app

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/Dooficoin/dooficoin-shield/internal/bootstrap"
	"github.com/Dooficoin/dooficoin-shield/internal/config"
	"github.com/Dooficoin/dooficoin-shield/internal/server"
	"github.com/Dooficoin/dooficoin-shield/pkg/ads"
	"github.com/Dooficoin/dooficoin-shield/pkg/fraud"
	"github.com/Dooficoin/dooficoin-shield/pkg/security"
)

// App holds all application dependencies and manages the application
// lifecycle. The game backend embeds it and calls the engines directly;
// running it standalone serves metrics and keeps shared state warm.
type App struct {
	cfg               *config.Config
	metricsServer     *server.MetricsServer
	redisClient       *redis.Client
	shutdownTelemetry func(context.Context) error

	fraudEngine *fraud.Engine
	eligibility *ads.EligibilityEngine
	lifecycle   *ads.LifecycleEngine
	throttles   *bootstrap.Throttles
}

// New creates and initializes a new application instance. Components are
// initialized in dependency order: storage, detection config, engines,
// servers, telemetry.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	logrus.Info("initializing application...")

	app := &App{cfg: cfg}
	audit := security.NewAuditLogger(nil)

	var profileStore fraud.ProfileStore
	var displayStore ads.DisplayStore
	if cfg.StorageBackend == "redis" {
		if err := app.initRedis(ctx); err != nil {
			return nil, fmt.Errorf("failed to init Redis: %w", err)
		}
		profileStore = fraud.NewRedisProfileStore(app.redisClient, fraud.RedisProfileStoreConfig{
			TTL: time.Duration(cfg.ProfileTTLHours) * time.Hour,
		})
		displayStore = ads.NewRedisDisplayStore(app.redisClient, time.Duration(cfg.DisplayTTLHours)*time.Hour)
	} else {
		logrus.Warn("using in-memory storage: state is lost on restart and not shared across instances")
		profileStore = fraud.NewMemoryProfileStore()
		displayStore = ads.NewMemoryDisplayStore()
	}

	detection, err := bootstrap.LoadDetectionConfig(cfg)
	if err != nil {
		return nil, err
	}

	app.fraudEngine, err = bootstrap.InitFraudEngine(profileStore, detection, audit)
	if err != nil {
		return nil, fmt.Errorf("failed to init fraud engine: %w", err)
	}

	configProvider := bootstrap.InitAdConfigProvider(cfg)
	unitStore := bootstrap.InitAdUnitStore(cfg)
	app.eligibility, app.lifecycle = bootstrap.InitAdEngines(
		configProvider, unitStore, displayStore, app.fraudEngine, app.fraudEngine, audit)

	app.throttles = bootstrap.InitThrottles(cfg, audit)

	app.metricsServer = server.NewMetricsServer(cfg.MetricsPort, "/metrics")
	if err := app.metricsServer.Setup(); err != nil {
		return nil, fmt.Errorf("failed to setup metrics server: %w", err)
	}

	if cfg.OtelEnabled {
		shutdownTelemetry, err := server.SetupTelemetry(ctx, cfg.ZipkinEndpoint, cfg.ServiceName, cfg.Environment, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to setup telemetry: %w", err)
		}
		app.shutdownTelemetry = shutdownTelemetry
	}

	logrus.Info("application initialized successfully")

	return app, nil
}

// initRedis initializes the Redis client, retrying the initial ping with
// exponential backoff.
func (a *App) initRedis(ctx context.Context) error {
	client := redis.NewClient(&redis.Options{
		Addr:         a.cfg.RedisHost + ":" + a.cfg.RedisPort,
		Password:     a.cfg.RedisPassword,
		DB:           0,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Duration(a.cfg.RedisRetryDelayMs) * time.Millisecond
	maxRetries := backoff.WithMaxRetries(b, uint64(a.cfg.RedisMaxRetries))

	err := backoff.Retry(
		func() error {
			_, err := client.Ping(ctx).Result()
			if err != nil {
				logrus.Warnf("Redis connection failed: %v, retrying...", err)
				return err
			}
			return nil
		},
		maxRetries,
	)

	if err != nil {
		return err
	}

	a.redisClient = client
	logrus.Info("Redis client initialized")
	return nil
}

// FraudEngine returns the behavioral scoring engine.
func (a *App) FraudEngine() *fraud.Engine {
	return a.fraudEngine
}

// AdEligibility returns the ad eligibility engine.
func (a *App) AdEligibility() *ads.EligibilityEngine {
	return a.eligibility
}

// AdLifecycle returns the ad display lifecycle engine.
func (a *App) AdLifecycle() *ads.LifecycleEngine {
	return a.lifecycle
}

// Throttles returns the request and login throttling layer.
func (a *App) Throttles() *bootstrap.Throttles {
	return a.throttles
}
