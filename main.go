// Copyright (c) 2025 Dooficoin. All Rights Reserved.

package main

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/Dooficoin/dooficoin-shield/internal/app"
	"github.com/Dooficoin/dooficoin-shield/internal/config"
)

func main() {
	logrus.Info("starting dooficoin-shield...")

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("invalid configuration: %v", err)
	}

	logrus.SetFormatter(&logrus.JSONFormatter{})
	level, _ := logrus.ParseLevel(cfg.LogLevel)
	logrus.SetLevel(level)

	ctx := context.Background()

	application, err := app.New(ctx, cfg)
	if err != nil {
		logrus.Fatalf("failed to initialize application: %v", err)
	}

	if err := application.Run(ctx); err != nil {
		logrus.Fatalf("application error: %v", err)
	}
}
