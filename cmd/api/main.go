package main

import (
	"log"
	"time"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"

	"github.com/Vk76/VideoProcessingSystem/internal/app"
	"github.com/Vk76/VideoProcessingSystem/internal/config"
	"github.com/Vk76/VideoProcessingSystem/internal/logger"
)

const version = "v1"

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatal(err)
	}

	logg, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logg.Sync() }()

	err = sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.Sentry.DSN,
		Environment: cfg.Sentry.Environment,
		Release:     version,
	})
	if err != nil {
		log.Fatalf("sentry.Init: %s", err)
	}

	// Flush buffered events before the program terminates.
	defer sentry.Flush(2 * time.Second)

	a, err := app.New(cfg, logg)
	if err != nil {
		logg.Fatal("failed to build application", zap.Error(err))
	}

	if err := a.Run(); err != nil {
		logg.Fatal("server stopped", zap.Error(err))
	}
}
