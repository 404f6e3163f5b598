// Package app wires the upload API together: migrations, the job ledger,
// the status cache, blob storage, the queue publisher and the HTTP surface.
package app

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/Vk76/VideoProcessingSystem/cmd/migrate"
	"github.com/Vk76/VideoProcessingSystem/internal/cache"
	"github.com/Vk76/VideoProcessingSystem/internal/config"
	"github.com/Vk76/VideoProcessingSystem/internal/queue"
	"github.com/Vk76/VideoProcessingSystem/internal/redisholder"
	"github.com/Vk76/VideoProcessingSystem/internal/repository/jobs"
	"github.com/Vk76/VideoProcessingSystem/internal/s3"
	"github.com/Vk76/VideoProcessingSystem/internal/transport/handler"
	"github.com/Vk76/VideoProcessingSystem/internal/transport/router"
	"github.com/Vk76/VideoProcessingSystem/internal/usecase"
)

type App struct {
	HTTPServer *http.Server
	log        *zap.Logger
}

func New(cfg *config.Config, log *zap.Logger) (*App, error) {
	ctx := context.Background()

	if err := migrate.Migrate(ctx, cfg.Database.DSN, migrate.Migrations); err != nil {
		return nil, err
	}

	ledger, err := jobs.New(ctx, cfg.Database.DSN)
	if err != nil {
		return nil, err
	}

	holder, err := redisholder.Build(ctx, &cfg.Redis, log)
	if err != nil {
		return nil, err
	}
	statusCache := cache.NewCache(cache.StatusNamespace, holder, cfg.Redis.StatusTTL)

	blobs, err := s3.NewStorage(ctx, &cfg.S3)
	if err != nil {
		return nil, err
	}

	connector := queue.NewConnector(cfg.RabbitMQ, log)
	publisher := queue.NewPublisher(connector, cfg.RabbitMQ.Queue, log)

	uploads := usecase.NewUploads(blobs, publisher, ledger, cfg.S3.Bucket, log)

	probes := map[string]handler.Pinger{
		"s3":       blobs,
		"database": pingerFunc(ledger.Ping),
		"rabbitmq": pingerFunc(publisher.Ping),
	}

	h := handler.New(uploads, ledger, statusCache, probes, cfg, log)
	r := router.NewRouter(h)

	s := &http.Server{
		Handler: r,
		Addr:    fmt.Sprintf(":%d", cfg.API.Port),
	}

	return &App{HTTPServer: s, log: log}, nil
}

func (a *App) Run() error {
	a.log.Info("starting server", zap.String("addr", a.HTTPServer.Addr))
	return a.HTTPServer.ListenAndServe()
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }
