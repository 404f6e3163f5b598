package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Vk76/VideoProcessingSystem/internal/cache"
	"github.com/Vk76/VideoProcessingSystem/internal/config"
	"github.com/Vk76/VideoProcessingSystem/internal/entities"
	"github.com/Vk76/VideoProcessingSystem/internal/logger"
	"github.com/Vk76/VideoProcessingSystem/internal/processor"
	"github.com/Vk76/VideoProcessingSystem/internal/queue"
	"github.com/Vk76/VideoProcessingSystem/internal/redisholder"
	"github.com/Vk76/VideoProcessingSystem/internal/repository/jobs"
	"github.com/Vk76/VideoProcessingSystem/internal/s3"
	"github.com/Vk76/VideoProcessingSystem/internal/transcoder"
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
	defer sentry.Flush(2 * time.Second)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	blobs, err := s3.NewStorage(ctx, &cfg.S3)
	if err != nil {
		logg.Fatal("failed to init blob storage", zap.Error(err))
	}

	repo, err := jobs.New(ctx, cfg.Database.DSN)
	if err != nil {
		logg.Fatal("failed to connect to database", zap.Error(err))
	}
	defer repo.Close()

	var ledger processor.Ledger = repo
	if holder, err := redisholder.Build(ctx, &cfg.Redis, logg); err != nil {
		// Status reads just go stale for a TTL; not worth refusing to start.
		logg.Warn("redis unavailable, status cache invalidation disabled", zap.Error(err))
	} else {
		ledger = &invalidatingLedger{
			Repository: repo,
			cache:      cache.NewCache(cache.StatusNamespace, holder, cfg.Redis.StatusTTL),
		}
	}

	engine := processor.NewEngine(
		blobs,
		transcoder.NewFFmpeg(cfg.Transcode.FFmpegPath, cfg.Transcode.FFprobePath),
		ledger,
		cfg.Worker.TempDir,
		cfg.Transcode.Timeout,
		cfg.Transcode.ThumbnailOffset,
		logg,
	)

	startMetricsServer(cfg.Worker.MetricsPort, logg)
	startHealthServer(cfg.Worker.HealthPort, engine, logg)

	connector := queue.NewConnector(cfg.RabbitMQ, logg)
	consumer := queue.NewConsumer(connector, cfg.RabbitMQ.Queue, engine, logg)

	logg.Info("worker starting", zap.String("queue", cfg.RabbitMQ.Queue))
	if err := consumer.Run(ctx); err != nil {
		logg.Error("consumer stopped", zap.Error(err))
		sentry.CaptureException(err)
		sentry.Flush(2 * time.Second)
		os.Exit(1)
	}
	logg.Info("worker stopped")
}

// invalidatingLedger drops the cached /status entry after every write so
// pollers never read a stale status for longer than one round trip.
type invalidatingLedger struct {
	*jobs.Repository
	cache *cache.Cache
}

func (l *invalidatingLedger) SetStatus(ctx context.Context, jobID string, status entities.JobStatus, errMsg string) error {
	if err := l.Repository.SetStatus(ctx, jobID, status, errMsg); err != nil {
		return err
	}
	// A failed invalidation just leaves the entry stale for one TTL.
	_ = l.cache.Remove(ctx, jobID)
	return nil
}

func (l *invalidatingLedger) SetResult(ctx context.Context, jobID, processedKey, thumbnailKey string) error {
	if err := l.Repository.SetResult(ctx, jobID, processedKey, thumbnailKey); err != nil {
		return err
	}
	_ = l.cache.Remove(ctx, jobID)
	return nil
}

func startMetricsServer(port int, logg *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		addr := fmt.Sprintf(":%d", port)
		if err := http.ListenAndServe(addr, mux); err != nil {
			logg.Error("metrics server stopped", zap.Error(err))
		}
	}()
}

func startHealthServer(port int, engine *processor.Engine, logg *zap.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":      "healthy",
			"active_jobs": engine.ActiveJobs(),
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
		})
	})
	go func() {
		addr := fmt.Sprintf(":%d", port)
		if err := http.ListenAndServe(addr, mux); err != nil {
			logg.Error("health server stopped", zap.Error(err))
		}
	}()
}
