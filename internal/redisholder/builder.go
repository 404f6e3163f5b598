package redisholder

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Vk76/VideoProcessingSystem/internal/config"
)

func Build(ctx context.Context, cfg *config.RedisConfig, log *zap.Logger) (*Holder, error) {
	cl, err := newClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("create redis client: %w", err)
	}

	h := NewHolder(cl)

	go healthLoop(ctx, h, cfg, log)

	return h, nil
}

func healthLoop(ctx context.Context, h *Holder, cfg *config.RedisConfig, log *zap.Logger) {
	ping := func() {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := h.Get().Ping(pingCtx).Err()
		cancel()

		if err == nil {
			return
		}
		log.Warn("redis ping failed, attempting reconnect", zap.Error(err))

		newCl, newErr := newClient(cfg)
		if newErr != nil {
			log.Error("redis reconnect failed", zap.Error(newErr))
			return
		}

		old := h.swap(newCl)
		if old != nil {
			_ = old.Close()
		}
		log.Info("redis reconnected")
	}

	t := time.NewTicker(cfg.HealthCheckInterval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = h.Close()
			return
		case <-t.C:
			ping()
		}
	}
}

func newClient(cfg *config.RedisConfig) (*redis.Client, error) {
	cl := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := cl.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("error pinging redis server: %w", err)
	}

	return cl, nil
}
