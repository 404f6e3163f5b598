package queue

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/Vk76/VideoProcessingSystem/internal/config"
)

// Connector dials the broker with bounded exponential backoff. The same
// policy serves the producer (fresh connection per publish) and the consumer
// (long-lived subscription, re-dialed on drop).
type Connector struct {
	url        string
	maxRetries int
	retryBase  time.Duration
	log        *zap.Logger

	dial  func(url string) (*amqp.Connection, error)
	sleep func(ctx context.Context, d time.Duration) error
}

func NewConnector(cfg config.RabbitMQConfig, log *zap.Logger) *Connector {
	return &Connector{
		url:        cfg.URL(),
		maxRetries: cfg.MaxRetries,
		retryBase:  cfg.RetryBase,
		log:        log,
		dial:       amqp.Dial,
		sleep:      sleepContext,
	}
}

// Connect attempts up to maxRetries dials, doubling the delay between
// attempts starting from retryBase. No jitter. Cancelling ctx cuts the
// backoff short; a shutdown signal must not sit out a 16s sleep. The
// returned error wraps the last underlying cause.
func (c *Connector) Connect(ctx context.Context) (*amqp.Connection, error) {
	delay := c.retryBase

	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		conn, err := c.dial(c.url)
		if err == nil {
			c.log.Info("connected to RabbitMQ", zap.Int("attempt", attempt))
			return conn, nil
		}

		lastErr = err
		c.log.Warn("RabbitMQ connection attempt failed",
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		if attempt < c.maxRetries {
			if err := c.sleep(ctx, delay); err != nil {
				return nil, fmt.Errorf("connect to RabbitMQ: %w", err)
			}
			delay *= 2
		}
	}

	return nil, fmt.Errorf("connect to RabbitMQ after %d attempts: %w", c.maxRetries, lastErr)
}

// Ping dials and immediately closes a connection. The dial itself is not
// cancellable, so it runs on the side and the caller's deadline decides how
// long the health check waits for it.
func (c *Connector) Ping(ctx context.Context) error {
	done := make(chan error, 1)
	go func() {
		conn, err := c.dial(c.url)
		if err == nil {
			err = conn.Close()
		}
		done <- err
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// declareQueue is safe to call on every publish and on every subscribe;
// the broker treats a matching re-declaration as a no-op.
func declareQueue(ch *amqp.Channel, name string) (amqp.Queue, error) {
	return ch.QueueDeclare(
		name,
		true,  // durable: survive a broker restart
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
}
