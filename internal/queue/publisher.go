package queue

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/Vk76/VideoProcessingSystem/internal/metrics"
)

// Publisher opens a fresh connection per message. That is a deliberate
// policy carried over from the deployment this replaces: publishes are rare
// relative to their cost, and a per-call connection keeps the HTTP side free
// of broker state. No retry happens here; the caller decides whether the
// whole upload is retried.
type Publisher struct {
	conn  *Connector
	queue string
	log   *zap.Logger
}

func NewPublisher(conn *Connector, queue string, log *zap.Logger) *Publisher {
	return &Publisher{conn: conn, queue: queue, log: log}
}

func (p *Publisher) Publish(ctx context.Context, job JobDescriptor) error {
	if err := p.publish(ctx, job); err != nil {
		metrics.QueuePublishFailuresTotal.Inc()
		return err
	}

	metrics.QueueMessagesTotal.Inc()
	p.log.Info("published job to queue", zap.String("job_id", job.JobID))
	return nil
}

func (p *Publisher) publish(ctx context.Context, job JobDescriptor) error {
	conn, err := p.conn.Connect(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	if _, err := declareQueue(ch, p.queue); err != nil {
		return fmt.Errorf("declare queue %s: %w", p.queue, err)
	}

	body, err := job.Encode()
	if err != nil {
		return fmt.Errorf("encode job %s: %w", job.JobID, err)
	}

	err = ch.PublishWithContext(ctx,
		"",      // default exchange
		p.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish job %s: %w", job.JobID, err)
	}
	return nil
}

// Ping reports whether the broker is reachable.
func (p *Publisher) Ping(ctx context.Context) error {
	return p.conn.Ping(ctx)
}
