package queue

import (
	"context"
	"errors"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/Vk76/VideoProcessingSystem/internal/metrics"
)

var errDeliveryChannelClosed = errors.New("delivery channel closed")

// Handler processes one decoded job. Failures must be absorbed by the
// handler itself; whatever happens, the consumer acks the message. The only
// redelivery path is the consumer process dying before the ack.
type Handler interface {
	Handle(ctx context.Context, job JobDescriptor)
}

// Consumer holds a long-lived subscription with prefetch=1: the broker will
// not deliver a second message until the current one is acked or rejected,
// which bounds this process to one transcode at a time.
type Consumer struct {
	conn    *Connector
	queue   string
	handler Handler
	log     *zap.Logger
}

func NewConsumer(conn *Connector, queue string, handler Handler, log *zap.Logger) *Consumer {
	return &Consumer{conn: conn, queue: queue, handler: handler, log: log}
}

// Run blocks until ctx is cancelled. The initial connect failing is fatal
// and returned to the caller. After that, a dropped subscription is
// re-established through the same bounded-backoff dial; Run only returns an
// error once a reconnect cycle is exhausted too.
func (c *Consumer) Run(ctx context.Context) error {
	conn, err := c.conn.Connect(ctx)
	if err != nil {
		return err
	}

	for {
		err := c.consume(ctx, conn)
		conn.Close()

		if ctx.Err() != nil {
			c.log.Info("consumer stopped")
			return nil
		}

		c.log.Warn("subscription dropped, reconnecting", zap.Error(err))
		metrics.QueueReconnectsTotal.Inc()

		conn, err = c.conn.Connect(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.log.Info("consumer stopped")
				return nil
			}
			return err
		}
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if _, err := declareQueue(ch, c.queue); err != nil {
		return err
	}

	// One unacknowledged message at a time.
	if err := ch.Qos(1, 0, false); err != nil {
		return err
	}

	deliveries, err := ch.Consume(
		c.queue,
		"",    // consumer tag, broker-generated
		false, // autoAck
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,
	)
	if err != nil {
		return err
	}

	c.log.Info("worker started, waiting for messages", zap.String("queue", c.queue))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return errDeliveryChannelClosed
			}
			c.handleDelivery(ctx, d)
		}
	}
}

// handleDelivery runs one message through the handler and settles it. A body
// that does not decode is rejected without requeue: reprocessing it can never
// succeed and would loop forever. Everything else is acked regardless of the
// processing outcome.
func (c *Consumer) handleDelivery(ctx context.Context, d amqp.Delivery) {
	job, err := DecodeJob(d.Body)
	if err != nil {
		c.log.Error("dropping undecodable message",
			zap.Error(err),
			zap.Bool("redelivered", d.Redelivered),
		)
		metrics.JobsPoisonedTotal.Inc()
		if nackErr := d.Nack(false, false); nackErr != nil {
			c.log.Error("nack failed", zap.Error(nackErr))
		}
		return
	}

	c.log.Info("received job",
		zap.String("job_id", job.JobID),
		zap.Bool("redelivered", d.Redelivered),
	)

	c.handler.Handle(ctx, job)

	// Shutdown interrupted the job. Leave the message unacked so the broker
	// redelivers it once a worker is back.
	if ctx.Err() != nil {
		c.log.Info("shutting down mid-job, leaving message unacked",
			zap.String("job_id", job.JobID))
		return
	}

	if err := d.Ack(false); err != nil {
		c.log.Error("ack failed", zap.String("job_id", job.JobID), zap.Error(err))
	}
}
