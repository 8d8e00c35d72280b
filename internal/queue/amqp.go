// internal/queue/amqp.go
package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/streadway/amqp"
	"go.uber.org/zap"

	"github.com/gymreach/outreach-backend/internal/service"
)

const DispatchQueueName = "campaign_dispatch"

const maxRedeliveries = 3

func declareDispatchQueue(ch *amqp.Channel) error {
	_, err := ch.QueueDeclare(
		DispatchQueueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	return err
}

// AMQPPublisher schedules dispatch jobs by publishing them to RabbitMQ for
// cmd/worker to consume.
type AMQPPublisher struct {
	ch *amqp.Channel
}

func NewAMQPPublisher(conn *amqp.Connection) (*AMQPPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := declareDispatchQueue(ch); err != nil {
		return nil, fmt.Errorf("declare queue: %w", err)
	}
	return &AMQPPublisher{ch: ch}, nil
}

func (p *AMQPPublisher) Schedule(job service.DispatchJob) error {
	body, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return p.ch.Publish(
		"",
		DispatchQueueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}

func (p *AMQPPublisher) Close() error {
	return p.ch.Close()
}

var _ service.Scheduler = (*AMQPPublisher)(nil)

// Consumer drains dispatch jobs from RabbitMQ and runs them through the
// engine. Processing failures are re-published up to maxRedeliveries with an
// incremented x-retry-count header, then dropped with a log entry.
type Consumer struct {
	Engine Runner
	Logger *zap.SugaredLogger

	ch *amqp.Channel
}

func NewConsumer(conn *amqp.Connection, engine Runner, logger *zap.SugaredLogger) (*Consumer, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := declareDispatchQueue(ch); err != nil {
		return nil, fmt.Errorf("declare queue: %w", err)
	}
	return &Consumer{Engine: engine, Logger: logger, ch: ch}, nil
}

// Consume blocks until the delivery channel closes or ctx is canceled.
func (c *Consumer) Consume(ctx context.Context) error {
	deliveries, err := c.ch.Consume(
		DispatchQueueName,
		"",
		false, // manual ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("register consumer: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return nil
			}
			c.handle(ctx, d)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, d amqp.Delivery) {
	var job service.DispatchJob
	if err := json.Unmarshal(d.Body, &job); err != nil {
		c.Logger.Warnw("invalid dispatch job, dropping", "error", err)
		_ = d.Ack(false)
		return
	}

	if err := c.Engine.Run(ctx, job); err != nil {
		attempts := retryCount(d.Headers)
		if attempts < maxRedeliveries {
			c.Logger.Warnw("dispatch failed, re-publishing",
				"campaign_id", job.CampaignID, "attempt", attempts+1, "error", err)
			if pubErr := c.republish(d.Body, attempts+1); pubErr != nil {
				c.Logger.Errorw("failed to re-publish dispatch job", "campaign_id", job.CampaignID, "error", pubErr)
			}
		} else {
			c.Logger.Errorw("dispatch failed permanently, dropping",
				"campaign_id", job.CampaignID, "attempts", attempts, "error", err)
		}
		_ = d.Ack(false)
		return
	}

	_ = d.Ack(false)
}

func (c *Consumer) republish(body []byte, attempts int) error {
	return c.ch.Publish(
		"",
		DispatchQueueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Headers:      amqp.Table{"x-retry-count": int32(attempts)},
			Body:         body,
		},
	)
}

func (c *Consumer) Close() error {
	return c.ch.Close()
}

func retryCount(headers amqp.Table) int {
	if headers == nil {
		return 0
	}
	switch v := headers["x-retry-count"].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	default:
		return 0
	}
}
