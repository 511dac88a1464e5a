package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// JobHandler processes one notification job
type JobHandler func(ctx context.Context, job *NotificationJob) error

// Consumer consumes notification jobs from a RabbitMQ queue
type Consumer struct {
	conn      *Connection
	queueName string
	handler   JobHandler
	logger    zerolog.Logger
	cancel    context.CancelFunc
	doneChan  chan struct{}
}

// NewConsumer creates a consumer and declares its queue
func NewConsumer(conn *Connection, queueName string, handler JobHandler, logger zerolog.Logger) (*Consumer, error) {
	// Validate conn is not nil
	if conn == nil {
		return nil, errors.New("connection cannot be nil")
	}

	// Validate queueName is not empty
	if queueName == "" {
		return nil, errors.New("queue name cannot be empty")
	}

	// Validate handler is not nil
	if handler == nil {
		return nil, errors.New("handler cannot be nil")
	}

	// Declare queue (same settings as publisher: durable, non-auto-delete)
	if err := declareQueue(conn, queueName); err != nil {
		return nil, err
	}

	return &Consumer{
		conn:      conn,
		queueName: queueName,
		handler:   handler,
		logger:    logger.With().Str("queue", queueName).Logger(),
		doneChan:  make(chan struct{}),
	}, nil
}

// Start consumes jobs one at a time with manual acknowledgement.
// A failed job is rejected without requeue; there are no automatic retries.
func (c *Consumer) Start(ctx context.Context) error {
	// Get channel from connection
	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to get channel: %w", err)
	}

	// Set QoS (prefetch count: 1, to process one job at a time)
	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	// Start consuming
	msgs, err := ch.Consume(
		c.queueName,
		"",    // consumer tag (auto-generated)
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	ctx, c.cancel = context.WithCancel(ctx)

	// Process jobs in goroutine
	go func() {
		defer close(c.doneChan)

		for {
			select {
			case <-ctx.Done():
				c.logger.Info().Msg("Consumer stopping")
				return
			case d, ok := <-msgs:
				if !ok {
					c.logger.Warn().Msg("Delivery channel closed")
					return
				}

				if err := c.processMessage(ctx, d.Body); err != nil {
					c.logger.Error().Err(err).Str("message_id", d.MessageId).Msg("Notification job failed")
					// Reject without requeue, failed jobs are not retried
					d.Nack(false, false)
				} else {
					// Acknowledge successful processing
					d.Ack(false)
				}
			}
		}
	}()

	c.logger.Info().Msg("Consumer started")
	return nil
}

// Stop stops consuming and waits for the in-flight job to finish
func (c *Consumer) Stop() {
	if c.cancel == nil {
		return
	}
	// Signal the loop, then wait for it to finish
	c.cancel()
	<-c.doneChan
	c.logger.Info().Msg("Consumer stopped")
}

// processMessage decodes a delivery body and hands the job to the handler
func (c *Consumer) processMessage(ctx context.Context, body []byte) error {
	// Parse JSON body into NotificationJob
	var job NotificationJob
	if err := json.Unmarshal(body, &job); err != nil {
		return fmt.Errorf("failed to unmarshal notification job: %w", err)
	}

	// Call handler with the decoded job
	if err := c.handler(ctx, &job); err != nil {
		return fmt.Errorf("handler failed for job %s: %w", job.JobID, err)
	}
	return nil
}
