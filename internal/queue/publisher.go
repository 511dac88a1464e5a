package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"watercare/internal/models"
)

// NotificationJob is one WhatsApp notification waiting for the worker
type NotificationJob struct {
	JobID        string              `json:"job_id"`
	RecordID     string              `json:"record_id"`
	Notification models.Notification `json:"notification"`
	EnqueuedAt   time.Time           `json:"enqueued_at"`
}

// Publisher publishes notification jobs to RabbitMQ
type Publisher struct {
	conn      *Connection
	queueName string
}

// NewPublisher creates a publisher and declares its queue
func NewPublisher(conn *Connection, queueName string) (*Publisher, error) {
	// Validate conn is not nil
	if conn == nil {
		return nil, errors.New("connection cannot be nil")
	}

	// Validate queueName is not empty
	if queueName == "" {
		return nil, errors.New("queue name cannot be empty")
	}

	// Declare queue (durable, non-auto-delete, non-exclusive)
	if err := declareQueue(conn, queueName); err != nil {
		return nil, err
	}

	return &Publisher{
		conn:      conn,
		queueName: queueName,
	}, nil
}

// Publish sends a persistent notification job to the queue
func (p *Publisher) Publish(ctx context.Context, job *NotificationJob) error {
	// Marshal to JSON
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal notification job: %w", err)
	}

	// Get channel from connection
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to get channel: %w", err)
	}

	// Publish to the default exchange as a persistent message
	err = ch.PublishWithContext(
		ctx,
		"",          // exchange (default)
		p.queueName, // routing key
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			MessageId:    job.JobID,
			Timestamp:    job.EnqueuedAt,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish notification job: %w", err)
	}

	return nil
}

// declareQueue declares a durable, non-auto-delete queue. Publisher and consumer share it.
func declareQueue(conn *Connection, queueName string) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to get channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}
	return nil
}
