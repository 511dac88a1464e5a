package queue

import (
	"errors"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// Connection wraps a RabbitMQ connection and channel, redialing when either is closed
type Connection struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	url     string
	logger  zerolog.Logger
	mu      sync.Mutex
}

// NewConnection dials RabbitMQ and opens a channel
func NewConnection(url string, logger zerolog.Logger) (*Connection, error) {
	// Validate URL is not empty
	if url == "" {
		return nil, errors.New("rabbitmq url cannot be empty")
	}

	c := &Connection{
		url:    url,
		logger: logger.With().Str("component", "rabbitmq").Logger(),
	}
	// Connect and open the first channel
	if err := c.dial(); err != nil {
		return nil, err
	}

	c.logger.Info().Msg("Connected to RabbitMQ")
	return c, nil
}

// Channel returns the channel, reconnecting if necessary
func (c *Connection) Channel() (*amqp.Channel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Check if channel or connection is nil or closed
	if c.channel == nil || c.channel.IsClosed() || c.conn == nil || c.conn.IsClosed() {
		c.logger.Warn().Msg("Channel is closed, reconnecting")
		c.closeLocked()
		if err := c.dial(); err != nil {
			return nil, fmt.Errorf("failed to reconnect: %w", err)
		}
		c.logger.Info().Msg("Reconnected to RabbitMQ")
	}

	return c.channel, nil
}

// dial opens a fresh connection and channel. Callers hold mu or own c exclusively.
func (c *Connection) dial() error {
	// Dial RabbitMQ with stored URL
	conn, err := amqp.Dial(c.url)
	if err != nil {
		return fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}

	// Create new channel
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to create channel: %w", err)
	}

	// Update conn and channel fields
	c.conn = conn
	c.channel = channel
	return nil
}

func (c *Connection) closeLocked() []error {
	var errs []error

	// Close channel if not nil
	if c.channel != nil {
		if err := c.channel.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
		c.channel = nil
	}

	// Close connection if not nil
	if c.conn != nil {
		if err := c.conn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
		c.conn = nil
	}
	return errs
}

// Close closes the channel and connection
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if errs := c.closeLocked(); len(errs) > 0 {
		return fmt.Errorf("errors during close: %w", errors.Join(errs...))
	}

	c.logger.Info().Msg("RabbitMQ connection closed")
	return nil
}

// IsConnected reports whether both the connection and channel are open
func (c *Connection) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.conn != nil && !c.conn.IsClosed() && c.channel != nil && !c.channel.IsClosed()
}

// Ping checks that a broker is reachable with a throwaway connection
func Ping(url string) error {
	conn, err := amqp.Dial(url)
	if err != nil {
		return err
	}
	return conn.Close()
}
