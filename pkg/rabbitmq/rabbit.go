package rabbitmq

import (
	"context"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"ride-pool/pkg/config"
	"ride-pool/pkg/logger"
)

const (
	maxRetries    = 10
	retryInterval = 3 * time.Second
)

const (
	// ExchangeCarpool carries all carpool events, routed by topic key.
	ExchangeCarpool = "carpool_topic"

	// QueueModerationReports receives report.* records for the out-of-band
	// human review workflow. The service only writes, never reads.
	QueueModerationReports = "moderation_reports"

	// QueueMessageEvents receives message.created events so every service
	// instance can refresh its live feeds.
	QueueMessageEvents = "message_events"
)

// Connection is a wrapper around the amqp.Connection that handles auto-reconnection.
type Connection struct {
	logger      logger.Logger
	dsn         string
	conn        *amqp.Connection
	pubChannel  *amqp.Channel // A dedicated channel for publishing
	mu          sync.RWMutex  // Protects conn and pubChannel during reconnects
	isConnected bool
	notifyClose chan *amqp.Error
	done        chan bool
}

func NewConnection(cfg *config.Config, log logger.Logger) (*Connection, error) {
	dsn := fmt.Sprintf("amqp://%s:%s@%s:%d/",
		cfg.RabbitMQ.User,
		cfg.RabbitMQ.Password,
		cfg.RabbitMQ.Host,
		cfg.RabbitMQ.Port,
	)
	c := &Connection{
		logger: log,
		dsn:    dsn,
		done:   make(chan bool),
	}
	var err error
	for i := 0; i < maxRetries; i++ {
		err = c.connect()
		if err != nil {
			log.Error("rabbitmq_connect_retry", fmt.Errorf("failed to connect to RabbitMQ (attempt %d/%d): %w", i+1, maxRetries, err))
			time.Sleep(retryInterval)
			continue
		}
		log.Info("rabbitmq_connect", "Initial RabbitMQ connection established")
		if setupErr := c.SetupTopology(); setupErr != nil {
			c.Close()
			return nil, fmt.Errorf("failed to setup RabbitMQ topology: %w", setupErr)
		}
		go c.reconnectLoop()
		return c, nil
	}
	return nil, fmt.Errorf("failed to connect to RabbitMQ after %d retries: %w", maxRetries, err)
}

func (c *Connection) connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var err error
	c.conn, err = amqp.Dial(c.dsn)
	if err != nil {
		return fmt.Errorf("failed to dial: %w", err)
	}
	c.pubChannel, err = c.conn.Channel()
	if err != nil {
		c.conn.Close()
		return fmt.Errorf("failed to open publisher channel: %w", err)
	}

	c.isConnected = true
	c.notifyClose = make(chan *amqp.Error, 1)
	c.conn.NotifyClose(c.notifyClose)

	return nil
}

func (c *Connection) reconnectLoop() {
	for {
		select {
		case <-c.done:
			c.logger.Info("rabbitmq_reconnect_loop", "Shutting down reconnection loop")
			return
		case err := <-c.notifyClose:
			if err == nil {
				c.logger.Info("rabbitmq_reconnect_loop", "Connection closed gracefully")
				return
			}

			c.logger.Error("rabbitmq_disconnect", fmt.Errorf("RabbitMQ connection lost: %w", err))
			c.mu.Lock()
			c.isConnected = false
			c.mu.Unlock()

			backoff := time.Second
			for {
				c.logger.Info("rabbitmq_reconnect_attempt", fmt.Sprintf("Attempting to reconnect in %s...", backoff))
				time.Sleep(backoff)

				if err := c.connect(); err != nil {
					c.logger.Error("rabbitmq_reconnect_failed", fmt.Errorf("failed to reconnect to RabbitMQ: %w", err))
					backoff = time.Duration(float64(backoff) * 1.5)
					if backoff > 30*time.Second {
						backoff = 30 * time.Second
					}
					continue
				}

				if setupErr := c.SetupTopology(); setupErr != nil {
					c.logger.Error("rabbitmq_reconnect_setup_failed", fmt.Errorf("failed to re-declare topology: %w", setupErr))
					continue
				}
				c.logger.Info("rabbitmq_reconnect_success", "RabbitMQ connection established")
				break
			}
		}
	}
}

// SetupTopology declares all required topology.
func (c *Connection) SetupTopology() error {
	c.mu.RLock()
	if !c.isConnected {
		c.mu.RUnlock()
		return fmt.Errorf("RabbitMQ is not connected")
	}
	ch, err := c.conn.Channel()
	if err != nil {
		c.mu.RUnlock()
		return fmt.Errorf("failed to open setup channel: %w", err)
	}
	defer ch.Close()
	c.mu.RUnlock()

	c.logger.Info("rabbitmq_setup", "Declaring RabbitMQ topology")

	if err := ch.ExchangeDeclare(ExchangeCarpool, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", ExchangeCarpool, err)
	}

	queues := []struct {
		Name string
		Key  string
	}{
		{Name: QueueModerationReports, Key: "report.*"},
		{Name: QueueMessageEvents, Key: "message.created"},
	}
	for _, q := range queues {
		if _, err := ch.QueueDeclare(q.Name, true, false, false, false, nil); err != nil {
			return fmt.Errorf("failed to declare queue %s: %w", q.Name, err)
		}
		if err := ch.QueueBind(q.Name, q.Key, ExchangeCarpool, false, nil); err != nil {
			return fmt.Errorf("failed to bind queue %s: %w", q.Name, err)
		}
	}

	return nil
}

// Publish sends a persistent message to the carpool exchange.
func (c *Connection) Publish(ctx context.Context, routingKey string, body []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.isConnected {
		return fmt.Errorf("RabbitMQ is not connected")
	}

	return c.pubChannel.PublishWithContext(ctx, ExchangeCarpool, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
}

// Consume opens a dedicated channel and returns deliveries from the queue.
// The caller owns acking; the channel is closed on connection loss and the
// consumer is expected to call Consume again.
func (c *Connection) Consume(queue string) (<-chan amqp.Delivery, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.isConnected {
		return nil, fmt.Errorf("RabbitMQ is not connected")
	}

	ch, err := c.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open consumer channel: %w", err)
	}

	deliveries, err := ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("failed to consume from %s: %w", queue, err)
	}
	return deliveries, nil
}

// Close shuts the connection down gracefully.
func (c *Connection) Close() {
	close(c.done)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pubChannel != nil {
		c.pubChannel.Close()
	}
	if c.conn != nil {
		c.conn.Close()
	}
	c.isConnected = false
}
