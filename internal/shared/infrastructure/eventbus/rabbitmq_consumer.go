package eventbus

import (
	"context"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
)

// DefaultConsumerQueueName is the default queue name for consuming events.
const DefaultConsumerQueueName = "studybalance.consumer"

// MessageHandler processes a consumed message. Returning an error causes the
// message to be negatively acknowledged and requeued once.
type MessageHandler func(ctx context.Context, routingKey string, payload []byte) error

// RabbitMQConsumer consumes events from RabbitMQ.
type RabbitMQConsumer struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	logger  *slog.Logger
}

// RabbitMQConsumerConfig configures the RabbitMQ consumer.
type RabbitMQConsumerConfig struct {
	URL       string
	QueueName string
	Logger    *slog.Logger
}

// NewRabbitMQConsumer creates a new RabbitMQ consumer bound to the domain
// events exchange.
func NewRabbitMQConsumer(cfg RabbitMQConsumerConfig) (*RabbitMQConsumer, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.QueueName == "" {
		cfg.QueueName = DefaultConsumerQueueName
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		ExchangeName,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	_, err = ch.QueueDeclare(
		cfg.QueueName,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	cfg.Logger.Info("RabbitMQ consumer connected",
		"queue", cfg.QueueName,
		"exchange", ExchangeName,
	)

	return &RabbitMQConsumer{
		conn:    conn,
		channel: ch,
		queue:   cfg.QueueName,
		logger:  cfg.Logger,
	}, nil
}

// Bind subscribes the queue to a routing key pattern on the exchange.
func (c *RabbitMQConsumer) Bind(routingKey string) error {
	return c.channel.QueueBind(
		c.queue,
		routingKey,
		ExchangeName,
		false, // no-wait
		nil,
	)
}

// Consume blocks, delivering messages to the handler until the context is
// canceled.
func (c *RabbitMQConsumer) Consume(ctx context.Context, handler MessageHandler) error {
	deliveries, err := c.channel.Consume(
		c.queue,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}

			if err := handler(ctx, delivery.RoutingKey, delivery.Body); err != nil {
				c.logger.Warn("message handler failed",
					"routing_key", delivery.RoutingKey,
					"error", err,
				)
				// Requeue only on first failure to avoid poison loops.
				_ = delivery.Nack(false, !delivery.Redelivered)
				continue
			}

			_ = delivery.Ack(false)
		}
	}
}

// Close closes the consumer connection.
func (c *RabbitMQConsumer) Close() error {
	if c.channel != nil {
		_ = c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
