// Package rabbitmq publishes rendered notifications to a durable queue
// consumed by an external mail worker.
package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/dtroode/gymkeeper-server/internal/logger"
	"github.com/dtroode/gymkeeper-server/internal/notify"
)

// DefaultQueue is the queue the mail worker consumes.
const DefaultQueue = "mail.outgoing"

type channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

var _ notify.Transport = (*Publisher)(nil)

// Publisher is a notify.Transport backed by RabbitMQ.
type Publisher struct {
	conn   *amqp.Connection
	mu     sync.Mutex
	ch     channel
	queue  string
	logger *logger.Logger
}

// Dial connects to the broker at url and declares queue.
func Dial(url, queue string, logger *logger.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to dial broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	p, err := NewPublisher(ch, queue, logger)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

// NewPublisher declares a durable queue on ch.
func NewPublisher(ch channel, queue string, logger *logger.Logger) (*Publisher, error) {
	if queue == "" {
		queue = DefaultQueue
	}

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}

	return &Publisher{ch: ch, queue: queue, logger: logger}, nil
}

// Deliver publishes env as a persistent JSON message.
func (p *Publisher) Deliver(ctx context.Context, env notify.Envelope) error {
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    env.SentAt,
		Body:         body,
	}

	// amqp channels must not be used for publishing concurrently.
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ch.PublishWithContext(ctx, "", p.queue, false, false, msg); err != nil {
		p.logger.Error("RabbitMQ publisher: publish failed",
			"queue", p.queue,
			"error", err.Error())
		return fmt.Errorf("failed to publish message: %w", err)
	}

	return nil
}

// Close closes the channel and the connection.
func (p *Publisher) Close() error {
	if err := p.ch.Close(); err != nil {
		return fmt.Errorf("failed to close channel: %w", err)
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
