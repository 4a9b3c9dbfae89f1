// Package rabbitmq publishes loan events to a RabbitMQ topic exchange.
package rabbitmq

import (
	"context"
	"fmt"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"library-service/internal/usecase/loan"
	"library-service/pkg/logger"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher implements loan.EventPublisher. The event type is the routing key.
type Publisher struct {
	conn     *amqp.Connection
	ch       channel
	exchange string
	log      *zap.Logger
	mu       sync.Mutex
}

// NewPublisher dials url and declares a durable topic exchange.
func NewPublisher(url, exchange string, log *zap.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %q: %w", exchange, err)
	}

	log.Info("RabbitMQ publisher ready", zap.String("exchange", exchange))
	return &Publisher{conn: conn, ch: ch, exchange: exchange, log: log}, nil
}

// Publish sends event as a persistent JSON message.
func (p *Publisher) Publish(ctx context.Context, event loan.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.LoanID + ":" + event.Type,
		Timestamp:    event.OccurredAt,
		Body:         body,
	}
	if id := logger.GetRequestID(ctx); id != "" {
		msg.CorrelationId = id
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ch.PublishWithContext(ctx, p.exchange, event.Type, false, false, msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}

	logger.WithContext(ctx, p.log).Debug("event published",
		zap.String("type", event.Type),
		zap.String("loan_id", event.LoanID),
	)
	return nil
}

// Close closes the channel and the connection.
func (p *Publisher) Close() error {
	p.log.Info("Closing RabbitMQ publisher")
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
