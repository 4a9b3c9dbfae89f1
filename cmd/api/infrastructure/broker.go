package infrastructure

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"library-service/internal/adapter/broker/rabbitmq"
	"library-service/internal/config"
	"library-service/internal/usecase/loan"
)

// NewEventPublisher returns the RabbitMQ publisher when enabled and a no-op
// publisher otherwise. The closer is nil for the no-op publisher.
func NewEventPublisher(cfg *config.Config, l *zap.Logger) (loan.EventPublisher, io.Closer, error) {
	if !cfg.RabbitMQ.Enabled {
		return loan.NopPublisher{}, nil, nil
	}

	p, err := rabbitmq.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, l)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create event publisher: %w", err)
	}
	return p, p, nil
}
