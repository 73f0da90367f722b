package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"loan-servicing/internal/pkg/apperrors"
)

const publisherAppID = "loan-servicing"

type EventPublisher interface {
	PublishInstallmentStatusChanged(ctx context.Context, event InstallmentStatusChangedEvent) error
}

// channel is the part of *amqp.Channel the publisher needs.
type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type channelOpener interface {
	openChannel() (channel, error)
}

type amqpConnection struct {
	conn *amqp.Connection
}

func (c amqpConnection) openChannel() (channel, error) {
	return c.conn.Channel()
}

type RabbitMQEventPublisher struct {
	conn         channelOpener
	exchangeName string
	logger       *slog.Logger
}

func NewRabbitMQEventPublisher(conn *amqp.Connection, exchangeName string, logger *slog.Logger) (*RabbitMQEventPublisher, error) {
	if conn == nil {
		return nil, fmt.Errorf("RabbitMQ connection cannot be nil")
	}
	return newPublisher(amqpConnection{conn: conn}, exchangeName, logger)
}

func newPublisher(conn channelOpener, exchangeName string, logger *slog.Logger) (*RabbitMQEventPublisher, error) {
	if exchangeName == "" {
		return nil, fmt.Errorf("RabbitMQ exchange name cannot be empty")
	}

	tempCh, err := conn.openChannel()
	if err != nil {
		return nil, fmt.Errorf("failed to open temporary channel for exchange declaration: %w", err)
	}
	defer tempCh.Close()

	err = tempCh.ExchangeDeclare(
		exchangeName,
		amqp.ExchangeTopic,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare exchange '%s': %w", exchangeName, err)
	}
	logger.Info("Ensured RabbitMQ exchange exists", "exchange", exchangeName, "type", amqp.ExchangeTopic)

	return &RabbitMQEventPublisher{
		conn:         conn,
		exchangeName: exchangeName,
		logger:       logger.With("component", "RabbitMQEventPublisher", "exchange", exchangeName),
	}, nil
}

func (p *RabbitMQEventPublisher) PublishInstallmentStatusChanged(ctx context.Context, event InstallmentStatusChangedEvent) error {
	return p.publish(ctx, event.RoutingKey(), event.EventID.String(), event)
}

func (p *RabbitMQEventPublisher) publish(ctx context.Context, routingKey, messageID string, payload interface{}) error {
	logCtx := p.logger.With(slog.String("routingKey", routingKey), slog.String("messageId", messageID))

	ch, err := p.conn.openChannel()
	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to open RabbitMQ channel", slog.Any("error", err))
		return fmt.Errorf("%w: failed to open channel: %w", apperrors.ErrPublish, err)
	}
	defer ch.Close()

	body, err := json.Marshal(payload)
	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to marshal event payload to JSON", slog.Any("error", err))
		return fmt.Errorf("%w: failed to marshal event: %w", apperrors.ErrPublish, err)
	}

	logCtx.DebugContext(ctx, "Publishing message", "bodySize", len(body))

	err = ch.PublishWithContext(
		ctx,
		p.exchangeName,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    messageID,
			Timestamp:    time.Now(),
			Body:         body,
			AppId:        publisherAppID,
		},
	)
	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to publish message to RabbitMQ", slog.Any("error", err))
		return fmt.Errorf("%w: failed to publish message: %w", apperrors.ErrPublish, err)
	}

	logCtx.InfoContext(ctx, "Successfully published message")
	return nil
}
