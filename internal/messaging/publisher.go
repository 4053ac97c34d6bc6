// Package messaging публикует доменные события справочника в RabbitMQ.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/aaronshaf/churches-sub000/internal/interfaces"
)

const (
	eventsExchange     = "directory.events"
	eventsExchangeType = "topic"

	routingKeySettingsInvalidated = "settings.invalidated"
	routingKeyFeedbackReceived    = "feedback.received"
)

// SettingsInvalidatedPayload — тело события сброса снапшота настроек.
type SettingsInvalidatedPayload struct {
	ChangedKey string    `json:"changed_key"`
	OccurredAt time.Time `json:"occurred_at"`
}

// FeedbackReceivedPayload — тело события нового отзыва.
type FeedbackReceivedPayload struct {
	CommentUUID string    `json:"comment_uuid"`
	ChurchID    *int64    `json:"church_id,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// RabbitMQEventPublisher публикует события справочника в topic exchange.
type RabbitMQEventPublisher struct {
	conn   *amqp091.Connection
	ch     *amqp091.Channel
	logger *zap.Logger
}

var _ interfaces.EventPublisher = (*RabbitMQEventPublisher)(nil)

// NewRabbitMQEventPublisher создает издателя и объявляет exchange.
func NewRabbitMQEventPublisher(conn *amqp091.Connection, logger *zap.Logger) (*RabbitMQEventPublisher, error) {
	if conn == nil {
		return nil, fmt.Errorf("rabbitmq connection is nil")
	}

	ch, err := conn.Channel()
	if err != nil {
		logger.Error("Failed to open a channel for directory events", zap.Error(err))
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	// Объявляем durable topic exchange; повторное объявление безвредно
	err = ch.ExchangeDeclare(
		eventsExchange,
		eventsExchangeType,
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		_ = ch.Close()
		logger.Error("Failed to declare events exchange", zap.String("exchange", eventsExchange), zap.Error(err))
		return nil, fmt.Errorf("failed to declare exchange %q: %w", eventsExchange, err)
	}

	logger.Info("Events exchange declared", zap.String("exchange", eventsExchange), zap.String("type", eventsExchangeType))

	return &RabbitMQEventPublisher{
		conn:   conn,
		ch:     ch,
		logger: logger.Named("EventPublisher"),
	}, nil
}

// PublishSettingsInvalidated публикует событие сброса снапшота настроек.
func (p *RabbitMQEventPublisher) PublishSettingsInvalidated(ctx context.Context, changedKey string) error {
	return p.publish(ctx, routingKeySettingsInvalidated, SettingsInvalidatedPayload{
		ChangedKey: changedKey,
		OccurredAt: time.Now().UTC(),
	})
}

// PublishFeedbackReceived публикует событие нового отзыва.
func (p *RabbitMQEventPublisher) PublishFeedbackReceived(ctx context.Context, commentUUID string, churchID *int64) error {
	return p.publish(ctx, routingKeyFeedbackReceived, FeedbackReceivedPayload{
		CommentUUID: commentUUID,
		ChurchID:    churchID,
		OccurredAt:  time.Now().UTC(),
	})
}

func (p *RabbitMQEventPublisher) publish(ctx context.Context, routingKey string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		p.logger.Error("Failed to marshal event payload", zap.String("routingKey", routingKey), zap.Error(err))
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	err = p.ch.PublishWithContext(ctx,
		eventsExchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType: "application/json",
			Body:        body,
			Timestamp:   time.Now(),
		},
	)
	if err != nil {
		p.logger.Error("Failed to publish event", zap.String("routingKey", routingKey), zap.Error(err))
		return fmt.Errorf("failed to publish event %q: %w", routingKey, err)
	}

	p.logger.Debug("Event published", zap.String("routingKey", routingKey))
	return nil
}

// Close закрывает канал RabbitMQ.
func (p *RabbitMQEventPublisher) Close() error {
	if p.ch != nil {
		return p.ch.Close()
	}
	return nil
}

// ConnectWithRetry подключается к RabbitMQ с повторными попытками.
func ConnectWithRetry(url string, attempts int, delay time.Duration, logger *zap.Logger) (*amqp091.Connection, error) {
	var conn *amqp091.Connection
	var err error
	for i := 1; i <= attempts; i++ {
		conn, err = amqp091.Dial(url)
		if err == nil {
			return conn, nil
		}
		logger.Warn("Failed to connect to RabbitMQ, retrying",
			zap.Int("attempt", i),
			zap.Int("maxAttempts", attempts),
			zap.Error(err))
		time.Sleep(delay)
	}
	return nil, fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", attempts, err)
}
