package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"pictochat-service/internal/observability"
)

// EventPublisher ships websocket lifecycle events with per-message headers
// (request id, trace id) on a dedicated channel.
type EventPublisher interface {
	PublishJSON(ctx context.Context, routingKey string, message any, headers map[string]string) error
	Close() error
}

type amqpEventPublisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

// NewEventPublisher connects to the broker and declares the topic exchange.
func NewEventPublisher(amqpURL, exchange string) (EventPublisher, error) {
	if amqpURL == "" {
		return nil, errors.New("amqp url is empty")
	}

	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}

	log.Info().Str("exchange", exchange).Msg("ws event publisher connected")
	return &amqpEventPublisher{conn: conn, ch: ch, exchange: exchange}, nil
}

func (p *amqpEventPublisher) PublishJSON(ctx context.Context, routingKey string, message any, headers map[string]string) error {
	body, err := json.Marshal(message)
	if err != nil {
		return err
	}

	amqpHeaders := amqp.Table{}
	for key, value := range headers {
		amqpHeaders[key] = value
	}

	return p.ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Headers:      amqpHeaders,
	})
}

func (p *amqpEventPublisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

var eventPublisher EventPublisher

// SetEventPublisher installs the process-wide websocket event publisher.
// Events are dropped silently when none is configured.
func SetEventPublisher(publisher EventPublisher) {
	eventPublisher = publisher
}

// PublishEvent sends one event through the installed publisher. Failures are
// counted and logged, never propagated to the connection lifecycle.
func PublishEvent(ctx context.Context, routingKey string, message any, headers map[string]string) error {
	if eventPublisher == nil {
		return nil
	}

	err := eventPublisher.PublishJSON(ctx, routingKey, message, headers)
	if err != nil {
		log.Error().Err(err).Str("routing_key", routingKey).Msg("ws event publish failed")
		observability.IncAMQPPublishError()
	}
	return err
}
