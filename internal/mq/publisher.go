package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher публикует копии алертов в RabbitMQ.
type Publisher struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPublisher создаёт новый Publisher.
func NewPublisher(conn *Connection, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		conn:   conn,
		logger: logger,
	}
}

// AlertMessage — зеркалируемый алерт.
type AlertMessage struct {
	// ID — уникальный идентификатор сообщения.
	ID string `json:"id"`

	// RunID — идентификатор запуска аудита.
	RunID string `json:"run_id"`

	// Check — проверка, сформировавшая алерт.
	Check string `json:"check"`

	// Text — текст алерта, тот же, что уходит в DM.
	Text string `json:"text"`

	// Timestamp — время публикации.
	Timestamp time.Time `json:"timestamp"`
}

// PublishAlert публикует копию одного алерта.
func (p *Publisher) PublishAlert(ctx context.Context, runID, check, text string) error {
	msg := AlertMessage{
		ID:        uuid.New().String(),
		RunID:     runID,
		Check:     check,
		Text:      text,
		Timestamp: time.Now().UTC(),
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}

	return p.conn.WithChannel(func(ch *amqp.Channel) error {
		err := ch.PublishWithContext(
			ctx,
			string(ExchangeAlerts),
			string(RoutingKeyAlert),
			false,
			false,
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent, // журнал переживёт рестарт RabbitMQ
				MessageId:    msg.ID,
				Timestamp:    msg.Timestamp,
				Body:         body,
			},
		)
		if err != nil {
			return fmt.Errorf("publish alert: %w", err)
		}

		p.logger.Debug("alert mirrored",
			"message_id", msg.ID,
			"check", check,
		)
		return nil
	})
}
