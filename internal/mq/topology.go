package mq

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange — тип для имени обменника.
type Exchange string

// Queue — тип для имени очереди.
type Queue string

// RoutingKey — тип для ключа маршрутизации.
type RoutingKey string

// Топология зеркалирования алертов.
const (
	// ExchangeAlerts — обменник всех алертов аудита.
	ExchangeAlerts Exchange = "centinela.alerts"

	// QueueAlertsAudit — очередь журнала алертов.
	QueueAlertsAudit Queue = "alerts.audit"

	// RoutingKeyAlert — ключ маршрутизации алертов.
	RoutingKeyAlert RoutingKey = "alert"
)

// SetupTopology создаёт обменник и очередь журнала и связывает их.
// Объявления идемпотентны: повторный запуск аудита ничего не ломает.
func SetupTopology(conn *Connection) error {
	return conn.WithChannel(func(ch *amqp.Channel) error {
		err := ch.ExchangeDeclare(
			string(ExchangeAlerts), // name
			"direct",               // type
			true,                   // durable
			false,                  // auto-deleted
			false,                  // internal
			false,                  // no-wait
			nil,                    // arguments
		)
		if err != nil {
			return fmt.Errorf("declare exchange %s: %w", ExchangeAlerts, err)
		}

		_, err = ch.QueueDeclare(
			string(QueueAlertsAudit), // name
			true,                     // durable
			false,                    // delete when unused
			false,                    // exclusive
			false,                    // no-wait
			nil,                      // arguments
		)
		if err != nil {
			return fmt.Errorf("declare queue %s: %w", QueueAlertsAudit, err)
		}

		err = ch.QueueBind(
			string(QueueAlertsAudit),
			string(RoutingKeyAlert),
			string(ExchangeAlerts),
			false, // no-wait
			nil,   // arguments
		)
		if err != nil {
			return fmt.Errorf("bind queue %s to %s: %w", QueueAlertsAudit, ExchangeAlerts, err)
		}

		return nil
	})
}
