// Package rabbitmq реализует публикацию событий магазина в RabbitMQ.
//
// События покупок публикуются в durable exchange store_events
// с ключами маршрутизации purchase.product, purchase.file, purchase.subscription.
package rabbitmq

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/streadway/amqp"
)

// Exchange — имя exchange для событий магазина.
const Exchange = "store_events"

// PurchaseEvent описывает успешную покупку товара, файла или подписки.
type PurchaseEvent struct {
	Username   string    `json:"username"`
	Kind       string    `json:"kind"` // product, file или subscription
	ItemID     int       `json:"item_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher публикует события в канал RabbitMQ.
type Publisher struct {
	ch *amqp.Channel
}

// Connect устанавливает соединение с RabbitMQ с повторными попытками.
func Connect(connection string, retries int, delay time.Duration) (*amqp.Connection, error) {
	const op = "rabbitmq.Connect"
	var conn *amqp.Connection
	var err error

	for range retries {
		conn, err = amqp.Dial(connection)
		if err == nil {
			return conn, nil
		}
		time.Sleep(delay)
	}

	return nil, fmt.Errorf("%s: %w", op, err)
}

// NewPublisher открывает канал и объявляет exchange событий магазина.
func NewPublisher(conn *amqp.Connection) (*Publisher, error) {
	const op = "rabbitmq.NewPublisher"

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	err = ch.ExchangeDeclare(
		Exchange,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Publisher{ch: ch}, nil
}

// PublishPurchase публикует событие покупки с ключом purchase.<kind>.
func (p *Publisher) PublishPurchase(event PurchaseEvent) error {
	const op = "rabbitmq.PublishPurchase"
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = p.ch.Publish(
		Exchange,
		"purchase."+event.Kind,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Close закрывает канал публикации.
func (p *Publisher) Close() error {
	return p.ch.Close()
}
