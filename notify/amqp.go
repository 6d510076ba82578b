// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 5 * time.Second

// AMQPNotifier publishes notifications to a durable topic exchange with
// routing key "user.<userID>". Consumers (the push/in-app delivery service)
// bind their own queues.
type AMQPNotifier struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

type notificationMessage struct {
	UserID     string         `json:"user_id"`
	SenderID   string         `json:"sender_id"`
	SenderName string         `json:"sender_name"`
	Type       string         `json:"type"`
	Payload    map[string]any `json:"payload,omitempty"`
	SentAt     time.Time      `json:"sent_at"`
}

// NewAMQPNotifier dials the broker and declares the exchange.
func NewAMQPNotifier(url, exchange string) (*AMQPNotifier, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("amqp exchange declare: %w", err)
	}

	return &AMQPNotifier{conn: conn, channel: ch, exchange: exchange}, nil
}

func (n *AMQPNotifier) Notify(userID, senderID, senderName, notifType string, payload map[string]any) error {
	body, err := json.Marshal(notificationMessage{
		UserID:     userID,
		SenderID:   senderID,
		SenderName: senderName,
		Type:       notifType,
		Payload:    payload,
		SentAt:     time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	err = n.channel.PublishWithContext(ctx,
		n.exchange,
		"user."+userID, // routing key
		false,          // mandatory
		false,          // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}

func (n *AMQPNotifier) Close() error {
	if err := n.channel.Close(); err != nil {
		n.conn.Close()
		return err
	}
	return n.conn.Close()
}
