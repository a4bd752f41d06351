// Package events publishes order lifecycle notifications to RabbitMQ so
// downstream consumers (fulfilment, mailing) can react without being called
// inline.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/SantiagoArteche/off-eccom-api/internal/order"
)

const (
	OrderCreatedQueue = "order.created"
	OrderPaidQueue    = "order.paid"
)

type OrderCreated struct {
	EventType  string       `json:"eventType"`
	OrderID    string       `json:"orderId"`
	CartID     string       `json:"cartId"`
	UserID     string       `json:"userId"`
	Discount   int          `json:"discount"`
	FinalPrice float64      `json:"finalPrice"`
	Items      []order.Item `json:"items"`
	Timestamp  time.Time    `json:"timestamp"`
}

type OrderPaid struct {
	EventType  string    `json:"eventType"`
	OrderID    string    `json:"orderId"`
	PaidBy     string    `json:"paidBy"`
	FinalPrice float64   `json:"finalPrice"`
	Timestamp  time.Time `json:"timestamp"`
}

type Publisher struct {
	ch *amqp.Channel
}

// NewPublisher opens a channel and declares the queues up front so publishing
// never fails on missing infrastructure.
func NewPublisher(conn *amqp.Connection) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	for _, q := range []string{OrderCreatedQueue, OrderPaidQueue} {
		if _, err := ch.QueueDeclare(q, true, false, false, false, nil); err != nil {
			return nil, fmt.Errorf("declare %s: %w", q, err)
		}
	}

	return &Publisher{ch: ch}, nil
}

func (p *Publisher) Close() error {
	return p.ch.Close()
}

func (p *Publisher) PublishOrderCreated(ctx context.Context, o *order.Order, userID string) error {
	ev := OrderCreated{
		EventType:  "OrderCreated",
		OrderID:    o.ID,
		UserID:     userID,
		Discount:   o.Discount,
		FinalPrice: o.FinalPrice,
		Items:      o.Items,
		Timestamp:  time.Now().UTC(),
	}
	if o.CartID != nil {
		ev.CartID = *o.CartID
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal OrderCreated: %w", err)
	}
	return p.publishJSON(ctx, OrderCreatedQueue, body)
}

func (p *Publisher) PublishOrderPaid(ctx context.Context, o *order.Order) error {
	ev := OrderPaid{
		EventType:  "OrderPaid",
		OrderID:    o.ID,
		FinalPrice: o.FinalPrice,
		Timestamp:  time.Now().UTC(),
	}
	if o.PaidBy != nil {
		ev.PaidBy = *o.PaidBy
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal OrderPaid: %w", err)
	}
	return p.publishJSON(ctx, OrderPaidQueue, body)
}

func (p *Publisher) publishJSON(ctx context.Context, queue string, body []byte) error {
	pubCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return p.ch.PublishWithContext(
		pubCtx,
		"",    // default exchange
		queue, // queue name as routing key
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}
