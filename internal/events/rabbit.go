package events

import (
	amqp "github.com/rabbitmq/amqp091-go"
)

// Dial connects to RabbitMQ. Callers own the connection lifetime.
func Dial(url string) (*amqp.Connection, error) {
	return amqp.Dial(url)
}
