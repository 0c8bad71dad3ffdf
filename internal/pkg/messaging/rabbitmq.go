package messaging

import (
	"context"
	"encoding/json"
	"time"

	"github.com/brightnest/daycare/internal/pkg/breaker"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sony/gobreaker"
)

// RabbitMQPublisher publishes events to a topic exchange, routed by event type
type RabbitMQPublisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	timeout  time.Duration
	cb       *gobreaker.CircuitBreaker
}

// NewRabbitMQPublisher connects to the broker and declares the exchange
func NewRabbitMQPublisher(amqpURL, exchange string, timeout time.Duration) (*RabbitMQPublisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	err = ch.ExchangeDeclare(
		exchange,
		amqp.ExchangeTopic,
		true,  // durable
		false, // autoDelete
		false, // internal
		false, // noWait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	return &RabbitMQPublisher{
		conn:     conn,
		ch:       ch,
		exchange: exchange,
		timeout:  timeout,
		cb:       breaker.NewCircuitBreaker(breaker.RabbitMQ),
	}, nil
}

// Publish sends evt as a persistent JSON message
func (p *RabbitMQPublisher) Publish(ctx context.Context, evt Event) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	_, err = p.cb.Execute(func() (interface{}, error) {
		return nil, p.ch.PublishWithContext(
			ctx,
			p.exchange,
			evt.Type,
			false, // mandatory
			false, // immediate
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				Timestamp:    evt.OccurredAt,
				Type:         evt.Type,
				Body:         body,
			},
		)
	})
	return err
}

// Close closes the channel and the connection
func (p *RabbitMQPublisher) Close() error {
	if p.ch != nil {
		if err := p.ch.Close(); err != nil {
			return err
		}
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
