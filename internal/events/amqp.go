package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"bazaar/internal/model"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// Channel is the subset of *amqp.Channel used for publishing and topology.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
	Qos(prefetchCount, prefetchSize int, global bool) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Topology names the exchange and the stock queue.
type Topology struct {
	Exchange string
	Queue    string
}

func (t Topology) deadLetterExchange() string { return t.Exchange + ".dlx" }
func (t Topology) deadLetterQueue() string    { return t.Queue + ".dlq" }

// Setup declares the topic exchange, the stock queue bound to order.paid and
// its dead-letter exchange and queue.
func Setup(ch Channel, t Topology) error {
	if err := ch.ExchangeDeclare(t.Exchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	if err := ch.ExchangeDeclare(t.deadLetterExchange(), "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare DLX: %w", err)
	}
	if _, err := ch.QueueDeclare(t.deadLetterQueue(), true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare DLQ: %w", err)
	}
	if err := ch.QueueBind(t.deadLetterQueue(), t.Queue, t.deadLetterExchange(), false, nil); err != nil {
		return fmt.Errorf("bind DLQ: %w", err)
	}
	if _, err := ch.QueueDeclare(t.Queue, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange":    t.deadLetterExchange(),
		"x-dead-letter-routing-key": t.Queue,
	}); err != nil {
		return fmt.Errorf("declare stock queue: %w", err)
	}
	if err := ch.QueueBind(t.Queue, model.EventOrderPaid, t.Exchange, false, nil); err != nil {
		return fmt.Errorf("bind stock queue: %w", err)
	}
	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("set QoS: %w", err)
	}
	return nil
}

type amqpPublisher struct {
	mu       sync.Mutex
	ch       Channel
	exchange string
	logger   zerolog.Logger
}

// NewAMQPPublisher publishes events to exchange with the event type as the
// routing key.
func NewAMQPPublisher(ch Channel, exchange string, logger zerolog.Logger) Publisher {
	return &amqpPublisher{
		ch:       ch,
		exchange: exchange,
		logger:   logger.With().Str("component", "amqp-publisher").Logger(),
	}
}

func (p *amqpPublisher) Publish(ctx context.Context, event model.Event) error {
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().Unix()
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.ch.PublishWithContext(ctx, p.exchange, event.Type, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Unix(event.Timestamp, 0),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}

	p.logger.Debug().
		Str("type", event.Type).
		Str("order_id", event.OrderID).
		Msg("event published")
	return nil
}
