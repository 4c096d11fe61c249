package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/iliyamo/fitness-studio-site/internal/config"
	q "github.com/iliyamo/fitness-studio-site/internal/queue"
)

// dialTimeout bounds the broker connect so a down broker cannot stall a
// request for the library's 30s default.
const dialTimeout = 3 * time.Second

// Publisher sends domain events to RabbitMQ. Errors are logged and returned
// so callers can ignore them without interrupting the request flow. A
// publisher without a broker URL drops every event.
type Publisher struct {
	url string
	log *zap.Logger
}

func NewPublisher(cfg config.QueueConfig, log *zap.Logger) *Publisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Publisher{url: cfg.URL, log: log}
}

// PaymentConfirmed publishes to the payment.confirmed queue.
func (p *Publisher) PaymentConfirmed(ctx context.Context, ev q.PaymentConfirmedEvent) error {
	return p.publish(ctx, q.PaymentConfirmedQueue, ev)
}

// LeadCreated publishes to the lead.created queue.
func (p *Publisher) LeadCreated(ctx context.Context, ev q.LeadCreatedEvent) error {
	return p.publish(ctx, q.LeadCreatedQueue, ev)
}

func (p *Publisher) publish(ctx context.Context, queue string, event any) error {
	if p == nil || p.url == "" {
		return nil
	}
	log := p.log.With(zap.String("queue", queue))

	conn, err := amqp.DialConfig(p.url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(dialTimeout),
	})
	if err != nil {
		log.Warn("rabbitmq: dial failed", zap.Error(err))
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Warn("rabbitmq: channel open failed", zap.Error(err))
		return err
	}
	defer func() { _ = ch.Close() }()

	// Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		log.Warn("rabbitmq: queue declare failed", zap.Error(err))
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", queue, err)
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queue, false, false, pub); err != nil {
		log.Warn("rabbitmq: publish failed", zap.Error(err))
		return err
	}
	return nil
}
