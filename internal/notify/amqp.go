package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/Freeeeeet/center_scheduler/internal/model"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const AppointmentQueue = "appointment.events"

// AMQPPublisher publishes appointment events as persistent JSON messages to
// a durable queue on the default exchange.
type AMQPPublisher struct {
	conn   *amqp.Connection
	mu     sync.Mutex // amqp channels are not safe for concurrent publishing
	ch     *amqp.Channel
	queue  string
	logger *zap.Logger
}

func NewAMQPPublisher(url string, logger *zap.Logger) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	p := &AMQPPublisher{conn: conn, queue: AppointmentQueue, logger: logger}
	if err := p.openChannel(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return p, nil
}

func (p *AMQPPublisher) openChannel() error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}

	// Очередь создаётся идемпотентно, durable чтобы пережить рестарт брокера
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return fmt.Errorf("declare queue %s: %w", p.queue, err)
	}

	p.ch = ch
	return nil
}

func (p *AMQPPublisher) Notify(ctx context.Context, event model.AppointmentEvent) error {
	body, err := json.Marshal(newAppointmentMessage(event))
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.ID.String(),
		Type:         string(event.Type),
		Timestamp:    event.OccurredAt,
		Body:         body,
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch == nil || p.ch.IsClosed() {
		if err := p.openChannel(); err != nil {
			return err
		}
	}

	if err := p.ch.PublishWithContext(ctx, "", p.queue, false, false, msg); err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}

	p.logger.Debug("Event published",
		zap.String("event_id", event.ID.String()),
		zap.String("type", string(event.Type)),
	)
	return nil
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch != nil {
		_ = p.ch.Close()
	}
	return p.conn.Close()
}
