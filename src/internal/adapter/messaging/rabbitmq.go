package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/api-sage/open-finance-kit/src/internal/domain"
	"github.com/api-sage/open-finance-kit/src/internal/logger"
	amqp "github.com/rabbitmq/amqp091-go"
)

const PaymentEventsQueue = "payment_events"

type RabbitPublisher struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
}

func NewRabbitPublisher(url string) (*RabbitPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open rabbitmq channel: %w", err)
	}

	if _, err := ch.QueueDeclare(
		PaymentEventsQueue,
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare %s queue: %w", PaymentEventsQueue, err)
	}

	return &RabbitPublisher{conn: conn, ch: ch, queue: PaymentEventsQueue}, nil
}

func (p *RabbitPublisher) Publish(ctx context.Context, event domain.PaymentEvent) error {
	msg, err := newPublishing(event)
	if err != nil {
		return err
	}

	if err := p.ch.PublishWithContext(ctx, "", p.queue, false, false, msg); err != nil {
		logger.Error("payment event publish failed", err, logger.Fields{
			"paymentId": event.PaymentID,
			"step":      event.Step,
		})
		return fmt.Errorf("publish payment event: %w", err)
	}
	return nil
}

func (p *RabbitPublisher) Close() error {
	if err := p.ch.Close(); err != nil {
		_ = p.conn.Close()
		return err
	}
	return p.conn.Close()
}

func newPublishing(event domain.PaymentEvent) (amqp.Publishing, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("encode payment event: %w", err)
	}

	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Type:         "payment." + string(event.Step),
		MessageId:    event.PaymentID + ":" + string(event.Step) + ":" + string(event.Status),
		Timestamp:    event.OccurredAt,
		Body:         body,
	}, nil
}
