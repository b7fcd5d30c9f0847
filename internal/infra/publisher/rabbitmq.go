package publisher

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/enviofleett/smallchops-09-sub001/internal/pkg/errs"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher delivers one outbox message to the broker.
type Publisher interface {
	Publish(ctx context.Context, topic string, body []byte) error
}

// RabbitPublisher publishes persistent JSON messages to a topic exchange and
// waits for the broker's confirm before reporting success.
type RabbitPublisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string

	acks <-chan amqp.Confirmation
	mu   sync.Mutex
}

func DialRabbit(url, exchange string) (*RabbitPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, errs.Wrap(err, "failed to dial broker")
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, errs.Wrap(err, "failed to open broker channel")
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, errs.Wrapf(err, "failed to declare exchange %s", exchange)
	}

	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, errs.Wrap(err, "failed to enable publisher confirms")
	}
	acks := ch.NotifyPublish(make(chan amqp.Confirmation, 1))

	return &RabbitPublisher{conn: conn, ch: ch, exchange: exchange, acks: acks}, nil
}

func (p *RabbitPublisher) Publish(ctx context.Context, topic string, body []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	err := p.ch.PublishWithContext(ctx, p.exchange, topic, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		return errs.Wrapf(err, "failed to publish %s", topic)
	}

	select {
	case conf := <-p.acks:
		if conf.Ack {
			return nil
		}
		return errors.New("broker nacked " + topic)
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *RabbitPublisher) Ping() error {
	if p.conn == nil || p.conn.IsClosed() {
		return errors.New("broker connection is closed")
	}
	return nil
}

func (p *RabbitPublisher) Close() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}
