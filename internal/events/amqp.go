package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// amqpChannel is the part of *amqp.Channel the publisher uses.
type amqpChannel interface {
	IsClosed() bool
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type amqpConn interface {
	IsClosed() bool
	openChannel() (amqpChannel, error)
	Close() error
}

type dialedConn struct {
	*amqp.Connection
}

func (c dialedConn) openChannel() (amqpChannel, error) {
	return c.Channel()
}

func dialAMQP(url string) (amqpConn, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	return dialedConn{conn}, nil
}

type amqpPublisher struct {
	url  string
	log  *zap.Logger
	dial func(url string) (amqpConn, error)

	mu   sync.Mutex
	conn amqpConn
	ch   amqpChannel
}

// NewAMQPPublisher dials the broker and declares the durable event queues.
// A dropped connection or channel is re-established lazily on the next publish.
func NewAMQPPublisher(url string, log *zap.Logger) (Publisher, error) {
	return newAMQPPublisher(url, log, dialAMQP)
}

func newAMQPPublisher(url string, log *zap.Logger, dial func(string) (amqpConn, error)) (*amqpPublisher, error) {
	p := &amqpPublisher{url: url, log: log, dial: dial}
	if err := p.ensure(); err != nil {
		return nil, err
	}
	return p, nil
}

// ensure must be called with p.mu held (or before p is shared).
func (p *amqpPublisher) ensure() error {
	if p.conn == nil || p.conn.IsClosed() {
		if p.conn != nil {
			p.log.Info("reconnecting to rabbitmq")
		}
		conn, err := p.dial(p.url)
		if err != nil {
			return fmt.Errorf("rabbitmq dial failed: %w", err)
		}
		p.conn = conn
		p.ch = nil
	}

	if p.ch != nil && !p.ch.IsClosed() {
		return nil
	}
	if p.ch != nil {
		p.log.Info("reopening rabbitmq channel")
	}
	ch, err := p.conn.openChannel()
	if err != nil {
		return fmt.Errorf("rabbitmq channel open failed: %w", err)
	}
	if _, err := ch.QueueDeclare(
		AppointmentFinalizedKey, // name
		true,                    // durable
		false,                   // autoDelete
		false,                   // exclusive
		false,                   // noWait
		nil,                     // args
	); err != nil {
		_ = ch.Close()
		return fmt.Errorf("rabbitmq queue declare failed: %w", err)
	}
	p.ch = ch
	return nil
}

func (p *amqpPublisher) PublishAppointmentFinalized(ctx context.Context, event AppointmentFinalized) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event failed: %w", err)
	}
	return p.publish(ctx, AppointmentFinalizedKey, body)
}

func (p *amqpPublisher) publish(ctx context.Context, key string, body []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensure(); err != nil {
		return err
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := p.ch.PublishWithContext(ctx,
		"",    // default exchange
		key,   // routing key = queue name
		false, // mandatory
		false, // immediate
		msg,
	); err != nil {
		return fmt.Errorf("rabbitmq publish failed: %w", err)
	}
	return nil
}

func (p *amqpPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
