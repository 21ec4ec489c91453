// Package events publishes batch and drift notifications.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/custodia-labs/paybridge/internal/core/ports/driven"
)

// QueueName is the durable queue events are routed to.
const QueueName = "paybridge.events"

// dialTimeout bounds the broker connection handshake.
const dialTimeout = 10 * time.Second

// channel is the subset of *amqp.Channel the publisher uses.
type channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	IsClosed() bool
	Close() error
}

// session opens a channel and returns a func closing everything it opened.
type session func() (channel, func(), error)

// AMQPPublisher publishes events as persistent JSON messages.
// The connection is opened on first use and shared by later publishes.
// A failed publish or a channel closed by the broker drops it; the next
// publish dials again.
type AMQPPublisher struct {
	open session

	mu        sync.Mutex
	ch        channel
	closeConn func()
}

var _ driven.EventPublisher = (*AMQPPublisher)(nil)

// NewAMQPPublisher creates a publisher for the broker at url.
// Nothing is dialed until the first Publish.
func NewAMQPPublisher(url string) *AMQPPublisher {
	return &AMQPPublisher{open: func() (channel, func(), error) {
		conn, err := amqp.DialConfig(url, amqp.Config{Dial: amqp.DefaultDial(dialTimeout)})
		if err != nil {
			return nil, nil, fmt.Errorf("dial broker: %w", err)
		}
		ch, err := conn.Channel()
		if err != nil {
			_ = conn.Close()
			return nil, nil, fmt.Errorf("open channel: %w", err)
		}
		return ch, func() { _ = conn.Close() }, nil
	}}
}

// Publish sends the event to QueueName.
func (p *AMQPPublisher) Publish(ctx context.Context, event driven.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel()
	if err != nil {
		return err
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         event.Type,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", QueueName, false, false, msg); err != nil {
		p.reset()
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}
	return nil
}

// Close releases the broker connection, if one is open.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
	return nil
}

// channel returns the open channel, connecting and declaring the queue when
// there is none (caller must hold lock).
func (p *AMQPPublisher) channel() (channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	p.reset()

	ch, closeConn, err := p.open()
	if err != nil {
		return nil, err
	}
	// Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(QueueName, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		closeConn()
		return nil, fmt.Errorf("declare queue: %w", err)
	}
	p.ch, p.closeConn = ch, closeConn
	return ch, nil
}

// reset closes the current channel and connection (caller must hold lock).
func (p *AMQPPublisher) reset() {
	if p.ch == nil {
		return
	}
	_ = p.ch.Close()
	p.closeConn()
	p.ch, p.closeConn = nil, nil
}
