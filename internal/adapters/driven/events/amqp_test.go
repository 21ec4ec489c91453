package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/paybridge/internal/core/ports/driven"
)

type fakeChannel struct {
	declared   []string
	durable    bool
	published  []amqp.Publishing
	keys       []string
	publishErr error
	closed     bool
}

func (c *fakeChannel) QueueDeclare(name string, durable, _, _, _ bool, _ amqp.Table) (amqp.Queue, error) {
	c.declared = append(c.declared, name)
	c.durable = durable
	return amqp.Queue{Name: name}, nil
}

func (c *fakeChannel) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp.Publishing) error {
	if c.publishErr != nil {
		return c.publishErr
	}
	c.keys = append(c.keys, key)
	c.published = append(c.published, msg)
	return nil
}

func (c *fakeChannel) IsClosed() bool { return c.closed }

func (c *fakeChannel) Close() error {
	c.closed = true
	return nil
}

// fakeBroker hands out a new channel per dial.
type fakeBroker struct {
	channels   []*fakeChannel
	connClosed int
	publishErr error
}

func (b *fakeBroker) open() (channel, func(), error) {
	ch := &fakeChannel{publishErr: b.publishErr}
	b.channels = append(b.channels, ch)
	return ch, func() { b.connClosed++ }, nil
}

func newTestPublisher(b *fakeBroker) *AMQPPublisher {
	return &AMQPPublisher{open: b.open}
}

func TestAMQPPublisher_Publish(t *testing.T) {
	broker := &fakeBroker{}
	pub := newTestPublisher(broker)

	err := pub.Publish(context.Background(), driven.Event{
		Type:    driven.EventBatchCompleted,
		Payload: map[string]any{"processed": 3},
	})
	require.NoError(t, err)

	require.Len(t, broker.channels, 1)
	ch := broker.channels[0]
	assert.Equal(t, []string{QueueName}, ch.declared)
	assert.True(t, ch.durable)
	require.Len(t, ch.published, 1)
	assert.Equal(t, []string{QueueName}, ch.keys)

	msg := ch.published[0]
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, driven.EventBatchCompleted, msg.Type)

	var decoded driven.Event
	require.NoError(t, json.Unmarshal(msg.Body, &decoded))
	assert.Equal(t, driven.EventBatchCompleted, decoded.Type)
	assert.EqualValues(t, 3, decoded.Payload["processed"])

	assert.False(t, ch.closed)
	assert.Zero(t, broker.connClosed)
}

func TestAMQPPublisher_ReusesConnection(t *testing.T) {
	broker := &fakeBroker{}
	pub := newTestPublisher(broker)
	ctx := context.Background()

	for range 5 {
		require.NoError(t, pub.Publish(ctx, driven.Event{Type: driven.EventFlagDrift}))
	}

	require.Len(t, broker.channels, 1)
	assert.Len(t, broker.channels[0].published, 5)
	assert.Equal(t, []string{QueueName}, broker.channels[0].declared)

	require.NoError(t, pub.Close())
	assert.True(t, broker.channels[0].closed)
	assert.Equal(t, 1, broker.connClosed)
	require.NoError(t, pub.Close())
	assert.Equal(t, 1, broker.connClosed)
}

func TestAMQPPublisher_RedialsAfterFailure(t *testing.T) {
	t.Run("publish error drops the connection", func(t *testing.T) {
		broker := &fakeBroker{publishErr: errors.New("channel closed")}
		pub := newTestPublisher(broker)

		err := pub.Publish(context.Background(), driven.Event{Type: driven.EventFlagDrift})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "publish record.flag_drift")
		assert.Equal(t, 1, broker.connClosed)

		broker.publishErr = nil
		require.NoError(t, pub.Publish(context.Background(), driven.Event{Type: driven.EventBatchCompleted}))
		require.Len(t, broker.channels, 2)
		assert.Len(t, broker.channels[1].published, 1)
	})

	t.Run("channel closed by the broker", func(t *testing.T) {
		broker := &fakeBroker{}
		pub := newTestPublisher(broker)
		require.NoError(t, pub.Publish(context.Background(), driven.Event{Type: driven.EventBatchCompleted}))
		broker.channels[0].closed = true

		require.NoError(t, pub.Publish(context.Background(), driven.Event{Type: driven.EventBatchCompleted}))
		require.Len(t, broker.channels, 2)
		assert.Len(t, broker.channels[1].published, 1)
	})
}

func TestAMQPPublisher_DialError(t *testing.T) {
	pub := &AMQPPublisher{open: func() (channel, func(), error) {
		return nil, nil, errors.New("dial broker: refused")
	}}
	err := pub.Publish(context.Background(), driven.Event{Type: driven.EventFlagDrift})
	assert.ErrorContains(t, err, "refused")
	assert.NoError(t, pub.Close())
}

func TestLogPublisher(t *testing.T) {
	assert.NoError(t, LogPublisher{}.Publish(context.Background(), driven.Event{Type: "x"}))
}
