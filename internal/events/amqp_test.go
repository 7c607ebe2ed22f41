package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeChannel struct {
	closed    bool
	published []amqp.Publishing
	keys      []string
}

func (c *fakeChannel) IsClosed() bool { return c.closed }

func (c *fakeChannel) QueueDeclare(name string, _, _, _, _ bool, _ amqp.Table) (amqp.Queue, error) {
	return amqp.Queue{Name: name}, nil
}

func (c *fakeChannel) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp.Publishing) error {
	if c.closed {
		return amqp.ErrClosed
	}
	c.keys = append(c.keys, key)
	c.published = append(c.published, msg)
	return nil
}

func (c *fakeChannel) Close() error {
	c.closed = true
	return nil
}

type fakeConn struct {
	closed   bool
	channels []*fakeChannel
}

func (c *fakeConn) IsClosed() bool { return c.closed }

func (c *fakeConn) openChannel() (amqpChannel, error) {
	if c.closed {
		return nil, amqp.ErrClosed
	}
	ch := &fakeChannel{}
	c.channels = append(c.channels, ch)
	return ch, nil
}

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

type fakeBroker struct {
	conns []*fakeConn
	down  bool
}

func (b *fakeBroker) dial(string) (amqpConn, error) {
	if b.down {
		return nil, errors.New("connection refused")
	}
	c := &fakeConn{}
	b.conns = append(b.conns, c)
	return c, nil
}

func TestAMQPPublisherPublishesJSON(t *testing.T) {
	b := &fakeBroker{}
	p, err := newAMQPPublisher("amqp://test", zap.NewNop(), b.dial)
	require.NoError(t, err)

	require.NoError(t, p.PublishAppointmentFinalized(context.Background(), AppointmentFinalized{AppointmentID: "a1", BookedPrice: 4500}))

	ch := b.conns[0].channels[0]
	require.Len(t, ch.published, 1)
	assert.Equal(t, AppointmentFinalizedKey, ch.keys[0])
	assert.Equal(t, amqp.Persistent, ch.published[0].DeliveryMode)

	var got AppointmentFinalized
	require.NoError(t, json.Unmarshal(ch.published[0].Body, &got))
	assert.Equal(t, "a1", got.AppointmentID)
}

func TestAMQPPublisherReopensClosedChannel(t *testing.T) {
	b := &fakeBroker{}
	p, err := newAMQPPublisher("amqp://test", zap.NewNop(), b.dial)
	require.NoError(t, err)

	// A channel-level exception closes the channel but not the connection.
	b.conns[0].channels[0].closed = true

	require.NoError(t, p.PublishAppointmentFinalized(context.Background(), AppointmentFinalized{AppointmentID: "a1"}))

	require.Len(t, b.conns, 1, "the connection is reused")
	require.Len(t, b.conns[0].channels, 2)
	assert.Len(t, b.conns[0].channels[1].published, 1)
}

func TestAMQPPublisherRedialsClosedConnection(t *testing.T) {
	b := &fakeBroker{}
	p, err := newAMQPPublisher("amqp://test", zap.NewNop(), b.dial)
	require.NoError(t, err)

	b.conns[0].closed = true
	b.conns[0].channels[0].closed = true

	require.NoError(t, p.PublishAppointmentFinalized(context.Background(), AppointmentFinalized{AppointmentID: "a1"}))
	require.Len(t, b.conns, 2)
	assert.Len(t, b.conns[1].channels[0].published, 1)

	b.conns[1].closed = true
	b.down = true
	err = p.PublishAppointmentFinalized(context.Background(), AppointmentFinalized{AppointmentID: "a2"})
	assert.ErrorContains(t, err, "rabbitmq dial failed")
}
