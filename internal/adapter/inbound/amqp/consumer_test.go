package amqp

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	amqp091 "github.com/rabbitmq/amqp091-go"
	inboundevents "github.com/storefront/server/internal/adapter/inbound/events"
	"github.com/storefront/server/internal/adapter/outbound/memory"
	"github.com/storefront/server/internal/domain/role"
	"github.com/storefront/server/internal/infra/events"
	"github.com/storefront/server/internal/model"
	"github.com/storefront/server/internal/utils/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ackCall struct {
	tag     uint64
	ack     bool
	requeue bool
}

// fakeAcknowledger records acks and nacks.
type fakeAcknowledger struct {
	mu    sync.Mutex
	calls []ackCall
}

func (a *fakeAcknowledger) Ack(tag uint64, _ bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, ackCall{tag: tag, ack: true})
	return nil
}

func (a *fakeAcknowledger) Nack(tag uint64, _ bool, requeue bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, ackCall{tag: tag, requeue: requeue})
	return nil
}

func (a *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	return a.Nack(tag, false, requeue)
}

func (a *fakeAcknowledger) recorded() []ackCall {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]ackCall(nil), a.calls...)
}

// fakeChannel serves deliveries from a buffered channel.
type fakeChannel struct {
	deliveries chan amqp091.Delivery
	declared   string
	durable    bool
	prefetch   int
	declareErr error
}

func (c *fakeChannel) QueueDeclare(name string, durable, _, _, _ bool, _ amqp091.Table) (amqp091.Queue, error) {
	c.declared, c.durable = name, durable
	return amqp091.Queue{Name: name}, c.declareErr
}

func (c *fakeChannel) Qos(prefetchCount, _ int, _ bool) error {
	c.prefetch = prefetchCount
	return nil
}

func (c *fakeChannel) Consume(string, string, bool, bool, bool, bool, amqp091.Table) (<-chan amqp091.Delivery, error) {
	return c.deliveries, nil
}

func (c *fakeChannel) Close() error { return nil }

type publisherFunc func(ctx context.Context, event events.Event) error

func (f publisherFunc) Publish(ctx context.Context, event events.Event) error {
	return f(ctx, event)
}

func delivery(ack amqp091.Acknowledger, tag uint64, body string) amqp091.Delivery {
	return amqp091.Delivery{Acknowledger: ack, DeliveryTag: tag, Body: []byte(body)}
}

func TestConsumer_AckNackRequeue(t *testing.T) {
	ack := &fakeAcknowledger{}
	ch := &fakeChannel{deliveries: make(chan amqp091.Delivery, 3)}
	ch.deliveries <- delivery(ack, 1, `{"invite_id":"inv_1"}`)
	ch.deliveries <- delivery(ack, 2, `[]`)
	ch.deliveries <- delivery(ack, 3, `{"user_id":"fail"}`)

	pub := publisherFunc(func(_ context.Context, event events.Event) error {
		ev := event.(*events.InviteAcceptedEvent)
		assert.Equal(t, events.TransportAMQP, ev.Transport)
		if ev.Payload.UserID == "fail" {
			return role.ErrMetadataWrite
		}
		return nil
	})
	m := metrics.NewWithRegistry("test", prometheus.NewRegistry())
	c := NewConsumer(ch, pub, Config{Queue: "invite.accepted", Prefetch: 5}, m, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	assert.Eventually(t, func() bool { return len(ack.recorded()) == 3 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	assert.Equal(t, []ackCall{
		{tag: 1, ack: true},
		{tag: 2, requeue: false},
		{tag: 3, requeue: true},
	}, ack.recorded())
	assert.Equal(t, "invite.accepted", ch.declared)
	assert.True(t, ch.durable)
	assert.Equal(t, 5, ch.prefetch)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.EventsConsumedTotal.WithLabelValues("amqp", "failed")))
}

func TestConsumer_StaleUserIsAcked(t *testing.T) {
	store := memory.NewStore()
	store.PutUser(&model.User{ID: "usr_ok", Email: "ok@example.com"})
	reconciler := role.NewReconciler(memory.NewInviteAdapter(store), memory.NewUserAdapter(store), nil)
	bus := events.NewBus(nil)
	bus.Register(inboundevents.NewInviteAcceptedHandler(reconciler, nil, time.Second, nil))

	ack := &fakeAcknowledger{}
	ch := &fakeChannel{deliveries: make(chan amqp091.Delivery, 2)}
	ch.deliveries <- delivery(ack, 1, `{"user_id":"usr_deleted"}`)
	ch.deliveries <- delivery(ack, 2, `{"user_id":"usr_ok","metadata":{"role":"blog_editor"}}`)
	c := NewConsumer(ch, bus, Config{Queue: "q", RequeueDelay: time.Millisecond}, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	assert.Eventually(t, func() bool { return len(ack.recorded()) == 2 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	assert.Equal(t, []ackCall{{tag: 1, ack: true}, {tag: 2, ack: true}}, ack.recorded())
	u, ok := store.User("usr_ok")
	require.True(t, ok)
	assert.Equal(t, "blog_editor", u.Metadata["role"])
}

func TestConsumer_PermanentFailureIsNotRequeued(t *testing.T) {
	ack := &fakeAcknowledger{}
	ch := &fakeChannel{deliveries: make(chan amqp091.Delivery, 1)}
	ch.deliveries <- delivery(ack, 1, `{"user_id":"u_1"}`)
	m := metrics.NewWithRegistry("test", prometheus.NewRegistry())
	c := NewConsumer(ch, events.NewBus(nil), Config{Queue: "q"}, m, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	assert.Eventually(t, func() bool { return len(ack.recorded()) == 1 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	assert.Equal(t, []ackCall{{tag: 1, requeue: false}}, ack.recorded())
	assert.Equal(t, float64(1), testutil.ToFloat64(m.EventsConsumedTotal.WithLabelValues("amqp", "dropped")))
}

func TestConsumer_DeliveriesClosed(t *testing.T) {
	ch := &fakeChannel{deliveries: make(chan amqp091.Delivery)}
	close(ch.deliveries)
	c := NewConsumer(ch, publisherFunc(func(context.Context, events.Event) error { return nil }), Config{Queue: "q"}, nil, nil)

	err := c.Run(context.Background())
	assert.ErrorIs(t, err, ErrDeliveriesClosed)
}

func TestConsumer_DeclareFailure(t *testing.T) {
	ch := &fakeChannel{declareErr: errors.New("access refused")}
	c := NewConsumer(ch, publisherFunc(func(context.Context, events.Event) error { return nil }), Config{Queue: "q"}, nil, nil)

	err := c.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "declare queue q")
}
