package amqp

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cassa/internal/core"
	"cassa/internal/log"
)

type fakeChannel struct {
	mu        sync.Mutex
	errs       []error // returned in order, then nil
	published  []amqp091.Publishing
	keys       []string
	closed     bool
	deliveries chan amqp091.Delivery
}

func (f *fakeChannel) Consume(_, _ string, _, _, _, _ bool, _ amqp091.Table) (<-chan amqp091.Delivery, error) {
	if f.deliveries == nil {
		return nil, errors.New("consume refused")
	}
	return f.deliveries, nil
}

func (f *fakeChannel) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp091.Publishing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return err
		}
	}
	f.published = append(f.published, msg)
	f.keys = append(f.keys, key)
	return nil
}

func (f *fakeChannel) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func newTestClient(channels ...*fakeChannel) (*Client, *int) {
	dials := 0
	c := &Client{
		exchangeName: "cassa",
		queueName:    "cassa_events",
		logger:       log.Nop(),
		sleep:        func(context.Context, time.Duration) error { return nil },
	}
	c.dial = func() (channel, error) {
		if dials >= len(channels) {
			return nil, errors.New("dial tcp: connection refused")
		}
		ch := channels[dials]
		dials++
		return ch, nil
	}
	return c, &dials
}

func sampleTx() core.Transaction {
	return core.Transaction{
		ID:          1741946400000,
		Date:        time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC),
		Description: "Sale",
		Amount:      decimal.RequireFromString("500.50"),
		Type:        core.In,
		Mode:        core.UPI,
	}
}

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second},
		{15, 30 * time.Second},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt_%d", tt.attempt), func(t *testing.T) {
			assert.Equal(t, tt.expected, exponentialBackoff(tt.attempt))
		})
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"connection refused", errors.New("connection refused"), true},
		{"unexpected EOF", errors.New("unexpected EOF"), true},
		{"broken pipe", errors.New("broken pipe"), true},
		{"closed sentinel", fmt.Errorf("publish: %w", amqp091.ErrClosed), true},
		{"other error", errors.New("invalid input"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isConnectionError(tt.err))
		})
	}
}

func TestClientCircuitBreaker(t *testing.T) {
	client := &Client{logger: log.Nop()}

	t.Run("initial state is closed", func(t *testing.T) {
		assert.False(t, client.isCircuitOpen())
	})

	t.Run("multiple failures open circuit", func(t *testing.T) {
		for i := 0; i < maxFailures; i++ {
			client.recordFailure()
		}
		assert.True(t, client.isCircuitOpen())
		assert.Equal(t, StateOpen, atomic.LoadInt32(&client.state))
	})

	t.Run("circuit transitions to half-open after timeout", func(t *testing.T) {
		client.lastFailure = time.Now().Add(-openTimeout - time.Second)
		assert.False(t, client.isCircuitOpen())
		assert.Equal(t, StateHalfOpen, atomic.LoadInt32(&client.state))
	})

	t.Run("failure while half-open reopens", func(t *testing.T) {
		atomic.StoreInt64(&client.failureCount, 0)
		client.recordFailure()
		assert.Equal(t, StateOpen, atomic.LoadInt32(&client.state))
	})

	t.Run("record success resets state", func(t *testing.T) {
		client.recordSuccess()
		assert.False(t, client.isCircuitOpen())
		assert.Zero(t, atomic.LoadInt64(&client.failureCount))
	})
}

func TestPublishTransactionCreated(t *testing.T) {
	ch := &fakeChannel{}
	c, _ := newTestClient(ch)

	require.NoError(t, c.PublishTransactionCreated(context.Background(), sampleTx()))
	require.Len(t, ch.published, 1)
	assert.Equal(t, "cassa_events", ch.keys[0])
	assert.Equal(t, amqp091.Persistent, ch.published[0].DeliveryMode)

	ev, err := TransactionEventFromJSON(ch.published[0].Body)
	require.NoError(t, err)
	assert.Equal(t, OpCreated, ev.Op)
	assert.Equal(t, int64(1741946400000), ev.ID)
	assert.Equal(t, "in", ev.Type)
	assert.Equal(t, "UPI", ev.Mode)
	assert.Equal(t, "500.5", ev.Amount)
}

func TestPublishReconnectsOnConnectionError(t *testing.T) {
	broken := &fakeChannel{errs: []error{amqp091.ErrClosed}}
	fresh := &fakeChannel{}
	c, dials := newTestClient(broken, fresh)

	require.NoError(t, c.PublishTransactionDeleted(context.Background(), 42))
	assert.Equal(t, 2, *dials)
	assert.True(t, broken.closed)
	require.Len(t, fresh.published, 1)

	ev, err := TransactionEventFromJSON(fresh.published[0].Body)
	require.NoError(t, err)
	assert.Equal(t, OpDeleted, ev.Op)
	assert.Equal(t, int64(42), ev.ID)
}

func TestPublishDoesNotRetryOtherErrors(t *testing.T) {
	ch := &fakeChannel{errs: []error{errors.New("NOT_FOUND - no exchange")}}
	c, dials := newTestClient(ch)

	err := c.PublishTransactionDeleted(context.Background(), 1)
	assert.ErrorContains(t, err, "no exchange")
	assert.Equal(t, 1, *dials)
	assert.Equal(t, int64(1), atomic.LoadInt64(&c.failureCount))
}

func TestPublishGivesUpWhenBrokerIsDown(t *testing.T) {
	c, dials := newTestClient()

	err := c.PublishTransactionDeleted(context.Background(), 1)
	assert.ErrorContains(t, err, "connection refused")
	assert.Equal(t, 0, *dials)
}

func TestPublishFailsFastWhenCircuitOpen(t *testing.T) {
	ch := &fakeChannel{}
	c, _ := newTestClient(ch)
	atomic.StoreInt32(&c.state, StateOpen)
	c.lastFailure = time.Now()

	err := c.PublishTransactionCreated(context.Background(), sampleTx())
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Empty(t, ch.published)
}

func TestPublishRespectsCancelledContext(t *testing.T) {
	c, _ := newTestClient(&fakeChannel{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, c.PublishTransactionCreated(ctx, sampleTx()), context.Canceled)
}

func TestNewDeletedEventOmitsDetails(t *testing.T) {
	data, err := NewDeletedEvent(9).ToJSON()
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"amount"`)
	assert.Contains(t, string(data), `"op":"deleted"`)
}

func TestTransactionEventInvalidJSON(t *testing.T) {
	_, err := TransactionEventFromJSON([]byte(`{"id": "not_a_number"}`))
	assert.Error(t, err)
}

type fakeAcker struct {
	mu      sync.Mutex
	acked   []uint64
	nacked  []uint64
	requeue []bool
}

func (a *fakeAcker) Ack(tag uint64, _ bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.acked = append(a.acked, tag)
	return nil
}

func (a *fakeAcker) Nack(tag uint64, _ bool, requeue bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nacked = append(a.nacked, tag)
	a.requeue = append(a.requeue, requeue)
	return nil
}

func (a *fakeAcker) Reject(tag uint64, requeue bool) error {
	return a.Nack(tag, false, requeue)
}

func TestConsumeEvents(t *testing.T) {
	deliveries := make(chan amqp091.Delivery, 3)
	ch := &fakeChannel{deliveries: deliveries}
	c, _ := newTestClient(ch)
	acker := &fakeAcker{}

	created, err := NewCreatedEvent(sampleTx()).ToJSON()
	require.NoError(t, err)
	deleted, err := NewDeletedEvent(7).ToJSON()
	require.NoError(t, err)

	deliveries <- amqp091.Delivery{Acknowledger: acker, DeliveryTag: 1, Body: created}
	deliveries <- amqp091.Delivery{Acknowledger: acker, DeliveryTag: 2, Body: []byte("not json")}
	deliveries <- amqp091.Delivery{Acknowledger: acker, DeliveryTag: 3, Body: deleted}
	close(deliveries)

	var seen []string
	err = c.ConsumeEvents(context.Background(), func(_ context.Context, ev *TransactionEvent) error {
		seen = append(seen, ev.Op)
		if ev.Op == OpDeleted {
			return errors.New("sheet unavailable")
		}
		return nil
	})
	require.Error(t, err, "closed delivery channel ends consumption")

	assert.Equal(t, []string{OpCreated, OpDeleted}, seen)
	assert.Equal(t, []uint64{1}, acker.acked)
	assert.Equal(t, []uint64{2, 3}, acker.nacked)
	assert.Equal(t, []bool{false, true}, acker.requeue)
}

func TestConsumeEventsStopsOnCancel(t *testing.T) {
	ch := &fakeChannel{deliveries: make(chan amqp091.Delivery)}
	c, _ := newTestClient(ch)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := c.ConsumeEvents(ctx, func(context.Context, *TransactionEvent) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConsumeEventsRefused(t *testing.T) {
	c, _ := newTestClient(&fakeChannel{})
	err := c.ConsumeEvents(context.Background(), func(context.Context, *TransactionEvent) error { return nil })
	assert.ErrorContains(t, err, "start consuming")
}
