package outbox

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureProducer struct {
	msgs []kafka.Message
	err  error
}

func (p *captureProducer) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, msgs...)
	return nil
}

func TestDispatchBuildsMessage(t *testing.T) {
	producer := &captureProducer{}
	d := NewDispatcher(slog.New(slog.NewTextHandler(io.Discard, nil)), producer, "storefront.orders")

	err := d.Dispatch(context.Background(), Event{
		ID:          12,
		AggregateID: "42",
		Type:        "OrderPlaced",
		Payload:     []byte(`{"order_id":42}`),
		Headers:     map[string]string{"source": "storefront"},
		Traceparent: "00-abc-def-01",
	})

	require.NoError(t, err)
	require.Len(t, producer.msgs, 1)
	msg := producer.msgs[0]
	assert.Equal(t, "storefront.orders", msg.Topic)
	assert.Equal(t, []byte("42"), msg.Key)
	assert.Equal(t, []byte(`{"order_id":42}`), msg.Value)

	got := map[string]string{}
	for _, h := range msg.Headers {
		got[h.Key] = string(h.Value)
	}
	assert.Equal(t, "OrderPlaced", got["event_type"])
	assert.Equal(t, "00-abc-def-01", got["traceparent"])
	assert.Equal(t, "storefront", got["source"])
}

func TestDispatchOmitsEmptyTraceparent(t *testing.T) {
	producer := &captureProducer{}
	d := NewDispatcher(slog.New(slog.NewTextHandler(io.Discard, nil)), producer, "storefront.orders")

	err := d.Dispatch(context.Background(), Event{ID: 1, AggregateID: "1", Type: "OrderPlaced"})

	require.NoError(t, err)
	for _, h := range producer.msgs[0].Headers {
		assert.NotEqual(t, "traceparent", h.Key)
	}
}

func TestDispatchReturnsProducerError(t *testing.T) {
	producer := &captureProducer{err: errors.New("broker down")}
	d := NewDispatcher(slog.New(slog.NewTextHandler(io.Discard, nil)), producer, "storefront.orders")

	err := d.Dispatch(context.Background(), Event{ID: 1})

	require.Error(t, err)
}
