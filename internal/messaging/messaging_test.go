package messaging

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/joao-fontenele/cartflow/internal/domain"
)

func TestNewMessage(t *testing.T) {
	t.Run("typed event carries its type header", func(t *testing.T) {
		msg, err := newMessage("u1", domain.OrderPlacedEvent{EventID: "e1", OrderID: 7})

		require.NoError(t, err)
		assert.Equal(t, "u1", string(msg.Key))
		assert.Equal(t, domain.EventTypeOrderPlaced, header(msg, EventTypeHeader))

		var decoded domain.OrderPlacedEvent
		require.NoError(t, json.Unmarshal(msg.Value, &decoded))
		assert.Equal(t, int64(7), decoded.OrderID)
	})

	t.Run("untyped event has no type header", func(t *testing.T) {
		msg, err := newMessage("k", map[string]string{"a": "b"})

		require.NoError(t, err)
		assert.Empty(t, msg.Headers)
	})

	t.Run("unmarshalable event", func(t *testing.T) {
		_, err := newMessage("k", make(chan int))

		assert.Error(t, err)
	})
}

func TestHeaderCarrier_PropagatesTraceContext(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	ctx, span := tp.Tracer("test").Start(context.Background(), "publish")
	defer span.End()

	propagator := propagation.TraceContext{}
	var msg kafka.Message
	propagator.Inject(ctx, newHeaderCarrier(&msg))
	propagator.Inject(ctx, newHeaderCarrier(&msg))

	assert.Len(t, msg.Headers, 1, "injecting twice overwrites the header")
	assert.Equal(t, []string{"traceparent"}, newHeaderCarrier(&msg).Keys())

	extracted := trace.SpanContextFromContext(propagator.Extract(context.Background(), newHeaderCarrier(&msg)))
	assert.Equal(t, span.SpanContext().TraceID(), extracted.TraceID())
}

func TestDeliveryOf(t *testing.T) {
	msg := kafka.Message{
		Key:       []byte("u1"),
		Value:     []byte(`{}`),
		Partition: 2,
		Offset:    40,
		Headers:   []kafka.Header{{Key: EventTypeHeader, Value: []byte("order.placed")}},
	}

	d := deliveryOf(msg)

	assert.Equal(t, Delivery{Key: "u1", EventType: "order.placed", Payload: []byte(`{}`), Partition: 2, Offset: 40}, d)
}
