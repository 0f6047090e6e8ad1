//go:build integration

package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/joao-fontenele/cartflow/internal/domain"
	"github.com/joao-fontenele/cartflow/internal/testutil"
)

func TestKafka_PublishAndConsume(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	brokers := testutil.Kafka(ctx, t)

	otel.SetTracerProvider(sdktrace.NewTracerProvider())
	otel.SetTextMapPropagator(propagation.TraceContext{})

	const topic = "order.placed.test"
	producer := NewProducer(brokers, topic)
	defer func() { _ = producer.Close() }()

	pubCtx, span := otel.Tracer("test").Start(ctx, "place order")
	event := domain.OrderPlacedEvent{EventID: "evt-1", OrderID: 42, UserID: "ana", Status: domain.OrderStatusPaid}
	require.NoError(t, producer.Publish(pubCtx, event.UserID, event))
	span.End()

	consumer := NewConsumer(brokers, topic, "integration-test", WithStartOffset(kafka.FirstOffset))
	defer func() { _ = consumer.Close() }()

	stop := errors.New("stop")
	var (
		got     Delivery
		traceID trace.TraceID
	)
	err := consumer.Consume(ctx, func(ctx context.Context, d Delivery) error {
		got = d
		traceID = trace.SpanContextFromContext(ctx).TraceID()
		return stop
	})
	require.ErrorIs(t, err, stop)

	assert.Equal(t, "ana", got.Key)
	assert.Equal(t, domain.EventTypeOrderPlaced, got.EventType)
	assert.Equal(t, span.SpanContext().TraceID(), traceID)

	var decoded domain.OrderPlacedEvent
	require.NoError(t, json.Unmarshal(got.Payload, &decoded))
	assert.Equal(t, int64(42), decoded.OrderID)
}
