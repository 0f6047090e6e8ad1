package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/joao-fontenele/cartflow/internal/domain"
)

// ShopMetrics holds the business instruments of the shop service.
// A nil *ShopMetrics records nothing.
type ShopMetrics struct {
	mutations    metric.Int64Counter
	ordersPlaced metric.Int64Counter
	orderTotal   metric.Float64Histogram
}

func NewShopMetrics(meter metric.Meter) (*ShopMetrics, error) {
	mutations, err := meter.Int64Counter("shop.collection.mutations",
		metric.WithDescription("Cart and wishlist mutations by operation and outcome"),
	)
	if err != nil {
		return nil, err
	}

	ordersPlaced, err := meter.Int64Counter("shop.orders.placed",
		metric.WithDescription("Orders placed by initial status"),
	)
	if err != nil {
		return nil, err
	}

	orderTotal, err := meter.Float64Histogram("shop.order.total",
		metric.WithDescription("Order total amount at placement"),
	)
	if err != nil {
		return nil, err
	}

	return &ShopMetrics{
		mutations:    mutations,
		ordersPlaced: ordersPlaced,
		orderTotal:   orderTotal,
	}, nil
}

func (m *ShopMetrics) Mutation(ctx context.Context, collection, operation string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.mutations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("collection", collection),
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	))
}

func (m *ShopMetrics) OrderPlaced(ctx context.Context, order domain.Order) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("status", string(order.Status)))
	m.ordersPlaced.Add(ctx, 1, attrs)
	m.orderTotal.Record(ctx, order.TotalAmount.InexactFloat64(), attrs)
}
