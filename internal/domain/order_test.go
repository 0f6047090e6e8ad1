package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusForPayment(t *testing.T) {
	assert.Equal(t, OrderStatusPaid, StatusForPayment("UPI"))
	assert.Equal(t, OrderStatusConfirmed, StatusForPayment("COD"))
	assert.Equal(t, OrderStatusConfirmed, StatusForPayment("upi"))
	assert.Equal(t, OrderStatusConfirmed, StatusForPayment(""))
}

func TestShippingDetails_WithDefaults(t *testing.T) {
	got := ShippingDetails{FullName: "Asuka", City: "  "}.WithDefaults()

	assert.Equal(t, ShippingDetails{
		FullName: "Asuka",
		Phone:    "N/A",
		City:     "N/A",
		Address:  "N/A",
	}, got)
}

func TestNewOrder(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	lines := []CartLine{
		{
			Entry:   CartEntry{ID: 1, UserID: "u1", ProductID: 10, Quantity: 2},
			Product: Product{ID: 10, Price: decimal.NewFromInt(10)},
		},
		{
			Entry:   CartEntry{ID: 2, UserID: "u1", ProductID: 11, Quantity: 1},
			Product: Product{ID: 11, Price: decimal.NewFromInt(5)},
		},
	}

	t.Run("UPI order is paid and totals the snapshot", func(t *testing.T) {
		order := NewOrder("u1", ShippingDetails{}, "UPI", lines, now)

		assert.Equal(t, "u1", order.UserID)
		assert.Equal(t, OrderStatusPaid, order.Status)
		assert.True(t, decimal.NewFromInt(25).Equal(order.TotalAmount), "total was %s", order.TotalAmount)
		assert.Equal(t, now, order.OrderDate)
		assert.Equal(t, "N/A", order.FullName)
		require.Len(t, order.Items, 2)
		assert.Equal(t, int64(10), order.Items[0].ProductID)
		assert.Equal(t, 2, order.Items[0].Quantity)
		assert.True(t, decimal.NewFromInt(10).Equal(order.Items[0].UnitPrice))
	})

	t.Run("missing payment method is recorded as Unknown", func(t *testing.T) {
		order := NewOrder("u1", ShippingDetails{}, "", lines, now)

		assert.Equal(t, "Unknown", order.PaymentMethod)
		assert.Equal(t, OrderStatusConfirmed, order.Status)
	})

	t.Run("unit price is a copy of the observed price", func(t *testing.T) {
		local := append([]CartLine(nil), lines...)
		order := NewOrder("u1", ShippingDetails{}, "Card", local, now)

		local[0].Product.Price = decimal.NewFromInt(999)

		assert.True(t, decimal.NewFromInt(10).Equal(order.Items[0].UnitPrice))
	})
}

func TestOrderStatus_Valid(t *testing.T) {
	assert.True(t, OrderStatusShipped.Valid())
	assert.False(t, OrderStatus("lost").Valid())
}
