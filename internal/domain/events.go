package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderPlacedEvent struct {
	EventID       string          `json:"event_id"`
	OrderID       int64           `json:"order_id"`
	UserID        string          `json:"user_id"`
	Status        OrderStatus     `json:"status"`
	PaymentMethod string          `json:"payment_method"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Items         []OrderLineItem `json:"items"`
	PlacedAt      time.Time       `json:"placed_at"`
}

const EventTypeOrderPlaced = "order.placed"

func (OrderPlacedEvent) EventType() string {
	return EventTypeOrderPlaced
}
