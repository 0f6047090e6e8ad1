package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusConfirmed OrderStatus = "Confirmed"
	OrderStatusPaid      OrderStatus = "Paid"
	OrderStatusShipped   OrderStatus = "Shipped"
	OrderStatusDelivered OrderStatus = "Delivered"
	OrderStatusCancelled OrderStatus = "Cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusPaid,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

const (
	PaymentMethodUPI     = "UPI"
	PaymentMethodUnknown = "Unknown"

	shippingPlaceholder = "N/A"
)

// StatusForPayment marks UPI orders as paid on placement. No processor is
// consulted; every other method is only confirmed.
func StatusForPayment(paymentMethod string) OrderStatus {
	if paymentMethod == PaymentMethodUPI {
		return OrderStatusPaid
	}
	return OrderStatusConfirmed
}

type ShippingDetails struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	City     string `json:"city"`
	Address  string `json:"address"`
}

// WithDefaults replaces every blank field with "N/A".
func (d ShippingDetails) WithDefaults() ShippingDetails {
	return ShippingDetails{
		FullName: orPlaceholder(d.FullName, shippingPlaceholder),
		Phone:    orPlaceholder(d.Phone, shippingPlaceholder),
		City:     orPlaceholder(d.City, shippingPlaceholder),
		Address:  orPlaceholder(d.Address, shippingPlaceholder),
	}
}

type OrderLineItem struct {
	ID        int64           `json:"id"`
	OrderID   int64           `json:"order_id"`
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

func (i OrderLineItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Order struct {
	ID            int64           `json:"id"`
	UserID        string          `json:"user_id"`
	FullName      string          `json:"full_name"`
	Phone         string          `json:"phone"`
	City          string          `json:"city"`
	Address       string          `json:"address"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaymentMethod string          `json:"payment_method"`
	Status        OrderStatus     `json:"status"`
	OrderDate     time.Time       `json:"order_date"`
	Items         []OrderLineItem `json:"items"`
}

// NewOrder freezes the given cart lines into an order: unit prices are copied
// from the resolved products and the total is computed from those copies.
func NewOrder(userID string, shipping ShippingDetails, paymentMethod string, lines []CartLine, now time.Time) Order {
	shipping = shipping.WithDefaults()
	paymentMethod = orPlaceholder(paymentMethod, PaymentMethodUnknown)

	order := Order{
		UserID:        userID,
		FullName:      shipping.FullName,
		Phone:         shipping.Phone,
		City:          shipping.City,
		Address:       shipping.Address,
		TotalAmount:   decimal.Zero,
		PaymentMethod: paymentMethod,
		Status:        StatusForPayment(paymentMethod),
		OrderDate:     now,
		Items:         make([]OrderLineItem, 0, len(lines)),
	}

	for _, line := range lines {
		item := OrderLineItem{
			ProductID: line.Product.ID,
			Quantity:  line.Entry.Quantity,
			UnitPrice: line.Product.Price,
		}
		order.Items = append(order.Items, item)
		order.TotalAmount = order.TotalAmount.Add(item.Subtotal())
	}

	return order
}

func orPlaceholder(value, placeholder string) string {
	if strings.TrimSpace(value) == "" {
		return placeholder
	}
	return value
}
