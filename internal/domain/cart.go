package domain

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// Stored cart quantities are clamped to [MinQuantity, MaxQuantity]. The upper
// bound is the range of the quantity column.
const (
	MinQuantity = 1
	MaxQuantity = math.MaxInt32
)

type CartEntry struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	ProductID int64     `json:"product_id"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"added_at"`
}

// CartLine pairs a cart entry with the product it currently resolves to.
type CartLine struct {
	Entry   CartEntry `json:"entry"`
	Product Product   `json:"product"`
}

func (l CartLine) Subtotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Entry.Quantity)))
}

type CartSummary struct {
	Lines     []CartLine      `json:"lines"`
	ItemCount int             `json:"item_count"`
	Total     decimal.Decimal `json:"total"`
}

func NewCartSummary(lines []CartLine) CartSummary {
	summary := CartSummary{Lines: lines, Total: decimal.Zero}
	if summary.Lines == nil {
		summary.Lines = []CartLine{}
	}
	for _, line := range lines {
		summary.ItemCount += line.Entry.Quantity
		summary.Total = summary.Total.Add(line.Subtotal())
	}
	return summary
}

func ClampQuantity(quantity int) int {
	return min(max(MinQuantity, quantity), MaxQuantity)
}
