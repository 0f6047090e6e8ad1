//go:build integration

package orders

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joao-fontenele/cartflow/internal/cart"
	"github.com/joao-fontenele/cartflow/internal/catalog"
	"github.com/joao-fontenele/cartflow/internal/domain"
	"github.com/joao-fontenele/cartflow/internal/store"
	"github.com/joao-fontenele/cartflow/internal/testutil"
)

func TestPostgres_PlaceOrder(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db := testutil.Postgres(ctx, t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	runner := store.NewRunner(db)
	carts := cart.NewService(runner, cart.NewEntryRepository(), catalog.NewProductRepository(db), nil, logger)
	repo := NewOrderRepository(db)
	publisher := &recordingPublisher{}
	svc := NewService(runner, repo, carts, publisher, nil, logger)

	add := func(t *testing.T, userID string, productIDs ...int64) {
		t.Helper()
		for _, id := range productIDs {
			_, err := carts.AddOrIncrement(ctx, userID, id)
			require.NoError(t, err)
		}
	}

	t.Run("order freezes the cart and empties it", func(t *testing.T) {
		add(t, "buyer", 4, 4, 5)

		order, err := svc.PlaceOrder(ctx, "buyer", domain.ShippingDetails{FullName: "Ana"}, "UPI")
		require.NoError(t, err)

		assert.Equal(t, domain.OrderStatusPaid, order.Status)
		assert.True(t, decimal.NewFromInt(847).Equal(order.TotalAmount), order.TotalAmount.String())

		stored, err := repo.GetByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, "N/A", stored.City)
		require.Len(t, stored.Items, 2)
		assert.Equal(t, 2, stored.Items[0].Quantity)

		lines, err := carts.Snapshot(ctx, "buyer")
		require.NoError(t, err)
		assert.Empty(t, lines)
		assert.Len(t, publisher.events, 1)
	})

	t.Run("later price changes do not touch the order", func(t *testing.T) {
		add(t, "frozen", 8)
		order, err := svc.PlaceOrder(ctx, "frozen", domain.ShippingDetails{}, "Card")
		require.NoError(t, err)

		_, err = db.ExecContext(ctx, `UPDATE products SET price = 1 WHERE id = 8`)
		require.NoError(t, err)

		stored, err := repo.GetByID(ctx, order.ID)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(899).Equal(stored.TotalAmount))
		assert.True(t, decimal.NewFromInt(899).Equal(stored.Items[0].UnitPrice))
	})

	t.Run("missing product aborts without side effects", func(t *testing.T) {
		add(t, "diverged", 1)
		_, err := db.ExecContext(ctx, `INSERT INTO cart_entries (user_id, product_id, quantity) VALUES ('diverged', 999, 1)`)
		require.NoError(t, err)

		_, err = svc.PlaceOrder(ctx, "diverged", domain.ShippingDetails{}, "UPI")
		assert.ErrorIs(t, err, domain.ErrConsistencyFault)

		var entries int
		require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cart_entries WHERE user_id = 'diverged'`).Scan(&entries))
		assert.Equal(t, 2, entries)

		orders, err := svc.List(ctx, "diverged")
		require.NoError(t, err)
		assert.Empty(t, orders)
	})

	t.Run("empty cart", func(t *testing.T) {
		_, err := svc.PlaceOrder(ctx, "nobody", domain.ShippingDetails{}, "UPI")

		assert.ErrorIs(t, err, domain.ErrEmptyCart)
	})

	t.Run("concurrent add during placement is fully in or fully out", func(t *testing.T) {
		add(t, "racer", 2)

		done := make(chan error, 1)
		go func() {
			_, err := carts.AddOrIncrement(ctx, "racer", 2)
			done <- err
		}()
		order, err := svc.PlaceOrder(ctx, "racer", domain.ShippingDetails{}, "UPI")
		require.NoError(t, err)
		require.NoError(t, <-done)

		lines, err := carts.Snapshot(ctx, "racer")
		require.NoError(t, err)

		ordered := order.Items[0].Quantity
		remaining := 0
		if len(lines) == 1 {
			remaining = lines[0].Entry.Quantity
		}
		assert.Equal(t, 2, ordered+remaining)
	})

	t.Run("status update and listing", func(t *testing.T) {
		add(t, "lister", 3)
		first, err := svc.PlaceOrder(ctx, "lister", domain.ShippingDetails{}, "Card")
		require.NoError(t, err)
		add(t, "lister", 6)
		second, err := svc.PlaceOrder(ctx, "lister", domain.ShippingDetails{}, "Card")
		require.NoError(t, err)

		_, err = svc.UpdateStatus(ctx, "someone-else", first.ID, domain.OrderStatusCancelled)
		assert.ErrorIs(t, err, domain.ErrNotFound)

		cancelled, err := svc.UpdateStatus(ctx, "lister", first.ID, domain.OrderStatusCancelled)
		require.NoError(t, err)
		assert.Equal(t, domain.OrderStatusCancelled, cancelled.Status)

		orders, err := svc.List(ctx, "lister")
		require.NoError(t, err)
		require.Len(t, orders, 2)
		assert.Equal(t, second.ID, orders[0].ID)
		assert.Len(t, orders[1].Items, 1)

		_, err = svc.Get(ctx, "someone-else", first.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
