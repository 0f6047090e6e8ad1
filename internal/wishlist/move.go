package wishlist

import (
	"context"

	"github.com/joao-fontenele/cartflow/internal/domain"
	"github.com/joao-fontenele/cartflow/internal/store"
)

// MoveToCart adds productID to the cart and drops it from the wishlist in
// one transaction. A product that was never wishlisted is still added.
func (s *Service) MoveToCart(ctx context.Context, userID string, productID int64) (domain.CartEntry, error) {
	if userID == "" {
		return domain.CartEntry{}, domain.ErrUnauthorized
	}

	var (
		entry   domain.CartEntry
		removed bool
	)
	err := s.tx.InUserTx(ctx, userID, func(q store.Querier) error {
		var err error
		entry, err = s.cart.IncrementWithin(ctx, q, userID, productID)
		if err != nil {
			return err
		}
		removed, err = s.entries.RemoveProduct(ctx, q, userID, productID)
		return err
	})
	s.metrics.Mutation(ctx, "wishlist", "move_to_cart", err)
	if err != nil {
		return domain.CartEntry{}, err
	}

	s.logger.Info("wishlisted product moved to cart",
		"user_id", userID,
		"product_id", productID,
		"quantity", entry.Quantity,
		"was_wishlisted", removed,
	)
	return entry, nil
}
