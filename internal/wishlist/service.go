package wishlist

import (
	"context"
	"log/slog"

	"github.com/joao-fontenele/cartflow/internal/domain"
	"github.com/joao-fontenele/cartflow/internal/store"
	"github.com/joao-fontenele/cartflow/internal/telemetry"
)

type TxRunner interface {
	InUserTx(ctx context.Context, userID string, fn func(q store.Querier) error) error
	Querier() store.Querier
}

type Catalog interface {
	Resolve(ctx context.Context, q store.Querier, id int64) (domain.Product, error)
	LookupMany(ctx context.Context, q store.Querier, ids []int64) (map[int64]domain.Product, error)
}

type Entries interface {
	Add(ctx context.Context, q store.Querier, userID string, productID int64) (bool, error)
	Remove(ctx context.Context, q store.Querier, userID string, entryID int64) error
	RemoveProduct(ctx context.Context, q store.Querier, userID string, productID int64) (bool, error)
	Clear(ctx context.Context, q store.Querier, userID string) (int64, error)
	List(ctx context.Context, q store.Querier, userID string) ([]domain.WishlistEntry, error)
}

// Cart is the part of the cart manager the move operation composes with.
type Cart interface {
	IncrementWithin(ctx context.Context, q store.Querier, userID string, productID int64) (domain.CartEntry, error)
}

type Service struct {
	tx      TxRunner
	entries Entries
	catalog Catalog
	cart    Cart
	metrics *telemetry.ShopMetrics
	logger  *slog.Logger
}

func NewService(tx TxRunner, entries Entries, catalog Catalog, cart Cart, metrics *telemetry.ShopMetrics, logger *slog.Logger) *Service {
	return &Service{
		tx:      tx,
		entries: entries,
		catalog: catalog,
		cart:    cart,
		metrics: metrics,
		logger:  logger,
	}
}

// Add wishlists productID. Adding an already wishlisted product succeeds
// without creating a second entry.
func (s *Service) Add(ctx context.Context, userID string, productID int64) error {
	if userID == "" {
		return domain.ErrUnauthorized
	}

	var created bool
	err := s.tx.InUserTx(ctx, userID, func(q store.Querier) error {
		if _, err := s.catalog.Resolve(ctx, q, productID); err != nil {
			return err
		}
		var err error
		created, err = s.entries.Add(ctx, q, userID, productID)
		return err
	})
	s.metrics.Mutation(ctx, "wishlist", "add", err)
	if err != nil {
		return err
	}

	s.logger.Info("product wishlisted", "user_id", userID, "product_id", productID, "created", created)
	return nil
}

func (s *Service) Remove(ctx context.Context, userID string, entryID int64) error {
	if userID == "" {
		return domain.ErrUnauthorized
	}

	err := s.tx.InUserTx(ctx, userID, func(q store.Querier) error {
		return s.entries.Remove(ctx, q, userID, entryID)
	})
	s.metrics.Mutation(ctx, "wishlist", "remove", err)
	if err != nil {
		return err
	}

	s.logger.Info("wishlist entry removed", "user_id", userID, "entry_id", entryID)
	return nil
}

func (s *Service) ClearAll(ctx context.Context, userID string) error {
	if userID == "" {
		return domain.ErrUnauthorized
	}

	var removed int64
	err := s.tx.InUserTx(ctx, userID, func(q store.Querier) error {
		var err error
		removed, err = s.entries.Clear(ctx, q, userID)
		return err
	})
	s.metrics.Mutation(ctx, "wishlist", "clear", err)
	if err != nil {
		return err
	}

	s.logger.Info("wishlist cleared", "user_id", userID, "removed", removed)
	return nil
}

func (s *Service) Snapshot(ctx context.Context, userID string) ([]domain.WishlistLine, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}

	q := s.tx.Querier()
	entries, err := s.entries.List(ctx, q, userID)
	if err != nil {
		return nil, store.Classify(err)
	}

	ids := make([]int64, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ProductID)
	}

	products, err := s.catalog.LookupMany(ctx, q, ids)
	if err != nil {
		return nil, store.Classify(err)
	}

	lines := make([]domain.WishlistLine, 0, len(entries))
	for _, e := range entries {
		p, ok := products[e.ProductID]
		if !ok {
			s.logger.Warn("wishlist entry references unknown product", "user_id", userID, "entry_id", e.ID, "product_id", e.ProductID)
			continue
		}
		lines = append(lines, domain.WishlistLine{Entry: e, Product: p})
	}

	return lines, nil
}
