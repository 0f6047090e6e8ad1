package cart

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
	ResolveMany(ctx context.Context, q store.Querier, ids []int64) (map[int64]domain.Product, error)
	LookupMany(ctx context.Context, q store.Querier, ids []int64) (map[int64]domain.Product, error)
}

type resolveFunc func(ctx context.Context, q store.Querier, ids []int64) (map[int64]domain.Product, error)

type Entries interface {
	Increment(ctx context.Context, q store.Querier, userID string, productID int64) (domain.CartEntry, error)
	SetQuantity(ctx context.Context, q store.Querier, userID string, entryID int64, quantity int) (domain.CartEntry, error)
	Remove(ctx context.Context, q store.Querier, userID string, entryID int64) error
	Clear(ctx context.Context, q store.Querier, userID string) (int64, error)
	DeleteEntries(ctx context.Context, q store.Querier, userID string, entryIDs []int64) (int64, error)
	List(ctx context.Context, q store.Querier, userID string) ([]domain.CartEntry, error)
}

type Service struct {
	tx      TxRunner
	entries Entries
	catalog Catalog
	metrics *telemetry.ShopMetrics
	logger  *slog.Logger
}

func NewService(tx TxRunner, entries Entries, catalog Catalog, metrics *telemetry.ShopMetrics, logger *slog.Logger) *Service {
	return &Service{
		tx:      tx,
		entries: entries,
		catalog: catalog,
		metrics: metrics,
		logger:  logger,
	}
}

func (s *Service) AddOrIncrement(ctx context.Context, userID string, productID int64) (domain.CartEntry, error) {
	if userID == "" {
		return domain.CartEntry{}, domain.ErrUnauthorized
	}

	var entry domain.CartEntry
	err := s.tx.InUserTx(ctx, userID, func(q store.Querier) error {
		var err error
		entry, err = s.IncrementWithin(ctx, q, userID, productID)
		return err
	})
	s.metrics.Mutation(ctx, "cart", "add", err)
	if err != nil {
		return domain.CartEntry{}, err
	}

	s.logger.Info("cart entry added", "user_id", userID, "product_id", productID, "quantity", entry.Quantity)
	return entry, nil
}

// IncrementWithin is the add-or-increment step for callers that already hold
// the user's transaction.
func (s *Service) IncrementWithin(ctx context.Context, q store.Querier, userID string, productID int64) (domain.CartEntry, error) {
	if _, err := s.catalog.Resolve(ctx, q, productID); err != nil {
		return domain.CartEntry{}, err
	}
	return s.entries.Increment(ctx, q, userID, productID)
}

// SetQuantity stores max(1, quantity) and returns the stored entry.
func (s *Service) SetQuantity(ctx context.Context, userID string, entryID int64, quantity int) (domain.CartEntry, error) {
	if userID == "" {
		return domain.CartEntry{}, domain.ErrUnauthorized
	}

	var entry domain.CartEntry
	err := s.tx.InUserTx(ctx, userID, func(q store.Querier) error {
		var err error
		entry, err = s.entries.SetQuantity(ctx, q, userID, entryID, domain.ClampQuantity(quantity))
		return err
	})
	s.metrics.Mutation(ctx, "cart", "set_quantity", err)
	if err != nil {
		return domain.CartEntry{}, err
	}

	s.logger.Info("cart quantity updated", "user_id", userID, "entry_id", entryID, "requested", quantity, "quantity", entry.Quantity)
	return entry, nil
}

func (s *Service) Remove(ctx context.Context, userID string, entryID int64) error {
	if userID == "" {
		return domain.ErrUnauthorized
	}

	err := s.tx.InUserTx(ctx, userID, func(q store.Querier) error {
		return s.entries.Remove(ctx, q, userID, entryID)
	})
	s.metrics.Mutation(ctx, "cart", "remove", err)
	if err != nil {
		return err
	}

	s.logger.Info("cart entry removed", "user_id", userID, "entry_id", entryID)
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
	s.metrics.Mutation(ctx, "cart", "clear", err)
	if err != nil {
		return err
	}

	s.logger.Info("cart cleared", "user_id", userID, "removed", removed)
	return nil
}

// LinesWithin loads the user's entries and share-locks their products through
// q. Entries whose product no longer resolves are returned separately.
func (s *Service) LinesWithin(ctx context.Context, q store.Querier, userID string) ([]domain.CartLine, []domain.CartEntry, error) {
	return s.lines(ctx, q, userID, s.catalog.ResolveMany)
}

func (s *Service) lines(ctx context.Context, q store.Querier, userID string, resolve resolveFunc) ([]domain.CartLine, []domain.CartEntry, error) {
	entries, err := s.entries.List(ctx, q, userID)
	if err != nil {
		return nil, nil, err
	}
	if len(entries) == 0 {
		return nil, nil, nil
	}

	ids := make([]int64, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ProductID)
	}

	products, err := resolve(ctx, q, ids)
	if err != nil {
		return nil, nil, err
	}

	lines := make([]domain.CartLine, 0, len(entries))
	var orphaned []domain.CartEntry
	for _, e := range entries {
		p, ok := products[e.ProductID]
		if !ok {
			orphaned = append(orphaned, e)
			continue
		}
		lines = append(lines, domain.CartLine{Entry: e, Product: p})
	}

	return lines, orphaned, nil
}

// DeleteWithin removes the given entries inside the caller's transaction.
func (s *Service) DeleteWithin(ctx context.Context, q store.Querier, userID string, entryIDs []int64) (int64, error) {
	return s.entries.DeleteEntries(ctx, q, userID, entryIDs)
}

// Snapshot is the read view of the cart, ordered by entry id.
func (s *Service) Snapshot(ctx context.Context, userID string) ([]domain.CartLine, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}

	lines, orphaned, err := s.lines(ctx, s.tx.Querier(), userID, s.catalog.LookupMany)
	if err != nil {
		return nil, store.Classify(err)
	}

	for _, e := range orphaned {
		s.logger.Warn("cart entry references unknown product", "user_id", userID, "entry_id", e.ID, "product_id", e.ProductID)
	}

	return lines, nil
}

func (s *Service) Summary(ctx context.Context, userID string) (domain.CartSummary, error) {
	lines, err := s.Snapshot(ctx, userID)
	if err != nil {
		return domain.CartSummary{}, err
	}
	return domain.NewCartSummary(lines), nil
}
