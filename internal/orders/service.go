package orders

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joao-fontenele/cartflow/internal/domain"
	"github.com/joao-fontenele/cartflow/internal/store"
	"github.com/joao-fontenele/cartflow/internal/telemetry"
)

type TxRunner interface {
	InUserTx(ctx context.Context, userID string, fn func(q store.Querier) error) error
}

type Repository interface {
	Create(ctx context.Context, q store.Querier, order *domain.Order) error
	GetByID(ctx context.Context, id int64) (domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, userID string, id int64, status domain.OrderStatus) (domain.Order, error)
}

// Cart is the transactional view of the cart the placement reads and drains.
type Cart interface {
	LinesWithin(ctx context.Context, q store.Querier, userID string) ([]domain.CartLine, []domain.CartEntry, error)
	DeleteWithin(ctx context.Context, q store.Querier, userID string, entryIDs []int64) (int64, error)
}

type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
}

type Service struct {
	tx        TxRunner
	repo      Repository
	cart      Cart
	publisher Publisher
	metrics   *telemetry.ShopMetrics
	logger    *slog.Logger
	now       func() time.Time
}

// NewService builds the order placement engine. publisher may be nil, in
// which case no order.placed events are emitted.
func NewService(tx TxRunner, repo Repository, cart Cart, publisher Publisher, metrics *telemetry.ShopMetrics, logger *slog.Logger) *Service {
	return &Service{
		tx:        tx,
		repo:      repo,
		cart:      cart,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// PlaceOrder converts the user's cart into an order. Reading the cart,
// writing the order and draining the cart happen in one transaction, so a
// failure at any step leaves both untouched.
func (s *Service) PlaceOrder(ctx context.Context, userID string, shipping domain.ShippingDetails, paymentMethod string) (domain.Order, error) {
	if userID == "" {
		return domain.Order{}, domain.ErrUnauthorized
	}

	var order domain.Order
	err := s.tx.InUserTx(ctx, userID, func(q store.Querier) error {
		lines, orphaned, err := s.cart.LinesWithin(ctx, q, userID)
		if err != nil {
			return err
		}

		if len(orphaned) > 0 {
			for _, e := range orphaned {
				s.logger.Error("cart entry references unknown product",
					"user_id", userID,
					"entry_id", e.ID,
					"product_id", e.ProductID,
				)
			}
			return fmt.Errorf("product %d in cart of %s: %w", orphaned[0].ProductID, userID, domain.ErrConsistencyFault)
		}

		if len(lines) == 0 {
			return domain.ErrEmptyCart
		}

		order = domain.NewOrder(userID, shipping, paymentMethod, lines, s.now())
		if err := s.repo.Create(ctx, q, &order); err != nil {
			return err
		}

		entryIDs := make([]int64, 0, len(lines))
		for _, line := range lines {
			entryIDs = append(entryIDs, line.Entry.ID)
		}
		_, err = s.cart.DeleteWithin(ctx, q, userID, entryIDs)
		return err
	})
	if err != nil {
		return domain.Order{}, err
	}

	s.publish(ctx, order)
	s.metrics.OrderPlaced(ctx, order)

	s.logger.Info("order placed",
		"order_id", order.ID,
		"user_id", userID,
		"status", order.Status,
		"total", order.TotalAmount.String(),
		"items", len(order.Items),
	)
	return order, nil
}

func (s *Service) publish(ctx context.Context, order domain.Order) {
	if s.publisher == nil {
		return
	}

	event := domain.OrderPlacedEvent{
		EventID:       uuid.NewString(),
		OrderID:       order.ID,
		UserID:        order.UserID,
		Status:        order.Status,
		PaymentMethod: order.PaymentMethod,
		TotalAmount:   order.TotalAmount,
		Items:         order.Items,
		PlacedAt:      order.OrderDate,
	}
	if err := s.publisher.Publish(ctx, order.UserID, event); err != nil {
		s.logger.Error("failed to publish order placed event", "error", err, "order_id", order.ID)
	}
}

// Get returns one of the user's orders. Orders of other users are reported
// as not found.
func (s *Service) Get(ctx context.Context, userID string, orderID int64) (domain.Order, error) {
	if userID == "" {
		return domain.Order{}, domain.ErrUnauthorized
	}

	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return domain.Order{}, store.Classify(err)
	}

	if order.UserID != userID {
		return domain.Order{}, fmt.Errorf("order %d: %w", orderID, domain.ErrNotFound)
	}

	return order, nil
}

func (s *Service) List(ctx context.Context, userID string) ([]domain.Order, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}

	orders, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, store.Classify(err)
	}
	return orders, nil
}

// UpdateStatus lets a shopper cancel one of their own orders. Every other
// transition belongs to fulfilment and is rejected as an invalid status.
func (s *Service) UpdateStatus(ctx context.Context, userID string, orderID int64, status domain.OrderStatus) (domain.Order, error) {
	if userID == "" {
		return domain.Order{}, domain.ErrUnauthorized
	}

	if !status.Valid() {
		return domain.Order{}, fmt.Errorf("status %q: %w", status, domain.ErrInvalidStatus)
	}
	if status != domain.OrderStatusCancelled {
		return domain.Order{}, fmt.Errorf("status %q is set by fulfilment: %w", status, domain.ErrInvalidStatus)
	}

	order, err := s.repo.UpdateStatus(ctx, userID, orderID, status)
	if err != nil {
		return domain.Order{}, store.Classify(err)
	}

	s.logger.Info("order status updated", "user_id", userID, "order_id", order.ID, "status", order.Status)
	return order, nil
}
