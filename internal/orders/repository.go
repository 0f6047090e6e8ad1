package orders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/joao-fontenele/cartflow/internal/domain"
	"github.com/joao-fontenele/cartflow/internal/store"
)

type OrderRepository struct {
	db store.Querier
}

func NewOrderRepository(db store.Querier) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create inserts the order and its line items through q, filling in the
// generated ids.
func (r *OrderRepository) Create(ctx context.Context, q store.Querier, order *domain.Order) error {
	err := q.QueryRowContext(ctx, `
		INSERT INTO orders (user_id, full_name, phone, city, address, total_amount, payment_method, status, order_date, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		RETURNING id
	`, order.UserID, order.FullName, order.Phone, order.City, order.Address,
		order.TotalAmount, order.PaymentMethod, order.Status, order.OrderDate,
	).Scan(&order.ID)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = order.ID
		err = q.QueryRowContext(ctx, `
			INSERT INTO order_items (order_id, product_id, quantity, unit_price)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`, item.OrderID, item.ProductID, item.Quantity, item.UnitPrice).Scan(&item.ID)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	return nil
}

const orderColumns = `id, user_id, full_name, phone, city, address, total_amount, payment_method, status, order_date`

func scanOrder(row interface{ Scan(...any) error }, order *domain.Order) error {
	return row.Scan(&order.ID, &order.UserID, &order.FullName, &order.Phone, &order.City,
		&order.Address, &order.TotalAmount, &order.PaymentMethod, &order.Status, &order.OrderDate)
}

func (r *OrderRepository) GetByID(ctx context.Context, id int64) (domain.Order, error) {
	var order domain.Order
	err := scanOrder(r.db.QueryRowContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE id = $1
	`, id), &order)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, fmt.Errorf("order %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("get order: %w", err)
	}

	byOrder, err := r.items(ctx, []int64{id})
	if err != nil {
		return domain.Order{}, err
	}
	order.Items = byOrder[id]
	if order.Items == nil {
		order.Items = []domain.OrderLineItem{}
	}

	return order, nil
}

// ListByUser returns the user's orders newest first, loading all line items
// with a single query.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE user_id = $1
		ORDER BY order_date DESC, id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var (
		orders   []domain.Order
		orderIDs []int64
	)
	for rows.Next() {
		var order domain.Order
		if err := scanOrder(rows, &order); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, order)
		orderIDs = append(orderIDs, order.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	if len(orderIDs) == 0 {
		return []domain.Order{}, nil
	}

	byOrder, err := r.items(ctx, orderIDs)
	if err != nil {
		return nil, err
	}

	for i := range orders {
		orders[i].Items = byOrder[orders[i].ID]
		if orders[i].Items == nil {
			orders[i].Items = []domain.OrderLineItem{}
		}
	}

	return orders, nil
}

func (r *OrderRepository) items(ctx context.Context, orderIDs []int64) (map[int64][]domain.OrderLineItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, quantity, unit_price
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY id
	`, pq.Array(orderIDs))
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	byOrder := make(map[int64][]domain.OrderLineItem, len(orderIDs))
	for rows.Next() {
		var item domain.OrderLineItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		byOrder[item.OrderID] = append(byOrder[item.OrderID], item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}

	return byOrder, nil
}

// UpdateStatus only touches orders owned by userID; a foreign order is
// reported as not found.
func (r *OrderRepository) UpdateStatus(ctx context.Context, userID string, id int64, status domain.OrderStatus) (domain.Order, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE orders SET status = $1, updated_at = NOW()
		WHERE id = $2 AND user_id = $3
	`, status, id, userID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("update order status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return domain.Order{}, err
	}

	if rowsAffected == 0 {
		return domain.Order{}, fmt.Errorf("order %d: %w", id, domain.ErrNotFound)
	}

	return r.GetByID(ctx, id)
}
