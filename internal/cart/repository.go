package cart

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/joao-fontenele/cartflow/internal/domain"
	"github.com/joao-fontenele/cartflow/internal/store"
)

// EntryRepository owns the cart_entries table. Every method takes the
// querier to run on so callers decide the transaction boundary.
type EntryRepository struct{}

func NewEntryRepository() *EntryRepository {
	return &EntryRepository{}
}

const entryColumns = `id, user_id, product_id, quantity, added_at`

// Increment inserts the entry with quantity 1 or bumps the existing one,
// saturating at domain.MaxQuantity. The upsert is a single statement, so
// concurrent increments never lose an update even without the user lock.
func (r *EntryRepository) Increment(ctx context.Context, q store.Querier, userID string, productID int64) (domain.CartEntry, error) {
	var e domain.CartEntry
	err := q.QueryRowContext(ctx, `
		INSERT INTO cart_entries (user_id, product_id, quantity, added_at)
		VALUES ($1, $2, 1, NOW())
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = CASE
			WHEN cart_entries.quantity < $3 THEN cart_entries.quantity + 1
			ELSE cart_entries.quantity
		END
		RETURNING `+entryColumns,
		userID, productID, domain.MaxQuantity,
	).Scan(&e.ID, &e.UserID, &e.ProductID, &e.Quantity, &e.AddedAt)
	if err != nil {
		return domain.CartEntry{}, fmt.Errorf("increment cart entry: %w", err)
	}
	return e, nil
}

func (r *EntryRepository) SetQuantity(ctx context.Context, q store.Querier, userID string, entryID int64, quantity int) (domain.CartEntry, error) {
	var e domain.CartEntry
	err := q.QueryRowContext(ctx, `
		UPDATE cart_entries SET quantity = $3
		WHERE id = $1 AND user_id = $2
		RETURNING `+entryColumns,
		entryID, userID, quantity,
	).Scan(&e.ID, &e.UserID, &e.ProductID, &e.Quantity, &e.AddedAt)
	if err != nil {
		return domain.CartEntry{}, notFoundOr(err, "cart entry", entryID)
	}
	return e, nil
}

func (r *EntryRepository) Remove(ctx context.Context, q store.Querier, userID string, entryID int64) error {
	result, err := q.ExecContext(ctx, `
		DELETE FROM cart_entries
		WHERE id = $1 AND user_id = $2
	`, entryID, userID)
	if err != nil {
		return fmt.Errorf("remove cart entry: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return fmt.Errorf("cart entry %d: %w", entryID, domain.ErrNotFound)
	}

	return nil
}

func (r *EntryRepository) Clear(ctx context.Context, q store.Querier, userID string) (int64, error) {
	result, err := q.ExecContext(ctx, `DELETE FROM cart_entries WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("clear cart: %w", err)
	}
	return result.RowsAffected()
}

// DeleteEntries removes exactly the given entries and reports how many went.
func (r *EntryRepository) DeleteEntries(ctx context.Context, q store.Querier, userID string, entryIDs []int64) (int64, error) {
	result, err := q.ExecContext(ctx, `
		DELETE FROM cart_entries
		WHERE user_id = $1 AND id = ANY($2)
	`, userID, pq.Array(entryIDs))
	if err != nil {
		return 0, fmt.Errorf("delete cart entries: %w", err)
	}
	return result.RowsAffected()
}

func (r *EntryRepository) List(ctx context.Context, q store.Querier, userID string) ([]domain.CartEntry, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+entryColumns+`
		FROM cart_entries
		WHERE user_id = $1
		ORDER BY id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list cart entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []domain.CartEntry
	for rows.Next() {
		var e domain.CartEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.ProductID, &e.Quantity, &e.AddedAt); err != nil {
			return nil, fmt.Errorf("scan cart entry: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cart entries: %w", err)
	}

	return entries, nil
}

func notFoundOr(err error, what string, id int64) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %d: %w", what, id, domain.ErrNotFound)
	}
	return fmt.Errorf("%s %d: %w", what, id, err)
}
