package wishlist

import (
	"context"
	"fmt"

	"github.com/joao-fontenele/cartflow/internal/domain"
	"github.com/joao-fontenele/cartflow/internal/store"
)

type EntryRepository struct{}

func NewEntryRepository() *EntryRepository {
	return &EntryRepository{}
}

// Add reports whether a row was created; an existing entry is left as is.
func (r *EntryRepository) Add(ctx context.Context, q store.Querier, userID string, productID int64) (bool, error) {
	result, err := q.ExecContext(ctx, `
		INSERT INTO wishlist_entries (user_id, product_id, added_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id, product_id) DO NOTHING
	`, userID, productID)
	if err != nil {
		return false, fmt.Errorf("add wishlist entry: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected == 1, nil
}

func (r *EntryRepository) Remove(ctx context.Context, q store.Querier, userID string, entryID int64) error {
	result, err := q.ExecContext(ctx, `
		DELETE FROM wishlist_entries
		WHERE id = $1 AND user_id = $2
	`, entryID, userID)
	if err != nil {
		return fmt.Errorf("remove wishlist entry: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return fmt.Errorf("wishlist entry %d: %w", entryID, domain.ErrNotFound)
	}

	return nil
}

// RemoveProduct deletes the user's entry for productID if there is one.
func (r *EntryRepository) RemoveProduct(ctx context.Context, q store.Querier, userID string, productID int64) (bool, error) {
	result, err := q.ExecContext(ctx, `
		DELETE FROM wishlist_entries
		WHERE user_id = $1 AND product_id = $2
	`, userID, productID)
	if err != nil {
		return false, fmt.Errorf("remove wishlisted product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}

func (r *EntryRepository) Clear(ctx context.Context, q store.Querier, userID string) (int64, error) {
	result, err := q.ExecContext(ctx, `DELETE FROM wishlist_entries WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("clear wishlist: %w", err)
	}
	return result.RowsAffected()
}

func (r *EntryRepository) List(ctx context.Context, q store.Querier, userID string) ([]domain.WishlistEntry, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, user_id, product_id, added_at
		FROM wishlist_entries
		WHERE user_id = $1
		ORDER BY id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list wishlist entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []domain.WishlistEntry
	for rows.Next() {
		var e domain.WishlistEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.ProductID, &e.AddedAt); err != nil {
			return nil, fmt.Errorf("scan wishlist entry: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wishlist entries: %w", err)
	}

	return entries, nil
}
