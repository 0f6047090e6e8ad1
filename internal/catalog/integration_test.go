//go:build integration

package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joao-fontenele/cartflow/internal/domain"
	"github.com/joao-fontenele/cartflow/internal/testutil"
)

func TestPostgres_ProductRepository(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db := testutil.Postgres(ctx, t)
	repo := NewProductRepository(db)

	t.Run("list by category sorted by price", func(t *testing.T) {
		low, err := repo.List(ctx, ListFilter{Category: "figures", Sort: SortPriceLow})
		require.NoError(t, err)
		require.Len(t, low, 3)
		assert.True(t, low[0].Price.LessThanOrEqual(low[1].Price))
		assert.True(t, low[1].Price.LessThanOrEqual(low[2].Price))

		high, err := repo.List(ctx, ListFilter{Category: "figures", Sort: SortPriceHigh})
		require.NoError(t, err)
		assert.Equal(t, low[0].ID, high[2].ID)
	})

	t.Run("list everything", func(t *testing.T) {
		all, err := repo.List(ctx, ListFilter{})
		require.NoError(t, err)
		assert.Len(t, all, 8)
	})

	t.Run("related excludes the product itself", func(t *testing.T) {
		p, err := repo.Get(ctx, 1)
		require.NoError(t, err)

		related, err := repo.Related(ctx, p, 4)
		require.NoError(t, err)
		assert.Len(t, related, 2)
		for _, rp := range related {
			assert.NotEqual(t, p.ID, rp.ID)
			assert.Equal(t, p.Category, rp.Category)
		}
	})

	t.Run("resolve many skips unknown ids", func(t *testing.T) {
		tx, err := db.BeginTx(ctx, nil)
		require.NoError(t, err)
		defer func() { _ = tx.Rollback() }()

		products, err := repo.ResolveMany(ctx, tx, []int64{1, 4, 404})
		require.NoError(t, err)
		assert.Len(t, products, 2)
		assert.Contains(t, products, int64(4))
	})

	t.Run("lookup many takes no row locks", func(t *testing.T) {
		reader, err := db.BeginTx(ctx, nil)
		require.NoError(t, err)
		defer func() { _ = reader.Rollback() }()

		products, err := repo.LookupMany(ctx, reader, []int64{1, 404})
		require.NoError(t, err)
		assert.Len(t, products, 1)

		writer, err := db.BeginTx(ctx, nil)
		require.NoError(t, err)
		defer func() { _ = writer.Rollback() }()

		_, err = writer.ExecContext(ctx, `SELECT id FROM products WHERE id = 1 FOR UPDATE NOWAIT`)
		assert.NoError(t, err)
	})

	t.Run("resolve many blocks writers until the transaction ends", func(t *testing.T) {
		reader, err := db.BeginTx(ctx, nil)
		require.NoError(t, err)
		defer func() { _ = reader.Rollback() }()

		_, err = repo.ResolveMany(ctx, reader, []int64{2})
		require.NoError(t, err)

		writer, err := db.BeginTx(ctx, nil)
		require.NoError(t, err)
		defer func() { _ = writer.Rollback() }()

		_, err = writer.ExecContext(ctx, `SELECT id FROM products WHERE id = 2 FOR UPDATE NOWAIT`)
		assert.Error(t, err)
	})

	t.Run("unknown product", func(t *testing.T) {
		_, err := repo.Get(ctx, 404)

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
