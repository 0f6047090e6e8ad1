package catalog

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joao-fontenele/cartflow/internal/domain"
)

func TestProductRepository_Shared(t *testing.T) {
	t.Run("a cancelled caller does not fail the others", func(t *testing.T) {
		repo := NewProductRepository(nil)
		started := make(chan struct{})
		release := make(chan struct{})
		var calls atomic.Int32
		load := func(ctx context.Context) ([]domain.Product, error) {
			if calls.Add(1) == 1 {
				close(started)
			}
			<-release
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			return []domain.Product{{ID: 1}}, nil
		}

		first, cancel := context.WithCancel(context.Background())
		firstErr := make(chan error, 1)
		go func() {
			_, err := repo.shared(first, "figures|", load)
			firstErr <- err
		}()
		<-started

		type result struct {
			products []domain.Product
			err      error
		}
		second := make(chan result, 1)
		go func() {
			products, err := repo.shared(context.Background(), "figures|", load)
			second <- result{products: products, err: err}
		}()

		cancel()
		assert.ErrorIs(t, <-firstErr, context.Canceled)

		close(release)
		res := <-second
		require.NoError(t, res.err)
		assert.Len(t, res.products, 1)
	})

	t.Run("load errors reach the caller", func(t *testing.T) {
		repo := NewProductRepository(nil)

		_, err := repo.shared(context.Background(), "posters|", func(context.Context) ([]domain.Product, error) {
			return nil, assert.AnError
		})

		assert.ErrorIs(t, err, assert.AnError)
	})

	t.Run("load runs with a deadline", func(t *testing.T) {
		repo := NewProductRepository(nil)

		_, err := repo.shared(context.Background(), "plushies|", func(ctx context.Context) ([]domain.Product, error) {
			_, ok := ctx.Deadline()
			assert.True(t, ok)
			return []domain.Product{}, nil
		})

		require.NoError(t, err)
	})
}
