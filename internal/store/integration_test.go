//go:build integration

package store

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joao-fontenele/cartflow/internal/domain"
	"github.com/joao-fontenele/cartflow/internal/testutil"
)

func TestPostgres_InUserTx(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db := testutil.Postgres(ctx, t)
	runner := NewRunner(db)

	t.Run("same user transactions do not overlap", func(t *testing.T) {
		var inside atomic.Int32
		var overlapped atomic.Bool

		errs := make(chan error, 2)
		for range 2 {
			go func() {
				errs <- runner.InUserTx(ctx, "u1", func(q Querier) error {
					if inside.Add(1) > 1 {
						overlapped.Store(true)
					}
					time.Sleep(200 * time.Millisecond)
					inside.Add(-1)
					return nil
				})
			}()
		}
		require.NoError(t, <-errs)
		require.NoError(t, <-errs)

		assert.False(t, overlapped.Load())
	})

	t.Run("different users run in parallel", func(t *testing.T) {
		release := make(chan struct{})
		held := make(chan struct{})

		go func() {
			_ = runner.InUserTx(ctx, "holder", func(q Querier) error {
				close(held)
				<-release
				return nil
			})
		}()
		<-held
		defer close(release)

		quick, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		assert.NoError(t, runner.InUserTx(quick, "other", func(q Querier) error { return nil }))
	})

	t.Run("error rolls back", func(t *testing.T) {
		boom := errors.New("boom")

		err := runner.InUserTx(ctx, "u2", func(q Querier) error {
			if _, err := q.ExecContext(ctx, `INSERT INTO cart_entries (user_id, product_id, quantity) VALUES ('u2', 1, 1)`); err != nil {
				return err
			}
			return boom
		})

		assert.ErrorIs(t, err, domain.ErrStoreFailure)
		assert.ErrorIs(t, err, boom)

		var n int
		require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cart_entries WHERE user_id = 'u2'`).Scan(&n))
		assert.Zero(t, n)
	})

	t.Run("domain errors pass through unchanged", func(t *testing.T) {
		err := runner.InUserTx(ctx, "u3", func(q Querier) error { return domain.ErrEmptyCart })

		assert.ErrorIs(t, err, domain.ErrEmptyCart)
		assert.NotErrorIs(t, err, domain.ErrStoreFailure)
	})

	t.Run("check constraint violation is a store failure", func(t *testing.T) {
		err := runner.InUserTx(ctx, "u4", func(q Querier) error {
			_, err := q.ExecContext(ctx, `INSERT INTO cart_entries (user_id, product_id, quantity) VALUES ('u4', 1, 0)`)
			return err
		})

		assert.ErrorIs(t, err, domain.ErrStoreFailure)
	})
}
