package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"golang.org/x/sync/singleflight"

	"github.com/joao-fontenele/cartflow/internal/domain"
	"github.com/joao-fontenele/cartflow/internal/store"
)

type SortOrder string

const (
	SortDefault   SortOrder = ""
	SortPriceLow  SortOrder = "low"
	SortPriceHigh SortOrder = "high"
)

type ListFilter struct {
	Category string
	Sort     SortOrder
}

func (f ListFilter) key() string {
	return f.Category + "|" + string(f.Sort)
}

// ProductRepository is a read-only view over the products table.
type ProductRepository struct {
	db    store.Querier
	lists singleflight.Group
}

func NewProductRepository(db store.Querier) *ProductRepository {
	return &ProductRepository{db: db}
}

const (
	productColumns = `id, name, category, price, image_url, description`

	sharedQueryTimeout = 5 * time.Second
)

func scanProduct(row interface{ Scan(...any) error }) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.Name, &p.Category, &p.Price, &p.ImageURL, &p.Description)
	return p, err
}

// Resolve looks a product up through q, which may be an open transaction.
func (r *ProductRepository) Resolve(ctx context.Context, q store.Querier, id int64) (domain.Product, error) {
	p, err := scanProduct(q.QueryRowContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE id = $1
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, fmt.Errorf("product %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("resolve product %d: %w", id, err)
	}
	return p, nil
}

// ResolveMany share-locks the requested rows so prices cannot change until
// the surrounding transaction ends. Missing ids are simply absent from the map.
func (r *ProductRepository) ResolveMany(ctx context.Context, q store.Querier, ids []int64) (map[int64]domain.Product, error) {
	return r.many(ctx, q, ids, " FOR SHARE")
}

// LookupMany is ResolveMany without the row locks, for read views.
func (r *ProductRepository) LookupMany(ctx context.Context, q store.Querier, ids []int64) (map[int64]domain.Product, error) {
	return r.many(ctx, q, ids, "")
}

func (r *ProductRepository) many(ctx context.Context, q store.Querier, ids []int64, lock string) (map[int64]domain.Product, error) {
	products := make(map[int64]domain.Product, len(ids))
	if len(ids) == 0 {
		return products, nil
	}

	rows, err := q.QueryContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE id = ANY($1)`+lock, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("resolve products: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products[p.ID] = p
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return products, nil
}

func (r *ProductRepository) Get(ctx context.Context, id int64) (domain.Product, error) {
	return r.Resolve(ctx, r.db, id)
}

// List returns the catalog filtered by category and ordered by price when
// asked. Identical concurrent listings share one query.
func (r *ProductRepository) List(ctx context.Context, filter ListFilter) ([]domain.Product, error) {
	return r.shared(ctx, filter.key(), func(ctx context.Context) ([]domain.Product, error) {
		return r.list(ctx, filter)
	})
}

// shared runs load once for all concurrent callers of key. load is detached
// from the caller that started it and bounded by sharedQueryTimeout; each
// caller stops waiting when its own context ends.
func (r *ProductRepository) shared(ctx context.Context, key string, load func(context.Context) ([]domain.Product, error)) ([]domain.Product, error) {
	ch := r.lists.DoChan(key, func() (any, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedQueryTimeout)
		defer cancel()
		return load(ctx)
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("list products: %w", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]domain.Product), nil
	}
}

func (r *ProductRepository) list(ctx context.Context, filter ListFilter) ([]domain.Product, error) {
	orderBy := "id"
	switch filter.Sort {
	case SortPriceLow:
		orderBy = "price ASC, id"
	case SortPriceHigh:
		orderBy = "price DESC, id"
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE $1 = '' OR category = $1
		ORDER BY `+orderBy, filter.Category)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer func() { _ = rows.Close() }()

	products := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return products, nil
}

// Related returns up to limit other products sharing p's category.
func (r *ProductRepository) Related(ctx context.Context, p domain.Product, limit int) ([]domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE category = $1 AND id <> $2
		ORDER BY id
		LIMIT $3
	`, p.Category, p.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("related products: %w", err)
	}
	defer func() { _ = rows.Close() }()

	related := []domain.Product{}
	for rows.Next() {
		rp, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		related = append(related, rp)
	}

	return related, rows.Err()
}
