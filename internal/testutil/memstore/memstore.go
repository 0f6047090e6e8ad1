// Package memstore is an in-memory stand-in for the Postgres repositories.
// Transactions are serialised and roll back on error, so service tests can
// assert atomicity without a database.
package memstore

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/joao-fontenele/cartflow/internal/domain"
	"github.com/joao-fontenele/cartflow/internal/store"
)

type Store struct {
	txMu sync.Mutex
	mu   sync.Mutex

	products map[int64]domain.Product
	cart     map[int64]domain.CartEntry
	wishlist map[int64]domain.WishlistEntry
	orders   map[int64]domain.Order
	nextID   int64

	failures map[string]error
	Now      func() time.Time
}

func New(products ...domain.Product) *Store {
	s := &Store{
		products: map[int64]domain.Product{},
		cart:     map[int64]domain.CartEntry{},
		wishlist: map[int64]domain.WishlistEntry{},
		orders:   map[int64]domain.Order{},
		failures: map[string]error{},
		Now:      time.Now,
	}
	for _, p := range products {
		s.products[p.ID] = p
	}
	return s
}

// FailOn makes every later call of operation (e.g. "orders.Create") fail.
func (s *Store) FailOn(operation string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[operation] = err
}

func (s *Store) fail(operation string) error {
	return s.failures[operation]
}

func (s *Store) SetPrice(id int64, price string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.products[id]
	p.Price = mustDecimal(price)
	s.products[id] = p
}

func (s *Store) DeleteProduct(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.products, id)
}

func (s *Store) CartEntries(userID string) []domain.CartEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cartFor(userID)
}

func (s *Store) WishlistEntries(userID string) []domain.WishlistEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wishlistFor(userID)
}

func (s *Store) OrderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

// InUserTx serialises all transactions and restores the previous state when
// fn fails.
func (s *Store) InUserTx(ctx context.Context, userID string, fn func(q store.Querier) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return store.Classify(err)
	}

	s.mu.Lock()
	cart, wishlist, orders, nextID := maps.Clone(s.cart), maps.Clone(s.wishlist), maps.Clone(s.orders), s.nextID
	s.mu.Unlock()

	err := fn(nil)
	if err == nil {
		s.mu.Lock()
		err = s.fail("commit")
		s.mu.Unlock()
	}
	if err != nil {
		s.mu.Lock()
		s.cart, s.wishlist, s.orders, s.nextID = cart, wishlist, orders, nextID
		s.mu.Unlock()
		return store.Classify(err)
	}
	return nil
}

func (s *Store) Querier() store.Querier {
	return nil
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *Store) cartFor(userID string) []domain.CartEntry {
	var out []domain.CartEntry
	for _, e := range s.cart {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	slices.SortFunc(out, func(a, b domain.CartEntry) int { return int(a.ID - b.ID) })
	return out
}

func (s *Store) wishlistFor(userID string) []domain.WishlistEntry {
	var out []domain.WishlistEntry
	for _, e := range s.wishlist {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	slices.SortFunc(out, func(a, b domain.WishlistEntry) int { return int(a.ID - b.ID) })
	return out
}

func notFound(what string, id int64) error {
	return fmt.Errorf("%s %d: %w", what, id, domain.ErrNotFound)
}
