package memstore

import (
	"context"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/joao-fontenele/cartflow/internal/domain"
	"github.com/joao-fontenele/cartflow/internal/store"
)

func mustDecimal(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

// Catalog

func (s *Store) Resolve(_ context.Context, _ store.Querier, id int64) (domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("catalog.Resolve"); err != nil {
		return domain.Product{}, err
	}
	p, ok := s.products[id]
	if !ok {
		return domain.Product{}, notFound("product", id)
	}
	return p, nil
}

func (s *Store) ResolveMany(_ context.Context, _ store.Querier, ids []int64) (map[int64]domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("catalog.ResolveMany"); err != nil {
		return nil, err
	}
	out := make(map[int64]domain.Product, len(ids))
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (s *Store) LookupMany(_ context.Context, _ store.Querier, ids []int64) (map[int64]domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("catalog.LookupMany"); err != nil {
		return nil, err
	}
	out := make(map[int64]domain.Product, len(ids))
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

// Cart entries

type CartEntries struct{ s *Store }

func (s *Store) Cart() *CartEntries { return &CartEntries{s: s} }

func (c *CartEntries) Increment(_ context.Context, _ store.Querier, userID string, productID int64) (domain.CartEntry, error) {
	s := c.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("cart.Increment"); err != nil {
		return domain.CartEntry{}, err
	}
	for id, e := range s.cart {
		if e.UserID == userID && e.ProductID == productID {
			e.Quantity = min(e.Quantity+1, domain.MaxQuantity)
			s.cart[id] = e
			return e, nil
		}
	}
	e := domain.CartEntry{ID: s.id(), UserID: userID, ProductID: productID, Quantity: 1, AddedAt: s.Now()}
	s.cart[e.ID] = e
	return e, nil
}

func (c *CartEntries) SetQuantity(_ context.Context, _ store.Querier, userID string, entryID int64, quantity int) (domain.CartEntry, error) {
	s := c.s
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.cart[entryID]
	if !ok || e.UserID != userID {
		return domain.CartEntry{}, notFound("cart entry", entryID)
	}
	e.Quantity = quantity
	s.cart[entryID] = e
	return e, nil
}

func (c *CartEntries) Remove(_ context.Context, _ store.Querier, userID string, entryID int64) error {
	s := c.s
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.cart[entryID]
	if !ok || e.UserID != userID {
		return notFound("cart entry", entryID)
	}
	delete(s.cart, entryID)
	return nil
}

func (c *CartEntries) Clear(_ context.Context, _ store.Querier, userID string) (int64, error) {
	s := c.s
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, e := range s.cartFor(userID) {
		delete(s.cart, e.ID)
		n++
	}
	return n, nil
}

func (c *CartEntries) DeleteEntries(_ context.Context, _ store.Querier, userID string, entryIDs []int64) (int64, error) {
	s := c.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("cart.DeleteEntries"); err != nil {
		return 0, err
	}
	var n int64
	for _, id := range entryIDs {
		if e, ok := s.cart[id]; ok && e.UserID == userID {
			delete(s.cart, id)
			n++
		}
	}
	return n, nil
}

func (c *CartEntries) List(_ context.Context, _ store.Querier, userID string) ([]domain.CartEntry, error) {
	s := c.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("cart.List"); err != nil {
		return nil, err
	}
	return s.cartFor(userID), nil
}

// Wishlist entries

type WishlistEntries struct{ s *Store }

func (s *Store) Wishlist() *WishlistEntries { return &WishlistEntries{s: s} }

func (w *WishlistEntries) Add(_ context.Context, _ store.Querier, userID string, productID int64) (bool, error) {
	s := w.s
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.wishlist {
		if e.UserID == userID && e.ProductID == productID {
			return false, nil
		}
	}
	e := domain.WishlistEntry{ID: s.id(), UserID: userID, ProductID: productID, AddedAt: s.Now()}
	s.wishlist[e.ID] = e
	return true, nil
}

func (w *WishlistEntries) Remove(_ context.Context, _ store.Querier, userID string, entryID int64) error {
	s := w.s
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.wishlist[entryID]
	if !ok || e.UserID != userID {
		return notFound("wishlist entry", entryID)
	}
	delete(s.wishlist, entryID)
	return nil
}

func (w *WishlistEntries) RemoveProduct(_ context.Context, _ store.Querier, userID string, productID int64) (bool, error) {
	s := w.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("wishlist.RemoveProduct"); err != nil {
		return false, err
	}
	for id, e := range s.wishlist {
		if e.UserID == userID && e.ProductID == productID {
			delete(s.wishlist, id)
			return true, nil
		}
	}
	return false, nil
}

func (w *WishlistEntries) Clear(_ context.Context, _ store.Querier, userID string) (int64, error) {
	s := w.s
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, e := range s.wishlistFor(userID) {
		delete(s.wishlist, e.ID)
		n++
	}
	return n, nil
}

func (w *WishlistEntries) List(_ context.Context, _ store.Querier, userID string) ([]domain.WishlistEntry, error) {
	s := w.s
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wishlistFor(userID), nil
}

// Orders

type Orders struct{ s *Store }

func (s *Store) Orders() *Orders { return &Orders{s: s} }

func (o *Orders) Create(_ context.Context, _ store.Querier, order *domain.Order) error {
	s := o.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("orders.Create"); err != nil {
		return err
	}
	order.ID = s.id()
	items := make([]domain.OrderLineItem, len(order.Items))
	for i, item := range order.Items {
		item.ID = s.id()
		item.OrderID = order.ID
		items[i] = item
	}
	order.Items = items
	stored := *order
	stored.Items = slices.Clone(items)
	s.orders[order.ID] = stored
	return nil
}

func (o *Orders) GetByID(_ context.Context, id int64) (domain.Order, error) {
	s := o.s
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[id]
	if !ok {
		return domain.Order{}, notFound("order", id)
	}
	return order, nil
}

func (o *Orders) ListByUser(_ context.Context, userID string) ([]domain.Order, error) {
	s := o.s
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Order{}
	for _, order := range s.orders {
		if order.UserID == userID {
			out = append(out, order)
		}
	}
	slices.SortFunc(out, func(a, b domain.Order) int { return int(b.ID - a.ID) })
	return out, nil
}

func (o *Orders) UpdateStatus(_ context.Context, userID string, id int64, status domain.OrderStatus) (domain.Order, error) {
	s := o.s
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[id]
	if !ok || order.UserID != userID {
		return domain.Order{}, notFound("order", id)
	}
	order.Status = status
	s.orders[id] = order
	return order, nil
}
