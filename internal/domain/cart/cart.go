// Package cart implements the client-held shopping cart: an ordered list of
// product selections with name and price captured at the moment of adding.
// The cart lives entirely on the client until checkout; every mutation
// persists the full snapshot through a Snapshotter so a reader never observes
// a partially updated set of items.
package cart

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/veskr/storefront/internal/domain/product"
)

// Item is a single cart line. Name and Price are denormalized snapshots taken
// when the product was added; they are not re-fetched later.
type Item struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"qty"`
}

// LineTotal returns Price multiplied by Quantity.
func (i Item) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Snapshotter persists the full cart state. Save replaces the whole snapshot
// atomically; Load returns the previously saved items (nil when none exist).
type Snapshotter interface {
	Save(ctx context.Context, items []Item) error
	Load(ctx context.Context) ([]Item, error)
}

// Store owns the in-memory cart and keeps the persisted snapshot in sync.
// Mutations are applied in call order under a mutex; each mutation commits to
// memory only after the snapshot was persisted, so a failed persist leaves
// the previously valid state intact.
type Store struct {
	mu    sync.Mutex
	items []Item
	snap  Snapshotter
}

// NewStore creates a Store persisting through the given Snapshotter.
func NewStore(snap Snapshotter) *Store {
	return &Store{snap: snap}
}

// Restore loads the persisted snapshot into memory. Called once at session
// start.
func (s *Store) Restore(ctx context.Context) error {
	items, err := s.snap.Load(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
	return nil
}

// Add puts the product in the cart with the given quantity. If it is already
// present the quantity increments; otherwise a new line is appended with the
// product's name and price captured now. Quantities below 1 are treated as 1.
func (s *Store) Add(ctx context.Context, p product.Product, qty int) error {
	if qty < 1 {
		qty = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := cloneItems(s.items)
	found := false
	for i := range next {
		if next[i].ProductID == p.ID {
			next[i].Quantity += qty
			found = true
			break
		}
	}
	if !found {
		next = append(next, Item{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Quantity:  qty,
		})
	}

	return s.commit(ctx, next)
}

// UpdateQuantity replaces the stored quantity for the product. A quantity
// below 1 removes the line. Updating an absent product is a no-op.
func (s *Store) UpdateQuantity(ctx context.Context, productID int64, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if qty < 1 {
		return s.commit(ctx, removeItem(s.items, productID))
	}

	next := cloneItems(s.items)
	for i := range next {
		if next[i].ProductID == productID {
			next[i].Quantity = qty
			return s.commit(ctx, next)
		}
	}
	return nil
}

// Remove deletes the line for the product. No-op when absent.
func (s *Store) Remove(ctx context.Context, productID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.commit(ctx, removeItem(s.items, productID))
}

// Clear empties the cart and persists the empty state. Called after a
// successful checkout and on logout.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.commit(ctx, []Item{})
}

// Items returns a copy of the current cart lines in insertion order.
func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	return cloneItems(s.items)
}

// Len returns the number of lines in the cart.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.items)
}

// Total returns the sum of price × quantity over all lines. Pure read.
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	for _, it := range s.items {
		total = total.Add(it.LineTotal())
	}
	return total
}

// commit persists next and, only on success, makes it the current state.
// Callers hold s.mu.
func (s *Store) commit(ctx context.Context, next []Item) error {
	if err := s.snap.Save(ctx, next); err != nil {
		return err
	}
	s.items = next
	return nil
}

func cloneItems(items []Item) []Item {
	next := make([]Item, len(items))
	copy(next, items)
	return next
}

func removeItem(items []Item, productID int64) []Item {
	next := make([]Item, 0, len(items))
	for _, it := range items {
		if it.ProductID != productID {
			next = append(next, it)
		}
	}
	return next
}
