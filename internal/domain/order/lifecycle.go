package order

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/veskr/storefront/internal/domain/cart"
)

// ErrEmptyCart is returned by Checkout before any network call when the cart
// holds no items.
var ErrEmptyCart = errors.New("cart is empty")

// TransitionError indicates a status change the transition table forbids.
// It is raised locally before the request is sent; the backend enforces the
// same rule authoritatively.
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("order status cannot change from %s to %s", e.From, e.To)
}

// Lifecycle converts the cart into orders and tracks order state afterwards.
// It keeps a local cache of list entries and fetched details; the cache is
// only ever updated from successful backend responses, so a failed mutation
// leaves it in the previously valid state.
type Lifecycle struct {
	api  API
	cart *cart.Store

	mu        sync.Mutex
	summaries []Order
	details   map[int64]*Order
}

// NewLifecycle creates a Lifecycle draining the given cart through api.
func NewLifecycle(api API, cartStore *cart.Store) *Lifecycle {
	return &Lifecycle{
		api:     api,
		cart:    cartStore,
		details: make(map[int64]*Order),
	}
}

// Checkout submits the current cart as a new order. An empty cart fails fast
// with ErrEmptyCart and no network call. On success the cart is cleared and
// the returned order cached; on failure the cart is left untouched.
func (l *Lifecycle) Checkout(ctx context.Context) (*Order, error) {
	items := l.cart.Items()
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	lines := make([]NewItem, len(items))
	for i, it := range items {
		lines[i] = NewItem{ProductID: it.ProductID, Quantity: it.Quantity}
	}

	o, err := l.api.CreateOrder(ctx, lines)
	if err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	// The order exists server-side; a failed snapshot clear must not fail
	// the checkout. The cart is re-cleared on the next mutation or logout.
	if err := l.cart.Clear(ctx); err != nil {
		zctx.From(ctx).Warn("Cart clear after checkout failed",
			zap.Int64("order_id", o.ID), zap.Error(err))
	}

	l.mu.Lock()
	l.summaries = append([]Order{*o}, l.summaries...)
	l.details[o.ID] = o
	l.mu.Unlock()

	return o, nil
}

// List fetches all orders owned by the current user and replaces the cached
// summaries. Entries keep the backend's authoritative ordering.
func (l *Lifecycle) List(ctx context.Context) ([]Order, error) {
	fetched, err := l.api.ListOrders(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}

	l.mu.Lock()
	l.summaries = fetched
	l.mu.Unlock()

	return l.Cached(), nil
}

// Cached returns a copy of the cached list entries without a network call.
func (l *Lifecycle) Cached() []Order {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Order, len(l.summaries))
	copy(out, l.summaries)
	return out
}

// Detail fetches the full item breakdown for one order and caches it.
func (l *Lifecycle) Detail(ctx context.Context, id int64) (*Order, error) {
	o, err := l.api.GetOrder(ctx, id)
	if err != nil {
		return nil, errors.Wrapf(err, "get order %d", id)
	}

	l.mu.Lock()
	l.details[id] = o
	l.syncSummaryLocked(*o)
	l.mu.Unlock()

	return o, nil
}

// SetStatus requests a status transition. Transitions the table forbids are
// rejected locally without a network call. On success both the cached list
// entry and any cached detail are updated together; on failure cached state
// is unchanged and the backend error is surfaced.
func (l *Lifecycle) SetStatus(ctx context.Context, id int64, next Status) (*Order, error) {
	if !next.Valid() {
		return nil, &UnknownStatusError{Value: string(next)}
	}

	if current, ok := l.cachedStatus(id); ok && !current.CanTransitionTo(next) {
		return nil, &TransitionError{From: current, To: next}
	}

	o, err := l.api.UpdateOrderStatus(ctx, id, next)
	if err != nil {
		return nil, errors.Wrapf(err, "update order %d status", id)
	}

	l.mu.Lock()
	l.syncSummaryLocked(*o)
	if d, ok := l.details[id]; ok {
		d.Status = o.Status
		d.TotalAmount = o.TotalAmount
	}
	l.mu.Unlock()

	return o, nil
}

// cachedStatus returns the locally known status for the order, preferring the
// detail cache over the list cache.
func (l *Lifecycle) cachedStatus(id int64) (Status, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if d, ok := l.details[id]; ok {
		return d.Status, true
	}
	for _, s := range l.summaries {
		if s.ID == id {
			return s.Status, true
		}
	}
	return "", false
}

// syncSummaryLocked merges the authoritative order into the cached list
// entry, preserving the list-only ItemsCount field. Callers hold l.mu.
func (l *Lifecycle) syncSummaryLocked(o Order) {
	for i := range l.summaries {
		if l.summaries[i].ID == o.ID {
			count := l.summaries[i].ItemsCount
			l.summaries[i] = o
			if o.ItemsCount == 0 {
				l.summaries[i].ItemsCount = count
			}
			l.summaries[i].Items = nil
			return
		}
	}
}
