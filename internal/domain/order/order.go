// Package order tracks server-authoritative orders: the checkout that creates
// them from the cart, the status lifecycle, and a local cache kept consistent
// with backend responses.
package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Order is a server-created record. TotalAmount is computed server-side at
// creation; the client never derives or edits it. Items is populated only by
// a detail fetch; list responses carry ItemsCount instead.
type Order struct {
	ID          int64
	Status      Status
	TotalAmount decimal.Decimal
	CreatedAt   time.Time
	ItemsCount  int
	Items       []Item
}

// Item is one order line with the product name and unit price snapshotted at
// creation time.
type Item struct {
	ProductID   int64
	ProductName string
	UnitPrice   decimal.Decimal
	Quantity    int
	Total       decimal.Decimal
}

// NewItem is a line submitted at checkout.
type NewItem struct {
	ProductID int64
	Quantity  int
}

// API defines the backend operations the lifecycle client depends on.
type API interface {
	CreateOrder(ctx context.Context, items []NewItem) (*Order, error)
	ListOrders(ctx context.Context) ([]Order, error)
	GetOrder(ctx context.Context, id int64) (*Order, error)
	UpdateOrderStatus(ctx context.Context, id int64, status Status) (*Order, error)
}
