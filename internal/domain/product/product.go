package product

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Sentinel errors for product validation and lookup.
var (
	ErrNotFound      = errors.New("product not found")
	ErrNameRequired  = errors.New("product name required")
	ErrNegativePrice = errors.New("price must not be negative")
)

// Product represents a catalog item available for purchase. OwnerID is the
// identifier of the user who created it; only the owner may edit or delete.
type Product struct {
	ID          int64
	Name        string
	Price       decimal.Decimal
	Description string
	OwnerID     int64
	OwnerEmail  string
	CreatedAt   time.Time
}

// Draft holds the user-supplied fields for creating or updating a product.
type Draft struct {
	Name        string
	Price       decimal.Decimal
	Description string
}

// Validate checks the draft before any network call is made.
func (d Draft) Validate() error {
	if d.Name == "" {
		return ErrNameRequired
	}
	if d.Price.IsNegative() {
		return ErrNegativePrice
	}
	return nil
}
