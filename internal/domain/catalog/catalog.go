// Package catalog derives per-product capabilities from the session identity
// and fronts the product mutation operations. The ownership predicate here is
// a UX optimization only; the backend performs the authoritative check on
// every mutation.
package catalog

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/veskr/storefront/internal/domain/product"
	"github.com/veskr/storefront/internal/domain/session"
	"github.com/veskr/storefront/internal/domain/user"
)

// ErrForbidden is returned when a non-owner attempts to edit or delete a
// product. Raised locally, before any network call.
var ErrForbidden = errors.New("only the product owner may modify it")

// API defines the backend product operations the view model depends on.
type API interface {
	ListAllProducts(ctx context.Context) ([]product.Product, error)
	ListOwnProducts(ctx context.Context) ([]product.Product, error)
	CreateProduct(ctx context.Context, d product.Draft) (*product.Product, error)
	UpdateProduct(ctx context.Context, id int64, d product.Draft) (*product.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
}

// Identity is the session information the view model reads.
type Identity interface {
	CurrentUser() (user.User, bool)
	Authenticated() bool
}

// Capabilities are the actions the current user may take on one product.
type Capabilities struct {
	CanPurchase bool
	CanEdit     bool
	CanDelete   bool
}

// Listing pairs a product with the capabilities derived for the current user.
type Listing struct {
	product.Product
	Capabilities
}

// Owns is the single ownership predicate: a user owns a product iff the
// product's owner ID equals the user's ID.
func Owns(u user.User, p product.Product) bool {
	return p.OwnerID == u.ID
}

// ViewModel resolves product ownership into permitted actions.
type ViewModel struct {
	api      API
	identity Identity
}

// NewViewModel creates a ViewModel reading identity from the given session.
func NewViewModel(api API, identity Identity) *ViewModel {
	return &ViewModel{api: api, identity: identity}
}

// CapabilitiesFor derives capabilities without any network call. Purchase is
// open to every authenticated user; edit and delete require ownership.
func (v *ViewModel) CapabilitiesFor(p product.Product) Capabilities {
	u, ok := v.identity.CurrentUser()
	if !ok {
		return Capabilities{}
	}

	owns := Owns(u, p)
	return Capabilities{
		CanPurchase: true,
		CanEdit:     owns,
		CanDelete:   owns,
	}
}

// Browse lists all products with derived capabilities.
func (v *ViewModel) Browse(ctx context.Context) ([]Listing, error) {
	if !v.identity.Authenticated() {
		return nil, session.ErrUnauthenticated
	}

	products, err := v.api.ListAllProducts(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}

	listings := make([]Listing, len(products))
	for i, p := range products {
		listings[i] = Listing{Product: p, Capabilities: v.CapabilitiesFor(p)}
	}
	return listings, nil
}

// Mine lists only the current user's products.
func (v *ViewModel) Mine(ctx context.Context) ([]product.Product, error) {
	if !v.identity.Authenticated() {
		return nil, session.ErrUnauthenticated
	}
	return v.api.ListOwnProducts(ctx)
}

// Create validates the draft locally and submits it.
func (v *ViewModel) Create(ctx context.Context, d product.Draft) (*product.Product, error) {
	if !v.identity.Authenticated() {
		return nil, session.ErrUnauthenticated
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return v.api.CreateProduct(ctx, d)
}

// Update validates draft and ownership locally, then submits the change.
func (v *ViewModel) Update(ctx context.Context, p product.Product, d product.Draft) (*product.Product, error) {
	if !v.identity.Authenticated() {
		return nil, session.ErrUnauthenticated
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if !v.CapabilitiesFor(p).CanEdit {
		return nil, ErrForbidden
	}
	return v.api.UpdateProduct(ctx, p.ID, d)
}

// Delete checks ownership locally, then submits the deletion.
func (v *ViewModel) Delete(ctx context.Context, p product.Product) error {
	if !v.identity.Authenticated() {
		return session.ErrUnauthenticated
	}
	if !v.CapabilitiesFor(p).CanDelete {
		return ErrForbidden
	}
	return v.api.DeleteProduct(ctx, p.ID)
}
