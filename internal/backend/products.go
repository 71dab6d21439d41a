package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/veskr/storefront/internal/domain/product"
)

// productPayload is the wire shape of a product. OwnerEmail is present only
// in the all-products listing.
type productPayload struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	OwnerID     int64           `json:"created_by"`
	OwnerEmail  string          `json:"owner_email"`
	CreatedAt   string          `json:"created_at"`
}

func (p productPayload) toDomain() product.Product {
	return product.Product{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price,
		Description: p.Description,
		OwnerID:     p.OwnerID,
		OwnerEmail:  p.OwnerEmail,
		CreatedAt:   parseTime(p.CreatedAt),
	}
}

// draftPayload is the request body for product creation and update.
type draftPayload struct {
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
}

func toDraftPayload(d product.Draft) draftPayload {
	return draftPayload{
		Name:        d.Name,
		Price:       d.Price,
		Description: d.Description,
	}
}

// ListOwnProducts returns the products created by the current user.
func (c *Client) ListOwnProducts(ctx context.Context) ([]product.Product, error) {
	return c.listProducts(ctx, "/products")
}

// ListAllProducts returns every product in the catalog, with owner emails.
func (c *Client) ListAllProducts(ctx context.Context) ([]product.Product, error) {
	return c.listProducts(ctx, "/products/all")
}

func (c *Client) listProducts(ctx context.Context, path string) ([]product.Product, error) {
	var resp []productPayload
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}

	products := make([]product.Product, len(resp))
	for i, p := range resp {
		products[i] = p.toDomain()
	}
	return products, nil
}

// CreateProduct submits a new product owned by the current user.
func (c *Client) CreateProduct(ctx context.Context, d product.Draft) (*product.Product, error) {
	var resp productPayload
	if err := c.do(ctx, http.MethodPost, "/products", toDraftPayload(d), &resp); err != nil {
		return nil, err
	}

	p := resp.toDomain()
	return &p, nil
}

// UpdateProduct mutates an owned product. The backend rejects non-owners;
// its update response carries no product body, so the submitted draft is
// echoed back with the known identifier.
func (c *Client) UpdateProduct(ctx context.Context, id int64, d product.Draft) (*product.Product, error) {
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/products/%d", id), toDraftPayload(d), nil); err != nil {
		return nil, err
	}

	return &product.Product{
		ID:          id,
		Name:        d.Name,
		Price:       d.Price,
		Description: d.Description,
	}, nil
}

// DeleteProduct removes an owned product.
func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/products/%d", id), nil, nil)
}
