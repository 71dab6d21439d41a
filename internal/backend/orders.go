package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/veskr/storefront/internal/domain/order"
)

// orderItemPayload is the wire shape of one order line in detail responses.
type orderItemPayload struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Total       decimal.Decimal `json:"total"`
}

// orderPayload is the wire shape of an order. List rows carry ItemsCount,
// detail responses carry Items.
type orderPayload struct {
	ID          int64              `json:"id"`
	TotalAmount decimal.Decimal    `json:"total_amount"`
	Status      string             `json:"status"`
	CreatedAt   string             `json:"created_at"`
	ItemsCount  int                `json:"items_count"`
	Items       []orderItemPayload `json:"items"`
}

func (p orderPayload) toDomain() (*order.Order, error) {
	status, err := order.ParseStatus(p.Status)
	if err != nil {
		return nil, errors.Wrapf(err, "order %d", p.ID)
	}

	o := &order.Order{
		ID:          p.ID,
		Status:      status,
		TotalAmount: p.TotalAmount,
		CreatedAt:   parseTime(p.CreatedAt),
		ItemsCount:  p.ItemsCount,
	}
	if len(p.Items) > 0 {
		o.Items = make([]order.Item, len(p.Items))
		for i, it := range p.Items {
			o.Items[i] = order.Item{
				ProductID:   it.ProductID,
				ProductName: it.ProductName,
				UnitPrice:   it.Price,
				Quantity:    it.Quantity,
				Total:       it.Total,
			}
		}
		if o.ItemsCount == 0 {
			o.ItemsCount = len(o.Items)
		}
	}
	return o, nil
}

// CreateOrder submits (product_id, qty) pairs and returns the authoritative
// order with the server-computed total and generated identifier.
func (c *Client) CreateOrder(ctx context.Context, items []order.NewItem) (*order.Order, error) {
	type itemPayload struct {
		ProductID int64 `json:"product_id"`
		Qty       int   `json:"qty"`
	}
	req := struct {
		Items []itemPayload `json:"items"`
	}{Items: make([]itemPayload, len(items))}
	for i, it := range items {
		req.Items[i] = itemPayload{ProductID: it.ProductID, Qty: it.Quantity}
	}

	var resp orderPayload
	if err := c.do(ctx, http.MethodPost, "/orders", req, &resp); err != nil {
		return nil, err
	}
	return resp.toDomain()
}

// ListOrders returns the current user's order summaries in backend order.
func (c *Client) ListOrders(ctx context.Context) ([]order.Order, error) {
	var resp []orderPayload
	if err := c.do(ctx, http.MethodGet, "/orders", nil, &resp); err != nil {
		return nil, err
	}

	orders := make([]order.Order, len(resp))
	for i, p := range resp {
		o, err := p.toDomain()
		if err != nil {
			return nil, err
		}
		orders[i] = *o
	}
	return orders, nil
}

// GetOrder returns one order including its item breakdown.
func (c *Client) GetOrder(ctx context.Context, id int64) (*order.Order, error) {
	var resp orderPayload
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/orders/%d", id), nil, &resp); err != nil {
		return nil, err
	}
	return resp.toDomain()
}

// UpdateOrderStatus requests a status transition. Invalid transitions come
// back as *APIError with the backend's message.
func (c *Client) UpdateOrderStatus(ctx context.Context, id int64, status order.Status) (*order.Order, error) {
	req := struct {
		Status string `json:"status"`
	}{Status: string(status)}

	var resp orderPayload
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/orders/%d", id), req, &resp); err != nil {
		return nil, err
	}
	return resp.toDomain()
}
