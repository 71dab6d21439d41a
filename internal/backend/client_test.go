package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veskr/storefront/internal/domain/order"
	"github.com/veskr/storefront/internal/domain/product"
)

// --- Helpers ---

func mustDraft(t *testing.T, name, price string) product.Draft {
	t.Helper()
	return product.Draft{Name: name, Price: decimal.RequireFromString(price)}
}

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL + "/api"}, func() string { return "test-token" }, nil)
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, body string) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err := w.Write([]byte(body))
	require.NoError(t, err)
}

// --- Tests ---

func TestLogin(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Login    string `json:"login"`
			Password string `json:"password"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "alice", req.Login)
		assert.Equal(t, "s3cret", req.Password)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		writeJSON(t, w, http.StatusOK, `{
			"access_token": "jwt-token",
			"user": {"id": 1, "username": "alice", "email": "alice@example.com",
				"first_name": "Alice", "last_name": "Smith",
				"created_at": "2024-05-01 12:00:00"}
		}`)
	})

	c := newTestClient(t, mux)
	token, u, err := c.Login(context.Background(), "alice", "s3cret")
	require.NoError(t, err)

	assert.Equal(t, "jwt-token", token)
	assert.Equal(t, int64(1), u.ID)
	assert.Equal(t, "Alice", u.FirstName)
	assert.Equal(t, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), u.CreatedAt)
}

func TestBearerHeader(t *testing.T) {
	var gotAuth string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		writeJSON(t, w, http.StatusOK, `{"id": 1, "username": "alice"}`)
	})

	c := newTestClient(t, mux)
	_, err := c.Me(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Bearer test-token", gotAuth)
}

func TestBearerHeader_OmittedWhenEmpty(t *testing.T) {
	var hasAuth bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasAuth = r.Header["Authorization"]
		writeJSON(t, w, http.StatusOK, `[]`)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(Config{BaseURL: srv.URL + "/api"}, func() string { return "" }, nil)
	_, err := c.ListOrders(context.Background())
	require.NoError(t, err)

	assert.False(t, hasAuth, "anonymous requests must not send an Authorization header")
}

func TestUnauthorized_FiresInvalidateHook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusUnauthorized, `{"error": "token expired"}`)
	}))
	t.Cleanup(srv.Close)

	invalidations := 0
	c := NewClient(Config{BaseURL: srv.URL + "/api"},
		func() string { return "stale" },
		func(_ context.Context) { invalidations++ })

	_, err := c.Me(context.Background())

	require.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, 1, invalidations)
}

func TestAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusBadRequest, `{"error": "product name is required"}`)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(Config{BaseURL: srv.URL + "/api"}, func() string { return "t" }, nil)
	_, err := c.ListOrders(context.Background())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "product name is required", apiErr.Message)
	assert.Contains(t, apiErr.Error(), "product name is required")
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "boom", errorMessage([]byte(`{"error": "boom"}`)))
	assert.Equal(t, "nope", errorMessage([]byte(`{"message": "nope"}`)))
	assert.Equal(t, "first", errorMessage([]byte(`{"error": "first", "message": "second"}`)))
	assert.Empty(t, errorMessage([]byte(`<html>502 Bad Gateway</html>`)))
	assert.Empty(t, errorMessage([]byte(`{"error": 42}`)))
	assert.Empty(t, errorMessage(nil))
}

func TestListAllProducts(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/products/all", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, `[
			{"id": 1, "name": "Waffle", "price": "9.99", "description": "crispy",
				"created_by": 1, "owner_email": "alice@example.com",
				"created_at": "2024-05-01T12:00:00Z"},
			{"id": 2, "name": "Latte", "price": "4.50", "created_by": 2,
				"owner_email": "bob@example.com"}
		]`)
	})

	c := newTestClient(t, mux)
	products, err := c.ListAllProducts(context.Background())
	require.NoError(t, err)

	require.Len(t, products, 2)
	assert.Equal(t, "Waffle", products[0].Name)
	assert.True(t, decimal.RequireFromString("9.99").Equal(products[0].Price))
	assert.Equal(t, int64(1), products[0].OwnerID)
	assert.Equal(t, "alice@example.com", products[0].OwnerEmail)
	assert.Equal(t, 2024, products[0].CreatedAt.Year())
	assert.True(t, products[1].CreatedAt.IsZero(), "missing timestamps stay zero")
}

func TestUpdateProduct_NoResponseBody(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /api/products/5", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, `{"msg": "updated"}`)
	})

	c := newTestClient(t, mux)
	p, err := c.UpdateProduct(context.Background(), 5, mustDraft(t, "Waffle", "10"))
	require.NoError(t, err)

	assert.Equal(t, int64(5), p.ID)
	assert.Equal(t, "Waffle", p.Name)
}

func TestCreateOrder(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/orders", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Items []struct {
				ProductID int64 `json:"product_id"`
				Qty       int   `json:"qty"`
			} `json:"items"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Items, 2)
		assert.Equal(t, int64(1), req.Items[0].ProductID)
		assert.Equal(t, 2, req.Items[0].Qty)

		writeJSON(t, w, http.StatusCreated, `{
			"id": 7, "total_amount": "24.48", "status": "new",
			"created_at": "2024-05-01 12:00:00",
			"items": [
				{"product_name": "Waffle", "price": "9.99", "quantity": 2, "total": "19.98"},
				{"product_name": "Latte", "price": "4.50", "quantity": 1, "total": "4.50"}
			]
		}`)
	})

	c := newTestClient(t, mux)
	o, err := c.CreateOrder(context.Background(), []order.NewItem{
		{ProductID: 1, Quantity: 2},
		{ProductID: 2, Quantity: 1},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(7), o.ID)
	assert.Equal(t, order.StatusNew, o.Status)
	assert.True(t, decimal.RequireFromString("24.48").Equal(o.TotalAmount))
	require.Len(t, o.Items, 2)
	assert.Equal(t, "Waffle", o.Items[0].ProductName)
	assert.Equal(t, 2, o.ItemsCount, "items count falls back to the breakdown length")
}

func TestListOrders(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/orders", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, `[
			{"id": 2, "total_amount": "24.48", "status": "in_progress",
				"created_at": "2024-05-02 09:30:00", "items_count": 2},
			{"id": 1, "total_amount": "9.99", "status": "completed",
				"created_at": "2024-05-01 12:00:00", "items_count": 1}
		]`)
	})

	c := newTestClient(t, mux)
	orders, err := c.ListOrders(context.Background())
	require.NoError(t, err)

	require.Len(t, orders, 2)
	assert.Equal(t, int64(2), orders[0].ID, "backend ordering preserved")
	assert.Equal(t, order.StatusInProgress, orders[0].Status)
	assert.Equal(t, 2, orders[0].ItemsCount)
	assert.Empty(t, orders[0].Items)
}

func TestListOrders_UnknownStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/orders", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, `[{"id": 1, "total_amount": "1", "status": "shipped"}]`)
	})

	c := newTestClient(t, mux)
	_, err := c.ListOrders(context.Background())

	var unknownErr *order.UnknownStatusError
	require.ErrorAs(t, err, &unknownErr)
}

func TestUpdateOrderStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /api/orders/7", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Status string `json:"status"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "completed", req.Status)

		writeJSON(t, w, http.StatusOK, `{"id": 7, "total_amount": "24.48",
			"status": "completed", "created_at": "2024-05-01 12:00:00"}`)
	})

	c := newTestClient(t, mux)
	o, err := c.UpdateOrderStatus(context.Background(), 7, order.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, order.StatusCompleted, o.Status)
}

func TestParseTime(t *testing.T) {
	assert.Equal(t, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		parseTime("2024-05-01T12:00:00Z"))
	assert.Equal(t, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		parseTime("2024-05-01 12:00:00"))
	assert.True(t, parseTime("").IsZero())
	assert.True(t, parseTime("yesterday").IsZero())
}
