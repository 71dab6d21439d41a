package catalog

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veskr/storefront/internal/domain/product"
	"github.com/veskr/storefront/internal/domain/session"
	"github.com/veskr/storefront/internal/domain/user"
)

// --- Mock implementations ---

type mockAPI struct {
	listAllCalls int
	listAllResp  []product.Product
	listAllErr   error

	listOwnResp []product.Product

	createCalls int
	createResp  *product.Product
	createErr   error

	updateCalls int
	updateResp  *product.Product

	deleteCalls int
	deleteErr   error
}

func (m *mockAPI) ListAllProducts(_ context.Context) ([]product.Product, error) {
	m.listAllCalls++
	return m.listAllResp, m.listAllErr
}

func (m *mockAPI) ListOwnProducts(_ context.Context) ([]product.Product, error) {
	return m.listOwnResp, nil
}

func (m *mockAPI) CreateProduct(_ context.Context, _ product.Draft) (*product.Product, error) {
	m.createCalls++
	return m.createResp, m.createErr
}

func (m *mockAPI) UpdateProduct(_ context.Context, _ int64, _ product.Draft) (*product.Product, error) {
	m.updateCalls++
	return m.updateResp, nil
}

func (m *mockAPI) DeleteProduct(_ context.Context, _ int64) error {
	m.deleteCalls++
	return m.deleteErr
}

type mockIdentity struct {
	user *user.User
}

func (m *mockIdentity) CurrentUser() (user.User, bool) {
	if m.user == nil {
		return user.User{}, false
	}
	return *m.user, true
}

func (m *mockIdentity) Authenticated() bool { return m.user != nil }

// --- Helpers ---

var (
	alice = user.User{ID: 1, Username: "alice"}
	bob   = user.User{ID: 2, Username: "bob"}
)

func testProduct(id, ownerID int64, name string) product.Product {
	return product.Product{
		ID:      id,
		Name:    name,
		Price:   decimal.RequireFromString("9.99"),
		OwnerID: ownerID,
	}
}

func validDraft() product.Draft {
	return product.Draft{Name: "Widget", Price: decimal.RequireFromString("5")}
}

// --- Tests ---

func TestCapabilitiesFor(t *testing.T) {
	owned := testProduct(1, alice.ID, "mine")
	foreign := testProduct(2, bob.ID, "theirs")

	tests := []struct {
		name  string
		ident *mockIdentity
		p     product.Product
		want  Capabilities
	}{
		{"owner gets full control", &mockIdentity{user: &alice}, owned,
			Capabilities{CanPurchase: true, CanEdit: true, CanDelete: true}},
		{"non-owner may only purchase", &mockIdentity{user: &alice}, foreign,
			Capabilities{CanPurchase: true}},
		{"anonymous gets nothing", &mockIdentity{}, owned,
			Capabilities{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &mockAPI{}
			v := NewViewModel(api, tt.ident)

			got := v.CapabilitiesFor(tt.p)

			assert.Equal(t, tt.want, got)
			assert.Zero(t, api.listAllCalls, "capability derivation must not hit the network")
		})
	}
}

func TestBrowse(t *testing.T) {
	api := &mockAPI{listAllResp: []product.Product{
		testProduct(1, alice.ID, "mine"),
		testProduct(2, bob.ID, "theirs"),
	}}
	v := NewViewModel(api, &mockIdentity{user: &alice})

	listings, err := v.Browse(context.Background())
	require.NoError(t, err)

	require.Len(t, listings, 2)
	assert.True(t, listings[0].CanEdit)
	assert.True(t, listings[0].CanDelete)
	assert.False(t, listings[1].CanEdit)
	assert.False(t, listings[1].CanDelete)
	assert.True(t, listings[1].CanPurchase)
}

func TestBrowse_Unauthenticated(t *testing.T) {
	api := &mockAPI{}
	v := NewViewModel(api, &mockIdentity{})

	_, err := v.Browse(context.Background())

	require.ErrorIs(t, err, session.ErrUnauthenticated)
	assert.Zero(t, api.listAllCalls)
}

func TestMine(t *testing.T) {
	api := &mockAPI{listOwnResp: []product.Product{testProduct(1, alice.ID, "mine")}}
	v := NewViewModel(api, &mockIdentity{user: &alice})

	products, err := v.Mine(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "mine", products[0].Name)
}

func TestCreate_ValidatesDraft(t *testing.T) {
	api := &mockAPI{}
	v := NewViewModel(api, &mockIdentity{user: &alice})
	ctx := context.Background()

	_, err := v.Create(ctx, product.Draft{Name: "", Price: decimal.RequireFromString("5")})
	require.ErrorIs(t, err, product.ErrNameRequired)

	_, err = v.Create(ctx, product.Draft{Name: "Widget", Price: decimal.RequireFromString("-1")})
	require.ErrorIs(t, err, product.ErrNegativePrice)

	assert.Zero(t, api.createCalls, "invalid drafts must not be submitted")
}

func TestCreate(t *testing.T) {
	created := testProduct(3, alice.ID, "Widget")
	api := &mockAPI{createResp: &created}
	v := NewViewModel(api, &mockIdentity{user: &alice})

	p, err := v.Create(context.Background(), validDraft())
	require.NoError(t, err)
	assert.Equal(t, int64(3), p.ID)
	assert.Equal(t, alice.ID, p.OwnerID)
}

func TestUpdate_NonOwnerRejectedLocally(t *testing.T) {
	api := &mockAPI{}
	v := NewViewModel(api, &mockIdentity{user: &alice})

	_, err := v.Update(context.Background(), testProduct(2, bob.ID, "theirs"), validDraft())

	require.ErrorIs(t, err, ErrForbidden)
	assert.Zero(t, api.updateCalls, "ownership rejection must not reach the network")
}

func TestUpdate_Owner(t *testing.T) {
	updated := testProduct(1, alice.ID, "Widget")
	api := &mockAPI{updateResp: &updated}
	v := NewViewModel(api, &mockIdentity{user: &alice})

	p, err := v.Update(context.Background(), testProduct(1, alice.ID, "old"), validDraft())
	require.NoError(t, err)
	assert.Equal(t, "Widget", p.Name)
	assert.Equal(t, 1, api.updateCalls)
}

func TestDelete_NonOwnerRejectedLocally(t *testing.T) {
	api := &mockAPI{}
	v := NewViewModel(api, &mockIdentity{user: &alice})

	err := v.Delete(context.Background(), testProduct(2, bob.ID, "theirs"))

	require.ErrorIs(t, err, ErrForbidden)
	assert.Zero(t, api.deleteCalls)
}

func TestDelete_Owner(t *testing.T) {
	api := &mockAPI{}
	v := NewViewModel(api, &mockIdentity{user: &alice})

	require.NoError(t, v.Delete(context.Background(), testProduct(1, alice.ID, "mine")))
	assert.Equal(t, 1, api.deleteCalls)
}

func TestOwns(t *testing.T) {
	assert.True(t, Owns(alice, testProduct(1, alice.ID, "mine")))
	assert.False(t, Owns(alice, testProduct(2, bob.ID, "theirs")))
	assert.False(t, Owns(bob, testProduct(1, alice.ID, "mine")))
}
