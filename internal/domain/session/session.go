// Package session owns the authentication token and current user identity.
// Every gated component checks the session before acting; an authorization
// failure anywhere forces the session back to the unauthenticated state with
// token and cart cleared.
package session

import (
	"context"
	"sync"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/veskr/storefront/internal/domain/cart"
	"github.com/veskr/storefront/internal/domain/user"
)

// ErrUnauthenticated is returned when an operation requires a valid session
// and none is present.
var ErrUnauthenticated = errors.New("not authenticated")

// TokenStore persists the session token between runs.
type TokenStore interface {
	Save(ctx context.Context, token string) error
	Load(ctx context.Context) (string, error)
	Clear(ctx context.Context) error
}

// Verifier validates the current token against the backend identity endpoint.
type Verifier interface {
	Me(ctx context.Context) (*user.User, error)
}

// Manager holds the token and current user. It implements the token source
// consumed by the backend client, and its Invalidate method is wired in as
// the client's unauthorized hook so a 401 mid-operation forces logout.
type Manager struct {
	tokens TokenStore
	verify Verifier
	cart   *cart.Store

	mu    sync.Mutex
	token string
	user  *user.User
}

// NewManager creates a Manager. The cart store is cleared together with the
// token whenever the session ends.
func NewManager(tokens TokenStore, verify Verifier, cartStore *cart.Store) *Manager {
	return &Manager{
		tokens: tokens,
		verify: verify,
		cart:   cartStore,
	}
}

// Restore reads the persisted token and validates it against the backend.
// A token whose JWT expiry has already passed is rejected locally without a
// network call. Any rejection clears the token and cart and reports
// ErrUnauthenticated.
func (m *Manager) Restore(ctx context.Context) error {
	token, err := m.tokens.Load(ctx)
	if err != nil {
		return errors.Wrap(err, "load token")
	}
	if token == "" {
		return ErrUnauthenticated
	}

	if exp, ok := tokenExpiry(token); ok && expired(exp) {
		zctx.From(ctx).Debug("Persisted token expired locally", zap.Time("exp", exp))
		m.Invalidate(ctx)
		return ErrUnauthenticated
	}

	m.mu.Lock()
	m.token = token
	m.mu.Unlock()

	u, err := m.verify.Me(ctx)
	if err != nil {
		m.Invalidate(ctx)
		return errors.Wrap(ErrUnauthenticated, err.Error())
	}

	m.mu.Lock()
	m.user = u
	m.mu.Unlock()
	return nil
}

// Login persists the token and sets the current user. Token and user come
// from a successful backend login or registration response.
func (m *Manager) Login(ctx context.Context, token string, u user.User) error {
	if err := m.tokens.Save(ctx, token); err != nil {
		return errors.Wrap(err, "save token")
	}

	m.mu.Lock()
	m.token = token
	m.user = &u
	m.mu.Unlock()
	return nil
}

// Logout clears the token and the persisted cart snapshot. Subsequent cart
// and order operations are unavailable until re-login.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	m.token = ""
	m.user = nil
	m.mu.Unlock()

	tokenErr := m.tokens.Clear(ctx)
	cartErr := m.cart.Clear(ctx)

	if tokenErr != nil {
		return errors.Wrap(tokenErr, "clear token")
	}
	if cartErr != nil {
		return errors.Wrap(cartErr, "clear cart")
	}
	return nil
}

// Invalidate forces the session back to the unauthenticated state. It is the
// backend client's unauthorized hook; persistence errors are logged, not
// returned, since the session is already gone.
func (m *Manager) Invalidate(ctx context.Context) {
	if err := m.Logout(ctx); err != nil {
		zctx.From(ctx).Warn("Session invalidation cleanup failed", zap.Error(err))
	}
}

// Token returns the current bearer token, empty when unauthenticated.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.token
}

// CurrentUser returns the authenticated user, if any.
func (m *Manager) CurrentUser() (user.User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.user == nil {
		return user.User{}, false
	}
	return *m.user, true
}

// Authenticated reports whether a validated session is present.
func (m *Manager) Authenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.token != "" && m.user != nil
}
