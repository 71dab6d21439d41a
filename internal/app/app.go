// Package app wires the client stack: local persistence, instrumented HTTP
// transport, typed backend client, session manager, cart store, catalog view
// model and order lifecycle. It is the single wiring point shared by every
// command.
package app

import (
	"context"
	"net/http"
	"os"

	"github.com/go-faster/errors"
	sdkapp "github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/veskr/storefront/internal/backend"
	"github.com/veskr/storefront/internal/domain/cart"
	"github.com/veskr/storefront/internal/domain/catalog"
	"github.com/veskr/storefront/internal/domain/order"
	"github.com/veskr/storefront/internal/domain/session"
	"github.com/veskr/storefront/internal/storage/file"
	"github.com/veskr/storefront/pkg/httptransport"
)

// Components is the fully wired client stack.
type Components struct {
	Backend *backend.Client
	Session *session.Manager
	Cart    *cart.Store
	Orders  *order.Lifecycle
	Catalog *catalog.ViewModel
}

// Build creates all components. m may be nil for one-shot tools that carry no
// telemetry; the transport then skips OpenTelemetry instrumentation.
func Build(ctx context.Context, cfg *Config, m *sdkapp.Telemetry) (*Components, error) {
	if err := os.MkdirAll(cfg.StateDir, 0o700); err != nil {
		return nil, errors.Wrap(err, "create state dir")
	}

	tokens := file.NewTokenStore(cfg.StateDir)
	snapshots := file.NewCartSnapshotter(cfg.StateDir)

	cartStore := cart.NewStore(snapshots)
	if err := cartStore.Restore(ctx); err != nil {
		// A corrupt snapshot must not brick the client; the cart starts
		// empty and the next mutation rewrites the file.
		zctx.From(ctx).Warn("Cart snapshot unreadable, starting empty", zap.Error(err))
	}

	var base http.RoundTripper = http.DefaultTransport
	if m != nil {
		base = otelhttp.NewTransport(base,
			otelhttp.WithTracerProvider(m.TracerProvider()),
			otelhttp.WithMeterProvider(m.MeterProvider()),
		)
	}
	transport := httptransport.Wrap(base,
		httptransport.RequestID(),
		httptransport.LogRequests(),
	)

	// The session manager and backend client reference each other: the client
	// reads the bearer token from the session, and a 401 anywhere invalidates
	// the session. The closures break the construction cycle.
	var sess *session.Manager
	client := backend.NewClient(
		backend.Config{
			BaseURL:   cfg.BackendURL,
			Timeout:   cfg.HTTPTimeout,
			Transport: transport,
		},
		func() string {
			if sess == nil {
				return ""
			}
			return sess.Token()
		},
		func(ctx context.Context) {
			if sess != nil {
				sess.Invalidate(ctx)
			}
		},
	)
	sess = session.NewManager(tokens, client, cartStore)

	return &Components{
		Backend: client,
		Session: sess,
		Cart:    cartStore,
		Orders:  order.NewLifecycle(client, cartStore),
		Catalog: catalog.NewViewModel(client, sess),
	}, nil
}
