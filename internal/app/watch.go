package app

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	sdkapp "github.com/go-faster/sdk/app"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/veskr/storefront/internal/backend"
	"github.com/veskr/storefront/internal/domain/order"
	"github.com/veskr/storefront/pkg/probe"
)

// watcher holds the polling state and instruments for one Watch run.
type watcher struct {
	lg     *zap.Logger
	c      *Components
	tracer trace.Tracer

	ordersSeen    metric.Int64Counter
	statusChanges metric.Int64Counter

	known map[int64]order.Status
}

func newWatcher(lg *zap.Logger, m *sdkapp.Telemetry, c *Components) (*watcher, error) {
	meter := otel.Meter("storefront.watch")
	tracer := otel.Tracer("storefront.watch")
	if m != nil {
		meter = m.MeterProvider().Meter("storefront.watch")
		tracer = m.TracerProvider().Tracer("storefront.watch")
	}

	ordersSeen, err := meter.Int64Counter("storefront.orders.appeared",
		metric.WithDescription("Orders first observed by the watcher"))
	if err != nil {
		return nil, errors.Wrap(err, "create counter")
	}
	statusChanges, err := meter.Int64Counter("storefront.orders.status_changes",
		metric.WithDescription("Observed order status transitions"))
	if err != nil {
		return nil, errors.Wrap(err, "create counter")
	}

	return &watcher{
		lg:            lg,
		c:             c,
		tracer:        tracer,
		ordersSeen:    ordersSeen,
		statusChanges: statusChanges,
		known:         make(map[int64]order.Status),
	}, nil
}

// Watch polls the backend for order status changes until the context is
// cancelled. The backend pushes nothing; changes made by other actors (a
// fulfiller completing an order) become visible only through re-fetching.
// A valid persisted session is required.
func Watch(ctx context.Context, lg *zap.Logger, m *sdkapp.Telemetry, c *Components, cfg WatchConfig) error {
	if err := c.Session.Restore(ctx); err != nil {
		return errors.Wrap(err, "restore session")
	}
	u, _ := c.Session.CurrentUser()
	lg.Info("Watching orders",
		zap.String("user", u.Username),
		zap.Duration("interval", cfg.Interval))

	w, err := newWatcher(lg, m, c)
	if err != nil {
		return err
	}

	p := probe.New(func(ctx context.Context) error {
		_, err := c.Backend.Me(ctx)
		return err
	}, probe.Config{
		OnChange: func(up bool, err error) {
			if up {
				lg.Info("Backend reachable again")
			} else {
				lg.Warn("Backend unreachable", zap.Error(err))
			}
		},
	})

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p.Run(ctx, cfg.ProbeInterval)
		return nil
	})
	g.Go(func() error {
		return w.pollOrders(ctx, cfg.Interval)
	})
	return g.Wait()
}

// pollOrders re-fetches the order list at the given interval and reports
// status changes and newly appeared orders.
func (w *watcher) pollOrders(ctx context.Context, interval time.Duration) error {
	seed, err := w.c.Orders.List(ctx)
	if err != nil {
		return errors.Wrap(err, "initial order fetch")
	}
	for _, o := range seed {
		w.known[o.ID] = o.Status
	}
	w.lg.Info("Baseline loaded", zap.Int("orders", len(seed)))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		if err := w.poll(ctx); err != nil {
			if errors.Is(err, backend.ErrUnauthorized) {
				return errors.Wrap(err, "session invalidated")
			}
			// Transient failure: keep the previous state, retry next tick.
			w.lg.Warn("Order poll failed", zap.Error(err))
		}
	}
}

func (w *watcher) poll(ctx context.Context) error {
	ctx, span := w.tracer.Start(ctx, "watch.Poll",
		trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	current, err := w.c.Orders.List(ctx)
	if err != nil {
		span.RecordError(err)
		return err
	}

	for _, o := range current {
		prev, seen := w.known[o.ID]
		switch {
		case !seen:
			w.ordersSeen.Add(ctx, 1,
				metric.WithAttributes(attribute.String("status", string(o.Status))))
			w.lg.Info("New order",
				zap.Int64("order_id", o.ID),
				zap.String("status", string(o.Status)),
				zap.String("total", o.TotalAmount.String()))
		case prev != o.Status:
			w.statusChanges.Add(ctx, 1,
				metric.WithAttributes(
					attribute.String("from", string(prev)),
					attribute.String("to", string(o.Status)),
				))
			w.lg.Info("Order status changed",
				zap.Int64("order_id", o.ID),
				zap.String("from", string(prev)),
				zap.String("to", string(o.Status)))
		}
		w.known[o.ID] = o.Status
	}
	return nil
}
