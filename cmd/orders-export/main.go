// Command orders-export downloads the current user's full order history,
// including per-order item breakdowns, and writes it as gzip-compressed JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"sync"
	"time"

	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	appkg "github.com/veskr/storefront/internal/app"
	"github.com/veskr/storefront/internal/domain/order"
)

// detailWorkers bounds concurrent detail fetches; the backend is small and
// a handful of parallel requests is plenty.
const detailWorkers = 4

type exportItem struct {
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	Total       decimal.Decimal `json:"total"`
}

type exportOrder struct {
	ID          int64           `json:"id"`
	Status      string          `json:"status"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	CreatedAt   time.Time       `json:"created_at"`
	Items       []exportItem    `json:"items"`
}

func main() {
	var out string
	flag.StringVar(&out, "out", "orders.json.gz", "output file path")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, out); err != nil {
		slog.Error("orders export failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("orders export completed", slog.String("out", out))
}

func run(ctx context.Context, out string) error {
	cfg, err := appkg.LoadConfig()
	if err != nil {
		return err
	}
	c, err := appkg.Build(ctx, cfg, nil)
	if err != nil {
		return err
	}
	if err := c.Session.Restore(ctx); err != nil {
		return errors.Wrap(err, "restore session")
	}

	summaries, err := c.Orders.List(ctx)
	if err != nil {
		return errors.Wrap(err, "list orders")
	}
	slog.Info("fetching order details", slog.Int("orders", len(summaries)))

	// Fetch details concurrently, bounded by detailWorkers.
	var (
		mu      sync.Mutex
		exports = make([]exportOrder, 0, len(summaries))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(detailWorkers)
	for _, s := range summaries {
		g.Go(func() error {
			detail, err := c.Orders.Detail(gctx, s.ID)
			if err != nil {
				return errors.Wrapf(err, "order %d detail", s.ID)
			}
			mu.Lock()
			exports = append(exports, toExport(detail))
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	// Concurrent appends scramble the order; restore newest-first.
	sort.Slice(exports, func(i, j int) bool {
		return exports[i].CreatedAt.After(exports[j].CreatedAt)
	})

	return writeExport(out, exports)
}

func toExport(o *order.Order) exportOrder {
	e := exportOrder{
		ID:          o.ID,
		Status:      string(o.Status),
		TotalAmount: o.TotalAmount,
		CreatedAt:   o.CreatedAt,
		Items:       make([]exportItem, len(o.Items)),
	}
	for i, it := range o.Items {
		e.Items[i] = exportItem{
			ProductName: it.ProductName,
			UnitPrice:   it.UnitPrice,
			Quantity:    it.Quantity,
			Total:       it.Total,
		}
	}
	return e
}

func writeExport(path string, exports []exportOrder) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create output file")
	}
	defer f.Close()

	zw := pgzip.NewWriter(f)
	enc := json.NewEncoder(zw)
	enc.SetIndent("", "  ")
	if err := enc.Encode(exports); err != nil {
		return errors.Wrap(err, "encode export")
	}
	if err := zw.Close(); err != nil {
		return errors.Wrap(err, "close gzip writer")
	}
	return errors.Wrap(f.Sync(), "sync output file")
}
