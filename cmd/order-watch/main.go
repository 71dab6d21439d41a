package main

import (
	"context"

	"github.com/go-faster/sdk/app"
	"go.uber.org/zap"

	appkg "github.com/veskr/storefront/internal/app"
)

func main() {
	app.Run(func(ctx context.Context, lg *zap.Logger, m *app.Telemetry) error {
		cfg, err := appkg.LoadConfig()
		if err != nil {
			return err
		}
		c, err := appkg.Build(ctx, cfg, m)
		if err != nil {
			return err
		}
		return appkg.Watch(ctx, lg, m, c, cfg.Watch)
	})
}
