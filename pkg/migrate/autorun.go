package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/quotes3d-backend/pkg/config"
	"github.com/angelmondragon/quotes3d-backend/pkg/db"
	"github.com/angelmondragon/quotes3d-backend/pkg/db/models"
	"github.com/angelmondragon/quotes3d-backend/pkg/logger"
)

// Apply brings the schema up to date for the quote tables.
func Apply(ctx context.Context, client *db.Client) error {
	if client == nil {
		return fmt.Errorf("db client is required")
	}
	if err := client.AutoMigrate(&models.Quote{}, &models.QuoteLineItem{}); err != nil {
		return fmt.Errorf("migrating quote schema: %w", err)
	}
	return nil
}

// MaybeRunDev applies the schema automatically outside production. Prod
// deploys run cmd/migrate explicitly.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if cfg.App.IsProd() {
		return nil
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env})
	logg.Info(ctx, "running schema migration (dev auto-run)")

	if err := Apply(ctx, client); err != nil {
		return err
	}

	logg.Info(ctx, "schema migration completed")
	return nil
}
