package migrate

import (
	"context"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/basho-studio/storefront/pkg/config"
	"github.com/basho-studio/storefront/pkg/db"
	"github.com/basho-studio/storefront/pkg/logger"
)

// MaybeRunDev brings the cart snapshot schema up to date at boot. It only
// acts in the dev environment with BASHO_AUTO_MIGRATE set; other
// environments run cmd/migrate as a release step.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if client == nil || cfg == nil || !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}
	if err := ValidateEmbedded(); err != nil {
		return fmt.Errorf("embedded migrations: %w", err)
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("sql handle: %w", err)
	}

	ctx = logg.WithField(ctx, "driver", client.Driver())
	if err := Run(ctx, sqlDB, client.Driver(), "up"); err != nil {
		return err
	}

	version, err := goose.GetDBVersionContext(ctx, sqlDB)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	logg.Info(logg.WithField(ctx, "schema_version", version), "migrate.autorun.done")
	return nil
}
