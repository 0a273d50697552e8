package cmd

import (
	"context"
	"fmt"

	"rank-sync/core/config"
	"rank-sync/core/database"
	"rank-sync/core/discord"
	"rank-sync/core/reconcile"
	"rank-sync/core/roblox"
	"rank-sync/core/storage"
	"rank-sync/feature/grouproles"
	"rank-sync/feature/rolesync"
	"rank-sync/feature/verification"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// services is the dependency graph shared by the server and the CLI commands.
type services struct {
	db          *gorm.DB
	roblox      *roblox.Client
	discord     *discord.Client
	coordinator *reconcile.Coordinator
	ledger      *rolesync.Ledger
	dispatcher  *rolesync.Dispatcher
}

// allModels lists every table the service owns.
func allModels() []any {
	var models []any
	models = append(models, grouproles.Models()...)
	models = append(models, verification.Models()...)
	models = append(models, rolesync.Models()...)
	return models
}

// buildServices connects the database, object storage and both external APIs
// and wires the reconciliation engine. It does not open the gateway.
func buildServices(ctx context.Context, cfg *config.Config, logg *zap.Logger, reg prometheus.Registerer) (*services, error) {
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db, allModels()...); err != nil {
		return nil, err
	}
	logg.Info("Connected to database", zap.String("driver", db.Dialector.Name()))

	var archive *rolesync.Archive
	if cfg.Storage.Enabled {
		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return nil, err
		}
		if err := storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region); err != nil {
			return nil, err
		}
		archive = rolesync.NewArchive(client, cfg.Storage.Bucket)
		logg.Info("Sync report archive enabled", zap.String("bucket", cfg.Storage.Bucket))
	}

	robloxClient := roblox.NewClient(cfg.Roblox)
	discordClient, err := discord.NewClient(cfg.Discord, logg)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord client: %w", err)
	}

	coordinator := reconcile.NewCoordinator(
		cfg.Sync,
		verification.NewStore(db),
		grouproles.NewStore(db, cfg.Sync.FallbackRoleName),
		robloxClient,
		discordClient,
		logg,
	)
	ledger := rolesync.NewLedger(db)
	coordinator.AddObserver(ledger)

	var metrics *rolesync.Metrics
	if reg != nil {
		metrics = rolesync.NewMetrics(reg)
	}

	return &services{
		db:          db,
		roblox:      robloxClient,
		discord:     discordClient,
		coordinator: coordinator,
		ledger:      ledger,
		dispatcher:  rolesync.NewDispatcher(coordinator, archive, metrics, logg),
	}, nil
}
