package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"rank-sync/core/config"
	"rank-sync/core/loader"
	"rank-sync/core/logger"
	"rank-sync/core/server"
	"rank-sync/feature/grouproles"
	"rank-sync/feature/rolesync"
	"rank-sync/feature/verification"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "rank-sync/docs/swagger"
)

// @title Rank Sync API
// @version 1.0
// @description Keeps Discord nicknames and roles in line with Roblox group ranks.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the bot and the admin API",
	Long: `Connects the database, the Discord gateway and the Roblox API, then serves
the admin API and runs the periodic role sweep until interrupted.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// 3. Wire Services
		svc, err := buildServices(ctx, cfg, logg, prometheus.DefaultRegisterer)
		if err != nil {
			logg.Fatal("Failed to initialize services", zap.Error(err))
		}

		// 4. Discord Gateway
		svc.discord.OnMemberJoin(ctx, svc.dispatcher.MemberJoined)
		if err := svc.discord.Open(); err != nil {
			logg.Fatal("Failed to connect to Discord", zap.Error(err))
		}
		defer svc.discord.Close()

		// 5. Features
		app := server.New(cfg.Server, logg)
		mgr := loader.NewManager(logg)
		mgr.Register(grouproles.NewFeature(svc.db, svc.roblox, svc.discord, cfg.Sync.FallbackRoleName, logg))
		mgr.Register(verification.NewFeature(svc.db, svc.roblox, svc.dispatcher, logg))
		mgr.Register(rolesync.NewFeature(svc.dispatcher, svc.ledger, svc.discord.State(), prometheus.DefaultGatherer, logg))
		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 6. Sweep Scheduler
		scheduler := rolesync.NewScheduler(
			svc.dispatcher,
			svc.discord.State(),
			cfg.Sync.SweepDelay(),
			cfg.Sync.SweepInterval(),
			logg,
		)
		go scheduler.Run(ctx)

		// 7. Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(cfg.Server.Address()); err != nil {
				logg.Error("Server stopped", zap.Error(err))
				stop()
			}
		}()

		// 8. Graceful Shutdown
		<-ctx.Done()
		logg.Info("Shutting down...")
		if err := app.ShutdownWithTimeout(cfg.Server.ShutdownTimeout()); err != nil {
			logg.Warn("Server shutdown incomplete", zap.Error(err))
		}
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
