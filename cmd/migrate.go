package cmd

import (
	"fmt"

	"rank-sync/core/config"
	"rank-sync/core/database"
	"rank-sync/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var showFlag bool

// migrateCmd creates or updates the tables.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(".")
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		l, err := logger.New(&cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		defer l.Sync()

		db, err := database.Connect(cfg.Database)
		if err != nil {
			return err
		}
		if err := database.Migrate(db, allModels()...); err != nil {
			return err
		}
		l.Info("Migration finished", zap.Int("tables", len(allModels())))

		if !showFlag {
			return nil
		}
		reports, err := database.Inspect(db, allModels()...)
		if err != nil {
			return err
		}
		for _, r := range reports {
			fields := make([]string, 0, len(r.Columns))
			for _, c := range r.Columns {
				fields = append(fields, c.Field+" "+c.Type)
			}
			l.Info("Table", zap.String("name", r.Table), zap.Bool("exists", r.Exists), zap.Strings("columns", fields))
		}
		return nil
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&showFlag, "show", false, "Print the resulting table columns")
	RootCmd.AddCommand(migrateCmd)
}
