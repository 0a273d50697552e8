package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"rank-sync/core/config"
	"rank-sync/core/logger"
	"rank-sync/core/reconcile"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var memberFlag string

// syncCmd runs one manual resync from the terminal.
var syncCmd = &cobra.Command{
	Use:   "sync <guild-id>",
	Short: "Resync nicknames and roles of a guild",
	Long: `Reconciles every member of the guild against their Roblox group rank and
logs progress while it runs. With --member only that member is synced.

Examples:
  # Full guild resync
  sync 123456789012345678

  # Single member
  sync 123456789012345678 --member 234567890123456789`,
	Args: cobra.ExactArgs(1),
	RunE: runSync,
}

func init() {
	syncCmd.Flags().StringVar(&memberFlag, "member", "", "Only sync this member")
	RootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	guildID := args[0]

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer l.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := buildServices(ctx, cfg, l, nil)
	if err != nil {
		return err
	}

	if memberFlag != "" {
		outcome, err := svc.dispatcher.Member(ctx, guildID, memberFlag)
		if err != nil {
			return fmt.Errorf("failed to sync member %s: %w", memberFlag, err)
		}
		l.Info("Member synced",
			zap.String("member_id", outcome.MemberID),
			zap.String("branch", string(outcome.Branch)),
			zap.Bool("nickname_changed", outcome.NicknameChanged),
			zap.Strings("roles_added", outcome.RolesAdded),
			zap.Strings("roles_removed", outcome.RolesRemoved),
		)
		return outcome.Err()
	}

	l.Info("Starting guild resync", zap.String("guild_id", guildID))
	stats, err := svc.dispatcher.Resync(ctx, guildID, func(p reconcile.Progress) {
		if p.Done {
			return
		}
		l.Info("Progress",
			zap.Int("processed", p.Processed),
			zap.Int("total", p.Total),
			zap.Int("roles_assigned", p.RolesAssigned),
			zap.Int("no_match", p.NoMatch),
			zap.Int("failed", p.Failed),
		)
	})
	if err != nil {
		return err
	}

	l.Info("Resync report",
		zap.String("pass_id", stats.PassID),
		zap.Int("total", stats.Total),
		zap.Int("verified", stats.Verified),
		zap.Int("roles_assigned", stats.RolesAssigned),
		zap.Int("no_group_match", stats.NoGroupMatch),
		zap.Int("failed", stats.Failed),
		zap.Int("nicknames_changed", stats.NicknamesChanged),
		zap.Int("roles_added", stats.RolesAdded),
		zap.Int("roles_removed", stats.RolesRemoved),
		zap.Duration("duration", stats.Duration),
	)
	return nil
}
