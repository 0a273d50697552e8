package rolesync

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"rank-sync/core/reconcile"

	"go.uber.org/zap"
)

// PassSummary is the result of the latest full pass of a guild.
type PassSummary struct {
	Stats      reconcile.Stats `json:"stats"`
	Error      string          `json:"error,omitempty"`
	ReportKey  string          `json:"report_key,omitempty"`
	FinishedAt time.Time       `json:"finished_at"`
}

// Dispatcher turns sync triggers into reconciliation passes.
type Dispatcher struct {
	coordinator *reconcile.Coordinator
	archive     *Archive
	metrics     *Metrics
	logger      *zap.Logger

	mu   sync.RWMutex
	last map[string]PassSummary
}

// NewDispatcher creates a new Dispatcher. archive and metrics may be nil.
// Both are registered as coordinator observers.
func NewDispatcher(coordinator *reconcile.Coordinator, archive *Archive, metrics *Metrics, logger *zap.Logger) *Dispatcher {
	if archive != nil {
		coordinator.AddObserver(archive)
	}
	if metrics != nil {
		coordinator.AddObserver(metrics)
	}
	return &Dispatcher{
		coordinator: coordinator,
		archive:     archive,
		metrics:     metrics,
		logger:      logger,
		last:        make(map[string]PassSummary),
	}
}

// MemberJoined reconciles a member that just joined. Failures are logged only.
func (d *Dispatcher) MemberJoined(ctx context.Context, guildID, memberID string) {
	log := d.logger.With(zap.String("guild_id", guildID), zap.String("member_id", memberID))

	outcome, err := d.coordinator.ReconcileMember(ctx, guildID, memberID, reconcile.TriggerJoin)
	switch {
	case errors.Is(err, reconcile.ErrBotMember):
		return
	case err != nil:
		log.Warn("Join sync failed", zap.Error(err))
	case outcome.Failed():
		log.Warn("Join sync incomplete", zap.String("branch", string(outcome.Branch)), zap.Error(outcome.Err()))
	default:
		log.Info("Join sync completed",
			zap.String("branch", string(outcome.Branch)),
			zap.Strings("roles_added", outcome.RolesAdded),
		)
	}
}

// VerificationCompleted reconciles a member whose identity was just committed.
func (d *Dispatcher) VerificationCompleted(ctx context.Context, guildID, memberID string) (reconcile.Outcome, error) {
	outcome, err := d.coordinator.ReconcileMember(ctx, guildID, memberID, reconcile.TriggerVerification)
	if err != nil {
		return outcome, fmt.Errorf("failed to sync verified member %s: %w", memberID, err)
	}
	return outcome, nil
}

// Member runs an administrator-requested single-member pass.
func (d *Dispatcher) Member(ctx context.Context, guildID, memberID string) (reconcile.Outcome, error) {
	return d.coordinator.ReconcileMember(ctx, guildID, memberID, reconcile.TriggerResync)
}

// Resync runs a full pass over one guild, streaming progress to the caller.
func (d *Dispatcher) Resync(ctx context.Context, guildID string, progress reconcile.ProgressFunc) (reconcile.Stats, error) {
	return d.runPass(ctx, guildID, reconcile.TriggerResync, progress)
}

// Sweep runs a full pass over every guild the bot is in. A guild that fails
// does not stop the others; their errors are joined in the result.
func (d *Dispatcher) Sweep(ctx context.Context) error {
	guilds, err := d.coordinator.Platform().Guilds(ctx)
	if err != nil {
		return fmt.Errorf("failed to list guilds: %w", err)
	}

	d.logger.Info("Sweep started", zap.Int("guilds", len(guilds)))
	start := time.Now()

	var (
		errs      []error
		processed int
	)
	for _, guildID := range guilds {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		stats, err := d.runPass(ctx, guildID, reconcile.TriggerSweep, nil)
		processed += stats.Processed
		if err != nil {
			errs = append(errs, err)
		}
	}

	d.logger.Info("Sweep finished",
		zap.Int("guilds", len(guilds)),
		zap.Int("failed_guilds", len(errs)),
		zap.Int("members", processed),
		zap.Duration("duration", time.Since(start)),
	)
	return errors.Join(errs...)
}

// LastPasses returns the latest full pass of every guild, ordered by guild id.
func (d *Dispatcher) LastPasses() []PassSummary {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]PassSummary, 0, len(d.last))
	for _, s := range d.last {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Stats.GuildID < out[j].Stats.GuildID })
	return out
}

// Archive returns the report archive, or nil when storage is disabled.
func (d *Dispatcher) Archive() *Archive {
	return d.archive
}

func (d *Dispatcher) runPass(ctx context.Context, guildID string, trigger reconcile.Trigger, progress reconcile.ProgressFunc) (reconcile.Stats, error) {
	stats, err := d.coordinator.ReconcileGuild(ctx, guildID, trigger, progress)
	d.metrics.PassFinished(stats, err)

	summary := PassSummary{Stats: stats, FinishedAt: time.Now()}
	if err != nil {
		summary.Error = err.Error()
		d.logger.Error("Guild pass failed",
			zap.String("guild_id", guildID),
			zap.String("trigger", string(trigger)),
			zap.Error(err),
		)
	}

	if d.archive != nil {
		if stats.Total == 0 && err != nil {
			d.archive.Discard(stats.PassID)
		} else {
			// Uploading must not depend on a cancelled pass context.
			storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
			key, storeErr := d.archive.Store(storeCtx, stats, err)
			cancel()
			if storeErr != nil {
				d.logger.Warn("Failed to archive sync report", zap.String("guild_id", guildID), zap.Error(storeErr))
			}
			summary.ReportKey = key
		}
	}

	d.mu.Lock()
	d.last[guildID] = summary
	d.mu.Unlock()
	return stats, err
}
