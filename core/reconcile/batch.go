package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Coordinator runs reconciliation over one member or a whole guild.
type Coordinator struct {
	identities IdentityStore
	mappings   MappingSource
	platform   Platform
	resolver   *Resolver
	executor   *Executor
	observers  []OutcomeObserver
	logger     *zap.Logger
	config     Config
}

// NewCoordinator wires the resolver and executor from the given collaborators.
func NewCoordinator(cfg Config, identities IdentityStore, mappings MappingSource, ranks RankProvider, platform Platform, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		identities: identities,
		mappings:   mappings,
		platform:   platform,
		resolver:   NewResolver(ranks, cfg.CallTimeout()),
		executor:   NewExecutor(platform, cfg.CallTimeout(), cfg.PruneMappedRoles),
		logger:     logger,
		config:     cfg,
	}
}

// AddObserver registers an observer notified after every reconciled member.
// Must be called before any pass starts.
func (c *Coordinator) AddObserver(o OutcomeObserver) {
	c.observers = append(c.observers, o)
}

// Platform returns the platform the coordinator mutates.
func (c *Coordinator) Platform() Platform {
	return c.platform
}

// ReconcileMember runs a single-member pass. Lookup failures for the guild or
// the member are returned as errors; mutation failures are reported in the outcome.
func (c *Coordinator) ReconcileMember(ctx context.Context, guildID, memberID string, trigger Trigger) (Outcome, error) {
	guild, err := LoadGuild(ctx, c.mappings, c.platform, guildID, c.config.CallTimeout())
	if err != nil {
		return Outcome{MemberID: memberID}, err
	}

	var member *Member
	err = withTimeout(ctx, c.config.CallTimeout(), func(ctx context.Context) (err error) {
		member, err = c.platform.Member(ctx, guildID, memberID)
		return err
	})
	if err != nil {
		return Outcome{MemberID: memberID}, fmt.Errorf("failed to get member %s: %w", memberID, err)
	}
	if member.Bot {
		return Outcome{MemberID: memberID}, ErrBotMember
	}

	return c.reconcile(ctx, guild, *member, trigger), nil
}

// ReconcileGuild runs a full pass over every non-bot member of a guild.
// Only loading the guild or listing its members can fail the pass; member
// failures are counted in the returned stats. progress may be nil.
func (c *Coordinator) ReconcileGuild(ctx context.Context, guildID string, trigger Trigger, progress ProgressFunc) (Stats, error) {
	stats := Stats{
		GuildID:   guildID,
		PassID:    uuid.NewString(),
		Trigger:   trigger,
		StartedAt: time.Now(),
	}
	ctx = WithPassID(ctx, stats.PassID)
	log := c.logger.With(
		zap.String("guild_id", guildID),
		zap.String("pass_id", stats.PassID),
		zap.String("trigger", string(trigger)),
	)

	guild, err := LoadGuild(ctx, c.mappings, c.platform, guildID, c.config.CallTimeout())
	if err != nil {
		return stats, err
	}

	var all []Member
	err = withTimeout(ctx, c.config.ListTimeout(), func(ctx context.Context) (err error) {
		all, err = c.platform.Members(ctx, guildID)
		return err
	})
	if err != nil {
		return stats, fmt.Errorf("failed to list members of guild %s: %w", guildID, err)
	}

	members := make([]Member, 0, len(all))
	for _, m := range all {
		if !m.Bot {
			members = append(members, m)
		}
	}
	stats.Total = len(members)

	if guild.FallbackRoleID == "" {
		log.Warn("Fallback role not found, unverified members will keep no managed role")
	}
	log.Info("Reconciliation pass started", zap.Int("members", stats.Total))

	every := c.config.ProgressEvery
	if every <= 0 {
		every = 10
	}
	emit := func(done bool) {
		if progress == nil {
			return
		}
		progress(Progress{
			PassID:        stats.PassID,
			GuildID:       guildID,
			Trigger:       trigger,
			Processed:     stats.Processed,
			Total:         stats.Total,
			RolesAssigned: stats.RolesAssigned,
			NoMatch:       stats.NoGroupMatch,
			Failed:        stats.Failed,
			Done:          done,
		})
	}

	workers := c.config.Workers()
	results := make(chan Outcome, workers)
	collected := make(chan struct{})

	// A single collector owns stats while workers run.
	go func() {
		defer close(collected)
		for o := range results {
			stats.Add(o)
			if stats.Processed%every == 0 && stats.Processed < stats.Total {
				emit(false)
			}
		}
	}()

	var g errgroup.Group
	g.SetLimit(workers)
	for _, m := range members {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			results <- c.reconcile(ctx, guild, m, trigger)
			return nil
		})
	}
	_ = g.Wait()
	close(results)
	<-collected

	stats.Duration = time.Since(stats.StartedAt)
	emit(true)

	log.Info("Reconciliation pass finished",
		zap.Int("total", stats.Total),
		zap.Int("processed", stats.Processed),
		zap.Int("verified", stats.Verified),
		zap.Int("roles_assigned", stats.RolesAssigned),
		zap.Int("no_group_match", stats.NoGroupMatch),
		zap.Int("failed", stats.Failed),
		zap.Duration("duration", stats.Duration),
	)

	if err := ctx.Err(); err != nil {
		return stats, fmt.Errorf("reconciliation of guild %s interrupted after %d of %d members: %w", guildID, stats.Processed, stats.Total, err)
	}
	return stats, nil
}

// reconcile resolves and applies one member. It never returns an error:
// every failure ends up in the outcome.
func (c *Coordinator) reconcile(ctx context.Context, guild *Guild, member Member, trigger Trigger) Outcome {
	log := c.logger.With(zap.String("guild_id", guild.ID), zap.String("member_id", member.ID))

	var (
		out      Outcome
		identity *VerifiedIdentity
	)
	err := withTimeout(ctx, c.config.CallTimeout(), func(ctx context.Context) (err error) {
		identity, err = c.identities.GetIdentity(ctx, member.ID)
		return err
	})
	if err != nil {
		out = Outcome{
			MemberID:     member.ID,
			RolesAdded:   []string{},
			RolesRemoved: []string{},
			Failures:     []MutationError{{Op: OpLookup, Target: "identity", Err: err}},
		}
	} else {
		res := c.resolver.Resolve(ctx, guild, identity)
		out = c.executor.Apply(ctx, guild, Observe(member), res.Desired)
		if res.Warning != nil {
			out.Warning = res.Warning.Error()
			log.Warn("Rank lookup degraded to fallback", zap.Error(res.Warning))
		}
	}

	if out.Failed() {
		log.Warn("Member reconciliation had failures", zap.String("branch", string(out.Branch)), zap.Error(out.Err()))
	} else if out.Changed() {
		log.Debug("Member reconciled",
			zap.String("branch", string(out.Branch)),
			zap.Bool("nickname_changed", out.NicknameChanged),
			zap.Strings("roles_added", out.RolesAdded),
			zap.Strings("roles_removed", out.RolesRemoved),
		)
	}

	for _, o := range c.observers {
		if err := o.MemberReconciled(ctx, guild.ID, trigger, out); err != nil {
			log.Warn("Outcome observer failed", zap.Error(err))
		}
	}
	return out
}
