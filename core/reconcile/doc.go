// Package reconcile converges a guild member's nickname and managed roles to the
// state implied by their verified external identity and group rank.
//
// Every trigger (member join, verification completion, scheduled sweep, manual
// resync) goes through the same pipeline, so running it twice in a row is a no-op.
//
// # Architecture
//
// The package consists of three components:
//
// 1. Resolver: a pure function from (guild mapping, identity, rank lookup) to a
// DesiredState. A member falls into exactly one branch: unverified (fallback role,
// nickname untouched), unranked (fallback role, nickname = external username) or
// ranked (mapped role only, nickname = "username [rank]"). Rank lookup failures
// degrade to unranked and are reported as warnings.
//
// 2. Executor: diffs ObservedState against DesiredState and applies the rename and
// each role add/remove as independent mutations. Only managed roles (fallback plus
// every mapped role) are ever removed; roles granted by other means are never touched.
//
// 3. Coordinator: runs single-member passes and full-guild passes over a bounded
// worker pool. A member's failure is counted and the pass continues; only failing to
// load the guild mapping, its roles or its member list fails a pass.
//
// Collaborators are injected through the IdentityStore, RankProvider, MappingSource
// and Platform interfaces.
//
// # Usage Example
//
//	coord := reconcile.NewCoordinator(cfg.Sync, identities, mappings, robloxClient, platform, logger)
//
//	// Single member (join, verification)
//	outcome, err := coord.ReconcileMember(ctx, guildID, memberID, reconcile.TriggerJoin)
//
//	// Full guild (sweep, resync)
//	stats, err := coord.ReconcileGuild(ctx, guildID, reconcile.TriggerResync, func(p reconcile.Progress) {
//	    logger.Info("progress", zap.Int("processed", p.Processed), zap.Int("total", p.Total))
//	})
package reconcile
