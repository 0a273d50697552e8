package reconcile

import "context"

// IdentityStore reads verified identities.
type IdentityStore interface {
	// GetIdentity returns the member's identity, or nil when the member never verified.
	GetIdentity(ctx context.Context, memberID string) (*VerifiedIdentity, error)
}

// RankProvider answers group membership questions for an external account.
// Implementations may fail with timeouts or not-found errors; the resolver
// treats every failure as "no group role applies".
type RankProvider interface {
	// IsMember reports whether the external user belongs to the group.
	IsMember(ctx context.Context, externalID, groupID int64) (bool, error)

	// GetRank returns the user's rank in the group, or nil when the user holds none.
	GetRank(ctx context.Context, externalID, groupID int64) (*Rank, error)
}

// MappingSource loads a guild's role mapping configuration.
type MappingSource interface {
	// LoadMapping returns the guild's mapping. Guilds that were never configured
	// return a disabled mapping rather than an error.
	LoadMapping(ctx context.Context, guildID string) (MappingConfig, error)
}

// Platform is the chat platform's member API.
// Write methods must return ErrPermissionDenied or ErrUnknownRole (wrapped) for
// those conditions so outcomes can classify them.
type Platform interface {
	// Guilds lists the guild ids the bot is a member of.
	Guilds(ctx context.Context) ([]string, error)

	// Members lists every member of the guild, bots included.
	Members(ctx context.Context, guildID string) ([]Member, error)

	// Member reads one member live.
	Member(ctx context.Context, guildID, memberID string) (*Member, error)

	// Roles lists the guild's live roles.
	Roles(ctx context.Context, guildID string) ([]Role, error)

	// SetNickname renames a member.
	SetNickname(ctx context.Context, guildID, memberID, nickname string) error

	// AddRole grants a role.
	AddRole(ctx context.Context, guildID, memberID, roleID string) error

	// RemoveRole revokes a role.
	RemoveRole(ctx context.Context, guildID, memberID, roleID string) error
}

// OutcomeObserver is notified after each member is reconciled.
type OutcomeObserver interface {
	MemberReconciled(ctx context.Context, guildID string, trigger Trigger, outcome Outcome) error
}
