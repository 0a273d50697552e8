package reconcile

import (
	"context"
	"fmt"
	"time"
)

// DefaultFallbackRoleName is used when a guild never configured a fallback role.
const DefaultFallbackRoleName = "Visitor"

// MappingConfig is a guild's group integration settings as stored by the admin commands.
type MappingConfig struct {
	// GroupID is the external group; zero when no group was set up.
	GroupID int64 `json:"group_id"`

	// Enabled toggles group integration.
	Enabled bool `json:"enabled"`

	// Ranks maps an external rank id to exactly one local role id.
	Ranks map[int]string `json:"ranks"`

	// FallbackRoleName is the name of the role given to members without a group role.
	FallbackRoleName string `json:"fallback_role_name"`
}

// Active reports whether group lookups should happen at all.
func (m MappingConfig) Active() bool {
	return m.Enabled && m.GroupID != 0
}

// Guild is one pass's view of a community: its mapping joined with its live roles.
type Guild struct {
	ID      string
	Mapping MappingConfig

	// FallbackRoleID is empty when no live role carries the fallback name.
	FallbackRoleID string

	// Roles is the set of live role ids.
	Roles RoleSet
}

// BindGuild resolves the fallback role by name against the live role list.
func BindGuild(guildID string, mapping MappingConfig, roles []Role) *Guild {
	name := mapping.FallbackRoleName
	if name == "" {
		name = DefaultFallbackRoleName
	}

	g := &Guild{
		ID:      guildID,
		Mapping: mapping,
		Roles:   make(RoleSet, len(roles)),
	}
	for _, r := range roles {
		g.Roles[r.ID] = struct{}{}
		if g.FallbackRoleID == "" && r.Name == name {
			g.FallbackRoleID = r.ID
		}
	}
	return g
}

// LoadGuild reads the mapping and live roles for a guild. Each read is bounded
// by timeout; a zero timeout disables the deadline.
func LoadGuild(ctx context.Context, mappings MappingSource, platform Platform, guildID string, timeout time.Duration) (*Guild, error) {
	var mapping MappingConfig
	err := withTimeout(ctx, timeout, func(ctx context.Context) (err error) {
		mapping, err = mappings.LoadMapping(ctx, guildID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load role mapping for guild %s: %w", guildID, err)
	}

	var roles []Role
	err = withTimeout(ctx, timeout, func(ctx context.Context) (err error) {
		roles, err = platform.Roles(ctx, guildID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list roles for guild %s: %w", guildID, err)
	}
	return BindGuild(guildID, mapping, roles), nil
}

// Fallback returns the desired role set for members without a group role.
// It is empty when the guild has no fallback role.
func (g *Guild) Fallback() RoleSet {
	return NewRoleSet(g.FallbackRoleID)
}

// MappedRole returns the role mapped to a rank, or "" when the rank has no entry.
func (g *Guild) MappedRole(rankID int) string {
	return g.Mapping.Ranks[rankID]
}

// Managed returns every role this system may add or remove in the guild:
// the fallback role plus all mapped roles.
func (g *Guild) Managed() RoleSet {
	s := g.Fallback()
	for _, roleID := range g.Mapping.Ranks {
		if roleID != "" {
			s[roleID] = struct{}{}
		}
	}
	return s
}
