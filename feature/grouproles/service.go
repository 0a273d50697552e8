package grouproles

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"rank-sync/core/reconcile"
	"rank-sync/core/roblox"

	"go.uber.org/zap"
)

var (
	// ErrGroupNotFound means the external group does not exist.
	ErrGroupNotFound = errors.New("group not found")
	// ErrNoGroup means the guild has not set up a group yet.
	ErrNoGroup = errors.New("no group set up for this guild")
	// ErrRankNotFound means the rank does not exist in the configured group.
	ErrRankNotFound = errors.New("rank does not exist in the group")
	// ErrNotMapped means the rank has no mapping to remove.
	ErrNotMapped = errors.New("rank is not mapped")
	// ErrRoleNotFound means the guild has no role with that id.
	ErrRoleNotFound = errors.New("role not found in guild")
	// ErrInvalidInput is returned for malformed arguments.
	ErrInvalidInput = errors.New("invalid input")
)

// RankLister lists the ranks of an external group.
type RankLister interface {
	GroupRanks(ctx context.Context, groupID int64) ([]reconcile.Rank, error)
}

// RoleLister lists a guild's live roles.
type RoleLister interface {
	Roles(ctx context.Context, guildID string) ([]reconcile.Role, error)
}

// MappingView is one rank mapping with display names.
type MappingView struct {
	RankID   int    `json:"rank_id"`
	RankName string `json:"rank_name,omitempty"`
	RoleID   string `json:"role_id"`
	RoleName string `json:"role_name,omitempty"`
}

// View is a guild's full group configuration.
type View struct {
	GuildID          string           `json:"guild_id"`
	GroupID          int64            `json:"group_id"`
	Enabled          bool             `json:"enabled"`
	FallbackRoleName string           `json:"fallback_role_name"`
	Mappings         []MappingView    `json:"mappings"`
	AvailableRanks   []reconcile.Rank `json:"available_ranks"`
}

// Service implements the group role administration operations.
type Service struct {
	store  *Store
	ranks  RankLister
	roles  RoleLister
	logger *zap.Logger
}

// NewService creates a new Service. roles may be nil, in which case role ids are not validated.
func NewService(store *Store, ranks RankLister, roles RoleLister, logger *zap.Logger) *Service {
	return &Service{store: store, ranks: ranks, roles: roles, logger: logger}
}

// Store returns the underlying store, which also serves as reconcile.MappingSource.
func (s *Service) Store() *Store {
	return s.store
}

// Setup links the guild to a group after checking the group exists.
// Existing mappings and the enabled flag are kept.
func (s *Service) Setup(ctx context.Context, guildID string, groupID int64) ([]reconcile.Rank, error) {
	if groupID <= 0 {
		return nil, fmt.Errorf("%w: group id must be positive", ErrInvalidInput)
	}

	ranks, err := s.groupRanks(ctx, groupID)
	if err != nil {
		return nil, err
	}

	settings, err := s.store.Settings(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		settings = &GroupSettings{GuildID: guildID}
	}
	settings.GroupID = groupID

	if err := s.store.SaveSettings(ctx, settings); err != nil {
		return nil, err
	}

	s.logger.Info("Group set up", zap.String("guild_id", guildID), zap.Int64("group_id", groupID), zap.Int("ranks", len(ranks)))
	return ranks, nil
}

// SetEnabled toggles group integration. A group must be set up first.
func (s *Service) SetEnabled(ctx context.Context, guildID string, enabled bool) error {
	settings, err := s.requireGroup(ctx, guildID)
	if err != nil {
		return err
	}
	settings.Enabled = enabled
	if err := s.store.SaveSettings(ctx, settings); err != nil {
		return err
	}

	s.logger.Info("Group integration toggled", zap.String("guild_id", guildID), zap.Bool("enabled", enabled))
	return nil
}

// MapRank maps a rank of the configured group to a guild role.
// A rank maps to at most one role; mapping it again replaces the role.
func (s *Service) MapRank(ctx context.Context, guildID string, rankID int, roleID string) (*MappingView, error) {
	if roleID == "" {
		return nil, fmt.Errorf("%w: role id is required", ErrInvalidInput)
	}

	settings, err := s.requireGroup(ctx, guildID)
	if err != nil {
		return nil, err
	}

	ranks, err := s.groupRanks(ctx, settings.GroupID)
	if err != nil {
		return nil, err
	}
	rank, ok := findRank(ranks, rankID)
	if !ok {
		return nil, fmt.Errorf("rank %d: %w", rankID, ErrRankNotFound)
	}

	view := &MappingView{RankID: rankID, RankName: rank.Name, RoleID: roleID}
	if s.roles != nil {
		roles, err := s.roles.Roles(ctx, guildID)
		if err != nil {
			return nil, fmt.Errorf("failed to list guild roles: %w", err)
		}
		name, ok := roleName(roles, roleID)
		if !ok {
			return nil, fmt.Errorf("role %s: %w", roleID, ErrRoleNotFound)
		}
		view.RoleName = name
	}

	if err := s.store.UpsertMapping(ctx, &RankRole{GuildID: guildID, RankID: rankID, RoleID: roleID}); err != nil {
		return nil, err
	}

	s.logger.Info("Rank mapped",
		zap.String("guild_id", guildID),
		zap.Int("rank_id", rankID),
		zap.String("role_id", roleID),
	)
	return view, nil
}

// UnmapRank removes a rank mapping.
func (s *Service) UnmapRank(ctx context.Context, guildID string, rankID int) error {
	if _, err := s.requireGroup(ctx, guildID); err != nil {
		return err
	}

	deleted, err := s.store.DeleteMapping(ctx, guildID, rankID)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("rank %d: %w", rankID, ErrNotMapped)
	}

	s.logger.Info("Rank unmapped", zap.String("guild_id", guildID), zap.Int("rank_id", rankID))
	return nil
}

// SetFallbackRole sets the name of the role given to members without a group role.
// An empty name restores the default.
func (s *Service) SetFallbackRole(ctx context.Context, guildID, name string) error {
	name = strings.TrimSpace(name)

	settings, err := s.store.Settings(ctx, guildID)
	if err != nil {
		return err
	}
	if settings == nil {
		settings = &GroupSettings{GuildID: guildID}
	}
	settings.FallbackRoleName = name
	return s.store.SaveSettings(ctx, settings)
}

// View returns the guild's settings, mappings and the group's available ranks.
func (s *Service) View(ctx context.Context, guildID string) (*View, error) {
	settings, err := s.requireGroup(ctx, guildID)
	if err != nil {
		return nil, err
	}

	ranks, err := s.groupRanks(ctx, settings.GroupID)
	if err != nil {
		return nil, err
	}

	rows, err := s.store.Mappings(ctx, guildID)
	if err != nil {
		return nil, err
	}

	var roles []reconcile.Role
	if s.roles != nil {
		// Role names are cosmetic here; a failure only leaves them blank.
		if roles, err = s.roles.Roles(ctx, guildID); err != nil {
			s.logger.Warn("Failed to list guild roles for view", zap.String("guild_id", guildID), zap.Error(err))
		}
	}

	mapping, err := s.store.LoadMapping(ctx, guildID)
	if err != nil {
		return nil, err
	}

	view := &View{
		GuildID:          guildID,
		GroupID:          settings.GroupID,
		Enabled:          settings.Enabled,
		FallbackRoleName: mapping.FallbackRoleName,
		Mappings:         make([]MappingView, 0, len(rows)),
		AvailableRanks:   ranks,
	}
	for _, r := range rows {
		mv := MappingView{RankID: r.RankID, RoleID: r.RoleID}
		if rank, ok := findRank(ranks, r.RankID); ok {
			mv.RankName = rank.Name
		}
		mv.RoleName, _ = roleName(roles, r.RoleID)
		view.Mappings = append(view.Mappings, mv)
	}
	return view, nil
}

func (s *Service) requireGroup(ctx context.Context, guildID string) (*GroupSettings, error) {
	settings, err := s.store.Settings(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if settings == nil || settings.GroupID == 0 {
		return nil, ErrNoGroup
	}
	return settings, nil
}

func (s *Service) groupRanks(ctx context.Context, groupID int64) ([]reconcile.Rank, error) {
	ranks, err := s.ranks.GroupRanks(ctx, groupID)
	if errors.Is(err, roblox.ErrNotFound) {
		return nil, fmt.Errorf("group %d: %w", groupID, ErrGroupNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ranks of group %d: %w", groupID, err)
	}
	if len(ranks) == 0 {
		return nil, fmt.Errorf("group %d: %w", groupID, ErrGroupNotFound)
	}
	return ranks, nil
}

func findRank(ranks []reconcile.Rank, rankID int) (reconcile.Rank, bool) {
	for _, r := range ranks {
		if r.ID == rankID {
			return r, true
		}
	}
	return reconcile.Rank{}, false
}

func roleName(roles []reconcile.Role, roleID string) (string, bool) {
	for _, r := range roles {
		if r.ID == roleID {
			return r.Name, true
		}
	}
	return "", false
}
