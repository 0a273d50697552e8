package grouproles

import (
	"context"
	"errors"
	"fmt"

	"rank-sync/core/reconcile"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store persists group settings and rank mappings.
// It implements reconcile.MappingSource.
type Store struct {
	db              *gorm.DB
	defaultFallback string
}

// NewStore creates a store. defaultFallback is used for guilds that never set a fallback role name.
func NewStore(db *gorm.DB, defaultFallback string) *Store {
	if defaultFallback == "" {
		defaultFallback = reconcile.DefaultFallbackRoleName
	}
	return &Store{db: db, defaultFallback: defaultFallback}
}

// Settings returns the guild's settings, or nil when the guild was never configured.
func (s *Store) Settings(ctx context.Context, guildID string) (*GroupSettings, error) {
	var settings GroupSettings
	err := s.db.WithContext(ctx).Where("guild_id = ?", guildID).First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group settings: %w", err)
	}
	return &settings, nil
}

// SaveSettings inserts or updates the guild's settings.
func (s *Store) SaveSettings(ctx context.Context, settings *GroupSettings) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "guild_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"group_id", "enabled", "fallback_role_name", "updated_at"}),
	}).Create(settings).Error
	if err != nil {
		return fmt.Errorf("failed to save group settings: %w", err)
	}
	return nil
}

// Mappings lists the guild's rank mappings ordered by rank.
func (s *Store) Mappings(ctx context.Context, guildID string) ([]RankRole, error) {
	var rows []RankRole
	if err := s.db.WithContext(ctx).Where("guild_id = ?", guildID).Order("rank_id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list rank mappings: %w", err)
	}
	return rows, nil
}

// UpsertMapping maps a rank to a role, replacing any previous role for that rank.
func (s *Store) UpsertMapping(ctx context.Context, row *RankRole) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "guild_id"}, {Name: "rank_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"role_id", "updated_at"}),
	}).Create(row).Error
	if err != nil {
		return fmt.Errorf("failed to save rank mapping: %w", err)
	}
	return nil
}

// DeleteMapping removes a rank mapping and reports whether one existed.
func (s *Store) DeleteMapping(ctx context.Context, guildID string, rankID int) (bool, error) {
	res := s.db.WithContext(ctx).Where("guild_id = ? AND rank_id = ?", guildID, rankID).Delete(&RankRole{})
	if res.Error != nil {
		return false, fmt.Errorf("failed to delete rank mapping: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// LoadMapping assembles the guild's mapping for reconciliation.
// Unconfigured guilds get a disabled mapping with the default fallback role name.
func (s *Store) LoadMapping(ctx context.Context, guildID string) (reconcile.MappingConfig, error) {
	cfg := reconcile.MappingConfig{
		Ranks:            map[int]string{},
		FallbackRoleName: s.defaultFallback,
	}

	settings, err := s.Settings(ctx, guildID)
	if err != nil {
		return cfg, err
	}
	if settings == nil {
		return cfg, nil
	}
	cfg.GroupID = settings.GroupID
	cfg.Enabled = settings.Enabled
	if settings.FallbackRoleName != "" {
		cfg.FallbackRoleName = settings.FallbackRoleName
	}

	rows, err := s.Mappings(ctx, guildID)
	if err != nil {
		return cfg, err
	}
	for _, r := range rows {
		cfg.Ranks[r.RankID] = r.RoleID
	}
	return cfg, nil
}
