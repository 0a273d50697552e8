package rolesync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rank-sync/core/reconcile"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GuildUser is the last sync result of one member in one guild.
type GuildUser struct {
	GuildID         string    `gorm:"column:guild_id;primaryKey;size:32" json:"guild_id"`
	DiscordID       string    `gorm:"column:discord_id;primaryKey;size:32" json:"discord_id"`
	Branch          string    `gorm:"column:branch;size:16" json:"branch"`
	NicknameChanged bool      `gorm:"column:nickname_changed" json:"nickname_changed"`
	RolesSynced     bool      `gorm:"column:roles_synced" json:"roles_synced"`
	LastTrigger     string    `gorm:"column:last_trigger;size:16" json:"last_trigger"`
	LastError       string    `gorm:"column:last_error;type:text" json:"last_error,omitempty"`
	LastSync        time.Time `gorm:"column:last_sync" json:"last_sync"`
}

// TableName overrides the table name.
func (GuildUser) TableName() string {
	return "guild_users"
}

// Models returns the models this feature migrates.
func Models() []any {
	return []any{&GuildUser{}}
}

// Ledger records per-member sync results. It implements reconcile.OutcomeObserver.
type Ledger struct {
	db *gorm.DB
}

// NewLedger creates a new Ledger.
func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// MemberReconciled upserts the member's row.
func (l *Ledger) MemberReconciled(ctx context.Context, guildID string, trigger reconcile.Trigger, outcome reconcile.Outcome) error {
	row := &GuildUser{
		GuildID:         guildID,
		DiscordID:       outcome.MemberID,
		Branch:          string(outcome.Branch),
		NicknameChanged: outcome.NicknameChanged,
		RolesSynced:     !outcome.Failed(),
		LastTrigger:     string(trigger),
		LastSync:        time.Now(),
	}
	if err := outcome.Err(); err != nil {
		row.LastError = err.Error()
	}

	err := l.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "guild_id"}, {Name: "discord_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"branch", "nickname_changed", "roles_synced", "last_trigger", "last_error", "last_sync"}),
	}).Create(row).Error
	if err != nil {
		return fmt.Errorf("failed to record sync of member %s: %w", outcome.MemberID, err)
	}
	return nil
}

// Entry returns the member's last sync result, or nil when the member was never synced.
func (l *Ledger) Entry(ctx context.Context, guildID, memberID string) (*GuildUser, error) {
	var row GuildUser
	err := l.db.WithContext(ctx).Where("guild_id = ? AND discord_id = ?", guildID, memberID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sync entry: %w", err)
	}
	return &row, nil
}
