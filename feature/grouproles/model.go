package grouproles

import "time"

// GroupSettings is a guild's group integration settings.
type GroupSettings struct {
	GuildID          string `gorm:"primaryKey;size:32"`
	GroupID          int64
	Enabled          bool
	FallbackRoleName string `gorm:"size:100"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TableName overrides the gorm table name.
func (GroupSettings) TableName() string {
	return "guild_group_settings"
}

// RankRole maps one group rank to one guild role.
type RankRole struct {
	GuildID   string `gorm:"primaryKey;size:32"`
	RankID    int    `gorm:"primaryKey;autoIncrement:false"`
	RoleID    string `gorm:"size:32;not null"`
	UpdatedAt time.Time
}

// TableName overrides the gorm table name.
func (RankRole) TableName() string {
	return "guild_rank_roles"
}

// Models lists the tables owned by this feature.
func Models() []any {
	return []any{&GroupSettings{}, &RankRole{}}
}
