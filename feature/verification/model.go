package verification

import "time"

// VerifiedUser links a Discord user to a proven Roblox account.
type VerifiedUser struct {
	ID               uint   `gorm:"primaryKey"`
	DiscordID        string `gorm:"uniqueIndex;size:32;not null"`
	RobloxID         int64  `gorm:"not null"`
	RobloxUsername   string `gorm:"size:100;not null"`
	Verified         bool   `gorm:"not null;default:true"`
	VerificationDate time.Time
}

// TableName overrides the gorm table name.
func (VerifiedUser) TableName() string {
	return "verified_users"
}

// PendingVerification is an issued code waiting to appear in the Roblox profile.
type PendingVerification struct {
	DiscordID      string    `gorm:"primaryKey;size:32" json:"member_id"`
	RobloxID       int64     `json:"roblox_id"`
	RobloxUsername string    `gorm:"size:100" json:"roblox_username"`
	Code           string    `gorm:"size:16" json:"code"`
	CreatedAt      time.Time `json:"created_at"`
	ExpiresAt      time.Time `json:"expires_at"`
}

// TableName overrides the gorm table name.
func (PendingVerification) TableName() string {
	return "pending_verifications"
}

// Models lists the tables owned by this feature.
func Models() []any {
	return []any{&VerifiedUser{}, &PendingVerification{}}
}
