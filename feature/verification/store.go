package verification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rank-sync/core/reconcile"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store persists verified identities and pending codes.
// It implements reconcile.IdentityStore.
type Store struct {
	db *gorm.DB
}

// NewStore creates a new Store.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// GetIdentity returns the member's verified identity, or nil when none exists.
func (s *Store) GetIdentity(ctx context.Context, memberID string) (*reconcile.VerifiedIdentity, error) {
	var user VerifiedUser
	err := s.db.WithContext(ctx).Where("discord_id = ? AND verified = ?", memberID, true).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get verified user %s: %w", memberID, err)
	}
	return &reconcile.VerifiedIdentity{
		MemberID:         user.DiscordID,
		ExternalID:       user.RobloxID,
		ExternalUsername: user.RobloxUsername,
		Verified:         user.Verified,
		VerifiedAt:       user.VerificationDate,
	}, nil
}

// SaveVerified commits an identity, overwriting any previous one for the member.
func (s *Store) SaveVerified(ctx context.Context, memberID string, robloxID int64, username string) (*VerifiedUser, error) {
	user := &VerifiedUser{
		DiscordID:        memberID,
		RobloxID:         robloxID,
		RobloxUsername:   username,
		Verified:         true,
		VerificationDate: time.Now(),
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "discord_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"roblox_id", "roblox_username", "verified", "verification_date"}),
	}).Create(user).Error
	if err != nil {
		return nil, fmt.Errorf("failed to save verified user %s: %w", memberID, err)
	}
	return user, nil
}

// SavePending stores a code, replacing any earlier one for the member.
func (s *Store) SavePending(ctx context.Context, p *PendingVerification) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "discord_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"roblox_id", "roblox_username", "code", "created_at", "expires_at"}),
	}).Create(p).Error
	if err != nil {
		return fmt.Errorf("failed to save pending verification: %w", err)
	}
	return nil
}

// Pending returns the member's pending verification, or nil.
func (s *Store) Pending(ctx context.Context, memberID string) (*PendingVerification, error) {
	var p PendingVerification
	err := s.db.WithContext(ctx).Where("discord_id = ?", memberID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pending verification: %w", err)
	}
	return &p, nil
}

// DeletePending removes the member's pending verification.
func (s *Store) DeletePending(ctx context.Context, memberID string) error {
	if err := s.db.WithContext(ctx).Where("discord_id = ?", memberID).Delete(&PendingVerification{}).Error; err != nil {
		return fmt.Errorf("failed to delete pending verification: %w", err)
	}
	return nil
}
