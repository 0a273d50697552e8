package verification

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"rank-sync/core/reconcile"
	"rank-sync/core/roblox"

	"go.uber.org/zap"
)

const (
	// CodeLength is the number of characters in a verification code.
	CodeLength = 8

	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// DefaultPendingTTL is how long an issued code stays valid.
	DefaultPendingTTL = 30 * time.Minute
)

var (
	// ErrAlreadyVerified means the member already has a verified identity.
	ErrAlreadyVerified = errors.New("already verified")
	// ErrUserNotFound means the Roblox username does not exist.
	ErrUserNotFound = errors.New("roblox user not found")
	// ErrNoPending means no unexpired code was issued to the member.
	ErrNoPending = errors.New("no pending verification")
	// ErrCodeNotFound means the code is not in the Roblox profile description.
	ErrCodeNotFound = errors.New("verification code not found in profile description")
	// ErrInvalidInput is returned for malformed arguments.
	ErrInvalidInput = errors.New("invalid input")
)

// UserLookup resolves Roblox accounts.
type UserLookup interface {
	UserByUsername(ctx context.Context, username string) (*roblox.User, error)
	UserDescription(ctx context.Context, userID int64) (string, error)
}

// Completer is notified once an identity is committed.
type Completer interface {
	VerificationCompleted(ctx context.Context, guildID, memberID string) (reconcile.Outcome, error)
}

// ConfirmResult is the result of a successful verification.
type ConfirmResult struct {
	Identity *reconcile.VerifiedIdentity `json:"identity"`
	Outcome  *reconcile.Outcome          `json:"outcome,omitempty"`
	// SyncNote explains why the follow-up role sync did not complete.
	SyncNote string `json:"sync_note,omitempty"`
}

// Status is a member's verification state.
type Status struct {
	Identity *reconcile.VerifiedIdentity `json:"identity,omitempty"`
	Pending  *PendingVerification        `json:"pending,omitempty"`
}

// Service runs the code-in-profile verification flow.
type Service struct {
	store      *Store
	users      UserLookup
	completer  Completer
	logger     *zap.Logger
	pendingTTL time.Duration
}

// NewService creates a new Service. completer may be nil.
func NewService(store *Store, users UserLookup, completer Completer, logger *zap.Logger) *Service {
	return &Service{
		store:      store,
		users:      users,
		completer:  completer,
		logger:     logger,
		pendingTTL: DefaultPendingTTL,
	}
}

// Store returns the underlying store, which also serves as reconcile.IdentityStore.
func (s *Service) Store() *Store {
	return s.store
}

// Start issues a code the member must put in their Roblox profile description.
func (s *Service) Start(ctx context.Context, memberID, username string) (*PendingVerification, error) {
	username = strings.TrimSpace(username)
	if memberID == "" || username == "" {
		return nil, fmt.Errorf("%w: member id and username are required", ErrInvalidInput)
	}

	existing, err := s.store.GetIdentity(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if existing.IsVerified() {
		return nil, fmt.Errorf("%w as %s", ErrAlreadyVerified, existing.ExternalUsername)
	}

	user, err := s.users.UserByUsername(ctx, username)
	if errors.Is(err, roblox.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", username, ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up roblox user: %w", err)
	}

	code, err := generateCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate verification code: %w", err)
	}

	now := time.Now()
	pending := &PendingVerification{
		DiscordID:      memberID,
		RobloxID:       user.ID,
		RobloxUsername: user.Name,
		Code:           code,
		CreatedAt:      now,
		ExpiresAt:      now.Add(s.pendingTTL),
	}
	if err := s.store.SavePending(ctx, pending); err != nil {
		return nil, err
	}

	s.logger.Info("Verification started", zap.String("member_id", memberID), zap.Int64("roblox_id", user.ID))
	return pending, nil
}

// Confirm checks the issued code against the Roblox profile and commits the identity.
// The follow-up role sync runs in guildID when given; its failure never undoes
// the verification and is reported in ConfirmResult.SyncNote.
func (s *Service) Confirm(ctx context.Context, guildID, memberID string) (*ConfirmResult, error) {
	pending, err := s.store.Pending(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if pending == nil || time.Now().After(pending.ExpiresAt) {
		return nil, ErrNoPending
	}

	description, err := s.users.UserDescription(ctx, pending.RobloxID)
	if err != nil {
		return nil, fmt.Errorf("failed to read roblox profile: %w", err)
	}
	if !strings.Contains(description, pending.Code) {
		return nil, ErrCodeNotFound
	}

	user, err := s.store.SaveVerified(ctx, memberID, pending.RobloxID, pending.RobloxUsername)
	if err != nil {
		return nil, err
	}
	if err := s.store.DeletePending(ctx, memberID); err != nil {
		s.logger.Warn("Failed to clear pending verification", zap.String("member_id", memberID), zap.Error(err))
	}

	result := &ConfirmResult{Identity: &reconcile.VerifiedIdentity{
		MemberID:         user.DiscordID,
		ExternalID:       user.RobloxID,
		ExternalUsername: user.RobloxUsername,
		Verified:         user.Verified,
		VerifiedAt:       user.VerificationDate,
	}}
	s.logger.Info("Verification confirmed",
		zap.String("member_id", memberID),
		zap.Int64("roblox_id", user.RobloxID),
		zap.String("roblox_username", user.RobloxUsername),
	)

	if s.completer == nil || guildID == "" {
		return result, nil
	}

	outcome, err := s.completer.VerificationCompleted(ctx, guildID, memberID)
	if err != nil {
		result.SyncNote = "verified, but roles could not be updated: " + err.Error()
		return result, nil
	}
	result.Outcome = &outcome
	if outcome.Failed() {
		result.SyncNote = "verified, but some role updates failed: " + outcome.Err().Error()
	}
	return result, nil
}

// Status returns the member's identity and any pending code.
func (s *Service) Status(ctx context.Context, memberID string) (*Status, error) {
	identity, err := s.store.GetIdentity(ctx, memberID)
	if err != nil {
		return nil, err
	}
	pending, err := s.store.Pending(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if pending != nil && time.Now().After(pending.ExpiresAt) {
		pending = nil
	}
	return &Status{Identity: identity, Pending: pending}, nil
}

func generateCode() (string, error) {
	size := big.NewInt(int64(len(codeAlphabet)))
	b := make([]byte, CodeLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, size)
		if err != nil {
			return "", err
		}
		b[i] = codeAlphabet[n.Int64()]
	}
	return string(b), nil
}
