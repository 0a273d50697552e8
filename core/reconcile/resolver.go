package reconcile

import (
	"context"
	"fmt"
	"time"
)

// MaxNicknameLength is Discord's nickname limit in characters.
const MaxNicknameLength = 32

// Resolver computes the desired state of a member. It never mutates anything.
type Resolver struct {
	ranks   RankProvider
	timeout time.Duration
}

// NewResolver creates a resolver. A zero timeout disables per-call deadlines.
func NewResolver(ranks RankProvider, timeout time.Duration) *Resolver {
	return &Resolver{ranks: ranks, timeout: timeout}
}

// Resolve returns the desired state for a member of guild with the given identity.
// identity may be nil for members that never verified.
func (r *Resolver) Resolve(ctx context.Context, guild *Guild, identity *VerifiedIdentity) Resolution {
	if !identity.IsVerified() {
		return Resolution{Desired: DesiredState{
			Branch:       BranchUnverified,
			KeepNickname: true,
			Roles:        guild.Fallback(),
		}}
	}

	unranked := DesiredState{
		Branch:   BranchUnranked,
		Nickname: FormatNickname(identity.ExternalUsername, ""),
		Roles:    guild.Fallback(),
	}

	if !guild.Mapping.Active() || r.ranks == nil {
		return Resolution{Desired: unranked}
	}

	groupID := guild.Mapping.GroupID
	member, err := r.isMember(ctx, identity.ExternalID, groupID)
	if err != nil {
		return Resolution{Desired: unranked, Warning: fmt.Errorf("membership lookup for %d in group %d: %w", identity.ExternalID, groupID, err)}
	}
	if !member {
		return Resolution{Desired: unranked}
	}

	rank, err := r.getRank(ctx, identity.ExternalID, groupID)
	if err != nil {
		return Resolution{Desired: unranked, Warning: fmt.Errorf("rank lookup for %d in group %d: %w", identity.ExternalID, groupID, err)}
	}
	if rank == nil {
		return Resolution{Desired: unranked}
	}

	roleID := guild.MappedRole(rank.ID)
	if roleID == "" {
		return Resolution{Desired: unranked}
	}
	if !guild.Roles.Has(roleID) {
		return Resolution{
			Desired: unranked,
			Warning: fmt.Errorf("rank %d maps to role %s: %w", rank.ID, roleID, ErrUnknownRole),
		}
	}

	return Resolution{Desired: DesiredState{
		Branch:   BranchRanked,
		Nickname: FormatNickname(identity.ExternalUsername, rank.Name),
		Roles:    NewRoleSet(roleID),
		Rank:     rank,
	}}
}

func (r *Resolver) isMember(ctx context.Context, externalID, groupID int64) (bool, error) {
	ctx, cancel := r.callContext(ctx)
	defer cancel()
	return r.ranks.IsMember(ctx, externalID, groupID)
}

func (r *Resolver) getRank(ctx context.Context, externalID, groupID int64) (*Rank, error) {
	ctx, cancel := r.callContext(ctx)
	defer cancel()
	return r.ranks.GetRank(ctx, externalID, groupID)
}

func (r *Resolver) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

// FormatNickname builds "username [rank]", or just the username when rank is empty.
// The result is cut to MaxNicknameLength characters.
func FormatNickname(username, rankName string) string {
	nick := username
	if rankName != "" {
		nick = fmt.Sprintf("%s [%s]", username, rankName)
	}
	runes := []rune(nick)
	if len(runes) > MaxNicknameLength {
		return string(runes[:MaxNicknameLength])
	}
	return nick
}
