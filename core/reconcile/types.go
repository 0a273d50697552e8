package reconcile

import (
	"errors"
	"sort"
	"time"
)

// Trigger identifies what started a reconciliation pass.
type Trigger string

const (
	// TriggerJoin runs when a member appears in a guild.
	TriggerJoin Trigger = "join"
	// TriggerVerification runs as the last step of identity proof.
	TriggerVerification Trigger = "verification"
	// TriggerSweep is the scheduled full-guild pass.
	TriggerSweep Trigger = "sweep"
	// TriggerResync is an administrator-requested full-guild pass.
	TriggerResync Trigger = "resync"
)

// Branch is the resolver case a member fell into.
type Branch string

const (
	// BranchUnverified means no verified identity exists for the member.
	BranchUnverified Branch = "unverified"
	// BranchUnranked means the member is verified but no group role applies.
	BranchUnranked Branch = "unranked"
	// BranchRanked means the member holds a mapped rank in the group.
	BranchRanked Branch = "ranked"
)

// VerifiedIdentity is the external account linked to a local member.
// It is owned by the verification store; reconciliation only reads it.
type VerifiedIdentity struct {
	// MemberID is the local (Discord) user id.
	MemberID string `json:"member_id"`

	// ExternalID is the verified external (Roblox) user id.
	ExternalID int64 `json:"external_id"`

	// ExternalUsername is the external username used for nicknames.
	ExternalUsername string `json:"external_username"`

	// Verified is false for identities that are still pending proof.
	Verified bool `json:"verified"`

	// VerifiedAt is when the identity proof succeeded.
	VerifiedAt time.Time `json:"verified_at"`
}

// IsVerified reports whether the identity can drive a verified branch.
func (v *VerifiedIdentity) IsVerified() bool {
	return v != nil && v.Verified && v.ExternalID != 0
}

// Rank is a member's rank inside the external group.
type Rank struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Member is a guild member as observed on the chat platform.
type Member struct {
	ID          string
	Username    string
	DisplayName string
	RoleIDs     []string
	Bot         bool
}

// Role is a live guild role.
type Role struct {
	ID   string
	Name string
}

// ObservedState is the member's current nickname and roles, read live at pass time.
type ObservedState struct {
	MemberID string
	Nickname string
	Roles    RoleSet
}

// Observe converts a platform member into its observed state.
func Observe(m Member) ObservedState {
	return ObservedState{
		MemberID: m.ID,
		Nickname: m.DisplayName,
		Roles:    NewRoleSet(m.RoleIDs...),
	}
}

// DesiredState is the target a member should converge to. It is never persisted.
type DesiredState struct {
	Branch Branch

	// Nickname is the target nickname. Ignored when KeepNickname is set.
	Nickname string

	// KeepNickname leaves the current nickname untouched (unverified members).
	KeepNickname bool

	// Roles is the exact set of managed roles the member should hold.
	Roles RoleSet

	// Rank is set for BranchRanked.
	Rank *Rank
}

// Resolution is the resolver's answer for one member.
type Resolution struct {
	Desired DesiredState

	// Warning carries a non-fatal lookup failure that forced the unranked branch.
	Warning error
}

// MutationOp names a single platform mutation.
type MutationOp string

const (
	OpRename     MutationOp = "rename"
	OpAddRole    MutationOp = "add_role"
	OpRemoveRole MutationOp = "remove_role"
	OpLookup     MutationOp = "lookup"
)

// MutationError records one failed mutation for a member.
type MutationError struct {
	Op     MutationOp
	Target string
	Err    error
}

func (e *MutationError) Error() string {
	return string(e.Op) + " " + e.Target + ": " + e.Err.Error()
}

func (e *MutationError) Unwrap() error {
	return e.Err
}

// Outcome is the per-member result of a reconciliation pass.
type Outcome struct {
	MemberID        string          `json:"member_id"`
	Branch          Branch          `json:"branch"`
	Verified        bool            `json:"verified"`
	NicknameChanged bool            `json:"nickname_changed"`
	Nickname        string          `json:"nickname,omitempty"`
	RolesAdded      []string        `json:"roles_added"`
	RolesRemoved    []string        `json:"roles_removed"`
	Warning         string          `json:"warning,omitempty"`
	Failures        []MutationError `json:"-"`
}

// Err joins all recorded failures, or returns nil when every mutation succeeded.
func (o Outcome) Err() error {
	if len(o.Failures) == 0 {
		return nil
	}
	errs := make([]error, 0, len(o.Failures))
	for i := range o.Failures {
		errs = append(errs, &o.Failures[i])
	}
	return errors.Join(errs...)
}

// Failed reports whether any mutation or lookup failed.
func (o Outcome) Failed() bool {
	return len(o.Failures) > 0
}

// Changed reports whether the pass mutated anything.
func (o Outcome) Changed() bool {
	return o.NicknameChanged || len(o.RolesAdded) > 0 || len(o.RolesRemoved) > 0
}

// Stats aggregates outcomes over a guild pass.
type Stats struct {
	GuildID          string        `json:"guild_id"`
	PassID           string        `json:"pass_id"`
	Trigger          Trigger       `json:"trigger"`
	Total            int           `json:"total"`
	Processed        int           `json:"processed"`
	Verified         int           `json:"verified"`
	RolesAssigned    int           `json:"roles_assigned"`
	NoGroupMatch     int           `json:"no_group_match"`
	Failed           int           `json:"failed"`
	NicknamesChanged int           `json:"nicknames_changed"`
	RolesAdded       int           `json:"roles_added"`
	RolesRemoved     int           `json:"roles_removed"`
	Warnings         int           `json:"warnings"`
	StartedAt        time.Time     `json:"started_at"`
	Duration         time.Duration `json:"duration"`
}

// Add folds one member outcome into the aggregate counters.
func (s *Stats) Add(o Outcome) {
	s.Processed++
	if o.Verified {
		s.Verified++
	}
	if o.Failed() {
		s.Failed++
	} else {
		switch o.Branch {
		case BranchRanked:
			s.RolesAssigned++
		case BranchUnranked:
			s.NoGroupMatch++
		}
	}
	if o.NicknameChanged {
		s.NicknamesChanged++
	}
	if o.Warning != "" {
		s.Warnings++
	}
	s.RolesAdded += len(o.RolesAdded)
	s.RolesRemoved += len(o.RolesRemoved)
}

// Progress is a snapshot emitted while a guild pass runs.
type Progress struct {
	PassID        string  `json:"pass_id"`
	GuildID       string  `json:"guild_id"`
	Trigger       Trigger `json:"trigger"`
	Processed     int     `json:"processed"`
	Total         int     `json:"total"`
	RolesAssigned int     `json:"roles_assigned"`
	NoMatch       int     `json:"no_match"`
	Failed        int     `json:"failed"`
	Done          bool    `json:"done"`
}

// ProgressFunc receives progress snapshots. It is called from a single goroutine.
type ProgressFunc func(Progress)

// RoleSet is a set of role ids.
type RoleSet map[string]struct{}

// NewRoleSet builds a set from ids, ignoring empty strings.
func NewRoleSet(ids ...string) RoleSet {
	s := make(RoleSet, len(ids))
	for _, id := range ids {
		if id != "" {
			s[id] = struct{}{}
		}
	}
	return s
}

// Has reports membership.
func (s RoleSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Minus returns the ids in s that are not in other.
func (s RoleSet) Minus(other RoleSet) RoleSet {
	out := make(RoleSet)
	for id := range s {
		if !other.Has(id) {
			out[id] = struct{}{}
		}
	}
	return out
}

// Intersect returns the ids present in both sets.
func (s RoleSet) Intersect(other RoleSet) RoleSet {
	out := make(RoleSet)
	for id := range s {
		if other.Has(id) {
			out[id] = struct{}{}
		}
	}
	return out
}

// Sorted returns the ids in ascending order.
func (s RoleSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
