package reconcile

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Executor applies the minimal set of mutations that moves a member from its
// observed state to its desired state.
type Executor struct {
	platform         Platform
	timeout          time.Duration
	pruneMappedRoles bool
}

// NewExecutor creates an executor. When pruneMappedRoles is false only the
// fallback role is ever removed from a member.
func NewExecutor(platform Platform, timeout time.Duration, pruneMappedRoles bool) *Executor {
	return &Executor{
		platform:         platform,
		timeout:          timeout,
		pruneMappedRoles: pruneMappedRoles,
	}
}

// Plan is the diff between observed and desired state.
type Plan struct {
	Rename   bool
	Nickname string
	Add      RoleSet
	Remove   RoleSet
}

// Empty reports whether the plan has nothing to do.
func (p Plan) Empty() bool {
	return !p.Rename && len(p.Add) == 0 && len(p.Remove) == 0
}

// Diff computes the plan. Only managed roles are ever scheduled for removal.
func (e *Executor) Diff(guild *Guild, observed ObservedState, desired DesiredState) Plan {
	removable := guild.Managed()
	if !e.pruneMappedRoles {
		removable = guild.Fallback()
	}

	p := Plan{
		Add:    desired.Roles.Minus(observed.Roles),
		Remove: observed.Roles.Intersect(removable).Minus(desired.Roles),
	}
	if !desired.KeepNickname && observed.Nickname != desired.Nickname {
		p.Rename = true
		p.Nickname = desired.Nickname
	}
	return p
}

// Apply runs the plan's mutations concurrently. Each mutation succeeds or fails
// on its own; failures are recorded in the outcome and never stop the others.
func (e *Executor) Apply(ctx context.Context, guild *Guild, observed ObservedState, desired DesiredState) Outcome {
	plan := e.Diff(guild, observed, desired)
	out := Outcome{
		MemberID:     observed.MemberID,
		Branch:       desired.Branch,
		Verified:     desired.Branch != BranchUnverified,
		RolesAdded:   []string{},
		RolesRemoved: []string{},
	}
	if plan.Empty() {
		return out
	}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	record := func(op MutationOp, target string, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			out.Failures = append(out.Failures, MutationError{Op: op, Target: target, Err: err})
			return
		}
		switch op {
		case OpRename:
			out.NicknameChanged = true
			out.Nickname = target
		case OpAddRole:
			out.RolesAdded = append(out.RolesAdded, target)
		case OpRemoveRole:
			out.RolesRemoved = append(out.RolesRemoved, target)
		}
	}

	if plan.Rename {
		g.Go(func() error {
			err := e.call(ctx, func(ctx context.Context) error {
				return e.platform.SetNickname(ctx, guild.ID, observed.MemberID, plan.Nickname)
			})
			record(OpRename, plan.Nickname, err)
			return nil
		})
	}

	for _, roleID := range plan.Add.Sorted() {
		if !guild.Roles.Has(roleID) {
			record(OpAddRole, roleID, fmt.Errorf("role %s: %w", roleID, ErrUnknownRole))
			continue
		}
		g.Go(func() error {
			err := e.call(ctx, func(ctx context.Context) error {
				return e.platform.AddRole(ctx, guild.ID, observed.MemberID, roleID)
			})
			record(OpAddRole, roleID, err)
			return nil
		})
	}

	for _, roleID := range plan.Remove.Sorted() {
		g.Go(func() error {
			err := e.call(ctx, func(ctx context.Context) error {
				return e.platform.RemoveRole(ctx, guild.ID, observed.MemberID, roleID)
			})
			record(OpRemoveRole, roleID, err)
			return nil
		})
	}

	_ = g.Wait()

	sort.Strings(out.RolesAdded)
	sort.Strings(out.RolesRemoved)
	sort.Slice(out.Failures, func(i, j int) bool {
		if out.Failures[i].Op != out.Failures[j].Op {
			return out.Failures[i].Op < out.Failures[j].Op
		}
		return out.Failures[i].Target < out.Failures[j].Target
	})
	return out
}

func (e *Executor) call(ctx context.Context, fn func(context.Context) error) error {
	return withTimeout(ctx, e.timeout, fn)
}
