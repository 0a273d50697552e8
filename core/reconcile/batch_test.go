package reconcile_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"rank-sync/core/reconcile"
	"rank-sync/core/reconcile/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type coordinatorFixture struct {
	identities *mocks.IdentityStore
	mappings   *mocks.MappingSource
	ranks      *mocks.RankProvider
	platform   *mocks.Platform
	coord      *reconcile.Coordinator
}

func newCoordinatorFixture(cfg reconcile.Config) *coordinatorFixture {
	f := &coordinatorFixture{
		identities: new(mocks.IdentityStore),
		mappings:   new(mocks.MappingSource),
		ranks:      new(mocks.RankProvider),
		platform:   new(mocks.Platform),
	}
	f.coord = reconcile.NewCoordinator(cfg, f.identities, f.mappings, f.ranks, f.platform, zap.NewNop())
	return f
}

func (f *coordinatorFixture) withGuild() {
	view := testGuildView(true)
	f.mappings.On("LoadMapping", mock.Anything, testGuild).Return(view.Mapping, nil)
	f.platform.On("Roles", mock.Anything, testGuild).Return([]reconcile.Role{
		{ID: roleVisitor, Name: "Visitor"},
		{ID: roleOfficer, Name: "Officer"},
		{ID: roleMember, Name: "Member"},
		{ID: roleOther, Name: "Booster"},
	}, nil)
}

func testConfig() reconcile.Config {
	return reconcile.Config{
		Concurrency:        4,
		CallTimeoutSeconds: 1,
		ProgressEvery:      10,
		PruneMappedRoles:   true,
	}
}

func TestReconcileGuild_PartialFailureIsolation(t *testing.T) {
	f := newCoordinatorFixture(testConfig())
	f.withGuild()

	members := []reconcile.Member{
		{ID: "m1", Username: "one"},
		{ID: "m2", Username: "two"},
		{ID: "m3", Username: "three"},
		{ID: "bot", Username: "helper", Bot: true},
	}
	f.platform.On("Members", mock.Anything, testGuild).Return(members, nil)
	f.identities.On("GetIdentity", mock.Anything, mock.Anything).Return(nil, nil)
	f.platform.On("AddRole", mock.Anything, testGuild, "m1", roleVisitor).Return(nil)
	f.platform.On("AddRole", mock.Anything, testGuild, "m2", roleVisitor).Return(fmt.Errorf("add: %w", reconcile.ErrPermissionDenied))
	f.platform.On("AddRole", mock.Anything, testGuild, "m3", roleVisitor).Return(nil)

	stats, err := f.coord.ReconcileGuild(context.Background(), testGuild, reconcile.TriggerSweep, nil)

	require.NoError(t, err)
	assert.NotEmpty(t, stats.PassID)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 3, stats.Processed)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 2, stats.RolesAdded)
	assert.Equal(t, 0, stats.Verified)
	f.identities.AssertNotCalled(t, "GetIdentity", mock.Anything, "bot")
}

func TestReconcileGuild_FatalErrors(t *testing.T) {
	t.Run("MappingLoadFails", func(t *testing.T) {
		f := newCoordinatorFixture(testConfig())
		f.mappings.On("LoadMapping", mock.Anything, testGuild).Return(nil, errors.New("db down"))

		_, err := f.coord.ReconcileGuild(context.Background(), testGuild, reconcile.TriggerResync, nil)
		assert.ErrorContains(t, err, "db down")
		f.platform.AssertNotCalled(t, "Members", mock.Anything, mock.Anything)
	})

	t.Run("MemberListFails", func(t *testing.T) {
		f := newCoordinatorFixture(testConfig())
		f.withGuild()
		f.platform.On("Members", mock.Anything, testGuild).Return(nil, errors.New("gateway closed"))

		_, err := f.coord.ReconcileGuild(context.Background(), testGuild, reconcile.TriggerResync, nil)
		assert.ErrorContains(t, err, "failed to list members")
		assert.ErrorContains(t, err, "gateway closed")
	})
}

func TestReconcileGuild_Progress(t *testing.T) {
	f := newCoordinatorFixture(testConfig())
	f.withGuild()

	members := make([]reconcile.Member, 25)
	for i := range members {
		members[i] = reconcile.Member{ID: fmt.Sprintf("m%d", i), RoleIDs: []string{roleVisitor}}
	}
	f.platform.On("Members", mock.Anything, testGuild).Return(members, nil)
	f.identities.On("GetIdentity", mock.Anything, mock.Anything).Return(nil, nil)

	var snapshots []reconcile.Progress
	stats, err := f.coord.ReconcileGuild(context.Background(), testGuild, reconcile.TriggerResync, func(p reconcile.Progress) {
		snapshots = append(snapshots, p)
	})

	require.NoError(t, err)
	require.Len(t, snapshots, 3)
	assert.Equal(t, 10, snapshots[0].Processed)
	assert.Equal(t, 20, snapshots[1].Processed)
	assert.Equal(t, 25, snapshots[2].Processed)
	assert.True(t, snapshots[2].Done)
	assert.Equal(t, 25, stats.Total)
	for _, p := range snapshots {
		assert.Equal(t, stats.PassID, p.PassID)
		assert.Equal(t, 25, p.Total)
	}
}

func TestReconcileGuild_IdentityLookupFailure(t *testing.T) {
	f := newCoordinatorFixture(testConfig())
	f.withGuild()
	f.platform.On("Members", mock.Anything, testGuild).Return([]reconcile.Member{{ID: "m1"}}, nil)
	f.identities.On("GetIdentity", mock.Anything, "m1").Return(nil, errors.New("db timeout"))

	var passID string
	observer := new(mocks.Observer)
	observer.On("MemberReconciled", mock.MatchedBy(func(ctx context.Context) bool {
		passID, _ = reconcile.PassID(ctx)
		return true
	}), testGuild, reconcile.TriggerSweep, mock.MatchedBy(func(o reconcile.Outcome) bool {
		return o.Failed() && o.Failures[0].Op == reconcile.OpLookup
	})).Return(nil)
	f.coord.AddObserver(observer)

	stats, err := f.coord.ReconcileGuild(context.Background(), testGuild, reconcile.TriggerSweep, nil)

	require.NoError(t, err)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, stats.PassID, passID)
	f.platform.AssertNotCalled(t, "AddRole", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	observer.AssertExpectations(t)
}

func TestReconcileMember(t *testing.T) {
	t.Run("AliceBecomesOfficer", func(t *testing.T) {
		f := newCoordinatorFixture(testConfig())
		f.withGuild()
		f.platform.On("Member", mock.Anything, testGuild, "m-alice").Return(&reconcile.Member{
			ID:          "m-alice",
			Username:    "alice_discord",
			DisplayName: "alice",
			RoleIDs:     []string{roleVisitor, roleOther},
		}, nil)
		f.identities.On("GetIdentity", mock.Anything, "m-alice").Return(alice(), nil)
		f.ranks.On("IsMember", mock.Anything, int64(777), testGroup).Return(true, nil)
		f.ranks.On("GetRank", mock.Anything, int64(777), testGroup).Return(&reconcile.Rank{ID: 3, Name: "Officer"}, nil)
		f.platform.On("SetNickname", mock.Anything, testGuild, "m-alice", "alice [Officer]").Return(nil)
		f.platform.On("AddRole", mock.Anything, testGuild, "m-alice", roleOfficer).Return(nil)
		f.platform.On("RemoveRole", mock.Anything, testGuild, "m-alice", roleVisitor).Return(nil)

		out, err := f.coord.ReconcileMember(context.Background(), testGuild, "m-alice", reconcile.TriggerVerification)

		require.NoError(t, err)
		assert.Equal(t, reconcile.BranchRanked, out.Branch)
		assert.True(t, out.Verified)
		assert.True(t, out.NicknameChanged)
		assert.Equal(t, []string{roleOfficer}, out.RolesAdded)
		assert.Equal(t, []string{roleVisitor}, out.RolesRemoved)
		f.platform.AssertExpectations(t)
	})

	t.Run("SecondPassIsNoop", func(t *testing.T) {
		f := newCoordinatorFixture(testConfig())
		f.withGuild()
		f.platform.On("Member", mock.Anything, testGuild, "m-alice").Return(&reconcile.Member{
			ID:          "m-alice",
			DisplayName: "alice [Officer]",
			RoleIDs:     []string{roleOfficer},
		}, nil)
		f.identities.On("GetIdentity", mock.Anything, "m-alice").Return(alice(), nil)
		f.ranks.On("IsMember", mock.Anything, int64(777), testGroup).Return(true, nil)
		f.ranks.On("GetRank", mock.Anything, int64(777), testGroup).Return(&reconcile.Rank{ID: 3, Name: "Officer"}, nil)

		out, err := f.coord.ReconcileMember(context.Background(), testGuild, "m-alice", reconcile.TriggerSweep)

		require.NoError(t, err)
		assert.False(t, out.Changed())
		f.platform.AssertNotCalled(t, "SetNickname", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		f.platform.AssertNotCalled(t, "AddRole", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		f.platform.AssertNotCalled(t, "RemoveRole", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("BotIsSkipped", func(t *testing.T) {
		f := newCoordinatorFixture(testConfig())
		f.withGuild()
		f.platform.On("Member", mock.Anything, testGuild, "bot").Return(&reconcile.Member{ID: "bot", Bot: true}, nil)

		_, err := f.coord.ReconcileMember(context.Background(), testGuild, "bot", reconcile.TriggerJoin)
		assert.ErrorIs(t, err, reconcile.ErrBotMember)
	})

	t.Run("UnknownMember", func(t *testing.T) {
		f := newCoordinatorFixture(testConfig())
		f.withGuild()
		f.platform.On("Member", mock.Anything, testGuild, "gone").Return(nil, reconcile.ErrUnknownMember)

		_, err := f.coord.ReconcileMember(context.Background(), testGuild, "gone", reconcile.TriggerJoin)
		assert.ErrorIs(t, err, reconcile.ErrUnknownMember)
	})
}

func TestReconcileGuild_Cancelled(t *testing.T) {
	f := newCoordinatorFixture(testConfig())
	f.withGuild()
	f.platform.On("Members", mock.Anything, testGuild).Return([]reconcile.Member{{ID: "m1"}}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stats, err := f.coord.ReconcileGuild(ctx, testGuild, reconcile.TriggerSweep, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, stats.Processed)
}

// stalledIdentities never answers before the caller's deadline.
type stalledIdentities struct{}

func (stalledIdentities) GetIdentity(ctx context.Context, _ string) (*reconcile.VerifiedIdentity, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(10 * time.Second):
		return nil, nil
	}
}

func TestReconcileMember_IdentityLookupTimeout(t *testing.T) {
	f := newCoordinatorFixture(testConfig())
	f.withGuild()
	f.platform.On("Member", mock.Anything, testGuild, "m1").Return(&reconcile.Member{ID: "m1"}, nil)
	coord := reconcile.NewCoordinator(testConfig(), stalledIdentities{}, f.mappings, f.ranks, f.platform, zap.NewNop())

	start := time.Now()
	out, err := coord.ReconcileMember(context.Background(), testGuild, "m1", reconcile.TriggerJoin)

	require.NoError(t, err)
	assert.Less(t, time.Since(start), 3*time.Second)
	require.True(t, out.Failed())
	assert.Equal(t, reconcile.OpLookup, out.Failures[0].Op)
	assert.ErrorIs(t, out.Err(), context.DeadlineExceeded)
	f.platform.AssertNotCalled(t, "AddRole", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReconcile_ExternalCallsCarryDeadlines(t *testing.T) {
	hasDeadline := mock.MatchedBy(func(ctx context.Context) bool {
		_, ok := ctx.Deadline()
		return ok
	})

	f := newCoordinatorFixture(testConfig())
	f.mappings.On("LoadMapping", hasDeadline, testGuild).Return(testGuildView(false).Mapping, nil)
	f.platform.On("Roles", hasDeadline, testGuild).Return([]reconcile.Role{{ID: roleVisitor, Name: "Visitor"}}, nil)
	f.platform.On("Member", hasDeadline, testGuild, "m1").Return(&reconcile.Member{ID: "m1", RoleIDs: []string{roleVisitor}}, nil)
	f.platform.On("Members", hasDeadline, testGuild).Return([]reconcile.Member{{ID: "m1", RoleIDs: []string{roleVisitor}}}, nil)
	f.identities.On("GetIdentity", hasDeadline, "m1").Return(nil, nil)

	_, err := f.coord.ReconcileMember(context.Background(), testGuild, "m1", reconcile.TriggerJoin)
	require.NoError(t, err)
	_, err = f.coord.ReconcileGuild(context.Background(), testGuild, reconcile.TriggerSweep, nil)
	require.NoError(t, err)

	f.mappings.AssertExpectations(t)
	f.platform.AssertExpectations(t)
	f.identities.AssertExpectations(t)
}

func TestReconcileGuild_MemberListTimeout(t *testing.T) {
	cfg := testConfig()
	cfg.ListTimeoutSeconds = 1
	f := newCoordinatorFixture(cfg)
	f.withGuild()
	f.platform.On("Members", mock.Anything, testGuild).
		Run(func(args mock.Arguments) { <-args.Get(0).(context.Context).Done() }).
		Return(nil, context.DeadlineExceeded)

	start := time.Now()
	_, err := f.coord.ReconcileGuild(context.Background(), testGuild, reconcile.TriggerSweep, nil)

	assert.Less(t, time.Since(start), 3*time.Second)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
