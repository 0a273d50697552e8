package grouproles_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"rank-sync/core/database"
	"rank-sync/core/reconcile"
	"rank-sync/core/roblox"
	"rank-sync/feature/grouproles"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockRanks struct {
	mock.Mock
}

func (m *mockRanks) GroupRanks(ctx context.Context, groupID int64) ([]reconcile.Rank, error) {
	args := m.Called(ctx, groupID)
	if ranks, ok := args.Get(0).([]reconcile.Rank); ok {
		return ranks, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockRoles struct {
	mock.Mock
}

func (m *mockRoles) Roles(ctx context.Context, guildID string) ([]reconcile.Role, error) {
	args := m.Called(ctx, guildID)
	if roles, ok := args.Get(0).([]reconcile.Role); ok {
		return roles, args.Error(1)
	}
	return nil, args.Error(1)
}

var legionRanks = []reconcile.Rank{
	{ID: 0, Name: "Guest"},
	{ID: 1, Name: "Member"},
	{ID: 3, Name: "Officer"},
}

func newService(t *testing.T) (*grouproles.Service, *mockRanks, *mockRoles) {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, grouproles.Models()...))

	ranks := new(mockRanks)
	ranks.On("GroupRanks", mock.Anything, int64(50)).Return(legionRanks, nil)
	ranks.On("GroupRanks", mock.Anything, int64(404)).Return(nil, fmt.Errorf("lookup: %w", roblox.ErrNotFound))

	roles := new(mockRoles)
	roles.On("Roles", mock.Anything, "g1").Return([]reconcile.Role{
		{ID: "role_officer", Name: "Officer"},
		{ID: "role_visitor", Name: "Visitor"},
	}, nil)

	store := grouproles.NewStore(db, "Visitor")
	return grouproles.NewService(store, ranks, roles, zap.NewNop()), ranks, roles
}

func TestSetup(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	t.Run("Valid Group", func(t *testing.T) {
		ranks, err := svc.Setup(ctx, "g1", 50)
		require.NoError(t, err)
		assert.Len(t, ranks, 3)

		mapping, err := svc.Store().LoadMapping(ctx, "g1")
		require.NoError(t, err)
		assert.Equal(t, int64(50), mapping.GroupID)
		assert.False(t, mapping.Enabled, "setup alone must not enable integration")
	})

	t.Run("Unknown Group", func(t *testing.T) {
		_, err := svc.Setup(ctx, "g1", 404)
		assert.ErrorIs(t, err, grouproles.ErrGroupNotFound)
	})

	t.Run("Invalid Id", func(t *testing.T) {
		_, err := svc.Setup(ctx, "g1", 0)
		assert.ErrorIs(t, err, grouproles.ErrInvalidInput)
	})
}

func TestSetEnabled(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.SetEnabled(ctx, "g1", true), grouproles.ErrNoGroup)

	_, err := svc.Setup(ctx, "g1", 50)
	require.NoError(t, err)
	require.NoError(t, svc.SetEnabled(ctx, "g1", true))

	mapping, err := svc.Store().LoadMapping(ctx, "g1")
	require.NoError(t, err)
	assert.True(t, mapping.Active())
}

func TestMapRank(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	_, err := svc.MapRank(ctx, "g1", 3, "role_officer")
	assert.ErrorIs(t, err, grouproles.ErrNoGroup)

	_, err = svc.Setup(ctx, "g1", 50)
	require.NoError(t, err)

	t.Run("Mapped", func(t *testing.T) {
		view, err := svc.MapRank(ctx, "g1", 3, "role_officer")
		require.NoError(t, err)
		assert.Equal(t, "Officer", view.RankName)
		assert.Equal(t, "Officer", view.RoleName)
	})

	t.Run("Remap Replaces Role", func(t *testing.T) {
		_, err := svc.MapRank(ctx, "g1", 3, "role_visitor")
		require.NoError(t, err)

		mapping, err := svc.Store().LoadMapping(ctx, "g1")
		require.NoError(t, err)
		assert.Equal(t, map[int]string{3: "role_visitor"}, mapping.Ranks)
	})

	t.Run("Unknown Rank", func(t *testing.T) {
		_, err := svc.MapRank(ctx, "g1", 99, "role_officer")
		assert.ErrorIs(t, err, grouproles.ErrRankNotFound)
	})

	t.Run("Unknown Role", func(t *testing.T) {
		_, err := svc.MapRank(ctx, "g1", 1, "role_missing")
		assert.ErrorIs(t, err, grouproles.ErrRoleNotFound)
	})
}

func TestUnmapRank(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Setup(ctx, "g1", 50)
	require.NoError(t, err)
	_, err = svc.MapRank(ctx, "g1", 3, "role_officer")
	require.NoError(t, err)

	require.NoError(t, svc.UnmapRank(ctx, "g1", 3))
	assert.ErrorIs(t, svc.UnmapRank(ctx, "g1", 3), grouproles.ErrNotMapped)
}

func TestView(t *testing.T) {
	svc, _, roles := newService(t)
	ctx := context.Background()

	_, err := svc.View(ctx, "g1")
	assert.ErrorIs(t, err, grouproles.ErrNoGroup)

	_, err = svc.Setup(ctx, "g1", 50)
	require.NoError(t, err)
	_, err = svc.MapRank(ctx, "g1", 3, "role_officer")
	require.NoError(t, err)
	require.NoError(t, svc.SetFallbackRole(ctx, "g1", "Guest Pass"))

	view, err := svc.View(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, int64(50), view.GroupID)
	assert.Equal(t, "Guest Pass", view.FallbackRoleName)
	require.Len(t, view.Mappings, 1)
	assert.Equal(t, grouproles.MappingView{RankID: 3, RankName: "Officer", RoleID: "role_officer", RoleName: "Officer"}, view.Mappings[0])
	assert.Len(t, view.AvailableRanks, 3)
	roles.AssertExpectations(t)
}

func TestLoadMapping_Unconfigured(t *testing.T) {
	svc, _, _ := newService(t)

	mapping, err := svc.Store().LoadMapping(context.Background(), "never-configured")
	require.NoError(t, err)
	assert.False(t, mapping.Active())
	assert.Equal(t, "Visitor", mapping.FallbackRoleName)
	assert.Empty(t, mapping.Ranks)
}

func TestSetFallbackRole_ResetToDefault(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	require.NoError(t, svc.SetFallbackRole(ctx, "g1", "Guest Pass"))
	require.NoError(t, svc.SetFallbackRole(ctx, "g1", "  "))

	mapping, err := svc.Store().LoadMapping(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, "Visitor", mapping.FallbackRoleName)
}

func TestGroupRanks_UpstreamFailure(t *testing.T) {
	svc, ranks, _ := newService(t)
	ranks.On("GroupRanks", mock.Anything, int64(70)).Return(nil, errors.New("timeout"))

	_, err := svc.Setup(context.Background(), "g1", 70)
	assert.ErrorContains(t, err, "timeout")
	assert.NotErrorIs(t, err, grouproles.ErrGroupNotFound)
}
