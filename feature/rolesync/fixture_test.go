package rolesync_test

import (
	"testing"
	"time"

	"rank-sync/core/database"
	"rank-sync/core/reconcile"
	"rank-sync/core/reconcile/mocks"
	"rank-sync/feature/rolesync"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	testGuild   = "g1"
	testGroup   = int64(50)
	roleVisitor = "r-visitor"
	roleOfficer = "r-officer"
)

var (
	alice = reconcile.Member{ID: "m-alice", Username: "alice_d", DisplayName: "alice_d"}
	bob   = reconcile.Member{ID: "m-bob", Username: "bob", DisplayName: "bob"}
	robot = reconcile.Member{ID: "m-bot", Username: "helper", Bot: true}
)

type fixture struct {
	identities *mocks.IdentityStore
	mappings   *mocks.MappingSource
	ranks      *mocks.RankProvider
	platform   *mocks.Platform
	coord      *reconcile.Coordinator
}

// newFixture builds a coordinator over guild g1 where rank 3 of group 50 maps
// to the Officer role. alice is verified and holds rank 3, bob never verified.
func newFixture() *fixture {
	f := &fixture{
		identities: new(mocks.IdentityStore),
		mappings:   new(mocks.MappingSource),
		ranks:      new(mocks.RankProvider),
		platform:   new(mocks.Platform),
	}
	f.coord = reconcile.NewCoordinator(reconcile.Config{
		Concurrency:        2,
		CallTimeoutSeconds: 1,
		ProgressEvery:      1,
		PruneMappedRoles:   true,
	}, f.identities, f.mappings, f.ranks, f.platform, zap.NewNop())

	f.mappings.On("LoadMapping", mock.Anything, testGuild).Return(reconcile.MappingConfig{
		GroupID: testGroup,
		Enabled: true,
		Ranks:   map[int]string{3: roleOfficer},
	}, nil)
	f.platform.On("Roles", mock.Anything, testGuild).Return([]reconcile.Role{
		{ID: roleVisitor, Name: "Visitor"},
		{ID: roleOfficer, Name: "Officer"},
	}, nil)
	f.platform.On("Members", mock.Anything, testGuild).Return([]reconcile.Member{alice, bob, robot}, nil)

	f.identities.On("GetIdentity", mock.Anything, alice.ID).Return(&reconcile.VerifiedIdentity{
		MemberID:         alice.ID,
		ExternalID:       777,
		ExternalUsername: "alice",
		Verified:         true,
		VerifiedAt:       time.Now(),
	}, nil)
	f.identities.On("GetIdentity", mock.Anything, bob.ID).Return(nil, nil)
	f.ranks.On("IsMember", mock.Anything, int64(777), testGroup).Return(true, nil)
	f.ranks.On("GetRank", mock.Anything, int64(777), testGroup).Return(&reconcile.Rank{ID: 3, Name: "Captain"}, nil)

	f.platform.On("SetNickname", mock.Anything, testGuild, mock.Anything, mock.Anything).Return(nil)
	f.platform.On("AddRole", mock.Anything, testGuild, mock.Anything, mock.Anything).Return(nil)
	f.platform.On("RemoveRole", mock.Anything, testGuild, mock.Anything, mock.Anything).Return(nil)
	return f
}

func (f *fixture) dispatcher(archive *rolesync.Archive, metrics *rolesync.Metrics) *rolesync.Dispatcher {
	return rolesync.NewDispatcher(f.coord, archive, metrics, zap.NewNop())
}

func newDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, rolesync.Models()...))
	return db
}
