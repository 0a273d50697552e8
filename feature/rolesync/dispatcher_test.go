package rolesync_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"rank-sync/core/reconcile"
	storagemocks "rank-sync/core/storage/mocks"
	"rank-sync/feature/rolesync"

	"github.com/minio/minio-go/v7"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_Resync(t *testing.T) {
	f := newFixture()
	d := f.dispatcher(nil, nil)

	var events []reconcile.Progress
	stats, err := d.Resync(context.Background(), testGuild, func(p reconcile.Progress) {
		events = append(events, p)
	})

	require.NoError(t, err)
	assert.Equal(t, reconcile.TriggerResync, stats.Trigger)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 2, stats.Processed)
	assert.Equal(t, 1, stats.Verified)
	assert.Equal(t, 1, stats.RolesAssigned)
	assert.Equal(t, 0, stats.Failed)

	require.NotEmpty(t, events)
	assert.True(t, events[len(events)-1].Done)

	f.platform.AssertCalled(t, "SetNickname", mock.Anything, testGuild, alice.ID, "alice [Captain]")
	f.platform.AssertCalled(t, "AddRole", mock.Anything, testGuild, alice.ID, roleOfficer)
	f.platform.AssertCalled(t, "AddRole", mock.Anything, testGuild, bob.ID, roleVisitor)
	f.platform.AssertNotCalled(t, "SetNickname", mock.Anything, testGuild, bob.ID, mock.Anything)

	passes := d.LastPasses()
	require.Len(t, passes, 1)
	assert.Equal(t, stats.PassID, passes[0].Stats.PassID)
	assert.Empty(t, passes[0].Error)
}

func TestDispatcher_Sweep(t *testing.T) {
	f := newFixture()
	f.platform.On("Guilds", mock.Anything).Return([]string{"g0", testGuild}, nil)
	f.mappings.On("LoadMapping", mock.Anything, "g0").Return(nil, errors.New("db down"))
	d := f.dispatcher(nil, nil)

	err := d.Sweep(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "g0")
	f.platform.AssertCalled(t, "AddRole", mock.Anything, testGuild, bob.ID, roleVisitor)

	passes := d.LastPasses()
	require.Len(t, passes, 2)
	assert.Equal(t, "g0", passes[0].Stats.GuildID)
	assert.NotEmpty(t, passes[0].Error)
	assert.Equal(t, testGuild, passes[1].Stats.GuildID)
	assert.Equal(t, reconcile.TriggerSweep, passes[1].Stats.Trigger)
	assert.Equal(t, 2, passes[1].Stats.Processed)
}

func TestDispatcher_SweepGuildListFailure(t *testing.T) {
	f := newFixture()
	f.platform.On("Guilds", mock.Anything).Return(nil, errors.New("gateway closed"))
	d := f.dispatcher(nil, nil)

	err := d.Sweep(context.Background())

	require.Error(t, err)
	assert.Empty(t, d.LastPasses())
}

func TestDispatcher_MemberJoined(t *testing.T) {
	t.Run("Unverified Gets Fallback", func(t *testing.T) {
		f := newFixture()
		member := bob
		f.platform.On("Member", mock.Anything, testGuild, bob.ID).Return(&member, nil)

		f.dispatcher(nil, nil).MemberJoined(context.Background(), testGuild, bob.ID)

		f.platform.AssertCalled(t, "AddRole", mock.Anything, testGuild, bob.ID, roleVisitor)
		f.platform.AssertNotCalled(t, "SetNickname", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Bot Ignored", func(t *testing.T) {
		f := newFixture()
		member := robot
		f.platform.On("Member", mock.Anything, testGuild, robot.ID).Return(&member, nil)

		f.dispatcher(nil, nil).MemberJoined(context.Background(), testGuild, robot.ID)

		f.platform.AssertNotCalled(t, "AddRole", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Member Left", func(t *testing.T) {
		f := newFixture()
		f.platform.On("Member", mock.Anything, testGuild, "gone").Return(nil, reconcile.ErrUnknownMember)

		assert.NotPanics(t, func() {
			f.dispatcher(nil, nil).MemberJoined(context.Background(), testGuild, "gone")
		})
	})
}

func TestDispatcher_VerificationCompleted(t *testing.T) {
	f := newFixture()
	member := alice
	f.platform.On("Member", mock.Anything, testGuild, alice.ID).Return(&member, nil)
	f.platform.On("Member", mock.Anything, testGuild, "gone").Return(nil, reconcile.ErrUnknownMember)
	d := f.dispatcher(nil, nil)

	outcome, err := d.VerificationCompleted(context.Background(), testGuild, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, reconcile.BranchRanked, outcome.Branch)
	assert.True(t, outcome.NicknameChanged)
	assert.Equal(t, []string{roleOfficer}, outcome.RolesAdded)

	_, err = d.VerificationCompleted(context.Background(), testGuild, "gone")
	assert.ErrorIs(t, err, reconcile.ErrUnknownMember)
}

func TestDispatcher_ArchivesAndCounts(t *testing.T) {
	f := newFixture()

	client := new(storagemocks.Client)
	var uploaded []byte
	var key string
	client.On("PutObject", mock.Anything, "reports", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			key = args.String(2)
			uploaded, _ = io.ReadAll(args.Get(3).(io.Reader))
		}).
		Return(minio.UploadInfo{}, nil)

	metrics := rolesync.NewMetrics(prometheus.NewRegistry())
	d := f.dispatcher(rolesync.NewArchive(client, "reports"), metrics)

	stats, err := d.Resync(context.Background(), testGuild, nil)
	require.NoError(t, err)

	assert.Equal(t, rolesync.ReportKey(testGuild, stats.PassID), key)
	assert.Equal(t, key, d.LastPasses()[0].ReportKey)

	var report rolesync.Report
	require.NoError(t, json.NewDecoder(bytes.NewReader(uploaded)).Decode(&report))
	assert.Equal(t, stats.PassID, report.Stats.PassID)
	require.Len(t, report.Members, 2)
	assert.Equal(t, alice.ID, report.Members[0].MemberID)
	assert.Equal(t, bob.ID, report.Members[1].MemberID)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Passes.WithLabelValues("resync", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Members.WithLabelValues("resync", "ranked")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Members.WithLabelValues("resync", "unverified")))

	// Single-member passes are not archived.
	member := bob
	f.platform.On("Member", mock.Anything, testGuild, bob.ID).Return(&member, nil)
	_, err = d.Member(context.Background(), testGuild, bob.ID)
	require.NoError(t, err)
	client.AssertNumberOfCalls(t, "PutObject", 1)
}
