package roblox_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"rank-sync/core/roblox"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const userGroupsBody = `{"data":[
	{"group":{"id":50,"name":"Legion"},"role":{"id":9001,"name":"Officer","rank":3}},
	{"group":{"id":60,"name":"Other"},"role":{"id":9002,"name":"Guest","rank":0}}
]}`

func newTestServer(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/users/777/groups/roles", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		_, _ = w.Write([]byte(userGroupsBody))
	})
	mux.HandleFunc("/v2/users/888/groups/roles", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	mux.HandleFunc("/v1/groups/50/roles", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"groupId":50,"roles":[{"id":1,"name":"Guest","rank":0},{"id":2,"name":"Member","rank":1},{"id":3,"name":"Officer","rank":3}]}`))
	})
	mux.HandleFunc("/v1/groups/404/roles", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errors":[{"code":1,"message":"Group is invalid or does not exist."}]}`))
	})
	mux.HandleFunc("/v1/usernames/users", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var req struct {
			Usernames []string `json:"usernames"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if len(req.Usernames) == 1 && req.Usernames[0] == "alice" {
			_, _ = w.Write([]byte(`{"data":[{"id":777,"name":"alice","displayName":"Alice"}]}`))
			return
		}
		_, _ = w.Write([]byte(`{"data":[]}`))
	})
	mux.HandleFunc("/v1/users/777", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":777,"name":"alice","description":"hello ABCD1234 world"}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(srv *httptest.Server, ttl int) *roblox.Client {
	return roblox.NewClient(roblox.Config{
		GroupsURL:         srv.URL,
		UsersURL:          srv.URL + "/",
		TimeoutSeconds:    5,
		RequestsPerSecond: 1000,
		Burst:             100,
		CacheTTLSeconds:   ttl,
	})
}

func TestGetRank(t *testing.T) {
	var hits int32
	client := newTestClient(newTestServer(t, &hits), 60)
	ctx := context.Background()

	t.Run("Member", func(t *testing.T) {
		ok, err := client.IsMember(ctx, 777, 50)
		require.NoError(t, err)
		assert.True(t, ok)

		rank, err := client.GetRank(ctx, 777, 50)
		require.NoError(t, err)
		require.NotNil(t, rank)
		assert.Equal(t, 3, rank.ID)
		assert.Equal(t, "Officer", rank.Name)
	})

	t.Run("GuestIsNotMember", func(t *testing.T) {
		ok, err := client.IsMember(ctx, 777, 60)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("NotInGroup", func(t *testing.T) {
		rank, err := client.GetRank(ctx, 777, 70)
		require.NoError(t, err)
		assert.Nil(t, rank)
	})

	assert.Equal(t, int32(1), atomic.LoadInt32(&hits), "group roles should be fetched once")

	t.Run("Forget", func(t *testing.T) {
		client.Forget(777)
		_, err := client.GetRank(ctx, 777, 50)
		require.NoError(t, err)
		assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
	})
}

func TestGetRank_ConcurrentLookupsShareRequest(t *testing.T) {
	var hits int32
	client := newTestClient(newTestServer(t, &hits), 60)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := client.GetRank(context.Background(), 777, 50)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, atomic.LoadInt32(&hits), int32(2))
}

func TestGetRank_NoCache(t *testing.T) {
	var hits int32
	client := newTestClient(newTestServer(t, &hits), 0)

	_, _ = client.IsMember(context.Background(), 777, 50)
	_, _ = client.GetRank(context.Background(), 777, 50)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestGetRank_RateLimited(t *testing.T) {
	var hits int32
	client := newTestClient(newTestServer(t, &hits), 60)

	_, err := client.GetRank(context.Background(), 888, 50)
	assert.ErrorIs(t, err, roblox.ErrRateLimited)
}

func TestGroupRanks(t *testing.T) {
	var hits int32
	client := newTestClient(newTestServer(t, &hits), 60)

	ranks, err := client.GroupRanks(context.Background(), 50)
	require.NoError(t, err)
	require.Len(t, ranks, 3)
	assert.Equal(t, 3, ranks[2].ID)
	assert.Equal(t, "Officer", ranks[2].Name)

	_, err = client.GroupRanks(context.Background(), 404)
	assert.ErrorIs(t, err, roblox.ErrNotFound)
}

func TestUserByUsername(t *testing.T) {
	var hits int32
	client := newTestClient(newTestServer(t, &hits), 60)

	user, err := client.UserByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(777), user.ID)
	assert.Equal(t, "alice", user.Name)

	_, err = client.UserByUsername(context.Background(), "nobody")
	assert.ErrorIs(t, err, roblox.ErrNotFound)
}

func TestUserDescription(t *testing.T) {
	var hits int32
	client := newTestClient(newTestServer(t, &hits), 60)

	desc, err := client.UserDescription(context.Background(), 777)
	require.NoError(t, err)
	assert.Contains(t, desc, "ABCD1234")

	_, err = client.UserDescription(context.Background(), 999)
	assert.ErrorIs(t, err, roblox.ErrNotFound)
}

func TestRateLimiterHonoursContext(t *testing.T) {
	var hits int32
	srv := newTestServer(t, &hits)
	client := roblox.NewClient(roblox.Config{
		GroupsURL:         srv.URL,
		UsersURL:          srv.URL,
		RequestsPerSecond: 0.001,
		Burst:             1,
	})

	_, err := client.GroupRanks(context.Background(), 50)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = client.GroupRanks(ctx, 50)
	assert.Error(t, err)
}
