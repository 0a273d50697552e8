package roblox

import (
	"context"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// cachedRoles holds one user's group roles.
type cachedRoles struct {
	roles []GroupRole
	built time.Time
}

// membershipCache reuses a user's group roles for a short TTL so that
// IsMember followed by GetRank costs a single request.
type membershipCache struct {
	ttl         time.Duration
	loadTimeout time.Duration
	mu          sync.RWMutex
	entries     map[int64]cachedRoles
	lastPrune   time.Time
	sf          singleflight.Group
}

func newMembershipCache(ttl, loadTimeout time.Duration) *membershipCache {
	return &membershipCache{
		ttl:         ttl,
		loadTimeout: loadTimeout,
		entries:     make(map[int64]cachedRoles),
		lastPrune:   time.Now(),
	}
}

func (c *membershipCache) fresh(userID int64) ([]GroupRole, bool) {
	if c.ttl <= 0 {
		return nil, false
	}
	c.mu.RLock()
	entry, ok := c.entries[userID]
	c.mu.RUnlock()
	if !ok || time.Since(entry.built) > c.ttl {
		return nil, false
	}
	return entry.roles, true
}

// get returns cached roles or loads them. Concurrent loads for the same user
// share one request. The shared load runs under its own deadline so one
// caller giving up does not fail the others; each caller still returns when
// its own ctx ends.
func (c *membershipCache) get(ctx context.Context, userID int64, load func(context.Context) ([]GroupRole, error)) ([]GroupRole, error) {
	if roles, ok := c.fresh(userID); ok {
		return roles, nil
	}

	ch := c.sf.DoChan(strconv.FormatInt(userID, 10), func() (interface{}, error) {
		// Double-check after acquiring singleflight lock
		if roles, ok := c.fresh(userID); ok {
			return roles, nil
		}

		loadCtx, cancel := c.loadContext(ctx)
		defer cancel()
		roles, err := load(loadCtx)
		if err != nil {
			return nil, err
		}

		c.store(userID, roles)
		return roles, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]GroupRole), nil
	}
}

func (c *membershipCache) loadContext(ctx context.Context) (context.Context, context.CancelFunc) {
	detached := context.WithoutCancel(ctx)
	if c.loadTimeout <= 0 {
		return context.WithCancel(detached)
	}
	return context.WithTimeout(detached, c.loadTimeout)
}

// store saves roles and drops expired entries at most once per TTL.
func (c *membershipCache) store(userID int64, roles []GroupRole) {
	if c.ttl <= 0 {
		return
	}
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[userID] = cachedRoles{roles: roles, built: now}
	if now.Sub(c.lastPrune) < c.ttl {
		return
	}
	for id, entry := range c.entries {
		if now.Sub(entry.built) > c.ttl {
			delete(c.entries, id)
		}
	}
	c.lastPrune = now
}

func (c *membershipCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *membershipCache) forget(userID int64) {
	c.mu.Lock()
	delete(c.entries, userID)
	c.mu.Unlock()
}
