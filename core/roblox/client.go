package roblox

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"rank-sync/core/reconcile"

	"golang.org/x/time/rate"
)

var (
	// ErrNotFound is returned when a user or group does not exist.
	ErrNotFound = errors.New("roblox: not found")

	// ErrRateLimited is returned when the API answers 429.
	ErrRateLimited = errors.New("roblox: rate limited")
)

// User is a Roblox account.
type User struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
}

// GroupRole is a user's role inside one group.
type GroupRole struct {
	GroupID   int64
	GroupName string
	Rank      reconcile.Rank
}

// Client talks to the public Roblox web APIs.
// It implements reconcile.RankProvider.
type Client struct {
	http      *http.Client
	groupsURL string
	usersURL  string
	limiter   *rate.Limiter
	cache     *membershipCache
}

// NewClient creates a new Roblox client based on the configuration.
func NewClient(cfg Config) *Client {
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 10
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	requestTimeout := time.Duration(timeout) * time.Second
	cacheTTL := time.Duration(cfg.CacheTTLSeconds) * time.Second

	return &Client{
		http:      &http.Client{Timeout: requestTimeout},
		groupsURL: strings.TrimSuffix(cfg.GroupsURL, "/"),
		usersURL:  strings.TrimSuffix(cfg.UsersURL, "/"),
		limiter:   rate.NewLimiter(limit, burst),
		cache:     newMembershipCache(cacheTTL, requestTimeout),
	}
}

// IsMember reports whether the user holds a rank above guest in the group.
func (c *Client) IsMember(ctx context.Context, userID, groupID int64) (bool, error) {
	rank, err := c.GetRank(ctx, userID, groupID)
	if err != nil {
		return false, err
	}
	return rank != nil, nil
}

// GetRank returns the user's rank in the group, or nil when the user is not a member.
func (c *Client) GetRank(ctx context.Context, userID, groupID int64) (*reconcile.Rank, error) {
	roles, err := c.UserGroups(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, r := range roles {
		if r.GroupID == groupID && r.Rank.ID > 0 {
			rank := r.Rank
			return &rank, nil
		}
	}
	return nil, nil
}

// UserGroups lists the groups a user belongs to together with their role in each.
// Results are cached per user for the configured TTL.
func (c *Client) UserGroups(ctx context.Context, userID int64) ([]GroupRole, error) {
	return c.cache.get(ctx, userID, func(ctx context.Context) ([]GroupRole, error) {
		var resp struct {
			Data []struct {
				Group struct {
					ID   int64  `json:"id"`
					Name string `json:"name"`
				} `json:"group"`
				Role struct {
					ID   int64  `json:"id"`
					Name string `json:"name"`
					Rank int    `json:"rank"`
				} `json:"role"`
			} `json:"data"`
		}

		url := fmt.Sprintf("%s/v2/users/%d/groups/roles", c.groupsURL, userID)
		if err := c.do(ctx, http.MethodGet, url, nil, &resp); err != nil {
			return nil, fmt.Errorf("failed to get groups of user %d: %w", userID, err)
		}

		roles := make([]GroupRole, 0, len(resp.Data))
		for _, d := range resp.Data {
			roles = append(roles, GroupRole{
				GroupID:   d.Group.ID,
				GroupName: d.Group.Name,
				Rank:      reconcile.Rank{ID: d.Role.Rank, Name: d.Role.Name},
			})
		}
		return roles, nil
	})
}

// GroupRanks lists every rank defined by the group, guest included.
func (c *Client) GroupRanks(ctx context.Context, groupID int64) ([]reconcile.Rank, error) {
	var resp struct {
		Roles []struct {
			ID   int64  `json:"id"`
			Name string `json:"name"`
			Rank int    `json:"rank"`
		} `json:"roles"`
	}

	url := fmt.Sprintf("%s/v1/groups/%d/roles", c.groupsURL, groupID)
	if err := c.do(ctx, http.MethodGet, url, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to get ranks of group %d: %w", groupID, err)
	}

	ranks := make([]reconcile.Rank, 0, len(resp.Roles))
	for _, r := range resp.Roles {
		ranks = append(ranks, reconcile.Rank{ID: r.Rank, Name: r.Name})
	}
	return ranks, nil
}

// UserByUsername resolves an exact username to its account.
func (c *Client) UserByUsername(ctx context.Context, username string) (*User, error) {
	body := map[string]any{
		"usernames":          []string{username},
		"excludeBannedUsers": true,
	}
	var resp struct {
		Data []User `json:"data"`
	}

	url := c.usersURL + "/v1/usernames/users"
	if err := c.do(ctx, http.MethodPost, url, body, &resp); err != nil {
		return nil, fmt.Errorf("failed to look up username %q: %w", username, err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("username %q: %w", username, ErrNotFound)
	}
	return &resp.Data[0], nil
}

// UserDescription returns the profile description ("About") of a user.
func (c *Client) UserDescription(ctx context.Context, userID int64) (string, error) {
	var resp struct {
		Description string `json:"description"`
	}

	url := c.usersURL + "/v1/users/" + strconv.FormatInt(userID, 10)
	if err := c.do(ctx, http.MethodGet, url, nil, &resp); err != nil {
		return "", fmt.Errorf("failed to get profile of user %d: %w", userID, err)
	}
	return resp.Description, nil
}

// Forget drops the cached group roles of a user.
func (c *Client) Forget(userID int64) {
	c.cache.forget(userID)
}

func (c *Client) do(ctx context.Context, method, url string, body any, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound, resp.StatusCode == http.StatusBadRequest:
		// The groups API answers 400 for unknown group ids.
		return ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		return ErrRateLimited
	case resp.StatusCode >= 300:
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
