package discord

import (
	"context"
	"fmt"

	"rank-sync/core/reconcile"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// MemberJoinFunc is called for every member that joins a guild.
type MemberJoinFunc func(ctx context.Context, guildID, memberID string)

// Client wraps a discordgo session and implements reconcile.Platform.
type Client struct {
	session  *discordgo.Session
	state    *ConnectionState
	logger   *zap.Logger
	pageSize int
}

// NewClient creates a session with the guild and member intents. It does not connect.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("discord token is not configured")
	}

	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers

	pageSize := cfg.PageSize
	if pageSize <= 0 || pageSize > 1000 {
		pageSize = 1000
	}

	c := &Client{
		session:  session,
		state:    NewConnectionState(),
		logger:   logger,
		pageSize: pageSize,
	}

	session.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		c.state.MarkConnected()
		c.logger.Info("Discord session ready", zap.String("user", r.User.Username), zap.Int("guilds", len(r.Guilds)))
	})
	session.AddHandler(func(_ *discordgo.Session, _ *discordgo.Resumed) {
		c.state.MarkConnected()
		c.logger.Info("Discord session resumed")
	})
	session.AddHandler(func(_ *discordgo.Session, _ *discordgo.Disconnect) {
		c.state.MarkDisconnected()
		c.logger.Warn("Discord session disconnected")
	})

	return c, nil
}

// Open connects to the gateway.
func (c *Client) Open() error {
	if err := c.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}
	return nil
}

// Close disconnects from the gateway.
func (c *Client) Close() error {
	c.state.MarkDisconnected()
	return c.session.Close()
}

// State returns the gateway connection state.
func (c *Client) State() *ConnectionState {
	return c.state
}

// OnMemberJoin registers fn for guild member add events. Bots are filtered out.
func (c *Client) OnMemberJoin(ctx context.Context, fn MemberJoinFunc) {
	c.session.AddHandler(func(_ *discordgo.Session, e *discordgo.GuildMemberAdd) {
		if e.Member == nil || e.User == nil || e.User.Bot {
			return
		}
		fn(ctx, e.GuildID, e.User.ID)
	})
}

// Guilds lists the guilds the session currently sees.
func (c *Client) Guilds(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.session.State.RLock()
	defer c.session.State.RUnlock()

	ids := make([]string, 0, len(c.session.State.Guilds))
	for _, g := range c.session.State.Guilds {
		if g.Unavailable {
			continue
		}
		ids = append(ids, g.ID)
	}
	return ids, nil
}

// Members lists every member of a guild, paging by user id.
func (c *Client) Members(ctx context.Context, guildID string) ([]reconcile.Member, error) {
	var (
		members []reconcile.Member
		after   string
	)
	for {
		page, err := c.session.GuildMembers(guildID, after, c.pageSize, discordgo.WithContext(ctx))
		if err != nil {
			return nil, mapError(err)
		}
		for _, m := range page {
			members = append(members, toMember(m))
		}
		if len(page) < c.pageSize {
			return members, nil
		}
		after = page[len(page)-1].User.ID
	}
}

// Member reads one member.
func (c *Client) Member(ctx context.Context, guildID, memberID string) (*reconcile.Member, error) {
	m, err := c.session.GuildMember(guildID, memberID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, mapError(err)
	}
	member := toMember(m)
	return &member, nil
}

// Roles lists the live roles of a guild.
func (c *Client) Roles(ctx context.Context, guildID string) ([]reconcile.Role, error) {
	roles, err := c.session.GuildRoles(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, mapError(err)
	}
	out := make([]reconcile.Role, 0, len(roles))
	for _, r := range roles {
		out = append(out, reconcile.Role{ID: r.ID, Name: r.Name})
	}
	return out, nil
}

// SetNickname renames a member.
func (c *Client) SetNickname(ctx context.Context, guildID, memberID, nickname string) error {
	return mapError(c.session.GuildMemberNickname(guildID, memberID, nickname, discordgo.WithContext(ctx)))
}

// AddRole grants a role.
func (c *Client) AddRole(ctx context.Context, guildID, memberID, roleID string) error {
	return mapError(c.session.GuildMemberRoleAdd(guildID, memberID, roleID, discordgo.WithContext(ctx)))
}

// RemoveRole revokes a role.
func (c *Client) RemoveRole(ctx context.Context, guildID, memberID, roleID string) error {
	return mapError(c.session.GuildMemberRoleRemove(guildID, memberID, roleID, discordgo.WithContext(ctx)))
}

func toMember(m *discordgo.Member) reconcile.Member {
	member := reconcile.Member{
		RoleIDs:     append([]string(nil), m.Roles...),
		DisplayName: m.Nick,
	}
	if m.User != nil {
		member.ID = m.User.ID
		member.Username = m.User.Username
		member.Bot = m.User.Bot
		if member.DisplayName == "" {
			member.DisplayName = m.User.GlobalName
		}
		if member.DisplayName == "" {
			member.DisplayName = m.User.Username
		}
	}
	return member
}
