package discord

import (
	"context"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/dtroode/gatekeeper/internal/model"
)

type discordAPI interface {
	ChannelMessageSendReply(channelID, content string, reference *discordgo.MessageReference, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	GuildMemberRoleRemove(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	GuildMemberNickname(guildID, userID, nickname string, options ...discordgo.RequestOption) error
	GuildRoles(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Role, error)
	Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
}

type channelState interface {
	Channel(channelID string) (*discordgo.Channel, error)
}

// Client implements model.MessageSender and model.MemberManager over the
// Discord REST API. Role names are resolved to IDs per guild and cached.
type Client struct {
	api   discordAPI
	state channelState

	mu    sync.RWMutex
	roles map[string]map[string]string
}

// NewClient wraps an open discordgo session.
func NewClient(s *discordgo.Session) *Client {
	return newClient(s, s.State)
}

func newClient(api discordAPI, state channelState) *Client {
	return &Client{
		api:   api,
		state: state,
		roles: make(map[string]map[string]string),
	}
}

// Reply answers messageID in channelID.
func (c *Client) Reply(ctx context.Context, channelID, messageID, text string) error {
	if messageID == "" {
		return c.Send(ctx, channelID, text)
	}

	ref := &discordgo.MessageReference{MessageID: messageID, ChannelID: channelID}
	if _, err := c.api.ChannelMessageSendReply(channelID, text, ref, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to reply in channel %s: %w", channelID, err)
	}
	return nil
}

// Send posts text to channelID.
func (c *Client) Send(ctx context.Context, channelID, text string) error {
	if _, err := c.api.ChannelMessageSend(channelID, text, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to send to channel %s: %w", channelID, err)
	}
	return nil
}

// AddRole grants the role named roleName.
func (c *Client) AddRole(ctx context.Context, guildID, userID, roleName string) error {
	roleID, err := c.roleID(ctx, guildID, roleName)
	if err != nil {
		return err
	}
	if err := c.api.GuildMemberRoleAdd(guildID, userID, roleID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to add role %q: %w", roleName, err)
	}
	return nil
}

// RemoveRole revokes the role named roleName.
func (c *Client) RemoveRole(ctx context.Context, guildID, userID, roleName string) error {
	roleID, err := c.roleID(ctx, guildID, roleName)
	if err != nil {
		return err
	}
	if err := c.api.GuildMemberRoleRemove(guildID, userID, roleID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to remove role %q: %w", roleName, err)
	}
	return nil
}

// SetNickname changes the member's guild nickname.
func (c *Client) SetNickname(ctx context.Context, guildID, userID, nickname string) error {
	if err := c.api.GuildMemberNickname(guildID, userID, nickname, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to set nickname: %w", err)
	}
	return nil
}

// ChannelName resolves a channel's name, preferring the gateway state cache.
func (c *Client) ChannelName(ctx context.Context, channelID string) (string, error) {
	if c.state != nil {
		if ch, err := c.state.Channel(channelID); err == nil && ch != nil {
			return ch.Name, nil
		}
	}

	ch, err := c.api.Channel(channelID, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to fetch channel %s: %w", channelID, err)
	}
	return ch.Name, nil
}

// roleID looks roleName up in the cache, refreshing the guild's roles once on
// a miss so renamed or newly created roles are picked up.
func (c *Client) roleID(ctx context.Context, guildID, roleName string) (string, error) {
	c.mu.RLock()
	id, ok := c.roles[guildID][roleName]
	c.mu.RUnlock()
	if ok {
		return id, nil
	}

	roles, err := c.api.GuildRoles(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to list roles: %w", err)
	}

	byName := make(map[string]string, len(roles))
	for _, r := range roles {
		if r == nil {
			continue
		}
		if _, dup := byName[r.Name]; !dup {
			byName[r.Name] = r.ID
		}
	}

	c.mu.Lock()
	c.roles[guildID] = byName
	c.mu.Unlock()

	id, ok = byName[roleName]
	if !ok {
		return "", fmt.Errorf("%w: %q", model.ErrRoleNotFound, roleName)
	}
	return id, nil
}
