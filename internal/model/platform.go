package model

import "context"

// Message is an inbound chat message, stripped to what verification needs.
type Message struct {
	ID          string
	ChannelID   string
	ChannelName string
	GuildID     string
	AuthorID    string
	AuthorTag   string
	AuthorIsBot bool
	Content     string
}

// Member is a user that just joined a guild.
type Member struct {
	GuildID string
	UserID  string
	Tag     string
}

// MessageSender posts messages to the chat platform.
type MessageSender interface {
	Reply(ctx context.Context, channelID, messageID, text string) error
	Send(ctx context.Context, channelID, text string) error
}

// MemberManager mutates guild membership. Roles are addressed by name.
type MemberManager interface {
	AddRole(ctx context.Context, guildID, userID, roleName string) error
	RemoveRole(ctx context.Context, guildID, userID, roleName string) error
	SetNickname(ctx context.Context, guildID, userID, nickname string) error
}
