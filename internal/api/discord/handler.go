package discord

import (
	"context"
	"sync/atomic"

	"github.com/bwmarrin/discordgo"

	"github.com/dtroode/gatekeeper/internal/logger"
	"github.com/dtroode/gatekeeper/internal/model"
)

// Intents the gatekeeper needs: guild messages with content and member joins.
const Intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsGuildMembers |
	discordgo.IntentsMessageContent

// EventHandler consumes platform-neutral chat events.
type EventHandler interface {
	HandleMessage(ctx context.Context, msg model.Message)
	HandleMemberJoin(ctx context.Context, member model.Member)
}

type channelNamer interface {
	ChannelName(ctx context.Context, channelID string) (string, error)
}

// Handler translates discordgo gateway events into EventHandler calls and
// tracks gateway readiness.
type Handler struct {
	ctx      context.Context
	events   EventHandler
	channels channelNamer
	logger   *logger.Logger

	ready    atomic.Bool
	onStatus func(ready bool)
}

// NewHandler creates a Handler. ctx is the parent of every event's context.
// onStatus, when set, is called on every readiness change.
func NewHandler(ctx context.Context, events EventHandler, channels channelNamer, onStatus func(ready bool), logger *logger.Logger) *Handler {
	return &Handler{
		ctx:      ctx,
		events:   events,
		channels: channels,
		onStatus: onStatus,
		logger:   logger,
	}
}

// Register attaches the handler to a session.
func (h *Handler) Register(s *discordgo.Session) {
	s.AddHandler(h.OnReady)
	s.AddHandler(h.OnResumed)
	s.AddHandler(h.OnDisconnect)
	s.AddHandler(h.OnMessageCreate)
	s.AddHandler(h.OnGuildMemberAdd)
}

// Ready reports whether the gateway is connected.
func (h *Handler) Ready() bool {
	return h.ready.Load()
}

func (h *Handler) OnReady(_ *discordgo.Session, r *discordgo.Ready) {
	user := ""
	if r.User != nil {
		user = r.User.String()
	}
	h.logger.Info("Discord: gateway ready", "user", user, "guilds", len(r.Guilds))
	h.setReady(true)
}

func (h *Handler) OnResumed(_ *discordgo.Session, _ *discordgo.Resumed) {
	h.logger.Info("Discord: gateway resumed")
	h.setReady(true)
}

func (h *Handler) OnDisconnect(_ *discordgo.Session, _ *discordgo.Disconnect) {
	h.logger.Warn("Discord: gateway disconnected")
	h.setReady(false)
}

// SetReady forces the readiness state, used on shutdown.
func (h *Handler) SetReady(ready bool) {
	h.setReady(ready)
}

func (h *Handler) setReady(ready bool) {
	if h.ready.Swap(ready) == ready {
		return
	}
	if h.onStatus != nil {
		h.onStatus(ready)
	}
}

func (h *Handler) OnMessageCreate(_ *discordgo.Session, m *discordgo.MessageCreate) {
	if m == nil || m.Message == nil || m.Author == nil {
		return
	}
	if m.GuildID == "" {
		return
	}

	name, err := h.channels.ChannelName(h.ctx, m.ChannelID)
	if err != nil {
		h.logger.Warn("Discord: failed to resolve channel name",
			"channel_id", m.ChannelID,
			"error", err.Error())
	}

	h.events.HandleMessage(h.ctx, model.Message{
		ID:          m.ID,
		ChannelID:   m.ChannelID,
		ChannelName: name,
		GuildID:     m.GuildID,
		AuthorID:    m.Author.ID,
		AuthorTag:   m.Author.String(),
		AuthorIsBot: m.Author.Bot,
		Content:     m.Content,
	})
}

func (h *Handler) OnGuildMemberAdd(_ *discordgo.Session, m *discordgo.GuildMemberAdd) {
	if m == nil || m.Member == nil || m.User == nil {
		return
	}
	if m.User.Bot {
		return
	}

	h.events.HandleMemberJoin(h.ctx, model.Member{
		GuildID: m.GuildID,
		UserID:  m.User.ID,
		Tag:     m.User.String(),
	})
}
