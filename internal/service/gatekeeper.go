package service

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dtroode/gatekeeper/internal/logger"
	"github.com/dtroode/gatekeeper/internal/metrics"
	"github.com/dtroode/gatekeeper/internal/model"
)

// Trigger describes which messages start or cancel a verification.
type Trigger struct {
	Channel       string
	StartKeywords []string
	CancelKeyword string
}

const defaultPersistTimeout = 10 * time.Second

// Gatekeeper routes chat events to verification sessions and applies
// their outcomes.
type Gatekeeper struct {
	registry       *Registry
	roster         model.Roster
	ledger         model.Ledger
	effector       *Effector
	sender         model.MessageSender
	trigger        Trigger
	persistTimeout time.Duration
	metrics        *metrics.Metrics
	logger         *logger.Logger

	closing atomic.Bool
}

func NewGatekeeper(
	registry *Registry,
	roster model.Roster,
	ledger model.Ledger,
	effector *Effector,
	sender model.MessageSender,
	trigger Trigger,
	persistTimeout time.Duration,
	metrics *metrics.Metrics,
	logger *logger.Logger,
) *Gatekeeper {
	if persistTimeout <= 0 {
		persistTimeout = defaultPersistTimeout
	}
	return &Gatekeeper{
		registry:       registry,
		roster:         roster,
		ledger:         ledger,
		effector:       effector,
		sender:         sender,
		trigger:        trigger,
		persistTimeout: persistTimeout,
		metrics:        metrics,
		logger:         logger,
	}
}

// HandleMessage processes one inbound chat message.
func (g *Gatekeeper) HandleMessage(ctx context.Context, msg model.Message) {
	if msg.AuthorIsBot || msg.AuthorID == "" {
		return
	}

	if sess, ok := g.registry.Get(msg.AuthorID); ok && sess.ChannelID == msg.ChannelID {
		g.advance(ctx, sess, msg)
		return
	}

	if g.isStart(msg) {
		g.start(ctx, msg)
	}
}

// HandleMemberJoin quarantines or promotes a new guild member.
func (g *Gatekeeper) HandleMemberJoin(ctx context.Context, member model.Member) {
	if member.UserID == "" {
		return
	}

	g.logger.Info("Gatekeeper: member joined",
		"guild_id", member.GuildID,
		"user_id", member.UserID,
		"tag", member.Tag)

	g.effector.Admit(ctx, member.GuildID, member.UserID)
}

// Sweep ends sessions whose deadline passed. Sessions busy with an event
// are skipped; that event checks the deadline itself.
func (g *Gatekeeper) Sweep(ctx context.Context) int {
	now := g.registry.now()
	ended := 0

	for _, sess := range g.registry.Expired(now) {
		if !sess.mu.TryLock() {
			continue
		}
		if sess.State != model.StateDone && sess.Expired(now) {
			g.expire(ctx, sess, sess.TriggerID)
			ended++
		}
		sess.mu.Unlock()
	}

	return ended
}

// Shutdown cancels every live session. Starts requested afterwards are
// refused.
func (g *Gatekeeper) Shutdown(ctx context.Context) {
	g.closing.Store(true)

	for _, sess := range g.registry.All() {
		sess.mu.Lock()
		if sess.State != model.StateDone {
			g.finish(sess, model.OutcomeCancelled)
			g.reply(ctx, sess.ChannelID, sess.TriggerID, ReplyShuttingDown)
		}
		sess.mu.Unlock()
	}
}

func (g *Gatekeeper) isStart(msg model.Message) bool {
	if !strings.EqualFold(msg.ChannelName, g.trigger.Channel) {
		return false
	}

	content := strings.TrimSpace(msg.Content)
	for _, kw := range g.trigger.StartKeywords {
		if strings.EqualFold(content, strings.TrimSpace(kw)) {
			return true
		}
	}
	return false
}

func (g *Gatekeeper) isCancel(content string) bool {
	return g.trigger.CancelKeyword != "" && strings.EqualFold(strings.TrimSpace(content), g.trigger.CancelKeyword)
}

func (g *Gatekeeper) start(ctx context.Context, msg model.Message) {
	if g.closing.Load() {
		g.reply(ctx, msg.ChannelID, msg.ID, ReplyShuttingDown)
		return
	}

	sess, err := g.registry.TryStart(msg.AuthorID, msg.ChannelID, Origin{GuildID: msg.GuildID, MessageID: msg.ID})
	switch {
	case errors.Is(err, model.ErrAlreadyVerified):
		g.metrics.IncrementStartsRejected("already_verified")
		g.logger.Info("Gatekeeper: user already verified",
			"user_id", msg.AuthorID)
		g.reply(ctx, msg.ChannelID, msg.ID, ReplyAlreadyVerified)
		return
	case errors.Is(err, model.ErrAlreadyActive):
		g.metrics.IncrementStartsRejected("already_active")
		g.reply(ctx, msg.ChannelID, msg.ID, ReplyAlreadyActive)
		return
	case err != nil:
		g.logger.Error("Gatekeeper: failed to start session",
			"user_id", msg.AuthorID,
			"error", err.Error())
		return
	}

	g.metrics.IncrementSessionsStarted()

	// Shutdown may have taken its snapshot of live sessions before TryStart.
	if g.closing.Load() {
		sess.mu.Lock()
		if sess.State != model.StateDone {
			g.finish(sess, model.OutcomeCancelled)
		}
		sess.mu.Unlock()
		g.reply(ctx, msg.ChannelID, msg.ID, ReplyShuttingDown)
		return
	}

	g.metrics.SetActiveSessions(g.registry.Len())
	g.logger.Info("Gatekeeper: session started",
		"session_id", sess.ID.String(),
		"user_id", sess.UserID,
		"user_tag", msg.AuthorTag,
		"deadline", sess.Deadline)

	g.reply(ctx, msg.ChannelID, msg.ID, PromptName)
}

func (g *Gatekeeper) advance(ctx context.Context, sess *Session, msg model.Message) {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.State == model.StateDone {
		return
	}

	if sess.Expired(g.registry.now()) {
		g.expire(ctx, sess, msg.ID)
		return
	}

	if g.isCancel(msg.Content) {
		g.finish(sess, model.OutcomeCancelled)
		g.reply(ctx, msg.ChannelID, msg.ID, ReplyCancelled)
		return
	}

	from := sess.State
	t := sess.Advance(g.roster, msg.Content)

	g.logger.Debug("Gatekeeper: session step",
		"session_id", sess.ID.String(),
		"user_id", sess.UserID,
		"from", from.String(),
		"to", t.Next.String())

	var mismatch *model.MismatchError
	if errors.As(t.Err, &mismatch) {
		g.logger.Info("Gatekeeper: answer rejected",
			"session_id", sess.ID.String(),
			"user_id", sess.UserID,
			"step", from.String(),
			"reason", mismatch.Reason)
	}

	switch t.Outcome {
	case model.OutcomePending:
		g.reply(ctx, msg.ChannelID, msg.ID, t.Reply)
	case model.OutcomeVerified:
		g.complete(ctx, sess, msg)
	default:
		g.finish(sess, t.Outcome)
		g.reply(ctx, msg.ChannelID, msg.ID, t.Reply)
	}
}

// complete commits the verification to the ledger and then applies the
// best-effort membership changes. The write is bounded by persistTimeout and
// a write that runs out of time counts as a persist failure. Caller must hold
// sess.mu.
func (g *Gatekeeper) complete(ctx context.Context, sess *Session, msg model.Message) {
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.persistTimeout)
	err := g.ledger.Add(pctx, sess.UserID)
	cancel()
	if err != nil {
		g.logger.Error("Gatekeeper: failed to record verification",
			"session_id", sess.ID.String(),
			"user_id", sess.UserID,
			"error", err.Error())
		g.finish(sess, model.OutcomePersistFailed)
		g.reply(ctx, msg.ChannelID, msg.ID, ReplyPersistFailed)
		return
	}

	g.finish(sess, model.OutcomeVerified)
	g.metrics.SetVerifiedUsers(g.ledger.Len())
	g.reply(ctx, msg.ChannelID, msg.ID, ReplyVerified)

	g.effector.Promote(ctx, sess.GuildID, sess.UserID)
	g.effector.Rename(ctx, sess.GuildID, sess.UserID, sess.Collected.FirstName, sess.Collected.Branch, sess.Collected.Phone)
}

// expire ends a session whose deadline passed. Caller must hold sess.mu.
func (g *Gatekeeper) expire(ctx context.Context, sess *Session, replyTo string) {
	g.logger.Info("Gatekeeper: session expired",
		"session_id", sess.ID.String(),
		"user_id", sess.UserID,
		"state", sess.State.String(),
		"error", model.ErrSessionTimeout.Error())
	g.finish(sess, model.OutcomeTimeout)
	g.reply(ctx, sess.ChannelID, replyTo, ReplyTimeout)
}

// finish marks the session terminal and releases it. Caller must hold sess.mu.
func (g *Gatekeeper) finish(sess *Session, outcome model.Outcome) {
	sess.State = model.StateDone
	sess.Outcome = outcome
	g.registry.End(sess.UserID)

	g.metrics.IncrementSessionsFinished(outcome)
	g.metrics.SetActiveSessions(g.registry.Len())
	g.logger.Info("Gatekeeper: session finished",
		"session_id", sess.ID.String(),
		"user_id", sess.UserID,
		"outcome", string(outcome))
}

func (g *Gatekeeper) reply(ctx context.Context, channelID, messageID, text string) {
	err := g.sender.Reply(context.WithoutCancel(ctx), channelID, messageID, text)
	if err != nil {
		g.logger.Error("Gatekeeper: failed to send reply",
			"channel_id", channelID,
			"error", err.Error())
	}
}
