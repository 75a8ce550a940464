package service

import (
	"context"
	"fmt"
	"time"

	"github.com/dtroode/gatekeeper/internal/logger"
	"github.com/dtroode/gatekeeper/internal/metrics"
	"github.com/dtroode/gatekeeper/internal/model"
)

const defaultActionTimeout = 10 * time.Second

// Roles names the guild roles the effector moves members between.
type Roles struct {
	Unverified string
	Member     string
}

// Effector applies membership consequences. Every action is independent:
// a failure is logged and counted, never returned.
type Effector struct {
	members       model.MemberManager
	ledger        model.Ledger
	roles         Roles
	actionTimeout time.Duration
	metrics       *metrics.Metrics
	logger        *logger.Logger
}

func NewEffector(
	members model.MemberManager,
	ledger model.Ledger,
	roles Roles,
	actionTimeout time.Duration,
	metrics *metrics.Metrics,
	logger *logger.Logger,
) *Effector {
	if actionTimeout <= 0 {
		actionTimeout = defaultActionTimeout
	}
	return &Effector{
		members:       members,
		ledger:        ledger,
		roles:         roles,
		actionTimeout: actionTimeout,
		metrics:       metrics,
		logger:        logger,
	}
}

// Promote removes the unverified role and adds the member role.
func (e *Effector) Promote(ctx context.Context, guildID, userID string) {
	e.run(ctx, model.ActionRemoveUnverified, guildID, userID, func(ctx context.Context) error {
		return e.members.RemoveRole(ctx, guildID, userID, e.roles.Unverified)
	})
	e.run(ctx, model.ActionAddMember, guildID, userID, func(ctx context.Context) error {
		return e.members.AddRole(ctx, guildID, userID, e.roles.Member)
	})
}

// Rename sets the canonical nickname built from the verified answers.
func (e *Effector) Rename(ctx context.Context, guildID, userID, firstName, branch, phone string) {
	nick := Nickname(firstName, branch, phone)
	e.run(ctx, model.ActionRename, guildID, userID, func(ctx context.Context) error {
		return e.members.SetNickname(ctx, guildID, userID, nick)
	})
}

// Admit handles a new guild member: ledger members are promoted straight
// away, everyone else is quarantined in the unverified role.
func (e *Effector) Admit(ctx context.Context, guildID, userID string) {
	if e.ledger.Contains(userID) {
		e.logger.Info("Effector: member already verified, promoting",
			"guild_id", guildID,
			"user_id", userID)
		e.Promote(ctx, guildID, userID)
		return
	}

	e.run(ctx, model.ActionAddUnverified, guildID, userID, func(ctx context.Context) error {
		return e.members.AddRole(ctx, guildID, userID, e.roles.Unverified)
	})
}

// run executes fn detached from ctx cancellation, bounded by actionTimeout.
func (e *Effector) run(ctx context.Context, action model.EffectorAction, guildID, userID string, fn func(context.Context) error) {
	actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.actionTimeout)
	defer cancel()

	if err := fn(actx); err != nil {
		actionErr := &model.EffectorActionError{Action: action, Err: err}
		e.metrics.IncrementEffectorFailures(action)
		e.logger.Error("Effector: action failed",
			"action", string(action),
			"guild_id", guildID,
			"user_id", userID,
			"error", actionErr.Error())
		return
	}

	e.logger.Debug("Effector: action applied",
		"action", string(action),
		"guild_id", guildID,
		"user_id", userID)
}

// Nickname composes firstName-branch-last3digits. Digits are counted in runes.
func Nickname(firstName, branch, phone string) string {
	digits := []rune(phone)
	if len(digits) > 3 {
		digits = digits[len(digits)-3:]
	}
	return fmt.Sprintf("%s-%s-%s", firstName, branch, string(digits))
}
