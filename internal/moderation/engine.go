package moderation

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/modwarden/modwarden/internal/config"
	"github.com/modwarden/modwarden/internal/flood"
	"github.com/modwarden/modwarden/internal/i18n"
	"github.com/modwarden/modwarden/internal/observability"
	"github.com/modwarden/modwarden/internal/registry"
)

// Store is the slice of the durable client the engine needs.
type Store interface {
	GetWarningCount(ctx context.Context, userID int64) (int, error)
	IncrementWarning(ctx context.Context, userID int64) error
	ResetWarning(ctx context.Context, userID int64) error
	SetBan(ctx context.Context, userID int64, until time.Time) error
	ClearBan(ctx context.Context, userID int64) error
}

// Enforcer applies platform-level consequences. The engine records intent
// in the store; the enforcer makes it real on the chat platform.
type Enforcer interface {
	Restrict(ctx context.Context, chatID, userID int64, until time.Time) error
	Unrestrict(ctx context.Context, chatID, userID int64) error
	Remove(ctx context.Context, chatID, userID int64) error
}

// Notifier broadcasts to administrators. Implementations isolate per-admin
// failures; a notification never aborts the command that produced it.
type Notifier interface {
	NotifyAdmins(ctx context.Context, text string)
}

// Command is an already-parsed moderation command.
type Command struct {
	ChatID     int64
	ChatTitle  string
	ActorID    int64
	TargetID   int64
	TargetName string
	Duration   string
	Reason     string
}

// Message is an ordinary chat message fed to the flood tracker.
type Message struct {
	ChatID int64
	UserID int64
	At     time.Time
}

// Throttle is the decision for an ordinary message.
type Throttle struct {
	ShouldRestrict bool
	Notice         string
}

// Engine turns commands and messages into moderation decisions. It owns no
// I/O of its own: persistence, privilege state, flood state and platform
// side effects all come in through its collaborators.
type Engine struct {
	store    Store
	roles    *registry.Registry
	tracker  *flood.Tracker
	enforcer Enforcer
	notifier Notifier

	warnBanThreshold int
	warnBanDuration  time.Duration
	floodRestrictFor time.Duration
	lang             string
}

func NewEngine(
	store Store,
	roles *registry.Registry,
	tracker *flood.Tracker,
	enforcer Enforcer,
	notifier Notifier,
	cfg config.Config,
) *Engine {
	return &Engine{
		store:            store,
		roles:            roles,
		tracker:          tracker,
		enforcer:         enforcer,
		notifier:         notifier,
		warnBanThreshold: cfg.Moderation.WarnBanThreshold,
		warnBanDuration:  cfg.Moderation.WarnBanDuration,
		floodRestrictFor: cfg.Flood.RestrictFor,
		lang:             cfg.DefaultLanguage,
	}
}

// Warn increments the target's warning count and, once the count reaches
// the threshold, escalates into a ban with the same effects as an explicit
// ban command. The increment and the escalation ban are two separate store
// writes: a crash between them leaves the incremented count without the
// ban. Known limitation, not hidden.
func (e *Engine) Warn(ctx context.Context, cmd Command) (string, error) {
	if err := e.gate(cmd); err != nil {
		return "", err
	}

	if err := e.store.IncrementWarning(ctx, cmd.TargetID); err != nil {
		return "", fmt.Errorf("increment warning: %w", err)
	}
	count, err := e.store.GetWarningCount(ctx, cmd.TargetID)
	if err != nil {
		return "", fmt.Errorf("get warning count: %w", err)
	}

	reason := e.reasonOrDefault(cmd.Reason)
	reply := fmt.Sprintf(
		i18n.Get("%s got a warning. Reason: %s. Warnings: %d", e.lang),
		cmd.TargetName, reason, count,
	)
	e.notifier.NotifyAdmins(ctx, fmt.Sprintf(
		i18n.Get("User %s (%d) got a warning in chat %s. Reason: %s. Warnings: %d", e.lang),
		cmd.TargetName, cmd.TargetID, cmd.ChatTitle, reason, count,
	))
	observability.RecordAction("warn")

	if count < e.warnBanThreshold {
		return reply, nil
	}

	until := time.Now().Add(e.warnBanDuration)
	if err := e.store.SetBan(ctx, cmd.TargetID, until); err != nil {
		return reply, fmt.Errorf("set escalation ban: %w", err)
	}
	if err := e.enforcer.Restrict(ctx, cmd.ChatID, cmd.TargetID, until); err != nil {
		return reply, errors.WithMessage(err, "restrict escalated user")
	}

	banFor := humanDuration(e.warnBanDuration)
	reply += "\n" + fmt.Sprintf(
		i18n.Get("%s is banned for %s after reaching %d warnings", e.lang),
		cmd.TargetName, banFor, count,
	)
	e.notifier.NotifyAdmins(ctx, fmt.Sprintf(
		i18n.Get("User %s (%d) is banned in chat %s after reaching %d warnings", e.lang),
		cmd.TargetName, cmd.TargetID, cmd.ChatTitle, count,
	))
	observability.RecordAction("escalation_ban")

	return reply, nil
}

// Unwarn resets the target's warning count to zero.
func (e *Engine) Unwarn(ctx context.Context, cmd Command) (string, error) {
	if err := e.gate(cmd); err != nil {
		return "", err
	}

	if err := e.store.ResetWarning(ctx, cmd.TargetID); err != nil {
		return "", fmt.Errorf("reset warning: %w", err)
	}
	observability.RecordAction("unwarn")
	return fmt.Sprintf(i18n.Get("All warnings are removed from %s.", e.lang), cmd.TargetName), nil
}

// Ban persists a timed ban and requests the platform restriction. The
// duration token is validated before any state changes.
func (e *Engine) Ban(ctx context.Context, cmd Command) (string, error) {
	if err := e.gate(cmd); err != nil {
		return "", err
	}

	duration, err := ParseDurationToken(cmd.Duration)
	if err != nil {
		return "", err
	}

	until := time.Now().Add(duration)
	if err := e.store.SetBan(ctx, cmd.TargetID, until); err != nil {
		return "", fmt.Errorf("set ban: %w", err)
	}
	if err := e.enforcer.Restrict(ctx, cmd.ChatID, cmd.TargetID, until); err != nil {
		return "", errors.WithMessage(err, "restrict banned user")
	}

	reason := e.reasonOrDefault(cmd.Reason)
	e.notifier.NotifyAdmins(ctx, fmt.Sprintf(
		i18n.Get("User %s (%d) is banned for %s in chat %s. Reason: %s", e.lang),
		cmd.TargetName, cmd.TargetID, cmd.Duration, cmd.ChatTitle, reason,
	))
	observability.RecordAction("ban")

	return fmt.Sprintf(
		i18n.Get("%s is banned for %s. Reason: %s", e.lang),
		cmd.TargetName, cmd.Duration, reason,
	), nil
}

// Unban clears the ban record and lifts the platform restriction.
func (e *Engine) Unban(ctx context.Context, cmd Command) (string, error) {
	if err := e.gate(cmd); err != nil {
		return "", err
	}

	if err := e.store.ClearBan(ctx, cmd.TargetID); err != nil {
		return "", fmt.Errorf("clear ban: %w", err)
	}
	if err := e.enforcer.Unrestrict(ctx, cmd.ChatID, cmd.TargetID); err != nil {
		return "", errors.WithMessage(err, "unrestrict user")
	}

	e.notifier.NotifyAdmins(ctx, fmt.Sprintf(
		i18n.Get("User %s (%d) is unbanned in chat %s.", e.lang),
		cmd.TargetName, cmd.TargetID, cmd.ChatTitle,
	))
	observability.RecordAction("unban")

	return fmt.Sprintf(i18n.Get("%s is unbanned.", e.lang), cmd.TargetName), nil
}

// Remove kicks the target from the chat permanently. A platform failure is
// reported back to the chat with its reason and notifies nobody.
func (e *Engine) Remove(ctx context.Context, cmd Command) (string, error) {
	if err := e.gate(cmd); err != nil {
		return "", err
	}

	if err := e.enforcer.Remove(ctx, cmd.ChatID, cmd.TargetID); err != nil {
		log.WithError(err).WithField("user_id", cmd.TargetID).Error("cant remove user")
		return fmt.Sprintf(
			i18n.Get("Failed to remove %s. Error: %s", e.lang),
			cmd.TargetName, err.Error(),
		), nil
	}

	e.notifier.NotifyAdmins(ctx, fmt.Sprintf(
		i18n.Get("User %s (%d) is removed from chat %s.", e.lang),
		cmd.TargetName, cmd.TargetID, cmd.ChatTitle,
	))
	observability.RecordAction("remove")

	return fmt.Sprintf(i18n.Get("%s is removed from the chat.", e.lang), cmd.TargetName), nil
}

// Promote grants the target moderator privileges for the life of the
// process.
func (e *Engine) Promote(ctx context.Context, cmd Command) (string, error) {
	if err := e.gate(cmd); err != nil {
		return "", err
	}

	e.roles.Promote(cmd.TargetID)
	e.notifier.NotifyAdmins(ctx, fmt.Sprintf(
		i18n.Get("User %s (%d) is now a moderator of chat %s.", e.lang),
		cmd.TargetName, cmd.TargetID, cmd.ChatTitle,
	))
	observability.RecordAction("promote")

	return fmt.Sprintf(i18n.Get("%s is now a moderator.", e.lang), cmd.TargetName), nil
}

// Demote revokes moderator privileges. Demoting a non-moderator replies
// "not a moderator" and notifies nobody.
func (e *Engine) Demote(ctx context.Context, cmd Command) (string, error) {
	if err := e.gate(cmd); err != nil {
		return "", err
	}

	if !e.roles.Demote(cmd.TargetID) {
		return fmt.Sprintf(i18n.Get("%s is not a moderator.", e.lang), cmd.TargetName), nil
	}

	e.notifier.NotifyAdmins(ctx, fmt.Sprintf(
		i18n.Get("User %s (%d) is no longer a moderator of chat %s.", e.lang),
		cmd.TargetName, cmd.TargetID, cmd.ChatTitle,
	))
	observability.RecordAction("demote")

	return fmt.Sprintf(i18n.Get("%s is no longer a moderator.", e.lang), cmd.TargetName), nil
}

// ObserveMessage feeds the flood tracker and, on an over-limit decision,
// requests a short platform restriction and produces the throttle notice
// for the chat. Admins are not notified about flood throttles.
func (e *Engine) ObserveMessage(ctx context.Context, msg Message) (Throttle, error) {
	at := msg.At
	if at.IsZero() {
		at = time.Now()
	}

	decision := e.tracker.Observe(msg.UserID, at)
	if !decision.OverLimit {
		return Throttle{}, nil
	}

	observability.RecordFloodTrip()
	log.WithFields(log.Fields{
		"user_id": msg.UserID,
		"chat_id": msg.ChatID,
		"count":   decision.Count,
	}).Info("flood limit tripped")

	notice := fmt.Sprintf(
		i18n.Get("User was temporarily restricted for %s for exceeding the message limit.", e.lang),
		humanDuration(e.floodRestrictFor),
	)
	if err := e.enforcer.Restrict(ctx, msg.ChatID, msg.UserID, at.Add(e.floodRestrictFor)); err != nil {
		return Throttle{ShouldRestrict: true, Notice: notice}, errors.WithMessage(err, "restrict flooder")
	}
	return Throttle{ShouldRestrict: true, Notice: notice}, nil
}

// gate runs the checks every command shares. The privilege check precedes
// all side effects; rejection means zero state mutation and zero
// notifications.
func (e *Engine) gate(cmd Command) error {
	if !e.roles.IsPrivileged(cmd.ActorID) {
		return ErrNotPrivileged
	}
	if cmd.TargetID == 0 {
		return ErrNoTarget
	}
	return nil
}

func (e *Engine) reasonOrDefault(reason string) string {
	if reason == "" {
		return i18n.Get("No reason given", e.lang)
	}
	return reason
}
