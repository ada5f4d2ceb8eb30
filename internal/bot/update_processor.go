package bot

import (
	"context"
	"time"

	api "github.com/OvyFlash/telegram-bot-api"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/modwarden/modwarden/internal/i18n"
	"github.com/modwarden/modwarden/internal/moderation"
)

const (
	UpdateTimeout = 5 * time.Minute
)

// UpdateProcessor reduces raw updates to typed events and dispatches them
// to the policy engine, sending the engine's outcome back to the chat.
type UpdateProcessor struct {
	s         Service
	engine    *moderation.Engine
	monitored map[int64]struct{}
	lang      string
}

func NewUpdateProcessor(s Service, engine *moderation.Engine) *UpdateProcessor {
	cfg := s.GetConfig()
	monitored := make(map[int64]struct{}, len(cfg.ChatIDs))
	for _, chatID := range cfg.ChatIDs {
		monitored[chatID] = struct{}{}
	}
	return &UpdateProcessor{
		s:         s,
		engine:    engine,
		monitored: monitored,
		lang:      cfg.DefaultLanguage,
	}
}

func (up *UpdateProcessor) Process(ctx context.Context, u *api.Update) error {
	if u == nil {
		return errors.New("update is nil")
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	ev, ok := ParseUpdate(u, up.monitored)
	if !ok {
		return nil
	}

	if age := time.Since(ev.At); age > UpdateTimeout {
		log.WithFields(log.Fields{
			"update_time": ev.At,
			"age":         age,
		}).Debug("Skipping outdated update")
		return nil
	}

	return up.dispatch(ctx, ev)
}

func (up *UpdateProcessor) dispatch(ctx context.Context, ev Event) error {
	if ev.Kind == EventMessage {
		throttle, err := up.engine.ObserveMessage(ctx, moderation.Message{
			ChatID: ev.ChatID,
			UserID: ev.ActorID,
			At:     ev.At,
		})
		if throttle.ShouldRestrict && throttle.Notice != "" {
			up.send(ev.ChatID, throttle.Notice)
		}
		if err != nil {
			return errors.WithMessage(err, "observe message")
		}
		return nil
	}

	cmd := moderation.Command{
		ChatID:     ev.ChatID,
		ChatTitle:  ev.ChatTitle,
		ActorID:    ev.ActorID,
		TargetID:   ev.TargetID,
		TargetName: ev.TargetName,
		Duration:   ev.DurationToken,
		Reason:     ev.Reason,
	}

	var reply string
	var err error
	switch ev.Kind {
	case EventWarn:
		reply, err = up.engine.Warn(ctx, cmd)
	case EventUnwarn:
		reply, err = up.engine.Unwarn(ctx, cmd)
	case EventBan:
		reply, err = up.engine.Ban(ctx, cmd)
	case EventUnban:
		reply, err = up.engine.Unban(ctx, cmd)
	case EventRemove:
		reply, err = up.engine.Remove(ctx, cmd)
	case EventPromote:
		reply, err = up.engine.Promote(ctx, cmd)
	case EventDemote:
		reply, err = up.engine.Demote(ctx, cmd)
	}

	switch {
	case err == nil:
		up.reply(ev, reply)
		return nil
	case errors.Is(err, moderation.ErrNotPrivileged):
		up.reply(ev, i18n.Get("You are not allowed to use this command.", up.lang))
		return nil
	case errors.Is(err, moderation.ErrNoTarget):
		up.reply(ev, i18n.Get("Reply to a message to pick the target user.", up.lang))
		return nil
	case errors.Is(err, moderation.ErrBadDuration):
		up.reply(ev, i18n.Get("Bad duration format, use <number><unit>, e.g. 7day, 5hour, 30minute.", up.lang))
		return nil
	default:
		// storage and platform failures are not masked with a success reply
		return errors.WithMessagef(err, "handle %s", ev.Kind)
	}
}

func (up *UpdateProcessor) reply(ev Event, text string) {
	if text == "" {
		return
	}
	msg := api.NewMessage(ev.ChatID, text)
	msg.ReplyParameters = api.ReplyParameters{
		ChatID:                   ev.ChatID,
		MessageID:                ev.MessageID,
		AllowSendingWithoutReply: true,
	}
	msg.DisableNotification = true
	if _, err := up.s.GetBot().Send(msg); err != nil {
		log.WithError(err).WithField("chat_id", ev.ChatID).Error("cant send reply")
	}
}

func (up *UpdateProcessor) send(chatID int64, text string) {
	msg := api.NewMessage(chatID, text)
	msg.DisableNotification = true
	if _, err := up.s.GetBot().Send(msg); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("cant send message")
	}
}
