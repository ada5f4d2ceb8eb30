package bot

import (
	"context"
	"time"

	api "github.com/OvyFlash/telegram-bot-api"
	"github.com/pkg/errors"

	"github.com/modwarden/modwarden/internal/moderation"
)

// telegramEnforcer applies the engine's decisions through the bot API.
type telegramEnforcer struct {
	bot *api.BotAPI
}

func NewTelegramEnforcer(bot *api.BotAPI) moderation.Enforcer {
	return &telegramEnforcer{bot: bot}
}

func (e *telegramEnforcer) Restrict(ctx context.Context, chatID, userID int64, until time.Time) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	config := api.RestrictChatMemberConfig{
		ChatMemberConfig: api.ChatMemberConfig{
			ChatConfig: api.ChatConfig{ChatID: chatID},
			UserID:     userID,
		},
		Permissions: &api.ChatPermissions{},
		UntilDate:   until.Unix(),

		UseIndependentChatPermissions: true,
	}
	if _, err := e.bot.Request(config); err != nil {
		return errors.WithMessage(err, "cant restrict")
	}
	return nil
}

func (e *telegramEnforcer) Unrestrict(ctx context.Context, chatID, userID int64) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	config := api.RestrictChatMemberConfig{
		ChatMemberConfig: api.ChatMemberConfig{
			ChatConfig: api.ChatConfig{ChatID: chatID},
			UserID:     userID,
		},
		Permissions: &api.ChatPermissions{
			CanSendMessages:       true,
			CanSendAudios:         true,
			CanSendDocuments:      true,
			CanSendPhotos:         true,
			CanSendVideos:         true,
			CanSendVideoNotes:     true,
			CanSendVoiceNotes:     true,
			CanSendPolls:          true,
			CanSendOtherMessages:  true,
			CanAddWebPagePreviews: true,
			CanChangeInfo:         true,
			CanInviteUsers:        true,
			CanPinMessages:        true,
			CanManageTopics:       true,
		},
		UntilDate: 0,
	}
	if _, err := e.bot.Request(config); err != nil {
		return errors.WithMessage(err, "cant unrestrict")
	}
	return nil
}

func (e *telegramEnforcer) Remove(ctx context.Context, chatID, userID int64) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	config := api.BanChatMemberConfig{
		ChatMemberConfig: api.ChatMemberConfig{
			ChatConfig: api.ChatConfig{ChatID: chatID},
			UserID:     userID,
		},
		UntilDate: 0,
	}
	if _, err := e.bot.Request(config); err != nil {
		return errors.WithMessage(err, "cant remove")
	}
	return nil
}
