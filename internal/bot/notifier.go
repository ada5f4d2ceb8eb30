package bot

import (
	"context"

	api "github.com/OvyFlash/telegram-bot-api"
	log "github.com/sirupsen/logrus"

	"github.com/modwarden/modwarden/internal/moderation"
)

// adminNotifier fans a text out to every configured administrator.
// Failures are logged per admin and never stop the loop: one unreachable
// admin must not silence the rest.
type adminNotifier struct {
	bot      *api.BotAPI
	adminIDs []int64
}

func NewAdminNotifier(bot *api.BotAPI, adminIDs []int64) moderation.Notifier {
	return &adminNotifier{bot: bot, adminIDs: adminIDs}
}

func (n *adminNotifier) NotifyAdmins(ctx context.Context, text string) {
	for _, adminID := range n.adminIDs {
		select {
		case <-ctx.Done():
			return
		default:
		}
		msg := api.NewMessage(adminID, text)
		msg.DisableNotification = true
		if _, err := n.bot.Send(msg); err != nil {
			log.WithError(err).WithField("admin_id", adminID).Error("cant notify admin")
		}
	}
}
