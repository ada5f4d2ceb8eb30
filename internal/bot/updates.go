package bot

import (
	"context"

	api "github.com/OvyFlash/telegram-bot-api"
	"github.com/pkg/errors"
)

// GetUpdatesChans long-polls the bot API until the context is canceled or
// polling fails. The error channel is buffered so the poller never blocks
// on a receiver that already gave up.
func GetUpdatesChans(ctx context.Context, botAPI *api.BotAPI, cfg api.UpdateConfig) (api.UpdatesChannel, chan error) {
	updates := make(chan api.Update, botAPI.Buffer)
	errs := make(chan error, 1)

	go func() {
		defer close(updates)
		for {
			if ctx.Err() != nil {
				errs <- ctx.Err()
				return
			}
			batch, err := botAPI.GetUpdates(cfg)
			if err != nil {
				errs <- errors.WithMessage(err, "get updates")
				return
			}
			for _, u := range batch {
				if u.UpdateID < cfg.Offset {
					continue
				}
				cfg.Offset = u.UpdateID + 1
				select {
				case updates <- u:
				case <-ctx.Done():
					errs <- ctx.Err()
					return
				}
			}
		}
	}()

	return updates, errs
}
