package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fatflowers/astrocashier/internal/app/service/payment"
	"github.com/fatflowers/astrocashier/internal/app/service/subscriber"
	"github.com/fatflowers/astrocashier/internal/app/service/subscription"
	"github.com/fatflowers/astrocashier/pkg/config"
)

// UpdateSource is the long-poll half of *tgbotapi.BotAPI.
type UpdateSource interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

func newBot(api *tgbotapi.BotAPI, cfg *config.Config, issuer *payment.Issuer, resolver *subscription.Resolver, subscribers *subscriber.Service, log *zap.SugaredLogger) *Bot {
	if api == nil {
		return nil
	}
	return NewBot(api, cfg, issuer, resolver, subscribers, log)
}

// registerPolling starts the update loop when polling is enabled and a bot
// token is configured.
func registerPolling(lc fx.Lifecycle, cfg *config.Config, api *tgbotapi.BotAPI, b *Bot, log *zap.SugaredLogger) {
	if api == nil || b == nil || !cfg.Telegram.Polling {
		log.Infow("telegram_polling_disabled", "polling", cfg.Telegram.Polling, "bot_configured", api != nil)
		return
	}
	startPolling(lc, cfg, api, b, log)
}

func startPolling(lc fx.Lifecycle, cfg *config.Config, src UpdateSource, b *Bot, log *zap.SugaredLogger) {
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			u := tgbotapi.NewUpdate(0)
			u.Timeout = cfg.Telegram.PollTimeout
			updates := src.GetUpdatesChan(u)
			log.Infow("telegram_polling_started", "timeout", u.Timeout)
			go b.Run(ctx, updates)
			return nil
		},
		OnStop: func(context.Context) error {
			log.Infow("telegram_polling_stopped")
			src.StopReceivingUpdates()
			cancel()
			return nil
		},
	})
}

var Module = fx.Options(
	fx.Provide(newBot),
	fx.Invoke(registerPolling),
)
