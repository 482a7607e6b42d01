package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fatflowers/astrocashier/pkg/config"
)

// Sender is the slice of *tgbotapi.BotAPI used for outbound messages.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// NewBotAPI connects to the Bot API. An empty token yields a nil bot, which
// turns the notifier into a no-op and disables polling.
func NewBotAPI(cfg *config.Config, l *zap.SugaredLogger) (*tgbotapi.BotAPI, error) {
	if cfg.Telegram.Token == "" {
		l.Warnw("telegram_token_empty", "effect", "notifications disabled")
		return nil, nil
	}
	bot, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	bot.Debug = cfg.Env == config.EnvDev
	l.Infow("telegram_bot_authorized", "username", bot.Self.UserName)
	return bot, nil
}

var Module = fx.Options(
	fx.Provide(NewBotAPI),
	fx.Provide(NewNotifier),
)
