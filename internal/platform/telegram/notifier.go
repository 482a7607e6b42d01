package telegram

import (
	"context"
	"errors"
	"net/http"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/fatflowers/astrocashier/pkg/logctx"
	"github.com/fatflowers/astrocashier/pkg/types"
)

// Notifier delivers best-effort messages to subscribers. SendMessage never
// returns an error; failures are logged and dropped.
type Notifier struct {
	sender Sender
	l      *zap.SugaredLogger
}

// NewNotifier accepts a nil *tgbotapi.BotAPI; the notifier then only logs.
func NewNotifier(bot *tgbotapi.BotAPI, l *zap.SugaredLogger) *Notifier {
	if bot == nil {
		return &Notifier{l: l}
	}
	return &Notifier{sender: bot, l: l}
}

// NewNotifierWithSender is used by tests and by callers owning their transport.
func NewNotifierWithSender(sender Sender, l *zap.SugaredLogger) *Notifier {
	return &Notifier{sender: sender, l: l}
}

func (n *Notifier) SendMessage(ctx context.Context, to types.SubscriberID, text string) {
	lg := logctx.FromCtx(ctx, n.l).With("subscriber_id", to.String())
	if n.sender == nil {
		lg.Warnw("telegram_send_skipped", "reason", "bot not configured")
		return
	}
	chatID, err := to.ChatID()
	if err != nil {
		lg.Warnw("telegram_send_failed_unexpected", "err", err)
		return
	}
	if _, err := n.sender.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		if IsExpectedSendError(err) {
			lg.Warnw("telegram_send_failed_expected", "err", err)
			return
		}
		lg.Warnw("telegram_send_failed_unexpected", "err", err)
		return
	}
	lg.Infow("telegram_message_sent")
}

// IsExpectedSendError reports failures caused by the recipient's state
// (blocked the bot, chat gone, account deactivated) rather than by us.
func IsExpectedSendError(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusForbidden {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{"bot was blocked", "chat not found", "user is deactivated", "forbidden"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
