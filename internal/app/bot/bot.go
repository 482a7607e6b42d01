package bot

import (
	"context"
	"fmt"
	"html"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/fatflowers/astrocashier/internal/app/service/payment"
	"github.com/fatflowers/astrocashier/internal/platform/telegram"
	"github.com/fatflowers/astrocashier/pkg/config"
	"github.com/fatflowers/astrocashier/pkg/logctx"
	"github.com/fatflowers/astrocashier/pkg/types"
)

const (
	CommandStart     = "start"
	CommandSubscribe = "subscribe"
	CommandStatus    = "status"
)

const (
	textWelcome     = "✨ Добро пожаловать! Команда /subscribe оформляет подписку, /status показывает её срок."
	textActive      = "✅ Подписка уже активна."
	textUnavailable = "⚠️ Оплата временно недоступна. Попробуйте позже."
	textFailed      = "⚠️ Что-то пошло не так. Попробуйте позже."
	textNoSub       = "🔒 Подписка не активна. Оформить: /subscribe"
	textUnknown     = "Команды: /subscribe, /status"
	payButton       = "💳 Оплатить"
)

type PaymentRequester interface {
	RequestPayment(ctx context.Context, id types.SubscriberID) (*payment.IssueResult, error)
}

type StatusReader interface {
	Status(ctx context.Context, id types.SubscriberID) (*types.UserSubscriptionInfo, error)
}

type Onboarder interface {
	CompleteOnboarding(ctx context.Context, id types.SubscriberID) error
}

// Bot answers the payment related commands. The content menu lives elsewhere.
type Bot struct {
	sender      telegram.Sender
	item        types.PaymentItem
	issuer      PaymentRequester
	status      StatusReader
	subscribers Onboarder
	log         *zap.SugaredLogger
}

func NewBot(sender telegram.Sender, cfg *config.Config, issuer PaymentRequester, status StatusReader, subscribers Onboarder, log *zap.SugaredLogger) *Bot {
	return &Bot{
		sender:      sender,
		item:        cfg.PaymentItem,
		issuer:      issuer,
		status:      status,
		subscribers: subscribers,
		log:         log,
	}
}

// Run dispatches updates until ctx is done or updates is closed. Every update
// is handled on its own goroutine.
func (b *Bot) Run(ctx context.Context, updates <-chan tgbotapi.Update) {
	for {
		select {
		case <-ctx.Done():
			return
		case u, ok := <-updates:
			if !ok {
				return
			}
			go b.safeHandle(ctx, u)
		}
	}
}

func (b *Bot) safeHandle(ctx context.Context, u tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Errorw("telegram_update_panic", "update_id", u.UpdateID, "panic", r)
		}
	}()
	b.HandleUpdate(ctx, u)
}

// HandleUpdate reacts to a single command message; everything else is ignored.
func (b *Bot) HandleUpdate(ctx context.Context, u tgbotapi.Update) {
	msg := u.Message
	if msg == nil || msg.From == nil || msg.Chat == nil || !msg.IsCommand() {
		return
	}
	id := types.NewSubscriberID(msg.From.ID)
	ctx = context.WithValue(ctx, logctx.SubscriberKey, id.String())
	lg := logctx.FromCtx(ctx, b.log).With("command", msg.Command())

	var reply tgbotapi.Chattable
	switch msg.Command() {
	case CommandStart:
		reply = b.start(ctx, lg, msg.Chat.ID, id)
	case CommandSubscribe:
		reply = b.subscribe(ctx, lg, msg.Chat.ID, id)
	case CommandStatus:
		reply = b.subscriptionStatus(ctx, lg, msg.Chat.ID, id)
	default:
		reply = tgbotapi.NewMessage(msg.Chat.ID, textUnknown)
	}

	if _, err := b.sender.Send(reply); err != nil {
		if telegram.IsExpectedSendError(err) {
			lg.Warnw("telegram_reply_failed_expected", "err", err)
			return
		}
		lg.Errorw("telegram_reply_failed_unexpected", "err", err)
	}
}

func (b *Bot) start(ctx context.Context, lg *zap.SugaredLogger, chatID int64, id types.SubscriberID) tgbotapi.Chattable {
	if err := b.subscribers.CompleteOnboarding(ctx, id); err != nil {
		lg.Errorw("telegram_start_failed", "err", err)
		return tgbotapi.NewMessage(chatID, textFailed)
	}
	return tgbotapi.NewMessage(chatID, textWelcome)
}

func (b *Bot) subscribe(ctx context.Context, lg *zap.SugaredLogger, chatID int64, id types.SubscriberID) tgbotapi.Chattable {
	res, err := b.issuer.RequestPayment(ctx, id)
	if err != nil {
		lg.Errorw("telegram_subscribe_failed", "err", err)
		return tgbotapi.NewMessage(chatID, textUnavailable)
	}
	switch res.Outcome {
	case payment.IssueOutcomeBlocked:
		return tgbotapi.NewMessage(chatID, textActive)
	case payment.IssueOutcomeMisconfigured:
		return tgbotapi.NewMessage(chatID, textUnavailable)
	}
	return PaymentPrompt(chatID, b.item, res.PaymentURL)
}

func (b *Bot) subscriptionStatus(ctx context.Context, lg *zap.SugaredLogger, chatID int64, id types.SubscriberID) tgbotapi.Chattable {
	info, err := b.status.Status(ctx, id)
	if err != nil {
		lg.Errorw("telegram_status_failed", "err", err)
		return tgbotapi.NewMessage(chatID, textFailed)
	}
	if !info.Entitled || info.ExpireAt == nil {
		return tgbotapi.NewMessage(chatID, textNoSub)
	}
	return tgbotapi.NewMessage(chatID, ActiveUntilText(*info.ExpireAt))
}

// PaymentPrompt is the offer message with a URL button to the payment page.
func PaymentPrompt(chatID int64, item types.PaymentItem, paymentURL string) tgbotapi.MessageConfig {
	amount, err := types.FormatAmount(item.Price)
	if err != nil {
		amount = item.Price
	}
	text := fmt.Sprintf("🔒 <b>Эта функция доступна по подписке</b>\n\nПодписка на %d дней — <b>%s ₽</b>\n\n%s",
		item.DurationDays(), html.EscapeString(amount), html.EscapeString(item.Description))
	m := tgbotapi.NewMessage(chatID, text)
	m.ParseMode = tgbotapi.ModeHTML
	m.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonURL(payButton, paymentURL)),
	)
	return m
}

func ActiveUntilText(expireAt time.Time) string {
	return "✅ Подписка активна до " + expireAt.Format("02.01.2006") + "."
}
