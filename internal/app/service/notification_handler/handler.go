package notification_handler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	notificationlog "github.com/fatflowers/astrocashier/internal/app/service/notification_log"
	"github.com/fatflowers/astrocashier/internal/app/service/payment"
	"github.com/fatflowers/astrocashier/internal/app/service/subscription"
	"github.com/fatflowers/astrocashier/internal/models"
	"github.com/fatflowers/astrocashier/internal/platform/robokassa"
	"github.com/fatflowers/astrocashier/internal/platform/telegram"
	"github.com/fatflowers/astrocashier/pkg/clock"
	"github.com/fatflowers/astrocashier/pkg/config"
	"github.com/fatflowers/astrocashier/pkg/logctx"
	"github.com/fatflowers/astrocashier/pkg/metrics"
	"github.com/fatflowers/astrocashier/pkg/types"
)

var (
	ErrInvalidSignature = errors.New("invalid signature")
	ErrPaymentNotFound  = errors.New("payment not found")
	ErrUnsupported      = errors.New("unsupported provider")
)

// Notifier delivers a best-effort message to a subscriber.
type Notifier interface {
	SendMessage(ctx context.Context, to types.SubscriberID, text string)
}

// Verifier authenticates ResultURL callbacks.
type Verifier interface {
	VerifyResult(n *robokassa.ResultNotification) bool
}

type ReconcileResult struct {
	InvoiceID    types.InvoiceID      `json:"invoice_id"`
	SubscriberID types.SubscriberID   `json:"subscriber_id"`
	AlreadyPaid  bool                 `json:"already_paid"`
	Subscription *models.Subscription `json:"subscription,omitempty"`
}

// Response is the acknowledgement body the provider expects.
func (r *ReconcileResult) Response() string {
	return robokassa.SuccessResponse(r.InvoiceID)
}

type NotificationHandler struct {
	cfg      *config.Config
	db       *gorm.DB
	notifSvc *notificationlog.Service
	payments *payment.Ledger
	subSvc   *subscription.Service
	verifier Verifier
	notifier Notifier
	clock    clock.Clock
	Logger   *zap.SugaredLogger
}

func NewNotificationHandler(
	cfg *config.Config,
	db *gorm.DB,
	notif *notificationlog.Service,
	payments *payment.Ledger,
	sub *subscription.Service,
	verifier Verifier,
	notifier Notifier,
	clk clock.Clock,
	log *zap.SugaredLogger,
) *NotificationHandler {
	return &NotificationHandler{
		cfg:      cfg,
		db:       db,
		notifSvc: notif,
		payments: payments,
		subSvc:   sub,
		verifier: verifier,
		notifier: notifier,
		clock:    clk,
		Logger:   log,
	}
}

var Module = fx.Options(
	fx.Provide(NewNotificationHandler),
	fx.Provide(func(c *robokassa.Client) Verifier { return c }),
	fx.Provide(func(n *telegram.Notifier) Notifier { return n }),
)

// HandleNotification parses, journals and reconciles one provider callback.
func (h *NotificationHandler) HandleNotification(c *gin.Context, provider types.PaymentProvider) (res *ReconcileResult, resErr error) {
	ctx := c.Request.Context()

	var parser NotificationParser
	var err error
	switch provider {
	case types.PaymentProviderRobokassa:
		parser, err = GetRobokassaNotificationParser(c, h.clock.Now())
		if err != nil {
			metrics.MetricsPaymentCallback.Inc(string(provider), "rejected")
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, provider)
	}

	entry := h.notifSvc.Received(ctx, provider, parser.GetData(ctx))
	entry.NotificationTime = parser.GetNotificationTime(ctx)
	h.notifSvc.Save(ctx, entry)

	defer func() {
		result := map[string]any{}
		status := models.PaymentNotificationLogStatusHandled
		outcome := "handled"
		var subscriberID *string
		if res != nil {
			result["response"] = res.Response()
			result["already_paid"] = res.AlreadyPaid
			subscriberID = lo.ToPtr(res.SubscriberID.String())
			if res.AlreadyPaid {
				outcome = "duplicate"
			}
		}
		if resErr != nil {
			result["error"] = resErr.Error()
			status = models.PaymentNotificationLogStatusHandleFailed
			outcome = "failed"
			if IsRejection(resErr) {
				status = models.PaymentNotificationLogStatusRejected
				outcome = "rejected"
			}
		}
		metrics.MetricsPaymentCallback.Inc(string(provider), outcome)
		done := h.notifSvc.Finish(entry, status, result)
		done.SubscriberID = subscriberID
		h.notifSvc.Save(ctx, done)
	}()

	n, err := parser.GetNotification(ctx)
	if err != nil {
		logctx.FromCtx(ctx, h.Logger).Warnw("webhook_robokassa_malformed", "err", err)
		return nil, err
	}
	return h.Reconcile(ctx, n)
}

// IsRejection reports errors caused by the callback itself, as opposed to
// internal failures the provider should retry.
func IsRejection(err error) bool {
	return errors.Is(err, robokassa.ErrMissingParam) ||
		errors.Is(err, types.ErrInvalidInvoiceID) ||
		errors.Is(err, ErrMalformedBody) ||
		errors.Is(err, ErrInvalidSignature) ||
		errors.Is(err, ErrPaymentNotFound)
}

// Reconcile authenticates n and applies it to the ledgers. The paid
// transition and the activation commit together; a redelivery finds the
// payment already paid and changes nothing.
func (h *NotificationHandler) Reconcile(ctx context.Context, n *robokassa.ResultNotification) (*ReconcileResult, error) {
	lg := logctx.FromCtx(ctx, h.Logger).With("invoice_id", n.InvoiceID.String())

	if !h.verifier.VerifyResult(n) {
		lg.Warnw("webhook_robokassa_invalid_signature", "out_sum", n.OutSum)
		return nil, ErrInvalidSignature
	}

	p, err := h.payments.FindByID(ctx, n.InvoiceID)
	if err != nil {
		lg.Errorw("webhook_robokassa_lookup_failed", "err", err)
		return nil, err
	}
	if p == nil {
		lg.Warnw("webhook_robokassa_payment_not_found")
		return nil, ErrPaymentNotFound
	}
	if !types.SameAmount(n.OutSum, p.Amount) {
		lg.Warnw("webhook_robokassa_amount_mismatch", "out_sum", n.OutSum, "amount", p.Amount)
	}

	res := &ReconcileResult{InvoiceID: p.ID, SubscriberID: p.SubscriberID}
	err = h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		applied, err := h.payments.WithTx(tx).MarkPaid(ctx, p.ID, h.clock.Now())
		if err != nil {
			return err
		}
		if !applied {
			res.AlreadyPaid = true
			return nil
		}
		res.Subscription, err = h.subSvc.Activate(ctx, tx, subscription.ActivateRequest{
			SubscriberID: p.SubscriberID,
			InvoiceID:    &p.ID,
			Source:       types.ActivationSourceWebhook,
		})
		return err
	})
	if err != nil {
		lg.Errorw("webhook_robokassa_reconcile_failed", "err", err)
		return nil, fmt.Errorf("failed to reconcile payment: %w", err)
	}

	if res.AlreadyPaid {
		lg.Infow("webhook_robokassa_already_paid")
		return res, nil
	}

	h.subSvc.Activated(ctx, res.Subscription)
	lg.Infow("webhook_robokassa_handled", "subscriber_id", p.SubscriberID.String())
	go h.notifyActivated(context.WithoutCancel(ctx), res.SubscriberID, res.Subscription)
	return res, nil
}

func (h *NotificationHandler) notifyActivated(ctx context.Context, to types.SubscriberID, sub *models.Subscription) {
	defer func() {
		if r := recover(); r != nil {
			logctx.FromCtx(ctx, h.Logger).Errorw("payment_notify_panic", "subscriber_id", to.String(), "panic", r)
		}
	}()
	if h.notifier == nil || sub == nil {
		return
	}
	h.notifier.SendMessage(ctx, to, ActivatedText(sub.ExpireAt))
}

// ActivatedText is the confirmation sent after a successful payment.
func ActivatedText(expireAt time.Time) string {
	return fmt.Sprintf("✅ Оплата получена! Подписка активна до %s.", expireAt.Format("02.01.2006"))
}
