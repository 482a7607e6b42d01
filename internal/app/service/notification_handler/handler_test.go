package notification_handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	notificationlog "github.com/fatflowers/astrocashier/internal/app/service/notification_log"
	"github.com/fatflowers/astrocashier/internal/app/service/payment"
	"github.com/fatflowers/astrocashier/internal/app/service/subscriber"
	"github.com/fatflowers/astrocashier/internal/app/service/subscription"
	"github.com/fatflowers/astrocashier/internal/models"
	"github.com/fatflowers/astrocashier/internal/platform/db/dbtest"
	"github.com/fatflowers/astrocashier/internal/platform/robokassa"
	"github.com/fatflowers/astrocashier/pkg/clock"
	"github.com/fatflowers/astrocashier/pkg/config"
	"github.com/fatflowers/astrocashier/pkg/types"
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent map[types.SubscriberID][]string
}

func (n *recordingNotifier) SendMessage(_ context.Context, to types.SubscriberID, text string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.sent == nil {
		n.sent = map[types.SubscriberID][]string{}
	}
	n.sent[to] = append(n.sent[to], text)
}

func (n *recordingNotifier) count(to types.SubscriberID) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent[to])
}

type fixture struct {
	db       *gorm.DB
	handler  *NotificationHandler
	payments *payment.Ledger
	subs     *subscription.Service
	notifier *recordingNotifier
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gdb := dbtest.Open(t)
	log := zap.NewNop().Sugar()
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	clk := clock.Fixed(now)
	cfg := &config.Config{
		PaymentItem: types.PaymentItem{Price: "149", DurationHour: 720},
		Robokassa: config.RobokassaConfig{
			MerchantLogin: "astro", Password1: "p1", Password2: "p2",
			HashAlgorithm: "md5", BaseURL: "https://auth.robokassa.ru/Merchant/Index.aspx",
		},
	}
	payments := payment.NewLedger(gdb)
	subs := subscription.NewService(cfg, gdb, subscriber.NewService(gdb, log), clk, log)
	notifier := &recordingNotifier{}
	h := NewNotificationHandler(cfg, gdb, notificationlog.New(gdb, log), payments, subs, robokassa.NewClient(cfg), notifier, clk, log)
	return &fixture{db: gdb, handler: h, payments: payments, subs: subs, notifier: notifier, now: now}
}

func (f *fixture) pending(t *testing.T, id types.InvoiceID, sid types.SubscriberID) {
	t.Helper()
	require.NoError(t, f.payments.Create(context.Background(), &models.Payment{
		ID: id, SubscriberID: sid, Amount: "149.00", Status: types.PaymentStatusPending,
	}))
}

func signed(outSum string, id types.InvoiceID) *robokassa.ResultNotification {
	return &robokassa.ResultNotification{
		OutSum:         outSum,
		RawInvID:       id.String(),
		InvoiceID:      id,
		SignatureValue: strings.ToUpper(robokassa.SignResult(robokassa.HashMD5, outSum, id.String(), "p2")),
	}
}

func TestReconcile_DeliveredTwice(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.pending(t, 1001, "42")

	res, err := f.handler.Reconcile(ctx, signed("149.00", 1001))
	require.NoError(t, err)
	require.False(t, res.AlreadyPaid)
	require.Equal(t, "OK1001", res.Response())

	sub, err := f.subs.Get(ctx, "42")
	require.NoError(t, err)
	require.True(t, sub.ExpireAt.Equal(f.now.Add(720*time.Hour)))
	require.Equal(t, types.ActivationSourceWebhook, sub.Source)

	p, err := f.payments.FindByID(ctx, 1001)
	require.NoError(t, err)
	require.Equal(t, types.PaymentStatusPaid, p.Status)

	res, err = f.handler.Reconcile(ctx, signed("149.00", 1001))
	require.NoError(t, err)
	require.True(t, res.AlreadyPaid)
	require.Equal(t, "OK1001", res.Response())

	again, err := f.subs.Get(ctx, "42")
	require.NoError(t, err)
	require.True(t, again.UpdatedAt.Equal(sub.UpdatedAt), "second delivery does not touch the subscription")

	require.Eventually(t, func() bool { return f.notifier.count("42") == 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, 1, f.notifier.count("42"), "notified once")
}

func TestReconcile_ConcurrentRedelivery(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.pending(t, 1001, "42")

	const deliveries = 10
	var wg sync.WaitGroup
	results := make([]*ReconcileResult, deliveries)
	errs := make([]error, deliveries)
	for i := 0; i < deliveries; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = f.handler.Reconcile(ctx, signed("149.00", 1001))
		}(i)
	}
	wg.Wait()

	applied := 0
	for i := range results {
		require.NoError(t, errs[i])
		require.Equal(t, "OK1001", results[i].Response())
		if !results[i].AlreadyPaid {
			applied++
		}
	}
	require.Equal(t, 1, applied)

	var logs int64
	require.NoError(t, f.db.Model(&models.SubscriptionLog{}).Where("subscriber_id = ?", "42").Count(&logs).Error)
	require.EqualValues(t, 1, logs)

	require.Eventually(t, func() bool { return f.notifier.count("42") == 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, 1, f.notifier.count("42"))
}

func TestReconcile_TamperedAmount(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.pending(t, 1001, "42")

	n := signed("149.00", 1001)
	n.OutSum = "150.00"
	_, err := f.handler.Reconcile(ctx, n)
	require.ErrorIs(t, err, ErrInvalidSignature)

	p, err := f.payments.FindByID(ctx, 1001)
	require.NoError(t, err)
	require.Equal(t, types.PaymentStatusPending, p.Status)

	sub, err := f.subs.Get(ctx, "42")
	require.NoError(t, err)
	require.Nil(t, sub)
}

func TestReconcile_UnknownInvoice(t *testing.T) {
	f := newFixture(t)
	_, err := f.handler.Reconcile(context.Background(), signed("149.00", 777))
	require.ErrorIs(t, err, ErrPaymentNotFound)
	require.True(t, IsRejection(err))
}

func TestReconcile_ProviderAmountRendering(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.pending(t, 1001, "42")

	// the provider may echo the amount with six decimals and signs that text
	res, err := f.handler.Reconcile(ctx, signed("149.000000", 1001))
	require.NoError(t, err)
	require.False(t, res.AlreadyPaid)
}

func TestReconcile_CreatesMissingSubscriber(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.pending(t, 1001, "99")

	_, err := f.handler.Reconcile(ctx, signed("149.00", 1001))
	require.NoError(t, err)

	var who models.Subscriber
	require.NoError(t, f.db.First(&who, "id = ?", "99").Error)
	require.False(t, who.OnboardingCompleted)
}

func TestHandleNotification_JournalsCallback(t *testing.T) {
	gin.SetMode(gin.TestMode)
	f := newFixture(t)
	f.pending(t, 1001, "42")

	n := signed("149.00", 1001)
	form := url.Values{"OutSum": {n.OutSum}, "InvId": {"1001"}, "SignatureValue": {n.SignatureValue}}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v2/payment/webhook/robokassa", strings.NewReader(form.Encode()))
	c.Request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := f.handler.HandleNotification(c, types.PaymentProviderRobokassa)
	require.NoError(t, err)
	require.Equal(t, "OK1001", res.Response())

	require.Eventually(t, func() bool {
		var row models.PaymentNotificationLog
		if err := f.db.Where("invoice_id = ?", "1001").First(&row).Error; err != nil {
			return false
		}
		return row.Status == models.PaymentNotificationLogStatusHandled && row.SubscriberID != nil && *row.SubscriberID == "42"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHandleNotification_MissingField(t *testing.T) {
	gin.SetMode(gin.TestMode)
	f := newFixture(t)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v2/payment/webhook/robokassa?OutSum=149.00&InvId=1001", nil)

	_, err := f.handler.HandleNotification(c, types.PaymentProviderRobokassa)
	require.ErrorIs(t, err, robokassa.ErrMissingParam)
	require.True(t, IsRejection(err))
}

func TestActivatedText(t *testing.T) {
	require.Equal(t, "✅ Оплата получена! Подписка активна до 31.05.2026.", ActivatedText(time.Date(2026, 5, 31, 10, 0, 0, 0, time.UTC)))
}
