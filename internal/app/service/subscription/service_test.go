package subscription

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fatflowers/astrocashier/internal/app/service/payment"
	"github.com/fatflowers/astrocashier/internal/app/service/subscriber"
	"github.com/fatflowers/astrocashier/internal/models"
	"github.com/fatflowers/astrocashier/internal/platform/db/dbtest"
	"github.com/fatflowers/astrocashier/pkg/config"
	"github.com/fatflowers/astrocashier/pkg/metrics"
	"github.com/fatflowers/astrocashier/pkg/types"
)

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	db       *gorm.DB
	clock    *manualClock
	subs     *Service
	resolver *Resolver
	payments *payment.Ledger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gdb := dbtest.Open(t)
	log := zap.NewNop().Sugar()
	cfg := &config.Config{PaymentItem: types.PaymentItem{Price: "149", DurationHour: 720}}
	clk := &manualClock{now: time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)}

	subs := NewService(cfg, gdb, subscriber.NewService(gdb, log), clk, log)
	payments := payment.NewLedger(gdb)
	return &fixture{
		db:       gdb,
		clock:    clk,
		subs:     subs,
		resolver: NewResolver(gdb, subs, payments, clk, log),
		payments: payments,
	}
}

func (f *fixture) paid(t *testing.T, id types.InvoiceID, sid types.SubscriberID) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.payments.Create(ctx, &models.Payment{ID: id, SubscriberID: sid, Amount: "149.00", Status: types.PaymentStatusPending}))
	ok, err := f.payments.MarkPaid(ctx, id, f.clock.Now())
	require.NoError(t, err)
	require.True(t, ok)
}

func TestActivate_ReplacesWindowAndCreatesSubscriber(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	start := f.clock.Now()
	inv := types.InvoiceID(1001)

	err := f.db.Transaction(func(tx *gorm.DB) error {
		_, err := f.subs.Activate(ctx, tx, ActivateRequest{SubscriberID: "42", InvoiceID: &inv, Source: types.ActivationSourceWebhook})
		return err
	})
	require.NoError(t, err)

	sub, err := f.subs.Get(ctx, "42")
	require.NoError(t, err)
	require.Equal(t, types.SubscriptionStatusActive, sub.Status)
	require.True(t, sub.ExpireAt.Equal(start.Add(720*time.Hour)))
	require.Equal(t, types.ActivationSourceWebhook, sub.Source)
	require.True(t, sub.Applied(1001))

	var who models.Subscriber
	require.NoError(t, f.db.First(&who, "id = ?", "42").Error)
	require.False(t, who.OnboardingCompleted)

	// a second activation overwrites instead of extending
	f.clock.Advance(24 * time.Hour)
	_, err = f.subs.Grant(ctx, "42", "ops")
	require.NoError(t, err)

	sub, err = f.subs.Get(ctx, "42")
	require.NoError(t, err)
	require.True(t, sub.ExpireAt.Equal(start.Add(24*time.Hour+720*time.Hour)))
	require.Equal(t, types.ActivationSourceAdmin, sub.Source)
	require.True(t, sub.Applied(1001), "admin grant keeps the applied invoice")

	var logs []*models.SubscriptionLog
	require.NoError(t, f.db.Where("subscriber_id = ?", "42").Order("id").Find(&logs).Error)
	require.Len(t, logs, 2)
	require.Equal(t, types.ActivationSourceWebhook, logs[0].Source)
	require.Nil(t, logs[0].Before.Data())
	require.Equal(t, types.ActivationSourceAdmin, logs[1].Source)
	require.Equal(t, "ops", logs[1].Extra["operator_id"])
}

func TestActivate_RollbackLeavesNoTrace(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	inv := types.InvoiceID(1001)
	before := testutil.ToFloat64(activationCounter(t, types.ActivationSourceWebhook))

	err := f.db.Transaction(func(tx *gorm.DB) error {
		_, err := f.subs.Activate(ctx, tx, ActivateRequest{SubscriberID: "42", InvoiceID: &inv, Source: types.ActivationSourceWebhook})
		require.NoError(t, err)
		return errors.New("commit failed")
	})
	require.Error(t, err)

	sub, err := f.subs.Get(ctx, "42")
	require.NoError(t, err)
	require.Nil(t, sub)

	var n int64
	require.NoError(t, f.db.Model(&models.SubscriptionLog{}).Count(&n).Error)
	require.Zero(t, n)
	require.Equal(t, before, testutil.ToFloat64(activationCounter(t, types.ActivationSourceWebhook)))
}

func TestCountActive(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.subs.Grant(ctx, "1", "ops")
	require.NoError(t, err)
	_, err = f.subs.Grant(ctx, "2", "ops")
	require.NoError(t, err)

	n, err := f.subs.CountActive(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	f.clock.Advance(721 * time.Hour)
	n, err = f.subs.CountActive(ctx)
	require.NoError(t, err)
	require.Zero(t, n)
}

// activationCounter installs an unregistered collector for the activation
// metric so increments become observable.
func activationCounter(t *testing.T, source types.ActivationSource) prometheus.Counter {
	t.Helper()
	m := metrics.MetricsSubscriptionActivation
	if m.MetricCollector == nil {
		m.MetricCollector = metrics.NewMetric(m, "test")
		t.Cleanup(func() { m.MetricCollector = nil })
	}
	vec, ok := m.MetricCollector.(*prometheus.CounterVec)
	require.True(t, ok)
	return vec.WithLabelValues(string(source))
}
