package statistics

import (
	"context"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"github.com/fatflowers/astrocashier/internal/models"
	"github.com/fatflowers/astrocashier/internal/platform/db/dbtest"
	"github.com/fatflowers/astrocashier/pkg/clock"
	"github.com/fatflowers/astrocashier/pkg/tool"
	"github.com/fatflowers/astrocashier/pkg/types"
)

func TestGetPaymentStatistic(t *testing.T) {
	ctx := context.Background()
	gdb := dbtest.Open(t)
	now := time.Date(2026, 5, 3, 12, 0, 0, 0, time.UTC)
	day1 := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 5, 2, 9, 0, 0, 0, time.UTC)

	payments := []*models.Payment{
		{ID: 1, SubscriberID: "1", Amount: "149.00", Status: types.PaymentStatusPaid, PaidAt: lo.ToPtr(day1)},
		{ID: 2, SubscriberID: "2", Amount: "149.00", Status: types.PaymentStatusPaid, PaidAt: lo.ToPtr(day1.Add(time.Hour))},
		{ID: 3, SubscriberID: "3", Amount: "99.50", Status: types.PaymentStatusPaid, PaidAt: lo.ToPtr(day2), IsTest: true},
		{ID: 4, SubscriberID: "4", Amount: "149.00", Status: types.PaymentStatusPending},
	}
	require.NoError(t, gdb.Create(payments).Error)
	require.NoError(t, gdb.Create(&models.Subscription{
		SubscriberID: "1", Status: types.SubscriptionStatusActive, ExpireAt: now.Add(time.Hour),
		Source: types.ActivationSourceWebhook, ActivatedAt: day1,
	}).Error)

	s := New(gdb, clock.Fixed(now))
	resp, err := s.GetPaymentStatistic(ctx, &PaymentStatisticRequest{
		DataItems: []*PaymentStatisticDataItem{
			{ID: StatisticTypeDailyPaidCount},
			{ID: StatisticTypeDailyGmv},
			{ID: StatisticTypeTotalGmv},
			{ID: StatisticTypeActiveSubscriptionCount},
		},
	})
	require.NoError(t, err)

	require.Equal(t, []PaymentStatisticResponseDataItem{
		{Date: "2026-05-01", Value: 2},
		{Date: "2026-05-02", Value: 1},
	}, resp.DataItems[StatisticTypeDailyPaidCount])

	require.Equal(t, []PaymentStatisticResponseDataItem{
		{Date: "2026-05-02", Label: "RUB", Value: 1, Amount: "99.50"},
		{Date: "2026-05-01", Label: "RUB", Value: 2, Amount: "298.00"},
	}, resp.DataItems[StatisticTypeDailyGmv])

	require.Equal(t, "397.50", resp.DataItems[StatisticTypeTotalGmv][0].Amount)
	require.EqualValues(t, 3, resp.DataItems[StatisticTypeTotalGmv][0].Value)

	require.EqualValues(t, 1, resp.DataItems[StatisticTypeActiveSubscriptionCount][0].Value)
}

func TestGetPaymentStatistic_DailyActivationCount(t *testing.T) {
	ctx := context.Background()
	gdb := dbtest.Open(t)
	day1 := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 5, 2, 23, 30, 0, 0, time.UTC)

	rows := []struct {
		at     time.Time
		source types.ActivationSource
	}{
		{day1, types.ActivationSourceWebhook},
		{day1.Add(2 * time.Hour), types.ActivationSourceWebhook},
		{day1.Add(3 * time.Hour), types.ActivationSourceAdmin},
		{day2, types.ActivationSourceFallback},
	}
	for i, r := range rows {
		require.NoError(t, gdb.Create(&models.SubscriptionLog{
			ID:           tool.GenerateUUIDV7(),
			SubscriberID: types.NewSubscriberID(int64(i + 1)),
			Source:       r.source,
			CreatedAt:    r.at,
		}).Error)
	}

	s := New(gdb, clock.Fixed(day2))
	resp, err := s.GetPaymentStatistic(ctx, &PaymentStatisticRequest{
		DataItems: []*PaymentStatisticDataItem{{ID: StatisticTypeDailyActivationCount}},
	})
	require.NoError(t, err)
	require.Equal(t, []PaymentStatisticResponseDataItem{
		{Date: "2026-05-02", Label: "fallback", Value: 1},
		{Date: "2026-05-01", Label: "admin", Value: 1},
		{Date: "2026-05-01", Label: "webhook", Value: 2},
	}, resp.DataItems[StatisticTypeDailyActivationCount])
}

func TestGetPaymentStatistic_Filters(t *testing.T) {
	ctx := context.Background()
	gdb := dbtest.Open(t)
	day := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, gdb.Create([]*models.Payment{
		{ID: 1, SubscriberID: "1", Amount: "149.00", Status: types.PaymentStatusPaid, PaidAt: lo.ToPtr(day)},
		{ID: 2, SubscriberID: "2", Amount: "1.00", Status: types.PaymentStatusPaid, PaidAt: lo.ToPtr(day), IsTest: true},
	}).Error)

	s := New(gdb, clock.Fixed(day))
	resp, err := s.GetPaymentStatistic(ctx, &PaymentStatisticRequest{
		Filters: []*types.CommonFilter{
			{Field: "is_test", Operator: types.CommonFilterOperatorEq, Values: []any{false}},
			{Field: "unknown", Operator: types.CommonFilterOperatorEq, Values: []any{1}},
		},
		DataItems: []*PaymentStatisticDataItem{{ID: StatisticTypeDailyGmv}},
	})
	require.NoError(t, err)
	require.Equal(t, "149.00", resp.DataItems[StatisticTypeDailyGmv][0].Amount)
}

func TestGetPaymentStatistic_InvalidItem(t *testing.T) {
	s := New(dbtest.Open(t), clock.SystemClock{})
	_, err := s.GetPaymentStatistic(context.Background(), &PaymentStatisticRequest{
		DataItems: []*PaymentStatisticDataItem{{ID: "renewal_success_rate"}},
	})
	require.Error(t, err)
}
