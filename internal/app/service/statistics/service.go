package statistics

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fatflowers/astrocashier/internal/models"
	"github.com/fatflowers/astrocashier/pkg/clock"
	"github.com/fatflowers/astrocashier/pkg/types"
)

type StatisticType string

const (
	// Daily counts and GMV of paid invoices
	StatisticTypeDailyPaidCount StatisticType = "daily_paid_count"
	StatisticTypeDailyGmv       StatisticType = "daily_gmv"
	StatisticTypeTotalGmv       StatisticType = "total_gmv"

	// Subscription related
	StatisticTypeDailyActivationCount    StatisticType = "daily_activation_count"
	StatisticTypeActiveSubscriptionCount StatisticType = "active_subscription_count"
)

// Filter fields accepted by payment based statistics.
var paymentFilterFields = []string{"paid_at", "is_test", "subscriber_id"}

var paymentStatistics = []StatisticType{StatisticTypeDailyPaidCount, StatisticTypeDailyGmv, StatisticTypeTotalGmv}

type PaymentStatisticDataItem struct {
	ID StatisticType `json:"id"`
}

type PaymentStatisticRequest struct {
	Filters   []*types.CommonFilter       `json:"filters"`
	DataItems []*PaymentStatisticDataItem `json:"data_items"`
}

// GetFilters returns the filters that apply to statisticType.
func (f *PaymentStatisticRequest) GetFilters(statisticType StatisticType) types.FiltersAnd {
	if f == nil || !lo.Contains(paymentStatistics, statisticType) {
		return nil
	}
	return lo.Filter(f.Filters, func(filter *types.CommonFilter, _ int) bool {
		return filter != nil && lo.Contains(paymentFilterFields, filter.Field)
	})
}

type PaymentStatisticResponseDataItem struct {
	Date   string `json:"date"`
	Label  string `json:"label,omitempty"`
	Value  int64  `json:"value"`
	Amount string `json:"amount,omitempty"`
}

type PaymentStatisticResponse struct {
	DataItems map[StatisticType][]PaymentStatisticResponseDataItem `json:"data_items"`
}

// Service provides statistics operations
type Service struct {
	db    *gorm.DB
	clock clock.Clock
}

func New(db *gorm.DB, clk clock.Clock) *Service { return &Service{db: db, clock: clk} }

var Module = fx.Options(
	fx.Provide(New),
)

type paidRow struct {
	PaidAt time.Time
	Amount string
}

// paidRows loads paid invoices; bucketing happens in Go so the same code
// runs on postgres and sqlite.
func (s *Service) paidRows(ctx context.Context, request *PaymentStatisticRequest, statisticType StatisticType) ([]paidRow, error) {
	var rows []paidRow
	q := s.db.WithContext(ctx).Model(&models.Payment{}).
		Select("paid_at, amount").
		Where("status = ?", types.PaymentStatusPaid)
	if filters := request.GetFilters(statisticType); len(filters) > 0 {
		q = q.Where(clause.Where{Exprs: []clause.Expression{filters}})
	}
	if err := q.Order("paid_at").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load paid payments: %w", err)
	}
	return rows, nil
}

func (s *Service) getDailyPaidCount(ctx context.Context, request *PaymentStatisticRequest) ([]PaymentStatisticResponseDataItem, error) {
	rows, err := s.paidRows(ctx, request, StatisticTypeDailyPaidCount)
	if err != nil {
		return nil, err
	}
	counts := lo.CountValuesBy(rows, func(r paidRow) string { return r.PaidAt.UTC().Format(time.DateOnly) })
	results := lo.MapToSlice(counts, func(date string, n int) PaymentStatisticResponseDataItem {
		return PaymentStatisticResponseDataItem{Date: date, Value: int64(n)}
	})
	sort.Slice(results, func(i, j int) bool { return results[i].Date < results[j].Date })
	return results, nil
}

func (s *Service) dailyGmv(ctx context.Context, request *PaymentStatisticRequest, statisticType StatisticType) ([]PaymentStatisticResponseDataItem, error) {
	rows, err := s.paidRows(ctx, request, statisticType)
	if err != nil {
		return nil, err
	}
	sums := map[string]decimal.Decimal{}
	counts := map[string]int64{}
	for _, r := range rows {
		d, err := decimal.NewFromString(r.Amount)
		if err != nil {
			return nil, fmt.Errorf("invalid stored amount %q: %w", r.Amount, err)
		}
		date := r.PaidAt.UTC().Format(time.DateOnly)
		sums[date] = sums[date].Add(d)
		counts[date]++
	}
	dates := lo.Keys(sums)
	sort.Strings(dates)
	return lo.Map(dates, func(date string, _ int) PaymentStatisticResponseDataItem {
		return PaymentStatisticResponseDataItem{Date: date, Label: "RUB", Value: counts[date], Amount: sums[date].StringFixed(2)}
	}), nil
}

func (s *Service) getDailyGmv(ctx context.Context, request *PaymentStatisticRequest) ([]PaymentStatisticResponseDataItem, error) {
	results, err := s.dailyGmv(ctx, request, StatisticTypeDailyGmv)
	if err != nil {
		return nil, err
	}
	// newest first, like the dashboard table
	return lo.Reverse(results), nil
}

// getTotalGmv returns the running total per day.
func (s *Service) getTotalGmv(ctx context.Context, request *PaymentStatisticRequest) ([]PaymentStatisticResponseDataItem, error) {
	daily, err := s.dailyGmv(ctx, request, StatisticTypeTotalGmv)
	if err != nil {
		return nil, err
	}
	total := decimal.Zero
	var count int64
	for i := range daily {
		d, _ := decimal.NewFromString(daily[i].Amount)
		total = total.Add(d)
		count += daily[i].Value
		daily[i].Amount = total.StringFixed(2)
		daily[i].Value = count
	}
	return lo.Reverse(daily), nil
}

type activationRow struct {
	CreatedAt time.Time
	Source    types.ActivationSource
}

func (s *Service) getDailyActivationCount(ctx context.Context, _ *PaymentStatisticRequest) ([]PaymentStatisticResponseDataItem, error) {
	var rows []activationRow
	if err := s.db.WithContext(ctx).Model(&models.SubscriptionLog{}).
		Select("created_at, source").
		Order("created_at").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load subscription logs: %w", err)
	}
	type key struct {
		date   string
		source types.ActivationSource
	}
	counts := lo.CountValuesBy(rows, func(r activationRow) key {
		return key{date: r.CreatedAt.UTC().Format(time.DateOnly), source: r.Source}
	})
	results := lo.MapToSlice(counts, func(k key, n int) PaymentStatisticResponseDataItem {
		return PaymentStatisticResponseDataItem{Date: k.date, Label: string(k.source), Value: int64(n)}
	})
	sort.Slice(results, func(i, j int) bool {
		if results[i].Date != results[j].Date {
			return results[i].Date > results[j].Date
		}
		return results[i].Label < results[j].Label
	})
	return results, nil
}

func (s *Service) getActiveSubscriptionCount(ctx context.Context, _ *PaymentStatisticRequest) ([]PaymentStatisticResponseDataItem, error) {
	var n int64
	now := s.clock.Now()
	if err := s.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("status = ?", types.SubscriptionStatusActive).
		Where("expire_at > ?", now).
		Count(&n).Error; err != nil {
		return nil, fmt.Errorf("failed to count active subscriptions: %w", err)
	}
	return []PaymentStatisticResponseDataItem{{Date: now.UTC().Format(time.DateOnly), Value: n}}, nil
}

func (s *Service) getPaymentStatistic(ctx context.Context, request *PaymentStatisticRequest, dataItem *PaymentStatisticDataItem) ([]PaymentStatisticResponseDataItem, error) {
	switch dataItem.ID {
	case StatisticTypeDailyPaidCount:
		return s.getDailyPaidCount(ctx, request)
	case StatisticTypeDailyGmv:
		return s.getDailyGmv(ctx, request)
	case StatisticTypeTotalGmv:
		return s.getTotalGmv(ctx, request)
	case StatisticTypeDailyActivationCount:
		return s.getDailyActivationCount(ctx, request)
	case StatisticTypeActiveSubscriptionCount:
		return s.getActiveSubscriptionCount(ctx, request)
	default:
		return nil, fmt.Errorf("invalid data item id: %s", dataItem.ID)
	}
}

func (s *Service) GetPaymentStatistic(ctx context.Context, request *PaymentStatisticRequest) (*PaymentStatisticResponse, error) {
	if request == nil {
		return nil, fmt.Errorf("nil request")
	}
	var wg sync.WaitGroup
	errChan := make(chan error, len(request.DataItems))
	resChan := make(chan *lo.Entry[StatisticType, []PaymentStatisticResponseDataItem], len(request.DataItems))

	for _, item := range request.DataItems {
		if item == nil {
			continue
		}
		wg.Add(1)
		go func(di *PaymentStatisticDataItem) {
			defer wg.Done()
			res, err := s.getPaymentStatistic(ctx, request, di)
			if err != nil {
				errChan <- err
				return
			}
			resChan <- &lo.Entry[StatisticType, []PaymentStatisticResponseDataItem]{Key: di.ID, Value: res}
		}(item)
	}

	wg.Wait()
	close(errChan)
	close(resChan)

	if err := <-errChan; err != nil {
		return nil, err
	}
	results := make(map[StatisticType][]PaymentStatisticResponseDataItem)
	for entry := range resChan {
		results[entry.Key] = entry.Value
	}
	return &PaymentStatisticResponse{DataItems: results}, nil
}
