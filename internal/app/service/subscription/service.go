package subscription

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fatflowers/astrocashier/internal/app/service/subscriber"
	"github.com/fatflowers/astrocashier/internal/models"
	"github.com/fatflowers/astrocashier/pkg/clock"
	"github.com/fatflowers/astrocashier/pkg/config"
	"github.com/fatflowers/astrocashier/pkg/logctx"
	"github.com/fatflowers/astrocashier/pkg/metrics"
	"github.com/fatflowers/astrocashier/pkg/tool"
	"github.com/fatflowers/astrocashier/pkg/types"
)

type Service struct {
	cfg         *config.Config
	db          *gorm.DB
	subscribers *subscriber.Service
	clock       clock.Clock
	log         *zap.SugaredLogger
}

func NewService(cfg *config.Config, db *gorm.DB, subscribers *subscriber.Service, clk clock.Clock, log *zap.SugaredLogger) *Service {
	return &Service{cfg: cfg, db: db, subscribers: subscribers, clock: clk, log: log}
}

// Get returns nil, nil when the subscriber never had a subscription.
func (s *Service) Get(ctx context.Context, id types.SubscriberID) (*models.Subscription, error) {
	return s.get(ctx, s.db, id)
}

func (s *Service) get(ctx context.Context, db *gorm.DB, id types.SubscriberID) (*models.Subscription, error) {
	var m models.Subscription
	if err := db.WithContext(ctx).Where("subscriber_id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	return &m, nil
}

type ActivateRequest struct {
	SubscriberID types.SubscriberID
	// InvoiceID is the paid invoice being applied. Nil keeps the invoice
	// recorded on the current row.
	InvoiceID  *types.InvoiceID
	Source     types.ActivationSource
	OperatorID string
}

// Activate replaces the subscriber's window with [now, now+duration) inside
// tx. The subscriber row is created first when payment precedes onboarding.
func (s *Service) Activate(ctx context.Context, tx *gorm.DB, req ActivateRequest) (*models.Subscription, error) {
	if req.SubscriberID == "" {
		return nil, types.ErrInvalidSubscriberID
	}
	if _, err := s.subscribers.WithTx(tx).CreateIfAbsent(ctx, req.SubscriberID, models.Subscriber{OnboardingCompleted: false}); err != nil {
		return nil, err
	}

	original, err := s.get(ctx, tx, req.SubscriberID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	m := &models.Subscription{
		SubscriberID: req.SubscriberID,
		Status:       types.SubscriptionStatusActive,
		ExpireAt:     now.Add(s.cfg.PaymentItem.Duration()),
		Source:       req.Source,
		InvoiceID:    req.InvoiceID,
		ActivatedAt:  now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if original != nil {
		m.CreatedAt = original.CreatedAt
		if m.InvoiceID == nil {
			m.InvoiceID = original.InvoiceID
		}
	}

	err = tx.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "subscriber_id"}}, UpdateAll: true}).
		Create(m).Error
	if err != nil {
		return nil, fmt.Errorf("failed to upsert subscription: %w", err)
	}

	extra := datatypes.JSONMap{}
	if req.OperatorID != "" {
		extra["operator_id"] = req.OperatorID
	}
	entry := &models.SubscriptionLog{
		ID:           tool.GenerateUUIDV7(),
		SubscriberID: m.SubscriberID,
		Source:       m.Source,
		InvoiceID:    m.InvoiceID,
		Before:       datatypes.NewJSONType(original),
		After:        datatypes.NewJSONType(m),
		Extra:        extra,
	}
	// the log row commits or rolls back with the window it describes
	if err := tx.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, fmt.Errorf("failed to save subscription log: %w", err)
	}

	return m, nil
}

// Activated records a committed activation. Callers invoke it only after
// the transaction passed to Activate has committed.
func (s *Service) Activated(ctx context.Context, m *models.Subscription) {
	if m == nil {
		return
	}
	logctx.FromCtx(ctx, s.log).Infow("subscription_activated",
		"subscriber_id", m.SubscriberID.String(),
		"source", m.Source,
		"expire_at", m.ExpireAt,
	)
	metrics.MetricsSubscriptionActivation.Inc(string(m.Source))
}

// Grant activates a window by hand without a payment.
func (s *Service) Grant(ctx context.Context, id types.SubscriberID, operatorID string) (*models.Subscription, error) {
	var m *models.Subscription
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		m, err = s.Activate(ctx, tx, ActivateRequest{
			SubscriberID: id,
			Source:       types.ActivationSourceAdmin,
			OperatorID:   operatorID,
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to grant subscription: %w", err)
	}
	s.Activated(ctx, m)
	return m, nil
}

// CountActive returns the number of windows open at the current time.
func (s *Service) CountActive(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("status = ? AND expire_at > ?", types.SubscriptionStatusActive, s.clock.Now()).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count active subscriptions: %w", err)
	}
	return n, nil
}
