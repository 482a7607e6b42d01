package subscriber

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fatflowers/astrocashier/internal/models"
	"github.com/fatflowers/astrocashier/pkg/types"
)

// Service is the subscriber directory.
type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewService(db *gorm.DB, log *zap.SugaredLogger) *Service {
	return &Service{db: db, log: log}
}

var Module = fx.Options(
	fx.Provide(NewService),
)

// WithTx returns a copy bound to tx.
func (s *Service) WithTx(tx *gorm.DB) *Service {
	return &Service{db: tx, log: s.log}
}

// Get returns nil, nil when the subscriber is unknown.
func (s *Service) Get(ctx context.Context, id types.SubscriberID) (*models.Subscriber, error) {
	var m models.Subscriber
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get subscriber: %w", err)
	}
	return &m, nil
}

// CreateIfAbsent inserts defaults under id unless a row exists already.
// It reports whether a row was created.
func (s *Service) CreateIfAbsent(ctx context.Context, id types.SubscriberID, defaults models.Subscriber) (bool, error) {
	defaults.ID = id
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&defaults)
	if res.Error != nil {
		return false, fmt.Errorf("failed to create subscriber: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// CompleteOnboarding marks the subscriber as onboarded, creating it if needed.
func (s *Service) CompleteOnboarding(ctx context.Context, id types.SubscriberID) error {
	if _, err := s.CreateIfAbsent(ctx, id, models.Subscriber{}); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Model(&models.Subscriber{}).
		Where("id = ?", id).
		Update("onboarding_completed", true).Error; err != nil {
		return fmt.Errorf("failed to complete onboarding: %w", err)
	}
	return nil
}
