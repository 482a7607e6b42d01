package subscription

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fatflowers/astrocashier/internal/app/service/payment"
	"github.com/fatflowers/astrocashier/internal/models"
	"github.com/fatflowers/astrocashier/pkg/clock"
	"github.com/fatflowers/astrocashier/pkg/logctx"
	"github.com/fatflowers/astrocashier/pkg/types"
)

// Resolver answers entitlement questions from the local ledgers and repairs
// the subscription when a paid invoice was never applied.
type Resolver struct {
	db       *gorm.DB
	subs     *Service
	payments *payment.Ledger
	clock    clock.Clock
	log      *zap.SugaredLogger
}

func NewResolver(db *gorm.DB, subs *Service, payments *payment.Ledger, clk clock.Clock, log *zap.SugaredLogger) *Resolver {
	return &Resolver{db: db, subs: subs, payments: payments, clock: clk, log: log}
}

func (r *Resolver) IsEntitled(ctx context.Context, id types.SubscriberID) (bool, error) {
	sub, err := r.resolve(ctx, id)
	if err != nil {
		return false, err
	}
	return sub.ActiveAt(r.clock.Now()), nil
}

// Status reports entitlement together with the current window.
func (r *Resolver) Status(ctx context.Context, id types.SubscriberID) (*types.UserSubscriptionInfo, error) {
	sub, err := r.resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	info := &types.UserSubscriptionInfo{Entitled: sub.ActiveAt(r.clock.Now())}
	if sub != nil {
		expireAt := sub.ExpireAt
		info.Status = string(sub.Status)
		info.ExpireAt = &expireAt
		info.Source = sub.Source
	}
	return info, nil
}

func (r *Resolver) resolve(ctx context.Context, id types.SubscriberID) (*models.Subscription, error) {
	sub, err := r.subs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub.ActiveAt(r.clock.Now()) {
		return sub, nil
	}

	paid, err := r.payments.FindLatestPaid(ctx, id)
	if err != nil {
		return nil, err
	}
	if paid == nil || sub.Applied(paid.ID) {
		return sub, nil
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		sub, err = r.subs.Activate(ctx, tx, ActivateRequest{
			SubscriberID: id,
			InvoiceID:    &paid.ID,
			Source:       types.ActivationSourceFallback,
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to activate fallback subscription: %w", err)
	}
	r.subs.Activated(ctx, sub)
	logctx.FromCtx(ctx, r.log).Warnw("subscription_fallback_activated",
		"subscriber_id", id.String(),
		"invoice_id", paid.ID.String(),
	)
	return sub, nil
}
