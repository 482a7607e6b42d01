package models

import (
	"time"

	"github.com/fatflowers/astrocashier/pkg/types"
)

// Subscription is the single entitlement window of a subscriber.
// Every activation replaces the whole row.
type Subscription struct {
	SubscriberID types.SubscriberID       `gorm:"column:subscriber_id;type:varchar(64);primaryKey" json:"subscriber_id"`
	Status       types.SubscriptionStatus `gorm:"column:status;type:varchar(32);not null" json:"status"`
	// ExpireAt is the end of the paid window.
	ExpireAt time.Time `gorm:"column:expire_at;not null" json:"expire_at"`
	// Source records which path produced the window.
	Source types.ActivationSource `gorm:"column:source;type:varchar(32);not null" json:"source"`
	// InvoiceID is the paid invoice applied to this window; nil for admin grants.
	InvoiceID   *types.InvoiceID `gorm:"column:invoice_id" json:"invoice_id"`
	ActivatedAt time.Time        `gorm:"column:activated_at;not null" json:"activated_at"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

func (Subscription) TableName() string {
	return "subscription"
}

// ActiveAt reports whether the subscription grants entitlement at now.
func (s *Subscription) ActiveAt(now time.Time) bool {
	return s != nil &&
		s.Status == types.SubscriptionStatusActive &&
		s.ExpireAt.After(now)
}

// Applied reports whether invoiceID already produced this window.
func (s *Subscription) Applied(invoiceID types.InvoiceID) bool {
	return s != nil && s.InvoiceID != nil && *s.InvoiceID == invoiceID
}
