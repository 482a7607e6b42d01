package models

import (
	"time"

	"github.com/fatflowers/astrocashier/pkg/types"
	"gorm.io/datatypes"
)

// SubscriptionLog records changes to subscriptions.
// Use case: troubleshooting.
type SubscriptionLog struct {
	ID           string             `gorm:"column:id;type:uuid;primary_key" json:"id"`
	SubscriberID types.SubscriberID `gorm:"column:subscriber_id;type:varchar(64);index:idx_subscription_log_subscriber,priority:1;not null"`
	// Source is the activation path that caused the change.
	Source    types.ActivationSource `gorm:"column:source;type:varchar(32);not null"`
	InvoiceID *types.InvoiceID       `gorm:"column:invoice_id"`
	// Before stores subscription data before the change in JSON format.
	Before datatypes.JSONType[*Subscription] `gorm:"column:before;type:jsonb;default:'null'"`
	// After stores subscription data after the change in JSON format.
	After datatypes.JSONType[*Subscription] `gorm:"column:after;type:jsonb;default:'null'"`
	// Extra stores additional context such as the operator of an admin grant.
	Extra     datatypes.JSONMap `gorm:"column:extra;type:jsonb;default:'{}'"`
	CreatedAt time.Time
}

func (SubscriptionLog) TableName() string {
	return "subscription_log"
}
