package models

import (
	"time"

	"github.com/fatflowers/astrocashier/pkg/types"
)

// Payment is one Robokassa invoice. Status only moves pending -> paid.
type Payment struct {
	ID           types.InvoiceID     `gorm:"column:id;primaryKey;autoIncrement:false" json:"id"`
	SubscriberID types.SubscriberID  `gorm:"column:subscriber_id;type:varchar(64);not null;index:idx_payment_subscriber_status,priority:1" json:"subscriber_id"`
	Amount       string              `gorm:"column:amount;type:varchar(32);not null" json:"amount"`
	Status       types.PaymentStatus `gorm:"column:status;type:varchar(32);not null;index:idx_payment_subscriber_status,priority:2" json:"status"`
	Description  string              `gorm:"column:description;type:varchar(255)" json:"description"`
	IsTest       bool                `gorm:"column:is_test;not null;default:false" json:"is_test"`
	PaidAt       *time.Time          `gorm:"column:paid_at" json:"paid_at"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

func (Payment) TableName() string {
	return "payment"
}

func (p *Payment) Paid() bool {
	return p != nil && p.Status == types.PaymentStatusPaid
}
