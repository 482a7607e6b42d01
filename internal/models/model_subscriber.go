package models

import (
	"time"

	"github.com/fatflowers/astrocashier/pkg/types"
)

// Subscriber is the directory row of a chat user. A payment may create it
// before onboarding has run.
type Subscriber struct {
	ID                  types.SubscriberID `gorm:"column:id;type:varchar(64);primaryKey" json:"id"`
	OnboardingCompleted bool               `gorm:"column:onboarding_completed;not null;default:false" json:"onboarding_completed"`
	CreatedAt           time.Time          `json:"created_at"`
	UpdatedAt           time.Time          `json:"updated_at"`
}

func (Subscriber) TableName() string {
	return "subscriber"
}
