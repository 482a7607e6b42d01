package types

import "time"

type SubscriptionStatus string

const (
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusInactive SubscriptionStatus = "inactive"
)

// ActivationSource records which path wrote the current subscription window.
type ActivationSource string

const (
	ActivationSourceWebhook  ActivationSource = "webhook"
	ActivationSourceFallback ActivationSource = "fallback"
	ActivationSourceAdmin    ActivationSource = "admin"
)

type UserSubscriptionInfo struct {
	Entitled bool             `json:"entitled"`
	Status   string           `json:"status,omitempty"`
	ExpireAt *time.Time       `json:"expire_at,omitempty"`
	Source   ActivationSource `json:"source,omitempty"`
}
