package types

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentProvider string

const (
	PaymentProviderRobokassa PaymentProvider = "robokassa"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
)

// PaymentItem is the single subscription product sold by the bot.
type PaymentItem struct {
	ID string `json:"id" mapstructure:"id"`
	// Price in roubles, e.g. "149" or "149.00".
	Price        string `json:"price" mapstructure:"price"`
	DurationHour int64  `json:"duration_hour" mapstructure:"duration_hour"`
	Description  string `json:"description" mapstructure:"description"`
}

func (item *PaymentItem) Duration() time.Duration {
	return time.Duration(item.DurationHour) * time.Hour
}

// DurationDays rounds down; used only in user-facing texts.
func (item *PaymentItem) DurationDays() int64 {
	return item.DurationHour / 24
}

// CanonicalAmount renders Price with exactly two decimals. The result is
// stored on the payment and reused verbatim for every signature over it.
func (item *PaymentItem) CanonicalAmount() (string, error) {
	return FormatAmount(item.Price)
}

func FormatAmount(raw string) (string, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return "", fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	if !d.IsPositive() {
		return "", fmt.Errorf("amount must be positive: %q", raw)
	}
	return d.StringFixed(2), nil
}

// SameAmount compares two textual amounts numerically ("149" == "149.000000").
func SameAmount(a, b string) bool {
	da, err := decimal.NewFromString(a)
	if err != nil {
		return false
	}
	db, err := decimal.NewFromString(b)
	if err != nil {
		return false
	}
	return da.Equal(db)
}
