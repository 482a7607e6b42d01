package models

import (
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"github.com/fatflowers/astrocashier/pkg/types"
)

func TestSubscription_ActiveAt(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		sub  *Subscription
		want bool
	}{
		{"nil", nil, false},
		{"active future", &Subscription{Status: types.SubscriptionStatusActive, ExpireAt: now.Add(time.Hour)}, true},
		{"active expired", &Subscription{Status: types.SubscriptionStatusActive, ExpireAt: now.Add(-time.Second)}, false},
		{"expires exactly now", &Subscription{Status: types.SubscriptionStatusActive, ExpireAt: now}, false},
		{"inactive future", &Subscription{Status: types.SubscriptionStatusInactive, ExpireAt: now.Add(time.Hour)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.sub.ActiveAt(now))
		})
	}
}

func TestSubscription_Applied(t *testing.T) {
	var nilSub *Subscription
	require.False(t, nilSub.Applied(1001))
	require.False(t, (&Subscription{}).Applied(1001))
	require.True(t, (&Subscription{InvoiceID: lo.ToPtr(types.InvoiceID(1001))}).Applied(1001))
	require.False(t, (&Subscription{InvoiceID: lo.ToPtr(types.InvoiceID(1002))}).Applied(1001))
}
