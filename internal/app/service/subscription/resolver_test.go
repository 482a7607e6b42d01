package subscription

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/fatflowers/astrocashier/pkg/types"
)

func TestIsEntitled_NoHistory(t *testing.T) {
	f := newFixture(t)

	ok, err := f.resolver.IsEntitled(context.Background(), "42")
	require.NoError(t, err)
	require.False(t, ok)

	info, err := f.resolver.Status(context.Background(), "42")
	require.NoError(t, err)
	require.False(t, info.Entitled)
	require.Nil(t, info.ExpireAt)
}

func TestIsEntitled_ActiveSubscription(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.subs.Grant(ctx, "42", "ops")
	require.NoError(t, err)

	ok, err := f.resolver.IsEntitled(ctx, "42")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestIsEntitled_FallbackClosesGap(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	// paid, but the callback never arrived
	f.paid(t, 1001, "42")

	ok, err := f.resolver.IsEntitled(ctx, "42")
	require.NoError(t, err)
	require.True(t, ok)

	sub, err := f.subs.Get(ctx, "42")
	require.NoError(t, err)
	require.Equal(t, types.ActivationSourceFallback, sub.Source)
	require.True(t, sub.Applied(1001))

	info, err := f.resolver.Status(ctx, "42")
	require.NoError(t, err)
	require.True(t, info.Entitled)
	require.Equal(t, types.ActivationSourceFallback, info.Source)
}

func TestIsEntitled_AppliedInvoiceDoesNotRenew(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.paid(t, 1001, "42")
	inv := types.InvoiceID(1001)
	require.NoError(t, f.db.Transaction(func(tx *gorm.DB) error {
		_, err := f.subs.Activate(ctx, tx, ActivateRequest{SubscriberID: "42", InvoiceID: &inv, Source: types.ActivationSourceWebhook})
		return err
	}))

	f.clock.Advance(721 * time.Hour)
	ok, err := f.resolver.IsEntitled(ctx, "42")
	require.NoError(t, err)
	require.False(t, ok, "expired window with its invoice applied stays expired")

	// a newer payment whose callback was lost is picked up
	f.paid(t, 1002, "42")
	ok, err = f.resolver.IsEntitled(ctx, "42")
	require.NoError(t, err)
	require.True(t, ok)

	sub, err := f.subs.Get(ctx, "42")
	require.NoError(t, err)
	require.True(t, sub.Applied(1002))
}
