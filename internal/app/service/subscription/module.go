package subscription

import (
	"go.uber.org/fx"

	"github.com/fatflowers/astrocashier/internal/app/service/payment"
)

// Module exposes the subscription service and entitlement resolver via Fx.
var Module = fx.Options(
	fx.Provide(NewService),
	fx.Provide(NewResolver),
	fx.Provide(func(r *Resolver) payment.EntitlementChecker { return r }),
)
