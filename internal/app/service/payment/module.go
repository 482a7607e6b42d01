package payment

import (
	"go.uber.org/fx"

	"github.com/fatflowers/astrocashier/internal/platform/robokassa"
)

// Module exposes the payment ledger and issuer via Fx.
var Module = fx.Options(
	fx.Provide(NewLedger),
	fx.Provide(robokassa.NewClient),
	fx.Provide(func(c *robokassa.Client) LinkBuilder { return c }),
	fx.Provide(NewIssuer),
)
