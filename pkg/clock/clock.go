package clock

import (
	"time"

	"go.uber.org/fx"
)

// Clock is the time source for subscription windows.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// Fixed always returns the same instant; used in tests.
type Fixed time.Time

func (f Fixed) Now() time.Time { return time.Time(f) }

var Module = fx.Options(
	fx.Provide(func() Clock { return SystemClock{} }),
)
