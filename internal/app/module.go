package app

import (
	"time"

	"go.uber.org/fx"

	"github.com/fatflowers/astrocashier/internal/app/api/server"
	"github.com/fatflowers/astrocashier/internal/app/bot"
	notificationhandler "github.com/fatflowers/astrocashier/internal/app/service/notification_handler"
	notificationlog "github.com/fatflowers/astrocashier/internal/app/service/notification_log"
	"github.com/fatflowers/astrocashier/internal/app/service/payment"
	"github.com/fatflowers/astrocashier/internal/app/service/statistics"
	"github.com/fatflowers/astrocashier/internal/app/service/subscriber"
	"github.com/fatflowers/astrocashier/internal/app/service/subscription"
	"github.com/fatflowers/astrocashier/internal/platform/db"
	"github.com/fatflowers/astrocashier/internal/platform/telegram"
	"github.com/fatflowers/astrocashier/pkg/clock"
	"github.com/fatflowers/astrocashier/pkg/config"
	"github.com/fatflowers/astrocashier/pkg/logger"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	clock.Module,
	db.Module,
	telegram.Module,
	server.Module,
	subscriber.Module,
	payment.Module,
	subscription.Module,
	statistics.Module,
	notificationlog.Module,
	notificationhandler.Module,
	bot.Module,
)
