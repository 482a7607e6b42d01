package db

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/fatflowers/astrocashier/internal/models"
	cfgpkg "github.com/fatflowers/astrocashier/pkg/config"
	gormzap "github.com/fatflowers/astrocashier/pkg/gormlog"
	"github.com/fatflowers/astrocashier/pkg/tool"
)

// GormConfig is shared by the postgres store and the sqlite test store.
// TranslateError maps unique violations to gorm.ErrDuplicatedKey.
func GormConfig(l *zap.SugaredLogger, level gormlogger.LogLevel) *gorm.Config {
	return &gorm.Config{
		Logger:         gormzap.New(l, level),
		TranslateError: true,
	}
}

func NewDB(l *zap.SugaredLogger, cfg *cfgpkg.Config) (*gorm.DB, error) {
	if cfg.Database.DSN == "" {
		l.Error("database DSN is empty")
		return nil, gorm.ErrInvalidDB
	}
	level := gormlogger.Warn
	if cfg.Env == cfgpkg.EnvDev {
		level = gormlogger.Info
	}
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN), GormConfig(l, level))
	if err != nil {
		l.Errorf("failed to connect database: %v", err)
		return nil, err
	}
	l.Infow("connected to postgres via DSN")
	return db, nil
}

// NewSnowflakeNode returns the invoice id node. A single API instance owns
// node 1; horizontally scaled deployments must assign distinct nodes.
func NewSnowflakeNode() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}

var Module = fx.Options(
	fx.Provide(NewDB),
	fx.Provide(NewSnowflakeNode),
	fx.Provide(tool.NewSnowflakeInvoiceIDs),
	fx.Invoke(AutoMigrate),
	fx.Invoke(registerDBClose),
)

// Models lists every table owned by the service.
func Models() []any {
	return []any{
		&models.Payment{},
		&models.Subscriber{},
		&models.Subscription{},
		&models.SubscriptionLog{},
		&models.PaymentNotificationLog{},
	}
}

// AutoMigrate runs GORM migrations on startup
func AutoMigrate(l *zap.SugaredLogger, db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		l.Errorf("automigrate failed: %v", err)
		return err
	}
	l.Infow("automigrate completed")
	return nil
}

// registerDBClose ensures the underlying *sql.DB is closed on shutdown
func registerDBClose(lc fx.Lifecycle, l *zap.SugaredLogger, gdb *gorm.DB) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			sqlDB, err := gdb.DB()
			if err != nil {
				l.Warnw("gorm: get sql.DB failed", "err", err)
				return nil
			}
			l.Infow("closing postgres connection pool")
			return sqlDB.Close()
		},
	})
}
