package notification_log

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fatflowers/astrocashier/internal/models"
	"github.com/fatflowers/astrocashier/pkg/logctx"
	"github.com/fatflowers/astrocashier/pkg/tool"
	"github.com/fatflowers/astrocashier/pkg/types"
)

type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func New(db *gorm.DB, log *zap.SugaredLogger) *Service { return &Service{db: db, log: log} }

var Module = fx.Options(
	fx.Provide(New),
)

// Received builds the journal row for an inbound callback. Params are stored
// exactly as received.
func (s *Service) Received(ctx context.Context, provider types.PaymentProvider, params map[string]string) *models.PaymentNotificationLog {
	data, err := json.Marshal(params)
	if err != nil {
		data = []byte("{}")
	}
	return &models.PaymentNotificationLog{
		ID:               tool.GenerateUUIDV7(),
		ProviderID:       string(provider),
		TraceID:          logctx.TraceID(ctx),
		InvoiceID:        params["InvId"],
		NotificationTime: time.Now(),
		Data:             datatypes.JSON(data),
		Status:           models.PaymentNotificationLogStatusReceived,
	}
}

// Finish returns a copy of entry carrying the terminal status and result,
// ready to be saved over the received row.
func (s *Service) Finish(entry *models.PaymentNotificationLog, status models.PaymentNotificationLogStatus, result map[string]any) *models.PaymentNotificationLog {
	if entry == nil {
		return nil
	}
	cp := *entry
	cp.Status = status
	if result != nil {
		if b, err := json.Marshal(result); err == nil {
			js := datatypes.JSON(b)
			cp.Result = &js
		}
	}
	return &cp
}

// Save asynchronously persists a payment notification log. Nil input is ignored.
// A received row never overwrites a terminal row that landed first.
func (s *Service) Save(ctx context.Context, log *models.PaymentNotificationLog) {
	go func() {
		if log == nil {
			return
		}
		if log.ID == "" {
			log.ID = tool.GenerateUUIDV7()
		}
		var err error
		if log.Status == models.PaymentNotificationLogStatusReceived {
			err = s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(log).Error
		} else {
			err = s.db.Save(log).Error
		}
		if err != nil {
			logctx.FromCtx(ctx, s.log).Errorf("failed to save notification log: %v", err)
		}
	}()
}
