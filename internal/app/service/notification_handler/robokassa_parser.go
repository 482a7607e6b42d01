package notification_handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fatflowers/astrocashier/internal/platform/robokassa"
	"github.com/fatflowers/astrocashier/pkg/types"
)

type RobokassaNotificationParser struct {
	NotificationTime time.Time
	Params           map[string]string
}

func GetRobokassaNotificationParser(c *gin.Context, now time.Time) (*RobokassaNotificationParser, error) {
	params, err := ParseParams(c.Request)
	if err != nil {
		return nil, err
	}
	return &RobokassaNotificationParser{NotificationTime: now, Params: params}, nil
}

func (p *RobokassaNotificationParser) GetProvider(ctx context.Context) types.PaymentProvider {
	return types.PaymentProviderRobokassa
}

func (p *RobokassaNotificationParser) GetNotificationTime(ctx context.Context) time.Time {
	return p.NotificationTime
}

func (p *RobokassaNotificationParser) GetInvoiceID(ctx context.Context) string {
	return p.Params[robokassa.ParamInvID]
}

func (p *RobokassaNotificationParser) GetData(ctx context.Context) map[string]string {
	return p.Params
}

func (p *RobokassaNotificationParser) GetNotification(ctx context.Context) (*robokassa.ResultNotification, error) {
	return robokassa.ParseResultNotification(p.Params)
}
