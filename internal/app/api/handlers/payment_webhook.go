package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	nh "github.com/fatflowers/astrocashier/internal/app/service/notification_handler"
	"github.com/fatflowers/astrocashier/internal/platform/robokassa"
	"github.com/fatflowers/astrocashier/pkg/logctx"
	"github.com/fatflowers/astrocashier/pkg/types"
)

// CallbackHandler reconciles one provider callback.
type CallbackHandler interface {
	HandleNotification(c *gin.Context, provider types.PaymentProvider) (*nh.ReconcileResult, error)
}

// webhookStatus maps reconciliation errors to the status the provider sees.
// Anything that is not the caller's fault is a 500 so the provider retries.
func webhookStatus(err error) int {
	switch {
	case errors.Is(err, nh.ErrPaymentNotFound):
		return http.StatusNotFound
	case errors.Is(err, robokassa.ErrMissingParam),
		errors.Is(err, types.ErrInvalidInvoiceID),
		errors.Is(err, nh.ErrMalformedBody),
		errors.Is(err, nh.ErrInvalidSignature):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func webhookErrorText(err error) string {
	switch {
	case errors.Is(err, nh.ErrPaymentNotFound):
		return "payment not found"
	case errors.Is(err, robokassa.ErrMissingParam):
		return "missing required parameters"
	case errors.Is(err, types.ErrInvalidInvoiceID):
		return "invalid InvId"
	case errors.Is(err, nh.ErrMalformedBody):
		return "malformed body"
	case errors.Is(err, nh.ErrInvalidSignature):
		return "invalid signature"
	default:
		return "internal error"
	}
}

// @Summary      Robokassa ResultURL
// @Description  Receives the ResultURL callback (OutSum, InvId, SignatureValue) as query, form or JSON. Body values override query values. Replies OK<InvId> in plain text when the payment is reconciled, including redeliveries.
// @Tags         Webhook
// @Accept       x-www-form-urlencoded
// @Produce      plain
// @Param        OutSum          formData  string  true  "Amount as signed by the provider"
// @Param        InvId           formData  string  true  "Invoice id"
// @Param        SignatureValue  formData  string  true  "hash(OutSum:InvId:Password2)"
// @Success      200  {string}  string  "OK1001"
// @Failure      400  {string}  string
// @Failure      404  {string}  string
// @Failure      500  {string}  string
// @Router       /api/v2/payment/webhook/robokassa [post]
// ApiRobokassaWebhook handles Robokassa ResultURL callbacks
func ApiRobokassaWebhook(h CallbackHandler, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		lg := logctx.FromGin(c, log)
		lg.Infow("webhook_robokassa_received")

		res, err := h.HandleNotification(c, types.PaymentProviderRobokassa)
		if err != nil {
			status := webhookStatus(err)
			if status == http.StatusInternalServerError {
				lg.Errorw("webhook_robokassa_handle_error", "error", err.Error())
			} else {
				lg.Warnw("webhook_robokassa_rejected", "status", status, "error", err.Error())
			}
			c.String(status, webhookErrorText(err))
			return
		}
		c.String(http.StatusOK, res.Response())
	}
}

func RegisterPaymentWebhookRoutes(r gin.IRouter, h CallbackHandler, log *zap.SugaredLogger) {
	// Mount under provided group, expected at "/api/v2/payment/webhook"
	r.POST("/robokassa", ApiRobokassaWebhook(h, log))
	r.GET("/robokassa", ApiRobokassaWebhook(h, log))
}
