package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fatflowers/astrocashier/internal/app/service/payment"
	"github.com/fatflowers/astrocashier/pkg/response"
	"github.com/fatflowers/astrocashier/pkg/types"
)

// PaymentRequester issues payment links.
type PaymentRequester interface {
	RequestPayment(ctx context.Context, id types.SubscriberID) (*payment.IssueResult, error)
}

// SubscriptionStatusReader resolves entitlement for display.
type SubscriptionStatusReader interface {
	Status(ctx context.Context, id types.SubscriberID) (*types.UserSubscriptionInfo, error)
}

type PaymentRequest struct {
	SubscriberID string `json:"subscriber_id" binding:"required"`
}

// @Summary      Request Payment
// @Description  Returns a signed payment link, reusing the pending invoice if one exists. Outcome is one of created, reused, blocked, misconfigured.
// @Tags         Payment
// @Accept       json
// @Produce      json
// @Param        request body PaymentRequest true "Subscriber to bill"
// @Success      200  {object}  handlers.RespPaymentRequest
// @Router       /api/v2/payment/request [post]
func ApiRequestPayment(issuer PaymentRequester) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req PaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		id, err := types.ParseSubscriberID(req.SubscriberID)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		res, err := issuer.RequestPayment(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      Subscription Status
// @Description  Reports whether the subscriber is entitled, repairing the window from a paid invoice if the callback was lost.
// @Tags         Subscription
// @Produce      json
// @Param        subscriber_id query string true "Subscriber id"
// @Success      200  {object}  handlers.RespSubscriptionStatus
// @Router       /api/v2/subscription/status [get]
func ApiSubscriptionStatus(reader SubscriptionStatusReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := types.ParseSubscriberID(c.Query("subscriber_id"))
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		info, err := reader.Status(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(info))
	}
}

func RegisterPaymentV2Routes(r gin.IRouter, issuer PaymentRequester) {
	r.POST("/request", ApiRequestPayment(issuer))
}

func RegisterSubscriptionRoutes(r gin.IRouter, reader SubscriptionStatusReader) {
	r.GET("/status", ApiSubscriptionStatus(reader))
}
