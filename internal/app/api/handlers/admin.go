package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/fatflowers/astrocashier/internal/app/api/middleware"
	"github.com/fatflowers/astrocashier/internal/app/service/payment"
	"github.com/fatflowers/astrocashier/internal/app/service/statistics"
	models "github.com/fatflowers/astrocashier/internal/models"
	"github.com/fatflowers/astrocashier/pkg/response"
	"github.com/fatflowers/astrocashier/pkg/types"
)

// PaymentScanner lists payments for the admin console.
type PaymentScanner interface {
	Scan(ctx context.Context, req *payment.ScanPaymentsRequest) (*payment.ScanPaymentsResponse, error)
}

// PaymentStatistics computes dashboard series.
type PaymentStatistics interface {
	GetPaymentStatistic(ctx context.Context, req *statistics.PaymentStatisticRequest) (*statistics.PaymentStatisticResponse, error)
}

// SubscriptionGranter activates a window without a payment.
type SubscriptionGranter interface {
	Grant(ctx context.Context, id types.SubscriberID, operatorID string) (*models.Subscription, error)
}

type ListPaymentRequest struct {
	Filters   []*types.CommonFilter `json:"filters"`
	From      int                   `json:"from"`
	Size      int                   `json:"size"`
	SortBy    string                `json:"sort_by"`
	SortOrder string                `json:"sort_order"`
}

type PaymentItem struct {
	InvoiceID    string              `json:"invoice_id"`
	SubscriberID string              `json:"subscriber_id"`
	Amount       string              `json:"amount"`
	Status       types.PaymentStatus `json:"status"`
	Description  string              `json:"description"`
	IsTest       bool                `json:"is_test"`
	PaidAt       *time.Time          `json:"paid_at"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// Invoice ids are rendered as strings; snowflake values overflow JS numbers.
func toPaymentItem(m *models.Payment) *PaymentItem {
	return &PaymentItem{
		InvoiceID:    m.ID.String(),
		SubscriberID: m.SubscriberID.String(),
		Amount:       m.Amount,
		Status:       m.Status,
		Description:  m.Description,
		IsTest:       m.IsTest,
		PaidAt:       m.PaidAt,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

type ListPaymentsResponse struct {
	Items []*PaymentItem `json:"items"`
	Total int64          `json:"total"`
}

// @Summary      List Payments (Admin)
// @Description  Retrieves a paginated and filterable list of payments.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body ListPaymentRequest true "List payment request with filters, pagination, and sorting"
// @Success      200  {object}  handlers.RespListPayments
// @Router       /api/v1/admin/list_payments [post]
func ApiListPayments(ledger PaymentScanner) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ListPaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		scanReq := &payment.ScanPaymentsRequest{Filters: req.Filters, From: req.From, Size: req.Size, SortBy: req.SortBy, SortOrder: req.SortOrder}
		res, err := ledger.Scan(c.Request.Context(), scanReq)
		if err != nil {
			if errors.Is(err, payment.ErrUnknownField) {
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
				return
			}
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		items := lo.Map(res.Items, func(it *models.Payment, _ int) *PaymentItem { return toPaymentItem(it) })
		c.JSON(http.StatusOK, response.OKT(&ListPaymentsResponse{Items: items, Total: res.Total}))
	}
}

// @Summary      Get Payment Statistics (Admin)
// @Description  Retrieves daily payment and subscription statistics.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body statistics.PaymentStatisticRequest true "Statistic request parameters"
// @Success      200  {object}  handlers.RespPaymentStatistic
// @Router       /api/v1/admin/get_payment_statistic [post]
// ApiGetPaymentStatistic handles POST /api/v1/admin/get_payment_statistic
func ApiGetPaymentStatistic(svc PaymentStatistics) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req statistics.PaymentStatisticRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		res, err := svc.GetPaymentStatistic(c.Request.Context(), &req)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

type GrantSubscriptionRequest struct {
	SubscriberID string `json:"subscriber_id"`
	OperatorID   string `json:"operator_id"`
}

// @Summary      Grant Subscription (Admin)
// @Description  Activates a subscription window for a subscriber without a payment.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body GrantSubscriptionRequest true "Grant subscription request"
// @Success      200  {object}  handlers.RespGrantSubscription
// @Router       /api/v1/admin/grant_subscription [post]
// ApiGrantSubscription handles POST /api/v1/admin/grant_subscription
func ApiGrantSubscription(sub SubscriptionGranter) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req GrantSubscriptionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		id, err := types.ParseSubscriberID(req.SubscriberID)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		operatorID := lo.CoalesceOrEmpty(middleware.AdminSubject(c), req.OperatorID)
		if operatorID == "" {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "missing operator_id"))
			return
		}
		m, err := sub.Grant(c.Request.Context(), id, operatorID)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(m))
	}
}

func RegisterAdminPaymentRoutes(r gin.IRouter, ledger PaymentScanner, stats PaymentStatistics, sub SubscriptionGranter) {
	r.POST("/list_payments", ApiListPayments(ledger))
	r.POST("/get_payment_statistic", ApiGetPaymentStatistic(stats))
	r.POST("/grant_subscription", ApiGrantSubscription(sub))
}
