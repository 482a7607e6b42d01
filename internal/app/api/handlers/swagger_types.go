package handlers

import (
	"github.com/fatflowers/astrocashier/internal/app/service/payment"
	"github.com/fatflowers/astrocashier/internal/app/service/statistics"
	"github.com/fatflowers/astrocashier/internal/models"
	"github.com/fatflowers/astrocashier/pkg/response"
	"github.com/fatflowers/astrocashier/pkg/types"
)

// RespOK is a generic OK envelope for endpoints returning no specific data.
type RespOK struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    interface{}              `json:"data"`
}

// RespListPayments wraps ListPaymentsResponse in the standard envelope.
type RespListPayments struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    ListPaymentsResponse     `json:"data"`
}

// RespPaymentStatistic wraps PaymentStatisticResponse in the standard envelope.
type RespPaymentStatistic struct {
	Code    response.APIResponseCode            `json:"code"`
	Message string                              `json:"message"`
	Data    statistics.PaymentStatisticResponse `json:"data"`
}

// RespPaymentRequest wraps payment.IssueResult in the standard envelope.
type RespPaymentRequest struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    payment.IssueResult      `json:"data"`
}

// RespSubscriptionStatus wraps UserSubscriptionInfo in the standard envelope.
type RespSubscriptionStatus struct {
	Code    response.APIResponseCode   `json:"code"`
	Message string                     `json:"message"`
	Data    types.UserSubscriptionInfo `json:"data"`
}

// RespGrantSubscription wraps the granted subscription in the standard envelope.
type RespGrantSubscription struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    models.Subscription      `json:"data"`
}
