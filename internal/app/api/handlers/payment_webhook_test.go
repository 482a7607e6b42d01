package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	nh "github.com/fatflowers/astrocashier/internal/app/service/notification_handler"
	"github.com/fatflowers/astrocashier/internal/platform/robokassa"
	"github.com/fatflowers/astrocashier/pkg/types"
)

type stubCallbackHandler struct {
	res      *nh.ReconcileResult
	err      error
	provider types.PaymentProvider
}

func (s *stubCallbackHandler) HandleNotification(_ *gin.Context, provider types.PaymentProvider) (*nh.ReconcileResult, error) {
	s.provider = provider
	return s.res, s.err
}

func TestApiRobokassaWebhook_StatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{name: "ok", status: http.StatusOK, body: "OK1001"},
		{name: "missing param", err: fmt.Errorf("%w: InvId", robokassa.ErrMissingParam), status: http.StatusBadRequest, body: "missing required parameters"},
		{name: "invalid invoice id", err: fmt.Errorf("%w: \"abc\"", types.ErrInvalidInvoiceID), status: http.StatusBadRequest, body: "invalid InvId"},
		{name: "malformed body", err: nh.ErrMalformedBody, status: http.StatusBadRequest, body: "malformed body"},
		{name: "bad signature", err: nh.ErrInvalidSignature, status: http.StatusBadRequest, body: "invalid signature"},
		{name: "unknown invoice", err: fmt.Errorf("%w: 42", nh.ErrPaymentNotFound), status: http.StatusNotFound, body: "payment not found"},
		{name: "storage failure", err: errors.New("connection reset"), status: http.StatusInternalServerError, body: "internal error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := &stubCallbackHandler{err: tc.err}
			if tc.err == nil {
				h.res = &nh.ReconcileResult{InvoiceID: 1001}
			}
			r := gin.New()
			RegisterPaymentWebhookRoutes(r.Group("/api/v2/payment/webhook"), h, zap.NewNop().Sugar())

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v2/payment/webhook/robokassa", nil))

			require.Equal(t, tc.status, w.Code)
			require.Equal(t, tc.body, w.Body.String())
			require.Contains(t, w.Header().Get("Content-Type"), "text/plain")
			require.Equal(t, types.PaymentProviderRobokassa, h.provider)
		})
	}
}

func TestApiRobokassaWebhook_InternalErrorTextHidesCause(t *testing.T) {
	require.Equal(t, "internal error", webhookErrorText(errors.New("pq: password authentication failed")))
}

func TestRegisterPaymentWebhookRoutes_RegistersEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterPaymentWebhookRoutes(r.Group("/api/v2/payment/webhook"), nil, zap.NewNop().Sugar())

	require.True(t, hasRoute(r, "POST /api/v2/payment/webhook/robokassa"))
	require.True(t, hasRoute(r, "GET /api/v2/payment/webhook/robokassa"))
}

func hasRoute(r *gin.Engine, target string) bool {
	for _, rt := range r.Routes() {
		if rt.Method+" "+rt.Path == target {
			return true
		}
	}
	return false
}
