package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"flight-booking/internal/handler"
	"flight-booking/internal/middleware"
	"flight-booking/internal/model"
	"flight-booking/internal/payment"
	apperrors "flight-booking/pkg/app_errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newPaymentRouter(service *mockPaymentService) *gin.Engine {
	r := gin.New()
	h := handler.NewPaymentHandler(service)
	h.RegisterRoutes(r, middleware.Auth(testJWTSecret))
	return r
}

func TestPaymentHandler_CreatePayment(t *testing.T) {
	t.Run("ReturnsPayURL", func(t *testing.T) {
		service := new(mockPaymentService)
		service.On("CreatePayment", mock.Anything, mock.Anything, 31, "MoMo", mock.Anything).Return(&payment.CreatePaymentResult{
			PayURL: "https://test-payment.momo.vn/pay/abc",
			TxnRef: "31_1700000000",
		}, nil)
		r := newPaymentRouter(service)

		body, _ := json.Marshal(gin.H{"provider": "MoMo"})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/31/payment", bytes.NewReader(body))
		req.Header.Set("Authorization", "Bearer "+signToken(t, 5, model.RoleUser))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var resp map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "https://test-payment.momo.vn/pay/abc", resp["pay_url"])
		assert.Equal(t, "31_1700000000", resp["txn_ref"])
	})

	t.Run("AlreadyPaidConflict", func(t *testing.T) {
		service := new(mockPaymentService)
		service.On("CreatePayment", mock.Anything, mock.Anything, 31, "VNPAY", mock.Anything).Return(nil, apperrors.ErrOrderAlreadyPaid)
		r := newPaymentRouter(service)

		body, _ := json.Marshal(gin.H{"provider": "VNPAY"})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/31/payment", bytes.NewReader(body))
		req.Header.Set("Authorization", "Bearer "+signToken(t, 5, model.RoleUser))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestPaymentHandler_MoMoIPN(t *testing.T) {
	t.Run("ForwardsStringifiedParams", func(t *testing.T) {
		service := new(mockPaymentService)
		service.On("HandleIPN", mock.Anything, payment.ProviderMoMo, mock.MatchedBy(func(params map[string]string) bool {
			return params["orderId"] == "31_1700000000" && params["amount"] == "2500000" && params["resultCode"] == "0"
		})).Return(nil)
		r := newPaymentRouter(service)

		// MoMo 的 JSON 會把 amount/resultCode 當數字送
		body := []byte(`{"orderId":"31_1700000000","amount":2500000,"resultCode":0,"signature":"sig"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/momo/ipn", bytes.NewReader(body))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		service.AssertExpectations(t)
	})

	t.Run("BadSignature", func(t *testing.T) {
		service := new(mockPaymentService)
		service.On("HandleIPN", mock.Anything, payment.ProviderMoMo, mock.Anything).Return(apperrors.ErrInvalidSignature)
		r := newPaymentRouter(service)

		body := []byte(`{"orderId":"31_1700000000","signature":"bad"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/momo/ipn", bytes.NewReader(body))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestPaymentHandler_VNPayIPN(t *testing.T) {
	t.Run("ConfirmSuccess", func(t *testing.T) {
		service := new(mockPaymentService)
		service.On("HandleIPN", mock.Anything, payment.ProviderVNPay, mock.MatchedBy(func(params map[string]string) bool {
			return params["vnp_TxnRef"] == "31_1700000000"
		})).Return(nil)
		r := newPaymentRouter(service)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/payments/vnpay/ipn?vnp_TxnRef=31_1700000000&vnp_ResponseCode=00&vnp_SecureHash=abc", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var resp map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "00", resp["RspCode"])
	})

	t.Run("InvalidSignatureStillHTTP200", func(t *testing.T) {
		// VNPAY 期望用 RspCode 表達失敗，不是 HTTP 狀態碼
		service := new(mockPaymentService)
		service.On("HandleIPN", mock.Anything, payment.ProviderVNPay, mock.Anything).Return(apperrors.ErrInvalidSignature)
		r := newPaymentRouter(service)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/payments/vnpay/ipn?vnp_TxnRef=31_1&vnp_SecureHash=bad", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var resp map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "97", resp["RspCode"])
	})

	t.Run("OrderNotFoundAnsweredAs01", func(t *testing.T) {
		service := new(mockPaymentService)
		service.On("HandleIPN", mock.Anything, payment.ProviderVNPay, mock.Anything).Return(apperrors.ErrOrderNotFound)
		r := newPaymentRouter(service)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/payments/vnpay/ipn?vnp_TxnRef=999_1&vnp_SecureHash=abc", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var resp map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "01", resp["RspCode"])
	})
}
