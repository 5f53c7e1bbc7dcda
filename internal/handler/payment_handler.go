package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"flight-booking/internal/payment"
	"flight-booking/internal/service"
	apperrors "flight-booking/pkg/app_errors"
	"flight-booking/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PaymentHandler struct {
	service service.PaymentService
}

func NewPaymentHandler(service service.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

func (h *PaymentHandler) RegisterRoutes(r *gin.Engine, auth gin.HandlerFunc) {
	router := r.Group("/api/v1")
	{
		router.POST("orders/:id/payment", auth, h.CreatePayment)
		// 閘道回調不走身分驗證，靠簽章
		router.POST("payments/momo/ipn", h.MoMoIPN)
		router.GET("payments/vnpay/ipn", h.VNPayIPN)
	}
}

func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	identity, ok := MustIdentity(c)
	if !ok {
		return
	}
	id, ok := IDParam(c)
	if !ok {
		return
	}

	var req struct {
		Provider string `json:"provider" binding:"required"`
	}
	if err := BindJson(c, &req); err != nil {
		return
	}

	result, err := h.service.CreatePayment(c, identity, id, req.Provider, c.ClientIP())
	if err != nil {
		h.handlePaymentError(c, err, "CreatePayment")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"pay_url": result.PayURL,
		"txn_ref": result.TxnRef,
	})
}

// MoMoIPN JSON body；數字欄位照原樣轉成字串參與驗章
func (h *PaymentHandler) MoMoIPN(c *gin.Context) {
	decoder := json.NewDecoder(c.Request.Body)
	decoder.UseNumber()

	var raw map[string]interface{}
	if err := decoder.Decode(&raw); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	params := make(map[string]string, len(raw))
	for key, value := range raw {
		switch v := value.(type) {
		case string:
			params[key] = v
		case json.Number:
			params[key] = v.String()
		default:
			params[key] = fmt.Sprint(v)
		}
	}

	if err := h.service.HandleIPN(c, payment.ProviderMoMo, params); err != nil {
		h.handlePaymentError(c, err, "MoMoIPN")
		return
	}

	// MoMo 期望 204 表示已收到
	c.Status(http.StatusNoContent)
}

func (h *PaymentHandler) VNPayIPN(c *gin.Context) {
	params := make(map[string]string)
	for key := range c.Request.URL.Query() {
		params[key] = c.Query(key)
	}

	if err := h.service.HandleIPN(c, payment.ProviderVNPay, params); err != nil {
		// VNPAY 期望固定格式的回應碼：查無訂單回 01，其餘當簽章問題回 97
		logger.WithComponent("handler").Warn("vnpay ipn rejected", zap.Error(err))
		if errors.Is(err, apperrors.ErrOrderNotFound) {
			c.JSON(http.StatusOK, gin.H{"RspCode": "01", "Message": "Order not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"RspCode": "97", "Message": "Invalid signature"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"RspCode": "00", "Message": "Confirm Success"})
}

func (h *PaymentHandler) handlePaymentError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrInvalidInput):
		log.Warn("Invalid payment input")
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid input",
		})
	case errors.Is(err, apperrors.ErrInvalidSignature):
		log.Warn("Invalid callback signature")
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid signature",
		})
	case errors.Is(err, apperrors.ErrOrderNotFound):
		log.Warn("Order not found")
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Order not found",
		})
	case errors.Is(err, apperrors.ErrForbidden):
		log.Warn("Forbidden")
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Forbidden",
		})
	case errors.Is(err, apperrors.ErrOrderAlreadyPaid):
		log.Warn("Order already paid")
		c.JSON(http.StatusConflict, gin.H{
			"error": "Order is already paid",
		})
	case errors.Is(err, apperrors.ErrGatewayUnavailable):
		log.Error("Payment gateway unavailable")
		c.JSON(http.StatusBadGateway, gin.H{
			"error": "Payment gateway unavailable",
		})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}
