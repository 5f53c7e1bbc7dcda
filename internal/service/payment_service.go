package service

import (
	"context"
	"fmt"

	"flight-booking/internal/model"
	"flight-booking/internal/payment"
	"flight-booking/internal/repository"
	"flight-booking/monitoring"
	apperrors "flight-booking/pkg/app_errors"
	"flight-booking/pkg/logger"

	"go.uber.org/zap"
)

type PaymentService interface {
	// CreatePayment 向指定閘道請求付款連結
	CreatePayment(ctx context.Context, identity model.Identity, orderID int, provider string, clientIP string) (*payment.CreatePaymentResult, error)
	// HandleIPN 驗章後套用付款結果；簽章不對就拒絕，重送的回調冪等
	HandleIPN(ctx context.Context, provider string, params map[string]string) error
}

type PaymentServiceImpl struct {
	registry        *payment.Registry
	orderRepository repository.OrderRepository
	orderService    OrderService
}

func NewPaymentService(
	registry *payment.Registry,
	orderRepository repository.OrderRepository,
	orderService OrderService,
) PaymentService {
	return &PaymentServiceImpl{
		registry:        registry,
		orderRepository: orderRepository,
		orderService:    orderService,
	}
}

func (s *PaymentServiceImpl) CreatePayment(ctx context.Context, identity model.Identity, orderID int, provider string, clientIP string) (*payment.CreatePaymentResult, error) {
	order, err := s.orderRepository.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !identity.CanAccess(order.UserID) {
		return nil, apperrors.ErrForbidden
	}
	if order.PaymentStatus == model.PaymentStatusPaid {
		return nil, apperrors.ErrOrderAlreadyPaid
	}

	gateway, err := s.registry.Get(provider)
	if err != nil {
		return nil, err
	}

	return gateway.CreatePayment(ctx, payment.CreatePaymentRequest{
		OrderID:   order.ID,
		Amount:    order.TotalAmount,
		OrderInfo: fmt.Sprintf("Flight ticket order #%d", order.ID),
		ClientIP:  clientIP,
	})
}

func (s *PaymentServiceImpl) HandleIPN(ctx context.Context, provider string, params map[string]string) error {
	gateway, err := s.registry.Get(provider)
	if err != nil {
		return err
	}

	result, err := gateway.VerifyIPN(params)
	if err != nil {
		monitoring.PaymentCallbacksTotal.WithLabelValues(provider, "invalid").Inc()
		return err
	}

	if !result.Success {
		// 付款失敗的回調只記錄，訂單留在 Pending 等使用者重試
		monitoring.PaymentCallbacksTotal.WithLabelValues(provider, "declined").Inc()
		logger.WithComponent("payment").Info("payment declined by gateway",
			zap.String("provider", provider), zap.Int("order_id", result.OrderID))
		return nil
	}

	if err := s.orderService.MarkPaid(ctx, result.OrderID); err != nil {
		monitoring.PaymentCallbacksTotal.WithLabelValues(provider, "error").Inc()
		return err
	}

	monitoring.PaymentCallbacksTotal.WithLabelValues(provider, "success").Inc()
	return nil
}
