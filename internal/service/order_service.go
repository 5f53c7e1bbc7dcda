package service

import (
	"context"
	"fmt"

	"flight-booking/internal/database"
	"flight-booking/internal/model"
	"flight-booking/internal/queue"
	"flight-booking/internal/repository"
	"flight-booking/monitoring"
	apperrors "flight-booking/pkg/app_errors"
	"flight-booking/pkg/logger"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type OrderService interface {
	// 下單：訂單 + 明細 + 通知在同一筆交易內
	Create(ctx context.Context, userID int, req model.CreateOrderRequest) (*model.Order, error)
	Get(ctx context.Context, identity model.Identity, orderID int) (*model.Order, error)
	Invoice(ctx context.Context, identity model.Identity, orderID int) (*model.Invoice, error)
	List(ctx context.Context, query model.OrderListQuery) ([]*model.Order, int, error)
	ListByUser(ctx context.Context, userID int, query model.OrderListQuery) ([]*model.Order, int, error)
	Update(ctx context.Context, orderID int, params model.UpdateOrderParams) (*model.Order, error)
	Cancel(ctx context.Context, identity model.Identity, orderID int) error
	// MarkPaid 冪等付款確認：同一筆訂單重送回調不會產生第二次副作用
	MarkPaid(ctx context.Context, orderID int) error
}

type OrderServiceImpl struct {
	store            database.TxRunner
	repository       repository.OrderRepository
	ticketRepository repository.TicketRepository
	notificationRepo repository.NotificationRepository
	notifyQueue      queue.NotificationQueue
}

func NewOrderService(
	store database.TxRunner,
	orderRepository repository.OrderRepository,
	ticketRepository repository.TicketRepository,
	notificationRepo repository.NotificationRepository,
	notifyQueue queue.NotificationQueue,
) OrderService {
	return &OrderServiceImpl{
		store:            store,
		repository:       orderRepository,
		ticketRepository: ticketRepository,
		notificationRepo: notificationRepo,
		notifyQueue:      notifyQueue,
	}
}

func (s *OrderServiceImpl) Create(ctx context.Context, userID int, req model.CreateOrderRequest) (*model.Order, error) {
	if !req.PaymentMethod.IsValid() {
		return nil, apperrors.ErrInvalidInput
	}

	var created *model.Order
	var notification *model.Notification

	err := s.store.WithinTx(ctx, func(tx pgx.Tx) error {
		ticket, err := s.ticketRepository.FindByIDWithLock(ctx, tx, req.TicketID)
		if err != nil {
			return err
		}
		if ticket.UserID != userID {
			return apperrors.ErrForbidden
		}
		if ticket.IsCancelled() {
			return apperrors.ErrTicketAlreadyCancelled
		}

		order := &model.Order{
			UserID:          userID,
			TotalAmount:     ticket.TotalPrice,
			AddressDelivery: req.AddressDelivery,
			PaymentMethod:   req.PaymentMethod,
			OrderStatus:     model.OrderStatusPending,
			PaymentStatus:   model.PaymentStatusPending,
		}
		created, err = s.repository.Create(ctx, tx, order)
		if err != nil {
			return err
		}

		// 一張票一筆明細；quantity 固定 1，折扣現階段一律 0
		detail, err := s.repository.CreateDetail(ctx, tx, &model.OrderDetail{
			OrderID:    created.ID,
			TicketID:   ticket.ID,
			Quantity:   1,
			UnitPrice:  ticket.TotalPrice,
			Discount:   decimal.Zero,
			TotalPrice: ticket.TotalPrice,
		})
		if err != nil {
			return err
		}
		created.Details = []*model.OrderDetail{detail}

		notification, err = s.notificationRepo.Create(ctx, tx, &model.Notification{
			UserID:  userID,
			Message: fmt.Sprintf("Order #%d created for ticket #%d.", created.ID, ticket.ID),
			Type:    model.NotificationTypeOrderCreated,
		})
		return err
	})
	if err != nil {
		monitoring.OrdersTotal.WithLabelValues("failed").Inc()
		return nil, err
	}

	monitoring.OrdersTotal.WithLabelValues("success").Inc()
	s.publishEvent(ctx, notification)

	return created, nil
}

func (s *OrderServiceImpl) publishEvent(ctx context.Context, notification *model.Notification) {
	if notification == nil {
		return
	}
	event := &model.NotificationEvent{
		NotificationID: notification.ID,
		UserID:         notification.UserID,
		Message:        notification.Message,
		Type:           notification.Type,
	}
	if err := s.notifyQueue.PublishNotification(ctx, event); err != nil {
		logger.WithComponent("order").Warn("publish notification event failed",
			zap.Int("notification_id", notification.ID), zap.Error(err))
	}
}

func (s *OrderServiceImpl) Get(ctx context.Context, identity model.Identity, orderID int) (*model.Order, error) {
	order, err := s.repository.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !identity.CanAccess(order.UserID) {
		return nil, apperrors.ErrForbidden
	}

	details, err := s.repository.Details(ctx, orderID)
	if err != nil {
		return nil, err
	}
	order.Details = details

	return order, nil
}

func (s *OrderServiceImpl) Invoice(ctx context.Context, identity model.Identity, orderID int) (*model.Invoice, error) {
	order, err := s.Get(ctx, identity, orderID)
	if err != nil {
		return nil, err
	}
	return &model.Invoice{
		Order: order,
		Items: order.Details,
	}, nil
}

func (s *OrderServiceImpl) List(ctx context.Context, query model.OrderListQuery) ([]*model.Order, int, error) {
	return s.repository.List(ctx, query)
}

func (s *OrderServiceImpl) ListByUser(ctx context.Context, userID int, query model.OrderListQuery) ([]*model.Order, int, error) {
	query.UserID = &userID
	return s.repository.List(ctx, query)
}

func (s *OrderServiceImpl) Update(ctx context.Context, orderID int, params model.UpdateOrderParams) (*model.Order, error) {
	if params.IsEmpty() {
		return nil, apperrors.ErrNoFieldsToUpdate
	}
	if params.OrderStatus != nil && !params.OrderStatus.IsValid() {
		return nil, apperrors.ErrInvalidStatus
	}
	if params.PaymentStatus != nil && !params.PaymentStatus.IsValid() {
		return nil, apperrors.ErrInvalidStatus
	}

	if params.OrderStatus != nil {
		current, err := s.repository.FindByID(ctx, orderID)
		if err != nil {
			return nil, err
		}
		if !current.OrderStatus.CanTransitionTo(*params.OrderStatus) {
			return nil, apperrors.ErrInvalidStatus
		}
	}

	return s.repository.Update(ctx, orderID, params)
}

func (s *OrderServiceImpl) Cancel(ctx context.Context, identity model.Identity, orderID int) error {
	return s.store.WithinTx(ctx, func(tx pgx.Tx) error {
		order, err := s.repository.FindByIDWithLock(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if !identity.CanAccess(order.UserID) {
			return apperrors.ErrForbidden
		}
		// 完成或已取消的訂單不能再取消；機票狀態不受影響，退票另外走退票流程
		if !order.OrderStatus.CanTransitionTo(model.OrderStatusCanceled) {
			return apperrors.ErrOrderNotCancellable
		}

		return s.repository.Cancel(ctx, tx, orderID)
	})
}

func (s *OrderServiceImpl) MarkPaid(ctx context.Context, orderID int) error {
	var notification *model.Notification

	err := s.store.WithinTx(ctx, func(tx pgx.Tx) error {
		order, err := s.repository.FindByIDWithLock(ctx, tx, orderID)
		if err != nil {
			return err
		}
		// 已付款：重送的回調做 no-op，不再發通知
		if order.PaymentStatus == model.PaymentStatusPaid {
			return nil
		}

		changed, err := s.repository.MarkPaid(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}

		notification, err = s.notificationRepo.Create(ctx, tx, &model.Notification{
			UserID:  order.UserID,
			Message: fmt.Sprintf("Payment received for order #%d.", orderID),
			Type:    model.NotificationTypePaymentSuccess,
		})
		return err
	})
	if err != nil {
		return err
	}

	s.publishEvent(ctx, notification)
	return nil
}
