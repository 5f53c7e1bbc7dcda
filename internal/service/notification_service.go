package service

import (
	"context"

	"flight-booking/internal/model"
	"flight-booking/internal/repository"
	"flight-booking/monitoring"
	apperrors "flight-booking/pkg/app_errors"
	"flight-booking/pkg/logger"

	"go.uber.org/zap"
)

type NotificationService interface {
	ListByUser(ctx context.Context, userID int, query model.NotificationListQuery) ([]*model.Notification, int, error)
	MarkRead(ctx context.Context, identity model.Identity, notificationID int) error
	MarkAllRead(ctx context.Context, userID int) error
	Delete(ctx context.Context, identity model.Identity, notificationID int) error
	DeleteAll(ctx context.Context, userID int) error
	UnreadCount(ctx context.Context, userID int) (int, error)
	// Dispatch 把隊列裡的事件交給外部投遞管道；worker 專用
	Dispatch(ctx context.Context, event *model.NotificationEvent) error
}

type NotificationServiceImpl struct {
	repository repository.NotificationRepository
}

func NewNotificationService(repository repository.NotificationRepository) NotificationService {
	return &NotificationServiceImpl{
		repository: repository,
	}
}

func (s *NotificationServiceImpl) ListByUser(ctx context.Context, userID int, query model.NotificationListQuery) ([]*model.Notification, int, error) {
	query.UserID = userID
	return s.repository.List(ctx, query)
}

func (s *NotificationServiceImpl) MarkRead(ctx context.Context, identity model.Identity, notificationID int) error {
	notification, err := s.repository.FindByID(ctx, notificationID)
	if err != nil {
		return err
	}
	if !identity.CanAccess(notification.UserID) {
		return apperrors.ErrForbidden
	}
	return s.repository.MarkRead(ctx, notificationID)
}

func (s *NotificationServiceImpl) MarkAllRead(ctx context.Context, userID int) error {
	return s.repository.MarkAllRead(ctx, userID)
}

func (s *NotificationServiceImpl) Delete(ctx context.Context, identity model.Identity, notificationID int) error {
	notification, err := s.repository.FindByID(ctx, notificationID)
	if err != nil {
		return err
	}
	if !identity.CanAccess(notification.UserID) {
		return apperrors.ErrForbidden
	}
	return s.repository.Delete(ctx, notificationID)
}

func (s *NotificationServiceImpl) DeleteAll(ctx context.Context, userID int) error {
	return s.repository.DeleteAll(ctx, userID)
}

func (s *NotificationServiceImpl) UnreadCount(ctx context.Context, userID int) (int, error) {
	return s.repository.UnreadCount(ctx, userID)
}

// Dispatch 通知列已在業務交易裡落庫；這裡只做外部投遞。
// TODO: 接上信件服務後改為真正寄送，目前先記 log。
func (s *NotificationServiceImpl) Dispatch(ctx context.Context, event *model.NotificationEvent) error {
	logger.WithComponent("notification").Info("dispatch notification",
		zap.Int("notification_id", event.NotificationID),
		zap.Int("user_id", event.UserID),
		zap.String("type", string(event.Type)))
	monitoring.NotificationsDispatchedTotal.Inc()
	return nil
}
