package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"flight-booking/internal/model"
	"flight-booking/internal/queue"
	"flight-booking/internal/worker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubNotificationService struct {
	mu       sync.Mutex
	failures int // 前幾次 Dispatch 回錯誤
	events   []*model.NotificationEvent
}

func (s *stubNotificationService) Dispatch(ctx context.Context, event *model.NotificationEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failures > 0 {
		s.failures--
		return errors.New("delivery failed")
	}
	s.events = append(s.events, event)
	return nil
}

func (s *stubNotificationService) dispatched() []*model.NotificationEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.NotificationEvent, len(s.events))
	copy(out, s.events)
	return out
}

func (s *stubNotificationService) ListByUser(ctx context.Context, userID int, query model.NotificationListQuery) ([]*model.Notification, int, error) {
	return nil, 0, nil
}

func (s *stubNotificationService) MarkRead(ctx context.Context, identity model.Identity, notificationID int) error {
	return nil
}

func (s *stubNotificationService) MarkAllRead(ctx context.Context, userID int) error { return nil }

func (s *stubNotificationService) Delete(ctx context.Context, identity model.Identity, notificationID int) error {
	return nil
}

func (s *stubNotificationService) DeleteAll(ctx context.Context, userID int) error { return nil }

func (s *stubNotificationService) UnreadCount(ctx context.Context, userID int) (int, error) {
	return 0, nil
}

func TestNotificationWorker_DeliversPublishedEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc := &stubNotificationService{}
	q := queue.NewNotificationQueue(8)
	w := worker.NewNotificationWorker(svc, q)
	require.NoError(t, w.Start(ctx))

	events := []*model.NotificationEvent{
		{NotificationID: 1, UserID: 5, Message: "booking confirmed", Type: model.NotificationTypeBooking},
		{NotificationID: 2, UserID: 5, Message: "order created", Type: model.NotificationTypeOrderCreated},
	}
	for _, e := range events {
		require.NoError(t, q.PublishNotification(ctx, e))
	}

	assert.Eventually(t, func() bool {
		return len(svc.dispatched()) == 2
	}, 2*time.Second, 10*time.Millisecond)

	got := svc.dispatched()
	assert.Equal(t, 1, got[0].NotificationID)
	assert.Equal(t, 2, got[1].NotificationID)
}

func TestNotificationWorker_RequeuesFailedDelivery(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc := &stubNotificationService{failures: 1}
	q := queue.NewNotificationQueue(8)
	w := worker.NewNotificationWorker(svc, q)
	require.NoError(t, w.Start(ctx))

	event := &model.NotificationEvent{NotificationID: 7, UserID: 5, Type: model.NotificationTypePaymentSuccess}
	require.NoError(t, q.PublishNotification(ctx, event))

	// 第一次投遞失敗被 Nack 重排，第二次成功
	assert.Eventually(t, func() bool {
		got := svc.dispatched()
		return len(got) == 1 && got[0].NotificationID == 7
	}, 2*time.Second, 10*time.Millisecond)
}
