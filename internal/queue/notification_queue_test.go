package queue

import (
	"context"
	"testing"
	"time"

	"flight-booking/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationQueue_PublishAndSubscribe(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewNotificationQueue(4)
	deliveries, err := q.SubscribeNotifications(ctx)
	require.NoError(t, err)

	event := &model.NotificationEvent{UserID: 5, Message: "Booking confirmed"}
	require.NoError(t, q.PublishNotification(ctx, event))

	select {
	case d := <-deliveries:
		assert.Equal(t, 5, d.Data.UserID)
		d.Ack()
	case <-time.After(time.Second):
		t.Fatal("delivery not received")
	}
}

func TestNotificationQueue_PublishFullBufferHonorsContext(t *testing.T) {
	q := NewNotificationQueue(1)

	ctx := context.Background()
	require.NoError(t, q.PublishNotification(ctx, &model.NotificationEvent{UserID: 1}))

	// 沒有消費者、緩衝已滿：送不進去要回 ctx 的錯，不能卡死
	timeoutCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- q.PublishNotification(timeoutCtx, &model.NotificationEvent{UserID: 2})
	}()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	case <-time.After(time.Second):
		t.Fatal("publish blocked past context deadline")
	}
}

func TestNotificationQueue_NackRequeues(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewNotificationQueue(4)
	deliveries, err := q.SubscribeNotifications(ctx)
	require.NoError(t, err)

	require.NoError(t, q.PublishNotification(ctx, &model.NotificationEvent{UserID: 7}))

	first := <-deliveries
	first.Nack(true)

	select {
	case second := <-deliveries:
		assert.Equal(t, 7, second.Data.UserID)
		second.Ack()
	case <-time.After(time.Second):
		t.Fatal("requeued event not redelivered")
	}
}
