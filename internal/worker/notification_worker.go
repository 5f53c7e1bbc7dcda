package worker

import (
	"context"

	"flight-booking/internal/queue"
	"flight-booking/internal/service"
)

type NotificationWorker interface {
	// 訂閱通知隊列
	Start(ctx context.Context) error
}

type NotificationWorkerImpl struct {
	service service.NotificationService
	queue   queue.NotificationQueue
}

func NewNotificationWorker(service service.NotificationService, queue queue.NotificationQueue) NotificationWorker {
	return &NotificationWorkerImpl{
		service: service,
		queue:   queue,
	}
}

func (w *NotificationWorkerImpl) Start(ctx context.Context) error {
	msgs, err := w.queue.SubscribeNotifications(ctx)
	if err != nil {
		return err
	}

	go func() {
		for msg := range msgs {
			// 投遞失敗就 Nack(requeue)，由隊列的重試機制延遲重投
			if err := w.service.Dispatch(ctx, msg.Data); err != nil {
				msg.Nack(true)
			} else {
				msg.Ack()
			}
		}
	}()
	return nil
}
