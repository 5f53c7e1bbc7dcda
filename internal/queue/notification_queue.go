package queue

import (
	"context"

	"flight-booking/internal/model"
)

type Delivery struct {
	Data *model.NotificationEvent
	Ack  func()
	Nack func(requeue bool)
}

// NotificationQueue 通知投遞隊列。通知「列」已在業務交易內落庫，
// 這裡只負責把事件帶給 worker 做外部投遞（推播、信件）。
type NotificationQueue interface {
	// 發送通知事件到隊列
	PublishNotification(ctx context.Context, event *model.NotificationEvent) error
	// 訂閱通知事件
	SubscribeNotifications(ctx context.Context) (<-chan Delivery, error)
}

type NotificationQueueImpl struct {
	// 使用 Go channel 模擬 MQ 隊列；測試與單機部署用
	ch chan *model.NotificationEvent
}

func NewNotificationQueue(bufferSize int) NotificationQueue {
	return &NotificationQueueImpl{
		ch: make(chan *model.NotificationEvent, bufferSize),
	}
}

func (q *NotificationQueueImpl) PublishNotification(ctx context.Context, event *model.NotificationEvent) error {
	// 緩衝滿時不能卡住呼叫端的請求，交給 ctx 決定放棄
	select {
	case q.ch <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *NotificationQueueImpl) SubscribeNotifications(ctx context.Context) (<-chan Delivery, error) {
	out := make(chan Delivery)

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-q.ch:
				if !ok {
					return
				}

				out <- Delivery{
					Data: event,
					Ack:  func() { /* 記憶體版不用做特別動作 */ },
					Nack: func(requeue bool) {
						if requeue {
							q.ch <- event
						}
					},
				}
			}
		}
	}()

	return out, nil
}
