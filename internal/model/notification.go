package model

import "time"

// NotificationType 通知分類標籤
type NotificationType string

const (
	NotificationTypeBooking        NotificationType = "BookingConfirmed"
	NotificationTypeOrderCreated   NotificationType = "OrderCreated"
	NotificationTypePaymentSuccess NotificationType = "PaymentSuccess"
)

// Notification 通知模型：純 append/read/delete，沒有跨實體不變量
type Notification struct {
	ID        int              `json:"id" db:"id"`
	UserID    int              `json:"user_id" db:"user_id"`
	Message   string           `json:"message" db:"message"`
	Type      NotificationType `json:"type" db:"type"`
	IsRead    bool             `json:"is_read" db:"is_read"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}

type NotificationListQuery struct {
	UserID int
	IsRead *bool
	Page   int
	Limit  int
}

// NotificationEvent 送進 Redis Stream 給 worker 投遞的事件
type NotificationEvent struct {
	NotificationID int              `json:"notification_id"`
	UserID         int              `json:"user_id"`
	Message        string           `json:"message"`
	Type           NotificationType `json:"type"`
}
