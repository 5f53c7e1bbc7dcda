package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus 訂單狀態類型
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusCompleted  OrderStatus = "Completed"
	OrderStatusCanceled   OrderStatus = "Canceled"
)

func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusCompleted, OrderStatusCanceled:
		return true
	}
	return false
}

// CanTransitionTo 檢查是否可以轉換到目標狀態
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	transitions := map[OrderStatus][]OrderStatus{
		OrderStatusPending:    {OrderStatusProcessing, OrderStatusCanceled},
		OrderStatusProcessing: {OrderStatusCompleted, OrderStatusCanceled},
		OrderStatusCompleted:  {},
		OrderStatusCanceled:   {},
	}

	for _, status := range transitions[s] {
		if status == target {
			return true
		}
	}
	return false
}

// IsFinal 已完成或已取消的訂單不能再取消
func (s OrderStatus) IsFinal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCanceled
}

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "Pending"
	PaymentStatusPaid    PaymentStatus = "Paid"
)

func (s PaymentStatus) IsValid() bool {
	return s == PaymentStatusPending || s == PaymentStatusPaid
}

type PaymentMethod string

const (
	PaymentMethodCreditCard PaymentMethod = "Credit Card"
	PaymentMethodMoMo       PaymentMethod = "MoMo"
	PaymentMethodVNPay      PaymentMethod = "VNPAY"
	PaymentMethodCash       PaymentMethod = "Cash"
)

func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCreditCard, PaymentMethodMoMo, PaymentMethodVNPay, PaymentMethodCash:
		return true
	}
	return false
}

// Order 訂單模型；取消時只做軟刪除，保留金流紀錄
type Order struct {
	ID              int             `json:"id" db:"id"`
	UserID          int             `json:"user_id" db:"user_id"`
	OrderDate       time.Time       `json:"order_date" db:"order_date"`
	TotalAmount     decimal.Decimal `json:"total_amount" db:"total_amount"`
	AddressDelivery string          `json:"address_delivery" db:"address_delivery"`
	PaymentMethod   PaymentMethod   `json:"payment_method" db:"payment_method"`
	OrderStatus     OrderStatus     `json:"order_status" db:"order_status"`
	PaymentStatus   PaymentStatus   `json:"payment_status" db:"payment_status"`
	IsDeleted       bool            `json:"-" db:"is_deleted"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`

	Details []*OrderDetail `json:"details,omitempty" db:"-"`
}

// OrderDetail 訂單明細；目前一張訂單對應一張機票（quantity 固定 1），
// 但保留列表結構以支援未來多機票訂單
type OrderDetail struct {
	ID         int             `json:"id" db:"id"`
	OrderID    int             `json:"order_id" db:"order_id"`
	TicketID   int             `json:"ticket_id" db:"ticket_id"`
	Quantity   int             `json:"quantity" db:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price" db:"unit_price"`
	Discount   decimal.Decimal `json:"discount" db:"discount"`
	TotalPrice decimal.Decimal `json:"total_price" db:"total_price"`

	Ticket *Ticket `json:"ticket,omitempty" db:"-"`
}

// LineTotal = unit price * quantity - discount
func (d *OrderDetail) LineTotal() decimal.Decimal {
	return d.UnitPrice.Mul(decimal.NewFromInt(int64(d.Quantity))).Sub(d.Discount)
}

// CreateOrderRequest 建立訂單請求
type CreateOrderRequest struct {
	TicketID        int           `json:"ticket_id" binding:"required"`
	AddressDelivery string        `json:"address_delivery" binding:"required"`
	PaymentMethod   PaymentMethod `json:"payment_method" binding:"required"`
}

// UpdateOrderParams 部分更新：兩個欄位都沒給時回 ErrNoFieldsToUpdate
type UpdateOrderParams struct {
	OrderStatus   *OrderStatus
	PaymentStatus *PaymentStatus
}

func (p UpdateOrderParams) IsEmpty() bool {
	return p.OrderStatus == nil && p.PaymentStatus == nil
}

type OrderListQuery struct {
	UserID        *int
	Status        *OrderStatus
	PaymentStatus *PaymentStatus
	Page          int
	Limit         int
}

// Invoice 發票視圖：訂單 + 明細（含機票與航班資訊）
type Invoice struct {
	Order *Order         `json:"order"`
	Items []*OrderDetail `json:"items"`
}
