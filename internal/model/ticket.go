package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TicketStatus 機票狀態類型
type TicketStatus string

const (
	TicketStatusQueued    TicketStatus = "Queued"
	TicketStatusConfirmed TicketStatus = "Confirmed"
	TicketStatusCancelled TicketStatus = "Cancelled"
)

func (s TicketStatus) IsValid() bool {
	switch s {
	case TicketStatusQueued, TicketStatusConfirmed, TicketStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo 檢查是否可以轉換到目標狀態
func (s TicketStatus) CanTransitionTo(target TicketStatus) bool {
	transitions := map[TicketStatus][]TicketStatus{
		TicketStatusQueued:    {TicketStatusConfirmed, TicketStatusCancelled},
		TicketStatusConfirmed: {TicketStatusCancelled},
		TicketStatusCancelled: {},
	}

	for _, status := range transitions[s] {
		if status == target {
			return true
		}
	}
	return false
}

type TicketType string

const (
	TicketTypeOneWay    TicketType = "One-Way"
	TicketTypeRoundTrip TicketType = "Round-Trip"
)

func (t TicketType) IsValid() bool {
	return t == TicketTypeOneWay || t == TicketTypeRoundTrip
}

// Ticket 機票模型；AdultCount/ChildCount 在訂票時寫入，
// 取消時必須按原本的人數歸還座位，不能寫死 1
type Ticket struct {
	ID             int             `json:"id" db:"id"`
	UserID         int             `json:"user_id" db:"user_id"`
	FlightID       int             `json:"flight_id" db:"flight_id"`
	ReturnFlightID *int            `json:"return_flight_id,omitempty" db:"return_flight_id"`
	SeatNumber     string          `json:"seat_number" db:"seat_number"`
	TicketType     TicketType      `json:"ticket_type" db:"ticket_type"`
	AdultCount     int             `json:"adult_count" db:"adult_count"`
	ChildCount     int             `json:"child_count" db:"child_count"`
	TotalPrice     decimal.Decimal `json:"total_price" db:"total_price"`
	Status         TicketStatus    `json:"status" db:"status"`
	BookingDate    time.Time       `json:"booking_date" db:"booking_date"`

	Flight     *Flight            `json:"flight,omitempty" db:"-"`
	Passengers []*PassengerDetail `json:"passengers,omitempty" db:"-"`
}

// PassengerCount 乘客總數（成人 + 小孩）
func (t *Ticket) PassengerCount() int {
	return t.AdultCount + t.ChildCount
}

func (t *Ticket) IsCancelled() bool {
	return t.Status == TicketStatusCancelled
}

type PassengerType string

const (
	PassengerTypeAdult PassengerType = "Adult"
	PassengerTypeChild PassengerType = "Child"
)

func (p PassengerType) IsValid() bool {
	return p == PassengerTypeAdult || p == PassengerTypeChild
}

// PassengerDetail 乘客資料，隨機票一起在同一交易內寫入
type PassengerDetail struct {
	ID            int           `json:"id" db:"id"`
	TicketID      int           `json:"ticket_id" db:"ticket_id"`
	FullName      string        `json:"full_name" db:"full_name"`
	DateOfBirth   time.Time     `json:"date_of_birth" db:"date_of_birth"`
	IDNumber      string        `json:"id_number" db:"id_number"`
	PassengerType PassengerType `json:"passenger_type" db:"passenger_type"`
}

// BookTicketRequest 訂票請求
type BookTicketRequest struct {
	FlightID       int                `json:"flight_id" binding:"required"`
	ReturnFlightID *int               `json:"return_flight_id"`
	TicketType     TicketType         `json:"ticket_type" binding:"required"`
	AdultCount     int                `json:"adult_count" binding:"required,min=1"`
	ChildCount     int                `json:"child_count" binding:"min=0"`
	Passengers     []PassengerInput   `json:"passengers" binding:"required,min=1,dive"`
}

type PassengerInput struct {
	FullName      string        `json:"full_name" binding:"required"`
	DateOfBirth   time.Time     `json:"date_of_birth" binding:"required"`
	IDNumber      string        `json:"id_number" binding:"required"`
	PassengerType PassengerType `json:"passenger_type" binding:"required"`
}

type UpdateTicketParams struct {
	Status     *TicketStatus
	SeatNumber *string
}

// TicketListQuery 查詢條件；非管理員只能看到自己的機票
type TicketListQuery struct {
	UserID    *int
	Status    *TicketStatus
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

// BookingResult 訂票結果：新機票加上航班摘要
type BookingResult struct {
	Ticket *Ticket `json:"ticket"`
	Flight *Flight `json:"flight"`
}
