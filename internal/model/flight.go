package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Flight 航班模型；AvailableSeats 只透過條件式增減更新，不在應用層讀改寫
type Flight struct {
	ID               int             `json:"id" db:"id"`
	FlightNumber     string          `json:"flight_number" db:"flight_number"`
	DepartureAirport string          `json:"departure_airport" db:"departure_airport"`
	DepartureCode    string          `json:"departure_code" db:"departure_code"`
	ArrivalAirport   string          `json:"arrival_airport" db:"arrival_airport"`
	ArrivalCode      string          `json:"arrival_code" db:"arrival_code"`
	DepartureTime    time.Time       `json:"departure_time" db:"departure_time"`
	ArrivalTime      time.Time       `json:"arrival_time" db:"arrival_time"`
	Price            decimal.Decimal `json:"price" db:"price"`
	TotalSeats       int             `json:"total_seats" db:"total_seats"`
	AvailableSeats   int             `json:"available_seats" db:"available_seats"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at" db:"updated_at"`
}

// HasCapacity 檢查是否還有足夠座位
func (f *Flight) HasCapacity(passengers int) bool {
	return f.AvailableSeats >= passengers
}

type CreateFlightRequest struct {
	FlightNumber     string          `json:"flight_number" binding:"required"`
	DepartureAirport string          `json:"departure_airport" binding:"required"`
	DepartureCode    string          `json:"departure_code" binding:"required"`
	ArrivalAirport   string          `json:"arrival_airport" binding:"required"`
	ArrivalCode      string          `json:"arrival_code" binding:"required"`
	DepartureTime    time.Time       `json:"departure_time" binding:"required"`
	ArrivalTime      time.Time       `json:"arrival_time" binding:"required"`
	Price            decimal.Decimal `json:"price" binding:"required"`
	TotalSeats       int             `json:"total_seats" binding:"required,min=1"`
}

// UpdateFlightRequest PATCH 請求體；nil 欄位不更動
type UpdateFlightRequest struct {
	FlightNumber     *string          `json:"flight_number"`
	DepartureAirport *string          `json:"departure_airport"`
	DepartureCode    *string          `json:"departure_code"`
	ArrivalAirport   *string          `json:"arrival_airport"`
	ArrivalCode      *string          `json:"arrival_code"`
	DepartureTime    *time.Time       `json:"departure_time"`
	ArrivalTime      *time.Time       `json:"arrival_time"`
	Price            *decimal.Decimal `json:"price"`
	AvailableSeats   *int             `json:"available_seats"`
}

func (r UpdateFlightRequest) Params() UpdateFlightParams {
	return UpdateFlightParams{
		FlightNumber:     r.FlightNumber,
		DepartureAirport: r.DepartureAirport,
		DepartureCode:    r.DepartureCode,
		ArrivalAirport:   r.ArrivalAirport,
		ArrivalCode:      r.ArrivalCode,
		DepartureTime:    r.DepartureTime,
		ArrivalTime:      r.ArrivalTime,
		Price:            r.Price,
		AvailableSeats:   r.AvailableSeats,
	}
}

type UpdateFlightParams struct {
	FlightNumber     *string
	DepartureAirport *string
	DepartureCode    *string
	ArrivalAirport   *string
	ArrivalCode      *string
	DepartureTime    *time.Time
	ArrivalTime      *time.Time
	Price            *decimal.Decimal
	AvailableSeats   *int
}

// IsEmpty reports whether the patch carries no field at all.
func (p UpdateFlightParams) IsEmpty() bool {
	return p.FlightNumber == nil && p.DepartureAirport == nil && p.DepartureCode == nil &&
		p.ArrivalAirport == nil && p.ArrivalCode == nil && p.DepartureTime == nil &&
		p.ArrivalTime == nil && p.Price == nil && p.AvailableSeats == nil
}

// FlightSearchQuery 搜尋條件：出發/抵達機場代碼 + 出發日 + 人數
type FlightSearchQuery struct {
	DepartureCode string
	ArrivalCode   string
	DepartureDate time.Time
	ReturnDate    *time.Time
	Passengers    int
	Page          int
	Limit         int
}

type FlightListQuery struct {
	DepartureCode string
	ArrivalCode   string
	SortBy        string
	SortOrder     string
	Page          int
	Limit         int
}

// FlightSearchResult carries the outbound page plus the optional return leg.
type FlightSearchResult struct {
	OutboundFlights []*Flight  `json:"outbound_flights"`
	ReturnFlights   []*Flight  `json:"return_flights"`
	Pagination      Pagination `json:"pagination"`
}

type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

func NewPagination(page, limit, total int) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return Pagination{Page: page, Limit: limit, Total: total, TotalPages: totalPages}
}
