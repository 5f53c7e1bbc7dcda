package service

import (
	"context"

	"flight-booking/internal/cache"
	"flight-booking/internal/model"
	"flight-booking/internal/repository"
	apperrors "flight-booking/pkg/app_errors"
	"flight-booking/pkg/logger"

	"go.uber.org/zap"
)

type FlightService interface {
	Create(ctx context.Context, flight *model.Flight) (*model.Flight, error)
	Get(ctx context.Context, flightID int) (*model.Flight, error)
	GetByNumber(ctx context.Context, flightNumber string) (*model.Flight, error)
	List(ctx context.Context, query model.FlightListQuery) ([]*model.Flight, int, error)
	// Search 去程＋（可選）回程的航班搜尋，只回傳座位數夠的航班
	Search(ctx context.Context, query model.FlightSearchQuery) (*model.FlightSearchResult, error)
	Cheapest(ctx context.Context, limit int) ([]*model.Flight, error)
	Update(ctx context.Context, flightID int, params model.UpdateFlightParams) (*model.Flight, error)
	Delete(ctx context.Context, flightID int) error
}

type FlightServiceImpl struct {
	repository repository.FlightRepository
	cache      cache.FlightCache
}

func NewFlightService(repository repository.FlightRepository, flightCache cache.FlightCache) FlightService {
	return &FlightServiceImpl{
		repository: repository,
		cache:      flightCache,
	}
}

func (s *FlightServiceImpl) Create(ctx context.Context, flight *model.Flight) (*model.Flight, error) {
	if flight.FlightNumber == "" || flight.TotalSeats <= 0 {
		return nil, apperrors.ErrInvalidInput
	}
	if flight.Price.IsNegative() {
		return nil, apperrors.ErrInvalidInput
	}
	if !flight.ArrivalTime.After(flight.DepartureTime) {
		return nil, apperrors.ErrInvalidInput
	}
	return s.repository.Create(ctx, flight)
}

// Get 讀取走快取；miss 時回源並回填
func (s *FlightServiceImpl) Get(ctx context.Context, flightID int) (*model.Flight, error) {
	cached, err := s.cache.GetFlight(ctx, flightID)
	if err == nil {
		return cached, nil
	}
	if err != cache.ErrCacheMiss {
		logger.WithComponent("flight").Warn("flight cache read failed",
			zap.Int("flight_id", flightID), zap.Error(err))
	}

	flight, err := s.repository.FindByID(ctx, flightID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetFlight(ctx, flight); err != nil {
		logger.WithComponent("flight").Warn("flight cache write failed",
			zap.Int("flight_id", flightID), zap.Error(err))
	}

	return flight, nil
}

func (s *FlightServiceImpl) GetByNumber(ctx context.Context, flightNumber string) (*model.Flight, error) {
	if flightNumber == "" {
		return nil, apperrors.ErrInvalidInput
	}
	return s.repository.FindByNumber(ctx, flightNumber)
}

func (s *FlightServiceImpl) List(ctx context.Context, query model.FlightListQuery) ([]*model.Flight, int, error) {
	return s.repository.List(ctx, query)
}

func (s *FlightServiceImpl) Search(ctx context.Context, query model.FlightSearchQuery) (*model.FlightSearchResult, error) {
	if query.DepartureCode == "" || query.ArrivalCode == "" || query.Passengers < 1 {
		return nil, apperrors.ErrInvalidInput
	}

	outbound, total, err := s.repository.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	result := &model.FlightSearchResult{
		OutboundFlights: outbound,
		Pagination:      model.NewPagination(query.Page, query.Limit, total),
	}

	if query.ReturnDate != nil {
		returnQuery := query
		returnQuery.DepartureCode = query.ArrivalCode
		returnQuery.ArrivalCode = query.DepartureCode
		returnQuery.DepartureDate = *query.ReturnDate
		returnQuery.ReturnDate = nil

		returnFlights, _, err := s.repository.Search(ctx, returnQuery)
		if err != nil {
			return nil, err
		}
		result.ReturnFlights = returnFlights
	}

	return result, nil
}

func (s *FlightServiceImpl) Cheapest(ctx context.Context, limit int) ([]*model.Flight, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	return s.repository.Cheapest(ctx, limit)
}

func (s *FlightServiceImpl) Update(ctx context.Context, flightID int, params model.UpdateFlightParams) (*model.Flight, error) {
	if params.IsEmpty() {
		return nil, apperrors.ErrNoFieldsToUpdate
	}

	flight, err := s.repository.Update(ctx, flightID, params)
	if err != nil {
		return nil, err
	}

	if err := s.cache.InvalidateFlight(ctx, flightID); err != nil {
		logger.WithComponent("flight").Warn("invalidate flight cache failed",
			zap.Int("flight_id", flightID), zap.Error(err))
	}

	return flight, nil
}

func (s *FlightServiceImpl) Delete(ctx context.Context, flightID int) error {
	if err := s.repository.Delete(ctx, flightID); err != nil {
		return err
	}

	if err := s.cache.InvalidateFlight(ctx, flightID); err != nil {
		logger.WithComponent("flight").Warn("invalidate flight cache failed",
			zap.Int("flight_id", flightID), zap.Error(err))
	}

	return nil
}
