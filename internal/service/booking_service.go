package service

import (
	"context"
	"fmt"

	"flight-booking/internal/cache"
	"flight-booking/internal/database"
	"flight-booking/internal/model"
	"flight-booking/internal/pricing"
	"flight-booking/internal/queue"
	"flight-booking/internal/repository"
	"flight-booking/internal/seatmap"
	"flight-booking/monitoring"
	apperrors "flight-booking/pkg/app_errors"
	"flight-booking/pkg/logger"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type BookingService interface {
	// 訂票：扣位、配位、寫乘客資料與通知，全部在同一筆交易內
	Book(ctx context.Context, userID int, req model.BookTicketRequest) (*model.BookingResult, error)
	// 退票：歸還原本的乘客人數
	Cancel(ctx context.Context, identity model.Identity, ticketID int) error
	Get(ctx context.Context, identity model.Identity, ticketID int) (*model.Ticket, error)
	List(ctx context.Context, query model.TicketListQuery) ([]*model.Ticket, int, error)
	ListByUser(ctx context.Context, userID int, query model.TicketListQuery) ([]*model.Ticket, int, error)
	Update(ctx context.Context, ticketID int, params model.UpdateTicketParams) (*model.Ticket, error)
}

type BookingServiceImpl struct {
	store            database.TxRunner
	flightRepository repository.FlightRepository
	ticketRepository repository.TicketRepository
	notificationRepo repository.NotificationRepository
	flightCache      cache.FlightCache
	notifyQueue      queue.NotificationQueue
}

func NewBookingService(
	store database.TxRunner,
	flightRepository repository.FlightRepository,
	ticketRepository repository.TicketRepository,
	notificationRepo repository.NotificationRepository,
	flightCache cache.FlightCache,
	notifyQueue queue.NotificationQueue,
) BookingService {
	return &BookingServiceImpl{
		store:            store,
		flightRepository: flightRepository,
		ticketRepository: ticketRepository,
		notificationRepo: notificationRepo,
		flightCache:      flightCache,
		notifyQueue:      notifyQueue,
	}
}

func validateBookRequest(req model.BookTicketRequest) error {
	if !req.TicketType.IsValid() {
		return apperrors.ErrInvalidInput
	}
	if req.AdultCount < 1 || req.ChildCount < 0 {
		return apperrors.ErrInvalidInput
	}
	if req.TicketType == model.TicketTypeRoundTrip && req.ReturnFlightID == nil {
		return apperrors.ErrInvalidInput
	}
	if req.TicketType == model.TicketTypeOneWay && req.ReturnFlightID != nil {
		return apperrors.ErrInvalidInput
	}
	// 乘客明細必須跟申報的人數一致
	if len(req.Passengers) != req.AdultCount+req.ChildCount {
		return apperrors.ErrPassengerMismatch
	}
	adults, children := 0, 0
	for _, p := range req.Passengers {
		switch p.PassengerType {
		case model.PassengerTypeAdult:
			adults++
		case model.PassengerTypeChild:
			children++
		default:
			return apperrors.ErrInvalidInput
		}
	}
	if adults != req.AdultCount || children != req.ChildCount {
		return apperrors.ErrPassengerMismatch
	}
	return nil
}

func (s *BookingServiceImpl) Book(ctx context.Context, userID int, req model.BookTicketRequest) (*model.BookingResult, error) {
	if err := validateBookRequest(req); err != nil {
		monitoring.BookingsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	passengers := req.AdultCount + req.ChildCount

	var result model.BookingResult
	var notification *model.Notification

	err := s.store.WithinTx(ctx, func(tx pgx.Tx) error {
		flight, err := s.flightRepository.FindByIDTx(ctx, tx, req.FlightID)
		if err != nil {
			return err
		}

		// 先做快篩；真正防超賣的是後面的條件式 UPDATE
		if !flight.HasCapacity(passengers) {
			return apperrors.ErrInsufficientSeats
		}

		if req.ReturnFlightID != nil {
			returnFlight, err := s.flightRepository.FindByIDTx(ctx, tx, *req.ReturnFlightID)
			if err != nil {
				return err
			}
			if !returnFlight.HasCapacity(passengers) {
				return apperrors.ErrInsufficientSeats
			}
		}

		// 來回票以去程票價計價
		total, err := pricing.Quote(flight.Price, req.AdultCount, req.ChildCount)
		if err != nil {
			return err
		}

		taken, err := s.ticketRepository.TakenSeats(ctx, tx, req.FlightID)
		if err != nil {
			return err
		}
		seat, err := seatmap.Allocate(taken)
		if err != nil {
			return err
		}

		ticket := &model.Ticket{
			UserID:         userID,
			FlightID:       req.FlightID,
			ReturnFlightID: req.ReturnFlightID,
			SeatNumber:     seat,
			TicketType:     req.TicketType,
			AdultCount:     req.AdultCount,
			ChildCount:     req.ChildCount,
			TotalPrice:     total,
			Status:         model.TicketStatusQueued,
		}
		created, err := s.ticketRepository.Create(ctx, tx, ticket)
		if err != nil {
			return err
		}

		details := make([]*model.PassengerDetail, 0, len(req.Passengers))
		for _, p := range req.Passengers {
			details = append(details, &model.PassengerDetail{
				FullName:      p.FullName,
				DateOfBirth:   p.DateOfBirth,
				IDNumber:      p.IDNumber,
				PassengerType: p.PassengerType,
			})
		}
		if err := s.ticketRepository.InsertPassengers(ctx, tx, created.ID, details); err != nil {
			return err
		}
		created.Passengers = details

		if err := s.flightRepository.DecrementSeats(ctx, tx, req.FlightID, passengers); err != nil {
			return err
		}
		if req.ReturnFlightID != nil {
			if err := s.flightRepository.DecrementSeats(ctx, tx, *req.ReturnFlightID, passengers); err != nil {
				return err
			}
		}

		notification, err = s.notificationRepo.Create(ctx, tx, &model.Notification{
			UserID: userID,
			Message: fmt.Sprintf("Ticket #%d booked: flight %s, seat %s.",
				created.ID, flight.FlightNumber, seat),
			Type: model.NotificationTypeBooking,
		})
		if err != nil {
			return err
		}

		result.Ticket = created
		result.Flight = flight
		return nil
	})
	if err != nil {
		monitoring.BookingsTotal.WithLabelValues("failed").Inc()
		return nil, err
	}

	monitoring.BookingsTotal.WithLabelValues("success").Inc()
	s.afterBookingCommit(ctx, &result, notification, req.ReturnFlightID)

	return &result, nil
}

// afterBookingCommit 交易成功後的非關鍵路徑：失效快取、丟通知事件。
// 失敗只記 log，不影響已成立的訂票。
func (s *BookingServiceImpl) afterBookingCommit(ctx context.Context, result *model.BookingResult, notification *model.Notification, returnFlightID *int) {
	if err := s.flightCache.InvalidateFlight(ctx, result.Flight.ID); err != nil {
		logger.WithComponent("booking").Warn("invalidate flight cache failed",
			zap.Int("flight_id", result.Flight.ID), zap.Error(err))
	}
	if returnFlightID != nil {
		if err := s.flightCache.InvalidateFlight(ctx, *returnFlightID); err != nil {
			logger.WithComponent("booking").Warn("invalidate flight cache failed",
				zap.Int("flight_id", *returnFlightID), zap.Error(err))
		}
	}

	event := &model.NotificationEvent{
		NotificationID: notification.ID,
		UserID:         notification.UserID,
		Message:        notification.Message,
		Type:           notification.Type,
	}
	if err := s.notifyQueue.PublishNotification(ctx, event); err != nil {
		logger.WithComponent("booking").Warn("publish notification event failed",
			zap.Int("notification_id", notification.ID), zap.Error(err))
	}
}

func (s *BookingServiceImpl) Cancel(ctx context.Context, identity model.Identity, ticketID int) error {
	var flightID int
	var returnFlightID *int

	err := s.store.WithinTx(ctx, func(tx pgx.Tx) error {
		ticket, err := s.ticketRepository.FindByIDWithLock(ctx, tx, ticketID)
		if err != nil {
			return err
		}
		if !identity.CanAccess(ticket.UserID) {
			return apperrors.ErrForbidden
		}
		if ticket.IsCancelled() {
			return apperrors.ErrTicketAlreadyCancelled
		}

		if err := s.ticketRepository.UpdateStatus(ctx, tx, ticketID, model.TicketStatusCancelled); err != nil {
			return err
		}

		// 歸還的是票上記錄的人數，不是固定值
		count := ticket.PassengerCount()
		if err := s.flightRepository.IncrementSeats(ctx, tx, ticket.FlightID, count); err != nil {
			return err
		}
		if ticket.ReturnFlightID != nil {
			if err := s.flightRepository.IncrementSeats(ctx, tx, *ticket.ReturnFlightID, count); err != nil {
				return err
			}
		}

		flightID = ticket.FlightID
		returnFlightID = ticket.ReturnFlightID
		return nil
	})
	if err != nil {
		return err
	}

	if err := s.flightCache.InvalidateFlight(ctx, flightID); err != nil {
		logger.WithComponent("booking").Warn("invalidate flight cache failed",
			zap.Int("flight_id", flightID), zap.Error(err))
	}
	if returnFlightID != nil {
		if err := s.flightCache.InvalidateFlight(ctx, *returnFlightID); err != nil {
			logger.WithComponent("booking").Warn("invalidate flight cache failed",
				zap.Int("flight_id", *returnFlightID), zap.Error(err))
		}
	}

	return nil
}

func (s *BookingServiceImpl) Get(ctx context.Context, identity model.Identity, ticketID int) (*model.Ticket, error) {
	ticket, err := s.ticketRepository.FindByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !identity.CanAccess(ticket.UserID) {
		return nil, apperrors.ErrForbidden
	}

	passengers, err := s.ticketRepository.Passengers(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	ticket.Passengers = passengers

	return ticket, nil
}

func (s *BookingServiceImpl) List(ctx context.Context, query model.TicketListQuery) ([]*model.Ticket, int, error) {
	return s.ticketRepository.List(ctx, query)
}

func (s *BookingServiceImpl) ListByUser(ctx context.Context, userID int, query model.TicketListQuery) ([]*model.Ticket, int, error) {
	query.UserID = &userID
	return s.ticketRepository.List(ctx, query)
}

func (s *BookingServiceImpl) Update(ctx context.Context, ticketID int, params model.UpdateTicketParams) (*model.Ticket, error) {
	if params.Status != nil && !params.Status.IsValid() {
		return nil, apperrors.ErrInvalidStatus
	}
	if params.SeatNumber != nil && !seatmap.IsValidSeat(*params.SeatNumber) {
		return nil, apperrors.ErrInvalidInput
	}
	return s.ticketRepository.Update(ctx, ticketID, params)
}
