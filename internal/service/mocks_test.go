package service_test

import (
	"context"

	"flight-booking/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
)

// fakeTxRunner 直接用 nil tx 執行閉包；mock repo 不碰 tx，所以單元測試不需要真的連線
type fakeTxRunner struct {
	beginErr error
}

func (f *fakeTxRunner) WithinTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	if f.beginErr != nil {
		return f.beginErr
	}
	return fn(nil)
}

type mockFlightRepository struct {
	mock.Mock
}

func (m *mockFlightRepository) Create(ctx context.Context, flight *model.Flight) (*model.Flight, error) {
	args := m.Called(ctx, flight)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Flight), args.Error(1)
}

func (m *mockFlightRepository) List(ctx context.Context, query model.FlightListQuery) ([]*model.Flight, int, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*model.Flight), args.Int(1), args.Error(2)
}

func (m *mockFlightRepository) Search(ctx context.Context, query model.FlightSearchQuery) ([]*model.Flight, int, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*model.Flight), args.Int(1), args.Error(2)
}

func (m *mockFlightRepository) Cheapest(ctx context.Context, limit int) ([]*model.Flight, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Flight), args.Error(1)
}

func (m *mockFlightRepository) FindByID(ctx context.Context, id int) (*model.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Flight), args.Error(1)
}

func (m *mockFlightRepository) FindByNumber(ctx context.Context, flightNumber string) (*model.Flight, error) {
	args := m.Called(ctx, flightNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Flight), args.Error(1)
}

func (m *mockFlightRepository) Update(ctx context.Context, id int, params model.UpdateFlightParams) (*model.Flight, error) {
	args := m.Called(ctx, id, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Flight), args.Error(1)
}

func (m *mockFlightRepository) Delete(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockFlightRepository) FindByIDTx(ctx context.Context, tx pgx.Tx, id int) (*model.Flight, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Flight), args.Error(1)
}

func (m *mockFlightRepository) DecrementSeats(ctx context.Context, tx pgx.Tx, id int, count int) error {
	return m.Called(ctx, tx, id, count).Error(0)
}

func (m *mockFlightRepository) IncrementSeats(ctx context.Context, tx pgx.Tx, id int, count int) error {
	return m.Called(ctx, tx, id, count).Error(0)
}

type mockTicketRepository struct {
	mock.Mock
}

func (m *mockTicketRepository) FindByID(ctx context.Context, id int) (*model.Ticket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Ticket), args.Error(1)
}

func (m *mockTicketRepository) List(ctx context.Context, query model.TicketListQuery) ([]*model.Ticket, int, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*model.Ticket), args.Int(1), args.Error(2)
}

func (m *mockTicketRepository) Passengers(ctx context.Context, ticketID int) ([]*model.PassengerDetail, error) {
	args := m.Called(ctx, ticketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.PassengerDetail), args.Error(1)
}

func (m *mockTicketRepository) Update(ctx context.Context, id int, params model.UpdateTicketParams) (*model.Ticket, error) {
	args := m.Called(ctx, id, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Ticket), args.Error(1)
}

func (m *mockTicketRepository) Create(ctx context.Context, tx pgx.Tx, ticket *model.Ticket) (*model.Ticket, error) {
	args := m.Called(ctx, tx, ticket)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Ticket), args.Error(1)
}

func (m *mockTicketRepository) InsertPassengers(ctx context.Context, tx pgx.Tx, ticketID int, passengers []*model.PassengerDetail) error {
	return m.Called(ctx, tx, ticketID, passengers).Error(0)
}

func (m *mockTicketRepository) TakenSeats(ctx context.Context, tx pgx.Tx, flightID int) (map[string]bool, error) {
	args := m.Called(ctx, tx, flightID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]bool), args.Error(1)
}

func (m *mockTicketRepository) FindByIDWithLock(ctx context.Context, tx pgx.Tx, id int) (*model.Ticket, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Ticket), args.Error(1)
}

func (m *mockTicketRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, id int, status model.TicketStatus) error {
	return m.Called(ctx, tx, id, status).Error(0)
}

type mockOrderRepository struct {
	mock.Mock
}

func (m *mockOrderRepository) FindByID(ctx context.Context, id int) (*model.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *mockOrderRepository) Details(ctx context.Context, orderID int) ([]*model.OrderDetail, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.OrderDetail), args.Error(1)
}

func (m *mockOrderRepository) List(ctx context.Context, query model.OrderListQuery) ([]*model.Order, int, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*model.Order), args.Int(1), args.Error(2)
}

func (m *mockOrderRepository) Update(ctx context.Context, id int, params model.UpdateOrderParams) (*model.Order, error) {
	args := m.Called(ctx, id, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *mockOrderRepository) OwnerID(ctx context.Context, orderID int) (int, error) {
	args := m.Called(ctx, orderID)
	return args.Int(0), args.Error(1)
}

func (m *mockOrderRepository) Create(ctx context.Context, tx pgx.Tx, order *model.Order) (*model.Order, error) {
	args := m.Called(ctx, tx, order)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *mockOrderRepository) CreateDetail(ctx context.Context, tx pgx.Tx, detail *model.OrderDetail) (*model.OrderDetail, error) {
	args := m.Called(ctx, tx, detail)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderDetail), args.Error(1)
}

func (m *mockOrderRepository) FindByIDWithLock(ctx context.Context, tx pgx.Tx, id int) (*model.Order, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *mockOrderRepository) Cancel(ctx context.Context, tx pgx.Tx, id int) error {
	return m.Called(ctx, tx, id).Error(0)
}

func (m *mockOrderRepository) MarkPaid(ctx context.Context, tx pgx.Tx, id int) (bool, error) {
	args := m.Called(ctx, tx, id)
	return args.Bool(0), args.Error(1)
}

type mockNotificationRepository struct {
	mock.Mock
}

func (m *mockNotificationRepository) List(ctx context.Context, query model.NotificationListQuery) ([]*model.Notification, int, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*model.Notification), args.Int(1), args.Error(2)
}

func (m *mockNotificationRepository) FindByID(ctx context.Context, id int) (*model.Notification, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Notification), args.Error(1)
}

func (m *mockNotificationRepository) MarkRead(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockNotificationRepository) Delete(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockNotificationRepository) DeleteAll(ctx context.Context, userID int) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *mockNotificationRepository) UnreadCount(ctx context.Context, userID int) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *mockNotificationRepository) MarkAllRead(ctx context.Context, userID int) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *mockNotificationRepository) Create(ctx context.Context, tx pgx.Tx, notification *model.Notification) (*model.Notification, error) {
	args := m.Called(ctx, tx, notification)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Notification), args.Error(1)
}

type mockFlightCache struct {
	mock.Mock
}

func (m *mockFlightCache) GetFlight(ctx context.Context, flightID int) (*model.Flight, error) {
	args := m.Called(ctx, flightID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Flight), args.Error(1)
}

func (m *mockFlightCache) SetFlight(ctx context.Context, flight *model.Flight) error {
	return m.Called(ctx, flight).Error(0)
}

func (m *mockFlightCache) InvalidateFlight(ctx context.Context, flightID int) error {
	return m.Called(ctx, flightID).Error(0)
}
