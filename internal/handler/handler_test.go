package handler_test

import (
	"context"
	"testing"
	"time"

	"flight-booking/internal/model"
	"flight-booking/internal/payment"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-secret"

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	m.Run()
}

// signToken 產生一個測試用的存取權杖
func signToken(t *testing.T, userID int, role model.Role) string {
	t.Helper()
	claims := jwt.MapClaims{
		"user_id": userID,
		"role":    string(role),
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return token
}

type mockBookingService struct {
	mock.Mock
}

func (m *mockBookingService) Book(ctx context.Context, userID int, req model.BookTicketRequest) (*model.BookingResult, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BookingResult), args.Error(1)
}

func (m *mockBookingService) Cancel(ctx context.Context, identity model.Identity, ticketID int) error {
	return m.Called(ctx, identity, ticketID).Error(0)
}

func (m *mockBookingService) Get(ctx context.Context, identity model.Identity, ticketID int) (*model.Ticket, error) {
	args := m.Called(ctx, identity, ticketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Ticket), args.Error(1)
}

func (m *mockBookingService) List(ctx context.Context, query model.TicketListQuery) ([]*model.Ticket, int, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*model.Ticket), args.Int(1), args.Error(2)
}

func (m *mockBookingService) ListByUser(ctx context.Context, userID int, query model.TicketListQuery) ([]*model.Ticket, int, error) {
	args := m.Called(ctx, userID, query)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*model.Ticket), args.Int(1), args.Error(2)
}

func (m *mockBookingService) Update(ctx context.Context, ticketID int, params model.UpdateTicketParams) (*model.Ticket, error) {
	args := m.Called(ctx, ticketID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Ticket), args.Error(1)
}

type mockPaymentService struct {
	mock.Mock
}

func (m *mockPaymentService) CreatePayment(ctx context.Context, identity model.Identity, orderID int, provider string, clientIP string) (*payment.CreatePaymentResult, error) {
	args := m.Called(ctx, identity, orderID, provider, clientIP)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.CreatePaymentResult), args.Error(1)
}

func (m *mockPaymentService) HandleIPN(ctx context.Context, provider string, params map[string]string) error {
	return m.Called(ctx, provider, params).Error(0)
}
