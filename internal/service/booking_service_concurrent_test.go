package service_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"flight-booking/config"
	"flight-booking/internal/cache"
	"flight-booking/internal/database"
	"flight-booking/internal/model"
	"flight-booking/internal/queue"
	"flight-booking/internal/repository"
	"flight-booking/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 需要測試資料庫（見 config.LoadTestConfig），連不上就跳過
func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	cfg := config.LoadTestConfig()
	db, err := database.Open(&cfg.Database)
	if err != nil {
		t.Skipf("test database unavailable: %v", err)
	}
	return db
}

type nopFlightCache struct{}

func (nopFlightCache) GetFlight(ctx context.Context, flightID int) (*model.Flight, error) {
	return nil, cache.ErrCacheMiss
}

func (nopFlightCache) SetFlight(ctx context.Context, flight *model.Flight) error { return nil }

func (nopFlightCache) InvalidateFlight(ctx context.Context, flightID int) error { return nil }

func truncateAll(t *testing.T, db *database.DB) {
	t.Helper()
	_, err := db.Pool.Exec(context.Background(),
		"TRUNCATE notifications, order_details, orders, passenger_details, tickets, feedback, flights, users RESTART IDENTITY CASCADE")
	require.NoError(t, err)
}

func insertTestUser(t *testing.T, db *database.DB, n int) int {
	t.Helper()
	var id int
	err := db.Pool.QueryRow(context.Background(), `
		INSERT INTO users (username, full_name, email)
		VALUES ($1, $2, $3)
		RETURNING id
	`, fmt.Sprintf("user%d", n), fmt.Sprintf("User %d", n), fmt.Sprintf("user%d@test.local", n)).Scan(&id)
	require.NoError(t, err)
	return id
}

func insertTestFlight(t *testing.T, db *database.DB, number string, seats int) int {
	t.Helper()
	departure := time.Now().Add(48 * time.Hour)
	var id int
	err := db.Pool.QueryRow(context.Background(), `
		INSERT INTO flights (flight_number, departure_airport, departure_code,
			arrival_airport, arrival_code, departure_time, arrival_time,
			price, total_seats, available_seats)
		VALUES ($1, 'Tan Son Nhat', 'SGN', 'Noi Bai', 'HAN', $2, $3, 100, $4, $4)
		RETURNING id
	`, number, departure, departure.Add(2*time.Hour), seats).Scan(&id)
	require.NoError(t, err)
	return id
}

// 100 個使用者搶 10 個座位：成功數必須剛好等於座位數，available_seats 歸零
func TestConcurrentBooking_NoOversell(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()
	truncateAll(t, db)

	ctx := context.Background()
	flightRepo := repository.NewFlightRepository(db.Pool)
	ticketRepo := repository.NewTicketRepository(db.Pool)
	notificationRepo := repository.NewNotificationRepository(db.Pool)
	bookingService := service.NewBookingService(
		db, flightRepo, ticketRepo, notificationRepo,
		nopFlightCache{}, queue.NewNotificationQueue(256),
	)

	concurrentUsers := 100
	totalSeats := 10

	userIDs := make([]int, concurrentUsers)
	for i := range userIDs {
		userIDs[i] = insertTestUser(t, db, i)
	}
	flightID := insertTestFlight(t, db, "VN900", totalSeats)

	var wg sync.WaitGroup
	var mu sync.Mutex
	successCount := 0
	failCount := 0

	for i := 0; i < concurrentUsers; i++ {
		wg.Add(1)
		go func(index int) {
			defer wg.Done()

			req := model.BookTicketRequest{
				FlightID:   flightID,
				TicketType: model.TicketTypeOneWay,
				AdultCount: 1,
				Passengers: []model.PassengerInput{
					{
						FullName:      fmt.Sprintf("Passenger %d", index),
						DateOfBirth:   time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
						IDNumber:      fmt.Sprintf("ID%04d", index),
						PassengerType: model.PassengerTypeAdult,
					},
				},
			}

			_, err := bookingService.Book(ctx, userIDs[index], req)

			mu.Lock()
			if err == nil {
				successCount++
			} else {
				failCount++
			}
			mu.Unlock()
		}(i)
	}

	wg.Wait()

	t.Logf("%d users competing for %d seats - success: %d, failed: %d",
		concurrentUsers, totalSeats, successCount, failCount)

	flight, err := flightRepo.FindByID(ctx, flightID)
	require.NoError(t, err)
	assert.Equal(t, totalSeats, successCount)
	assert.Equal(t, concurrentUsers-totalSeats, failCount)
	assert.Equal(t, 0, flight.AvailableSeats)
}

// 取消歸還座位後，後續訂票要能再成功
func TestConcurrentBooking_CancelRestoresSeats(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()
	truncateAll(t, db)

	ctx := context.Background()
	flightRepo := repository.NewFlightRepository(db.Pool)
	ticketRepo := repository.NewTicketRepository(db.Pool)
	notificationRepo := repository.NewNotificationRepository(db.Pool)
	bookingService := service.NewBookingService(
		db, flightRepo, ticketRepo, notificationRepo,
		nopFlightCache{}, queue.NewNotificationQueue(256),
	)

	userID := insertTestUser(t, db, 0)
	flightID := insertTestFlight(t, db, "VN901", 3)

	req := model.BookTicketRequest{
		FlightID:   flightID,
		TicketType: model.TicketTypeOneWay,
		AdultCount: 2,
		ChildCount: 1,
		Passengers: []model.PassengerInput{
			{FullName: "A", DateOfBirth: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC), IDNumber: "A1", PassengerType: model.PassengerTypeAdult},
			{FullName: "B", DateOfBirth: time.Date(1991, 1, 1, 0, 0, 0, 0, time.UTC), IDNumber: "A2", PassengerType: model.PassengerTypeAdult},
			{FullName: "C", DateOfBirth: time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC), IDNumber: "C1", PassengerType: model.PassengerTypeChild},
		},
	}

	result, err := bookingService.Book(ctx, userID, req)
	require.NoError(t, err)

	flight, err := flightRepo.FindByID(ctx, flightID)
	require.NoError(t, err)
	require.Equal(t, 0, flight.AvailableSeats)

	identity := model.Identity{UserID: userID, Role: model.RoleUser}
	require.NoError(t, bookingService.Cancel(ctx, identity, result.Ticket.ID))

	flight, err = flightRepo.FindByID(ctx, flightID)
	require.NoError(t, err)
	assert.Equal(t, 3, flight.AvailableSeats)

	// 同一個座位釋出後可以被重新賣出
	_, err = bookingService.Book(ctx, userID, req)
	assert.NoError(t, err)
}
