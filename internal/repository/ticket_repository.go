package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"flight-booking/internal/model"
	apperrors "flight-booking/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TicketRepository interface {
	FindByID(ctx context.Context, id int) (*model.Ticket, error)
	List(ctx context.Context, query model.TicketListQuery) ([]*model.Ticket, int, error)
	Passengers(ctx context.Context, ticketID int) ([]*model.PassengerDetail, error)
	Update(ctx context.Context, id int, params model.UpdateTicketParams) (*model.Ticket, error)

	// Transaction methods
	Create(ctx context.Context, tx pgx.Tx, ticket *model.Ticket) (*model.Ticket, error)
	InsertPassengers(ctx context.Context, tx pgx.Tx, ticketID int, passengers []*model.PassengerDetail) error
	TakenSeats(ctx context.Context, tx pgx.Tx, flightID int) (map[string]bool, error)
	FindByIDWithLock(ctx context.Context, tx pgx.Tx, id int) (*model.Ticket, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, id int, status model.TicketStatus) error
}

type TicketRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &TicketRepositoryImpl{
		pool: pool,
	}
}

const ticketColumns = `id, user_id, flight_id, return_flight_id, seat_number,
		ticket_type, adult_count, child_count, total_price, status, booking_date`

func scanTicket(row pgx.Row) (*model.Ticket, error) {
	var ticket model.Ticket
	err := row.Scan(
		&ticket.ID,
		&ticket.UserID,
		&ticket.FlightID,
		&ticket.ReturnFlightID,
		&ticket.SeatNumber,
		&ticket.TicketType,
		&ticket.AdultCount,
		&ticket.ChildCount,
		&ticket.TotalPrice,
		&ticket.Status,
		&ticket.BookingDate,
	)
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *TicketRepositoryImpl) Create(ctx context.Context, tx pgx.Tx, ticket *model.Ticket) (*model.Ticket, error) {
	query := fmt.Sprintf(`
		INSERT INTO tickets (
			user_id, flight_id, return_flight_id, seat_number,
			ticket_type, adult_count, child_count, total_price, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING %s
	`, ticketColumns)

	created, err := scanTicket(tx.QueryRow(ctx, query,
		ticket.UserID, ticket.FlightID, ticket.ReturnFlightID, ticket.SeatNumber,
		ticket.TicketType, ticket.AdultCount, ticket.ChildCount,
		ticket.TotalPrice, ticket.Status,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			// 撞上 idx_tickets_active_seat：並發交易抽到同一個座位
			return nil, apperrors.ErrSeatTaken
		}
		return nil, err
	}

	return created, nil
}

func (r *TicketRepositoryImpl) InsertPassengers(ctx context.Context, tx pgx.Tx, ticketID int, passengers []*model.PassengerDetail) error {
	query := `
		INSERT INTO passenger_details (ticket_id, full_name, date_of_birth, id_number, passenger_type)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	for _, p := range passengers {
		p.TicketID = ticketID
		err := tx.QueryRow(ctx, query,
			ticketID, p.FullName, p.DateOfBirth, p.IDNumber, p.PassengerType,
		).Scan(&p.ID)
		if err != nil {
			return err
		}
	}

	return nil
}

// TakenSeats 在交易內鎖住航班上既有的非取消機票列，回傳已佔用的座位集合。
// 列鎖擋不住並發交易同時插入新列；同座位撞車由 idx_tickets_active_seat
// 把 Create 擋下來（ErrSeatTaken）。
func (r *TicketRepositoryImpl) TakenSeats(ctx context.Context, tx pgx.Tx, flightID int) (map[string]bool, error) {
	query := `
		SELECT seat_number FROM tickets
		WHERE flight_id = $1 AND status <> 'Cancelled'
		FOR UPDATE
	`

	rows, err := tx.Query(ctx, query, flightID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	taken := make(map[string]bool)
	for rows.Next() {
		var seat string
		if err := rows.Scan(&seat); err != nil {
			return nil, err
		}
		taken[seat] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return taken, nil
}

func (r *TicketRepositoryImpl) FindByID(ctx context.Context, id int) (*model.Ticket, error) {
	query := `
		SELECT t.id, t.user_id, t.flight_id, t.return_flight_id, t.seat_number,
			t.ticket_type, t.adult_count, t.child_count, t.total_price, t.status, t.booking_date,
			f.id, f.flight_number, f.departure_airport, f.departure_code,
			f.arrival_airport, f.arrival_code, f.departure_time, f.arrival_time,
			f.price, f.total_seats, f.available_seats, f.created_at, f.updated_at
		FROM tickets t
		JOIN flights f ON f.id = t.flight_id
		WHERE t.id = $1
	`

	var ticket model.Ticket
	var flight model.Flight
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&ticket.ID, &ticket.UserID, &ticket.FlightID, &ticket.ReturnFlightID, &ticket.SeatNumber,
		&ticket.TicketType, &ticket.AdultCount, &ticket.ChildCount,
		&ticket.TotalPrice, &ticket.Status, &ticket.BookingDate,
		&flight.ID, &flight.FlightNumber, &flight.DepartureAirport, &flight.DepartureCode,
		&flight.ArrivalAirport, &flight.ArrivalCode, &flight.DepartureTime, &flight.ArrivalTime,
		&flight.Price, &flight.TotalSeats, &flight.AvailableSeats, &flight.CreatedAt, &flight.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrTicketNotFound
		}
		return nil, err
	}

	ticket.Flight = &flight
	return &ticket, nil
}

func (r *TicketRepositoryImpl) FindByIDWithLock(ctx context.Context, tx pgx.Tx, id int) (*model.Ticket, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM tickets
		WHERE id = $1
		FOR UPDATE
	`, ticketColumns)

	ticket, err := scanTicket(tx.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrTicketNotFound
		}
		return nil, err
	}

	return ticket, nil
}

var sortableTicketColumns = map[string]string{
	"booking_date": "booking_date",
	"total_price":  "total_price",
	"status":       "status",
}

func (r *TicketRepositoryImpl) List(ctx context.Context, q model.TicketListQuery) ([]*model.Ticket, int, error) {
	conds := []string{"1=1"}
	args := []interface{}{}
	argPos := 1

	if q.UserID != nil {
		conds = append(conds, fmt.Sprintf("user_id = $%d", argPos))
		args = append(args, *q.UserID)
		argPos++
	}
	if q.Status != nil {
		conds = append(conds, fmt.Sprintf("status = $%d", argPos))
		args = append(args, *q.Status)
		argPos++
	}

	where := strings.Join(conds, " AND ")

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM tickets WHERE %s`, where)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	orderBy := "booking_date"
	if col, ok := sortableTicketColumns[q.SortBy]; ok {
		orderBy = col
	}
	direction := "DESC"
	if strings.EqualFold(q.SortOrder, "asc") {
		direction = "ASC"
	}

	query := fmt.Sprintf(`
		SELECT %s FROM tickets
		WHERE %s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d
	`, ticketColumns, where, orderBy, direction, argPos, argPos+1)
	args = append(args, q.Limit, (q.Page-1)*q.Limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	tickets := make([]*model.Ticket, 0)
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, 0, err
		}
		tickets = append(tickets, ticket)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return tickets, total, nil
}

func (r *TicketRepositoryImpl) Passengers(ctx context.Context, ticketID int) ([]*model.PassengerDetail, error) {
	query := `
		SELECT id, ticket_id, full_name, date_of_birth, id_number, passenger_type
		FROM passenger_details
		WHERE ticket_id = $1
		ORDER BY id ASC
	`

	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	passengers := make([]*model.PassengerDetail, 0)
	for rows.Next() {
		var p model.PassengerDetail
		err := rows.Scan(&p.ID, &p.TicketID, &p.FullName, &p.DateOfBirth, &p.IDNumber, &p.PassengerType)
		if err != nil {
			return nil, err
		}
		passengers = append(passengers, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return passengers, nil
}

func (r *TicketRepositoryImpl) Update(ctx context.Context, id int, params model.UpdateTicketParams) (*model.Ticket, error) {
	sets := []string{}
	args := []interface{}{}
	argPos := 1

	if params.Status != nil {
		sets = append(sets, fmt.Sprintf("status = $%d", argPos))
		args = append(args, *params.Status)
		argPos++
	}
	if params.SeatNumber != nil {
		sets = append(sets, fmt.Sprintf("seat_number = $%d", argPos))
		args = append(args, *params.SeatNumber)
		argPos++
	}

	if len(sets) == 0 {
		return nil, apperrors.ErrNoFieldsToUpdate
	}

	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE tickets
		SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(sets, ", "), argPos, ticketColumns)

	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrTicketNotFound
		}
		return nil, err
	}

	return ticket, nil
}

func (r *TicketRepositoryImpl) UpdateStatus(ctx context.Context, tx pgx.Tx, id int, status model.TicketStatus) error {
	query := `UPDATE tickets SET status = $1 WHERE id = $2`

	result, err := tx.Exec(ctx, query, status, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrTicketNotFound
	}

	return nil
}
