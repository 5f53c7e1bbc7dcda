package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"flight-booking/internal/model"
	apperrors "flight-booking/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type FlightRepository interface {
	Create(ctx context.Context, flight *model.Flight) (*model.Flight, error)
	List(ctx context.Context, query model.FlightListQuery) ([]*model.Flight, int, error)
	Search(ctx context.Context, query model.FlightSearchQuery) ([]*model.Flight, int, error)
	Cheapest(ctx context.Context, limit int) ([]*model.Flight, error)
	FindByID(ctx context.Context, id int) (*model.Flight, error)
	FindByNumber(ctx context.Context, flightNumber string) (*model.Flight, error)
	Update(ctx context.Context, id int, params model.UpdateFlightParams) (*model.Flight, error)
	Delete(ctx context.Context, id int) error

	// Transaction methods
	FindByIDTx(ctx context.Context, tx pgx.Tx, id int) (*model.Flight, error)
	DecrementSeats(ctx context.Context, tx pgx.Tx, id int, count int) error
	IncrementSeats(ctx context.Context, tx pgx.Tx, id int, count int) error
}

type FlightRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewFlightRepository(pool *pgxpool.Pool) FlightRepository {
	return &FlightRepositoryImpl{
		pool: pool,
	}
}

const flightColumns = `id, flight_number, departure_airport, departure_code,
		arrival_airport, arrival_code, departure_time, arrival_time,
		price, total_seats, available_seats, created_at, updated_at`

func scanFlight(row pgx.Row) (*model.Flight, error) {
	var flight model.Flight
	err := row.Scan(
		&flight.ID,
		&flight.FlightNumber,
		&flight.DepartureAirport,
		&flight.DepartureCode,
		&flight.ArrivalAirport,
		&flight.ArrivalCode,
		&flight.DepartureTime,
		&flight.ArrivalTime,
		&flight.Price,
		&flight.TotalSeats,
		&flight.AvailableSeats,
		&flight.CreatedAt,
		&flight.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &flight, nil
}

func (r *FlightRepositoryImpl) Create(ctx context.Context, flight *model.Flight) (*model.Flight, error) {
	query := fmt.Sprintf(`
		INSERT INTO flights (
			flight_number, departure_airport, departure_code,
			arrival_airport, arrival_code, departure_time, arrival_time,
			price, total_seats, available_seats)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		RETURNING %s
	`, flightColumns)

	created, err := scanFlight(r.pool.QueryRow(ctx, query,
		flight.FlightNumber, flight.DepartureAirport, flight.DepartureCode,
		flight.ArrivalAirport, flight.ArrivalCode,
		flight.DepartureTime, flight.ArrivalTime,
		flight.Price, flight.TotalSeats,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, apperrors.ErrDuplicateFlightNumber
		}
		return nil, err
	}

	return created, nil
}

// sortableFlightColumns 可排序欄位白名單；排序欄位來自 query string，不能直接拼進 SQL
var sortableFlightColumns = map[string]string{
	"price":          "price",
	"departure_time": "departure_time",
	"arrival_time":   "arrival_time",
	"created_at":     "created_at",
}

func (r *FlightRepositoryImpl) List(ctx context.Context, q model.FlightListQuery) ([]*model.Flight, int, error) {
	conds := []string{"1=1"}
	args := []interface{}{}
	argPos := 1

	if q.DepartureCode != "" {
		conds = append(conds, fmt.Sprintf("departure_code = $%d", argPos))
		args = append(args, q.DepartureCode)
		argPos++
	}
	if q.ArrivalCode != "" {
		conds = append(conds, fmt.Sprintf("arrival_code = $%d", argPos))
		args = append(args, q.ArrivalCode)
		argPos++
	}

	where := strings.Join(conds, " AND ")

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM flights WHERE %s`, where)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	orderBy := "departure_time"
	if col, ok := sortableFlightColumns[q.SortBy]; ok {
		orderBy = col
	}
	direction := "ASC"
	if strings.EqualFold(q.SortOrder, "desc") {
		direction = "DESC"
	}

	query := fmt.Sprintf(`
		SELECT %s FROM flights
		WHERE %s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d
	`, flightColumns, where, orderBy, direction, argPos, argPos+1)
	args = append(args, q.Limit, (q.Page-1)*q.Limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	flights := make([]*model.Flight, 0)
	for rows.Next() {
		flight, err := scanFlight(rows)
		if err != nil {
			return nil, 0, err
		}
		flights = append(flights, flight)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return flights, total, nil
}

// Search 依路線、出發日（整天）與剩餘座位數查詢去程航班
func (r *FlightRepositoryImpl) Search(ctx context.Context, q model.FlightSearchQuery) ([]*model.Flight, int, error) {
	dayStart := time.Date(
		q.DepartureDate.Year(), q.DepartureDate.Month(), q.DepartureDate.Day(),
		0, 0, 0, 0, q.DepartureDate.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	where := `
		departure_code = $1 AND arrival_code = $2
		AND departure_time >= $3 AND departure_time < $4
		AND available_seats >= $5`
	args := []interface{}{q.DepartureCode, q.ArrivalCode, dayStart, dayEnd, q.Passengers}

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM flights WHERE %s`, where)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT %s FROM flights
		WHERE %s
		ORDER BY departure_time ASC
		LIMIT $6 OFFSET $7
	`, flightColumns, where)
	args = append(args, q.Limit, (q.Page-1)*q.Limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	flights := make([]*model.Flight, 0)
	for rows.Next() {
		flight, err := scanFlight(rows)
		if err != nil {
			return nil, 0, err
		}
		flights = append(flights, flight)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return flights, total, nil
}

func (r *FlightRepositoryImpl) Cheapest(ctx context.Context, limit int) ([]*model.Flight, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM flights
		WHERE departure_time > NOW() AND available_seats > 0
		ORDER BY price ASC
		LIMIT $1
	`, flightColumns)

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	flights := make([]*model.Flight, 0)
	for rows.Next() {
		flight, err := scanFlight(rows)
		if err != nil {
			return nil, err
		}
		flights = append(flights, flight)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return flights, nil
}

func (r *FlightRepositoryImpl) FindByID(ctx context.Context, id int) (*model.Flight, error) {
	query := fmt.Sprintf(`SELECT %s FROM flights WHERE id = $1`, flightColumns)

	flight, err := scanFlight(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrFlightNotFound
		}
		return nil, err
	}

	return flight, nil
}

func (r *FlightRepositoryImpl) FindByNumber(ctx context.Context, flightNumber string) (*model.Flight, error) {
	query := fmt.Sprintf(`SELECT %s FROM flights WHERE flight_number = $1`, flightColumns)

	flight, err := scanFlight(r.pool.QueryRow(ctx, query, flightNumber))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrFlightNotFound
		}
		return nil, err
	}

	return flight, nil
}

func (r *FlightRepositoryImpl) Update(ctx context.Context, id int, params model.UpdateFlightParams) (*model.Flight, error) {
	sets := []string{}
	args := []interface{}{}
	argPos := 1

	appendSet := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argPos))
		args = append(args, value)
		argPos++
	}

	if params.FlightNumber != nil {
		appendSet("flight_number", *params.FlightNumber)
	}
	if params.DepartureAirport != nil {
		appendSet("departure_airport", *params.DepartureAirport)
	}
	if params.DepartureCode != nil {
		appendSet("departure_code", *params.DepartureCode)
	}
	if params.ArrivalAirport != nil {
		appendSet("arrival_airport", *params.ArrivalAirport)
	}
	if params.ArrivalCode != nil {
		appendSet("arrival_code", *params.ArrivalCode)
	}
	if params.DepartureTime != nil {
		appendSet("departure_time", *params.DepartureTime)
	}
	if params.ArrivalTime != nil {
		appendSet("arrival_time", *params.ArrivalTime)
	}
	if params.Price != nil {
		appendSet("price", *params.Price)
	}
	if params.AvailableSeats != nil {
		appendSet("available_seats", *params.AvailableSeats)
	}

	if len(sets) == 0 {
		return nil, apperrors.ErrNoFieldsToUpdate
	}

	sets = append(sets, fmt.Sprintf("updated_at = $%d", argPos))
	args = append(args, time.Now().UTC())
	argPos++

	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE flights
		SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(sets, ", "), argPos, flightColumns)

	flight, err := scanFlight(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrFlightNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, apperrors.ErrDuplicateFlightNumber
		}
		return nil, err
	}

	return flight, nil
}

// Delete 只允許刪除沒有任何機票的航班
func (r *FlightRepositoryImpl) Delete(ctx context.Context, id int) error {
	var ticketCount int
	countQuery := `SELECT COUNT(*) FROM tickets WHERE flight_id = $1 OR return_flight_id = $1`
	if err := r.pool.QueryRow(ctx, countQuery, id).Scan(&ticketCount); err != nil {
		return err
	}
	if ticketCount > 0 {
		return apperrors.ErrFlightHasTickets
	}

	result, err := r.pool.Exec(ctx, `DELETE FROM flights WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrFlightNotFound
	}

	return nil
}

func (r *FlightRepositoryImpl) FindByIDTx(ctx context.Context, tx pgx.Tx, id int) (*model.Flight, error) {
	query := fmt.Sprintf(`SELECT %s FROM flights WHERE id = $1`, flightColumns)

	flight, err := scanFlight(tx.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrFlightNotFound
		}
		return nil, err
	}

	return flight, nil
}

// DecrementSeats 條件式扣位：available_seats >= count 才會更新，
// RowsAffected == 0 代表座位不足（或航班不存在），交易應整筆回滾。
func (r *FlightRepositoryImpl) DecrementSeats(ctx context.Context, tx pgx.Tx, id int, count int) error {
	query := `
		UPDATE flights
		SET available_seats = available_seats - $1, updated_at = $2
		WHERE id = $3 AND available_seats >= $1
	`

	result, err := tx.Exec(ctx, query, count, time.Now().UTC(), id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrInsufficientSeats
	}

	return nil
}

// IncrementSeats 歸還座位；上限為 total_seats，避免重複取消造成超還
func (r *FlightRepositoryImpl) IncrementSeats(ctx context.Context, tx pgx.Tx, id int, count int) error {
	query := `
		UPDATE flights
		SET available_seats = LEAST(available_seats + $1, total_seats), updated_at = $2
		WHERE id = $3
	`

	result, err := tx.Exec(ctx, query, count, time.Now().UTC(), id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrFlightNotFound
	}

	return nil
}
