package repository

import (
	"context"

	"flight-booking/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// StatsRepository 營收統計；所有彙總都只計入已完成（Completed）且未刪除的訂單
type StatsRepository interface {
	CurrentMonthRevenue(ctx context.Context) (decimal.Decimal, error)
	CurrentYearRevenue(ctx context.Context) (decimal.Decimal, error)
	DailyRevenue(ctx context.Context, days int) ([]model.RevenuePoint, error)
	MonthlyRevenue(ctx context.Context, months int) ([]model.RevenuePoint, error)
	YearlyRevenue(ctx context.Context) ([]model.RevenuePoint, error)
}

type StatsRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewStatsRepository(pool *pgxpool.Pool) StatsRepository {
	return &StatsRepositoryImpl{
		pool: pool,
	}
}

const completedOrders = `order_status = 'Completed' AND is_deleted = FALSE`

func (r *StatsRepositoryImpl) CurrentMonthRevenue(ctx context.Context) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(total_amount), 0)
		FROM orders
		WHERE ` + completedOrders + `
			AND date_trunc('month', order_date) = date_trunc('month', NOW())
	`

	var total decimal.Decimal
	if err := r.pool.QueryRow(ctx, query).Scan(&total); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

func (r *StatsRepositoryImpl) CurrentYearRevenue(ctx context.Context) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(total_amount), 0)
		FROM orders
		WHERE ` + completedOrders + `
			AND date_trunc('year', order_date) = date_trunc('year', NOW())
	`

	var total decimal.Decimal
	if err := r.pool.QueryRow(ctx, query).Scan(&total); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// DailyRevenue 近 N 天逐日營收；用 generate_series 補零，沒訂單的日子也要有資料點
func (r *StatsRepositoryImpl) DailyRevenue(ctx context.Context, days int) ([]model.RevenuePoint, error) {
	query := `
		SELECT to_char(d.day, 'YYYY-MM-DD'), COALESCE(SUM(o.total_amount), 0)
		FROM generate_series(
			date_trunc('day', NOW()) - ($1 - 1) * INTERVAL '1 day',
			date_trunc('day', NOW()),
			INTERVAL '1 day') AS d(day)
		LEFT JOIN orders o
			ON date_trunc('day', o.order_date) = d.day
			AND o.` + completedOrders + `
		GROUP BY d.day
		ORDER BY d.day ASC
	`

	return r.queryPoints(ctx, query, days)
}

func (r *StatsRepositoryImpl) MonthlyRevenue(ctx context.Context, months int) ([]model.RevenuePoint, error) {
	query := `
		SELECT to_char(m.month, 'YYYY-MM'), COALESCE(SUM(o.total_amount), 0)
		FROM generate_series(
			date_trunc('month', NOW()) - ($1 - 1) * INTERVAL '1 month',
			date_trunc('month', NOW()),
			INTERVAL '1 month') AS m(month)
		LEFT JOIN orders o
			ON date_trunc('month', o.order_date) = m.month
			AND o.` + completedOrders + `
		GROUP BY m.month
		ORDER BY m.month ASC
	`

	return r.queryPoints(ctx, query, months)
}

func (r *StatsRepositoryImpl) YearlyRevenue(ctx context.Context) ([]model.RevenuePoint, error) {
	query := `
		SELECT to_char(date_trunc('year', order_date), 'YYYY'), SUM(total_amount)
		FROM orders
		WHERE ` + completedOrders + `
		GROUP BY date_trunc('year', order_date)
		ORDER BY date_trunc('year', order_date) ASC
	`

	return r.queryPoints(ctx, query)
}

func (r *StatsRepositoryImpl) queryPoints(ctx context.Context, query string, args ...interface{}) ([]model.RevenuePoint, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	points := make([]model.RevenuePoint, 0)
	for rows.Next() {
		var p model.RevenuePoint
		if err := rows.Scan(&p.Label, &p.Value); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return points, nil
}
