package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"flight-booking/internal/model"
	apperrors "flight-booking/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OrderRepository interface {
	FindByID(ctx context.Context, id int) (*model.Order, error)
	Details(ctx context.Context, orderID int) ([]*model.OrderDetail, error)
	List(ctx context.Context, query model.OrderListQuery) ([]*model.Order, int, error)
	Update(ctx context.Context, id int, params model.UpdateOrderParams) (*model.Order, error)
	OwnerID(ctx context.Context, orderID int) (int, error)

	// Transaction methods
	Create(ctx context.Context, tx pgx.Tx, order *model.Order) (*model.Order, error)
	CreateDetail(ctx context.Context, tx pgx.Tx, detail *model.OrderDetail) (*model.OrderDetail, error)
	FindByIDWithLock(ctx context.Context, tx pgx.Tx, id int) (*model.Order, error)
	Cancel(ctx context.Context, tx pgx.Tx, id int) error
	MarkPaid(ctx context.Context, tx pgx.Tx, id int) (bool, error)
}

type OrderRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) OrderRepository {
	return &OrderRepositoryImpl{
		pool: pool,
	}
}

const orderColumns = `id, user_id, order_date, total_amount, address_delivery,
		payment_method, order_status, payment_status, is_deleted, created_at, updated_at`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var order model.Order
	err := row.Scan(
		&order.ID,
		&order.UserID,
		&order.OrderDate,
		&order.TotalAmount,
		&order.AddressDelivery,
		&order.PaymentMethod,
		&order.OrderStatus,
		&order.PaymentStatus,
		&order.IsDeleted,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepositoryImpl) Create(ctx context.Context, tx pgx.Tx, order *model.Order) (*model.Order, error) {
	query := fmt.Sprintf(`
		INSERT INTO orders (
			user_id, total_amount, address_delivery,
			payment_method, order_status, payment_status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING %s
	`, orderColumns)

	created, err := scanOrder(tx.QueryRow(ctx, query,
		order.UserID, order.TotalAmount, order.AddressDelivery,
		order.PaymentMethod, order.OrderStatus, order.PaymentStatus,
	))
	if err != nil {
		return nil, err
	}

	return created, nil
}

func (r *OrderRepositoryImpl) CreateDetail(ctx context.Context, tx pgx.Tx, detail *model.OrderDetail) (*model.OrderDetail, error) {
	query := `
		INSERT INTO order_details (order_id, ticket_id, quantity, unit_price, discount, total_price)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, order_id, ticket_id, quantity, unit_price, discount, total_price
	`

	var created model.OrderDetail
	err := tx.QueryRow(ctx, query,
		detail.OrderID, detail.TicketID, detail.Quantity,
		detail.UnitPrice, detail.Discount, detail.TotalPrice,
	).Scan(
		&created.ID, &created.OrderID, &created.TicketID, &created.Quantity,
		&created.UnitPrice, &created.Discount, &created.TotalPrice,
	)
	if err != nil {
		return nil, err
	}

	return &created, nil
}

func (r *OrderRepositoryImpl) FindByID(ctx context.Context, id int) (*model.Order, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM orders
		WHERE id = $1 AND is_deleted = FALSE
	`, orderColumns)

	order, err := scanOrder(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrOrderNotFound
		}
		return nil, err
	}

	return order, nil
}

func (r *OrderRepositoryImpl) FindByIDWithLock(ctx context.Context, tx pgx.Tx, id int) (*model.Order, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM orders
		WHERE id = $1 AND is_deleted = FALSE
		FOR UPDATE
	`, orderColumns)

	order, err := scanOrder(tx.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrOrderNotFound
		}
		return nil, err
	}

	return order, nil
}

// Details 取訂單明細並帶出對應機票（發票用）
func (r *OrderRepositoryImpl) Details(ctx context.Context, orderID int) ([]*model.OrderDetail, error) {
	query := `
		SELECT d.id, d.order_id, d.ticket_id, d.quantity, d.unit_price, d.discount, d.total_price,
			t.id, t.user_id, t.flight_id, t.return_flight_id, t.seat_number,
			t.ticket_type, t.adult_count, t.child_count, t.total_price, t.status, t.booking_date
		FROM order_details d
		JOIN tickets t ON t.id = d.ticket_id
		WHERE d.order_id = $1
		ORDER BY d.id ASC
	`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	details := make([]*model.OrderDetail, 0)
	for rows.Next() {
		var d model.OrderDetail
		var t model.Ticket
		err := rows.Scan(
			&d.ID, &d.OrderID, &d.TicketID, &d.Quantity, &d.UnitPrice, &d.Discount, &d.TotalPrice,
			&t.ID, &t.UserID, &t.FlightID, &t.ReturnFlightID, &t.SeatNumber,
			&t.TicketType, &t.AdultCount, &t.ChildCount, &t.TotalPrice, &t.Status, &t.BookingDate,
		)
		if err != nil {
			return nil, err
		}
		d.Ticket = &t
		details = append(details, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return details, nil
}

func (r *OrderRepositoryImpl) List(ctx context.Context, q model.OrderListQuery) ([]*model.Order, int, error) {
	conds := []string{"is_deleted = FALSE"}
	args := []interface{}{}
	argPos := 1

	if q.UserID != nil {
		conds = append(conds, fmt.Sprintf("user_id = $%d", argPos))
		args = append(args, *q.UserID)
		argPos++
	}
	if q.Status != nil {
		conds = append(conds, fmt.Sprintf("order_status = $%d", argPos))
		args = append(args, *q.Status)
		argPos++
	}
	if q.PaymentStatus != nil {
		conds = append(conds, fmt.Sprintf("payment_status = $%d", argPos))
		args = append(args, *q.PaymentStatus)
		argPos++
	}

	where := strings.Join(conds, " AND ")

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM orders WHERE %s`, where)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT %s FROM orders
		WHERE %s
		ORDER BY order_date DESC
		LIMIT $%d OFFSET $%d
	`, orderColumns, where, argPos, argPos+1)
	args = append(args, q.Limit, (q.Page-1)*q.Limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	orders := make([]*model.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

func (r *OrderRepositoryImpl) Update(ctx context.Context, id int, params model.UpdateOrderParams) (*model.Order, error) {
	sets := []string{}
	args := []interface{}{}
	argPos := 1

	if params.OrderStatus != nil {
		sets = append(sets, fmt.Sprintf("order_status = $%d", argPos))
		args = append(args, *params.OrderStatus)
		argPos++
	}
	if params.PaymentStatus != nil {
		sets = append(sets, fmt.Sprintf("payment_status = $%d", argPos))
		args = append(args, *params.PaymentStatus)
		argPos++
	}

	if len(sets) == 0 {
		return nil, apperrors.ErrNoFieldsToUpdate
	}

	sets = append(sets, fmt.Sprintf("updated_at = $%d", argPos))
	args = append(args, time.Now().UTC())
	argPos++

	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE orders
		SET %s
		WHERE id = $%d AND is_deleted = FALSE
		RETURNING %s
	`, strings.Join(sets, ", "), argPos, orderColumns)

	order, err := scanOrder(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrOrderNotFound
		}
		return nil, err
	}

	return order, nil
}

// Cancel 軟刪除並標記取消；機票狀態不在這裡動（退票走 booking 流程）
func (r *OrderRepositoryImpl) Cancel(ctx context.Context, tx pgx.Tx, id int) error {
	query := `
		UPDATE orders
		SET order_status = 'Canceled', is_deleted = TRUE, updated_at = $1
		WHERE id = $2 AND is_deleted = FALSE
	`

	result, err := tx.Exec(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrOrderNotFound
	}

	return nil
}

// MarkPaid 冪等付款確認：只有尚未付款的訂單會被更新。
// 回傳值表示這次呼叫是否真的完成了 Pending -> Paid 的轉換。
func (r *OrderRepositoryImpl) MarkPaid(ctx context.Context, tx pgx.Tx, id int) (bool, error) {
	query := `
		UPDATE orders
		SET payment_status = 'Paid', order_status = 'Processing', updated_at = $1
		WHERE id = $2 AND is_deleted = FALSE AND payment_status <> 'Paid'
	`

	result, err := tx.Exec(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return false, err
	}

	return result.RowsAffected() > 0, nil
}

func (r *OrderRepositoryImpl) OwnerID(ctx context.Context, orderID int) (int, error) {
	var userID int
	err := r.pool.QueryRow(ctx,
		`SELECT user_id FROM orders WHERE id = $1 AND is_deleted = FALSE`, orderID,
	).Scan(&userID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return 0, apperrors.ErrOrderNotFound
		}
		return 0, err
	}

	return userID, nil
}
