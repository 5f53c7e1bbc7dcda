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

type UserRepository interface {
	FindByID(ctx context.Context, id int) (*model.User, error)
	List(ctx context.Context, query model.UserListQuery) ([]*model.User, int, error)
	Update(ctx context.Context, id int, params model.UpdateUserParams) (*model.User, error)

	// Transaction methods
	DeleteCascade(ctx context.Context, tx pgx.Tx, id int) error
}

type UserRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &UserRepositoryImpl{
		pool: pool,
	}
}

const userColumns = `id, username, full_name, email, phone_number, role, avatar, created_at, updated_at`

func scanUser(row pgx.Row) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.FullName,
		&user.Email,
		&user.PhoneNumber,
		&user.Role,
		&user.Avatar,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) FindByID(ctx context.Context, id int) (*model.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)

	user, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}

	return user, nil
}

func (r *UserRepositoryImpl) List(ctx context.Context, q model.UserListQuery) ([]*model.User, int, error) {
	conds := []string{"1=1"}
	args := []interface{}{}
	argPos := 1

	if q.Search != "" {
		conds = append(conds, fmt.Sprintf(
			"(username ILIKE $%d OR full_name ILIKE $%d OR email ILIKE $%d)", argPos, argPos, argPos))
		args = append(args, "%"+q.Search+"%")
		argPos++
	}
	if q.Role != nil {
		conds = append(conds, fmt.Sprintf("role = $%d", argPos))
		args = append(args, *q.Role)
		argPos++
	}

	where := strings.Join(conds, " AND ")

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM users WHERE %s`, where)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT %s FROM users
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, userColumns, where, argPos, argPos+1)
	args = append(args, q.Limit, (q.Page-1)*q.Limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	users := make([]*model.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (r *UserRepositoryImpl) Update(ctx context.Context, id int, params model.UpdateUserParams) (*model.User, error) {
	sets := []string{}
	args := []interface{}{}
	argPos := 1

	appendSet := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argPos))
		args = append(args, value)
		argPos++
	}

	if params.FullName != nil {
		appendSet("full_name", *params.FullName)
	}
	if params.Username != nil {
		appendSet("username", *params.Username)
	}
	if params.Email != nil {
		appendSet("email", *params.Email)
	}
	if params.PhoneNumber != nil {
		appendSet("phone_number", *params.PhoneNumber)
	}

	if len(sets) == 0 {
		return nil, apperrors.ErrNoFieldsToUpdate
	}

	sets = append(sets, fmt.Sprintf("updated_at = $%d", argPos))
	args = append(args, time.Now().UTC())
	argPos++

	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE users
		SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(sets, ", "), argPos, userColumns)

	user, err := scanUser(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrUserNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, apperrors.ErrDuplicateUserField
		}
		return nil, err
	}

	return user, nil
}

// DeleteCascade 刪除帳號與所有關聯資料；順序由外鍵依賴決定：
// notifications -> order_details -> orders -> passenger_details -> tickets -> feedback -> user。
// 不歸還座位：刪帳號是管理操作，航班座位帳不因此變動。
func (r *UserRepositoryImpl) DeleteCascade(ctx context.Context, tx pgx.Tx, id int) error {
	statements := []string{
		`DELETE FROM notifications WHERE user_id = $1`,
		`DELETE FROM order_details WHERE order_id IN (SELECT id FROM orders WHERE user_id = $1)`,
		`DELETE FROM orders WHERE user_id = $1`,
		`DELETE FROM passenger_details WHERE ticket_id IN (SELECT id FROM tickets WHERE user_id = $1)`,
		`DELETE FROM tickets WHERE user_id = $1`,
		`DELETE FROM feedback WHERE user_id = $1`,
	}

	for _, stmt := range statements {
		if _, err := tx.Exec(ctx, stmt, id); err != nil {
			return err
		}
	}

	result, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}

	return nil
}
