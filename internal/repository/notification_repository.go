package repository

import (
	"context"
	"fmt"
	"strings"

	"flight-booking/internal/model"
	apperrors "flight-booking/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type NotificationRepository interface {
	List(ctx context.Context, query model.NotificationListQuery) ([]*model.Notification, int, error)
	FindByID(ctx context.Context, id int) (*model.Notification, error)
	MarkRead(ctx context.Context, id int) error
	MarkAllRead(ctx context.Context, userID int) error
	Delete(ctx context.Context, id int) error
	DeleteAll(ctx context.Context, userID int) error
	UnreadCount(ctx context.Context, userID int) (int, error)

	// Transaction methods
	Create(ctx context.Context, tx pgx.Tx, notification *model.Notification) (*model.Notification, error)
}

type NotificationRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewNotificationRepository(pool *pgxpool.Pool) NotificationRepository {
	return &NotificationRepositoryImpl{
		pool: pool,
	}
}

// Create 在交易內寫入通知列，與業務寫入一起 commit 或一起回滾
func (r *NotificationRepositoryImpl) Create(ctx context.Context, tx pgx.Tx, n *model.Notification) (*model.Notification, error) {
	query := `
		INSERT INTO notifications (user_id, message, type)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, message, type, is_read, created_at
	`

	var created model.Notification
	err := tx.QueryRow(ctx, query, n.UserID, n.Message, n.Type).Scan(
		&created.ID, &created.UserID, &created.Message,
		&created.Type, &created.IsRead, &created.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &created, nil
}

func (r *NotificationRepositoryImpl) List(ctx context.Context, q model.NotificationListQuery) ([]*model.Notification, int, error) {
	conds := []string{"user_id = $1"}
	args := []interface{}{q.UserID}
	argPos := 2

	if q.IsRead != nil {
		conds = append(conds, fmt.Sprintf("is_read = $%d", argPos))
		args = append(args, *q.IsRead)
		argPos++
	}

	where := strings.Join(conds, " AND ")

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM notifications WHERE %s`, where)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT id, user_id, message, type, is_read, created_at
		FROM notifications
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, where, argPos, argPos+1)
	args = append(args, q.Limit, (q.Page-1)*q.Limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	notifications := make([]*model.Notification, 0)
	for rows.Next() {
		var n model.Notification
		err := rows.Scan(&n.ID, &n.UserID, &n.Message, &n.Type, &n.IsRead, &n.CreatedAt)
		if err != nil {
			return nil, 0, err
		}
		notifications = append(notifications, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return notifications, total, nil
}

func (r *NotificationRepositoryImpl) FindByID(ctx context.Context, id int) (*model.Notification, error) {
	query := `
		SELECT id, user_id, message, type, is_read, created_at
		FROM notifications
		WHERE id = $1
	`

	var n model.Notification
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&n.ID, &n.UserID, &n.Message, &n.Type, &n.IsRead, &n.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrNotificationNotFound
		}
		return nil, err
	}

	return &n, nil
}

func (r *NotificationRepositoryImpl) MarkRead(ctx context.Context, id int) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotificationNotFound
	}

	return nil
}

func (r *NotificationRepositoryImpl) MarkAllRead(ctx context.Context, userID int) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND is_read = FALSE`, userID)
	return err
}

func (r *NotificationRepositoryImpl) Delete(ctx context.Context, id int) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM notifications WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotificationNotFound
	}

	return nil
}

func (r *NotificationRepositoryImpl) DeleteAll(ctx context.Context, userID int) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM notifications WHERE user_id = $1`, userID)
	return err
}

func (r *NotificationRepositoryImpl) UnreadCount(ctx context.Context, userID int) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE`, userID).Scan(&count)
	if err != nil {
		return 0, err
	}

	return count, nil
}
