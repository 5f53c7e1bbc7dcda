package repository

import (
	"context"

	"flight-booking/internal/model"
	apperrors "flight-booking/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type FeedbackRepository interface {
	Create(ctx context.Context, feedback *model.Feedback) (*model.Feedback, error)
	List(ctx context.Context, page, limit int) ([]*model.Feedback, int, error)
	FindByID(ctx context.Context, id int) (*model.Feedback, error)
	Delete(ctx context.Context, id int) error
}

type FeedbackRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewFeedbackRepository(pool *pgxpool.Pool) FeedbackRepository {
	return &FeedbackRepositoryImpl{
		pool: pool,
	}
}

func (r *FeedbackRepositoryImpl) Create(ctx context.Context, f *model.Feedback) (*model.Feedback, error) {
	query := `
		INSERT INTO feedback (user_id, full_name, email, content, rating)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, full_name, email, content, rating, created_at
	`

	var created model.Feedback
	err := r.pool.QueryRow(ctx, query,
		f.UserID, f.FullName, f.Email, f.Content, f.Rating,
	).Scan(
		&created.ID, &created.UserID, &created.FullName,
		&created.Email, &created.Content, &created.Rating, &created.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &created, nil
}

func (r *FeedbackRepositoryImpl) List(ctx context.Context, page, limit int) ([]*model.Feedback, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM feedback`).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, user_id, full_name, email, content, rating, created_at
		FROM feedback
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := make([]*model.Feedback, 0)
	for rows.Next() {
		var f model.Feedback
		err := rows.Scan(&f.ID, &f.UserID, &f.FullName, &f.Email, &f.Content, &f.Rating, &f.CreatedAt)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

func (r *FeedbackRepositoryImpl) FindByID(ctx context.Context, id int) (*model.Feedback, error) {
	query := `
		SELECT id, user_id, full_name, email, content, rating, created_at
		FROM feedback
		WHERE id = $1
	`

	var f model.Feedback
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&f.ID, &f.UserID, &f.FullName, &f.Email, &f.Content, &f.Rating, &f.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrFeedbackNotFound
		}
		return nil, err
	}

	return &f, nil
}

func (r *FeedbackRepositoryImpl) Delete(ctx context.Context, id int) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM feedback WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrFeedbackNotFound
	}

	return nil
}
