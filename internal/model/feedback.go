package model

import "time"

// Feedback 意見回饋；UserID 可為空（未登入也能留言）
type Feedback struct {
	ID        int       `json:"id" db:"id"`
	UserID    *int      `json:"user_id,omitempty" db:"user_id"`
	FullName  string    `json:"full_name" db:"full_name"`
	Email     string    `json:"email" db:"email"`
	Content   string    `json:"content" db:"content"`
	Rating    int       `json:"rating" db:"rating"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type CreateFeedbackRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Content  string `json:"content" binding:"required"`
	Rating   int    `json:"rating" binding:"min=1,max=5"`
}
