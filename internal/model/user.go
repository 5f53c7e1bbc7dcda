package model

import "time"

type Role string

const (
	RoleUser  Role = "User"
	RoleAdmin Role = "Admin"
)

// Identity 由身分驗證協作者（JWT middleware）提供的當前使用者
type Identity struct {
	UserID int
	Role   Role
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// CanAccess 本人或管理員
func (i Identity) CanAccess(ownerID int) bool {
	return i.IsAdmin() || i.UserID == ownerID
}

// User 使用者帳號；憑證由身分驗證協作者管理，這裡只有個人資料
type User struct {
	ID          int       `json:"id" db:"id"`
	Username    string    `json:"username" db:"username"`
	FullName    string    `json:"full_name" db:"full_name"`
	Email       string    `json:"email" db:"email"`
	PhoneNumber string    `json:"phone_number" db:"phone_number"`
	Role        Role      `json:"role" db:"role"`
	Avatar      string    `json:"avatar" db:"avatar"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

type UpdateUserParams struct {
	FullName    *string
	Username    *string
	Email       *string
	PhoneNumber *string
}

func (p UpdateUserParams) IsEmpty() bool {
	return p.FullName == nil && p.Username == nil && p.Email == nil && p.PhoneNumber == nil
}

type UserListQuery struct {
	Search string
	Role   *Role
	Page   int
	Limit  int
}
