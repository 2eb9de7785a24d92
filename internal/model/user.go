package model

import "time"

// UserRole separates planners (admins) from supervising teachers.
type UserRole string

const (
	RoleAdmin   UserRole = "ADMIN"
	RoleTeacher UserRole = "TEACHER"
)

// User is a login account. TeacherID links the account to a Teacher entity
// when the user is a teacher; it is nil for admins.
type User struct {
	ID           int       `json:"id"`
	TeacherID    *int      `json:"teacher_id,omitempty"`
	Login        string    `json:"login"`
	PasswordHash string    `json:"-"`
	Role         UserRole  `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsAdmin reports whether the user is a planner.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// LoginRequest is the payload for authentication.
type LoginRequest struct {
	Login    string `json:"login" binding:"required,min=2,max=100"`
	Password string `json:"password" binding:"required,min=4,max=128"`
}
