package auth

import (
	"time"

	"github.com/haocai-admin/haocai-admin/internal/rbac"
)

// User status values. The convention is inherited from the account schema
// and differs from the enabled/disabled flag used elsewhere.
const (
	UserStatusNormal   = 0
	UserStatusDisabled = 1
	UserStatusLocked   = 2
)

// User represents an authenticated user account.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Status       int       `json:"status"`
	PasswordHash string    `json:"-"`
	DepartmentID int64     `json:"departmentId,omitempty"`
	CreatedAt    time.Time `json:"createTime,omitzero"`
	UpdatedAt    time.Time `json:"updateTime,omitzero"`

	Roles []rbac.Role `json:"roles,omitempty"`
}

// LoginResult is the payload returned by a successful login.
type LoginResult struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
