package domain

import (
	"context"
	"time"
)

type Role string

const (
	RoleAdmin Role = "Admin"
	RoleUser  Role = "User"
)

// Roles lists the fixed role names the service relies on.
func Roles() []Role {
	return []Role{RoleAdmin, RoleUser}
}

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Principal is the authenticated caller attached to a request.
type Principal struct {
	UserID int64
	Email  string
	Role   Role
}

func (p Principal) HasRole(role Role) bool {
	return p.Role == role
}

type UserRepository interface {
	CreateUser(ctx context.Context, u *User) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByID(ctx context.Context, id int64) (*User, error)
}

type RoleRepository interface {
	EnsureRole(ctx context.Context, role Role) error
	ListRoles(ctx context.Context) ([]Role, error)
}
