package domain

import (
	"context"
	"strings"
)

type Role string

const (
	RoleUser    Role = "usuario"
	RoleLojista Role = "lojista"
)

// User is owned by the auth service; this service only reads it.
type User struct {
	ID    int64
	Name  string
	Email string
	Phone string
	Role  Role
}

// FirstName is what other claimers see in the "last users" list.
func (u *User) FirstName() string {
	name := strings.TrimSpace(u.Name)
	if i := strings.IndexByte(name, ' '); i > 0 {
		return name[:i]
	}
	return name
}

type UserRepository interface {
	GetUserByID(ctx context.Context, id int64) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
}

// NormalizeEmail trims and lower-cases an address typed into a form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
