package domain

import "time"

// User is an account holder. Technicians are plain users referenced by work orders.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	IsAdmin      bool
	PhoneNumber  *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserPatch carries optional profile changes. Nil fields are left untouched.
type UserPatch struct {
	Name        *string
	Email       *string
	Password    *string
	PhoneNumber *string
}
