package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrDuplicateEmail is returned when a write would violate users.email uniqueness.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrUnknownTechnician is returned when a work order references a missing user.
	ErrUnknownTechnician = errors.New("technician does not exist")
	// ErrUserInUse is returned when deleting a user still assigned to work orders.
	ErrUserInUse = errors.New("user is assigned to work orders")
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"

	usersEmailConstraint     = "users_email_key"
	workOrdersTechnicianFKey = "work_orders_technician_id_fkey"
)

// translatePgError maps constraint violations onto repository sentinels. A technician FK
// violation always names work_orders as its table, so the caller picks fkViolation.
func translatePgError(err, fkViolation error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		if pgErr.ConstraintName == usersEmailConstraint {
			return ErrDuplicateEmail
		}
	case pgForeignKeyViolation:
		if pgErr.ConstraintName == workOrdersTechnicianFKey && fkViolation != nil {
			return fkViolation
		}
	}
	return err
}
