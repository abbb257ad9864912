package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestTranslatePgError(t *testing.T) {
	deleteRestricted := &pgconn.PgError{
		Code:           pgForeignKeyViolation,
		ConstraintName: workOrdersTechnicianFKey,
		TableName:      "work_orders",
		Message:        `update or delete on table "users" violates foreign key constraint "work_orders_technician_id_fkey" on table "work_orders"`,
	}
	missingTechnician := &pgconn.PgError{
		Code:           pgForeignKeyViolation,
		ConstraintName: workOrdersTechnicianFKey,
		TableName:      "work_orders",
		Message:        `insert or update on table "work_orders" violates foreign key constraint "work_orders_technician_id_fkey"`,
	}
	duplicate := &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: usersEmailConstraint, TableName: "users"}
	otherFK := &pgconn.PgError{Code: pgForeignKeyViolation, ConstraintName: "some_other_fkey"}
	plain := errors.New("connection reset")

	cases := []struct {
		name        string
		err         error
		fkViolation error
		want        error
	}{
		{"user delete blocked by assigned work orders", deleteRestricted, ErrUserInUse, ErrUserInUse},
		{"wrapped user delete violation", fmt.Errorf("exec: %w", deleteRestricted), ErrUserInUse, ErrUserInUse},
		{"work order references missing technician", missingTechnician, ErrUnknownTechnician, ErrUnknownTechnician},
		{"duplicate email", duplicate, nil, ErrDuplicateEmail},
		{"fk without caller sentinel", deleteRestricted, nil, deleteRestricted},
		{"unrelated constraint", otherFK, ErrUserInUse, otherFK},
		{"non postgres error", plain, ErrUserInUse, plain},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.ErrorIs(t, translatePgError(tc.err, tc.fkViolation), tc.want)
		})
	}

	require.NoError(t, translatePgError(nil, ErrUserInUse))
}
