//go:build integration

package repository_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"go.uber.org/zap"

	"github.com/spec-kit/workorder-service/internal/domain"
	"github.com/spec-kit/workorder-service/internal/persistence"
	"github.com/spec-kit/workorder-service/internal/repository"
)

// startPostgres reuses INTEGRATION_PG_DSN when set, otherwise starts a throwaway container.
func startPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	dsn := os.Getenv("INTEGRATION_PG_DSN")
	if dsn == "" {
		container, err := postgres.Run(ctx,
			"postgres:16",
			postgres.WithDatabase("workorders"),
			postgres.WithUsername("test"),
			postgres.WithPassword("test"),
			postgres.BasicWaitStrategies(),
		)
		require.NoError(t, err)
		t.Cleanup(func() { _ = container.Terminate(context.Background()) })

		dsn, err = container.ConnectionString(ctx, "sslmode=disable")
		require.NoError(t, err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, persistence.RunMigrations(ctx, pool, "../../migrations", zap.NewNop()))
	// a second run must be a no-op
	require.NoError(t, persistence.RunMigrations(ctx, pool, "../../migrations", zap.NewNop()))

	_, err = pool.Exec(ctx, `TRUNCATE work_orders, users`)
	require.NoError(t, err)
	return pool
}

func TestPostgresRepositories(t *testing.T) {
	ctx := context.Background()
	pool := startPostgres(t)
	users := repository.NewUserRepository(pool)
	orders := repository.NewWorkOrderRepository(pool)

	phone := "555-0100"
	tech := &domain.User{Name: "Tech", Email: "tech@example.com", PasswordHash: "hash", PhoneNumber: &phone}
	require.NoError(t, users.Create(ctx, tech))
	require.NotEmpty(t, tech.ID)

	dup := &domain.User{Name: "Other", Email: "tech@example.com", PasswordHash: "hash"}
	require.ErrorIs(t, users.Create(ctx, dup), repository.ErrDuplicateEmail)

	loaded, err := users.GetByEmail(ctx, "tech@example.com")
	require.NoError(t, err)
	require.Equal(t, tech.ID, loaded.ID)
	require.Equal(t, phone, *loaded.PhoneNumber)

	order := &domain.WorkOrder{
		BuildingName:    "Tower A",
		EquipmentNumber: "EL-0042",
		ClientName:      "ACME",
		Description:     "Elevator stuck on floor 3",
		Requester:       "Admin",
		Technician:      domain.User{ID: tech.ID},
		Status:          domain.WorkOrderStatusPending,
		EquipmentStatus: domain.EquipmentStatusStopped,
	}
	require.NoError(t, orders.Create(ctx, order))
	require.NotEmpty(t, order.ID)

	got, err := orders.GetByID(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, "tech@example.com", got.Technician.Email)
	require.Nil(t, got.CompletedAt)

	now := time.Now().UTC()
	got.SetStatus(domain.WorkOrderStatusCompleted, now)
	require.NoError(t, orders.Update(ctx, got))

	list, err := orders.List(ctx, repository.WorkOrderFilter{
		TechnicianID: &tech.ID,
		Statuses:     []domain.WorkOrderStatus{domain.WorkOrderStatusCompleted},
	})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].CompletedAt)

	require.ErrorIs(t, users.Delete(ctx, tech.ID), repository.ErrUserInUse)

	missing := &domain.WorkOrder{
		BuildingName: "B", EquipmentNumber: "1", ClientName: "C", Description: "D", Requester: "R",
		Technician:      domain.User{ID: "00000000-0000-0000-0000-000000000000"},
		Status:          domain.WorkOrderStatusPending,
		EquipmentStatus: domain.EquipmentStatusStopped,
	}
	require.ErrorIs(t, orders.Create(ctx, missing), repository.ErrUnknownTechnician)

	_, err = orders.GetByID(ctx, "00000000-0000-0000-0000-000000000000")
	require.ErrorIs(t, err, pgx.ErrNoRows)
}
