package memory

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/workorder-service/internal/domain"
	"github.com/spec-kit/workorder-service/internal/repository"
)

func TestUsersEnforceUniqueEmail(t *testing.T) {
	ctx := context.Background()
	users := NewStore().Users()

	first := &domain.User{Name: "A", Email: "a@example.com", PasswordHash: "h"}
	require.NoError(t, users.Create(ctx, first))
	require.NotEmpty(t, first.ID)

	err := users.Create(ctx, &domain.User{Name: "B", Email: "a@example.com", PasswordHash: "h"})
	require.ErrorIs(t, err, repository.ErrDuplicateEmail)

	second := &domain.User{Name: "B", Email: "b@example.com", PasswordHash: "h"}
	require.NoError(t, users.Create(ctx, second))
	second.Email = "a@example.com"
	require.ErrorIs(t, users.Update(ctx, second), repository.ErrDuplicateEmail)
}

func TestWorkOrdersRequireTechnicianAndBlockDelete(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	err := store.WorkOrders().Create(ctx, &domain.WorkOrder{Technician: domain.User{ID: "missing"}})
	require.ErrorIs(t, err, repository.ErrUnknownTechnician)

	tech := &domain.User{Name: "T", Email: "t@example.com", PasswordHash: "h"}
	require.NoError(t, store.Users().Create(ctx, tech))

	order := &domain.WorkOrder{Technician: domain.User{ID: tech.ID}, Status: domain.WorkOrderStatusPending}
	require.NoError(t, store.WorkOrders().Create(ctx, order))
	require.Equal(t, "t@example.com", order.Technician.Email)

	require.ErrorIs(t, store.Users().Delete(ctx, tech.ID), repository.ErrUserInUse)
	require.ErrorIs(t, store.Users().Delete(ctx, "missing"), pgx.ErrNoRows)
}

func TestWorkOrdersListFilters(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	t1 := &domain.User{Name: "T1", Email: "t1@example.com"}
	t2 := &domain.User{Name: "T2", Email: "t2@example.com"}
	require.NoError(t, store.Users().Create(ctx, t1))
	require.NoError(t, store.Users().Create(ctx, t2))

	for _, tech := range []string{t1.ID, t1.ID, t2.ID} {
		require.NoError(t, store.WorkOrders().Create(ctx, &domain.WorkOrder{
			Technician: domain.User{ID: tech},
			Status:     domain.WorkOrderStatusPending,
		}))
	}

	mine, err := store.WorkOrders().List(ctx, repository.WorkOrderFilter{TechnicianID: &t1.ID})
	require.NoError(t, err)
	require.Len(t, mine, 2)
	for _, wo := range mine {
		require.Equal(t, t1.ID, wo.Technician.ID)
	}

	none, err := store.WorkOrders().List(ctx, repository.WorkOrderFilter{
		Statuses: []domain.WorkOrderStatus{domain.WorkOrderStatusCompleted},
	})
	require.NoError(t, err)
	require.Empty(t, none)

	page, err := store.WorkOrders().List(ctx, repository.WorkOrderFilter{Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, page, 1)
}

func TestGetByIDReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	tech := &domain.User{Name: "T", Email: "t@example.com"}
	require.NoError(t, store.Users().Create(ctx, tech))
	order := &domain.WorkOrder{Technician: domain.User{ID: tech.ID}, Status: domain.WorkOrderStatusPending}
	require.NoError(t, store.WorkOrders().Create(ctx, order))

	loaded, err := store.WorkOrders().GetByID(ctx, order.ID)
	require.NoError(t, err)
	loaded.Status = domain.WorkOrderStatusCompleted

	again, err := store.WorkOrders().GetByID(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, domain.WorkOrderStatusPending, again.Status)
}
