package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/workorder-service/internal/auth"
	"github.com/spec-kit/workorder-service/internal/config"
	"github.com/spec-kit/workorder-service/internal/domain"
	"github.com/spec-kit/workorder-service/internal/repository/memory"
	apperrors "github.com/spec-kit/workorder-service/pkg/util/errorutil"
)

func testConfig() config.Config {
	return config.Config{
		Auth: config.AuthConfig{
			JWTSecret:             "test-secret",
			AccessTokenTTLMinutes: 60,
			BcryptCost:            4,
		},
	}
}

func newAuthService(t *testing.T) (*AuthService, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	svc := NewAuthService(testConfig(), AuthDependencies{
		UserRepo:    store.Users(),
		Revocations: auth.NewMemoryRevocationStore(),
	})
	return svc, store
}

func strPtr(s string) *string { return &s }

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthService(t)

	user, err := svc.Register(ctx, RegisterInput{Name: "Ana", Email: "  Ana@Example.com ", Password: "pw123456"})
	require.NoError(t, err)
	require.Equal(t, "ana@example.com", user.Email)
	require.False(t, user.IsAdmin)

	_, err = svc.Register(ctx, RegisterInput{Name: "Other", Email: "ana@example.com", Password: "pw"})
	require.True(t, apperrors.HasCode(err, apperrors.CodeConflict))
}

func TestLoginIssuesTokenForStoredUser(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthService(t)

	registered, err := svc.Register(ctx, RegisterInput{Name: "Bo", Email: "bo@example.com", Password: "correct"})
	require.NoError(t, err)

	result, err := svc.Login(ctx, "BO@example.com", "correct")
	require.NoError(t, err)
	require.Equal(t, registered.ID, result.User.ID)

	claims, err := svc.TokenManager().ParseToken(result.AccessToken)
	require.NoError(t, err)
	require.Equal(t, registered.ID, claims.SubjectID())
	require.Equal(t, "bo@example.com", claims.Email)

	_, err = svc.Login(ctx, "bo@example.com", "wrong")
	require.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))

	_, err = svc.Login(ctx, "nobody@example.com", "correct")
	require.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))
}

func TestLogoutRevokesToken(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthService(t)

	_, err := svc.Register(ctx, RegisterInput{Name: "Cy", Email: "cy@example.com", Password: "pw"})
	require.NoError(t, err)
	result, err := svc.Login(ctx, "cy@example.com", "pw")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, result.AccessToken))
	claims, err := svc.TokenManager().ParseToken(result.AccessToken)
	require.NoError(t, err)
	revoked, err := svc.Revocations().IsRevoked(ctx, claims.ID)
	require.NoError(t, err)
	require.True(t, revoked)

	require.NoError(t, svc.Logout(ctx, ""))
	require.NoError(t, svc.Logout(ctx, "garbage"))
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthService(t)

	user, err := svc.Register(ctx, RegisterInput{Name: "Di", Email: "di@example.com", Password: "old"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, RegisterInput{Name: "Ed", Email: "ed@example.com", Password: "pw"})
	require.NoError(t, err)

	_, err = svc.UpdateProfile(ctx, user.ID, "nope", domain.UserPatch{Name: strPtr("X")})
	require.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))

	_, err = svc.UpdateProfile(ctx, user.ID, "old", domain.UserPatch{Email: strPtr("ed@example.com")})
	require.True(t, apperrors.HasCode(err, apperrors.CodeConflict))

	updated, err := svc.UpdateProfile(ctx, user.ID, "old", domain.UserPatch{
		Name:        strPtr("Diana"),
		Password:    strPtr("new"),
		PhoneNumber: strPtr("555-0100"),
	})
	require.NoError(t, err)
	require.Equal(t, "Diana", updated.Name)
	require.Equal(t, "555-0100", *updated.PhoneNumber)

	_, err = svc.Login(ctx, "di@example.com", "old")
	require.Error(t, err)
	_, err = svc.Login(ctx, "di@example.com", "new")
	require.NoError(t, err)

	_, err = svc.UpdateProfile(ctx, "00000000-0000-0000-0000-000000000000", "new", domain.UserPatch{})
	require.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))
}

func TestDeleteUser(t *testing.T) {
	ctx := context.Background()
	svc, store := newAuthService(t)

	created, err := svc.EnsureAdmin(ctx, "Root", "root@example.com", "pw")
	require.NoError(t, err)
	require.True(t, created)
	created, err = svc.EnsureAdmin(ctx, "Root", "root@example.com", "pw")
	require.NoError(t, err)
	require.False(t, created)

	admin, err := store.Users().GetByEmail(ctx, "root@example.com")
	require.NoError(t, err)
	require.True(t, admin.IsAdmin)

	err = svc.DeleteUser(ctx, admin.ID)
	require.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

	tech, err := svc.Register(ctx, RegisterInput{Name: "Fi", Email: "fi@example.com", Password: "pw"})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteUser(ctx, tech.ID))

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)

	err = svc.DeleteUser(ctx, tech.ID)
	require.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
	err = svc.DeleteUser(ctx, "not-a-uuid")
	require.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestDeleteUserAssignedToWorkOrders(t *testing.T) {
	ctx := context.Background()
	svc, store := newAuthService(t)

	tech, err := svc.Register(ctx, RegisterInput{Name: "Gus", Email: "gus@example.com", Password: "pw"})
	require.NoError(t, err)
	require.NoError(t, store.WorkOrders().Create(ctx, &domain.WorkOrder{
		BuildingName:    "HQ",
		EquipmentNumber: "E1",
		ClientName:      "Acme",
		Description:     "Broken",
		Requester:       "Admin",
		Technician:      domain.User{ID: tech.ID},
		Status:          domain.WorkOrderStatusPending,
		EquipmentStatus: domain.EquipmentStatusStopped,
	}))

	err = svc.DeleteUser(ctx, tech.ID)
	require.True(t, apperrors.HasCode(err, apperrors.CodeConflict))
}

func TestBlankNamesAreRejected(t *testing.T) {
	ctx := context.Background()
	svc, store := newAuthService(t)

	_, err := svc.Register(ctx, RegisterInput{Name: "   ", Email: "blank@example.com", Password: "pw123456"})
	require.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
	users, err := store.Users().List(ctx)
	require.NoError(t, err)
	require.Empty(t, users)

	registered, err := svc.Register(ctx, RegisterInput{Name: "Cy", Email: "cy@example.com", Password: "pw123456"})
	require.NoError(t, err)

	_, err = svc.UpdateProfile(ctx, registered.ID, "pw123456", domain.UserPatch{Name: strPtr("\t ")})
	require.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	stored, err := store.Users().GetByID(ctx, registered.ID)
	require.NoError(t, err)
	require.Equal(t, "Cy", stored.Name)
}
