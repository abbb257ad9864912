package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/workorder-service/internal/domain"
	"github.com/spec-kit/workorder-service/internal/repository/memory"
	apperrors "github.com/spec-kit/workorder-service/pkg/util/errorutil"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 5)

	token, exp, err := tm.GenerateToken("user-1", "u@example.com", true)
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(5*time.Minute), exp, 5*time.Second)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.SubjectID())
	require.Equal(t, "u@example.com", claims.Email)
	require.True(t, claims.IsAdmin)
	require.NotEmpty(t, claims.ID)
}

func TestParseTokenRejectsForeignAndExpiredTokens(t *testing.T) {
	tm := NewTokenManager("secret", 1)
	token, _, err := tm.GenerateToken("user-1", "u@example.com", false)
	require.NoError(t, err)

	_, err = NewTokenManager("other-secret", 1).ParseToken(token)
	require.Error(t, err)

	later := NewTokenManager("secret", 1)
	later.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = later.ParseToken(token)
	require.Error(t, err)

	_, err = tm.ParseToken("not-a-jwt")
	require.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret!", 4)
	require.NoError(t, err)
	require.NotEqual(t, "s3cret!", hash)
	require.NoError(t, ComparePassword(hash, "s3cret!"))
	require.Error(t, ComparePassword(hash, "wrong"))
}

func TestMemoryRevocationStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryRevocationStore()

	require.NoError(t, store.Revoke(ctx, "jti-1", time.Now().Add(time.Minute)))
	require.NoError(t, store.Revoke(ctx, "jti-expired", time.Now().Add(-time.Minute)))

	revoked, err := store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	require.True(t, revoked)

	revoked, err = store.IsRevoked(ctx, "jti-expired")
	require.NoError(t, err)
	require.False(t, revoked)
}

func newTestApp(t *testing.T) (*fiber.App, *TokenManager, *memory.Store, *MemoryRevocationStore) {
	t.Helper()
	store := memory.NewStore()
	tokens := NewTokenManager("secret", 5)
	revoked := NewMemoryRevocationStore()
	mw := NewAuthMiddleware(tokens, store.Users(), revoked)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.SendStatus(apperrors.ToDomainError(err).HTTPStatus)
		},
	})
	app.Get("/me", mw.Handle, RequireAuthenticated(), func(c *fiber.Ctx) error {
		principal, _ := PrincipalFromContext(c)
		return c.SendString(principal.Caller().ID)
	})
	app.Get("/admin", mw.Handle, RequireAdmin(), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusNoContent)
	})
	return app, tokens, store, revoked
}

func doRequest(t *testing.T, app *fiber.App, path, token string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestAuthMiddleware(t *testing.T) {
	ctx := context.Background()
	app, tokens, store, revoked := newTestApp(t)

	user := &domain.User{Name: "Tech", Email: "tech@example.com", PasswordHash: "h"}
	require.NoError(t, store.Users().Create(ctx, user))

	token, _, err := tokens.GenerateToken(user.ID, user.Email, false)
	require.NoError(t, err)

	require.Equal(t, http.StatusUnauthorized, doRequest(t, app, "/me", ""))
	require.Equal(t, http.StatusUnauthorized, doRequest(t, app, "/me", "garbage"))
	require.Equal(t, http.StatusOK, doRequest(t, app, "/me", token))
	require.Equal(t, http.StatusUnauthorized, doRequest(t, app, "/admin", token))

	claims, err := tokens.ParseToken(token)
	require.NoError(t, err)
	require.NoError(t, revoked.Revoke(ctx, claims.ID, claims.Expiry()))
	require.Equal(t, http.StatusUnauthorized, doRequest(t, app, "/me", token))
}

func TestAuthMiddlewareRejectsDeletedUser(t *testing.T) {
	ctx := context.Background()
	app, tokens, store, _ := newTestApp(t)

	user := &domain.User{Name: "Gone", Email: "gone@example.com", PasswordHash: "h", IsAdmin: true}
	require.NoError(t, store.Users().Create(ctx, user))
	token, _, err := tokens.GenerateToken(user.ID, user.Email, true)
	require.NoError(t, err)
	require.Equal(t, http.StatusNoContent, doRequest(t, app, "/admin", token))

	require.NoError(t, store.Users().Delete(ctx, user.ID))
	require.Equal(t, http.StatusUnauthorized, doRequest(t, app, "/admin", token))
}
