package auth_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/itops-service/internal/auth"
	"github.com/spec-kit/itops-service/internal/domain"
	"github.com/spec-kit/itops-service/internal/repository/memory"
	apperrors "github.com/spec-kit/itops-service/pkg/util"
)

func seededStore(t *testing.T) *memory.Store {
	t.Helper()
	hash, err := auth.BcryptHasher{Cost: bcrypt.MinCost}.Hash("correct horse")
	require.NoError(t, err)

	store := memory.NewStore()
	store.SeedUsers(
		domain.User{ID: "u-1", Username: "alice", Email: "alice@example.com", Role: domain.RoleTechnician, PasswordHash: hash},
		domain.User{ID: "u-2", Username: "bob", Email: "bob@example.com", Role: domain.RoleViewer, Status: domain.UserStatusInactive, PasswordHash: hash},
	)
	return store
}

func newApp(tokens *auth.TokenManager, store *memory.Store) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: func(c *fiber.Ctx, err error) error {
		de := apperrors.ToDomainError(err)
		return c.Status(de.HTTPStatus).SendString(de.Code)
	}})
	mw := auth.NewAuthMiddleware(tokens, auth.NewStoreDirectory(store))
	app.Get("/me", mw.Handle, auth.RequireActor(), func(c *fiber.Ctx) error {
		actor, _ := auth.ActorFromContext(c)
		return c.SendString(actor.ID + ":" + string(actor.Role))
	})
	app.Get("/admin", mw.Handle, auth.RequireAdminRank(), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusNoContent)
	})
	return app
}

func call(t *testing.T, app *fiber.App, path, token string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestBcryptHasher(t *testing.T) {
	t.Parallel()

	hash, err := auth.BcryptHasher{Cost: 99}.Hash("correct horse")
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("correct horse")))
	assert.Error(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("battery staple")))
}

func TestTokenManager_RejectsForeignTokens(t *testing.T) {
	t.Parallel()

	issuer := auth.NewTokenManager("secret", "itops", 5)
	token, expiresAt, err := issuer.GenerateToken(domain.Actor{ID: "u-1", Role: domain.RoleTechnician})
	require.NoError(t, err)
	assert.False(t, expiresAt.IsZero())

	claims, err := issuer.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.Subject)
	assert.Equal(t, domain.RoleTechnician, claims.Role)

	_, err = auth.NewTokenManager("other-secret", "itops", 5).ParseToken(token)
	assert.Error(t, err)

	_, err = auth.NewTokenManager("secret", "someone-else", 5).ParseToken(token)
	assert.Error(t, err)
}

func TestAuthMiddleware(t *testing.T) {
	t.Parallel()

	store := seededStore(t)
	tokens := auth.NewTokenManager("secret", "", 5)
	app := newApp(tokens, store)

	alice, _, err := tokens.GenerateToken(domain.Actor{ID: "u-1", Role: domain.RoleSuperAdmin})
	require.NoError(t, err)
	bob, _, err := tokens.GenerateToken(domain.Actor{ID: "u-2", Role: domain.RoleViewer})
	require.NoError(t, err)
	ghost, _, err := tokens.GenerateToken(domain.Actor{ID: "u-404", Role: domain.RoleViewer})
	require.NoError(t, err)

	t.Run("stored role wins over claim", func(t *testing.T) {
		status, body := call(t, app, "/me", alice)
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "u-1:TECHNICIAN", body)
	})

	t.Run("missing header", func(t *testing.T) {
		status, body := call(t, app, "/me", "")
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, apperrors.CodeUnauthorized, body)
	})

	t.Run("inactive account", func(t *testing.T) {
		status, _ := call(t, app, "/me", bob)
		assert.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("unknown subject", func(t *testing.T) {
		status, _ := call(t, app, "/me", ghost)
		assert.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("garbage token", func(t *testing.T) {
		status, _ := call(t, app, "/me", "not-a-jwt")
		assert.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("admin rank required", func(t *testing.T) {
		status, body := call(t, app, "/admin", alice)
		assert.Equal(t, http.StatusForbidden, status)
		assert.Equal(t, apperrors.CodeForbidden, body)
	})
}
