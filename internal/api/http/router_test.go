package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apihttp "github.com/spec-kit/itops-service/internal/api/http"
	"github.com/spec-kit/itops-service/internal/api/http/handlers"
	"github.com/spec-kit/itops-service/internal/audit"
	"github.com/spec-kit/itops-service/internal/auth"
	"github.com/spec-kit/itops-service/internal/command"
	"github.com/spec-kit/itops-service/internal/domain"
	"github.com/spec-kit/itops-service/internal/events"
	"github.com/spec-kit/itops-service/internal/observability"
	"github.com/spec-kit/itops-service/internal/repository/memory"
)

type testServer struct {
	app    *fiber.App
	tokens *auth.TokenManager
}

func newServer(t *testing.T) *testServer {
	t.Helper()

	store := memory.NewStore()
	hash, err := auth.BcryptHasher{Cost: 4}.Hash("password1")
	require.NoError(t, err)
	store.SeedUsers(
		domain.User{ID: "u-admin", Username: "admin", Email: "admin@example.com", Role: domain.RoleSuperAdmin, PasswordHash: hash},
		domain.User{ID: "u-tech", Username: "tech", Email: "tech@example.com", Role: domain.RoleTechnician, PasswordHash: hash},
		domain.User{ID: "u-viewer", Username: "viewer", Email: "viewer@example.com", Role: domain.RoleViewer, PasswordHash: hash},
	)

	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	dispatcher := events.NewDispatcher(logger, metrics)
	audit.NewActivityLogger(store.ActivityLog()).Register(dispatcher)
	audit.NewStatusHistoryWriter(store.StatusHistory()).Register(dispatcher)

	exec := command.NewExecutor(command.Dependencies{
		Store:      store,
		Dispatcher: dispatcher,
		Hasher:     auth.BcryptHasher{Cost: 4},
		Logger:     logger,
		Metrics:    metrics,
	})
	tokens := auth.NewTokenManager("test-secret", "", 5)
	directory := auth.NewStoreDirectory(store)

	app := fiber.New(fiber.Config{ErrorHandler: apihttp.ErrorHandler})
	apihttp.RegisterMiddlewares(app, logger, metrics, 0)
	apihttp.RegisterRoutes(app, apihttp.RouteConfig{
		Health:         handlers.NewHealthHandler("itops-service", "test", map[string]handlers.Pinger{"store": store}),
		Metrics:        handlers.NewMetricsHandler(metrics),
		Users:          handlers.NewUsersHandler(exec),
		Tickets:        handlers.NewTicketsHandler(exec),
		Assets:         handlers.NewAssetsHandler(exec),
		Projects:       handlers.NewProjectsHandler(exec),
		Activity:       handlers.NewActivityHandler(exec),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, directory),
	})
	return &testServer{app: app, tokens: tokens}
}

func (s *testServer) token(t *testing.T, id string, role domain.Role) string {
	t.Helper()
	tok, _, err := s.tokens.GenerateToken(domain.Actor{ID: id, Role: role})
	require.NoError(t, err)
	return tok
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func errorCode(body map[string]any) string {
	e, _ := body["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

func TestTicketFlow(t *testing.T) {
	t.Parallel()
	s := newServer(t)
	admin := s.token(t, "u-admin", domain.RoleSuperAdmin)
	viewer := s.token(t, "u-viewer", domain.RoleViewer)

	status, body := s.do(t, http.MethodPost, "/api/v1/tickets", viewer, map[string]any{"title": "Broken chair"})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", errorCode(body))

	status, body = s.do(t, http.MethodPost, "/api/v1/tickets", admin, map[string]any{"title": ""})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))

	status, body = s.do(t, http.MethodPost, "/api/v1/tickets", admin, map[string]any{"title": "Broken chair", "priority": "HIGH"})
	require.Equal(t, http.StatusCreated, status)
	id := body["data"].(map[string]any)["id"].(string)

	status, body = s.do(t, http.MethodPost, "/api/v1/tickets/"+id+"/reopen", admin, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INVALID_TRANSITION", errorCode(body))

	status, body = s.do(t, http.MethodPost, "/api/v1/tickets/"+id+"/resolve", admin, map[string]any{"resolution_note": "glued"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "RESOLVED", body["data"].(map[string]any)["status"])

	status, body = s.do(t, http.MethodGet, "/api/v1/tickets/"+id+"/status-history", viewer, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["data"], 1)

	status, body = s.do(t, http.MethodGet, "/api/v1/tickets/"+id+"/permissions", viewer, nil)
	require.Equal(t, http.StatusOK, status)
	perms := body["data"].(map[string]any)
	assert.Equal(t, true, perms["can_view"])
	assert.Equal(t, false, perms["can_update"])

	status, body = s.do(t, http.MethodGet, "/api/v1/activity?entity_kind=ticket&entity_id="+id, admin, nil)
	require.Equal(t, http.StatusOK, status)
	assert.GreaterOrEqual(t, len(body["data"].([]any)), 3)

	status, _ = s.do(t, http.MethodDelete, "/api/v1/tickets/"+id, admin, nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, body = s.do(t, http.MethodGet, "/api/v1/tickets/"+id, admin, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(body))
}

func TestAdminRoutesRequireAdminRank(t *testing.T) {
	t.Parallel()
	s := newServer(t)

	status, body := s.do(t, http.MethodGet, "/api/v1/activity", s.token(t, "u-tech", domain.RoleTechnician), nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", errorCode(body))

	status, body = s.do(t, http.MethodGet, "/api/v1/metrics", s.token(t, "u-admin", domain.RoleSuperAdmin), nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body["data"], "commands")

	status, body = s.do(t, http.MethodGet, "/api/v1/tickets", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", errorCode(body))
}

func TestUserManagement(t *testing.T) {
	t.Parallel()
	s := newServer(t)
	token := s.token(t, "u-admin", domain.RoleSuperAdmin)

	status, body := s.do(t, http.MethodPost, "/api/v1/users", token, map[string]any{
		"username": "newbie", "email": "newbie@example.com", "full_name": "New Bie", "password": "password1", "role": "VIEWER",
	})
	require.Equal(t, http.StatusCreated, status)
	created := body["data"].(map[string]any)
	assert.NotContains(t, created, "password_hash")
	id := created["id"].(string)

	status, body = s.do(t, http.MethodPost, "/api/v1/users/"+id+"/role", token, map[string]any{"role": "TECHNICIAN"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "TECHNICIAN", body["data"].(map[string]any)["role"])

	status, _ = s.do(t, http.MethodPost, "/api/v1/users/u-admin/role", token, map[string]any{"role": "VIEWER"})
	assert.Equal(t, http.StatusForbidden, status)

	status, body = s.do(t, http.MethodGet, "/api/v1/users/me", s.token(t, id, domain.RoleViewer), nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "TECHNICIAN", body["data"].(map[string]any)["role"])
}

func TestHealthAndUnknownRoutes(t *testing.T) {
	t.Parallel()
	s := newServer(t)

	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, "/health/live", nil), -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))

	status, body := s.do(t, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ready", body["status"])

	status, body = s.do(t, http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(body))
}
