package router

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/mindmeld-api/database"
	"github.com/sahilchouksey/mindmeld-api/model"
	"github.com/sahilchouksey/mindmeld-api/services/email"
	"github.com/sahilchouksey/mindmeld-api/services/storage"
	"github.com/sahilchouksey/mindmeld-api/utils/auth"
	"github.com/sahilchouksey/mindmeld-api/utils/middleware"
	"github.com/sahilchouksey/mindmeld-api/utils/response"
	"github.com/sahilchouksey/mindmeld-api/utils/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testServer struct {
	app *fiber.App
	t   *testing.T
}

func newTestServer(t *testing.T) (*testServer, *database.GORMStore) {
	t.Helper()

	log := zap.NewNop()
	store := database.NewGORMStore(testdb.New(t), log)
	files, err := storage.NewLocalFileStore(t.TempDir(), "/uploads")
	require.NoError(t, err)

	deps := Dependencies{
		Store: store,
		JWT: auth.NewJWTManager(auth.JWTConfig{
			Secret:        "router-test-secret",
			Expiry:        time.Hour,
			RefreshExpiry: 24 * time.Hour,
			Issuer:        "mindmeld-test",
		}),
		Files:       files,
		Mailer:      email.NewMailerWithProvider(email.NewConsoleProvider(log), "MindMeld", log),
		ResetExpiry: 10 * time.Minute,
		Log:         log,
	}

	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler(log, false)})
	app.Use(middleware.ClientInfo())
	SetupRoutes(app, deps, NewServices(deps))
	return &testServer{app: app, t: t}, store
}

func (s *testServer) do(method, path, token, body string) (int, response.Response) {
	s.t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req)
	require.NoError(s.t, err)
	defer resp.Body.Close()

	var env response.Response
	require.NoError(s.t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func (s *testServer) login(email string) string {
	s.t.Helper()
	status, env := s.do("POST", "/api/v1/auth/login", "", fmt.Sprintf(`{"email":%q,"password":"password123"}`, email))
	require.Equal(s.t, fiber.StatusOK, status)
	return env.Data.(map[string]interface{})["token"].(string)
}

func TestHealthEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, path := range []string{"/", "/api/v1/health"} {
		resp, err := srv.app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode, path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "ok", body["status"])
		if path != "/" {
			assert.Equal(t, "disabled", body["cache"])
		}
	}
}

func TestRegisterLoginLogout(t *testing.T) {
	srv, _ := newTestServer(t)

	status, env := srv.do("POST", "/api/v1/auth/register", "", `{"name":"Alice","email":"alice@example.com","password":"password123"}`)
	require.Equal(t, fiber.StatusCreated, status)
	user := env.Data.(map[string]interface{})["user"].(map[string]interface{})
	assert.Equal(t, model.RoleUser, user["role"])

	status, env = srv.do("POST", "/api/v1/auth/register", "", `{"name":"Alice","email":"ALICE@example.com","password":"password123"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "User already exists", env.Error.Message)

	status, env = srv.do("POST", "/api/v1/auth/login", "", `{"email":"alice@example.com","password":"wrong-password"}`)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "Invalid credentials", env.Error.Message)

	token := srv.login("alice@example.com")

	status, env = srv.do("GET", "/api/v1/auth/me", token, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "alice@example.com", env.Data.(map[string]interface{})["email"])

	status, _ = srv.do("POST", "/api/v1/auth/logout", token, "")
	require.Equal(t, fiber.StatusOK, status)

	status, env = srv.do("GET", "/api/v1/auth/me", token, "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "Token has been revoked", env.Error.Message)
}

func TestRoutesEnforcePolicy(t *testing.T) {
	srv, store := newTestServer(t)
	testdb.CreateUser(t, store.DB(), "alice", model.RoleUser)
	testdb.CreateUser(t, store.DB(), "mina", model.RoleManager)
	testdb.CreateUser(t, store.DB(), "root", model.RoleAdmin)

	alice := srv.login("alice@example.com")
	manager := srv.login("mina@example.com")
	admin := srv.login("root@example.com")

	status, _ := srv.do("GET", "/api/v1/products", "", "")
	assert.Equal(t, fiber.StatusOK, status)

	status, _ = srv.do("POST", "/api/v1/products", "", `{"name":"Go Basics","price":10}`)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = srv.do("POST", "/api/v1/products", alice, `{"name":"Go Basics","price":10}`)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, env := srv.do("POST", "/api/v1/products", admin, `{"name":"Go Basics","price":10}`)
	require.Equal(t, fiber.StatusCreated, status)
	product := env.Data.(map[string]interface{})
	assert.Equal(t, "go-basics", product["slug"])

	status, _ = srv.do("POST", "/api/v1/enrollments", alice, fmt.Sprintf(`{"product_id":%v}`, product["id"]))
	assert.Equal(t, fiber.StatusCreated, status)

	status, _ = srv.do("GET", "/api/v1/users", alice, "")
	assert.Equal(t, fiber.StatusForbidden, status)
	status, _ = srv.do("GET", "/api/v1/users", manager, "")
	assert.Equal(t, fiber.StatusOK, status)
	status, _ = srv.do("DELETE", "/api/v1/users/1", manager, "")
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _ = srv.do("GET", "/api/v1/activities", alice, "")
	assert.Equal(t, fiber.StatusForbidden, status)

	status, env = srv.do("GET", "/api/v1/activities?action=course_enrolled", admin, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, env.Data, 1)

	status, _ = srv.do("GET", "/api/v1/activities?action=bogus", admin, "")
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestCategoriesAreSeededOnFirstList(t *testing.T) {
	srv, _ := newTestServer(t)

	status, env := srv.do("GET", "/api/v1/categories", "", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, env.Data, 4)
}
