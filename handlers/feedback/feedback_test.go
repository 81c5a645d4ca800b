package feedback

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/mindmeld-api/model"
	"github.com/sahilchouksey/mindmeld-api/services"
	"github.com/sahilchouksey/mindmeld-api/utils/middleware"
	"github.com/sahilchouksey/mindmeld-api/utils/response"
	"github.com/sahilchouksey/mindmeld-api/utils/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestApp(db *gorm.DB, user *model.User) *fiber.App {
	log := zap.NewNop()
	h := NewFeedbackHandler(services.NewFeedbackService(db, services.NewActivityService(db, log), nil, log))

	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler(log, false)})
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", user.ID)
		c.Locals("user_role", user.Role)
		c.Locals("user", user)
		return c.Next()
	})
	app.Post("/feedback", h.Submit)
	app.Get("/feedback/stats", h.Stats)
	app.Get("/feedback/all", h.ListAll)
	return app
}

func call(t *testing.T, app *fiber.App, method, path, body string) (int, response.Response) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env response.Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func TestSubmitFeedback(t *testing.T) {
	db := testdb.New(t)
	course := testdb.CreateProduct(t, db, "Go Basics", 10)
	app := newTestApp(db, testdb.CreateUser(t, db, "alice", model.RoleUser))
	body := fmt.Sprintf(`{"course_id":%d,"rating":4,"difficulty":"just-right","content":"Clear and practical"}`, course.ID)

	status, _ := call(t, app, "POST", "/feedback", body)
	require.Equal(t, fiber.StatusCreated, status)

	status, env := call(t, app, "POST", "/feedback", body)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "You have already submitted feedback for this course", env.Error.Message)
}

func TestSubmitFeedbackValidation(t *testing.T) {
	db := testdb.New(t)
	course := testdb.CreateProduct(t, db, "Go Basics", 10)
	app := newTestApp(db, testdb.CreateUser(t, db, "alice", model.RoleUser))

	cases := map[string]string{
		"rating too high":    fmt.Sprintf(`{"course_id":%d,"rating":6,"difficulty":"easy","content":"x"}`, course.ID),
		"unknown difficulty": fmt.Sprintf(`{"course_id":%d,"rating":3,"difficulty":"brutal","content":"x"}`, course.ID),
		"missing content":    fmt.Sprintf(`{"course_id":%d,"rating":3,"difficulty":"easy"}`, course.ID),
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			status, env := call(t, app, "POST", "/feedback", body)
			assert.Equal(t, fiber.StatusBadRequest, status)
			assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
		})
	}

	status, env := call(t, app, "POST", "/feedback", `{"course_id":999,"rating":3,"difficulty":"easy","content":"x"}`)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "Course not found", env.Error.Message)
}

func TestStatsAndFilters(t *testing.T) {
	db := testdb.New(t)
	course := testdb.CreateProduct(t, db, "Go Basics", 10)
	admin := testdb.CreateUser(t, db, "root", model.RoleAdmin)

	status, env := call(t, newTestApp(db, admin), "GET", "/feedback/stats", "")
	require.Equal(t, fiber.StatusOK, status)
	stats := env.Data.(map[string]interface{})
	assert.Equal(t, float64(0), stats["total_feedback"])
	assert.Len(t, stats["rating_distribution"], 5)

	for i, rating := range []int{5, 4} {
		user := testdb.CreateUser(t, db, fmt.Sprintf("user%d", i), model.RoleUser)
		body := fmt.Sprintf(`{"course_id":%d,"rating":%d,"difficulty":"easy","content":"ok"}`, course.ID, rating)
		status, _ := call(t, newTestApp(db, user), "POST", "/feedback", body)
		require.Equal(t, fiber.StatusCreated, status)
	}

	_, env = call(t, newTestApp(db, admin), "GET", fmt.Sprintf("/feedback/stats?course=%d", course.ID), "")
	stats = env.Data.(map[string]interface{})
	assert.Equal(t, float64(2), stats["total_feedback"])
	assert.Equal(t, 4.5, stats["average_rating"])

	_, env = call(t, newTestApp(db, admin), "GET", "/feedback/all?rating=5", "")
	assert.Len(t, env.Data, 1)

	status, _ = call(t, newTestApp(db, admin), "GET", "/feedback/all?rating=9", "")
	assert.Equal(t, fiber.StatusBadRequest, status)
}
