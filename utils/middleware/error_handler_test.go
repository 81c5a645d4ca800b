package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/mindmeld-api/utils/response"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func decodeEnvelope(t *testing.T, body io.Reader) response.Response {
	t.Helper()
	var out response.Response
	require.NoError(t, json.NewDecoder(body).Decode(&out))
	return out
}

func newErrorApp(development bool) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(zap.NewNop(), development)})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return errors.New("pq: relation does not exist")
	})
	return app
}

func TestErrorHandlerHidesDetailsInProduction(t *testing.T) {
	resp, err := newErrorApp(false).Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	env := decodeEnvelope(t, resp.Body)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INTERNAL_ERROR", env.Error.Code)
	assert.Nil(t, env.Error.Details)
}

func TestErrorHandlerShowsDetailsInDevelopment(t *testing.T) {
	resp, err := newErrorApp(true).Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)

	env := decodeEnvelope(t, resp.Body)
	require.NotNil(t, env.Error)
	assert.Equal(t, "pq: relation does not exist", env.Error.Details)
}

func TestErrorHandlerKeepsFiberStatus(t *testing.T) {
	resp, err := newErrorApp(false).Test(httptest.NewRequest("GET", "/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	env := decodeEnvelope(t, resp.Body)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}
