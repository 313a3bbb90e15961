package response

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func do(t *testing.T, h fiber.Handler) (int, Response) {
	t.Helper()
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/", h)

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var r Response
	require.NoError(t, json.Unmarshal(body, &r))
	return resp.StatusCode, r
}

func TestSuccess(t *testing.T) {
	status, r := do(t, func(c *fiber.Ctx) error {
		return Success(c, fiber.Map{"state": "ready"})
	})
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, CodeSuccess, r.Code)
	assert.Equal(t, map[string]any{"state": "ready"}, r.Data)
}

func TestUnavailable(t *testing.T) {
	status, r := do(t, func(c *fiber.Ctx) error {
		return Unavailable(c, "", fiber.Map{"state": "initializing"})
	})
	assert.Equal(t, fiber.StatusServiceUnavailable, status)
	assert.Equal(t, CodeUnavailable, r.Code)
	assert.Equal(t, MsgUnavailable, r.Message)
}

func TestErrorHandler(t *testing.T) {
	status, r := do(t, func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusTeapot, "short and stout")
	})
	assert.Equal(t, fiber.StatusTeapot, status)
	assert.Equal(t, "short and stout", r.Message)

	status, r = do(t, func(c *fiber.Ctx) error {
		return io.ErrUnexpectedEOF
	})
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, MsgServerError, r.Message)
}
