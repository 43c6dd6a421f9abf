package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-events-api/internal/utils"
)

func TestRateLimitKeysByUser(t *testing.T) {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(LocalUserID, uint(3))
		return c.Next()
	})
	app.Use(RateLimit("events", 2, time.Minute))
	app.Post("/events", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusCreated)
	})

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/events", nil), -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/events", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)

	var body utils.APIResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.False(t, body.Success)
	require.Equal(t, RateLimitMessage, body.Message)
}

func TestRateLimitBudgetsArePerUser(t *testing.T) {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if id, err := strconv.ParseUint(c.Get("X-User"), 10, 64); err == nil {
			c.Locals(LocalUserID, uint(id))
		}
		return c.Next()
	})
	app.Use(RateLimit("participants", 1, time.Minute))
	app.Post("/participants", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusCreated)
	})

	post := func(user string) int {
		req := httptest.NewRequest(http.MethodPost, "/participants", nil)
		req.Header.Set("X-User", user)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		return resp.StatusCode
	}

	require.Equal(t, fiber.StatusCreated, post("3"))
	require.Equal(t, fiber.StatusCreated, post("4"))
	require.Equal(t, fiber.StatusTooManyRequests, post("3"))
}
