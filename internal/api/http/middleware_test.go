package http

import (
	"encoding/json"
	"errors"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ereignis/ereignis-api/internal/observability"
	apperrors "github.com/ereignis/ereignis-api/pkg/util/errorutil"
)

func newMiddlewareApp(t *testing.T) *fiber.App {
	t.Helper()
	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), 50*time.Millisecond)
	app.Get("/boom", func(*fiber.Ctx) error { panic("resolver blew up") })
	app.Get("/denied", func(*fiber.Ctx) error {
		return apperrors.NewDomainError("FORBIDDEN", "forbidden", fiber.StatusForbidden, map[string]any{"operation": "users"})
	})
	app.Get("/leak", func(*fiber.Ctx) error { return errors.New("pq: password authentication failed") })
	app.Get("/deadline", func(c *fiber.Ctx) error {
		_, ok := c.UserContext().Deadline()
		return c.JSON(fiber.Map{"deadline": ok})
	})
	return app
}

type errorBody struct {
	Errors []struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"errors"`
}

func get(t *testing.T, app *fiber.App, path string) (*nethttp.Response, []byte) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(nethttp.MethodGet, path, nil), -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func TestErrorEnvelope(t *testing.T) {
	app := newMiddlewareApp(t)

	cases := []struct {
		path    string
		status  int
		code    string
		details bool
	}{
		{path: "/boom", status: fiber.StatusInternalServerError, code: "INTERNAL_ERROR"},
		{path: "/denied", status: fiber.StatusForbidden, code: "FORBIDDEN", details: true},
		{path: "/leak", status: fiber.StatusInternalServerError, code: "INTERNAL_ERROR"},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			resp, raw := get(t, app, tc.path)
			assert.Equal(t, tc.status, resp.StatusCode)

			var body errorBody
			require.NoError(t, json.Unmarshal(raw, &body), string(raw))
			require.Len(t, body.Errors, 1)
			assert.Equal(t, tc.code, body.Errors[0].Code)
			assert.Equal(t, tc.details, body.Errors[0].Details != nil)
			assert.NotContains(t, string(raw), "password authentication")
			assert.NotContains(t, string(raw), "blew up")
		})
	}
}

func TestDeadlineIsAttached(t *testing.T) {
	resp, raw := get(t, newMiddlewareApp(t), "/deadline")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"deadline":true}`, string(raw))
}

func TestDeadlineSkippedWithoutTimeout(t *testing.T) {
	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), nil, 0)
	app.Get("/deadline", func(c *fiber.Ctx) error {
		_, ok := c.UserContext().Deadline()
		return c.JSON(fiber.Map{"deadline": ok})
	})
	_, raw := get(t, app, "/deadline")
	assert.JSONEq(t, `{"deadline":false}`, string(raw))
}
