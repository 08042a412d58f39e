package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"openbook-be/internal/config"
	"openbook-be/internal/pkg/logger"
	"openbook-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingController struct{}

func (pingController) RegisterRoutes(r fiber.Router) {
	r.Get("/chat/ping", func(ctx *fiber.Ctx) error {
		return ctx.JSON(serverutils.SuccessResponse("pong", true))
	})
}

func (pingController) StartSession(*fiber.Ctx) error  { return nil }
func (pingController) SendMessage(*fiber.Ctx) error   { return nil }
func (pingController) GetSession(*fiber.Ctx) error    { return nil }
func (pingController) ListSessions(*fiber.Ctx) error  { return nil }
func (pingController) DeleteSession(*fiber.Ctx) error { return nil }

func newTestApp(rateLimit int) *fiber.App {
	cfg := &config.Config{App: config.AppConfig{
		CorsAllowedOrigins: "*",
		RateLimitPerMinute: rateLimit,
	}}
	return NewApp(cfg, logger.NewNop(), pingController{})
}

func get(t *testing.T, app *fiber.App, target string) *http.Response {
	t.Helper()
	res, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil), -1)
	require.NoError(t, err)
	return res
}

func TestHealthz(t *testing.T) {
	res := get(t, newTestApp(10), "/healthz")
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	res := get(t, newTestApp(10), "/metrics")
	require.Equal(t, http.StatusOK, res.StatusCode)

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "go_goroutines"))
}

func TestRateLimitPerClient(t *testing.T) {
	app := newTestApp(2)

	for i := 0; i < 2; i++ {
		res := get(t, app, "/api/chat/ping")
		require.Equal(t, http.StatusOK, res.StatusCode)
	}

	res := get(t, app, "/api/chat/ping")
	require.Equal(t, http.StatusTooManyRequests, res.StatusCode)

	var body serverutils.BaseResponse[any]
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.False(t, body.Success)
	assert.Equal(t, http.StatusTooManyRequests, body.Code)

	// probes outside /api are never limited
	assert.Equal(t, http.StatusOK, get(t, app, "/healthz").StatusCode)
}
