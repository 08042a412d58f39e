package serverutils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"openbook-be/internal/pkg/apperror"
	"openbook-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newErrorApp(err error) *fiber.App {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware(logger.NewNop()))
	app.Get("/", func(ctx *fiber.Ctx) error { return err })
	return app
}

func TestErrorHandlerMiddleware(t *testing.T) {
	upstream := apperror.Upstream("scrape profile octocat", errors.New(`github: status 502: {"message":"secret upstream body"}`))

	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"invalid", apperror.Invalid("username is required"), http.StatusBadRequest, ""},
		{"not found", apperror.NotFound("session %s", "s1"), http.StatusNotFound, ""},
		{"fiber error", fiber.NewError(http.StatusBadRequest, "bad body"), http.StatusBadRequest, "bad body"},
		{"upstream hides detail", upstream, http.StatusInternalServerError, internalErrorMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := newErrorApp(tt.err).Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
			require.NoError(t, err)
			assert.Equal(t, tt.status, res.StatusCode)

			var body BaseResponse[any]
			require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
			assert.False(t, body.Success)
			assert.Equal(t, tt.status, body.Code)
			if tt.message != "" {
				assert.Equal(t, tt.message, body.Message)
			}
			assert.NotContains(t, body.Message, "secret upstream body")
		})
	}
}
