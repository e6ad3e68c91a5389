package response

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"archiviz/internal/common/apperr"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCode(t *testing.T) {
	cases := map[apperr.Type]int{
		apperr.TypeNotFound:   http.StatusNotFound,
		apperr.TypeValidation: http.StatusBadRequest,
		apperr.TypeConflict:   http.StatusConflict,
		apperr.TypeRateLimit:  http.StatusTooManyRequests,
		apperr.TypeExternal:   http.StatusServiceUnavailable,
		apperr.TypeInternal:   http.StatusInternalServerError,
	}
	for typ, want := range cases {
		assert.Equal(t, want, StatusCode(typ), typ)
	}
}

func TestError_Body(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	app := fiber.New()
	app.Get("/conflict", func(c fiber.Ctx) error {
		return Error(c, logger, apperr.Conflict("busy"))
	})
	app.Get("/plain", func(c fiber.Ctx) error {
		return ErrorWithMessage(c, logger, errors.New("disk on fire"), "internal error")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/conflict", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	var body ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, ErrorResponse{Error: "conflict", Message: "busy", Code: 409}, body)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/plain", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "internal error", body.Message)
}
