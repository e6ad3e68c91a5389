package response

import (
	"log/slog"
	"net/http"

	"archiviz/internal/common/apperr"

	"github.com/gofiber/fiber/v3"
)

// ErrorResponse - тело ответа с ошибкой.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// Error логирует ошибку и отправляет JSON-ответ. Это единственное место,
// где ошибки обработчиков попадают в лог.
func Error(c fiber.Ctx, logger *slog.Logger, err error) error {
	return ErrorWithMessage(c, logger, err, err.Error())
}

// ErrorWithMessage отправляет клиенту clientMessage вместо текста ошибки.
func ErrorWithMessage(c fiber.Ctx, logger *slog.Logger, err error, clientMessage string) error {
	errType := apperr.TypeOf(err)
	status := StatusCode(errType)

	logError(logger, c, err, errType, status)

	return c.Status(status).JSON(ErrorResponse{
		Error:   string(errType),
		Message: clientMessage,
		Code:    status,
	})
}

func StatusCode(t apperr.Type) int {
	switch t {
	case apperr.TypeNotFound:
		return http.StatusNotFound
	case apperr.TypeValidation:
		return http.StatusBadRequest
	case apperr.TypeConflict:
		return http.StatusConflict
	case apperr.TypeRateLimit:
		return http.StatusTooManyRequests
	case apperr.TypeExternal:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func logError(logger *slog.Logger, c fiber.Ctx, err error, errType apperr.Type, status int) {
	l := logger.With(
		"method", c.Method(),
		"path", c.Path(),
		"error_type", errType,
		"status_code", status,
	)

	switch errType {
	case apperr.TypeNotFound, apperr.TypeValidation:
		l.Debug("Client error", "error", err)
	case apperr.TypeConflict, apperr.TypeRateLimit:
		l.Info("Request rejected", "error", err)
	case apperr.TypeExternal:
		l.Error("External service error", "error", err)
	default:
		l.Error("Internal server error", "error", err)
	}
}
