package apperr

import (
	"errors"
	"fmt"
)

// Type - категория ошибки приложения.
type Type string

const (
	TypeNotFound   Type = "not_found"
	TypeValidation Type = "validation"
	TypeConflict   Type = "conflict"
	TypeRateLimit  Type = "rate_limited"
	TypeExternal   Type = "external"
	TypeInternal   Type = "internal"
)

// Error - ошибка с категорией; обёрнутая причина доступна через Unwrap.
type Error struct {
	Type    Type
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NotFoundf(format string, args ...any) error {
	return &Error{Type: TypeNotFound, Message: fmt.Sprintf(format, args...)}
}

func Validation(message string) error {
	return &Error{Type: TypeValidation, Message: message}
}

func Validationf(format string, args ...any) error {
	return &Error{Type: TypeValidation, Message: fmt.Sprintf(format, args...)}
}

func WrapValidation(message string, err error) error {
	return &Error{Type: TypeValidation, Message: message, Err: err}
}

func Conflict(message string) error {
	return &Error{Type: TypeConflict, Message: message}
}

func RateLimited(message string) error {
	return &Error{Type: TypeRateLimit, Message: message}
}

func WrapExternal(message string, err error) error {
	return &Error{Type: TypeExternal, Message: message, Err: err}
}

func WrapInternal(message string, err error) error {
	return &Error{Type: TypeInternal, Message: message, Err: err}
}

// TypeOf возвращает категорию; неизвестные ошибки считаются внутренними.
func TypeOf(err error) Type {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return TypeInternal
}

// Is проверяет категорию ошибки.
func Is(err error, t Type) bool {
	return err != nil && TypeOf(err) == t
}
