package domain

import (
	"errors"
	"fmt"

	"git.appkode.ru/pub/go/failure"
)

// AppError представляет доменную ошибку приложения без HTTP-класса
// (инфраструктурные сбои, подавляемые дубликаты).
type AppError struct {
	Code    failure.ErrorCode
	Message string
	cause   error
}

// Error реализует интерфейс error.
func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap возвращает обёрнутую ошибку для errors.Is/As.
func (e *AppError) Unwrap() error {
	return e.cause
}

// ErrorCode отдаёт код ошибки для слоя ответа.
func (e *AppError) ErrorCode() failure.ErrorCode {
	return e.Code
}

// NewError создаёт новую доменную ошибку.
func NewError(code failure.ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// WrapError оборачивает существующую ошибку с доменным контекстом.
func WrapError(err error, code failure.ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		cause:   err,
	}
}

// IsAppError проверяет, является ли ошибка доменной.
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetCode извлекает код ошибки: сначала из AppError, затем из failure.
func GetCode(err error) (failure.ErrorCode, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code, true
	}

	if code := failure.Code(err); code != "" {
		return code, true
	}

	return "", false
}

// HasCode проверяет код ошибки в цепочке.
func HasCode(err error, code failure.ErrorCode) bool {
	got, ok := GetCode(err)
	return ok && got == code
}

func NewValidationError(code failure.ErrorCode, message string) error {
	return failure.NewInvalidArgumentError(message, failure.WithCode(code), failure.WithDescription(message))
}

func NewNotFoundError(code failure.ErrorCode, message string) error {
	return failure.NewNotFoundError(message, failure.WithCode(code), failure.WithDescription(message))
}

func NewForbiddenError(code failure.ErrorCode, message string) error {
	return failure.NewForbiddenError(message, failure.WithCode(code), failure.WithDescription(message))
}

func NewConflictError(code failure.ErrorCode, message string) error {
	return failure.NewConflictError(message, failure.WithCode(code), failure.WithDescription(message))
}
