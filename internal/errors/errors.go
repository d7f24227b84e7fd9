package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType тип ошибки
type ErrorType string

const (
	// ErrorTypeValidation ошибка валидации запроса не ретраится
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeNotFound ресурс не найден терминальный исход
	ErrorTypeNotFound ErrorType = "not_found"
	// ErrorTypeTransient временный сбой (5xx, обрыв соединения) ретраится
	ErrorTypeTransient ErrorType = "transient"
	// ErrorTypeTimeout превышен таймаут вызова ретраится
	ErrorTypeTimeout ErrorType = "timeout"
	// ErrorTypeOverload зависимость сообщила о перегрузке включается fallback
	ErrorTypeOverload ErrorType = "overload"
	// ErrorTypeBulkhead отклонено bulkhead лимитом параллелизма
	ErrorTypeBulkhead ErrorType = "bulkhead"
	// ErrorTypeCircuitOpen circuit breaker открыт вызов не выполнялся
	ErrorTypeCircuitOpen ErrorType = "circuit_open"
	// ErrorTypeBroker ошибка брокера сообщений
	ErrorTypeBroker ErrorType = "broker"
	// ErrorTypeCache ошибка кеша
	ErrorTypeCache ErrorType = "cache"
	// ErrorTypeDatabase ошибка базы данных
	ErrorTypeDatabase ErrorType = "database"
	// ErrorTypeInternal внутренняя ошибка
	ErrorTypeInternal ErrorType = "internal"
)

// AppError структура ошибки приложения
type AppError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	Code       string    `json:"code,omitempty"`
	Details    string    `json:"details,omitempty"`
	HTTPStatus int       `json:"-"`
	Cause      error     `json:"-"`
}

// Error реализует интерфейс error
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap возвращает причину ошибки
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Retryable true для типов которые имеет смысл повторять
func (e *AppError) Retryable() bool {
	return e.Type == ErrorTypeTransient || e.Type == ErrorTypeTimeout
}

// New создает новую ошибку
func New(errorType ErrorType, message string) *AppError {
	return &AppError{
		Type:       errorType,
		Message:    message,
		HTTPStatus: getDefaultHTTPStatus(errorType),
	}
}

// NewWithCode создает новую ошибку с кодом
func NewWithCode(errorType ErrorType, message, code string) *AppError {
	return &AppError{
		Type:       errorType,
		Message:    message,
		Code:       code,
		HTTPStatus: getDefaultHTTPStatus(errorType),
	}
}

// Wrap оборачивает существующую ошибку
func Wrap(err error, errorType ErrorType, message string) *AppError {
	if err == nil {
		return nil
	}

	if appErr, ok := err.(*AppError); ok {
		return appErr
	}

	return &AppError{
		Type:       errorType,
		Message:    message,
		HTTPStatus: getDefaultHTTPStatus(errorType),
		Cause:      err,
	}
}

// TypeOf возвращает тип ошибки или ErrorTypeInternal если это не AppError
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeInternal
}

// IsType проверяет что ошибка имеет указанный тип
func IsType(err error, errorType ErrorType) bool {
	return TypeOf(err) == errorType
}

// IsRetryable проверяет что ошибку имеет смысл повторять
func IsRetryable(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Retryable()
	}
	return false
}

// getDefaultHTTPStatus возвращает HTTP статус по умолчанию для типа ошибки
func getDefaultHTTPStatus(errorType ErrorType) int {
	switch errorType {
	case ErrorTypeValidation:
		return http.StatusBadRequest
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeTimeout:
		return http.StatusRequestTimeout
	case ErrorTypeOverload, ErrorTypeBulkhead, ErrorTypeCircuitOpen:
		return http.StatusServiceUnavailable
	case ErrorTypeTransient, ErrorTypeBroker, ErrorTypeCache, ErrorTypeDatabase, ErrorTypeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// Предопределенные ошибки

// Validation errors
var (
	ErrValidationFailed = NewWithCode(
		ErrorTypeValidation,
		"Request validation failed",
		"VALIDATION_FAILED",
	)

	ErrBadRequest = NewWithCode(
		ErrorTypeValidation,
		"Bad request",
		"BAD_REQUEST",
	)
)

// NotFound errors
var (
	ErrOrderNotFound = NewWithCode(
		ErrorTypeNotFound,
		"Order not found",
		"ORDER_NOT_FOUND",
	)

	ErrProductNotFound = NewWithCode(
		ErrorTypeNotFound,
		"Product not found",
		"PRODUCT_NOT_FOUND",
	)

	ErrUserNotFound = NewWithCode(
		ErrorTypeNotFound,
		"User not found",
		"USER_NOT_FOUND",
	)
)

// Resilience errors
var (
	ErrDependencyTimeout = NewWithCode(
		ErrorTypeTimeout,
		"Dependency call timed out",
		"DEPENDENCY_TIMEOUT",
	)

	ErrDependencyUnavailable = NewWithCode(
		ErrorTypeTransient,
		"Dependency temporarily unavailable",
		"DEPENDENCY_UNAVAILABLE",
	)

	ErrDependencyOverloaded = NewWithCode(
		ErrorTypeOverload,
		"Dependency reported overload",
		"DEPENDENCY_OVERLOADED",
	)

	ErrBulkheadRejected = NewWithCode(
		ErrorTypeBulkhead,
		"Too many concurrent requests to dependency",
		"BULKHEAD_REJECTED",
	)

	ErrCircuitOpen = NewWithCode(
		ErrorTypeCircuitOpen,
		"Circuit breaker is open",
		"CIRCUIT_OPEN",
	)

	ErrRetryExhausted = NewWithCode(
		ErrorTypeTransient,
		"Retry attempts exhausted",
		"RETRY_EXHAUSTED",
	)
)

// Broker errors
var (
	ErrBrokerConnection = NewWithCode(
		ErrorTypeBroker,
		"Message broker connection failed",
		"BROKER_CONNECTION_FAILED",
	)

	ErrUnknownRoute = NewWithCode(
		ErrorTypeBroker,
		"Unknown publisher route",
		"UNKNOWN_ROUTE",
	)

	ErrPoisonMessage = NewWithCode(
		ErrorTypeBroker,
		"Message payload cannot be deserialized",
		"POISON_MESSAGE",
	)
)
