package client

import (
	"fmt"
	"net/http"

	apperrors "ecommerce/internal/errors"
)

// classifyStatus переводит HTTP статус зависимости в тип ошибки
// 404 сюда не попадает вызывающий превращает его в NotFound до классификации
// 400 ошибка запроса не ретраится 503 сигнал перегрузки включает fallback
// остальные не-2xx временные сбои
func classifyStatus(status int) *apperrors.AppError {
	switch {
	case status == http.StatusBadRequest:
		return apperrors.NewWithCode(apperrors.ErrorTypeValidation,
			fmt.Sprintf("dependency rejected request with status %d", status), "DEPENDENCY_BAD_REQUEST")
	case status == http.StatusServiceUnavailable:
		return apperrors.NewWithCode(apperrors.ErrorTypeOverload,
			fmt.Sprintf("dependency reported overload with status %d", status), "DEPENDENCY_OVERLOADED")
	case status == http.StatusRequestTimeout, status == http.StatusTooManyRequests, status >= 500:
		return apperrors.NewWithCode(apperrors.ErrorTypeTransient,
			fmt.Sprintf("dependency returned status %d", status), "DEPENDENCY_UNAVAILABLE")
	default:
		return apperrors.NewWithCode(apperrors.ErrorTypeTransient,
			fmt.Sprintf("unexpected dependency status %d", status), "DEPENDENCY_UNEXPECTED_STATUS")
	}
}
