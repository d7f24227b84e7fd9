package resilience

import (
	"context"

	apperrors "ecommerce/internal/errors"

	"github.com/sirupsen/logrus"
)

// fallbackTypes классы сбоев которые подменяются заглушкой
// Валидация и not found не подменяются это ответы а не недоступность
var fallbackTypes = map[apperrors.ErrorType]bool{
	apperrors.ErrorTypeOverload:    true,
	apperrors.ErrorTypeTransient:   true,
	apperrors.ErrorTypeTimeout:     true,
	apperrors.ErrorTypeBulkhead:    true,
	apperrors.ErrorTypeCircuitOpen: true,
}

// Fallback подменяет сбой недоступности заглушкой
// Вызывающий получает Degraded исход вместо жесткой ошибки
// placeholder строится на каждый вызов чтобы не делить изменяемое значение
func Fallback(placeholder func() interface{}, log *logrus.Entry) Policy {
	return func(next Operation) Operation {
		return func(ctx context.Context) Outcome {
			outcome := next(ctx)

			if outcome.IsFailure() && fallbackTypes[apperrors.TypeOf(outcome.Err)] {
				log.WithFields(logrus.Fields{
					"reason": apperrors.TypeOf(outcome.Err),
				}).Info("Fallback triggered, substituting placeholder response")
				return Degraded(placeholder(), outcome.Err)
			}

			return outcome
		}
	}
}
