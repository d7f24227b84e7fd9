package resilience

import (
	"context"
	"math"
	"time"

	apperrors "ecommerce/internal/errors"

	"github.com/sirupsen/logrus"
)

// RetryConfig настройки retry слоя
type RetryConfig struct {
	// MaxRetries количество повторов сверх первого вызова
	MaxRetries int
	// BackoffBase основание экспоненциальной задержки delay = base^attempt секунд
	BackoffBase float64
}

// Retry повторяет вызов при ретраибельных сбоях с экспоненциальным backoff
// Неретраибельные исходы (валидация, not found) уходят наверх сразу
// Ожидание между попытками отменяется контекстом
func Retry(cfg RetryConfig, log *logrus.Entry) Policy {
	return func(next Operation) Operation {
		return func(ctx context.Context) Outcome {
			var outcome Outcome

			for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
				outcome = next(ctx)

				if !outcome.Retryable() {
					return outcome
				}

				// Последняя попытка отдаем последний сбой наверх
				if attempt == cfg.MaxRetries {
					break
				}

				delay := backoffDelay(cfg.BackoffBase, attempt+1)

				log.WithFields(logrus.Fields{
					"attempt": attempt + 1,
					"delay":   delay.String(),
				}).Info("Retrying dependency call")

				select {
				case <-time.After(delay):
				case <-ctx.Done():
					return Failure(apperrors.Wrap(ctx.Err(), apperrors.ErrorTypeTimeout, "cancelled while waiting for retry"))
				}
			}

			return Failure(apperrors.Wrap(outcome.Err, apperrors.ErrorTypeTransient, "retry attempts exhausted"))
		}
	}
}

// backoffDelay задержка перед повтором delay = base^attempt секунд
func backoffDelay(base float64, attempt int) time.Duration {
	return time.Duration(math.Pow(base, float64(attempt)) * float64(time.Second))
}
