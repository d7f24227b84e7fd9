package resilience

import (
	"context"
	"errors"
	"time"

	apperrors "ecommerce/internal/errors"
)

// Timeout ограничивает длительность внутреннего вызова
// Отменяет контекст операции по истечении d поэтому вызов прерывается
// а не просто перестает ожидаться Отмена вызывающего и таймаут независимы
// срабатывает то что случится раньше
func Timeout(d time.Duration) Policy {
	return func(next Operation) Operation {
		return func(ctx context.Context) Outcome {
			timeoutCtx, cancel := context.WithTimeout(ctx, d)
			defer cancel()

			outcome := next(timeoutCtx)

			if outcome.IsFailure() && isDeadline(timeoutCtx, outcome.Err) {
				return Failure(apperrors.Wrap(outcome.Err, apperrors.ErrorTypeTimeout, "dependency call timed out"))
			}

			return outcome
		}
	}
}

// isDeadline true если ошибка вызвана истечением именно нашего таймаута
// а не отменой вызывающего контекста
func isDeadline(ctx context.Context, err error) bool {
	if !errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return false
	}
	return errors.Is(err, context.DeadlineExceeded) || apperrors.IsType(err, apperrors.ErrorTypeTransient)
}
