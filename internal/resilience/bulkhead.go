package resilience

import (
	"context"
	"sync/atomic"

	apperrors "ecommerce/internal/errors"
)

// BulkheadStats загрузка bulkhead
type BulkheadStats struct {
	Active   int
	Queued   int
	Rejected int64
}

// Bulkhead ограничивает параллелизм вызовов к зависимости
// Не больше parallelism вызовов выполняются одновременно еще queueDepth
// ждут освобождения слота все сверх этого отклоняются сразу без ожидания
type Bulkhead struct {
	slots    chan struct{} // активные вызовы
	queue    chan struct{} // активные плюс ожидающие
	rejected atomic.Int64
}

// NewBulkhead создает bulkhead с заданными лимитами
func NewBulkhead(parallelism, queueDepth int) *Bulkhead {
	if parallelism <= 0 {
		parallelism = 10
	}
	if queueDepth < 0 {
		queueDepth = 0
	}

	return &Bulkhead{
		slots: make(chan struct{}, parallelism),
		queue: make(chan struct{}, parallelism+queueDepth),
	}
}

// Acquire пытается занять слот
// Возвращает false если заняты и все места в очереди ожидания
func (b *Bulkhead) Acquire(ctx context.Context) bool {
	select {
	case b.queue <- struct{}{}:
	default:
		b.rejected.Add(1)
		return false
	}

	select {
	case b.slots <- struct{}{}:
		return true
	case <-ctx.Done():
		<-b.queue
		return false
	}
}

// Release освобождает слот
func (b *Bulkhead) Release() {
	<-b.slots
	<-b.queue
}

// GetStats возвращает текущую загрузку
func (b *Bulkhead) GetStats() BulkheadStats {
	queued := len(b.queue) - len(b.slots)
	if queued < 0 {
		queued = 0
	}
	return BulkheadStats{
		Active:   len(b.slots),
		Queued:   queued,
		Rejected: b.rejected.Load(),
	}
}

// WithBulkhead оборачивает вызов bulkhead-ом
// Переполнение очереди дает немедленный отказ bulkhead а не бесконечное ожидание
func WithBulkhead(b *Bulkhead) Policy {
	return func(next Operation) Operation {
		return func(ctx context.Context) Outcome {
			if !b.Acquire(ctx) {
				if ctx.Err() != nil {
					return Failure(apperrors.Wrap(ctx.Err(), apperrors.ErrorTypeTimeout, "cancelled while waiting for bulkhead slot"))
				}
				return Failure(apperrors.ErrBulkheadRejected)
			}
			defer b.Release()

			return next(ctx)
		}
	}
}
