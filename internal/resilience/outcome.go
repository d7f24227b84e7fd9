package resilience

import (
	apperrors "ecommerce/internal/errors"
)

// Kind вид исхода вызова зависимости
type Kind int

const (
	// KindOK успешный вызов Value содержит настоящие данные
	KindOK Kind = iota
	// KindNotFound зависимость ответила что сущности нет
	KindNotFound
	// KindDegraded вызов деградировал Value содержит заглушку
	KindDegraded
	// KindFailure вызов завершился ошибкой Err классифицирован
	KindFailure
)

func (k Kind) String() string {
	switch k {
	case KindOK:
		return "OK"
	case KindNotFound:
		return "NOT_FOUND"
	case KindDegraded:
		return "DEGRADED"
	case KindFailure:
		return "FAILURE"
	default:
		return "UNKNOWN"
	}
}

// Outcome результат одного вызова через policy pipeline
// Ровно одно из состояний действительно: OK NotFound Degraded Failure
// Заглушка всегда помечена KindDegraded и не может быть принята за настоящие данные
type Outcome struct {
	Kind  Kind
	Value interface{}
	Err   error
}

// OK успешный исход с настоящими данными
func OK(value interface{}) Outcome {
	return Outcome{Kind: KindOK, Value: value}
}

// NotFound сущность отсутствует у зависимости
func NotFound() Outcome {
	return Outcome{Kind: KindNotFound}
}

// Degraded исход с заглушкой вместо настоящих данных
// Err хранит причину деградации для логов
func Degraded(placeholder interface{}, cause error) Outcome {
	return Outcome{Kind: KindDegraded, Value: placeholder, Err: cause}
}

// Failure исход с классифицированной ошибкой
func Failure(err error) Outcome {
	return Outcome{Kind: KindFailure, Err: err}
}

// IsFailure true для KindFailure
func (o Outcome) IsFailure() bool {
	return o.Kind == KindFailure
}

// Retryable true если исход имеет смысл повторять
func (o Outcome) Retryable() bool {
	return o.Kind == KindFailure && apperrors.IsRetryable(o.Err)
}

// CountsAsBreakerFailure true если исход должен засчитываться circuit breaker
// NotFound и ошибки валидации это ответы зависимости а не её сбои
func (o Outcome) CountsAsBreakerFailure() bool {
	if o.Kind != KindFailure {
		return false
	}
	switch apperrors.TypeOf(o.Err) {
	case apperrors.ErrorTypeTransient, apperrors.ErrorTypeTimeout, apperrors.ErrorTypeOverload:
		return true
	default:
		return false
	}
}
