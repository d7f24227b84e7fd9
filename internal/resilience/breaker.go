package resilience

import (
	"context"
	"sync"
	"time"

	apperrors "ecommerce/internal/errors"
)

// State состояние circuit breaker
type State int

const (
	StateClosed   State = iota // Закрыт - вызовы проходят
	StateOpen                  // Открыт - вызовы блокируются
	StateHalfOpen              // Полуоткрыт - проходит один пробный вызов
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

// BreakerConfig конфигурация circuit breaker
type BreakerConfig struct {
	// FailureThreshold количество подряд идущих сбоев для открытия
	FailureThreshold int
	// Cooldown время в открытом состоянии до пробного вызова
	Cooldown time.Duration
}

// CircuitBreaker один экземпляр на зависимость живет весь процесс
// Счетчики общие для всех конкурентных вызовов переходы атомарны под мьютексом
type CircuitBreaker struct {
	name          string
	config        BreakerConfig
	state         State
	failureCount  int
	trialInFlight bool
	lastFailTime  time.Time
	nextAttempt   time.Time
	mutex         sync.Mutex
	onStateChange func(from, to State)
}

// NewCircuitBreaker создает новый circuit breaker
func NewCircuitBreaker(name string, config BreakerConfig) *CircuitBreaker {
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = 5
	}
	if config.Cooldown <= 0 {
		config.Cooldown = 30 * time.Second
	}

	return &CircuitBreaker{
		name:   name,
		config: config,
		state:  StateClosed,
	}
}

// WithStateChangeCallback устанавливает callback для изменения состояния
func (cb *CircuitBreaker) WithStateChangeCallback(callback func(from, to State)) *CircuitBreaker {
	cb.onStateChange = callback
	return cb
}

// Name имя защищаемой зависимости
func (cb *CircuitBreaker) Name() string {
	return cb.name
}

// GetState возвращает текущее состояние
func (cb *CircuitBreaker) GetState() State {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()
	return cb.state
}

// Allow решает пропускать ли вызов и при необходимости переводит
// открытое состояние в полуоткрытое после cooldown
// В полуоткрытом состоянии пропускается ровно один пробный вызов
func (cb *CircuitBreaker) Allow() bool {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	switch cb.state {
	case StateClosed:
		return true
	case StateOpen:
		if time.Now().After(cb.nextAttempt) {
			cb.transition(StateHalfOpen)
			cb.trialInFlight = true
			return true
		}
		return false
	case StateHalfOpen:
		// Пробный вызов уже выполняется остальные ждут его результата
		if cb.trialInFlight {
			return false
		}
		cb.trialInFlight = true
		return true
	default:
		return false
	}
}

// RecordSuccess фиксирует успешный вызов
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	switch cb.state {
	case StateClosed:
		cb.failureCount = 0
	case StateHalfOpen:
		cb.trialInFlight = false
		cb.failureCount = 0
		cb.transition(StateClosed)
	}
}

// RecordFailure фиксирует сбой вызова
func (cb *CircuitBreaker) RecordFailure() {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	cb.lastFailTime = time.Now()

	switch cb.state {
	case StateClosed:
		cb.failureCount++
		if cb.failureCount >= cb.config.FailureThreshold {
			cb.nextAttempt = time.Now().Add(cb.config.Cooldown)
			cb.transition(StateOpen)
		}
	case StateHalfOpen:
		// Пробный вызов провалился снова открываемся и перезапускаем cooldown
		cb.trialInFlight = false
		cb.failureCount++
		cb.nextAttempt = time.Now().Add(cb.config.Cooldown)
		cb.transition(StateOpen)
	}
}

// Reset сбрасывает circuit breaker в закрытое состояние
func (cb *CircuitBreaker) Reset() {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	cb.failureCount = 0
	cb.trialInFlight = false
	cb.lastFailTime = time.Time{}
	cb.nextAttempt = time.Time{}
	cb.transition(StateClosed)
}

// BreakerStats статистика circuit breaker
type BreakerStats struct {
	State        State
	FailureCount int
	LastFailTime time.Time
	NextAttempt  time.Time
}

// GetStats возвращает статистику circuit breaker
func (cb *CircuitBreaker) GetStats() BreakerStats {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	return BreakerStats{
		State:        cb.state,
		FailureCount: cb.failureCount,
		LastFailTime: cb.lastFailTime,
		NextAttempt:  cb.nextAttempt,
	}
}

// transition переводит состояние вызывается только под мьютексом
func (cb *CircuitBreaker) transition(to State) {
	if cb.state == to {
		return
	}
	from := cb.state
	cb.state = to
	if cb.onStateChange != nil {
		cb.onStateChange(from, to)
	}
}

// Breaker оборачивает вызов circuit breaker-ом
// Слой стоит снаружи retry чтобы видеть суммарный итог всех попыток
// а не каждый промежуточный сбой иначе breaker открывался бы на коротких всплесках
// Открытое состояние возвращает отказ за O(1) без похода в сеть
func Breaker(cb *CircuitBreaker) Policy {
	return func(next Operation) Operation {
		return func(ctx context.Context) Outcome {
			if !cb.Allow() {
				return Failure(apperrors.ErrCircuitOpen)
			}

			outcome := next(ctx)

			if outcome.CountsAsBreakerFailure() {
				cb.RecordFailure()
			} else {
				cb.RecordSuccess()
			}

			return outcome
		}
	}
}
