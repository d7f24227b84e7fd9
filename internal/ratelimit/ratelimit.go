package ratelimit

import (
	"context"
	"sync"
	"time"
)

// pruneThreshold размер карты клиентов после которого Allow попутно
// выбрасывает давно неактивные записи
const pruneThreshold = 10000

// RateLimiter ограничивает частоту запросов по строковому ключу
// Ключ обычно IP клиента или IP плюс группа путей API
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Reset(key string)
	Stats(key string) *Stats
	Limit() int
}

// Stats счетчики одного ключа
type Stats struct {
	Allowed   int64
	Denied    int64
	ResetTime time.Time
}

// Config лимит запросов в окне и допустимый burst сверх него
type Config struct {
	Requests int
	Window   time.Duration
	Burst    int
}

// TokenBucket вёдра токенов по ключу
// Токены пополняются непрерывно пропорционально прошедшему времени
// кратковременные всплески до burst проходят без отказов
type TokenBucket struct {
	limit  int
	window time.Duration
	burst  float64

	mu      sync.Mutex
	clients map[string]*tokenState
}

type tokenState struct {
	tokens   float64
	refilled time.Time
	allowed  int64
	denied   int64
}

// NewTokenBucket создает limiter с ведром на каждый ключ
func NewTokenBucket(cfg Config) *TokenBucket {
	burst := cfg.Burst
	if burst <= 0 {
		burst = cfg.Requests
	}
	return &TokenBucket{
		limit:   cfg.Requests,
		window:  cfg.Window,
		burst:   float64(burst),
		clients: make(map[string]*tokenState),
	}
}

// Allow списывает токен если он есть
func (tb *TokenBucket) Allow(ctx context.Context, key string) (bool, error) {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := time.Now()
	state, ok := tb.clients[key]
	if !ok {
		if len(tb.clients) >= pruneThreshold {
			tb.pruneLocked(now)
		}
		state = &tokenState{tokens: float64(tb.limit), refilled: now}
		tb.clients[key] = state
	}

	tb.refillLocked(state, now)

	if state.tokens >= 1 {
		state.tokens--
		state.allowed++
		return true, nil
	}

	state.denied++
	return false, nil
}

// refillLocked доливает токены за прошедшее время не выше burst
func (tb *TokenBucket) refillLocked(state *tokenState, now time.Time) {
	elapsed := now.Sub(state.refilled)
	if elapsed <= 0 {
		return
	}

	state.tokens += elapsed.Seconds() / tb.window.Seconds() * float64(tb.limit)
	if state.tokens > tb.burst {
		state.tokens = tb.burst
	}
	state.refilled = now
}

// pruneLocked выбрасывает ключи молчавшие дольше двух окон
func (tb *TokenBucket) pruneLocked(now time.Time) {
	cutoff := now.Add(-2 * tb.window)
	for key, state := range tb.clients {
		if state.refilled.Before(cutoff) {
			delete(tb.clients, key)
		}
	}
}

// Reset возвращает ключу полное ведро
func (tb *TokenBucket) Reset(key string) {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	if state, ok := tb.clients[key]; ok {
		state.tokens = float64(tb.limit)
		state.refilled = time.Now()
		state.allowed = 0
		state.denied = 0
	}
}

// Stats счетчики ключа
func (tb *TokenBucket) Stats(key string) *Stats {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	state, ok := tb.clients[key]
	if !ok {
		return &Stats{}
	}
	return &Stats{
		Allowed:   state.allowed,
		Denied:    state.denied,
		ResetTime: state.refilled.Add(tb.window),
	}
}

// Limit настроенный лимит запросов в окне
func (tb *TokenBucket) Limit() int {
	return tb.limit
}

// FixedWindow счетчик запросов в фиксированном окне по ключу
// Проще token bucket но на границе окон пропускает до двойного лимита
type FixedWindow struct {
	limit  int
	window time.Duration

	mu      sync.Mutex
	clients map[string]*windowState
}

type windowState struct {
	count   int64
	started time.Time
	allowed int64
	denied  int64
}

// NewFixedWindow создает limiter со счетчиком на каждый ключ
func NewFixedWindow(cfg Config) *FixedWindow {
	return &FixedWindow{
		limit:   cfg.Requests,
		window:  cfg.Window,
		clients: make(map[string]*windowState),
	}
}

// Allow увеличивает счетчик текущего окна пока не достигнут лимит
func (fw *FixedWindow) Allow(ctx context.Context, key string) (bool, error) {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	now := time.Now()
	state, ok := fw.clients[key]
	if !ok {
		if len(fw.clients) >= pruneThreshold {
			fw.pruneLocked(now)
		}
		state = &windowState{started: now.Truncate(fw.window)}
		fw.clients[key] = state
	}

	if now.Sub(state.started) >= fw.window {
		state.count = 0
		state.started = now.Truncate(fw.window)
	}

	if state.count < int64(fw.limit) {
		state.count++
		state.allowed++
		return true, nil
	}

	state.denied++
	return false, nil
}

// pruneLocked выбрасывает ключи молчавшие дольше двух окон
func (fw *FixedWindow) pruneLocked(now time.Time) {
	cutoff := now.Add(-2 * fw.window)
	for key, state := range fw.clients {
		if state.started.Before(cutoff) {
			delete(fw.clients, key)
		}
	}
}

// Reset начинает для ключа новое пустое окно
func (fw *FixedWindow) Reset(key string) {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if state, ok := fw.clients[key]; ok {
		state.count = 0
		state.started = time.Now().Truncate(fw.window)
		state.allowed = 0
		state.denied = 0
	}
}

// Stats счетчики ключа
func (fw *FixedWindow) Stats(key string) *Stats {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	state, ok := fw.clients[key]
	if !ok {
		return &Stats{}
	}
	return &Stats{
		Allowed:   state.allowed,
		Denied:    state.denied,
		ResetTime: state.started.Add(fw.window),
	}
}

// Limit настроенный лимит запросов в окне
func (fw *FixedWindow) Limit() int {
	return fw.limit
}

// NewRateLimiter выбирает алгоритм по имени
// Неизвестное имя дает token bucket он мягче к всплескам трафика
func NewRateLimiter(cfg Config, algorithm string) RateLimiter {
	switch algorithm {
	case "fixed-window":
		return NewFixedWindow(cfg)
	default:
		return NewTokenBucket(cfg)
	}
}
