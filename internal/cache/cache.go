package cache

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ProductKey ключ кеша товара формат "product:{id}"
func ProductKey(id uuid.UUID) string {
	return fmt.Sprintf("product:%s", id)
}

// UserKey ключ кеша пользователя формат "user:{id}"
func UserKey(id uuid.UUID) string {
	return fmt.Sprintf("user:%s", id)
}

// entry сериализованное значение с абсолютным и скользящим сроками
type entry struct {
	payload    []byte
	absolute   time.Time // жесткий срок от момента записи
	sliding    time.Time // продлевается при каждом чтении
	slidingTTL time.Duration
	mu         sync.Mutex
}

// expired проверяет оба срока
func (e *entry) expired(now time.Time) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return now.After(e.absolute) || now.After(e.sliding)
}

// touch продлевает скользящее окно но не дальше абсолютного срока
func (e *entry) touch(now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	next := now.Add(e.slidingTTL)
	if next.After(e.absolute) {
		next = e.absolute
	}
	e.sliding = next
}

// Stats статистика кеша
type Stats struct {
	Size          int
	Hits          int64
	Misses        int64
	HitRate       float64
	Expirations   int64
	Invalidations int64
}

// Store кеш сериализованных сущностей со строковыми ключами
// Записи конкурентных писателей по одному ключу идемпотентны последняя побеждает
type Store struct {
	entries         map[string]*entry
	mu              sync.RWMutex
	cleanupInterval time.Duration
	stopCleanup     chan struct{}
	stopOnce        sync.Once

	stats struct {
		mu            sync.Mutex
		hits          int64
		misses        int64
		expirations   int64
		invalidations int64
	}
}

// NewStore создает кеш и запускает фоновую чистку просроченных записей
func NewStore(cleanupInterval time.Duration) *Store {
	if cleanupInterval <= 0 {
		cleanupInterval = time.Minute
	}

	store := &Store{
		entries:         make(map[string]*entry),
		cleanupInterval: cleanupInterval,
		stopCleanup:     make(chan struct{}),
	}

	go store.startCleanup()
	return store
}

// Get возвращает сырое значение по ключу
// Попадание продлевает скользящее окно
func (s *Store) Get(key string) ([]byte, bool) {
	s.mu.RLock()
	e, exists := s.entries[key]
	s.mu.RUnlock()

	if !exists {
		s.incMisses()
		return nil, false
	}

	now := time.Now()
	if e.expired(now) {
		s.remove(key)
		s.incExpirations()
		s.incMisses()
		return nil, false
	}

	e.touch(now)
	s.incHits()
	return e.payload, true
}

// GetJSON читает значение и десериализует его в out
// Поврежденная запись не ошибка считается промахом и удаляется
func (s *Store) GetJSON(key string, out interface{}) bool {
	payload, ok := s.Get(key)
	if !ok {
		return false
	}

	if err := json.Unmarshal(payload, out); err != nil {
		s.remove(key)
		s.incMisses()
		return false
	}

	return true
}

// Set сохраняет сырое значение с абсолютным TTL и скользящим окном
func (s *Store) Set(key string, payload []byte, absoluteTTL, slidingTTL time.Duration) {
	if key == "" || payload == nil {
		return
	}

	now := time.Now()
	sliding := now.Add(slidingTTL)
	absolute := now.Add(absoluteTTL)
	if sliding.After(absolute) {
		sliding = absolute
	}

	e := &entry{
		payload:    payload,
		absolute:   absolute,
		sliding:    sliding,
		slidingTTL: slidingTTL,
	}

	s.mu.Lock()
	s.entries[key] = e
	s.mu.Unlock()
}

// SetJSON сериализует значение и сохраняет его
func (s *Store) SetJSON(key string, value interface{}, absoluteTTL, slidingTTL time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.Set(key, payload, absoluteTTL, slidingTTL)
	return nil
}

// Delete удаляет запись push-инвалидация от consumer-а событий
func (s *Store) Delete(key string) {
	s.mu.Lock()
	_, existed := s.entries[key]
	delete(s.entries, key)
	s.mu.Unlock()

	if existed {
		s.incInvalidations()
	}
}

// remove убирает запись без учета в invalidations
// истечение срока и порча записи не push-инвалидация
func (s *Store) remove(key string) {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

// Size количество записей
func (s *Store) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Clear очищает кеш
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]*entry)
}

// GetStats возвращает статистику кеша
func (s *Store) GetStats() Stats {
	s.stats.mu.Lock()
	defer s.stats.mu.Unlock()

	total := s.stats.hits + s.stats.misses
	hitRate := 0.0
	if total > 0 {
		hitRate = float64(s.stats.hits) / float64(total) * 100
	}

	return Stats{
		Size:          s.Size(),
		Hits:          s.stats.hits,
		Misses:        s.stats.misses,
		HitRate:       hitRate,
		Expirations:   s.stats.expirations,
		Invalidations: s.stats.invalidations,
	}
}

// Stop останавливает фоновую чистку
func (s *Store) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCleanup)
	})
}

// startCleanup периодически убирает просроченные записи
func (s *Store) startCleanup() {
	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCleanup:
			return
		}
	}
}

// cleanup удаляет все просроченные записи
func (s *Store) cleanup() {
	now := time.Now()

	s.mu.Lock()
	var expiredKeys []string
	for key, e := range s.entries {
		if e.expired(now) {
			expiredKeys = append(expiredKeys, key)
		}
	}
	for _, key := range expiredKeys {
		delete(s.entries, key)
	}
	s.mu.Unlock()

	if len(expiredKeys) > 0 {
		s.stats.mu.Lock()
		s.stats.expirations += int64(len(expiredKeys))
		s.stats.mu.Unlock()
	}
}

func (s *Store) incHits() {
	s.stats.mu.Lock()
	s.stats.hits++
	s.stats.mu.Unlock()
}

func (s *Store) incMisses() {
	s.stats.mu.Lock()
	s.stats.misses++
	s.stats.mu.Unlock()
}

func (s *Store) incExpirations() {
	s.stats.mu.Lock()
	s.stats.expirations++
	s.stats.mu.Unlock()
}

func (s *Store) incInvalidations() {
	s.stats.mu.Lock()
	s.stats.invalidations++
	s.stats.mu.Unlock()
}
