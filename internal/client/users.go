package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"ecommerce/internal/cache"
	"ecommerce/internal/config"
	apperrors "ecommerce/internal/errors"
	"ecommerce/internal/metrics"
	"ecommerce/internal/model"
	"ecommerce/internal/resilience"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// UsersClient обертка над HTTP вызовами к сервису Users
// Состав пайплайна снаружи внутрь:
//
//	Breaker(Retry(Timeout(call)))
//
// Breaker снаружи retry открытие считается по итогу всех попыток
// а не по каждому промежуточному сбою Перед пайплайном стоит кеш
type UsersClient struct {
	baseURL    string
	httpClient *http.Client
	pipeline   resilience.Policy
	breaker    *resilience.CircuitBreaker
	store      *cache.Store
	cacheCfg   config.CacheConfig
	metrics    *metrics.Metrics
	log        *logrus.Entry
}

// NewUsersClient собирает клиент с политиками из конфигурации
func NewUsersClient(
	baseURL string,
	policy config.PolicyConfig,
	cacheCfg config.CacheConfig,
	store *cache.Store,
	m *metrics.Metrics,
	log *logrus.Entry,
) *UsersClient {
	breaker := resilience.NewCircuitBreaker("users", resilience.BreakerConfig{
		FailureThreshold: policy.FailureThreshold,
		Cooldown:         policy.BreakDuration,
	})
	breaker.WithStateChangeCallback(breakerObserver(m, "users", log))

	pipeline := resilience.Chain(
		resilience.Breaker(breaker),
		resilience.Retry(resilience.RetryConfig{
			MaxRetries:  policy.RetryCount,
			BackoffBase: policy.RetryBackoffBase,
		}, log.WithField("dependency", "users")),
		resilience.Timeout(policy.Timeout),
	)

	return &UsersClient{
		baseURL:    baseURL,
		httpClient: &http.Client{},
		pipeline:   pipeline,
		breaker:    breaker,
		store:      store,
		cacheCfg:   cacheCfg,
		metrics:    m,
		log:        log,
	}
}

// GetByID возвращает пользователя по идентификатору
// Кеш затем пайплайн успешный ответ кладется в кеш
func (c *UsersClient) GetByID(ctx context.Context, userID uuid.UUID) resilience.Outcome {
	key := cache.UserKey(userID)

	var cached model.User
	if c.store.GetJSON(key, &cached) {
		recordCacheLookup(c.metrics, "users", true)
		return resilience.OK(&cached)
	}
	recordCacheLookup(c.metrics, "users", false)

	start := time.Now()
	outcome := resilience.Execute(ctx, c.pipeline, func(ctx context.Context) resilience.Outcome {
		return c.fetch(ctx, userID)
	})
	recordOutcome(c.metrics, "users", outcome, time.Since(start))

	if outcome.Kind == resilience.KindOK {
		user := outcome.Value.(*model.User)
		if err := c.store.SetJSON(key, user, c.cacheCfg.UserTTL, c.cacheCfg.UserSlidingTTL); err != nil {
			c.log.WithError(err).Warn("Failed to cache user")
		}
	}

	return outcome
}

// Breaker текущий circuit breaker зависимости
func (c *UsersClient) Breaker() *resilience.CircuitBreaker {
	return c.breaker
}

// fetch один сетевой вызов к сервису Users
func (c *UsersClient) fetch(ctx context.Context, userID uuid.UUID) resilience.Outcome {
	url := fmt.Sprintf("%s/api/users/%s", c.baseURL, userID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return resilience.Failure(apperrors.Wrap(err, apperrors.ErrorTypeInternal, "could not build request"))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return resilience.Failure(apperrors.Wrap(err, apperrors.ErrorTypeTransient, "users call failed"))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return resilience.NotFound()
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resilience.Failure(classifyStatus(resp.StatusCode))
	}

	var user model.User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return resilience.Failure(apperrors.Wrap(err, apperrors.ErrorTypeTransient, "could not decode users response"))
	}

	return resilience.OK(&user)
}
