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

// PlaceholderProductName имя заглушки в деградированном ответе
const PlaceholderProductName = "Temporarily Unavailable"

// ProductsClient обертка над HTTP вызовами к сервису Products
// Состав пайплайна снаружи внутрь:
//
//	Fallback(Bulkhead(Breaker(Retry(Timeout(call)))))
//
// Fallback снаружи чтобы отказ bulkhead и открытый breaker тоже
// деградировали в заглушку bulkhead снаружи breaker ограничивает
// суммарный параллелизм breaker снаружи retry видит итог всех попыток
// Перед пайплайном стоит кеш попадание вообще не ходит в сеть
type ProductsClient struct {
	baseURL    string
	httpClient *http.Client
	pipeline   resilience.Policy
	breaker    *resilience.CircuitBreaker
	bulkhead   *resilience.Bulkhead
	store      *cache.Store
	cacheCfg   config.CacheConfig
	metrics    *metrics.Metrics
	log        *logrus.Entry
}

// NewProductsClient собирает клиент с политиками из конфигурации
func NewProductsClient(
	baseURL string,
	policy config.PolicyConfig,
	cacheCfg config.CacheConfig,
	store *cache.Store,
	m *metrics.Metrics,
	log *logrus.Entry,
) *ProductsClient {
	breaker := resilience.NewCircuitBreaker("products", resilience.BreakerConfig{
		FailureThreshold: policy.FailureThreshold,
		Cooldown:         policy.BreakDuration,
	})
	breaker.WithStateChangeCallback(breakerObserver(m, "products", log))

	bulkhead := resilience.NewBulkhead(policy.BulkheadParallelism, policy.BulkheadQueueDepth)

	pipeline := resilience.Chain(
		resilience.Fallback(placeholderProduct, log),
		resilience.WithBulkhead(bulkhead),
		resilience.Breaker(breaker),
		resilience.Retry(resilience.RetryConfig{
			MaxRetries:  policy.RetryCount,
			BackoffBase: policy.RetryBackoffBase,
		}, log.WithField("dependency", "products")),
		resilience.Timeout(policy.Timeout),
	)

	return &ProductsClient{
		baseURL:    baseURL,
		httpClient: &http.Client{},
		pipeline:   pipeline,
		breaker:    breaker,
		bulkhead:   bulkhead,
		store:      store,
		cacheCfg:   cacheCfg,
		metrics:    m,
		log:        log,
	}
}

// placeholderProduct заглушка для деградированного ответа
// Явно помечена как недоступная и не может быть принята за настоящий товар
func placeholderProduct() interface{} {
	return &model.Product{
		ProductID:       uuid.Nil,
		ProductName:     PlaceholderProductName,
		Category:        PlaceholderProductName,
		UnitPrice:       0,
		QuantityInStock: 0,
	}
}

// GetByID возвращает товар по идентификатору
// Сначала кеш попадание не ходит в сеть затем policy pipeline
// успешный ответ кладется в кеш с абсолютным и скользящим TTL
func (c *ProductsClient) GetByID(ctx context.Context, productID uuid.UUID) resilience.Outcome {
	key := cache.ProductKey(productID)

	var cached model.Product
	if c.store.GetJSON(key, &cached) {
		recordCacheLookup(c.metrics, "products", true)
		return resilience.OK(&cached)
	}
	recordCacheLookup(c.metrics, "products", false)

	start := time.Now()
	outcome := resilience.Execute(ctx, c.pipeline, func(ctx context.Context) resilience.Outcome {
		return c.fetch(ctx, productID)
	})
	recordOutcome(c.metrics, "products", outcome, time.Since(start))

	if outcome.Kind == resilience.KindOK {
		product := outcome.Value.(*model.Product)
		if err := c.store.SetJSON(key, product, c.cacheCfg.ProductTTL, c.cacheCfg.ProductSlidingTTL); err != nil {
			c.log.WithError(err).Warn("Failed to cache product")
		}
	}

	return outcome
}

// Breaker текущий circuit breaker зависимости
func (c *ProductsClient) Breaker() *resilience.CircuitBreaker {
	return c.breaker
}

// Bulkhead текущий bulkhead зависимости
func (c *ProductsClient) Bulkhead() *resilience.Bulkhead {
	return c.bulkhead
}

// fetch один сетевой вызов к сервису Products
func (c *ProductsClient) fetch(ctx context.Context, productID uuid.UUID) resilience.Outcome {
	url := fmt.Sprintf("%s/api/products/search/product-id/%s", c.baseURL, productID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return resilience.Failure(apperrors.Wrap(err, apperrors.ErrorTypeInternal, "could not build request"))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return resilience.Failure(apperrors.Wrap(err, apperrors.ErrorTypeTransient, "products call failed"))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return resilience.NotFound()
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resilience.Failure(classifyStatus(resp.StatusCode))
	}

	var product model.Product
	if err := json.NewDecoder(resp.Body).Decode(&product); err != nil {
		return resilience.Failure(apperrors.Wrap(err, apperrors.ErrorTypeTransient, "could not decode products response"))
	}

	return resilience.OK(&product)
}
