package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics структура для метрик сервиса
type Metrics struct {
	// HTTP метрики
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPRequestSize     *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// Метрики вызовов зависимостей (users, products)
	DependencyCalls        *prometheus.CounterVec
	DependencyCallDuration *prometheus.HistogramVec
	DependencyFallbacks    *prometheus.CounterVec

	// Circuit breaker метрики
	BreakerState       *prometheus.GaugeVec
	BreakerTransitions *prometheus.CounterVec

	// Bulkhead метрики
	BulkheadRejected *prometheus.CounterVec
	BulkheadActive   *prometheus.GaugeVec

	// Cache метрики
	CacheHits          *prometheus.CounterVec
	CacheMisses        *prometheus.CounterVec
	CacheInvalidations *prometheus.CounterVec
	CacheEntries       *prometheus.GaugeVec

	// Broker метрики
	BrokerMessagesPublished *prometheus.CounterVec
	BrokerMessagesConsumed  *prometheus.CounterVec
	BrokerMessagesRejected  *prometheus.CounterVec

	// Database метрики
	DatabaseQueryDuration *prometheus.HistogramVec
}

// New создает новые метрики
func New() *Metrics {
	return &Metrics{
		// HTTP метрики
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
		HTTPRequestSize: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 8),
			},
			[]string{"method", "endpoint"},
		),
		HTTPResponseSize: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 8),
			},
			[]string{"method", "endpoint"},
		),

		// Метрики вызовов зависимостей
		DependencyCalls: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dependency_calls_total",
				Help: "Total number of calls to downstream services",
			},
			[]string{"dependency", "outcome"},
		),
		DependencyCallDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dependency_call_duration_seconds",
				Help:    "Downstream call duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"dependency"},
		),
		DependencyFallbacks: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dependency_fallbacks_total",
				Help: "Total number of fallback responses served",
			},
			[]string{"dependency"},
		),

		// Circuit breaker метрики
		BreakerState: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "circuit_breaker_state",
				Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
			},
			[]string{"dependency"},
		),
		BreakerTransitions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "circuit_breaker_transitions_total",
				Help: "Total number of circuit breaker state transitions",
			},
			[]string{"dependency", "from", "to"},
		),

		// Bulkhead метрики
		BulkheadRejected: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bulkhead_rejected_total",
				Help: "Total number of calls rejected by the bulkhead",
			},
			[]string{"dependency"},
		),
		BulkheadActive: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "bulkhead_active_calls",
				Help: "Number of calls currently holding a bulkhead slot",
			},
			[]string{"dependency"},
		),

		// Cache метрики
		CacheHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_hits_total",
				Help: "Total number of cache hits",
			},
			[]string{"cache"},
		),
		CacheMisses: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_misses_total",
				Help: "Total number of cache misses",
			},
			[]string{"cache"},
		),
		CacheInvalidations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_invalidations_total",
				Help: "Total number of cache invalidations",
			},
			[]string{"cache", "reason"},
		),
		CacheEntries: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "cache_entries",
				Help: "Number of entries in cache",
			},
			[]string{"cache"},
		),

		// Broker метрики
		BrokerMessagesPublished: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "broker_messages_published_total",
				Help: "Total number of messages published to the broker",
			},
			[]string{"exchange", "routing_key"},
		),
		BrokerMessagesConsumed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "broker_messages_consumed_total",
				Help: "Total number of messages consumed from the broker",
			},
			[]string{"queue", "routing_key"},
		),
		BrokerMessagesRejected: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "broker_messages_rejected_total",
				Help: "Total number of messages rejected to the dead letter queue",
			},
			[]string{"queue", "reason"},
		),

		// Database метрики
		DatabaseQueryDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "database_query_duration_seconds",
				Help:    "Database query duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// HTTPMiddleware создает middleware для HTTP метрик
func (m *Metrics) HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Создаем ResponseWriter для отслеживания статуса и размера
		wrapped := &responseWriter{ResponseWriter: w, statusCode: 200}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()
		status := http.StatusText(wrapped.statusCode)

		// Обновляем метрики
		m.HTTPRequestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(duration)
		m.HTTPRequestSize.WithLabelValues(r.Method, r.URL.Path).Observe(float64(r.ContentLength))
		m.HTTPResponseSize.WithLabelValues(r.Method, r.URL.Path).Observe(float64(wrapped.size))
	})
}

// Handler возвращает HTTP handler для Prometheus метрик
func (m *Metrics) Handler() http.Handler {
	return promhttp.Handler()
}

// responseWriter обертка для http.ResponseWriter
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	size       int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	size, err := rw.ResponseWriter.Write(b)
	rw.size += size
	return size, err
}
