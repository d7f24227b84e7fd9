package repository

import (
	"time"

	"ecommerce/internal/metrics"
)

// observeQuery пишет длительность запроса в метрики
func observeQuery(m *metrics.Metrics, operation string, start time.Time) {
	if m == nil {
		return
	}
	m.DatabaseQueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
