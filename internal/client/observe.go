package client

import (
	"time"

	apperrors "ecommerce/internal/errors"
	"ecommerce/internal/metrics"
	"ecommerce/internal/resilience"

	"github.com/sirupsen/logrus"
)

// recordOutcome учитывает результат вызова зависимости в метриках
func recordOutcome(m *metrics.Metrics, dependency string, outcome resilience.Outcome, elapsed time.Duration) {
	if m == nil {
		return
	}

	m.DependencyCalls.WithLabelValues(dependency, outcome.Kind.String()).Inc()
	m.DependencyCallDuration.WithLabelValues(dependency).Observe(elapsed.Seconds())

	if outcome.Kind == resilience.KindDegraded {
		m.DependencyFallbacks.WithLabelValues(dependency).Inc()
	}
	if apperrors.IsType(outcome.Err, apperrors.ErrorTypeBulkhead) {
		m.BulkheadRejected.WithLabelValues(dependency).Inc()
	}
}

// recordCacheLookup учитывает попадание или промах кеша
func recordCacheLookup(m *metrics.Metrics, name string, hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHits.WithLabelValues(name).Inc()
	} else {
		m.CacheMisses.WithLabelValues(name).Inc()
	}
}

// breakerObserver логирует переходы breaker-а и отражает их в метриках
func breakerObserver(m *metrics.Metrics, dependency string, log *logrus.Entry) func(from, to resilience.State) {
	return func(from, to resilience.State) {
		log.WithFields(logrus.Fields{
			"dependency": dependency,
			"from":       from.String(),
			"to":         to.String(),
		}).Warn("Circuit breaker state changed")

		if m != nil {
			m.BreakerState.WithLabelValues(dependency).Set(float64(to))
			m.BreakerTransitions.WithLabelValues(dependency, from.String(), to.String()).Inc()
		}
	}
}
