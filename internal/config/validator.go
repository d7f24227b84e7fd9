package config

import (
	"fmt"
	"strings"

	apperrors "ecommerce/internal/errors"
)

// Validator валидирует конфигурацию приложения
type Validator struct{}

// NewValidator создает новый валидатор конфигурации
func NewValidator() *Validator {
	return &Validator{}
}

// Validate проверяет корректность всей конфигурации
func (v *Validator) Validate(cfg *Config) error {
	var errors []string

	if err := v.validateDatabase(&cfg.Database); err != nil {
		errors = append(errors, fmt.Sprintf("Database: %v", err))
	}

	if err := v.validateRabbitMQ(&cfg.RabbitMQ); err != nil {
		errors = append(errors, fmt.Sprintf("RabbitMQ: %v", err))
	}

	if err := v.validateCache(&cfg.Cache); err != nil {
		errors = append(errors, fmt.Sprintf("Cache: %v", err))
	}

	if err := v.validateHTTP(&cfg.HTTP); err != nil {
		errors = append(errors, fmt.Sprintf("HTTP: %v", err))
	}

	if err := v.validatePolicy("Products", &cfg.Clients.Products); err != nil {
		errors = append(errors, err.Error())
	}

	if err := v.validatePolicy("Users", &cfg.Clients.Users); err != nil {
		errors = append(errors, err.Error())
	}

	if err := v.validateLogger(&cfg.Logger); err != nil {
		errors = append(errors, fmt.Sprintf("Logger: %v", err))
	}

	if len(errors) > 0 {
		return apperrors.NewWithCode(
			apperrors.ErrorTypeValidation,
			fmt.Sprintf("Configuration validation failed: %s", strings.Join(errors, "; ")),
			"CONFIG_VALIDATION_FAILED",
		)
	}

	return nil
}

// validateDatabase валидирует конфигурацию базы данных
func (v *Validator) validateDatabase(cfg *DatabaseConfig) error {
	var errors []string

	if cfg.Host == "" {
		errors = append(errors, "host is required")
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		errors = append(errors, "port must be between 1 and 65535")
	}

	if cfg.User == "" {
		errors = append(errors, "user is required")
	}

	if cfg.DBName == "" {
		errors = append(errors, "database name is required")
	}

	if cfg.MaxOpenConns <= 0 {
		errors = append(errors, "max_open_conns must be greater than 0")
	}

	if cfg.MaxIdleConns <= 0 {
		errors = append(errors, "max_idle_conns must be greater than 0")
	}

	// Проверяем что max_idle_conns не больше max_open_conns
	if cfg.MaxIdleConns > cfg.MaxOpenConns {
		errors = append(errors, "max_idle_conns cannot be greater than max_open_conns")
	}

	if len(errors) > 0 {
		return fmt.Errorf("%s", strings.Join(errors, "; "))
	}

	return nil
}

// validateRabbitMQ валидирует конфигурацию брокера
func (v *Validator) validateRabbitMQ(cfg *RabbitMQConfig) error {
	var errors []string

	if cfg.Host == "" {
		errors = append(errors, "host is required")
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		errors = append(errors, "port must be between 1 and 65535")
	}

	if cfg.Exchange == "" {
		errors = append(errors, "exchange is required")
	}

	if cfg.ExchangeType != "topic" && cfg.ExchangeType != "direct" && cfg.ExchangeType != "fanout" {
		errors = append(errors, "exchange_type must be one of topic, direct, fanout")
	}

	for i, queue := range cfg.Queues {
		if queue.Name == "" {
			errors = append(errors, fmt.Sprintf("queue %d: name is required", i))
		}
		if len(queue.RoutingKeys) == 0 {
			errors = append(errors, fmt.Sprintf("queue %d (%s): at least one routing key is required", i, queue.Name))
		}
	}

	if cfg.PrefetchCount <= 0 {
		errors = append(errors, "prefetch_count must be greater than 0")
	}

	if cfg.ConnectAttempts <= 0 {
		errors = append(errors, "connect_attempts must be greater than 0")
	}

	if cfg.ConnectDelay <= 0 {
		errors = append(errors, "connect_delay must be greater than 0")
	}

	if len(errors) > 0 {
		return fmt.Errorf("%s", strings.Join(errors, "; "))
	}

	return nil
}

// validateCache валидирует конфигурацию кеша
func (v *Validator) validateCache(cfg *CacheConfig) error {
	var errors []string

	if cfg.ProductTTL <= 0 {
		errors = append(errors, "product_ttl must be greater than 0")
	}

	if cfg.UserTTL <= 0 {
		errors = append(errors, "user_ttl must be greater than 0")
	}

	// Скользящее окно должно быть короче абсолютного TTL иначе оно не работает
	if cfg.ProductSlidingTTL <= 0 || cfg.ProductSlidingTTL >= cfg.ProductTTL {
		errors = append(errors, "product_sliding_ttl must be greater than 0 and less than product_ttl")
	}

	if cfg.UserSlidingTTL <= 0 || cfg.UserSlidingTTL >= cfg.UserTTL {
		errors = append(errors, "user_sliding_ttl must be greater than 0 and less than user_ttl")
	}

	if cfg.CleanupInterval <= 0 {
		errors = append(errors, "cleanup_interval must be greater than 0")
	}

	if len(errors) > 0 {
		return fmt.Errorf("%s", strings.Join(errors, "; "))
	}

	return nil
}

// validateHTTP валидирует конфигурацию HTTP сервера
func (v *Validator) validateHTTP(cfg *HTTPConfig) error {
	var errors []string

	if cfg.Port <= 0 || cfg.Port > 65535 {
		errors = append(errors, "port must be between 1 and 65535")
	}

	if cfg.ReadTimeout <= 0 {
		errors = append(errors, "read_timeout must be greater than 0")
	}

	if cfg.WriteTimeout <= 0 {
		errors = append(errors, "write_timeout must be greater than 0")
	}

	if cfg.IdleTimeout <= 0 {
		errors = append(errors, "idle_timeout must be greater than 0")
	}

	if len(errors) > 0 {
		return fmt.Errorf("%s", strings.Join(errors, "; "))
	}

	return nil
}

// validatePolicy валидирует политики отказоустойчивости одной зависимости
func (v *Validator) validatePolicy(name string, cfg *PolicyConfig) error {
	var errors []string

	if cfg.Timeout <= 0 {
		errors = append(errors, "timeout must be greater than 0")
	}

	if cfg.RetryCount < 0 {
		errors = append(errors, "retry_count cannot be negative")
	}

	if cfg.RetryBackoffBase <= 1 {
		errors = append(errors, "retry_backoff_base must be greater than 1")
	}

	if cfg.FailureThreshold <= 0 {
		errors = append(errors, "failure_threshold must be greater than 0")
	}

	if cfg.BreakDuration <= 0 {
		errors = append(errors, "break_duration must be greater than 0")
	}

	if cfg.BulkheadParallelism < 0 || cfg.BulkheadQueueDepth < 0 {
		errors = append(errors, "bulkhead limits cannot be negative")
	}

	if len(errors) > 0 {
		return fmt.Errorf("%s policy: %s", name, strings.Join(errors, "; "))
	}

	return nil
}

// validateLogger валидирует конфигурацию логгера
func (v *Validator) validateLogger(cfg *LoggerConfig) error {
	var errors []string

	switch strings.ToLower(cfg.Level) {
	case "debug", "info", "warn", "warning", "error", "fatal":
	default:
		errors = append(errors, fmt.Sprintf("unknown log level %q", cfg.Level))
	}

	switch strings.ToLower(cfg.Format) {
	case "json", "text":
	default:
		errors = append(errors, fmt.Sprintf("unknown log format %q", cfg.Format))
	}

	if len(errors) > 0 {
		return fmt.Errorf("%s", strings.Join(errors, "; "))
	}

	return nil
}
