package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	RabbitMQ RabbitMQConfig
	HTTP     HTTPConfig
	Cache    CacheConfig
	Clients  ClientsConfig
	App      AppConfig
	Logger   LoggerConfig
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RabbitMQConfig настройки подключения к брокеру и топологии
type RabbitMQConfig struct {
	Host     string
	Port     int
	VHost    string
	User     string
	Password string

	Exchange      string
	ExchangeType  string
	Queues        []QueueConfig
	PrefetchCount int

	// Подключение при старте ограниченное число попыток с фиксированной паузой
	ConnectAttempts int
	ConnectDelay    time.Duration
}

// QueueConfig очередь и ключи маршрутизации для привязки
type QueueConfig struct {
	Name        string
	RoutingKeys []string
}

type HTTPConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// CacheConfig абсолютный и скользящий TTL по типам сущностей
type CacheConfig struct {
	ProductTTL        time.Duration
	ProductSlidingTTL time.Duration
	UserTTL           time.Duration
	UserSlidingTTL    time.Duration
	CleanupInterval   time.Duration
}

// ClientsConfig адреса зависимостей и политики отказоустойчивости по каждой
type ClientsConfig struct {
	ProductsBaseURL string
	UsersBaseURL    string
	Products        PolicyConfig
	Users           PolicyConfig
}

// PolicyConfig настройки policy pipeline для одной зависимости
type PolicyConfig struct {
	Timeout          time.Duration
	RetryCount       int
	RetryBackoffBase float64
	FailureThreshold int
	BreakDuration    time.Duration

	// Bulkhead используется только для зависимости Products
	BulkheadParallelism int
	BulkheadQueueDepth  int
}

type AppConfig struct {
	ServiceName             string
	Environment             string
	GracefulShutdownTimeout time.Duration
	ShutdownWaitTimeout     time.Duration
}

type LoggerConfig struct {
	Level  string
	Format string
}

// Load читает конфигурацию из окружения
// Файл .env подхватывается если есть переменные окружения имеют приоритет
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "127.0.0.1"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "ecommerce_user"),
			Password:        getEnv("DB_PASSWORD", "ecommerce_pass"),
			DBName:          getEnv("DB_NAME", "ecommerce_db"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		RabbitMQ: RabbitMQConfig{
			Host:         getEnv("RABBITMQ_HOST", "localhost"),
			Port:         getEnvAsInt("RABBITMQ_PORT", 5672),
			VHost:        getEnv("RABBITMQ_VHOST", "/"),
			User:         getEnv("RABBITMQ_USER", "guest"),
			Password:     getEnv("RABBITMQ_PASSWORD", "guest"),
			Exchange:     getEnv("RABBITMQ_EXCHANGE", "products.exchange"),
			ExchangeType: getEnv("RABBITMQ_EXCHANGE_TYPE", "topic"),
			Queues: []QueueConfig{
				{
					Name:        getEnv("RABBITMQ_QUEUE_PRODUCT_UPDATES", "orders.product.updates"),
					RoutingKeys: getEnvAsSlice("RABBITMQ_RK_PRODUCT_UPDATES", []string{"product.name.updated", "product.updated.name"}),
				},
				{
					Name:        getEnv("RABBITMQ_QUEUE_PRODUCT_DELETES", "orders.product.deletes"),
					RoutingKeys: getEnvAsSlice("RABBITMQ_RK_PRODUCT_DELETES", []string{"product.deleted"}),
				},
			},
			PrefetchCount:   getEnvAsInt("RABBITMQ_PREFETCH_COUNT", 10),
			ConnectAttempts: getEnvAsInt("RABBITMQ_CONNECT_ATTEMPTS", 10),
			ConnectDelay:    getEnvAsDuration("RABBITMQ_CONNECT_DELAY", 5*time.Second),
		},
		HTTP: HTTPConfig{
			Port:         getEnvAsInt("HTTP_PORT", 8080),
			ReadTimeout:  getEnvAsDuration("HTTP_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getEnvAsDuration("HTTP_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:  getEnvAsDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
		},
		Cache: CacheConfig{
			ProductTTL:        getEnvAsDuration("CACHE_PRODUCT_TTL", 300*time.Second),
			ProductSlidingTTL: getEnvAsDuration("CACHE_PRODUCT_SLIDING_TTL", 100*time.Second),
			UserTTL:           getEnvAsDuration("CACHE_USER_TTL", 5*time.Minute),
			UserSlidingTTL:    getEnvAsDuration("CACHE_USER_SLIDING_TTL", 100*time.Second),
			CleanupInterval:   getEnvAsDuration("CACHE_CLEANUP_INTERVAL", time.Minute),
		},
		Clients: ClientsConfig{
			ProductsBaseURL: getEnv("PRODUCTS_BASE_URL", "http://localhost:8081"),
			UsersBaseURL:    getEnv("USERS_BASE_URL", "http://localhost:8082"),
			Products: PolicyConfig{
				Timeout:             getEnvAsDuration("PRODUCTS_TIMEOUT", 1500*time.Millisecond),
				RetryCount:          getEnvAsInt("PRODUCTS_RETRY_COUNT", 3),
				RetryBackoffBase:    getEnvAsFloat("PRODUCTS_RETRY_BACKOFF_BASE", 2.0),
				FailureThreshold:    getEnvAsInt("PRODUCTS_FAILURE_THRESHOLD", 3),
				BreakDuration:       getEnvAsDuration("PRODUCTS_BREAK_DURATION", 10*time.Second),
				BulkheadParallelism: getEnvAsInt("PRODUCTS_BULKHEAD_PARALLELISM", 10),
				BulkheadQueueDepth:  getEnvAsInt("PRODUCTS_BULKHEAD_QUEUE_DEPTH", 20),
			},
			Users: PolicyConfig{
				Timeout:          getEnvAsDuration("USERS_TIMEOUT", 1500*time.Millisecond),
				RetryCount:       getEnvAsInt("USERS_RETRY_COUNT", 5),
				RetryBackoffBase: getEnvAsFloat("USERS_RETRY_BACKOFF_BASE", 2.0),
				FailureThreshold: getEnvAsInt("USERS_FAILURE_THRESHOLD", 3),
				BreakDuration:    getEnvAsDuration("USERS_BREAK_DURATION", 15*time.Second),
			},
		},
		App: AppConfig{
			ServiceName:             getEnv("SERVICE_NAME", "orders-service"),
			Environment:             getEnv("ENVIRONMENT", "development"),
			GracefulShutdownTimeout: getEnvAsDuration("GRACEFUL_SHUTDOWN_TIMEOUT", 30*time.Second),
			ShutdownWaitTimeout:     getEnvAsDuration("SHUTDOWN_WAIT_TIMEOUT", 5*time.Second),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}
}

// DatabaseURL собирает строку подключения к Postgres
func (c *Config) DatabaseURL() string {
	return "postgres://" + c.Database.User + ":" + c.Database.Password + "@" +
		c.Database.Host + ":" + strconv.Itoa(c.Database.Port) + "/" +
		c.Database.DBName + "?sslmode=" + c.Database.SSLMode
}

// AMQPURL собирает строку подключения к RabbitMQ
func (c *Config) AMQPURL() string {
	return "amqp://" + c.RabbitMQ.User + ":" + c.RabbitMQ.Password + "@" +
		c.RabbitMQ.Host + ":" + strconv.Itoa(c.RabbitMQ.Port) + c.vhostPath()
}

func (c *Config) vhostPath() string {
	if c.RabbitMQ.VHost == "/" || c.RabbitMQ.VHost == "" {
		return "/"
	}
	return "/" + strings.TrimPrefix(c.RabbitMQ.VHost, "/")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}
