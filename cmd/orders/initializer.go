package main

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"ecommerce/internal/api"
	"ecommerce/internal/cache"
	"ecommerce/internal/client"
	"ecommerce/internal/config"
	"ecommerce/internal/enrichment"
	"ecommerce/internal/health"
	"ecommerce/internal/logger"
	"ecommerce/internal/metrics"
	"ecommerce/internal/rabbitmq"
	"ecommerce/internal/ratelimit"
	"ecommerce/internal/repository"
	"ecommerce/internal/service"
	"ecommerce/internal/validator"
)

// App собирает компоненты сервиса заказов
type App struct {
	Config *config.Config
	Log    *logger.Logger

	Repo       *repository.OrdersRepo
	Cache      *cache.Store
	Broker     *rabbitmq.Connection
	Consumer   *rabbitmq.Consumer
	Products   *client.ProductsClient
	Users      *client.UsersClient
	Service    *service.OrdersService
	Metrics    *metrics.Metrics
	HTTPServer *http.Server
}

// NewApp создает приложение с компонентами
func NewApp(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	app := &App{Config: cfg, Log: log}

	if err := config.NewValidator().Validate(cfg); err != nil {
		return nil, err
	}

	app.Metrics = metrics.New()

	if err := app.initRepo(); err != nil {
		return nil, err
	}
	app.initCache()
	if err := app.initBroker(ctx); err != nil {
		return nil, err
	}
	app.initClients()
	app.initService()
	app.initHTTPServer()

	go app.watchStats(ctx)

	return app, nil
}

// watchStats периодически отражает загрузку кеша и bulkhead в метриках
func (a *App) watchStats(ctx context.Context) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.Metrics.CacheEntries.WithLabelValues("orders").Set(float64(a.Cache.Size()))
			a.Metrics.BulkheadActive.WithLabelValues("products").Set(float64(a.Products.Bulkhead().GetStats().Active))
		}
	}
}

// initRepo подключается к БД заказов
func (a *App) initRepo() error {
	repo, err := repository.NewOrdersRepo(a.Config.DatabaseURL(), a.Metrics)
	if err != nil {
		return err
	}
	a.Repo = repo
	a.Log.Info("Database connected")
	return nil
}

// initCache создает кеш справочных данных
func (a *App) initCache() {
	a.Cache = cache.NewStore(a.Config.Cache.CleanupInterval)
	a.Log.Info("Cache initialized")
}

// initBroker подключается к RabbitMQ и готовит consumer
// Сервису заказов нужен только consumer публикует сервис товаров
func (a *App) initBroker(ctx context.Context) error {
	a.Broker = rabbitmq.NewConnection(a.Config.AMQPURL(), a.Config.RabbitMQ, a.Log.WithComponent("rabbitmq"))
	if err := a.Broker.Connect(ctx); err != nil {
		return err
	}

	a.Consumer = rabbitmq.NewConsumer(
		a.Broker,
		a.Config.RabbitMQ.Queues,
		a.Config.RabbitMQ.PrefetchCount,
		a.Metrics,
		a.Log.WithComponent("consumer"),
	)

	a.Log.Info("RabbitMQ connected")
	return nil
}

// initClients собирает HTTP-клиенты зависимостей с policy pipeline
func (a *App) initClients() {
	a.Products = client.NewProductsClient(
		a.Config.Clients.ProductsBaseURL,
		a.Config.Clients.Products,
		a.Config.Cache,
		a.Cache,
		a.Metrics,
		a.Log.WithComponent("products-client"),
	)
	a.Users = client.NewUsersClient(
		a.Config.Clients.UsersBaseURL,
		a.Config.Clients.Users,
		a.Config.Cache,
		a.Cache,
		a.Metrics,
		a.Log.WithComponent("users-client"),
	)
	a.Log.Info("Dependency clients initialized")
}

// initService собирает бизнес-логику заказов
func (a *App) initService() {
	enricher := enrichment.New(a.Products, a.Users, a.Log.WithComponent("enrichment"))
	a.Service = service.NewOrdersService(
		a.Repo,
		validator.NewRequestValidator(),
		a.Products,
		a.Users,
		enricher,
		a.Log.WithComponent("orders-service"),
	)
}

// initHTTPServer собирает маршрутизатор и HTTP сервер
func (a *App) initHTTPServer() {
	rl := ratelimit.NewMiddleware(ratelimit.MiddlewareConfig{
		Requests:  100,
		Window:    time.Minute,
		Burst:     20,
		Algorithm: "token-bucket",
	}, a.Log.Logger).WithKeyFunc(ratelimit.PathKeyFunc)

	h := health.New()
	h.AddChecker(health.NewDatabaseChecker("postgres", func(ctx context.Context) error {
		return a.Repo.Pool().Ping(ctx)
	}))
	h.AddChecker(health.NewBrokerChecker("rabbitmq", func(ctx context.Context) error {
		_, err := a.Broker.Channel(ctx)
		return err
	}))

	ordersAPI := api.NewOrdersAPI(a.Service, a.Log.WithComponent("http"))

	a.HTTPServer = &http.Server{
		Addr:         ":" + strconv.Itoa(a.Config.HTTP.Port),
		Handler:      ordersAPI.Router(a.Metrics, rl, h),
		ReadTimeout:  a.Config.HTTP.ReadTimeout,
		WriteTimeout: a.Config.HTTP.WriteTimeout,
		IdleTimeout:  a.Config.HTTP.IdleTimeout,
	}

	a.Log.WithField("port", a.Config.HTTP.Port).Info("HTTP server configured")
}

// Close закрывает ресурсы
func (a *App) Close() {
	if a.Cache != nil {
		a.Cache.Stop()
	}
	if a.Broker != nil {
		if err := a.Broker.Close(); err != nil {
			a.Log.WithError(err).Error("Error closing RabbitMQ connection")
		}
	}
	if a.Repo != nil {
		a.Repo.Close()
	}
	a.Log.Info("Application resources closed")
}
