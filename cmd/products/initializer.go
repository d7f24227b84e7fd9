package main

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"ecommerce/internal/api"
	"ecommerce/internal/config"
	"ecommerce/internal/health"
	"ecommerce/internal/logger"
	"ecommerce/internal/metrics"
	"ecommerce/internal/rabbitmq"
	"ecommerce/internal/ratelimit"
	"ecommerce/internal/repository"
	"ecommerce/internal/service"
	"ecommerce/internal/validator"
)

// App собирает компоненты сервиса товаров
type App struct {
	Config *config.Config
	Log    *logger.Logger

	Repo       *repository.ProductsRepo
	Broker     *rabbitmq.Connection
	Publisher  *rabbitmq.Publisher
	Service    *service.ProductsService
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
	if err := app.initBroker(ctx); err != nil {
		return nil, err
	}
	app.initService()
	app.initHTTPServer()

	return app, nil
}

// initRepo подключается к БД товаров
func (a *App) initRepo() error {
	repo, err := repository.NewProductsRepo(a.Config.DatabaseURL(), a.Metrics)
	if err != nil {
		return err
	}
	a.Repo = repo
	a.Log.Info("Database connected")
	return nil
}

// initBroker подключается к RabbitMQ и готовит publisher
func (a *App) initBroker(ctx context.Context) error {
	a.Broker = rabbitmq.NewConnection(a.Config.AMQPURL(), a.Config.RabbitMQ, a.Log.WithComponent("rabbitmq"))
	if err := a.Broker.Connect(ctx); err != nil {
		return err
	}

	a.Publisher = rabbitmq.NewPublisher(a.Broker, a.Config.RabbitMQ.Exchange, a.Metrics, a.Log.WithComponent("publisher"))

	a.Log.Info("RabbitMQ connected")
	return nil
}

// initService собирает бизнес-логику товаров
func (a *App) initService() {
	a.Service = service.NewProductsService(
		a.Repo,
		validator.NewRequestValidator(),
		a.Publisher,
		a.Log.WithComponent("products-service"),
	)
}

// initHTTPServer собирает маршрутизатор и HTTP сервер
func (a *App) initHTTPServer() {
	rl := ratelimit.NewMiddleware(ratelimit.MiddlewareConfig{
		Requests:  200,
		Window:    time.Minute,
		Burst:     50,
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

	productsAPI := api.NewProductsAPI(a.Service, a.Log.WithComponent("http"))

	a.HTTPServer = &http.Server{
		Addr:         ":" + strconv.Itoa(a.Config.HTTP.Port),
		Handler:      productsAPI.Router(a.Metrics, rl, h),
		ReadTimeout:  a.Config.HTTP.ReadTimeout,
		WriteTimeout: a.Config.HTTP.WriteTimeout,
		IdleTimeout:  a.Config.HTTP.IdleTimeout,
	}

	a.Log.WithField("port", a.Config.HTTP.Port).Info("HTTP server configured")
}

// Close закрывает ресурсы
func (a *App) Close() {
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
