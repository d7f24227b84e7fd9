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
	"ecommerce/internal/ratelimit"
	"ecommerce/internal/repository"
	"ecommerce/internal/service"
	"ecommerce/internal/validator"
)

// App собирает компоненты сервиса пользователей
// Брокер тут не нужен сервис ничего не публикует и не потребляет
type App struct {
	Config *config.Config
	Log    *logger.Logger

	Repo       *repository.UsersRepo
	Service    *service.UsersService
	Metrics    *metrics.Metrics
	HTTPServer *http.Server
}

// NewApp создает приложение с компонентами
func NewApp(cfg *config.Config, log *logger.Logger) (*App, error) {
	app := &App{Config: cfg, Log: log}

	app.Metrics = metrics.New()

	if err := app.initRepo(); err != nil {
		return nil, err
	}
	app.initService()
	app.initHTTPServer()

	return app, nil
}

// initRepo подключается к БД пользователей
func (a *App) initRepo() error {
	repo, err := repository.NewUsersRepo(a.Config.DatabaseURL(), a.Metrics)
	if err != nil {
		return err
	}
	a.Repo = repo
	a.Log.Info("Database connected")
	return nil
}

// initService собирает бизнес-логику пользователей
func (a *App) initService() {
	a.Service = service.NewUsersService(
		a.Repo,
		validator.NewRequestValidator(),
		a.Log.WithComponent("users-service"),
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

	usersAPI := api.NewUsersAPI(a.Service, a.Log.WithComponent("http"))

	a.HTTPServer = &http.Server{
		Addr:         ":" + strconv.Itoa(a.Config.HTTP.Port),
		Handler:      usersAPI.Router(a.Metrics, rl, h),
		ReadTimeout:  a.Config.HTTP.ReadTimeout,
		WriteTimeout: a.Config.HTTP.WriteTimeout,
		IdleTimeout:  a.Config.HTTP.IdleTimeout,
	}

	a.Log.WithField("port", a.Config.HTTP.Port).Info("HTTP server configured")
}

// Close закрывает ресурсы
func (a *App) Close() {
	if a.Repo != nil {
		a.Repo.Close()
	}
	a.Log.Info("Application resources closed")
}
