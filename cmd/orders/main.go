package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ecommerce/internal/config"
	"ecommerce/internal/logger"
)

func main() {
	// Загружаем конфигурацию
	cfg := config.Load()

	// Инициализируем логгер
	log := logger.New(logger.Config{Level: cfg.Logger.Level, Format: cfg.Logger.Format})
	log.Info("Starting orders service...")

	log.WithFields(map[string]interface{}{
		"db_host":   cfg.Database.Host,
		"db_port":   cfg.Database.Port,
		"rabbitmq":  cfg.RabbitMQ.Host,
		"http_port": cfg.HTTP.Port,
	}).Info("Configuration loaded")

	// Создаем контекст для graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Создаем приложение
	app, err := NewApp(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize application")
	}
	defer app.Close()

	// Канал для сигналов завершения
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Вешаем обработчики продуктовых событий и запускаем consumer
	messageHandler := NewMessageHandler(app)
	messageHandler.Register()

	go func() {
		if err := app.Consumer.Run(ctx); err != nil && ctx.Err() == nil {
			log.WithError(err).Error("Consumer stopped with error")
		}
	}()

	// Запускаем HTTP сервер
	go func() {
		log.WithField("port", cfg.HTTP.Port).Info("Starting HTTP server")
		if err := app.HTTPServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("HTTP server error")
		}
	}()

	log.Info("Orders service started successfully")

	// Ждем сигнала завершения
	<-sigChan
	log.Info("Received shutdown signal, starting graceful shutdown...")

	// Graceful shutdown с таймаутом из конфигурации
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.GracefulShutdownTimeout)
	defer shutdownCancel()

	// Останавливаем HTTP сервер
	if err := app.HTTPServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("HTTP server shutdown error")
	} else {
		log.Info("HTTP server stopped gracefully")
	}

	// Отменяем контекст для остановки consumer
	cancel()

	// Ждем завершения всех горутин
	select {
	case <-shutdownCtx.Done():
		log.Warn("Graceful shutdown timeout exceeded")
	case <-time.After(cfg.App.ShutdownWaitTimeout):
		log.Info("Graceful shutdown completed")
	}

	log.Info("Orders service stopped")
}
