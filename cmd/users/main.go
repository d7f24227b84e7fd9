package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"ecommerce/internal/config"
	"ecommerce/internal/logger"
)

func main() {
	// Загружаем конфигурацию
	cfg := config.Load()

	// Инициализируем логгер
	log := logger.New(logger.Config{Level: cfg.Logger.Level, Format: cfg.Logger.Format})
	log.Info("Starting users service...")

	// Создаем приложение
	app, err := NewApp(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize application")
	}
	defer app.Close()

	// Канал для сигналов завершения
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Запускаем HTTP сервер
	go func() {
		log.WithField("port", cfg.HTTP.Port).Info("Starting HTTP server")
		if err := app.HTTPServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("HTTP server error")
		}
	}()

	log.Info("Users service started successfully")

	// Ждем сигнала завершения
	<-sigChan
	log.Info("Received shutdown signal, starting graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.GracefulShutdownTimeout)
	defer shutdownCancel()

	if err := app.HTTPServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("HTTP server shutdown error")
	} else {
		log.Info("HTTP server stopped gracefully")
	}

	log.Info("Users service stopped")
}
