package main

import (
	"context"
	"encoding/json"

	"ecommerce/internal/cache"
	apperrors "ecommerce/internal/errors"
	"ecommerce/internal/model"
	"ecommerce/internal/rabbitmq"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// MessageHandler обрабатывает события сервиса товаров
// Кеш не просто инвалидируется а обновляется на месте: следующий
// запрос заказа отдаст новое имя без похода в Products
type MessageHandler struct {
	app *App
	log *logrus.Entry
}

// NewMessageHandler создает обработчик
func NewMessageHandler(app *App) *MessageHandler {
	return &MessageHandler{app: app, log: app.Log.WithComponent("message-handler")}
}

// Register вешает обработчики на ключи маршрутизации
// Старый ключ product.updated.name оставлен для совместимости
func (h *MessageHandler) Register() {
	h.app.Consumer.Handle(rabbitmq.RoutingKeyProductNameUpdated, h.HandleProductNameUpdated)
	h.app.Consumer.Handle(rabbitmq.RoutingKeyProductNameUpdatedAlias, h.HandleProductNameUpdated)
	h.app.Consumer.Handle(rabbitmq.RoutingKeyProductDeleted, h.HandleProductDeleted)
}

// HandleProductNameUpdated обновляет имя товара в кеше
func (h *MessageHandler) HandleProductNameUpdated(ctx context.Context, body []byte) error {
	var msg rabbitmq.ProductNameUpdateMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeValidation, "invalid ProductNameUpdated payload")
	}
	if msg.ProductID == uuid.Nil || msg.NewProductName == "" {
		return apperrors.New(apperrors.ErrorTypeValidation, "ProductNameUpdated payload missing fields")
	}

	key := cache.ProductKey(msg.ProductID)

	var product model.Product
	if !h.app.Cache.GetJSON(key, &product) {
		// Товара нет в кеше обновлять нечего следующий запрос
		// сходит в Products и закеширует свежие данные
		h.log.WithField("product_id", msg.ProductID).Debug("product not cached, nothing to refresh")
		return nil
	}

	product.ProductName = msg.NewProductName
	if err := h.app.Cache.SetJSON(key, &product, h.app.Config.Cache.ProductTTL, h.app.Config.Cache.ProductSlidingTTL); err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeCache, "refresh cached product")
	}

	h.log.WithFields(logrus.Fields{
		"product_id": msg.ProductID,
		"new_name":   msg.NewProductName,
	}).Info("cached product name refreshed")
	return nil
}

// HandleProductDeleted выбрасывает товар из кеша
func (h *MessageHandler) HandleProductDeleted(ctx context.Context, body []byte) error {
	var msg rabbitmq.ProductDeletedMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeValidation, "invalid ProductDeleted payload")
	}
	if msg.ProductID == uuid.Nil {
		return apperrors.New(apperrors.ErrorTypeValidation, "ProductDeleted payload missing product id")
	}

	h.app.Cache.Delete(cache.ProductKey(msg.ProductID))
	if h.app.Metrics != nil {
		h.app.Metrics.CacheInvalidations.WithLabelValues("products", "deleted").Inc()
	}
	h.log.WithField("product_id", msg.ProductID).Info("cached product invalidated")
	return nil
}
